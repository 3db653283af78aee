package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os/signal"
	"syscall"

	"github.com/GoArmGo/RecipeApp/internal/config"
	"github.com/GoArmGo/RecipeApp/internal/core/ports"
	"github.com/GoArmGo/RecipeApp/internal/usecase"
)

// Режимы запуска.
const (
	ModeServer          = "server"
	ModeWorker          = "worker"
	ModeCreateSuperuser = "createsuperuser"
)

// App собранное приложение: HTTP-сервер, воркер очистки изображений и служебные команды.
type App struct {
	cfg      *config.Config
	logger   *slog.Logger
	handler  http.Handler
	accounts usecase.AccountUseCase
	cleanup  usecase.ImageCleanupUseCase
	consumer ports.ImageCleanupConsumer
	closers  []func() error
}

// NewApp создает приложение. consumer может быть nil, если RabbitMQ не настроен.
func NewApp(
	cfg *config.Config,
	logger *slog.Logger,
	handler http.Handler,
	accounts usecase.AccountUseCase,
	cleanup usecase.ImageCleanupUseCase,
	consumer ports.ImageCleanupConsumer,
	closers ...func() error,
) *App {
	return &App{
		cfg:      cfg,
		logger:   logger,
		handler:  handler,
		accounts: accounts,
		cleanup:  cleanup,
		consumer: consumer,
		closers:  closers,
	}
}

// LoggerIns возвращает основной логгер приложения.
func (a *App) LoggerIns() *slog.Logger {
	return a.logger
}

// Run запускает приложение в выбранном режиме и блокируется до сигнала завершения.
func (a *App) Run(ctx context.Context, mode string) error {
	// канал для graceful shutdown
	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	a.logger.Info("starting", "mode", mode)

	var err error
	switch mode {
	case ModeServer:
		err = a.runServer(ctx)
	case ModeWorker:
		err = a.runWorker(ctx)
	case ModeCreateSuperuser:
		err = a.createSuperuser(ctx)
	default:
		err = fmt.Errorf("unknown mode %q (use %q, %q or %q)", mode, ModeServer, ModeWorker, ModeCreateSuperuser)
	}

	// аккуратно закрываем ресурсы
	if closeErr := a.Shutdown(); closeErr != nil {
		a.logger.Error("shutdown failed", "error", closeErr)
	}
	return err
}

// Shutdown закрывает все ресурсы приложения
func (a *App) Shutdown() error {
	var errs []error
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil {
			errs = append(errs, err)
		}
	}
	a.closers = nil
	return errors.Join(errs...)
}

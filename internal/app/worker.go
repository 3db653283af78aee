package app

import (
	"context"
	"errors"
	"fmt"
)

// runWorker запускает потребителя очереди очистки изображений и ждет завершения ctx
func (a *App) runWorker(ctx context.Context) error {
	if a.consumer == nil {
		return errors.New("worker mode requires RABBITMQ_URL")
	}
	if !a.cfg.ImagesEnabled() {
		return errors.New("worker mode requires MINIO_ENDPOINT")
	}

	workerCtx, cancelWorker := context.WithCancel(ctx)
	defer cancelWorker()

	if err := a.consumer.StartConsumingImageCleanup(workerCtx, a.cleanup.Process); err != nil {
		return fmt.Errorf("start image cleanup consumer: %w", err)
	}
	a.logger.Info("worker started, waiting for image cleanup messages")

	<-ctx.Done()

	a.logger.Info("shutdown signal received, stopping worker")
	return nil
}

// createSuperuser создает администратора из SUPERUSER_EMAIL и SUPERUSER_PASSWORD.
func (a *App) createSuperuser(ctx context.Context) error {
	email, password := a.cfg.Superuser.Email, a.cfg.Superuser.Password
	if email == "" || password == "" {
		return errors.New("SUPERUSER_EMAIL and SUPERUSER_PASSWORD must be set")
	}

	user, err := a.accounts.CreateSuperuser(ctx, email, password)
	if err != nil {
		return fmt.Errorf("create superuser: %w", err)
	}

	a.logger.Info("superuser created", "user_id", user.ID, "email", user.Email)
	return nil
}

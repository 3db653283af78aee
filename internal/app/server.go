package app

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"
)

const shutdownTimeout = 30 * time.Second

// runServer запускает HTTP сервер и останавливает его при отмене ctx
func (a *App) runServer(ctx context.Context) error {
	serverAddr := fmt.Sprintf(":%s", a.cfg.ServerPort)
	server := &http.Server{
		Addr:              serverAddr,
		Handler:           a.handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	listener, err := net.Listen("tcp", serverAddr)
	if err != nil {
		return fmt.Errorf("listen on %s: %w", serverAddr, err)
	}

	serveErr := make(chan error, 1)
	go func() {
		a.logger.Info("http server started", "addr", listener.Addr().String())
		if err := server.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	select {
	case err := <-serveErr:
		return fmt.Errorf("http server: %w", err)
	case <-ctx.Done():
	}

	a.logger.Info("shutdown signal received, stopping http server")

	// Graceful Shutdown
	ctxServer, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := server.Shutdown(ctxServer); err != nil {
		return fmt.Errorf("graceful shutdown failed: %w", err)
	}

	a.logger.Info("http server stopped")
	return nil
}

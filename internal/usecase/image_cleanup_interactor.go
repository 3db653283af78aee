package usecase

import (
	"context"
	"log/slog"

	"github.com/GoArmGo/RecipeApp/internal/core/ports"
	"github.com/GoArmGo/RecipeApp/internal/messaging/payloads"
)

// imageCleanupUseCase implements ImageCleanupUseCase
type imageCleanupUseCase struct {
	files     ports.FileStorage
	publisher ports.ImageCleanupPublisher // nil, если RabbitMQ не настроен
	logger    *slog.Logger
}

// NewImageCleanupUseCase создает очистку изображений. files может быть nil, если загрузка отключена.
func NewImageCleanupUseCase(files ports.FileStorage, publisher ports.ImageCleanupPublisher, logger *slog.Logger) ImageCleanupUseCase {
	return &imageCleanupUseCase{files: files, publisher: publisher, logger: logger}
}

func (uc *imageCleanupUseCase) Schedule(ctx context.Context, payload payloads.ImageCleanupPayload) {
	if payload.Key == "" {
		return
	}

	if uc.publisher != nil {
		err := uc.publisher.PublishImageCleanup(ctx, payload)
		if err == nil {
			return
		}
		uc.logger.Warn("failed to publish image cleanup, deleting inline", "key", payload.Key, "error", err)
	}

	if err := uc.Process(ctx, payload); err != nil {
		uc.logger.Error("inline image cleanup failed", "key", payload.Key, "error", err)
	}
}

func (uc *imageCleanupUseCase) Process(ctx context.Context, payload payloads.ImageCleanupPayload) error {
	if uc.files == nil {
		uc.logger.Warn("object storage is not configured, skipping image cleanup", "key", payload.Key)
		return nil
	}
	if err := uc.files.DeleteFile(ctx, payload.Key); err != nil {
		return err
	}
	uc.logger.Info("image removed", "key", payload.Key, "recipe_id", payload.RecipeID)
	return nil
}

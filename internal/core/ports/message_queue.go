package ports

import (
	"context"

	"github.com/GoArmGo/RecipeApp/internal/messaging/payloads"
)

// ImageCleanupPublisher публикует ключи изображений, которые больше не нужны.
type ImageCleanupPublisher interface {
	PublishImageCleanup(ctx context.Context, payload payloads.ImageCleanupPayload) error
}

// ImageCleanupConsumer используется воркером для получения задач из очереди.
type ImageCleanupConsumer interface {
	// StartConsumingImageCleanup регистрирует потребителя и обрабатывает сообщения в фоне
	// до отмены ctx. handler вызывается для каждого корректного сообщения.
	StartConsumingImageCleanup(ctx context.Context, handler func(context.Context, payloads.ImageCleanupPayload) error) error
}

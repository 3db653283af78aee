package usecase

import (
	"context"
	"io"

	"github.com/GoArmGo/RecipeApp/internal/domain"
	"github.com/GoArmGo/RecipeApp/internal/messaging/payloads"
	"github.com/google/uuid"
)

// NamedUseCase CRUD меток и ингредиентов в пределах владельца
type NamedUseCase[T domain.Named] interface {
	List(ctx context.Context, userID uuid.UUID, assignedOnly bool) ([]T, error)
	Create(ctx context.Context, userID uuid.UUID, name string) (*T, error)
	// Update меняет имя; nil оставляет запись без изменений. Чужая запись - domain.ErrNotFound.
	Update(ctx context.Context, userID, id uuid.UUID, name *string) (*T, error)
	Delete(ctx context.Context, userID, id uuid.UUID) error
}

// ImageUpload загружаемый файл изображения.
type ImageUpload struct {
	Body        io.Reader
	ContentType string
	Size        int64
}

// RecipeUseCase бизнес-логика рецептов
type RecipeUseCase interface {
	List(ctx context.Context, userID uuid.UUID, filter domain.RecipeFilter) ([]domain.Recipe, error)
	Get(ctx context.Context, userID, id uuid.UUID) (*domain.RecipeDetail, error)
	Create(ctx context.Context, userID uuid.UUID, changes domain.RecipeChanges) (*domain.RecipeDetail, error)
	// Update применяет изменения. replace=true требует обязательные поля, как при создании.
	Update(ctx context.Context, userID, id uuid.UUID, changes domain.RecipeChanges, replace bool) (*domain.RecipeDetail, error)
	Delete(ctx context.Context, userID, id uuid.UUID) error

	// UploadImage заменяет изображение рецепта. Без объектного хранилища - domain.ErrUnavailable.
	UploadImage(ctx context.Context, userID, id uuid.UUID, img ImageUpload) (*domain.Recipe, error)
	// ImageURL строит публичную ссылку на изображение по ключу.
	ImageURL(key string) string
}

// ImageCleanupUseCase удаление больше не используемых изображений
type ImageCleanupUseCase interface {
	// Schedule ставит удаление в очередь или выполняет его сразу, если очередь не настроена.
	Schedule(ctx context.Context, payload payloads.ImageCleanupPayload)
	// Process удаляет объект; вызывается воркером.
	Process(ctx context.Context, payload payloads.ImageCleanupPayload) error
}

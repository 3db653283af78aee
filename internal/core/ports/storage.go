package ports

import (
	"context"
	"io"

	"github.com/GoArmGo/RecipeApp/internal/domain"
	"github.com/google/uuid"
)

// UserStorage определяет методы для взаимодействия с хранилищем пользователей.
// Отсутствующая запись возвращается как domain.ErrNotFound.
type UserStorage interface {
	CreateUser(ctx context.Context, user *domain.User) error
	GetUserByEmail(ctx context.Context, email string) (*domain.User, error)
	GetUserByID(ctx context.Context, id uuid.UUID) (*domain.User, error)
	UpdateUser(ctx context.Context, user *domain.User) error
}

// TokenStorage хранит токены доступа, не более одного на пользователя.
type TokenStorage interface {
	// GetOrCreateToken сохраняет candidateKey, если у пользователя еще нет токена,
	// и возвращает действующий токен.
	GetOrCreateToken(ctx context.Context, userID uuid.UUID, candidateKey string) (*domain.AuthToken, error)
	GetToken(ctx context.Context, key string) (*domain.AuthToken, error)
	// DeleteUserToken удаляет токен пользователя и возвращает его ключ ("" если токена не было).
	DeleteUserToken(ctx context.Context, userID uuid.UUID) (string, error)
}

// NamedStorage хранилище меток или ингредиентов. Все методы ограничены владельцем.
type NamedStorage[T domain.Named] interface {
	Create(ctx context.Context, item *T) error
	List(ctx context.Context, userID uuid.UUID, assignedOnly bool) ([]T, error)
	Get(ctx context.Context, userID, id uuid.UUID) (*T, error)
	// FindByIDs возвращает только найденные записи владельца.
	FindByIDs(ctx context.Context, userID uuid.UUID, ids []uuid.UUID) ([]T, error)
	Update(ctx context.Context, item *T) error
	Delete(ctx context.Context, userID, id uuid.UUID) error
}

// TagStorage хранилище меток.
type TagStorage = NamedStorage[domain.Tag]

// IngredientStorage хранилище ингредиентов.
type IngredientStorage = NamedStorage[domain.Ingredient]

// RecipeStorage хранилище рецептов. Строка рецепта и связи пишутся в одной транзакции.
type RecipeStorage interface {
	CreateRecipe(ctx context.Context, recipe *domain.Recipe) error
	GetRecipe(ctx context.Context, userID, id uuid.UUID) (*domain.Recipe, error)
	ListRecipes(ctx context.Context, userID uuid.UUID, filter domain.RecipeFilter) ([]domain.Recipe, error)
	UpdateRecipe(ctx context.Context, recipe *domain.Recipe) error
	DeleteRecipe(ctx context.Context, userID, id uuid.UUID) error
}

// FileStorage определяет методы для работы с объектным хранилищем (MinIO/S3).
type FileStorage interface {
	UploadFile(ctx context.Context, key string, body io.Reader, contentType string) error
	DeleteFile(ctx context.Context, key string) error
	// PublicURL строит адрес, по которому объект доступен клиентам.
	PublicURL(key string) string
}

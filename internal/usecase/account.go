package usecase

import (
	"context"

	"github.com/GoArmGo/RecipeApp/internal/domain"
	"github.com/google/uuid"
)

// AccountUseCase определяет бизнес-логику учетных записей
type AccountUseCase interface {
	// CreateUser создает активного пользователя. Email нормализуется, пароль хешируется.
	// Пустой или занятый email дает *domain.ValidationError по полю "email".
	CreateUser(ctx context.Context, email, password, name string) (*domain.User, error)

	// CreateSuperuser как CreateUser, но с флагами is_staff и is_superuser.
	CreateSuperuser(ctx context.Context, email, password string) (*domain.User, error)

	// VerifyCredentials возвращает пользователя, если email существует, учетная запись активна
	// и пароль совпадает. Во всех остальных случаях domain.ErrInvalidCredentials.
	VerifyCredentials(ctx context.Context, email, password string) (*domain.User, error)

	// UpdateProfile меняет имя и/или пароль.
	UpdateProfile(ctx context.Context, userID uuid.UUID, upd domain.ProfileUpdate) (*domain.User, error)

	GetUser(ctx context.Context, userID uuid.UUID) (*domain.User, error)
}

// TokenUseCase определяет выдачу, проверку и отзыв токенов доступа
type TokenUseCase interface {
	// IssueToken возвращает ключ токена пользователя, создавая его при первом вызове.
	IssueToken(ctx context.Context, user *domain.User) (string, error)

	// ResolveToken возвращает владельца токена или domain.ErrUnauthenticated.
	ResolveToken(ctx context.Context, key string) (*domain.User, error)

	// RevokeToken удаляет токен пользователя. Повторный вызов безопасен.
	RevokeToken(ctx context.Context, userID uuid.UUID) error
}

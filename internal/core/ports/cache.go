package ports

import (
	"context"

	"github.com/google/uuid"
)

// TokenCache отображение ключ токена -> id пользователя.
// Промах кэша возвращает (uuid.Nil, false, nil).
type TokenCache interface {
	Get(ctx context.Context, key string) (uuid.UUID, bool, error)
	Set(ctx context.Context, key string, userID uuid.UUID) error
	Delete(ctx context.Context, key string) error
}

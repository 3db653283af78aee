package domain

import (
	"time"

	"github.com/google/uuid"
)

// AuthToken непрозрачный ключ доступа, не более одного на пользователя.
type AuthToken struct {
	Key       string    `db:"key"`
	UserID    uuid.UUID `db:"user_id"`
	CreatedAt time.Time `db:"created_at"`
}

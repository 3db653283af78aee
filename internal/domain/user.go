// internal/domain/user.go
package domain

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// MinPasswordLength минимальная длина пароля, принимаемого через API.
const MinPasswordLength = 6

// User представляет учетную запись пользователя.
// Соответствует таблице 'users' в базе данных.
type User struct {
	ID           uuid.UUID `json:"id" db:"id"`
	Email        string    `json:"email" db:"email"`
	Name         string    `json:"name" db:"name"`
	PasswordHash string    `json:"-" db:"password_hash"`
	IsActive     bool      `json:"is_active" db:"is_active"`
	IsStaff      bool      `json:"is_staff" db:"is_staff"`
	IsSuperuser  bool      `json:"is_superuser" db:"is_superuser"`
	CreatedAt    time.Time `json:"created_at" db:"created_at"`
	UpdatedAt    time.Time `json:"updated_at" db:"updated_at"`
}

// ProfileUpdate описывает изменения профиля; nil означает "не менять".
type ProfileUpdate struct {
	Name     *string
	Password *string
}

// NormalizeEmail приводит email к каноническому виду, в котором он хранится.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

package domain

import (
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
)

// MaxNameLength ограничение длины имен и заголовков.
const MaxNameLength = 255

// Tag метка рецепта, принадлежащая одному пользователю.
type Tag struct {
	ID        uuid.UUID `json:"id" db:"id"`
	UserID    uuid.UUID `json:"-" db:"user_id"`
	Name      string    `json:"name" db:"name"`
	CreatedAt time.Time `json:"-" db:"created_at"`
}

// Ingredient ингредиент рецепта. Устроен так же, как Tag, но хранится отдельно.
type Ingredient Tag

// Named объединяет ресурсы, у которых есть только имя и владелец.
type Named interface {
	Tag | Ingredient
}

// NormalizeName обрезает пробелы и проверяет имя ресурса.
func NormalizeName(name string) (string, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return "", NewValidationError("name", "This field may not be blank.")
	}
	if utf8.RuneCountInString(name) > MaxNameLength {
		return "", NewValidationError("name", "Ensure this field has no more than 255 characters.")
	}
	return name, nil
}

package domain

import (
	"errors"
	"sort"
	"strings"
)

var (
	// ErrNotFound запись отсутствует или принадлежит другому пользователю.
	ErrNotFound = errors.New("not found")
	// ErrDuplicate нарушено ограничение уникальности.
	ErrDuplicate = errors.New("duplicate entry")
	// ErrInvalidCredentials неверная пара email/пароль. Причина намеренно не уточняется.
	ErrInvalidCredentials = errors.New("unable to authenticate with provided credentials")
	// ErrUnauthenticated токен отсутствует, некорректен или неизвестен.
	ErrUnauthenticated = errors.New("invalid or missing authentication token")
	// ErrUnavailable зависимость (например, хранилище изображений) не настроена.
	ErrUnavailable = errors.New("service unavailable")
)

// ValidationError ошибка входных данных с детализацией по полям.
type ValidationError struct {
	Message string
	Fields  map[string]string
}

// NewValidationError создает ошибку для одного поля.
func NewValidationError(field, msg string) *ValidationError {
	return &ValidationError{Fields: map[string]string{field: msg}}
}

// Add добавляет ошибку поля. Первая ошибка поля сохраняется.
func (e *ValidationError) Add(field, msg string) {
	if e.Fields == nil {
		e.Fields = make(map[string]string)
	}
	if _, ok := e.Fields[field]; !ok {
		e.Fields[field] = msg
	}
}

// Empty сообщает, что ошибок не накоплено.
func (e *ValidationError) Empty() bool {
	return e.Message == "" && len(e.Fields) == 0
}

// OrNil возвращает nil, если ошибок нет, иначе саму ошибку.
func (e *ValidationError) OrNil() error {
	if e.Empty() {
		return nil
	}
	return e
}

func (e *ValidationError) Error() string {
	if len(e.Fields) == 0 {
		if e.Message == "" {
			return "validation failed"
		}
		return e.Message
	}
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, k+": "+e.Fields[k])
	}
	msg := strings.Join(parts, "; ")
	if e.Message != "" {
		msg = e.Message + ": " + msg
	}
	return msg
}

// IsValidation сообщает, является ли err ошибкой валидации.
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/GoArmGo/RecipeApp/internal/domain"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

// TokenStorage хранит токены доступа в таблице auth_tokens.
type TokenStorage struct {
	db     *sqlx.DB
	logger *slog.Logger
}

func NewTokenStorage(db *sqlx.DB, logger *slog.Logger) *TokenStorage {
	return &TokenStorage{db: db, logger: logger}
}

// GetOrCreateToken вставляет candidateKey, если у пользователя еще нет токена, и читает действующий.
// Конкурентные вызовы для одного пользователя сходятся к одному ключу за счет UNIQUE(user_id).
func (s *TokenStorage) GetOrCreateToken(ctx context.Context, userID uuid.UUID, candidateKey string) (*domain.AuthToken, error) {
	start := time.Now()

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO auth_tokens (key, user_id, created_at)
		VALUES ($1, $2, $3)
		ON CONFLICT (user_id) DO NOTHING
	`, candidateKey, userID, time.Now().UTC())
	if err != nil {
		s.logger.Error("failed to insert auth token", "user_id", userID, "error", err)
		return nil, fmt.Errorf("insert auth token: %w", err)
	}

	var token domain.AuthToken
	err = s.db.GetContext(ctx, &token, `SELECT key, user_id, created_at FROM auth_tokens WHERE user_id = $1`, userID)
	if err != nil {
		s.logger.Error("failed to select auth token", "user_id", userID, "error", err)
		return nil, fmt.Errorf("select auth token: %w", err)
	}

	s.logger.Info("auth token issued",
		"user_id", userID,
		"reused", token.Key != candidateKey,
		"duration_ms", time.Since(start).Milliseconds(),
	)
	return &token, nil
}

// GetToken ищет токен по ключу.
func (s *TokenStorage) GetToken(ctx context.Context, key string) (*domain.AuthToken, error) {
	var token domain.AuthToken
	err := s.db.GetContext(ctx, &token, `SELECT key, user_id, created_at FROM auth_tokens WHERE key = $1`, key)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		s.logger.Error("failed to select auth token by key", "error", err)
		return nil, fmt.Errorf("select auth token: %w", err)
	}
	return &token, nil
}

// DeleteUserToken удаляет токен пользователя. Повторный вызов не является ошибкой.
func (s *TokenStorage) DeleteUserToken(ctx context.Context, userID uuid.UUID) (string, error) {
	var key string
	err := s.db.GetContext(ctx, &key, `DELETE FROM auth_tokens WHERE user_id = $1 RETURNING key`, userID)
	if errors.Is(err, sql.ErrNoRows) {
		return "", nil
	}
	if err != nil {
		s.logger.Error("failed to delete auth token", "user_id", userID, "error", err)
		return "", fmt.Errorf("delete auth token: %w", err)
	}

	s.logger.Info("auth token revoked", "user_id", userID)
	return key, nil
}

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

const userColumns = `id, email, name, password_hash, is_active, is_staff, is_superuser, created_at, updated_at`

// UserStorage реализует интерфейс ports.UserStorage поверх sqlx
type UserStorage struct {
	db     *sqlx.DB
	logger *slog.Logger
}

// NewUserStorage создает новый экземпляр UserStorage
func NewUserStorage(db *sqlx.DB, logger *slog.Logger) *UserStorage {
	return &UserStorage{db: db, logger: logger}
}

// CreateUser сохраняет нового пользователя. Занятый email дает domain.ErrDuplicate.
func (s *UserStorage) CreateUser(ctx context.Context, user *domain.User) error {
	start := time.Now()

	if user.ID == uuid.Nil {
		user.ID = uuid.New()
	}
	now := time.Now().UTC()
	user.CreatedAt, user.UpdatedAt = now, now

	_, err := s.db.NamedExecContext(ctx, `
		INSERT INTO users (id, email, name, password_hash, is_active, is_staff, is_superuser, created_at, updated_at)
		VALUES (:id, :email, :name, :password_hash, :is_active, :is_staff, :is_superuser, :created_at, :updated_at)
	`, user)
	if err != nil {
		err = mapPgError(err)
		if errors.Is(err, domain.ErrDuplicate) {
			s.logger.Warn("user email already registered", "email", user.Email)
			return err
		}
		s.logger.Error("failed to insert user", "email", user.Email, "error", err)
		return fmt.Errorf("insert user: %w", err)
	}

	s.logger.Info("user created",
		"user_id", user.ID,
		"duration_ms", time.Since(start).Milliseconds(),
	)
	return nil
}

// GetUserByEmail ищет пользователя по нормализованному email.
func (s *UserStorage) GetUserByEmail(ctx context.Context, email string) (*domain.User, error) {
	return s.getUser(ctx, `SELECT `+userColumns+` FROM users WHERE email = $1`, email)
}

// GetUserByID ищет пользователя по идентификатору.
func (s *UserStorage) GetUserByID(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	return s.getUser(ctx, `SELECT `+userColumns+` FROM users WHERE id = $1`, id)
}

func (s *UserStorage) getUser(ctx context.Context, query string, arg any) (*domain.User, error) {
	start := time.Now()

	var user domain.User
	err := s.db.GetContext(ctx, &user, query, arg)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		s.logger.Error("failed to select user", "error", err)
		return nil, fmt.Errorf("select user: %w", err)
	}

	s.logger.Debug("user retrieved",
		"user_id", user.ID,
		"duration_ms", time.Since(start).Milliseconds(),
	)
	return &user, nil
}

// UpdateUser сохраняет изменяемые поля профиля.
func (s *UserStorage) UpdateUser(ctx context.Context, user *domain.User) error {
	start := time.Now()

	user.UpdatedAt = time.Now().UTC()
	res, err := s.db.NamedExecContext(ctx, `
		UPDATE users
		SET name = :name, password_hash = :password_hash, is_active = :is_active,
		    is_staff = :is_staff, is_superuser = :is_superuser, updated_at = :updated_at
		WHERE id = :id
	`, user)
	if err != nil {
		s.logger.Error("failed to update user", "user_id", user.ID, "error", err)
		return fmt.Errorf("update user: %w", err)
	}
	if err := expectAffected(res); err != nil {
		return err
	}

	s.logger.Info("user updated",
		"user_id", user.ID,
		"duration_ms", time.Since(start).Milliseconds(),
	)
	return nil
}

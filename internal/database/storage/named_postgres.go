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

// namedTable описывает таблицу ресурса и его таблицу связей с рецептами.
type namedTable struct {
	name       string // tags
	linkTable  string // recipe_tags
	linkColumn string // tag_id
}

var (
	tagTable        = namedTable{name: "tags", linkTable: "recipe_tags", linkColumn: "tag_id"}
	ingredientTable = namedTable{name: "ingredients", linkTable: "recipe_ingredients", linkColumn: "ingredient_id"}
)

// NamedStorage хранилище меток или ингредиентов поверх sqlx.
// Каждый запрос ограничен user_id владельца.
type NamedStorage[T domain.Named] struct {
	db     *sqlx.DB
	logger *slog.Logger
	table  namedTable
}

// NewTagStorage создает хранилище меток.
func NewTagStorage(db *sqlx.DB, logger *slog.Logger) *NamedStorage[domain.Tag] {
	return &NamedStorage[domain.Tag]{db: db, logger: logger.With("table", tagTable.name), table: tagTable}
}

// NewIngredientStorage создает хранилище ингредиентов.
func NewIngredientStorage(db *sqlx.DB, logger *slog.Logger) *NamedStorage[domain.Ingredient] {
	return &NamedStorage[domain.Ingredient]{db: db, logger: logger.With("table", ingredientTable.name), table: ingredientTable}
}

func (s *NamedStorage[T]) Create(ctx context.Context, item *T) error {
	start := time.Now()

	rec := domain.Tag(*item)
	if rec.ID == uuid.Nil {
		rec.ID = uuid.New()
	}
	rec.CreatedAt = time.Now().UTC()

	query := fmt.Sprintf(`INSERT INTO %s (id, user_id, name, created_at) VALUES ($1, $2, $3, $4)`, s.table.name)
	if _, err := s.db.ExecContext(ctx, query, rec.ID, rec.UserID, rec.Name, rec.CreatedAt); err != nil {
		s.logger.Error("failed to insert record", "user_id", rec.UserID, "error", err)
		return fmt.Errorf("insert into %s: %w", s.table.name, err)
	}
	*item = T(rec)

	s.logger.Info("record created",
		"id", rec.ID,
		"user_id", rec.UserID,
		"duration_ms", time.Since(start).Milliseconds(),
	)
	return nil
}

// List возвращает записи владельца по убыванию имени.
// assignedOnly оставляет только записи, привязанные хотя бы к одному рецепту.
func (s *NamedStorage[T]) List(ctx context.Context, userID uuid.UUID, assignedOnly bool) ([]T, error) {
	start := time.Now()

	query := fmt.Sprintf(`SELECT t.id, t.user_id, t.name, t.created_at FROM %s t WHERE t.user_id = $1`, s.table.name)
	if assignedOnly {
		query += fmt.Sprintf(` AND EXISTS (SELECT 1 FROM %s l WHERE l.%s = t.id)`, s.table.linkTable, s.table.linkColumn)
	}
	query += ` ORDER BY t.name DESC, t.id DESC`

	items := []T{}
	if err := s.db.SelectContext(ctx, &items, query, userID); err != nil {
		s.logger.Error("failed to list records", "user_id", userID, "error", err)
		return nil, fmt.Errorf("select from %s: %w", s.table.name, err)
	}

	s.logger.Debug("records listed",
		"user_id", userID,
		"count", len(items),
		"assigned_only", assignedOnly,
		"duration_ms", time.Since(start).Milliseconds(),
	)
	return items, nil
}

func (s *NamedStorage[T]) Get(ctx context.Context, userID, id uuid.UUID) (*T, error) {
	var item T
	query := fmt.Sprintf(`SELECT id, user_id, name, created_at FROM %s WHERE id = $1 AND user_id = $2`, s.table.name)
	err := s.db.GetContext(ctx, &item, query, id, userID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		s.logger.Error("failed to get record", "id", id, "error", err)
		return nil, fmt.Errorf("select from %s: %w", s.table.name, err)
	}
	return &item, nil
}

// FindByIDs возвращает записи владельца из списка ids, упорядоченные по имени.
func (s *NamedStorage[T]) FindByIDs(ctx context.Context, userID uuid.UUID, ids []uuid.UUID) ([]T, error) {
	items := []T{}
	if len(ids) == 0 {
		return items, nil
	}

	query, args, err := sqlx.In(
		fmt.Sprintf(`SELECT id, user_id, name, created_at FROM %s WHERE user_id = ? AND id IN (?) ORDER BY name DESC, id DESC`, s.table.name),
		userID, ids,
	)
	if err != nil {
		return nil, fmt.Errorf("build %s lookup: %w", s.table.name, err)
	}

	if err := s.db.SelectContext(ctx, &items, s.db.Rebind(query), args...); err != nil {
		s.logger.Error("failed to find records by ids", "user_id", userID, "error", err)
		return nil, fmt.Errorf("select from %s: %w", s.table.name, err)
	}
	return items, nil
}

func (s *NamedStorage[T]) Update(ctx context.Context, item *T) error {
	rec := domain.Tag(*item)

	query := fmt.Sprintf(`UPDATE %s SET name = $1 WHERE id = $2 AND user_id = $3`, s.table.name)
	res, err := s.db.ExecContext(ctx, query, rec.Name, rec.ID, rec.UserID)
	if err != nil {
		s.logger.Error("failed to update record", "id", rec.ID, "error", err)
		return fmt.Errorf("update %s: %w", s.table.name, err)
	}
	if err := expectAffected(res); err != nil {
		return err
	}

	s.logger.Info("record updated", "id", rec.ID, "user_id", rec.UserID)
	return nil
}

func (s *NamedStorage[T]) Delete(ctx context.Context, userID, id uuid.UUID) error {
	query := fmt.Sprintf(`DELETE FROM %s WHERE id = $1 AND user_id = $2`, s.table.name)
	res, err := s.db.ExecContext(ctx, query, id, userID)
	if err != nil {
		s.logger.Error("failed to delete record", "id", id, "error", err)
		return fmt.Errorf("delete from %s: %w", s.table.name, err)
	}
	if err := expectAffected(res); err != nil {
		return err
	}

	s.logger.Info("record deleted", "id", id, "user_id", userID)
	return nil
}

package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/GoArmGo/RecipeApp/internal/domain"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
)

const recipeColumns = `r.id, r.user_id, r.title, r.time_minutes, r.price, r.difficulty, r.link, r.image, r.created_at, r.updated_at`

// RecipeStorage реализует ports.RecipeStorage. Рецепт и его связи пишутся в одной транзакции.
type RecipeStorage struct {
	db     *sqlx.DB
	logger *slog.Logger
}

func NewRecipeStorage(db *sqlx.DB, logger *slog.Logger) *RecipeStorage {
	return &RecipeStorage{db: db, logger: logger}
}

// CreateRecipe сохраняет рецепт и связи с метками и ингредиентами.
func (s *RecipeStorage) CreateRecipe(ctx context.Context, recipe *domain.Recipe) error {
	start := time.Now()

	if recipe.ID == uuid.Nil {
		recipe.ID = uuid.New()
	}
	now := time.Now().UTC()
	recipe.CreatedAt, recipe.UpdatedAt = now, now

	err := withTx(ctx, s.db, func(tx *sqlx.Tx) error {
		_, err := tx.NamedExecContext(ctx, `
			INSERT INTO recipes (id, user_id, title, time_minutes, price, difficulty, link, image, created_at, updated_at)
			VALUES (:id, :user_id, :title, :time_minutes, :price, :difficulty, :link, :image, :created_at, :updated_at)
		`, recipe)
		if err != nil {
			return fmt.Errorf("insert recipe: %w", err)
		}
		return writeLinks(ctx, tx, recipe)
	})
	if err != nil {
		s.logger.Error("failed to create recipe", "user_id", recipe.UserID, "error", err)
		return err
	}

	s.logger.Info("recipe created",
		"recipe_id", recipe.ID,
		"user_id", recipe.UserID,
		"tags", len(recipe.TagIDs),
		"ingredients", len(recipe.IngredientIDs),
		"duration_ms", time.Since(start).Milliseconds(),
	)
	return nil
}

// GetRecipe возвращает рецепт владельца вместе с id связанных записей.
func (s *RecipeStorage) GetRecipe(ctx context.Context, userID, id uuid.UUID) (*domain.Recipe, error) {
	var recipe domain.Recipe
	err := s.db.GetContext(ctx, &recipe,
		`SELECT `+recipeColumns+` FROM recipes r WHERE r.id = $1 AND r.user_id = $2`, id, userID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		s.logger.Error("failed to get recipe", "recipe_id", id, "error", err)
		return nil, fmt.Errorf("select recipe: %w", err)
	}

	list := []domain.Recipe{recipe}
	if err := s.loadLinks(ctx, list); err != nil {
		return nil, err
	}
	return &list[0], nil
}

// ListRecipes возвращает рецепты владельца, новые первыми.
func (s *RecipeStorage) ListRecipes(ctx context.Context, userID uuid.UUID, filter domain.RecipeFilter) ([]domain.Recipe, error) {
	start := time.Now()

	var (
		where = []string{"r.user_id = ?"}
		args  = []any{userID}
	)
	if len(filter.TagIDs) > 0 {
		where = append(where, "EXISTS (SELECT 1 FROM recipe_tags rt WHERE rt.recipe_id = r.id AND rt.tag_id IN (?))")
		args = append(args, filter.TagIDs)
	}
	if len(filter.IngredientIDs) > 0 {
		where = append(where, "EXISTS (SELECT 1 FROM recipe_ingredients ri WHERE ri.recipe_id = r.id AND ri.ingredient_id IN (?))")
		args = append(args, filter.IngredientIDs)
	}

	query, args, err := sqlx.In(
		`SELECT `+recipeColumns+` FROM recipes r WHERE `+strings.Join(where, " AND ")+` ORDER BY r.created_at DESC, r.id DESC`,
		args...,
	)
	if err != nil {
		return nil, fmt.Errorf("build recipe list query: %w", err)
	}

	recipes := []domain.Recipe{}
	if err := s.db.SelectContext(ctx, &recipes, s.db.Rebind(query), args...); err != nil {
		s.logger.Error("failed to list recipes", "user_id", userID, "error", err)
		return nil, fmt.Errorf("select recipes: %w", err)
	}
	if err := s.loadLinks(ctx, recipes); err != nil {
		return nil, err
	}

	s.logger.Debug("recipes listed",
		"user_id", userID,
		"count", len(recipes),
		"duration_ms", time.Since(start).Milliseconds(),
	)
	return recipes, nil
}

// UpdateRecipe перезаписывает поля рецепта и полностью заменяет его связи.
func (s *RecipeStorage) UpdateRecipe(ctx context.Context, recipe *domain.Recipe) error {
	start := time.Now()

	recipe.UpdatedAt = time.Now().UTC()
	err := withTx(ctx, s.db, func(tx *sqlx.Tx) error {
		res, err := tx.NamedExecContext(ctx, `
			UPDATE recipes
			SET title = :title, time_minutes = :time_minutes, price = :price, difficulty = :difficulty,
			    link = :link, image = :image, updated_at = :updated_at
			WHERE id = :id AND user_id = :user_id
		`, recipe)
		if err != nil {
			return fmt.Errorf("update recipe: %w", err)
		}
		if err := expectAffected(res); err != nil {
			return err
		}

		if _, err := tx.ExecContext(ctx, `DELETE FROM recipe_tags WHERE recipe_id = $1`, recipe.ID); err != nil {
			return fmt.Errorf("clear recipe tags: %w", err)
		}
		if _, err := tx.ExecContext(ctx, `DELETE FROM recipe_ingredients WHERE recipe_id = $1`, recipe.ID); err != nil {
			return fmt.Errorf("clear recipe ingredients: %w", err)
		}
		return writeLinks(ctx, tx, recipe)
	})
	if errors.Is(err, domain.ErrNotFound) {
		return err
	}
	if err != nil {
		s.logger.Error("failed to update recipe", "recipe_id", recipe.ID, "error", err)
		return err
	}

	s.logger.Info("recipe updated",
		"recipe_id", recipe.ID,
		"duration_ms", time.Since(start).Milliseconds(),
	)
	return nil
}

// DeleteRecipe удаляет рецепт владельца. Связи удаляются каскадно.
func (s *RecipeStorage) DeleteRecipe(ctx context.Context, userID, id uuid.UUID) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM recipes WHERE id = $1 AND user_id = $2`, id, userID)
	if err != nil {
		s.logger.Error("failed to delete recipe", "recipe_id", id, "error", err)
		return fmt.Errorf("delete recipe: %w", err)
	}
	if err := expectAffected(res); err != nil {
		return err
	}

	s.logger.Info("recipe deleted", "recipe_id", id, "user_id", userID)
	return nil
}

// writeLinks вставляет связи, отбрасывая id, не принадлежащие владельцу рецепта.
func writeLinks(ctx context.Context, tx *sqlx.Tx, recipe *domain.Recipe) error {
	if len(recipe.TagIDs) > 0 {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO recipe_tags (recipe_id, tag_id)
			SELECT $1, id FROM tags WHERE user_id = $2 AND id = ANY($3::uuid[])
		`, recipe.ID, recipe.UserID, pq.Array(idStrings(recipe.TagIDs)))
		if err != nil {
			return fmt.Errorf("insert recipe tags: %w", err)
		}
	}
	if len(recipe.IngredientIDs) > 0 {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO recipe_ingredients (recipe_id, ingredient_id)
			SELECT $1, id FROM ingredients WHERE user_id = $2 AND id = ANY($3::uuid[])
		`, recipe.ID, recipe.UserID, pq.Array(idStrings(recipe.IngredientIDs)))
		if err != nil {
			return fmt.Errorf("insert recipe ingredients: %w", err)
		}
	}
	return nil
}

type recipeLink struct {
	RecipeID uuid.UUID `db:"recipe_id"`
	TargetID uuid.UUID `db:"target_id"`
}

// loadLinks заполняет TagIDs и IngredientIDs у переданных рецептов.
func (s *RecipeStorage) loadLinks(ctx context.Context, recipes []domain.Recipe) error {
	if len(recipes) == 0 {
		return nil
	}

	ids := make([]uuid.UUID, len(recipes))
	index := make(map[uuid.UUID]int, len(recipes))
	for i := range recipes {
		ids[i] = recipes[i].ID
		index[recipes[i].ID] = i
		recipes[i].TagIDs = []uuid.UUID{}
		recipes[i].IngredientIDs = []uuid.UUID{}
	}

	tagLinks, err := s.selectLinks(ctx, `SELECT recipe_id, tag_id AS target_id FROM recipe_tags WHERE recipe_id IN (?) ORDER BY tag_id`, ids)
	if err != nil {
		return fmt.Errorf("select recipe tags: %w", err)
	}
	for _, l := range tagLinks {
		r := &recipes[index[l.RecipeID]]
		r.TagIDs = append(r.TagIDs, l.TargetID)
	}

	ingredientLinks, err := s.selectLinks(ctx, `SELECT recipe_id, ingredient_id AS target_id FROM recipe_ingredients WHERE recipe_id IN (?) ORDER BY ingredient_id`, ids)
	if err != nil {
		return fmt.Errorf("select recipe ingredients: %w", err)
	}
	for _, l := range ingredientLinks {
		r := &recipes[index[l.RecipeID]]
		r.IngredientIDs = append(r.IngredientIDs, l.TargetID)
	}
	return nil
}

func (s *RecipeStorage) selectLinks(ctx context.Context, query string, recipeIDs []uuid.UUID) ([]recipeLink, error) {
	q, args, err := sqlx.In(query, recipeIDs)
	if err != nil {
		return nil, err
	}
	var links []recipeLink
	if err := s.db.SelectContext(ctx, &links, s.db.Rebind(q), args...); err != nil {
		return nil, err
	}
	return links, nil
}

func idStrings(ids []uuid.UUID) []string {
	out := make([]string, len(ids))
	for i, id := range ids {
		out[i] = id.String()
	}
	return out
}

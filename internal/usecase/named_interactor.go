package usecase

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/GoArmGo/RecipeApp/internal/core/ports"
	"github.com/GoArmGo/RecipeApp/internal/domain"
	"github.com/google/uuid"
)

// namedUseCase implements NamedUseCase
type namedUseCase[T domain.Named] struct {
	storage ports.NamedStorage[T]
	logger  *slog.Logger
}

// NewTagUseCase создает бизнес-логику меток
func NewTagUseCase(storage ports.TagStorage, logger *slog.Logger) NamedUseCase[domain.Tag] {
	return &namedUseCase[domain.Tag]{storage: storage, logger: logger.With("resource", "tag")}
}

// NewIngredientUseCase создает бизнес-логику ингредиентов
func NewIngredientUseCase(storage ports.IngredientStorage, logger *slog.Logger) NamedUseCase[domain.Ingredient] {
	return &namedUseCase[domain.Ingredient]{storage: storage, logger: logger.With("resource", "ingredient")}
}

func (uc *namedUseCase[T]) List(ctx context.Context, userID uuid.UUID, assignedOnly bool) ([]T, error) {
	items, err := uc.storage.List(ctx, userID, assignedOnly)
	if err != nil {
		return nil, fmt.Errorf("usecase: list: %w", err)
	}
	return items, nil
}

func (uc *namedUseCase[T]) Create(ctx context.Context, userID uuid.UUID, name string) (*T, error) {
	name, err := domain.NormalizeName(name)
	if err != nil {
		return nil, err
	}

	item := T(domain.Tag{UserID: userID, Name: name})
	if err := uc.storage.Create(ctx, &item); err != nil {
		return nil, fmt.Errorf("usecase: create: %w", err)
	}
	return &item, nil
}

func (uc *namedUseCase[T]) Update(ctx context.Context, userID, id uuid.UUID, name *string) (*T, error) {
	item, err := uc.storage.Get(ctx, userID, id)
	if err != nil {
		return nil, err
	}
	if name == nil {
		return item, nil
	}

	normalized, err := domain.NormalizeName(*name)
	if err != nil {
		return nil, err
	}
	rec := domain.Tag(*item)
	rec.Name = normalized
	*item = T(rec)

	if err := uc.storage.Update(ctx, item); err != nil {
		return nil, fmt.Errorf("usecase: update: %w", err)
	}
	return item, nil
}

func (uc *namedUseCase[T]) Delete(ctx context.Context, userID, id uuid.UUID) error {
	if err := uc.storage.Delete(ctx, userID, id); err != nil {
		return err
	}
	uc.logger.Info("record deleted", "id", id, "user_id", userID)
	return nil
}

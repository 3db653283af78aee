package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/GoArmGo/RecipeApp/internal/core/ports"
	"github.com/GoArmGo/RecipeApp/internal/domain"
	"github.com/GoArmGo/RecipeApp/internal/messaging/payloads"
	"github.com/google/uuid"
)

// imageExtensions допустимые типы изображений и расширения ключей.
var imageExtensions = map[string]string{
	"image/jpeg": ".jpg",
	"image/png":  ".png",
	"image/gif":  ".gif",
	"image/webp": ".webp",
}

// recipeUseCase implements RecipeUseCase
type recipeUseCase struct {
	recipes       ports.RecipeStorage
	tags          ports.TagStorage
	ingredients   ports.IngredientStorage
	files         ports.FileStorage // nil, если загрузка изображений отключена
	cleanup       ImageCleanupUseCase
	maxImageBytes int64
	logger        *slog.Logger
}

// NewRecipeUseCase создает новый экземпляр RecipeUseCase
func NewRecipeUseCase(
	recipes ports.RecipeStorage,
	tags ports.TagStorage,
	ingredients ports.IngredientStorage,
	files ports.FileStorage,
	cleanup ImageCleanupUseCase,
	maxImageBytes int64,
	logger *slog.Logger,
) RecipeUseCase {
	return &recipeUseCase{
		recipes:       recipes,
		tags:          tags,
		ingredients:   ingredients,
		files:         files,
		cleanup:       cleanup,
		maxImageBytes: maxImageBytes,
		logger:        logger,
	}
}

func (uc *recipeUseCase) List(ctx context.Context, userID uuid.UUID, filter domain.RecipeFilter) ([]domain.Recipe, error) {
	recipes, err := uc.recipes.ListRecipes(ctx, userID, filter)
	if err != nil {
		return nil, fmt.Errorf("usecase: list recipes: %w", err)
	}
	return recipes, nil
}

func (uc *recipeUseCase) Get(ctx context.Context, userID, id uuid.UUID) (*domain.RecipeDetail, error) {
	recipe, err := uc.recipes.GetRecipe(ctx, userID, id)
	if err != nil {
		return nil, err
	}
	return uc.detail(ctx, recipe)
}

func (uc *recipeUseCase) Create(ctx context.Context, userID uuid.UUID, changes domain.RecipeChanges) (*domain.RecipeDetail, error) {
	verr := &domain.ValidationError{}
	requireFields(verr, changes)
	if err := verr.OrNil(); err != nil {
		return nil, err
	}

	recipe := domain.NewRecipe(userID, changes)
	if err := uc.validate(ctx, recipe); err != nil {
		return nil, err
	}

	if err := uc.recipes.CreateRecipe(ctx, recipe); err != nil {
		return nil, fmt.Errorf("usecase: create recipe: %w", err)
	}

	uc.logger.Info("recipe created", "recipe_id", recipe.ID, "user_id", userID)
	return uc.detail(ctx, recipe)
}

func (uc *recipeUseCase) Update(ctx context.Context, userID, id uuid.UUID, changes domain.RecipeChanges, replace bool) (*domain.RecipeDetail, error) {
	recipe, err := uc.recipes.GetRecipe(ctx, userID, id)
	if err != nil {
		return nil, err
	}

	if replace {
		verr := &domain.ValidationError{}
		requireFields(verr, changes)
		if err := verr.OrNil(); err != nil {
			return nil, err
		}
	}

	changes.Apply(recipe)
	if err := uc.validate(ctx, recipe); err != nil {
		return nil, err
	}

	if err := uc.recipes.UpdateRecipe(ctx, recipe); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("usecase: update recipe: %w", err)
	}
	return uc.detail(ctx, recipe)
}

func (uc *recipeUseCase) Delete(ctx context.Context, userID, id uuid.UUID) error {
	recipe, err := uc.recipes.GetRecipe(ctx, userID, id)
	if err != nil {
		return err
	}
	if err := uc.recipes.DeleteRecipe(ctx, userID, id); err != nil {
		return err
	}

	uc.cleanup.Schedule(ctx, payloads.ImageCleanupPayload{Key: recipe.Image, RecipeID: id, UserID: userID})
	uc.logger.Info("recipe deleted", "recipe_id", id, "user_id", userID)
	return nil
}

func (uc *recipeUseCase) UploadImage(ctx context.Context, userID, id uuid.UUID, img ImageUpload) (*domain.Recipe, error) {
	if uc.files == nil {
		return nil, domain.ErrUnavailable
	}

	recipe, err := uc.recipes.GetRecipe(ctx, userID, id)
	if err != nil {
		return nil, err
	}

	ext, ok := imageExtensions[img.ContentType]
	if !ok {
		return nil, domain.NewValidationError("image", "Upload a valid image. The file you uploaded was either not an image or a corrupted image.")
	}
	if img.Size > uc.maxImageBytes {
		return nil, domain.NewValidationError("image", fmt.Sprintf("Ensure the file size is no more than %d bytes.", uc.maxImageBytes))
	}

	key := fmt.Sprintf("recipes/%s/%s/%s%s", userID, recipe.ID, uuid.New(), ext)
	if err := uc.files.UploadFile(ctx, key, img.Body, img.ContentType); err != nil {
		return nil, fmt.Errorf("usecase: upload image: %w", err)
	}

	oldKey := recipe.Image
	recipe.Image = key
	if err := uc.recipes.UpdateRecipe(ctx, recipe); err != nil {
		// запись не обновилась - загруженный объект никому не принадлежит
		uc.cleanup.Schedule(ctx, payloads.ImageCleanupPayload{Key: key, RecipeID: id, UserID: userID})
		return nil, fmt.Errorf("usecase: save image key: %w", err)
	}

	uc.cleanup.Schedule(ctx, payloads.ImageCleanupPayload{Key: oldKey, RecipeID: id, UserID: userID})
	uc.logger.Info("recipe image uploaded", "recipe_id", id, "key", key, "size", img.Size)
	return recipe, nil
}

func (uc *recipeUseCase) ImageURL(key string) string {
	if key == "" || uc.files == nil {
		return ""
	}
	return uc.files.PublicURL(key)
}

// validate проверяет поля рецепта и принадлежность меток и ингредиентов владельцу.
func (uc *recipeUseCase) validate(ctx context.Context, recipe *domain.Recipe) error {
	verr := &domain.ValidationError{}
	var fieldErr *domain.ValidationError
	if err := recipe.Validate(); errors.As(err, &fieldErr) {
		for f, msg := range fieldErr.Fields {
			verr.Add(f, msg)
		}
	}

	tags, err := uc.tags.FindByIDs(ctx, recipe.UserID, recipe.TagIDs)
	if err != nil {
		return fmt.Errorf("usecase: load tags: %w", err)
	}
	if missing, ok := missingID(recipe.TagIDs, tagIDs(tags)); ok {
		verr.Add("tags", fmt.Sprintf("Invalid pk %q - object does not exist.", missing.String()))
	}

	ingredients, err := uc.ingredients.FindByIDs(ctx, recipe.UserID, recipe.IngredientIDs)
	if err != nil {
		return fmt.Errorf("usecase: load ingredients: %w", err)
	}
	if missing, ok := missingID(recipe.IngredientIDs, tagIDs(ingredients)); ok {
		verr.Add("ingredients", fmt.Sprintf("Invalid pk %q - object does not exist.", missing.String()))
	}

	return verr.OrNil()
}

func (uc *recipeUseCase) detail(ctx context.Context, recipe *domain.Recipe) (*domain.RecipeDetail, error) {
	tags, err := uc.tags.FindByIDs(ctx, recipe.UserID, recipe.TagIDs)
	if err != nil {
		return nil, fmt.Errorf("usecase: load tags: %w", err)
	}
	ingredients, err := uc.ingredients.FindByIDs(ctx, recipe.UserID, recipe.IngredientIDs)
	if err != nil {
		return nil, fmt.Errorf("usecase: load ingredients: %w", err)
	}
	return &domain.RecipeDetail{Recipe: *recipe, Tags: tags, Ingredients: ingredients}, nil
}

func requireFields(verr *domain.ValidationError, c domain.RecipeChanges) {
	if c.Title == nil {
		verr.Add("title", "This field is required.")
	}
	if c.TimeMinutes == nil {
		verr.Add("time_minutes", "This field is required.")
	}
}

func tagIDs[T domain.Named](items []T) map[uuid.UUID]struct{} {
	out := make(map[uuid.UUID]struct{}, len(items))
	for _, it := range items {
		out[domain.Tag(it).ID] = struct{}{}
	}
	return out
}

// missingID возвращает первый id из want, которого нет в have.
func missingID(want []uuid.UUID, have map[uuid.UUID]struct{}) (uuid.UUID, bool) {
	for _, id := range want {
		if _, ok := have[id]; !ok {
			return id, true
		}
	}
	return uuid.Nil, false
}

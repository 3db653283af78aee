package handler

import (
	"github.com/GoArmGo/RecipeApp/internal/domain"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// --- пользователи ---

type createUserRequest struct {
	Email    string `json:"email" validate:"required,email,max=255"`
	Password string `json:"password" validate:"required,min=6,max=72"`
	Name     string `json:"name" validate:"max=255"`
}

type tokenRequest struct {
	Email    string `json:"email" validate:"required"`
	Password string `json:"password" validate:"required"`
}

// profileRequest поля профиля; nil - поле не передано.
type profileRequest struct {
	Name     *string `json:"name" validate:"omitempty,max=255"`
	Password *string `json:"password" validate:"omitempty,min=6,max=72"`
}

type userResponse struct {
	Email string `json:"email"`
	Name  string `json:"name"`
}

type tokenResponse struct {
	Token string `json:"token"`
}

func toUserResponse(u *domain.User) userResponse {
	return userResponse{Email: u.Email, Name: u.Name}
}

// --- метки и ингредиенты ---

type namedRequest struct {
	Name *string `json:"name"`
}

type namedResponse struct {
	ID   uuid.UUID `json:"id"`
	Name string    `json:"name"`
}

func toNamedResponse[T domain.Named](item T) namedResponse {
	t := domain.Tag(item)
	return namedResponse{ID: t.ID, Name: t.Name}
}

func toNamedResponses[T domain.Named](items []T) []namedResponse {
	out := make([]namedResponse, 0, len(items))
	for _, item := range items {
		out = append(out, toNamedResponse(item))
	}
	return out
}

// --- рецепты ---

type recipeRequest struct {
	Title       *string          `json:"title" validate:"omitempty,max=255"`
	TimeMinutes *int             `json:"time_minutes" validate:"omitempty,min=0"`
	Price       *decimal.Decimal `json:"price"`
	Difficulty  *string          `json:"difficulty" validate:"omitempty,oneof=easy medium hard"`
	Link        *string          `json:"link" validate:"omitempty,max=255"`
	Tags        *[]uuid.UUID     `json:"tags"`
	Ingredients *[]uuid.UUID     `json:"ingredients"`
}

func (req recipeRequest) changes() domain.RecipeChanges {
	c := domain.RecipeChanges{
		Title:         req.Title,
		TimeMinutes:   req.TimeMinutes,
		Price:         req.Price,
		Link:          req.Link,
		TagIDs:        req.Tags,
		IngredientIDs: req.Ingredients,
	}
	if req.Difficulty != nil {
		d := domain.Difficulty(*req.Difficulty)
		c.Difficulty = &d
	}
	return c
}

// recipeResponse представление рецепта в списке и в ответах на запись: связи передаются идентификаторами.
type recipeResponse struct {
	ID          uuid.UUID   `json:"id"`
	Title       string      `json:"title"`
	TimeMinutes int         `json:"time_minutes"`
	Price       string      `json:"price"`
	Difficulty  string      `json:"difficulty"`
	Link        string      `json:"link"`
	Image       *string     `json:"image"`
	Tags        []uuid.UUID `json:"tags"`
	Ingredients []uuid.UUID `json:"ingredients"`
}

// recipeDetailResponse развернутое представление с вложенными метками и ингредиентами.
type recipeDetailResponse struct {
	ID          uuid.UUID       `json:"id"`
	Title       string          `json:"title"`
	TimeMinutes int             `json:"time_minutes"`
	Price       string          `json:"price"`
	Difficulty  string          `json:"difficulty"`
	Link        string          `json:"link"`
	Image       *string         `json:"image"`
	Tags        []namedResponse `json:"tags"`
	Ingredients []namedResponse `json:"ingredients"`
}

type recipeImageResponse struct {
	ID    uuid.UUID `json:"id"`
	Image *string   `json:"image"`
}

func idsOrEmpty(ids []uuid.UUID) []uuid.UUID {
	if ids == nil {
		return []uuid.UUID{}
	}
	return ids
}

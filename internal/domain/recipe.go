package domain

import (
	"net/url"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Difficulty уровень сложности рецепта.
type Difficulty string

const (
	DifficultyEasy   Difficulty = "easy"
	DifficultyMedium Difficulty = "medium"
	DifficultyHard   Difficulty = "hard"
)

// Valid сообщает, входит ли значение в допустимый набор.
func (d Difficulty) Valid() bool {
	switch d {
	case DifficultyEasy, DifficultyMedium, DifficultyHard:
		return true
	}
	return false
}

// Цена хранится как NUMERIC(5,2): не более двух знаков после запятой и пяти цифр всего.
const (
	PriceDecimalPlaces = 2
	PriceMaxDigits     = 5
)

var priceLimit = decimal.New(1, PriceMaxDigits-PriceDecimalPlaces)

// Recipe рецепт пользователя.
// TagIDs и IngredientIDs хранятся в таблицах связей, а не в строке рецепта.
type Recipe struct {
	ID            uuid.UUID       `db:"id"`
	UserID        uuid.UUID       `db:"user_id"`
	Title         string          `db:"title"`
	TimeMinutes   int             `db:"time_minutes"`
	Price         decimal.Decimal `db:"price"`
	Difficulty    Difficulty      `db:"difficulty"`
	Link          string          `db:"link"`
	Image         string          `db:"image"`
	TagIDs        []uuid.UUID     `db:"-"`
	IngredientIDs []uuid.UUID     `db:"-"`
	CreatedAt     time.Time       `db:"created_at"`
	UpdatedAt     time.Time       `db:"updated_at"`
}

// RecipeDetail рецепт вместе с развернутыми метками и ингредиентами.
type RecipeDetail struct {
	Recipe
	Tags        []Tag
	Ingredients []Ingredient
}

// RecipeFilter условия выборки списка рецептов.
// Пустой список означает отсутствие фильтра; непустой - "хотя бы один из".
type RecipeFilter struct {
	TagIDs        []uuid.UUID
	IngredientIDs []uuid.UUID
}

// RecipeChanges набор изменяемых полей. nil - поле не передано.
type RecipeChanges struct {
	Title         *string
	TimeMinutes   *int
	Price         *decimal.Decimal
	Difficulty    *Difficulty
	Link          *string
	TagIDs        *[]uuid.UUID
	IngredientIDs *[]uuid.UUID
}

// Apply переносит переданные поля в рецепт.
func (c RecipeChanges) Apply(r *Recipe) {
	if c.Title != nil {
		r.Title = strings.TrimSpace(*c.Title)
	}
	if c.TimeMinutes != nil {
		r.TimeMinutes = *c.TimeMinutes
	}
	if c.Price != nil {
		r.Price = *c.Price
	}
	if c.Difficulty != nil {
		r.Difficulty = *c.Difficulty
	}
	if c.Link != nil {
		r.Link = strings.TrimSpace(*c.Link)
	}
	if c.TagIDs != nil {
		r.TagIDs = dedupIDs(*c.TagIDs)
	}
	if c.IngredientIDs != nil {
		r.IngredientIDs = dedupIDs(*c.IngredientIDs)
	}
}

// NewRecipe создает рецепт со значениями по умолчанию и применяет изменения.
func NewRecipe(userID uuid.UUID, c RecipeChanges) *Recipe {
	r := &Recipe{
		ID:         uuid.New(),
		UserID:     userID,
		Price:      decimal.Zero,
		Difficulty: DifficultyEasy,
	}
	c.Apply(r)
	return r
}

// Validate проверяет поля рецепта и возвращает *ValidationError со всеми нарушениями.
func (r *Recipe) Validate() error {
	verr := &ValidationError{}

	switch {
	case r.Title == "":
		verr.Add("title", "This field may not be blank.")
	case utf8.RuneCountInString(r.Title) > MaxNameLength:
		verr.Add("title", "Ensure this field has no more than 255 characters.")
	}

	if r.TimeMinutes < 0 {
		verr.Add("time_minutes", "Ensure this value is greater than or equal to 0.")
	}

	if msg := validatePrice(r.Price); msg != "" {
		verr.Add("price", msg)
	}

	if !r.Difficulty.Valid() {
		verr.Add("difficulty", `"`+string(r.Difficulty)+`" is not a valid choice.`)
	}

	if r.Link != "" && !validLink(r.Link) {
		verr.Add("link", "Enter a valid URL.")
	}

	return verr.OrNil()
}

func validatePrice(p decimal.Decimal) string {
	switch {
	case p.IsNegative():
		return "Ensure this value is greater than or equal to 0."
	case p.Exponent() < -PriceDecimalPlaces:
		return "Ensure that there are no more than 2 decimal places."
	case p.Abs().GreaterThanOrEqual(priceLimit):
		return "Ensure that there are no more than 5 digits in total."
	}
	return ""
}

func validLink(raw string) bool {
	if len(raw) > MaxNameLength {
		return false
	}
	u, err := url.ParseRequestURI(raw)
	if err != nil {
		return false
	}
	return (u.Scheme == "http" || u.Scheme == "https") && u.Host != ""
}

func dedupIDs(ids []uuid.UUID) []uuid.UUID {
	out := make([]uuid.UUID, 0, len(ids))
	seen := make(map[uuid.UUID]struct{}, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}

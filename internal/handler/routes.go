package handler

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/GoArmGo/RecipeApp/internal/domain"
	"github.com/GoArmGo/RecipeApp/internal/usecase"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/httprate"
	"github.com/unrolled/secure"
)

// RouterDeps зависимости HTTP-слоя
type RouterDeps struct {
	Accounts    usecase.AccountUseCase
	Tokens      usecase.TokenUseCase
	Tags        usecase.NamedUseCase[domain.Tag]
	Ingredients usecase.NamedUseCase[domain.Ingredient]
	Recipes     usecase.RecipeUseCase
	Logger      *slog.Logger

	RequestTimeout time.Duration
	// AuthRateLimit запросов в минуту с одного IP на регистрацию и выдачу токена
	AuthRateLimit int
	MaxImageBytes int64
}

// NewRouter собирает маршруты API.
func NewRouter(d RouterDeps) http.Handler {
	users := NewUserHandler(d.Accounts, d.Tokens, d.Logger)
	tags := NewNamedHandler(d.Tags, d.Logger)
	ingredients := NewNamedHandler(d.Ingredients, d.Logger)
	recipes := NewRecipeHandler(d.Recipes, d.MaxImageBytes, d.Logger)

	secureMiddleware := secure.New(secure.Options{
		FrameDeny:          true,
		ContentTypeNosniff: true,
		BrowserXssFilter:   true,
		ReferrerPolicy:     "same-origin",
	})

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(RequestLogger(d.Logger))
	r.Use(middleware.Recoverer)
	if d.RequestTimeout > 0 {
		r.Use(middleware.Timeout(d.RequestTimeout))
	}
	r.Use(secureMiddleware.Handler)

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		respondWithError(w, http.StatusNotFound, "Not found.", d.Logger)
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		respondWithError(w, http.StatusMethodNotAllowed, `Method "`+r.Method+`" not allowed.`, d.Logger)
	})

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		respondWithJSON(w, http.StatusOK, map[string]string{"status": "ok"}, d.Logger)
	})

	// Публичные маршруты с ограничением частоты
	r.Group(func(r chi.Router) {
		if d.AuthRateLimit > 0 {
			r.Use(httprate.LimitByIP(d.AuthRateLimit, time.Minute))
		}
		r.Post("/api/user/create", users.CreateUser)
		r.Post("/api/user/token", users.CreateToken)
	})

	// Маршруты, требующие токен
	r.Group(func(r chi.Router) {
		r.Use(Authenticate(d.Tokens, d.Logger))

		r.Delete("/api/user/token", users.RevokeToken)
		r.Get("/api/user/me", users.Me)
		r.Put("/api/user/me", users.ReplaceMe)
		r.Patch("/api/user/me", users.PatchMe)

		r.Get("/api/recipe/tags", tags.List)
		r.Post("/api/recipe/tags", tags.Create)
		r.Put("/api/recipe/tags/{id}", tags.Replace)
		r.Patch("/api/recipe/tags/{id}", tags.Patch)
		r.Delete("/api/recipe/tags/{id}", tags.Delete)

		r.Get("/api/recipe/ingredients", ingredients.List)
		r.Post("/api/recipe/ingredients", ingredients.Create)
		r.Put("/api/recipe/ingredients/{id}", ingredients.Replace)
		r.Patch("/api/recipe/ingredients/{id}", ingredients.Patch)
		r.Delete("/api/recipe/ingredients/{id}", ingredients.Delete)

		r.Get("/api/recipe/recipes", recipes.List)
		r.Post("/api/recipe/recipes", recipes.Create)
		r.Get("/api/recipe/recipes/{id}", recipes.Get)
		r.Put("/api/recipe/recipes/{id}", recipes.Replace)
		r.Patch("/api/recipe/recipes/{id}", recipes.Patch)
		r.Delete("/api/recipe/recipes/{id}", recipes.Delete)
		r.Post("/api/recipe/recipes/{id}/upload-image", recipes.UploadImage)
	})

	return r
}

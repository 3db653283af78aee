package handler

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/GoArmGo/RecipeApp/internal/domain"
	"github.com/GoArmGo/RecipeApp/internal/usecase"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
)

// NamedHandler обслуживает ресурсы "метки" и "ингредиенты", устроенные одинаково.
type NamedHandler[T domain.Named] struct {
	uc     usecase.NamedUseCase[T]
	logger *slog.Logger
}

// NewNamedHandler создает обработчик для меток или ингредиентов.
func NewNamedHandler[T domain.Named](uc usecase.NamedUseCase[T], logger *slog.Logger) *NamedHandler[T] {
	return &NamedHandler[T]{uc: uc, logger: logger}
}

// List обрабатывает GET /api/recipe/{tags|ingredients}[?assigned_only=1]
func (h *NamedHandler[T]) List(w http.ResponseWriter, r *http.Request) {
	user, ok := UserFromContext(r.Context())
	if !ok {
		respondWithDomainError(w, r, domain.ErrUnauthenticated, h.logger)
		return
	}

	assignedOnly, err := parseFlag(r.URL.Query().Get("assigned_only"))
	if err != nil {
		respondWithDomainError(w, r, domain.NewValidationError("assigned_only", "A valid integer is required."), h.logger)
		return
	}

	items, err := h.uc.List(r.Context(), user.ID, assignedOnly)
	if err != nil {
		respondWithDomainError(w, r, err, h.logger)
		return
	}
	respondWithJSON(w, http.StatusOK, toNamedResponses(items), h.logger)
}

// Create обрабатывает POST /api/recipe/{tags|ingredients}
func (h *NamedHandler[T]) Create(w http.ResponseWriter, r *http.Request) {
	user, ok := UserFromContext(r.Context())
	if !ok {
		respondWithDomainError(w, r, domain.ErrUnauthenticated, h.logger)
		return
	}

	var req namedRequest
	if err := decodeJSON(w, r, &req); err != nil {
		respondWithDomainError(w, r, err, h.logger)
		return
	}
	if req.Name == nil {
		respondWithDomainError(w, r, domain.NewValidationError("name", "This field is required."), h.logger)
		return
	}

	item, err := h.uc.Create(r.Context(), user.ID, *req.Name)
	if err != nil {
		respondWithDomainError(w, r, err, h.logger)
		return
	}
	respondWithJSON(w, http.StatusCreated, toNamedResponse(*item), h.logger)
}

// Replace обрабатывает PUT /api/recipe/{tags|ingredients}/{id}
func (h *NamedHandler[T]) Replace(w http.ResponseWriter, r *http.Request) {
	h.update(w, r, false)
}

// Patch обрабатывает PATCH /api/recipe/{tags|ingredients}/{id}
func (h *NamedHandler[T]) Patch(w http.ResponseWriter, r *http.Request) {
	h.update(w, r, true)
}

func (h *NamedHandler[T]) update(w http.ResponseWriter, r *http.Request, partial bool) {
	user, ok := UserFromContext(r.Context())
	if !ok {
		respondWithDomainError(w, r, domain.ErrUnauthenticated, h.logger)
		return
	}
	id, ok := idParam(r)
	if !ok {
		respondWithDomainError(w, r, domain.ErrNotFound, h.logger)
		return
	}

	var req namedRequest
	if err := decodeJSON(w, r, &req); err != nil {
		respondWithDomainError(w, r, err, h.logger)
		return
	}
	if !partial && req.Name == nil {
		respondWithDomainError(w, r, domain.NewValidationError("name", "This field is required."), h.logger)
		return
	}

	item, err := h.uc.Update(r.Context(), user.ID, id, req.Name)
	if err != nil {
		respondWithDomainError(w, r, err, h.logger)
		return
	}
	respondWithJSON(w, http.StatusOK, toNamedResponse(*item), h.logger)
}

// Delete обрабатывает DELETE /api/recipe/{tags|ingredients}/{id}
func (h *NamedHandler[T]) Delete(w http.ResponseWriter, r *http.Request) {
	user, ok := UserFromContext(r.Context())
	if !ok {
		respondWithDomainError(w, r, domain.ErrUnauthenticated, h.logger)
		return
	}
	id, ok := idParam(r)
	if !ok {
		respondWithDomainError(w, r, domain.ErrNotFound, h.logger)
		return
	}

	if err := h.uc.Delete(r.Context(), user.ID, id); err != nil {
		respondWithDomainError(w, r, err, h.logger)
		return
	}
	respondNoContent(w)
}

// idParam разбирает {id} из пути. Некорректный идентификатор не может указывать на запись.
func idParam(r *http.Request) (uuid.UUID, bool) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		return uuid.Nil, false
	}
	return id, true
}

// parseFlag принимает "", "0", "1" и прочие целые числа; ненулевое значение включает флаг.
func parseFlag(raw string) (bool, error) {
	if raw == "" {
		return false, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return false, err
	}
	return n != 0, nil
}

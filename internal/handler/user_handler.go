package handler

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/GoArmGo/RecipeApp/internal/domain"
	"github.com/GoArmGo/RecipeApp/internal/usecase"
)

// UserHandler обрабатывает регистрацию, выдачу токенов и профиль.
type UserHandler struct {
	accounts usecase.AccountUseCase
	tokens   usecase.TokenUseCase
	logger   *slog.Logger
}

// NewUserHandler создает новый экземпляр UserHandler.
func NewUserHandler(accounts usecase.AccountUseCase, tokens usecase.TokenUseCase, logger *slog.Logger) *UserHandler {
	return &UserHandler{accounts: accounts, tokens: tokens, logger: logger}
}

// CreateUser обрабатывает POST /api/user/create
func (h *UserHandler) CreateUser(w http.ResponseWriter, r *http.Request) {
	var req createUserRequest
	if err := decodeJSON(w, r, &req); err != nil {
		respondWithDomainError(w, r, err, h.logger)
		return
	}
	req.Email = strings.TrimSpace(req.Email)
	if err := validateRequest(req); err != nil {
		respondWithDomainError(w, r, err, h.logger)
		return
	}

	user, err := h.accounts.CreateUser(r.Context(), req.Email, req.Password, req.Name)
	if err != nil {
		respondWithDomainError(w, r, err, h.logger)
		return
	}

	respondWithJSON(w, http.StatusCreated, toUserResponse(user), h.logger)
}

// CreateToken обрабатывает POST /api/user/token
func (h *UserHandler) CreateToken(w http.ResponseWriter, r *http.Request) {
	var req tokenRequest
	if err := decodeJSON(w, r, &req); err != nil {
		respondWithDomainError(w, r, err, h.logger)
		return
	}
	req.Email = strings.TrimSpace(req.Email)
	if err := validateRequest(req); err != nil {
		respondWithDomainError(w, r, err, h.logger)
		return
	}

	user, err := h.accounts.VerifyCredentials(r.Context(), req.Email, req.Password)
	if err != nil {
		respondWithDomainError(w, r, err, h.logger)
		return
	}

	key, err := h.tokens.IssueToken(r.Context(), user)
	if err != nil {
		respondWithDomainError(w, r, err, h.logger)
		return
	}
	respondWithJSON(w, http.StatusOK, tokenResponse{Token: key}, h.logger)
}

// RevokeToken обрабатывает DELETE /api/user/token
func (h *UserHandler) RevokeToken(w http.ResponseWriter, r *http.Request) {
	user, ok := UserFromContext(r.Context())
	if !ok {
		respondWithDomainError(w, r, domain.ErrUnauthenticated, h.logger)
		return
	}
	if err := h.tokens.RevokeToken(r.Context(), user.ID); err != nil {
		respondWithDomainError(w, r, err, h.logger)
		return
	}
	respondNoContent(w)
}

// Me обрабатывает GET /api/user/me
func (h *UserHandler) Me(w http.ResponseWriter, r *http.Request) {
	user, ok := UserFromContext(r.Context())
	if !ok {
		respondWithDomainError(w, r, domain.ErrUnauthenticated, h.logger)
		return
	}
	respondWithJSON(w, http.StatusOK, toUserResponse(user), h.logger)
}

// ReplaceMe обрабатывает PUT /api/user/me: имя и пароль обязательны.
func (h *UserHandler) ReplaceMe(w http.ResponseWriter, r *http.Request) {
	h.updateMe(w, r, false)
}

// PatchMe обрабатывает PATCH /api/user/me
func (h *UserHandler) PatchMe(w http.ResponseWriter, r *http.Request) {
	h.updateMe(w, r, true)
}

func (h *UserHandler) updateMe(w http.ResponseWriter, r *http.Request, partial bool) {
	user, ok := UserFromContext(r.Context())
	if !ok {
		respondWithDomainError(w, r, domain.ErrUnauthenticated, h.logger)
		return
	}

	var req profileRequest
	if err := decodeJSON(w, r, &req); err != nil {
		respondWithDomainError(w, r, err, h.logger)
		return
	}

	verr := &domain.ValidationError{}
	if !partial {
		if req.Name == nil {
			verr.Add("name", "This field is required.")
		}
		if req.Password == nil {
			verr.Add("password", "This field is required.")
		}
	}
	if err := validateRequest(req); err != nil {
		var fieldErr *domain.ValidationError
		if !errors.As(err, &fieldErr) {
			respondWithDomainError(w, r, err, h.logger)
			return
		}
		for field, msg := range fieldErr.Fields {
			verr.Add(field, msg)
		}
	}
	if err := verr.OrNil(); err != nil {
		respondWithDomainError(w, r, err, h.logger)
		return
	}

	updated, err := h.accounts.UpdateProfile(r.Context(), user.ID, domain.ProfileUpdate{
		Name:     req.Name,
		Password: req.Password,
	})
	if err != nil {
		respondWithDomainError(w, r, err, h.logger)
		return
	}
	respondWithJSON(w, http.StatusOK, toUserResponse(updated), h.logger)
}

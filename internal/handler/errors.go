package handler

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/GoArmGo/RecipeApp/internal/domain"
)

// respondWithDomainError переводит ошибки бизнес-логики в HTTP-ответ.
func respondWithDomainError(w http.ResponseWriter, r *http.Request, err error, logger *slog.Logger) {
	var verr *domain.ValidationError
	switch {
	case errors.As(err, &verr):
		msg := verr.Message
		if msg == "" {
			msg = "Invalid input."
		}
		respondWithJSON(w, http.StatusBadRequest, errorResponse{Error: msg, Fields: verr.Fields}, logger)
	case errors.Is(err, domain.ErrInvalidCredentials):
		respondWithError(w, http.StatusBadRequest, "Unable to authenticate with provided credentials.", logger)
	case errors.Is(err, domain.ErrUnauthenticated):
		w.Header().Set("WWW-Authenticate", `Token realm="api"`)
		respondWithError(w, http.StatusUnauthorized, "Invalid token.", logger)
	case errors.Is(err, domain.ErrNotFound):
		respondWithError(w, http.StatusNotFound, "Not found.", logger)
	case errors.Is(err, domain.ErrDuplicate):
		respondWithError(w, http.StatusConflict, "Duplicate entry.", logger)
	case errors.Is(err, domain.ErrUnavailable):
		respondWithError(w, http.StatusServiceUnavailable, "Service temporarily unavailable.", logger)
	default:
		logger.Error("unhandled error",
			"method", r.Method,
			"path", r.URL.Path,
			"error", err,
		)
		respondWithError(w, http.StatusInternalServerError, "Internal server error.", logger)
	}
}

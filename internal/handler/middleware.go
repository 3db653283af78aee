package handler

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/GoArmGo/RecipeApp/internal/domain"
	"github.com/GoArmGo/RecipeApp/internal/usecase"
	"github.com/go-chi/chi/v5/middleware"
)

// RequestLogger — middleware для логирования HTTP-запросов.
func RequestLogger(logger *slog.Logger) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()

			// Оборачиваем ResponseWriter, чтобы знать статус
			ww := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}
			next.ServeHTTP(ww, r)

			logger.Info("http request",
				"method", r.Method,
				"path", r.URL.Path,
				"status", ww.statusCode,
				"request_id", middleware.GetReqID(r.Context()),
				"duration_ms", time.Since(start).Milliseconds(),
			)
		})
	}
}

// responseWriter нужен, чтобы перехватывать код ответа
type responseWriter struct {
	http.ResponseWriter
	statusCode  int
	wroteHeader bool
}

func (rw *responseWriter) WriteHeader(code int) {
	if !rw.wroteHeader {
		rw.statusCode = code
		rw.wroteHeader = true
	}
	rw.ResponseWriter.WriteHeader(code)
}

func (rw *responseWriter) Write(b []byte) (int, error) {
	rw.wroteHeader = true
	return rw.ResponseWriter.Write(b)
}

func (rw *responseWriter) Unwrap() http.ResponseWriter {
	return rw.ResponseWriter
}

type userCtxKey struct{}

// UserFromContext возвращает пользователя, установленного Authenticate.
func UserFromContext(ctx context.Context) (*domain.User, bool) {
	user, ok := ctx.Value(userCtxKey{}).(*domain.User)
	return user, ok && user != nil
}

// Authenticate проверяет заголовок Authorization ("Token <key>" или "Bearer <key>")
// и кладет пользователя в контекст. Без валидного токена отвечает 401.
func Authenticate(tokens usecase.TokenUseCase, logger *slog.Logger) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			key, ok := tokenFromHeader(r.Header.Get("Authorization"))
			if !ok {
				w.Header().Set("WWW-Authenticate", `Token realm="api"`)
				respondWithError(w, http.StatusUnauthorized, "Authentication credentials were not provided.", logger)
				return
			}

			user, err := tokens.ResolveToken(r.Context(), key)
			if err != nil {
				if !errors.Is(err, domain.ErrUnauthenticated) {
					logger.Error("token resolution failed", "error", err)
				}
				respondWithDomainError(w, r, err, logger)
				return
			}

			ctx := context.WithValue(r.Context(), userCtxKey{}, user)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func tokenFromHeader(header string) (string, bool) {
	scheme, key, found := strings.Cut(strings.TrimSpace(header), " ")
	if !found {
		return "", false
	}
	if !strings.EqualFold(scheme, "Token") && !strings.EqualFold(scheme, "Bearer") {
		return "", false
	}
	key = strings.TrimSpace(key)
	return key, key != ""
}

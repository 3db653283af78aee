package usecase

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"log/slog"

	"github.com/GoArmGo/RecipeApp/internal/core/ports"
	"github.com/GoArmGo/RecipeApp/internal/domain"
	"github.com/google/uuid"
)

const tokenBytes = 20

// tokenUseCase implements TokenUseCase
type tokenUseCase struct {
	tokens ports.TokenStorage
	users  ports.UserStorage
	cache  ports.TokenCache
	logger *slog.Logger
}

// NewTokenUseCase создает новый экземпляр TokenUseCase. cache обязателен; без Redis передается no-op реализация.
func NewTokenUseCase(tokens ports.TokenStorage, users ports.UserStorage, cache ports.TokenCache, logger *slog.Logger) TokenUseCase {
	return &tokenUseCase{tokens: tokens, users: users, cache: cache, logger: logger}
}

func (uc *tokenUseCase) IssueToken(ctx context.Context, user *domain.User) (string, error) {
	candidate, err := generateKey()
	if err != nil {
		return "", fmt.Errorf("usecase: generate token: %w", err)
	}

	token, err := uc.tokens.GetOrCreateToken(ctx, user.ID, candidate)
	if err != nil {
		return "", fmt.Errorf("usecase: issue token: %w", err)
	}
	return token.Key, nil
}

func (uc *tokenUseCase) ResolveToken(ctx context.Context, key string) (*domain.User, error) {
	if !validKey(key) {
		return nil, domain.ErrUnauthenticated
	}

	userID, hit, err := uc.cache.Get(ctx, key)
	if err != nil {
		uc.logger.Warn("token cache lookup failed, falling back to database", "error", err)
	}

	if !hit {
		token, err := uc.tokens.GetToken(ctx, key)
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrUnauthenticated
		}
		if err != nil {
			return nil, fmt.Errorf("usecase: resolve token: %w", err)
		}
		userID = token.UserID

		if err := uc.cache.Set(ctx, key, userID); err != nil {
			uc.logger.Warn("failed to cache token", "error", err)
		}
	}

	// пользователь перечитывается всегда, чтобы деактивация действовала сразу
	user, err := uc.users.GetUserByID(ctx, userID)
	if errors.Is(err, domain.ErrNotFound) {
		_ = uc.cache.Delete(ctx, key)
		return nil, domain.ErrUnauthenticated
	}
	if err != nil {
		return nil, fmt.Errorf("usecase: load token owner: %w", err)
	}
	if !user.IsActive {
		return nil, domain.ErrUnauthenticated
	}
	return user, nil
}

func (uc *tokenUseCase) RevokeToken(ctx context.Context, userID uuid.UUID) error {
	key, err := uc.tokens.DeleteUserToken(ctx, userID)
	if err != nil {
		return fmt.Errorf("usecase: revoke token: %w", err)
	}
	if key == "" {
		return nil
	}
	if err := uc.cache.Delete(ctx, key); err != nil {
		// повтор вне контекста запроса: отмена клиента не должна оставлять ключ в кэше
		if err := uc.cache.Delete(context.WithoutCancel(ctx), key); err != nil {
			uc.logger.Error("failed to evict revoked token from cache, key stays valid until cache TTL",
				"user_id", userID, "error", err)
		}
	}
	uc.logger.Info("token revoked", "user_id", userID)
	return nil
}

func generateKey() (string, error) {
	b := make([]byte, tokenBytes)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}

func validKey(key string) bool {
	if len(key) != tokenBytes*2 {
		return false
	}
	_, err := hex.DecodeString(key)
	return err == nil
}

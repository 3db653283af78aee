package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/GoArmGo/RecipeApp/internal/core/ports"
	"github.com/GoArmGo/RecipeApp/internal/domain"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

// accountUseCase implements AccountUseCase
type accountUseCase struct {
	users      ports.UserStorage
	bcryptCost int
	logger     *slog.Logger

	// хеш для сравнения, когда пользователь не найден: время ответа не выдает наличие email
	dummyHash []byte
}

// NewAccountUseCase создает новый экземпляр AccountUseCase
func NewAccountUseCase(users ports.UserStorage, bcryptCost int, logger *slog.Logger) AccountUseCase {
	if bcryptCost < bcrypt.MinCost || bcryptCost > bcrypt.MaxCost {
		bcryptCost = bcrypt.DefaultCost
	}
	dummy, err := bcrypt.GenerateFromPassword([]byte("recipe-app-dummy-password"), bcryptCost)
	if err != nil {
		// без хеша ветка "пользователь не найден" перестает тратить время на bcrypt
		panic(fmt.Sprintf("usecase: generate dummy password hash: %v", err))
	}
	return &accountUseCase{
		users:      users,
		bcryptCost: bcryptCost,
		logger:     logger,
		dummyHash:  dummy,
	}
}

func (uc *accountUseCase) CreateUser(ctx context.Context, email, password, name string) (*domain.User, error) {
	return uc.create(ctx, email, password, name, false)
}

func (uc *accountUseCase) CreateSuperuser(ctx context.Context, email, password string) (*domain.User, error) {
	return uc.create(ctx, email, password, "", true)
}

func (uc *accountUseCase) create(ctx context.Context, email, password, name string, superuser bool) (*domain.User, error) {
	email = domain.NormalizeEmail(email)
	if email == "" {
		return nil, domain.NewValidationError("email", "Users must have an email address.")
	}

	hash, err := uc.hashPassword(password)
	if err != nil {
		return nil, err
	}

	user := &domain.User{
		Email:        email,
		Name:         strings.TrimSpace(name),
		PasswordHash: hash,
		IsActive:     true,
		IsStaff:      superuser,
		IsSuperuser:  superuser,
	}
	if err := uc.users.CreateUser(ctx, user); err != nil {
		if errors.Is(err, domain.ErrDuplicate) {
			return nil, domain.NewValidationError("email", "user with this email already exists.")
		}
		return nil, fmt.Errorf("usecase: create user: %w", err)
	}

	uc.logger.Info("user registered", "user_id", user.ID, "superuser", superuser)
	return user, nil
}

func (uc *accountUseCase) VerifyCredentials(ctx context.Context, email, password string) (*domain.User, error) {
	user, err := uc.users.GetUserByEmail(ctx, domain.NormalizeEmail(email))
	if errors.Is(err, domain.ErrNotFound) {
		_ = bcrypt.CompareHashAndPassword(uc.dummyHash, []byte(password))
		return nil, domain.ErrInvalidCredentials
	}
	if err != nil {
		return nil, fmt.Errorf("usecase: load user for authentication: %w", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, domain.ErrInvalidCredentials
	}
	if !user.IsActive {
		return nil, domain.ErrInvalidCredentials
	}
	return user, nil
}

func (uc *accountUseCase) UpdateProfile(ctx context.Context, userID uuid.UUID, upd domain.ProfileUpdate) (*domain.User, error) {
	user, err := uc.users.GetUserByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	if upd.Name != nil {
		user.Name = strings.TrimSpace(*upd.Name)
	}
	if upd.Password != nil {
		hash, err := uc.hashPassword(*upd.Password)
		if err != nil {
			return nil, err
		}
		user.PasswordHash = hash
	}

	if err := uc.users.UpdateUser(ctx, user); err != nil {
		return nil, fmt.Errorf("usecase: update profile: %w", err)
	}

	uc.logger.Info("profile updated", "user_id", user.ID, "password_changed", upd.Password != nil)
	return user, nil
}

func (uc *accountUseCase) GetUser(ctx context.Context, userID uuid.UUID) (*domain.User, error) {
	return uc.users.GetUserByID(ctx, userID)
}

func (uc *accountUseCase) hashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), uc.bcryptCost)
	if errors.Is(err, bcrypt.ErrPasswordTooLong) {
		return "", domain.NewValidationError("password", "Ensure this field has no more than 72 bytes.")
	}
	if err != nil {
		return "", fmt.Errorf("usecase: hash password: %w", err)
	}
	return string(hash), nil
}

package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/linemk/goshop/internal/domain/models"
	security "github.com/linemk/goshop/internal/jwt-new"
	"github.com/linemk/goshop/internal/storage"
	"golang.org/x/crypto/bcrypt"
)

// ErrInvalidCredentials возвращается и для неизвестного email, и для неверного пароля,
// чтобы ответ не различал эти случаи.
var ErrInvalidCredentials = errors.New("invalid email or password")

type AuthService struct {
	log      *slog.Logger
	userRepo storage.UserStorage
	tokenTTL time.Duration
}

func NewAuthService(log *slog.Logger, userRepo storage.UserStorage, tokenTTL time.Duration) *AuthService {
	return &AuthService{
		log:      log,
		userRepo: userRepo,
		tokenTTL: tokenTTL,
	}
}

type AuthServiceInterface interface {
	SignIn(ctx context.Context, email, password string) (*models.User, string, error)
	SignUp(ctx context.Context, name, email, password string) (*models.User, string, error)
}

// SignIn осуществляет аутентификацию пользователя по email и паролю.
// Введённый пароль сравнивается с сохранённым bcrypt-хэшем; после успешной
// проверки генерируется JWT-токен (секрет для подписи берется из переменной окружения).
func (a *AuthService) SignIn(ctx context.Context, email, password string) (*models.User, string, error) {
	const op = "service.AuthService.SignIn"
	logger := a.log.With(
		slog.String("op", op),
		slog.String("email", email),
	)
	logger.Info("checking user")

	user, err := a.userRepo.GetUserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, storage.ErrUserNotFound) {
			logger.Warn("user not found")
			return nil, "", fmt.Errorf("%s: %w", op, ErrInvalidCredentials)
		}
		logger.Error("failed to get user", slog.Any("error", err))
		return nil, "", fmt.Errorf("%s: failed to get user: %w", op, err)
	}

	if err := bcrypt.CompareHashAndPassword(user.PassHash, []byte(password)); err != nil {
		logger.Warn("invalid password")
		return nil, "", fmt.Errorf("%s: %w", op, ErrInvalidCredentials)
	}

	token, err := security.NewToken(ctx, user, a.tokenTTL)
	if err != nil {
		logger.Error("failed to generate token", slog.Any("error", err))
		return nil, "", fmt.Errorf("%s: failed to generate token: %w", op, err)
	}

	logger.Info("user signed in successfully", slog.Int64("userID", user.ID))
	return user, token, nil
}

// SignUp регистрирует нового пользователя. Пароль хэшируется через bcrypt
// (автоматически добавляет соль), хэш после создания никогда не пересчитывается.
// Уникальность email обеспечивается на уровне хранилища.
func (a *AuthService) SignUp(ctx context.Context, name, email, password string) (*models.User, string, error) {
	const op = "service.AuthService.SignUp"
	logger := a.log.With(
		slog.String("op", op),
		slog.String("email", email),
	)
	logger.Info("registering user")

	passHash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		logger.Error("failed to hash password", slog.Any("error", err))
		return nil, "", fmt.Errorf("%s: failed to hash password: %w", op, err)
	}

	newUser := &models.User{
		Name:     name,
		Email:    email,
		PassHash: passHash,
	}
	user, err := a.userRepo.CreateUser(ctx, newUser)
	if err != nil {
		logger.Error("failed to create user", slog.Any("error", err))
		return nil, "", fmt.Errorf("%s: failed to create user: %w", op, err)
	}

	token, err := security.NewToken(ctx, user, a.tokenTTL)
	if err != nil {
		logger.Error("failed to generate token", slog.Any("error", err))
		return nil, "", fmt.Errorf("%s: failed to generate token: %w", op, err)
	}

	logger.Info("user registered successfully", slog.Int64("userID", user.ID))
	return user, token, nil
}

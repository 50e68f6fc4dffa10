package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/GoArmGo/MovieApp/internal/core/ports"
	"github.com/GoArmGo/MovieApp/internal/domain"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

// bcryptCost — рабочий фактор хэширования пароля
const bcryptCost = bcrypt.DefaultCost // 10

// authUseCase implements AuthUseCase
type authUseCase struct {
	userStorage ports.UserStorage
	logger      *slog.Logger
}

// NewAuthUseCase создает новый экземпляр AuthUseCase
func NewAuthUseCase(userStorage ports.UserStorage, logger *slog.Logger) AuthUseCase {
	return &authUseCase{userStorage: userStorage, logger: logger}
}

// Register создает учетную запись. Гонки двух одновременных регистраций
// с одним именем разрешает уникальный индекс в бд: одна из вставок
// вернет domain.ErrUsernameTaken.
func (uc *authUseCase) Register(ctx context.Context, username, password string) (*domain.User, error) {
	username = strings.TrimSpace(username)
	if username == "" {
		return nil, domain.NewValidationError("username", "обязательное поле")
	}
	if password == "" {
		return nil, domain.NewValidationError("password", "обязательное поле")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcryptCost)
	if err != nil {
		return nil, fmt.Errorf("usecase: ошибка хэширования пароля: %w", err)
	}

	user := &domain.User{
		ID:           uuid.New(),
		Username:     username,
		PasswordHash: string(hash),
		CreatedAt:    time.Now(),
	}

	if err := uc.userStorage.CreateUser(ctx, user); err != nil {
		if errors.Is(err, domain.ErrUsernameTaken) {
			uc.logger.Warn("registration rejected, username taken", "username", username)
			return nil, err
		}
		return nil, fmt.Errorf("usecase: ошибка создания пользователя %q: %w", username, err)
	}

	uc.logger.Info("user registered", "user_id", user.ID, "username", username)
	return user, nil
}

// Login сверяет пароль с хэшем. Неизвестное имя и неверный пароль —
// разные ошибки, как их различает и HTTP-слой (404 против 401).
func (uc *authUseCase) Login(ctx context.Context, username, password string) (*domain.User, error) {
	user, err := uc.userStorage.GetUserByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			uc.logger.Warn("login failed, unknown username", "username", username)
			return nil, err
		}
		return nil, fmt.Errorf("usecase: ошибка поиска пользователя %q: %w", username, err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		uc.logger.Warn("login failed, wrong password", "username", username)
		return nil, domain.ErrInvalidCredentials
	}

	uc.logger.Info("user logged in", "user_id", user.ID, "username", username)
	return user, nil
}

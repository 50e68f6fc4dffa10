package postgres

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/GoArmGo/MovieApp/internal/domain"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GormUserStorage реализует ports.UserStorage с использованием GORM
type GormUserStorage struct {
	db     *gorm.DB
	logger *slog.Logger
}

// NewGormUserStorage создает новый экземпляр GormUserStorage
func NewGormUserStorage(db *gorm.DB, logger *slog.Logger) *GormUserStorage {
	return &GormUserStorage{db: db, logger: logger}
}

// CreateUser вставляет учетную запись; нарушение уникального индекса
// username переводится в domain.ErrUsernameTaken (TranslateError в gorm.Config)
func (s *GormUserStorage) CreateUser(ctx context.Context, user *domain.User) error {
	if user.ID == uuid.Nil {
		user.ID = uuid.New()
	}

	if result := s.db.WithContext(ctx).Create(user); result.Error != nil {
		if errors.Is(result.Error, gorm.ErrDuplicatedKey) {
			s.logger.Warn("username already taken", "username", user.Username)
			return domain.ErrUsernameTaken
		}
		s.logger.Error("failed to create user", "username", user.Username, "error", result.Error)
		return fmt.Errorf("ошибка при создании пользователя с GORM: %w", result.Error)
	}

	s.logger.Info("user created successfully", "user_id", user.ID, "username", user.Username)
	return nil
}

// GetUserByUsername получает учетную запись по имени с помощью GORM
func (s *GormUserStorage) GetUserByUsername(ctx context.Context, username string) (*domain.User, error) {
	var user domain.User
	result := s.db.WithContext(ctx).Where("username = ?", username).First(&user)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			s.logger.Warn("user not found", "username", username)
			return nil, domain.ErrNotFound
		}
		s.logger.Error("failed to get user", "username", username, "error", result.Error)
		return nil, fmt.Errorf("ошибка при получении пользователя с GORM: %w", result.Error)
	}
	return &user, nil
}

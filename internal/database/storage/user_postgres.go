package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/GoArmGo/MovieApp/internal/domain"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
)

// код ошибки PostgreSQL unique_violation
const pgUniqueViolation = "23505"

// UserStorage реализует ports.UserStorage поверх sqlx
type UserStorage struct {
	db     *sqlx.DB
	logger *slog.Logger
}

func NewUserStorage(db *sqlx.DB, logger *slog.Logger) *UserStorage {
	return &UserStorage{db: db, logger: logger}
}

// CreateUser вставляет учетную запись.
// Нарушение уникального индекса username переводится в domain.ErrUsernameTaken,
// так что гонка двух регистраций разрешается в базе, а не в приложении.
func (s *UserStorage) CreateUser(ctx context.Context, user *domain.User) error {
	start := time.Now()

	if user.ID == uuid.Nil {
		user.ID = uuid.New()
	}

	query := `
	INSERT INTO users (id, username, password_hash, created_at)
	VALUES (:id, :username, :password_hash, :created_at)
	`

	if _, err := s.db.NamedExecContext(ctx, query, user); err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == pgUniqueViolation {
			s.logger.Warn("username already taken", "username", user.Username)
			return domain.ErrUsernameTaken
		}
		s.logger.Error("failed to create user", "username", user.Username, "error", err)
		return fmt.Errorf("ошибка при создании пользователя: %w", err)
	}

	s.logger.Info("user created successfully",
		"user_id", user.ID,
		"username", user.Username,
		"duration_ms", time.Since(start).Milliseconds(),
	)
	return nil
}

// GetUserByUsername получает учетную запись по имени пользователя
func (s *UserStorage) GetUserByUsername(ctx context.Context, username string) (*domain.User, error) {
	start := time.Now()

	var user domain.User
	query := `SELECT * FROM users WHERE username = $1 LIMIT 1`

	err := s.db.GetContext(ctx, &user, query, username)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			s.logger.Warn("user not found", "username", username)
			return nil, domain.ErrNotFound
		}
		s.logger.Error("failed to get user", "username", username, "error", err)
		return nil, fmt.Errorf("ошибка при получении пользователя: %w", err)
	}

	s.logger.Info("user retrieved",
		"username", username,
		"duration_ms", time.Since(start).Milliseconds(),
	)
	return &user, nil
}

package postgres

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/GoArmGo/MovieApp/internal/config"
	"github.com/GoArmGo/MovieApp/internal/database/client"
	gormpostgres "gorm.io/driver/postgres"
	"gorm.io/gorm"
)

// Client представляет клиент для взаимодействия с PostgreSQL через GORM.
// Альтернатива sqlx-клиенту, выбирается через STORAGE_DRIVER=gorm.
type Client struct {
	DB     *gorm.DB
	logger *slog.Logger
}

// NewClient инициализирует GORM-подключение к PostgreSQL и применяет миграции.
// Схемой управляет golang-migrate (как и в sqlx-варианте), не AutoMigrate:
// уникальный индекс users.username должен существовать независимо от драйвера.
func NewClient(cfg *config.Config, logger *slog.Logger) (*Client, error) {
	start := time.Now()

	db, err := gorm.Open(gormpostgres.Open(cfg.DatabaseURL), &gorm.Config{
		TranslateError: true,
	})
	if err != nil {
		logger.Error("failed to open GORM connection", "error", err)
		return nil, fmt.Errorf("ошибка открытия GORM-соединения с БД: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("ошибка доступа к пулу соединений: %w", err)
	}
	sqlDB.SetMaxOpenConns(25)
	sqlDB.SetMaxIdleConns(10)
	sqlDB.SetConnMaxLifetime(5 * time.Minute)

	if err := sqlDB.Ping(); err != nil {
		logger.Error("failed to ping database", "error", err)
		return nil, fmt.Errorf("не удалось подключиться к базе данных: %w", err)
	}

	if err := client.ApplyMigrations(cfg.DatabaseURL, cfg.MigrationsPath, logger); err != nil {
		return nil, fmt.Errorf("ошибка при применении миграций: %w", err)
	}

	logger.Info("GORM connection established successfully",
		"duration_ms", time.Since(start).Milliseconds(),
	)

	return &Client{DB: db, logger: logger}, nil
}

func (c *Client) Close() error {
	sqlDB, err := c.DB.DB()
	if err != nil {
		return fmt.Errorf("ошибка доступа к пулу соединений: %w", err)
	}
	if err := sqlDB.Close(); err != nil {
		c.logger.Error("failed to close database connection", "error", err)
		return err
	}
	c.logger.Info("database connection closed")
	return nil
}

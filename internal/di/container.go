package di

import (
	"github.com/GoArmGo/MovieApp/internal/adapter/storage/local"
	"github.com/GoArmGo/MovieApp/internal/adapter/storage/minio"
	"github.com/GoArmGo/MovieApp/internal/app"
	"github.com/GoArmGo/MovieApp/internal/config"
	"github.com/GoArmGo/MovieApp/internal/core/ports"
	"github.com/GoArmGo/MovieApp/internal/database/client"
	"github.com/GoArmGo/MovieApp/internal/database/postgres"
	"github.com/GoArmGo/MovieApp/internal/database/storage"
	"github.com/GoArmGo/MovieApp/internal/logger"
	"github.com/GoArmGo/MovieApp/internal/rabbitmq"
	"github.com/GoArmGo/MovieApp/internal/usecase"
)

// BuildApp инициализирует все зависимости и возвращает готовый объект App.
func BuildApp() (*app.App, error) {
	// 1. Загрузка конфигурации
	cfg, err := config.LoadConfig()
	if err != nil {
		return nil, err
	}

	slogger := logger.NewSlog(logger.SlogConfig{
		Level:  cfg.LogLevel,
		Format: cfg.LogFormat,
	})
	slogger.Info("logger initialized", "level", cfg.LogLevel, "format", cfg.LogFormat)

	// 2. Инициализация хранилища записей (sqlx или GORM, по конфигурации)
	storageLogger := logger.WithComponent(slogger, "storage")

	var (
		movieStorage ports.MovieStorage
		userStorage  ports.UserStorage
		dbCloser     interface{ Close() error }
	)

	switch cfg.StorageDriver {
	case config.StorageDriverGorm:
		gormClient, err := postgres.NewClient(cfg, storageLogger)
		if err != nil {
			return nil, err
		}
		movieStorage = postgres.NewGormMovieStorage(gormClient.DB, storageLogger)
		userStorage = postgres.NewGormUserStorage(gormClient.DB, storageLogger)
		dbCloser = gormClient

	default: // config.StorageDriverSqlx
		dbClient, err := client.NewClient(cfg, storageLogger)
		if err != nil {
			return nil, err
		}
		movieStorage = storage.NewMovieStorage(dbClient.DB, storageLogger)
		userStorage = storage.NewUserStorage(dbClient.DB, storageLogger)
		dbCloser = dbClient
	}

	// 3. Инициализация файлового хранилища (локальный диск или MinIO)
	var (
		fileStorage ports.FileStorage
		staticRoot  string
	)

	switch cfg.FileBackend {
	case config.FileBackendMinio:
		minioClient, err := minio.NewClient(cfg, logger.WithComponent(slogger, "minio"))
		if err != nil {
			return nil, err
		}
		fileStorage = minioClient

	default: // config.FileBackendLocal
		localStorage, err := local.NewStorage(cfg.UploadDir, logger.WithComponent(slogger, "files"))
		if err != nil {
			return nil, err
		}
		fileStorage = localStorage
		staticRoot = localStorage.Root()
	}

	// 4. Инициализация RabbitMQ (необязательная)
	var (
		publisher ports.UploadEventPublisher
		consumer  ports.UploadEventConsumer
	)

	if cfg.RabbitMQ.RabbitMQURL != "" {
		rabbitClient, err := rabbitmq.NewClient(cfg, logger.WithComponent(slogger, "rabbitmq"))
		if err != nil {
			return nil, err
		}
		publisher = rabbitClient
		consumer = rabbitClient
	} else {
		publisher = rabbitmq.NewNoopPublisher()
	}

	// 5. Инициализация бизнес-логики (usecases)
	usecaseLogger := logger.WithComponent(slogger, "usecase")
	movieUseCase := usecase.NewMovieUseCase(movieStorage, fileStorage, publisher, usecaseLogger)
	authUseCase := usecase.NewAuthUseCase(userStorage, usecaseLogger)

	// 6. Сборка итогового приложения
	application := app.NewApp(
		cfg,
		slogger,
		dbCloser,
		movieUseCase,
		authUseCase,
		publisher,
		consumer,
		staticRoot,
	)

	slogger.Info("all dependencies initialized")
	return application, nil
}

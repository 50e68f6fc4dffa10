package config

import (
	"fmt"
	"os"
	"time"

	"github.com/caarlos0/env/v6"
	"github.com/joho/godotenv"
)

// Допустимые значения для Config.StorageDriver и Config.FileBackend.
const (
	StorageDriverSqlx = "sqlx"
	StorageDriverGorm = "gorm"

	FileBackendLocal = "local"
	FileBackendMinio = "minio"
)

// Config хранит все конфигурационные параметры приложения.
// Секреты и строки подключения приходят только из окружения,
// в коде нет ни одной константы с адресом или паролем.
type Config struct {
	DatabaseURL    string        `env:"DATABASE_URL,required"`
	ServerPort     string        `env:"SERVER_PORT" envDefault:"3000"`
	RequestTimeout time.Duration `env:"REQUEST_TIMEOUT" envDefault:"60s"`

	LogLevel  string `env:"LOG_LEVEL" envDefault:"info"`
	LogFormat string `env:"LOG_FORMAT" envDefault:"json"`

	// StorageDriver выбирает реализацию хранилища записей: sqlx или gorm
	StorageDriver  string `env:"STORAGE_DRIVER" envDefault:"sqlx"`
	MigrationsPath string `env:"MIGRATIONS_PATH" envDefault:"internal/database/migrations"`

	// Настройки файлового хранилища
	FileBackend   string `env:"FILE_BACKEND" envDefault:"local"` // local или minio
	UploadDir     string `env:"UPLOAD_DIR" envDefault:"uploads"`
	MaxUploadSize int64  `env:"MAX_UPLOAD_SIZE" envDefault:"1073741824"` // байты

	// Настройки для MinIO (обязательны только при FILE_BACKEND=minio)
	MinioEndpoint        string `env:"MINIO_ENDPOINT"`
	MinioAccessKeyID     string `env:"MINIO_ACCESS_KEY_ID"`
	MinioSecretAccessKey string `env:"MINIO_SECRET_ACCESS_KEY"`
	MinioUseSSL          bool   `env:"MINIO_USE_SSL"`
	MinioBucketName      string `env:"MINIO_BUCKET_NAME"`
	MinioRegion          string `env:"MINIO_REGION"`

	// Настройки RabbitMQ: если URL пуст, события загрузок не публикуются
	RabbitMQ struct {
		RabbitMQURL       string `env:"RABBITMQ_URL"`
		RabbitMQQueueName string `env:"RABBITMQ_QUEUE_NAME" envDefault:"movie_upload_queue"`
	}
}

// LoadConfig загружает конфигурацию из переменных окружения.
// В режиме разработки пытается загрузить .env файл.
func LoadConfig() (*Config, error) {
	if _, err := os.Stat(".env"); !os.IsNotExist(err) {
		if err := godotenv.Load(); err != nil {
			return nil, fmt.Errorf("ошибка загрузки .env файла: %w", err)
		}
	}

	cfg := Config{}
	if err := env.Parse(&cfg); err != nil {
		return nil, fmt.Errorf("ошибка парсинга конфигурации из окружения: %w", err)
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// validate проверяет согласованность значений, которые env-теги выразить не могут
func (c *Config) validate() error {
	switch c.StorageDriver {
	case StorageDriverSqlx, StorageDriverGorm:
	default:
		return fmt.Errorf("неизвестный STORAGE_DRIVER: %q (ожидается sqlx или gorm)", c.StorageDriver)
	}

	switch c.FileBackend {
	case FileBackendLocal:
	case FileBackendMinio:
		if c.MinioEndpoint == "" || c.MinioAccessKeyID == "" || c.MinioSecretAccessKey == "" ||
			c.MinioBucketName == "" || c.MinioRegion == "" {
			return fmt.Errorf("FILE_BACKEND=minio требует MINIO_ENDPOINT, MINIO_ACCESS_KEY_ID, MINIO_SECRET_ACCESS_KEY, MINIO_BUCKET_NAME и MINIO_REGION")
		}
	default:
		return fmt.Errorf("неизвестный FILE_BACKEND: %q (ожидается local или minio)", c.FileBackend)
	}

	return nil
}

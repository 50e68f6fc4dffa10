package app

import (
	"context"
	"fmt"
	"log/slog"
	"os/signal"
	"syscall"

	"github.com/GoArmGo/MovieApp/internal/config"
	"github.com/GoArmGo/MovieApp/internal/core/ports"
	"github.com/GoArmGo/MovieApp/internal/usecase"
)

// closer объединяет ресурсы, которые нужно закрыть при остановке
type closer interface {
	Close() error
}

type App struct {
	Config         *config.Config
	logger         *slog.Logger
	dbCloser       closer
	movieUseCase   usecase.MovieUseCase
	authUseCase    usecase.AuthUseCase
	publisher      ports.UploadEventPublisher
	uploadConsumer ports.UploadEventConsumer // nil, если RabbitMQ не сконфигурирован
	staticRoot     string                    // корень статики; пуст при FILE_BACKEND=minio
}

func NewApp(
	cfg *config.Config,
	logger *slog.Logger,
	dbCloser closer,
	movieUseCase usecase.MovieUseCase,
	authUseCase usecase.AuthUseCase,
	publisher ports.UploadEventPublisher,
	uploadConsumer ports.UploadEventConsumer,
	staticRoot string,
) *App {
	return &App{
		Config:         cfg,
		logger:         logger,
		dbCloser:       dbCloser,
		movieUseCase:   movieUseCase,
		authUseCase:    authUseCase,
		publisher:      publisher,
		uploadConsumer: uploadConsumer,
		staticRoot:     staticRoot,
	}
}

// LoggerIns возвращает основной логгер приложения
func (a *App) LoggerIns() *slog.Logger {
	return a.logger
}

// Run запускает приложение в выбранном режиме и блокируется
// до сигнала завершения или фатальной ошибки
func (a *App) Run(ctx context.Context, mode string) error {
	// канал для graceful shutdown
	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	a.logger.Info("application starting", "mode", mode)

	var err error
	switch mode {
	case "server":
		err = runServer(ctx, a.Config, a.logger, a.movieUseCase, a.authUseCase, a.staticRoot)
	case "worker":
		err = runWorker(ctx, a.logger, a.movieUseCase, a.uploadConsumer)
	default:
		err = fmt.Errorf("неизвестный режим: %s (используйте 'server' или 'worker')", mode)
	}

	// аккуратно закрываем ресурсы
	if closeErr := a.Shutdown(); closeErr != nil {
		a.logger.Error("shutdown error", "error", closeErr)
	}

	if err != nil {
		return err
	}

	a.logger.Info("application stopped")
	return nil
}

// Shutdown закрывает все ресурсы приложения
func (a *App) Shutdown() error {
	if a.dbCloser != nil {
		if err := a.dbCloser.Close(); err != nil {
			return fmt.Errorf("ошибка закрытия БД: %w", err)
		}
	}

	// если publisher/consumer имеют методы Close — вызываем их
	if c, ok := a.publisher.(closer); ok {
		_ = c.Close()
	}
	if c, ok := a.uploadConsumer.(closer); ok && any(c) != any(a.publisher) {
		_ = c.Close()
	}

	return nil
}

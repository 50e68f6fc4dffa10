package app

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/GoArmGo/MovieApp/internal/core/ports"
	"github.com/GoArmGo/MovieApp/internal/messaging/payloads"
	"github.com/GoArmGo/MovieApp/internal/usecase"
)

// runWorker запускает потребителя событий загрузки и для каждого события
// проверяет, что файлы записи действительно лежат в хранилище
func runWorker(
	ctx context.Context,
	logger *slog.Logger,
	movieUseCase usecase.MovieUseCase,
	uploadConsumer ports.UploadEventConsumer,
) error {
	if uploadConsumer == nil {
		return fmt.Errorf("режим worker требует настроенного RABBITMQ_URL")
	}

	logger.Info("worker started, waiting for upload events")

	workerCtx, cancelWorker := context.WithCancel(ctx)
	defer cancelWorker()

	messageHandler := func(ctx context.Context, payload payloads.MovieUploadedPayload) error {
		logger.Info("worker: verifying stored files", "movie_id", payload.MovieID, "title", payload.Title)

		if err := movieUseCase.VerifyStoredFiles(ctx, payload.MovieID); err != nil {
			logger.Error("worker: stored files check failed", "movie_id", payload.MovieID, "error", err)
			return err
		}
		return nil
	}

	if err := uploadConsumer.StartConsumingMovieUploads(workerCtx, messageHandler); err != nil {
		return fmt.Errorf("ошибка при запуске потребителя RabbitMQ: %w", err)
	}

	<-ctx.Done()
	logger.Info("worker: shutdown signal received")
	return nil
}

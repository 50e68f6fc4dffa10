package ports

import (
	"context"

	"github.com/GoArmGo/MovieApp/internal/messaging/payloads"
)

// UploadEventPublisher определяет методы для публикации событий о загрузке фильмов
// Этот интерфейс используется usecase после успешного сохранения записи
type UploadEventPublisher interface {
	PublishMovieUploaded(ctx context.Context, payload payloads.MovieUploadedPayload) error
}

// UploadEventConsumer определяет методы для потребления событий о загрузке
// используется воркером для фоновой проверки сохраненных файлов
type UploadEventConsumer interface {
	// StartConsumingMovieUploads начинает прослушивание очереди событий загрузки
	// принимает функцию-обработчик, которая вызывается для каждого события
	StartConsumingMovieUploads(ctx context.Context, handler func(context.Context, payloads.MovieUploadedPayload) error) error
}

package rabbitmq

import (
	"context"

	"github.com/GoArmGo/MovieApp/internal/messaging/payloads"
)

// NoopPublisher — заглушка издателя для конфигураций без RabbitMQ.
// Загрузки работают так же, просто события никуда не публикуются.
type NoopPublisher struct{}

func NewNoopPublisher() *NoopPublisher {
	return &NoopPublisher{}
}

func (*NoopPublisher) PublishMovieUploaded(context.Context, payloads.MovieUploadedPayload) error {
	return nil
}

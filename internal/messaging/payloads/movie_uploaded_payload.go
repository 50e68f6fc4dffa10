package payloads

import "github.com/google/uuid"

// MovieUploadedPayload — событие об успешной загрузке фильма в каталог
type MovieUploadedPayload struct {
	MovieID    uuid.UUID `json:"movie_id"`
	Title      string    `json:"title"`
	PosterPath string    `json:"poster_path"`
	MoviePath  string    `json:"movie_path"`
}

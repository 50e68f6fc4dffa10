package domain

import (
	"time"

	"github.com/google/uuid"
)

// Movie представляет запись каталога фильмов,
// соответствует таблице movies в бд
type Movie struct {
	ID          uuid.UUID `json:"id" db:"id"`
	Title       string    `json:"title" db:"title"`
	Description string    `json:"description" db:"description"`
	Age         int       `json:"age" db:"age"`
	PosterPath  string    `json:"posterPath" db:"poster_path"`
	MoviePath   string    `json:"moviePath" db:"movie_path"`
	CreatedAt   time.Time `json:"created_at" db:"created_at"`
}

func (Movie) TableName() string {
	return "movies"
}

// SortOrder задает направление сортировки списков по полю age
type SortOrder string

const (
	SortAsc  SortOrder = "asc"
	SortDesc SortOrder = "desc"
)

// ParseSortOrder разбирает значение query-параметра sort.
// Любое значение, кроме строки "asc", трактуется как сортировка по убыванию.
func ParseSortOrder(value string) SortOrder {
	if value == string(SortAsc) {
		return SortAsc
	}
	return SortDesc
}

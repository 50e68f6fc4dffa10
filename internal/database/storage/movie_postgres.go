package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/GoArmGo/MovieApp/internal/domain"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

// MovieStorage реализует ports.MovieStorage поверх sqlx
type MovieStorage struct {
	db     *sqlx.DB
	logger *slog.Logger
}

func NewMovieStorage(db *sqlx.DB, logger *slog.Logger) *MovieStorage {
	return &MovieStorage{db: db, logger: logger}
}

// orderClause переводит доменное направление сортировки в SQL.
// Значение никогда не берется из запроса напрямую.
func orderClause(order domain.SortOrder) string {
	if order == domain.SortAsc {
		return "ASC"
	}
	return "DESC"
}

// escapeLike экранирует метасимволы LIKE, чтобы текст запроса
// трактовался буквально, а не как шаблон
func escapeLike(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return r.Replace(s)
}

// SaveMovie вставляет запись каталога в базу данных
func (s *MovieStorage) SaveMovie(ctx context.Context, movie *domain.Movie) error {
	start := time.Now()

	if movie.ID == uuid.Nil {
		movie.ID = uuid.New()
	}

	query := `
	INSERT INTO movies (id, title, description, age, poster_path, movie_path, created_at)
	VALUES (:id, :title, :description, :age, :poster_path, :movie_path, :created_at)
	`

	if _, err := s.db.NamedExecContext(ctx, query, movie); err != nil {
		s.logger.Error("failed to save movie", "title", movie.Title, "error", err)
		return fmt.Errorf("ошибка при сохранении фильма: %w", err)
	}

	s.logger.Info("movie saved successfully",
		"id", movie.ID,
		"title", movie.Title,
		"duration_ms", time.Since(start).Milliseconds(),
	)
	return nil
}

// GetMovieByID получает запись по ID
func (s *MovieStorage) GetMovieByID(ctx context.Context, id uuid.UUID) (*domain.Movie, error) {
	start := time.Now()

	var movie domain.Movie
	query := `SELECT * FROM movies WHERE id = $1 LIMIT 1`

	err := s.db.GetContext(ctx, &movie, query, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			s.logger.Warn("movie not found by id", "id", id)
			return nil, domain.ErrNotFound
		}
		s.logger.Error("failed to get movie by id", "id", id, "error", err)
		return nil, fmt.Errorf("ошибка при получении фильма по ID: %w", err)
	}

	s.logger.Info("movie retrieved by id",
		"id", id,
		"duration_ms", time.Since(start).Milliseconds(),
	)
	return &movie, nil
}

// ListMovies получает все записи, отсортированные по age
func (s *MovieStorage) ListMovies(ctx context.Context, order domain.SortOrder) ([]domain.Movie, error) {
	start := time.Now()

	q := fmt.Sprintf(`SELECT * FROM movies ORDER BY age %s, created_at DESC`, orderClause(order))

	var movies []domain.Movie
	if err := s.db.SelectContext(ctx, &movies, q); err != nil {
		s.logger.Error("failed to list movies", "order", order, "error", err)
		return nil, fmt.Errorf("ошибка при получении списка фильмов: %w", err)
	}

	s.logger.Info("movies listed successfully",
		"order", order,
		"count", len(movies),
		"duration_ms", time.Since(start).Milliseconds(),
	)
	return movies, nil
}

// SearchMovies ищет записи по подстроке в title без учета регистра.
// Текст трактуется буквально: метасимволы LIKE экранируются.
func (s *MovieStorage) SearchMovies(ctx context.Context, query string, order domain.SortOrder) ([]domain.Movie, error) {
	start := time.Now()

	q := fmt.Sprintf(`
	SELECT * FROM movies
	WHERE LOWER(title) LIKE LOWER($1) ESCAPE '\'
	ORDER BY age %s, created_at DESC
	`, orderClause(order))

	searchTerm := "%" + escapeLike(query) + "%"
	var movies []domain.Movie

	if err := s.db.SelectContext(ctx, &movies, q, searchTerm); err != nil {
		s.logger.Error("failed to search movies", "query", query, "error", err)
		return nil, fmt.Errorf("ошибка при поиске фильмов: %w", err)
	}

	s.logger.Info("movies search completed",
		"query", query,
		"found", len(movies),
		"duration_ms", time.Since(start).Milliseconds(),
	)
	return movies, nil
}

// DeleteMovie удаляет запись и возвращает удаленное.
// Один оператор DELETE ... RETURNING: "удалили" и "нечего удалять"
// различаются без дополнительного SELECT.
func (s *MovieStorage) DeleteMovie(ctx context.Context, id uuid.UUID) (*domain.Movie, error) {
	start := time.Now()

	var movie domain.Movie
	query := `DELETE FROM movies WHERE id = $1 RETURNING *`

	err := s.db.GetContext(ctx, &movie, query, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			s.logger.Warn("movie not found for deletion", "id", id)
			return nil, domain.ErrNotFound
		}
		s.logger.Error("failed to delete movie", "id", id, "error", err)
		return nil, fmt.Errorf("ошибка при удалении фильма: %w", err)
	}

	s.logger.Info("movie deleted successfully",
		"id", id,
		"duration_ms", time.Since(start).Milliseconds(),
	)
	return &movie, nil
}

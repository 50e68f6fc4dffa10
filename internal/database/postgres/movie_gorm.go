package postgres

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/GoArmGo/MovieApp/internal/domain"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormMovieStorage реализует ports.MovieStorage с использованием GORM
type GormMovieStorage struct {
	db     *gorm.DB
	logger *slog.Logger
}

// NewGormMovieStorage создает новый экземпляр GormMovieStorage
func NewGormMovieStorage(db *gorm.DB, logger *slog.Logger) *GormMovieStorage {
	return &GormMovieStorage{db: db, logger: logger}
}

// ageOrder переводит доменное направление сортировки в выражение ORDER BY
func ageOrder(order domain.SortOrder) string {
	if order == domain.SortAsc {
		return "age ASC, created_at DESC"
	}
	return "age DESC, created_at DESC"
}

// escapeLike экранирует метасимволы LIKE для буквального поиска
func escapeLike(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return r.Replace(s)
}

// SaveMovie сохраняет запись каталога с помощью GORM
func (s *GormMovieStorage) SaveMovie(ctx context.Context, movie *domain.Movie) error {
	if movie.ID == uuid.Nil {
		movie.ID = uuid.New()
	}

	if result := s.db.WithContext(ctx).Create(movie); result.Error != nil {
		s.logger.Error("failed to save movie", "title", movie.Title, "error", result.Error)
		return fmt.Errorf("ошибка при сохранении фильма в БД с помощью GORM: %w", result.Error)
	}

	s.logger.Info("movie saved successfully", "id", movie.ID, "title", movie.Title)
	return nil
}

// GetMovieByID получает запись по ID с помощью GORM
func (s *GormMovieStorage) GetMovieByID(ctx context.Context, id uuid.UUID) (*domain.Movie, error) {
	var movie domain.Movie
	result := s.db.WithContext(ctx).First(&movie, "id = ?", id)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			s.logger.Warn("movie not found by id", "id", id)
			return nil, domain.ErrNotFound
		}
		s.logger.Error("failed to get movie by id", "id", id, "error", result.Error)
		return nil, fmt.Errorf("ошибка при получении фильма по ID с помощью GORM: %w", result.Error)
	}
	return &movie, nil
}

// ListMovies получает все записи, отсортированные по age, с помощью GORM
func (s *GormMovieStorage) ListMovies(ctx context.Context, order domain.SortOrder) ([]domain.Movie, error) {
	var movies []domain.Movie

	result := s.db.WithContext(ctx).
		Order(ageOrder(order)).
		Find(&movies)
	if result.Error != nil {
		s.logger.Error("failed to list movies", "order", order, "error", result.Error)
		return nil, fmt.Errorf("ошибка при получении списка фильмов с помощью GORM: %w", result.Error)
	}

	s.logger.Info("movies listed successfully", "order", order, "count", len(movies))
	return movies, nil
}

// SearchMovies ищет записи по подстроке названия с помощью GORM
func (s *GormMovieStorage) SearchMovies(ctx context.Context, query string, order domain.SortOrder) ([]domain.Movie, error) {
	var movies []domain.Movie

	result := s.db.WithContext(ctx).
		Where(`LOWER(title) LIKE LOWER(?) ESCAPE '\'`, "%"+escapeLike(query)+"%").
		Order(ageOrder(order)).
		Find(&movies)
	if result.Error != nil {
		s.logger.Error("failed to search movies", "query", query, "error", result.Error)
		return nil, fmt.Errorf("ошибка при поиске фильмов с помощью GORM: %w", result.Error)
	}

	s.logger.Info("movies search completed", "query", query, "found", len(movies))
	return movies, nil
}

// DeleteMovie удаляет запись и возвращает удаленное с помощью GORM.
// RETURNING заполняет модель удаленной строкой одним оператором.
func (s *GormMovieStorage) DeleteMovie(ctx context.Context, id uuid.UUID) (*domain.Movie, error) {
	var movie domain.Movie

	result := s.db.WithContext(ctx).
		Clauses(clause.Returning{}).
		Where("id = ?", id).
		Delete(&movie)
	if result.Error != nil {
		s.logger.Error("failed to delete movie", "id", id, "error", result.Error)
		return nil, fmt.Errorf("ошибка при удалении фильма с помощью GORM: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		s.logger.Warn("movie not found for deletion", "id", id)
		return nil, domain.ErrNotFound
	}

	s.logger.Info("movie deleted successfully", "id", id)
	return &movie, nil
}

package usecase

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"path"
	"path/filepath"
	"strings"
	"time"

	"github.com/GoArmGo/MovieApp/internal/core/ports"
	"github.com/GoArmGo/MovieApp/internal/domain"
	"github.com/GoArmGo/MovieApp/internal/messaging/payloads"
	"github.com/google/uuid"
)

// Каталоги внутри корня файлового хранилища, по одному на тип файла
const (
	posterDir = "posters"
	movieDir  = "movies"
)

// movieUseCase implements MovieUseCase
type movieUseCase struct {
	movieStorage ports.MovieStorage
	fileStorage  ports.FileStorage
	publisher    ports.UploadEventPublisher
	logger       *slog.Logger
}

// NewMovieUseCase создает новый экземпляр MovieUseCase
// принимает реализации портов MovieStorage, FileStorage и UploadEventPublisher
func NewMovieUseCase(
	movieStorage ports.MovieStorage,
	fileStorage ports.FileStorage,
	publisher ports.UploadEventPublisher,
	logger *slog.Logger,
) MovieUseCase {
	return &movieUseCase{
		movieStorage: movieStorage,
		fileStorage:  fileStorage,
		publisher:    publisher,
		logger:       logger,
	}
}

// validate проверяет форму входных данных до каких-либо побочных эффектов
func (in UploadMovieInput) validate() error {
	if strings.TrimSpace(in.Title) == "" {
		return domain.NewValidationError("title", "обязательное поле")
	}
	if strings.TrimSpace(in.Description) == "" {
		return domain.NewValidationError("description", "обязательное поле")
	}
	if in.Poster.Reader == nil || in.Poster.Filename == "" {
		return domain.NewValidationError("poster", "файловая часть отсутствует")
	}
	if in.Movie.Reader == nil || in.Movie.Filename == "" {
		return domain.NewValidationError("movie", "файловая часть отсутствует")
	}
	return nil
}

// storageKey строит ключ файла в хранилище: <каталог>/<имя части>_<оригинальное имя>.
// От оригинального имени остается только базовая часть, чтобы клиент
// не мог подложить разделители пути.
func storageKey(dir, field, filename string) string {
	base := filepath.Base(filepath.FromSlash(filename))
	return path.Join(dir, field+"_"+base)
}

// UploadMovie сохраняет оба файла, затем запись каталога.
// Повторная загрузка с тем же оригинальным именем файла перезаписывает
// предыдущий файл (last-writer-wins, как и в схеме именования).
func (uc *movieUseCase) UploadMovie(ctx context.Context, input UploadMovieInput) (*domain.Movie, error) {
	if err := input.validate(); err != nil {
		return nil, err
	}

	posterPath, err := uc.fileStorage.Save(ctx, storageKey(posterDir, "poster", input.Poster.Filename), input.Poster.Reader)
	if err != nil {
		return nil, fmt.Errorf("usecase: ошибка сохранения постера: %w", err)
	}

	moviePath, err := uc.fileStorage.Save(ctx, storageKey(movieDir, "movie", input.Movie.Filename), input.Movie.Reader)
	if err != nil {
		uc.removeQuietly(ctx, posterPath)
		return nil, fmt.Errorf("usecase: ошибка сохранения видеофайла: %w", err)
	}

	movie := &domain.Movie{
		ID:          uuid.New(),
		Title:       input.Title,
		Description: input.Description,
		Age:         input.Age,
		PosterPath:  posterPath,
		MoviePath:   moviePath,
		CreatedAt:   time.Now(),
	}

	if err := uc.movieStorage.SaveMovie(ctx, movie); err != nil {
		// запись не создана — файлы без записи в каталоге не оставляем
		uc.removeQuietly(ctx, posterPath)
		uc.removeQuietly(ctx, moviePath)
		return nil, fmt.Errorf("usecase: ошибка сохранения записи каталога: %w", err)
	}

	// событие — fire-and-forget: неудачная публикация не отменяет загрузку
	if err := uc.publisher.PublishMovieUploaded(ctx, payloads.MovieUploadedPayload{
		MovieID:    movie.ID,
		Title:      movie.Title,
		PosterPath: movie.PosterPath,
		MoviePath:  movie.MoviePath,
	}); err != nil {
		uc.logger.Warn("failed to publish upload event", "movie_id", movie.ID, "error", err)
	}

	uc.logger.Info("movie uploaded", "movie_id", movie.ID, "title", movie.Title)
	return movie, nil
}

func (uc *movieUseCase) removeQuietly(ctx context.Context, path string) {
	if err := uc.fileStorage.Remove(ctx, path); err != nil {
		uc.logger.Warn("failed to remove stored file after error", "path", path, "error", err)
	}
}

// ListMovies возвращает все записи каталога в заданном порядке
func (uc *movieUseCase) ListMovies(ctx context.Context, order domain.SortOrder) ([]domain.Movie, error) {
	movies, err := uc.movieStorage.ListMovies(ctx, order)
	if err != nil {
		return nil, fmt.Errorf("usecase: ошибка получения списка фильмов: %w", err)
	}
	return movies, nil
}

// GetMovieByID получает запись каталога по внутреннему ID
func (uc *movieUseCase) GetMovieByID(ctx context.Context, id uuid.UUID) (*domain.Movie, error) {
	movie, err := uc.movieStorage.GetMovieByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("usecase: ошибка получения фильма по ID %s: %w", id, err)
	}
	return movie, nil
}

// SearchMovies ищет записи по подстроке названия
func (uc *movieUseCase) SearchMovies(ctx context.Context, query string, order domain.SortOrder) ([]domain.Movie, error) {
	movies, err := uc.movieStorage.SearchMovies(ctx, query, order)
	if err != nil {
		return nil, fmt.Errorf("usecase: ошибка поиска фильмов по запросу %q: %w", query, err)
	}
	// пустой результат — нормальный ответ, не ошибка
	if movies == nil {
		movies = []domain.Movie{}
	}
	return movies, nil
}

// DeleteMovie удаляет запись и связанные с ней файлы.
// Файлы удаляются после записи: потерянный файл хуже лишнего.
func (uc *movieUseCase) DeleteMovie(ctx context.Context, id uuid.UUID) (*domain.Movie, error) {
	movie, err := uc.movieStorage.DeleteMovie(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("usecase: ошибка удаления фильма %s: %w", id, err)
	}

	uc.removeQuietly(ctx, movie.PosterPath)
	uc.removeQuietly(ctx, movie.MoviePath)

	uc.logger.Info("movie deleted", "movie_id", movie.ID, "title", movie.Title)
	return movie, nil
}

// FetchFile открывает сохраненный файл по относительному пути
func (uc *movieUseCase) FetchFile(ctx context.Context, path string) (io.ReadCloser, error) {
	rc, err := uc.fileStorage.Open(ctx, path)
	if err != nil {
		return nil, fmt.Errorf("usecase: ошибка открытия файла %q: %w", path, err)
	}
	return rc, nil
}

// VerifyStoredFiles убеждается, что оба файла записи доступны в хранилище
func (uc *movieUseCase) VerifyStoredFiles(ctx context.Context, id uuid.UUID) error {
	movie, err := uc.movieStorage.GetMovieByID(ctx, id)
	if err != nil {
		return fmt.Errorf("usecase: запись %s не найдена при проверке файлов: %w", id, err)
	}

	for _, p := range []string{movie.PosterPath, movie.MoviePath} {
		rc, err := uc.fileStorage.Open(ctx, p)
		if err != nil {
			return fmt.Errorf("usecase: файл %q записи %s недоступен: %w", p, id, err)
		}
		_ = rc.Close()
	}

	uc.logger.Info("stored files verified", "movie_id", id)
	return nil
}

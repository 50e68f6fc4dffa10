package ports

import (
	"context"
	"io"

	"github.com/GoArmGo/MovieApp/internal/domain"
	"github.com/google/uuid"
)

// MovieStorage определяет методы для взаимодействия с хранилищем записей каталога
type MovieStorage interface {
	// SaveMovie вставляет новую запись; неполные записи отклоняются хранилищем
	SaveMovie(ctx context.Context, movie *domain.Movie) error

	// GetMovieByID возвращает запись по id или domain.ErrNotFound
	GetMovieByID(ctx context.Context, id uuid.UUID) (*domain.Movie, error)

	// ListMovies возвращает все записи, отсортированные по age
	ListMovies(ctx context.Context, order domain.SortOrder) ([]domain.Movie, error)

	// SearchMovies ищет записи по подстроке в title без учета регистра.
	// Текст запроса трактуется буквально, метасимволы LIKE экранируются.
	SearchMovies(ctx context.Context, query string, order domain.SortOrder) ([]domain.Movie, error)

	// DeleteMovie удаляет запись и возвращает её; domain.ErrNotFound, если записи не было
	DeleteMovie(ctx context.Context, id uuid.UUID) (*domain.Movie, error)
}

// UserStorage определяет методы для взаимодействия с хранилищем учетных записей
type UserStorage interface {
	// CreateUser вставляет учетную запись; при занятом имени возвращает
	// domain.ErrUsernameTaken (уникальность гарантирует индекс в бд)
	CreateUser(ctx context.Context, user *domain.User) error

	// GetUserByUsername возвращает учетную запись или domain.ErrNotFound
	GetUserByUsername(ctx context.Context, username string) (*domain.User, error)
}

// FileStorage определяет интерфейс для работы с файловым хранилищем
// (локальный диск или S3/MinIO)
type FileStorage interface {
	// Save записывает содержимое reader по относительному ключу
	// (например "posters/poster_name.jpg") и возвращает сохраненный путь
	Save(ctx context.Context, key string, reader io.Reader) (string, error)

	// Open открывает ранее сохраненный файл по относительному пути.
	// Путь, выходящий за пределы корня хранилища, отклоняется с
	// domain.ErrPathOutsideRoot; отсутствующий файл — domain.ErrNotFound.
	Open(ctx context.Context, path string) (io.ReadCloser, error)

	// Remove удаляет файл по относительному пути
	Remove(ctx context.Context, path string) error
}

package usecase

import (
	"context"
	"io"

	"github.com/GoArmGo/MovieApp/internal/domain"
	"github.com/google/uuid"
)

// FilePart описывает одну файловую часть multipart-запроса:
// оригинальное имя файла и поток с его содержимым
type FilePart struct {
	Filename string
	Reader   io.Reader
}

// UploadMovieInput — входные данные операции загрузки фильма.
// Все поля обязательны; проверка выполняется до какой-либо записи на диск.
type UploadMovieInput struct {
	Title       string
	Description string
	Age         int
	Poster      FilePart
	Movie       FilePart
}

// MovieUseCase определяет интерфейс для бизнес-логики каталога фильмов
type MovieUseCase interface {
	// UploadMovie сохраняет постер и видео в файловое хранилище,
	// создает запись каталога и возвращает её.
	// Если запись сохранить не удалось, уже записанные файлы удаляются.
	UploadMovie(ctx context.Context, input UploadMovieInput) (*domain.Movie, error)

	// ListMovies возвращает все записи каталога, отсортированные по age
	ListMovies(ctx context.Context, order domain.SortOrder) ([]domain.Movie, error)

	// GetMovieByID возвращает одну запись по id или domain.ErrNotFound
	GetMovieByID(ctx context.Context, id uuid.UUID) (*domain.Movie, error)

	// SearchMovies ищет записи по подстроке названия без учета регистра
	SearchMovies(ctx context.Context, query string, order domain.SortOrder) ([]domain.Movie, error)

	// DeleteMovie удаляет запись и возвращает удаленное;
	// отсутствие записи отличимо от успешного удаления (domain.ErrNotFound)
	DeleteMovie(ctx context.Context, id uuid.UUID) (*domain.Movie, error)

	// FetchFile открывает сохраненный файл по относительному пути,
	// не позволяя выйти за пределы корня хранилища
	FetchFile(ctx context.Context, path string) (io.ReadCloser, error)

	// VerifyStoredFiles проверяет, что файлы записи существуют в хранилище
	// (используется воркером при обработке событий загрузки)
	VerifyStoredFiles(ctx context.Context, id uuid.UUID) error
}

// AuthUseCase определяет интерфейс для регистрации и входа пользователей
type AuthUseCase interface {
	// Register создает учетную запись с bcrypt-хэшем пароля.
	// Занятое имя — domain.ErrUsernameTaken.
	Register(ctx context.Context, username, password string) (*domain.User, error)

	// Login сверяет пароль с сохраненным хэшем.
	// Неизвестное имя — domain.ErrNotFound, неверный пароль — domain.ErrInvalidCredentials.
	Login(ctx context.Context, username, password string) (*domain.User, error)
}

package handler

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"mime"
	"net/http"
	"path"
	"strconv"

	"github.com/GoArmGo/MovieApp/internal/domain"
	"github.com/GoArmGo/MovieApp/internal/usecase"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
)

// MovieHandler — обработчик HTTP-запросов для работы с каталогом фильмов.
type MovieHandler struct {
	movieUseCase  usecase.MovieUseCase
	maxUploadSize int64
	logger        *slog.Logger
}

// NewMovieHandler создаёт новый экземпляр MovieHandler.
func NewMovieHandler(uc usecase.MovieUseCase, maxUploadSize int64, logger *slog.Logger) *MovieHandler {
	return &MovieHandler{
		movieUseCase:  uc,
		maxUploadSize: maxUploadSize,
		logger:        logger,
	}
}

// respondWithJSON — отправляет JSON-ответ клиенту.
func respondWithJSON(w http.ResponseWriter, code int, payload interface{}, logger *slog.Logger) {
	response, err := json.Marshal(payload)
	if err != nil {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusInternalServerError)
		logger.Error("failed to marshal JSON response", "error", err)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if _, err = w.Write(response); err != nil {
		logger.Error("failed to write HTTP response", "error", err)
	}
}

// respondWithError — отправляет JSON-ответ с ошибкой.
func respondWithError(w http.ResponseWriter, code int, message string, logger *slog.Logger) {
	respondWithJSON(w, code, map[string]string{"error": message}, logger)
}

// respondDomainError переводит доменные ошибки в коды HTTP.
// Неожиданные ошибки хранилища наружу не детализируются, только в лог.
func respondDomainError(w http.ResponseWriter, err error, logger *slog.Logger) {
	var validationErr *domain.ValidationError
	switch {
	case errors.As(err, &validationErr):
		respondWithError(w, http.StatusBadRequest, validationErr.Error(), logger)
	case errors.Is(err, domain.ErrPathOutsideRoot):
		respondWithError(w, http.StatusBadRequest, "Недопустимый путь к файлу", logger)
	case errors.Is(err, domain.ErrNotFound):
		respondWithError(w, http.StatusNotFound, "Запись не найдена", logger)
	case errors.Is(err, domain.ErrUsernameTaken):
		respondWithError(w, http.StatusConflict, "Имя пользователя уже занято", logger)
	case errors.Is(err, domain.ErrInvalidCredentials):
		respondWithError(w, http.StatusUnauthorized, "Неверный пароль", logger)
	default:
		logger.Error("unexpected error", "error", err)
		respondWithError(w, http.StatusInternalServerError, "Внутренняя ошибка сервера", logger)
	}
}

// filePart достает первую файловую часть multipart-формы по имени поля.
// Отсутствующая часть — не паника, а пустой FilePart: форму проверит usecase
// до каких-либо побочных эффектов.
func filePart(r *http.Request, field string) (usecase.FilePart, io.Closer, error) {
	if r.MultipartForm == nil {
		return usecase.FilePart{}, nil, nil
	}
	headers := r.MultipartForm.File[field]
	if len(headers) == 0 {
		return usecase.FilePart{}, nil, nil
	}

	f, err := headers[0].Open()
	if err != nil {
		return usecase.FilePart{}, nil, err
	}
	return usecase.FilePart{Filename: headers[0].Filename, Reader: f}, f, nil
}

// Upload — принимает multipart-запрос с постером, видео и метаданными,
// сохраняет файлы и создает запись каталога.
func (h *MovieHandler) Upload(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(h.maxUploadSize); err != nil {
		h.logger.Warn("malformed multipart request", "error", err)
		respondWithError(w, http.StatusBadRequest, "Некорректный multipart-запрос", h.logger)
		return
	}

	age, err := strconv.Atoi(r.FormValue("age"))
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Не указан или некорректен age", h.logger)
		return
	}

	input := usecase.UploadMovieInput{
		Title:       r.FormValue("title"),
		Description: r.FormValue("description"),
		Age:         age,
	}

	poster, posterCloser, err := filePart(r, "poster")
	if err != nil {
		h.logger.Error("failed to open poster part", "error", err)
		respondWithError(w, http.StatusInternalServerError, "Ошибка чтения загруженного файла", h.logger)
		return
	}
	if posterCloser != nil {
		defer posterCloser.Close()
	}
	input.Poster = poster

	movieFile, movieCloser, err := filePart(r, "movie")
	if err != nil {
		h.logger.Error("failed to open movie part", "error", err)
		respondWithError(w, http.StatusInternalServerError, "Ошибка чтения загруженного файла", h.logger)
		return
	}
	if movieCloser != nil {
		defer movieCloser.Close()
	}
	input.Movie = movieFile

	h.logger.Info("processing upload", "title", input.Title, "age", input.Age)

	movie, err := h.movieUseCase.UploadMovie(r.Context(), input)
	if err != nil {
		h.logger.Error("upload failed", "title", input.Title, "error", err)
		respondDomainError(w, err, h.logger)
		return
	}

	respondWithJSON(w, http.StatusCreated, movie, h.logger)
}

// sortOrderParam читает query-параметр sort.
// Отсутствующий параметр — сортировка по возрастанию; любое значение,
// кроме "asc", — по убыванию.
func sortOrderParam(r *http.Request) domain.SortOrder {
	raw := r.URL.Query().Get("sort")
	if raw == "" {
		return domain.SortAsc
	}
	return domain.ParseSortOrder(raw)
}

// ListAll — возвращает все записи каталога, порядок задает параметр sort.
func (h *MovieHandler) ListAll(w http.ResponseWriter, r *http.Request) {
	movies, err := h.movieUseCase.ListMovies(r.Context(), sortOrderParam(r))
	if err != nil {
		h.logger.Error("failed to list movies", "error", err)
		respondDomainError(w, err, h.logger)
		return
	}
	respondWithJSON(w, http.StatusOK, movies, h.logger)
}

// ListSorted — возвращает записи каталога по убыванию age.
func (h *MovieHandler) ListSorted(w http.ResponseWriter, r *http.Request) {
	movies, err := h.movieUseCase.ListMovies(r.Context(), domain.SortDesc)
	if err != nil {
		h.logger.Error("failed to list sorted movies", "error", err)
		respondDomainError(w, err, h.logger)
		return
	}
	respondWithJSON(w, http.StatusOK, movies, h.logger)
}

// movieID разбирает path-параметр id; некорректный UUID — это 400,
// а не 404: ошибка формы запроса отличима от отсутствия записи.
func movieID(r *http.Request) (uuid.UUID, error) {
	return uuid.Parse(chi.URLParam(r, "id"))
}

// GetByID — возвращает одну запись каталога по id.
func (h *MovieHandler) GetByID(w http.ResponseWriter, r *http.Request) {
	id, err := movieID(r)
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Некорректный id", h.logger)
		return
	}

	movie, err := h.movieUseCase.GetMovieByID(r.Context(), id)
	if err != nil {
		respondDomainError(w, err, h.logger)
		return
	}
	respondWithJSON(w, http.StatusOK, movie, h.logger)
}

// Delete — удаляет запись каталога по id и возвращает удаленное.
func (h *MovieHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := movieID(r)
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Некорректный id", h.logger)
		return
	}

	movie, err := h.movieUseCase.DeleteMovie(r.Context(), id)
	if err != nil {
		respondDomainError(w, err, h.logger)
		return
	}
	respondWithJSON(w, http.StatusOK, movie, h.logger)
}

// Search — ищет записи по подстроке названия без учета регистра.
func (h *MovieHandler) Search(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query().Get("query")
	if query == "" {
		h.logger.Warn("missing required parameter", "param", "query")
		respondWithError(w, http.StatusBadRequest, "Не указан параметр query", h.logger)
		return
	}

	movies, err := h.movieUseCase.SearchMovies(r.Context(), query, sortOrderParam(r))
	if err != nil {
		h.logger.Error("search failed", "query", query, "error", err)
		respondDomainError(w, err, h.logger)
		return
	}
	respondWithJSON(w, http.StatusOK, movies, h.logger)
}

// fileParam достает относительный путь файла из JSON-тела запроса
// или, как запасной вариант, из одноименного query-параметра.
func fileParam(r *http.Request, field string) string {
	if r.Body != nil {
		var body map[string]string
		if err := json.NewDecoder(r.Body).Decode(&body); err == nil {
			if v := body[field]; v != "" {
				return v
			}
		}
	}
	return r.URL.Query().Get(field)
}

// serveFile отдает сохраненный файл по относительному пути,
// не позволяя запросу выйти за пределы каталога загрузок.
func (h *MovieHandler) serveFile(w http.ResponseWriter, r *http.Request, field string) {
	relPath := fileParam(r, field)
	if relPath == "" {
		respondWithError(w, http.StatusBadRequest, "Не указан "+field, h.logger)
		return
	}

	rc, err := h.movieUseCase.FetchFile(r.Context(), relPath)
	if err != nil {
		respondDomainError(w, err, h.logger)
		return
	}
	defer rc.Close()

	if ct := mime.TypeByExtension(path.Ext(relPath)); ct != "" {
		w.Header().Set("Content-Type", ct)
	} else {
		w.Header().Set("Content-Type", "application/octet-stream")
	}

	if _, err := io.Copy(w, rc); err != nil {
		h.logger.Error("failed to stream file", "path", relPath, "error", err)
	}
}

// GetVideo — отдает сохраненный видеофайл по пути из поля video.
func (h *MovieHandler) GetVideo(w http.ResponseWriter, r *http.Request) {
	h.serveFile(w, r, "video")
}

// GetPoster — отдает сохраненный постер по пути из поля poster.
func (h *MovieHandler) GetPoster(w http.ResponseWriter, r *http.Request) {
	h.serveFile(w, r, "poster")
}

package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"sort"
	"strings"
	"testing"

	"github.com/GoArmGo/MovieApp/internal/adapter/storage/local"
	"github.com/GoArmGo/MovieApp/internal/domain"
	"github.com/GoArmGo/MovieApp/internal/rabbitmq"
	"github.com/GoArmGo/MovieApp/internal/usecase"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

type fakeMovieStorage struct {
	movies map[uuid.UUID]domain.Movie
}

func newFakeMovieStorage() *fakeMovieStorage {
	return &fakeMovieStorage{movies: make(map[uuid.UUID]domain.Movie)}
}

func (s *fakeMovieStorage) SaveMovie(_ context.Context, movie *domain.Movie) error {
	s.movies[movie.ID] = *movie
	return nil
}

func (s *fakeMovieStorage) GetMovieByID(_ context.Context, id uuid.UUID) (*domain.Movie, error) {
	m, ok := s.movies[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &m, nil
}

func (s *fakeMovieStorage) collect(order domain.SortOrder, filter func(domain.Movie) bool) []domain.Movie {
	var out []domain.Movie
	for _, m := range s.movies {
		if filter == nil || filter(m) {
			out = append(out, m)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if order == domain.SortAsc {
			return out[i].Age < out[j].Age
		}
		return out[i].Age > out[j].Age
	})
	return out
}

func (s *fakeMovieStorage) ListMovies(_ context.Context, order domain.SortOrder) ([]domain.Movie, error) {
	return s.collect(order, nil), nil
}

func (s *fakeMovieStorage) SearchMovies(_ context.Context, query string, order domain.SortOrder) ([]domain.Movie, error) {
	q := strings.ToLower(query)
	return s.collect(order, func(m domain.Movie) bool {
		return strings.Contains(strings.ToLower(m.Title), q)
	}), nil
}

func (s *fakeMovieStorage) DeleteMovie(_ context.Context, id uuid.UUID) (*domain.Movie, error) {
	m, ok := s.movies[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	delete(s.movies, id)
	return &m, nil
}

type fakeUserStorage struct {
	users map[string]domain.User
}

func newFakeUserStorage() *fakeUserStorage {
	return &fakeUserStorage{users: make(map[string]domain.User)}
}

func (s *fakeUserStorage) CreateUser(_ context.Context, user *domain.User) error {
	if _, exists := s.users[user.Username]; exists {
		return domain.ErrUsernameTaken
	}
	s.users[user.Username] = *user
	return nil
}

func (s *fakeUserStorage) GetUserByUsername(_ context.Context, username string) (*domain.User, error) {
	u, ok := s.users[username]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &u, nil
}

// newTestServer поднимает httptest-сервер с настоящими usecase и
// настоящим локальным файловым хранилищем во временном каталоге
func newTestServer(t *testing.T) (*httptest.Server, *fakeMovieStorage) {
	t.Helper()
	logger := testLogger()

	files, err := local.NewStorage(t.TempDir(), logger)
	require.NoError(t, err)

	movieStore := newFakeMovieStorage()
	movieUC := usecase.NewMovieUseCase(movieStore, files, rabbitmq.NewNoopPublisher(), logger)
	authUC := usecase.NewAuthUseCase(newFakeUserStorage(), logger)

	movieHandler := NewMovieHandler(movieUC, 32<<20, logger)
	authHandler := NewAuthHandler(authUC, logger)

	r := chi.NewRouter()
	r.Post("/upload", movieHandler.Upload)
	r.Get("/movie/all", movieHandler.ListAll)
	r.Get("/movie/sort", movieHandler.ListSorted)
	r.Get("/movie/video", movieHandler.GetVideo)
	r.Get("/movie/poster", movieHandler.GetPoster)
	r.Get("/movie/{id}", movieHandler.GetByID)
	r.Delete("/movie/{id}", movieHandler.Delete)
	r.Get("/search", movieHandler.Search)
	r.Post("/register", authHandler.Register)
	r.Post("/login", authHandler.Login)

	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)
	return srv, movieStore
}

// multipartBody собирает multipart-запрос загрузки фильма
func multipartBody(t *testing.T, fields map[string]string, files map[string][2]string) (*bytes.Buffer, string) {
	t.Helper()
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)

	for name, value := range fields {
		require.NoError(t, w.WriteField(name, value))
	}
	for field, nameAndContent := range files {
		fw, err := w.CreateFormFile(field, nameAndContent[0])
		require.NoError(t, err)
		_, err = fw.Write([]byte(nameAndContent[1]))
		require.NoError(t, err)
	}
	require.NoError(t, w.Close())
	return &buf, w.FormDataContentType()
}

func uploadMovie(t *testing.T, srv *httptest.Server, title string, age string) domain.Movie {
	t.Helper()
	body, contentType := multipartBody(t,
		map[string]string{"title": title, "description": "desc of " + title, "age": age},
		map[string][2]string{
			"poster": {title + ".jpg", "poster of " + title},
			"movie":  {title + ".mp4", "video of " + title},
		},
	)

	resp, err := http.Post(srv.URL+"/upload", contentType, body)
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	var movie domain.Movie
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&movie))
	return movie
}

func decodeMovies(t *testing.T, resp *http.Response) []domain.Movie {
	t.Helper()
	defer resp.Body.Close()
	var movies []domain.Movie
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&movies))
	return movies
}

func ages(movies []domain.Movie) []int {
	out := make([]int, len(movies))
	for i, m := range movies {
		out[i] = m.Age
	}
	return out
}

func TestUpload_CreatesRecordAndStoresFiles(t *testing.T) {
	srv, store := newTestServer(t)

	movie := uploadMovie(t, srv, "Inception", "16")

	assert.Equal(t, "Inception", movie.Title)
	assert.Equal(t, 16, movie.Age)
	assert.Equal(t, "posters/poster_Inception.jpg", movie.PosterPath)
	assert.Equal(t, "movies/movie_Inception.mp4", movie.MoviePath)
	assert.Len(t, store.movies, 1)

	// сохраненные пути должны разрешаться ровно в загруженные байты
	req, err := http.NewRequest(http.MethodGet, srv.URL+"/movie/poster",
		strings.NewReader(`{"poster":"`+movie.PosterPath+`"}`))
	require.NoError(t, err)

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	data, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Equal(t, "poster of Inception", string(data))
}

func TestUpload_MissingFilePart(t *testing.T) {
	srv, store := newTestServer(t)

	body, contentType := multipartBody(t,
		map[string]string{"title": "Broken", "description": "no video", "age": "12"},
		map[string][2]string{"poster": {"b.jpg", "bytes"}},
	)

	resp, err := http.Post(srv.URL+"/upload", contentType, body)
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Empty(t, store.movies)
}

func TestUpload_BadAge(t *testing.T) {
	srv, store := newTestServer(t)

	body, contentType := multipartBody(t,
		map[string]string{"title": "X", "description": "y", "age": "not-a-number"},
		map[string][2]string{
			"poster": {"x.jpg", "p"},
			"movie":  {"x.mp4", "v"},
		},
	)

	resp, err := http.Post(srv.URL+"/upload", contentType, body)
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Empty(t, store.movies)
}

func TestListAll_SortToggle(t *testing.T) {
	srv, _ := newTestServer(t)
	uploadMovie(t, srv, "A", "5")
	uploadMovie(t, srv, "B", "12")
	uploadMovie(t, srv, "C", "8")

	tests := []struct {
		name string
		url  string
		want []int
	}{
		{"default is ascending", "/movie/all", []int{5, 8, 12}},
		{"explicit asc", "/movie/all?sort=asc", []int{5, 8, 12}},
		{"desc", "/movie/all?sort=desc", []int{12, 8, 5}},
		{"anything else is descending", "/movie/all?sort=bogus", []int{12, 8, 5}},
		{"movie/sort is always descending", "/movie/sort", []int{12, 8, 5}},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			resp, err := http.Get(srv.URL + tc.url)
			require.NoError(t, err)
			require.Equal(t, http.StatusOK, resp.StatusCode)
			assert.Equal(t, tc.want, ages(decodeMovies(t, resp)))
		})
	}
}

func TestGetByID(t *testing.T) {
	srv, _ := newTestServer(t)
	uploaded := uploadMovie(t, srv, "Solaris", "12")

	t.Run("found", func(t *testing.T) {
		resp, err := http.Get(srv.URL + "/movie/" + uploaded.ID.String())
		require.NoError(t, err)
		defer resp.Body.Close()
		require.Equal(t, http.StatusOK, resp.StatusCode)

		var movie domain.Movie
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&movie))
		assert.Equal(t, uploaded, movie)
	})

	t.Run("unknown id is 404", func(t *testing.T) {
		resp, err := http.Get(srv.URL + "/movie/" + uuid.NewString())
		require.NoError(t, err)
		resp.Body.Close()
		assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	})

	t.Run("malformed id is 400", func(t *testing.T) {
		resp, err := http.Get(srv.URL + "/movie/not-a-uuid")
		require.NoError(t, err)
		resp.Body.Close()
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	})
}

func TestDelete_DistinguishesHitFromMiss(t *testing.T) {
	srv, store := newTestServer(t)
	uploaded := uploadMovie(t, srv, "Stalker", "18")

	req, err := http.NewRequest(http.MethodDelete, srv.URL+"/movie/"+uploaded.ID.String(), nil)
	require.NoError(t, err)
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	require.Equal(t, http.StatusOK, resp.StatusCode)
	var deleted domain.Movie
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&deleted))
	assert.Equal(t, uploaded.ID, deleted.ID)
	assert.Empty(t, store.movies)

	// повторное удаление того же id — уже 404, а не 200 с пустым телом
	req, err = http.NewRequest(http.MethodDelete, srv.URL+"/movie/"+uploaded.ID.String(), nil)
	require.NoError(t, err)
	resp2, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	resp2.Body.Close()
	assert.Equal(t, http.StatusNotFound, resp2.StatusCode)
}

func TestSearch(t *testing.T) {
	srv, _ := newTestServer(t)
	uploadMovie(t, srv, "Inception", "16")
	uploadMovie(t, srv, "Interstellar", "12")
	uploadMovie(t, srv, "Alien", "18")

	t.Run("case-insensitive substring", func(t *testing.T) {
		resp, err := http.Get(srv.URL + "/search?query=inte")
		require.NoError(t, err)
		require.Equal(t, http.StatusOK, resp.StatusCode)

		movies := decodeMovies(t, resp)
		require.Len(t, movies, 1)
		assert.Equal(t, "Interstellar", movies[0].Title)
	})

	t.Run("no match is empty list, not error", func(t *testing.T) {
		resp, err := http.Get(srv.URL + "/search?query=zzz")
		require.NoError(t, err)
		require.Equal(t, http.StatusOK, resp.StatusCode)
		assert.Empty(t, decodeMovies(t, resp))
	})

	t.Run("sort applies to results", func(t *testing.T) {
		resp, err := http.Get(srv.URL + "/search?query=e&sort=desc")
		require.NoError(t, err)
		require.Equal(t, http.StatusOK, resp.StatusCode)
		assert.Equal(t, []int{18, 16, 12}, ages(decodeMovies(t, resp)))
	})

	t.Run("missing query is 400", func(t *testing.T) {
		resp, err := http.Get(srv.URL + "/search")
		require.NoError(t, err)
		resp.Body.Close()
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	})
}

func TestServeFile(t *testing.T) {
	srv, _ := newTestServer(t)
	uploaded := uploadMovie(t, srv, "Brazil", "14")

	get := func(t *testing.T, field, value string) *http.Response {
		t.Helper()
		req, err := http.NewRequest(http.MethodGet, srv.URL+"/movie/"+field,
			strings.NewReader(`{"`+field+`":"`+value+`"}`))
		require.NoError(t, err)
		resp, err := http.DefaultClient.Do(req)
		require.NoError(t, err)
		return resp
	}

	t.Run("streams stored video", func(t *testing.T) {
		resp := get(t, "video", uploaded.MoviePath)
		defer resp.Body.Close()
		require.Equal(t, http.StatusOK, resp.StatusCode)

		data, err := io.ReadAll(resp.Body)
		require.NoError(t, err)
		assert.Equal(t, "video of Brazil", string(data))
	})

	t.Run("query param fallback", func(t *testing.T) {
		resp, err := http.Get(srv.URL + "/movie/video?video=" + uploaded.MoviePath)
		require.NoError(t, err)
		defer resp.Body.Close()
		assert.Equal(t, http.StatusOK, resp.StatusCode)
	})

	t.Run("path traversal is rejected", func(t *testing.T) {
		resp := get(t, "video", "../../etc/passwd")
		resp.Body.Close()
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	})

	t.Run("missing file is 404", func(t *testing.T) {
		resp := get(t, "poster", "posters/poster_nope.jpg")
		resp.Body.Close()
		assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	})

	t.Run("missing field is 400", func(t *testing.T) {
		resp, err := http.Get(srv.URL + "/movie/poster")
		require.NoError(t, err)
		resp.Body.Close()
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	})
}

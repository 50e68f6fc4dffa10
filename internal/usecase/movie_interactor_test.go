package usecase

import (
	"bytes"
	"context"
	"errors"
	"io"
	"log/slog"
	"sort"
	"strings"
	"testing"

	"github.com/GoArmGo/MovieApp/internal/domain"
	"github.com/GoArmGo/MovieApp/internal/messaging/payloads"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

type fakeMovieStorage struct {
	movies  map[uuid.UUID]domain.Movie
	saveErr error
}

func newFakeMovieStorage() *fakeMovieStorage {
	return &fakeMovieStorage{movies: make(map[uuid.UUID]domain.Movie)}
}

func (s *fakeMovieStorage) SaveMovie(_ context.Context, movie *domain.Movie) error {
	if s.saveErr != nil {
		return s.saveErr
	}
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

func (s *fakeMovieStorage) sorted(order domain.SortOrder, filter func(domain.Movie) bool) []domain.Movie {
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
	return s.sorted(order, nil), nil
}

func (s *fakeMovieStorage) SearchMovies(_ context.Context, query string, order domain.SortOrder) ([]domain.Movie, error) {
	q := strings.ToLower(query)
	return s.sorted(order, func(m domain.Movie) bool {
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

type fakeFileStorage struct {
	files   map[string][]byte
	removed []string
	saveErr error
}

func newFakeFileStorage() *fakeFileStorage {
	return &fakeFileStorage{files: make(map[string][]byte)}
}

func (s *fakeFileStorage) Save(_ context.Context, key string, reader io.Reader) (string, error) {
	if s.saveErr != nil {
		return "", s.saveErr
	}
	data, err := io.ReadAll(reader)
	if err != nil {
		return "", err
	}
	s.files[key] = data
	return key, nil
}

func (s *fakeFileStorage) Open(_ context.Context, path string) (io.ReadCloser, error) {
	data, ok := s.files[path]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return io.NopCloser(bytes.NewReader(data)), nil
}

func (s *fakeFileStorage) Remove(_ context.Context, path string) error {
	delete(s.files, path)
	s.removed = append(s.removed, path)
	return nil
}

type fakePublisher struct {
	events []payloads.MovieUploadedPayload
	err    error
}

func (p *fakePublisher) PublishMovieUploaded(_ context.Context, payload payloads.MovieUploadedPayload) error {
	if p.err != nil {
		return p.err
	}
	p.events = append(p.events, payload)
	return nil
}

func validInput() UploadMovieInput {
	return UploadMovieInput{
		Title:       "Inception",
		Description: "Dreams within dreams",
		Age:         16,
		Poster:      FilePart{Filename: "inception.jpg", Reader: strings.NewReader("poster-bytes")},
		Movie:       FilePart{Filename: "inception.mp4", Reader: strings.NewReader("movie-bytes")},
	}
}

func TestUploadMovie_Success(t *testing.T) {
	movies := newFakeMovieStorage()
	files := newFakeFileStorage()
	pub := &fakePublisher{}
	uc := NewMovieUseCase(movies, files, pub, testLogger())

	movie, err := uc.UploadMovie(context.Background(), validInput())
	require.NoError(t, err)

	assert.Equal(t, "posters/poster_inception.jpg", movie.PosterPath)
	assert.Equal(t, "movies/movie_inception.mp4", movie.MoviePath)
	assert.Equal(t, "poster-bytes", string(files.files[movie.PosterPath]))
	assert.Equal(t, "movie-bytes", string(files.files[movie.MoviePath]))

	require.Len(t, movies.movies, 1)
	stored := movies.movies[movie.ID]
	assert.Equal(t, "Inception", stored.Title)
	assert.Equal(t, 16, stored.Age)

	require.Len(t, pub.events, 1)
	assert.Equal(t, movie.ID, pub.events[0].MovieID)
}

func TestUploadMovie_MissingParts(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*UploadMovieInput)
	}{
		{"no poster", func(in *UploadMovieInput) { in.Poster = FilePart{} }},
		{"no movie", func(in *UploadMovieInput) { in.Movie = FilePart{} }},
		{"empty title", func(in *UploadMovieInput) { in.Title = "  " }},
		{"empty description", func(in *UploadMovieInput) { in.Description = "" }},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			movies := newFakeMovieStorage()
			files := newFakeFileStorage()
			uc := NewMovieUseCase(movies, files, &fakePublisher{}, testLogger())

			in := validInput()
			tc.mutate(&in)

			_, err := uc.UploadMovie(context.Background(), in)

			var validationErr *domain.ValidationError
			require.ErrorAs(t, err, &validationErr)

			// никакого побочного эффекта до успешной валидации
			assert.Empty(t, files.files)
			assert.Empty(t, movies.movies)
		})
	}
}

func TestUploadMovie_StoreFailureRemovesFiles(t *testing.T) {
	movies := newFakeMovieStorage()
	movies.saveErr = errors.New("insert failed")
	files := newFakeFileStorage()
	pub := &fakePublisher{}
	uc := NewMovieUseCase(movies, files, pub, testLogger())

	_, err := uc.UploadMovie(context.Background(), validInput())
	require.Error(t, err)

	// запись не создана — файлы тоже не должны остаться
	assert.Empty(t, files.files)
	assert.ElementsMatch(t, files.removed,
		[]string{"posters/poster_inception.jpg", "movies/movie_inception.mp4"})
	assert.Empty(t, pub.events)
}

func TestUploadMovie_PublisherFailureDoesNotFailUpload(t *testing.T) {
	movies := newFakeMovieStorage()
	files := newFakeFileStorage()
	uc := NewMovieUseCase(movies, files, &fakePublisher{err: errors.New("amqp down")}, testLogger())

	movie, err := uc.UploadMovie(context.Background(), validInput())
	require.NoError(t, err)
	assert.Len(t, movies.movies, 1)
	assert.NotNil(t, movie)
}

func TestUploadMovie_SanitizesFilename(t *testing.T) {
	movies := newFakeMovieStorage()
	files := newFakeFileStorage()
	uc := NewMovieUseCase(movies, files, &fakePublisher{}, testLogger())

	in := validInput()
	in.Poster.Filename = "../../etc/passwd"

	movie, err := uc.UploadMovie(context.Background(), in)
	require.NoError(t, err)
	assert.Equal(t, "posters/poster_passwd", movie.PosterPath)
}

func TestDeleteMovie_RemovesRecordAndFiles(t *testing.T) {
	movies := newFakeMovieStorage()
	files := newFakeFileStorage()
	uc := NewMovieUseCase(movies, files, &fakePublisher{}, testLogger())

	movie, err := uc.UploadMovie(context.Background(), validInput())
	require.NoError(t, err)

	deleted, err := uc.DeleteMovie(context.Background(), movie.ID)
	require.NoError(t, err)
	assert.Equal(t, movie.ID, deleted.ID)
	assert.Empty(t, movies.movies)
	assert.Empty(t, files.files)
}

func TestDeleteMovie_NotFound(t *testing.T) {
	uc := NewMovieUseCase(newFakeMovieStorage(), newFakeFileStorage(), &fakePublisher{}, testLogger())

	_, err := uc.DeleteMovie(context.Background(), uuid.New())
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestSearchMovies_EmptyResultIsNotError(t *testing.T) {
	uc := NewMovieUseCase(newFakeMovieStorage(), newFakeFileStorage(), &fakePublisher{}, testLogger())

	movies, err := uc.SearchMovies(context.Background(), "nothing here", domain.SortDesc)
	require.NoError(t, err)
	assert.NotNil(t, movies)
	assert.Empty(t, movies)
}

func TestGetMovieByID_RoundTrip(t *testing.T) {
	movies := newFakeMovieStorage()
	files := newFakeFileStorage()
	uc := NewMovieUseCase(movies, files, &fakePublisher{}, testLogger())

	uploaded, err := uc.UploadMovie(context.Background(), validInput())
	require.NoError(t, err)

	fetched, err := uc.GetMovieByID(context.Background(), uploaded.ID)
	require.NoError(t, err)
	assert.Equal(t, uploaded, fetched)
}

func TestVerifyStoredFiles(t *testing.T) {
	movies := newFakeMovieStorage()
	files := newFakeFileStorage()
	uc := NewMovieUseCase(movies, files, &fakePublisher{}, testLogger())

	movie, err := uc.UploadMovie(context.Background(), validInput())
	require.NoError(t, err)

	require.NoError(t, uc.VerifyStoredFiles(context.Background(), movie.ID))

	// потерянный файл должен обнаруживаться
	require.NoError(t, files.Remove(context.Background(), movie.MoviePath))
	err = uc.VerifyStoredFiles(context.Background(), movie.ID)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

package app

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/GoArmGo/MovieApp/internal/config"
	"github.com/GoArmGo/MovieApp/internal/handler"
	"github.com/GoArmGo/MovieApp/internal/usecase"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// newRouter собирает маршруты HTTP-поверхности каталога
func newRouter(
	cfg *config.Config,
	logger *slog.Logger,
	movieUseCase usecase.MovieUseCase,
	authUseCase usecase.AuthUseCase,
	staticRoot string,
) chi.Router {
	movieHandler := handler.NewMovieHandler(movieUseCase, cfg.MaxUploadSize, logger)
	authHandler := handler.NewAuthHandler(authUseCase, logger)

	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(handler.RequestLogger(logger))
	r.Use(middleware.Timeout(cfg.RequestTimeout))

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

	// Раздача загруженных файлов от корня сайта (только локальный бэкенд).
	// http.FileServer сам не выпускает запросы за пределы каталога.
	if staticRoot != "" {
		fs := http.FileServer(http.Dir(staticRoot))
		r.Get("/posters/*", fs.ServeHTTP)
		r.Get("/movies/*", fs.ServeHTTP)
	}

	return r
}

// runServer запускает HTTP-сервер и блокируется до отмены контекста
func runServer(
	ctx context.Context,
	cfg *config.Config,
	logger *slog.Logger,
	movieUseCase usecase.MovieUseCase,
	authUseCase usecase.AuthUseCase,
	staticRoot string,
) error {
	serverAddr := fmt.Sprintf(":%s", cfg.ServerPort)
	server := &http.Server{
		Addr:    serverAddr,
		Handler: newRouter(cfg, logger, movieUseCase, authUseCase, staticRoot),
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("server listening", "addr", serverAddr)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("ошибка при запуске сервера: %w", err)
	case <-ctx.Done():
	}

	logger.Info("shutdown signal received, stopping server")

	ctxServer, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctxServer); err != nil {
		return fmt.Errorf("graceful shutdown failed: %w", err)
	}

	logger.Info("server stopped gracefully")
	return nil
}

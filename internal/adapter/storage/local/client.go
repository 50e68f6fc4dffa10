package local

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/GoArmGo/MovieApp/internal/domain"
)

// Storage реализует ports.FileStorage поверх локального диска.
// Все пути строго ограничены корневым каталогом загрузок: клиентский
// путь, выходящий за его пределы, отклоняется до обращения к диску.
type Storage struct {
	root   string
	logger *slog.Logger
}

// NewStorage создает хранилище с корнем root и каталогами для постеров и видео
func NewStorage(root string, logger *slog.Logger) (*Storage, error) {
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("ошибка определения абсолютного пути %q: %w", root, err)
	}

	for _, dir := range []string{abs, filepath.Join(abs, "posters"), filepath.Join(abs, "movies")} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("ошибка создания каталога %q: %w", dir, err)
		}
	}

	logger.Info("local file storage initialized", "root", abs)
	return &Storage{root: abs, logger: logger}, nil
}

// Root возвращает абсолютный корень хранилища (для раздачи статики)
func (s *Storage) Root() string {
	return s.root
}

// resolve переводит относительный путь в абсолютный внутри корня.
// Абсолютные пути и пути, покидающие корень через "..", отклоняются.
func (s *Storage) resolve(rel string) (string, error) {
	if rel == "" || filepath.IsAbs(rel) || strings.HasPrefix(rel, "/") {
		return "", domain.ErrPathOutsideRoot
	}

	abs := filepath.Clean(filepath.Join(s.root, filepath.FromSlash(rel)))
	if abs == s.root || !strings.HasPrefix(abs, s.root+string(os.PathSeparator)) {
		return "", domain.ErrPathOutsideRoot
	}
	return abs, nil
}

// Save записывает содержимое reader по ключу key и возвращает сохраненный
// относительный путь. Существующий файл с тем же именем перезаписывается.
func (s *Storage) Save(ctx context.Context, key string, reader io.Reader) (string, error) {
	abs, err := s.resolve(key)
	if err != nil {
		return "", fmt.Errorf("недопустимый ключ файла %q: %w", key, err)
	}

	if err := os.MkdirAll(filepath.Dir(abs), 0o755); err != nil {
		return "", fmt.Errorf("ошибка создания каталога для %q: %w", key, err)
	}

	f, err := os.Create(abs)
	if err != nil {
		return "", fmt.Errorf("ошибка создания файла %q: %w", key, err)
	}
	defer f.Close()

	written, err := io.Copy(f, reader)
	if err != nil {
		_ = os.Remove(abs)
		return "", fmt.Errorf("ошибка записи файла %q: %w", key, err)
	}

	s.logger.Info("file stored", "key", key, "bytes", written)
	return filepath.ToSlash(key), nil
}

// Open открывает сохраненный файл по относительному пути
func (s *Storage) Open(ctx context.Context, path string) (io.ReadCloser, error) {
	abs, err := s.resolve(path)
	if err != nil {
		s.logger.Warn("file path rejected", "path", path)
		return nil, err
	}

	f, err := os.Open(abs)
	if err != nil {
		if os.IsNotExist(err) {
			s.logger.Warn("file not found", "path", path)
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("ошибка открытия файла %q: %w", path, err)
	}
	return f, nil
}

// Remove удаляет файл; отсутствие файла ошибкой не считается
func (s *Storage) Remove(ctx context.Context, path string) error {
	abs, err := s.resolve(path)
	if err != nil {
		return err
	}

	if err := os.Remove(abs); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("ошибка удаления файла %q: %w", path, err)
	}
	return nil
}

package domain

import (
	"errors"
	"fmt"
)

// Сентинельные ошибки доменного уровня.
// Хранилища и usecase возвращают их (возможно, обернутыми через %w),
// HTTP-обработчики переводят их в коды ответов.
var (
	// ErrNotFound — запрошенная запись отсутствует в хранилище
	ErrNotFound = errors.New("record not found")

	// ErrUsernameTaken — нарушение уникальности имени пользователя,
	// гарантию дает уникальный индекс в бд, а не проверка в приложении
	ErrUsernameTaken = errors.New("username already taken")

	// ErrInvalidCredentials — пароль не совпал с сохраненным хэшем
	ErrInvalidCredentials = errors.New("invalid credentials")

	// ErrPathOutsideRoot — запрошенный путь выходит за пределы каталога загрузок
	ErrPathOutsideRoot = errors.New("path escapes upload root")
)

// ValidationError описывает некорректную форму входного запроса
// (отсутствующая часть multipart, пустое поле и т.п.)
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation failed: %s: %s", e.Field, e.Reason)
}

// NewValidationError создает ValidationError для поля field
func NewValidationError(field, reason string) *ValidationError {
	return &ValidationError{Field: field, Reason: reason}
}

package domain

import (
	"errors"
	"fmt"
)

// ErrNotFound возвращается хранилищами, когда запись не найдена.
// Хранилища оборачивают его через %w, так что проверять нужно errors.Is.
var ErrNotFound = errors.New("not found")

// ValidationError описывает некорректный ввод пользователя.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

// NewValidationError создает ValidationError для поля.
func NewValidationError(field, format string, args ...any) *ValidationError {
	return &ValidationError{Field: field, Message: fmt.Sprintf(format, args...)}
}

// NotFoundf оборачивает ErrNotFound сообщением с контекстом.
func NotFoundf(format string, args ...any) error {
	return fmt.Errorf("%s: %w", fmt.Sprintf(format, args...), ErrNotFound)
}

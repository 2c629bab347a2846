package e

import "fmt"

var (
	// Ошибки валидации входных данных (исправляются вызывающим, без ретраев)
	ErrEmbeddingRequired    = fmt.Errorf("product embedding is required")
	ErrVectorSizeMismatch   = fmt.Errorf("vector size mismatch")
	ErrLimitMustBePositive  = fmt.Errorf("limit must be positive")
	ErrProductIDRequired    = fmt.Errorf("product id is required")
	ErrEmptyBatch           = fmt.Errorf("empty batch")
	ErrIncorrectEnvVariable = fmt.Errorf("incorrect env variable")

	// Ожидаемый исход, не сбой
	ErrProductNotFound = fmt.Errorf("product not found")

	// Инфраструктурные ошибки (ретрай — ответственность вызывающего)
	ErrIndexUnavailable = fmt.Errorf("vector index unavailable")

	// 400 Bad Request
	ErrStatusBadRequest = fmt.Errorf("bad request")

	// 500 Internal Server Error
	ErrInternalServerError = fmt.Errorf("internal server error")
)

// Wrap оборачивает ошибку
func Wrap(msg string, err error) error {
	return fmt.Errorf("%s: %w", msg, err)
}

package usecase

import (
	"context"
	"time"

	"github.com/DRSN-tech/reco-service/internal/domain"
)

// EmbedderInfra — внешняя модель эмбеддингов (текст -> вектор).
// Детерминирована при одинаковом тексте и версии модели.
type EmbedderInfra interface {
	EmbedTexts(ctx context.Context, texts []string) ([][]float32, error)
	ModelVersion() string
}

type CatalogInfra interface {
	ReadProducts(ctx context.Context, path string) ([]CatalogRow, error)
}

type SnapshotInfra interface {
	// WriteSnapshot записывает неизменяемый снапшот батча (включая эмбеддинги)
	// в колоночный файл, партиционированный по дате запуска. Возвращает путь.
	WriteSnapshot(products []domain.Product, runDate time.Time) (string, error)
}

type EventProducerInfra interface {
	PublishReindexed(ctx context.Context, event *ReindexedEvent) error
}

package usecase

import (
	"context"
	"time"

	"github.com/DRSN-tech/reco-service/internal/domain"
)

// ProductRepository — контракт векторного индекса товаров.
// Реализация обязана валидировать размерность вектора перед записью
// и никогда не считать отсутствие точки ошибкой.
type ProductRepository interface {
	Upsert(ctx context.Context, product *domain.Product) error
	UpsertBatch(ctx context.Context, products []domain.Product) error
	// GetByID возвращает payload товара; (nil, nil) если точки нет.
	GetByID(ctx context.Context, productID string) (*domain.Product, error)
	// GetByIDWithVector дополнительно заполняет Embedding товара.
	GetByIDWithVector(ctx context.Context, productID string) (*domain.Product, error)
	// SearchSimilar возвращает до limit ближайших точек с совпадающей
	// sub_category, в нативном порядке индекса (лучшие — первыми).
	SearchSimilar(ctx context.Context, vector []float32, limit uint64, subCategory string) ([]ScoredProduct, error)
}

type RecoCacheRepository interface {
	// GetRecommendations возвращает (nil, nil) при промахе кэша.
	GetRecommendations(ctx context.Context, productID string, limit int) (*domain.Recommendations, error)
	SetRecommendations(ctx context.Context, productID string, limit int, recs *domain.Recommendations) error
	InvalidateAll(ctx context.Context) error
}

type PipelineRunRepository interface {
	Create(ctx context.Context, run *PipelineRun) error
}

type SnapshotArchiveRepository interface {
	// Upload кладёт локальный файл снапшота в объектное хранилище
	// и возвращает ключ объекта.
	Upload(ctx context.Context, localPath string, runDate time.Time) (string, error)
}

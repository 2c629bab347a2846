package usecase

import (
	"time"

	"github.com/DRSN-tech/reco-service/internal/domain"
)

// RECOMMENDATION USECASE

// RecommendReq — запрос рекомендаций для якорного товара.
type RecommendReq struct {
	ProductID string
	Limit     int
}

// ScoredProduct — товар с нативным score индекса.
type ScoredProduct struct {
	Product  domain.Product
	Distance float32
}

// PIPELINE USECASE

// CatalogRow — сырая строка каталога после числовой коэрции.
// Пустые или нечисловые ratings/no_of_ratings становятся nil, не нулём.
type CatalogRow struct {
	ProductID    string
	ProductName  string
	MainCategory string
	SubCategory  string
	Ratings      *float64
	NoOfRatings  *int64
	Price        string
}

// RunPipelineReq — параметры запуска пайплайна материализации эмбеддингов.
type RunPipelineReq struct {
	CSVPath string
}

// RunPipelineRes — итог запуска пайплайна.
type RunPipelineRes struct {
	Run *PipelineRun
}

// PipelineRun — запись реестра запусков для аудита.
type PipelineRun struct {
	RunID        string
	ModelVersion string
	StartedAt    time.Time
	FinishedAt   time.Time
	RowsRead     int
	RowsIndexed  int
	RowsSkipped  int
	SnapshotPath string
}

// ReindexedEvent — событие о завершённой переиндексации каталога.
type ReindexedEvent struct {
	EventID        string `json:"event_id"`
	RunID          string `json:"run_id"`
	ModelVersion   string `json:"model_version"`
	IndexedCount   int    `json:"indexed_count"`
	SnapshotPath   string `json:"snapshot_path"`
	EventTimestamp int64  `json:"event_timestamp"`
}

// MAPPERS

func NewRecommendReq(productID string, limit int) *RecommendReq {
	return &RecommendReq{
		ProductID: productID,
		Limit:     limit,
	}
}

func NewScoredProduct(product domain.Product, distance float32) ScoredProduct {
	return ScoredProduct{
		Product:  product,
		Distance: distance,
	}
}

func NewRunPipelineReq(csvPath string) *RunPipelineReq {
	return &RunPipelineReq{
		CSVPath: csvPath,
	}
}

func NewRunPipelineRes(run *PipelineRun) *RunPipelineRes {
	return &RunPipelineRes{
		Run: run,
	}
}

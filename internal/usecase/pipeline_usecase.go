package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/DRSN-tech/reco-service/internal/cfg"
	"github.com/DRSN-tech/reco-service/internal/domain"
	"github.com/DRSN-tech/reco-service/pkg/e"
	"github.com/DRSN-tech/reco-service/pkg/jitter"
	"github.com/DRSN-tech/reco-service/pkg/logger"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

const (
	persistMaxAttempts = 3
	persistBackoffBase = time.Second
	persistBackoffMax  = 10 * time.Second
)

// PipelineUseCase реализует батчевую материализацию эмбеддингов:
// ingest -> transform -> persist -> snapshot. Каждая стадия идемпотентна
// при одинаковом входе; сбой отдельной строки не прерывает прогон.
type PipelineUseCase struct {
	productRepo  ProductRepository
	runRepo      PipelineRunRepository
	snapshotRepo SnapshotArchiveRepository // nil, если бакет снапшотов не настроен
	catalog      CatalogInfra
	embedder     EmbedderInfra
	snapshots    SnapshotInfra
	producer     EventProducerInfra
	cacheRepo    RecoCacheRepository
	cfg          *cfg.PipelineCfg
	logger       logger.Logger
}

func NewPipelineUC(
	productRepo ProductRepository,
	runRepo PipelineRunRepository,
	snapshotRepo SnapshotArchiveRepository,
	catalog CatalogInfra,
	embedder EmbedderInfra,
	snapshots SnapshotInfra,
	producer EventProducerInfra,
	cacheRepo RecoCacheRepository,
	cfg *cfg.PipelineCfg,
	logger logger.Logger,
) *PipelineUseCase {
	return &PipelineUseCase{
		productRepo:  productRepo,
		runRepo:      runRepo,
		snapshotRepo: snapshotRepo,
		catalog:      catalog,
		embedder:     embedder,
		snapshots:    snapshots,
		producer:     producer,
		cacheRepo:    cacheRepo,
		cfg:          cfg,
		logger:       logger,
	}
}

// Run выполняет один прогон пайплайна. Повторный прогон на тех же данных и
// той же версии модели перезаписывает точки индекса без дублей.
func (p *PipelineUseCase) Run(ctx context.Context, req *RunPipelineReq) (*RunPipelineRes, error) {
	const op = "PipelineUseCase.Run"

	startedAt := time.Now().UTC()
	runID := uuid.NewString()

	csvPath := req.CSVPath
	if csvPath == "" {
		csvPath = p.cfg.CSVPath
	}

	// Стадия ingest: чтение сырого каталога с числовой коэрцией
	rows, err := p.catalog.ReadProducts(ctx, csvPath)
	if err != nil {
		return nil, e.Wrap(op, err)
	}
	p.logger.Infof("pipeline %s: read %d catalog rows from %s", runID, len(rows), csvPath)

	// Стадия transform: эмбеддинги + нормализация цены
	products, skipped, err := p.transform(ctx, rows)
	if err != nil {
		return nil, e.Wrap(op, err)
	}

	// Стадия persist: один батчевый upsert в индекс
	if err := p.persist(ctx, products); err != nil {
		return nil, e.Wrap(op, err)
	}
	p.logger.Infof("pipeline %s: indexed %d products, skipped %d rows", runID, len(products), skipped)

	// Стадия snapshot: неизменяемый датированный parquet-архив
	snapshotPath, err := p.snapshots.WriteSnapshot(products, startedAt)
	if err != nil {
		return nil, e.Wrap(op, err)
	}

	if p.snapshotRepo != nil {
		if key, err := p.snapshotRepo.Upload(ctx, snapshotPath, startedAt); err != nil {
			p.logger.Warnf("Failed to archive snapshot: %v", e.Wrap(op, err))
		} else {
			p.logger.Infof("pipeline %s: snapshot archived as %s", runID, key)
		}
	}

	run := &PipelineRun{
		RunID:        runID,
		ModelVersion: p.embedder.ModelVersion(),
		StartedAt:    startedAt,
		FinishedAt:   time.Now().UTC(),
		RowsRead:     len(rows),
		RowsIndexed:  len(products),
		RowsSkipped:  skipped,
		SnapshotPath: snapshotPath,
	}

	// Реестр запусков и событие — советующие побочные эффекты:
	// индекс уже обновлён, их сбой не отменяет прогон
	if err := p.runRepo.Create(ctx, run); err != nil {
		p.logger.Warnf("Failed to record pipeline run: %v", e.Wrap(op, err))
	}

	if err := p.producer.PublishReindexed(ctx, &ReindexedEvent{
		EventID:        uuid.NewString(),
		RunID:          runID,
		ModelVersion:   run.ModelVersion,
		IndexedCount:   run.RowsIndexed,
		SnapshotPath:   run.SnapshotPath,
		EventTimestamp: time.Now().UnixNano(),
	}); err != nil {
		p.logger.Warnf("Failed to publish reindexed event: %v", e.Wrap(op, err))
	}

	if err := p.cacheRepo.InvalidateAll(ctx); err != nil {
		p.logger.Warnf("Failed to invalidate recommendation cache: %v", e.Wrap(op, err))
	}

	return NewRunPipelineRes(run), nil
}

// transform превращает строки каталога в индексируемые товары.
// Строки без обязательных полей логируются и пропускаются по одной,
// остальные получают эмбеддинг канонического текста и цену в USD.
func (p *PipelineUseCase) transform(ctx context.Context, rows []CatalogRow) ([]domain.Product, int, error) {
	valid := make([]CatalogRow, 0, len(rows))
	skipped := 0
	for _, row := range rows {
		if row.ProductName == "" || row.SubCategory == "" {
			p.logger.Warnf("skipping row %q: missing product_name or sub_category", row.ProductID)
			skipped++
			continue
		}
		valid = append(valid, row)
	}

	texts := make([]string, 0, len(valid))
	for _, row := range valid {
		texts = append(texts, buildEmbeddingText(row))
	}

	vectors, err := p.embedder.EmbedTexts(ctx, texts)
	if err != nil {
		return nil, 0, err
	}
	if len(vectors) != len(valid) {
		return nil, 0, fmt.Errorf("embedder returned %d vectors for %d texts", len(vectors), len(valid))
	}

	products := make([]domain.Product, 0, len(valid))
	for i, row := range valid {
		product := domain.Product{
			ProductID:    row.ProductID,
			ProductName:  row.ProductName,
			MainCategory: row.MainCategory,
			SubCategory:  row.SubCategory,
			Ratings:      row.Ratings,
			NoOfRatings:  row.NoOfRatings,
			Price:        row.Price,
			Embedding:    vectors[i],
		}

		priceUSD := ConvertPriceToUSD(row.Price, p.cfg.ExchangeRate)
		product.PriceUSD = &priceUSD

		products = append(products, product)
	}

	return products, skipped, nil
}

// persist пишет батч в индекс с ретраями только на инфраструктурных ошибках;
// ошибки валидации не ретраятся.
func (p *PipelineUseCase) persist(ctx context.Context, products []domain.Product) error {
	var lastErr error
	for attempt := 0; attempt < persistMaxAttempts; attempt++ {
		lastErr = p.productRepo.UpsertBatch(ctx, products)
		if lastErr == nil {
			return nil
		}

		if !errors.Is(lastErr, e.ErrIndexUnavailable) {
			return lastErr
		}

		if attempt < persistMaxAttempts-1 {
			backoff := jitter.ExponentialBackoff(persistBackoffBase, persistBackoffMax, attempt, jitter.DefaultJitter)
			p.logger.Warnf("index unavailable, retrying persist in %s: %v", backoff, lastErr)

			select {
			case <-time.After(backoff):
			case <-ctx.Done():
				return ctx.Err()
			}
		}
	}

	return lastErr
}

// buildEmbeddingText собирает канонический текст товара для эмбеддинга.
// Шаблон фиксирован: изменение шаблона меняет векторное пространство.
func buildEmbeddingText(row CatalogRow) string {
	return fmt.Sprintf("%s. Category: %s. Sub-category: %s", row.ProductName, row.MainCategory, row.SubCategory)
}

// ConvertPriceToUSD конвертирует строку цены в THB в строку цены в USD по
// фиксированному курсу. Непарсящаяся цена возвращается без изменений.
func ConvertPriceToUSD(priceStr string, exchangeRate float64) string {
	cleaned := strings.NewReplacer("฿", "", ",", "").Replace(strings.TrimSpace(priceStr))
	if cleaned == "" {
		return priceStr
	}

	price, err := decimal.NewFromString(cleaned)
	if err != nil {
		return priceStr
	}

	usd := price.Mul(decimal.NewFromFloat(exchangeRate))
	return "$" + usd.StringFixed(2)
}

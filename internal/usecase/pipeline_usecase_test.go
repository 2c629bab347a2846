package usecase

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	config "github.com/DRSN-tech/reco-service/internal/cfg"
	"github.com/DRSN-tech/reco-service/internal/domain"
	"github.com/DRSN-tech/reco-service/pkg/e"
	"github.com/DRSN-tech/reco-service/pkg/logger"
)

type fakeCatalog struct {
	rows []CatalogRow
}

func (f fakeCatalog) ReadProducts(context.Context, string) ([]CatalogRow, error) {
	return f.rows, nil
}

// fakeEmbedder возвращает детерминированный вектор по длине текста,
// имитируя стабильность модели между прогонами.
type fakeEmbedder struct {
	model string
}

func (f fakeEmbedder) EmbedTexts(_ context.Context, texts []string) ([][]float32, error) {
	vectors := make([][]float32, 0, len(texts))
	for _, text := range texts {
		vectors = append(vectors, []float32{float32(len(text)), 1, 0, 0})
	}
	return vectors, nil
}

func (f fakeEmbedder) ModelVersion() string {
	return f.model
}

type fakeSnapshots struct {
	written []domain.Product
}

func (f *fakeSnapshots) WriteSnapshot(products []domain.Product, runDate time.Time) (string, error) {
	f.written = products
	return filepath.Join("snapshots", "date="+runDate.Format("2006-01-02"), "products.parquet"), nil
}

type fakeRunRepo struct {
	runs []*PipelineRun
}

func (f *fakeRunRepo) Create(_ context.Context, run *PipelineRun) error {
	f.runs = append(f.runs, run)
	return nil
}

type fakeProducer struct {
	events []*ReindexedEvent
}

func (f *fakeProducer) PublishReindexed(_ context.Context, event *ReindexedEvent) error {
	f.events = append(f.events, event)
	return nil
}

// countingRepo считает обращения к UpsertBatch поверх базового репозитория.
type countingRepo struct {
	ProductRepository
	calls int
}

func (c *countingRepo) UpsertBatch(ctx context.Context, products []domain.Product) error {
	c.calls++
	return c.ProductRepository.UpsertBatch(ctx, products)
}

func catalogRows() []CatalogRow {
	ratings := 4.2
	noOfRatings := int64(1234)
	return []CatalogRow{
		{ProductID: "P1", ProductName: "Phone A", MainCategory: "Electronics", SubCategory: "Smartphones", Ratings: &ratings, NoOfRatings: &noOfRatings, Price: "฿7,999"},
		{ProductID: "P2", ProductName: "", MainCategory: "Electronics", SubCategory: "Smartphones", Price: "฿6,999"},
		{ProductID: "P3", ProductName: "Cable C", MainCategory: "Electronics", SubCategory: "Cables", Price: "N/A"},
	}
}

func newTestPipeline(repo ProductRepository, runRepo *fakeRunRepo, producer *fakeProducer, snapshots *fakeSnapshots) *PipelineUseCase {
	return NewPipelineUC(
		repo,
		runRepo,
		nil,
		fakeCatalog{rows: catalogRows()},
		fakeEmbedder{model: "all-MiniLM-L6-v2"},
		snapshots,
		producer,
		noopCache{},
		&config.PipelineCfg{CSVPath: "data/products.csv", SnapshotsDir: "snapshots", ExchangeRate: 0.035},
		logger.NewSlogLogger(),
	)
}

func TestPipelineRun_Counts(t *testing.T) {
	repo := newMemoryProductRepo(4)
	runRepo := &fakeRunRepo{}
	producer := &fakeProducer{}
	snapshots := &fakeSnapshots{}

	uc := newTestPipeline(repo, runRepo, producer, snapshots)

	res, err := uc.Run(context.Background(), NewRunPipelineReq(""))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	run := res.Run
	if run.RowsRead != 3 || run.RowsIndexed != 2 || run.RowsSkipped != 1 {
		t.Fatalf("unexpected counts: read=%d indexed=%d skipped=%d", run.RowsRead, run.RowsIndexed, run.RowsSkipped)
	}
	if run.ModelVersion != "all-MiniLM-L6-v2" {
		t.Fatalf("unexpected model version %q", run.ModelVersion)
	}

	// Строка без product_name пропущена, остальные проиндексированы
	if len(repo.products) != 2 {
		t.Fatalf("expected 2 indexed products, got %d", len(repo.products))
	}
	if _, ok := repo.products["P2"]; ok {
		t.Fatal("row without product_name must not be indexed")
	}

	p1 := repo.products["P1"]
	if p1.PriceUSD == nil || *p1.PriceUSD != "$279.97" {
		t.Fatalf("expected P1 price_usd $279.97, got %v", p1.PriceUSD)
	}
	if p1.Ratings == nil || *p1.Ratings != 4.2 {
		t.Fatalf("expected P1 ratings preserved, got %v", p1.Ratings)
	}

	// Непарсящаяся цена проходит в payload без изменений
	p3 := repo.products["P3"]
	if p3.PriceUSD == nil || *p3.PriceUSD != "N/A" {
		t.Fatalf("expected P3 price_usd passthrough, got %v", p3.PriceUSD)
	}

	if len(snapshots.written) != 2 {
		t.Fatalf("snapshot must contain indexed products, got %d", len(snapshots.written))
	}
	if run.SnapshotPath != filepath.Join("snapshots", "date="+run.StartedAt.Format("2006-01-02"), "products.parquet") {
		t.Fatalf("unexpected snapshot path %q", run.SnapshotPath)
	}

	if len(runRepo.runs) != 1 {
		t.Fatalf("expected one run record, got %d", len(runRepo.runs))
	}
	if len(producer.events) != 1 || producer.events[0].IndexedCount != 2 || producer.events[0].RunID != run.RunID {
		t.Fatalf("unexpected reindexed event: %+v", producer.events)
	}
}

func TestPipelineRun_Idempotent(t *testing.T) {
	repo := newMemoryProductRepo(4)
	uc := newTestPipeline(repo, &fakeRunRepo{}, &fakeProducer{}, &fakeSnapshots{})

	if _, err := uc.Run(context.Background(), NewRunPipelineReq("")); err != nil {
		t.Fatalf("first run: %v", err)
	}
	first := make(map[string]domain.Product, len(repo.products))
	for id, p := range repo.products {
		first[id] = p
	}

	if _, err := uc.Run(context.Background(), NewRunPipelineReq("")); err != nil {
		t.Fatalf("second run: %v", err)
	}

	if len(repo.products) != len(first) {
		t.Fatalf("rerun must not grow the index: %d vs %d", len(repo.products), len(first))
	}
	for id, p := range first {
		got := repo.products[id]
		if got.ProductName != p.ProductName || len(got.Embedding) != len(p.Embedding) || got.Embedding[0] != p.Embedding[0] {
			t.Fatalf("rerun changed product %s", id)
		}
	}
}

func TestPipelineRun_RetriesOnIndexUnavailable(t *testing.T) {
	repo := newMemoryProductRepo(4)
	repo.failures = 1
	counting := &countingRepo{ProductRepository: repo}

	uc := newTestPipeline(counting, &fakeRunRepo{}, &fakeProducer{}, &fakeSnapshots{})

	res, err := uc.Run(context.Background(), NewRunPipelineReq(""))
	if err != nil {
		t.Fatalf("transient index failure must be retried: %v", err)
	}
	if counting.calls != 2 {
		t.Fatalf("expected 2 upsert attempts, got %d", counting.calls)
	}
	if res.Run.RowsIndexed != 2 {
		t.Fatalf("expected 2 indexed after retry, got %d", res.Run.RowsIndexed)
	}
}

func TestPipelineRun_ValidationNotRetried(t *testing.T) {
	// Индекс ждёт векторы другой размерности: ошибка валидации, не инфраструктуры
	repo := newMemoryProductRepo(8)
	counting := &countingRepo{ProductRepository: repo}

	uc := newTestPipeline(counting, &fakeRunRepo{}, &fakeProducer{}, &fakeSnapshots{})

	_, err := uc.Run(context.Background(), NewRunPipelineReq(""))
	if !errors.Is(err, e.ErrVectorSizeMismatch) {
		t.Fatalf("expected ErrVectorSizeMismatch, got %v", err)
	}
	if counting.calls != 1 {
		t.Fatalf("validation errors must not be retried, got %d attempts", counting.calls)
	}
}

func TestConvertPriceToUSD(t *testing.T) {
	tests := []struct {
		price string
		want  string
	}{
		{"฿7,999", "$279.97"},
		{"฿1,000", "$35.00"},
		{"฿399", "$13.97"},
		{" ฿2,500 ", "$87.50"},
		{"N/A", "N/A"},
		{"", ""},
		{"฿", "฿"},
	}

	for _, tt := range tests {
		if got := ConvertPriceToUSD(tt.price, 0.035); got != tt.want {
			t.Errorf("ConvertPriceToUSD(%q) = %q, want %q", tt.price, got, tt.want)
		}
	}
}

func TestBuildEmbeddingText(t *testing.T) {
	row := CatalogRow{
		ProductName:  "Phone A",
		MainCategory: "Electronics",
		SubCategory:  "Smartphones",
	}

	want := "Phone A. Category: Electronics. Sub-category: Smartphones"
	if got := buildEmbeddingText(row); got != want {
		t.Errorf("buildEmbeddingText() = %q, want %q", got, want)
	}
}

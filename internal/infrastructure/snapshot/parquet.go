package snapshot

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/DRSN-tech/reco-service/internal/domain"
	"github.com/DRSN-tech/reco-service/pkg/e"
	"github.com/jimlawless/whereami"
	"github.com/parquet-go/parquet-go"
)

const snapshotFileName = "products.parquet"

// ParquetWriter пишет неизменяемые снапшоты трансформированного каталога:
// одна партиция на дату запуска, один файл на прогон.
// Снапшот существует для аудита и офлайн-переобработки; онлайн-путь его не читает.
type ParquetWriter struct {
	baseDir string
}

func NewParquetWriter(baseDir string) *ParquetWriter {
	return &ParquetWriter{
		baseDir: baseDir,
	}
}

// snapshotRow — колоночная схема снапшота.
type snapshotRow struct {
	ProductID    string    `parquet:"product_id"`
	ProductName  string    `parquet:"product_name"`
	MainCategory string    `parquet:"main_category"`
	SubCategory  string    `parquet:"sub_category"`
	Ratings      *float64  `parquet:"ratings,optional"`
	NoOfRatings  *int64    `parquet:"no_of_ratings,optional"`
	Price        string    `parquet:"price"`
	PriceUSD     *string   `parquet:"price_usd,optional"`
	Embedding    []float32 `parquet:"embedding,list"`
}

// WriteSnapshot записывает батч в snapshots/date=YYYY-MM-DD/products.parquet
// и возвращает путь к файлу. Повторный прогон за ту же дату перезаписывает файл.
func (w *ParquetWriter) WriteSnapshot(products []domain.Product, runDate time.Time) (string, error) {
	partitionDir := filepath.Join(w.baseDir, fmt.Sprintf("date=%s", runDate.Format("2006-01-02")))
	if err := os.MkdirAll(partitionDir, 0o755); err != nil {
		return "", e.Wrap(whereami.WhereAmI(), err)
	}

	path := filepath.Join(partitionDir, snapshotFileName)
	file, err := os.Create(path)
	if err != nil {
		return "", e.Wrap(whereami.WhereAmI(), err)
	}

	rows := make([]snapshotRow, 0, len(products))
	for i := range products {
		p := &products[i]
		rows = append(rows, snapshotRow{
			ProductID:    p.ProductID,
			ProductName:  p.ProductName,
			MainCategory: p.MainCategory,
			SubCategory:  p.SubCategory,
			Ratings:      p.Ratings,
			NoOfRatings:  p.NoOfRatings,
			Price:        p.Price,
			PriceUSD:     p.PriceUSD,
			Embedding:    p.Embedding,
		})
	}

	writer := parquet.NewGenericWriter[snapshotRow](file)
	if _, err := writer.Write(rows); err != nil {
		file.Close()
		return "", e.Wrap(whereami.WhereAmI(), err)
	}

	if err := writer.Close(); err != nil {
		file.Close()
		return "", e.Wrap(whereami.WhereAmI(), err)
	}

	if err := file.Close(); err != nil {
		return "", e.Wrap(whereami.WhereAmI(), err)
	}

	return path, nil
}

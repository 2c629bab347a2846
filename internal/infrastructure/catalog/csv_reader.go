package catalog

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/DRSN-tech/reco-service/internal/usecase"
	"github.com/DRSN-tech/reco-service/pkg/e"
	"github.com/DRSN-tech/reco-service/pkg/logger"
	"github.com/google/uuid"
	"github.com/jimlawless/whereami"
)

// CSVReader читает сырой каталог товаров из CSV-файла.
// ratings и no_of_ratings коэрцируются в числа; пустое или нечисловое
// значение становится отсутствующим (nil), а не нулём и не ошибкой.
type CSVReader struct {
	logger logger.Logger
}

func NewCSVReader(logger logger.Logger) *CSVReader {
	return &CSVReader{
		logger: logger,
	}
}

// ReadProducts возвращает строки каталога из файла по указанному пути.
// Если колонка product_id отсутствует или пуста, идентификатор назначается здесь.
func (c *CSVReader) ReadProducts(ctx context.Context, path string) ([]usecase.CatalogRow, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}
	defer file.Close()

	reader := csv.NewReader(file)
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err != nil {
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}

	columns := make(map[string]int, len(header))
	for i, name := range header {
		columns[strings.TrimSpace(name)] = i
	}

	for _, required := range []string{"product_name", "main_category", "sub_category", "price"} {
		if _, ok := columns[required]; !ok {
			return nil, e.Wrap(whereami.WhereAmI(), fmt.Errorf("missing column %q", required))
		}
	}

	var rows []usecase.CatalogRow
	for {
		select {
		case <-ctx.Done():
			return nil, e.Wrap(whereami.WhereAmI(), ctx.Err())
		default:
		}

		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			// битая строка не прерывает весь прогон
			c.logger.Warnf("skipping malformed csv record: %v", err)
			continue
		}

		rows = append(rows, usecase.CatalogRow{
			ProductID:    c.productID(columns, record),
			ProductName:  field(columns, record, "product_name"),
			MainCategory: field(columns, record, "main_category"),
			SubCategory:  field(columns, record, "sub_category"),
			Ratings:      parseOptionalFloat(field(columns, record, "ratings")),
			NoOfRatings:  parseOptionalInt(field(columns, record, "no_of_ratings")),
			Price:        field(columns, record, "price"),
		})
	}

	return rows, nil
}

// productID возвращает product_id строки или назначает новый,
// если колонка отсутствует либо значение пустое.
func (c *CSVReader) productID(columns map[string]int, record []string) string {
	if id := field(columns, record, "product_id"); id != "" {
		return id
	}

	return uuid.NewString()
}

func field(columns map[string]int, record []string, name string) string {
	idx, ok := columns[name]
	if !ok || idx >= len(record) {
		return ""
	}

	return strings.TrimSpace(record[idx])
}

func parseOptionalFloat(s string) *float64 {
	if s == "" {
		return nil
	}

	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return nil
	}

	return &v
}

func parseOptionalInt(s string) *int64 {
	if s == "" {
		return nil
	}

	v, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		// каталог иногда содержит дробные счётчики после экспорта
		if f, ferr := strconv.ParseFloat(s, 64); ferr == nil {
			n := int64(f)
			return &n
		}
		return nil
	}

	return &v
}

package qdrant

import (
	"context"
	"fmt"

	"github.com/DRSN-tech/reco-service/internal/cfg"
	"github.com/DRSN-tech/reco-service/internal/domain"
	"github.com/DRSN-tech/reco-service/internal/repository/qdrant/converter"
	"github.com/DRSN-tech/reco-service/internal/usecase"
	"github.com/DRSN-tech/reco-service/pkg/e"
	"github.com/google/uuid"
	"github.com/jimlawless/whereami"
	"github.com/qdrant/go-client/qdrant"
)

const subCategoryField = "sub_category"

// ProductRepo реализует векторный индекс товаров поверх Qdrant.
//
// Qdrant принимает только UUID и числовые идентификаторы точек, поэтому
// строковый product_id детерминированно сворачивается в UUIDv5; исходный
// product_id хранится в payload. Score результата — косинусная близость
// в нативной конвенции Qdrant, результаты упорядочены лучшие — первыми.
type ProductRepo struct {
	client *qdrant.Client
	cfg    *cfg.QdrantCfg
}

func NewProductRepo(client *qdrant.Client, cfg *cfg.QdrantCfg) *ProductRepo {
	return &ProductRepo{
		client: client,
		cfg:    cfg,
	}
}

// Upsert сохраняет или обновляет одну точку товара.
func (q *ProductRepo) Upsert(ctx context.Context, product *domain.Product) error {
	return q.UpsertBatch(ctx, []domain.Product{*product})
}

// UpsertBatch сохраняет или обновляет точки товаров одним запросом.
// Батч валидируется целиком до записи: точка без вектора или с вектором
// неверной размерности отклоняет весь батч, индекс остаётся нетронутым.
func (q *ProductRepo) UpsertBatch(ctx context.Context, products []domain.Product) error {
	if len(products) == 0 {
		return e.ErrEmptyBatch
	}

	points := make([]*qdrant.PointStruct, 0, len(products))
	for i := range products {
		product := &products[i]
		if err := q.validateProduct(product); err != nil {
			return e.Wrap(whereami.WhereAmI(), err)
		}

		points = append(points, &qdrant.PointStruct{
			Id:      qdrant.NewIDUUID(pointID(product.ProductID)),
			Vectors: qdrant.NewVectors(product.Embedding...),
			Payload: qdrant.NewValueMap(converter.ProductToPayload(product)),
		})
	}

	_, err := q.client.Upsert(ctx, &qdrant.UpsertPoints{
		CollectionName: q.cfg.CollectionName,
		Points:         points,
	})
	if err != nil {
		return e.Wrap(whereami.WhereAmI(), indexErr(err))
	}

	return nil
}

// GetByID возвращает payload товара. Отсутствие точки — не ошибка: (nil, nil).
func (q *ProductRepo) GetByID(ctx context.Context, productID string) (*domain.Product, error) {
	return q.retrieve(ctx, productID, false)
}

// GetByIDWithVector возвращает товар вместе с его вектором.
func (q *ProductRepo) GetByIDWithVector(ctx context.Context, productID string) (*domain.Product, error) {
	return q.retrieve(ctx, productID, true)
}

func (q *ProductRepo) retrieve(ctx context.Context, productID string, withVector bool) (*domain.Product, error) {
	if productID == "" {
		return nil, e.ErrProductIDRequired
	}

	points, err := q.client.Get(ctx, &qdrant.GetPoints{
		CollectionName: q.cfg.CollectionName,
		Ids:            []*qdrant.PointId{qdrant.NewIDUUID(pointID(productID))},
		WithPayload:    qdrant.NewWithPayload(true),
		WithVectors:    qdrant.NewWithVectors(withVector),
	})
	if err != nil {
		return nil, e.Wrap(whereami.WhereAmI(), indexErr(err))
	}

	if len(points) == 0 {
		return nil, nil
	}

	product := converter.PayloadToProduct(points[0].GetPayload())
	if withVector {
		product.Embedding = points[0].GetVectors().GetVector().GetData()
	}

	return product, nil
}

// SearchSimilar возвращает до limit ближайших точек с равенством sub_category.
// Порядок — нативный порядок индекса; стабильность при равных score не гарантируется.
func (q *ProductRepo) SearchSimilar(ctx context.Context, vector []float32, limit uint64, subCategory string) ([]usecase.ScoredProduct, error) {
	if uint64(len(vector)) != q.cfg.VectorSize {
		return nil, e.Wrap(whereami.WhereAmI(), e.ErrVectorSizeMismatch)
	}

	points, err := q.client.Query(ctx, &qdrant.QueryPoints{
		CollectionName: q.cfg.CollectionName,
		Query:          qdrant.NewQuery(vector...),
		Filter: &qdrant.Filter{
			Must: []*qdrant.Condition{
				qdrant.NewMatch(subCategoryField, subCategory),
			},
		},
		Limit:       qdrant.PtrOf(limit),
		WithPayload: qdrant.NewWithPayload(true),
	})
	if err != nil {
		return nil, e.Wrap(whereami.WhereAmI(), indexErr(err))
	}

	result := make([]usecase.ScoredProduct, 0, len(points))
	for _, point := range points {
		product := converter.PayloadToProduct(point.GetPayload())
		result = append(result, usecase.NewScoredProduct(*product, point.GetScore()))
	}

	return result, nil
}

func (q *ProductRepo) validateProduct(product *domain.Product) error {
	if product.ProductID == "" {
		return e.ErrProductIDRequired
	}

	if !product.HasEmbedding() {
		return fmt.Errorf("product %s: %w", product.ProductID, e.ErrEmbeddingRequired)
	}

	if uint64(len(product.Embedding)) != q.cfg.VectorSize {
		return fmt.Errorf(
			"product %s: expected %d, got %d: %w",
			product.ProductID, q.cfg.VectorSize, len(product.Embedding), e.ErrVectorSizeMismatch,
		)
	}

	return nil
}

// pointID детерминированно сворачивает product_id в UUIDv5,
// сохраняя идемпотентность upsert по идентификатору товара.
func pointID(productID string) string {
	return uuid.NewSHA1(uuid.NameSpaceOID, []byte(productID)).String()
}

func indexErr(err error) error {
	return fmt.Errorf("%w: %w", e.ErrIndexUnavailable, err)
}

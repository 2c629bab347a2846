package usecase

import (
	"context"
	"time"

	"github.com/DRSN-tech/reco-service/internal/domain"
	"github.com/DRSN-tech/reco-service/pkg/e"
	"github.com/DRSN-tech/reco-service/pkg/logger"
)

// RecommendationUseCase реализует подбор похожих товаров:
// якорь -> вектор якоря -> k-NN в той же sub_category -> исключение якоря -> усечение до k.
type RecommendationUseCase struct {
	productRepo ProductRepository
	cacheRepo   RecoCacheRepository
	logger      logger.Logger
}

func NewRecommendationUC(
	productRepo ProductRepository,
	cacheRepo RecoCacheRepository,
	logger logger.Logger,
) *RecommendationUseCase {
	return &RecommendationUseCase{
		productRepo: productRepo,
		cacheRepo:   cacheRepo,
		logger:      logger,
	}
}

// Recommend возвращает до Limit товаров, похожих на якорный, в пределах его
// sub_category. Отсутствие якоря — ErrProductNotFound; якорь без соседей
// по sub_category — пустой набор, не ошибка.
func (r *RecommendationUseCase) Recommend(ctx context.Context, req *RecommendReq) (*domain.Recommendations, error) {
	const op = "RecommendationUseCase.Recommend"

	if err := r.validate(req); err != nil {
		return nil, e.Wrap(op, err)
	}

	// Поиск готового набора в кэше; промах и ошибка равнозначны
	if cached, err := r.cacheRepo.GetRecommendations(ctx, req.ProductID, req.Limit); err == nil && cached != nil {
		return cached, nil
	}

	// Один комбинированный запрос: payload якоря вместе с вектором
	anchor, err := r.productRepo.GetByIDWithVector(ctx, req.ProductID)
	if err != nil {
		return nil, e.Wrap(op, err)
	}
	if anchor == nil {
		return nil, e.Wrap(op, e.ErrProductNotFound)
	}
	if !anchor.HasEmbedding() {
		return nil, e.Wrap(op, e.ErrEmbeddingRequired)
	}

	// +1 компенсирует сам якорь, который обычно оказывается
	// собственным ближайшим соседом (score ~ 1)
	scored, err := r.productRepo.SearchSimilar(ctx, anchor.Embedding, uint64(req.Limit)+1, anchor.SubCategory)
	if err != nil {
		return nil, e.Wrap(op, err)
	}

	recommendations := r.project(anchor.ProductID, scored, req.Limit)

	// Фоновое добавление набора в кэш
	go func() {
		bgCtx, cancel := context.WithTimeout(context.Background(), 500*time.Millisecond)
		defer cancel()

		if err := r.cacheRepo.SetRecommendations(bgCtx, req.ProductID, req.Limit, recommendations); err != nil {
			r.logger.Warnf("Failed to cache recommendations in background: %v", e.Wrap(op, err))
		}
	}()

	return recommendations, nil
}

// project исключает якорь из выдачи индекса, усекает её до limit и
// сворачивает каждый результат в публичную проекцию товара.
func (r *RecommendationUseCase) project(anchorID string, scored []ScoredProduct, limit int) *domain.Recommendations {
	results := make([]domain.Recommendation, 0, limit)
	for _, sp := range scored {
		if sp.Product.ProductID == anchorID {
			continue
		}

		if len(results) == limit {
			break
		}

		results = append(results, domain.NewRecommendation(domain.RecommendedProduct{
			ProductID:   sp.Product.ProductID,
			Category:    sp.Product.MainCategory,
			SubCategory: sp.Product.SubCategory,
			Price:       sp.Product.PriceUSD,
		}, sp.Distance))
	}

	return domain.NewRecommendations(results)
}

// validate проверяет корректность запроса рекомендаций.
func (r *RecommendationUseCase) validate(req *RecommendReq) error {
	if req.ProductID == "" {
		return e.ErrProductIDRequired
	}

	if req.Limit <= 0 {
		return e.ErrLimitMustBePositive
	}

	return nil
}

package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/DRSN-tech/reco-service/internal/cfg"
	"github.com/DRSN-tech/reco-service/internal/domain"
	"github.com/DRSN-tech/reco-service/pkg/clients"
	"github.com/DRSN-tech/reco-service/pkg/e"
	"github.com/DRSN-tech/reco-service/pkg/logger"
	"github.com/jimlawless/whereami"
	r "github.com/redis/go-redis/v9"
)

const recoKeyPrefix = "reco:"

// CacheRepo кэширует готовые наборы рекомендаций по (product_id, limit).
// Промахи и ошибки кэша не являются фатальными и только логируются.
type CacheRepo struct {
	client *clients.RedisClient
	cfg    *cfg.RedisCfg
	logger logger.Logger
}

func NewCacheRepo(client *clients.RedisClient, cfg *cfg.RedisCfg, logger logger.Logger) *CacheRepo {
	return &CacheRepo{
		client: client,
		cfg:    cfg,
		logger: logger,
	}
}

// GetRecommendations возвращает закэшированный набор или (nil, nil) при промахе.
func (c *CacheRepo) GetRecommendations(ctx context.Context, productID string, limit int) (*domain.Recommendations, error) {
	data, err := c.client.Client.Get(ctx, c.recoKey(productID, limit)).Bytes()
	if err != nil {
		if errors.Is(err, r.Nil) {
			return nil, nil // cache miss
		}

		c.logger.Warnf("Redis GET failed: %v", e.Wrap(whereami.WhereAmI(), err))
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}

	var model recommendationsModel
	if err := json.Unmarshal(data, &model); err != nil {
		c.logger.Warnf("Redis unmarshal failed: %v", e.Wrap(whereami.WhereAmI(), err))
		return nil, nil // битую запись считаем промахом
	}

	return model.toDomain(), nil
}

// SetRecommendations кэширует набор рекомендаций с TTL из конфигурации.
func (c *CacheRepo) SetRecommendations(ctx context.Context, productID string, limit int, recs *domain.Recommendations) error {
	data, err := json.Marshal(newRecommendationsModel(recs))
	if err != nil {
		return e.Wrap(whereami.WhereAmI(), err)
	}

	if err := c.client.Client.Set(ctx, c.recoKey(productID, limit), data, c.cfg.RecoTTL).Err(); err != nil {
		c.logger.Warnf("Redis SET failed: %v", e.Wrap(whereami.WhereAmI(), err))
		return e.Wrap(whereami.WhereAmI(), err)
	}

	return nil
}

// InvalidateAll удаляет все закэшированные рекомендации.
// Вызывается пайплайном после переиндексации каталога.
func (c *CacheRepo) InvalidateAll(ctx context.Context) error {
	var cursor uint64
	for {
		keys, next, err := c.client.Client.Scan(ctx, cursor, recoKeyPrefix+"*", 500).Result()
		if err != nil {
			return e.Wrap(whereami.WhereAmI(), err)
		}

		if len(keys) > 0 {
			if err := c.client.Client.Del(ctx, keys...).Err(); err != nil {
				return e.Wrap(whereami.WhereAmI(), err)
			}
		}

		cursor = next
		if cursor == 0 {
			return nil
		}
	}
}

func (c *CacheRepo) recoKey(productID string, limit int) string {
	return fmt.Sprintf("%s%s:%d", recoKeyPrefix, productID, limit)
}

// recommendationsModel — модель кэша; формат независим от домена.
type recommendationsModel struct {
	Results []recommendationModel `json:"results"`
}

type recommendationModel struct {
	ProductID   string  `json:"product_id"`
	Category    string  `json:"category"`
	SubCategory string  `json:"sub_category"`
	Price       *string `json:"price"`
	Distance    float32 `json:"distance"`
}

func newRecommendationsModel(recs *domain.Recommendations) recommendationsModel {
	model := recommendationsModel{
		Results: make([]recommendationModel, 0, len(recs.Results)),
	}

	for _, rec := range recs.Results {
		model.Results = append(model.Results, recommendationModel{
			ProductID:   rec.Product.ProductID,
			Category:    rec.Product.Category,
			SubCategory: rec.Product.SubCategory,
			Price:       rec.Product.Price,
			Distance:    rec.Distance,
		})
	}

	return model
}

func (m recommendationsModel) toDomain() *domain.Recommendations {
	results := make([]domain.Recommendation, 0, len(m.Results))
	for _, rec := range m.Results {
		results = append(results, domain.NewRecommendation(domain.RecommendedProduct{
			ProductID:   rec.ProductID,
			Category:    rec.Category,
			SubCategory: rec.SubCategory,
			Price:       rec.Price,
		}, rec.Distance))
	}

	return domain.NewRecommendations(results)
}

package http

import (
	"net/http"

	"github.com/DRSN-tech/reco-service/internal/domain"
	"github.com/DRSN-tech/reco-service/internal/usecase"
	"github.com/DRSN-tech/reco-service/pkg/e"
	"github.com/DRSN-tech/reco-service/pkg/logger"
)

type RecommendationHandler struct {
	recoUsecase  usecase.RecommendationUC
	defaultLimit int
	logger       logger.Logger
}

func NewRecommendationHandler(recoUsecase usecase.RecommendationUC, defaultLimit int, logger logger.Logger) *RecommendationHandler {
	return &RecommendationHandler{
		recoUsecase:  recoUsecase,
		defaultLimit: defaultLimit,
		logger:       logger,
	}
}

// RecommendationsResponse — JSON-ответ с рекомендациями.
type RecommendationsResponse struct {
	Results []RecommendationItem `json:"results"`
}

type RecommendationItem struct {
	Product  ProductProjection `json:"product"`
	Distance float32           `json:"distance"`
}

// ProductProjection — публичное подмножество полей товара.
type ProductProjection struct {
	ProductID   string  `json:"product_id"`
	Category    string  `json:"category"`
	SubCategory string  `json:"sub_category"`
	Price       *string `json:"price"`
}

// getRecommendations
//
//	@Summary		Рекомендации похожих товаров
//	@Description	Возвращает товары, похожие на заданный, в пределах его sub_category
//	@Tags			recommendations
//	@Produce		json
//	@Param			product_id	query		string	true	"Идентификатор якорного товара"
//	@Param			limit		query		int		false	"Максимальное число рекомендаций"
//	@Success		200			{object}	RecommendationsResponse
//	@Failure		400			{object}	ErrorResponse	"Ошибка валидации"
//	@Failure		404			{object}	ErrorResponse	"Товар не найден"
//	@Router			/recommendations [get]
func (h *RecommendationHandler) getRecommendations(w http.ResponseWriter, r *http.Request) {
	productID := r.URL.Query().Get("product_id")
	if productID == "" {
		h.logger.Warnf("%d %s: missing product_id", http.StatusBadRequest, e.ErrStatusBadRequest.Error())
		WriteError(w, e.ErrProductIDRequired)
		return
	}

	limit, err := parseLimit(r.URL.Query().Get("limit"), h.defaultLimit)
	if err != nil {
		h.logger.Warnf("%d %s: %s", http.StatusBadRequest, e.ErrStatusBadRequest.Error(), err.Error())
		WriteError(w, err)
		return
	}

	recommendations, err := h.recoUsecase.Recommend(r.Context(), usecase.NewRecommendReq(productID, limit))
	if err != nil {
		h.logger.Warnf("%s", err.Error())
		WriteError(w, err)
		return
	}

	WriteSuccess(w, http.StatusOK, toResponse(recommendations))
}

func toResponse(recs *domain.Recommendations) RecommendationsResponse {
	resp := RecommendationsResponse{
		Results: make([]RecommendationItem, 0, len(recs.Results)),
	}

	for _, rec := range recs.Results {
		resp.Results = append(resp.Results, RecommendationItem{
			Product: ProductProjection{
				ProductID:   rec.Product.ProductID,
				Category:    rec.Product.Category,
				SubCategory: rec.Product.SubCategory,
				Price:       rec.Product.Price,
			},
			Distance: rec.Distance,
		})
	}

	return resp
}

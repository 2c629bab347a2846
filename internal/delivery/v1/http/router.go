package http

import (
	"net/http"

	"github.com/DRSN-tech/reco-service/internal/usecase"
	"github.com/DRSN-tech/reco-service/pkg/logger"
	"github.com/go-chi/chi/v5"
)

type Router struct {
	router *chi.Mux
	logger logger.Logger
}

func NewRouter(router *chi.Mux, logger logger.Logger) *Router {
	return &Router{router: router, logger: logger}
}

func (r *Router) Init(recoUC usecase.RecommendationUC, defaultLimit int) {
	r.router.Get("/", healthCheck)

	r.router.Route("/api/v1", func(v1 chi.Router) {
		recoHandler := NewRecommendationHandler(recoUC, defaultLimit, r.logger)
		registerRecommendationRoutes(v1, recoHandler)
	})
}

func registerRecommendationRoutes(router chi.Router, recoHandler *RecommendationHandler) {
	router.Route("/recommendations", func(reco chi.Router) {
		reco.Get("/", recoHandler.getRecommendations)
	})
}

func healthCheck(w http.ResponseWriter, _ *http.Request) {
	WriteSuccess(w, http.StatusOK, map[string]string{
		"status":  "ok",
		"service": "similar-product-recommendation",
	})
}

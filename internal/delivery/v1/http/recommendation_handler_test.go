package http

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/DRSN-tech/reco-service/internal/domain"
	"github.com/DRSN-tech/reco-service/internal/usecase"
	"github.com/DRSN-tech/reco-service/pkg/e"
	"github.com/DRSN-tech/reco-service/pkg/logger"
	"github.com/go-chi/chi/v5"
)

type stubRecoUC struct {
	recommend func(ctx context.Context, req *usecase.RecommendReq) (*domain.Recommendations, error)
}

func (s stubRecoUC) Recommend(ctx context.Context, req *usecase.RecommendReq) (*domain.Recommendations, error) {
	return s.recommend(ctx, req)
}

func newTestServer(uc usecase.RecommendationUC, defaultLimit int) *httptest.Server {
	router := NewRouter(chi.NewRouter(), logger.NewSlogLogger())
	router.Init(uc, defaultLimit)
	return httptest.NewServer(router.router)
}

func TestGetRecommendations_OK(t *testing.T) {
	price := "$279.97"
	uc := stubRecoUC{recommend: func(_ context.Context, req *usecase.RecommendReq) (*domain.Recommendations, error) {
		if req.ProductID != "P1" || req.Limit != 3 {
			t.Errorf("unexpected request: %+v", req)
		}
		return domain.NewRecommendations([]domain.Recommendation{
			domain.NewRecommendation(domain.RecommendedProduct{
				ProductID:   "P2",
				Category:    "Electronics",
				SubCategory: "Smartphones",
				Price:       &price,
			}, 0.93),
		}), nil
	}}

	srv := newTestServer(uc, 5)
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/api/v1/recommendations/?product_id=P1&limit=3")
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}

	var body RecommendationsResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatalf("decode: %v", err)
	}

	if len(body.Results) != 1 {
		t.Fatalf("expected 1 result, got %d", len(body.Results))
	}
	got := body.Results[0]
	if got.Product.ProductID != "P2" || got.Product.SubCategory != "Smartphones" {
		t.Fatalf("unexpected result: %+v", got)
	}
	if got.Product.Price == nil || *got.Product.Price != "$279.97" {
		t.Fatalf("unexpected price: %v", got.Product.Price)
	}
	if got.Distance != 0.93 {
		t.Fatalf("unexpected distance: %v", got.Distance)
	}
}

func TestGetRecommendations_DefaultLimit(t *testing.T) {
	var gotLimit int
	uc := stubRecoUC{recommend: func(_ context.Context, req *usecase.RecommendReq) (*domain.Recommendations, error) {
		gotLimit = req.Limit
		return domain.NewRecommendations(nil), nil
	}}

	srv := newTestServer(uc, 5)
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/api/v1/recommendations/?product_id=P1")
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	if gotLimit != 5 {
		t.Fatalf("expected default limit 5, got %d", gotLimit)
	}
}

func TestGetRecommendations_BadRequest(t *testing.T) {
	uc := stubRecoUC{recommend: func(context.Context, *usecase.RecommendReq) (*domain.Recommendations, error) {
		t.Error("usecase must not be called for invalid input")
		return domain.NewRecommendations(nil), nil
	}}

	srv := newTestServer(uc, 5)
	defer srv.Close()

	urls := []string{
		"/api/v1/recommendations/",
		"/api/v1/recommendations/?product_id=P1&limit=abc",
		"/api/v1/recommendations/?product_id=P1&limit=0",
		"/api/v1/recommendations/?product_id=P1&limit=-1",
	}

	for _, u := range urls {
		resp, err := http.Get(srv.URL + u)
		if err != nil {
			t.Fatalf("request failed: %v", err)
		}

		var body ErrorResponse
		if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
			t.Fatalf("decode: %v", err)
		}
		resp.Body.Close()

		if resp.StatusCode != http.StatusBadRequest || body.Code != http.StatusBadRequest {
			t.Errorf("%s: expected 400, got %d (body %d)", u, resp.StatusCode, body.Code)
		}
	}
}

func TestGetRecommendations_NotFound(t *testing.T) {
	uc := stubRecoUC{recommend: func(context.Context, *usecase.RecommendReq) (*domain.Recommendations, error) {
		return nil, e.Wrap("RecommendationUseCase.Recommend", e.ErrProductNotFound)
	}}

	srv := newTestServer(uc, 5)
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/api/v1/recommendations/?product_id=missing")
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", resp.StatusCode)
	}
}

func TestGetRecommendations_IndexUnavailable(t *testing.T) {
	uc := stubRecoUC{recommend: func(context.Context, *usecase.RecommendReq) (*domain.Recommendations, error) {
		return nil, e.Wrap("RecommendationUseCase.Recommend", e.ErrIndexUnavailable)
	}}

	srv := newTestServer(uc, 5)
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/api/v1/recommendations/?product_id=P1")
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusBadGateway {
		t.Fatalf("expected 502, got %d", resp.StatusCode)
	}
}

func TestHealthCheck(t *testing.T) {
	srv := newTestServer(stubRecoUC{recommend: func(context.Context, *usecase.RecommendReq) (*domain.Recommendations, error) {
		return domain.NewRecommendations(nil), nil
	}}, 5)
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/")
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}

	var body map[string]string
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body["status"] != "ok" {
		t.Fatalf("unexpected health body: %v", body)
	}
}

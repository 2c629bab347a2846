package converter

import (
	"testing"

	"github.com/DRSN-tech/reco-service/internal/domain"
	"github.com/qdrant/go-client/qdrant"
)

func TestPayloadRoundTrip(t *testing.T) {
	ratings := 4.2
	noOfRatings := int64(1234)
	priceUSD := "$279.97"

	original := &domain.Product{
		ProductID:    "P1",
		ProductName:  "Phone A",
		MainCategory: "Electronics",
		SubCategory:  "Smartphones",
		Ratings:      &ratings,
		NoOfRatings:  &noOfRatings,
		Price:        "฿7,999",
		PriceUSD:     &priceUSD,
	}

	payload := qdrant.NewValueMap(map[string]any(ProductToPayload(original)))
	restored := PayloadToProduct(payload)

	if restored.ProductID != original.ProductID ||
		restored.ProductName != original.ProductName ||
		restored.MainCategory != original.MainCategory ||
		restored.SubCategory != original.SubCategory ||
		restored.Price != original.Price {
		t.Fatalf("string fields mismatch: %+v", restored)
	}

	if restored.Ratings == nil || *restored.Ratings != ratings {
		t.Fatalf("ratings: got %v, want %v", restored.Ratings, ratings)
	}
	if restored.NoOfRatings == nil || *restored.NoOfRatings != noOfRatings {
		t.Fatalf("no_of_ratings: got %v, want %v", restored.NoOfRatings, noOfRatings)
	}
	if restored.PriceUSD == nil || *restored.PriceUSD != priceUSD {
		t.Fatalf("price_usd: got %v, want %v", restored.PriceUSD, priceUSD)
	}
}

func TestPayloadRoundTrip_AbsentOptionals(t *testing.T) {
	original := &domain.Product{
		ProductID:    "P2",
		ProductName:  "Phone B",
		MainCategory: "Electronics",
		SubCategory:  "Smartphones",
		Price:        "N/A",
	}

	payload := qdrant.NewValueMap(map[string]any(ProductToPayload(original)))
	restored := PayloadToProduct(payload)

	// Отсутствующие опциональные поля остаются отсутствующими, не нулевыми
	if restored.Ratings != nil {
		t.Errorf("ratings: expected nil, got %v", *restored.Ratings)
	}
	if restored.NoOfRatings != nil {
		t.Errorf("no_of_ratings: expected nil, got %v", *restored.NoOfRatings)
	}
	if restored.PriceUSD != nil {
		t.Errorf("price_usd: expected nil, got %v", *restored.PriceUSD)
	}
}

func TestPayloadToProduct_NullValues(t *testing.T) {
	payload := map[string]*qdrant.Value{
		"product_id":    qdrant.NewValueString("P3"),
		"product_name":  qdrant.NewValueString("Phone C"),
		"main_category": qdrant.NewValueString("Electronics"),
		"sub_category":  qdrant.NewValueString("Smartphones"),
		"price":         qdrant.NewValueString("฿5,999"),
		"ratings":       qdrant.NewValueNull(),
		"no_of_ratings": qdrant.NewValueNull(),
	}

	restored := PayloadToProduct(payload)

	if restored.Ratings != nil || restored.NoOfRatings != nil {
		t.Fatalf("explicit nulls must restore as nil, got %v %v", restored.Ratings, restored.NoOfRatings)
	}
}

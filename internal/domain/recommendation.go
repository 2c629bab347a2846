package domain

// RecommendedProduct — проекция товара, отдаваемая наружу вместе с рекомендацией.
// Намеренно содержит подмножество полей Product.
type RecommendedProduct struct {
	ProductID   string
	Category    string // main_category товара
	SubCategory string
	Price       *string // нормализованная цена (price_usd)
}

// Recommendation — один похожий товар со score близости.
// Distance хранит нативный score индекса (cosine similarity, лучшие — первыми).
type Recommendation struct {
	Product  RecommendedProduct
	Distance float32
}

// Recommendations — упорядоченный набор рекомендаций; может быть пустым.
type Recommendations struct {
	Results []Recommendation
}

func NewRecommendation(product RecommendedProduct, distance float32) Recommendation {
	return Recommendation{
		Product:  product,
		Distance: distance,
	}
}

func NewRecommendations(results []Recommendation) *Recommendations {
	return &Recommendations{
		Results: results,
	}
}

package domain

// Payload описывает дополнительную информацию вектора
type Payload map[string]any

// ProductPoint описывает запись в векторном индексе:
// вектор товара и денормализованная проекция его полей.
type ProductPoint struct {
	ID      string // равен Product.ProductID
	Vector  []float32
	Payload Payload
}

func NewProductPoint(id string, vector []float32, payload Payload) *ProductPoint {
	return &ProductPoint{
		ID:      id,
		Vector:  vector,
		Payload: payload,
	}
}

// NewProductPayload собирает payload точки из полей товара (без самого вектора).
func NewProductPayload(p *Product) Payload {
	payload := Payload{
		"product_id":    p.ProductID,
		"product_name":  p.ProductName,
		"main_category": p.MainCategory,
		"sub_category":  p.SubCategory,
		"price":         p.Price,
	}

	if p.Ratings != nil {
		payload["ratings"] = *p.Ratings
	}
	if p.NoOfRatings != nil {
		payload["no_of_ratings"] = *p.NoOfRatings
	}
	if p.PriceUSD != nil {
		payload["price_usd"] = *p.PriceUSD
	}

	return payload
}

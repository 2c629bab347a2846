package converter

import (
	"github.com/DRSN-tech/reco-service/internal/domain"
	"github.com/qdrant/go-client/qdrant"
)

// PayloadToProduct восстанавливает товар из payload точки Qdrant.
// Вектор в payload не хранится и заполняется отдельно.
func PayloadToProduct(payload map[string]*qdrant.Value) *domain.Product {
	product := &domain.Product{
		ProductID:    stringField(payload, "product_id"),
		ProductName:  stringField(payload, "product_name"),
		MainCategory: stringField(payload, "main_category"),
		SubCategory:  stringField(payload, "sub_category"),
		Price:        stringField(payload, "price"),
	}

	if v, ok := payload["ratings"]; ok && v.GetKind() != nil {
		if _, isNull := v.GetKind().(*qdrant.Value_NullValue); !isNull {
			ratings := v.GetDoubleValue()
			product.Ratings = &ratings
		}
	}

	if v, ok := payload["no_of_ratings"]; ok && v.GetKind() != nil {
		if _, isNull := v.GetKind().(*qdrant.Value_NullValue); !isNull {
			noOfRatings := v.GetIntegerValue()
			product.NoOfRatings = &noOfRatings
		}
	}

	if v, ok := payload["price_usd"]; ok {
		if s := v.GetStringValue(); s != "" {
			product.PriceUSD = &s
		}
	}

	return product
}

// ProductToPayload собирает payload точки из товара.
func ProductToPayload(product *domain.Product) domain.Payload {
	return domain.NewProductPayload(product)
}

func stringField(payload map[string]*qdrant.Value, key string) string {
	if v, ok := payload[key]; ok {
		return v.GetStringValue()
	}

	return ""
}

package domain

// Product описывает товар каталога.
// ProductID — стабильный идентификатор, он же ключ точки в векторном индексе.
type Product struct {
	ProductID    string
	ProductName  string
	MainCategory string
	SubCategory  string // ключ ограничения поиска похожих товаров
	Ratings      *float64
	NoOfRatings  *int64
	Price        string  // отображаемая цена в исходной валюте
	PriceUSD     *string // нормализованная цена, заполняется пайплайном
	Embedding    []float32
}

func NewProduct(productID, productName, mainCategory, subCategory, price string) *Product {
	return &Product{
		ProductID:    productID,
		ProductName:  productName,
		MainCategory: mainCategory,
		SubCategory:  subCategory,
		Price:        price,
	}
}

// HasEmbedding сообщает, готов ли товар к индексации.
func (p *Product) HasEmbedding() bool {
	return len(p.Embedding) > 0
}

package product

import "github.com/shopspring/decimal"

type Product struct {
	ID          int64           `json:"product_id"`
	Name        string          `json:"name"`
	Description string          `json:"description"`
	BasePrice   decimal.Decimal `json:"base_price"`
	Type        string          `json:"type"`
	ImageURL    string          `json:"image_url"`
	// Always a list in the payload, empty when the product has no variants,
	// so clients never deal with null.
	Variants []Variant `json:"variants"`
}

type Variant struct {
	ID              int64           `json:"variant_id"`
	ProductID       int64           `json:"product_id"`
	VariantName     string          `json:"variant_name"`
	AdditionalPrice decimal.Decimal `json:"additional_price"`
	StockQuantity   int             `json:"stock_quantity"`
	ImageURL        string          `json:"image_url"`
}

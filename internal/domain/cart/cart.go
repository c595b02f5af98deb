package cart

import "github.com/shopspring/decimal"

// NoVariant is the sentinel variant id for a line on a product bought
// without selecting a variant.
const NoVariant int64 = 0

// Line is a cart row joined with current product/variant data. TotalPrice is
// derived on every read from the prices in effect at that moment; it is never
// stored, since prices can change between add-to-cart and checkout.
type Line struct {
	CartID          int64           `json:"cart_id"`
	UserID          int64           `json:"user_id"`
	ProductID       int64           `json:"product_id"`
	VariantID       int64           `json:"variant_id"`
	Quantity        int             `json:"quantity"`
	Name            string          `json:"name"`
	ImageURL        string          `json:"image_url"`
	BasePrice       decimal.Decimal `json:"base_price"`
	VariantName     string          `json:"variant_name"`
	AdditionalPrice decimal.Decimal `json:"additional_price"`
	TotalPrice      decimal.Decimal `json:"total_price"`

	// Stock of the selected variant, carried for order placement only.
	StockQuantity int `json:"-"`
}

func (l Line) HasVariant() bool { return l.VariantID != NoVariant }

// LineTotal computes (base + additional) * qty.
func LineTotal(base, additional decimal.Decimal, qty int) decimal.Decimal {
	return base.Add(additional).Mul(decimal.NewFromInt(int64(qty)))
}

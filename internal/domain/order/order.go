package order

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"storefront/internal/apperr"
	"storefront/internal/domain/cart"
)

type PaymentMethod string

const (
	PaymentCashOnDelivery PaymentMethod = "cod"
	PaymentMobileWallet   PaymentMethod = "gcash"
)

func ParsePaymentMethod(s string) (PaymentMethod, error) {
	switch PaymentMethod(s) {
	case PaymentCashOnDelivery, PaymentMobileWallet:
		return PaymentMethod(s), nil
	}
	return "", apperr.Newf(apperr.InvalidArgument, "unknown payment method %q", s)
}

const StatusPending = "pending"

type Order struct {
	ID            int64           `json:"order_id"`
	Reference     string          `json:"reference"`
	UserID        int64           `json:"user_id"`
	PaymentMethod PaymentMethod   `json:"payment_method"`
	Status        string          `json:"status"`
	Total         decimal.Decimal `json:"total"`
	CreatedAt     time.Time       `json:"created_at"`
	Items         []Item          `json:"items,omitempty"`
}

// Item snapshots name and unit price at purchase time; later catalog edits
// must not rewrite order history.
type Item struct {
	ID          int64           `json:"id"`
	OrderID     int64           `json:"order_id"`
	ProductID   int64           `json:"product_id"`
	VariantID   int64           `json:"variant_id"`
	ProductName string          `json:"product_name"`
	VariantName string          `json:"variant_name"`
	UnitPrice   decimal.Decimal `json:"unit_price"`
	Quantity    int             `json:"quantity"`
	LineTotal   decimal.Decimal `json:"total_price"`
}

// NewFromCart builds an order draft from the user's cart lines: every
// variant-bearing line must still have enough stock, and the total is the sum
// of the derived line totals. The draft carries no ID until persisted.
func NewFromCart(userID int64, lines []cart.Line, method PaymentMethod) (Order, error) {
	if len(lines) == 0 {
		return Order{}, apperr.New(apperr.InvalidArgument, "cart is empty")
	}

	o := Order{
		Reference:     uuid.NewString(),
		UserID:        userID,
		PaymentMethod: method,
		Status:        StatusPending,
		Total:         decimal.Zero,
	}

	for _, l := range lines {
		if l.HasVariant() && l.Quantity > l.StockQuantity {
			return Order{}, apperr.Newf(apperr.InsufficientStock,
				"insufficient stock for %s (%s): %d available, %d requested",
				l.Name, l.VariantName, l.StockQuantity, l.Quantity)
		}

		lineTotal := cart.LineTotal(l.BasePrice, l.AdditionalPrice, l.Quantity)
		o.Items = append(o.Items, Item{
			ProductID:   l.ProductID,
			VariantID:   l.VariantID,
			ProductName: l.Name,
			VariantName: l.VariantName,
			UnitPrice:   l.BasePrice.Add(l.AdditionalPrice),
			Quantity:    l.Quantity,
			LineTotal:   lineTotal,
		})
		o.Total = o.Total.Add(lineTotal)
	}

	return o, nil
}

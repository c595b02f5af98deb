package cart

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"storefront/internal/apperr"
	"storefront/internal/db"
	"storefront/internal/domain/cart"
)

// MaxLineQuantity caps accumulation on a single cart line; exceeding it fails
// instead of wrapping.
const MaxLineQuantity = 10000

type Repo struct {
	db *pgxpool.Pool
}

func NewRepo(pool *pgxpool.Pool) *Repo {
	return &Repo{db: pool}
}

// AddOrIncrement upserts a line keyed on (user_id, product_id, variant_id) in
// a single statement, so concurrent adds for the same triple are never lost.
// Repeated calls are additive, not idempotent. On the conflict path the cap
// is enforced inside the same statement: when it would be exceeded no row
// comes back and nothing is written.
func (r *Repo) AddOrIncrement(ctx context.Context, userID, productID, variantID int64, qty int) error {
	if qty <= 0 {
		return apperr.New(apperr.InvalidArgument, "quantity must be positive")
	}
	if qty > MaxLineQuantity {
		return apperr.Newf(apperr.InvalidArgument, "quantity exceeds %d per line", MaxLineQuantity)
	}

	ctx, cancel := db.WithTimeout(ctx)
	defer cancel()

	var productOK, variantOK bool
	err := r.db.QueryRow(ctx, `
		SELECT
		  EXISTS(SELECT 1 FROM products WHERE product_id = $1),
		  ($2 = 0 OR EXISTS(SELECT 1 FROM variants WHERE variant_id = $2 AND product_id = $1))
	`, productID, variantID).Scan(&productOK, &variantOK)
	if err != nil {
		return err
	}
	if !productOK {
		return apperr.New(apperr.NotFound, "product not found")
	}
	if !variantOK {
		return apperr.New(apperr.NotFound, "variant not found for product")
	}

	var cartID int64
	err = r.db.QueryRow(ctx, `
		INSERT INTO cart (user_id, product_id, variant_id, quantity)
		VALUES ($1,$2,$3,$4)
		ON CONFLICT (user_id, product_id, variant_id)
		DO UPDATE SET quantity = cart.quantity + EXCLUDED.quantity
		WHERE cart.quantity + EXCLUDED.quantity <= $5
		RETURNING cart_id
	`, userID, productID, variantID, qty, MaxLineQuantity).Scan(&cartID)
	if errors.Is(err, pgx.ErrNoRows) {
		return apperr.Newf(apperr.InvalidArgument, "quantity exceeds %d per line", MaxLineQuantity)
	}
	return err
}

// List joins each line with current product/variant data and recomputes the
// line total from today's prices.
func (r *Repo) List(ctx context.Context, userID int64) ([]cart.Line, error) {
	ctx, cancel := db.WithTimeout(ctx)
	defer cancel()

	rows, err := r.db.Query(ctx, `
		SELECT
		  c.cart_id, c.user_id, c.product_id, c.variant_id, c.quantity,
		  p.name, p.base_price,
		  COALESCE(v.image_url, p.image_url, ''),
		  COALESCE(v.variant_name, ''),
		  COALESCE(v.additional_price, 0)
		FROM cart c
		JOIN products p ON p.product_id = c.product_id
		LEFT JOIN variants v ON v.variant_id = c.variant_id
		WHERE c.user_id = $1
		ORDER BY c.cart_id
	`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []cart.Line{}
	for rows.Next() {
		var l cart.Line
		if err := rows.Scan(
			&l.CartID, &l.UserID, &l.ProductID, &l.VariantID, &l.Quantity,
			&l.Name, &l.BasePrice, &l.ImageURL, &l.VariantName, &l.AdditionalPrice,
		); err != nil {
			return nil, err
		}
		l.TotalPrice = cart.LineTotal(l.BasePrice, l.AdditionalPrice, l.Quantity)
		out = append(out, l)
	}
	return out, rows.Err()
}

// Remove deletes one line by id, scoped to the owner so a session cannot
// delete another user's line. Zero rows means the id was never there (or
// already removed), which the client needs to tell apart from a server error.
func (r *Repo) Remove(ctx context.Context, userID, cartID int64) error {
	ctx, cancel := db.WithTimeout(ctx)
	defer cancel()

	ct, err := r.db.Exec(ctx, `
		DELETE FROM cart WHERE cart_id = $1 AND user_id = $2
	`, cartID, userID)
	if err != nil {
		return err
	}
	if ct.RowsAffected() == 0 {
		return apperr.New(apperr.NotFound, "cart item not found")
	}
	return nil
}

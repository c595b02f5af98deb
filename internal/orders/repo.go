package orders

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"storefront/internal/apperr"
	"storefront/internal/db"
	"storefront/internal/domain/cart"
	"storefront/internal/domain/order"
)

type Repo struct {
	db *pgxpool.Pool
}

func NewRepo(pool *pgxpool.Pool) *Repo {
	return &Repo{db: pool}
}

// Place turns the user's cart into an order as one all-or-nothing unit:
// stock validation, total, order + item rows, stock decrement, cart clear.
// Any failure rolls the whole thing back, so a rejected order leaves cart
// and stock exactly as they were.
func (r *Repo) Place(ctx context.Context, userID int64, method order.PaymentMethod) (order.Order, error) {
	ctx, cancel := db.WithTimeout(ctx)
	defer cancel()

	tx, err := r.db.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return order.Order{}, err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	lines, err := lockedCartLines(ctx, tx, userID)
	if err != nil {
		return order.Order{}, err
	}

	o, err := order.NewFromCart(userID, lines, method)
	if err != nil {
		return order.Order{}, err
	}

	err = tx.QueryRow(ctx, `
		INSERT INTO orders (reference, user_id, payment_method, status, total)
		VALUES ($1,$2,$3,$4,$5)
		RETURNING id, created_at
	`, o.Reference, o.UserID, o.PaymentMethod, o.Status, o.Total).Scan(&o.ID, &o.CreatedAt)
	if err != nil {
		return order.Order{}, err
	}

	for i := range o.Items {
		it := &o.Items[i]
		it.OrderID = o.ID

		// The conditional decrement is the race guard: a concurrent order
		// that got there first leaves too little stock, the UPDATE matches
		// nothing and the whole transaction rolls back.
		if it.VariantID != cart.NoVariant {
			ct, err := tx.Exec(ctx, `
				UPDATE variants
				SET stock_quantity = stock_quantity - $2
				WHERE variant_id = $1 AND stock_quantity >= $2
			`, it.VariantID, it.Quantity)
			if err != nil {
				return order.Order{}, err
			}
			if ct.RowsAffected() == 0 {
				return order.Order{}, apperr.Newf(apperr.InsufficientStock,
					"insufficient stock for %s (%s)", it.ProductName, it.VariantName)
			}
		}

		err = tx.QueryRow(ctx, `
			INSERT INTO order_items (order_id, product_id, variant_id, product_name, variant_name, unit_price, quantity, line_total)
			VALUES ($1,$2,$3,$4,$5,$6,$7,$8)
			RETURNING id
		`, it.OrderID, it.ProductID, it.VariantID, it.ProductName, it.VariantName, it.UnitPrice, it.Quantity, it.LineTotal).Scan(&it.ID)
		if err != nil {
			return order.Order{}, err
		}
	}

	if _, err := tx.Exec(ctx, `DELETE FROM cart WHERE user_id = $1`, userID); err != nil {
		return order.Order{}, err
	}

	if err := tx.Commit(ctx); err != nil {
		return order.Order{}, err
	}
	return o, nil
}

// lockedCartLines reads the cart joined with current prices and stock,
// locking the cart rows so a second placement by the same user waits.
func lockedCartLines(ctx context.Context, tx pgx.Tx, userID int64) ([]cart.Line, error) {
	rows, err := tx.Query(ctx, `
		SELECT
		  c.cart_id, c.user_id, c.product_id, c.variant_id, c.quantity,
		  p.name, p.base_price,
		  COALESCE(v.variant_name, ''),
		  COALESCE(v.additional_price, 0),
		  COALESCE(v.stock_quantity, 0)
		FROM cart c
		JOIN products p ON p.product_id = c.product_id
		LEFT JOIN variants v ON v.variant_id = c.variant_id
		WHERE c.user_id = $1
		ORDER BY c.cart_id
		FOR UPDATE OF c
	`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []cart.Line
	for rows.Next() {
		var l cart.Line
		if err := rows.Scan(
			&l.CartID, &l.UserID, &l.ProductID, &l.VariantID, &l.Quantity,
			&l.Name, &l.BasePrice, &l.VariantName, &l.AdditionalPrice, &l.StockQuantity,
		); err != nil {
			return nil, err
		}
		out = append(out, l)
	}
	return out, rows.Err()
}

func (r *Repo) ListByUser(ctx context.Context, userID int64) ([]order.Order, error) {
	ctx, cancel := db.WithTimeout(ctx)
	defer cancel()

	rows, err := r.db.Query(ctx, `
		SELECT id, reference, user_id, payment_method, status, total, created_at
		FROM orders
		WHERE user_id = $1
		ORDER BY id DESC
	`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []order.Order{}
	for rows.Next() {
		var o order.Order
		if err := rows.Scan(&o.ID, &o.Reference, &o.UserID, &o.PaymentMethod, &o.Status, &o.Total, &o.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, o)
	}
	return out, rows.Err()
}

func (r *Repo) Get(ctx context.Context, userID, orderID int64) (order.Order, error) {
	ctx, cancel := db.WithTimeout(ctx)
	defer cancel()

	var o order.Order
	err := r.db.QueryRow(ctx, `
		SELECT id, reference, user_id, payment_method, status, total, created_at
		FROM orders
		WHERE id = $1 AND user_id = $2
	`, orderID, userID).Scan(&o.ID, &o.Reference, &o.UserID, &o.PaymentMethod, &o.Status, &o.Total, &o.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return order.Order{}, apperr.New(apperr.NotFound, "order not found")
	}
	if err != nil {
		return order.Order{}, err
	}

	rows, err := r.db.Query(ctx, `
		SELECT id, order_id, product_id, variant_id, product_name, variant_name, unit_price, quantity, line_total
		FROM order_items
		WHERE order_id = $1
		ORDER BY id
	`, o.ID)
	if err != nil {
		return order.Order{}, err
	}
	defer rows.Close()

	for rows.Next() {
		var it order.Item
		if err := rows.Scan(&it.ID, &it.OrderID, &it.ProductID, &it.VariantID, &it.ProductName, &it.VariantName, &it.UnitPrice, &it.Quantity, &it.LineTotal); err != nil {
			return order.Order{}, err
		}
		o.Items = append(o.Items, it)
	}
	return o, rows.Err()
}

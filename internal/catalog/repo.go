package catalog

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"storefront/internal/apperr"
	"storefront/internal/db"
	"storefront/internal/domain/product"
)

type Repo struct {
	db *pgxpool.Pool
}

func NewRepo(pool *pgxpool.Pool) *Repo {
	return &Repo{db: pool}
}

const productColumns = `
	p.product_id, p.name, COALESCE(p.description,''), p.base_price,
	COALESCE(p.type,''), COALESCE(p.image_url,''),
	v.variant_id, v.variant_name, v.additional_price, v.stock_quantity, v.image_url`

// List returns every product with its variants nested, ordered by product id
// then variant id. A single LEFT JOIN is grouped in code so products without
// variants still appear, with an empty variant list.
func (r *Repo) List(ctx context.Context) ([]product.Product, error) {
	ctx, cancel := db.WithTimeout(ctx)
	defer cancel()

	rows, err := r.db.Query(ctx, `
		SELECT `+productColumns+`
		FROM products p
		LEFT JOIN variants v ON v.product_id = p.product_id
		ORDER BY p.product_id, v.variant_id
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []product.Product{}
	for rows.Next() {
		p, v, hasVariant, err := scanProductRow(rows)
		if err != nil {
			return nil, err
		}
		if len(out) == 0 || out[len(out)-1].ID != p.ID {
			out = append(out, p)
		}
		if hasVariant {
			last := &out[len(out)-1]
			last.Variants = append(last.Variants, v)
		}
	}
	return out, rows.Err()
}

func (r *Repo) Get(ctx context.Context, id int64) (product.Product, error) {
	ctx, cancel := db.WithTimeout(ctx)
	defer cancel()

	rows, err := r.db.Query(ctx, `
		SELECT `+productColumns+`
		FROM products p
		LEFT JOIN variants v ON v.product_id = p.product_id
		WHERE p.product_id = $1
		ORDER BY v.variant_id
	`, id)
	if err != nil {
		return product.Product{}, err
	}
	defer rows.Close()

	var out product.Product
	found := false
	for rows.Next() {
		p, v, hasVariant, err := scanProductRow(rows)
		if err != nil {
			return product.Product{}, err
		}
		if !found {
			out = p
			found = true
		}
		if hasVariant {
			out.Variants = append(out.Variants, v)
		}
	}
	if err := rows.Err(); err != nil {
		return product.Product{}, err
	}
	if !found {
		return product.Product{}, apperr.New(apperr.NotFound, "product not found")
	}
	return out, nil
}

func scanProductRow(rows pgx.Rows) (product.Product, product.Variant, bool, error) {
	var (
		p     product.Product
		vID   *int64
		vName *string
		vAdd  decimal.NullDecimal
		vQty  *int
		vImg  *string
	)
	if err := rows.Scan(
		&p.ID, &p.Name, &p.Description, &p.BasePrice, &p.Type, &p.ImageURL,
		&vID, &vName, &vAdd, &vQty, &vImg,
	); err != nil {
		return product.Product{}, product.Variant{}, false, err
	}
	p.Variants = []product.Variant{}

	if vID == nil {
		return p, product.Variant{}, false, nil
	}
	v := product.Variant{
		ID:              *vID,
		ProductID:       p.ID,
		AdditionalPrice: vAdd.Decimal,
	}
	if vName != nil {
		v.VariantName = *vName
	}
	if vQty != nil {
		v.StockQuantity = *vQty
	}
	if vImg != nil {
		v.ImageURL = *vImg
	}
	return p, v, true, nil
}

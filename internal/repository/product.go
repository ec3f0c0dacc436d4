package repository

import (
	"context"
	"fmt"

	"github.com/go-faster/errors"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/IMAD-HB/ets-louaguef-sayah/internal/domain/product"
)

const (
	productColumns = `id, name, description, image, brand_id,
		price_retail, price_wholesale, price_super_wholesale, quantity_available, in_stock`

	createProductSQL = `INSERT INTO products (id, name, description, image, brand_id,
		price_retail, price_wholesale, price_super_wholesale, quantity_available, in_stock)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`

	getProductByIDSQL = `SELECT ` + productColumns + ` FROM products WHERE id = $1`

	listProductsSQL = `SELECT ` + productColumns + ` FROM products
		WHERE $1 = '' OR name ILIKE '%' || $1 || '%' ORDER BY name`

	updateProductSQL = `UPDATE products SET name = $2, description = $3, image = $4, brand_id = $5,
		price_retail = $6, price_wholesale = $7, price_super_wholesale = $8,
		quantity_available = $9, in_stock = $10, updated_at = now()
		WHERE id = $1`

	deleteProductSQL = `DELETE FROM products WHERE id = $1`
)

var _ product.Repository = (*ProductRepository)(nil)

// ProductRepository implements product.Repository backed by PostgreSQL.
type ProductRepository struct {
	pool *pgxpool.Pool
}

// NewProductRepository returns a ProductRepository that uses the given pool.
func NewProductRepository(pool *pgxpool.Pool) *ProductRepository {
	return &ProductRepository{pool: pool}
}

// Create persists a new product. The stock flag is derived from the
// available quantity before writing.
func (r *ProductRepository) Create(ctx context.Context, p *product.Product) error {
	p.InStock = p.QuantityAvailable > 0
	_, err := r.pool.Exec(ctx, createProductSQL,
		p.ID, p.Name, p.Description, p.Image, p.BrandID,
		p.BasePrices.Retail, p.BasePrices.Wholesale, p.BasePrices.SuperWholesale,
		p.QuantityAvailable, p.InStock,
	)
	if err != nil {
		return fmt.Errorf("creating product %q: %w", p.Name, err)
	}
	return nil
}

// GetByID returns a single product by identifier.
func (r *ProductRepository) GetByID(ctx context.Context, id string) (*product.Product, error) {
	rows, err := r.pool.Query(ctx, getProductByIDSQL, id)
	if err != nil {
		return nil, fmt.Errorf("getting product %q: %w", id, err)
	}

	p, err := pgx.CollectExactlyOneRow(rows, scanProduct)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, product.ErrNotFound
		}
		return nil, fmt.Errorf("getting product %q: %w", id, err)
	}
	return &p, nil
}

// List returns products whose name contains search, ordered by name.
func (r *ProductRepository) List(ctx context.Context, search string) ([]product.Product, error) {
	rows, err := r.pool.Query(ctx, listProductsSQL, search)
	if err != nil {
		return nil, fmt.Errorf("listing products: %w", err)
	}
	return pgx.CollectRows(rows, scanProduct)
}

// Update rewrites a product record, re-deriving the stock flag.
func (r *ProductRepository) Update(ctx context.Context, p *product.Product) error {
	p.InStock = p.QuantityAvailable > 0
	tag, err := r.pool.Exec(ctx, updateProductSQL,
		p.ID, p.Name, p.Description, p.Image, p.BrandID,
		p.BasePrices.Retail, p.BasePrices.Wholesale, p.BasePrices.SuperWholesale,
		p.QuantityAvailable, p.InStock,
	)
	if err != nil {
		return fmt.Errorf("updating product %q: %w", p.ID, err)
	}
	if tag.RowsAffected() == 0 {
		return product.ErrNotFound
	}
	return nil
}

// Delete removes a product. It returns product.ErrNotFound when no row
// matched.
func (r *ProductRepository) Delete(ctx context.Context, id string) error {
	tag, err := r.pool.Exec(ctx, deleteProductSQL, id)
	if err != nil {
		return fmt.Errorf("deleting product %q: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return product.ErrNotFound
	}
	return nil
}

func scanProduct(row pgx.CollectableRow) (product.Product, error) {
	var p product.Product
	err := row.Scan(
		&p.ID, &p.Name, &p.Description, &p.Image, &p.BrandID,
		&p.BasePrices.Retail, &p.BasePrices.Wholesale, &p.BasePrices.SuperWholesale,
		&p.QuantityAvailable, &p.InStock,
	)
	return p, err
}

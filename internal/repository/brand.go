package repository

import (
	"context"
	"fmt"

	"github.com/go-faster/errors"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/IMAD-HB/ets-louaguef-sayah/internal/domain/brand"
)

const (
	createBrandSQL  = `INSERT INTO brands (id, name, logo) VALUES ($1, $2, $3)`
	getBrandByIDSQL = `SELECT id, name, logo FROM brands WHERE id = $1`
	listBrandsSQL   = `SELECT id, name, logo FROM brands WHERE $1 = '' OR name ILIKE '%' || $1 || '%' ORDER BY name`
	updateBrandSQL  = `UPDATE brands SET name = $2, logo = $3 WHERE id = $1`
	deleteBrandSQL  = `DELETE FROM brands WHERE id = $1`
)

var _ brand.Repository = (*BrandRepository)(nil)

// BrandRepository implements brand.Repository backed by PostgreSQL.
// Case-insensitive name uniqueness is enforced by a LOWER(name) unique index.
type BrandRepository struct {
	pool *pgxpool.Pool
}

// NewBrandRepository returns a BrandRepository that uses the given pool.
func NewBrandRepository(pool *pgxpool.Pool) *BrandRepository {
	return &BrandRepository{pool: pool}
}

// Create persists a new brand. It returns brand.ErrNameTaken when another
// brand already uses the name, ignoring case.
func (r *BrandRepository) Create(ctx context.Context, b *brand.Brand) error {
	_, err := r.pool.Exec(ctx, createBrandSQL, b.ID, b.Name, b.Logo)
	if err != nil {
		if isUniqueViolation(err) {
			return brand.ErrNameTaken
		}
		return fmt.Errorf("creating brand %q: %w", b.Name, err)
	}
	return nil
}

// GetByID returns a single brand by identifier.
func (r *BrandRepository) GetByID(ctx context.Context, id string) (*brand.Brand, error) {
	rows, err := r.pool.Query(ctx, getBrandByIDSQL, id)
	if err != nil {
		return nil, fmt.Errorf("getting brand %q: %w", id, err)
	}

	b, err := pgx.CollectExactlyOneRow(rows, scanBrand)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, brand.ErrNotFound
		}
		return nil, fmt.Errorf("getting brand %q: %w", id, err)
	}
	return &b, nil
}

// List returns brands whose name contains search, ordered by name.
func (r *BrandRepository) List(ctx context.Context, search string) ([]brand.Brand, error) {
	rows, err := r.pool.Query(ctx, listBrandsSQL, search)
	if err != nil {
		return nil, fmt.Errorf("listing brands: %w", err)
	}
	return pgx.CollectRows(rows, scanBrand)
}

// Update rewrites a brand record.
func (r *BrandRepository) Update(ctx context.Context, b *brand.Brand) error {
	tag, err := r.pool.Exec(ctx, updateBrandSQL, b.ID, b.Name, b.Logo)
	if err != nil {
		if isUniqueViolation(err) {
			return brand.ErrNameTaken
		}
		return fmt.Errorf("updating brand %q: %w", b.ID, err)
	}
	if tag.RowsAffected() == 0 {
		return brand.ErrNotFound
	}
	return nil
}

// Delete removes a brand. It returns brand.ErrNotFound when no row matched.
func (r *BrandRepository) Delete(ctx context.Context, id string) error {
	tag, err := r.pool.Exec(ctx, deleteBrandSQL, id)
	if err != nil {
		return fmt.Errorf("deleting brand %q: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return brand.ErrNotFound
	}
	return nil
}

func scanBrand(row pgx.CollectableRow) (brand.Brand, error) {
	var b brand.Brand
	err := row.Scan(&b.ID, &b.Name, &b.Logo)
	return b, err
}

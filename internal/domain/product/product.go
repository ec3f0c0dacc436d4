package product

import (
	"context"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"

	"github.com/IMAD-HB/ets-louaguef-sayah/internal/domain/user"
)

// ErrNotFound is returned when a requested product does not exist.
var ErrNotFound = errors.New("product not found")

// BasePrices holds the three required tier prices for a product.
type BasePrices struct {
	Retail         decimal.Decimal
	Wholesale      decimal.Decimal
	SuperWholesale decimal.Decimal
}

// ForTier returns the base price for the given tier. The second return value
// is false for unknown tiers, letting the resolver apply its Retail fallback.
func (p BasePrices) ForTier(t user.Tier) (decimal.Decimal, bool) {
	switch t {
	case user.TierRetail:
		return p.Retail, true
	case user.TierWholesale:
		return p.Wholesale, true
	case user.TierSuperWholesale:
		return p.SuperWholesale, true
	}
	return decimal.Decimal{}, false
}

// Valid reports whether all three tier prices are non-negative.
func (p BasePrices) Valid() bool {
	return !p.Retail.IsNegative() && !p.Wholesale.IsNegative() && !p.SuperWholesale.IsNegative()
}

// Product is a catalog item sold under a brand.
type Product struct {
	ID                string
	Name              string
	Description       string
	Image             string
	BrandID           string
	BasePrices        BasePrices
	QuantityAvailable int
	// InStock is derived from QuantityAvailable on every write.
	InStock bool
}

// Repository defines persistence operations for the product catalog.
type Repository interface {
	Create(ctx context.Context, p *Product) error
	GetByID(ctx context.Context, id string) (*Product, error)
	// List returns products whose name contains search (case-insensitive).
	// An empty search returns the whole catalog.
	List(ctx context.Context, search string) ([]Product, error)
	Update(ctx context.Context, p *Product) error
	Delete(ctx context.Context, id string) error
}

// Package pricing resolves the effective unit price of a product for a
// viewer. Resolution order: per-user custom price override (zero is a valid
// override), then the viewer's tier base price, then the Retail base price,
// then zero. Anonymous viewers always get Retail pricing.
package pricing

import (
	"github.com/shopspring/decimal"

	"github.com/IMAD-HB/ets-louaguef-sayah/internal/domain/product"
	"github.com/IMAD-HB/ets-louaguef-sayah/internal/domain/user"
)

// Resolve returns the effective unit price of p for u. A nil u means an
// anonymous viewer. No rounding or validation happens here: negative custom
// prices pass through untouched, input validation belongs to the admin layer.
func Resolve(p *product.Product, u *user.User) decimal.Decimal {
	if u == nil {
		return p.BasePrices.Retail
	}

	if custom, ok := u.CustomPrices[p.ID]; ok {
		return custom
	}

	if price, ok := p.BasePrices.ForTier(u.Tier); ok {
		return price
	}
	return p.BasePrices.Retail
}

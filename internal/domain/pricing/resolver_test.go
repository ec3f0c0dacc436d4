package pricing

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"github.com/IMAD-HB/ets-louaguef-sayah/internal/domain/product"
	"github.com/IMAD-HB/ets-louaguef-sayah/internal/domain/user"
)

func tieredProduct() *product.Product {
	return &product.Product{
		ID:   "p1",
		Name: "Olive Oil 5L",
		BasePrices: product.BasePrices{
			Retail:         decimal.RequireFromString("100"),
			Wholesale:      decimal.RequireFromString("80"),
			SuperWholesale: decimal.RequireFromString("60"),
		},
	}
}

func TestResolve_TierPrices(t *testing.T) {
	p := tieredProduct()

	tests := []struct {
		tier user.Tier
		want string
	}{
		{user.TierRetail, "100"},
		{user.TierWholesale, "80"},
		{user.TierSuperWholesale, "60"},
	}
	for _, tt := range tests {
		t.Run(string(tt.tier), func(t *testing.T) {
			u := &user.User{ID: "u1", Tier: tt.tier}
			got := Resolve(p, u)
			assert.True(t, decimal.RequireFromString(tt.want).Equal(got), "got %s", got)
		})
	}
}

func TestResolve_CustomOverrideWins(t *testing.T) {
	p := tieredProduct()
	u := &user.User{
		ID:   "u1",
		Tier: user.TierWholesale,
		CustomPrices: user.CustomPrices{
			"p1": decimal.RequireFromString("55.50"),
		},
	}

	got := Resolve(p, u)
	assert.True(t, decimal.RequireFromString("55.50").Equal(got), "got %s", got)
}

func TestResolve_ZeroOverrideIsHonored(t *testing.T) {
	p := tieredProduct()
	u := &user.User{
		ID:           "u1",
		Tier:         user.TierWholesale,
		CustomPrices: user.CustomPrices{"p1": decimal.Zero},
	}

	got := Resolve(p, u)
	assert.True(t, got.IsZero(), "zero override must not fall back to tier price, got %s", got)
}

func TestResolve_OverrideForOtherProductIgnored(t *testing.T) {
	p := tieredProduct()
	u := &user.User{
		ID:           "u1",
		Tier:         user.TierSuperWholesale,
		CustomPrices: user.CustomPrices{"p2": decimal.RequireFromString("1")},
	}

	got := Resolve(p, u)
	assert.True(t, decimal.RequireFromString("60").Equal(got), "got %s", got)
}

func TestResolve_NegativeOverridePassesThrough(t *testing.T) {
	p := tieredProduct()
	u := &user.User{
		ID:           "u1",
		Tier:         user.TierRetail,
		CustomPrices: user.CustomPrices{"p1": decimal.RequireFromString("-5")},
	}

	got := Resolve(p, u)
	assert.True(t, decimal.RequireFromString("-5").Equal(got), "got %s", got)
}

func TestResolve_AnonymousGetsRetail(t *testing.T) {
	p := tieredProduct()

	got := Resolve(p, nil)
	assert.True(t, decimal.RequireFromString("100").Equal(got), "got %s", got)
}

func TestResolve_UnknownTierFallsBackToRetail(t *testing.T) {
	p := tieredProduct()
	u := &user.User{ID: "u1", Tier: user.Tier("Distributor")}

	got := Resolve(p, u)
	assert.True(t, decimal.RequireFromString("100").Equal(got), "got %s", got)
}

func TestResolve_MissingPricesDefaultToZero(t *testing.T) {
	p := &product.Product{ID: "p1"}

	assert.True(t, Resolve(p, nil).IsZero())
	assert.True(t, Resolve(p, &user.User{Tier: user.TierWholesale}).IsZero())
}

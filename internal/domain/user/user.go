package user

import (
	"context"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"
)

// Sentinel errors for user lookups and writes.
var (
	ErrNotFound          = errors.New("user not found")
	ErrUsernameTaken     = errors.New("username already taken")
	ErrInvalidCredential = errors.New("invalid username or password")
)

// Tier determines a client's default pricing bracket.
type Tier string

const (
	TierRetail         Tier = "Retail"
	TierWholesale      Tier = "Wholesale"
	TierSuperWholesale Tier = "SuperWholesale"
)

// Valid reports whether t is one of the three known tiers.
func (t Tier) Valid() bool {
	switch t {
	case TierRetail, TierWholesale, TierSuperWholesale:
		return true
	}
	return false
}

// Role separates back-office admins from ordering clients.
type Role string

const (
	RoleAdmin  Role = "admin"
	RoleClient Role = "client"
)

// Valid reports whether r is a known role.
func (r Role) Valid() bool {
	return r == RoleAdmin || r == RoleClient
}

// CustomPrices maps a product ID to a per-user price override. A zero value
// is a real override, not "unset": presence in the map is what matters.
type CustomPrices map[string]decimal.Decimal

// User is a platform account: either a back-office admin or a tiered client.
type User struct {
	ID           string
	Username     string
	PasswordHash string
	Name         string
	PhoneNumber  string
	Tier         Tier
	Role         Role
	CustomPrices CustomPrices
	// TotalDebt is the incrementally maintained aggregate of the user's
	// per-order remaining debts. It can be overwritten by manual settlement
	// and may therefore diverge from the on-demand sum over orders.
	TotalDebt decimal.Decimal
}

// ListFilter narrows a user listing.
type ListFilter struct {
	// Search matches username, name, or phone number, case-insensitively.
	Search string
	// Role restricts results to a single role when non-empty.
	Role Role
}

// Repository defines persistence operations for users.
type Repository interface {
	Create(ctx context.Context, u *User) error
	GetByID(ctx context.Context, id string) (*User, error)
	GetByUsername(ctx context.Context, username string) (*User, error)
	List(ctx context.Context, filter ListFilter) ([]User, error)
	Update(ctx context.Context, u *User) error
	Delete(ctx context.Context, id string) error
}

package brand

import (
	"context"

	"github.com/go-faster/errors"
)

// Sentinel errors for brand lookups and writes.
var (
	ErrNotFound  = errors.New("brand not found")
	ErrNameTaken = errors.New("brand name already taken")
)

// Brand groups products under a supplier label. Names are unique
// case-insensitively.
type Brand struct {
	ID   string
	Name string
	Logo string
}

// Repository defines persistence operations for brands.
type Repository interface {
	Create(ctx context.Context, b *Brand) error
	GetByID(ctx context.Context, id string) (*Brand, error)
	// List returns brands whose name contains search (case-insensitive).
	// An empty search returns all brands.
	List(ctx context.Context, search string) ([]Brand, error)
	Update(ctx context.Context, b *Brand) error
	Delete(ctx context.Context, id string) error
}

package order

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
)

// Status is the fulfillment state of an order. Any status may be set from
// any other by an authorized actor; there is no forward-only sequencing.
type Status string

const (
	StatusPending   Status = "Pending"
	StatusConfirmed Status = "Confirmed"
	StatusDelivered Status = "Delivered"
	StatusPaid      Status = "Paid"
)

// Valid reports whether s is one of the four known statuses.
func (s Status) Valid() bool {
	switch s {
	case StatusPending, StatusConfirmed, StatusDelivered, StatusPaid:
		return true
	}
	return false
}

// Item is a single order line. UnitPrice is snapshotted at order
// creation/edit time; later product price changes do not affect it.
type Item struct {
	ProductID string          `json:"product"`
	Quantity  int             `json:"quantity"`
	UnitPrice decimal.Decimal `json:"unitPrice"`
}

// Order is a client purchase with partial-payment debt tracking.
// RemainingDebt always equals TotalPrice minus AmountPaid; it goes negative
// on overpayment.
type Order struct {
	ID               string
	UserID           string
	Items            []Item
	TotalPrice       decimal.Decimal
	AmountPaid       decimal.Decimal
	RemainingDebt    decimal.Decimal
	Status           Status
	ReceiptGenerated bool
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

// WithUser pairs an order with owner display fields for admin listings.
type WithUser struct {
	Order
	UserName string
	UserTier string
}

// Repository defines read and status operations for orders. Writes that
// affect the owner's aggregate debt go through Ledger instead.
type Repository interface {
	GetByID(ctx context.Context, id string) (*Order, error)
	ListByUser(ctx context.Context, userID string) ([]Order, error)
	ListAll(ctx context.Context) ([]WithUser, error)
	SetStatus(ctx context.Context, id string, status Status) error
	// MarkReceiptGenerated flips the one-shot receipt flag. It is a no-op
	// when the flag is already set.
	MarkReceiptGenerated(ctx context.Context, id string) error
}

// Ledger applies an order mutation and the matching aggregate-debt
// adjustment on the owner as one atomic unit.
type Ledger interface {
	// CreateOrder inserts o and adds o.RemainingDebt to the owner's
	// aggregate debt.
	CreateOrder(ctx context.Context, o *Order) error
	// UpdateOrder rewrites o and adjusts the owner's aggregate debt by
	// o.RemainingDebt minus prevRemaining.
	UpdateOrder(ctx context.Context, o *Order, prevRemaining decimal.Decimal) error
	// DeleteOrder removes o and subtracts o.RemainingDebt from the owner's
	// aggregate debt.
	DeleteOrder(ctx context.Context, o *Order) error
}

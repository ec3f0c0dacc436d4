// Package debt covers the user-level side of debt accounting: manual
// settlement of the aggregate balance and the on-demand outstanding figure
// summed from live orders.
//
// The two representations are maintained independently on purpose. The
// aggregate on the user record moves incrementally with order mutations and
// can be overwritten by settlement; the on-demand sum is authoritative for
// receipt display only and is never written back.
package debt

import (
	"context"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"

	"github.com/IMAD-HB/ets-louaguef-sayah/internal/domain/user"
)

// ErrInvalidAmount is returned when a settlement amount is not a finite
// number.
var ErrInvalidAmount = errors.New("invalid settlement amount")

// OutstandingSource computes the sum of remaining debts over a user's orders,
// counting only orders whose remaining debt is positive.
type OutstandingSource interface {
	SumOutstanding(ctx context.Context, userID string) (decimal.Decimal, error)
}

// Service settles aggregate balances and reads outstanding totals.
type Service struct {
	users       user.Repository
	outstanding OutstandingSource
}

// NewService creates a debt Service.
func NewService(users user.Repository, outstanding OutstandingSource) *Service {
	return &Service{users: users, outstanding: outstanding}
}

// Settle overwrites the user's aggregate debt with an admin-supplied absolute
// value. It does not reconcile against the sum of per-order remaining debts.
func (s *Service) Settle(ctx context.Context, userID string, amount decimal.Decimal) (*user.User, error) {
	u, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	u.TotalDebt = amount
	if err := s.users.Update(ctx, u); err != nil {
		return nil, errors.Wrap(err, "update user debt")
	}
	return u, nil
}

// Outstanding returns the on-demand total of the user's positive per-order
// remaining debts.
func (s *Service) Outstanding(ctx context.Context, userID string) (decimal.Decimal, error) {
	total, err := s.outstanding.SumOutstanding(ctx, userID)
	if err != nil {
		return decimal.Decimal{}, errors.Wrap(err, "sum outstanding debt")
	}
	return total, nil
}

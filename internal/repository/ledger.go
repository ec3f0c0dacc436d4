package repository

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/IMAD-HB/ets-louaguef-sayah/internal/domain/order"
)

const (
	insertOrderSQL = `INSERT INTO orders (id, user_id, items, total_price, amount_paid, remaining_debt, status, receipt_generated)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`

	rewriteOrderSQL = `UPDATE orders SET items = $2, total_price = $3, amount_paid = $4,
		remaining_debt = $5, status = $6, updated_at = now()
		WHERE id = $1`

	removeOrderSQL = `DELETE FROM orders WHERE id = $1`

	adjustDebtSQL = `UPDATE users SET total_debt = total_debt + $2, updated_at = now() WHERE id = $1`
)

var _ order.Ledger = (*Ledger)(nil)

// Ledger implements order.Ledger: each order mutation and the matching
// aggregate-debt adjustment on the owner commit in one transaction, keeping
// the running balance in step with the order set. Manual settlement still
// overwrites the balance wholesale, so the invariant holds only between
// settlements.
type Ledger struct {
	pool *pgxpool.Pool
}

// NewLedger returns a Ledger that uses the given pool.
func NewLedger(pool *pgxpool.Pool) *Ledger {
	return &Ledger{pool: pool}
}

// CreateOrder inserts o and adds its remaining debt to the owner's balance.
func (l *Ledger) CreateOrder(ctx context.Context, o *order.Order) error {
	items, err := marshalItems(o)
	if err != nil {
		return err
	}
	return l.inTx(ctx, o.UserID, o.RemainingDebt, func(tx pgx.Tx) error {
		_, err := tx.Exec(ctx, insertOrderSQL,
			o.ID, o.UserID, items, o.TotalPrice, o.AmountPaid,
			o.RemainingDebt, o.Status, o.ReceiptGenerated,
		)
		return err
	})
}

// UpdateOrder rewrites o and moves the owner's balance by the remaining-debt
// delta.
func (l *Ledger) UpdateOrder(ctx context.Context, o *order.Order, prevRemaining decimal.Decimal) error {
	items, err := marshalItems(o)
	if err != nil {
		return err
	}
	delta := o.RemainingDebt.Sub(prevRemaining)
	return l.inTx(ctx, o.UserID, delta, func(tx pgx.Tx) error {
		tag, err := tx.Exec(ctx, rewriteOrderSQL,
			o.ID, items, o.TotalPrice, o.AmountPaid, o.RemainingDebt, o.Status,
		)
		if err != nil {
			return err
		}
		if tag.RowsAffected() == 0 {
			return order.ErrNotFound
		}
		return nil
	})
}

// DeleteOrder removes o and subtracts its remaining debt from the owner's
// balance.
func (l *Ledger) DeleteOrder(ctx context.Context, o *order.Order) error {
	return l.inTx(ctx, o.UserID, o.RemainingDebt.Neg(), func(tx pgx.Tx) error {
		tag, err := tx.Exec(ctx, removeOrderSQL, o.ID)
		if err != nil {
			return err
		}
		if tag.RowsAffected() == 0 {
			return order.ErrNotFound
		}
		return nil
	})
}

// inTx runs the order write and the debt adjustment in one transaction.
func (l *Ledger) inTx(ctx context.Context, userID string, delta decimal.Decimal, write func(pgx.Tx) error) error {
	tx, err := l.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback(ctx) //nolint:errcheck // rollback after commit is a no-op

	if err := write(tx); err != nil {
		return err
	}
	if !delta.IsZero() {
		if _, err := tx.Exec(ctx, adjustDebtSQL, userID, delta); err != nil {
			return fmt.Errorf("adjusting debt for user %q: %w", userID, err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("committing transaction: %w", err)
	}
	return nil
}

func marshalItems(o *order.Order) ([]byte, error) {
	items, err := json.Marshal(o.Items)
	if err != nil {
		return nil, fmt.Errorf("marshaling order items: %w", err)
	}
	return items, nil
}

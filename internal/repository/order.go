package repository

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/go-faster/errors"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/IMAD-HB/ets-louaguef-sayah/internal/domain/debt"
	"github.com/IMAD-HB/ets-louaguef-sayah/internal/domain/order"
)

const (
	orderColumns = `id, user_id, items, total_price, amount_paid, remaining_debt, status, receipt_generated, created_at, updated_at`

	getOrderByIDSQL = `SELECT ` + orderColumns + ` FROM orders WHERE id = $1`

	listOrdersByUserSQL = `SELECT ` + orderColumns + ` FROM orders WHERE user_id = $1 ORDER BY created_at DESC`

	listAllOrdersSQL = `SELECT o.id, o.user_id, o.items, o.total_price, o.amount_paid, o.remaining_debt,
		o.status, o.receipt_generated, o.created_at, o.updated_at, u.name, u.tier
		FROM orders o JOIN users u ON u.id = o.user_id
		ORDER BY o.created_at DESC`

	setOrderStatusSQL = `UPDATE orders SET status = $2, updated_at = now() WHERE id = $1`

	markReceiptSQL = `UPDATE orders SET receipt_generated = TRUE, updated_at = now()
		WHERE id = $1 AND receipt_generated = FALSE`

	sumOutstandingSQL = `SELECT COALESCE(SUM(remaining_debt), 0) FROM orders
		WHERE user_id = $1 AND remaining_debt > 0`
)

var (
	_ order.Repository       = (*OrderRepository)(nil)
	_ debt.OutstandingSource = (*OrderRepository)(nil)
)

// OrderRepository implements order.Repository backed by PostgreSQL. Line
// items are stored as a JSONB array with price snapshots.
type OrderRepository struct {
	pool *pgxpool.Pool
}

// NewOrderRepository returns an OrderRepository that uses the given pool.
func NewOrderRepository(pool *pgxpool.Pool) *OrderRepository {
	return &OrderRepository{pool: pool}
}

// GetByID returns a single order by identifier.
func (r *OrderRepository) GetByID(ctx context.Context, id string) (*order.Order, error) {
	rows, err := r.pool.Query(ctx, getOrderByIDSQL, id)
	if err != nil {
		return nil, fmt.Errorf("getting order %q: %w", id, err)
	}

	o, err := pgx.CollectExactlyOneRow(rows, scanOrder)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, order.ErrNotFound
		}
		return nil, fmt.Errorf("getting order %q: %w", id, err)
	}
	return &o, nil
}

// ListByUser returns the user's orders, newest first.
func (r *OrderRepository) ListByUser(ctx context.Context, userID string) ([]order.Order, error) {
	rows, err := r.pool.Query(ctx, listOrdersByUserSQL, userID)
	if err != nil {
		return nil, fmt.Errorf("listing orders for user %q: %w", userID, err)
	}
	return pgx.CollectRows(rows, scanOrder)
}

// ListAll returns every order joined with owner display fields, newest first.
func (r *OrderRepository) ListAll(ctx context.Context) ([]order.WithUser, error) {
	rows, err := r.pool.Query(ctx, listAllOrdersSQL)
	if err != nil {
		return nil, fmt.Errorf("listing orders: %w", err)
	}
	return pgx.CollectRows(rows, func(row pgx.CollectableRow) (order.WithUser, error) {
		var (
			ow    order.WithUser
			items []byte
		)
		err := row.Scan(
			&ow.ID, &ow.UserID, &items, &ow.TotalPrice, &ow.AmountPaid, &ow.RemainingDebt,
			&ow.Status, &ow.ReceiptGenerated, &ow.CreatedAt, &ow.UpdatedAt,
			&ow.UserName, &ow.UserTier,
		)
		if err != nil {
			return order.WithUser{}, err
		}
		if err := json.Unmarshal(items, &ow.Items); err != nil {
			return order.WithUser{}, fmt.Errorf("unmarshaling order items: %w", err)
		}
		return ow, nil
	})
}

// SetStatus updates the order's status. It returns order.ErrNotFound when
// no row matched.
func (r *OrderRepository) SetStatus(ctx context.Context, id string, status order.Status) error {
	tag, err := r.pool.Exec(ctx, setOrderStatusSQL, id, status)
	if err != nil {
		return fmt.Errorf("setting status of order %q: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return order.ErrNotFound
	}
	return nil
}

// MarkReceiptGenerated flips the one-shot receipt flag. Already-flipped
// orders are left untouched.
func (r *OrderRepository) MarkReceiptGenerated(ctx context.Context, id string) error {
	_, err := r.pool.Exec(ctx, markReceiptSQL, id)
	if err != nil {
		return fmt.Errorf("marking receipt for order %q: %w", id, err)
	}
	return nil
}

// SumOutstanding returns the sum of positive remaining debts over the user's
// orders. Implements debt.OutstandingSource.
func (r *OrderRepository) SumOutstanding(ctx context.Context, userID string) (decimal.Decimal, error) {
	var total decimal.Decimal
	err := r.pool.QueryRow(ctx, sumOutstandingSQL, userID).Scan(&total)
	if err != nil {
		return decimal.Decimal{}, fmt.Errorf("summing outstanding debt for user %q: %w", userID, err)
	}
	return total, nil
}

func scanOrder(row pgx.CollectableRow) (order.Order, error) {
	var (
		o     order.Order
		items []byte
	)
	err := row.Scan(
		&o.ID, &o.UserID, &items, &o.TotalPrice, &o.AmountPaid, &o.RemainingDebt,
		&o.Status, &o.ReceiptGenerated, &o.CreatedAt, &o.UpdatedAt,
	)
	if err != nil {
		return order.Order{}, err
	}
	if err := json.Unmarshal(items, &o.Items); err != nil {
		return order.Order{}, fmt.Errorf("unmarshaling order items: %w", err)
	}
	return o, nil
}

package repository

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
)

const (
	countClientsSQL  = `SELECT COUNT(*) FROM users WHERE role = 'client'`
	countOrdersSQL   = `SELECT COUNT(*) FROM orders`
	sumClientDebtSQL = `SELECT COALESCE(SUM(total_debt), 0) FROM users WHERE role = 'client'`
)

// StatsRepository computes the admin dashboard aggregates.
type StatsRepository struct {
	pool *pgxpool.Pool
}

// NewStatsRepository returns a StatsRepository that uses the given pool.
func NewStatsRepository(pool *pgxpool.Pool) *StatsRepository {
	return &StatsRepository{pool: pool}
}

// Summary returns the client count, order count, and the summed running debt
// balance across all clients.
func (r *StatsRepository) Summary(ctx context.Context) (clients, orders int64, totalDebt decimal.Decimal, err error) {
	if err = r.pool.QueryRow(ctx, countClientsSQL).Scan(&clients); err != nil {
		return 0, 0, decimal.Decimal{}, fmt.Errorf("counting clients: %w", err)
	}
	if err = r.pool.QueryRow(ctx, countOrdersSQL).Scan(&orders); err != nil {
		return 0, 0, decimal.Decimal{}, fmt.Errorf("counting orders: %w", err)
	}
	if err = r.pool.QueryRow(ctx, sumClientDebtSQL).Scan(&totalDebt); err != nil {
		return 0, 0, decimal.Decimal{}, fmt.Errorf("summing client debt: %w", err)
	}
	return clients, orders, totalDebt, nil
}

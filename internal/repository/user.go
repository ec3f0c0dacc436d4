package repository

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/go-faster/errors"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/IMAD-HB/ets-louaguef-sayah/internal/domain/user"
)

const (
	userColumns = `id, username, password_hash, name, phone_number, tier, role, custom_prices, total_debt`

	createUserSQL = `INSERT INTO users (id, username, password_hash, name, phone_number, tier, role, custom_prices, total_debt)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`

	getUserByIDSQL       = `SELECT ` + userColumns + ` FROM users WHERE id = $1`
	getUserByUsernameSQL = `SELECT ` + userColumns + ` FROM users WHERE username = $1`

	listUsersSQL = `SELECT ` + userColumns + ` FROM users
		WHERE ($1 = '' OR username ILIKE '%' || $1 || '%' OR name ILIKE '%' || $1 || '%' OR phone_number ILIKE '%' || $1 || '%')
		  AND ($2 = '' OR role = $2)
		ORDER BY username`

	updateUserSQL = `UPDATE users SET username = $2, password_hash = $3, name = $4, phone_number = $5,
		tier = $6, role = $7, custom_prices = $8, total_debt = $9, updated_at = now()
		WHERE id = $1`

	deleteUserSQL = `DELETE FROM users WHERE id = $1`
)

var _ user.Repository = (*UserRepository)(nil)

// UserRepository implements user.Repository backed by PostgreSQL. The custom
// price map is stored in a JSONB column keyed by product ID.
type UserRepository struct {
	pool *pgxpool.Pool
}

// NewUserRepository returns a UserRepository that uses the given pool.
func NewUserRepository(pool *pgxpool.Pool) *UserRepository {
	return &UserRepository{pool: pool}
}

// Create persists a new user. It returns user.ErrUsernameTaken on a
// duplicate username.
func (r *UserRepository) Create(ctx context.Context, u *user.User) error {
	prices, err := json.Marshal(u.CustomPrices)
	if err != nil {
		return fmt.Errorf("marshaling custom prices: %w", err)
	}

	_, err = r.pool.Exec(ctx, createUserSQL,
		u.ID, u.Username, u.PasswordHash, u.Name, u.PhoneNumber,
		u.Tier, u.Role, prices, u.TotalDebt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return user.ErrUsernameTaken
		}
		return fmt.Errorf("creating user %q: %w", u.Username, err)
	}
	return nil
}

// GetByID returns a single user by identifier.
func (r *UserRepository) GetByID(ctx context.Context, id string) (*user.User, error) {
	return r.getOne(ctx, getUserByIDSQL, id)
}

// GetByUsername returns a single user by username.
func (r *UserRepository) GetByUsername(ctx context.Context, username string) (*user.User, error) {
	return r.getOne(ctx, getUserByUsernameSQL, username)
}

func (r *UserRepository) getOne(ctx context.Context, sql, arg string) (*user.User, error) {
	rows, err := r.pool.Query(ctx, sql, arg)
	if err != nil {
		return nil, fmt.Errorf("getting user: %w", err)
	}

	u, err := pgx.CollectExactlyOneRow(rows, scanUser)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, user.ErrNotFound
		}
		return nil, fmt.Errorf("getting user: %w", err)
	}
	return &u, nil
}

// List returns users matching the filter, ordered by username.
func (r *UserRepository) List(ctx context.Context, filter user.ListFilter) ([]user.User, error) {
	rows, err := r.pool.Query(ctx, listUsersSQL, filter.Search, string(filter.Role))
	if err != nil {
		return nil, fmt.Errorf("listing users: %w", err)
	}
	return pgx.CollectRows(rows, scanUser)
}

// Update rewrites a user record. It returns user.ErrNotFound when the user
// does not exist and user.ErrUsernameTaken on a duplicate username.
func (r *UserRepository) Update(ctx context.Context, u *user.User) error {
	prices, err := json.Marshal(u.CustomPrices)
	if err != nil {
		return fmt.Errorf("marshaling custom prices: %w", err)
	}

	tag, err := r.pool.Exec(ctx, updateUserSQL,
		u.ID, u.Username, u.PasswordHash, u.Name, u.PhoneNumber,
		u.Tier, u.Role, prices, u.TotalDebt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return user.ErrUsernameTaken
		}
		return fmt.Errorf("updating user %q: %w", u.ID, err)
	}
	if tag.RowsAffected() == 0 {
		return user.ErrNotFound
	}
	return nil
}

// Delete removes a user. It returns user.ErrNotFound when no row matched.
func (r *UserRepository) Delete(ctx context.Context, id string) error {
	tag, err := r.pool.Exec(ctx, deleteUserSQL, id)
	if err != nil {
		return fmt.Errorf("deleting user %q: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return user.ErrNotFound
	}
	return nil
}

func scanUser(row pgx.CollectableRow) (user.User, error) {
	var (
		u      user.User
		prices []byte
	)
	err := row.Scan(
		&u.ID, &u.Username, &u.PasswordHash, &u.Name, &u.PhoneNumber,
		&u.Tier, &u.Role, &prices, &u.TotalDebt,
	)
	if err != nil {
		return user.User{}, err
	}
	if err := json.Unmarshal(prices, &u.CustomPrices); err != nil {
		return user.User{}, fmt.Errorf("unmarshaling custom prices: %w", err)
	}
	return u, nil
}

// isUniqueViolation reports whether err is a PostgreSQL unique constraint
// violation (SQLSTATE 23505).
func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}

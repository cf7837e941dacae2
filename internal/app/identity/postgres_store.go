package identity

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"connect/internal/app/db"
	"connect/internal/app/user"
)

const accountColumns = `id::text, email, name, password_hash, avatar_url, status, created_at`

// PostgresStore is an AccountStore backed by the accounts table.
type PostgresStore struct {
	pool *pgxpool.Pool
}

// NewPostgresStore wraps an open pool. Migrations must already be applied.
func NewPostgresStore(pool *pgxpool.Pool) *PostgresStore {
	return &PostgresStore{pool: pool}
}

func scanAccount(row pgx.Row) (*Account, error) {
	var (
		a      Account
		status string
	)
	if err := row.Scan(&a.ID, &a.Email, &a.Name, &a.PasswordHash, &a.AvatarURL, &status, &a.CreatedAt); err != nil {
		return nil, err
	}
	a.Status = user.ParseStatus(status)
	return &a, nil
}

func (s *PostgresStore) findOne(ctx context.Context, where string, arg any) (*Account, error) {
	row := s.pool.QueryRow(ctx, `SELECT `+accountColumns+` FROM accounts WHERE `+where, arg)

	a, err := scanAccount(row)
	if db.IsNoRows(err) {
		return nil, ErrAccountNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("query account: %w", err)
	}
	return a, nil
}

// FindByEmail implements AccountStore.
func (s *PostgresStore) FindByEmail(ctx context.Context, email string) (*Account, error) {
	return s.findOne(ctx, `email = $1`, email)
}

// FindByID implements AccountStore.
func (s *PostgresStore) FindByID(ctx context.Context, id string) (*Account, error) {
	return s.findOne(ctx, `id = $1::uuid`, id)
}

// Create implements AccountStore.
func (s *PostgresStore) Create(ctx context.Context, a *Account) error {
	_, err := s.pool.Exec(ctx,
		`INSERT INTO accounts (id, email, name, password_hash, avatar_url, status, created_at)
		 VALUES ($1::uuid, $2, $3, $4, $5, $6, $7)`,
		a.ID, a.Email, a.Name, a.PasswordHash, a.AvatarURL, string(a.Status), a.CreatedAt,
	)
	if db.IsUniqueViolation(err) {
		return ErrAccountExists
	}
	if err != nil {
		return fmt.Errorf("insert account: %w", err)
	}
	return nil
}

// UpdateAvatar implements AccountStore.
func (s *PostgresStore) UpdateAvatar(ctx context.Context, id, avatarURL string) error {
	tag, err := s.pool.Exec(ctx, `UPDATE accounts SET avatar_url = $2 WHERE id = $1::uuid`, id, avatarURL)
	if err != nil {
		return fmt.Errorf("update avatar: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrAccountNotFound
	}
	return nil
}

// List implements AccountStore.
func (s *PostgresStore) List(ctx context.Context) ([]Account, error) {
	rows, err := s.pool.Query(ctx, `SELECT `+accountColumns+` FROM accounts ORDER BY name, id`)
	if err != nil {
		return nil, fmt.Errorf("list accounts: %w", err)
	}
	defer rows.Close()

	out := []Account{}
	for rows.Next() {
		a, err := scanAccount(rows)
		if err != nil {
			return nil, fmt.Errorf("scan account: %w", err)
		}
		out = append(out, *a)
	}
	return out, rows.Err()
}

package auth

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PostgresRepository implements UserRepository using pgxpool.
type PostgresRepository struct {
	pool *pgxpool.Pool
}

// NewRepository creates a new UserRepository backed by the given connection pool.
func NewRepository(pool *pgxpool.Pool) UserRepository {
	return &PostgresRepository{pool: pool}
}

// Upsert inserts the user or refreshes profile fields and session token for
// an existing ID (a returning Telegram user gets a fresh token).
func (r *PostgresRepository) Upsert(ctx context.Context, u *User) error {
	query := `
		INSERT INTO users (id, display_name, username, anonymous, token_prefix, token_hash)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (id) DO UPDATE SET
			display_name = EXCLUDED.display_name,
			username = EXCLUDED.username,
			token_prefix = EXCLUDED.token_prefix,
			token_hash = EXCLUDED.token_hash
		RETURNING created_at`

	err := r.pool.QueryRow(ctx, query,
		u.ID,
		u.DisplayName,
		u.Username,
		u.Anonymous,
		u.TokenPrefix,
		u.TokenHash,
	).Scan(&u.CreatedAt)
	if err != nil {
		return fmt.Errorf("upserting user: %w", err)
	}

	return nil
}

// GetByID retrieves a single user by its identifier.
func (r *PostgresRepository) GetByID(ctx context.Context, id string) (*User, error) {
	query := `
		SELECT id, display_name, username, anonymous, token_prefix, token_hash, created_at
		FROM users
		WHERE id = $1`

	var u User
	err := r.pool.QueryRow(ctx, query, id).Scan(
		&u.ID, &u.DisplayName, &u.Username, &u.Anonymous,
		&u.TokenPrefix, &u.TokenHash, &u.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("querying user: %w", err)
	}

	return &u, nil
}

// FindByPrefix retrieves candidate users whose token prefix matches.
func (r *PostgresRepository) FindByPrefix(ctx context.Context, prefix string) ([]User, error) {
	query := `
		SELECT id, display_name, username, anonymous, token_prefix, token_hash, created_at
		FROM users
		WHERE token_prefix = $1`

	rows, err := r.pool.Query(ctx, query, prefix)
	if err != nil {
		return nil, fmt.Errorf("finding users by prefix: %w", err)
	}
	defer rows.Close()

	var users []User
	for rows.Next() {
		var u User
		err := rows.Scan(
			&u.ID, &u.DisplayName, &u.Username, &u.Anonymous,
			&u.TokenPrefix, &u.TokenHash, &u.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("scanning user row: %w", err)
		}
		users = append(users, u)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating user rows: %w", err)
	}

	return users, nil
}

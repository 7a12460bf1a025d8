package team

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PostgresRepository implements Repository using pgxpool.
type PostgresRepository struct {
	pool *pgxpool.Pool
}

// NewRepository creates a new Repository backed by the given connection pool.
func NewRepository(pool *pgxpool.Pool) Repository {
	return &PostgresRepository{pool: pool}
}

// ListByOwner retrieves the owner's teams ordered by points descending.
func (r *PostgresRepository) ListByOwner(ctx context.Context, ownerID string) ([]Team, error) {
	query := `
		SELECT id, owner_id, name, members, points, created_at, last_accessed
		FROM teams
		WHERE owner_id = $1
		ORDER BY points DESC, name ASC`

	rows, err := r.pool.Query(ctx, query, ownerID)
	if err != nil {
		return nil, fmt.Errorf("listing teams: %w", err)
	}
	defer rows.Close()

	var teams []Team
	for rows.Next() {
		var t Team
		err := rows.Scan(&t.ID, &t.OwnerID, &t.Name, &t.Members, &t.Points, &t.CreatedAt, &t.LastAccessed)
		if err != nil {
			return nil, fmt.Errorf("scanning team row: %w", err)
		}
		teams = append(teams, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating team rows: %w", err)
	}

	if teams == nil {
		teams = []Team{}
	}

	return teams, nil
}

// GetByID retrieves a single team by its UUID.
func (r *PostgresRepository) GetByID(ctx context.Context, id uuid.UUID) (*Team, error) {
	query := `
		SELECT id, owner_id, name, members, points, created_at, last_accessed
		FROM teams
		WHERE id = $1`

	var t Team
	err := r.pool.QueryRow(ctx, query, id).Scan(&t.ID, &t.OwnerID, &t.Name, &t.Members, &t.Points, &t.CreatedAt, &t.LastAccessed)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrTeamNotFound
		}
		return nil, fmt.Errorf("querying team: %w", err)
	}

	return &t, nil
}

// ReplaceGeneration deletes the owner's previous generation and inserts the
// new one in a single transaction. A failure anywhere rolls back the delete
// too, leaving the previous generation intact.
func (r *PostgresRepository) ReplaceGeneration(ctx context.Context, ownerID string, teams []Team) ([]Team, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("beginning transaction: %w", err)
	}
	defer rollback(ctx, tx)

	if _, err := tx.Exec(ctx, `DELETE FROM teams WHERE owner_id = $1`, ownerID); err != nil {
		return nil, fmt.Errorf("deleting previous generation: %w", err)
	}

	query := `
		INSERT INTO teams (owner_id, name, members, points)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at, last_accessed`

	inserted := make([]Team, 0, len(teams))
	for _, t := range teams {
		t.OwnerID = ownerID
		err := tx.QueryRow(ctx, query, ownerID, t.Name, t.Members, t.Points).
			Scan(&t.ID, &t.CreatedAt, &t.LastAccessed)
		if err != nil {
			var pgErr *pgconn.PgError
			if errors.As(err, &pgErr) && pgErr.Code == "23505" {
				return nil, ErrDuplicateTeamName
			}
			return nil, fmt.Errorf("inserting team %q: %w", t.Name, err)
		}
		inserted = append(inserted, t)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("committing generation: %w", err)
	}

	return inserted, nil
}

// AdjustPoints adds delta to the team's points. The row is locked for the
// duration of the transaction, so concurrent adjustments to the same team
// serialize and none is lost.
func (r *PostgresRepository) AdjustPoints(ctx context.Context, id uuid.UUID, actingUserID string, delta int) (*Team, error) {
	return r.updatePoints(ctx, id, actingUserID, func(points int) int {
		return points + delta
	})
}

// ResetPoints sets the team's points to zero based on the freshest read.
func (r *PostgresRepository) ResetPoints(ctx context.Context, id uuid.UUID, actingUserID string) (*Team, error) {
	return r.updatePoints(ctx, id, actingUserID, func(int) int {
		return 0
	})
}

func (r *PostgresRepository) updatePoints(ctx context.Context, id uuid.UUID, actingUserID string, next func(int) int) (*Team, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("beginning transaction: %w", err)
	}
	defer rollback(ctx, tx)

	var ownerID string
	var points int
	err = tx.QueryRow(ctx, `SELECT owner_id, points FROM teams WHERE id = $1 FOR UPDATE`, id).
		Scan(&ownerID, &points)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrTeamNotFound
		}
		return nil, fmt.Errorf("locking team row: %w", err)
	}

	if ownerID != actingUserID {
		return nil, ErrNotOwner
	}

	query := `
		UPDATE teams
		SET points = $2, last_accessed = NOW()
		WHERE id = $1
		RETURNING id, owner_id, name, members, points, created_at, last_accessed`

	var t Team
	err = tx.QueryRow(ctx, query, id, next(points)).
		Scan(&t.ID, &t.OwnerID, &t.Name, &t.Members, &t.Points, &t.CreatedAt, &t.LastAccessed)
	if err != nil {
		return nil, fmt.Errorf("updating points: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("committing points update: %w", err)
	}

	return &t, nil
}

// DeleteInactive removes the owner's teams not touched since the cutoff.
func (r *PostgresRepository) DeleteInactive(ctx context.Context, ownerID string, olderThan time.Duration) (int, error) {
	cutoff := time.Now().Add(-olderThan)

	result, err := r.pool.Exec(ctx, `DELETE FROM teams WHERE owner_id = $1 AND last_accessed < $2`, ownerID, cutoff)
	if err != nil {
		return 0, fmt.Errorf("deleting inactive teams: %w", err)
	}

	return int(result.RowsAffected()), nil
}

// DeleteInactiveAll removes inactive teams across all owners.
func (r *PostgresRepository) DeleteInactiveAll(ctx context.Context, olderThan time.Duration) (int, error) {
	cutoff := time.Now().Add(-olderThan)

	result, err := r.pool.Exec(ctx, `DELETE FROM teams WHERE last_accessed < $1`, cutoff)
	if err != nil {
		return 0, fmt.Errorf("deleting inactive teams: %w", err)
	}

	return int(result.RowsAffected()), nil
}

func rollback(ctx context.Context, tx pgx.Tx) {
	if err := tx.Rollback(ctx); err != nil && !errors.Is(err, pgx.ErrTxClosed) {
		slog.Warn("failed to rollback transaction", "error", err)
	}
}

package team

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
)

// ErrTeamNotFound is returned when a team record is not found.
var ErrTeamNotFound = errors.New("team not found")

// ErrNotOwner is returned when the acting user does not own the target team.
var ErrNotOwner = errors.New("team is owned by another user")

// ErrDuplicateTeamName is returned when a generation contains two teams with
// the same name for one owner.
var ErrDuplicateTeamName = errors.New("duplicate team name in generation")

// Repository provides operations on the teams table. All mutations are scoped
// to an owner; one owner's writes never affect another owner's rows.
type Repository interface {
	// ListByOwner returns the owner's current generation, highest points first.
	ListByOwner(ctx context.Context, ownerID string) ([]Team, error)
	GetByID(ctx context.Context, id uuid.UUID) (*Team, error)

	// ReplaceGeneration atomically deletes the owner's previous generation and
	// inserts the given teams. Partial application is never observable: if any
	// insert fails, the previous generation stays fully intact.
	ReplaceGeneration(ctx context.Context, ownerID string, teams []Team) ([]Team, error)

	// AdjustPoints adds delta to the team's points inside a transaction that
	// locks the row, verifies ownership and refreshes last_accessed. Concurrent
	// adjustments to the same team are serialized; no update is lost.
	AdjustPoints(ctx context.Context, id uuid.UUID, actingUserID string, delta int) (*Team, error)

	// ResetPoints sets the team's points to zero from the freshest read, with
	// the same locking and ownership rules as AdjustPoints.
	ResetPoints(ctx context.Context, id uuid.UUID, actingUserID string) (*Team, error)

	// DeleteInactive removes the owner's teams whose last_accessed is older
	// than the cutoff, atomically as a batch. Returns the number removed.
	DeleteInactive(ctx context.Context, ownerID string, olderThan time.Duration) (int, error)

	// DeleteInactiveAll is DeleteInactive across all owners.
	DeleteInactiveAll(ctx context.Context, olderThan time.Duration) (int, error)
}

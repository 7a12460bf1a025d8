package team

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
)

// MemoryRepository implements Repository with an in-process map. It backs
// unit tests and DB-less operation; the mutex gives it the same per-team
// update atomicity the Postgres repository gets from row locks.
type MemoryRepository struct {
	mu    sync.RWMutex
	teams map[uuid.UUID]*Team
}

// NewMemoryRepository creates an empty MemoryRepository.
func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{teams: make(map[uuid.UUID]*Team)}
}

func (r *MemoryRepository) ListByOwner(_ context.Context, ownerID string) ([]Team, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	teams := []Team{}
	for _, t := range r.teams {
		if t.OwnerID == ownerID {
			teams = append(teams, cloneTeam(t))
		}
	}

	sort.Slice(teams, func(i, j int) bool {
		if teams[i].Points != teams[j].Points {
			return teams[i].Points > teams[j].Points
		}
		return teams[i].Name < teams[j].Name
	})

	return teams, nil
}

func (r *MemoryRepository) GetByID(_ context.Context, id uuid.UUID) (*Team, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	t, ok := r.teams[id]
	if !ok {
		return nil, ErrTeamNotFound
	}
	copied := cloneTeam(t)
	return &copied, nil
}

// ReplaceGeneration stages the whole new generation before touching stored
// state, so a failed batch leaves the previous generation fully intact.
func (r *MemoryRepository) ReplaceGeneration(_ context.Context, ownerID string, teams []Team) ([]Team, error) {
	now := time.Now()

	staged := make([]*Team, 0, len(teams))
	names := make(map[string]bool, len(teams))
	for _, t := range teams {
		if names[t.Name] {
			return nil, ErrDuplicateTeamName
		}
		names[t.Name] = true

		t.ID = uuid.New()
		t.OwnerID = ownerID
		t.CreatedAt = now
		t.LastAccessed = now
		copied := cloneTeam(&t)
		staged = append(staged, &copied)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	for id, t := range r.teams {
		if t.OwnerID == ownerID {
			delete(r.teams, id)
		}
	}

	inserted := make([]Team, 0, len(staged))
	for _, t := range staged {
		r.teams[t.ID] = t
		inserted = append(inserted, cloneTeam(t))
	}

	return inserted, nil
}

func (r *MemoryRepository) AdjustPoints(_ context.Context, id uuid.UUID, actingUserID string, delta int) (*Team, error) {
	return r.updatePoints(id, actingUserID, func(points int) int {
		return points + delta
	})
}

func (r *MemoryRepository) ResetPoints(_ context.Context, id uuid.UUID, actingUserID string) (*Team, error) {
	return r.updatePoints(id, actingUserID, func(int) int {
		return 0
	})
}

func (r *MemoryRepository) updatePoints(id uuid.UUID, actingUserID string, next func(int) int) (*Team, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	t, ok := r.teams[id]
	if !ok {
		return nil, ErrTeamNotFound
	}
	if t.OwnerID != actingUserID {
		return nil, ErrNotOwner
	}

	t.Points = next(t.Points)
	t.LastAccessed = time.Now()

	copied := cloneTeam(t)
	return &copied, nil
}

func (r *MemoryRepository) DeleteInactive(_ context.Context, ownerID string, olderThan time.Duration) (int, error) {
	return r.deleteOlderThan(olderThan, func(t *Team) bool {
		return t.OwnerID == ownerID
	}), nil
}

func (r *MemoryRepository) DeleteInactiveAll(_ context.Context, olderThan time.Duration) (int, error) {
	return r.deleteOlderThan(olderThan, func(*Team) bool {
		return true
	}), nil
}

func (r *MemoryRepository) deleteOlderThan(olderThan time.Duration, match func(*Team) bool) int {
	cutoff := time.Now().Add(-olderThan)

	r.mu.Lock()
	defer r.mu.Unlock()

	removed := 0
	for id, t := range r.teams {
		if match(t) && t.LastAccessed.Before(cutoff) {
			delete(r.teams, id)
			removed++
		}
	}
	return removed
}

func cloneTeam(t *Team) Team {
	copied := *t
	copied.Members = append([]int(nil), t.Members...)
	return copied
}

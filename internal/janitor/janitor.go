package janitor

import (
	"context"
	"log/slog"
	"time"

	"github.com/voicescore/voicescore/internal/team"
)

// Janitor periodically removes teams that have not been touched within the
// configured age, across all owners.
type Janitor struct {
	repo     team.Repository
	interval time.Duration
	maxAge   time.Duration
}

// New creates a new Janitor.
func New(repo team.Repository, interval, maxAge time.Duration) *Janitor {
	return &Janitor{
		repo:     repo,
		interval: interval,
		maxAge:   maxAge,
	}
}

// Start begins the cleanup loop. It blocks until ctx is cancelled.
func (j *Janitor) Start(ctx context.Context) {
	slog.Info("janitor started", "interval", j.interval.String(), "maxAge", j.maxAge.String())
	ticker := time.NewTicker(j.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			slog.Info("janitor stopped")
			return
		case <-ticker.C:
			j.sweep(ctx)
		}
	}
}

func (j *Janitor) sweep(ctx context.Context) {
	removed, err := j.repo.DeleteInactiveAll(ctx, j.maxAge)
	if err != nil {
		slog.Error("janitor: failed to delete inactive teams", "error", err)
		return
	}

	if removed > 0 {
		slog.Info("janitor: removed inactive teams", "count", removed)
	}
}

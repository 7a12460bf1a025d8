package team

import (
	"context"
	"fmt"
	"time"

	"github.com/voicescore/voicescore/internal/partition"
)

// Service is the glue around the partitioner: it builds a fresh generation of
// teams for an owner and replaces the previous one atomically.
type Service struct {
	repo Repository
}

// NewService creates a new team Service.
func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// CreateTeams partitions participants 1..participantCount across teamCount
// teams and replaces the owner's current generation with the result. Returns
// partition.ErrInvalidCount for counts below 1. A failed replacement leaves
// the previous generation untouched.
func (s *Service) CreateTeams(ctx context.Context, ownerID string, teamCount, participantCount int) ([]Team, error) {
	groups, err := partition.Partition(participantCount, teamCount)
	if err != nil {
		return nil, err
	}

	teams := make([]Team, 0, len(groups))
	for i, members := range groups {
		teams = append(teams, Team{
			Name:    Name(i + 1),
			Members: members,
			Points:  0,
		})
	}

	inserted, err := s.repo.ReplaceGeneration(ctx, ownerID, teams)
	if err != nil {
		return nil, fmt.Errorf("replacing team generation: %w", err)
	}

	return inserted, nil
}

// CleanupInactive deletes the owner's teams idle for longer than maxAge and
// returns the number removed.
func (s *Service) CleanupInactive(ctx context.Context, ownerID string, maxAge time.Duration) (int, error) {
	removed, err := s.repo.DeleteInactive(ctx, ownerID, maxAge)
	if err != nil {
		return 0, fmt.Errorf("cleaning up inactive teams: %w", err)
	}
	return removed, nil
}

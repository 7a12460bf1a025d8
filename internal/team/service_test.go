package team_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/voicescore/voicescore/internal/partition"
	"github.com/voicescore/voicescore/internal/team"
)

func TestCreateTeams_BuildsBalancedGeneration(t *testing.T) {
	repo := team.NewMemoryRepository()
	svc := team.NewService(repo)
	ctx := context.Background()

	created, err := svc.CreateTeams(ctx, owner, 3, 10)
	require.NoError(t, err)
	require.Len(t, created, 3)

	seen := make(map[int]bool)
	for i, tm := range created {
		assert.Equal(t, team.Name(i+1), tm.Name)
		assert.Equal(t, owner, tm.OwnerID)
		assert.Zero(t, tm.Points)
		assert.True(t, len(tm.Members) == 3 || len(tm.Members) == 4)
		for _, m := range tm.Members {
			assert.False(t, seen[m], "participant %d assigned twice", m)
			seen[m] = true
		}
	}
	assert.Len(t, seen, 10)
}

func TestCreateTeams_ReplacesPreviousGeneration(t *testing.T) {
	repo := team.NewMemoryRepository()
	svc := team.NewService(repo)
	ctx := context.Background()

	first, err := svc.CreateTeams(ctx, owner, 2, 4)
	require.NoError(t, err)

	_, err = repo.AdjustPoints(ctx, first[0].ID, owner, 9)
	require.NoError(t, err)

	second, err := svc.CreateTeams(ctx, owner, 2, 4)
	require.NoError(t, err)

	// Scores do not survive re-creation: the new generation starts at zero.
	for _, tm := range second {
		assert.Zero(t, tm.Points)
	}
	_, err = repo.GetByID(ctx, first[0].ID)
	assert.ErrorIs(t, err, team.ErrTeamNotFound)
}

func TestCreateTeams_EmptyTeamsWhenMoreTeamsThanParticipants(t *testing.T) {
	repo := team.NewMemoryRepository()
	svc := team.NewService(repo)

	created, err := svc.CreateTeams(context.Background(), owner, 5, 3)
	require.NoError(t, err)
	require.Len(t, created, 5)

	empty := 0
	for _, tm := range created {
		if len(tm.Members) == 0 {
			empty++
		}
	}
	assert.GreaterOrEqual(t, empty, 2)
}

func TestCreateTeams_InvalidCounts(t *testing.T) {
	svc := team.NewService(team.NewMemoryRepository())

	_, err := svc.CreateTeams(context.Background(), owner, 0, 4)
	assert.ErrorIs(t, err, partition.ErrInvalidCount)

	_, err = svc.CreateTeams(context.Background(), owner, 2, 0)
	assert.ErrorIs(t, err, partition.ErrInvalidCount)
}

func TestCleanupInactive_ReturnsRemovedCount(t *testing.T) {
	repo := team.NewMemoryRepository()
	svc := team.NewService(repo)
	ctx := context.Background()

	_, err := svc.CreateTeams(ctx, owner, 2, 4)
	require.NoError(t, err)

	time.Sleep(10 * time.Millisecond)
	removed, err := svc.CleanupInactive(ctx, owner, 5*time.Millisecond)
	require.NoError(t, err)
	assert.Equal(t, 2, removed)
}

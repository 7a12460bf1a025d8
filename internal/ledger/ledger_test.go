package ledger_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/voicescore/voicescore/internal/command"
	"github.com/voicescore/voicescore/internal/ledger"
	"github.com/voicescore/voicescore/internal/team"
)

const owner = "user-1"

// --- Mock repository (overrides on top of real behavior are not needed;
// each fn defaults to an error so tests state exactly what they use) ---

type mockRepo struct {
	listByOwnerFn  func(ctx context.Context, ownerID string) ([]team.Team, error)
	adjustPointsFn func(ctx context.Context, id uuid.UUID, acting string, delta int) (*team.Team, error)
	resetPointsFn  func(ctx context.Context, id uuid.UUID, acting string) (*team.Team, error)
}

func (m *mockRepo) ListByOwner(ctx context.Context, ownerID string) ([]team.Team, error) {
	if m.listByOwnerFn != nil {
		return m.listByOwnerFn(ctx, ownerID)
	}
	return []team.Team{}, nil
}

func (m *mockRepo) GetByID(context.Context, uuid.UUID) (*team.Team, error) {
	return nil, team.ErrTeamNotFound
}

func (m *mockRepo) ReplaceGeneration(context.Context, string, []team.Team) ([]team.Team, error) {
	return nil, errors.New("not implemented")
}

func (m *mockRepo) AdjustPoints(ctx context.Context, id uuid.UUID, acting string, delta int) (*team.Team, error) {
	if m.adjustPointsFn != nil {
		return m.adjustPointsFn(ctx, id, acting, delta)
	}
	return nil, errors.New("not implemented")
}

func (m *mockRepo) ResetPoints(ctx context.Context, id uuid.UUID, acting string) (*team.Team, error) {
	if m.resetPointsFn != nil {
		return m.resetPointsFn(ctx, id, acting)
	}
	return nil, errors.New("not implemented")
}

func (m *mockRepo) DeleteInactive(context.Context, string, time.Duration) (int, error) {
	return 0, nil
}

func (m *mockRepo) DeleteInactiveAll(context.Context, time.Duration) (int, error) {
	return 0, nil
}

// --- Helpers ---

func seededLedger(t *testing.T, teamCount int) (*ledger.Ledger, *team.MemoryRepository, []team.Team) {
	t.Helper()

	repo := team.NewMemoryRepository()
	teams := make([]team.Team, 0, teamCount)
	for i := 1; i <= teamCount; i++ {
		teams = append(teams, team.Team{Name: team.Name(i), Members: []int{i}})
	}
	created, err := repo.ReplaceGeneration(context.Background(), owner, teams)
	require.NoError(t, err)

	return ledger.New(repo), repo, created
}

func TestApply_AdjustScore(t *testing.T) {
	l, repo, created := seededLedger(t, 2)
	ctx := context.Background()

	outcome, err := l.Apply(ctx, command.Intent{
		Kind: command.KindAdjustScore, Team: 1, Delta: 5, Raw: "команда 1 плюс 5",
	}, owner)
	require.NoError(t, err)

	assert.Equal(t, ledger.OutcomeApplied, outcome.Kind)
	assert.Equal(t, "Выполнено: команда 1 плюс 5", outcome.Message)
	require.NotNil(t, outcome.Team)
	assert.Equal(t, 5, outcome.Team.Points)

	stored, err := repo.GetByID(ctx, created[0].ID)
	require.NoError(t, err)
	assert.Equal(t, 5, stored.Points)
}

func TestApply_NegativeDelta(t *testing.T) {
	l, _, _ := seededLedger(t, 1)
	ctx := context.Background()

	_, err := l.Apply(ctx, command.Intent{Kind: command.KindAdjustScore, Team: 1, Delta: 4}, owner)
	require.NoError(t, err)

	outcome, err := l.Apply(ctx, command.Intent{Kind: command.KindAdjustScore, Team: 1, Delta: -3}, owner)
	require.NoError(t, err)
	assert.Equal(t, 1, outcome.Team.Points)
}

func TestApply_UnknownTeamNumberIsNotFoundOutcome(t *testing.T) {
	l, _, _ := seededLedger(t, 2)

	outcome, err := l.Apply(context.Background(), command.Intent{
		Kind: command.KindAdjustScore, Team: 7, Delta: 1,
	}, owner)
	require.NoError(t, err, "NotFound is an outcome, not an error")
	assert.Equal(t, ledger.OutcomeNotFound, outcome.Kind)
	assert.Equal(t, "Ошибка: команды 7 не существует", outcome.Message)
}

func TestApply_ResetScoreIsIdempotent(t *testing.T) {
	l, _, _ := seededLedger(t, 1)
	ctx := context.Background()

	_, err := l.Apply(ctx, command.Intent{Kind: command.KindAdjustScore, Team: 1, Delta: 9}, owner)
	require.NoError(t, err)

	for i := 0; i < 2; i++ {
		outcome, err := l.Apply(ctx, command.Intent{Kind: command.KindResetScore, Team: 1}, owner)
		require.NoError(t, err)
		assert.Equal(t, ledger.OutcomeReset, outcome.Kind)
		assert.Zero(t, outcome.Team.Points)
	}
}

func TestApply_SetListeningPassesThrough(t *testing.T) {
	l := ledger.New(team.NewMemoryRepository())

	outcome, err := l.Apply(context.Background(), command.Intent{
		Kind: command.KindSetListening, Listen: true,
	}, owner)
	require.NoError(t, err)
	assert.Equal(t, ledger.OutcomeListening, outcome.Kind)
	assert.True(t, outcome.Listen)
}

func TestApply_UnrecognizedPassesThrough(t *testing.T) {
	l := ledger.New(team.NewMemoryRepository())

	outcome, err := l.Apply(context.Background(), command.Intent{
		Kind: command.KindUnrecognized, Raw: "бла бла бла",
	}, owner)
	require.NoError(t, err)
	assert.Equal(t, ledger.OutcomeUnrecognized, outcome.Kind)
	assert.Equal(t, "Не распознано: бла бла бла", outcome.Message)
}

func TestApply_PermissionDeniedLeavesPointsUnchanged(t *testing.T) {
	foreign := team.Team{ID: uuid.New(), OwnerID: "someone-else", Name: team.Name(1)}

	repo := &mockRepo{
		listByOwnerFn: func(context.Context, string) ([]team.Team, error) {
			return []team.Team{foreign}, nil
		},
		adjustPointsFn: func(context.Context, uuid.UUID, string, int) (*team.Team, error) {
			return nil, team.ErrNotOwner
		},
	}
	l := ledger.New(repo)

	outcome, err := l.Apply(context.Background(), command.Intent{
		Kind: command.KindAdjustScore, Team: 1, Delta: 1,
	}, owner)
	require.NoError(t, err)
	assert.Equal(t, ledger.OutcomePermissionDenied, outcome.Kind)
	assert.Nil(t, outcome.Team)
}

func TestApply_TeamDeletedBetweenResolveAndUpdate(t *testing.T) {
	// A re-create racing the update removes the resolved team; the ledger
	// reports NotFound instead of failing.
	ghost := team.Team{ID: uuid.New(), OwnerID: owner, Name: team.Name(1)}

	repo := &mockRepo{
		listByOwnerFn: func(context.Context, string) ([]team.Team, error) {
			return []team.Team{ghost}, nil
		},
		adjustPointsFn: func(context.Context, uuid.UUID, string, int) (*team.Team, error) {
			return nil, team.ErrTeamNotFound
		},
	}
	l := ledger.New(repo)

	outcome, err := l.Apply(context.Background(), command.Intent{
		Kind: command.KindAdjustScore, Team: 1, Delta: 1,
	}, owner)
	require.NoError(t, err)
	assert.Equal(t, ledger.OutcomeNotFound, outcome.Kind)
}

func TestApply_TransientFailurePropagatesAsError(t *testing.T) {
	boom := errors.New("connection reset")
	repo := &mockRepo{
		listByOwnerFn: func(context.Context, string) ([]team.Team, error) {
			return nil, boom
		},
	}
	l := ledger.New(repo)

	_, err := l.Apply(context.Background(), command.Intent{
		Kind: command.KindAdjustScore, Team: 1, Delta: 1,
	}, owner)
	assert.ErrorIs(t, err, boom)
}

func TestApply_ConcurrentIncrementsBothObserved(t *testing.T) {
	l, repo, created := seededLedger(t, 1)
	ctx := context.Background()

	var wg sync.WaitGroup
	wg.Add(2)
	for i := 0; i < 2; i++ {
		go func() {
			defer wg.Done()
			_, err := l.Apply(ctx, command.Intent{
				Kind: command.KindAdjustScore, Team: 1, Delta: 1,
			}, owner)
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	stored, err := repo.GetByID(ctx, created[0].ID)
	require.NoError(t, err)
	assert.Equal(t, 2, stored.Points, "no lost update")
}

package ledger

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/voicescore/voicescore/internal/command"
	"github.com/voicescore/voicescore/internal/team"
)

// OutcomeKind classifies the result of applying an intent.
type OutcomeKind int

const (
	// OutcomeApplied means a score adjustment was committed.
	OutcomeApplied OutcomeKind = iota
	// OutcomeReset means a team's points were set back to zero.
	OutcomeReset
	// OutcomeListening is a pass-through directive to start or stop listening.
	OutcomeListening
	// OutcomeUnrecognized means the utterance matched no grammar rule.
	OutcomeUnrecognized
	// OutcomeNotFound means the referenced team number does not exist.
	OutcomeNotFound
	// OutcomePermissionDenied means the acting user does not own the team.
	OutcomePermissionDenied
)

func (k OutcomeKind) String() string {
	switch k {
	case OutcomeApplied:
		return "applied"
	case OutcomeReset:
		return "reset"
	case OutcomeListening:
		return "listening"
	case OutcomeUnrecognized:
		return "unrecognized"
	case OutcomeNotFound:
		return "not_found"
	case OutcomePermissionDenied:
		return "permission_denied"
	default:
		return "unknown"
	}
}

// Outcome is the structured result of applying one intent. NotFound and
// PermissionDenied are outcomes, not errors: the caller decides presentation.
type Outcome struct {
	Kind    OutcomeKind
	Team    *team.Team
	Listen  bool
	Message string
}

// Ledger applies parsed intents against the team repository. Each score
// mutation is a single transactional attempt; retries are the caller's call.
type Ledger struct {
	repo team.Repository
}

// New creates a Ledger over the given repository.
func New(repo team.Repository) *Ledger {
	return &Ledger{repo: repo}
}

// Apply resolves the intent's team number against the acting user's current
// generation and performs the corresponding mutation. The returned error is
// reserved for transient persistence failures; domain conditions come back as
// structured outcomes.
func (l *Ledger) Apply(ctx context.Context, intent command.Intent, actingUserID string) (Outcome, error) {
	switch intent.Kind {
	case command.KindSetListening:
		return Outcome{Kind: OutcomeListening, Listen: intent.Listen}, nil

	case command.KindUnrecognized:
		return Outcome{
			Kind:    OutcomeUnrecognized,
			Message: fmt.Sprintf("Не распознано: %s", intent.Raw),
		}, nil

	case command.KindAdjustScore:
		return l.mutate(ctx, intent, actingUserID, func(id uuid.UUID) (*team.Team, error) {
			return l.repo.AdjustPoints(ctx, id, actingUserID, intent.Delta)
		})

	case command.KindResetScore:
		return l.mutate(ctx, intent, actingUserID, func(id uuid.UUID) (*team.Team, error) {
			return l.repo.ResetPoints(ctx, id, actingUserID)
		})

	default:
		return Outcome{
			Kind:    OutcomeUnrecognized,
			Message: fmt.Sprintf("Не распознано: %s", intent.Raw),
		}, nil
	}
}

func (l *Ledger) mutate(ctx context.Context, intent command.Intent, actingUserID string, op func(uuid.UUID) (*team.Team, error)) (Outcome, error) {
	target, outcome, err := l.resolve(ctx, intent, actingUserID)
	if err != nil || target == nil {
		return outcome, err
	}

	updated, err := op(target.ID)
	if err != nil {
		// The team may vanish between resolution and the transaction when a
		// re-create races the update; that is a handled outcome.
		if errors.Is(err, team.ErrTeamNotFound) {
			return notFoundOutcome(intent.Team), nil
		}
		if errors.Is(err, team.ErrNotOwner) {
			return Outcome{
				Kind:    OutcomePermissionDenied,
				Message: "Нет прав на изменение этой команды",
			}, nil
		}
		return Outcome{}, fmt.Errorf("applying %s: %w", intent.Kind, err)
	}

	kind := OutcomeApplied
	message := fmt.Sprintf("Выполнено: %s", intent.Raw)
	if intent.Kind == command.KindResetScore {
		kind = OutcomeReset
		message = fmt.Sprintf("Очки команды %d сброшены", intent.Team)
	}

	return Outcome{Kind: kind, Team: updated, Message: message}, nil
}

// resolve maps the 1-based team number to a record from a fresh read of the
// user's generation.
func (l *Ledger) resolve(ctx context.Context, intent command.Intent, actingUserID string) (*team.Team, Outcome, error) {
	teams, err := l.repo.ListByOwner(ctx, actingUserID)
	if err != nil {
		return nil, Outcome{}, fmt.Errorf("listing teams: %w", err)
	}

	wanted := team.Name(intent.Team)
	for i := range teams {
		if teams[i].Name == wanted {
			return &teams[i], Outcome{}, nil
		}
	}

	return nil, notFoundOutcome(intent.Team), nil
}

func notFoundOutcome(n int) Outcome {
	return Outcome{
		Kind:    OutcomeNotFound,
		Message: fmt.Sprintf("Ошибка: команды %d не существует", n),
	}
}

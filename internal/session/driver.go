package session

import (
	"context"
	"log/slog"
	"sync"

	"github.com/voicescore/voicescore/internal/command"
	"github.com/voicescore/voicescore/internal/ledger"
	"github.com/voicescore/voicescore/internal/stream"
)

// State is the listening-session state.
type State int

const (
	// StateIdle means no recognition session is active.
	StateIdle State = iota
	// StateListening means the device is capturing and delivering results.
	StateListening
	// StateRestarting means a segment ended and the device is being restarted.
	StateRestarting
	// StateDenied means microphone permission was refused; a new
	// StartListening is required after the user grants access.
	StateDenied
)

// String returns a short name for the state, used in logs.
func (s State) String() string {
	switch s {
	case StateListening:
		return "listening"
	case StateRestarting:
		return "restarting"
	case StateDenied:
		return "denied"
	default:
		return "idle"
	}
}

// Driver owns the voice session for one signed-in user: a single goroutine
// consumes device events and start/stop requests, interprets transcripts and
// applies them through the ledger. All session state lives here, not in
// ambient globals; handlers reach it through Start/StopListening and State.
type Driver struct {
	device      Device
	interpreter *command.Interpreter
	ledger      *ledger.Ledger
	broadcaster *stream.Broadcaster
	ownerID     string

	requests chan bool
	outcomes chan ledger.Outcome

	mu    sync.Mutex
	state State
}

// NewDriver creates a Driver for the given owner. broadcaster may be nil when
// no change stream is attached.
func NewDriver(device Device, interpreter *command.Interpreter, l *ledger.Ledger, broadcaster *stream.Broadcaster, ownerID string) *Driver {
	return &Driver{
		device:      device,
		interpreter: interpreter,
		ledger:      l,
		broadcaster: broadcaster,
		ownerID:     ownerID,
		requests:    make(chan bool, 4),
		outcomes:    make(chan ledger.Outcome, 16),
	}
}

// State returns the current session state.
func (d *Driver) State() State {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.state
}

// Outcomes delivers the result of every processed transcript.
func (d *Driver) Outcomes() <-chan ledger.Outcome {
	return d.outcomes
}

// StartListening asks the run loop to begin a fresh listening session.
func (d *Driver) StartListening() {
	d.requests <- true
}

// StopListening asks the run loop to halt the device. Events already in
// flight when the stop lands are discarded; a later session starts clean.
func (d *Driver) StopListening() {
	d.requests <- false
}

// Run processes requests and device events until ctx is cancelled.
func (d *Driver) Run(ctx context.Context) {
	slog.Info("voice session started", "owner", d.ownerID)
	defer slog.Info("voice session stopped", "owner", d.ownerID)

	for {
		select {
		case <-ctx.Done():
			if d.State() != StateIdle {
				d.stopDevice()
			}
			return
		case start := <-d.requests:
			d.handleRequest(ctx, start)
		case ev := <-d.device.Events():
			d.handleEvent(ctx, ev)
		}
	}
}

func (d *Driver) setState(s State) {
	d.mu.Lock()
	d.state = s
	d.mu.Unlock()
}

func (d *Driver) handleRequest(ctx context.Context, start bool) {
	if !start {
		if d.State() != StateIdle {
			d.stopDevice()
			d.setState(StateIdle)
		}
		return
	}

	switch d.State() {
	case StateListening, StateRestarting:
		return
	default:
		if err := d.device.Start(ctx); err != nil {
			slog.Warn("failed to start speech device", "owner", d.ownerID, "error", err)
			d.setState(StateDenied)
			return
		}
		d.setState(StateListening)
	}
}

func (d *Driver) handleEvent(ctx context.Context, ev Event) {
	state := d.State()

	// A stopped or denied session ignores whatever the device still emits,
	// so no result fires after cancellation.
	if state == StateIdle || state == StateDenied {
		return
	}

	switch ev.Kind {
	case EventResult:
		d.handleTranscript(ctx, ev.Transcript)

	case EventNoSpeech, EventSegmentEnd:
		// Continuous listening: restart the device for the next segment.
		d.setState(StateRestarting)
		d.stopDevice()
		if err := d.device.Start(ctx); err != nil {
			slog.Warn("failed to restart speech device", "owner", d.ownerID, "error", err)
			d.setState(StateIdle)
			return
		}
		d.setState(StateListening)

	case EventPermissionDenied:
		d.stopDevice()
		d.setState(StateDenied)

	case EventFailure:
		slog.Error("speech device failure", "owner", d.ownerID, "error", ev.Err)
		d.stopDevice()
		d.setState(StateIdle)
	}
}

func (d *Driver) handleTranscript(ctx context.Context, transcript string) {
	intent := d.interpreter.Interpret(transcript)

	outcome, err := d.ledger.Apply(ctx, intent, d.ownerID)
	if err != nil {
		slog.Error("failed to apply voice command", "owner", d.ownerID, "error", err)
		return
	}

	if outcome.Kind == ledger.OutcomeListening {
		if outcome.Listen {
			d.handleRequest(ctx, true)
		} else {
			d.stopDevice()
			d.setState(StateIdle)
		}
	}

	if d.broadcaster != nil && (outcome.Kind == ledger.OutcomeApplied || outcome.Kind == ledger.OutcomeReset) {
		d.broadcaster.Publish(d.ownerID, stream.Notice{Event: "teams", Data: outcome.Team})
	}

	select {
	case d.outcomes <- outcome:
	default:
		slog.Debug("dropping outcome for slow consumer", "owner", d.ownerID)
	}
}

func (d *Driver) stopDevice() {
	if err := d.device.Stop(); err != nil {
		slog.Warn("failed to stop speech device", "owner", d.ownerID, "error", err)
	}
}

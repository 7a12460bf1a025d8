package session

import "context"

// EventKind classifies what the speech device reported.
type EventKind int

const (
	// EventResult carries one recognized transcript.
	EventResult EventKind = iota
	// EventSegmentEnd means the device finished a continuous-listening segment.
	EventSegmentEnd
	// EventNoSpeech means a segment ended without detecting speech.
	EventNoSpeech
	// EventPermissionDenied means microphone access was refused.
	EventPermissionDenied
	// EventFailure is any other device or capture error.
	EventFailure
)

// Event is one notification from the speech device.
type Event struct {
	Kind       EventKind
	Transcript string
	Err        error
}

// Device abstracts the speech-recognition collaborator: a restartable source
// of recognized utterances for a fixed locale. Start and Stop are asynchronous
// with respect to event delivery; the driver decides which events still matter.
type Device interface {
	Start(ctx context.Context) error
	Stop() error
	Events() <-chan Event
}

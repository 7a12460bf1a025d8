package command

// Kind identifies what a recognized utterance asks for.
type Kind int

const (
	// KindUnrecognized means the utterance matched no grammar rule.
	KindUnrecognized Kind = iota
	// KindAdjustScore adds a signed amount to a team's points.
	KindAdjustScore
	// KindResetScore sets a team's points back to zero.
	KindResetScore
	// KindSetListening starts or stops the voice session.
	KindSetListening
)

// String returns a short name for the kind, used in logs and outcomes.
func (k Kind) String() string {
	switch k {
	case KindAdjustScore:
		return "adjust_score"
	case KindResetScore:
		return "reset_score"
	case KindSetListening:
		return "set_listening"
	default:
		return "unrecognized"
	}
}

// Intent is the structured form of a recognized voice command, decoupled
// from the raw transcript. Team numbers are 1-based; resolving a number to
// an actual team record is the ledger's job, not the interpreter's.
type Intent struct {
	Kind   Kind
	Team   int  // team number for AdjustScore / ResetScore
	Delta  int  // signed amount for AdjustScore
	Listen bool // desired state for SetListening
	Raw    string
}

package uploader

// State is a phase of the three-step upload workflow.
type State int

const (
	StateIdle State = iota
	StateRequestingCredential
	StateTransferringBytes
	StateRegisteringMetadata
	StateSucceeded
	StateFailed
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateRequestingCredential:
		return "requesting-credential"
	case StateTransferringBytes:
		return "transferring-bytes"
	case StateRegisteringMetadata:
		return "registering-metadata"
	case StateSucceeded:
		return "succeeded"
	case StateFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// Terminal reports whether no further transition leaves s within a run.
func (s State) Terminal() bool {
	return s == StateSucceeded || s == StateFailed
}

// next is the transition function: ok is the outcome of the work done in
// from. A failed guard keeps the workflow idle; any failed phase ends the run.
// There is no edge back into an earlier phase, so nothing is retried.
func next(from State, ok bool) State {
	switch from {
	case StateIdle:
		if ok {
			return StateRequestingCredential
		}
		return StateIdle
	case StateRequestingCredential:
		if ok {
			return StateTransferringBytes
		}
		return StateFailed
	case StateTransferringBytes:
		if ok {
			return StateRegisteringMetadata
		}
		return StateFailed
	case StateRegisteringMetadata:
		if ok {
			return StateSucceeded
		}
		return StateFailed
	default:
		return from
	}
}

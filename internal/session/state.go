package session

// State is a position in the review state machine.
type State int

// Controller states. StateAdvancing is transient: it is only observable while
// the Persister is saving the schedule that was just computed.
const (
	StateShowingFront State = iota
	StateShowingBack
	StateAdvancing
	StateComplete
)

// String returns the state name used in logs and errors.
func (s State) String() string {
	switch s {
	case StateShowingFront:
		return "showing_front"
	case StateShowingBack:
		return "showing_back"
	case StateAdvancing:
		return "advancing"
	case StateComplete:
		return "complete"
	default:
		return "unknown"
	}
}

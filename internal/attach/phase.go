package attach

// Phase is the owner-wide bootstrap phase shared by all its records.
type Phase int

const (
	PhaseInit Phase = iota
	PhaseStarting
	PhaseStarted
)

func (p Phase) String() string {
	switch p {
	case PhaseInit:
		return "INIT"
	case PhaseStarting:
		return "STARTING"
	case PhaseStarted:
		return "STARTED"
	default:
		return "UNKNOWN"
	}
}

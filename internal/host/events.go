package host

type EventKind int

const (
	EventAttached EventKind = iota
	EventDetached
)

func (k EventKind) String() string {
	if k == EventAttached {
		return "attached"
	}
	return "detached"
}

// Event is one entry of the editor attach/detach stream.
type Event struct {
	Kind       EventKind
	Attachment Attachment
}

// StartSignal marks a host lifecycle transition.
type StartSignal int

const (
	SignalActivate StartSignal = iota
	SignalBootstrapFinished
)

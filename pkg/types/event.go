package types

// EventKind classifies a filesystem change relevant to reconciliation.
type EventKind int

const (
	// EventCreate indicates a file appeared under a watched directory.
	EventCreate EventKind = iota
	// EventRemove indicates a file disappeared under a watched directory.
	EventRemove
)

func (k EventKind) String() string {
	switch k {
	case EventCreate:
		return "create"
	case EventRemove:
		return "remove"
	default:
		return "unknown"
	}
}

// Event is a change notification from a watched source directory.
// The watch coordinator queues these for the single reconciliation worker;
// reconciliation is a full rescan, so Path is informational only.
type Event struct {
	Kind EventKind
	Path string
}

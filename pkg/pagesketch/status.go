package pagesketch

import "time"

// Status represents the current state of a Sketch.
type Status struct {
	// Running indicates if Run is active.
	Running bool
	// StartTime is when Run was last called (zero if never started).
	StartTime time.Time
	// Runs is the number of completed script runs.
	Runs uint64
	// Frames is the number of draw() calls in the current run.
	Frames uint64
	// Items is the number of page items in the last finished document.
	Items int
	// LastRunDuration is how long the last run took, exports included.
	LastRunDuration time.Duration
	// LastError is the most recent error encountered (nil if none).
	LastError error
	// ScriptSource describes where the script comes from.
	ScriptSource string
	// ConfigSource describes the configuration source, empty for defaults.
	ConfigSource string
}

// ErrorHandler is a callback for runtime errors.
// It is called asynchronously; do not block in the handler.
type ErrorHandler func(err error)

// EventHandler is a callback for lifecycle events.
// It is called asynchronously; do not block in the handler.
type EventHandler func(event Event)

// Event represents a lifecycle event.
type Event struct {
	Type      EventType
	Timestamp time.Time
	Message   string
	// Run is the ID of the run the event belongs to, empty outside runs.
	Run RunID
}

// EventType enumerates lifecycle event types.
type EventType int

const (
	// EventStarted is emitted when Run begins.
	EventStarted EventType = iota
	// EventFrame is emitted after every setup() or draw() call.
	EventFrame
	// EventStopped is emitted when Run returns.
	EventStopped
	// EventReloaded is emitted when a new run replaces the previous one.
	EventReloaded
	// EventExported is emitted after the document has been written.
	EventExported
	// EventError is emitted when an error occurs.
	EventError
)

// String returns a human-readable representation of the event type.
func (e EventType) String() string {
	switch e {
	case EventStarted:
		return "started"
	case EventFrame:
		return "frame"
	case EventStopped:
		return "stopped"
	case EventReloaded:
		return "reloaded"
	case EventExported:
		return "exported"
	case EventError:
		return "error"
	default:
		return "unknown"
	}
}

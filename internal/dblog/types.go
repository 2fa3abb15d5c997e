package dblog

import "context"

// Command is one opaque write, typically a single SQL statement.
type Command = string

// Batch is an ordered group of commands delivered by one notification.
type Batch []Command

// Conn executes commands against an open store.
type Conn interface {
	Exec(ctx context.Context, command string) error
	Close() error
}

// Connector opens a store connection for a locator (a file path).
type Connector interface {
	Open(ctx context.Context, locator string) (Conn, error)
}

// ConnectorFunc adapts a function to the Connector interface.
type ConnectorFunc func(ctx context.Context, locator string) (Conn, error)

// Open calls f(ctx, locator).
func (f ConnectorFunc) Open(ctx context.Context, locator string) (Conn, error) {
	return f(ctx, locator)
}

// State is the lifecycle state of a Plugin.
type State int

const (
	// StateNotReady buffers writes; the store is not open yet.
	StateNotReady State = iota
	// StateReady executes writes directly. Terminal.
	StateReady
)

func (s State) String() string {
	switch s {
	case StateNotReady:
		return "not_ready"
	case StateReady:
		return "ready"
	default:
		return "unknown"
	}
}

// Phase names where a command was executed.
type Phase string

const (
	// PhaseReplay is execution of buffered commands during initialization.
	PhaseReplay Phase = "replay"
	// PhaseDirect is pass-through execution after initialization.
	PhaseDirect Phase = "direct"
)

// Stats counts what a Plugin has done with the commands it received.
type Stats struct {
	Batches  int `json:"batches"`
	Deferred int `json:"deferred"`
	Replayed int `json:"replayed"`
	Executed int `json:"executed"`
}

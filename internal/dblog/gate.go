package dblog

import "sync/atomic"

// InitGate is a one-way latch recording whether the store is ready.
// The zero value is not ready.
type InitGate struct {
	ready atomic.Bool
}

// MarkReady latches the gate. It reports whether this call flipped it;
// every call after the first is a no-op returning false.
func (g *InitGate) MarkReady() bool {
	return g.ready.CompareAndSwap(false, true)
}

// IsReady reports whether MarkReady has been called. Never blocks.
func (g *InitGate) IsReady() bool {
	return g.ready.Load()
}

// State returns the gate as a lifecycle state.
func (g *InitGate) State() State {
	if g.IsReady() {
		return StateReady
	}
	return StateNotReady
}

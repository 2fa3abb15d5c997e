package dblog

import (
	"sync"

	"github.com/roach88/dblog/internal/logging"
)

// Plugin owns the buffering and replay state for one store.
//
// All handlers take the same mutex, so a batch is either fully buffered or
// fully executed before the next event is looked at, and the replay runs to
// completion before the first pass-through write.
type Plugin struct {
	mu        sync.Mutex
	gate      InitGate
	buffer    *WriteBuffer
	connector Connector
	conn      Conn
	locator   string

	// failed is set when the replay failed after the gate latched.
	// The plugin refuses further writes from then on.
	failed error

	log   logging.Logger
	ids   IDGenerator
	stats Stats
}

// Option configures a Plugin.
type Option func(*Plugin)

// WithLogger sets the logger. Default: no-op.
func WithLogger(l logging.Logger) Option {
	return func(p *Plugin) {
		p.log = l
	}
}

// WithIDGenerator sets the batch ID generator. Default: UUIDv7.
func WithIDGenerator(g IDGenerator) Option {
	return func(p *Plugin) {
		p.ids = g
	}
}

// New creates a Plugin in the NotReady state.
func New(connector Connector, opts ...Option) *Plugin {
	p := &Plugin{
		buffer:    NewWriteBuffer(),
		connector: connector,
		log:       logging.NewNoopLogger(),
		ids:       UUIDv7Generator{},
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// State returns the current lifecycle state.
func (p *Plugin) State() State {
	return p.gate.State()
}

// Ready reports whether the store is open and the backlog was applied.
func (p *Plugin) Ready() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.gate.IsReady() && p.failed == nil
}

// Err returns the replay failure, if initialization failed after the store
// was opened.
func (p *Plugin) Err() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.failed
}

// Pending returns the number of buffered commands.
func (p *Plugin) Pending() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.buffer.Len()
}

// Locator returns the locator the store was opened with, or "".
func (p *Plugin) Locator() string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.locator
}

// Stats returns a snapshot of the counters.
func (p *Plugin) Stats() Stats {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.stats
}

// Close releases the store connection. Buffered commands that were never
// replayed are reported and dropped.
func (p *Plugin) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if n := p.buffer.Len(); n > 0 {
		p.log.Warn("closing with unreplayed commands", logging.Int("count", n))
	}
	p.log.Info("stats",
		logging.Int("batches", p.stats.Batches),
		logging.Int("deferred", p.stats.Deferred),
		logging.Int("replayed", p.stats.Replayed),
		logging.Int("executed", p.stats.Executed),
	)

	if p.conn == nil {
		return nil
	}
	err := p.conn.Close()
	p.conn = nil
	return err
}

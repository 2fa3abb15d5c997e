package dblog

import (
	"context"
	"fmt"
	"strings"

	"github.com/roach88/dblog/internal/logging"
)

// OnStoreReady opens the store at locator and replays the backlog.
//
// The gate latches before the backlog is drained, but because the Plugin
// mutex is held throughout no write can pass through until the replay has
// finished. Failing to open leaves the Plugin NotReady and still buffering,
// so the call may be repeated. Failing during replay is fatal: the remaining
// backlog is abandoned and later writes are refused.
//
// Once the gate has latched, further calls do nothing and return the result
// of the first replay.
func (p *Plugin) OnStoreReady(ctx context.Context, locator string) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.gate.IsReady() {
		p.log.Warn("store already initialized, ignoring",
			logging.String("locator", locator),
			logging.String("current", p.locator),
		)
		return p.failed
	}

	locator = strings.TrimSpace(locator)
	if locator == "" {
		err := NewConfigurationError("no dblog-file specified", nil)
		p.log.Error("initialization failed", logging.Err(err))
		return err
	}

	conn, err := p.connector.Open(ctx, locator)
	if err != nil {
		cfgErr := NewConfigurationError(fmt.Sprintf("cannot open %q", locator), err)
		p.log.Error("initialization failed", logging.String("locator", locator), logging.Err(err))
		return cfgErr
	}
	p.conn = conn
	p.locator = locator

	p.gate.MarkReady()
	backlog := p.buffer.DrainAll()

	p.log.Info("replaying pre-init data", logging.Int("count", len(backlog)))
	for i, cmd := range backlog {
		if err := conn.Exec(ctx, cmd); err != nil {
			p.failed = newExecutionError(PhaseReplay, i, cmd, err)
			p.log.Error("replay failed",
				logging.Int("index", i),
				logging.String("command", cmd),
				logging.Int("abandoned", len(backlog)-i),
				logging.Err(err),
			)
			return p.failed
		}
		p.stats.Replayed++
		p.log.Info(cmd)
	}

	p.log.Info("initialized", logging.String("locator", locator))
	return nil
}

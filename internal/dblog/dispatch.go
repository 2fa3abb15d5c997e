package dblog

import (
	"context"
	"fmt"

	"github.com/roach88/dblog/internal/logging"
)

// OnWriteBatch handles one write notification.
//
// Before the store is ready the batch is buffered and true is returned.
// Afterwards each command is executed in order; the first failure stops the
// batch and is returned as a store execution error. Commands already
// executed are not undone.
func (p *Plugin) OnWriteBatch(ctx context.Context, batch Batch) (bool, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	id := p.ids.Generate()
	p.stats.Batches++

	if !p.gate.IsReady() {
		if err := p.buffer.Append(batch); err != nil {
			p.log.Error("buffer rejected batch", logging.String("batch", id), logging.Err(err))
			return false, err
		}
		p.stats.Deferred += len(batch)
		p.log.Info("deferring commands",
			logging.String("batch", id),
			logging.Int("count", len(batch)),
		)
		return true, nil
	}

	if p.failed != nil {
		err := fmt.Errorf("write rejected after failed initialization: %w", p.failed)
		p.log.Error("rejecting batch", logging.String("batch", id), logging.Err(err))
		return false, err
	}

	for i, cmd := range batch {
		if err := p.conn.Exec(ctx, cmd); err != nil {
			execErr := newExecutionError(PhaseDirect, i, cmd, err)
			p.log.Error("command failed",
				logging.String("batch", id),
				logging.Int("index", i),
				logging.String("command", cmd),
				logging.Int("skipped", len(batch)-i-1),
				logging.Err(err),
			)
			return false, execErr
		}
		p.stats.Executed++
		p.log.Info(cmd, logging.String("batch", id))
	}
	return true, nil
}

package harness

import (
	"context"
	"errors"
	"fmt"

	"github.com/roach88/dblog/internal/dblog"
)

// recorder is the scenario's store. It appends every call to the result
// trace and fails the commands listed in the scenario's fail_on.
type recorder struct {
	result *Result
	step   int
	failOn map[string]bool
}

func (r *recorder) Open(_ context.Context, locator string) (dblog.Conn, error) {
	r.result.addEvent(r.step, EventOpen, locator)
	return r, nil
}

func (r *recorder) Exec(_ context.Context, command string) error {
	if r.failOn[command] {
		r.result.addEvent(r.step, EventFail, command)
		return fmt.Errorf("scripted failure: %s", command)
	}
	r.result.addEvent(r.step, EventExec, command)
	r.result.Executed = append(r.result.Executed, command)
	return nil
}

func (r *recorder) Close() error {
	return nil
}

// Run executes a scenario and evaluates its assertions.
//
// Each run gets a fresh plugin and recorder. A step error does not stop the
// run; it is recorded so that assertions can check it.
func Run(scenario *Scenario) (*Result, error) {
	return RunContext(context.Background(), scenario)
}

// RunContext is Run with a caller-supplied context.
func RunContext(ctx context.Context, scenario *Scenario) (*Result, error) {
	if scenario == nil {
		return nil, errors.New("scenario is nil")
	}

	result := NewResult()
	rec := &recorder{result: result, failOn: make(map[string]bool, len(scenario.FailOn))}
	for _, cmd := range scenario.FailOn {
		rec.failOn[cmd] = true
	}

	p := dblog.New(rec, dblog.WithIDGenerator(dblog.NewSequenceGenerator(scenario.Name)))
	defer p.Close()

	for i, step := range scenario.Steps {
		rec.step = i

		var err error
		if step.IsReady() {
			result.addEvent(i, EventReady, *step.Ready)
			err = p.OnStoreReady(ctx, *step.Ready)
		} else {
			deferred := p.State() == dblog.StateNotReady
			_, err = p.OnWriteBatch(ctx, step.Write)
			if err == nil && deferred {
				for _, cmd := range step.Write {
					result.addEvent(i, EventDefer, cmd)
				}
			}
		}

		if err != nil {
			code := dblog.CodeOf(err)
			if code == "" {
				code = "UNKNOWN"
			}
			result.addEvent(i, EventError, string(code))
			result.StepErrors = append(result.StepErrors, StepError{Step: i, Code: code, Message: err.Error()})
		}
	}

	result.Pending = p.Pending()
	result.State = p.State()
	result.Stats = p.Stats()

	for _, a := range scenario.Assertions {
		if err := Evaluate(result, a); err != nil {
			result.AddError(err.Error())
		}
	}

	return result, nil
}

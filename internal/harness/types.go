package harness

import (
	"fmt"
	"strings"

	"github.com/roach88/dblog/internal/dblog"
)

// Trace event kinds.
const (
	EventDefer = "defer"
	EventReady = "ready"
	EventOpen  = "open"
	EventExec  = "exec"
	EventFail  = "fail"
	EventError = "error"
)

// TraceEvent is one observable effect of a step.
type TraceEvent struct {
	Step   int    `json:"step"`
	Kind   string `json:"kind"`
	Detail string `json:"detail,omitempty"`
}

// String renders the event as a golden-file line.
func (e TraceEvent) String() string {
	if e.Detail == "" {
		return fmt.Sprintf("%d %s", e.Step, e.Kind)
	}
	return fmt.Sprintf("%d %s %s", e.Step, e.Kind, e.Detail)
}

// StepError records a step that returned an error.
type StepError struct {
	Step    int             `json:"step"`
	Code    dblog.ErrorCode `json:"code"`
	Message string          `json:"message"`
}

// Result is the outcome of a scenario execution.
type Result struct {
	// Pass is true when every assertion held.
	Pass bool `json:"pass"`

	// Trace lists every deferral, store call and error in order.
	Trace []TraceEvent `json:"trace"`

	// Executed is the command sequence the store applied.
	Executed []string `json:"executed"`

	// Pending is the number of commands left in the buffer.
	Pending int `json:"pending"`

	// State is the final lifecycle state.
	State dblog.State `json:"-"`

	// Stats are the plugin's counters at the end of the run.
	Stats dblog.Stats `json:"stats"`

	// StepErrors lists failed steps in order.
	StepErrors []StepError `json:"step_errors,omitempty"`

	// Errors contains assertion failure messages.
	Errors []string `json:"errors,omitempty"`
}

// NewResult creates a new passing result.
func NewResult() *Result {
	return &Result{
		Pass:     true,
		Trace:    []TraceEvent{},
		Executed: []string{},
	}
}

// AddError adds an assertion failure and marks the result as failed.
func (r *Result) AddError(err string) {
	r.Errors = append(r.Errors, err)
	r.Pass = false
}

func (r *Result) addEvent(step int, kind, detail string) {
	r.Trace = append(r.Trace, TraceEvent{Step: step, Kind: kind, Detail: detail})
}

// FormatTrace renders a trace one event per line.
func FormatTrace(trace []TraceEvent) []byte {
	var buf strings.Builder
	for _, e := range trace {
		buf.WriteString(e.String())
		buf.WriteByte('\n')
	}
	return []byte(buf.String())
}

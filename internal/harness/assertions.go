package harness

import (
	"fmt"
	"reflect"
	"strings"

	"github.com/roach88/dblog/internal/dblog"
)

// AssertionError is returned when an assertion fails.
type AssertionError struct {
	Type     string       // Assertion type for categorization
	Expected string       // Human-readable expected outcome
	Actual   string       // Human-readable actual outcome
	Trace    []TraceEvent // Full trace for debugging context
}

// Error implements the error interface.
func (e *AssertionError) Error() string {
	var buf strings.Builder

	fmt.Fprintf(&buf, "Assertion failed: %s\n", e.Type)
	fmt.Fprintf(&buf, "  Expected: %s\n", e.Expected)
	fmt.Fprintf(&buf, "  Actual: %s\n", e.Actual)

	fmt.Fprintf(&buf, "\nFull trace:\n")
	for _, event := range e.Trace {
		fmt.Fprintf(&buf, "  %s\n", event)
	}

	return buf.String()
}

var statFields = map[string]func(dblog.Stats) int{
	"batches":  func(s dblog.Stats) int { return s.Batches },
	"deferred": func(s dblog.Stats) int { return s.Deferred },
	"replayed": func(s dblog.Stats) int { return s.Replayed },
	"executed": func(s dblog.Stats) int { return s.Executed },
}

// Evaluate checks a single assertion against a result.
func Evaluate(r *Result, a Assertion) error {
	fail := func(expected, actual string) error {
		return &AssertionError{Type: a.Type, Expected: expected, Actual: actual, Trace: r.Trace}
	}

	switch a.Type {
	case AssertExecuted:
		want := a.Commands
		if want == nil {
			want = []string{}
		}
		if !reflect.DeepEqual(want, r.Executed) {
			return fail(fmt.Sprintf("%q", want), fmt.Sprintf("%q", r.Executed))
		}

	case AssertPending:
		if r.Pending != a.Count {
			return fail(fmt.Sprintf("%d pending", a.Count), fmt.Sprintf("%d pending", r.Pending))
		}

	case AssertState:
		if r.State.String() != a.State {
			return fail(a.State, r.State.String())
		}

	case AssertError:
		for _, se := range r.StepErrors {
			if se.Step == a.Step && string(se.Code) == a.Code {
				return nil
			}
		}
		return fail(fmt.Sprintf("step %d fails with %s", a.Step, a.Code), describeStepErrors(r.StepErrors))

	case AssertNoErrors:
		if len(r.StepErrors) > 0 {
			return fail("no step errors", describeStepErrors(r.StepErrors))
		}

	case AssertStats:
		for name, want := range a.Stats {
			get, ok := statFields[name]
			if !ok {
				return fmt.Errorf("unknown stat %q", name)
			}
			if got := get(r.Stats); got != want {
				return fail(fmt.Sprintf("%s=%d", name, want), fmt.Sprintf("%s=%d", name, got))
			}
		}

	default:
		return fmt.Errorf("unknown assertion type %q", a.Type)
	}
	return nil
}

func describeStepErrors(errs []StepError) string {
	if len(errs) == 0 {
		return "no step errors"
	}
	parts := make([]string, len(errs))
	for i, se := range errs {
		parts[i] = fmt.Sprintf("step %d: %s", se.Step, se.Message)
	}
	return strings.Join(parts, "; ")
}

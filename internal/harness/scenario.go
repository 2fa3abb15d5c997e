package harness

import (
	"bytes"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Scenario is a scripted run of the buffering protocol.
type Scenario struct {
	// Name uniquely identifies this scenario and names its golden file.
	Name string `yaml:"name"`

	// Description explains what this scenario validates.
	Description string `yaml:"description"`

	// FailOn lists commands the recording store rejects.
	FailOn []string `yaml:"fail_on,omitempty"`

	// Steps are delivered to the plugin in order.
	Steps []Step `yaml:"steps"`

	// Assertions validate the final state and the trace.
	Assertions []Assertion `yaml:"assertions"`
}

// Step is a single event: either a write batch or a ready event.
type Step struct {
	// Write is one batch of commands. An empty list is a valid batch.
	Write []string `yaml:"write,omitempty"`

	// Ready fires the store-ready event with this locator. A pointer so
	// that an explicit empty locator can be scripted.
	Ready *string `yaml:"ready,omitempty"`
}

// IsReady reports whether the step is a ready event.
func (s Step) IsReady() bool {
	return s.Ready != nil
}

// Assertion validates the outcome of a scenario.
type Assertion struct {
	// Type is one of the Assert* constants.
	Type string `yaml:"type"`

	// Commands is the expected executed sequence (executed).
	Commands []string `yaml:"commands,omitempty"`

	// Count is the expected number of pending commands (pending).
	Count int `yaml:"count,omitempty"`

	// State is "ready" or "not_ready" (state).
	State string `yaml:"state,omitempty"`

	// Step and Code identify an expected failure (error).
	Step int    `yaml:"step,omitempty"`
	Code string `yaml:"code,omitempty"`

	// Stats is a subset of counters to match (stats).
	Stats map[string]int `yaml:"stats,omitempty"`
}

// Assertion type constants.
const (
	AssertExecuted = "executed"
	AssertPending  = "pending"
	AssertState    = "state"
	AssertError    = "error"
	AssertNoErrors = "no_errors"
	AssertStats    = "stats"
)

// LoadScenario reads and parses a scenario YAML file.
// Unknown fields are rejected so typos fail loudly.
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read scenario file: %w", err)
	}
	return ParseScenario(data)
}

// ParseScenario parses and validates scenario YAML.
func ParseScenario(data []byte) (*Scenario, error) {
	var scenario Scenario
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&scenario); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	if err := validateScenario(&scenario); err != nil {
		return nil, fmt.Errorf("invalid scenario: %w", err)
	}

	return &scenario, nil
}

// validateScenario checks that required fields are present and valid.
func validateScenario(s *Scenario) error {
	if s.Name == "" {
		return fmt.Errorf("name is required")
	}

	if s.Description == "" {
		return fmt.Errorf("description is required")
	}

	if len(s.Steps) == 0 {
		return fmt.Errorf("steps list is required and must be non-empty")
	}

	for i, step := range s.Steps {
		if step.IsReady() && step.Write != nil {
			return fmt.Errorf("step %d: write and ready are mutually exclusive", i)
		}
		if !step.IsReady() && step.Write == nil {
			return fmt.Errorf("step %d: one of write or ready is required", i)
		}
	}

	for i, a := range s.Assertions {
		if err := validateAssertion(a, len(s.Steps)); err != nil {
			return fmt.Errorf("assertion %d: %w", i, err)
		}
	}

	return nil
}

func validateAssertion(a Assertion, steps int) error {
	switch a.Type {
	case AssertExecuted, AssertPending, AssertNoErrors:
		return nil
	case AssertState:
		if a.State != "ready" && a.State != "not_ready" {
			return fmt.Errorf("state must be ready or not_ready, got %q", a.State)
		}
	case AssertError:
		if a.Step < 0 || a.Step >= steps {
			return fmt.Errorf("step %d out of range", a.Step)
		}
		if a.Code == "" {
			return fmt.Errorf("code is required")
		}
	case AssertStats:
		for k := range a.Stats {
			if _, ok := statFields[k]; !ok {
				return fmt.Errorf("unknown stat %q", k)
			}
		}
	case "":
		return fmt.Errorf("type is required")
	default:
		return fmt.Errorf("unknown assertion type %q", a.Type)
	}
	return nil
}

package harness

import (
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/dblog/internal/dblog"
)

func TestScenarios_Golden(t *testing.T) {
	paths, err := filepath.Glob("testdata/scenarios/*.yaml")
	require.NoError(t, err)
	require.NotEmpty(t, paths)

	for _, path := range paths {
		path := path
		t.Run(filepath.Base(path), func(t *testing.T) {
			scenario, err := LoadScenario(path)
			require.NoError(t, err)

			result, err := RunWithGolden(t, scenario)
			require.NoError(t, err)
			assert.True(t, result.Pass, "assertion failures:\n%s", strings.Join(result.Errors, "\n"))
		})
	}
}

func TestRun_NilScenario(t *testing.T) {
	_, err := Run(nil)
	assert.Error(t, err)
}

func TestRun_FailingAssertionsReported(t *testing.T) {
	ready := "db"
	scenario := &Scenario{
		Name:        "wrong_expectations",
		Description: "expectations that do not hold",
		Steps: []Step{
			{Write: []string{"INSERT A"}},
			{Ready: &ready},
		},
		Assertions: []Assertion{
			{Type: AssertExecuted, Commands: []string{"INSERT B"}},
			{Type: AssertPending, Count: 1},
			{Type: AssertState, State: "not_ready"},
			{Type: AssertError, Step: 1, Code: "STORE_EXECUTION"},
			{Type: AssertStats, Stats: map[string]int{"replayed": 5}},
		},
	}

	result, err := Run(scenario)
	require.NoError(t, err)
	assert.False(t, result.Pass)
	require.Len(t, result.Errors, 5)
	assert.Contains(t, result.Errors[0], "Assertion failed: executed")
	assert.Contains(t, result.Errors[0], `"INSERT B"`)
	assert.Contains(t, result.Errors[0], "1 exec INSERT A")
	assert.Contains(t, result.Errors[4], "replayed=1")
}

func TestRun_StepErrorRecorded(t *testing.T) {
	empty := ""
	scenario := &Scenario{
		Name:        "empty_locator",
		Description: "init without locator",
		Steps:       []Step{{Ready: &empty}},
	}

	result, err := Run(scenario)
	require.NoError(t, err)
	require.Len(t, result.StepErrors, 1)
	assert.Equal(t, 0, result.StepErrors[0].Step)
	assert.Equal(t, dblog.ErrCodeConfiguration, result.StepErrors[0].Code)
	assert.Equal(t, dblog.StateNotReady, result.State)

	err = Evaluate(result, Assertion{Type: AssertNoErrors})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no dblog-file specified")
}

func TestParseScenario_Valid(t *testing.T) {
	s, err := ParseScenario([]byte(`
name: s
description: d
steps:
  - write: ["a"]
  - ready: ""
  - write: []
`))
	require.NoError(t, err)
	require.Len(t, s.Steps, 3)
	assert.False(t, s.Steps[0].IsReady())
	assert.True(t, s.Steps[1].IsReady())
	assert.Equal(t, "", *s.Steps[1].Ready)
	assert.NotNil(t, s.Steps[2].Write)
	assert.Empty(t, s.Steps[2].Write)
}

func TestParseScenario_Invalid(t *testing.T) {
	tests := []struct {
		name    string
		yaml    string
		wantErr string
	}{
		{
			name:    "missing name",
			yaml:    "description: d\nsteps:\n  - write: [a]\n",
			wantErr: "name is required",
		},
		{
			name:    "missing description",
			yaml:    "name: n\nsteps:\n  - write: [a]\n",
			wantErr: "description is required",
		},
		{
			name:    "no steps",
			yaml:    "name: n\ndescription: d\n",
			wantErr: "steps list is required",
		},
		{
			name:    "empty step",
			yaml:    "name: n\ndescription: d\nsteps:\n  - {}\n",
			wantErr: "one of write or ready is required",
		},
		{
			name:    "both write and ready",
			yaml:    "name: n\ndescription: d\nsteps:\n  - write: [a]\n    ready: db\n",
			wantErr: "mutually exclusive",
		},
		{
			name:    "unknown field",
			yaml:    "name: n\ndescription: d\nstep:\n  - write: [a]\n",
			wantErr: "failed to parse YAML",
		},
		{
			name:    "unknown assertion",
			yaml:    "name: n\ndescription: d\nsteps:\n  - write: [a]\nassertions:\n  - type: vibes\n",
			wantErr: "unknown assertion type",
		},
		{
			name:    "bad state",
			yaml:    "name: n\ndescription: d\nsteps:\n  - write: [a]\nassertions:\n  - type: state\n    state: sleepy\n",
			wantErr: "state must be ready or not_ready",
		},
		{
			name:    "error step out of range",
			yaml:    "name: n\ndescription: d\nsteps:\n  - write: [a]\nassertions:\n  - type: error\n    step: 3\n    code: CONFIGURATION\n",
			wantErr: "out of range",
		},
		{
			name:    "unknown stat",
			yaml:    "name: n\ndescription: d\nsteps:\n  - write: [a]\nassertions:\n  - type: stats\n    stats:\n      dropped: 1\n",
			wantErr: "unknown stat",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseScenario([]byte(tt.yaml))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestLoadScenario_MissingFile(t *testing.T) {
	_, err := LoadScenario(filepath.Join(t.TempDir(), "nope.yaml"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to read scenario file")
}

func TestFormatTrace(t *testing.T) {
	got := FormatTrace([]TraceEvent{
		{Step: 0, Kind: EventDefer, Detail: "INSERT A"},
		{Step: 1, Kind: EventReady},
	})
	assert.Equal(t, "0 defer INSERT A\n1 ready\n", string(got))
}

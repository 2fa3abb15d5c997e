package dblog

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestInitGate_StartsNotReady(t *testing.T) {
	var g InitGate
	assert.False(t, g.IsReady())
	assert.Equal(t, StateNotReady, g.State())
}

func TestInitGate_MarkReadyOnce(t *testing.T) {
	var g InitGate

	assert.True(t, g.MarkReady(), "first call flips the latch")
	assert.True(t, g.IsReady())
	assert.Equal(t, StateReady, g.State())

	for i := 0; i < 3; i++ {
		assert.False(t, g.MarkReady(), "later calls are no-ops")
		assert.True(t, g.IsReady())
	}
}

func TestState_String(t *testing.T) {
	assert.Equal(t, "not_ready", StateNotReady.String())
	assert.Equal(t, "ready", StateReady.String())
	assert.Equal(t, "unknown", State(7).String())
}

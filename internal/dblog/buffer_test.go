package dblog

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWriteBuffer_PreservesArrivalOrder(t *testing.T) {
	b := NewWriteBuffer()
	require.NoError(t, b.Append(Batch{"INSERT A"}))
	require.NoError(t, b.Append(Batch{"INSERT B", "INSERT C"}))
	require.NoError(t, b.Append(Batch{}))
	require.NoError(t, b.Append(Batch{"INSERT D"}))

	assert.Equal(t, 4, b.Len())
	assert.Equal(t, []Command{"INSERT A", "INSERT B", "INSERT C", "INSERT D"}, b.DrainAll())
}

func TestWriteBuffer_DrainSeals(t *testing.T) {
	b := NewWriteBuffer()
	require.NoError(t, b.Append(Batch{"INSERT A"}))

	assert.False(t, b.Sealed())
	assert.Len(t, b.DrainAll(), 1)
	assert.True(t, b.Sealed())
	assert.Equal(t, 0, b.Len())

	assert.Empty(t, b.DrainAll(), "second drain yields nothing")
}

func TestWriteBuffer_AppendAfterDrain(t *testing.T) {
	b := NewWriteBuffer()
	b.DrainAll()

	err := b.Append(Batch{"INSERT A"})
	require.Error(t, err)
	assert.Equal(t, ErrCodeSealedBuffer, CodeOf(err))
	assert.Empty(t, b.DrainAll())
}

func TestWriteBuffer_DrainEmpty(t *testing.T) {
	b := NewWriteBuffer()
	assert.Empty(t, b.DrainAll())
	assert.True(t, b.Sealed())
}

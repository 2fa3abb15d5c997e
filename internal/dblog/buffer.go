package dblog

// WriteBuffer holds commands received before the store was ready.
//
// It is append-only until DrainAll, which hands back everything in arrival
// order and seals the buffer. A sealed buffer rejects appends and drains to
// nothing. Not safe for concurrent use; the Plugin serializes access.
type WriteBuffer struct {
	commands []Command
	sealed   bool
}

// NewWriteBuffer creates an empty, unsealed buffer.
func NewWriteBuffer() *WriteBuffer {
	return &WriteBuffer{commands: make([]Command, 0, 64)}
}

// Append adds the batch's commands to the tail, preserving their order.
// Returns an error with code ErrCodeSealedBuffer once the buffer is drained.
func (b *WriteBuffer) Append(batch Batch) error {
	if b.sealed {
		return newSealedError(len(batch))
	}
	b.commands = append(b.commands, batch...)
	return nil
}

// DrainAll returns every buffered command in arrival order and seals the
// buffer. Later calls return nil.
func (b *WriteBuffer) DrainAll() []Command {
	if b.sealed {
		return nil
	}
	drained := b.commands
	b.commands = nil
	b.sealed = true
	return drained
}

// Len returns the number of commands waiting to be drained.
func (b *WriteBuffer) Len() int {
	return len(b.commands)
}

// Sealed reports whether DrainAll has been called.
func (b *WriteBuffer) Sealed() bool {
	return b.sealed
}

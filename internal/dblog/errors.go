package dblog

import (
	"errors"
	"fmt"
)

// ErrorCode categorizes dblog errors.
type ErrorCode string

const (
	// ErrCodeConfiguration indicates a missing or unusable store locator.
	ErrCodeConfiguration ErrorCode = "CONFIGURATION"

	// ErrCodeStoreExecution indicates a command failed against the store.
	ErrCodeStoreExecution ErrorCode = "STORE_EXECUTION"

	// ErrCodeProtocolMisuse indicates a malformed write notification.
	ErrCodeProtocolMisuse ErrorCode = "PROTOCOL_MISUSE"

	// ErrCodeSealedBuffer indicates an append after the buffer was drained.
	ErrCodeSealedBuffer ErrorCode = "SEALED_BUFFER"
)

// Error is returned by every Plugin operation that fails.
type Error struct {
	// Code identifies the error category.
	Code ErrorCode

	// Message is a human-readable description.
	Message string

	// Phase is set for store execution errors.
	Phase Phase

	// Command is the command that failed, for store execution errors.
	Command Command

	// Index is the position of Command within its batch or backlog.
	Index int

	// Err is the underlying cause, if any.
	Err error
}

// Error implements the error interface.
func (e *Error) Error() string {
	msg := fmt.Sprintf("%s: %s", e.Code, e.Message)
	if e.Code == ErrCodeStoreExecution {
		msg = fmt.Sprintf("%s (phase=%s, index=%d)", msg, e.Phase, e.Index)
	}
	if e.Err != nil {
		msg = fmt.Sprintf("%s: %v", msg, e.Err)
	}
	return msg
}

// Unwrap returns the underlying cause.
func (e *Error) Unwrap() error {
	return e.Err
}

// NewConfigurationError creates an error for a missing or invalid locator.
func NewConfigurationError(message string, err error) *Error {
	return &Error{Code: ErrCodeConfiguration, Message: message, Err: err}
}

// NewProtocolError creates an error for a malformed write notification.
func NewProtocolError(message string) *Error {
	return &Error{Code: ErrCodeProtocolMisuse, Message: message}
}

func newExecutionError(phase Phase, index int, command Command, err error) *Error {
	return &Error{
		Code:    ErrCodeStoreExecution,
		Message: "command failed",
		Phase:   phase,
		Command: command,
		Index:   index,
		Err:     err,
	}
}

func newSealedError(n int) *Error {
	return &Error{
		Code:    ErrCodeSealedBuffer,
		Message: fmt.Sprintf("cannot buffer %d commands after replay", n),
	}
}

// CodeOf returns the code of the first *Error in err's chain, or "".
func CodeOf(err error) ErrorCode {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return ""
}

// IsConfigurationError reports whether err is a configuration error.
func IsConfigurationError(err error) bool {
	return CodeOf(err) == ErrCodeConfiguration
}

// IsStoreExecutionError reports whether err is a store execution error.
func IsStoreExecutionError(err error) bool {
	return CodeOf(err) == ErrCodeStoreExecution
}

// IsProtocolError reports whether err is a protocol misuse error.
func IsProtocolError(err error) bool {
	return CodeOf(err) == ErrCodeProtocolMisuse
}

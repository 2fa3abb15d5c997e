package dblog

import (
	"context"
	"errors"
	"sync"

	"github.com/roach88/dblog/internal/logging"
)

// recordingConn records executed commands and fails on selected ones.
type recordingConn struct {
	executed []string
	failOn   map[string]error
	closed   int
}

func (c *recordingConn) Exec(_ context.Context, command string) error {
	if err, ok := c.failOn[command]; ok {
		return err
	}
	c.executed = append(c.executed, command)
	return nil
}

func (c *recordingConn) Close() error {
	c.closed++
	return nil
}

// recordingConnector hands out a single recordingConn.
type recordingConnector struct {
	conn    *recordingConn
	opened  []string
	openErr error
}

func newRecordingConnector() *recordingConnector {
	return &recordingConnector{conn: &recordingConn{failOn: map[string]error{}}}
}

func (c *recordingConnector) Open(_ context.Context, locator string) (Conn, error) {
	c.opened = append(c.opened, locator)
	if c.openErr != nil {
		return nil, c.openErr
	}
	return c.conn, nil
}

func (c *recordingConnector) failOn(command string) {
	c.conn.failOn[command] = errors.New("constraint failed")
}

// captureLogger keeps log messages for assertions.
type captureLogger struct {
	mu       sync.Mutex
	messages []string
}

func (l *captureLogger) add(msg string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.messages = append(l.messages, msg)
}

func (l *captureLogger) Debug(msg string, _ ...logging.Field) { l.add(msg) }
func (l *captureLogger) Info(msg string, _ ...logging.Field)  { l.add(msg) }
func (l *captureLogger) Warn(msg string, _ ...logging.Field)  { l.add(msg) }
func (l *captureLogger) Error(msg string, _ ...logging.Field) { l.add(msg) }

func newTestPlugin(connector Connector, opts ...Option) *Plugin {
	opts = append([]Option{WithIDGenerator(NewSequenceGenerator("batch"))}, opts...)
	return New(connector, opts...)
}

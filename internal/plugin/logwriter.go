package plugin

import (
	"bytes"
	"strings"

	"github.com/rs/zerolog"
)

// LogWriter forwards zerolog output to lightningd as log notifications.
// Each event is rendered as a single console-style line.
type LogWriter struct {
	stream *Stream
}

var _ zerolog.LevelWriter = (*LogWriter)(nil)

// NewLogWriter creates a writer that notifies over stream.
func NewLogWriter(stream *Stream) *LogWriter {
	return &LogWriter{stream: stream}
}

// Write forwards an event of unknown level at "info".
func (w *LogWriter) Write(p []byte) (int, error) {
	return w.WriteLevel(zerolog.InfoLevel, p)
}

// WriteLevel renders p and sends it with the lightningd level matching l.
func (w *LogWriter) WriteLevel(l zerolog.Level, p []byte) (int, error) {
	var buf bytes.Buffer
	cw := zerolog.ConsoleWriter{
		Out:          &buf,
		NoColor:      true,
		PartsExclude: []string{zerolog.TimestampFieldName, zerolog.LevelFieldName},
	}
	if _, err := cw.Write(p); err != nil {
		return 0, err
	}

	params := map[string]string{
		"level":   lightningLevel(l),
		"message": strings.TrimSpace(buf.String()),
	}
	if err := w.stream.Notify("log", params); err != nil {
		return 0, err
	}
	return len(p), nil
}

// lightningLevel maps zerolog levels onto lightningd's io/debug/info/unusual/broken.
func lightningLevel(l zerolog.Level) string {
	switch l {
	case zerolog.TraceLevel:
		return "io"
	case zerolog.DebugLevel:
		return "debug"
	case zerolog.WarnLevel:
		return "unusual"
	case zerolog.ErrorLevel, zerolog.FatalLevel, zerolog.PanicLevel:
		return "broken"
	default:
		return "info"
	}
}

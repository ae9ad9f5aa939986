package testutils

import (
	"bytes"
	"log/slog"
	"sync"
	"testing"
)

// LogBuffer collects JSON log records written through the default logger.
type LogBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (l *LogBuffer) Write(p []byte) (int, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	return l.buf.Write(p)
}

func (l *LogBuffer) String() string {
	l.mu.Lock()
	defer l.mu.Unlock()

	return l.buf.String()
}

// SetupLoggerWithBuffer makes the default logger write JSON into the
// returned buffer until the test ends.
func SetupLoggerWithBuffer(tb testing.TB) *LogBuffer {
	tb.Helper()

	buf := &LogBuffer{}
	prev := slog.Default()

	slog.SetDefault(slog.New(slog.NewJSONHandler(buf, &slog.HandlerOptions{Level: slog.LevelDebug})))
	tb.Cleanup(func() { slog.SetDefault(prev) })

	return buf
}

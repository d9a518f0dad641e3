// pattern: Imperative Shell

package logging

import (
	"sync"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// NopLogger returns a logger that discards all output.
// Use in tests or when logging is not configured.
func NopLogger() *ScopedLogger {
	return &ScopedLogger{}
}

// TestLogManager records every entry in memory at debug level.
type TestLogManager struct {
	sink    *MemorySink
	baseZap *zap.Logger

	mu      sync.RWMutex
	loggers map[string]*ScopedLogger
}

// NewTestLogManager creates a LoggerProvider for tests.
func NewTestLogManager() *TestLogManager {
	sink := NewMemorySink()
	core := zapcore.NewCore(
		zapcore.NewJSONEncoder(jsonEncoderConfig()),
		zapcore.AddSync(sink),
		zapcore.DebugLevel,
	)
	return &TestLogManager{
		sink:    sink,
		baseZap: zap.New(core),
		loggers: make(map[string]*ScopedLogger),
	}
}

// For returns a scoped logger for the given scope name.
func (m *TestLogManager) For(scope string) *ScopedLogger {
	return cachedLogger(&m.mu, m.loggers, scope, func() *ScopedLogger {
		return newScopedLogger(m.baseZap, scope, zapcore.DebugLevel)
	})
}

// Entries returns everything logged so far.
func (m *TestLogManager) Entries() []LogEntry {
	return m.sink.Entries()
}

// Find returns entries whose message equals msg.
func (m *TestLogManager) Find(msg string) []LogEntry {
	var out []LogEntry
	for _, e := range m.sink.Entries() {
		if e.Message == msg {
			out = append(out, e)
		}
	}
	return out
}

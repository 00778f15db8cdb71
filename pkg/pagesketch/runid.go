package pagesketch

import (
	"context"
	"crypto/rand"
	"encoding/hex"
)

type runIDKey struct{}

// RunID identifies one run of a sketch. Log lines and events of the same
// run carry the same ID.
type RunID string

// String returns the string representation of the run ID.
func (r RunID) String() string {
	return string(r)
}

// NewRunID generates a random 16-character hex run ID.
func NewRunID() RunID {
	b := make([]byte, 8)
	if _, err := rand.Read(b); err != nil {
		return RunID("0000000000000000")
	}
	return RunID(hex.EncodeToString(b))
}

// WithRunID returns a context carrying id. An empty id is replaced with a
// new one.
func WithRunID(ctx context.Context, id RunID) context.Context {
	if id == "" {
		id = NewRunID()
	}
	return context.WithValue(ctx, runIDKey{}, id)
}

// RunIDFromContext returns the run ID stored in ctx, or "".
func RunIDFromContext(ctx context.Context) RunID {
	if ctx == nil {
		return ""
	}
	if id, ok := ctx.Value(runIDKey{}).(RunID); ok {
		return id
	}
	return ""
}

// runLogger prefixes every message with the run ID of its context.
type runLogger struct {
	logger Logger
	run    RunID
}

func newRunLogger(ctx context.Context, logger Logger) *runLogger {
	if logger == nil {
		logger = NopLogger()
	}
	return &runLogger{logger: logger, run: RunIDFromContext(ctx)}
}

func (l *runLogger) withRun(args []any) []any {
	if l.run == "" {
		return args
	}
	return append([]any{"run", string(l.run)}, args...)
}

func (l *runLogger) Debug(msg string, args ...any) { l.logger.Debug(msg, l.withRun(args)...) }
func (l *runLogger) Info(msg string, args ...any)  { l.logger.Info(msg, l.withRun(args)...) }
func (l *runLogger) Warn(msg string, args ...any)  { l.logger.Warn(msg, l.withRun(args)...) }
func (l *runLogger) Error(msg string, args ...any) { l.logger.Error(msg, l.withRun(args)...) }

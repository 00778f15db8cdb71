package pagesketch

import (
	"io"
	"io/fs"
	"time"
)

// Options configures a Sketch. Zero values keep the configuration file's
// settings.
type Options struct {
	// ConfigPath names a Lua or TOML configuration file. For NewFromFS it
	// is a path inside the filesystem. Empty means the defaults: one A4
	// page in points.
	ConfigPath string

	// CanvasMode overrides the initial canvas mode: "paper", "margin",
	// "bleed" or "facing_pages".
	CanvasMode string

	// Output overrides the export path. Format selects "pdf" or "svg";
	// empty picks the format from the extension.
	Output string
	Format string

	// Preview opens the live preview window.
	Preview bool

	// Assets resolves image names used by the script. Nil means the
	// configured assets directory, or the script's directory.
	Assets fs.FS

	// Stdout receives println() and printMatrix() output.
	// Nil means os.Stdout.
	Stdout io.Writer

	// Stderr receives script errors and warnings in the form shown to
	// script authors. Nil means os.Stderr.
	Stderr io.Writer

	// LuaCPULimit and LuaMemoryLimit override the per-call Lua limits.
	LuaCPULimit    uint64
	LuaMemoryLimit uint64

	// Logger sets a custom logger for debug/info messages.
	// If nil, no logging is performed.
	Logger Logger

	// Metrics sets a custom metrics collector.
	// If nil, DefaultMetrics() is used.
	Metrics *Metrics

	// ErrorTracker sets a custom error tracker.
	// If nil, DefaultErrorTracker() is used.
	ErrorTracker *ErrorTracker

	// Watch starts a new run whenever the script or the configuration
	// file changes on disk.
	Watch bool

	// WatchDebounce sets the debounce interval for file change events.
	// Zero means DefaultWatchDebounce.
	WatchDebounce time.Duration
}

// DefaultOptions returns Options that keep every configured setting.
func DefaultOptions() Options {
	return Options{}
}

// Logger interface for custom logging.
// It follows the slog-style signature for compatibility with Go's
// structured logging.
type Logger interface {
	// Debug logs a debug-level message with optional key-value pairs.
	Debug(msg string, args ...any)
	// Info logs an info-level message with optional key-value pairs.
	Info(msg string, args ...any)
	// Warn logs a warning-level message with optional key-value pairs.
	Warn(msg string, args ...any)
	// Error logs an error-level message with optional key-value pairs.
	Error(msg string, args ...any)
}

package pagesketch

import (
	"errors"
	"fmt"
	"io/fs"
	"sync"
	"sync/atomic"
	"time"

	"github.com/opd-ai/go-pagesketch/internal/sketch"
)

// ErrorCategory classifies errors for tracking and alerting.
type ErrorCategory int

const (
	// ErrorCategoryUnknown is the default category for uncategorized errors.
	ErrorCategoryUnknown ErrorCategory = iota
	// ErrorCategoryConfig is for configuration parsing and validation errors.
	ErrorCategoryConfig
	// ErrorCategoryScript is for Lua syntax and runtime errors.
	ErrorCategoryScript
	// ErrorCategoryGeometry is for fatal drawing errors: unbalanced
	// popMatrix, unsupported shape modes, invalid page items.
	ErrorCategoryGeometry
	// ErrorCategoryExport is for PDF and SVG output errors.
	ErrorCategoryExport
	// ErrorCategoryPreview is for preview window errors.
	ErrorCategoryPreview
	// ErrorCategoryWatch is for file watcher errors.
	ErrorCategoryWatch
	// ErrorCategoryIO is for file and I/O errors.
	ErrorCategoryIO

	numCategories
)

// String returns a human-readable name for the error category.
func (c ErrorCategory) String() string {
	switch c {
	case ErrorCategoryConfig:
		return "config"
	case ErrorCategoryScript:
		return "script"
	case ErrorCategoryGeometry:
		return "geometry"
	case ErrorCategoryExport:
		return "export"
	case ErrorCategoryPreview:
		return "preview"
	case ErrorCategoryWatch:
		return "watch"
	case ErrorCategoryIO:
		return "io"
	default:
		return "unknown"
	}
}

// ErrorSeverity indicates the severity level of an error.
type ErrorSeverity int

const (
	// SeverityInfo is for informational messages that don't require action.
	SeverityInfo ErrorSeverity = iota
	// SeverityWarning is for non-critical issues.
	SeverityWarning
	// SeverityError is for errors that end a run but not the process.
	SeverityError
	// SeverityCritical is for errors that stop Run.
	SeverityCritical
)

// String returns a human-readable name for the severity level.
func (s ErrorSeverity) String() string {
	switch s {
	case SeverityInfo:
		return "info"
	case SeverityWarning:
		return "warning"
	case SeverityError:
		return "error"
	case SeverityCritical:
		return "critical"
	default:
		return "unknown"
	}
}

// CategorizedError wraps an error with metadata for tracking and alerting.
type CategorizedError struct {
	// Err is the underlying error.
	Err error
	// Category classifies the type of error.
	Category ErrorCategory
	// Severity indicates the urgency level.
	Severity ErrorSeverity
	// Timestamp is when the error occurred.
	Timestamp time.Time
	// Context provides additional key-value metadata.
	Context map[string]string
}

// Error implements the error interface.
func (e *CategorizedError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("[%s/%s] (no error)", e.Severity, e.Category)
	}
	return fmt.Sprintf("[%s/%s] %s", e.Severity, e.Category, e.Err.Error())
}

// Unwrap returns the underlying error for errors.Is/As support.
func (e *CategorizedError) Unwrap() error {
	return e.Err
}

// IsRetryable reports whether running again without changing the script
// may succeed. Script and geometry errors repeat until the script is
// edited; I/O, watcher and export failures may be transient.
func (e *CategorizedError) IsRetryable() bool {
	switch e.Category {
	case ErrorCategoryIO, ErrorCategoryWatch, ErrorCategoryExport:
		return true
	default:
		return false
	}
}

// NewCategorizedError creates a new CategorizedError with the given parameters.
func NewCategorizedError(err error, category ErrorCategory, severity ErrorSeverity) *CategorizedError {
	return &CategorizedError{
		Err:       err,
		Category:  category,
		Severity:  severity,
		Timestamp: time.Now(),
		Context:   make(map[string]string),
	}
}

// WithContext adds a key-value pair to the error context and returns the error.
func (e *CategorizedError) WithContext(key, value string) *CategorizedError {
	if e.Context == nil {
		e.Context = make(map[string]string)
	}
	e.Context[key] = value
	return e
}

// IsRetryable reports whether err, or a CategorizedError it wraps, is
// retryable. Uncategorized errors are not.
func IsRetryable(err error) bool {
	var ce *CategorizedError
	if errors.As(err, &ce) {
		return ce.IsRetryable()
	}
	return false
}

// classifyRunError categorizes an error returned by a script run.
func classifyRunError(err error) *CategorizedError {
	var ce *CategorizedError
	if errors.As(err, &ce) {
		return ce
	}
	var pe *fs.PathError
	switch {
	case sketch.IsFatal(err):
		return NewCategorizedError(err, ErrorCategoryGeometry, SeverityError)
	case errors.As(err, &pe):
		return NewCategorizedError(err, ErrorCategoryIO, SeverityError)
	default:
		return NewCategorizedError(err, ErrorCategoryScript, SeverityError)
	}
}

// AlertCondition defines when an alert should be triggered.
type AlertCondition struct {
	// Category filters alerts to a specific error category.
	// Use ErrorCategoryUnknown to match all categories.
	Category ErrorCategory
	// MinSeverity is the minimum severity level to trigger the alert.
	MinSeverity ErrorSeverity
	// Threshold is the number of errors within the window to trigger.
	Threshold int
	// Window is the time window for counting errors.
	Window time.Duration
}

// matches reports whether e counts towards the condition.
func (c AlertCondition) matches(e CategorizedError, cutoff time.Time) bool {
	if e.Timestamp.Before(cutoff) || e.Severity < c.MinSeverity {
		return false
	}
	return c.Category == ErrorCategoryUnknown || e.Category == c.Category
}

// AlertHandler is called when an alert condition is met, with up to ten
// of the matching errors. Implementations must not block.
type AlertHandler func(condition AlertCondition, errorCount int, recentErrors []CategorizedError)

// ErrorTracker keeps a window of recent errors and checks alert
// conditions against it. Safe for concurrent use.
type ErrorTracker struct {
	mu            sync.RWMutex
	errors        []CategorizedError
	maxErrors     int
	retentionTime time.Duration
	conditions    []AlertCondition
	handlers      []AlertHandler
	lastAlert     map[int]time.Time
	alertCooldown time.Duration

	totals [numCategories]atomic.Int64
}

// ErrorTrackerConfig configures an ErrorTracker.
type ErrorTrackerConfig struct {
	// MaxErrors is the maximum number of errors to retain (default: 500).
	MaxErrors int
	// RetentionTime is how long to retain errors (default: 1 hour).
	RetentionTime time.Duration
	// AlertCooldown is the minimum time between repeated alerts for one
	// condition (default: 1 minute).
	AlertCooldown time.Duration
}

// DefaultErrorTrackerConfig returns a configuration with sensible defaults.
func DefaultErrorTrackerConfig() ErrorTrackerConfig {
	return ErrorTrackerConfig{
		MaxErrors:     500,
		RetentionTime: time.Hour,
		AlertCooldown: time.Minute,
	}
}

// NewErrorTracker creates a new ErrorTracker. Zero fields take defaults.
func NewErrorTracker(cfg ErrorTrackerConfig) *ErrorTracker {
	def := DefaultErrorTrackerConfig()
	if cfg.MaxErrors <= 0 {
		cfg.MaxErrors = def.MaxErrors
	}
	if cfg.RetentionTime <= 0 {
		cfg.RetentionTime = def.RetentionTime
	}
	if cfg.AlertCooldown <= 0 {
		cfg.AlertCooldown = def.AlertCooldown
	}

	return &ErrorTracker{
		errors:        make([]CategorizedError, 0, cfg.MaxErrors),
		maxErrors:     cfg.MaxErrors,
		retentionTime: cfg.RetentionTime,
		lastAlert:     make(map[int]time.Time),
		alertCooldown: cfg.AlertCooldown,
	}
}

// AddCondition registers an alert condition to monitor.
func (t *ErrorTracker) AddCondition(cond AlertCondition) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.conditions = append(t.conditions, cond)
}

// SetAlertHandler adds a handler for all alert conditions.
func (t *ErrorTracker) SetAlertHandler(handler AlertHandler) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.handlers = append(t.handlers, handler)
}

// Record adds an error to the tracker and checks alert conditions.
func (t *ErrorTracker) Record(err *CategorizedError) {
	if err == nil {
		return
	}
	if err.Category >= 0 && err.Category < numCategories {
		t.totals[err.Category].Add(1)
	}

	t.mu.Lock()
	t.errors = append(t.errors, *err)
	if len(t.errors) > t.maxErrors {
		t.errors = t.errors[len(t.errors)-t.maxErrors:]
	}
	t.pruneExpired(time.Now())
	conditions := append([]AlertCondition(nil), t.conditions...)
	handlers := append([]AlertHandler(nil), t.handlers...)
	t.mu.Unlock()

	for i, cond := range conditions {
		t.checkCondition(i, cond, handlers)
	}
}

// pruneExpired drops errors older than the retention time.
// Must be called with mu held.
func (t *ErrorTracker) pruneExpired(now time.Time) {
	cutoff := now.Add(-t.retentionTime)
	start := 0
	for start < len(t.errors) && !t.errors[start].Timestamp.After(cutoff) {
		start++
	}
	if start > 0 {
		t.errors = t.errors[start:]
	}
}

func (t *ErrorTracker) checkCondition(index int, cond AlertCondition, handlers []AlertHandler) {
	now := time.Now()
	cutoff := now.Add(-cond.Window)

	t.mu.Lock()
	if last, ok := t.lastAlert[index]; ok && now.Sub(last) < t.alertCooldown {
		t.mu.Unlock()
		return
	}
	var count int
	var matching []CategorizedError
	for _, e := range t.errors {
		if !cond.matches(e, cutoff) {
			continue
		}
		count++
		if len(matching) < 10 {
			matching = append(matching, e)
		}
	}
	if count < cond.Threshold {
		t.mu.Unlock()
		return
	}
	t.lastAlert[index] = now
	t.mu.Unlock()

	for _, handler := range handlers {
		go func(h AlertHandler) {
			defer func() {
				_ = recover()
			}()
			h(cond, count, matching)
		}(handler)
	}
}

// ErrorRate returns the retained errors per second within window.
func (t *ErrorTracker) ErrorRate(window time.Duration) float64 {
	if window <= 0 {
		return 0
	}

	t.mu.RLock()
	defer t.mu.RUnlock()

	cutoff := time.Now().Add(-window)
	count := 0
	for _, e := range t.errors {
		if e.Timestamp.After(cutoff) {
			count++
		}
	}
	return float64(count) / window.Seconds()
}

// Stats returns a snapshot of error statistics.
func (t *ErrorTracker) Stats() ErrorStats {
	t.mu.RLock()
	defer t.mu.RUnlock()

	stats := ErrorStats{
		TotalErrors:      len(t.errors),
		ErrorsByCategory: make(map[ErrorCategory]int),
		ErrorsBySeverity: make(map[ErrorSeverity]int),
		TotalByCategory:  make(map[ErrorCategory]int64),
	}
	for _, e := range t.errors {
		stats.ErrorsByCategory[e.Category]++
		stats.ErrorsBySeverity[e.Severity]++
	}
	for i := range t.totals {
		if n := t.totals[i].Load(); n > 0 {
			stats.TotalByCategory[ErrorCategory(i)] = n
		}
	}
	return stats
}

// RecentErrors returns the most recent errors, up to limit.
func (t *ErrorTracker) RecentErrors(limit int) []CategorizedError {
	t.mu.RLock()
	defer t.mu.RUnlock()

	if limit <= 0 || len(t.errors) == 0 {
		return nil
	}
	start := max(len(t.errors)-limit, 0)
	result := make([]CategorizedError, len(t.errors)-start)
	copy(result, t.errors[start:])
	return result
}

// Clear removes all retained errors. Lifetime totals are kept.
func (t *ErrorTracker) Clear() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.errors = t.errors[:0]
	t.lastAlert = make(map[int]time.Time)
}

// ErrorStats summarizes tracked errors.
type ErrorStats struct {
	// TotalErrors is the number of errors currently retained.
	TotalErrors int
	// ErrorsByCategory counts retained errors by category.
	ErrorsByCategory map[ErrorCategory]int
	// ErrorsBySeverity counts retained errors by severity.
	ErrorsBySeverity map[ErrorSeverity]int
	// TotalByCategory holds lifetime totals for categories that have
	// recorded at least one error.
	TotalByCategory map[ErrorCategory]int64
}

var (
	defaultErrorTracker     *ErrorTracker
	defaultErrorTrackerOnce sync.Once
)

// DefaultErrorTracker returns the process-wide ErrorTracker.
func DefaultErrorTracker() *ErrorTracker {
	defaultErrorTrackerOnce.Do(func() {
		defaultErrorTracker = NewErrorTracker(DefaultErrorTrackerConfig())
	})
	return defaultErrorTracker
}

package pagesketch

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"sync"
	"sync/atomic"
	"time"

	"github.com/opd-ai/go-pagesketch/internal/config"
	"github.com/opd-ai/go-pagesketch/internal/document"
	"github.com/opd-ai/go-pagesketch/internal/export"
	"github.com/opd-ai/go-pagesketch/internal/lua"
	"github.com/opd-ai/go-pagesketch/internal/profiling"
	"github.com/opd-ai/go-pagesketch/internal/sketch"
)

// frameSink receives the document after every frame. The preview window
// is the only implementation.
type frameSink interface {
	Show(snap document.Snapshot, page int) error
}

// sketchImpl is the private implementation of the Sketch interface.
type sketchImpl struct {
	cfg  *config.Config
	opts Options
	src  sources

	metrics *Metrics
	tracker *ErrorTracker
	logger  Logger
	monitor *profiling.ReloadMonitor

	running     atomic.Bool
	watching    atomic.Bool
	previewing  atomic.Bool
	runs        atomic.Uint64
	frames      atomic.Uint64
	items       atomic.Int64
	lastRunTime atomic.Int64
	lastError   atomic.Value

	startTime time.Time
	last      *document.Snapshot
	lastPage  int
	sink      frameSink
	reloadCh  chan struct{}
	runCancel context.CancelFunc

	errorHandler ErrorHandler
	eventHandler EventHandler

	mu sync.RWMutex
}

// Verify interface implementation at compile time.
var _ Sketch = (*sketchImpl)(nil)

// Run executes the script until it finishes, or until ctx is cancelled
// when the sketch stays open for a preview or file watching.
func (s *sketchImpl) Run(ctx context.Context) error {
	if !s.running.CompareAndSwap(false, true) {
		return ErrAlreadyRunning
	}
	defer s.running.Store(false)

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	s.mu.Lock()
	s.startTime = time.Now()
	s.reloadCh = make(chan struct{}, 1)
	preview := s.cfg.Preview.Enabled
	s.mu.Unlock()

	s.metrics.SetRunning(true)
	defer s.metrics.SetRunning(false)
	s.emitEvent(EventStarted, "sketch started: "+s.src.script, "")

	if s.opts.Watch {
		if w := s.startWatcher(); w != nil {
			defer func() {
				w.Stop()
				s.watching.Store(false)
			}()
		}
	}

	stay := preview || s.watching.Load()
	done := make(chan error, 1)
	go func() {
		done <- s.loop(ctx, stay)
	}()

	var err error
	if preview {
		s.previewing.Store(true)
		if perr := s.runPreview(ctx); perr != nil {
			err = fmt.Errorf("preview: %w", perr)
			s.notifyError(NewCategorizedError(err, ErrorCategoryPreview, SeverityCritical))
		}
		s.previewing.Store(false)
		// Closing the window ends the sketch.
		cancel()
	}
	if lerr := <-done; err == nil {
		err = lerr
	}

	s.emitEvent(EventStopped, "sketch stopped", "")
	return err
}

// loop runs the sketch, then waits for reloads while stay is set.
func (s *sketchImpl) loop(ctx context.Context, stay bool) error {
	var lastErr error
	reloaded := false
	for {
		cfg := s.config()
		if reloaded {
			next, err := loadConfig(s.src.configLoader, s.opts)
			if err != nil {
				s.notifyError(NewCategorizedError(err, ErrorCategoryConfig, SeverityError))
			} else {
				cfg = next
				s.mu.Lock()
				s.cfg = next
				s.mu.Unlock()
			}
		}

		lastErr = s.runOnce(ctx, cfg, reloaded)

		// A reload that arrived during the run replaces it, even when the
		// sketch would otherwise be done.
		select {
		case <-s.reloadCh:
			reloaded = true
			continue
		default:
		}
		if !stay {
			return lastErr
		}
		select {
		case <-ctx.Done():
			return lastErr
		case <-s.reloadCh:
			reloaded = true
		}
	}
}

// runOnce builds a fresh document and runtime, runs the script and
// exports the result.
func (s *sketchImpl) runOnce(parent context.Context, cfg *config.Config, reloaded bool) error {
	start := time.Now()
	ctx, cancel := context.WithCancel(WithRunID(parent, ""))
	run := RunIDFromContext(ctx)
	log := newRunLogger(ctx, s.logger)

	s.mu.Lock()
	s.runCancel = cancel
	s.mu.Unlock()
	defer func() {
		cancel()
		s.mu.Lock()
		s.runCancel = nil
		s.mu.Unlock()
	}()

	s.frames.Store(0)
	if reloaded {
		s.metrics.IncrementReloads()
		s.emitEvent(EventReloaded, "sketch reloaded", run)
	}
	log.Info("run started", "script", s.src.script)

	doc, err := document.New(cfg.Document.Settings())
	if err != nil {
		err = fmt.Errorf("document setup: %w", err)
		s.notifyError(NewCategorizedError(err, ErrorCategoryConfig, SeverityError))
		return err
	}

	err = s.execute(ctx, cfg, doc, log)
	snap := doc.Snapshot()
	items := countItems(snap)
	s.items.Store(int64(items))
	s.keep(snap)

	interrupted := ctx.Err() != nil && parent.Err() == nil
	switch {
	case err != nil:
		s.reportScriptError(err, run)
	case interrupted:
		log.Debug("run interrupted by reload")
	case cfg.Output.Path != "":
		if xerr := s.export(snap, cfg, cfg.Output.Path, run); xerr != nil {
			err = xerr
		}
	}

	d := time.Since(start)
	s.metrics.RecordRun(d, items)
	s.runs.Add(1)
	s.lastRunTime.Store(int64(d))
	log.Info("run finished", "duration", d, "frames", s.frames.Load(), "items", items)

	if growth := s.monitor.RecordRun(); growth != nil {
		if growth.PotentialLeak {
			log.Warn("memory keeps growing across runs", "growth", growth.String())
		} else {
			log.Debug("memory across runs", "growth", growth.String())
		}
	}
	return err
}

// execute runs the script body and its hooks against doc.
func (s *sketchImpl) execute(ctx context.Context, cfg *config.Config, doc *document.Document, log *runLogger) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("script panicked: %v", r)
		}
	}()

	out := s.stdout()
	session, err := sketch.NewSession(doc, sketch.Options{
		Output:      out,
		Logger:      log,
		Assets:      s.src.assets(cfg),
		Sleep:       sleeper(ctx),
		CanvasMode:  cfg.Sketch.CanvasMode,
		RectMode:    cfg.Sketch.RectMode,
		EllipseMode: cfg.Sketch.EllipseMode,
		ImageMode:   cfg.Sketch.ImageMode,
	})
	if err != nil {
		return err
	}

	runtime, err := lua.New(lua.RuntimeConfig{
		CPULimit:    cfg.Sketch.CPULimit,
		MemoryLimit: cfg.Sketch.MemoryLimit,
		Stdout:      out,
	})
	if err != nil {
		return err
	}
	defer runtime.Close()

	bindings, err := lua.NewBindings(runtime, session)
	if err != nil {
		return err
	}

	closure, err := s.src.scriptLoader(runtime)
	if err != nil {
		return err
	}
	if _, err := runtime.Execute(closure); err != nil {
		return scriptError(bindings, err)
	}

	hooks, err := lua.NewHookManager(runtime)
	if err != nil {
		return err
	}
	found := hooks.AutoRegisterHooks()
	log.Debug("hooks registered", "hooks", fmt.Sprint(found))

	f := frameRunner{s: s, hooks: hooks, bindings: bindings, session: session, run: RunIDFromContext(ctx)}
	if err := f.call(lua.HookSetup); err != nil {
		return err
	}
	if err := f.call(lua.HookDraw); err != nil {
		return err
	}
	if !bindings.Looping() || !hooks.IsRegistered(lua.HookDraw) {
		return nil
	}

	fps := frameRate(bindings.FrameRate(), cfg.Sketch.FrameRate)
	ticker := time.NewTicker(frameInterval(fps))
	defer ticker.Stop()
	log.Debug("looping", "fps", fps)

	for bindings.Looping() {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
		}
		if err := f.call(lua.HookDraw); err != nil {
			return err
		}
		if next := frameRate(bindings.FrameRate(), cfg.Sketch.FrameRate); next != fps {
			fps = next
			ticker.Reset(frameInterval(fps))
		}
	}
	return nil
}

// frameRunner calls one hook and publishes the frame it drew.
type frameRunner struct {
	s        *sketchImpl
	hooks    *lua.HookManager
	bindings *lua.Bindings
	session  *sketch.Session
	run      RunID
}

func (f frameRunner) call(hook lua.HookType) error {
	if !f.hooks.IsRegistered(hook) {
		return nil
	}
	start := time.Now()
	if _, err := f.hooks.Call(hook); err != nil {
		return scriptError(f.bindings, err)
	}
	f.s.metrics.RecordFrame(time.Since(start))
	n := f.s.frames.Add(1)
	f.s.publish(f.session)
	f.s.emitEvent(EventFrame, fmt.Sprintf("%s #%d", hook, n), f.run)
	return nil
}

// scriptError prefers the typed sketch error recorded by the bindings
// over the Lua error that carried it.
func scriptError(b *lua.Bindings, err error) error {
	if typed := b.TakeError(); typed != nil {
		return typed
	}
	return err
}

// frameRate is the script's requested rate capped by the configured one.
func frameRate(requested, limit float64) float64 {
	if limit > 0 && (requested <= 0 || requested > limit) {
		return limit
	}
	if requested <= 0 {
		return lua.DefaultFrameRate
	}
	return requested
}

func frameInterval(fps float64) time.Duration {
	return time.Duration(float64(time.Second) / fps)
}

// sleeper implements delay() so that it returns early when ctx ends.
func sleeper(ctx context.Context) func(time.Duration) {
	return func(d time.Duration) {
		t := time.NewTimer(d)
		defer t.Stop()
		select {
		case <-t.C:
		case <-ctx.Done():
		}
	}
}

func countItems(snap document.Snapshot) int {
	n := 0
	for _, p := range snap.Pages {
		n += len(p.Items)
	}
	return n
}

// publish hands the current page to the preview, if one is open.
func (s *sketchImpl) publish(session *sketch.Session) {
	s.mu.Lock()
	sink := s.sink
	s.lastPage = session.PageNumber() - 1
	page := s.lastPage
	s.mu.Unlock()
	if sink == nil {
		return
	}
	if err := sink.Show(session.Document().Snapshot(), page); err != nil {
		s.logger.Debug("preview skipped frame", "error", err)
	}
}

// keep stores the finished document for Export and the preview.
func (s *sketchImpl) keep(snap document.Snapshot) {
	s.mu.Lock()
	s.last = &snap
	sink, page := s.sink, s.lastPage
	s.mu.Unlock()
	if sink != nil {
		_ = sink.Show(snap, page)
	}
}

// attach connects a preview and shows it the last finished document.
func (s *sketchImpl) attach(sink frameSink) {
	s.mu.Lock()
	s.sink = sink
	last, page := s.last, s.lastPage
	s.mu.Unlock()
	if sink != nil && last != nil {
		_ = sink.Show(*last, page)
	}
}

func (s *sketchImpl) export(snap document.Snapshot, cfg *config.Config, path string, run RunID) error {
	format := ""
	if cfg.Output.Format != config.FormatAuto {
		format = cfg.Output.Format.String()
	}
	start := time.Now()
	err := export.Export(snap, path, export.Options{
		Format:  format,
		Spreads: cfg.Output.Spreads,
		Assets:  s.src.assets(cfg),
		Title:   s.src.script,
	})
	if err != nil {
		cat := ErrorCategoryExport
		if errors.Is(err, export.ErrUnknownFormat) {
			cat = ErrorCategoryConfig
		}
		s.notifyError(NewCategorizedError(err, cat, SeverityError).WithContext("path", path))
		return err
	}
	s.metrics.RecordExport(time.Since(start))
	s.emitEvent(EventExported, "exported "+path, run)
	return nil
}

// Export writes the last finished document to path.
func (s *sketchImpl) Export(path string) error {
	s.mu.RLock()
	last := s.last
	cfg := s.cfg
	s.mu.RUnlock()
	if last == nil {
		return ErrNoDocument
	}
	return s.export(*last, cfg, path, "")
}

// Reload interrupts the current run and starts a new one.
func (s *sketchImpl) Reload() error {
	if !s.running.Load() {
		return ErrNotRunning
	}
	s.mu.RLock()
	ch, cancel := s.reloadCh, s.runCancel
	s.mu.RUnlock()

	select {
	case ch <- struct{}{}:
	default:
	}
	if cancel != nil {
		cancel()
	}
	return nil
}

func (s *sketchImpl) startWatcher() *fileWatcher {
	if len(s.src.watch) == 0 {
		s.logger.Warn("nothing to watch", "script", s.src.script)
		return nil
	}
	w, err := newFileWatcher(s.src.watch, s.opts.WatchDebounce,
		func(path string) {
			s.logger.Info("file changed", "path", path)
			if err := s.Reload(); err != nil {
				s.logger.Debug("reload skipped", "error", err)
			}
		},
		func(err error) {
			s.notifyError(NewCategorizedError(err, ErrorCategoryWatch, SeverityWarning))
		})
	if err != nil {
		s.notifyError(NewCategorizedError(fmt.Errorf("watch: %w", err), ErrorCategoryWatch, SeverityError))
		return nil
	}
	w.Start()
	s.watching.Store(true)
	return w
}

// reportScriptError shows err to the script author and records it.
func (s *sketchImpl) reportScriptError(err error, run RunID) {
	fmt.Fprintln(s.stderr(), sketch.FormatError(err))
	s.metrics.IncrementScriptErrors()
	s.notifyError(classifyRunError(err).WithContext("run", string(run)))
}

func (s *sketchImpl) config() *config.Config {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.cfg
}

func (s *sketchImpl) stdout() io.Writer {
	if s.opts.Stdout != nil {
		return s.opts.Stdout
	}
	return os.Stdout
}

func (s *sketchImpl) stderr() io.Writer {
	if s.opts.Stderr != nil {
		return s.opts.Stderr
	}
	return os.Stderr
}

// IsRunning returns true while Run is active.
func (s *sketchImpl) IsRunning() bool {
	return s.running.Load()
}

// Status returns detailed status information.
func (s *sketchImpl) Status() Status {
	s.mu.RLock()
	startTime := s.startTime
	s.mu.RUnlock()

	return Status{
		Running:         s.running.Load(),
		StartTime:       startTime,
		Runs:            s.runs.Load(),
		Frames:          s.frames.Load(),
		Items:           int(s.items.Load()),
		LastRunDuration: time.Duration(s.lastRunTime.Load()),
		LastError:       s.getError(),
		ScriptSource:    s.src.script,
		ConfigSource:    s.src.config,
	}
}

// Health reports the state of the sketch, watcher, preview and errors.
func (s *sketchImpl) Health() HealthCheck {
	now := time.Now()
	running := s.running.Load()
	lastErr := s.getError()

	s.mu.RLock()
	var uptime time.Duration
	if running && !s.startTime.IsZero() {
		uptime = now.Sub(s.startTime)
	}
	s.mu.RUnlock()

	components := map[string]ComponentHealth{
		"sketch":  {Status: HealthUnhealthy, Message: "not running"},
		"watcher": {Status: HealthOK, Message: "disabled"},
		"preview": {Status: HealthOK, Message: "disabled"},
		"errors":  {Status: HealthOK, Message: "no recent errors"},
	}
	if running {
		components["sketch"] = ComponentHealth{Status: HealthOK,
			Message: fmt.Sprintf("%d runs, %d frames in current run", s.runs.Load(), s.frames.Load())}
	}
	if s.opts.Watch {
		if s.watching.Load() {
			components["watcher"] = ComponentHealth{Status: HealthOK, Message: "watching"}
		} else {
			components["watcher"] = ComponentHealth{Status: HealthDegraded, Message: "not watching"}
		}
	}
	if s.config().Preview.Enabled {
		if s.previewing.Load() {
			components["preview"] = ComponentHealth{Status: HealthOK, Message: "open"}
		} else {
			components["preview"] = ComponentHealth{Status: HealthDegraded, Message: "closed"}
		}
	}
	if lastErr != nil {
		components["errors"] = ComponentHealth{Status: HealthDegraded, Message: lastErr.Error()}
	}

	check := HealthCheck{
		Status:     HealthOK,
		Timestamp:  now,
		Uptime:     uptime,
		Components: components,
		Message:    "all components healthy",
	}
	switch {
	case !running:
		check.Status = HealthUnhealthy
		check.Message = "sketch is not running"
	case lastErr != nil:
		check.Status = HealthDegraded
		check.Message = "running with recent errors"
	}
	return check
}

// Metrics returns the metrics collector for this sketch.
func (s *sketchImpl) Metrics() *Metrics {
	return s.metrics
}

// SetErrorHandler registers a callback for runtime errors.
func (s *sketchImpl) SetErrorHandler(handler ErrorHandler) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.errorHandler = handler
}

// SetEventHandler registers a callback for lifecycle events.
func (s *sketchImpl) SetEventHandler(handler EventHandler) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.eventHandler = handler
}

func (s *sketchImpl) getError() error {
	if v := s.lastError.Load(); v != nil {
		if err, ok := v.(error); ok {
			return err
		}
	}
	return nil
}

// notifyError stores err, records it and invokes the error handler.
func (s *sketchImpl) notifyError(err *CategorizedError) {
	s.lastError.Store(error(err))
	s.metrics.IncrementErrors()
	s.tracker.Record(err)
	switch err.Category {
	case ErrorCategoryScript, ErrorCategoryGeometry:
		// Already printed on stderr for the script author.
		s.logger.Debug("script error", "category", err.Category.String(), "error", err.Err)
	default:
		s.logger.Error("sketch error", "category", err.Category.String(), "error", err.Err)
	}

	s.mu.RLock()
	handler := s.errorHandler
	s.mu.RUnlock()

	if handler != nil {
		go func() {
			defer func() {
				if r := recover(); r != nil {
					s.logger.Error("error handler panicked", "panic", r, "original_error", err)
				}
			}()
			handler(err)
		}()
	}

	s.emitEvent(EventError, err.Error(), RunID(err.Context["run"]))
}

// emitEvent sends an event to the event handler if configured.
func (s *sketchImpl) emitEvent(eventType EventType, message string, run RunID) {
	s.metrics.IncrementEventsEmitted()

	s.mu.RLock()
	handler := s.eventHandler
	s.mu.RUnlock()

	if handler == nil {
		return
	}
	go func() {
		defer func() {
			if r := recover(); r != nil {
				s.logger.Error("event handler panicked", "panic", r, "event", eventType.String())
			}
		}()
		handler(Event{
			Type:      eventType,
			Timestamp: time.Now(),
			Message:   message,
			Run:       run,
		})
	}()
}

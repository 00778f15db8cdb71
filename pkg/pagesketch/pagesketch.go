package pagesketch

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path"
	"path/filepath"

	rt "github.com/arnodel/golua/runtime"

	"github.com/opd-ai/go-pagesketch/internal/config"
	"github.com/opd-ai/go-pagesketch/internal/layout"
	"github.com/opd-ai/go-pagesketch/internal/lua"
	"github.com/opd-ai/go-pagesketch/internal/profiling"
)

// Errors returned by the lifecycle methods.
var (
	ErrAlreadyRunning = errors.New("sketch is already running")
	ErrNotRunning     = errors.New("sketch is not running")
	ErrNoScript       = errors.New("no script given and none configured")
	ErrNoDocument     = errors.New("no finished document to export")
)

// Sketch is a pagesketch script bound to its configuration. Its methods
// are safe for concurrent use; Run itself may only be active once.
type Sketch interface {
	// Run executes the script and blocks until it finishes. With a
	// preview window or file watching, Run keeps going until ctx is
	// cancelled or the window is closed. It returns the error of the last
	// run; cancellation is not an error.
	Run(ctx context.Context) error

	// Reload interrupts the current run and starts a new one with the
	// script and configuration re-read from their source.
	Reload() error

	// Export writes the document of the last finished run to path, in
	// the configured format or the one implied by the extension.
	Export(path string) error

	// IsRunning returns true while Run is active.
	IsRunning() bool

	// Status returns detailed status information.
	Status() Status

	// Health returns a health check result for monitoring.
	Health() HealthCheck

	// SetErrorHandler registers a callback for runtime errors. Panics in
	// the handler are recovered.
	SetErrorHandler(handler ErrorHandler)

	// SetEventHandler registers a callback for lifecycle events.
	SetEventHandler(handler EventHandler)

	// Metrics returns the metrics collector for this sketch.
	Metrics() *Metrics
}

// New creates a Sketch for the script at scriptPath. An empty scriptPath
// uses the script named by the configuration file. The sketch is not
// started; call Run.
//
// Example:
//
//	s, err := pagesketch.New("grid.lua", &pagesketch.Options{
//		ConfigPath: "a5.toml",
//		Output:     "grid.pdf",
//	})
//	if err != nil {
//		log.Fatal(err)
//	}
//	err = s.Run(ctx)
func New(scriptPath string, opts *Options) (Sketch, error) {
	o := resolveOptions(opts)

	loader := func() (*config.Config, error) {
		if o.ConfigPath == "" {
			cfg := config.DefaultConfig()
			return &cfg, nil
		}
		p, err := config.NewParser()
		if err != nil {
			return nil, err
		}
		defer p.Close()
		return p.ParseFile(o.ConfigPath)
	}
	cfg, err := loadConfig(loader, o)
	if err != nil {
		return nil, err
	}

	if scriptPath == "" {
		scriptPath = cfg.Sketch.Script
	}
	if scriptPath == "" {
		return nil, ErrNoScript
	}
	if _, err := os.Stat(scriptPath); err != nil {
		return nil, fmt.Errorf("script: %w", err)
	}

	watch := []string{scriptPath}
	if o.ConfigPath != "" {
		watch = append(watch, o.ConfigPath)
	}
	return newSketch(cfg, o, sources{
		script:       scriptPath,
		config:       o.ConfigPath,
		configLoader: loader,
		scriptLoader: func(r *lua.SketchRuntime) (*rt.Closure, error) {
			return r.LoadFile(scriptPath)
		},
		assets: func(cfg *config.Config) fs.FS {
			if cfg.Sketch.Assets != "" {
				return os.DirFS(cfg.Sketch.Assets)
			}
			return os.DirFS(filepath.Dir(scriptPath))
		},
		watch: watch,
	}), nil
}

// NewFromFS creates a Sketch whose script, configuration and images come
// from fsys. Options.ConfigPath, when set, is a path inside fsys.
// Watching is not available for an fs.FS.
//
// Example:
//
//	//go:embed sketches/*
//	var sketches embed.FS
//
//	s, err := pagesketch.NewFromFS(sketches, "sketches/cover.lua", nil)
func NewFromFS(fsys fs.FS, scriptPath string, opts *Options) (Sketch, error) {
	o := resolveOptions(opts)

	loader := func() (*config.Config, error) {
		if o.ConfigPath == "" {
			cfg := config.DefaultConfig()
			return &cfg, nil
		}
		p, err := config.NewParser()
		if err != nil {
			return nil, err
		}
		defer p.Close()
		return p.ParseFromFS(fsys, o.ConfigPath)
	}
	cfg, err := loadConfig(loader, o)
	if err != nil {
		return nil, err
	}
	if _, err := fs.Stat(fsys, scriptPath); err != nil {
		return nil, fmt.Errorf("script: %w", err)
	}

	configSource := ""
	if o.ConfigPath != "" {
		configSource = "embedded:" + o.ConfigPath
	}
	return newSketch(cfg, o, sources{
		script:       "embedded:" + scriptPath,
		config:       configSource,
		configLoader: loader,
		scriptLoader: func(r *lua.SketchRuntime) (*rt.Closure, error) {
			return r.LoadFileFromFS(fsys, scriptPath)
		},
		assets: func(cfg *config.Config) fs.FS {
			dir := path.Dir(scriptPath)
			if cfg.Sketch.Assets != "" {
				dir = cfg.Sketch.Assets
			}
			sub, err := fs.Sub(fsys, dir)
			if err != nil {
				return fsys
			}
			return sub
		},
	}), nil
}

// NewFromReader creates a Sketch from script source read from r. The
// content is read once; reloads re-run the same source with the
// configuration re-read. Images resolve against Options.Assets, the
// configured assets directory, or the working directory.
//
// Example:
//
//	s, err := pagesketch.NewFromReader(strings.NewReader(`
//		function draw()
//			rect(10, 10, 100, 50)
//		end
//	`), nil)
func NewFromReader(r io.Reader, opts *Options) (Sketch, error) {
	o := resolveOptions(opts)

	content, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read script: %w", err)
	}

	loader := func() (*config.Config, error) {
		if o.ConfigPath == "" {
			cfg := config.DefaultConfig()
			return &cfg, nil
		}
		p, err := config.NewParser()
		if err != nil {
			return nil, err
		}
		defer p.Close()
		return p.ParseFile(o.ConfigPath)
	}
	cfg, err := loadConfig(loader, o)
	if err != nil {
		return nil, err
	}

	var watch []string
	if o.ConfigPath != "" {
		watch = []string{o.ConfigPath}
	}
	return newSketch(cfg, o, sources{
		script:       "reader",
		config:       o.ConfigPath,
		configLoader: loader,
		scriptLoader: func(r *lua.SketchRuntime) (*rt.Closure, error) {
			return r.LoadString("sketch", string(bytes.Clone(content)))
		},
		assets: func(cfg *config.Config) fs.FS {
			if cfg.Sketch.Assets != "" {
				return os.DirFS(cfg.Sketch.Assets)
			}
			return os.DirFS(".")
		},
		watch: watch,
	}), nil
}

// sources describes where a sketch reads its inputs from.
type sources struct {
	script       string
	config       string
	configLoader func() (*config.Config, error)
	scriptLoader func(*lua.SketchRuntime) (*rt.Closure, error)
	assets       func(*config.Config) fs.FS
	watch        []string
}

func resolveOptions(opts *Options) Options {
	if opts == nil {
		return DefaultOptions()
	}
	return *opts
}

// loadConfig loads the configuration, applies the option overrides and
// validates the result.
func loadConfig(loader func() (*config.Config, error), o Options) (*config.Config, error) {
	cfg, err := loader()
	if err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	if err := applyOverrides(cfg, o); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

func applyOverrides(cfg *config.Config, o Options) error {
	if o.CanvasMode != "" {
		mode, err := layout.ParseCanvasMode(o.CanvasMode)
		if err != nil {
			return err
		}
		cfg.Sketch.CanvasMode = mode
	}
	if o.Output != "" {
		cfg.Output.Path = o.Output
	}
	if o.Format != "" {
		f, err := config.ParseOutputFormat(o.Format)
		if err != nil {
			return err
		}
		cfg.Output.Format = f
	}
	if o.Preview {
		cfg.Preview.Enabled = true
	}
	if o.LuaCPULimit > 0 {
		cfg.Sketch.CPULimit = o.LuaCPULimit
	}
	if o.LuaMemoryLimit > 0 {
		cfg.Sketch.MemoryLimit = o.LuaMemoryLimit
	}
	return nil
}

func newSketch(cfg *config.Config, o Options, src sources) *sketchImpl {
	s := &sketchImpl{
		cfg:     cfg,
		opts:    o,
		src:     src,
		metrics: o.Metrics,
		tracker: o.ErrorTracker,
		logger:  o.Logger,
		monitor: profiling.NewReloadMonitor(profiling.DefaultReloadMonitorConfig()),
	}
	if s.metrics == nil {
		s.metrics = DefaultMetrics()
	}
	if s.tracker == nil {
		s.tracker = DefaultErrorTracker()
	}
	if s.logger == nil {
		s.logger = NopLogger()
	}
	if o.Assets != nil {
		s.src.assets = func(*config.Config) fs.FS { return o.Assets }
	}
	return s
}

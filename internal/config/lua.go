// Package config provides configuration parsing for pagesketch.
// This file implements the Lua configuration parser.

package config

import (
	"fmt"
	"io"
	"os"
	"strings"
	"sync"

	"github.com/arnodel/golua/lib"
	rt "github.com/arnodel/golua/runtime"
)

// LuaConfigParser parses Lua configuration files. The file assigns a flat
// table to sketch.config:
//
//	sketch.config = {
//	    page_width = 420,
//	    page_height = 595,
//	    margin = { top = 36, left = 48, bottom = 36, right = 36 },
//	    bleed = 9,
//	    canvas_mode = 'margin',
//	    output = 'poster.pdf',
//	}
type LuaConfigParser struct {
	runtime *rt.Runtime
	cleanup func()
	mu      sync.Mutex
}

// NewLuaConfigParser creates a new LuaConfigParser with a fresh Lua runtime.
func NewLuaConfigParser() (*LuaConfigParser, error) {
	return NewLuaConfigParserWithOutput(io.Discard)
}

// NewLuaConfigParserWithOutput creates a LuaConfigParser with custom output.
func NewLuaConfigParserWithOutput(stdout io.Writer) (*LuaConfigParser, error) {
	if stdout == nil {
		stdout = os.Stdout
	}

	runtime := rt.New(stdout)
	cleanup := lib.LoadAll(runtime)

	return &LuaConfigParser{
		runtime: runtime,
		cleanup: cleanup,
	}, nil
}

// Parse parses a Lua configuration from content bytes.
func (p *LuaConfigParser) Parse(content []byte) (cfg *Config, err error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.initSketchGlobal()

	closure, err := p.runtime.CompileAndLoadLuaChunk(
		"config",
		content,
		rt.TableValue(p.runtime.GlobalEnv()),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to compile Lua configuration: %w", err)
	}

	ctx := rt.RuntimeContextDef{
		HardLimits: rt.RuntimeResources{
			Cpu:    10_000_000,
			Memory: 50 * 1024 * 1024, // 50 MB
		},
	}
	p.runtime.PushContext(ctx)
	defer p.runtime.PopContext()

	// golua panics when a hard limit is exceeded
	defer func() {
		if r := recover(); r != nil {
			cfg, err = nil, fmt.Errorf("Lua configuration exceeded its resource limits: %v", r)
		}
	}()

	thread := p.runtime.MainThread()
	if _, err := rt.Call1(thread, rt.FunctionValue(closure)); err != nil {
		return nil, fmt.Errorf("failed to execute Lua configuration: %w", err)
	}

	return p.extractConfig()
}

// initSketchGlobal resets the sketch global table before each parse.
func (p *LuaConfigParser) initSketchGlobal() {
	sketchTable := rt.NewTable()
	sketchTable.Set(rt.StringValue("config"), rt.TableValue(rt.NewTable()))
	p.runtime.GlobalEnv().Set(rt.StringValue("sketch"), rt.TableValue(sketchTable))
}

// extractConfig reads sketch.config over the defaults.
func (p *LuaConfigParser) extractConfig() (*Config, error) {
	cfg := DefaultConfig()

	sketchVal := p.runtime.GlobalEnv().Get(rt.StringValue("sketch"))
	if sketchVal == rt.NilValue {
		return &cfg, nil
	}
	sketchTable, ok := sketchVal.TryTable()
	if !ok {
		return nil, fmt.Errorf("sketch is not a table")
	}

	configTable, ok := sketchTable.Get(rt.StringValue("config")).TryTable()
	if !ok {
		return &cfg, nil
	}

	var fc fileConfig
	if err := p.extractConfigTable(&fc, configTable); err != nil {
		return nil, err
	}
	if err := fc.apply(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// extractConfigTable maps the flat Lua keys onto the file sections.
func (p *LuaConfigParser) extractConfigTable(fc *fileConfig, table *rt.Table) error {
	// Document
	fc.Document.Width = getTableFloat(table, "page_width")
	fc.Document.Height = getTableFloat(table, "page_height")
	fc.Document.Units = getTableString(table, "units")
	fc.Document.Facing = getTableBool(table, "facing_pages")
	fc.Document.Pages = getTableInt(table, "pages")
	if err := getTableInsets(table, "margin", &fc.Document.Margins); err != nil {
		return err
	}
	if err := getTableInsets(table, "bleed", &fc.Document.Bleed); err != nil {
		return err
	}

	// Sketch
	fc.Sketch.Script = getTableString(table, "script")
	fc.Sketch.Assets = getTableString(table, "assets")
	fc.Sketch.CanvasMode = getTableString(table, "canvas_mode")
	fc.Sketch.RectMode = getTableString(table, "rect_mode")
	fc.Sketch.EllipseMode = getTableString(table, "ellipse_mode")
	fc.Sketch.ImageMode = getTableString(table, "image_mode")
	fc.Sketch.FrameRate = getTableFloat(table, "frame_rate")
	if v := getTableInt(table, "cpu_limit"); v != nil {
		n := int64(*v)
		fc.Sketch.CPULimit = &n
	}
	if v := getTableInt(table, "memory_limit"); v != nil {
		n := int64(*v)
		fc.Sketch.MemoryLimit = &n
	}

	// Output
	fc.Output.Path = getTableString(table, "output")
	fc.Output.Format = getTableString(table, "output_format")
	fc.Output.Spreads = getTableBool(table, "spreads")

	// Preview
	fc.Preview.Enabled = getTableBool(table, "preview")
	fc.Preview.Scale = getTableFloat(table, "preview_scale")
	fc.Preview.AlwaysOnTop = getTableBool(table, "always_on_top")
	fc.Preview.Guides = getTableBool(table, "guides")

	return nil
}

// Close releases resources associated with the parser's Lua runtime.
func (p *LuaConfigParser) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.cleanup != nil {
		p.cleanup()
		p.cleanup = nil
	}
	return nil
}

// getTableInsets reads a number or an edge table into dst.
func getTableInsets(table *rt.Table, key string, dst *insetsValue) error {
	val := table.Get(rt.StringValue(key))
	if val == rt.NilValue {
		return nil
	}
	if n := getTableFloat(table, key); n != nil {
		dst.setUniform(*n)
		return nil
	}
	edges, ok := val.TryTable()
	if !ok {
		return fmt.Errorf("invalid %s: must be a number or a table", key)
	}
	v := insetsValue{set: true}
	for _, edge := range []string{"top", "left", "bottom", "right", "inside", "outside"} {
		raw := edges.Get(rt.StringValue(edge))
		if raw == rt.NilValue {
			continue
		}
		n := getTableFloat(edges, edge)
		if n == nil {
			return fmt.Errorf("invalid %s.%s: must be a number", key, edge)
		}
		if err := setEdge(&v.insets, edge, *n); err != nil {
			return err
		}
	}
	*dst = v
	return nil
}

// getTableBool retrieves a boolean value from a Lua table.
// Returns nil if the key doesn't exist or is not a boolean.
func getTableBool(table *rt.Table, key string) *bool {
	val := table.Get(rt.StringValue(key))
	if val == rt.NilValue {
		return nil
	}

	if b, ok := val.TryBool(); ok {
		return &b
	}

	// Handle string "yes"/"no" for compatibility
	if s, ok := val.TryString(); ok {
		b := parseBool(s)
		return &b
	}

	return nil
}

// getTableString retrieves a string value from a Lua table.
// Returns nil if the key doesn't exist or is not a string.
func getTableString(table *rt.Table, key string) *string {
	val := table.Get(rt.StringValue(key))
	if val == rt.NilValue {
		return nil
	}

	if s, ok := val.TryString(); ok {
		return &s
	}

	return nil
}

// getTableFloat retrieves a float64 value from a Lua table.
// Returns nil if the key doesn't exist or is not a number.
func getTableFloat(table *rt.Table, key string) *float64 {
	val := table.Get(rt.StringValue(key))
	if val == rt.NilValue {
		return nil
	}

	if n, ok := val.TryInt(); ok {
		f := float64(n)
		return &f
	}
	if n, ok := val.TryFloat(); ok {
		return &n
	}

	return nil
}

// getTableInt retrieves an int value from a Lua table.
// Returns nil if the key doesn't exist or is not a number.
func getTableInt(table *rt.Table, key string) *int {
	val := table.Get(rt.StringValue(key))
	if val == rt.NilValue {
		return nil
	}

	if n, ok := val.TryInt(); ok {
		i := int(n)
		return &i
	}

	// Try float conversion (truncate)
	if f, ok := val.TryFloat(); ok {
		i := int(f)
		return &i
	}

	return nil
}

// parseBool accepts yes/true/1 as true.
func parseBool(s string) bool {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "yes", "true", "1":
		return true
	default:
		return false
	}
}

// Package lua runs pagesketch scripts on the Golua runtime.
// It provides the sandboxed runtime with resource limits, the drawing
// bindings that expose a sketch session to Lua, and the setup/draw hooks.
package lua

import (
	"bytes"
	"fmt"
	"io"
	"io/fs"
	"os"
	"sync"

	"github.com/arnodel/golua/lib"
	rt "github.com/arnodel/golua/runtime"
)

// RuntimeConfig contains configuration options for the Lua runtime.
type RuntimeConfig struct {
	// CPULimit is the instruction limit for one script call.
	// 0 means unlimited.
	CPULimit uint64
	// MemoryLimit is the maximum memory in bytes that Lua can allocate.
	// 0 means unlimited.
	MemoryLimit uint64
	// Stdout is the writer for Lua print output.
	// If nil, output is only captured.
	Stdout io.Writer
}

// DefaultConfig returns a RuntimeConfig with sensible default values.
// CPU limit: 50,000,000 instructions
// Memory limit: 100 MB
func DefaultConfig() RuntimeConfig {
	return RuntimeConfig{
		CPULimit:    50_000_000,
		MemoryLimit: 100 * 1024 * 1024,
		Stdout:      os.Stdout,
	}
}

// SketchRuntime wraps a Golua runtime with the limits and output capture
// a sketch run needs. Its exported methods are safe for concurrent use.
type SketchRuntime struct {
	config  RuntimeConfig
	runtime *rt.Runtime
	output  *bytes.Buffer
	stdout  io.Writer
	cleanup func()
	mu      sync.RWMutex
}

// New creates a new SketchRuntime with the Lua standard libraries loaded.
func New(config RuntimeConfig) (*SketchRuntime, error) {
	output := &bytes.Buffer{}
	stdout := io.Writer(output)
	if config.Stdout != nil {
		stdout = io.MultiWriter(config.Stdout, output)
	}

	runtime := rt.New(stdout)
	cleanup := lib.LoadAll(runtime)

	return &SketchRuntime{
		config:  config,
		runtime: runtime,
		output:  output,
		stdout:  stdout,
		cleanup: cleanup,
	}, nil
}

// Stdout returns the writer Lua print output goes to. Bindings that print
// use it so their text interleaves with print().
func (sr *SketchRuntime) Stdout() io.Writer {
	return sr.stdout
}

func (sr *SketchRuntime) load(name string, code []byte) (*rt.Closure, error) {
	sr.mu.Lock()
	defer sr.mu.Unlock()

	closure, err := sr.runtime.CompileAndLoadLuaChunk(
		name,
		code,
		rt.TableValue(sr.runtime.GlobalEnv()),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to load Lua chunk %s: %w", name, err)
	}
	return closure, nil
}

// LoadString compiles and loads a Lua code string.
// The returned Closure can be executed using Execute.
func (sr *SketchRuntime) LoadString(name, code string) (*rt.Closure, error) {
	return sr.load(name, []byte(code))
}

// LoadFile reads and loads a Lua file from disk.
func (sr *SketchRuntime) LoadFile(path string) (*rt.Closure, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read Lua file %s: %w", path, err)
	}
	return sr.load(path, content)
}

// LoadFileFromFS reads and loads a Lua file from fsys.
func (sr *SketchRuntime) LoadFileFromFS(fsys fs.FS, path string) (*rt.Closure, error) {
	content, err := fs.ReadFile(fsys, path)
	if err != nil {
		return nil, fmt.Errorf("failed to read Lua file from FS %s: %w", path, err)
	}
	return sr.load(path, content)
}

func (sr *SketchRuntime) limits() rt.RuntimeContextDef {
	return rt.RuntimeContextDef{
		HardLimits: rt.RuntimeResources{
			Cpu:    sr.config.CPULimit,
			Memory: sr.config.MemoryLimit,
		},
	}
}

// Execute runs a compiled Lua closure within resource limits.
func (sr *SketchRuntime) Execute(closure *rt.Closure) (rt.Value, error) {
	sr.mu.Lock()
	defer sr.mu.Unlock()

	sr.runtime.PushContext(sr.limits())
	defer sr.runtime.PopContext()

	result, err := rt.Call1(sr.runtime.MainThread(), rt.FunctionValue(closure))
	if err != nil {
		return rt.NilValue, fmt.Errorf("Lua execution error: %w", err)
	}
	return result, nil
}

// ExecuteString compiles and executes a Lua code string.
func (sr *SketchRuntime) ExecuteString(name, code string) (rt.Value, error) {
	closure, err := sr.LoadString(name, code)
	if err != nil {
		return rt.NilValue, err
	}
	return sr.Execute(closure)
}

// ExecuteFile loads and executes a Lua file.
func (sr *SketchRuntime) ExecuteFile(path string) (rt.Value, error) {
	closure, err := sr.LoadFile(path)
	if err != nil {
		return rt.NilValue, err
	}
	return sr.Execute(closure)
}

// GetGlobal retrieves a global variable from the Lua environment.
func (sr *SketchRuntime) GetGlobal(name string) rt.Value {
	sr.mu.RLock()
	defer sr.mu.RUnlock()
	return sr.runtime.GlobalEnv().Get(rt.StringValue(name))
}

// SetGlobal sets a global variable in the Lua environment.
func (sr *SketchRuntime) SetGlobal(name string, value rt.Value) {
	sr.mu.Lock()
	defer sr.mu.Unlock()
	sr.setGlobal(name, value)
}

// setGlobal writes a global without locking. It is used from Go functions
// that run inside Execute or CallFunction, which already hold mu.
func (sr *SketchRuntime) setGlobal(name string, value rt.Value) {
	sr.runtime.GlobalEnv().Set(rt.StringValue(name), value)
}

// SetGoFunction registers a Go function in the Lua global environment.
// The function is declared memory-safe and CPU-safe so it can run under
// resource limits.
func (sr *SketchRuntime) SetGoFunction(name string, fn rt.GoFunctionFunc, nArgs int, hasVarArgs bool) {
	sr.mu.Lock()
	defer sr.mu.Unlock()

	goFunc := rt.NewGoFunction(fn, name, nArgs, hasVarArgs)
	rt.SolemnlyDeclareCompliance(rt.ComplyMemSafe|rt.ComplyCpuSafe, goFunc)
	sr.runtime.GlobalEnv().Set(rt.StringValue(name), rt.FunctionValue(goFunc))
}

// CallFunction calls a Lua function by name with the given arguments.
func (sr *SketchRuntime) CallFunction(name string, args ...rt.Value) (rt.Value, error) {
	sr.mu.Lock()
	defer sr.mu.Unlock()

	fn := sr.runtime.GlobalEnv().Get(rt.StringValue(name))
	if fn == rt.NilValue {
		return rt.NilValue, fmt.Errorf("function %s not found", name)
	}

	sr.runtime.PushContext(sr.limits())
	defer sr.runtime.PopContext()

	result, err := rt.Call1(sr.runtime.MainThread(), fn, args...)
	if err != nil {
		return rt.NilValue, fmt.Errorf("failed to call function %s: %w", name, err)
	}
	return result, nil
}

// Output returns the captured output from Lua print statements.
func (sr *SketchRuntime) Output() string {
	sr.mu.RLock()
	defer sr.mu.RUnlock()
	return sr.output.String()
}

// ClearOutput clears the captured output buffer.
func (sr *SketchRuntime) ClearOutput() {
	sr.mu.Lock()
	defer sr.mu.Unlock()
	sr.output.Reset()
}

// Config returns the current runtime configuration.
func (sr *SketchRuntime) Config() RuntimeConfig {
	sr.mu.RLock()
	defer sr.mu.RUnlock()
	return sr.config
}

// Close releases resources associated with the runtime.
// The runtime should not be used after calling Close.
func (sr *SketchRuntime) Close() error {
	sr.mu.Lock()
	defer sr.mu.Unlock()

	if sr.cleanup != nil {
		sr.cleanup()
		sr.cleanup = nil
	}
	return nil
}

package lua

import (
	"fmt"
	"sync"

	rt "github.com/arnodel/golua/runtime"
)

// HookType represents the sketch lifecycle hooks a script may define.
type HookType int

const (
	// HookInvalid represents an invalid or unknown hook type.
	// This is returned by ParseHookType when parsing fails.
	HookInvalid HookType = iota

	// HookSetup is called once before the first frame.
	HookSetup

	// HookDraw is called once per frame.
	HookDraw
)

// String returns the string representation of a HookType.
func (h HookType) String() string {
	switch h {
	case HookSetup:
		return "setup"
	case HookDraw:
		return "draw"
	case HookInvalid:
		return "invalid"
	default:
		return "unknown"
	}
}

// LuaFunctionName returns the global function name for a hook type.
func (h HookType) LuaFunctionName() string {
	return h.String()
}

// ParseHookType parses a string into a HookType.
func ParseHookType(s string) (HookType, error) {
	switch s {
	case "setup":
		return HookSetup, nil
	case "draw":
		return HookDraw, nil
	default:
		return HookInvalid, fmt.Errorf("unknown hook type: %s", s)
	}
}

// HookManager tracks which lifecycle hooks a script defines and calls them.
type HookManager struct {
	runtime *SketchRuntime
	hooks   map[HookType]string
	mu      sync.RWMutex
}

// NewHookManager creates a new HookManager for the given runtime.
func NewHookManager(runtime *SketchRuntime) (*HookManager, error) {
	if runtime == nil {
		return nil, ErrNilRuntime
	}
	return &HookManager{
		runtime: runtime,
		hooks:   make(map[HookType]string),
	}, nil
}

// RegisterHook binds hookType to the global Lua function funcName.
func (hm *HookManager) RegisterHook(hookType HookType, funcName string) error {
	fn := hm.runtime.GetGlobal(funcName)
	if fn == rt.NilValue {
		return fmt.Errorf("Lua function %s not found", funcName)
	}
	if fn.Type() != rt.FunctionType {
		return fmt.Errorf("%s is not a function (type: %v)", funcName, fn.Type())
	}

	hm.mu.Lock()
	defer hm.mu.Unlock()
	hm.hooks[hookType] = funcName
	return nil
}

// IsRegistered returns true if a hook is registered for the given type.
func (hm *HookManager) IsRegistered(hookType HookType) bool {
	hm.mu.RLock()
	defer hm.mu.RUnlock()

	_, ok := hm.hooks[hookType]
	return ok
}

// Call invokes the registered hook function for the given hook type.
// Returns nil if no hook is registered for the type.
func (hm *HookManager) Call(hookType HookType, args ...rt.Value) (rt.Value, error) {
	hm.mu.RLock()
	funcName, ok := hm.hooks[hookType]
	hm.mu.RUnlock()

	if !ok {
		return rt.NilValue, nil
	}

	result, err := hm.runtime.CallFunction(funcName, args...)
	if err != nil {
		return rt.NilValue, fmt.Errorf("hook %s execution failed: %w", hookType, err)
	}
	return result, nil
}

// AutoRegisterHooks registers every lifecycle function the script defines
// under its standard name and returns the hooks found.
func (hm *HookManager) AutoRegisterHooks() []HookType {
	found := make([]HookType, 0, 2)
	for _, hookType := range []HookType{HookSetup, HookDraw} {
		fn := hm.runtime.GetGlobal(hookType.LuaFunctionName())
		if fn != rt.NilValue && fn.Type() == rt.FunctionType {
			found = append(found, hookType)
		}
	}

	hm.mu.Lock()
	for _, hookType := range found {
		hm.hooks[hookType] = hookType.LuaFunctionName()
	}
	hm.mu.Unlock()

	return found
}

// Clear removes all hook registrations.
func (hm *HookManager) Clear() {
	hm.mu.Lock()
	defer hm.mu.Unlock()
	hm.hooks = make(map[HookType]string)
}

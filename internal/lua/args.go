package lua

import (
	"fmt"
	"strconv"
	"strings"

	rt "github.com/arnodel/golua/runtime"

	"github.com/opd-ai/go-pagesketch/internal/document"
)

// getAllArgs combines Args() and Etc() to get all arguments including varargs
func getAllArgs(c *rt.GoCont) []rt.Value {
	return append(c.Args(), c.Etc()...)
}

// hasArg reports whether argument idx was passed and is not nil.
func hasArg(args []rt.Value, idx int) bool {
	return idx < len(args) && args[idx] != rt.NilValue
}

// getFloatArg gets a float argument from the combined args slice
func getFloatArg(args []rt.Value, idx int) (float64, error) {
	if idx >= len(args) {
		return 0, fmt.Errorf("argument %d out of range (have %d)", idx, len(args))
	}
	if f, ok := args[idx].TryFloat(); ok {
		return f, nil
	}
	if i, ok := args[idx].TryInt(); ok {
		return float64(i), nil
	}
	return 0, fmt.Errorf("argument %d is not a number", idx)
}

// getFloatArgs reads n consecutive numbers starting at idx.
func getFloatArgs(args []rt.Value, idx int, names ...string) ([]float64, error) {
	out := make([]float64, len(names))
	for i, name := range names {
		f, err := getFloatArg(args, idx+i)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", name, err)
		}
		out[i] = f
	}
	return out, nil
}

// getIntArg gets an int argument from the combined args slice
func getIntArg(args []rt.Value, idx int) (int64, error) {
	if idx >= len(args) {
		return 0, fmt.Errorf("argument %d out of range (have %d)", idx, len(args))
	}
	if i, ok := args[idx].TryInt(); ok {
		return i, nil
	}
	if f, ok := args[idx].TryFloat(); ok {
		return int64(f), nil
	}
	return 0, fmt.Errorf("argument %d is not an integer", idx)
}

// getStringArg gets a string argument from the combined args slice
func getStringArg(args []rt.Value, idx int) (string, error) {
	if idx >= len(args) {
		return "", fmt.Errorf("argument %d out of range (have %d)", idx, len(args))
	}
	if s, ok := args[idx].TryString(); ok {
		return s, nil
	}
	return "", fmt.Errorf("argument %d is not a string", idx)
}

// getItemArg returns the page item at idx. A missing or nil argument
// yields a nil item so the item API can report it in its own words.
func getItemArg(args []rt.Value, idx int) (*document.Item, error) {
	if !hasArg(args, idx) {
		return nil, nil
	}
	ud, ok := args[idx].TryUserData()
	if !ok {
		return nil, ErrInvalidItem
	}
	it, ok := ud.Value().(*document.Item)
	if !ok {
		return nil, ErrInvalidItem
	}
	return it, nil
}

// getPageArg returns the page userdata at idx, if any.
func getPageArg(args []rt.Value, idx int) (*document.Page, bool) {
	if !hasArg(args, idx) {
		return nil, false
	}
	ud, ok := args[idx].TryUserData()
	if !ok {
		return nil, false
	}
	p, ok := ud.Value().(*document.Page)
	return p, ok
}

func itemValue(it *document.Item) rt.Value {
	if it == nil {
		return rt.NilValue
	}
	return rt.UserDataValue(rt.NewUserData(it, nil))
}

func pageValue(p *document.Page) rt.Value {
	if p == nil {
		return rt.NilValue
	}
	return rt.UserDataValue(rt.NewUserData(p, nil))
}

// luaString renders v the way Lua's tostring does for printable values.
func luaString(v rt.Value) string {
	if v == rt.NilValue {
		return "nil"
	}
	if s, ok := v.TryString(); ok {
		return s
	}
	if i, ok := v.TryInt(); ok {
		return strconv.FormatInt(i, 10)
	}
	if f, ok := v.TryFloat(); ok {
		s := strconv.FormatFloat(f, 'g', 14, 64)
		if !strings.ContainsAny(s, ".eIN") {
			s += ".0"
		}
		return s
	}
	if b, ok := v.TryBool(); ok {
		return strconv.FormatBool(b)
	}
	if ud, ok := v.TryUserData(); ok {
		switch x := ud.Value().(type) {
		case *document.Item:
			return fmt.Sprintf("%s: %d", x.Kind(), x.ID())
		case *document.Page:
			return "page: " + x.Name()
		}
	}
	if _, ok := v.TryTable(); ok {
		return "table"
	}
	if v.Type() == rt.FunctionType {
		return "function"
	}
	return "userdata"
}

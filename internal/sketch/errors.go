package sketch

import (
	"errors"
	"fmt"
)

const (
	// ErrorPrefix starts every fatal message shown to script authors.
	ErrorPrefix = "### pagesketch error -> "
	// WarningPrefix starts every warning shown to script authors.
	WarningPrefix = "### pagesketch warning -> "
)

// ErrUnbalancedStack is matched by every UnbalancedStackError.
var ErrUnbalancedStack = errors.New("unbalanced transform stack")

// UnbalancedStackError reports popMatrix on an empty stack.
type UnbalancedStackError struct{}

func (e *UnbalancedStackError) Error() string {
	return "missing a pushMatrix() to go with that popMatrix()"
}

// Is lets errors.Is match ErrUnbalancedStack.
func (e *UnbalancedStackError) Is(target error) bool {
	return target == ErrUnbalancedStack
}

// ContractError reports a call with an argument that breaks the API
// contract, such as a removed page item.
type ContractError struct {
	Op  string
	Msg string
}

func (e *ContractError) Error() string {
	return fmt.Sprintf("%s(): %s", e.Op, e.Msg)
}

// FatalError aborts the current script run. Op names the script-level
// call that failed.
type FatalError struct {
	Op  string
	Err error
}

func (e *FatalError) Error() string {
	return fmt.Sprintf("%s(): %v", e.Op, e.Err)
}

func (e *FatalError) Unwrap() error {
	return e.Err
}

func fatal(op string, err error) error {
	if err == nil {
		return nil
	}
	var fe *FatalError
	if errors.As(err, &fe) {
		return err
	}
	return &FatalError{Op: op, Err: err}
}

// IsFatal reports whether err must abort the script run.
func IsFatal(err error) bool {
	var fe *FatalError
	return errors.As(err, &fe)
}

// FormatError renders err the way it is shown to script authors.
func FormatError(err error) string {
	return ErrorPrefix + err.Error()
}

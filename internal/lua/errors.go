package lua

import "errors"

var (
	// ErrNilRuntime is returned when a nil runtime is passed to a function that requires one.
	ErrNilRuntime = errors.New("runtime cannot be nil")

	// ErrNilSession is returned when bindings are created without a session.
	ErrNilSession = errors.New("session cannot be nil")

	// ErrInvalidItem is returned when an argument is not a page item.
	ErrInvalidItem = errors.New("expected page item userdata")

	// ErrInvalidPage is returned when an argument is neither a page number nor a page.
	ErrInvalidPage = errors.New("expected page number or page userdata")
)

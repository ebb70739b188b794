package storage

import (
	"errors"
	"fmt"
)

// Error kinds of the store gateway.
var (
	// ErrLoad is returned when the persisted graph is missing, unreadable or malformed.
	ErrLoad = errors.New("load error")

	// ErrQuery is returned when a query cannot be executed as constructed.
	ErrQuery = errors.New("query error")

	// ErrPersist is returned when the graph could not be written back to its resource.
	ErrPersist = errors.New("persist error")
)

// Error describes a store gateway failure. It matches both its Kind and its cause
// with errors.Is.
type Error struct {
	Kind error
	Op   string
	Path string
	Err  error
}

func (e *Error) Error() string {
	msg := e.Kind.Error()
	if e.Op != "" {
		msg = e.Op + ": " + msg
	}
	if e.Path != "" {
		msg += fmt.Sprintf(" (%s)", e.Path)
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

// Unwrap returns the kind and the cause.
func (e *Error) Unwrap() []error {
	if e.Err == nil {
		return []error{e.Kind}
	}
	return []error{e.Kind, e.Err}
}

func loadError(path string, err error) error {
	return &Error{Kind: ErrLoad, Op: "open", Path: path, Err: err}
}

func persistError(path string, err error) error {
	return &Error{Kind: ErrPersist, Op: "serialize", Path: path, Err: err}
}

package ingest

import "errors"

var (
	// ErrInvalidEvent is returned when an event cannot be turned into triples.
	ErrInvalidEvent = errors.New("invalid event")

	// ErrUnknownReference is returned when reference validation is enabled and
	// a linked definition is not a typed instance in the graph.
	ErrUnknownReference = errors.New("unknown reference")
)

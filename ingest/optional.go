package ingest

import (
	"fmt"
	"strings"

	"github.com/c360studio/fmeakg/graph"
)

// Optional is an explicitly present or absent value.
type Optional[T any] struct {
	value T
	ok    bool
}

// Some returns a present value.
func Some[T any](v T) Optional[T] {
	return Optional[T]{value: v, ok: true}
}

// None returns an absent value.
func None[T any]() Optional[T] {
	return Optional[T]{}
}

// Get returns the value and whether it is present.
func (o Optional[T]) Get() (T, bool) {
	return o.value, o.ok
}

// IsSome reports whether the value is present.
func (o Optional[T]) IsSome() bool {
	return o.ok
}

// OptionalIRI parses s as an IRI. Empty and blank strings are absent.
func OptionalIRI(s string) (Optional[graph.IRI], error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return None[graph.IRI](), nil
	}
	iri, err := graph.NewIRI(s)
	if err != nil {
		return None[graph.IRI](), fmt.Errorf("%w: %w", ErrInvalidEvent, err)
	}
	return Some(iri), nil
}

// OptionalString treats the empty string as absent.
func OptionalString(s string) Optional[string] {
	if s == "" {
		return None[string]()
	}
	return Some(s)
}

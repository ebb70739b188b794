package graph

import (
	"errors"
	"fmt"
)

// ErrInvalidTriple is returned for statements that are not valid RDF.
var ErrInvalidTriple = errors.New("invalid triple")

// Triple is a single subject-predicate-object statement.
type Triple struct {
	Subject   Term
	Predicate IRI
	Object    Term
}

// NewTriple validates the term positions and returns the statement.
// Subjects must be IRIs or blank nodes.
func NewTriple(subject Term, predicate IRI, object Term) (Triple, error) {
	t := Triple{Subject: subject, Predicate: predicate, Object: object}
	if err := t.Validate(); err != nil {
		return Triple{}, err
	}
	return t, nil
}

// Validate checks the term positions.
func (t Triple) Validate() error {
	if t.Subject == nil {
		return fmt.Errorf("%w: missing subject", ErrInvalidTriple)
	}
	if t.Subject.Kind() == KindLiteral {
		return fmt.Errorf("%w: literal subject %s", ErrInvalidTriple, t.Subject.NTriples())
	}
	if iri, ok := t.Subject.(IRI); ok && iri.IsZero() {
		return fmt.Errorf("%w: empty subject IRI", ErrInvalidTriple)
	}
	if t.Predicate.IsZero() {
		return fmt.Errorf("%w: missing predicate", ErrInvalidTriple)
	}
	if t.Object == nil {
		return fmt.Errorf("%w: missing object", ErrInvalidTriple)
	}
	if iri, ok := t.Object.(IRI); ok && iri.IsZero() {
		return fmt.Errorf("%w: empty object IRI", ErrInvalidTriple)
	}
	return nil
}

// Key is the canonical identity of the statement.
func (t Triple) Key() string {
	return t.Subject.NTriples() + " " + t.Predicate.NTriples() + " " + t.Object.NTriples()
}

// String returns the statement as an N-Triples line.
func (t Triple) String() string {
	return t.Key() + " ."
}

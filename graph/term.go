package graph

import (
	"errors"
	"fmt"
	"strings"
)

// ErrInvalidIRI is returned when a string cannot be used as an absolute IRI.
var ErrInvalidIRI = errors.New("invalid IRI")

// Well-known vocabulary IRIs.
const (
	RDFNamespace = "http://www.w3.org/1999/02/22-rdf-syntax-ns#"
	XSDNamespace = "http://www.w3.org/2001/XMLSchema#"
)

var (
	// RDFType is rdf:type.
	RDFType = MustIRI(RDFNamespace + "type")

	// RDFLangString is the datatype of language-tagged strings.
	RDFLangString = MustIRI(RDFNamespace + "langString")

	// XSDString is the default literal datatype.
	XSDString = MustIRI(XSDNamespace + "string")

	// XSDBoolean is xsd:boolean.
	XSDBoolean = MustIRI(XSDNamespace + "boolean")
)

// TermKind discriminates RDF term types.
type TermKind int

// Term kinds.
const (
	KindIRI TermKind = iota
	KindLiteral
	KindBlank
)

// String returns the kind name.
func (k TermKind) String() string {
	switch k {
	case KindIRI:
		return "iri"
	case KindLiteral:
		return "literal"
	case KindBlank:
		return "blank"
	default:
		return "unknown"
	}
}

// Term is an RDF node: an IRI, a literal or a blank node.
type Term interface {
	// Kind reports the term type.
	Kind() TermKind

	// String returns the IRI, the lexical form of a literal or the blank label.
	String() string

	// NTriples returns the canonical N-Triples rendering. Two terms are the
	// same RDF term exactly when their renderings are equal.
	NTriples() string
}

// IRI is a validated absolute IRI. The zero value means "no IRI".
type IRI struct {
	value string
}

// NewIRI validates s and returns it as an IRI.
func NewIRI(s string) (IRI, error) {
	if err := validateIRI(s); err != nil {
		return IRI{}, err
	}
	return IRI{value: s}, nil
}

// MustIRI is NewIRI for constants; it panics on malformed input.
func MustIRI(s string) IRI {
	iri, err := NewIRI(s)
	if err != nil {
		panic(err)
	}
	return iri
}

func validateIRI(s string) error {
	if s == "" {
		return fmt.Errorf("%w: empty", ErrInvalidIRI)
	}
	for _, r := range s {
		if r <= 0x20 || strings.ContainsRune("<>\"{}|^`\\", r) {
			return fmt.Errorf("%w: %q contains %q", ErrInvalidIRI, s, r)
		}
	}
	colon := strings.IndexByte(s, ':')
	if colon < 1 {
		return fmt.Errorf("%w: %q is not absolute", ErrInvalidIRI, s)
	}
	for i, r := range s[:colon] {
		isAlpha := (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z')
		if i == 0 && !isAlpha {
			return fmt.Errorf("%w: %q has a malformed scheme", ErrInvalidIRI, s)
		}
		if !isAlpha && !(r >= '0' && r <= '9') && r != '+' && r != '-' && r != '.' {
			return fmt.Errorf("%w: %q has a malformed scheme", ErrInvalidIRI, s)
		}
	}
	return nil
}

// Kind implements Term.
func (i IRI) Kind() TermKind { return KindIRI }

// String returns the IRI text.
func (i IRI) String() string { return i.value }

// NTriples implements Term.
func (i IRI) NTriples() string { return "<" + i.value + ">" }

// IsZero reports whether the IRI is unset.
func (i IRI) IsZero() bool { return i.value == "" }

// MarshalText implements encoding.TextMarshaler.
func (i IRI) MarshalText() ([]byte, error) {
	return []byte(i.value), nil
}

// UnmarshalText implements encoding.TextUnmarshaler. Empty input yields the
// zero IRI.
func (i *IRI) UnmarshalText(b []byte) error {
	if len(b) == 0 {
		*i = IRI{}
		return nil
	}
	iri, err := NewIRI(string(b))
	if err != nil {
		return err
	}
	*i = iri
	return nil
}

// Literal is an RDF literal with a datatype and optional language tag.
type Literal struct {
	lexical  string
	datatype IRI
	lang     string
}

// NewLiteral builds a typed literal. A zero datatype means xsd:string.
func NewLiteral(lexical string, datatype IRI) Literal {
	if datatype.IsZero() {
		datatype = XSDString
	}
	return Literal{lexical: lexical, datatype: datatype}
}

// NewStringLiteral builds an xsd:string literal.
func NewStringLiteral(s string) Literal {
	return Literal{lexical: s, datatype: XSDString}
}

// NewLangLiteral builds a language-tagged string.
func NewLangLiteral(s, lang string) Literal {
	if lang == "" {
		return NewStringLiteral(s)
	}
	return Literal{lexical: s, datatype: RDFLangString, lang: strings.ToLower(lang)}
}

// NewBooleanLiteral builds an xsd:boolean literal.
func NewBooleanLiteral(b bool) Literal {
	if b {
		return Literal{lexical: "true", datatype: XSDBoolean}
	}
	return Literal{lexical: "false", datatype: XSDBoolean}
}

// Kind implements Term.
func (l Literal) Kind() TermKind { return KindLiteral }

// String returns the lexical form.
func (l Literal) String() string { return l.lexical }

// Lexical returns the lexical form.
func (l Literal) Lexical() string { return l.lexical }

// Datatype returns the datatype IRI.
func (l Literal) Datatype() IRI { return l.datatype }

// Lang returns the language tag, if any.
func (l Literal) Lang() string { return l.lang }

// NTriples implements Term.
func (l Literal) NTriples() string {
	quoted := `"` + EscapeString(l.lexical) + `"`
	switch {
	case l.lang != "":
		return quoted + "@" + l.lang
	case l.datatype.IsZero() || l.datatype == XSDString:
		return quoted
	default:
		return quoted + "^^" + l.datatype.NTriples()
	}
}

// Blank is a blank node scoped to the loaded document.
type Blank struct {
	id string
}

// NewBlank builds a blank node. Characters outside [A-Za-z0-9_-] in the label
// are replaced so the node stays serializable.
func NewBlank(id string) Blank {
	id = strings.TrimPrefix(id, "_:")
	var sb strings.Builder
	for _, r := range id {
		if (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9') || r == '_' || r == '-' {
			sb.WriteRune(r)
		} else {
			sb.WriteByte('_')
		}
	}
	if sb.Len() == 0 {
		sb.WriteString("b")
	}
	return Blank{id: sb.String()}
}

// Kind implements Term.
func (b Blank) Kind() TermKind { return KindBlank }

// String returns the blank node label.
func (b Blank) String() string { return b.id }

// NTriples implements Term.
func (b Blank) NTriples() string { return "_:" + b.id }

// EscapeString escapes a literal's lexical form for N-Triples and Turtle.
func EscapeString(s string) string {
	s = strings.ReplaceAll(s, "\\", "\\\\")
	s = strings.ReplaceAll(s, "\"", "\\\"")
	s = strings.ReplaceAll(s, "\n", "\\n")
	s = strings.ReplaceAll(s, "\r", "\\r")
	s = strings.ReplaceAll(s, "\t", "\\t")
	return s
}

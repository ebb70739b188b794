// Package export serializes graph triples as Turtle, N-Triples or JSON-LD.
package export

import (
	"fmt"
	"path/filepath"
	"sort"
	"strings"

	"github.com/c360studio/fmeakg/graph"
)

// Format specifies the output serialization format.
type Format string

const (
	// FormatTurtle produces Turtle (.ttl) output.
	FormatTurtle Format = "turtle"

	// FormatNTriples produces N-Triples (.nt) output.
	FormatNTriples Format = "ntriples"

	// FormatJSONLD produces JSON-LD (.jsonld) output.
	FormatJSONLD Format = "jsonld"
)

// ParseFormat accepts a format name or a common alias.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "turtle", "ttl":
		return FormatTurtle, nil
	case "ntriples", "nt", "n-triples":
		return FormatNTriples, nil
	case "jsonld", "json-ld":
		return FormatJSONLD, nil
	default:
		return "", fmt.Errorf("unsupported format: %s", s)
	}
}

// FormatForPath picks a format from a file extension.
func FormatForPath(path string) (Format, bool) {
	ext := strings.ToLower(filepath.Ext(path))
	for name, info := range FormatRegistry {
		if info.Extension == ext {
			return name, true
		}
	}
	return "", false
}

// RDFExporter collects triples and serializes them deterministically.
type RDFExporter struct {
	prefixes map[string]string
	triples  []graph.Triple
}

// NewRDFExporter creates an exporter that declares the given prefixes.
func NewRDFExporter(prefixes map[string]string) *RDFExporter {
	return &RDFExporter{prefixes: prefixes}
}

// AddTriples queues statements for export.
func (e *RDFExporter) AddTriples(triples ...graph.Triple) {
	e.triples = append(e.triples, triples...)
}

// Export serializes all queued triples to the specified format.
func (e *RDFExporter) Export(format Format) (string, error) {
	switch format {
	case FormatTurtle:
		return e.toTurtle(), nil
	case FormatNTriples:
		return e.toNTriples(), nil
	case FormatJSONLD:
		return e.toJSONLD()
	default:
		return "", fmt.Errorf("unsupported format: %s", format)
	}
}

// subjectBlock holds the statements of one subject in output order.
type subjectBlock struct {
	subject graph.Term
	types   []graph.Term
	pairs   []graph.Triple
}

// blocks groups triples by subject, sorted by subject then predicate/object.
func (e *RDFExporter) blocks() []*subjectBlock {
	bySubject := make(map[string]*subjectBlock)
	seen := make(map[string]bool, len(e.triples))
	for _, t := range e.triples {
		key := t.Key()
		if seen[key] {
			continue
		}
		seen[key] = true

		sk := t.Subject.NTriples()
		b, ok := bySubject[sk]
		if !ok {
			b = &subjectBlock{subject: t.Subject}
			bySubject[sk] = b
		}
		if t.Predicate == graph.RDFType {
			b.types = append(b.types, t.Object)
		} else {
			b.pairs = append(b.pairs, t)
		}
	}

	keys := make([]string, 0, len(bySubject))
	for k := range bySubject {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	out := make([]*subjectBlock, 0, len(keys))
	for _, k := range keys {
		b := bySubject[k]
		sort.Slice(b.types, func(i, j int) bool { return b.types[i].NTriples() < b.types[j].NTriples() })
		sort.Slice(b.pairs, func(i, j int) bool { return b.pairs[i].Key() < b.pairs[j].Key() })
		out = append(out, b)
	}
	return out
}

// toTurtle serializes to Turtle format.
func (e *RDFExporter) toTurtle() string {
	w := NewTurtleWriter(e.prefixes)
	w.WritePrefixes()

	for _, b := range e.blocks() {
		w.WriteSubject(b.subject)
		for i, typeIRI := range b.types {
			w.WriteType(typeIRI, i == len(b.types)-1 && len(b.pairs) == 0)
		}
		for i, t := range b.pairs {
			w.WritePredicate(t.Predicate, t.Object, i == len(b.pairs)-1)
		}
		w.WriteBlank()
	}
	return w.String()
}

// toNTriples serializes to N-Triples format.
func (e *RDFExporter) toNTriples() string {
	w := NewNTriplesWriter()
	for _, b := range e.blocks() {
		for _, typeIRI := range b.types {
			w.WriteTriple(graph.Triple{Subject: b.subject, Predicate: graph.RDFType, Object: typeIRI})
		}
		for _, t := range b.pairs {
			w.WriteTriple(t)
		}
	}
	return w.String()
}

// toJSONLD serializes to JSON-LD format.
func (e *RDFExporter) toJSONLD() (string, error) {
	w := NewJSONLDWriter()
	w.SetContext(e.prefixes)

	for _, b := range e.blocks() {
		id := b.subject.String()
		if b.subject.Kind() == graph.KindBlank {
			id = b.subject.NTriples()
		}

		types := make([]string, 0, len(b.types))
		for _, t := range b.types {
			types = append(types, t.String())
		}

		props := make(map[string]any)
		for _, t := range b.pairs {
			key := t.Predicate.String()
			value := jsonLDValue(t.Object)
			switch existing := props[key].(type) {
			case nil:
				props[key] = value
			case []any:
				props[key] = append(existing, value)
			default:
				props[key] = []any{existing, value}
			}
		}
		w.AddNode(id, types, props)
	}
	return w.String()
}

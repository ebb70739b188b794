package storage

import (
	"errors"
	"fmt"
	"io"

	"github.com/knakk/rdf"

	"github.com/c360studio/fmeakg/export"
	"github.com/c360studio/fmeakg/graph"
)

// decodeTriples parses Turtle or N-Triples into graph triples.
func decodeTriples(r io.Reader, format export.Format) ([]graph.Triple, error) {
	var rdfFormat rdf.Format
	switch format {
	case export.FormatTurtle:
		rdfFormat = rdf.Turtle
	case export.FormatNTriples:
		rdfFormat = rdf.NTriples
	default:
		return nil, fmt.Errorf("format %q cannot be loaded", format)
	}

	dec := rdf.NewTripleDecoder(r, rdfFormat)
	var triples []graph.Triple
	for {
		tr, err := dec.Decode()
		if errors.Is(err, io.EOF) {
			return triples, nil
		}
		if err != nil {
			return nil, fmt.Errorf("decode triple %d: %w", len(triples)+1, err)
		}

		t, err := convertTriple(tr)
		if err != nil {
			return nil, fmt.Errorf("convert triple %d: %w", len(triples)+1, err)
		}
		triples = append(triples, t)
	}
}

func convertTriple(tr rdf.Triple) (graph.Triple, error) {
	subject, err := convertTerm(tr.Subj)
	if err != nil {
		return graph.Triple{}, err
	}
	predicate, err := graph.NewIRI(tr.Pred.String())
	if err != nil {
		return graph.Triple{}, err
	}
	object, err := convertTerm(tr.Obj)
	if err != nil {
		return graph.Triple{}, err
	}
	return graph.NewTriple(subject, predicate, object)
}

func convertTerm(term rdf.Term) (graph.Term, error) {
	switch v := term.(type) {
	case rdf.IRI:
		return graph.NewIRI(v.String())
	case rdf.Blank:
		return graph.NewBlank(v.String()), nil
	case rdf.Literal:
		if lang := v.Lang(); lang != "" {
			return graph.NewLangLiteral(v.String(), lang), nil
		}
		if v.DataType.String() == "" {
			return graph.NewStringLiteral(v.String()), nil
		}
		datatype, err := graph.NewIRI(v.DataType.String())
		if err != nil {
			return nil, err
		}
		return graph.NewLiteral(v.String(), datatype), nil
	default:
		return nil, fmt.Errorf("unsupported term %T", term)
	}
}

// Package ontology resolves the FMEA vocabulary against a configured namespace
// and derives the identifiers of the nodes created by ingestion.
package ontology

import (
	"fmt"
	"strings"

	"github.com/c360studio/fmeakg/graph"
	"github.com/c360studio/fmeakg/vocabulary/fmea"
)

// Namespace is the ontology base IRI plus the sub-namespace prefixes for
// classes, object properties and data properties.
type Namespace struct {
	Base                 string
	ClassPrefix          string
	ObjectPropertyPrefix string
	DataPropertyPrefix   string
}

// DefaultNamespace returns the namespace of the published FMEA ontology.
func DefaultNamespace() Namespace {
	return Namespace{
		Base:                 fmea.DefaultNamespace,
		ClassPrefix:          fmea.ClassPrefix,
		ObjectPropertyPrefix: fmea.ObjectPropertyPrefix,
		DataPropertyPrefix:   fmea.DataPropertyPrefix,
	}
}

// Separator is inserted between the base and a local name: empty when the
// base already ends in '#' or '/', otherwise '#'.
func (n Namespace) Separator() string {
	if strings.HasSuffix(n.Base, "#") || strings.HasSuffix(n.Base, "/") {
		return ""
	}
	return "#"
}

// Validate checks that the base is an absolute IRI.
func (n Namespace) Validate() error {
	if _, err := graph.NewIRI(n.Base); err != nil {
		return fmt.Errorf("namespace base: %w", err)
	}
	return nil
}

// Individual returns the IRI of a named individual, such as a skill.
func (n Namespace) Individual(local string) (graph.IRI, error) {
	if local == "" {
		return graph.IRI{}, fmt.Errorf("%w: empty local name", graph.ErrInvalidIRI)
	}
	return graph.NewIRI(n.Base + n.Separator() + local)
}

// Class returns the IRI of a class local name.
func (n Namespace) Class(local string) (graph.IRI, error) {
	return n.Individual(n.ClassPrefix + local)
}

// ObjectProperty returns the IRI of an object property local name.
func (n Namespace) ObjectProperty(local string) (graph.IRI, error) {
	return n.Individual(n.ObjectPropertyPrefix + local)
}

// DataProperty returns the IRI of a data property local name.
func (n Namespace) DataProperty(local string) (graph.IRI, error) {
	return n.Individual(n.DataPropertyPrefix + local)
}

// Prefixes returns the prefix map used for serialization and query rendering.
func (n Namespace) Prefixes() map[string]string {
	base := n.Base + n.Separator()
	return map[string]string{
		"fmea": base,
		"cl":   base + n.ClassPrefix,
		"op":   base + n.ObjectPropertyPrefix,
		"dp":   base + n.DataPropertyPrefix,
		"rdf":  graph.RDFNamespace,
		"xsd":  graph.XSDNamespace,
	}
}

// Package graph provides the in-memory RDF model used by the FMEA knowledge
// graph: typed terms, triples, a set-semantics triple store and a basic graph
// pattern matcher.
//
// The store is not safe for concurrent use; the storage gateway owns the only
// instance and guards it.
package graph

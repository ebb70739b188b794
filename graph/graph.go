package graph

import "sort"

type keySet map[string]struct{}

// Graph is a set of triples indexed by subject, predicate and object.
// Adding a statement that is already present is a no-op.
type Graph struct {
	triples     map[string]Triple
	bySubject   map[string]keySet
	byPredicate map[string]keySet
	byObject    map[string]keySet
}

// New returns an empty graph.
func New() *Graph {
	return &Graph{
		triples:     make(map[string]Triple),
		bySubject:   make(map[string]keySet),
		byPredicate: make(map[string]keySet),
		byObject:    make(map[string]keySet),
	}
}

// Len returns the number of distinct statements.
func (g *Graph) Len() int {
	return len(g.triples)
}

// Add inserts t and reports whether it was not already present.
func (g *Graph) Add(t Triple) bool {
	key := t.Key()
	if _, exists := g.triples[key]; exists {
		return false
	}
	g.triples[key] = t
	index(g.bySubject, t.Subject.NTriples(), key)
	index(g.byPredicate, t.Predicate.NTriples(), key)
	index(g.byObject, t.Object.NTriples(), key)
	return true
}

// Remove deletes t and reports whether it was present.
func (g *Graph) Remove(t Triple) bool {
	key := t.Key()
	if _, exists := g.triples[key]; !exists {
		return false
	}
	delete(g.triples, key)
	unindex(g.bySubject, t.Subject.NTriples(), key)
	unindex(g.byPredicate, t.Predicate.NTriples(), key)
	unindex(g.byObject, t.Object.NTriples(), key)
	return true
}

// Has reports whether t is in the graph.
func (g *Graph) Has(t Triple) bool {
	_, ok := g.triples[t.Key()]
	return ok
}

// Triples returns every statement ordered by key.
func (g *Graph) Triples() []Triple {
	keys := make([]string, 0, len(g.triples))
	for k := range g.triples {
		keys = append(keys, k)
	}
	return g.collect(keys)
}

// Match returns the statements matching the given positions, ordered by key.
// A nil position matches anything.
func (g *Graph) Match(subject, predicate, object Term) []Triple {
	var candidates []keySet
	if subject != nil {
		candidates = append(candidates, g.bySubject[subject.NTriples()])
	}
	if predicate != nil {
		candidates = append(candidates, g.byPredicate[predicate.NTriples()])
	}
	if object != nil {
		candidates = append(candidates, g.byObject[object.NTriples()])
	}
	if len(candidates) == 0 {
		return g.Triples()
	}

	smallest := candidates[0]
	for _, c := range candidates[1:] {
		if len(c) < len(smallest) {
			smallest = c
		}
	}

	keys := make([]string, 0, len(smallest))
	for key := range smallest {
		t := g.triples[key]
		if subject != nil && t.Subject.NTriples() != subject.NTriples() {
			continue
		}
		if predicate != nil && t.Predicate.NTriples() != predicate.NTriples() {
			continue
		}
		if object != nil && t.Object.NTriples() != object.NTriples() {
			continue
		}
		keys = append(keys, key)
	}
	return g.collect(keys)
}

func (g *Graph) collect(keys []string) []Triple {
	sort.Strings(keys)
	out := make([]Triple, 0, len(keys))
	for _, k := range keys {
		out = append(out, g.triples[k])
	}
	return out
}

func index(idx map[string]keySet, term, key string) {
	set, ok := idx[term]
	if !ok {
		set = make(keySet)
		idx[term] = set
	}
	set[key] = struct{}{}
}

func unindex(idx map[string]keySet, term, key string) {
	set, ok := idx[term]
	if !ok {
		return
	}
	delete(set, key)
	if len(set) == 0 {
		delete(idx, term)
	}
}

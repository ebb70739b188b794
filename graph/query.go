package graph

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

// ErrInvalidQuery is returned when a query cannot be evaluated.
var ErrInvalidQuery = errors.New("invalid query")

// Var names a query variable, without the leading '?'.
type Var string

// Node is one position of a triple pattern: a variable or a fixed term.
type Node struct {
	Var  Var
	Term Term
}

// V returns a variable node.
func V(name string) Node { return Node{Var: Var(name)} }

// T returns a fixed-term node.
func T(term Term) Node { return Node{Term: term} }

// IsVar reports whether the node is a variable.
func (n Node) IsVar() bool { return n.Var != "" }

// Pattern is a triple pattern of a basic graph pattern.
type Pattern struct {
	Subject   Node
	Predicate Node
	Object    Node
}

// Filter removes solutions in which Var is bound to NotEqual.
type Filter struct {
	Var      Var
	NotEqual Term
}

// Query is a SELECT over a basic graph pattern with inequality filters.
type Query struct {
	// Prefixes are used only when rendering the query as SPARQL.
	Prefixes map[string]string
	Select   []Var
	Distinct bool
	Where    []Pattern
	Filters  []Filter
}

// Row binds the selected variables of one solution.
type Row map[Var]Term

// Validate checks that every selected and filtered variable is bound by the
// pattern and that fixed predicates are IRIs.
func (q Query) Validate() error {
	if len(q.Where) == 0 {
		return fmt.Errorf("%w: empty WHERE clause", ErrInvalidQuery)
	}
	if len(q.Select) == 0 {
		return fmt.Errorf("%w: nothing selected", ErrInvalidQuery)
	}

	bound := make(map[Var]bool)
	for i, p := range q.Where {
		for _, n := range []Node{p.Subject, p.Predicate, p.Object} {
			if n.IsVar() {
				bound[n.Var] = true
				continue
			}
			if n.Term == nil {
				return fmt.Errorf("%w: pattern %d has an empty position", ErrInvalidQuery, i)
			}
		}
		if !p.Predicate.IsVar() && p.Predicate.Term.Kind() != KindIRI {
			return fmt.Errorf("%w: pattern %d predicate is not an IRI", ErrInvalidQuery, i)
		}
		if !p.Subject.IsVar() && p.Subject.Term.Kind() == KindLiteral {
			return fmt.Errorf("%w: pattern %d subject is a literal", ErrInvalidQuery, i)
		}
	}
	for _, v := range q.Select {
		if !bound[v] {
			return fmt.Errorf("%w: selected variable ?%s is not bound", ErrInvalidQuery, v)
		}
	}
	for _, f := range q.Filters {
		if !bound[f.Var] {
			return fmt.Errorf("%w: filtered variable ?%s is not bound", ErrInvalidQuery, f.Var)
		}
		if f.NotEqual == nil {
			return fmt.Errorf("%w: filter on ?%s has no operand", ErrInvalidQuery, f.Var)
		}
	}
	return nil
}

// Query evaluates q and returns the projected rows. Row order follows the
// pattern evaluation order and is deterministic for a given graph.
func (g *Graph) Query(q Query) ([]Row, error) {
	if err := q.Validate(); err != nil {
		return nil, err
	}

	solutions := []Row{{}}
	for _, p := range q.Where {
		next := make([]Row, 0, len(solutions))
		for _, sol := range solutions {
			s := resolve(p.Subject, sol)
			pr := resolve(p.Predicate, sol)
			o := resolve(p.Object, sol)
			for _, t := range g.Match(s, pr, o) {
				if ext, ok := extend(sol, p, t); ok {
					next = append(next, ext)
				}
			}
		}
		solutions = next
		if len(solutions) == 0 {
			return []Row{}, nil
		}
	}

	rows := make([]Row, 0, len(solutions))
	seen := make(map[string]bool)
	for _, sol := range solutions {
		if rejected(sol, q.Filters) {
			continue
		}
		row := make(Row, len(q.Select))
		var key strings.Builder
		for _, v := range q.Select {
			row[v] = sol[v]
			key.WriteString(sol[v].NTriples())
			key.WriteByte(0)
		}
		if q.Distinct {
			if seen[key.String()] {
				continue
			}
			seen[key.String()] = true
		}
		rows = append(rows, row)
	}
	return rows, nil
}

func resolve(n Node, sol Row) Term {
	if !n.IsVar() {
		return n.Term
	}
	if t, ok := sol[n.Var]; ok {
		return t
	}
	return nil
}

func extend(sol Row, p Pattern, t Triple) (Row, bool) {
	ext := make(Row, len(sol)+3)
	for k, v := range sol {
		ext[k] = v
	}
	for _, pair := range []struct {
		node Node
		term Term
	}{
		{p.Subject, t.Subject},
		{p.Predicate, t.Predicate},
		{p.Object, t.Object},
	} {
		if !pair.node.IsVar() {
			continue
		}
		if prev, ok := ext[pair.node.Var]; ok {
			if prev.NTriples() != pair.term.NTriples() {
				return nil, false
			}
			continue
		}
		ext[pair.node.Var] = pair.term
	}
	return ext, true
}

func rejected(sol Row, filters []Filter) bool {
	for _, f := range filters {
		if sol[f.Var].NTriples() == f.NotEqual.NTriples() {
			return true
		}
	}
	return false
}

// SPARQL renders the query as SPARQL text for logs and diagnostics.
func (q Query) SPARQL() string {
	var sb strings.Builder

	names := make([]string, 0, len(q.Prefixes))
	for name := range q.Prefixes {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		sb.WriteString(fmt.Sprintf("PREFIX %s: <%s>\n", name, q.Prefixes[name]))
	}

	sb.WriteString("SELECT ")
	if q.Distinct {
		sb.WriteString("DISTINCT ")
	}
	for i, v := range q.Select {
		if i > 0 {
			sb.WriteString(" ")
		}
		sb.WriteString("?" + string(v))
	}
	sb.WriteString("\nWHERE {\n")
	for _, p := range q.Where {
		sb.WriteString(fmt.Sprintf("    %s %s %s .\n",
			q.renderNode(p.Subject, false),
			q.renderNode(p.Predicate, true),
			q.renderNode(p.Object, false)))
	}
	for _, f := range q.Filters {
		sb.WriteString(fmt.Sprintf("    FILTER( ?%s != %s )\n", f.Var, q.renderTerm(f.NotEqual)))
	}
	sb.WriteString("}\n")
	return sb.String()
}

func (q Query) renderNode(n Node, predicate bool) string {
	if n.IsVar() {
		return "?" + string(n.Var)
	}
	if predicate && n.Term.NTriples() == RDFType.NTriples() {
		return "a"
	}
	return q.renderTerm(n.Term)
}

func (q Query) renderTerm(t Term) string {
	iri, ok := t.(IRI)
	if !ok {
		return t.NTriples()
	}
	best := ""
	for name, ns := range q.Prefixes {
		local, found := strings.CutPrefix(iri.String(), ns)
		if !found || !isLocalName(local) {
			continue
		}
		if best == "" || len(q.Prefixes[best]) < len(ns) || (len(q.Prefixes[best]) == len(ns) && name < best) {
			best = name
		}
	}
	if best == "" {
		return iri.NTriples()
	}
	return best + ":" + strings.TrimPrefix(iri.String(), q.Prefixes[best])
}

func isLocalName(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if !((r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9') || r == '_' || r == '-') {
			return false
		}
	}
	return true
}

package graph

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleGraph() *Graph {
	g := New()
	add := func(s Term, p IRI, o Term) { g.Add(Triple{Subject: s, Predicate: p, Object: o}) }

	add(iri("weld_step"), RDFType, iri("Function"))
	add(iri("FM1"), RDFType, iri("FailureMode"))
	add(iri("FM1"), iri("preventsFunction"), iri("weld_step"))
	add(iri("FM1"), iri("hasParams"), NewStringLiteral("temp"))
	add(iri("FM1"), iri("hasParams"), NewStringLiteral("current"))
	add(iri("FM2"), RDFType, iri("FailureMode"))
	add(iri("FM2"), iri("preventsFunction"), iri("weld_step"))
	add(iri("FM3"), RDFType, iri("FailureMode"))
	add(iri("FM3"), iri("preventsFunction"), iri("glue_step"))
	add(iri("FM3"), iri("hasParams"), NewStringLiteral("viscosity"))
	return g
}

func failureModeQuery(skill string) Query {
	return Query{
		Select:   []Var{"fm", "param"},
		Distinct: true,
		Where: []Pattern{
			{V("fm"), T(RDFType), T(iri("FailureMode"))},
			{V("fm"), T(iri("preventsFunction")), T(iri(skill))},
			{V("fm"), T(iri("hasParams")), V("param")},
		},
	}
}

func TestQuery_BasicGraphPattern(t *testing.T) {
	rows, err := sampleGraph().Query(failureModeQuery("weld_step"))
	require.NoError(t, err)
	require.Len(t, rows, 2)

	params := []string{rows[0]["param"].String(), rows[1]["param"].String()}
	assert.ElementsMatch(t, []string{"temp", "current"}, params)
	for _, r := range rows {
		assert.Equal(t, iri("FM1"), r["fm"])
	}
}

func TestQuery_NoMatchIsEmpty(t *testing.T) {
	rows, err := sampleGraph().Query(failureModeQuery("paint_step"))
	require.NoError(t, err)
	assert.NotNil(t, rows)
	assert.Empty(t, rows)
}

func TestQuery_Distinct(t *testing.T) {
	q := Query{
		Select:   []Var{"fm"},
		Distinct: true,
		Where: []Pattern{
			{V("fm"), T(iri("hasParams")), V("param")},
		},
	}
	rows, err := sampleGraph().Query(q)
	require.NoError(t, err)
	assert.Len(t, rows, 2)

	q.Distinct = false
	rows, err = sampleGraph().Query(q)
	require.NoError(t, err)
	assert.Len(t, rows, 3)
}

func TestQuery_Filter(t *testing.T) {
	q := Query{
		Select: []Var{"fm"},
		Where: []Pattern{
			{V("fm"), T(iri("preventsFunction")), T(iri("weld_step"))},
		},
		Filters: []Filter{{Var: "fm", NotEqual: iri("FM1")}},
	}
	rows, err := sampleGraph().Query(q)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, iri("FM2"), rows[0]["fm"])
}

func TestQuery_JoinOnSharedVariable(t *testing.T) {
	q := Query{
		Select: []Var{"fm", "fn"},
		Where: []Pattern{
			{V("fm"), T(iri("preventsFunction")), V("fn")},
			{V("fn"), T(RDFType), T(iri("Function"))},
		},
	}
	rows, err := sampleGraph().Query(q)
	require.NoError(t, err)
	assert.Len(t, rows, 2, "glue_step is not typed as Function")
}

func TestQuery_Validate(t *testing.T) {
	tests := []struct {
		name string
		q    Query
	}{
		{"empty where", Query{Select: []Var{"x"}}},
		{"nothing selected", Query{Where: []Pattern{{V("s"), V("p"), V("o")}}}},
		{"unbound select", Query{Select: []Var{"x"}, Where: []Pattern{{V("s"), V("p"), V("o")}}}},
		{"literal predicate", Query{Select: []Var{"s"}, Where: []Pattern{{V("s"), T(NewStringLiteral("p")), V("o")}}}},
		{"literal subject", Query{Select: []Var{"o"}, Where: []Pattern{{T(NewStringLiteral("s")), V("p"), V("o")}}}},
		{"empty position", Query{Select: []Var{"s"}, Where: []Pattern{{V("s"), Node{}, V("o")}}}},
		{"unbound filter", Query{Select: []Var{"s"}, Where: []Pattern{{V("s"), V("p"), V("o")}}, Filters: []Filter{{Var: "x", NotEqual: iri("a")}}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := New().Query(tt.q)
			assert.ErrorIs(t, err, ErrInvalidQuery)
		})
	}
}

func TestQuery_SPARQL(t *testing.T) {
	q := failureModeQuery("weld_step")
	q.Prefixes = map[string]string{"fm": ns}
	q.Filters = []Filter{{Var: "fm", NotEqual: MustIRI("http://other.org/x")}}

	out := q.SPARQL()
	assert.Contains(t, out, "PREFIX fm: <http://example.org/fmea/>")
	assert.Contains(t, out, "SELECT DISTINCT ?fm ?param")
	assert.Contains(t, out, "?fm a fm:FailureMode .")
	assert.Contains(t, out, "?fm fm:preventsFunction fm:weld_step .")
	assert.Contains(t, out, "FILTER( ?fm != <http://other.org/x> )")
}

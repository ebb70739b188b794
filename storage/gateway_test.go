package storage

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/go-git/go-billy/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/c360studio/fmeakg/export"
	"github.com/c360studio/fmeakg/graph"
	"github.com/c360studio/fmeakg/testutil"
)

// failingFS fails every rename, simulating a full or read-only disk.
type failingFS struct {
	billy.Filesystem
}

func (f *failingFS) Rename(_, _ string) error {
	return errors.New("no space left on device")
}

func iri(local string) graph.IRI {
	return graph.MustIRI(testutil.Namespace + local)
}

func openSample(t *testing.T) (*Gateway, billy.Filesystem) {
	t.Helper()
	fs := testutil.MemFS(t)
	g, err := Open(fs, testutil.OntologyPath)
	require.NoError(t, err)
	return g, fs
}

func TestOpenLoadsOntology(t *testing.T) {
	g, _ := openSample(t)

	assert.Equal(t, testutil.OntologyTriples, g.Len())
	assert.Equal(t, export.FormatTurtle, g.Format())
	assert.True(t, g.Has(graph.Triple{
		Subject:   iri("OverheatingFM"),
		Predicate: iri("dp_hasFailureModeParams"),
		Object:    graph.NewStringLiteral("temperature>80"),
	}))
	assert.NotEmpty(t, g.LastHash())
}

func TestOpenErrors(t *testing.T) {
	tests := []struct {
		name string
		fs   billy.Filesystem
		path string
		opts []Option
	}{
		{
			name: "missing file",
			fs:   testutil.MemFS(t),
			path: "kg/missing.ttl",
		},
		{
			name: "malformed turtle",
			fs:   testutil.MemFSWith(t, "kg.ttl", "<http://example.org/a> <http://example.org/b> .\n"),
			path: "kg.ttl",
		},
		{
			name: "export-only format",
			fs:   testutil.MemFSWith(t, "kg.jsonld", "{}"),
			path: "kg.jsonld",
		},
		{
			name: "forced json-ld",
			fs:   testutil.MemFS(t),
			path: testutil.OntologyPath,
			opts: []Option{WithFormat(export.FormatJSONLD)},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Open(tt.fs, tt.path, tt.opts...)
			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrLoad))

			var gwErr *Error
			require.True(t, errors.As(err, &gwErr))
			assert.Equal(t, tt.path, gwErr.Path)
		})
	}
}

func TestOpenNTriples(t *testing.T) {
	content := `<http://example.org/fm1> <http://www.w3.org/1999/02/22-rdf-syntax-ns#type> <http://example.org/FailureMode> .
<http://example.org/fm1> <http://example.org/label> "Überhitzung"@de .
<http://example.org/fm1> <http://example.org/unknown> "true"^^<http://www.w3.org/2001/XMLSchema#boolean> .
_:b1 <http://example.org/about> <http://example.org/fm1> .
`
	fs := testutil.MemFSWith(t, "kg.nt", content)
	g, err := Open(fs, "kg.nt")
	require.NoError(t, err)

	assert.Equal(t, export.FormatNTriples, g.Format())
	assert.Equal(t, 4, g.Len())

	fm := graph.MustIRI("http://example.org/fm1")
	assert.True(t, g.Has(graph.Triple{Subject: fm, Predicate: graph.MustIRI("http://example.org/label"), Object: graph.NewLangLiteral("Überhitzung", "de")}))
	assert.True(t, g.Has(graph.Triple{Subject: fm, Predicate: graph.MustIRI("http://example.org/unknown"), Object: graph.NewBooleanLiteral(true)}))
	assert.Len(t, g.graph.Match(nil, graph.MustIRI("http://example.org/about"), fm), 1)
}

func TestQueryInvalidIsQueryError(t *testing.T) {
	g, _ := openSample(t)

	_, err := g.Query(graph.Query{Select: []graph.Var{"x"}})
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrQuery))
	assert.True(t, errors.Is(err, graph.ErrInvalidQuery))
}

func TestQueryNoMatchIsEmpty(t *testing.T) {
	g, _ := openSample(t)

	rows, err := g.Query(graph.Query{
		Select: []graph.Var{"fm"},
		Where: []graph.Pattern{{
			Subject:   graph.V("fm"),
			Predicate: graph.T(iri("op_preventsFunction")),
			Object:    graph.T(iri("no_such_skill")),
		}},
	})
	require.NoError(t, err)
	assert.Empty(t, rows)
}

func TestAddTripleIsNotDurableUntilSerialize(t *testing.T) {
	g, fs := openSample(t)
	before := testutil.ReadFile(t, fs, testutil.OntologyPath)

	added, err := g.AddTriple(iri("SpatterFM"), iri("dp_hasFailureModeParams"), graph.NewStringLiteral("spatter>3"))
	require.NoError(t, err)
	assert.True(t, added)

	added, err = g.AddTriple(iri("SpatterFM"), iri("dp_hasFailureModeParams"), graph.NewStringLiteral("spatter>3"))
	require.NoError(t, err)
	assert.False(t, added, "set semantics")

	assert.Equal(t, before, testutil.ReadFile(t, fs, testutil.OntologyPath))

	require.NoError(t, g.Serialize())

	reloaded, err := Open(fs, testutil.OntologyPath)
	require.NoError(t, err)
	assert.Equal(t, testutil.OntologyTriples+1, reloaded.Len())
}

func TestAddTripleRejectsInvalid(t *testing.T) {
	g, _ := openSample(t)

	_, err := g.AddTriple(graph.NewStringLiteral("subject"), iri("p"), iri("o"))
	assert.ErrorIs(t, err, graph.ErrInvalidTriple)
}

func TestCommitRoundTrip(t *testing.T) {
	g, fs := openSample(t)

	batch := []graph.Triple{
		{Subject: iri("FM_evt1_1"), Predicate: graph.RDFType, Object: iri("class_OccurredFailure")},
		{Subject: iri("FM_evt1_1"), Predicate: iri("dp_hasOccuredFailureParams"), Object: graph.NewStringLiteral("{\"x\": \"1\"}\nline2")},
		{Subject: iri("FM_evt1_1"), Predicate: iri("dp_isUnknownFailure"), Object: graph.NewBooleanLiteral(true)},
		{Subject: iri("weld_step"), Predicate: graph.RDFType, Object: iri("class_Function")},
	}

	added, err := g.Commit(batch)
	require.NoError(t, err)
	assert.Equal(t, 3, added, "pre-existing triple is not counted")

	reloaded, err := Open(fs, testutil.OntologyPath)
	require.NoError(t, err)
	assert.Equal(t, g.Triples(), reloaded.Triples())
	assert.Equal(t, g.LastHash(), reloaded.LastHash())
}

func TestCommitRollsBackOnPersistFailure(t *testing.T) {
	fs := &failingFS{Filesystem: testutil.MemFS(t)}
	g, err := Open(fs, testutil.OntologyPath)
	require.NoError(t, err)
	before := testutil.ReadFile(t, fs, testutil.OntologyPath)

	existing := graph.Triple{Subject: iri("weld_step"), Predicate: graph.RDFType, Object: iri("class_Function")}
	fresh := graph.Triple{Subject: iri("FM_evt2_1"), Predicate: graph.RDFType, Object: iri("class_OccurredFailure")}

	added, err := g.Commit([]graph.Triple{existing, fresh})
	require.Error(t, err)
	assert.Zero(t, added)
	assert.True(t, errors.Is(err, ErrPersist))

	assert.True(t, g.Has(existing), "pre-existing triples are never removed")
	assert.False(t, g.Has(fresh))
	assert.Equal(t, testutil.OntologyTriples, g.Len())
	assert.Equal(t, before, testutil.ReadFile(t, fs, testutil.OntologyPath))

	entries, err := fs.ReadDir("kg")
	require.NoError(t, err)
	assert.Len(t, entries, 1, "temp file is cleaned up")
}

func TestCommitRejectsInvalidBatch(t *testing.T) {
	g, _ := openSample(t)

	_, err := g.Commit([]graph.Triple{
		{Subject: iri("a"), Predicate: iri("b"), Object: iri("c")},
		{Subject: iri("a"), Predicate: graph.IRI{}, Object: iri("c")},
	})
	require.ErrorIs(t, err, graph.ErrInvalidTriple)
	assert.Equal(t, testutil.OntologyTriples, g.Len())
}

func TestSerializeIsDeterministicAndLeavesNoTempFiles(t *testing.T) {
	g, fs := openSample(t)

	require.NoError(t, g.Serialize())
	first := testutil.ReadFile(t, fs, testutil.OntologyPath)
	require.NoError(t, g.Serialize())
	second := testutil.ReadFile(t, fs, testutil.OntologyPath)

	assert.Equal(t, first, second)
	assert.Equal(t, hashBytes([]byte(second)), g.LastHash())

	entries, err := fs.ReadDir("kg")
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "FMEA_KG.ttl", entries[0].Name())
}

func TestSerializeDeclaresPrefixes(t *testing.T) {
	fs := testutil.MemFS(t)
	g, err := Open(fs, testutil.OntologyPath, WithPrefixes(map[string]string{"fmea": testutil.Namespace}))
	require.NoError(t, err)

	require.NoError(t, g.Serialize())
	assert.Contains(t, testutil.ReadFile(t, fs, testutil.OntologyPath), "@prefix fmea: <"+testutil.Namespace+"> .")
}

func TestExport(t *testing.T) {
	g, _ := openSample(t)

	out, err := g.Export(export.FormatNTriples)
	require.NoError(t, err)
	assert.Contains(t, out, "<"+testutil.Namespace+"coolDown> <"+testutil.Namespace+"dp_hasSysReactParams> \"wait=60s\" .")
}

func TestOpenFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "FMEA_KG.ttl")
	require.NoError(t, os.WriteFile(path, []byte(testutil.OntologyTurtle), 0644))

	g, err := OpenFile(path)
	require.NoError(t, err)

	_, err = g.Commit([]graph.Triple{{Subject: iri("x"), Predicate: iri("y"), Object: iri("z")}})
	require.NoError(t, err)

	hash, err := hashFile(path)
	require.NoError(t, err)
	assert.Equal(t, g.LastHash(), hash)
}

func TestErrorMessage(t *testing.T) {
	err := &Error{Kind: ErrPersist, Op: "serialize", Path: "kg.ttl", Err: errors.New("disk full")}
	assert.Equal(t, "serialize: persist error (kg.ttl): disk full", err.Error())
	assert.ErrorIs(t, err, ErrPersist)
	assert.NotErrorIs(t, err, ErrLoad)
}

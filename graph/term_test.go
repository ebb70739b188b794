package graph

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewIRI(t *testing.T) {
	tests := []struct {
		name    string
		in      string
		wantErr bool
	}{
		{"http namespace", "http://www.semanticweb.org/FMEA_VDA_AIAG_2021/FM_1", false},
		{"fragment", "http://example.org/onto#Weld", false},
		{"urn", "urn:fmea:weld", false},
		{"empty", "", true},
		{"relative", "weld_step", true},
		{"space", "http://example.org/a b", true},
		{"angle bracket", "http://example.org/<a>", true},
		{"quote", "http://example.org/\"a", true},
		{"bad scheme", "1http://example.org", true},
		{"leading colon", ":weld", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			iri, err := NewIRI(tt.in)
			if tt.wantErr {
				require.Error(t, err)
				assert.ErrorIs(t, err, ErrInvalidIRI)
				assert.True(t, iri.IsZero())
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.in, iri.String())
			assert.Equal(t, "<"+tt.in+">", iri.NTriples())
		})
	}
}

func TestMustIRIPanics(t *testing.T) {
	assert.Panics(t, func() { MustIRI("not an iri") })
}

func TestIRI_TextRoundTrip(t *testing.T) {
	var payload struct {
		FM  IRI `json:"fm"`
		Opt IRI `json:"opt"`
	}
	require.NoError(t, json.Unmarshal([]byte(`{"fm":"http://example.org/FM1","opt":""}`), &payload))
	assert.Equal(t, "http://example.org/FM1", payload.FM.String())
	assert.True(t, payload.Opt.IsZero())

	err := json.Unmarshal([]byte(`{"fm":"no scheme"}`), &payload)
	assert.ErrorIs(t, err, ErrInvalidIRI)
}

func TestLiteralNTriples(t *testing.T) {
	assert.Equal(t, `"plain"`, NewStringLiteral("plain").NTriples())
	assert.Equal(t, `"plain"`, NewLiteral("plain", IRI{}).NTriples())
	assert.Equal(t, `"true"^^<http://www.w3.org/2001/XMLSchema#boolean>`, NewBooleanLiteral(true).NTriples())
	assert.Equal(t, `"false"^^<http://www.w3.org/2001/XMLSchema#boolean>`, NewBooleanLiteral(false).NTriples())
	assert.Equal(t, `"Schweissen"@de`, NewLangLiteral("Schweissen", "DE").NTriples())
	assert.Equal(t, `"line1\nline \"2\"\t\\"`, NewStringLiteral("line1\nline \"2\"\t\\").NTriples())
}

func TestLiteralIdentity(t *testing.T) {
	assert.Equal(t, NewStringLiteral("x").NTriples(), NewLiteral("x", XSDString).NTriples())
	assert.NotEqual(t, NewStringLiteral("true").NTriples(), NewBooleanLiteral(true).NTriples())
}

func TestNewBlank(t *testing.T) {
	assert.Equal(t, "_:b0", NewBlank("_:b0").NTriples())
	assert.Equal(t, "genid_1", NewBlank("genid.1").String())
	assert.Equal(t, "b", NewBlank("").String())
}

package ontology

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/c360studio/fmeakg/vocabulary/fmea"
)

func TestNewVocabulary_Default(t *testing.T) {
	v, err := NewVocabulary(DefaultNamespace())
	require.NoError(t, err)

	const base = "http://www.semanticweb.org/FMEA_VDA_AIAG_2021/"
	assert.Equal(t, base+"class_FailureMode", v.ClassFailureMode.String())
	assert.Equal(t, base+"class_ExecutedMonAct", v.ClassExecutedMonAct.String())
	assert.Equal(t, base+"op_preventsFunction", v.PropPreventsFunction.String())
	assert.Equal(t, base+"op_hasSRExecutionStamp", v.PropHasSRExecutionStamp.String())
	assert.Equal(t, base+"dp_hasOccuredFailureParams", v.DataHasOccuredFailureParams.String())
	assert.Equal(t, base+"dp_isUnknownFailure", v.DataIsUnknownFailure.String())

	fn, err := v.FunctionIRI("weld_step")
	require.NoError(t, err)
	assert.Equal(t, base+"weld_step", fn.String())
}

func TestNewVocabulary_HashNamespace(t *testing.T) {
	v, err := NewVocabulary(Namespace{Base: "urn:fmea", ClassPrefix: "c_", ObjectPropertyPrefix: "o_", DataPropertyPrefix: "d_"})
	require.NoError(t, err)
	assert.Equal(t, "urn:fmea#c_Function", v.ClassFunction.String())
	assert.Equal(t, "urn:fmea#o_occurredWithStamp", v.PropOccurredWithStamp.String())
	assert.Equal(t, "urn:fmea#d_hasMonActParams", v.DataHasMonActParams.String())
}

func TestNewVocabulary_InvalidBase(t *testing.T) {
	_, err := NewVocabulary(Namespace{Base: "not a namespace"})
	assert.Error(t, err)
}

func TestVocabulary_FunctionIRIRejectsBadNames(t *testing.T) {
	v := MustVocabulary(DefaultNamespace())

	_, err := v.FunctionIRI("")
	assert.Error(t, err)

	_, err = v.FunctionIRI("weld step")
	assert.Error(t, err)
}

func TestNamespacePrefixes(t *testing.T) {
	p := Namespace{Base: "http://example.org/o", ClassPrefix: "class_"}.Prefixes()
	assert.Equal(t, "http://example.org/o#", p["fmea"])
	assert.Equal(t, "http://example.org/o#class_", p["cl"])
}

func TestVocabulary_PredicateIRI(t *testing.T) {
	v, err := NewVocabulary(Namespace{Base: "http://example.org/plant", ClassPrefix: "class_", ObjectPropertyPrefix: "op_", DataPropertyPrefix: "dp_"})
	require.NoError(t, err)

	for name := range fmea.LocalNames {
		iri, ok := v.PredicateIRI(name)
		require.True(t, ok, name)
		assert.True(t, strings.HasPrefix(iri.String(), "http://example.org/plant#"), iri.String())
	}

	iri, ok := v.PredicateIRI(fmea.OccurredWithStamp)
	require.True(t, ok)
	assert.Equal(t, "http://example.org/plant#op_occurredWithStamp", iri.String())

	_, ok = v.PredicateIRI("fmea.unknown")
	assert.False(t, ok)
}

// Package testutil provides a sample FMEA ontology and filesystem fixtures for tests.
package testutil

import (
	"testing"

	"github.com/go-git/go-billy/v5"
	"github.com/go-git/go-billy/v5/memfs"
	"github.com/go-git/go-billy/v5/util"
)

// Namespace is the base IRI of the sample ontology.
const Namespace = "http://www.semanticweb.org/FMEA_VDA_AIAG_2021/"

// OntologyPath is where the sample ontology is placed by MemFS.
const OntologyPath = "kg/FMEA_KG.ttl"

// Individuals of the sample ontology.
const (
	SkillWeld  = "weld_step"
	SkillDrill = "drill_step"
	SkillPaint = "paint_step"

	FailureModeOverheating = Namespace + "OverheatingFM"
	FailureModeWireJam     = Namespace + "WireFeedJamFM"
	FailureModeSpatter     = Namespace + "SpatterFM"
	FailureModeBitBreak    = Namespace + "BitBreakFM"

	MonActCheckTemperature = Namespace + "checkTemperature"
	MonActCheckCurrent     = Namespace + "checkCurrent"
	MonActDefault          = Namespace + "checkParameters"
	MonActVisual           = Namespace + "visualInspection"

	ReactionCoolDown    = Namespace + "coolDown"
	ReactionStopProcess = Namespace + "stopProcess"
)

// OntologyTurtle is a small FMEA knowledge graph in Turtle syntax.
//
// weld_step is prevented by OverheatingFM and WireFeedJamFM (both with params)
// and by SpatterFM (no params). OverheatingFM is monitored by checkTemperature,
// checkCurrent, the default checkParameters action and visualInspection (no
// params); coolDown and stopProcess react on it.
const OntologyTurtle = `@prefix fmea: <http://www.semanticweb.org/FMEA_VDA_AIAG_2021/> .
@prefix rdf: <http://www.w3.org/1999/02/22-rdf-syntax-ns#> .

fmea:weld_step a fmea:class_Function .
fmea:drill_step a fmea:class_Function .
fmea:paint_step a fmea:class_Function .

fmea:OverheatingFM a fmea:class_FailureMode ;
    fmea:op_preventsFunction fmea:weld_step ;
    fmea:dp_hasFailureModeParams "temperature>80" , "current>200" .

fmea:WireFeedJamFM a fmea:class_FailureMode ;
    fmea:op_preventsFunction fmea:weld_step ;
    fmea:dp_hasFailureModeParams "feed_rate<0.5" .

fmea:SpatterFM a fmea:class_FailureMode ;
    fmea:op_preventsFunction fmea:weld_step .

fmea:BitBreakFM a fmea:class_FailureMode ;
    fmea:op_preventsFunction fmea:drill_step ;
    fmea:dp_hasFailureModeParams "torque>12" .

fmea:checkTemperature a fmea:class_MonitoringAction ;
    fmea:op_monitorsFailureMode fmea:OverheatingFM ;
    fmea:dp_hasMonActParams "sensor=T1" .

fmea:checkCurrent a fmea:class_MonitoringAction ;
    fmea:op_monitorsFailureMode fmea:OverheatingFM ;
    fmea:dp_hasMonActParams "sensor=I1" .

fmea:checkParameters a fmea:class_MonitoringAction ;
    fmea:op_monitorsFailureMode fmea:OverheatingFM , fmea:WireFeedJamFM ;
    fmea:dp_hasMonActParams "all" .

fmea:visualInspection a fmea:class_MonitoringAction ;
    fmea:op_monitorsFailureMode fmea:OverheatingFM .

fmea:coolDown a fmea:class_SystemReaction ;
    fmea:op_reactsOnFailureMode fmea:OverheatingFM ;
    fmea:dp_hasSysReactParams "wait=60s" .

fmea:stopProcess a fmea:class_SystemReaction ;
    fmea:op_reactsOnFailureMode fmea:OverheatingFM , fmea:WireFeedJamFM ;
    fmea:dp_hasSysReactParams "halt" .
`

// OntologyTriples is the number of triples in OntologyTurtle.
const OntologyTriples = 34

// MemFS returns an in-memory filesystem holding the sample ontology at OntologyPath.
func MemFS(t testing.TB) billy.Filesystem {
	t.Helper()
	return MemFSWith(t, OntologyPath, OntologyTurtle)
}

// MemFSWith returns an in-memory filesystem holding content at path.
func MemFSWith(t testing.TB, path, content string) billy.Filesystem {
	t.Helper()
	fs := memfs.New()
	if err := util.WriteFile(fs, path, []byte(content), 0644); err != nil {
		t.Fatalf("write fixture %s: %v", path, err)
	}
	return fs
}

// ReadFile returns the content of path in fs.
func ReadFile(t testing.TB, fs billy.Filesystem, path string) string {
	t.Helper()
	data, err := util.ReadFile(fs, path)
	if err != nil {
		t.Fatalf("read %s: %v", path, err)
	}
	return string(data)
}

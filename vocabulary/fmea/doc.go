// Package fmea defines the FMEA ontology vocabulary: the local names of the
// classes, object properties and data properties used by the knowledge graph,
// and the dotted predicate names registered with the semstreams vocabulary
// registry.
//
// Local names are combined with a configurable namespace at runtime (see the
// ontology package). The IRIs registered here use DefaultNamespace.
//
// Classes:
//
//	Function, FailureMode, MonitoringAction, SystemReaction,
//	OccurredFailure, ExecutedSR, ExecutedMonAct
//
// Object properties:
//
//	preventsFunction, monitorsFailureMode, reactsOnFailureMode,
//	occurredWithStamp, preventedFunction, executedBecauseOfFM,
//	hasSRExecutionStamp, hasMExecutionStamp
//
// Data properties:
//
//	hasFailureModeParams, hasMonActParams, hasSysReactParams,
//	hasOccuredFailureParams, hasOccuredFailureSummary, isUnknownFailure
package fmea

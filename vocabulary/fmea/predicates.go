package fmea

import "github.com/c360studio/semstreams/vocabulary"

// Relationship predicates between pre-existing ontology individuals.
const (
	// PreventsFunction links a failure mode to the function it prevents.
	PreventsFunction = "fmea.rel.prevents_function"

	// MonitorsFailureMode links a monitoring action to the failure mode it detects.
	MonitorsFailureMode = "fmea.rel.monitors_failure_mode"

	// ReactsOnFailureMode links a system reaction to the failure mode it handles.
	ReactsOnFailureMode = "fmea.rel.reacts_on_failure_mode"
)

// Occurrence predicates written by ingestion.
const (
	// OccurredWithStamp links a failure mode to a recorded occurrence.
	OccurredWithStamp = "fmea.occurrence.occurred_with_stamp"

	// PreventedFunction links an occurrence to the interrupted skill.
	PreventedFunction = "fmea.occurrence.prevented_function"

	// OccurredFailureParams carries the controller snapshot of an occurrence.
	OccurredFailureParams = "fmea.occurrence.params"

	// OccurredFailureSummary carries the free-text summary of an occurrence.
	OccurredFailureSummary = "fmea.occurrence.summary"

	// UnknownFailure flags an occurrence whose cause was not identified.
	UnknownFailure = "fmea.occurrence.unknown_failure"
)

// Execution predicates written by ingestion.
const (
	// ExecutedBecauseOfFM links an executed action to its occurrence.
	ExecutedBecauseOfFM = "fmea.execution.because_of_fm"

	// SRExecutionStamp links a system reaction to one of its executions.
	SRExecutionStamp = "fmea.execution.sr_stamp"

	// MExecutionStamp links a monitoring action to one of its executions.
	MExecutionStamp = "fmea.execution.m_stamp"
)

// Parameter predicates describing expected parameter shapes.
const (
	// FailureModeParams describes the parameters of a failure mode.
	FailureModeParams = "fmea.param.failure_mode"

	// MonActParams describes the parameters of a monitoring action.
	MonActParams = "fmea.param.monitoring_action"

	// SysReactParams describes the parameters of a system reaction.
	SysReactParams = "fmea.param.system_reaction"
)

// LocalNames maps each registered predicate to its ontology local name.
var LocalNames = map[string]string{
	PreventsFunction:       PropPreventsFunction,
	MonitorsFailureMode:    PropMonitorsFailureMode,
	ReactsOnFailureMode:    PropReactsOnFailureMode,
	OccurredWithStamp:      PropOccurredWithStamp,
	PreventedFunction:      PropPreventedFunction,
	ExecutedBecauseOfFM:    PropExecutedBecauseOfFM,
	SRExecutionStamp:       PropHasSRExecutionStamp,
	MExecutionStamp:        PropHasMExecutionStamp,
	OccurredFailureParams:  DataHasOccuredFailureParams,
	OccurredFailureSummary: DataHasOccuredFailureSummary,
	UnknownFailure:         DataIsUnknownFailure,
	FailureModeParams:      DataHasFailureModeParams,
	MonActParams:           DataHasMonActParams,
	SysReactParams:         DataHasSysReactParams,
}

// Registered IRIs use DefaultNamespace. ontology.Vocabulary.PredicateIRI
// resolves a predicate against a configured namespace.
func objectPropertyIRI(local string) string {
	return DefaultNamespace + ObjectPropertyPrefix + local
}

func dataPropertyIRI(local string) string {
	return DefaultNamespace + DataPropertyPrefix + local
}

func init() {
	// Register relationship predicates
	vocabulary.Register(PreventsFunction,
		vocabulary.WithDescription("Failure mode prevents the execution of a function (skill)"),
		vocabulary.WithDataType("entity_id"),
		vocabulary.WithIRI(objectPropertyIRI(PropPreventsFunction)))

	vocabulary.Register(MonitorsFailureMode,
		vocabulary.WithDescription("Monitoring action detects a failure mode"),
		vocabulary.WithDataType("entity_id"),
		vocabulary.WithIRI(objectPropertyIRI(PropMonitorsFailureMode)))

	vocabulary.Register(ReactsOnFailureMode,
		vocabulary.WithDescription("System reaction handles a failure mode"),
		vocabulary.WithDataType("entity_id"),
		vocabulary.WithIRI(objectPropertyIRI(PropReactsOnFailureMode)))

	// Register occurrence predicates
	vocabulary.Register(OccurredWithStamp,
		vocabulary.WithDescription("Failure mode was observed as this occurred failure"),
		vocabulary.WithDataType("entity_id"),
		vocabulary.WithIRI(objectPropertyIRI(PropOccurredWithStamp)))

	vocabulary.Register(PreventedFunction,
		vocabulary.WithDescription("Occurred failure interrupted this function (skill)"),
		vocabulary.WithDataType("entity_id"),
		vocabulary.WithIRI(objectPropertyIRI(PropPreventedFunction)))

	vocabulary.Register(OccurredFailureParams,
		vocabulary.WithDescription("Serialized controller/process snapshot at failure time"),
		vocabulary.WithDataType("string"),
		vocabulary.WithIRI(dataPropertyIRI(DataHasOccuredFailureParams)))

	vocabulary.Register(OccurredFailureSummary,
		vocabulary.WithDescription("Free-text summary of the occurred failure"),
		vocabulary.WithDataType("string"),
		vocabulary.WithIRI(dataPropertyIRI(DataHasOccuredFailureSummary)))

	vocabulary.Register(UnknownFailure,
		vocabulary.WithDescription("Set when the cause of the occurred failure was not identified"),
		vocabulary.WithDataType("bool"),
		vocabulary.WithIRI(dataPropertyIRI(DataIsUnknownFailure)))

	// Register execution predicates
	vocabulary.Register(ExecutedBecauseOfFM,
		vocabulary.WithDescription("Executed action fired in response to this occurred failure"),
		vocabulary.WithDataType("entity_id"),
		vocabulary.WithIRI(objectPropertyIRI(PropExecutedBecauseOfFM)))

	vocabulary.Register(SRExecutionStamp,
		vocabulary.WithDescription("System reaction definition was executed as this record"),
		vocabulary.WithDataType("entity_id"),
		vocabulary.WithIRI(objectPropertyIRI(PropHasSRExecutionStamp)))

	vocabulary.Register(MExecutionStamp,
		vocabulary.WithDescription("Monitoring action definition was executed as this record"),
		vocabulary.WithDataType("entity_id"),
		vocabulary.WithIRI(objectPropertyIRI(PropHasMExecutionStamp)))

	// Register parameter predicates
	vocabulary.Register(FailureModeParams,
		vocabulary.WithDescription("Expected parameter shape of a failure mode"),
		vocabulary.WithDataType("string"),
		vocabulary.WithIRI(dataPropertyIRI(DataHasFailureModeParams)))

	vocabulary.Register(MonActParams,
		vocabulary.WithDescription("Parameters of a monitoring action"),
		vocabulary.WithDataType("string"),
		vocabulary.WithIRI(dataPropertyIRI(DataHasMonActParams)))

	vocabulary.Register(SysReactParams,
		vocabulary.WithDescription("Parameters of a system reaction"),
		vocabulary.WithDataType("string"),
		vocabulary.WithIRI(dataPropertyIRI(DataHasSysReactParams)))
}

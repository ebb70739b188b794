package fmea

// DefaultNamespace is the base IRI of the FMEA ontology.
const DefaultNamespace = "http://www.semanticweb.org/FMEA_VDA_AIAG_2021/"

// Sub-namespace prefixes appended to the namespace before a local name.
const (
	ClassPrefix          = "class_"
	ObjectPropertyPrefix = "op_"
	DataPropertyPrefix   = "dp_"
)

// DefaultMonitoringAction is the local name of the no-op monitoring action
// that is never recommended.
const DefaultMonitoringAction = "checkParameters"

// Class local names.
const (
	// ClassFunction is a process capability (skill) that can fail.
	ClassFunction = "Function"

	// ClassFailureMode is a known way a function can fail.
	ClassFailureMode = "FailureMode"

	// ClassMonitoringAction detects a failure mode.
	ClassMonitoringAction = "MonitoringAction"

	// ClassSystemReaction corrects a failure mode.
	ClassSystemReaction = "SystemReaction"

	// ClassOccurredFailure records one real failure event.
	ClassOccurredFailure = "OccurredFailure"

	// ClassExecutedSR records one firing of a system reaction.
	ClassExecutedSR = "ExecutedSR"

	// ClassExecutedMonAct records one firing of a monitoring action.
	ClassExecutedMonAct = "ExecutedMonAct"
)

// Object property local names.
const (
	// PropPreventsFunction links a failure mode to the function it prevents.
	// Domain: FailureMode, Range: Function
	PropPreventsFunction = "preventsFunction"

	// PropMonitorsFailureMode links a monitoring action to its failure mode.
	// Domain: MonitoringAction, Range: FailureMode
	PropMonitorsFailureMode = "monitorsFailureMode"

	// PropReactsOnFailureMode links a system reaction to its failure mode.
	// Domain: SystemReaction, Range: FailureMode
	PropReactsOnFailureMode = "reactsOnFailureMode"

	// PropOccurredWithStamp links a failure mode to an occurrence of it.
	// Domain: FailureMode, Range: OccurredFailure
	PropOccurredWithStamp = "occurredWithStamp"

	// PropPreventedFunction links an occurrence to the interrupted function.
	// Domain: OccurredFailure, Range: Function
	PropPreventedFunction = "preventedFunction"

	// PropExecutedBecauseOfFM links an executed action to its occurrence.
	// Domain: ExecutedSR or ExecutedMonAct, Range: OccurredFailure
	PropExecutedBecauseOfFM = "executedBecauseOfFM"

	// PropHasSRExecutionStamp links a system reaction to one of its executions.
	// Domain: SystemReaction, Range: ExecutedSR
	PropHasSRExecutionStamp = "hasSRExecutionStamp"

	// PropHasMExecutionStamp links a monitoring action to one of its executions.
	// Domain: MonitoringAction, Range: ExecutedMonAct
	PropHasMExecutionStamp = "hasMExecutionStamp"
)

// Data property local names. The "Occured" spelling matches the published
// ontology.
const (
	DataHasFailureModeParams     = "hasFailureModeParams"
	DataHasMonActParams          = "hasMonActParams"
	DataHasSysReactParams        = "hasSysReactParams"
	DataHasOccuredFailureParams  = "hasOccuredFailureParams"
	DataHasOccuredFailureSummary = "hasOccuredFailureSummary"
	DataIsUnknownFailure         = "isUnknownFailure"
)

// Package events defines the progress events emitted while a workflow
// executes and the sinks that deliver them to clients.
//
// Event flow for one execution:
//
//	stage_start        {stage_id}            (per stage, in execution order)
//	stage_complete     {stage_id, data}      (on stage success)
//	stage_error        {stage_id, error}     (on stage failure; terminal)
//	workflow_complete  {workflow_id, ...}    (terminal on success)
//
// A top-level "error" event is reserved for failures outside stage
// execution (validation, storage). Clients must tolerate unknown types.
//
// Sinks are best-effort: the executor swallows sink errors so a slow or
// disconnected consumer can never interrupt execution.
package events

// Progress event types (wire values of the "type" field).
const (
	EventTypeStageStart       = "stage_start"
	EventTypeStageComplete    = "stage_complete"
	EventTypeStageError       = "stage_error"
	EventTypeWorkflowComplete = "workflow_complete"

	// EventTypeError is the top-level error frame emitted by the HTTP
	// layer for failures outside stage execution.
	EventTypeError = "error"
)

// ProgressEvent is implemented by every event payload in this package.
type ProgressEvent interface {
	EventType() string
}

// ProgressSink receives progress events in emission order. One execution
// has exactly one producer; implementations decide how frames reach the
// consumer. Emit errors are advisory and must leave the sink usable as a
// no-op (sticky failure), never panic.
type ProgressSink interface {
	Emit(event ProgressEvent) error
	Close() error
}

package workflow

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/codeready-toolchain/council/pkg/events"
)

// Executor runs workflow definitions stage by stage. Stages execute
// sequentially in validated topological order; the first stage failure
// aborts the run. Progress events are best-effort: a broken sink never
// stops an execution.
type Executor struct {
	logger *slog.Logger
}

// NewExecutor returns a ready executor.
func NewExecutor() *Executor {
	return &Executor{logger: slog.Default()}
}

// Execute validates def, then runs its stages in order against a fresh
// context seeded with userQuery. sink may be nil. The returned error is a
// *StageExecutionError for stage failures and a *DefinitionError for
// invalid definitions; stage errors pass through unwrapped so callers see
// exactly what the stage reported.
func (e *Executor) Execute(ctx context.Context, def *Definition, userQuery string, sink events.ProgressSink) (*Result, error) {
	// 1. Validate the definition and plan the stage order
	order, err := Plan(def)
	if err != nil {
		return nil, err
	}

	logger := e.logger.With("workflow_id", def.ID, "workflow_version", def.Version)
	logger.Info("Workflow execution started", "stage_count", len(order))

	startedAt := time.Now().UTC()
	wfCtx := NewContext(userQuery)

	// 2. Run the stages sequentially
	for _, stage := range order {
		// A canceled request stops the run before the next dispatch.
		if err := ctx.Err(); err != nil {
			stageErr := NewStageError(stage.ID(), "workflow canceled", err)
			e.emit(sink, events.NewStageError(stage.ID(), stageErr.Error()))
			logger.Warn("Workflow canceled before stage dispatch", "stage_id", stage.ID())
			return nil, stageErr
		}

		e.emit(sink, events.NewStageStart(stage.ID(), stage.Name()))
		logger.Info("Stage started", "stage_id", stage.ID())
		stageStart := time.Now()

		depResults, err := wfCtx.DependencyResults(stage.Dependencies())
		if err != nil {
			stageErr := NewStageError(stage.ID(), "dependency results unavailable", err)
			e.emit(sink, events.NewStageError(stage.ID(), stageErr.Error()))
			return nil, stageErr
		}

		result, err := stage.Execute(ctx, wfCtx, depResults)
		if err != nil {
			// Stages report *StageExecutionError; anything else gets
			// wrapped so every failure names its stage.
			var stageErr *StageExecutionError
			if !errors.As(err, &stageErr) {
				err = NewStageError(stage.ID(), "stage execution failed", err)
			}
			e.emit(sink, events.NewStageError(stage.ID(), err.Error()))
			logger.Error("Stage failed",
				"stage_id", stage.ID(),
				"duration_ms", time.Since(stageStart).Milliseconds(),
				"error", err)
			return nil, err
		}

		wfCtx = wfCtx.WithStageResult(stage.ID(), result)
		e.emit(sink, events.NewStageComplete(stage.ID(), result.Data, result.Metadata))
		logger.Info("Stage completed",
			"stage_id", stage.ID(),
			"duration_ms", time.Since(stageStart).Milliseconds())
	}

	// 3. Terminal event and result assembly
	completedAt := time.Now().UTC()
	executionTime := completedAt.Sub(startedAt).Milliseconds()
	e.emit(sink, events.NewWorkflowComplete(def.ID, executionTime))
	logger.Info("Workflow execution completed", "execution_time_ms", executionTime)

	return &Result{
		WorkflowID:      def.ID,
		WorkflowVersion: def.Version,
		StageResults:    wfCtx.StageResults(),
		Metadata:        wfCtx.Metadata(),
		ExecutionTimeMs: executionTime,
		StartedAt:       startedAt,
		CompletedAt:     completedAt,
	}, nil
}

// emit forwards an event to the sink, swallowing sink errors.
func (e *Executor) emit(sink events.ProgressSink, event events.ProgressEvent) {
	if sink == nil {
		return
	}
	if err := sink.Emit(event); err != nil {
		e.logger.Debug("Progress event dropped", "event_type", event.EventType(), "error", err)
	}
}

package workflow

import (
	"errors"
	"fmt"

	"golang.org/x/sync/errgroup"
)

// Plan validates a definition and returns its stages in execution order:
// structural checks first (identity fields, duplicate IDs, unknown
// dependencies), then a topological sort that rejects cycles, then every
// stage's Validate run in parallel with the first error winning.
func Plan(def *Definition) ([]Stage, error) {
	order, err := structureAndOrder(def)
	if err != nil {
		return nil, err
	}

	var g errgroup.Group
	for _, stage := range order {
		stage := stage
		g.Go(func() error {
			if err := stage.Validate(); err != nil {
				var serr *StageExecutionError
				if errors.As(err, &serr) {
					return err
				}
				return NewStageError(stage.ID(), "stage validation failed", err)
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return order, nil
}

// structureAndOrder runs the structural checks and the topological sort
// without invoking stage validation. Ties at equal depth resolve in
// definition order, keeping runs deterministic.
func structureAndOrder(def *Definition) ([]Stage, error) {
	if def == nil {
		return nil, &DefinitionError{Message: "definition is nil"}
	}
	if def.ID == "" || def.Name == "" || def.Version == "" {
		return nil, &DefinitionError{WorkflowID: def.ID, Message: "id, name, and version are required"}
	}
	if len(def.Stages) == 0 {
		return nil, &DefinitionError{WorkflowID: def.ID, Message: "workflow must contain at least one stage"}
	}

	stageByID := make(map[string]Stage, len(def.Stages))
	for _, s := range def.Stages {
		if _, exists := stageByID[s.ID()]; exists {
			return nil, &DefinitionError{
				WorkflowID: def.ID,
				Message:    fmt.Sprintf("duplicate stage id %q", s.ID()),
			}
		}
		stageByID[s.ID()] = s
	}

	// Edges run dependency -> dependent. Dependencies are treated as a
	// set; repeated entries count once.
	indegree := make(map[string]int, len(def.Stages))
	dependents := make(map[string][]string, len(def.Stages))
	for _, s := range def.Stages {
		deps := uniqueDeps(s.Dependencies())
		for _, dep := range deps {
			if _, ok := stageByID[dep]; !ok {
				return nil, &DefinitionError{
					WorkflowID:        def.ID,
					MissingDependency: dep,
					Message: fmt.Sprintf("stage %q depends on unknown stage %q", s.ID(), dep),
				}
			}
			dependents[dep] = append(dependents[dep], s.ID())
		}
		indegree[s.ID()] = len(deps)
	}

	var queue []Stage
	for _, s := range def.Stages {
		if indegree[s.ID()] == 0 {
			queue = append(queue, s)
		}
	}

	order := make([]Stage, 0, len(def.Stages))
	for len(queue) > 0 {
		current := queue[0]
		queue = queue[1:]
		order = append(order, current)

		for _, depID := range dependents[current.ID()] {
			indegree[depID]--
			if indegree[depID] == 0 {
				queue = append(queue, stageByID[depID])
			}
		}
	}

	if len(order) != len(def.Stages) {
		remaining := make([]string, 0, len(def.Stages)-len(order))
		for _, s := range def.Stages {
			if indegree[s.ID()] > 0 {
				remaining = append(remaining, s.ID())
			}
		}
		return nil, &StageExecutionError{
			StageID: "workflow",
			Message: fmt.Sprintf("circular dependencies detected among stages %v", remaining),
		}
	}
	return order, nil
}

func uniqueDeps(deps []string) []string {
	if len(deps) < 2 {
		return deps
	}
	seen := make(map[string]bool, len(deps))
	out := deps[:0:0]
	for _, d := range deps {
		if !seen[d] {
			seen[d] = true
			out = append(out, d)
		}
	}
	return out
}

package workflow

import "fmt"

// Context carries one execution's state between stages: the user query,
// the results accumulated so far, and free-form metadata. It is logically
// immutable: WithStageResult returns a new snapshot and older snapshots
// stay valid, so a stage can never observe results produced after its
// dispatch. A Context belongs to exactly one execution.
type Context struct {
	UserQuery string

	stageResults map[string]StageResult
	metadata     map[string]any
}

// NewContext returns the initial snapshot for an execution.
func NewContext(userQuery string) *Context {
	return &Context{
		UserQuery:    userQuery,
		stageResults: map[string]StageResult{},
		metadata:     map[string]any{},
	}
}

// WithStageResult returns a snapshot whose results include stageID. The
// receiver is unchanged.
func (c *Context) WithStageResult(stageID string, result StageResult) *Context {
	next := &Context{
		UserQuery:    c.UserQuery,
		stageResults: make(map[string]StageResult, len(c.stageResults)+1),
		metadata:     c.metadata,
	}
	for id, r := range c.stageResults {
		next.stageResults[id] = r
	}
	next.stageResults[stageID] = result
	return next
}

// WithMetadata returns a snapshot with key set in its metadata.
func (c *Context) WithMetadata(key string, value any) *Context {
	next := &Context{
		UserQuery:    c.UserQuery,
		stageResults: c.stageResults,
		metadata:     make(map[string]any, len(c.metadata)+1),
	}
	for k, v := range c.metadata {
		next.metadata[k] = v
	}
	next.metadata[key] = value
	return next
}

// Result returns the result of stageID, if present.
func (c *Context) Result(stageID string) (StageResult, bool) {
	r, ok := c.stageResults[stageID]
	return r, ok
}

// DependencyResults returns the subset of results named by deps, failing
// if any is absent. The returned map is the caller's to keep.
func (c *Context) DependencyResults(deps []string) (map[string]StageResult, error) {
	out := make(map[string]StageResult, len(deps))
	for _, dep := range deps {
		r, ok := c.stageResults[dep]
		if !ok {
			return nil, fmt.Errorf("result of dependency %q is not available", dep)
		}
		out[dep] = r
	}
	return out, nil
}

// StageResults returns a copy of all results accumulated so far.
func (c *Context) StageResults() map[string]StageResult {
	out := make(map[string]StageResult, len(c.stageResults))
	for id, r := range c.stageResults {
		out[id] = r
	}
	return out
}

// Metadata returns a copy of the execution metadata.
func (c *Context) Metadata() map[string]any {
	out := make(map[string]any, len(c.metadata))
	for k, v := range c.metadata {
		out[k] = v
	}
	return out
}

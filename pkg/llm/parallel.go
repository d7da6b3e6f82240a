package llm

import (
	"context"
	"log/slog"
	"sync"
)

// queryFunc matches Client.Query and lets both clients share the fan-out.
type queryFunc func(ctx context.Context, model string, messages []Message, maxTokens int) (*Response, error)

// modelResult pairs a model with its (possibly nil) response on the
// collection channel. Completion order is irrelevant; the map assembly
// below keys by model.
type modelResult struct {
	model string
	resp  *Response
}

// queryParallel runs one query per model concurrently and collects the
// results into a map with exactly one entry per input model. Individual
// failures are logged and recorded as nil; the fan-out itself never fails.
func queryParallel(ctx context.Context, query queryFunc, models []string, messages []Message, maxTokens int) map[string]*Response {
	results := make(chan modelResult, len(models))
	var wg sync.WaitGroup

	for _, model := range models {
		wg.Add(1)
		go func(model string) {
			defer wg.Done()
			resp, err := query(ctx, model, messages, maxTokens)
			if err != nil {
				slog.Warn("Model query failed", "model", model, "error", err)
				results <- modelResult{model: model, resp: nil}
				return
			}
			results <- modelResult{model: model, resp: resp}
		}(model)
	}

	wg.Wait()
	close(results)

	out := make(map[string]*Response, len(models))
	for r := range results {
		out[r.model] = r.resp
	}
	return out
}

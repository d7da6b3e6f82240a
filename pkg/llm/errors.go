package llm

import "fmt"

// UpstreamError reports a failed provider call. StatusCode is zero for
// transport-level failures; Timeout marks deadline expiry so the HTTP edge
// can map it to 504.
type UpstreamError struct {
	Model      string
	StatusCode int
	Message    string
	Timeout    bool
	Cause      error
}

func (e *UpstreamError) Error() string {
	switch {
	case e.Timeout:
		return fmt.Sprintf("model %s: %s", e.Model, e.Message)
	case e.StatusCode != 0:
		return fmt.Sprintf("model %s: upstream status %d: %s", e.Model, e.StatusCode, e.Message)
	default:
		return fmt.Sprintf("model %s: %s", e.Model, e.Message)
	}
}

func (e *UpstreamError) Unwrap() error {
	return e.Cause
}

// HTTPStatus classifies the error for the API edge: 504 for timeouts, 503
// when the provider was overloaded or unavailable, 502 otherwise.
func (e *UpstreamError) HTTPStatus() int {
	if e.Timeout {
		return 504
	}
	switch e.StatusCode {
	case 429, 502, 503:
		return 503
	default:
		return 502
	}
}

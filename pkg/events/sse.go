package events

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"sync"
)

// ErrStreamingUnsupported is returned when the response writer cannot
// flush, which SSE requires.
var ErrStreamingUnsupported = errors.New("response writer does not support streaming")

// errSinkFailed marks a sink whose consumer went away; later emissions are
// dropped without touching the connection again.
var errSinkFailed = errors.New("sse sink closed after write failure")

// SSESink serializes progress events as Server-Sent Events frames:
//
//	data: <json>\n\n
//
// flushed per event. A write failure (client disconnect) is sticky: the
// sink keeps accepting Emit calls and drops them, so execution and the
// storage commit continue undisturbed.
type SSESink struct {
	mu      sync.Mutex
	w       http.ResponseWriter
	flusher http.Flusher
	failed  bool
}

// NewSSESink prepares w for event streaming and returns the sink. The SSE
// response headers are set here; the caller must not have written a body.
func NewSSESink(w http.ResponseWriter) (*SSESink, error) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		return nil, ErrStreamingUnsupported
	}

	h := w.Header()
	h.Set("Content-Type", "text/event-stream")
	h.Set("Cache-Control", "no-cache")
	h.Set("Connection", "keep-alive")

	return &SSESink{w: w, flusher: flusher}, nil
}

// Emit implements ProgressSink.
func (s *SSESink) Emit(event ProgressEvent) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.failed {
		return errSinkFailed
	}

	data, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to encode %s event: %w", event.EventType(), err)
	}
	if _, err := fmt.Fprintf(s.w, "data: %s\n\n", data); err != nil {
		s.failed = true
		return fmt.Errorf("sse write failed: %w", err)
	}
	s.flusher.Flush()
	return nil
}

// Close flushes any buffered output. It is safe to call after a failure.
func (s *SSESink) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.failed {
		s.flusher.Flush()
	}
	return nil
}

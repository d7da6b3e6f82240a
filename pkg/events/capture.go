package events

import "sync"

// CaptureSink records events in memory. Used by tests asserting emission
// order and by callers that execute workflows without a streaming client.
type CaptureSink struct {
	mu     sync.Mutex
	events []ProgressEvent
	closed bool
}

// NewCaptureSink returns an empty capture sink.
func NewCaptureSink() *CaptureSink {
	return &CaptureSink{}
}

// Emit implements ProgressSink.
func (s *CaptureSink) Emit(event ProgressEvent) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = append(s.events, event)
	return nil
}

// Close implements ProgressSink.
func (s *CaptureSink) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	return nil
}

// Events returns the recorded events in emission order.
func (s *CaptureSink) Events() []ProgressEvent {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]ProgressEvent, len(s.events))
	copy(out, s.events)
	return out
}

// Types returns just the event type of each recorded event, in order.
func (s *CaptureSink) Types() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]string, len(s.events))
	for i, e := range s.events {
		out[i] = e.EventType()
	}
	return out
}

// Closed reports whether Close was called.
func (s *CaptureSink) Closed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.closed
}

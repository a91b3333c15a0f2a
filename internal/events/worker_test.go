package events

import (
	"context"
	"sync"
	"testing"
)

type recordingSink struct {
	mu     sync.Mutex
	events []Event
	block  chan struct{}
}

func (s *recordingSink) Handle(ctx context.Context, e Event) error {
	if s.block != nil {
		<-s.block
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = append(s.events, e)
	return nil
}

func (s *recordingSink) count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.events)
}

func TestWorkerDeliversEvents(t *testing.T) {
	sink := &recordingSink{}
	w := NewWorker(sink, 16)
	w.Start()

	for range 5 {
		w.Publish(New(TypeExpenseCreated, "g1", map[string]any{"amount": 10.0}))
	}
	w.Shutdown()

	if got := sink.count(); got != 5 {
		t.Errorf("delivered %d events, want 5", got)
	}
}

func TestWorkerDrainsBufferOnShutdown(t *testing.T) {
	sink := &recordingSink{}
	w := NewWorker(sink, 16)

	// Enqueue before the consumer starts so everything sits in the buffer.
	for range 8 {
		w.Publish(New(TypePaymentCreated, "g1", nil))
	}
	w.Start()
	w.Shutdown()

	if got := sink.count(); got != 8 {
		t.Errorf("delivered %d events, want 8", got)
	}
}

func TestWorkerDropsWhenSaturated(t *testing.T) {
	sink := &recordingSink{block: make(chan struct{})}
	w := NewWorker(sink, 2)

	// No consumer running and a buffer of 2: the third publish must drop
	// without blocking.
	done := make(chan struct{})
	go func() {
		for range 5 {
			w.Publish(New(TypeExpenseCreated, "g1", nil))
		}
		close(done)
	}()

	<-done
	close(sink.block)
	w.Start()
	w.Shutdown()

	if got := sink.count(); got != 2 {
		t.Errorf("delivered %d events, want 2 (rest dropped)", got)
	}
}

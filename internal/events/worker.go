package events

import (
	"context"
	"log/slog"
	"sync"

	"github.com/LuvaSoftEC/yopago/internal/metrics"
)

// Sink consumes events off the worker, e.g. a notification dispatcher or an
// event log.
type Sink interface {
	Handle(ctx context.Context, e Event) error
}

// Worker is a buffered, asynchronous Publisher. Publish never blocks: when
// the buffer is full the event is dropped with a warning. On shutdown the
// remaining buffer is drained into the sink.
type Worker struct {
	eventCh chan Event
	sink    Sink
	wg      sync.WaitGroup
	ctx     context.Context
	cancel  context.CancelFunc
}

// NewWorker creates a worker feeding the sink through a buffer of the given
// size.
func NewWorker(sink Sink, bufferSize int) *Worker {
	ctx, cancel := context.WithCancel(context.Background())
	return &Worker{
		eventCh: make(chan Event, bufferSize),
		sink:    sink,
		ctx:     ctx,
		cancel:  cancel,
	}
}

// Start launches the consumer goroutine.
func (w *Worker) Start() {
	w.wg.Add(1)
	go func() {
		defer w.wg.Done()
		for {
			select {
			case <-w.ctx.Done():
				slog.Info("draining events before shutdown", "remaining_events", len(w.eventCh))
				for {
					select {
					case e := <-w.eventCh:
						w.handle(context.Background(), e)
					default:
						return
					}
				}
			case e := <-w.eventCh:
				w.handle(w.ctx, e)
			}
		}
	}()
}

func (w *Worker) handle(ctx context.Context, e Event) {
	if err := w.sink.Handle(ctx, e); err != nil {
		slog.Error("failed to handle event", "error", err, "event_type", e.Type, "group_id", e.GroupID)
	}
}

// Publish enqueues the event, dropping it if the buffer is full.
func (w *Worker) Publish(e Event) {
	select {
	case w.eventCh <- e:
	default:
		metrics.EventsDropped.Inc()
		slog.Warn("event channel full, dropping event", "event_type", e.Type, "group_id", e.GroupID)
	}
}

// Shutdown stops the worker and waits for the buffer to drain.
func (w *Worker) Shutdown() {
	w.cancel()
	w.wg.Wait()
}

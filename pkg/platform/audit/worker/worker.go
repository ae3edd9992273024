package worker

import (
	"context"
	"errors"
	"log/slog"
	"sync/atomic"

	audit "bistro/pkg/platform/audit"
)

// ErrQueueFull is returned by Emit when the inbox is saturated; the event is dropped.
var ErrQueueFull = errors.New("audit queue full")

// Worker decouples request handling from a slow sink: Emit enqueues without
// blocking and Run drains the inbox into the sink.
type Worker struct {
	sink    audit.Publisher
	inbox   chan audit.Event
	logger  *slog.Logger
	dropped atomic.Int64
}

func NewWorker(sink audit.Publisher, capacity int, logger *slog.Logger) *Worker {
	if capacity <= 0 {
		capacity = 1024
	}
	return &Worker{sink: sink, inbox: make(chan audit.Event, capacity), logger: logger}
}

// Emit implements audit.Publisher.
func (w *Worker) Emit(_ context.Context, event audit.Event) error {
	select {
	case w.inbox <- event:
		return nil
	default:
		w.dropped.Add(1)
		return ErrQueueFull
	}
}

// Dropped reports how many events were discarded because the inbox was full.
func (w *Worker) Dropped() int64 {
	return w.dropped.Load()
}

// Run forwards events until ctx is cancelled, then drains what is already queued.
func (w *Worker) Run(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			w.drain()
			return ctx.Err()
		case event := <-w.inbox:
			w.forward(ctx, event)
		}
	}
}

func (w *Worker) drain() {
	for {
		select {
		case event := <-w.inbox:
			w.forward(context.Background(), event)
		default:
			return
		}
	}
}

func (w *Worker) forward(ctx context.Context, event audit.Event) {
	if err := w.sink.Emit(ctx, event); err != nil && w.logger != nil {
		w.logger.Error("audit sink failed", "action", event.Action, "error", err)
	}
}

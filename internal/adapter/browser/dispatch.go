package browser

import (
	"context"
	"log/slog"
	"sync"
)

// eventQueueSize bounds input events waiting for delivery. Events beyond it
// are dropped; the next keystroke recalculates from current values anyway.
const eventQueueSize = 64

// dispatcher delivers page input events to handlers one at a time, in
// arrival order, on a single goroutine.
type dispatcher struct {
	mu       sync.Mutex
	handlers map[string]func(context.Context)
	events   chan string
	logger   *slog.Logger
}

func newDispatcher(logger *slog.Logger) *dispatcher {
	return &dispatcher{
		handlers: make(map[string]func(context.Context)),
		events:   make(chan string, eventQueueSize),
		logger:   logger,
	}
}

func (d *dispatcher) register(token string, h func(context.Context)) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.handlers[token] = h
}

func (d *dispatcher) unregister(token string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	delete(d.handlers, token)
}

// deliver queues an event without blocking the caller.
func (d *dispatcher) deliver(token string) {
	select {
	case d.events <- token:
	default:
		d.logger.Debug("input event dropped, queue full")
	}
}

func (d *dispatcher) run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case token := <-d.events:
			d.mu.Lock()
			h := d.handlers[token]
			d.mu.Unlock()
			if h != nil {
				h(ctx)
			}
		}
	}
}

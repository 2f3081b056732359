// Package event implements the domain event dispatcher: a process-wide
// registry of handlers notified after each successful mutating persistence
// call. Dispatch is fire-and-forget relative to the triggering use case;
// handler failures are logged, never propagated.
package event

import (
	"context"
	"sync"

	"github.com/rs/zerolog"

	"github.com/roomsync/reservation-system/internal/core/domain"
)

// Handler reacts to a single domain event.
type Handler func(ctx context.Context, ev domain.Event) error

// Invoker delivers an event to its handlers. The default invoker runs them
// inline; the queue package provides an asynchronous sharded implementation
// that preserves per-aggregate ordering.
type Invoker interface {
	Invoke(ctx context.Context, ev domain.Event, handlers []Handler)
}

// Dispatcher maps event names to handlers and buffers events recorded by use
// cases until the persistence layer confirms the mutation and calls
// DispatchForAggregate. Registration normally happens at startup, but the
// registry is lock-guarded so handlers may also be added at runtime.
type Dispatcher struct {
	mu       sync.RWMutex
	handlers map[string][]Handler
	pending  map[string][]domain.Event
	invoker  Invoker
	log      zerolog.Logger
}

// Option configures a Dispatcher.
type Option func(*Dispatcher)

// WithInvoker replaces the inline invoker, e.g. with the queue worker pool.
func WithInvoker(inv Invoker) Option {
	return func(d *Dispatcher) { d.invoker = inv }
}

// NewDispatcher returns an empty dispatcher delivering events inline.
func NewDispatcher(log zerolog.Logger, opts ...Option) *Dispatcher {
	d := &Dispatcher{
		handlers: make(map[string][]Handler),
		pending:  make(map[string][]domain.Event),
		log:      log,
	}
	d.invoker = &syncInvoker{log: log}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Register subscribes a handler to an event name. Handlers run in
// registration order.
func (d *Dispatcher) Register(name string, h Handler) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.handlers[name] = append(d.handlers[name], h)
}

// Record buffers an event for its aggregate until the mutation that produced
// it is confirmed. Recording never fails.
func (d *Dispatcher) Record(ev domain.Event) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.pending[ev.AggregateID] = append(d.pending[ev.AggregateID], ev)
}

// DispatchForAggregate publishes every pending event of the aggregate and
// clears its buffer. Called by repositories exactly once after each
// successful mutating persistence call. Dispatching with no pending events or
// no registered handlers is a no-op.
func (d *Dispatcher) DispatchForAggregate(ctx context.Context, aggregateID string) {
	d.mu.Lock()
	events := d.pending[aggregateID]
	delete(d.pending, aggregateID)
	d.mu.Unlock()

	for _, ev := range events {
		d.mu.RLock()
		handlers := make([]Handler, len(d.handlers[ev.Name]))
		copy(handlers, d.handlers[ev.Name])
		d.mu.RUnlock()

		if len(handlers) == 0 {
			continue
		}
		d.invoker.Invoke(ctx, ev, handlers)
	}
}

// DiscardForAggregate drops pending events, used when the mutation that
// recorded them fails.
func (d *Dispatcher) DiscardForAggregate(aggregateID string) {
	d.mu.Lock()
	delete(d.pending, aggregateID)
	d.mu.Unlock()
}

// syncInvoker runs handlers inline, isolating the caller from failures.
type syncInvoker struct {
	log zerolog.Logger
}

func (i *syncInvoker) Invoke(ctx context.Context, ev domain.Event, handlers []Handler) {
	for _, h := range handlers {
		RunHandler(ctx, ev, h, i.log)
	}
}

// RunHandler executes one handler, converting panics and errors into log
// entries so a misbehaving handler can never fail the triggering operation.
func RunHandler(ctx context.Context, ev domain.Event, h Handler, log zerolog.Logger) {
	defer func() {
		if r := recover(); r != nil {
			log.Error().
				Interface("panic", r).
				Str("event", ev.Name).
				Str("aggregate_id", ev.AggregateID).
				Msg("event handler panicked")
		}
	}()

	if err := h(ctx, ev); err != nil {
		log.Error().Err(err).
			Str("event", ev.Name).
			Str("aggregate_id", ev.AggregateID).
			Msg("event handler failed")
	}
}

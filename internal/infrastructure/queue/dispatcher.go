package queue

import (
	"context"
	"hash/fnv"
	"strconv"

	"github.com/rs/zerolog"

	"github.com/roomsync/reservation-system/internal/api/metrics"
	"github.com/roomsync/reservation-system/internal/core/domain"
	"github.com/roomsync/reservation-system/internal/core/event"
)

const (
	defaultWorkers = 8
	channelBuffer  = 256
)

type job struct {
	ev       domain.Event
	handlers []event.Handler
}

// AsyncInvoker delivers domain events to their handlers on a fixed set of
// workers, sharded by aggregate id with consistent hashing. Events of one
// aggregate always land on the same worker, so handler execution keeps the
// per-aggregate ordering the dispatcher promises while staying off the
// request path.
type AsyncInvoker struct {
	workers []chan job
	log     zerolog.Logger
}

// NewAsyncInvoker creates an AsyncInvoker with numWorkers sharded workers.
// If numWorkers <= 0, defaultWorkers is used.
func NewAsyncInvoker(numWorkers int, log zerolog.Logger) *AsyncInvoker {
	if numWorkers <= 0 {
		numWorkers = defaultWorkers
	}
	inv := &AsyncInvoker{
		workers: make([]chan job, numWorkers),
		log:     log,
	}
	for i := range inv.workers {
		inv.workers[i] = make(chan job, channelBuffer)
	}
	return inv
}

var _ event.Invoker = (*AsyncInvoker)(nil)

// Start launches all worker goroutines. Workers stop when ctx is cancelled.
func (inv *AsyncInvoker) Start(ctx context.Context) {
	for i, ch := range inv.workers {
		go inv.runWorker(ctx, i, ch)
	}
}

// Invoke enqueues the event for its shard. The call is non-blocking up to
// channelBuffer capacity.
func (inv *AsyncInvoker) Invoke(_ context.Context, ev domain.Event, handlers []event.Handler) {
	idx := inv.shardIndex(ev.AggregateID)
	inv.workers[idx] <- job{ev: ev, handlers: handlers}
	metrics.EventsQueueDepth.WithLabelValues(strconv.Itoa(idx)).Set(float64(len(inv.workers[idx])))
}

// shardIndex maps an aggregate id deterministically to a worker index.
func (inv *AsyncInvoker) shardIndex(aggregateID string) int {
	h := fnv.New32a()
	_, _ = h.Write([]byte(aggregateID))
	return int(h.Sum32()) % len(inv.workers)
}

func (inv *AsyncInvoker) runWorker(ctx context.Context, id int, ch <-chan job) {
	for {
		select {
		case <-ctx.Done():
			return
		case j, ok := <-ch:
			if !ok {
				return
			}
			for _, h := range j.handlers {
				event.RunHandler(ctx, j.ev, h, inv.log)
			}
			metrics.EventsDispatchedTotal.WithLabelValues(j.ev.Name).Inc()
			metrics.EventsQueueDepth.WithLabelValues(strconv.Itoa(id)).Set(float64(len(ch)))
		}
	}
}

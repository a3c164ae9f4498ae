package events

import (
	"context"
	"sync"

	"adboard/pkg/logging"
	"adboard/pkg/metrics"
)

// Predicate selects the events a subscriber wants to receive.
type Predicate func(Event) bool

// Handler consumes a matching event. Errors are logged, never propagated:
// delivery is best-effort and must not affect the publishing transaction.
type Handler func(ctx context.Context, e Event) error

// TypeIs builds a predicate matching a single event type.
func TypeIs(t string) Predicate {
	return func(e Event) bool { return e.Type() == t }
}

// Any matches every event.
func Any(Event) bool { return true }

type subscription struct {
	pred    Predicate
	handler Handler
	name    string
}

// Bus is an in-process publish/subscribe dispatcher. One instance is owned
// by the composition root and handed to publishers explicitly, so tests can
// construct isolated buses.
type Bus struct {
	mu   sync.RWMutex
	subs []subscription
	log  *logging.ComponentLogger

	mPublished *metrics.Counter
	mDelivered *metrics.Counter
	mFailures  *metrics.Counter
}

func NewBus(log *logging.Logger) *Bus {
	b := &Bus{
		mPublished: metrics.Default.Counter("events_published_total", "Total events published on the bus"),
		mDelivered: metrics.Default.Counter("events_delivered_total", "Total handler deliveries"),
		mFailures:  metrics.Default.Counter("events_handler_failures_total", "Total handler failures (swallowed)"),
	}
	if log != nil {
		b.log = log.WithComponent("events")
	}
	return b
}

// Subscribe registers a handler for events matching pred. The name is used
// only for logging failures.
func (b *Bus) Subscribe(name string, pred Predicate, h Handler) {
	if pred == nil {
		pred = Any
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	b.subs = append(b.subs, subscription{pred: pred, handler: h, name: name})
}

// Publish delivers e to every matching subscriber in registration order.
// Handler errors and panics are logged and swallowed; Publish never fails
// the caller.
func (b *Bus) Publish(ctx context.Context, e Event) {
	b.mPublished.Inc(1)

	b.mu.RLock()
	subs := append([]subscription(nil), b.subs...)
	b.mu.RUnlock()

	for _, s := range subs {
		if !s.pred(e) {
			continue
		}
		b.deliver(ctx, s, e)
	}
}

func (b *Bus) deliver(ctx context.Context, s subscription, e Event) {
	defer func() {
		if r := recover(); r != nil && b.log != nil {
			b.log.Error("event handler panicked", nil,
				logging.String("handler", s.name),
				logging.String("event", e.Type()),
				logging.Any("panic", r))
		}
	}()

	if err := s.handler(ctx, e); err != nil {
		b.mFailures.Inc(1)
		if b.log != nil {
			b.log.Error("event handler failed", err,
				logging.String("handler", s.name),
				logging.String("event", e.Type()),
				logging.String("advertisement_id", e.AdvertisementID()))
		}
		return
	}
	b.mDelivered.Inc(1)
}

package analytics

import (
	"context"
	"fmt"
	"sync"
	"time"

	"tutorial-portal/internal/logging"
	"tutorial-portal/internal/metrics"
)

const (
	// DefaultQueueSize bounds the number of undelivered events.
	DefaultQueueSize = 1024

	sinkTimeout = 5 * time.Second
)

// Dispatcher is an asynchronous Tracker that fans events out to sinks.
type Dispatcher struct {
	sinks []Sink
	queue chan Event
	now   func() time.Time

	mu     sync.RWMutex
	closed bool

	done chan struct{}
}

// NewDispatcher starts a dispatcher with the given queue size. Sizes below
// one use DefaultQueueSize.
func NewDispatcher(queueSize int, sinks ...Sink) *Dispatcher {
	if queueSize < 1 {
		queueSize = DefaultQueueSize
	}
	d := &Dispatcher{
		sinks: sinks,
		queue: make(chan Event, queueSize),
		now:   time.Now,
		done:  make(chan struct{}),
	}
	go d.run()
	return d
}

// Track enqueues an event. It never blocks; if the queue is full or the
// dispatcher is closed, the event is dropped.
func (d *Dispatcher) Track(name string, props map[string]string) {
	metrics.AnalyticsEventsTotal.WithLabelValues(name).Inc()

	e := Event{Name: name, Props: cloneProps(props), At: d.now()}

	d.mu.RLock()
	defer d.mu.RUnlock()
	if d.closed {
		metrics.AnalyticsEventsDropped.Inc()
		return
	}

	select {
	case d.queue <- e:
	default:
		metrics.AnalyticsEventsDropped.Inc()
		logging.Debug("analytics queue full, dropping %s", name)
	}
}

// Close stops accepting events and waits for queued events to be delivered
// or ctx to expire.
func (d *Dispatcher) Close(ctx context.Context) error {
	d.mu.Lock()
	if !d.closed {
		d.closed = true
		close(d.queue)
	}
	d.mu.Unlock()

	select {
	case <-d.done:
		return nil
	case <-ctx.Done():
		return fmt.Errorf("analytics dispatcher drain: %w", ctx.Err())
	}
}

func (d *Dispatcher) run() {
	defer close(d.done)
	for e := range d.queue {
		for _, s := range d.sinks {
			d.deliver(s, e)
		}
	}
}

func (d *Dispatcher) deliver(s Sink, e Event) {
	defer func() {
		if r := recover(); r != nil {
			metrics.AnalyticsSinkErrors.WithLabelValues(s.Name()).Inc()
			logging.Error("analytics sink %s panicked on %s: %v", s.Name(), e.Name, r)
		}
	}()

	ctx, cancel := context.WithTimeout(context.Background(), sinkTimeout)
	defer cancel()

	if err := s.Write(ctx, e); err != nil {
		metrics.AnalyticsSinkErrors.WithLabelValues(s.Name()).Inc()
		logging.Warn("analytics sink %s failed on %s: %v", s.Name(), e.Name, err)
	}
}

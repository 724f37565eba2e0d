package events

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"
)

// ErrBusClosed is returned by Publish after Close
var ErrBusClosed = errors.New("event bus closed")

// Handler consumes a delivered event. A returned error is logged and never
// propagates back to the mutation that produced the event.
type Handler func(ctx context.Context, event Event) error

type subscription struct {
	id      int
	name    string
	handler Handler
}

// Bus is the in-process event bus.
//
// Publish never blocks and never runs handlers inline: events are appended to
// an unbounded queue and delivered by a single dispatcher goroutine, in
// publish order, to handlers in subscription order. A handler that panics or
// fails does not affect other handlers or the publisher.
type Bus struct {
	mu       sync.Mutex
	cond     *sync.Cond
	queue    []Event
	subs     []subscription
	nextID   int
	sequence int64
	inFlight bool
	closed   bool

	ctx    context.Context
	cancel context.CancelFunc
	done   chan struct{}
	logger *slog.Logger
}

// NewBus creates a bus and starts its dispatcher
func NewBus(logger *slog.Logger) *Bus {
	if logger == nil {
		logger = slog.Default()
	}
	ctx, cancel := context.WithCancel(context.Background())
	b := &Bus{
		ctx:    ctx,
		cancel: cancel,
		done:   make(chan struct{}),
		logger: logger,
	}
	b.cond = sync.NewCond(&b.mu)
	go b.dispatch()
	return b
}

// Subscribe registers a handler and returns a function that removes it.
// The name only appears in logs.
func (b *Bus) Subscribe(name string, h Handler) (unsubscribe func()) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.nextID++
	id := b.nextID
	b.subs = append(b.subs, subscription{id: id, name: name, handler: h})

	var once sync.Once
	return func() {
		once.Do(func() {
			b.mu.Lock()
			defer b.mu.Unlock()
			for i, s := range b.subs {
				if s.id == id {
					b.subs = append(b.subs[:i:i], b.subs[i+1:]...)
					return
				}
			}
		})
	}
}

// Publish stamps the event with a sequence number and timestamp and queues it
// for delivery
func (b *Bus) Publish(event Event) error {
	if b == nil {
		return nil
	}
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		return ErrBusClosed
	}

	b.sequence++
	event.SequenceID = b.sequence
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now()
	}
	b.queue = append(b.queue, event)
	b.cond.Broadcast()
	return nil
}

// Flush blocks until every event published before the call has been
// delivered. Must not be called from inside a handler.
func (b *Bus) Flush() {
	b.mu.Lock()
	defer b.mu.Unlock()
	for len(b.queue) > 0 || b.inFlight {
		b.cond.Wait()
	}
}

// Close stops accepting events, delivers everything already queued and stops
// the dispatcher. Safe to call more than once.
func (b *Bus) Close() error {
	b.mu.Lock()
	if b.closed {
		b.mu.Unlock()
		<-b.done
		return nil
	}
	b.closed = true
	b.cond.Broadcast()
	b.mu.Unlock()

	<-b.done
	b.cancel()
	return nil
}

// Pending returns the number of queued, undelivered events
func (b *Bus) Pending() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.queue)
}

func (b *Bus) dispatch() {
	defer close(b.done)

	for {
		b.mu.Lock()
		for len(b.queue) == 0 && !b.closed {
			b.cond.Wait()
		}
		if len(b.queue) == 0 {
			b.mu.Unlock()
			return
		}

		event := b.queue[0]
		b.queue[0] = Event{}
		b.queue = b.queue[1:]
		b.inFlight = true
		subs := make([]subscription, len(b.subs))
		copy(subs, b.subs)
		b.mu.Unlock()

		for _, s := range subs {
			if err := b.deliver(s, event); err != nil {
				b.logger.Warn("event handler failed",
					"handler", s.name,
					"event_type", event.Type,
					"sequence_id", event.SequenceID,
					"error", err)
			}
		}

		b.mu.Lock()
		b.inFlight = false
		b.cond.Broadcast()
		b.mu.Unlock()
	}
}

// deliver runs one handler, converting a panic into an error
func (b *Bus) deliver(s subscription, event Event) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("handler panicked: %v", r)
		}
	}()
	return s.handler(b.ctx, event)
}

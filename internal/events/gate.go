package events

import "sync"

// Gate sits between a publisher and its destination. While open it forwards
// every event; while held it queues them until Release forwards them in
// order or Discard drops them.
type Gate struct {
	mu   sync.Mutex
	next Publisher
	held bool
	buf  []Event
}

// NewGate returns an open gate in front of next
func NewGate(next Publisher) *Gate {
	return &Gate{next: next}
}

// Publish forwards event, or queues it while the gate is held
func (g *Gate) Publish(event Event) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.held {
		g.buf = append(g.buf, event)
		return nil
	}
	return g.next.Publish(event)
}

// Hold starts queueing events
func (g *Gate) Hold() {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.held = true
}

// Release forwards the queued events and reopens the gate. Forwarding stops
// at the first error; the rest are dropped.
func (g *Gate) Release() error {
	g.mu.Lock()
	defer g.mu.Unlock()

	queued := g.buf
	g.buf = nil
	g.held = false
	for _, ev := range queued {
		if err := g.next.Publish(ev); err != nil {
			return err
		}
	}
	return nil
}

// Discard drops the queued events, reopens the gate and returns how many
// were dropped
func (g *Gate) Discard() int {
	g.mu.Lock()
	defer g.mu.Unlock()

	n := len(g.buf)
	g.buf = nil
	g.held = false
	return n
}

package events

import (
	"context"

	"github.com/thenoetrevino/kanbot/internal/types"
)

// Publisher accepts domain events for deferred delivery.
// The board engine depends only on this.
type Publisher interface {
	Publish(event Event) error
}

// EventPublisher defines the interface for sending and receiving events
// through the daemon. This interface allows for loose coupling and easier
// testing by depending on behavior rather than concrete implementation.
type EventPublisher interface {
	// Connect establishes a connection to the daemon socket
	Connect(ctx context.Context) error

	// SendEvent queues an event to be sent to the daemon
	SendEvent(event Event) error

	// Listen starts listening for events from the daemon
	Listen(ctx context.Context) (<-chan Event, error)

	// Subscribe changes the subscription to a specific board
	Subscribe(boardID types.BoardID) error

	// SetNotifyFunc registers a callback for connection state changes
	SetNotifyFunc(fn NotifyFunc)

	// Close closes the connection to the daemon and stops all goroutines
	Close() error
}

// NotifyFunc receives connection state notifications ("info", "warning", "error")
type NotifyFunc func(level, message string)

// Compile-time verification
var (
	_ Publisher      = (*Bus)(nil)
	_ Publisher      = (*Gate)(nil)
	_ EventPublisher = (*Client)(nil)
)

package testutil

import (
	"context"
	"encoding/json"
	"errors"
	"net"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/thenoetrevino/kanbot/internal/daemon"
	"github.com/thenoetrevino/kanbot/internal/events"
	"github.com/thenoetrevino/kanbot/internal/types"
)

// SetupTestDaemon starts a daemon on a socket in a temporary directory and
// waits until it accepts connections. The daemon is shut down on cleanup.
func SetupTestDaemon(t *testing.T, opts ...daemon.Options) (*daemon.Server, string) {
	t.Helper()

	var o daemon.Options
	if len(opts) > 0 {
		o = opts[0]
	}
	socketPath := filepath.Join(t.TempDir(), "kanbot.sock")

	server, err := daemon.NewServer(socketPath, o)
	if err != nil {
		t.Fatalf("Failed to create test daemon: %v", err)
	}
	t.Cleanup(func() {
		if err := server.Shutdown(); err != nil {
			t.Logf("daemon shutdown: %v", err)
		}
	})

	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	go func() {
		if err := server.Start(ctx); err != nil {
			t.Logf("daemon stopped: %v", err)
		}
	}()

	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if _, err := os.Stat(socketPath); err == nil {
			time.Sleep(10 * time.Millisecond)
			return server, socketPath
		}
		time.Sleep(10 * time.Millisecond)
	}

	t.Fatal("Timeout waiting for daemon socket to be created")
	return nil, ""
}

// SetupTestClient connects an event client to the daemon at socketPath.
// The client is closed on cleanup.
func SetupTestClient(t *testing.T, socketPath string) *events.Client {
	t.Helper()

	client, err := events.NewClient(socketPath)
	if err != nil {
		t.Fatalf("Failed to create test client: %v", err)
	}
	t.Cleanup(func() { _ = client.Close() })

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := client.Connect(ctx); err != nil {
		t.Fatalf("Failed to connect test client: %v", err)
	}
	return client
}

// WaitForClientCount reports whether the daemon reaches the expected number
// of connected clients within timeout
func WaitForClientCount(t *testing.T, server *daemon.Server, expected int, timeout time.Duration) bool {
	t.Helper()

	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if server.Metrics().ConnectedClients == int32(expected) {
			return true
		}
		time.Sleep(10 * time.Millisecond)
	}
	return false
}

// RawConn speaks the daemon wire protocol directly, without the retry and
// keepalive handling of events.Client
type RawConn struct {
	t    *testing.T
	conn net.Conn
	enc  *json.Encoder
	dec  *json.Decoder
}

// DialRaw opens a RawConn to the daemon. It is closed on cleanup.
func DialRaw(t *testing.T, socketPath string) *RawConn {
	t.Helper()

	conn, err := (&net.Dialer{}).DialContext(context.Background(), "unix", socketPath)
	if err != nil {
		t.Fatalf("Failed to dial daemon socket: %v", err)
	}
	t.Cleanup(func() { _ = conn.Close() })

	return &RawConn{t: t, conn: conn, enc: json.NewEncoder(conn), dec: json.NewDecoder(conn)}
}

func (r *RawConn) send(msg events.Message) {
	r.t.Helper()
	msg.Version = events.ProtocolVersion
	if err := r.enc.Encode(msg); err != nil {
		r.t.Fatalf("Failed to send %s message: %v", msg.Type, err)
	}
}

// Subscribe limits delivery to boardID and waits for the daemon's ack.
// An empty board ID subscribes to every board.
func (r *RawConn) Subscribe(boardID types.BoardID) {
	r.t.Helper()
	r.send(events.Message{Type: "subscribe", Subscribe: &events.SubscribeMessage{BoardID: boardID}})

	msg := r.Next(2 * time.Second)
	if msg.Type != "ack" || msg.Subscribe == nil || msg.Subscribe.BoardID != boardID {
		r.t.Fatalf("Expected ack for board %q, got %+v", boardID, msg)
	}
}

// Publish sends ev for the daemon to fan out
func (r *RawConn) Publish(ev events.Event) {
	r.t.Helper()
	r.send(events.Message{Type: "event", Event: &ev})
}

// Pong answers a ping
func (r *RawConn) Pong() {
	r.t.Helper()
	r.send(events.Message{Type: "pong"})
}

// Next reads the next message of any type, failing the test after timeout
func (r *RawConn) Next(timeout time.Duration) events.Message {
	r.t.Helper()
	msg, err := r.read(timeout)
	if err != nil {
		r.t.Fatalf("Failed to read message: %v", err)
	}
	return msg
}

// NextEvent reads until an event message arrives, answering pings on the way
func (r *RawConn) NextEvent(timeout time.Duration) events.Event {
	r.t.Helper()
	deadline := time.Now().Add(timeout)
	for {
		msg := r.Next(time.Until(deadline))
		switch {
		case msg.Type == "ping":
			r.Pong()
		case msg.Type == "event" && msg.Event != nil:
			return *msg.Event
		}
	}
}

// ExpectNoEvent fails the test if an event message arrives within timeout.
// Pings are answered and otherwise ignored. The connection cannot be read
// again afterwards.
func (r *RawConn) ExpectNoEvent(timeout time.Duration) {
	r.t.Helper()
	deadline := time.Now().Add(timeout)
	for {
		msg, err := r.read(time.Until(deadline))
		var netErr net.Error
		if errors.As(err, &netErr) && netErr.Timeout() {
			return
		}
		if err != nil {
			r.t.Fatalf("Failed to read message: %v", err)
		}
		switch msg.Type {
		case "ping":
			r.Pong()
		case "event":
			r.t.Fatalf("Unexpected event received: %+v", msg.Event)
		}
	}
}

func (r *RawConn) read(timeout time.Duration) (events.Message, error) {
	if err := r.conn.SetReadDeadline(time.Now().Add(timeout)); err != nil {
		return events.Message{}, err
	}
	var msg events.Message
	err := r.dec.Decode(&msg)
	return msg, err
}

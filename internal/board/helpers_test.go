package board

import (
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/thenoetrevino/kanbot/internal/events"
	"github.com/thenoetrevino/kanbot/internal/models"
	"github.com/thenoetrevino/kanbot/internal/types"
)

// ============================================================================
// TEST HELPERS
// ============================================================================

// recordingPublisher captures events synchronously
type recordingPublisher struct {
	mu     sync.Mutex
	events []events.Event
}

func (r *recordingPublisher) Publish(e events.Event) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, e)
	return nil
}

func (r *recordingPublisher) all() []events.Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]events.Event(nil), r.events...)
}

func (r *recordingPublisher) last(t *testing.T) events.Event {
	t.Helper()
	all := r.all()
	require.NotEmpty(t, all, "expected at least one event")
	return all[len(all)-1]
}

// sequentialIDs returns a deterministic id generator: c_1, c_2, l_1 ...
func sequentialIDs() func(string) string {
	var mu sync.Mutex
	counters := map[string]int{}
	return func(prefix string) string {
		mu.Lock()
		defer mu.Unlock()
		counters[prefix]++
		return fmt.Sprintf("%s_%d", prefix, counters[prefix])
	}
}

var fixedNow = time.Date(2025, 3, 14, 9, 26, 53, 0, time.UTC)

func newTestEngine(t *testing.T, opts ...Option) (*Engine, *recordingPublisher) {
	t.Helper()
	pub := &recordingPublisher{}
	base := []Option{
		WithPublisher(pub),
		WithIDGenerator(sequentialIDs()),
		WithClock(func() time.Time { return fixedNow }),
	}
	return New(append(base, opts...)...), pub
}

func createCard(t *testing.T, e *Engine, listID types.ListID, title string) *models.Card {
	t.Helper()
	card, err := e.CreateCard(listID, title, "")
	require.NoError(t, err)
	return card
}

func cardIDs(t *testing.T, e *Engine, listID types.ListID) []types.CardID {
	t.Helper()
	list, err := e.List(listID)
	require.NoError(t, err)
	return list.CardIDs
}

func ptr[T any](v T) *T {
	return &v
}

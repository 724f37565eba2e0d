// Package board implements the board state engine: the single owner of the
// graph of boards, lists and cards.
//
// Every operation runs as one atomic transition under the engine mutex and,
// when it changes state, queues exactly one domain event on the configured
// publisher. Events are queued while the lock is still held so observers see
// them in commit order; delivery itself happens later on the publisher's own
// goroutine.
package board

import (
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/thenoetrevino/kanbot/internal/events"
	"github.com/thenoetrevino/kanbot/internal/models"
	"github.com/thenoetrevino/kanbot/internal/types"
)

// UntitledCard replaces card titles that are empty after trimming
const UntitledCard = "Untitled"

// Stages designates lists with special behavior
type Stages struct {
	// InProgress: editing a card's title or description here marks its
	// automation output stale (requiresAction)
	InProgress types.ListID
	// AwaitingConfig: moving a card here starts provider onboarding
	AwaitingConfig types.ListID
}

// DefaultStages matches the default board layout
func DefaultStages() Stages {
	return Stages{
		InProgress:     types.InProgressListID,
		AwaitingConfig: types.TodoListID,
	}
}

// Option configures an Engine
type Option func(*Engine)

// WithPublisher sets where domain events are queued. Nil disables events.
func WithPublisher(p events.Publisher) Option {
	return func(e *Engine) {
		e.publisher = p
	}
}

// WithStages overrides the stage designations
func WithStages(s Stages) Option {
	return func(e *Engine) {
		e.stages = s
	}
}

// WithIDGenerator replaces the random identifier source (tests)
func WithIDGenerator(fn func(prefix string) string) Option {
	return func(e *Engine) {
		e.newID = fn
	}
}

// WithClock replaces time.Now (tests)
func WithClock(fn func() time.Time) Option {
	return func(e *Engine) {
		e.now = fn
	}
}

// WithLogger sets the engine logger
func WithLogger(logger *slog.Logger) Option {
	return func(e *Engine) {
		e.logger = logger
	}
}

// Engine owns the board graph. Construct it with New; the zero value is not usable.
type Engine struct {
	mu sync.RWMutex

	boards map[types.BoardID]*models.Board
	lists  map[types.ListID]*models.List
	cards  map[types.CardID]*models.Card
	labels map[types.LabelID]*models.Label

	currentBoardID types.BoardID
	onboardCardID  types.CardID

	stages    Stages
	publisher events.Publisher
	newID     func(prefix string) string
	now       func() time.Time
	logger    *slog.Logger
}

// New creates an engine seeded with the default board
func New(opts ...Option) *Engine {
	e := &Engine{
		stages: DefaultStages(),
		newID:  randomID,
		now:    time.Now,
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(e)
	}
	e.seed()
	return e
}

// Stages returns the configured stage designations
func (e *Engine) Stages() Stages {
	return e.stages
}

// seed installs the default board. Caller must hold the lock or own e exclusively.
func (e *Engine) seed() {
	e.boards = map[types.BoardID]*models.Board{
		types.DefaultBoardID: {
			ID:   types.DefaultBoardID,
			Name: "My Board",
			ListIDs: []types.ListID{
				types.BacklogListID, types.TodoListID, types.InProgressListID, types.DoneListID,
			},
		},
	}
	e.lists = map[types.ListID]*models.List{}
	for i, title := range []string{"Backlog", "To Do", "In Progress", "Done"} {
		id := e.boards[types.DefaultBoardID].ListIDs[i]
		e.lists[id] = &models.List{
			ID:       id,
			BoardID:  types.DefaultBoardID,
			Title:    title,
			CardIDs:  []types.CardID{},
			Position: i,
		}
	}
	e.cards = map[types.CardID]*models.Card{}
	e.labels = map[types.LabelID]*models.Label{}
	e.currentBoardID = types.DefaultBoardID
	e.onboardCardID = ""
}

// Reset discards all state and reinstates the default board
func (e *Engine) Reset() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.seed()
}

// publish queues an event. Must be called with the lock held, after the
// transition is complete. A publish failure never undoes the transition.
func (e *Engine) publish(event events.Event) {
	if e.publisher == nil {
		return
	}
	if err := e.publisher.Publish(event); err != nil {
		e.logger.Warn("failed to queue domain event", "event_type", event.Type, "error", err)
	}
}

// allocate returns a fresh identifier with the given prefix that passes the
// taken check
func (e *Engine) allocate(prefix string, taken func(string) bool) string {
	for {
		id := e.newID(prefix)
		if !taken(id) {
			return id
		}
	}
}

func randomID(prefix string) string {
	return prefix + "_" + strings.ReplaceAll(uuid.NewString(), "-", "")[:8]
}

// normalizeTitle trims a card title and substitutes a placeholder when empty
func normalizeTitle(title string) string {
	t := strings.TrimSpace(title)
	if t == "" {
		return UntitledCard
	}
	return t
}

// clamp bounds n into [lo, hi]
func clamp(n, lo, hi int) int {
	return max(lo, min(hi, n))
}

// restamp rewrites card positions so each equals its index in the list
func (e *Engine) restamp(list *models.List) {
	for i, id := range list.CardIDs {
		if card, ok := e.cards[id]; ok {
			card.Position = i
		}
	}
}

func (e *Engine) boardOf(list *models.List) types.BoardID {
	if list == nil {
		return e.currentBoardID
	}
	return list.BoardID
}

package app

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/thenoetrevino/kanbot/internal/automation"
	"github.com/thenoetrevino/kanbot/internal/board"
	"github.com/thenoetrevino/kanbot/internal/database"
	"github.com/thenoetrevino/kanbot/internal/events"
	"github.com/thenoetrevino/kanbot/internal/mirror"
)

// App holds the engine, its event bus and the observers wired to it.
// This is the main application container that manages their lifecycles.
type App struct {
	// Board State Engine, the only writer of board state
	Engine *board.Engine

	// In-process bus the engine publishes to
	Bus *events.Bus

	db     *sql.DB
	repo   *database.Repository
	mirror *mirror.Mirror
	gate   *events.Gate
	logger *slog.Logger

	// Serializes Update and Reset within the process
	mu sync.Mutex

	eventClient events.EventPublisher
	unsubscribe []func()
}

// New creates a new App on an open, migrated database.
//
// The engine state is restored from the last saved snapshot when one exists;
// otherwise the seeded default board is written out so the next start finds
// it. The App does not own db: Close leaves it open.
func New(ctx context.Context, db *sql.DB, opts ...Option) (*App, error) {
	cfg := &appConfig{
		stages:     board.DefaultStages(),
		maxRetries: 3,
	}
	for _, opt := range opts {
		opt(cfg)
	}
	if cfg.logger == nil {
		cfg.logger = slog.Default()
	}

	repo := database.NewRepository(db)
	bus := events.NewBus(cfg.logger)
	gate := events.NewGate(bus)

	engineOpts := append([]board.Option{
		board.WithPublisher(gate),
		board.WithStages(cfg.stages),
		board.WithLogger(cfg.logger),
	}, cfg.engineOpts...)
	engine := board.New(engineOpts...)

	m := mirror.New(engine, repo, cfg.logger)
	loaded, err := m.Load(ctx)
	if err != nil {
		_ = bus.Close()
		return nil, fmt.Errorf("failed to restore board state: %w", err)
	}
	if !loaded {
		err := m.Sync(ctx)
		if errors.Is(err, database.ErrSnapshotConflict) {
			// Another process saved the first state; use theirs
			loaded, err = m.Load(ctx)
		}
		if err != nil {
			_ = bus.Close()
			return nil, fmt.Errorf("failed to save initial board state: %w", err)
		}
	}

	a := &App{
		Engine:      engine,
		Bus:         bus,
		db:          db,
		repo:        repo,
		mirror:      m,
		gate:        gate,
		logger:      cfg.logger,
		eventClient: cfg.eventClient,
	}

	a.unsubscribe = append(a.unsubscribe,
		bus.Subscribe("mirror", m.Handle),
		bus.Subscribe("automation", automation.New(engine, repo, cfg.logger).Handle),
	)
	if cfg.eventClient != nil {
		a.unsubscribe = append(a.unsubscribe,
			bus.Subscribe("daemon-relay", events.Relay(cfg.eventClient, cfg.maxRetries)))
	}

	cfg.logger.Debug("app initialized",
		"restored", loaded,
		"relay", cfg.eventClient != nil)

	return a, nil
}

// Repo returns the underlying repository for direct database access
func (a *App) Repo() database.DataStore {
	return a.repo
}

// DB returns the database the App was created on
func (a *App) DB() *sql.DB {
	return a.db
}

// Flush blocks until every event published so far has reached all observers
func (a *App) Flush() {
	a.Bus.Flush()
}

// maxUpdateAttempts bounds how often Update retries after losing a race
// with another process
const maxUpdateAttempts = 5

// Update runs fn as one unit of work against the latest stored board state.
//
// The engine is reloaded from the store, fn runs, and the resulting snapshot
// is saved only if nobody else has saved since the reload. Events fn causes
// are held back until the save succeeds. When another process wins the race
// the engine is reloaded and fn runs again, so fn must only act through the
// engine it is given. If fn fails nothing is saved and the engine is reloaded.
func (a *App) Update(ctx context.Context, fn func(e *board.Engine) error) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.Flush()

	for attempt := 1; attempt <= maxUpdateAttempts; attempt++ {
		if _, err := a.mirror.Load(ctx); err != nil {
			return err
		}

		a.gate.Hold()
		if err := fn(a.Engine); err != nil {
			a.gate.Discard()
			if _, lerr := a.mirror.Load(ctx); lerr != nil {
				a.logger.Error("failed to reload board state", "error", lerr)
			}
			return err
		}

		err := a.mirror.SaveSnapshot(ctx)
		if errors.Is(err, database.ErrSnapshotConflict) {
			dropped := a.gate.Discard()
			a.logger.Info("board state changed by another process, retrying",
				"attempt", attempt, "dropped_events", dropped)
			continue
		}
		if err != nil {
			a.gate.Discard()
			if _, lerr := a.mirror.Load(ctx); lerr != nil {
				a.logger.Error("failed to reload board state", "error", lerr)
			}
			return err
		}

		if err := a.gate.Release(); err != nil {
			return fmt.Errorf("failed to deliver board events: %w", err)
		}
		a.Flush()
		return nil
	}

	// Leave the engine on the latest stored state
	if _, err := a.mirror.Load(ctx); err != nil {
		a.logger.Error("failed to reload board state", "error", err)
	}
	return fmt.Errorf("gave up after %d attempts: %w", maxUpdateAttempts, database.ErrSnapshotConflict)
}

// Reset reseeds the engine and overwrites the stored state with it
func (a *App) Reset(ctx context.Context) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.Flush()

	a.Engine.Reset()
	if err := a.repo.ClearSnapshot(ctx); err != nil {
		return err
	}
	a.mirror.Forget()
	return a.mirror.Sync(ctx)
}

// Close delivers pending events and stops the bus. It does not close the
// database or the daemon client.
func (a *App) Close() error {
	err := a.Bus.Close()
	for _, unsub := range a.unsubscribe {
		unsub()
	}
	a.unsubscribe = nil
	if err != nil && !errors.Is(err, events.ErrBusClosed) {
		return err
	}
	return nil
}

type contextKey struct{}

// NewContext returns a context carrying a
func NewContext(ctx context.Context, a *App) context.Context {
	return context.WithValue(ctx, contextKey{}, a)
}

// FromContext returns the App stored by NewContext, if any
func FromContext(ctx context.Context) (*App, bool) {
	if ctx == nil {
		return nil, false
	}
	a, ok := ctx.Value(contextKey{}).(*App)
	return a, ok && a != nil
}

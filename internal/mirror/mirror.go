// Package mirror keeps the SQLite store in step with the board engine.
//
// It runs as an event bus observer: each domain event names the lists whose
// card records may have changed, and the mirror re-reads those lists from the
// engine and upserts their records. After every event the full engine
// snapshot is saved so the next process start can restore it.
//
// Snapshot saves are compare-and-swap on the stored revision: the mirror
// remembers the revision it last loaded or saved, and a save fails with
// database.ErrSnapshotConflict when another process has written since.
package mirror

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/thenoetrevino/kanbot/internal/board"
	"github.com/thenoetrevino/kanbot/internal/database"
	"github.com/thenoetrevino/kanbot/internal/events"
	"github.com/thenoetrevino/kanbot/internal/models"
	"github.com/thenoetrevino/kanbot/internal/types"
)

// Source is the side of the engine the mirror needs
type Source interface {
	Card(id types.CardID) (*models.Card, error)
	Cards(listID types.ListID) ([]*models.Card, error)
	Snapshot() *board.Snapshot
	Restore(s *board.Snapshot) error
}

// Store is the persistence side the mirror writes to
type Store interface {
	database.SnapshotStore
	database.CardStore
}

// Mirror writes engine state to a Store
type Mirror struct {
	source Source
	store  Store
	logger *slog.Logger

	mu       sync.Mutex
	revision int64
	saved    []byte
}

// New creates a mirror. A nil logger uses slog.Default.
func New(source Source, store Store, logger *slog.Logger) *Mirror {
	if logger == nil {
		logger = slog.Default()
	}
	return &Mirror{source: source, store: store, logger: logger}
}

// Handle is an events.Handler. The card table is only touched once the
// snapshot save has gone through.
func (m *Mirror) Handle(ctx context.Context, ev events.Event) error {
	if err := m.SaveSnapshot(ctx); err != nil {
		return err
	}
	return m.syncCards(ctx, ev)
}

func (m *Mirror) syncCards(ctx context.Context, ev events.Event) error {
	var lists []types.ListID

	switch ev.Type {
	case events.EventCardCreated:
		lists = append(lists, ev.CardCreated.ListID)
	case events.EventCardMoved:
		lists = append(lists, ev.CardMoved.FromListID)
		if ev.CardMoved.ToListID != ev.CardMoved.FromListID {
			lists = append(lists, ev.CardMoved.ToListID)
		}
	case events.EventCardUpdated, events.EventChecklistUpdated:
		card, err := m.source.Card(ev.CardID())
		if board.IsNotFound(err) {
			// Archived before this event was delivered; the archive event cleans up
			return nil
		}
		if err != nil {
			return err
		}
		return m.store.UpsertCards(ctx, []models.CardRecord{card.Record()})
	case events.EventBoardUpdated:
		id := ev.CardID()
		if id == "" {
			return nil
		}
		if err := m.store.DeleteCard(ctx, id); err != nil {
			return err
		}
		if listID, ok := archivedFrom(ev); ok {
			lists = append(lists, listID)
		}
	default:
		return nil
	}

	var recs []models.CardRecord
	for _, listID := range lists {
		cards, err := m.source.Cards(listID)
		if board.IsNotFound(err) {
			continue
		}
		if err != nil {
			return err
		}
		for _, c := range cards {
			recs = append(recs, c.Record())
		}
	}
	return m.store.UpsertCards(ctx, recs)
}

// SaveSnapshot stores the current engine snapshot unless it matches what was
// last loaded or saved
func (m *Mirror) SaveSnapshot(ctx context.Context) error {
	snap := m.source.Snapshot()
	data, err := json.Marshal(snap)
	if err != nil {
		return fmt.Errorf("encoding board snapshot: %w", err)
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if m.saved != nil && bytes.Equal(data, m.saved) {
		return nil
	}
	rev, err := m.store.SaveSnapshot(ctx, snap.Version, data, m.revision)
	if err != nil {
		return err
	}
	m.revision = rev
	m.saved = data
	return nil
}

// Revision returns the stored revision the engine state is based on
func (m *Mirror) Revision() int64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.revision
}

// Forget drops the remembered revision, after the stored snapshot was cleared
func (m *Mirror) Forget() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.revision = 0
	m.saved = nil
}

// Sync rewrites the whole card table and the snapshot from the engine
func (m *Mirror) Sync(ctx context.Context) error {
	snap := m.source.Snapshot()
	recs := make([]models.CardRecord, 0, len(snap.Cards))
	for _, rec := range snap.CardRecords() {
		recs = append(recs, rec)
	}
	if err := m.store.ReplaceCards(ctx, recs); err != nil {
		return err
	}
	m.logger.Debug("mirror resynced", "cards", len(recs))
	return m.SaveSnapshot(ctx)
}

// Load restores the engine from the stored snapshot and remembers its
// revision. It reports false, leaving the engine alone, when no snapshot has
// been saved yet.
func (m *Mirror) Load(ctx context.Context) (bool, error) {
	state, err := m.store.LoadSnapshot(ctx)
	if errors.Is(err, database.ErrNoSnapshot) {
		m.Forget()
		return false, nil
	}
	if err != nil {
		return false, err
	}

	var snap board.Snapshot
	if err := json.Unmarshal(state.Data, &snap); err != nil {
		return false, fmt.Errorf("decoding board snapshot: %w", err)
	}
	if err := m.source.Restore(&snap); err != nil {
		return false, fmt.Errorf("restoring board snapshot: %w", err)
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.revision = state.Revision
	m.saved = state.Data
	return true, nil
}

func archivedFrom(ev events.Event) (types.ListID, bool) {
	switch v := ev.BoardUpdated.Changes[events.ChangeListID].(type) {
	case types.ListID:
		return v, true
	case string:
		return types.ListID(v), true
	}
	return "", false
}

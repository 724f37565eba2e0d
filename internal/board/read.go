package board

import (
	"slices"
	"strings"

	"github.com/thenoetrevino/kanbot/internal/models"
	"github.com/thenoetrevino/kanbot/internal/types"
)

// Every accessor returns copies; mutating them does not affect the engine.

// Board returns a board by id
func (e *Engine) Board(id types.BoardID) (*models.Board, error) {
	e.mu.RLock()
	defer e.mu.RUnlock()

	b, ok := e.boards[id]
	if !ok {
		return nil, notFound("board", "board", id)
	}
	return b.Clone(), nil
}

// CurrentBoard returns the board new lists are added to
func (e *Engine) CurrentBoard() (*models.Board, error) {
	e.mu.RLock()
	id := e.currentBoardID
	e.mu.RUnlock()
	return e.Board(id)
}

// List returns a list by id
func (e *Engine) List(id types.ListID) (*models.List, error) {
	e.mu.RLock()
	defer e.mu.RUnlock()

	l, ok := e.lists[id]
	if !ok {
		return nil, notFound("list", "list", id)
	}
	return l.Clone(), nil
}

// Lists returns a board's lists in board order
func (e *Engine) Lists(boardID types.BoardID) ([]*models.List, error) {
	e.mu.RLock()
	defer e.mu.RUnlock()

	b, ok := e.boards[boardID]
	if !ok {
		return nil, notFound("lists", "board", boardID)
	}
	out := make([]*models.List, 0, len(b.ListIDs))
	for _, id := range b.ListIDs {
		if l, ok := e.lists[id]; ok {
			out = append(out, l.Clone())
		}
	}
	return out, nil
}

// Card returns a card by id
func (e *Engine) Card(id types.CardID) (*models.Card, error) {
	e.mu.RLock()
	defer e.mu.RUnlock()

	c, ok := e.cards[id]
	if !ok {
		return nil, notFound("card", "card", id)
	}
	return c.Clone(), nil
}

// Cards returns a list's cards in list order
func (e *Engine) Cards(listID types.ListID) ([]*models.Card, error) {
	e.mu.RLock()
	defer e.mu.RUnlock()

	l, ok := e.lists[listID]
	if !ok {
		return nil, notFound("cards", "list", listID)
	}
	out := make([]*models.Card, 0, len(l.CardIDs))
	for _, id := range l.CardIDs {
		if c, ok := e.cards[id]; ok {
			out = append(out, c.Clone())
		}
	}
	return out, nil
}

// Label returns a label by id
func (e *Engine) Label(id types.LabelID) (*models.Label, error) {
	e.mu.RLock()
	defer e.mu.RUnlock()

	l, ok := e.labels[id]
	if !ok {
		return nil, notFound("label", "label", id)
	}
	copied := *l
	return &copied, nil
}

// Labels returns all labels sorted by name
func (e *Engine) Labels() []*models.Label {
	e.mu.RLock()
	defer e.mu.RUnlock()

	out := make([]*models.Label, 0, len(e.labels))
	for _, l := range e.labels {
		copied := *l
		out = append(out, &copied)
	}
	slices.SortFunc(out, func(a, b *models.Label) int {
		if c := strings.Compare(a.Name, b.Name); c != 0 {
			return c
		}
		return strings.Compare(string(a.ID), string(b.ID))
	})
	return out
}

// OnboardingCard returns the card pending provider onboarding, if any
func (e *Engine) OnboardingCard() (types.CardID, bool) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.onboardCardID, e.onboardCardID != ""
}

// ClearOnboarding dismisses the pending onboarding card. It emits no event.
func (e *Engine) ClearOnboarding() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.onboardCardID = ""
}

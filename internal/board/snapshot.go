package board

import (
	"github.com/thenoetrevino/kanbot/internal/models"
	"github.com/thenoetrevino/kanbot/internal/types"
)

// SnapshotVersion is bumped whenever the snapshot shape changes incompatibly
const SnapshotVersion = 1

// Snapshot is a self-contained copy of the engine state, suitable for JSON
// persistence
type Snapshot struct {
	Version        int                             `json:"version"`
	Boards         map[types.BoardID]*models.Board `json:"boards"`
	Lists          map[types.ListID]*models.List   `json:"lists"`
	Cards          map[types.CardID]*models.Card   `json:"cards"`
	Labels         map[types.LabelID]*models.Label `json:"labels"`
	CurrentBoardID types.BoardID                   `json:"currentBoardId"`
	OnboardCardID  types.CardID                    `json:"onboardCardId,omitempty"`
}

// Snapshot returns a deep copy of the current state
func (e *Engine) Snapshot() *Snapshot {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.snapshotLocked()
}

func (e *Engine) snapshotLocked() *Snapshot {
	s := &Snapshot{
		Version:        SnapshotVersion,
		Boards:         make(map[types.BoardID]*models.Board, len(e.boards)),
		Lists:          make(map[types.ListID]*models.List, len(e.lists)),
		Cards:          make(map[types.CardID]*models.Card, len(e.cards)),
		Labels:         make(map[types.LabelID]*models.Label, len(e.labels)),
		CurrentBoardID: e.currentBoardID,
		OnboardCardID:  e.onboardCardID,
	}
	for id, b := range e.boards {
		s.Boards[id] = b.Clone()
	}
	for id, l := range e.lists {
		s.Lists[id] = l.Clone()
	}
	for id, c := range e.cards {
		s.Cards[id] = c.Clone()
	}
	for id, l := range e.labels {
		copied := *l
		s.Labels[id] = &copied
	}
	return s
}

// Restore replaces the engine state with a snapshot. The snapshot is checked
// first; an inconsistent snapshot is rejected and the current state is kept.
// Restore emits no events.
func (e *Engine) Restore(s *Snapshot) error {
	if s == nil {
		return invalidArgument("restore", "nil snapshot")
	}
	if s.Version != SnapshotVersion {
		return invalidArgument("restore", "unsupported snapshot version %d", s.Version)
	}
	if err := s.Verify(); err != nil {
		return err
	}

	// Take a private copy so the caller can keep using s
	copied := (&Engine{
		boards: s.Boards, lists: s.Lists, cards: s.Cards, labels: s.Labels,
		currentBoardID: s.CurrentBoardID, onboardCardID: s.OnboardCardID,
	}).snapshotLocked()

	e.mu.Lock()
	defer e.mu.Unlock()
	e.boards = copied.Boards
	e.lists = copied.Lists
	e.cards = copied.Cards
	e.labels = copied.Labels
	if e.labels == nil {
		e.labels = map[types.LabelID]*models.Label{}
	}
	e.currentBoardID = copied.CurrentBoardID
	e.onboardCardID = copied.OnboardCardID
	return nil
}

// Verify checks the engine's ordering invariants
func (e *Engine) Verify() error {
	return e.Snapshot().Verify()
}

// Verify checks that the snapshot is internally consistent:
//   - every list a board names exists, belongs to it, and sits at its index
//   - every card a list names exists, points back at it, and sits at its index
//   - every card appears in exactly one list
//   - the current board and any onboarding card exist
//   - no checklist, item, comment or label entry is null
func (s *Snapshot) Verify() error {
	if _, ok := s.Boards[s.CurrentBoardID]; !ok {
		return corrupt("current board %q does not exist", s.CurrentBoardID)
	}

	listOwners := make(map[types.ListID]types.BoardID, len(s.Lists))
	for boardID, b := range s.Boards {
		if b == nil || b.ID != boardID {
			return corrupt("board entry %q has mismatched id", boardID)
		}
		for i, listID := range b.ListIDs {
			l, ok := s.Lists[listID]
			if !ok || l == nil {
				return corrupt("board %s names missing list %s", boardID, listID)
			}
			if owner, dup := listOwners[listID]; dup {
				return corrupt("list %s appears in boards %s and %s", listID, owner, boardID)
			}
			listOwners[listID] = boardID
			if l.BoardID != boardID {
				return corrupt("list %s belongs to %s but is named by %s", listID, l.BoardID, boardID)
			}
			if l.Position != i {
				return corrupt("list %s has position %d at index %d", listID, l.Position, i)
			}
		}
	}

	cardOwners := make(map[types.CardID]types.ListID, len(s.Cards))
	for listID, l := range s.Lists {
		if l == nil || l.ID != listID {
			return corrupt("list entry %q has mismatched id", listID)
		}
		if _, ok := listOwners[listID]; !ok {
			return corrupt("list %s is not named by any board", listID)
		}
		for i, cardID := range l.CardIDs {
			c, ok := s.Cards[cardID]
			if !ok || c == nil {
				return corrupt("list %s names missing card %s", listID, cardID)
			}
			if owner, dup := cardOwners[cardID]; dup {
				return corrupt("card %s appears in lists %s and %s", cardID, owner, listID)
			}
			cardOwners[cardID] = listID
			if c.ListID != listID {
				return corrupt("card %s points at list %s but sits in %s", cardID, c.ListID, listID)
			}
			if c.Position != i {
				return corrupt("card %s has position %d at index %d", cardID, c.Position, i)
			}
		}
	}

	for cardID, c := range s.Cards {
		if c == nil || c.ID != cardID {
			return corrupt("card entry %q has mismatched id", cardID)
		}
		if _, ok := cardOwners[cardID]; !ok {
			return corrupt("card %s is not in any list", cardID)
		}
		if err := verifyCardEntries(c); err != nil {
			return err
		}
	}

	for labelID, l := range s.Labels {
		if l == nil || l.ID != labelID {
			return corrupt("label entry %q has mismatched id", labelID)
		}
	}

	if s.OnboardCardID != "" {
		if _, ok := s.Cards[s.OnboardCardID]; !ok {
			return corrupt("onboarding card %s does not exist", s.OnboardCardID)
		}
	}
	return nil
}

// verifyCardEntries rejects null checklist, item and comment entries
func verifyCardEntries(c *models.Card) error {
	for i, cl := range c.Checklists {
		if cl == nil {
			return corrupt("card %s has an empty checklist at index %d", c.ID, i)
		}
		for j, item := range cl.Items {
			if item == nil {
				return corrupt("checklist %s on card %s has an empty item at index %d", cl.ID, c.ID, j)
			}
		}
	}
	for i, cm := range c.Comments {
		if cm == nil {
			return corrupt("card %s has an empty comment at index %d", c.ID, i)
		}
	}
	return nil
}

// CardRecords returns the persisted shape of every card, keyed by id
func (s *Snapshot) CardRecords() map[types.CardID]models.CardRecord {
	out := make(map[types.CardID]models.CardRecord, len(s.Cards))
	for id, c := range s.Cards {
		out[id] = c.Record()
	}
	return out
}

package board

import (
	"slices"

	"github.com/thenoetrevino/kanbot/internal/events"
	"github.com/thenoetrevino/kanbot/internal/models"
	"github.com/thenoetrevino/kanbot/internal/types"
)

// CreateCard appends a new card to the end of a list
func (e *Engine) CreateCard(listID types.ListID, title, description string) (*models.Card, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	list, ok := e.lists[listID]
	if !ok {
		return nil, notFound("createCard", "list", listID)
	}

	id := types.CardID(e.allocate("c", func(s string) bool {
		_, taken := e.cards[types.CardID(s)]
		return taken
	}))
	card := &models.Card{
		ID:          id,
		ListID:      listID,
		Title:       normalizeTitle(title),
		Description: description,
		Labels:      []types.LabelID{},
		Members:     []types.UserID{},
		Checklists:  []*models.Checklist{},
		Comments:    []*models.Comment{},
		Position:    len(list.CardIDs),
		IsNew:       true,
	}
	e.cards[id] = card
	list.CardIDs = append(list.CardIDs, id)

	e.publish(events.NewCardCreated(list.BoardID, events.CardCreated{
		ListID:      listID,
		CardID:      id,
		Title:       card.Title,
		Description: card.Description,
		Position:    card.Position,
	}))
	return card.Clone(), nil
}

// MoveCard relocates a card within its list or to another list.
// Out-of-range positions are clamped.
func (e *Engine) MoveCard(cardID types.CardID, toListID types.ListID, position int) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	card, ok := e.cards[cardID]
	if !ok {
		return notFound("moveCard", "card", cardID)
	}
	to, ok := e.lists[toListID]
	if !ok {
		return notFound("moveCard", "list", toListID)
	}
	from, ok := e.lists[card.ListID]
	if !ok {
		return corrupt("card %s references missing list %s", cardID, card.ListID)
	}
	idx := from.IndexOf(cardID)
	if idx < 0 {
		return corrupt("card %s missing from list %s", cardID, from.ID)
	}

	fromListID := from.ID
	remaining := slices.Delete(slices.Clone(from.CardIDs), idx, idx+1)

	if from == to {
		pos := clamp(position, 0, len(remaining))
		from.CardIDs = slices.Insert(remaining, pos, cardID)
		e.restamp(from)
	} else {
		pos := clamp(position, 0, len(to.CardIDs))
		from.CardIDs = remaining
		to.CardIDs = slices.Insert(slices.Clone(to.CardIDs), pos, cardID)
		card.ListID = to.ID
		e.restamp(from)
		e.restamp(to)
		if to.ID == e.stages.AwaitingConfig {
			e.onboardCardID = cardID
		}
	}

	e.publish(events.NewCardMoved(to.BoardID, events.CardMoved{
		CardID:     cardID,
		FromListID: fromListID,
		ToListID:   to.ID,
		Position:   card.Position,
	}))
	return nil
}

// UpdateCard applies a partial update. Editing the title or description of a
// card in the in-progress stage marks it requiresAction regardless of any
// status in changes.
func (e *Engine) UpdateCard(cardID types.CardID, changes CardChanges) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	card, ok := e.cards[cardID]
	if !ok {
		return notFound("updateCard", "card", cardID)
	}
	if changes.Status != nil && !changes.Status.IsValid() {
		return invalidArgument("updateCard", "unknown status %q", *changes.Status)
	}
	if changes.Provider != nil && !changes.Provider.IsValid() {
		return invalidArgument("updateCard", "unknown provider %q", *changes.Provider)
	}
	if changes.Labels != nil {
		for _, id := range *changes.Labels {
			if _, ok := e.labels[id]; !ok {
				return notFound("updateCard", "label", id)
			}
		}
	}

	previous := card.Status
	if changes.Title != nil {
		card.Title = normalizeTitle(*changes.Title)
	}
	if changes.Description != nil {
		card.Description = *changes.Description
	}
	if changes.Labels != nil {
		card.Labels = dedupe(*changes.Labels)
	}
	if changes.Members != nil {
		card.Members = dedupe(*changes.Members)
	}
	if changes.ClearDueDate {
		card.DueDate = nil
	} else if changes.DueDate != nil {
		due := *changes.DueDate
		card.DueDate = &due
	}
	if changes.Status != nil {
		card.Status = *changes.Status
	}
	if changes.Provider != nil {
		card.Provider = *changes.Provider
	}
	if card.ListID == e.stages.InProgress && changes.touchesContent() {
		card.Status = models.StatusRequiresAction
	}

	e.publish(events.NewCardUpdated(e.boardOf(e.lists[card.ListID]), cardID, changes.Map()).
		WithStatus(previous, card.Status))
	return nil
}

// MarkCardNotNew clears the card's "new" flag. It emits no event.
func (e *Engine) MarkCardNotNew(cardID types.CardID) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	card, ok := e.cards[cardID]
	if !ok {
		return notFound("markCardNotNew", "card", cardID)
	}
	card.IsNew = false
	return nil
}

// ArchiveCard removes a card from its list and the card table
func (e *Engine) ArchiveCard(cardID types.CardID) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	card, ok := e.cards[cardID]
	if !ok {
		return notFound("archiveCard", "card", cardID)
	}
	list := e.lists[card.ListID]
	if list != nil {
		if idx := list.IndexOf(cardID); idx >= 0 {
			list.CardIDs = slices.Delete(slices.Clone(list.CardIDs), idx, idx+1)
		}
		e.restamp(list)
	}
	delete(e.cards, cardID)
	if e.onboardCardID == cardID {
		e.onboardCardID = ""
	}

	boardID := e.boardOf(list)
	e.publish(events.NewBoardUpdated(boardID, map[string]any{
		events.ChangeArchivedCardID: cardID,
		events.ChangeListID:         card.ListID,
	}))
	return nil
}

// SetCardStatus advances the card's automation lifecycle.
// Transitions the lifecycle does not allow are rejected.
func (e *Engine) SetCardStatus(cardID types.CardID, status models.CardStatus) error {
	return e.setStatus("setCardStatus", cardID, status)
}

// RequeueCard queues the card for another automation run
func (e *Engine) RequeueCard(cardID types.CardID) error {
	return e.setStatus("requeueCard", cardID, models.StatusQueued)
}

func (e *Engine) setStatus(op string, cardID types.CardID, status models.CardStatus) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	card, ok := e.cards[cardID]
	if !ok {
		return notFound(op, "card", cardID)
	}
	if status == "" || !status.IsValid() {
		return invalidArgument(op, "unknown status %q", status)
	}
	if !card.Status.CanTransitionTo(status) {
		from := card.Status
		if from == "" {
			from = models.StatusIdle
		}
		return invalidArgument(op, "cannot move card %s from %s to %s", cardID, from, status)
	}
	previous := card.Status
	card.Status = status

	e.publish(events.NewCardUpdated(e.boardOf(e.lists[card.ListID]), cardID, map[string]any{
		KeyStatus: status,
	}).WithStatus(previous, status))
	return nil
}

func dedupe[T comparable](in []T) []T {
	out := make([]T, 0, len(in))
	seen := make(map[T]struct{}, len(in))
	for _, v := range in {
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	return out
}

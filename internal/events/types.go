package events

import (
	"time"

	"github.com/thenoetrevino/kanbot/internal/models"
	"github.com/thenoetrevino/kanbot/internal/types"
)

// ProtocolVersion is the daemon wire protocol version
const ProtocolVersion = 1

// EventType indicates what kind of change occurred
type EventType string

const (
	EventCardCreated      EventType = "card:created"
	EventCardMoved        EventType = "card:moved"
	EventCardUpdated      EventType = "card:updated"
	EventChecklistUpdated EventType = "checklist:updated"
	EventBoardUpdated     EventType = "board:updated"

	// Control events used only on the daemon socket
	EventPing EventType = "ping"
	EventPong EventType = "pong"
)

// Event is an immutable record of a completed state transition.
// Exactly one payload pointer is set, matching Type.
type Event struct {
	Type       EventType     `json:"type"`
	BoardID    types.BoardID `json:"boardId,omitempty"` // For filtering - which board was modified
	Timestamp  time.Time     `json:"timestamp"`
	SequenceID int64         `json:"sequenceId,omitempty"` // Monotonically increasing sequence number for ordering

	CardCreated      *CardCreated      `json:"cardCreated,omitempty"`
	CardMoved        *CardMoved        `json:"cardMoved,omitempty"`
	CardUpdated      *CardUpdated      `json:"cardUpdated,omitempty"`
	ChecklistUpdated *ChecklistUpdated `json:"checklistUpdated,omitempty"`
	BoardUpdated     *BoardUpdated     `json:"boardUpdated,omitempty"`
}

// CardCreated is the payload of card:created
type CardCreated struct {
	ListID      types.ListID `json:"listId"`
	CardID      types.CardID `json:"cardId"`
	Title       string       `json:"title"`
	Description string       `json:"description,omitempty"`
	Position    int          `json:"position"`
}

// CardMoved is the payload of card:moved
type CardMoved struct {
	CardID     types.CardID `json:"cardId"`
	FromListID types.ListID `json:"fromListId"`
	ToListID   types.ListID `json:"toListId"`
	Position   int          `json:"position"`
}

// CardUpdated is the payload of card:updated.
// Changes holds the fields exactly as the caller submitted them. Status and
// PreviousStatus are the card's status after and before the update.
type CardUpdated struct {
	CardID         types.CardID      `json:"cardId"`
	Changes        map[string]any    `json:"changes"`
	Status         models.CardStatus `json:"status,omitempty"`
	PreviousStatus models.CardStatus `json:"previousStatus,omitempty"`
}

// StatusChanged reports whether the update moved the card to a new status
func (p *CardUpdated) StatusChanged() bool {
	return p.Status != p.PreviousStatus
}

// ChecklistUpdated is the payload of checklist:updated
type ChecklistUpdated struct {
	CardID    types.CardID `json:"cardId"`
	Completed int          `json:"completed"`
	Total     int          `json:"total"`
}

// BoardUpdated is the payload of board:updated
type BoardUpdated struct {
	BoardID types.BoardID  `json:"boardId"`
	Changes map[string]any `json:"changes"`
}

// Board-level change keys carried in BoardUpdated.Changes
const (
	ChangeName           = "name"
	ChangeListIDs        = "listIds"
	ChangeCreatedListID  = "createdListId"
	ChangeArchivedCardID = "archivedCardId"
	ChangeListID         = "listId"
	ChangeLabelID        = "labelId"
)

// NewCardCreated builds a card:created event
func NewCardCreated(boardID types.BoardID, p CardCreated) Event {
	return Event{Type: EventCardCreated, BoardID: boardID, CardCreated: &p}
}

// NewCardMoved builds a card:moved event
func NewCardMoved(boardID types.BoardID, p CardMoved) Event {
	return Event{Type: EventCardMoved, BoardID: boardID, CardMoved: &p}
}

// NewCardUpdated builds a card:updated event
func NewCardUpdated(boardID types.BoardID, cardID types.CardID, changes map[string]any) Event {
	return Event{Type: EventCardUpdated, BoardID: boardID, CardUpdated: &CardUpdated{CardID: cardID, Changes: changes}}
}

// WithStatus records the card's status before and after a card:updated
// event. Other event types are returned unchanged.
func (e Event) WithStatus(previous, current models.CardStatus) Event {
	if e.CardUpdated == nil {
		return e
	}
	payload := *e.CardUpdated
	payload.PreviousStatus = previous
	payload.Status = current
	e.CardUpdated = &payload
	return e
}

// NewChecklistUpdated builds a checklist:updated event
func NewChecklistUpdated(boardID types.BoardID, p ChecklistUpdated) Event {
	return Event{Type: EventChecklistUpdated, BoardID: boardID, ChecklistUpdated: &p}
}

// NewBoardUpdated builds a board:updated event
func NewBoardUpdated(boardID types.BoardID, changes map[string]any) Event {
	return Event{Type: EventBoardUpdated, BoardID: boardID, BoardUpdated: &BoardUpdated{BoardID: boardID, Changes: changes}}
}

// CardID returns the card the event refers to, or "" for board-level events
// that don't name one
func (e Event) CardID() types.CardID {
	switch {
	case e.CardCreated != nil:
		return e.CardCreated.CardID
	case e.CardMoved != nil:
		return e.CardMoved.CardID
	case e.CardUpdated != nil:
		return e.CardUpdated.CardID
	case e.ChecklistUpdated != nil:
		return e.ChecklistUpdated.CardID
	case e.BoardUpdated != nil:
		if id, ok := e.BoardUpdated.Changes[ChangeArchivedCardID]; ok {
			switch v := id.(type) {
			case types.CardID:
				return v
			case string:
				return types.CardID(v)
			}
		}
	}
	return ""
}

// SubscribeMessage is sent by clients to subscribe to specific board updates
type SubscribeMessage struct {
	BoardID types.BoardID `json:"boardId"` // "" = all boards
}

// Message wraps events and control messages for wire protocol
type Message struct {
	Version   int               `json:"version"`
	Type      string            `json:"type"` // "event", "subscribe", "ping", "pong", "ack"
	Event     *Event            `json:"event,omitempty"`
	Subscribe *SubscribeMessage `json:"subscribe,omitempty"`
}

package types

// ID type aliases give each identifier a semantic meaning so a card id can't
// be passed where a list id is expected.

// BoardID identifies a board
type BoardID string

// ListID identifies a list (column) on a board
type ListID string

// CardID identifies a card
type CardID string

// LabelID identifies a label that cards may reference
type LabelID string

// UserID identifies a board member or comment author
type UserID string

// ChecklistID identifies a checklist on a card
type ChecklistID string

// ChecklistItemID identifies a single checklist entry
type ChecklistItemID string

// CommentID identifies a card comment
type CommentID string

// Default identifiers seeded at startup. The default board holds four lists
// in this order.
const (
	DefaultBoardID BoardID = "b1"

	BacklogListID    ListID = "l1"
	TodoListID       ListID = "l2"
	InProgressListID ListID = "l3"
	DoneListID       ListID = "l4"
)

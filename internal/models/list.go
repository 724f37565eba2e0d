package models

import "github.com/thenoetrevino/kanbot/internal/types"

// List is an ordered column of cards within a board.
// CardIDs is the authoritative display order; Position is the list's index
// among its board's lists.
type List struct {
	ID       types.ListID   `json:"id"`
	BoardID  types.BoardID  `json:"boardId"`
	Title    string         `json:"title"`
	CardIDs  []types.CardID `json:"cardIds"`
	Position int            `json:"position"`
}

// Clone returns a deep copy of the list
func (l *List) Clone() *List {
	if l == nil {
		return nil
	}
	out := *l
	out.CardIDs = append([]types.CardID(nil), l.CardIDs...)
	return &out
}

// IndexOf returns the index of cardID in the list, or -1
func (l *List) IndexOf(cardID types.CardID) int {
	for i, id := range l.CardIDs {
		if id == cardID {
			return i
		}
	}
	return -1
}

// GetID returns the list ID as a string
func (l *List) GetID() string {
	return string(l.ID)
}

package models

import "github.com/thenoetrevino/kanbot/internal/types"

// Board is the top-level container of ordered lists.
// The order of ListIDs is the column order.
type Board struct {
	ID      types.BoardID  `json:"id"`
	Name    string         `json:"name"`
	ListIDs []types.ListID `json:"listIds"`
}

// Clone returns a deep copy of the board
func (b *Board) Clone() *Board {
	if b == nil {
		return nil
	}
	out := *b
	out.ListIDs = append([]types.ListID(nil), b.ListIDs...)
	return &out
}

// GetID returns the board ID as a string
func (b *Board) GetID() string {
	return string(b.ID)
}

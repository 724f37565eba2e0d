package models

import "github.com/thenoetrevino/kanbot/internal/types"

// Label represents a tag that can be applied to cards.
// Cards reference labels by ID; they do not own them.
type Label struct {
	ID    types.LabelID `json:"id"`
	Name  string        `json:"name"`
	Color string        `json:"color"` // Hex color code (e.g., "#7D56F4")
}

// GetID returns the label ID as a string
func (l *Label) GetID() string {
	return string(l.ID)
}

package models

import "github.com/thenoetrevino/kanbot/internal/types"

// Checklist is an ordered sequence of items on a card
type Checklist struct {
	ID    types.ChecklistID `json:"id"`
	Title string            `json:"title"`
	Items []*ChecklistItem  `json:"items"`
}

// ChecklistItem is a single checklist entry
type ChecklistItem struct {
	ID   types.ChecklistItemID `json:"id"`
	Text string                `json:"text"`
	Done bool                  `json:"done"`
}

// Clone returns a deep copy of the checklist
func (c *Checklist) Clone() *Checklist {
	if c == nil {
		return nil
	}
	out := *c
	out.Items = make([]*ChecklistItem, 0, len(c.Items))
	for _, item := range c.Items {
		copied := *item
		out.Items = append(out.Items, &copied)
	}
	return &out
}

// GetID returns the checklist ID as a string
func (c *Checklist) GetID() string {
	return string(c.ID)
}

// GetID returns the item ID as a string
func (i *ChecklistItem) GetID() string {
	return string(i.ID)
}

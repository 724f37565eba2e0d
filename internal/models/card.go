package models

import (
	"time"

	"github.com/thenoetrevino/kanbot/internal/types"
)

// Card is a single task unit, owned by exactly one list at a time
type Card struct {
	ID          types.CardID    `json:"id"`
	ListID      types.ListID    `json:"listId"`
	Title       string          `json:"title"`
	Description string          `json:"description,omitempty"`
	Labels      []types.LabelID `json:"labels"`
	Members     []types.UserID  `json:"members"`
	DueDate     *time.Time      `json:"dueDate,omitempty"`
	Checklists  []*Checklist    `json:"checklists"`
	Comments    []*Comment      `json:"comments"`
	Position    int             `json:"position"`
	Status      CardStatus      `json:"status,omitempty"`
	Provider    Provider        `json:"provider,omitempty"`
	IsNew       bool            `json:"isNew,omitempty"`
}

// Clone returns a deep copy of the card
func (c *Card) Clone() *Card {
	if c == nil {
		return nil
	}
	out := *c
	out.Labels = append([]types.LabelID(nil), c.Labels...)
	out.Members = append([]types.UserID(nil), c.Members...)
	if c.DueDate != nil {
		due := *c.DueDate
		out.DueDate = &due
	}
	out.Checklists = make([]*Checklist, 0, len(c.Checklists))
	for _, cl := range c.Checklists {
		out.Checklists = append(out.Checklists, cl.Clone())
	}
	out.Comments = make([]*Comment, 0, len(c.Comments))
	for _, cm := range c.Comments {
		copied := *cm
		out.Comments = append(out.Comments, &copied)
	}
	return &out
}

// ChecklistProgress returns the number of completed items and the total
// number of items across all of the card's checklists
func (c *Card) ChecklistProgress() (completed, total int) {
	for _, cl := range c.Checklists {
		for _, item := range cl.Items {
			total++
			if item.Done {
				completed++
			}
		}
	}
	return completed, total
}

// Record returns the persisted shape of the card
func (c *Card) Record() CardRecord {
	return CardRecord{
		ID:          c.ID,
		Title:       c.Title,
		ListID:      c.ListID,
		Position:    c.Position,
		Description: c.Description,
	}
}

// CardRecord is the card shape mirrored to the persistence store
type CardRecord struct {
	ID          types.CardID `json:"id"`
	Title       string       `json:"title"`
	ListID      types.ListID `json:"listId"`
	Position    int          `json:"position"`
	Description string       `json:"description,omitempty"`
	UpdatedAt   time.Time    `json:"updatedAt,omitzero"`
}

// GetID returns the card ID as a string (used by quiet CLI output)
func (c *Card) GetID() string {
	return string(c.ID)
}

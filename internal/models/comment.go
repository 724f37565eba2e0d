package models

import (
	"time"

	"github.com/thenoetrevino/kanbot/internal/types"
)

// Comment is an append-only note on a card
type Comment struct {
	ID        types.CommentID `json:"id"`
	AuthorID  types.UserID    `json:"authorId"`
	Text      string          `json:"text"`
	CreatedAt time.Time       `json:"createdAt"`
}

// GetID returns the comment ID as a string
func (c *Comment) GetID() string {
	return string(c.ID)
}

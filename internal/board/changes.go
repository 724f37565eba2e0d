package board

import (
	"time"

	"github.com/thenoetrevino/kanbot/internal/models"
	"github.com/thenoetrevino/kanbot/internal/types"
)

// Card change keys as they appear in card:updated events
const (
	KeyTitle       = "title"
	KeyDescription = "description"
	KeyLabels      = "labels"
	KeyMembers     = "members"
	KeyDueDate     = "dueDate"
	KeyStatus      = "status"
	KeyProvider    = "provider"
	KeyComment     = "comment"
)

// CardChanges is a partial card update. Nil fields are left untouched.
type CardChanges struct {
	Title       *string
	Description *string
	Labels      *[]types.LabelID
	Members     *[]types.UserID
	DueDate     *time.Time
	// ClearDueDate removes the due date; it wins over DueDate
	ClearDueDate bool
	Status       *models.CardStatus
	Provider     *models.Provider
}

// IsEmpty reports whether no field is set
func (c CardChanges) IsEmpty() bool {
	return len(c.Map()) == 0
}

// Map returns the changes as submitted, keyed by field name.
// Values are not normalized.
func (c CardChanges) Map() map[string]any {
	m := make(map[string]any)
	if c.Title != nil {
		m[KeyTitle] = *c.Title
	}
	if c.Description != nil {
		m[KeyDescription] = *c.Description
	}
	if c.Labels != nil {
		m[KeyLabels] = append([]types.LabelID{}, (*c.Labels)...)
	}
	if c.Members != nil {
		m[KeyMembers] = append([]types.UserID{}, (*c.Members)...)
	}
	if c.ClearDueDate {
		m[KeyDueDate] = nil
	} else if c.DueDate != nil {
		m[KeyDueDate] = *c.DueDate
	}
	if c.Status != nil {
		m[KeyStatus] = *c.Status
	}
	if c.Provider != nil {
		m[KeyProvider] = *c.Provider
	}
	return m
}

func (c CardChanges) touchesContent() bool {
	return c.Title != nil || c.Description != nil
}

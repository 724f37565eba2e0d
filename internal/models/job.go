package models

import (
	"time"

	"github.com/thenoetrevino/kanbot/internal/types"
)

// JobKind names the automation workflow a job triggers
type JobKind string

const (
	// JobOnboard starts provider configuration for a card that entered the
	// awaiting-configuration stage
	JobOnboard JobKind = "onboard"
	// JobRerun reruns automation whose output went stale after an edit
	JobRerun JobKind = "rerun"
)

// AutomationJob is a pending request for the external automation layer
type AutomationJob struct {
	ID        int64
	CardID    types.CardID
	Kind      JobKind
	State     string
	CreatedAt time.Time
}

// Job states
const (
	JobPending = "pending"
	JobDone    = "done"
)

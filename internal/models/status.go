package models

// CardStatus is the lifecycle status of a card's automation run.
// The zero value means the status was never set and behaves like StatusIdle.
type CardStatus string

const (
	StatusIdle           CardStatus = "idle"
	StatusQueued         CardStatus = "queued"
	StatusRunning        CardStatus = "running"
	StatusSucceeded      CardStatus = "succeeded"
	StatusFailed         CardStatus = "failed"
	StatusRequiresAction CardStatus = "requiresAction"
)

// AllStatuses lists every valid status in lifecycle order
var AllStatuses = []CardStatus{
	StatusIdle,
	StatusQueued,
	StatusRunning,
	StatusSucceeded,
	StatusFailed,
	StatusRequiresAction,
}

// IsValid reports whether s is a known status. The empty status is valid.
func (s CardStatus) IsValid() bool {
	if s == "" {
		return true
	}
	for _, known := range AllStatuses {
		if s == known {
			return true
		}
	}
	return false
}

// IsTerminal reports whether the status ends an automation run
func (s CardStatus) IsTerminal() bool {
	return s == StatusSucceeded || s == StatusFailed
}

// CanTransitionTo reports whether the lifecycle allows moving from s to next.
//
//	idle -> queued -> running -> {succeeded | failed}
//	queued -> idle (cancelled before start)
//	{succeeded | failed | requiresAction} -> queued (rerun)
//	any -> requiresAction
func (s CardStatus) CanTransitionTo(next CardStatus) bool {
	if next == StatusRequiresAction {
		return true
	}
	switch s {
	case "", StatusIdle:
		return next == StatusQueued
	case StatusQueued:
		return next == StatusRunning || next == StatusIdle
	case StatusRunning:
		return next == StatusSucceeded || next == StatusFailed
	case StatusSucceeded, StatusFailed, StatusRequiresAction:
		return next == StatusQueued
	}
	return false
}

// Provider tags the automation backend a card is assigned to
type Provider string

const (
	ProviderOpenAI Provider = "openai"
	ProviderDust   Provider = "dust"
	ProviderACI    Provider = "aci"
)

// IsValid reports whether p is a known provider. The empty provider is valid.
func (p Provider) IsValid() bool {
	switch p {
	case "", ProviderOpenAI, ProviderDust, ProviderACI:
		return true
	}
	return false
}

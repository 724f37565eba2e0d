// Package automation turns board events into requests for the external
// automation layer.
//
// A card entering the awaiting-configuration stage needs a provider chosen,
// so it gets an onboard job. A card whose output went stale (requiresAction)
// gets a rerun job. Requeueing a card settles its pending rerun jobs.
package automation

import (
	"context"
	"log/slog"

	"github.com/thenoetrevino/kanbot/internal/board"
	"github.com/thenoetrevino/kanbot/internal/database"
	"github.com/thenoetrevino/kanbot/internal/events"
	"github.com/thenoetrevino/kanbot/internal/models"
	"github.com/thenoetrevino/kanbot/internal/types"
)

// Source is the read side of the engine the triggers need
type Source interface {
	Stages() board.Stages
}

// Triggers records automation jobs in response to board events
type Triggers struct {
	source Source
	jobs   database.JobStore
	logger *slog.Logger
}

// New creates the trigger observer. A nil logger uses slog.Default.
func New(source Source, jobs database.JobStore, logger *slog.Logger) *Triggers {
	if logger == nil {
		logger = slog.Default()
	}
	return &Triggers{source: source, jobs: jobs, logger: logger}
}

// Handle is an events.Handler
func (t *Triggers) Handle(ctx context.Context, ev events.Event) error {
	switch ev.Type {
	case events.EventCardMoved:
		moved := ev.CardMoved
		if moved.ToListID != t.source.Stages().AwaitingConfig || moved.FromListID == moved.ToListID {
			return nil
		}
		return t.enqueue(ctx, moved.CardID, models.JobOnboard)

	case events.EventCardUpdated:
		// Decided from the event alone; by delivery time the card may
		// already have moved on or been archived
		updated := ev.CardUpdated
		if !updated.StatusChanged() {
			return nil
		}
		switch updated.Status {
		case models.StatusRequiresAction:
			return t.enqueue(ctx, updated.CardID, models.JobRerun)
		case models.StatusQueued:
			return t.settle(ctx, updated.CardID, models.JobRerun)
		}
	}
	return nil
}

// enqueue records a job unless an identical one is still pending
func (t *Triggers) enqueue(ctx context.Context, cardID types.CardID, kind models.JobKind) error {
	pending, err := t.jobs.HasPendingJob(ctx, cardID, kind)
	if err != nil {
		return err
	}
	if pending {
		return nil
	}
	job, err := t.jobs.CreateJob(ctx, cardID, kind)
	if err != nil {
		return err
	}
	t.logger.Info("automation job recorded", "job_id", job.ID, "card_id", cardID, "kind", kind)
	return nil
}

func (t *Triggers) settle(ctx context.Context, cardID types.CardID, kind models.JobKind) error {
	jobs, err := t.jobs.ListJobs(ctx, cardID)
	if err != nil {
		return err
	}
	for _, job := range jobs {
		if job.Kind != kind || job.State != models.JobPending {
			continue
		}
		if err := t.jobs.CompleteJob(ctx, job.ID); err != nil {
			return err
		}
	}
	return nil
}

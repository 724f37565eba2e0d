package database

import (
	"context"

	"github.com/thenoetrevino/kanbot/internal/database/rows"
	"github.com/thenoetrevino/kanbot/internal/models"
	"github.com/thenoetrevino/kanbot/internal/types"
)

// SnapshotStore persists the serialized engine state. Saves are
// compare-and-swap on the stored revision.
type SnapshotStore interface {
	SaveSnapshot(ctx context.Context, version int, data []byte, revision int64) (int64, error)
	LoadSnapshot(ctx context.Context) (*rows.BoardState, error)
	ClearSnapshot(ctx context.Context) error
}

// CardStore mirrors card records
type CardStore interface {
	UpsertCards(ctx context.Context, recs []models.CardRecord) error
	DeleteCard(ctx context.Context, id types.CardID) error
	GetCard(ctx context.Context, id types.CardID) (models.CardRecord, error)
	ListCards(ctx context.Context, listID types.ListID) ([]models.CardRecord, error)
	AllCards(ctx context.Context) ([]models.CardRecord, error)
	ReplaceCards(ctx context.Context, recs []models.CardRecord) error
}

// JobStore records automation requests
type JobStore interface {
	CreateJob(ctx context.Context, cardID types.CardID, kind models.JobKind) (*models.AutomationJob, error)
	HasPendingJob(ctx context.Context, cardID types.CardID, kind models.JobKind) (bool, error)
	ListJobs(ctx context.Context, cardID types.CardID) ([]*models.AutomationJob, error)
	PendingJobs(ctx context.Context) ([]*models.AutomationJob, error)
	CompleteJob(ctx context.Context, id int64) error
}

// DataStore is the full set of data operations. Consumers should depend on
// the smallest interface they need.
type DataStore interface {
	SnapshotStore
	CardStore
	JobStore
}

var _ DataStore = (*Repository)(nil)

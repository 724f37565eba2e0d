package database

import (
	"context"
	"database/sql"

	"github.com/thenoetrevino/kanbot/internal/database/rows"
	"github.com/thenoetrevino/kanbot/internal/models"
	"github.com/thenoetrevino/kanbot/internal/types"
)

// Repository provides a unified interface to all data operations.
// It composes domain-specific repositories.
type Repository struct {
	snapshots *SnapshotRepo
	cards     *CardRepo
	jobs      *JobRepo
}

// NewRepository creates a new Repository instance wrapping the given database connection.
func NewRepository(db *sql.DB) *Repository {
	return &Repository{
		snapshots: &SnapshotRepo{db: db},
		cards:     &CardRepo{db: db},
		jobs:      &JobRepo{db: db},
	}
}

// Board state
func (r *Repository) SaveSnapshot(ctx context.Context, version int, data []byte, revision int64) (int64, error) {
	return r.snapshots.Save(ctx, version, data, revision)
}

func (r *Repository) LoadSnapshot(ctx context.Context) (*rows.BoardState, error) {
	return r.snapshots.Load(ctx)
}

func (r *Repository) ClearSnapshot(ctx context.Context) error {
	return r.snapshots.Clear(ctx)
}

// Card mirror
func (r *Repository) UpsertCards(ctx context.Context, recs []models.CardRecord) error {
	return r.cards.UpsertMany(ctx, recs)
}

func (r *Repository) DeleteCard(ctx context.Context, id types.CardID) error {
	return r.cards.Delete(ctx, id)
}

func (r *Repository) GetCard(ctx context.Context, id types.CardID) (models.CardRecord, error) {
	return r.cards.GetByID(ctx, id)
}

func (r *Repository) ListCards(ctx context.Context, listID types.ListID) ([]models.CardRecord, error) {
	return r.cards.ListByList(ctx, listID)
}

func (r *Repository) AllCards(ctx context.Context) ([]models.CardRecord, error) {
	return r.cards.ListAll(ctx)
}

func (r *Repository) ReplaceCards(ctx context.Context, recs []models.CardRecord) error {
	return r.cards.ReplaceAll(ctx, recs)
}

// Automation jobs
func (r *Repository) CreateJob(ctx context.Context, cardID types.CardID, kind models.JobKind) (*models.AutomationJob, error) {
	return r.jobs.Create(ctx, cardID, kind)
}

func (r *Repository) HasPendingJob(ctx context.Context, cardID types.CardID, kind models.JobKind) (bool, error) {
	return r.jobs.HasPending(ctx, cardID, kind)
}

func (r *Repository) ListJobs(ctx context.Context, cardID types.CardID) ([]*models.AutomationJob, error) {
	return r.jobs.ListByCard(ctx, cardID)
}

func (r *Repository) PendingJobs(ctx context.Context) ([]*models.AutomationJob, error) {
	return r.jobs.ListPending(ctx)
}

func (r *Repository) CompleteJob(ctx context.Context, id int64) error {
	return r.jobs.Complete(ctx, id)
}

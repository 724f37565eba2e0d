package database

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/thenoetrevino/kanbot/internal/converters"
	"github.com/thenoetrevino/kanbot/internal/database/rows"
	"github.com/thenoetrevino/kanbot/internal/models"
	"github.com/thenoetrevino/kanbot/internal/types"
)

const selectJobSQL = `SELECT id, card_id, kind, state, created_at FROM automation_jobs`

// JobRepo records automation requests
type JobRepo struct {
	db *sql.DB
}

// Create inserts a pending job
func (r *JobRepo) Create(ctx context.Context, cardID types.CardID, kind models.JobKind) (*models.AutomationJob, error) {
	result, err := r.db.ExecContext(ctx,
		`INSERT INTO automation_jobs (card_id, kind, state) VALUES (?, ?, ?)`,
		string(cardID), string(kind), models.JobPending,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create %s job for card %s: %w", kind, cardID, err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		return nil, err
	}
	return r.GetByID(ctx, id)
}

// GetByID returns one job, or ErrJobNotFound
func (r *JobRepo) GetByID(ctx context.Context, id int64) (*models.AutomationJob, error) {
	jobs, err := r.query(ctx, selectJobSQL+` WHERE id = ?`, id)
	if err != nil {
		return nil, err
	}
	if len(jobs) == 0 {
		return nil, ErrJobNotFound
	}
	return jobs[0], nil
}

// ListByCard returns a card's jobs, oldest first
func (r *JobRepo) ListByCard(ctx context.Context, cardID types.CardID) ([]*models.AutomationJob, error) {
	return r.query(ctx, selectJobSQL+` WHERE card_id = ? ORDER BY id`, string(cardID))
}

// ListPending returns every pending job, oldest first
func (r *JobRepo) ListPending(ctx context.Context) ([]*models.AutomationJob, error) {
	return r.query(ctx, selectJobSQL+` WHERE state = ? ORDER BY id`, models.JobPending)
}

// HasPending reports whether the card already has a pending job of kind
func (r *JobRepo) HasPending(ctx context.Context, cardID types.CardID, kind models.JobKind) (bool, error) {
	var n int
	err := r.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM automation_jobs WHERE card_id = ? AND kind = ? AND state = ?`,
		string(cardID), string(kind), models.JobPending,
	).Scan(&n)
	if err != nil {
		return false, fmt.Errorf("failed to count jobs: %w", err)
	}
	return n > 0, nil
}

// Complete marks a job done
func (r *JobRepo) Complete(ctx context.Context, id int64) error {
	result, err := r.db.ExecContext(ctx, `UPDATE automation_jobs SET state = ? WHERE id = ?`, models.JobDone, id)
	if err != nil {
		return fmt.Errorf("failed to complete job %d: %w", id, err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrJobNotFound
	}
	return nil
}

func (r *JobRepo) query(ctx context.Context, query string, args ...any) ([]*models.AutomationJob, error) {
	rs, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying automation jobs: %w", err)
	}
	defer rs.Close()

	var out []rows.AutomationJob
	for rs.Next() {
		var row rows.AutomationJob
		if err := rs.Scan(&row.ID, &row.CardID, &row.Kind, &row.State, &row.CreatedAt); err != nil {
			return nil, fmt.Errorf("scanning job row: %w", err)
		}
		out = append(out, row)
	}
	if err := rs.Err(); err != nil {
		return nil, fmt.Errorf("iterating job rows: %w", err)
	}
	return converters.JobsToModels(out), nil
}

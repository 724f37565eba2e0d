package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/thenoetrevino/kanbot/internal/database/rows"
)

// SnapshotRepo persists the serialized engine snapshot
type SnapshotRepo struct {
	db *sql.DB
}

// Save replaces the stored snapshot if it is still at revision, and returns
// the new revision. Revision 0 means nothing has been stored yet. A stale
// revision fails with ErrSnapshotConflict and leaves the stored state alone.
func (r *SnapshotRepo) Save(ctx context.Context, version int, data []byte, revision int64) (int64, error) {
	now := time.Now().UTC()

	var res sql.Result
	var err error
	if revision == 0 {
		res, err = r.db.ExecContext(ctx,
			`INSERT INTO board_state (id, version, revision, data, updated_at) VALUES (1, ?, 1, ?, ?)
			 ON CONFLICT(id) DO NOTHING`,
			version, data, now,
		)
	} else {
		res, err = r.db.ExecContext(ctx,
			`UPDATE board_state SET version = ?, revision = revision + 1, data = ?, updated_at = ?
			 WHERE id = 1 AND revision = ?`,
			version, data, now, revision,
		)
	}
	if err != nil {
		return 0, fmt.Errorf("failed to save board state: %w", err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to save board state: %w", err)
	}
	if n == 0 {
		return 0, fmt.Errorf("saving at revision %d: %w", revision, ErrSnapshotConflict)
	}
	return revision + 1, nil
}

// Load returns the stored snapshot, or ErrNoSnapshot
func (r *SnapshotRepo) Load(ctx context.Context) (*rows.BoardState, error) {
	var row rows.BoardState
	err := r.db.QueryRowContext(ctx,
		`SELECT version, revision, data, updated_at FROM board_state WHERE id = 1`,
	).Scan(&row.Version, &row.Revision, &row.Data, &row.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNoSnapshot
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load board state: %w", err)
	}
	return &row, nil
}

// Clear deletes the stored snapshot
func (r *SnapshotRepo) Clear(ctx context.Context) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM board_state`); err != nil {
		return fmt.Errorf("failed to clear board state: %w", err)
	}
	return nil
}

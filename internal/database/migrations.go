package database

import (
	"context"
	"database/sql"
	"fmt"
)

// schemaVersion is stored in PRAGMA user_version
const schemaVersion = 2

// runMigrations creates the database schema if needed
func runMigrations(ctx context.Context, db *sql.DB) error {
	statements := []string{
		// Whole-engine snapshot; one row
		`CREATE TABLE IF NOT EXISTS board_state (
			id INTEGER PRIMARY KEY CHECK (id = 1),
			version INTEGER NOT NULL,
			revision INTEGER NOT NULL DEFAULT 0,
			data BLOB NOT NULL,
			updated_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)`,

		// Per-card mirror kept in sync with engine events
		`CREATE TABLE IF NOT EXISTS cards (
			id TEXT PRIMARY KEY,
			title TEXT NOT NULL,
			list_id TEXT NOT NULL,
			position INTEGER NOT NULL,
			description TEXT,
			updated_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)`,
		`CREATE INDEX IF NOT EXISTS idx_cards_list ON cards(list_id, position)`,

		// Requests for the external automation layer
		`CREATE TABLE IF NOT EXISTS automation_jobs (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			card_id TEXT NOT NULL,
			kind TEXT NOT NULL,
			state TEXT NOT NULL DEFAULT 'pending',
			created_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)`,
		`CREATE INDEX IF NOT EXISTS idx_jobs_card ON automation_jobs(card_id)`,
		`CREATE INDEX IF NOT EXISTS idx_jobs_state ON automation_jobs(state)`,
	}

	return withTx(ctx, db, func(tx *sql.Tx) error {
		for _, stmt := range statements {
			if _, err := tx.ExecContext(ctx, stmt); err != nil {
				return err
			}
		}
		// Version 1 stored board_state without a revision
		var hasRevision int
		if err := tx.QueryRowContext(ctx,
			`SELECT COUNT(*) FROM pragma_table_info('board_state') WHERE name = 'revision'`,
		).Scan(&hasRevision); err != nil {
			return fmt.Errorf("inspecting board_state: %w", err)
		}
		if hasRevision == 0 {
			if _, err := tx.ExecContext(ctx,
				`ALTER TABLE board_state ADD COLUMN revision INTEGER NOT NULL DEFAULT 0`); err != nil {
				return fmt.Errorf("adding board_state.revision: %w", err)
			}
			// A stored row is always at revision 1 or later
			if _, err := tx.ExecContext(ctx, `UPDATE board_state SET revision = 1`); err != nil {
				return fmt.Errorf("setting board_state.revision: %w", err)
			}
		}
		if _, err := tx.ExecContext(ctx, fmt.Sprintf("PRAGMA user_version = %d", schemaVersion)); err != nil {
			return err
		}
		return nil
	})
}

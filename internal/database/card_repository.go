package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/thenoetrevino/kanbot/internal/converters"
	"github.com/thenoetrevino/kanbot/internal/database/rows"
	"github.com/thenoetrevino/kanbot/internal/models"
	"github.com/thenoetrevino/kanbot/internal/types"
)

const upsertCardSQL = `INSERT INTO cards (id, title, list_id, position, description, updated_at)
	VALUES (?, ?, ?, ?, ?, CURRENT_TIMESTAMP)
	ON CONFLICT(id) DO UPDATE SET
		title = excluded.title,
		list_id = excluded.list_id,
		position = excluded.position,
		description = excluded.description,
		updated_at = excluded.updated_at`

const selectCardSQL = `SELECT id, title, list_id, position, description, updated_at FROM cards`

// CardRepo mirrors card records
type CardRepo struct {
	db *sql.DB
}

// Upsert inserts or replaces one card record
func (r *CardRepo) Upsert(ctx context.Context, rec models.CardRecord) error {
	return r.UpsertMany(ctx, []models.CardRecord{rec})
}

// UpsertMany inserts or replaces records in a single transaction
func (r *CardRepo) UpsertMany(ctx context.Context, recs []models.CardRecord) error {
	if len(recs) == 0 {
		return nil
	}
	return withTx(ctx, r.db, func(tx *sql.Tx) error {
		stmt, err := tx.PrepareContext(ctx, upsertCardSQL)
		if err != nil {
			return fmt.Errorf("failed to prepare card upsert: %w", err)
		}
		defer stmt.Close()

		for _, rec := range recs {
			row := converters.RecordToCardRow(rec)
			if _, err := stmt.ExecContext(ctx, row.ID, row.Title, row.ListID, row.Position, row.Description); err != nil {
				return fmt.Errorf("failed to upsert card %s: %w", rec.ID, err)
			}
		}
		return nil
	})
}

// Delete removes a card record. Deleting a missing record is not an error.
func (r *CardRepo) Delete(ctx context.Context, id types.CardID) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM cards WHERE id = ?`, string(id)); err != nil {
		return fmt.Errorf("failed to delete card %s: %w", id, err)
	}
	return nil
}

// GetByID returns one card record, or ErrCardNotFound
func (r *CardRepo) GetByID(ctx context.Context, id types.CardID) (models.CardRecord, error) {
	row, err := scanCard(r.db.QueryRowContext(ctx, selectCardSQL+` WHERE id = ?`, string(id)))
	if errors.Is(err, sql.ErrNoRows) {
		return models.CardRecord{}, ErrCardNotFound
	}
	if err != nil {
		return models.CardRecord{}, fmt.Errorf("failed to get card %s: %w", id, err)
	}
	return converters.CardToRecord(row), nil
}

// ListByList returns a list's card records ordered by position
func (r *CardRepo) ListByList(ctx context.Context, listID types.ListID) ([]models.CardRecord, error) {
	return r.query(ctx, selectCardSQL+` WHERE list_id = ? ORDER BY position`, string(listID))
}

// ListAll returns every card record ordered by list and position
func (r *CardRepo) ListAll(ctx context.Context) ([]models.CardRecord, error) {
	return r.query(ctx, selectCardSQL+` ORDER BY list_id, position`)
}

// ReplaceAll makes the mirror match recs exactly
func (r *CardRepo) ReplaceAll(ctx context.Context, recs []models.CardRecord) error {
	return withTx(ctx, r.db, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, `DELETE FROM cards`); err != nil {
			return fmt.Errorf("failed to clear cards: %w", err)
		}
		for _, rec := range recs {
			row := converters.RecordToCardRow(rec)
			if _, err := tx.ExecContext(ctx, upsertCardSQL, row.ID, row.Title, row.ListID, row.Position, row.Description); err != nil {
				return fmt.Errorf("failed to insert card %s: %w", rec.ID, err)
			}
		}
		return nil
	})
}

func (r *CardRepo) query(ctx context.Context, query string, args ...any) ([]models.CardRecord, error) {
	rs, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying cards: %w", err)
	}
	defer rs.Close()

	var out []rows.Card
	for rs.Next() {
		row, err := scanCard(rs)
		if err != nil {
			return nil, fmt.Errorf("scanning card row: %w", err)
		}
		out = append(out, row)
	}
	if err := rs.Err(); err != nil {
		return nil, fmt.Errorf("iterating card rows: %w", err)
	}
	return converters.CardsToRecords(out), nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanCard(s scanner) (rows.Card, error) {
	var row rows.Card
	err := s.Scan(&row.ID, &row.Title, &row.ListID, &row.Position, &row.Description, &row.UpdatedAt)
	return row, err
}

// Package converters provides conversion between the raw rows scanned out of
// SQLite and domain models.
//
// All conversions handle:
// - NULL database values (sql.Null* types)
// - Type coercions (int64 from database to int in domain)
// - String identifiers to their typed forms
package converters

import (
	"database/sql"
	"time"

	"github.com/thenoetrevino/kanbot/internal/database/rows"
	"github.com/thenoetrevino/kanbot/internal/models"
	"github.com/thenoetrevino/kanbot/internal/types"
)

// CardToRecord converts a cards row to the persisted card record
func CardToRecord(r rows.Card) models.CardRecord {
	return models.CardRecord{
		ID:          types.CardID(r.ID),
		Title:       r.Title,
		ListID:      types.ListID(r.ListID),
		Position:    int(r.Position),
		Description: NullStringToString(r.Description),
		UpdatedAt:   NullTimeToTime(r.UpdatedAt),
	}
}

// CardsToRecords converts a slice of cards rows
func CardsToRecords(rs []rows.Card) []models.CardRecord {
	result := make([]models.CardRecord, len(rs))
	for i, r := range rs {
		result[i] = CardToRecord(r)
	}
	return result
}

// RecordToCardRow converts a card record into insertable row values.
// An empty description is stored as NULL.
func RecordToCardRow(rec models.CardRecord) rows.Card {
	return rows.Card{
		ID:          string(rec.ID),
		Title:       rec.Title,
		ListID:      string(rec.ListID),
		Position:    int64(rec.Position),
		Description: sql.NullString{String: rec.Description, Valid: rec.Description != ""},
		UpdatedAt:   sql.NullTime{Time: rec.UpdatedAt, Valid: !rec.UpdatedAt.IsZero()},
	}
}

// NullStringToString converts sql.NullString to string.
// Returns empty string if the value is not valid.
func NullStringToString(ns sql.NullString) string {
	if ns.Valid {
		return ns.String
	}
	return ""
}

// NullTimeToTime converts sql.NullTime to time.Time.
// Returns zero time if the value is not valid.
func NullTimeToTime(nt sql.NullTime) time.Time {
	if nt.Valid {
		return nt.Time
	}
	return time.Time{}
}

// Package rows holds the raw shapes scanned out of SQLite, before conversion
// to domain models
package rows

import "database/sql"

// Card is a row of the cards mirror table
type Card struct {
	ID          string
	Title       string
	ListID      string
	Position    int64
	Description sql.NullString
	UpdatedAt   sql.NullTime
}

// AutomationJob is a row of the automation_jobs table
type AutomationJob struct {
	ID        int64
	CardID    string
	Kind      string
	State     string
	CreatedAt sql.NullTime
}

// BoardState is the single row of the board_state table
type BoardState struct {
	Version   int64
	Revision  int64
	Data      []byte
	UpdatedAt sql.NullTime
}

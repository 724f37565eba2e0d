package cli

import (
	"context"
	"testing"

	"github.com/thenoetrevino/kanbot/internal/app"
	"github.com/thenoetrevino/kanbot/internal/board"
	"github.com/thenoetrevino/kanbot/internal/models"
	"github.com/thenoetrevino/kanbot/internal/testutil"
	"github.com/thenoetrevino/kanbot/internal/types"
)

// SetupCLITest returns an App on a fresh in-memory database holding the
// seeded default board.
// This function is only for CLI tests and is isolated in a separate package
// so engine and storage tests never depend on cobra.
func SetupCLITest(t *testing.T) *app.App {
	t.Helper()
	return testutil.SetupTestApp(t)
}

// CreateTestCard creates and saves a card and returns it
func CreateTestCard(t *testing.T, a *app.App, listID types.ListID, title string) *models.Card {
	t.Helper()
	var card *models.Card
	err := a.Update(context.Background(), func(e *board.Engine) error {
		var err error
		card, err = e.CreateCard(listID, title, "")
		return err
	})
	if err != nil {
		t.Fatalf("Failed to create test card: %v", err)
	}
	return card
}

// CreateTestLabel creates and saves a label and returns it
func CreateTestLabel(t *testing.T, a *app.App, name, color string) *models.Label {
	t.Helper()
	var label *models.Label
	err := a.Update(context.Background(), func(e *board.Engine) error {
		var err error
		label, err = e.CreateLabel(name, color)
		return err
	})
	if err != nil {
		t.Fatalf("Failed to create test label: %v", err)
	}
	return label
}

// ParseJSON parses JSON output from CLI commands
func ParseJSON(t *testing.T, output string) map[string]any {
	t.Helper()
	return testutil.ParseJSON(t, output)
}

// JSONData returns the "data" object of a successful JSON response
func JSONData(t *testing.T, output string) map[string]any {
	t.Helper()
	result := ParseJSON(t, output)
	if ok, _ := result["success"].(bool); !ok {
		t.Fatalf("Expected success response, got: %s", output)
	}
	data, ok := result["data"].(map[string]any)
	if !ok {
		t.Fatalf("Expected object data, got: %s", output)
	}
	return data
}

package card

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/thenoetrevino/kanbot/internal/board"
	"github.com/thenoetrevino/kanbot/internal/cli"
	"github.com/thenoetrevino/kanbot/internal/models"
	clitest "github.com/thenoetrevino/kanbot/internal/testutil/cli"
	"github.com/thenoetrevino/kanbot/internal/types"
)

// ============================================================================
// card create
// ============================================================================

func TestCreateCard_Positive(t *testing.T) {
	app := clitest.SetupCLITest(t)

	t.Run("defaults to the first list", func(t *testing.T) {
		output, err := clitest.ExecuteCLICommand(t, app, CreateCmd(),
			[]string{"--title", "Simple Card", "--quiet"})
		require.NoError(t, err)

		id := types.CardID(strings.TrimSpace(output))
		card, err := app.Engine.Card(id)
		require.NoError(t, err)
		assert.Equal(t, "Simple Card", card.Title)
		assert.Equal(t, types.BacklogListID, card.ListID)
		assert.True(t, card.IsNew)
	})

	t.Run("list by title, with description", func(t *testing.T) {
		output, err := clitest.ExecuteCLICommand(t, app, CreateCmd(), []string{
			"--list", "to do",
			"--title", "Detailed Card",
			"--description", "Some **markdown**",
			"--json",
		})
		require.NoError(t, err)

		data := clitest.JSONData(t, output)
		assert.Equal(t, "Detailed Card", data["title"])
		assert.Equal(t, string(types.TodoListID), data["listId"])
		assert.Equal(t, "Some **markdown**", data["description"])
		assert.Equal(t, float64(0), data["position"])
	})

	t.Run("blank title becomes Untitled", func(t *testing.T) {
		output, err := clitest.ExecuteCLICommand(t, app, CreateCmd(), []string{"--title", "   ", "--json"})
		require.NoError(t, err)
		assert.Equal(t, "Untitled", clitest.JSONData(t, output)["title"])
	})

	t.Run("written to the card mirror", func(t *testing.T) {
		output, err := clitest.ExecuteCLICommand(t, app, CreateCmd(), []string{"--title", "Mirrored", "--quiet"})
		require.NoError(t, err)

		rec, err := app.Repo().GetCard(context.Background(), types.CardID(strings.TrimSpace(output)))
		require.NoError(t, err)
		assert.Equal(t, "Mirrored", rec.Title)
	})
}

func TestCreateCard_UnknownList(t *testing.T) {
	app := clitest.SetupCLITest(t)

	output, err := clitest.ExecuteCLICommand(t, app, CreateCmd(),
		[]string{"--list", "Nowhere", "--title", "Lost", "--json"})
	require.Error(t, err)
	assert.Equal(t, cli.ExitNotFound, cli.ExitCode(err))

	result := clitest.ParseJSON(t, output)
	assert.Equal(t, false, result["success"])
	errData := result["error"].(map[string]any)
	assert.Equal(t, "NOT_FOUND", errData["code"])
	assert.Contains(t, errData["suggestion"], "Backlog (l1)")
}

// ============================================================================
// card move
// ============================================================================

func TestMoveCard(t *testing.T) {
	app := clitest.SetupCLITest(t)
	a := clitest.CreateTestCard(t, app, types.BacklogListID, "A")
	b := clitest.CreateTestCard(t, app, types.BacklogListID, "B")

	t.Run("to the bottom of another list by title", func(t *testing.T) {
		output, err := clitest.ExecuteCLICommand(t, app, MoveCmd(),
			[]string{"--id", string(a.ID), "--to", "Done", "--json"})
		require.NoError(t, err)

		data := clitest.JSONData(t, output)
		assert.Equal(t, string(types.BacklogListID), data["fromList"])
		assert.Equal(t, string(types.DoneListID), data["toList"])

		card, err := app.Engine.Card(a.ID)
		require.NoError(t, err)
		assert.Equal(t, types.DoneListID, card.ListID)
	})

	t.Run("explicit position is clamped", func(t *testing.T) {
		_, err := clitest.ExecuteCLICommand(t, app, MoveCmd(),
			[]string{"--id", string(b.ID), "--to", "l4", "--position", "99", "--quiet"})
		require.NoError(t, err)

		done, err := app.Engine.List(types.DoneListID)
		require.NoError(t, err)
		assert.Equal(t, []types.CardID{a.ID, b.ID}, done.CardIDs)
	})

	t.Run("reorder within a list", func(t *testing.T) {
		output, err := clitest.ExecuteCLICommand(t, app, MoveCmd(),
			[]string{"--id", string(b.ID), "--to", "l4", "--position", "0"})
		require.NoError(t, err)
		assert.Contains(t, output, "moved to position 0 in 'Done'")

		done, err := app.Engine.List(types.DoneListID)
		require.NoError(t, err)
		assert.Equal(t, []types.CardID{b.ID, a.ID}, done.CardIDs)
	})

	t.Run("negative position is clamped to the top", func(t *testing.T) {
		output, err := clitest.ExecuteCLICommand(t, app, MoveCmd(),
			[]string{"--id", string(a.ID), "--to", "l4", "--position", "-3", "--json"})
		require.NoError(t, err)
		assert.Equal(t, float64(0), clitest.JSONData(t, output)["position"])

		done, err := app.Engine.List(types.DoneListID)
		require.NoError(t, err)
		assert.Equal(t, []types.CardID{a.ID, b.ID}, done.CardIDs)
	})

	t.Run("unknown card exits not found", func(t *testing.T) {
		_, err := clitest.ExecuteCLICommand(t, app, MoveCmd(),
			[]string{"--id", "c_missing", "--to", "l1", "--json"})
		assert.Equal(t, cli.ExitNotFound, cli.ExitCode(err))
	})

	t.Run("unknown list exits not found", func(t *testing.T) {
		_, err := clitest.ExecuteCLICommand(t, app, MoveCmd(),
			[]string{"--id", string(a.ID), "--to", "Archive", "--json"})
		assert.Equal(t, cli.ExitNotFound, cli.ExitCode(err))
	})
}

func TestMoveCard_IntoAwaitingConfigRecordsOnboarding(t *testing.T) {
	app := clitest.SetupCLITest(t)
	card := clitest.CreateTestCard(t, app, types.BacklogListID, "Needs provider")

	_, err := clitest.ExecuteCLICommand(t, app, MoveCmd(),
		[]string{"--id", string(card.ID), "--to", string(app.Engine.Stages().AwaitingConfig), "--quiet"})
	require.NoError(t, err)

	onboarding, ok := app.Engine.OnboardingCard()
	assert.True(t, ok)
	assert.Equal(t, card.ID, onboarding)

	jobs, err := app.Repo().ListJobs(context.Background(), card.ID)
	require.NoError(t, err)
	require.Len(t, jobs, 1)
	assert.Equal(t, models.JobOnboard, jobs[0].Kind)
}

// ============================================================================
// card update
// ============================================================================

func TestUpdateCard(t *testing.T) {
	app := clitest.SetupCLITest(t)
	card := clitest.CreateTestCard(t, app, types.BacklogListID, "Original")
	label := clitest.CreateTestLabel(t, app, "bug", "#FF0000")

	output, err := clitest.ExecuteCLICommand(t, app, UpdateCmd(), []string{
		"--id", string(card.ID),
		"--title", "Renamed",
		"--description", "Details",
		"--label", "BUG",
		"--member", "u1,u2",
		"--due", "2026-11-30",
		"--provider", "dust",
		"--json",
	})
	require.NoError(t, err)

	data := clitest.JSONData(t, output)
	assert.Equal(t, "Renamed", data["title"])
	assert.Equal(t, []any{string(label.ID)}, data["labels"])
	assert.Equal(t, []any{"u1", "u2"}, data["members"])
	assert.Equal(t, "dust", data["provider"])
	assert.Equal(t, "2026-11-30T00:00:00Z", data["dueDate"])

	t.Run("clear due date", func(t *testing.T) {
		_, err := clitest.ExecuteCLICommand(t, app, UpdateCmd(),
			[]string{"--id", string(card.ID), "--due", "none", "--quiet"})
		require.NoError(t, err)

		got, err := app.Engine.Card(card.ID)
		require.NoError(t, err)
		assert.Nil(t, got.DueDate)
	})

	t.Run("no flags is a usage error", func(t *testing.T) {
		_, err := clitest.ExecuteCLICommand(t, app, UpdateCmd(), []string{"--id", string(card.ID), "--json"})
		assert.Equal(t, cli.ExitUsage, cli.ExitCode(err))
	})

	t.Run("bad provider is a validation error", func(t *testing.T) {
		_, err := clitest.ExecuteCLICommand(t, app, UpdateCmd(),
			[]string{"--id", string(card.ID), "--provider", "skynet", "--json"})
		assert.Equal(t, cli.ExitValidation, cli.ExitCode(err))
	})

	t.Run("bad due date is a validation error", func(t *testing.T) {
		_, err := clitest.ExecuteCLICommand(t, app, UpdateCmd(),
			[]string{"--id", string(card.ID), "--due", "30/11/2026", "--json"})
		assert.Equal(t, cli.ExitValidation, cli.ExitCode(err))
	})

	t.Run("unknown label is not found", func(t *testing.T) {
		_, err := clitest.ExecuteCLICommand(t, app, UpdateCmd(),
			[]string{"--id", string(card.ID), "--label", "nope", "--json"})
		assert.Equal(t, cli.ExitNotFound, cli.ExitCode(err))

		got, err := app.Engine.Card(card.ID)
		require.NoError(t, err)
		assert.Equal(t, []types.LabelID{label.ID}, got.Labels, "rejected update leaves the card untouched")
	})
}

func TestUpdateCard_InProgressGoesStale(t *testing.T) {
	app := clitest.SetupCLITest(t)
	card := clitest.CreateTestCard(t, app, app.Engine.Stages().InProgress, "Running work")

	output, err := clitest.ExecuteCLICommand(t, app, UpdateCmd(),
		[]string{"--id", string(card.ID), "--description", "changed"})
	require.NoError(t, err)
	assert.Contains(t, output, "requiresAction")

	got, err := app.Engine.Card(card.ID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusRequiresAction, got.Status)

	jobs, err := app.Repo().ListJobs(context.Background(), card.ID)
	require.NoError(t, err)
	require.Len(t, jobs, 1)
	assert.Equal(t, models.JobRerun, jobs[0].Kind)
}

// ============================================================================
// card status / rerun / seen / archive
// ============================================================================

func TestStatusLifecycle(t *testing.T) {
	app := clitest.SetupCLITest(t)
	card := clitest.CreateTestCard(t, app, types.BacklogListID, "Job")

	for _, status := range []string{"queued", "running", "succeeded"} {
		output, err := clitest.ExecuteCLICommand(t, app, StatusCmd(),
			[]string{"--id", string(card.ID), status, "--json"})
		require.NoError(t, err, status)
		assert.Equal(t, status, clitest.JSONData(t, output)["status"])
	}

	t.Run("disallowed transition", func(t *testing.T) {
		_, err := clitest.ExecuteCLICommand(t, app, StatusCmd(),
			[]string{"--id", string(card.ID), "running", "--json"})
		assert.Equal(t, cli.ExitValidation, cli.ExitCode(err))
	})

	t.Run("unknown status", func(t *testing.T) {
		_, err := clitest.ExecuteCLICommand(t, app, StatusCmd(),
			[]string{"--id", string(card.ID), "paused", "--json"})
		assert.Equal(t, cli.ExitValidation, cli.ExitCode(err))
	})

	t.Run("rerun requeues", func(t *testing.T) {
		output, err := clitest.ExecuteCLICommand(t, app, RerunCmd(), []string{string(card.ID)})
		require.NoError(t, err)
		assert.Contains(t, output, "is now queued")
	})
}

func TestSeenCard(t *testing.T) {
	app := clitest.SetupCLITest(t)
	card := clitest.CreateTestCard(t, app, types.BacklogListID, "Fresh")

	for range 2 {
		_, err := clitest.ExecuteCLICommand(t, app, SeenCmd(), []string{"--id", string(card.ID), "--quiet"})
		require.NoError(t, err)
	}

	got, err := app.Engine.Card(card.ID)
	require.NoError(t, err)
	assert.False(t, got.IsNew)
}

func TestArchiveCard(t *testing.T) {
	app := clitest.SetupCLITest(t)
	first := clitest.CreateTestCard(t, app, types.BacklogListID, "First")
	second := clitest.CreateTestCard(t, app, types.BacklogListID, "Second")

	output, err := clitest.ExecuteCLICommand(t, app, ArchiveCmd(), []string{"--id", string(second.ID), "--quiet"})
	require.NoError(t, err)
	assert.Equal(t, string(second.ID)+"\n", output)

	_, err = app.Engine.Card(second.ID)
	assert.Error(t, err)

	remaining, err := app.Engine.Card(first.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, remaining.Position)

	_, err = app.Repo().GetCard(context.Background(), second.ID)
	assert.Error(t, err, "archived card leaves the mirror")

	_, err = clitest.ExecuteCLICommand(t, app, ArchiveCmd(), []string{"--id", string(second.ID), "--json"})
	assert.Equal(t, cli.ExitNotFound, cli.ExitCode(err))
}

// ============================================================================
// card show / ls
// ============================================================================

func TestShowCard(t *testing.T) {
	app := clitest.SetupCLITest(t)
	card := clitest.CreateTestCard(t, app, types.BacklogListID, "Visible")
	label := clitest.CreateTestLabel(t, app, "ops", "#00FF00")
	labels := []types.LabelID{label.ID}
	require.NoError(t, app.Engine.UpdateCard(card.ID, board.CardChanges{Labels: &labels}))

	t.Run("human", func(t *testing.T) {
		output, err := clitest.ExecuteCLICommand(t, app, ShowCmd(), []string{string(card.ID)})
		require.NoError(t, err)
		assert.Contains(t, output, "Visible")
		assert.Contains(t, output, "Backlog")
		assert.Contains(t, output, "[ops]")
		assert.Contains(t, output, "No description")
	})

	t.Run("json", func(t *testing.T) {
		output, err := clitest.ExecuteCLICommand(t, app, ShowCmd(), []string{"--id", string(card.ID), "--json"})
		require.NoError(t, err)
		assert.Equal(t, string(card.ID), clitest.JSONData(t, output)["id"])
	})

	t.Run("missing id", func(t *testing.T) {
		_, err := clitest.ExecuteCLICommand(t, app, ShowCmd(), []string{"--json"})
		assert.Equal(t, cli.ExitUsage, cli.ExitCode(err))
	})
}

func TestLsCards(t *testing.T) {
	app := clitest.SetupCLITest(t)
	older := clitest.CreateTestCard(t, app, types.BacklogListID, "Older")
	newer := clitest.CreateTestCard(t, app, types.BacklogListID, "Newer")
	done := clitest.CreateTestCard(t, app, types.DoneListID, "Finished")

	t.Run("all lists in display order", func(t *testing.T) {
		output, err := clitest.ExecuteCLICommand(t, app, LsCmd(), []string{"--quiet"})
		require.NoError(t, err)
		assert.Equal(t, strings.Join([]string{string(newer.ID), string(older.ID), string(done.ID)}, "\n")+"\n", output)
	})

	t.Run("one list", func(t *testing.T) {
		output, err := clitest.ExecuteCLICommand(t, app, LsCmd(), []string{"--list", "Done", "--json"})
		require.NoError(t, err)
		cards := clitest.ParseJSON(t, output)["data"].([]any)
		require.Len(t, cards, 1)
		assert.Equal(t, "Finished", cards[0].(map[string]any)["title"])
	})

	t.Run("human", func(t *testing.T) {
		output, err := clitest.ExecuteCLICommand(t, app, LsCmd(), nil)
		require.NoError(t, err)
		assert.Contains(t, output, "Backlog")
		assert.Contains(t, output, "no cards")
	})
}

// ============================================================================
// card checklist / comment
// ============================================================================

func TestChecklistCommands(t *testing.T) {
	app := clitest.SetupCLITest(t)
	card := clitest.CreateTestCard(t, app, types.BacklogListID, "Launch")

	output, err := clitest.ExecuteCLICommand(t, app, checklistAddCmd(),
		[]string{"--id", string(card.ID), "--title", "Steps", "--quiet"})
	require.NoError(t, err)
	checklistID := strings.TrimSpace(output)

	output, err = clitest.ExecuteCLICommand(t, app, checklistItemCmd(),
		[]string{"--id", string(card.ID), "--checklist", checklistID, "--text", "Ship it", "--quiet"})
	require.NoError(t, err)
	itemID := strings.TrimSpace(output)

	output, err = clitest.ExecuteCLICommand(t, app, checklistToggleCmd(),
		[]string{"--id", string(card.ID), "--checklist", checklistID, "--item", itemID, "--json"})
	require.NoError(t, err)
	data := clitest.JSONData(t, output)
	assert.Equal(t, true, data["done"])
	assert.Equal(t, float64(1), data["completed"])
	assert.Equal(t, float64(1), data["total"])

	t.Run("empty item text", func(t *testing.T) {
		_, err := clitest.ExecuteCLICommand(t, app, checklistItemCmd(),
			[]string{"--id", string(card.ID), "--checklist", checklistID, "--text", " ", "--json"})
		assert.Equal(t, cli.ExitValidation, cli.ExitCode(err))
	})

	t.Run("unknown item", func(t *testing.T) {
		_, err := clitest.ExecuteCLICommand(t, app, checklistToggleCmd(),
			[]string{"--id", string(card.ID), "--checklist", checklistID, "--item", "ci_nope", "--json"})
		assert.Equal(t, cli.ExitNotFound, cli.ExitCode(err))
	})
}

func TestCommentCard(t *testing.T) {
	app := clitest.SetupCLITest(t)
	card := clitest.CreateTestCard(t, app, types.BacklogListID, "Discuss")

	output, err := clitest.ExecuteCLICommand(t, app, CommentCmd(),
		[]string{"--id", string(card.ID), "-m", "Looks good", "--author", "reviewer", "--json"})
	require.NoError(t, err)

	data := clitest.JSONData(t, output)
	assert.Equal(t, "reviewer", data["authorId"])
	assert.Equal(t, "Looks good", data["text"])

	got, err := app.Engine.Card(card.ID)
	require.NoError(t, err)
	require.Len(t, got.Comments, 1)

	_, err = clitest.ExecuteCLICommand(t, app, CommentCmd(),
		[]string{"--id", string(card.ID), "-m", "", "--json"})
	assert.Equal(t, cli.ExitValidation, cli.ExitCode(err))
}

func TestCommentCard_DefaultAuthorFromEnv(t *testing.T) {
	t.Setenv("KANBOT_USER", "ops-bot")
	app := clitest.SetupCLITest(t)
	card := clitest.CreateTestCard(t, app, types.BacklogListID, "Discuss")

	output, err := clitest.ExecuteCLICommand(t, app, CommentCmd(),
		[]string{"--id", string(card.ID), "-m", "Deployed", "--json"})
	require.NoError(t, err)
	assert.Equal(t, "ops-bot", clitest.JSONData(t, output)["authorId"])
}

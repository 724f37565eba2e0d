package board

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/thenoetrevino/kanbot/internal/cli"
	clitest "github.com/thenoetrevino/kanbot/internal/testutil/cli"
	"github.com/thenoetrevino/kanbot/internal/types"
)

func TestShowBoard(t *testing.T) {
	app := clitest.SetupCLITest(t)
	card := clitest.CreateTestCard(t, app, types.TodoListID, "Plan")

	t.Run("json", func(t *testing.T) {
		output, err := clitest.ExecuteCLICommand(t, app, ShowCmd(), []string{"--json"})
		require.NoError(t, err)

		data := clitest.JSONData(t, output)
		assert.Equal(t, "My Board", data["name"])
		lists := data["lists"].([]any)
		require.Len(t, lists, 4)

		todo := lists[1].(map[string]any)
		assert.Equal(t, "To Do", todo["title"])
		cards := todo["cards"].([]any)
		require.Len(t, cards, 1)
		assert.Equal(t, string(card.ID), cards[0].(map[string]any)["id"])
	})

	t.Run("human", func(t *testing.T) {
		output, err := clitest.ExecuteCLICommand(t, app, ShowCmd(), nil)
		require.NoError(t, err)
		for _, title := range []string{"My Board", "Backlog", "To Do", "In Progress", "Done", "Plan"} {
			assert.Contains(t, output, title)
		}
	})

	t.Run("quiet prints the board id", func(t *testing.T) {
		output, err := clitest.ExecuteCLICommand(t, app, ShowCmd(), []string{"--quiet"})
		require.NoError(t, err)
		assert.Equal(t, "b1\n", output)
	})
}

func TestRenameBoard(t *testing.T) {
	app := clitest.SetupCLITest(t)

	output, err := clitest.ExecuteCLICommand(t, app, RenameCmd(), []string{"--name", "  Growth  ", "--json"})
	require.NoError(t, err)
	assert.Equal(t, "Growth", clitest.JSONData(t, output)["name"])

	_, err = clitest.ExecuteCLICommand(t, app, RenameCmd(), []string{"--name", "   ", "--json"})
	assert.Equal(t, cli.ExitValidation, cli.ExitCode(err))

	b, err := app.Engine.CurrentBoard()
	require.NoError(t, err)
	assert.Equal(t, "Growth", b.Name)
}

func TestSeedBoard(t *testing.T) {
	app := clitest.SetupCLITest(t)
	old := clitest.CreateTestCard(t, app, types.BacklogListID, "Discard me")

	output, err := clitest.ExecuteCLICommand(t, app, SeedCmd(), []string{"--sample", "--json"})
	require.NoError(t, err)
	assert.Equal(t, float64(len(sampleCards)), clitest.JSONData(t, output)["cards"])

	_, err = app.Engine.Card(old.ID)
	assert.Error(t, err)

	backlog, err := app.Engine.Cards(types.BacklogListID)
	require.NoError(t, err)
	require.Len(t, backlog, 3)
	assert.Equal(t, "Fix auth bug", backlog[0].Title, "newest sample card is on top")

	recs, err := app.Repo().AllCards(context.Background())
	require.NoError(t, err)
	assert.Len(t, recs, len(sampleCards))
	require.NoError(t, app.Engine.Verify())
}

func TestOnboarding(t *testing.T) {
	app := clitest.SetupCLITest(t)

	output, err := clitest.ExecuteCLICommand(t, app, OnboardingCmd(), nil)
	require.NoError(t, err)
	assert.Contains(t, output, "No card is awaiting configuration")

	card := clitest.CreateTestCard(t, app, types.BacklogListID, "Configure me")
	require.NoError(t, app.Engine.MoveCard(card.ID, app.Engine.Stages().AwaitingConfig, 0))

	output, err = clitest.ExecuteCLICommand(t, app, OnboardingCmd(), []string{"--quiet"})
	require.NoError(t, err)
	assert.Equal(t, string(card.ID), strings.TrimSpace(output))

	output, err = clitest.ExecuteCLICommand(t, app, OnboardingCmd(), []string{"--clear", "--json"})
	require.NoError(t, err)
	assert.Equal(t, false, clitest.JSONData(t, output)["pending"])

	_, pending := app.Engine.OnboardingCard()
	assert.False(t, pending)
}

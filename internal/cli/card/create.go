package card

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/thenoetrevino/kanbot/internal/board"
	"github.com/thenoetrevino/kanbot/internal/cli"
	"github.com/thenoetrevino/kanbot/internal/models"
	"github.com/thenoetrevino/kanbot/internal/types"
)

// CreateCmd returns the card create subcommand
func CreateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create a card at the top of a list",
		Long: `Create a card at the top of a list. The list may be given by id or title
and defaults to the first list of the current board.

Examples:
  kanbot card create --title "Draft onboarding email"
  kanbot card create --list "To Do" --title "Write spec" --description "See **notes**"

  # Capture the card id in a script
  CARD_ID=$(kanbot card create --title "Triage" --quiet)
`,
		RunE: runCreate,
	}

	cmd.Flags().String("list", "", "Target list id or title (default: first list)")
	cmd.Flags().String("title", "", "Card title (blank becomes \"Untitled\")")
	cmd.Flags().String("description", "", "Card description (markdown)")
	cli.AddOutputFlags(cmd)

	return cmd
}

func runCreate(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	formatter := cli.Formatter(cmd)

	listRef, _ := cmd.Flags().GetString("list")
	title, _ := cmd.Flags().GetString("title")
	description, _ := cmd.Flags().GetString("description")

	cliInstance, err := cli.GetCLIFromContext(ctx)
	if err != nil {
		return formatter.Fail(err)
	}
	defer cli.CloseQuietly(cliInstance)

	engine := cliInstance.App.Engine
	b, err := engine.CurrentBoard()
	if err != nil {
		return formatter.Fail(err)
	}
	lists, err := engine.Lists(b.ID)
	if err != nil {
		return formatter.Fail(err)
	}

	var target types.ListID
	switch {
	case listRef != "":
		l, err := cli.FindList(lists, listRef)
		if err != nil {
			return formatter.FailWithSuggestion(err, "Available lists: "+cli.FormatAvailableLists(lists))
		}
		target = l.ID
	case len(lists) > 0:
		target = lists[0].ID
	default:
		return formatter.Usage("the current board has no lists", "Create one with: kanbot list create --title <title>")
	}

	var card *models.Card
	err = cliInstance.App.Update(ctx, func(engine *board.Engine) error {
		var err error
		card, err = engine.CreateCard(target, title, description)
		return err
	})
	if err != nil {
		return formatter.Fail(err)
	}

	return formatter.Success(card, func(w io.Writer) {
		fmt.Fprintf(w, "✓ Card '%s' created in '%s' (ID: %s)\n",
			card.Title, cli.ListTitle(lists, card.ListID), card.ID)
	})
}

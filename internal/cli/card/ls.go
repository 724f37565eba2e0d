package card

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/thenoetrevino/kanbot/internal/cli"
	"github.com/thenoetrevino/kanbot/internal/cli/styles"
	"github.com/thenoetrevino/kanbot/internal/models"
)

// LsCmd returns the card ls subcommand
func LsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "ls",
		Aliases: []string{"list"},
		Short:   "List cards in display order",
		Long: `List the cards of one list, or of every list on the current board.

Examples:
  kanbot card ls
  kanbot card ls --list "In Progress" --json
`,
		RunE: runLs,
	}

	cmd.Flags().String("list", "", "Only this list (id or title)")
	cli.AddOutputFlags(cmd)

	return cmd
}

func runLs(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	formatter := cli.Formatter(cmd)
	listRef, _ := cmd.Flags().GetString("list")

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
	if listRef != "" {
		l, err := cli.FindList(lists, listRef)
		if err != nil {
			return formatter.FailWithSuggestion(err, "Available lists: "+cli.FormatAvailableLists(lists))
		}
		lists = []*models.List{l}
	}

	var all []*models.Card
	byList := make(map[*models.List][]*models.Card, len(lists))
	for _, l := range lists {
		cards, err := engine.Cards(l.ID)
		if err != nil {
			return formatter.Fail(err)
		}
		byList[l] = cards
		all = append(all, cards...)
	}

	if formatter.Quiet {
		for _, c := range all {
			fmt.Println(c.ID)
		}
		return nil
	}

	if all == nil {
		all = []*models.Card{}
	}
	return formatter.Success(all, func(w io.Writer) {
		for _, l := range lists {
			fmt.Fprintln(w, styles.RenderList(l, byList[l]))
		}
	})
}

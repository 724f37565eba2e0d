package card

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/thenoetrevino/kanbot/internal/board"
	"github.com/thenoetrevino/kanbot/internal/cli"
	"github.com/thenoetrevino/kanbot/internal/models"
)

// moveResult is the output of card move
type moveResult struct {
	CardID   string `json:"cardId"`
	FromList string `json:"fromList"`
	ToList   string `json:"toList"`
	Position int    `json:"position"`
}

func (r *moveResult) GetID() string {
	return r.CardID
}

// MoveCmd returns the card move subcommand
func MoveCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "move",
		Short: "Move a card to a list and position",
		Long: `Move a card to a list (by id or title) at a zero-based position.
Positions past either end are clamped; without --position the card goes to
the bottom of the target list.

Examples:
  # Move to the top of "In Progress"
  kanbot card move --id c_1a2b3c4d --to "In Progress" --position 0

  # Reorder within the same list
  kanbot card move --id c_1a2b3c4d --to l1 --position 2

  # JSON output for agents
  kanbot card move --id c_1a2b3c4d --to done --json
`,
		RunE: runMove,
	}

	addIDFlag(cmd, true)
	cmd.Flags().String("to", "", "Target list id or title (required)")
	cmd.Flags().Int("position", 0, "Zero-based position in the target list (default: bottom)")
	cli.MarkRequired(cmd, "to")
	cli.AddOutputFlags(cmd)

	return cmd
}

func runMove(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	formatter := cli.Formatter(cmd)

	id := cardID(cmd, args)
	toRef, _ := cmd.Flags().GetString("to")
	position, _ := cmd.Flags().GetInt("position")
	bottom := !cmd.Flags().Changed("position")

	cliInstance, err := cli.GetCLIFromContext(ctx)
	if err != nil {
		return formatter.Fail(err)
	}
	defer cli.CloseQuietly(cliInstance)

	engine := cliInstance.App.Engine
	card, err := engine.Card(id)
	if err != nil {
		return formatter.Fail(err)
	}
	from, err := engine.List(card.ListID)
	if err != nil {
		return formatter.Fail(err)
	}
	lists, err := engine.Lists(from.BoardID)
	if err != nil {
		return formatter.Fail(err)
	}
	to, err := cli.FindList(lists, toRef)
	if err != nil {
		return formatter.FailWithSuggestion(err, fmt.Sprintf("Card is currently in: %s\nAvailable lists: %s",
			from.Title, cli.FormatAvailableLists(lists)))
	}

	var moved *models.Card
	err = cliInstance.App.Update(ctx, func(engine *board.Engine) error {
		pos := position
		if bottom {
			target, err := engine.List(to.ID)
			if err != nil {
				return err
			}
			// past-the-end positions are clamped to the bottom
			pos = len(target.CardIDs)
		}
		if err := engine.MoveCard(id, to.ID, pos); err != nil {
			return err
		}
		var err error
		moved, err = engine.Card(id)
		return err
	})
	if err != nil {
		return formatter.Fail(err)
	}

	result := &moveResult{
		CardID:   string(id),
		FromList: string(from.ID),
		ToList:   string(to.ID),
		Position: moved.Position,
	}
	return formatter.Success(result, func(w io.Writer) {
		if from.ID == to.ID {
			fmt.Fprintf(w, "Card %s moved to position %d in '%s'\n", id, moved.Position, to.Title)
			return
		}
		fmt.Fprintf(w, "Card %s moved from '%s' to '%s' (position %d)\n", id, from.Title, to.Title, moved.Position)
	})
}

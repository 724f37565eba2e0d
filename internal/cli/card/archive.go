package card

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/thenoetrevino/kanbot/internal/board"
	"github.com/thenoetrevino/kanbot/internal/cli"
	"github.com/thenoetrevino/kanbot/internal/models"
)

type archiveResult struct {
	CardID string `json:"cardId"`
	ListID string `json:"listId"`
}

func (r *archiveResult) GetID() string {
	return r.CardID
}

// ArchiveCmd returns the card archive subcommand
func ArchiveCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "archive",
		Short: "Remove a card from the board",
		Long: `Remove a card from its list. The remaining cards close the gap.

Examples:
  kanbot card archive --id c_1a2b3c4d
`,
		RunE: runArchive,
	}

	addIDFlag(cmd, false)
	cli.AddOutputFlags(cmd)

	return cmd
}

func runArchive(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	formatter := cli.Formatter(cmd)
	id := cardID(cmd, args)
	if id == "" {
		return formatter.Usage("card id is required", "Usage: kanbot card archive --id <id>")
	}

	cliInstance, err := cli.GetCLIFromContext(ctx)
	if err != nil {
		return formatter.Fail(err)
	}
	defer cli.CloseQuietly(cliInstance)

	var card *models.Card
	err = cliInstance.App.Update(ctx, func(engine *board.Engine) error {
		var err error
		if card, err = engine.Card(id); err != nil {
			return err
		}
		return engine.ArchiveCard(id)
	})
	if err != nil {
		return formatter.Fail(err)
	}

	result := &archiveResult{CardID: string(card.ID), ListID: string(card.ListID)}
	return formatter.Success(result, func(w io.Writer) {
		fmt.Fprintf(w, "✓ Card '%s' archived (ID: %s)\n", card.Title, card.ID)
	})
}

// SeenCmd returns the card seen subcommand
func SeenCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "seen",
		Short: "Clear a card's \"new\" marker",
		RunE:  runSeen,
	}

	addIDFlag(cmd, false)
	cli.AddOutputFlags(cmd)

	return cmd
}

func runSeen(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	formatter := cli.Formatter(cmd)
	id := cardID(cmd, args)
	if id == "" {
		return formatter.Usage("card id is required", "Usage: kanbot card seen --id <id>")
	}

	cliInstance, err := cli.GetCLIFromContext(ctx)
	if err != nil {
		return formatter.Fail(err)
	}
	defer cli.CloseQuietly(cliInstance)

	var card *models.Card
	err = cliInstance.App.Update(ctx, func(engine *board.Engine) error {
		if err := engine.MarkCardNotNew(id); err != nil {
			return err
		}
		var err error
		card, err = engine.Card(id)
		return err
	})
	if err != nil {
		return formatter.Fail(err)
	}
	return formatter.Success(card, func(w io.Writer) {
		fmt.Fprintf(w, "✓ Card %s marked as seen\n", card.ID)
	})
}

package card

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/thenoetrevino/kanbot/internal/board"
	"github.com/thenoetrevino/kanbot/internal/cli"
	"github.com/thenoetrevino/kanbot/internal/models"
	"github.com/thenoetrevino/kanbot/internal/types"
)

// StatusCmd returns the card status subcommand
func StatusCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "status <status>",
		Short: "Advance a card's automation status",
		Long: `Set a card's status, following the lifecycle:

  idle -> queued -> running -> succeeded | failed
  queued -> idle
  succeeded | failed | requiresAction -> queued
  any -> requiresAction

Examples:
  kanbot card status --id c_1a2b3c4d queued
  kanbot card status --id c_1a2b3c4d running --json
`,
		Args: cobra.ExactArgs(1),
		RunE: runStatus,
	}

	addIDFlag(cmd, true)
	cli.AddOutputFlags(cmd)

	return cmd
}

func runStatus(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	formatter := cli.Formatter(cmd)
	id := cardID(cmd, nil)

	status, err := cli.ParseStatus(args[0])
	if err != nil {
		return formatter.Fail(err)
	}

	cliInstance, err := cli.GetCLIFromContext(ctx)
	if err != nil {
		return formatter.Fail(err)
	}
	defer cli.CloseQuietly(cliInstance)

	return updateStatus(ctx, formatter, cliInstance, id, func(engine *board.Engine) error {
		return engine.SetCardStatus(id, status)
	})
}

// RerunCmd returns the card rerun subcommand
func RerunCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "rerun",
		Short: "Requeue a finished or stale card",
		Long: `Requeue a card whose run succeeded, failed or went stale
(requiresAction). Pending rerun jobs for the card are settled.

Examples:
  kanbot card rerun --id c_1a2b3c4d
`,
		RunE: runRerun,
	}

	addIDFlag(cmd, false)
	cli.AddOutputFlags(cmd)

	return cmd
}

func runRerun(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	formatter := cli.Formatter(cmd)
	id := cardID(cmd, args)
	if id == "" {
		return formatter.Usage("card id is required", "Usage: kanbot card rerun --id <id>")
	}

	cliInstance, err := cli.GetCLIFromContext(ctx)
	if err != nil {
		return formatter.Fail(err)
	}
	defer cli.CloseQuietly(cliInstance)

	return updateStatus(ctx, formatter, cliInstance, id, func(engine *board.Engine) error {
		return engine.RequeueCard(id)
	})
}

// updateStatus applies change and reports the card's resulting status
func updateStatus(ctx context.Context, formatter *cli.OutputFormatter, c *cli.CLI, id types.CardID,
	change func(engine *board.Engine) error) error {
	var card *models.Card
	err := c.App.Update(ctx, func(engine *board.Engine) error {
		if err := change(engine); err != nil {
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
		fmt.Fprintf(w, "✓ Card %s is now %s\n", card.ID, card.Status)
	})
}

package board

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	kanban "github.com/thenoetrevino/kanbot/internal/board"
	"github.com/thenoetrevino/kanbot/internal/cli"
	"github.com/thenoetrevino/kanbot/internal/models"
)

// RenameCmd returns the board rename subcommand
func RenameCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "rename",
		Short: "Rename the current board",
		Long: `Rename the current board.

Examples:
  kanbot board rename --name "Growth team"
`,
		RunE: runRename,
	}

	cmd.Flags().String("name", "", "New board name (required)")
	cli.MarkRequired(cmd, "name")
	cli.AddOutputFlags(cmd)

	return cmd
}

func runRename(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	formatter := cli.Formatter(cmd)
	name, _ := cmd.Flags().GetString("name")

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
	var renamed *models.Board
	err = cliInstance.App.Update(ctx, func(engine *kanban.Engine) error {
		if err := engine.RenameBoard(b.ID, name); err != nil {
			return err
		}
		var err error
		renamed, err = engine.Board(b.ID)
		return err
	})
	if err != nil {
		return formatter.Fail(err)
	}

	return formatter.Success(renamed, func(w io.Writer) {
		fmt.Fprintf(w, "✓ Board renamed to '%s'\n", renamed.Name)
	})
}

package list

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/thenoetrevino/kanbot/internal/board"
	"github.com/thenoetrevino/kanbot/internal/cli"
	"github.com/thenoetrevino/kanbot/internal/models"
)

// CreateCmd returns the list create subcommand
func CreateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "create",
		Short: "Append a new list to the current board",
		Long: `Append a new list to the right of the current board's lists.

Examples:
  kanbot list create --title "Review"

  # Capture the new list id in a script
  LIST_ID=$(kanbot list create --title "Review" --quiet)
`,
		RunE: runCreate,
	}

	cmd.Flags().String("title", "", "List title (required)")
	cli.MarkRequired(cmd, "title")
	cli.AddOutputFlags(cmd)

	return cmd
}

func runCreate(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	formatter := cli.Formatter(cmd)
	title, _ := cmd.Flags().GetString("title")

	cliInstance, err := cli.GetCLIFromContext(ctx)
	if err != nil {
		return formatter.Fail(err)
	}
	defer cli.CloseQuietly(cliInstance)

	var list *models.List
	err = cliInstance.App.Update(ctx, func(engine *board.Engine) error {
		var err error
		list, err = engine.CreateList(title)
		return err
	})
	if err != nil {
		return formatter.Fail(err)
	}

	return formatter.Success(list, func(w io.Writer) {
		fmt.Fprintf(w, "✓ List '%s' created (ID: %s)\n", list.Title, list.ID)
	})
}

package board

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	kanban "github.com/thenoetrevino/kanbot/internal/board"
	"github.com/thenoetrevino/kanbot/internal/cli"
	"github.com/thenoetrevino/kanbot/internal/types"
)

// sampleCards fills the default lists when seeding with --sample
var sampleCards = []struct {
	list  types.ListID
	title string
}{
	{types.BacklogListID, "Update deps"},
	{types.BacklogListID, "Refactor UI"},
	{types.BacklogListID, "Fix auth bug"},
	{types.TodoListID, "Write onboarding email"},
	{types.InProgressListID, "Review PR #42"},
	{types.InProgressListID, "Add tests"},
	{types.DoneListID, "Setup project"},
}

type seedResult struct {
	BoardID string `json:"boardId"`
	Cards   int    `json:"cards"`
}

func (r *seedResult) GetID() string {
	return r.BoardID
}

// SeedCmd returns the board seed subcommand
func SeedCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Reset the board to its default lists",
		Long: `Discard all board state and recreate the default board with the
Backlog, To Do, In Progress and Done lists. With --sample a few example
cards are added.

Examples:
  kanbot board seed --sample
`,
		RunE: runSeed,
	}

	cmd.Flags().Bool("sample", false, "Add example cards")
	cli.AddOutputFlags(cmd)

	return cmd
}

func runSeed(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	formatter := cli.Formatter(cmd)
	sample, _ := cmd.Flags().GetBool("sample")

	cliInstance, err := cli.GetCLIFromContext(ctx)
	if err != nil {
		return formatter.Fail(err)
	}
	defer cli.CloseQuietly(cliInstance)

	if err := cliInstance.App.Reset(ctx); err != nil {
		return formatter.Fail(err)
	}

	created := 0
	if sample {
		err = cliInstance.App.Update(ctx, func(engine *kanban.Engine) error {
			created = 0
			for _, c := range sampleCards {
				if _, err := engine.CreateCard(c.list, c.title, ""); err != nil {
					return err
				}
				created++
			}
			return nil
		})
		if err != nil {
			return formatter.Fail(err)
		}
	}

	result := &seedResult{BoardID: string(types.DefaultBoardID), Cards: created}
	return formatter.Success(result, func(w io.Writer) {
		fmt.Fprintf(w, "✓ Board reset to defaults (%d sample cards)\n", created)
	})
}

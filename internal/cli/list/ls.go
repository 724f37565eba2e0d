package list

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/thenoetrevino/kanbot/internal/cli"
)

// LsCmd returns the list ls subcommand
func LsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "ls",
		Aliases: []string{"list"},
		Short:   "Show the lists of the current board in order",
		RunE:    runLs,
	}

	cli.AddOutputFlags(cmd)

	return cmd
}

func runLs(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	formatter := cli.Formatter(cmd)

	cliInstance, err := cli.GetCLIFromContext(ctx)
	if err != nil {
		return formatter.Fail(err)
	}
	defer cli.CloseQuietly(cliInstance)

	b, err := cliInstance.App.Engine.CurrentBoard()
	if err != nil {
		return formatter.Fail(err)
	}
	lists, err := cliInstance.App.Engine.Lists(b.ID)
	if err != nil {
		return formatter.Fail(err)
	}

	if formatter.Quiet {
		for _, l := range lists {
			fmt.Println(l.ID)
		}
		return nil
	}

	return formatter.Success(lists, func(w io.Writer) {
		if len(lists) == 0 {
			fmt.Fprintln(w, "No lists on this board")
			return
		}
		for _, l := range lists {
			fmt.Fprintf(w, "%d. %s (ID: %s, %d cards)\n", l.Position+1, l.Title, l.ID, len(l.CardIDs))
		}
	})
}

package list

import (
	"github.com/spf13/cobra"
)

// ListCmd returns the list parent command
func ListCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "list",
		Short: "Manage lists (columns) on the current board",
	}

	cmd.AddCommand(CreateCmd())
	cmd.AddCommand(LsCmd())

	return cmd
}

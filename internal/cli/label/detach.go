package label

import (
	"slices"

	"github.com/spf13/cobra"

	"github.com/thenoetrevino/kanbot/internal/types"
)

// DetachCmd returns the label detach subcommand
func DetachCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "detach",
		Short: "Remove a label from a card",
		Long: `Remove a label (by id or name) from a card.

Examples:
  kanbot label detach --card c_1a2b3c4d --label bug
`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runEdit(cmd, func(labels []types.LabelID, id types.LabelID) []types.LabelID {
				return slices.DeleteFunc(labels, func(l types.LabelID) bool { return l == id })
			})
		},
	}

	addEditFlags(cmd)
	return cmd
}

package card

import (
	"github.com/spf13/cobra"

	"github.com/thenoetrevino/kanbot/internal/cli"
	"github.com/thenoetrevino/kanbot/internal/types"
)

// CardCmd returns the card parent command
func CardCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "card",
		Short: "Manage cards",
	}

	cmd.AddCommand(CreateCmd())
	cmd.AddCommand(LsCmd())
	cmd.AddCommand(ShowCmd())
	cmd.AddCommand(MoveCmd())
	cmd.AddCommand(UpdateCmd())
	cmd.AddCommand(StatusCmd())
	cmd.AddCommand(RerunCmd())
	cmd.AddCommand(SeenCmd())
	cmd.AddCommand(ArchiveCmd())
	cmd.AddCommand(ChecklistCmd())
	cmd.AddCommand(CommentCmd())

	return cmd
}

// addIDFlag registers the --id flag. When required is false the id may
// also be given as the first positional argument.
func addIDFlag(cmd *cobra.Command, required bool) {
	cmd.Flags().String("id", "", "Card ID")
	if required {
		cli.MarkRequired(cmd, "id")
	}
}

// cardID reads the card id from --id or the first positional argument
func cardID(cmd *cobra.Command, args []string) types.CardID {
	id, _ := cmd.Flags().GetString("id")
	if id == "" && len(args) > 0 {
		id = args[0]
	}
	return types.CardID(id)
}

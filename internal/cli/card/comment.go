package card

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/thenoetrevino/kanbot/internal/board"
	"github.com/thenoetrevino/kanbot/internal/cli"
	"github.com/thenoetrevino/kanbot/internal/models"
	"github.com/thenoetrevino/kanbot/internal/user"
)

// CommentCmd returns the card comment subcommand
func CommentCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "comment",
		Short: "Add a comment to a card",
		Long: `Append a comment to a card. The author defaults to $KANBOT_USER, then the current system user.

Examples:
  kanbot card comment --id c_1a2b3c4d --message "Blocked on API keys"
  kanbot card comment --id c_1a2b3c4d --message "LGTM" --author reviewer
`,
		RunE: runComment,
	}

	addIDFlag(cmd, true)
	cmd.Flags().StringP("message", "m", "", "Comment text (required)")
	cmd.Flags().String("author", "", "Author user id (default: $KANBOT_USER or the system user)")
	cli.MarkRequired(cmd, "message")
	cli.AddOutputFlags(cmd)

	return cmd
}

func runComment(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	formatter := cli.Formatter(cmd)

	id := cardID(cmd, args)
	message, _ := cmd.Flags().GetString("message")
	explicit, _ := cmd.Flags().GetString("author")
	author := user.Author(explicit)

	cliInstance, err := cli.GetCLIFromContext(ctx)
	if err != nil {
		return formatter.Fail(err)
	}
	defer cli.CloseQuietly(cliInstance)

	var comment *models.Comment
	err = cliInstance.App.Update(ctx, func(engine *board.Engine) error {
		var err error
		comment, err = engine.AddComment(id, author, message)
		return err
	})
	if err != nil {
		return formatter.Fail(err)
	}

	return formatter.Success(comment, func(w io.Writer) {
		fmt.Fprintf(w, "✓ Comment added to card %s by %s (ID: %s)\n", id, comment.AuthorID, comment.ID)
	})
}

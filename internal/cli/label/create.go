package label

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/thenoetrevino/kanbot/internal/board"
	"github.com/thenoetrevino/kanbot/internal/cli"
	"github.com/thenoetrevino/kanbot/internal/cli/styles"
	"github.com/thenoetrevino/kanbot/internal/models"
)

// CreateCmd returns the label create subcommand
func CreateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create a new label",
		Long: `Create a label that cards can reference.

Examples:
  kanbot label create --name bug --color "#FF0000"
`,
		RunE: runCreate,
	}

	cmd.Flags().String("name", "", "Label name (required)")
	cmd.Flags().String("color", "#7D56F4", "Label color in hex format #RRGGBB")
	cli.MarkRequired(cmd, "name")
	cli.AddOutputFlags(cmd)

	return cmd
}

func runCreate(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	formatter := cli.Formatter(cmd)

	name, _ := cmd.Flags().GetString("name")
	color, _ := cmd.Flags().GetString("color")

	if err := cli.ValidateColorHex(color); err != nil {
		return formatter.FailWithSuggestion(err, "Use a 6-digit hex color like #FF0000")
	}

	cliInstance, err := cli.GetCLIFromContext(ctx)
	if err != nil {
		return formatter.Fail(err)
	}
	defer cli.CloseQuietly(cliInstance)

	var label *models.Label
	err = cliInstance.App.Update(ctx, func(engine *board.Engine) error {
		var err error
		label, err = engine.CreateLabel(name, color)
		return err
	})
	if err != nil {
		return formatter.Fail(err)
	}

	return formatter.Success(label, func(w io.Writer) {
		fmt.Fprintf(w, "✓ Label %s created (ID: %s)\n", styles.RenderLabelChip(label), label.ID)
	})
}

// LsCmd returns the label ls subcommand
func LsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "ls",
		Aliases: []string{"list"},
		Short:   "List labels by name",
		RunE: func(cmd *cobra.Command, args []string) error {
			formatter := cli.Formatter(cmd)

			cliInstance, err := cli.GetCLIFromContext(cmd.Context())
			if err != nil {
				return formatter.Fail(err)
			}
			defer cli.CloseQuietly(cliInstance)

			labels := cliInstance.App.Engine.Labels()
			if formatter.Quiet {
				for _, l := range labels {
					fmt.Println(l.ID)
				}
				return nil
			}
			return formatter.Success(labels, func(w io.Writer) {
				if len(labels) == 0 {
					fmt.Fprintln(w, "No labels")
					return
				}
				for _, l := range labels {
					fmt.Fprintf(w, "%s %s (ID: %s)\n", styles.RenderLabelChip(l), l.Color, l.ID)
				}
			})
		},
	}

	cli.AddOutputFlags(cmd)

	return cmd
}

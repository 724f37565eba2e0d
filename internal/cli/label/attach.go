package label

import (
	"fmt"
	"io"
	"slices"

	"github.com/spf13/cobra"

	"github.com/thenoetrevino/kanbot/internal/board"
	"github.com/thenoetrevino/kanbot/internal/cli"
	"github.com/thenoetrevino/kanbot/internal/models"
	"github.com/thenoetrevino/kanbot/internal/types"
)

// AttachCmd returns the label attach subcommand
func AttachCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "attach",
		Short: "Attach a label to a card",
		Long: `Add a label (by id or name) to a card, keeping its other labels.

Examples:
  kanbot label attach --card c_1a2b3c4d --label bug
`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runEdit(cmd, func(labels []types.LabelID, id types.LabelID) []types.LabelID {
				if slices.Contains(labels, id) {
					return labels
				}
				return append(labels, id)
			})
		},
	}

	addEditFlags(cmd)
	return cmd
}

func addEditFlags(cmd *cobra.Command) {
	cmd.Flags().String("card", "", "Card ID (required)")
	cmd.Flags().String("label", "", "Label id or name (required)")
	cli.MarkRequired(cmd, "card", "label")
	cli.AddOutputFlags(cmd)
}

// runEdit rewrites a card's label set with edit
func runEdit(cmd *cobra.Command, edit func([]types.LabelID, types.LabelID) []types.LabelID) error {
	ctx := cmd.Context()
	formatter := cli.Formatter(cmd)

	cardRef, _ := cmd.Flags().GetString("card")
	labelRef, _ := cmd.Flags().GetString("label")

	cliInstance, err := cli.GetCLIFromContext(ctx)
	if err != nil {
		return formatter.Fail(err)
	}
	defer cli.CloseQuietly(cliInstance)

	var updated *models.Card
	err = cliInstance.App.Update(ctx, func(engine *board.Engine) error {
		label, err := findLabel(engine.Labels(), labelRef)
		if err != nil {
			return err
		}
		card, err := engine.Card(types.CardID(cardRef))
		if err != nil {
			return err
		}

		labels := edit(slices.Clone(card.Labels), label.ID)
		if err := engine.UpdateCard(card.ID, board.CardChanges{Labels: &labels}); err != nil {
			return err
		}
		updated, err = engine.Card(card.ID)
		return err
	})
	if err != nil {
		return formatter.Fail(err)
	}
	return formatter.Success(updated, func(w io.Writer) {
		fmt.Fprintf(w, "✓ Card %s now has %d label(s)\n", updated.ID, len(updated.Labels))
	})
}

func findLabel(labels []*models.Label, ref string) (*models.Label, error) {
	for _, l := range labels {
		if string(l.ID) == ref {
			return l, nil
		}
	}
	for _, l := range labels {
		if l.Name == ref {
			return l, nil
		}
	}
	return nil, fmt.Errorf("%w: label '%s' not found", board.ErrNotFound, ref)
}

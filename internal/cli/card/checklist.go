package card

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/thenoetrevino/kanbot/internal/board"
	"github.com/thenoetrevino/kanbot/internal/cli"
	"github.com/thenoetrevino/kanbot/internal/models"
	"github.com/thenoetrevino/kanbot/internal/types"
)

// ChecklistCmd returns the card checklist parent command
func ChecklistCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "checklist",
		Short: "Manage card checklists",
	}

	cmd.AddCommand(checklistAddCmd())
	cmd.AddCommand(checklistItemCmd())
	cmd.AddCommand(checklistToggleCmd())

	return cmd
}

type toggleResult struct {
	CardID      string `json:"cardId"`
	ChecklistID string `json:"checklistId"`
	ItemID      string `json:"itemId"`
	Done        bool   `json:"done"`
	Completed   int    `json:"completed"`
	Total       int    `json:"total"`
}

func (r *toggleResult) GetID() string {
	return r.ItemID
}

func checklistAddCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "add",
		Short: "Add a checklist to a card",
		Long: `Add an empty checklist to a card.

Examples:
  kanbot card checklist add --id c_1a2b3c4d --title "Launch steps"
`,
		RunE: func(cmd *cobra.Command, args []string) error {
			formatter := cli.Formatter(cmd)
			id := cardID(cmd, args)
			title, _ := cmd.Flags().GetString("title")

			cliInstance, err := cli.GetCLIFromContext(cmd.Context())
			if err != nil {
				return formatter.Fail(err)
			}
			defer cli.CloseQuietly(cliInstance)

			var cl *models.Checklist
			err = cliInstance.App.Update(cmd.Context(), func(engine *board.Engine) error {
				var err error
				cl, err = engine.AddChecklist(id, title)
				return err
			})
			if err != nil {
				return formatter.Fail(err)
			}
			return formatter.Success(cl, func(w io.Writer) {
				fmt.Fprintf(w, "✓ Checklist '%s' added (ID: %s)\n", cl.Title, cl.ID)
			})
		},
	}

	addIDFlag(cmd, true)
	cmd.Flags().String("title", "", "Checklist title (default \"Checklist\")")
	cli.AddOutputFlags(cmd)

	return cmd
}

func checklistItemCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "item",
		Short: "Append an item to a checklist",
		Long: `Append an unchecked item to a card checklist.

Examples:
  kanbot card checklist item --id c_1a2b3c4d --checklist cl_5e6f7a8b --text "Write tests"
`,
		RunE: func(cmd *cobra.Command, args []string) error {
			formatter := cli.Formatter(cmd)
			id := cardID(cmd, args)
			checklistID, _ := cmd.Flags().GetString("checklist")
			text, _ := cmd.Flags().GetString("text")

			cliInstance, err := cli.GetCLIFromContext(cmd.Context())
			if err != nil {
				return formatter.Fail(err)
			}
			defer cli.CloseQuietly(cliInstance)

			var item *models.ChecklistItem
			err = cliInstance.App.Update(cmd.Context(), func(engine *board.Engine) error {
				var err error
				item, err = engine.AddChecklistItem(id, types.ChecklistID(checklistID), text)
				return err
			})
			if err != nil {
				return formatter.Fail(err)
			}
			return formatter.Success(item, func(w io.Writer) {
				fmt.Fprintf(w, "✓ Item '%s' added (ID: %s)\n", item.Text, item.ID)
			})
		},
	}

	addIDFlag(cmd, true)
	cmd.Flags().String("checklist", "", "Checklist ID (required)")
	cmd.Flags().String("text", "", "Item text (required)")
	cli.MarkRequired(cmd, "checklist", "text")
	cli.AddOutputFlags(cmd)

	return cmd
}

func checklistToggleCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "toggle",
		Short: "Flip a checklist item between done and not done",
		RunE: func(cmd *cobra.Command, args []string) error {
			formatter := cli.Formatter(cmd)
			id := cardID(cmd, args)
			checklistID, _ := cmd.Flags().GetString("checklist")
			itemID, _ := cmd.Flags().GetString("item")

			cliInstance, err := cli.GetCLIFromContext(cmd.Context())
			if err != nil {
				return formatter.Fail(err)
			}
			defer cli.CloseQuietly(cliInstance)

			var (
				done bool
				card *models.Card
			)
			err = cliInstance.App.Update(cmd.Context(), func(engine *board.Engine) error {
				var err error
				done, err = engine.ToggleChecklistItem(id, types.ChecklistID(checklistID), types.ChecklistItemID(itemID))
				if err != nil {
					return err
				}
				card, err = engine.Card(id)
				return err
			})
			if err != nil {
				return formatter.Fail(err)
			}
			completed, total := card.ChecklistProgress()

			result := &toggleResult{
				CardID:      string(id),
				ChecklistID: checklistID,
				ItemID:      itemID,
				Done:        done,
				Completed:   completed,
				Total:       total,
			}
			return formatter.Success(result, func(w io.Writer) {
				state := "not done"
				if done {
					state = "done"
				}
				fmt.Fprintf(w, "✓ Item %s is %s (%d/%d complete)\n", itemID, state, completed, total)
			})
		},
	}

	addIDFlag(cmd, true)
	cmd.Flags().String("checklist", "", "Checklist ID (required)")
	cmd.Flags().String("item", "", "Item ID (required)")
	cli.MarkRequired(cmd, "checklist", "item")
	cli.AddOutputFlags(cmd)

	return cmd
}

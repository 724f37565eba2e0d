package card

import (
	"fmt"
	"io"
	"maps"
	"slices"
	"strings"

	"github.com/spf13/cobra"

	"github.com/thenoetrevino/kanbot/internal/board"
	"github.com/thenoetrevino/kanbot/internal/cli"
	"github.com/thenoetrevino/kanbot/internal/models"
	"github.com/thenoetrevino/kanbot/internal/types"
)

// UpdateCmd returns the card update subcommand
func UpdateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "update",
		Short: "Update card fields",
		Long: `Update one or more fields of a card. Only the flags given are changed.
Editing the title or description of a card in the in-progress list marks
its automation output stale (status requiresAction).

Examples:
  kanbot card update --id c_1a2b3c4d --title "New title"
  kanbot card update --id c_1a2b3c4d --label bug --label lb_9f8e7d6c
  kanbot card update --id c_1a2b3c4d --provider openai --status queued
  kanbot card update --id c_1a2b3c4d --due 2026-11-30
  kanbot card update --id c_1a2b3c4d --due none
`,
		RunE: runUpdate,
	}

	addIDFlag(cmd, true)
	cmd.Flags().String("title", "", "New title")
	cmd.Flags().String("description", "", "New description (markdown)")
	cmd.Flags().String("status", "", "New status (idle, queued, running, succeeded, failed, requiresAction)")
	cmd.Flags().String("provider", "", "Automation provider (openai, dust, aci)")
	cmd.Flags().StringSlice("label", nil, "Label id or name; replaces all labels (repeatable, empty clears)")
	cmd.Flags().StringSlice("member", nil, "Member user id; replaces all members (repeatable, empty clears)")
	cmd.Flags().String("due", "", "Due date YYYY-MM-DD, or \"none\" to clear")
	cli.AddOutputFlags(cmd)

	return cmd
}

func runUpdate(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	formatter := cli.Formatter(cmd)
	id := cardID(cmd, args)

	cliInstance, err := cli.GetCLIFromContext(ctx)
	if err != nil {
		return formatter.Fail(err)
	}
	defer cli.CloseQuietly(cliInstance)

	engine := cliInstance.App.Engine
	changes, err := changesFromFlags(cmd, engine.Labels())
	if err != nil {
		return formatter.Fail(err)
	}
	if changes.IsEmpty() {
		return formatter.Usage("no changes given",
			"Use at least one of --title, --description, --status, --provider, --label, --member, --due")
	}

	var card *models.Card
	err = cliInstance.App.Update(ctx, func(engine *board.Engine) error {
		if err := engine.UpdateCard(id, changes); err != nil {
			return err
		}
		var err error
		card, err = engine.Card(id)
		return err
	})
	if err != nil {
		return formatter.Fail(err)
	}
	return formatter.Success(card, func(w io.Writer) {
		fields := slices.Sorted(maps.Keys(changes.Map()))
		fmt.Fprintf(w, "✓ Card %s updated (%s)\n", card.ID, strings.Join(fields, ", "))
		if card.Status == models.StatusRequiresAction && changes.Status == nil {
			fmt.Fprintln(w, "  Automation output is now stale (requiresAction)")
		}
	})
}

// changesFromFlags builds CardChanges from the flags that were set
func changesFromFlags(cmd *cobra.Command, labels []*models.Label) (board.CardChanges, error) {
	var changes board.CardChanges
	flags := cmd.Flags()

	if flags.Changed("title") {
		title, _ := flags.GetString("title")
		changes.Title = &title
	}
	if flags.Changed("description") {
		description, _ := flags.GetString("description")
		changes.Description = &description
	}
	if flags.Changed("status") {
		raw, _ := flags.GetString("status")
		status, err := cli.ParseStatus(raw)
		if err != nil {
			return changes, err
		}
		changes.Status = &status
	}
	if flags.Changed("provider") {
		raw, _ := flags.GetString("provider")
		provider, err := cli.ParseProvider(raw)
		if err != nil {
			return changes, err
		}
		changes.Provider = &provider
	}
	if flags.Changed("label") {
		refs, _ := flags.GetStringSlice("label")
		ids := make([]types.LabelID, 0, len(refs))
		for _, ref := range refs {
			ids = append(ids, resolveLabel(labels, ref))
		}
		changes.Labels = &ids
	}
	if flags.Changed("member") {
		refs, _ := flags.GetStringSlice("member")
		ids := make([]types.UserID, 0, len(refs))
		for _, ref := range refs {
			ids = append(ids, types.UserID(ref))
		}
		changes.Members = &ids
	}
	if flags.Changed("due") {
		raw, _ := flags.GetString("due")
		if strings.EqualFold(raw, "none") || raw == "" {
			changes.ClearDueDate = true
		} else {
			due, err := cli.ParseDueDate(raw)
			if err != nil {
				return changes, err
			}
			changes.DueDate = &due
		}
	}

	return changes, nil
}

// resolveLabel maps a label name to its id. Unknown names pass through as
// ids so the engine reports them as not found.
func resolveLabel(labels []*models.Label, ref string) types.LabelID {
	for _, l := range labels {
		if string(l.ID) == ref {
			return l.ID
		}
	}
	for _, l := range labels {
		if strings.EqualFold(l.Name, ref) {
			return l.ID
		}
	}
	return types.LabelID(ref)
}

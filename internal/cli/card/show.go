package card

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/thenoetrevino/kanbot/internal/board"
	"github.com/thenoetrevino/kanbot/internal/cli"
	"github.com/thenoetrevino/kanbot/internal/cli/styles"
	"github.com/thenoetrevino/kanbot/internal/models"
)

// ShowCmd returns the card show subcommand
func ShowCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "show [id]",
		Short: "Show card details",
		Long:  "Display all details of a card including description, labels, checklists and comments.",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runShow,
	}

	addIDFlag(cmd, false)
	cli.AddOutputFlags(cmd)

	return cmd
}

func runShow(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	formatter := cli.Formatter(cmd)

	id := cardID(cmd, args)
	if id == "" {
		return formatter.Usage("card id is required",
			"Usage: kanbot card show <id> or kanbot card show --id=<id>")
	}

	cliInstance, err := cli.GetCLIFromContext(ctx)
	if err != nil {
		return formatter.Fail(err)
	}
	defer cli.CloseQuietly(cliInstance)

	engine := cliInstance.App.Engine
	card, err := engine.Card(id)
	if err != nil {
		return formatter.Fail(err)
	}

	return formatter.Success(card, func(w io.Writer) {
		fmt.Fprintln(w, renderCard(engine, card))
	})
}

func renderCard(engine *board.Engine, card *models.Card) string {
	var content strings.Builder

	header := styles.TitleStyle.Render(card.Title)
	if card.IsNew {
		header += " " + styles.NewBadgeStyle.Render("NEW")
	}
	content.WriteString(header + "\n")
	content.WriteString(styles.SubtitleStyle.Render(string(card.ID)) + "\n\n")

	listTitle := string(card.ListID)
	if l, err := engine.List(card.ListID); err == nil {
		listTitle = l.Title
	}
	field := func(name, value string) {
		content.WriteString(fmt.Sprintf("%s %s\n", styles.LabelStyle.Render(name), value))
	}
	field("List:", styles.ValueStyle.Render(fmt.Sprintf("%s (position %d)", listTitle, card.Position)))
	field("Status:", styles.RenderStatus(card.Status))
	if card.Provider != "" {
		field("Provider:", styles.ValueStyle.Render(string(card.Provider)))
	}
	if card.DueDate != nil {
		field("Due:", styles.ValueStyle.Render(card.DueDate.Format("Jan 2, 2006")))
	}
	if len(card.Members) > 0 {
		members := make([]string, len(card.Members))
		for i, m := range card.Members {
			members[i] = string(m)
		}
		field("Members:", styles.ValueStyle.Render(strings.Join(members, ", ")))
	}

	if len(card.Labels) > 0 {
		content.WriteString(styles.SectionStyle.Render("Labels") + "\n")
		chips := make([]string, 0, len(card.Labels))
		for _, id := range card.Labels {
			if label, err := engine.Label(id); err == nil {
				chips = append(chips, styles.RenderLabelChip(label))
			}
		}
		content.WriteString("  " + strings.Join(chips, " ") + "\n")
	}

	content.WriteString(styles.SectionStyle.Render("Description") + "\n")
	content.WriteString(styles.RenderDescription(card.Description, styles.CardWidth-8) + "\n")

	for _, cl := range card.Checklists {
		done := 0
		for _, item := range cl.Items {
			if item.Done {
				done++
			}
		}
		content.WriteString(styles.SectionStyle.Render(
			fmt.Sprintf("%s (%d/%d)", cl.Title, done, len(cl.Items))) + "\n")
		content.WriteString("  " + styles.SubtitleStyle.Render(string(cl.ID)) + "\n")
		for _, item := range cl.Items {
			box := "[ ]"
			if item.Done {
				box = styles.SuccessStyle.Render("[x]")
			}
			content.WriteString(fmt.Sprintf("  %s %s %s\n", box, styles.ValueStyle.Render(item.Text),
				styles.SubtitleStyle.Render(string(item.ID))))
		}
	}

	if len(card.Comments) > 0 {
		content.WriteString(styles.SectionStyle.Render("Comments") + "\n")
		for _, c := range card.Comments {
			content.WriteString(fmt.Sprintf("  %s %s\n    %s\n",
				styles.LabelStyle.Render(string(c.AuthorID)),
				styles.SubtitleStyle.Render(c.CreatedAt.Format("Jan 2, 2006 3:04 PM")),
				styles.ValueStyle.Render(c.Text)))
		}
	}

	return styles.RenderCard(content.String())
}

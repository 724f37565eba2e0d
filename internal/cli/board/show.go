package board

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/thenoetrevino/kanbot/internal/cli"
	"github.com/thenoetrevino/kanbot/internal/cli/styles"
	"github.com/thenoetrevino/kanbot/internal/models"
)

// boardView is the JSON shape of board show
type boardView struct {
	*models.Board
	Lists          []listView `json:"lists"`
	OnboardingCard string     `json:"onboardingCardId,omitempty"`
}

type listView struct {
	*models.List
	Cards []*models.Card `json:"cards"`
}

// ShowCmd returns the board show subcommand
func ShowCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "show",
		Short: "Show the current board with every list and card",
		RunE:  runShow,
	}

	cli.AddOutputFlags(cmd)

	return cmd
}

func runShow(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	formatter := cli.Formatter(cmd)

	cliInstance, err := cli.GetCLIFromContext(ctx)
	if err != nil {
		return formatter.Fail(err)
	}
	defer cli.CloseQuietly(cliInstance)

	engine := cliInstance.App.Engine
	b, err := engine.CurrentBoard()
	if err != nil {
		return formatter.Fail(err)
	}
	lists, err := engine.Lists(b.ID)
	if err != nil {
		return formatter.Fail(err)
	}

	view := &boardView{Board: b, Lists: make([]listView, 0, len(lists))}
	for _, l := range lists {
		cards, err := engine.Cards(l.ID)
		if err != nil {
			return formatter.Fail(err)
		}
		view.Lists = append(view.Lists, listView{List: l, Cards: cards})
	}
	if id, ok := engine.OnboardingCard(); ok {
		view.OnboardingCard = string(id)
	}

	return formatter.Success(view, func(w io.Writer) {
		fmt.Fprintln(w, styles.TitleStyle.Render(b.Name)+" "+styles.SubtitleStyle.Render("("+string(b.ID)+")"))
		for _, l := range view.Lists {
			fmt.Fprintln(w, styles.RenderList(l.List, l.Cards))
		}
		if view.OnboardingCard != "" {
			fmt.Fprintf(w, "%s card %s needs a provider\n",
				styles.WarningStyle.Render("Onboarding:"), view.OnboardingCard)
		}
	})
}

package board

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	kanban "github.com/thenoetrevino/kanbot/internal/board"
	"github.com/thenoetrevino/kanbot/internal/cli"
)

type onboardingResult struct {
	CardID  string `json:"cardId,omitempty"`
	Pending bool   `json:"pending"`
}

func (r *onboardingResult) GetID() string {
	return r.CardID
}

// OnboardingCmd returns the board onboarding subcommand
func OnboardingCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "onboarding",
		Short: "Show or dismiss the card awaiting provider configuration",
		Long: `Show the card that most recently entered the awaiting-configuration
list. With --clear the prompt is dismissed.`,
		RunE: runOnboarding,
	}

	cmd.Flags().Bool("clear", false, "Dismiss the pending onboarding card")
	cli.AddOutputFlags(cmd)

	return cmd
}

func runOnboarding(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	formatter := cli.Formatter(cmd)
	dismiss, _ := cmd.Flags().GetBool("clear")

	cliInstance, err := cli.GetCLIFromContext(ctx)
	if err != nil {
		return formatter.Fail(err)
	}
	defer cli.CloseQuietly(cliInstance)

	engine := cliInstance.App.Engine
	id, pending := engine.OnboardingCard()
	if dismiss && pending {
		err := cliInstance.App.Update(ctx, func(engine *kanban.Engine) error {
			engine.ClearOnboarding()
			return nil
		})
		if err != nil {
			return formatter.Fail(err)
		}
	}

	result := &onboardingResult{CardID: string(id), Pending: pending && !dismiss}
	return formatter.Success(result, func(w io.Writer) {
		switch {
		case !pending:
			fmt.Fprintln(w, "No card is awaiting configuration")
		case dismiss:
			fmt.Fprintf(w, "✓ Onboarding for card %s dismissed\n", id)
		default:
			fmt.Fprintf(w, "Card %s is awaiting provider configuration\n", id)
		}
	})
}

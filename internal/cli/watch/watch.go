package watch

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/thenoetrevino/kanbot/internal/cli"
	"github.com/thenoetrevino/kanbot/internal/cli/styles"
	"github.com/thenoetrevino/kanbot/internal/config"
	"github.com/thenoetrevino/kanbot/internal/events"
	"github.com/thenoetrevino/kanbot/internal/types"
)

// WatchCmd returns the watch command
func WatchCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Stream board events from the daemon",
		Long: `Connect to the kanbot daemon and print every board event as it happens.
Stops on Ctrl-C, or after --count events.

Examples:
  kanbot watch
  kanbot watch --board b1 --json
  kanbot watch --count 1 --timeout 30s
`,
		RunE: runWatch,
	}

	cmd.Flags().String("board", "", "Only events for this board (default: all boards)")
	cmd.Flags().String("socket", "", "Daemon socket path (default from config)")
	cmd.Flags().Int("count", 0, "Exit after this many events (0 = until interrupted)")
	cmd.Flags().Duration("timeout", 0, "Give up after this long (0 = no limit)")
	cmd.Flags().Bool("json", false, "Print each event as a JSON line")

	return cmd
}

func runWatch(cmd *cobra.Command, args []string) error {
	boardID, _ := cmd.Flags().GetString("board")
	socketPath, _ := cmd.Flags().GetString("socket")
	count, _ := cmd.Flags().GetInt("count")
	timeout, _ := cmd.Flags().GetDuration("timeout")
	jsonOutput, _ := cmd.Flags().GetBool("json")

	formatter := &cli.OutputFormatter{JSON: jsonOutput}

	if socketPath == "" {
		cfg, err := config.Load()
		if err != nil {
			return formatter.Fail(err)
		}
		socketPath = cfg.Daemon.SocketPath
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	client, err := events.NewClient(socketPath)
	if err != nil {
		return formatter.Fail(err)
	}
	defer func() { _ = client.Close() }()

	client.SetNotifyFunc(func(level, message string) {
		fmt.Fprintf(os.Stderr, "[%s] %s\n", level, message)
	})

	if err := client.Connect(ctx); err != nil {
		daemonErr := events.ClassifyDaemonError(err)
		return formatter.FailWithSuggestion(daemonErr, daemonErr.Hint)
	}
	if boardID != "" {
		if err := client.Subscribe(types.BoardID(boardID)); err != nil {
			return formatter.Fail(err)
		}
	}

	ch, err := client.Listen(ctx)
	if err != nil {
		return formatter.Fail(err)
	}

	if !jsonOutput {
		fmt.Fprintf(os.Stderr, "Watching %s for events...\n", socketPath)
	}

	encoder := json.NewEncoder(os.Stdout)
	seen := 0
	for ev := range ch {
		if jsonOutput {
			if err := encoder.Encode(ev); err != nil {
				return formatter.Fail(err)
			}
		} else {
			fmt.Println(describe(ev))
		}

		seen++
		if count > 0 && seen >= count {
			return nil
		}
	}
	return nil
}

// describe renders one event as a human-readable line
func describe(ev events.Event) string {
	stamp := styles.SubtitleStyle.Render(ev.Timestamp.Local().Format(time.TimeOnly))
	kind := styles.LabelStyle.Render(string(ev.Type))

	var detail string
	switch {
	case ev.CardCreated != nil:
		p := ev.CardCreated
		detail = fmt.Sprintf("%s '%s' in %s at %d", p.CardID, p.Title, p.ListID, p.Position)
	case ev.CardMoved != nil:
		p := ev.CardMoved
		detail = fmt.Sprintf("%s %s -> %s at %d", p.CardID, p.FromListID, p.ToListID, p.Position)
	case ev.CardUpdated != nil:
		detail = fmt.Sprintf("%s %v", ev.CardUpdated.CardID, ev.CardUpdated.Changes)
	case ev.ChecklistUpdated != nil:
		p := ev.ChecklistUpdated
		detail = fmt.Sprintf("%s %d/%d", p.CardID, p.Completed, p.Total)
	case ev.BoardUpdated != nil:
		detail = fmt.Sprintf("%s %v", ev.BoardUpdated.BoardID, ev.BoardUpdated.Changes)
	}

	return fmt.Sprintf("%s %s %s", stamp, kind, detail)
}

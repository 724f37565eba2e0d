// Package cmd wires the kanbot command tree
package cmd

import (
	"io"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/thenoetrevino/kanbot/internal/cli/board"
	"github.com/thenoetrevino/kanbot/internal/cli/card"
	"github.com/thenoetrevino/kanbot/internal/cli/label"
	"github.com/thenoetrevino/kanbot/internal/cli/list"
	"github.com/thenoetrevino/kanbot/internal/cli/styles"
	"github.com/thenoetrevino/kanbot/internal/cli/watch"
	"github.com/thenoetrevino/kanbot/internal/config"
	"github.com/thenoetrevino/kanbot/internal/logging"
)

var logFile io.Closer

var rootCmd = &cobra.Command{
	Use:   "kanbot",
	Short: "kanbot - a kanban board for automation cards",
	Long: `kanbot keeps a kanban board of lists and cards, persists it in SQLite and
relays every change to the kanbot daemon for live watchers.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load()
		if err != nil {
			return err
		}
		styles.Init(cfg.ColorScheme)

		logFile, err = logging.Init(cfg.DataDir)
		if err != nil {
			// Logging is best effort; commands still work without it
			slog.Debug("file logging unavailable", "error", err)
		}
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logFile != nil {
			_ = logFile.Close()
		}
	},
}

func init() {
	rootCmd.AddCommand(board.BoardCmd())
	rootCmd.AddCommand(list.ListCmd())
	rootCmd.AddCommand(card.CardCmd())
	rootCmd.AddCommand(label.LabelCmd())
	rootCmd.AddCommand(watch.WatchCmd())
}

// Execute runs the root command
func Execute() error {
	return rootCmd.Execute()
}

// Root returns the root command
func Root() *cobra.Command {
	return rootCmd
}

package cli

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	"github.com/thenoetrevino/kanbot/internal/app"
	"github.com/thenoetrevino/kanbot/internal/board"
	"github.com/thenoetrevino/kanbot/internal/config"
	"github.com/thenoetrevino/kanbot/internal/database"
	"github.com/thenoetrevino/kanbot/internal/events"
)

// CLI represents the CLI application context
type CLI struct {
	App         *app.App // Application container with the engine
	Config      *config.Config
	eventClient events.EventPublisher
	db          *sql.DB
	owned       bool
}

// NewCLI loads the config, opens the database, restores the board and
// connects to the daemon when one is running
func NewCLI(ctx context.Context) (*CLI, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	db, err := database.InitDB(ctx, cfg.DataDir)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}

	// Try to connect to daemon (optional - silent fallback)
	var eventClient events.EventPublisher
	client, err := events.NewClient(cfg.Daemon.SocketPath)
	if err == nil {
		client.SetDebounce(time.Duration(cfg.Events.DebounceMs) * time.Millisecond)
		// If it fails, daemon isn't running (graceful degradation)
		if err := client.Connect(ctx); err == nil {
			eventClient = client
		} else {
			slog.Debug("daemon not available", "socket", cfg.Daemon.SocketPath, "error", err)
			_ = client.Close()
		}
	}

	opts := []app.Option{
		app.WithStages(board.Stages{
			InProgress:     cfg.Stages.InProgress,
			AwaitingConfig: cfg.Stages.AwaitingConfig,
		}),
		app.WithMaxRetries(cfg.Events.MaxRetries),
	}
	if eventClient != nil {
		opts = append(opts, app.WithEventPublisher(eventClient))
	}

	application, err := app.New(ctx, db, opts...)
	if err != nil {
		if eventClient != nil {
			_ = eventClient.Close()
		}
		_ = db.Close()
		return nil, err
	}

	return &CLI{
		App:         application,
		Config:      cfg,
		eventClient: eventClient,
		db:          db,
		owned:       true,
	}, nil
}

// GetCLIFromContext returns a CLI around the App carried by ctx, or builds
// a new one from the user's configuration
func GetCLIFromContext(ctx context.Context) (*CLI, error) {
	if a, ok := app.FromContext(ctx); ok {
		return &CLI{App: a, Config: config.Default()}, nil
	}
	return NewCLI(ctx)
}

// Close cleans up CLI resources. Pending events reach the store and the
// daemon before the connection and database close.
func (c *CLI) Close() error {
	if !c.owned {
		c.App.Flush()
		return nil
	}

	err := c.App.Close()
	if c.eventClient != nil {
		if cerr := c.eventClient.Close(); cerr != nil {
			slog.Warn("failed to close daemon client", "error", cerr)
		}
	}
	if cerr := c.db.Close(); err == nil {
		err = cerr
	}
	return err
}

package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/thenoetrevino/kanbot/internal/config"
	"github.com/thenoetrevino/kanbot/internal/daemon"
	"github.com/thenoetrevino/kanbot/internal/logging"
)

func main() {
	// Set up signal handling for graceful shutdown
	ctx, cancel := signal.NotifyContext(
		context.Background(),
		os.Interrupt,
		syscall.SIGTERM,
		syscall.SIGQUIT,
	)
	defer cancel()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	// Ensure the socket directory exists with secure permissions
	if err := os.MkdirAll(filepath.Dir(cfg.Daemon.SocketPath), 0o700); err != nil {
		slog.Error("failed to create socket directory", "error", err)
		os.Exit(1)
	}

	logFile, err := logging.Init(cfg.DataDir)
	if err != nil {
		slog.Warn("file logging unavailable, using stderr", "error", err)
	} else {
		defer func() { _ = logFile.Close() }()
	}

	server, err := daemon.NewServer(cfg.Daemon.SocketPath, daemon.Options{
		BroadcastBuffer: cfg.Daemon.BroadcastBuffer,
		ClientBuffer:    cfg.Daemon.ClientBuffer,
		Logger:          slog.Default(),
	})
	if err != nil {
		slog.Error("failed to create daemon", "error", err)
		os.Exit(1)
	}

	slog.Info("kanbot daemon starting", "socket_path", cfg.Daemon.SocketPath, "pid", os.Getpid())

	// Start the daemon (blocks until shutdown)
	if err := server.Start(ctx); err != nil {
		slog.Error("daemon error", "error", err)
		os.Exit(1)
	}

	m := server.Metrics()
	slog.Info("kanbot daemon shutting down gracefully",
		"events_received", m.EventsReceived,
		"events_broadcast", m.EventsBroadcast,
		"events_dropped", m.EventsDropped,
		"events_sent", m.EventsSent)
}

package app

import (
	"log/slog"

	"github.com/thenoetrevino/kanbot/internal/board"
	"github.com/thenoetrevino/kanbot/internal/events"
)

// Option is a functional option for configuring App initialization
type Option func(*appConfig)

// appConfig holds the configuration for App initialization
type appConfig struct {
	eventClient events.EventPublisher
	logger      *slog.Logger
	stages      board.Stages
	maxRetries  int
	engineOpts  []board.Option
}

// WithEventPublisher relays every domain event to the daemon through ec
func WithEventPublisher(ec events.EventPublisher) Option {
	return func(cfg *appConfig) {
		cfg.eventClient = ec
	}
}

// WithLogger sets the logger for the application
func WithLogger(logger *slog.Logger) Option {
	return func(cfg *appConfig) {
		cfg.logger = logger
	}
}

// WithStages sets the in-progress and awaiting-configuration lists
func WithStages(s board.Stages) Option {
	return func(cfg *appConfig) {
		cfg.stages = s
	}
}

// WithMaxRetries sets how often a daemon relay publish is retried
func WithMaxRetries(n int) Option {
	return func(cfg *appConfig) {
		cfg.maxRetries = n
	}
}

// WithEngineOptions passes extra options through to board.New
func WithEngineOptions(opts ...board.Option) Option {
	return func(cfg *appConfig) {
		cfg.engineOpts = append(cfg.engineOpts, opts...)
	}
}

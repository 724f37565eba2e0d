// Package config loads the kanbot YAML configuration
package config

import (
	"os"
	"path/filepath"
	"strconv"

	"gopkg.in/yaml.v3"

	"github.com/thenoetrevino/kanbot/internal/config/colors"
	"github.com/thenoetrevino/kanbot/internal/types"
)

// Config represents the application configuration
type Config struct {
	DataDir     string             `yaml:"data_dir"`
	Stages      StagesConfig       `yaml:"stages"`
	Daemon      DaemonConfig       `yaml:"daemon"`
	Events      EventsConfig       `yaml:"events"`
	ColorScheme colors.ColorScheme `yaml:"theme"`
}

// StagesConfig names the lists with special behavior
type StagesConfig struct {
	InProgress     types.ListID `yaml:"in_progress"`
	AwaitingConfig types.ListID `yaml:"awaiting_config"`
}

// DaemonConfig tunes the event daemon
type DaemonConfig struct {
	SocketPath      string `yaml:"socket_path"`
	BroadcastBuffer int    `yaml:"broadcast_buffer"`
	ClientBuffer    int    `yaml:"client_buffer"`
}

// EventsConfig tunes the daemon client
type EventsConfig struct {
	DebounceMs int `yaml:"debounce_ms"`
	MaxRetries int `yaml:"max_retries"`
}

// Default returns the configuration used when no file exists
func Default() *Config {
	c := &Config{}
	c.applyDefaults()
	return c
}

// Load loads config from the user's config directory.
// Returns default config if the file doesn't exist.
func Load() (*Config, error) {
	configPath, err := getConfigPath()
	if err != nil {
		// Can't locate a config file; run on defaults
		c := Default()
		c.applyEnv()
		return c, nil
	}
	return LoadFrom(configPath)
}

// LoadFrom loads config from an explicit path
func LoadFrom(configPath string) (*Config, error) {
	var config Config

	data, err := os.ReadFile(configPath)
	switch {
	case os.IsNotExist(err):
	case err != nil:
		return nil, err
	default:
		if err := yaml.Unmarshal(data, &config); err != nil {
			return nil, err
		}
	}

	config.applyEnv()
	config.applyDefaults()
	return &config, nil
}

// Save writes the config to the user's config directory
func (c *Config) Save() error {
	configPath, err := getConfigPath()
	if err != nil {
		return err
	}

	if err := os.MkdirAll(filepath.Dir(configPath), 0o755); err != nil {
		return err
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return err
	}

	return os.WriteFile(configPath, data, 0o644)
}

// getConfigPath returns the path to the config file
func getConfigPath() (string, error) {
	if configHome := os.Getenv("XDG_CONFIG_HOME"); configHome != "" {
		return filepath.Join(configHome, "kanbot", "config.yaml"), nil
	}

	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}

	return filepath.Join(homeDir, ".config", "kanbot", "config.yaml"), nil
}

// applyEnv lets environment variables override file values
func (c *Config) applyEnv() {
	if dir := os.Getenv("KANBOT_DATA_DIR"); dir != "" {
		c.DataDir = dir
	}
	envInt("KANBOT_EVENT_DEBOUNCE_MS", &c.Events.DebounceMs)
	envInt("KANBOT_DAEMON_BROADCAST_BUFFER", &c.Daemon.BroadcastBuffer)
	envInt("KANBOT_DAEMON_CLIENT_BUFFER", &c.Daemon.ClientBuffer)
}

func envInt(key string, dst *int) {
	if val := os.Getenv(key); val != "" {
		if parsed, err := strconv.Atoi(val); err == nil && parsed > 0 {
			*dst = parsed
		}
	}
}

// applyDefaults fills in missing configuration with defaults
func (c *Config) applyDefaults() {
	if c.DataDir == "" {
		c.DataDir = defaultDataDir()
	}
	if c.Stages.InProgress == "" {
		c.Stages.InProgress = types.InProgressListID
	}
	if c.Stages.AwaitingConfig == "" {
		c.Stages.AwaitingConfig = types.TodoListID
	}
	if c.Daemon.SocketPath == "" {
		c.Daemon.SocketPath = filepath.Join(c.DataDir, "kanbot.sock")
	}
	if c.Daemon.BroadcastBuffer <= 0 {
		c.Daemon.BroadcastBuffer = 100
	}
	if c.Daemon.ClientBuffer <= 0 {
		c.Daemon.ClientBuffer = 10
	}
	if c.Events.DebounceMs <= 0 {
		c.Events.DebounceMs = 100
	}
	if c.Events.MaxRetries <= 0 {
		c.Events.MaxRetries = 3
	}
	c.ColorScheme.ApplyDefaults()
}

func defaultDataDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".kanbot"
	}
	return filepath.Join(home, ".kanbot")
}

package config

import (
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/viper"
)

// Config holds application configuration
type Config struct {
	// Root is the log root directory to discover projects under
	Root string `mapstructure:"root"`

	// Display defaults for the TUI
	ShowThinking bool `mapstructure:"show_thinking"`
	ExpandTools  bool `mapstructure:"expand_tools"`
	FollowActive bool `mapstructure:"follow_active"`

	// Logging (off unless a file is configured)
	LogFile  string `mapstructure:"log_file"`
	LogLevel string `mapstructure:"log_level"`

	Tuning TuningConfig `mapstructure:"tuning"`
}

// TuningConfig holds the timing knobs of the ingestion pipeline. Durations
// are strings ("250ms", "5s") so the file format stays obvious; accessors
// parse with defaults.
type TuningConfig struct {
	DebounceWindow  string `mapstructure:"debounce_window"`
	RefreshInterval string `mapstructure:"refresh_interval"`
	FollowGrace     string `mapstructure:"follow_grace"`
	WalkConcurrency int    `mapstructure:"walk_concurrency"`
}

// Default returns a Config with default values
func Default() *Config {
	root := ""
	if home, err := os.UserHomeDir(); err == nil {
		root = filepath.Join(home, ".claude", "projects")
	}
	return &Config{
		Root:        root,
		ExpandTools: true,
		LogLevel:    "info",
		Tuning: TuningConfig{
			DebounceWindow:  "250ms",
			RefreshInterval: "5s",
			FollowGrace:     "3s",
			WalkConcurrency: 4,
		},
	}
}

// DebounceWindow returns the parsed debounce quiet interval
func (c *Config) DebounceWindow() time.Duration {
	return duration(c.Tuning.DebounceWindow, 250*time.Millisecond)
}

// RefreshInterval returns the parsed periodic discovery interval
func (c *Config) RefreshInterval() time.Duration {
	return duration(c.Tuning.RefreshInterval, 5*time.Second)
}

// FollowGrace returns how long auto-follow defers to manual navigation
func (c *Config) FollowGrace() time.Duration {
	return duration(c.Tuning.FollowGrace, 3*time.Second)
}

func duration(s string, def time.Duration) time.Duration {
	d, err := time.ParseDuration(s)
	if err != nil || d <= 0 {
		return def
	}
	return d
}

// Load loads configuration from files and environment.
// Config file search order (highest precedence first):
// 1. ./.agenttail.yaml or ./.agenttail.yml
// 2. ~/.agenttail.yaml or ~/.agenttail.yml
// 3. $XDG_CONFIG_HOME/agenttail/config.yaml (or ~/.config/agenttail/config.yaml)
// 4. /etc/agenttail/config.yaml
func Load() (*Config, error) {
	cfg := Default()

	configFile := findConfigFile()
	if configFile != "" {
		v := viper.New()
		v.SetConfigFile(configFile)

		if err := v.ReadInConfig(); err != nil {
			return nil, err
		}
		if err := v.Unmarshal(cfg); err != nil {
			return nil, err
		}
	}

	applyEnvOverrides(cfg)
	return cfg, nil
}

// LoadFromFile loads configuration from a specific file
func LoadFromFile(path string) (*Config, error) {
	v := viper.New()
	v.SetConfigFile(path)

	if err := v.ReadInConfig(); err != nil {
		return nil, err
	}

	cfg := Default()
	if err := v.Unmarshal(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// ConfigFile returns the path to the config file that would be loaded
func ConfigFile() string {
	return findConfigFile()
}

// findConfigFile searches for config file in standard locations
func findConfigFile() string {
	names := []string{".agenttail.yaml", ".agenttail.yml", "agenttail.yaml", "agenttail.yml"}

	home, homeErr := os.UserHomeDir()
	configDir, configDirErr := os.UserConfigDir()

	var searchPaths []string
	if cwd, err := os.Getwd(); err == nil {
		searchPaths = append(searchPaths, cwd)
	}
	if homeErr == nil {
		searchPaths = append(searchPaths, home)
	}
	if configDirErr == nil {
		searchPaths = append(searchPaths, filepath.Join(configDir, "agenttail"))
	}
	searchPaths = append(searchPaths, "/etc/agenttail")

	for _, dir := range searchPaths {
		for _, name := range names {
			path := filepath.Join(dir, name)
			if _, err := os.Stat(path); err == nil {
				return path
			}
		}
		path := filepath.Join(dir, "config.yaml")
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}
	return ""
}

// applyEnvOverrides applies environment variable overrides to config
func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("AGENTTAIL_ROOT"); v != "" {
		cfg.Root = v
	}
	if v := os.Getenv("AGENTTAIL_LOG_FILE"); v != "" {
		cfg.LogFile = v
	}
	if v := os.Getenv("AGENTTAIL_LOG_LEVEL"); v != "" {
		cfg.LogLevel = v
	}
	if v := os.Getenv("AGENTTAIL_FOLLOW_ACTIVE"); v == "true" || v == "1" {
		cfg.FollowActive = true
	}
	if v := os.Getenv("AGENTTAIL_SHOW_THINKING"); v == "true" || v == "1" {
		cfg.ShowThinking = true
	}
}

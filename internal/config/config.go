// Package config loads and saves the dailybudget TOML configuration.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/dailybudget/dailybudget/internal/money"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"
)

// Environment variables that override values from the config file.
const (
	EnvBudget   = "DAILYBUDGET_BUDGET"
	EnvCurrency = "DAILYBUDGET_CURRENCY"
	EnvLedger   = "DAILYBUDGET_LEDGER"
)

// Config holds all dailybudget configuration.
type Config struct {
	General    GeneralConfig    `toml:"general"`
	Appearance AppearanceConfig `toml:"appearance"`
	Ledger     LedgerConfig     `toml:"ledger"`
	Log        LogConfig        `toml:"log"`
}

// GeneralConfig holds budget defaults.
type GeneralConfig struct {
	DefaultBudget float64 `toml:"default_budget"`
	Currency      string  `toml:"currency"`
	Locale        string  `toml:"locale"`
}

// AppearanceConfig holds theme settings.
type AppearanceConfig struct {
	Theme string `toml:"theme"`
}

// LedgerConfig controls the optional SQLite day ledger.
type LedgerConfig struct {
	Enabled bool   `toml:"enabled"`
	Path    string `toml:"path,omitempty"`
}

// LogConfig controls the file logger.
type LogConfig struct {
	Debug bool   `toml:"debug"`
	Dir   string `toml:"dir,omitempty"`
}

// DefaultConfig returns the default configuration.
func DefaultConfig() Config {
	return Config{
		General: GeneralConfig{
			DefaultBudget: 100,
			Currency:      "USD",
			Locale:        "en",
		},
		Appearance: AppearanceConfig{
			Theme: "flexoki-dark",
		},
	}
}

// Dir returns the XDG-compliant config directory.
func Dir() string {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, "dailybudget")
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".config", "dailybudget")
}

// Path returns the full path to the config file.
func Path() string {
	return filepath.Join(Dir(), "config.toml")
}

// LedgerPath returns the ledger database path, honoring the configured override.
func (c Config) LedgerPath() string {
	if c.Ledger.Path != "" {
		return c.Ledger.Path
	}
	if xdg := os.Getenv("XDG_DATA_HOME"); xdg != "" {
		return filepath.Join(xdg, "dailybudget", "ledger.db")
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".local", "share", "dailybudget", "ledger.db")
}

// Load reads the config file, returning defaults if it doesn't exist, then
// applies a .env file from the working directory and environment overrides.
func Load() (Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(Path())
	switch {
	case err == nil:
		if err := toml.Unmarshal(data, &cfg); err != nil {
			return cfg, fmt.Errorf("parsing config: %w", err)
		}
	case errors.Is(err, os.ErrNotExist):
	default:
		return cfg, fmt.Errorf("reading config: %w", err)
	}

	_ = godotenv.Load()

	if err := applyEnv(&cfg); err != nil {
		return cfg, err
	}
	return cfg, nil
}

func applyEnv(cfg *Config) error {
	if v := strings.TrimSpace(os.Getenv(EnvBudget)); v != "" {
		b, err := money.Parse(v)
		if err != nil {
			return fmt.Errorf("invalid %s %q: %w", EnvBudget, v, err)
		}
		cfg.General.DefaultBudget = b
	}
	if v := strings.TrimSpace(os.Getenv(EnvCurrency)); v != "" {
		cfg.General.Currency = strings.ToUpper(v)
	}
	if v := strings.TrimSpace(os.Getenv(EnvLedger)); v != "" {
		enabled, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("invalid %s %q: %w", EnvLedger, v, err)
		}
		cfg.Ledger.Enabled = enabled
	}
	return nil
}

// Save writes the config to disk.
func Save(cfg Config) error {
	if err := os.MkdirAll(Dir(), 0o755); err != nil {
		return fmt.Errorf("creating config dir: %w", err)
	}

	f, err := os.OpenFile(Path(), os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0o600)
	if err != nil {
		return fmt.Errorf("creating config file: %w", err)
	}
	defer f.Close()

	if err := toml.NewEncoder(f).Encode(cfg); err != nil {
		return fmt.Errorf("writing config: %w", err)
	}
	return nil
}

// Exists returns true if a config file exists on disk.
func Exists() bool {
	_, err := os.Stat(Path())
	return err == nil
}

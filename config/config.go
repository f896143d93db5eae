package config

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/rustyeddy/papertrade/logging"
	"github.com/rustyeddy/papertrade/market"
)

// Config represents a complete paper trading session configuration
type Config struct {
	Session   SessionConfig   `json:"session" yaml:"session"`
	Market    MarketConfig    `json:"market" yaml:"market"`
	Annotator AnnotatorConfig `json:"annotator" yaml:"annotator"`
	Journal   JournalConfig   `json:"journal" yaml:"journal"`
	Log       logging.Config  `json:"log" yaml:"log"`
	Metrics   MetricsConfig   `json:"metrics" yaml:"metrics"`
}

// SessionConfig contains portfolio and clock parameters
type SessionConfig struct {
	StartingCash float64 `json:"starting_cash" yaml:"starting_cash"`
	TickInterval string  `json:"tick_interval" yaml:"tick_interval"` // e.g. "3s"
	OrderQty     int     `json:"order_qty" yaml:"order_qty"`         // default quantity for auto trading
}

// Interval parses TickInterval.
func (s SessionConfig) Interval() (time.Duration, error) {
	if s.TickInterval == "" {
		return 0, fmt.Errorf("session.tick_interval is required")
	}
	return time.ParseDuration(s.TickInterval)
}

// MarketConfig selects the simulated basket
type MarketConfig struct {
	Seed        int64               `json:"seed" yaml:"seed"` // 0 seeds from the clock
	Window      int                 `json:"window" yaml:"window"`
	Instruments []market.Instrument `json:"instruments,omitempty" yaml:"instruments,omitempty"`
}

// Basket returns the configured instruments, or the default basket.
func (m MarketConfig) Basket() []market.Instrument {
	if len(m.Instruments) == 0 {
		return market.DefaultBasket
	}
	return m.Instruments
}

// AnnotatorConfig contains the AI commentary endpoint parameters
type AnnotatorConfig struct {
	Enabled   bool   `json:"enabled" yaml:"enabled"`
	APIKeyEnv string `json:"api_key_env" yaml:"api_key_env"`
	BaseURL   string `json:"base_url,omitempty" yaml:"base_url,omitempty"`
	Model     string `json:"model" yaml:"model"`
	MaxTokens int    `json:"max_tokens" yaml:"max_tokens"`
	Timeout   string `json:"timeout" yaml:"timeout"`
}

// APIKey reads the key from the configured environment variable.
func (a AnnotatorConfig) APIKey() string {
	if a.APIKeyEnv == "" {
		return ""
	}
	return os.Getenv(a.APIKeyEnv)
}

func (a AnnotatorConfig) RequestTimeout() (time.Duration, error) {
	if a.Timeout == "" {
		return 0, nil
	}
	return time.ParseDuration(a.Timeout)
}

// JournalConfig contains journaling parameters
type JournalConfig struct {
	Type       string `json:"type" yaml:"type"` // "none", "csv" or "sqlite"
	FillsFile  string `json:"fills_file,omitempty" yaml:"fills_file,omitempty"`
	EquityFile string `json:"equity_file,omitempty" yaml:"equity_file,omitempty"`
	DBPath     string `json:"db_path,omitempty" yaml:"db_path,omitempty"`
}

// MetricsConfig enables the Prometheus endpoint when Addr is set
type MetricsConfig struct {
	Addr string `json:"addr,omitempty" yaml:"addr,omitempty"`
}

// LoadFromFile loads configuration from a file (YAML, falling back to JSON)
func LoadFromFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config file: %w", err)
	}

	cfg := Default()

	// Try YAML first, fall back to JSON
	err = yaml.Unmarshal(data, cfg)
	if err != nil {
		cfg = Default()
		err = json.Unmarshal(data, cfg)
		if err != nil {
			return nil, fmt.Errorf("parse config (tried YAML and JSON): %w", err)
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return cfg, nil
}

// SaveToFile saves configuration to a file (JSON or YAML based on extension)
func (c *Config) SaveToFile(path string) error {
	var data []byte
	var err error

	if strings.HasSuffix(path, ".yaml") || strings.HasSuffix(path, ".yml") {
		data, err = yaml.Marshal(c)
	} else {
		data, err = json.MarshalIndent(c, "", "  ")
	}

	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("write config file: %w", err)
	}

	return nil
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	if c.Session.StartingCash <= 0 {
		return fmt.Errorf("session.starting_cash must be positive")
	}
	d, err := c.Session.Interval()
	if err != nil {
		return fmt.Errorf("session.tick_interval: %w", err)
	}
	if d <= 0 {
		return fmt.Errorf("session.tick_interval must be positive")
	}
	if c.Session.OrderQty < 0 {
		return fmt.Errorf("session.order_qty must not be negative")
	}
	if c.Market.Window < 0 {
		return fmt.Errorf("market.window must not be negative")
	}

	seen := make(map[string]bool)
	for _, in := range c.Market.Instruments {
		if err := in.Validate(); err != nil {
			return fmt.Errorf("market.instruments: %w", err)
		}
		if seen[in.Symbol] {
			return fmt.Errorf("market.instruments: duplicate symbol %s", in.Symbol)
		}
		seen[in.Symbol] = true
	}

	if c.Annotator.MaxTokens < 0 {
		return fmt.Errorf("annotator.max_tokens must not be negative")
	}
	if _, err := c.Annotator.RequestTimeout(); err != nil {
		return fmt.Errorf("annotator.timeout: %w", err)
	}

	switch c.Journal.Type {
	case "", "none":
	case "csv":
		if c.Journal.FillsFile == "" || c.Journal.EquityFile == "" {
			return fmt.Errorf("journal fills_file and equity_file required for CSV type")
		}
	case "sqlite":
		if c.Journal.DBPath == "" {
			return fmt.Errorf("journal db_path required for SQLite type")
		}
	default:
		return fmt.Errorf("journal.type must be 'none', 'csv' or 'sqlite'")
	}

	if _, err := logging.ParseLevel(c.Log.Level); err != nil {
		return fmt.Errorf("log.level: %w", err)
	}
	return nil
}

// Default returns a configuration with sensible defaults
func Default() *Config {
	return &Config{
		Session: SessionConfig{
			StartingCash: 100000,
			TickInterval: "3s",
			OrderQty:     10,
		},
		Market: MarketConfig{
			Window: market.DefaultWindow,
		},
		Annotator: AnnotatorConfig{
			Enabled:   true,
			APIKeyEnv: "ANTHROPIC_API_KEY",
			Model:     "claude-sonnet-4-20250514",
			MaxTokens: 1000,
			Timeout:   "30s",
		},
		Journal: JournalConfig{
			Type: "none",
		},
		Log: logging.Default(),
	}
}

package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/Rhymond/go-money"
	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"

	"github.com/rustyeddy/capital/ledger"
)

// Config is everything needed to replay an event stream into a ledger.
type Config struct {
	Account AccountConfig `json:"account" yaml:"account"`
	Broker  BrokerConfig  `json:"broker" yaml:"broker"`
	Journal JournalConfig `json:"journal" yaml:"journal"`
	Log     LogConfig     `json:"log" yaml:"log"`
}

// AccountConfig identifies the account and optionally seeds its balances.
// The balances are passed to the ledger as-is; they are not checked.
type AccountConfig struct {
	ID           string           `json:"id" yaml:"id"`
	Currency     string           `json:"currency" yaml:"currency"`
	Cash         *decimal.Decimal `json:"cash,omitempty" yaml:"cash,omitempty"`
	ReservedCash *decimal.Decimal `json:"reserved_cash,omitempty" yaml:"reserved_cash,omitempty"`
	Commission   *decimal.Decimal `json:"commission,omitempty" yaml:"commission,omitempty"`
}

// BrokerConfig tunes the simulated broker.
type BrokerConfig struct {
	// CommissionRate is charged on the notional of every fill, e.g. 0.001.
	CommissionRate decimal.Decimal `json:"commission_rate" yaml:"commission_rate"`
	// MaxFillQuantity caps how much of an order fills per bar. Unset fills
	// orders completely.
	MaxFillQuantity *decimal.Decimal `json:"max_fill_quantity,omitempty" yaml:"max_fill_quantity,omitempty"`
}

// JournalConfig selects where ledger snapshots are written.
type JournalConfig struct {
	Type          string `json:"type" yaml:"type"` // "csv", "sqlite" or "memory"
	SnapshotsFile string `json:"snapshots_file,omitempty" yaml:"snapshots_file,omitempty"`
	DBPath        string `json:"db_path,omitempty" yaml:"db_path,omitempty"`
}

type LogConfig struct {
	Level string `json:"level" yaml:"level"`
}

// Overrides turns the configured balances into initial values for an
// Initialized event. Balances left out of the config are not supplied.
func (a AccountConfig) Overrides() ledger.Overrides {
	var o ledger.Overrides
	if a.Cash != nil {
		o.Cash = decimal.NewNullDecimal(*a.Cash)
	}
	if a.ReservedCash != nil {
		o.ReservedCash = decimal.NewNullDecimal(*a.ReservedCash)
	}
	if a.Commission != nil {
		o.Commission = decimal.NewNullDecimal(*a.Commission)
	}
	return o
}

// LoadFromFile loads configuration from a YAML or JSON file and validates it.
func LoadFromFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config file: %w", err)
	}

	cfg := &Config{}

	// Try YAML first, fall back to JSON
	if err := yaml.Unmarshal(data, cfg); err != nil {
		if jerr := json.Unmarshal(data, cfg); jerr != nil {
			return nil, fmt.Errorf("parse config (tried YAML and JSON): %w", err)
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

// SaveToFile writes YAML for .yaml/.yml paths and indented JSON otherwise.
func (c *Config) SaveToFile(path string) error {
	var (
		data []byte
		err  error
	)

	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		data, err = yaml.Marshal(c)
	default:
		data, err = json.MarshalIndent(c, "", "  ")
	}
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write config file: %w", err)
	}
	return nil
}

// Validate checks the settings the ledger itself does not care about.
func (c *Config) Validate() error {
	if c.Account.ID == "" {
		return fmt.Errorf("account.id is required")
	}
	if c.Account.Currency == "" {
		return fmt.Errorf("account.currency is required")
	}
	if money.GetCurrency(c.Account.Currency) == nil {
		return fmt.Errorf("unknown currency: %s", c.Account.Currency)
	}
	if c.Broker.CommissionRate.IsNegative() {
		return fmt.Errorf("broker.commission_rate must not be negative")
	}
	if m := c.Broker.MaxFillQuantity; m != nil && !m.IsPositive() {
		return fmt.Errorf("broker.max_fill_quantity must be positive")
	}

	switch c.Journal.Type {
	case "csv":
		if c.Journal.SnapshotsFile == "" {
			return fmt.Errorf("journal snapshots_file required for CSV type")
		}
	case "sqlite":
		if c.Journal.DBPath == "" {
			return fmt.Errorf("journal db_path required for SQLite type")
		}
	case "memory":
	default:
		return fmt.Errorf("journal.type must be 'csv', 'sqlite' or 'memory'")
	}
	return nil
}

// Default returns a configuration that starts from an empty account and
// journals to a local SQLite file.
func Default() *Config {
	return &Config{
		Account: AccountConfig{
			ID:       "SIM-001",
			Currency: "USD",
		},
		Broker: BrokerConfig{
			CommissionRate: decimal.RequireFromString("0.001"),
		},
		Journal: JournalConfig{
			Type:   "sqlite",
			DBPath: "./capital.sqlite",
		},
		Log: LogConfig{Level: "info"},
	}
}

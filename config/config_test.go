package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefault(t *testing.T) {
	cfg := Default()
	assert.NotNil(t, cfg)
	assert.Equal(t, "USD", cfg.Account.Currency)
	assert.Equal(t, "sqlite", cfg.Journal.Type)
	assert.True(t, decimal.RequireFromString("0.001").Equal(cfg.Broker.CommissionRate))
	assert.NoError(t, cfg.Validate())
}

func TestValidate(t *testing.T) {
	neg := decimal.NewFromInt(-1)

	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
		errMsg  string
	}{
		{
			name:   "valid config",
			mutate: func(*Config) {},
		},
		{
			name:    "missing id",
			mutate:  func(c *Config) { c.Account.ID = "" },
			wantErr: true,
			errMsg:  "account.id is required",
		},
		{
			name:    "missing currency",
			mutate:  func(c *Config) { c.Account.Currency = "" },
			wantErr: true,
			errMsg:  "account.currency is required",
		},
		{
			name:    "unknown currency",
			mutate:  func(c *Config) { c.Account.Currency = "XXQ" },
			wantErr: true,
			errMsg:  "unknown currency: XXQ",
		},
		{
			name:   "negative balances are passed through",
			mutate: func(c *Config) { c.Account.Cash = &neg },
		},
		{
			name:    "negative commission rate",
			mutate:  func(c *Config) { c.Broker.CommissionRate = neg },
			wantErr: true,
			errMsg:  "broker.commission_rate must not be negative",
		},
		{
			name:    "zero max fill",
			mutate:  func(c *Config) { z := decimal.Zero; c.Broker.MaxFillQuantity = &z },
			wantErr: true,
			errMsg:  "broker.max_fill_quantity must be positive",
		},
		{
			name:    "invalid journal type",
			mutate:  func(c *Config) { c.Journal.Type = "postgres" },
			wantErr: true,
			errMsg:  "journal.type must be 'csv', 'sqlite' or 'memory'",
		},
		{
			name:    "csv without file",
			mutate:  func(c *Config) { c.Journal = JournalConfig{Type: "csv"} },
			wantErr: true,
			errMsg:  "journal snapshots_file required for CSV type",
		},
		{
			name:    "sqlite without path",
			mutate:  func(c *Config) { c.Journal = JournalConfig{Type: "sqlite"} },
			wantErr: true,
			errMsg:  "journal db_path required for SQLite type",
		},
		{
			name:   "memory journal",
			mutate: func(c *Config) { c.Journal = JournalConfig{Type: "memory"} },
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.wantErr {
				require.Error(t, err)
				assert.Equal(t, tt.errMsg, err.Error())
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestLoadYAML(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "capital.yaml")

	require.NoError(t, os.WriteFile(path, []byte(`
account:
  id: ACC-1
  currency: EUR
  cash: 100000.25
  commission: 1.5
broker:
  commission_rate: 0.0005
  max_fill_quantity: 50
journal:
  type: csv
  snapshots_file: ./snapshots.csv
log:
  level: debug
`), 0o644))

	cfg, err := LoadFromFile(path)
	require.NoError(t, err)

	assert.Equal(t, "ACC-1", cfg.Account.ID)
	require.NotNil(t, cfg.Account.Cash)
	assert.Equal(t, "100000.25", cfg.Account.Cash.String())
	assert.Nil(t, cfg.Account.ReservedCash)
	assert.Equal(t, "0.0005", cfg.Broker.CommissionRate.String())
	require.NotNil(t, cfg.Broker.MaxFillQuantity)
	assert.Equal(t, "50", cfg.Broker.MaxFillQuantity.String())
	assert.Equal(t, "debug", cfg.Log.Level)

	o := cfg.Account.Overrides()
	assert.True(t, o.Cash.Valid)
	assert.False(t, o.ReservedCash.Valid)
	assert.True(t, o.Commission.Valid)
	assert.Equal(t, "1.5", o.Commission.Decimal.String())
	assert.Nil(t, o.History)
}

func TestLoadJSON(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "capital.json")

	require.NoError(t, os.WriteFile(path, []byte(`{
  "account": {"id": "ACC-2", "currency": "USD", "reserved_cash": "10"},
  "broker": {"commission_rate": "0"},
  "journal": {"type": "memory"}
}`), 0o644))

	cfg, err := LoadFromFile(path)
	require.NoError(t, err)
	require.NotNil(t, cfg.Account.ReservedCash)
	assert.Equal(t, "10", cfg.Account.ReservedCash.String())
}

func TestLoadInvalid(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "bad.yaml")
	require.NoError(t, os.WriteFile(path, []byte("account:\n  id: X\n"), 0o644))

	_, err := LoadFromFile(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid config")

	_, err = LoadFromFile(filepath.Join(dir, "missing.yaml"))
	assert.Error(t, err)
}

func TestSaveRoundTrip(t *testing.T) {
	dir := t.TempDir()
	cash := decimal.RequireFromString("123.456")

	for _, name := range []string{"cfg.yaml", "cfg.json"} {
		t.Run(name, func(t *testing.T) {
			cfg := Default()
			cfg.Account.Cash = &cash

			path := filepath.Join(dir, name)
			require.NoError(t, cfg.SaveToFile(path))

			loaded, err := LoadFromFile(path)
			require.NoError(t, err)
			require.NotNil(t, loaded.Account.Cash)
			assert.True(t, cash.Equal(*loaded.Account.Cash))
			assert.True(t, cfg.Broker.CommissionRate.Equal(loaded.Broker.CommissionRate))
			assert.Equal(t, cfg.Journal, loaded.Journal)
		})
	}
}

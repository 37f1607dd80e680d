package config

import "path/filepath"

// Config represents the complete marketd configuration
// This mirrors the structure of marketd.toml
type Config struct {
	// 1. Server section
	Server ServerConfig `toml:"server" mapstructure:"server"`

	// 2. Ledger store
	Database DatabaseConfig `toml:"database" mapstructure:"database"`

	// 3. Audit journal
	Journal JournalConfig `toml:"journal" mapstructure:"journal"`

	// 4. Marketplace
	Market MarketConfig `toml:"market" mapstructure:"market"`

	// 5. Diagnostics
	Log LogConfig `toml:"log" mapstructure:"log"`

	// Internal fields for configuration management
	configPath string `toml:"-" mapstructure:"-"`
}

// ServerConfig holds the RPC and websocket listen settings.
type ServerConfig struct {
	RPCHost string `toml:"rpc_host" mapstructure:"rpc_host"`
	RPCPort int    `toml:"rpc_port" mapstructure:"rpc_port"`

	WSEnabled bool   `toml:"ws_enabled" mapstructure:"ws_enabled"`
	WSHost    string `toml:"ws_host" mapstructure:"ws_host"`
	WSPort    int    `toml:"ws_port" mapstructure:"ws_port"`

	// AdminEnabled exposes the mint/approve/deposit admin methods
	AdminEnabled bool `toml:"admin_enabled" mapstructure:"admin_enabled"`
}

// DatabaseConfig holds the key-value ledger store settings.
type DatabaseConfig struct {
	// Backend selects the store: "pebble", "leveldb" or "memory"
	Backend string `toml:"backend" mapstructure:"backend"`

	Path        string `toml:"path" mapstructure:"path"`
	CacheSize   int    `toml:"cache_size" mapstructure:"cache_size"`
	Compression bool   `toml:"compression" mapstructure:"compression"`
}

// JournalConfig holds the relational audit journal settings.
type JournalConfig struct {
	Enabled bool   `toml:"enabled" mapstructure:"enabled"`
	Driver  string `toml:"driver" mapstructure:"driver"`
	DSN     string `toml:"dsn" mapstructure:"dsn"`
}

// MarketConfig holds the marketplace identities and fee.
type MarketConfig struct {
	// Operator is the hex account ID of the marketplace operator
	Operator string `toml:"operator" mapstructure:"operator"`

	// MarketID is the hex account ID the marketplace itself acts under
	MarketID string `toml:"market_id" mapstructure:"market_id"`

	// FeeBps is the marketplace fee in basis points used when the store
	// holds no fee entry yet
	FeeBps uint32 `toml:"fee_bps" mapstructure:"fee_bps"`
}

// LogConfig holds diagnostics settings.
type LogConfig struct {
	File      string `toml:"file" mapstructure:"file"`
	Debug     bool   `toml:"debug" mapstructure:"debug"`
	SentryDSN string `toml:"sentry_dsn" mapstructure:"sentry_dsn"`
}

// DefaultConfigPath returns the default configuration file path.
func DefaultConfigPath() string {
	return "marketd.toml"
}

// ConfigPathFromDir returns the configuration path for a directory.
func ConfigPathFromDir(configDir string) string {
	return filepath.Join(configDir, "marketd.toml")
}

// GetConfigPath returns the path the configuration was loaded from, empty
// when running on defaults only.
func (c *Config) GetConfigPath() string {
	return c.configPath
}

package config

import (
	"fmt"

	"github.com/LeJamon/marketd/internal/crypto"
)

// ValidateConfig checks the complete configuration for consistency.
func ValidateConfig(c *Config) error {
	if err := validateServer(&c.Server); err != nil {
		return err
	}
	if err := validateDatabase(&c.Database); err != nil {
		return err
	}
	if err := validateJournal(&c.Journal); err != nil {
		return err
	}
	return validateMarket(&c.Market)
}

func validateServer(s *ServerConfig) error {
	if s.RPCPort < 1 || s.RPCPort > 65535 {
		return fmt.Errorf("server.rpc_port out of range: %d", s.RPCPort)
	}
	if s.WSEnabled {
		if s.WSPort < 1 || s.WSPort > 65535 {
			return fmt.Errorf("server.ws_port out of range: %d", s.WSPort)
		}
		if s.WSPort == s.RPCPort && s.WSHost == s.RPCHost {
			return fmt.Errorf("server.ws_port collides with server.rpc_port")
		}
	}
	return nil
}

func validateDatabase(d *DatabaseConfig) error {
	switch d.Backend {
	case "pebble", "leveldb", "memory":
	default:
		return fmt.Errorf("database.backend must be pebble, leveldb or memory, got %q", d.Backend)
	}
	if d.Backend != "memory" && d.Path == "" {
		return fmt.Errorf("database.path required for backend %q", d.Backend)
	}
	if d.CacheSize < 0 {
		return fmt.Errorf("database.cache_size cannot be negative: %d", d.CacheSize)
	}
	return nil
}

func validateJournal(j *JournalConfig) error {
	if !j.Enabled {
		return nil
	}
	switch j.Driver {
	case "sqlite", "postgres":
	default:
		return fmt.Errorf("journal.driver must be sqlite or postgres, got %q", j.Driver)
	}
	if j.DSN == "" {
		return fmt.Errorf("journal.dsn required when journal is enabled")
	}
	return nil
}

func validateMarket(m *MarketConfig) error {
	if m.Operator == "" {
		return fmt.Errorf("market.operator is required")
	}
	if _, err := crypto.ParseAccountID(m.Operator); err != nil {
		return fmt.Errorf("market.operator invalid: %w", err)
	}
	if m.MarketID == "" {
		return fmt.Errorf("market.market_id is required")
	}
	if _, err := crypto.ParseAccountID(m.MarketID); err != nil {
		return fmt.Errorf("market.market_id invalid: %w", err)
	}
	if m.FeeBps > 10000 {
		return fmt.Errorf("market.fee_bps cannot exceed 10000: %d", m.FeeBps)
	}
	return nil
}

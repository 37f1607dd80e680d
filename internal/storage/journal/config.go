package journal

import (
	"errors"
	"time"
)

// Supported database/sql drivers.
const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

// Config holds journal database settings.
type Config struct {
	// Driver selects the SQL backend: "sqlite" or "postgres"
	Driver string

	// DSN is the connection string: a file path for sqlite, a libpq
	// connection string for postgres
	DSN string

	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
	QueryTimeout    time.Duration
}

// DefaultConfig returns a sqlite journal in the given file.
func DefaultConfig(dsn string) Config {
	return Config{
		Driver:          DriverSQLite,
		DSN:             dsn,
		MaxOpenConns:    8,
		MaxIdleConns:    2,
		ConnMaxLifetime: 30 * time.Minute,
		QueryTimeout:    5 * time.Second,
	}
}

// Validate checks the configuration.
func (c *Config) Validate() error {
	switch c.Driver {
	case DriverSQLite, DriverPostgres:
	default:
		return errors.New("journal: unsupported driver " + c.Driver)
	}
	if c.DSN == "" {
		return errors.New("journal: empty DSN")
	}
	return nil
}

package config

import "github.com/spf13/viper"

// setDefaults sets all default values
func setDefaults(v *viper.Viper) {
	// 1. Server defaults
	v.SetDefault("server.rpc_host", "127.0.0.1")
	v.SetDefault("server.rpc_port", 7310)
	v.SetDefault("server.ws_enabled", true)
	v.SetDefault("server.ws_host", "127.0.0.1")
	v.SetDefault("server.ws_port", 7311)
	v.SetDefault("server.admin_enabled", false)

	// 2. Ledger store defaults
	v.SetDefault("database.backend", "pebble")
	v.SetDefault("database.path", "data/ledger")
	v.SetDefault("database.cache_size", 4096)
	v.SetDefault("database.compression", false)

	// 3. Journal defaults
	v.SetDefault("journal.enabled", true)
	v.SetDefault("journal.driver", "sqlite")
	v.SetDefault("journal.dsn", "data/journal.db")

	// 4. Marketplace defaults
	// Operator and market_id have no defaults; they must be configured
	v.SetDefault("market.fee_bps", 200)

	// 5. Diagnostics defaults
	v.SetDefault("log.file", "")
	v.SetDefault("log.debug", false)
	v.SetDefault("log.sentry_dsn", "")
}

// Package config provides layered configuration loading via Viper:
// built-in defaults, overridden by a config file, overridden by
// RECURDNS_-prefixed environment variables, overridden last by the
// service's small positional CLI contract (see cmd/recurdns).
package config

import "time"

// ServerConfig controls the UDP listener and outbound resolver
// client.
type ServerConfig struct {
	ListenAddr         string        `mapstructure:"listen_addr"`
	RootServerIP       string        `mapstructure:"root_server_ip"`
	RootServerPort     int           `mapstructure:"root_server_port"`
	ResolverSourcePort int           `mapstructure:"resolver_source_port"`
	UpstreamTimeout    time.Duration `mapstructure:"upstream_timeout"`
}

// CacheConfig controls the response cache and its background tasks.
type CacheConfig struct {
	Enabled        bool          `mapstructure:"enabled"`
	MaxSize        int           `mapstructure:"max_size"`
	UpdateInterval time.Duration `mapstructure:"update_interval"`
	StoreInterval  time.Duration `mapstructure:"store_interval"`
	SnapshotPath   string        `mapstructure:"snapshot_path"`
}

// LoggingConfig controls the structured logger.
type LoggingConfig struct {
	Level            string            `mapstructure:"level"`
	Structured       bool              `mapstructure:"structured"`
	StructuredFormat string            `mapstructure:"structured_format"`
	IncludePID       bool              `mapstructure:"include_pid"`
	LogDir           string            `mapstructure:"log_dir"`
	ExtraFields      map[string]string `mapstructure:"extra_fields"`
}

// StatusConfig controls the optional observational HTTP surface.
type StatusConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Addr    string `mapstructure:"addr"`
}

// Config is the fully assembled configuration for one resolver
// process.
type Config struct {
	Server  ServerConfig  `mapstructure:"server"`
	Cache   CacheConfig   `mapstructure:"cache"`
	Logging LoggingConfig `mapstructure:"logging"`
	Status  StatusConfig  `mapstructure:"status"`
}

package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// EnvPrefix is the prefix bound to every RECURDNS_ environment
// variable (e.g. RECURDNS_CACHE_MAX_SIZE -> cache.max_size).
const EnvPrefix = "RECURDNS"

// Defaults match the CLI "0 args" defaults in the external interfaces:
// max_size=16, update_interval_ms=20, cache_store_interval=120s, cache
// enabled.
func setDefaults(v *viper.Viper) {
	v.SetDefault("server.listen_addr", "0.0.0.0:2053")
	v.SetDefault("server.root_server_ip", "198.41.0.4")
	v.SetDefault("server.root_server_port", 53)
	v.SetDefault("server.resolver_source_port", 43210)
	v.SetDefault("server.upstream_timeout", 5*time.Second)

	v.SetDefault("cache.enabled", true)
	v.SetDefault("cache.max_size", 16)
	v.SetDefault("cache.update_interval", 20*time.Millisecond)
	v.SetDefault("cache.store_interval", 120*time.Second)
	v.SetDefault("cache.snapshot_path", "dns_cache.toml")

	v.SetDefault("logging.level", "INFO")
	v.SetDefault("logging.structured", false)
	v.SetDefault("logging.structured_format", "json")
	v.SetDefault("logging.log_dir", "logs")

	v.SetDefault("status.enabled", true)
	v.SetDefault("status.addr", "127.0.0.1:8513")
}

// Load builds a Config from defaults, an optional file at configPath
// (ignored if it does not exist), and RECURDNS_-prefixed environment
// variables, in that order of increasing precedence.
func Load(configPath string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if configPath != "" {
		v.SetConfigFile(configPath)
		if err := v.ReadInConfig(); err != nil {
			if _, ok := err.(viper.ConfigFileNotFoundError); !ok && !errors.Is(err, fs.ErrNotExist) {
				return nil, fmt.Errorf("read config %s: %w", configPath, err)
			}
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	return &cfg, nil
}

/*
Package config loads server configuration.

PURPOSE:
  Central place for runtime configuration: HTTP listen address, database
  path, and the allocation policy knobs (max utilization, over-allocation
  behavior). Values come from, in order of precedence:

    1. Environment variables (RESOURCEPULSE_* prefix)
    2. A YAML config file (--config flag or ./resourcepulse.yaml)
    3. Built-in defaults

SEE ALSO:
  - cmd/server/main.go: Wires config into the server
  - domain/types.go: SystemConfig consumed by the calculators
*/
package config

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"

	"github.com/freeup86/resource-pulse-sub002/domain"
)

// Config holds the full server configuration.
type Config struct {
	Server  ServerConfig  `mapstructure:"server"`
	Storage StorageConfig `mapstructure:"storage"`
	System  SystemConfig  `mapstructure:"system"`
	Demo    bool          `mapstructure:"demo"`
}

// ServerConfig controls the HTTP listener.
type ServerConfig struct {
	Addr string `mapstructure:"addr"`
}

// StorageConfig selects and configures the backing store.
type StorageConfig struct {
	// Driver is "sqlite" or "memory".
	Driver string `mapstructure:"driver"`
	// Path is the SQLite database file; ":memory:" for ephemeral.
	Path string `mapstructure:"path"`
}

// SystemConfig mirrors the allocation policy knobs.
type SystemConfig struct {
	MaxUtilizationPercentage    int  `mapstructure:"max_utilization_percentage"`
	AllowOverallocation         bool `mapstructure:"allow_overallocation"`
	DefaultAllocationPercentage int  `mapstructure:"default_allocation_percentage"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.addr", ":8080")
	v.SetDefault("storage.driver", "sqlite")
	v.SetDefault("storage.path", "./data/resourcepulse.db")
	v.SetDefault("system.max_utilization_percentage", 100)
	v.SetDefault("system.allow_overallocation", false)
	v.SetDefault("system.default_allocation_percentage", 100)
	v.SetDefault("demo", false)
}

// Load reads configuration from the given file (optional), the
// environment, and defaults.
func Load(cfgFile string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix("RESOURCEPULSE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	} else {
		v.SetConfigName("resourcepulse")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		if err := v.ReadInConfig(); err != nil {
			// Missing config file is fine; defaults and env apply.
			if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
				return nil, fmt.Errorf("failed to read config file: %w", err)
			}
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks configuration invariants.
func (c *Config) Validate() error {
	if c.Server.Addr == "" {
		return fmt.Errorf("server.addr must not be empty")
	}
	switch c.Storage.Driver {
	case "sqlite", "memory":
	default:
		return fmt.Errorf("storage.driver must be sqlite or memory, got %q", c.Storage.Driver)
	}
	if c.Storage.Driver == "sqlite" && c.Storage.Path == "" {
		return fmt.Errorf("storage.path must not be empty for sqlite")
	}
	if c.System.MaxUtilizationPercentage < 0 {
		return fmt.Errorf("system.max_utilization_percentage must not be negative")
	}
	if c.System.DefaultAllocationPercentage < 0 || c.System.DefaultAllocationPercentage > c.maxOrDefault() {
		return fmt.Errorf("system.default_allocation_percentage out of range")
	}
	return nil
}

func (c *Config) maxOrDefault() int {
	if c.System.MaxUtilizationPercentage > 0 {
		return c.System.MaxUtilizationPercentage
	}
	return 100
}

// SystemConfig converts the loaded policy knobs into the domain type.
func (c *Config) SystemConfig() domain.SystemConfig {
	return domain.SystemConfig{
		MaxUtilizationPercentage:    c.System.MaxUtilizationPercentage,
		AllowOverallocation:         c.System.AllowOverallocation,
		DefaultAllocationPercentage: c.System.DefaultAllocationPercentage,
	}
}

// Package config loads polycube settings from an optional YAML file,
// POLYCUBE_* environment variables and command-line flags.
package config

import (
	"fmt"
	"strings"
)

// Config is the root configuration shared by every command.
type Config struct {
	Cache     CacheConfig     `mapstructure:"cache"`
	Generator GeneratorConfig `mapstructure:"generator"`
	Log       LogConfig       `mapstructure:"log"`
	Server    ServerConfig    `mapstructure:"server"`
}

// CacheConfig selects and configures the level cache.
type CacheConfig struct {
	// Read enables loading previously computed levels. Levels are always
	// written after being computed, whatever the value of Read.
	Read   bool        `mapstructure:"read"`
	Driver string      `mapstructure:"driver"`
	Dir    string      `mapstructure:"dir"`
	SQLite string      `mapstructure:"sqlite"`
	MinIO  MinIOConfig `mapstructure:"minio"`
}

// MinIOConfig configures the object-storage cache driver.
type MinIOConfig struct {
	Endpoint  string `mapstructure:"endpoint"`
	AccessKey string `mapstructure:"access_key"`
	SecretKey string `mapstructure:"secret_key"`
	Bucket    string `mapstructure:"bucket"`
	Prefix    string `mapstructure:"prefix"`
	UseSSL    bool   `mapstructure:"use_ssl"`
}

// GeneratorConfig controls level generation.
type GeneratorConfig struct {
	Threads  int    `mapstructure:"threads"`
	Strategy string `mapstructure:"strategy"`
	// Reference is an optional file of "order count" lines. Its entries
	// override the built-in table.
	Reference string `mapstructure:"reference"`
}

// LogConfig configures the zap logger.
type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// ServerConfig configures the HTTP endpoint.
type ServerConfig struct {
	Addr string `mapstructure:"addr"`
}

// Validate reports the first invalid setting.
func (c *Config) Validate() error {
	switch c.Cache.Driver {
	case DriverFile:
		if c.Cache.Dir == "" {
			return fmt.Errorf("cache.dir is required for the %q driver", c.Cache.Driver)
		}
	case DriverSQLite:
		if c.Cache.SQLite == "" {
			return fmt.Errorf("cache.sqlite is required for the %q driver", c.Cache.Driver)
		}
	case DriverMinIO:
		if c.Cache.MinIO.Endpoint == "" || c.Cache.MinIO.Bucket == "" {
			return fmt.Errorf("cache.minio.endpoint and cache.minio.bucket are required for the %q driver", c.Cache.Driver)
		}
	case DriverMemory:
	default:
		return fmt.Errorf("unknown cache driver %q", c.Cache.Driver)
	}

	if c.Generator.Threads < 1 {
		return fmt.Errorf("generator.threads must be at least 1, got %d", c.Generator.Threads)
	}
	switch c.Generator.Strategy {
	case StrategyShared, StrategyMerge:
	default:
		return fmt.Errorf("unknown generator strategy %q", c.Generator.Strategy)
	}

	switch strings.ToLower(c.Log.Format) {
	case "json", "console":
	default:
		return fmt.Errorf("unknown log format %q", c.Log.Format)
	}
	return nil
}

package config

import (
	"fmt"
	"strings"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

const envPrefix = "POLYCUBE"

// legacyCacheEnv is the bare toggle older tooling used to disable cache reads.
const legacyCacheEnv = "USE_CACHE"

// flagKeys maps command-line flag names to configuration keys.
var flagKeys = map[string]string{
	"cache":      "cache.read",
	"driver":     "cache.driver",
	"cache-dir":  "cache.dir",
	"sqlite":     "cache.sqlite",
	"threads":    "generator.threads",
	"strategy":   "generator.strategy",
	"reference":  "generator.reference",
	"log-level":  "log.level",
	"log-format": "log.format",
	"addr":       "server.addr",
}

func newViper() *viper.Viper {
	v := viper.New()
	v.SetConfigType("yaml")
	v.SetEnvPrefix(envPrefix)
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	setDefaults(v)
	return v
}

// Load builds a Config from, in increasing priority: defaults, the YAML file
// at path (skipped when path is empty), POLYCUBE_* environment variables and
// any flag in flags that was set explicitly. flags may be nil.
func Load(path string, flags *pflag.FlagSet) (*Config, error) {
	v := newViper()
	if err := v.BindEnv("cache.read", envPrefix+"_CACHE_READ", legacyCacheEnv); err != nil {
		return nil, fmt.Errorf("config: failed to bind cache toggle: %w", err)
	}

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("config: failed to read config file %q: %w", path, err)
		}
	}

	if flags != nil {
		for name, key := range flagKeys {
			if f := flags.Lookup(name); f != nil {
				if err := v.BindPFlag(key, f); err != nil {
					return nil, fmt.Errorf("config: failed to bind flag %q: %w", name, err)
				}
			}
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("config: failed to unmarshal configuration: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config: validation failed: %w", err)
	}
	return cfg, nil
}

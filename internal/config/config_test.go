package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load("", nil)
	require.NoError(t, err)

	assert.True(t, cfg.Cache.Read)
	assert.Equal(t, DriverFile, cfg.Cache.Driver)
	assert.Equal(t, DefaultCacheDir, cfg.Cache.Dir)
	assert.Equal(t, DefaultThreads, cfg.Generator.Threads)
	assert.Equal(t, StrategyMerge, cfg.Generator.Strategy)
	assert.Equal(t, DefaultLogLevel, cfg.Log.Level)
	assert.Equal(t, DefaultServerAddr, cfg.Server.Addr)
}

func TestLoadEnvOverrides(t *testing.T) {
	t.Setenv("POLYCUBE_CACHE_DRIVER", "sqlite")
	t.Setenv("POLYCUBE_CACHE_SQLITE", "/tmp/levels.db")
	t.Setenv("POLYCUBE_GENERATOR_THREADS", "8")
	t.Setenv("POLYCUBE_GENERATOR_STRATEGY", "merge")
	t.Setenv("POLYCUBE_LOG_FORMAT", "json")

	cfg, err := Load("", nil)
	require.NoError(t, err)

	assert.Equal(t, DriverSQLite, cfg.Cache.Driver)
	assert.Equal(t, "/tmp/levels.db", cfg.Cache.SQLite)
	assert.Equal(t, 8, cfg.Generator.Threads)
	assert.Equal(t, StrategyMerge, cfg.Generator.Strategy)
	assert.Equal(t, "json", cfg.Log.Format)
}

func TestLoadCacheToggle(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
		want bool
	}{
		{name: "unset", env: nil, want: true},
		{name: "prefixed off", env: map[string]string{"POLYCUBE_CACHE_READ": "false"}, want: false},
		{name: "legacy off", env: map[string]string{"USE_CACHE": "0"}, want: false},
		{name: "legacy on", env: map[string]string{"USE_CACHE": "1"}, want: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			cfg, err := Load("", nil)
			require.NoError(t, err)
			assert.Equal(t, tt.want, cfg.Cache.Read)
		})
	}
}

func TestLoadFileAndFlags(t *testing.T) {
	path := filepath.Join(t.TempDir(), "polycubes.yaml")
	content := `
cache:
  driver: file
  dir: /var/cache/polycubes
generator:
  threads: 4
log:
  level: debug
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))

	flags := pflag.NewFlagSet("test", pflag.ContinueOnError)
	flags.Int("threads", 1, "")
	flags.Bool("cache", true, "")
	require.NoError(t, flags.Parse([]string{"--threads=16", "--cache=false"}))

	cfg, err := Load(path, flags)
	require.NoError(t, err)

	assert.Equal(t, "/var/cache/polycubes", cfg.Cache.Dir)
	assert.Equal(t, 16, cfg.Generator.Threads, "explicit flag wins over file")
	assert.False(t, cfg.Cache.Read)
	assert.Equal(t, "debug", cfg.Log.Level)
}

func TestLoadUnsetFlagDoesNotOverride(t *testing.T) {
	t.Setenv("POLYCUBE_GENERATOR_THREADS", "3")

	flags := pflag.NewFlagSet("test", pflag.ContinueOnError)
	flags.Int("threads", 1, "")
	require.NoError(t, flags.Parse(nil))

	cfg, err := Load("", flags)
	require.NoError(t, err)
	assert.Equal(t, 3, cfg.Generator.Threads)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"), nil)
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	t.Parallel()

	valid := func() Config {
		return Config{
			Cache:     CacheConfig{Driver: DriverFile, Dir: "."},
			Generator: GeneratorConfig{Threads: 1, Strategy: StrategyShared},
			Log:       LogConfig{Level: "info", Format: "console"},
		}
	}

	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{name: "valid", mutate: func(*Config) {}},
		{name: "memory driver", mutate: func(c *Config) { c.Cache.Driver = DriverMemory }},
		{name: "unknown driver", mutate: func(c *Config) { c.Cache.Driver = "tape" }, wantErr: true},
		{name: "file without dir", mutate: func(c *Config) { c.Cache.Dir = "" }, wantErr: true},
		{name: "sqlite without path", mutate: func(c *Config) { c.Cache.Driver = DriverSQLite }, wantErr: true},
		{name: "minio without endpoint", mutate: func(c *Config) {
			c.Cache.Driver = DriverMinIO
			c.Cache.MinIO.Bucket = "b"
		}, wantErr: true},
		{name: "zero threads", mutate: func(c *Config) { c.Generator.Threads = 0 }, wantErr: true},
		{name: "unknown strategy", mutate: func(c *Config) { c.Generator.Strategy = "steal" }, wantErr: true},
		{name: "unknown log format", mutate: func(c *Config) { c.Log.Format = "xml" }, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid()
			tt.mutate(&cfg)
			err := cfg.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

package config

import "github.com/spf13/viper"

// Cache drivers.
const (
	DriverFile   = "file"
	DriverSQLite = "sqlite"
	DriverMinIO  = "minio"
	DriverMemory = "memory"
)

// Generator strategies: workers insert into one shared index, or each worker
// fills a private index that is merged after all workers finish.
const (
	StrategyShared = "shared"
	StrategyMerge  = "merge"
)

const (
	DefaultCacheRead   = true
	DefaultCacheDriver = DriverFile
	DefaultCacheDir    = "."
	DefaultSQLitePath  = "./polycubes.db"
	DefaultMinIOBucket = "polycubes"

	DefaultThreads  = 1
	DefaultStrategy = StrategyMerge

	DefaultLogLevel  = "info"
	DefaultLogFormat = "console"

	DefaultServerAddr = ":8080"
)

// setDefaults registers every key with viper. Registering the keys is also
// what lets AutomaticEnv resolve them during Unmarshal.
func setDefaults(v *viper.Viper) {
	v.SetDefault("cache.read", DefaultCacheRead)
	v.SetDefault("cache.driver", DefaultCacheDriver)
	v.SetDefault("cache.dir", DefaultCacheDir)
	v.SetDefault("cache.sqlite", DefaultSQLitePath)
	v.SetDefault("cache.minio.endpoint", "")
	v.SetDefault("cache.minio.access_key", "")
	v.SetDefault("cache.minio.secret_key", "")
	v.SetDefault("cache.minio.bucket", DefaultMinIOBucket)
	v.SetDefault("cache.minio.prefix", "")
	v.SetDefault("cache.minio.use_ssl", false)

	v.SetDefault("generator.threads", DefaultThreads)
	v.SetDefault("generator.strategy", DefaultStrategy)
	v.SetDefault("generator.reference", "")

	v.SetDefault("log.level", DefaultLogLevel)
	v.SetDefault("log.format", DefaultLogFormat)

	v.SetDefault("server.addr", DefaultServerAddr)
}

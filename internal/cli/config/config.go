package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/viper"

	"github.com/conduit-lang/extmodel/internal/logging"
	"github.com/conduit-lang/extmodel/store"
)

// EnvPrefix prefixes the environment variables overriding the config file,
// e.g. EXTMODEL_STORE_BACKEND.
const EnvPrefix = "EXTMODEL"

// Config represents the extmodel configuration
type Config struct {
	Output   OutputConfig   `mapstructure:"output"`
	Log      LogConfig      `mapstructure:"log"`
	Store    StoreConfig    `mapstructure:"store"`
	Registry RegistryConfig `mapstructure:"registry"`
}

// OutputConfig controls how documents are written
type OutputConfig struct {
	Indent     bool `mapstructure:"indent"`
	LegacyKeys bool `mapstructure:"legacy_keys"`
}

// LogConfig represents logging configuration
type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// StoreConfig selects the document store backend
type StoreConfig struct {
	Backend  string      `mapstructure:"backend"`
	Dir      string      `mapstructure:"dir"`
	Compress bool        `mapstructure:"compress"`
	Redis    RedisConfig `mapstructure:"redis"`
}

// RedisConfig represents redis store configuration
type RedisConfig struct {
	Addr     string `mapstructure:"addr"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
	Prefix   string `mapstructure:"prefix"`
}

// RegistryConfig represents registry configuration
type RegistryConfig struct {
	CacheSize int `mapstructure:"cache_size"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("output.indent", true)
	v.SetDefault("output.legacy_keys", true)
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", logging.FormatConsole)
	v.SetDefault("store.backend", store.BackendFile)
	v.SetDefault("store.dir", ".extmodel")
	v.SetDefault("store.compress", true)
	v.SetDefault("store.redis.addr", "localhost:6379")
	v.SetDefault("store.redis.password", "")
	v.SetDefault("store.redis.db", 0)
	v.SetDefault("store.redis.prefix", store.DefaultRedisPrefix)
	v.SetDefault("registry.cache_size", 64)
}

// Load loads the configuration from file, or from extmodel.yaml in the
// current directory when file is empty. A missing extmodel.yaml is not an
// error; a missing explicit file is.
func Load(file string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	if file != "" {
		v.SetConfigFile(file)
	} else {
		v.SetConfigName("extmodel")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if file != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := validateConfig(&config); err != nil {
		return nil, err
	}
	return &config, nil
}

// StoreOptions converts the store section for store.Open.
func (c *Config) StoreOptions() store.Options {
	return store.Options{
		Backend:  c.Store.Backend,
		Dir:      c.Store.Dir,
		Compress: c.Store.Compress,
		Redis: store.RedisConfig{
			Addr:     c.Store.Redis.Addr,
			Password: c.Store.Redis.Password,
			DB:       c.Store.Redis.DB,
			Prefix:   c.Store.Redis.Prefix,
		},
	}
}

// LoggingConfig converts the log section for logging.New.
func (c *Config) LoggingConfig() logging.Config {
	return logging.Config{Level: c.Log.Level, Format: c.Log.Format}
}

// validateConfig validates the configuration
func validateConfig(cfg *Config) error {
	switch cfg.Store.Backend {
	case store.BackendMemory, store.BackendRedis:
	case store.BackendFile:
		if cfg.Store.Dir == "" {
			return fmt.Errorf("store.dir is required for the file backend")
		}
	default:
		return fmt.Errorf("store.backend must be one of %s, %s, %s, got: %s",
			store.BackendMemory, store.BackendFile, store.BackendRedis, cfg.Store.Backend)
	}

	if cfg.Registry.CacheSize <= 0 {
		return fmt.Errorf("registry.cache_size must be positive, got: %d", cfg.Registry.CacheSize)
	}

	if _, err := logging.ParseLevel(cfg.Log.Level); err != nil {
		return fmt.Errorf("log.level: %w", err)
	}
	switch strings.ToLower(cfg.Log.Format) {
	case logging.FormatConsole, logging.FormatJSON:
	default:
		return fmt.Errorf("log.format must be %s or %s, got: %s", logging.FormatConsole, logging.FormatJSON, cfg.Log.Format)
	}
	return nil
}

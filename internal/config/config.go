package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	classinfo "github.com/appsworld/go-classinfo"
)

// Config represents the objcinfo configuration
type Config struct {
	Log    LogConfig    `mapstructure:"log"`
	Cache  CacheConfig  `mapstructure:"cache"`
	Output OutputConfig `mapstructure:"output"`
}

// LogConfig represents logging configuration
type LogConfig struct {
	// Level is a zap level name, or "off" to disable logging.
	Level       string `mapstructure:"level"`
	Development bool   `mapstructure:"development"`
}

// CacheConfig represents class info cache configuration
type CacheConfig struct {
	MaxDepth int `mapstructure:"max_depth"`
}

// OutputConfig represents dump output configuration
type OutputConfig struct {
	Color   bool `mapstructure:"color"`
	Verbose bool `mapstructure:"verbose"`
}

// LevelOff disables logging entirely.
const LevelOff = "off"

// New returns a viper instance with defaults, config search paths and
// OBJCINFO_* environment overrides set up. path, when not empty, names the
// config file explicitly.
func New(path string) *viper.Viper {
	v := viper.New()

	// Set defaults
	v.SetDefault("log.level", LevelOff)
	v.SetDefault("log.development", false)
	v.SetDefault("cache.max_depth", classinfo.DefaultMaxDepth)
	v.SetDefault("output.color", true)
	v.SetDefault("output.verbose", false)

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("objcinfo")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("$HOME/.config/objcinfo")
	}

	// Enable environment variable support
	v.SetEnvPrefix("objcinfo")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	return v
}

// Load reads the configuration held by v. A missing config file is not an
// error: defaults apply.
func Load(v *viper.Viper) (*Config, error) {
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := validateConfig(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Logger builds the zap logger described by the log section.
func (c *Config) Logger() (*zap.Logger, error) {
	if c.Log.Level == "" || c.Log.Level == LevelOff {
		return zap.NewNop(), nil
	}

	var lvl zapcore.Level
	if err := lvl.UnmarshalText([]byte(c.Log.Level)); err != nil {
		return nil, fmt.Errorf("invalid log.level %q: %w", c.Log.Level, err)
	}

	zc := zap.NewProductionConfig()
	if c.Log.Development {
		zc = zap.NewDevelopmentConfig()
	}
	zc.Level = zap.NewAtomicLevelAt(lvl)
	zc.OutputPaths = []string{"stderr"}
	zc.ErrorOutputPaths = []string{"stderr"}

	logger, err := zc.Build()
	if err != nil {
		return nil, fmt.Errorf("failed to build logger: %w", err)
	}
	return logger, nil
}

// CacheOptions translates the cache section into classinfo options.
func (c *Config) CacheOptions(logger *zap.Logger) []classinfo.Option {
	return []classinfo.Option{
		classinfo.WithLogger(logger),
		classinfo.WithMaxDepth(c.Cache.MaxDepth),
	}
}

// validateConfig validates the configuration
func validateConfig(cfg *Config) error {
	if cfg.Cache.MaxDepth < 0 {
		return fmt.Errorf("cache.max_depth must not be negative, got: %d", cfg.Cache.MaxDepth)
	}
	if cfg.Log.Level != "" && cfg.Log.Level != LevelOff {
		var lvl zapcore.Level
		if err := lvl.UnmarshalText([]byte(cfg.Log.Level)); err != nil {
			return fmt.Errorf("log.level must be a zap level or %q, got: %s", LevelOff, cfg.Log.Level)
		}
	}
	return nil
}

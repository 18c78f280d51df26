// Package config loads the navdemo configuration.
//
// Precedence (highest to lowest):
//  1. Environment variables (NAVDEMO_*, e.g. NAVDEMO_LOGGING_LEVEL=DEBUG)
//  2. Configuration file (yaml or toml)
//  3. Defaults
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"time"

	"github.com/ib-77/navload/pkg/navload/loader"
	"github.com/spf13/viper"
)

const EnvPrefix = "NAVDEMO"

type Config struct {
	Logging LoggingConfig `mapstructure:"logging"`
	Metrics MetricsConfig `mapstructure:"metrics"`
	Demo    DemoConfig    `mapstructure:"demo"`
}

type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
	Output string `mapstructure:"output"`
}

type MetricsConfig struct {
	Enabled bool `mapstructure:"enabled"`
	// Listen is the address serving /metrics; empty keeps metrics in-process.
	Listen string `mapstructure:"listen"`
}

type DemoConfig struct {
	// Latency is added to every catalog fetch.
	Latency time.Duration `mapstructure:"latency"`
	// Snapshot is the file render writes and hydrate reads.
	Snapshot string `mapstructure:"snapshot"`
	// Commit is the commit mode of the catalog's nested loaders.
	Commit string `mapstructure:"commit"`
}

// CommitMode parses Demo.Commit.
func (c *Config) CommitMode() (loader.CommitMode, error) {
	return loader.ParseCommitMode(c.Demo.Commit)
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("logging.level", "INFO")
	v.SetDefault("logging.format", "text")
	v.SetDefault("logging.output", "stderr")
	v.SetDefault("metrics.enabled", false)
	v.SetDefault("metrics.listen", "")
	v.SetDefault("demo.latency", 50*time.Millisecond)
	v.SetDefault("demo.snapshot", "navdemo-snapshot.toml")
	v.SetDefault("demo.commit", loader.CommitAfterLoad.String())
}

// Load reads configPath (optional) and the environment on top of defaults.
func Load(configPath string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if configPath != "" {
		v.SetConfigFile(configPath)
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) && !errors.Is(err, fs.ErrNotExist) {
				return nil, fmt.Errorf("failed to read config file: %w", err)
			}
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := Validate(&cfg); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}
	return &cfg, nil
}

// Validate rejects values the demo cannot run with.
func Validate(cfg *Config) error {
	switch strings.ToUpper(cfg.Logging.Level) {
	case "DEBUG", "INFO", "WARN", "WARNING", "ERROR":
	default:
		return fmt.Errorf("logging.level: unknown level %q", cfg.Logging.Level)
	}
	switch strings.ToLower(cfg.Logging.Format) {
	case "text", "json":
	default:
		return fmt.Errorf("logging.format: unknown format %q", cfg.Logging.Format)
	}
	if cfg.Demo.Latency < 0 {
		return fmt.Errorf("demo.latency: must not be negative, got %s", cfg.Demo.Latency)
	}
	if _, err := cfg.CommitMode(); err != nil {
		return fmt.Errorf("demo.commit: %w", err)
	}
	if cfg.Metrics.Listen != "" && !cfg.Metrics.Enabled {
		return errors.New("metrics.listen requires metrics.enabled")
	}
	return nil
}

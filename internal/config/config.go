package config

import (
	"fmt"
	"time"

	"github.com/spf13/viper"
)

// Config holds all application configuration.
type Config struct {
	// Crawler configuration
	Crawler CrawlerConfig `mapstructure:"crawler"`

	// Storage configuration
	Storage StorageConfig `mapstructure:"storage"`

	// Logging configuration
	Logging LoggingConfig `mapstructure:"logging"`
}

// CrawlerConfig holds crawler-specific configuration.
type CrawlerConfig struct {
	MaxDepth           int           `mapstructure:"max_depth"`
	MaxPages           int           `mapstructure:"max_pages"`
	Workers            int           `mapstructure:"workers"`
	IdleTimeout        time.Duration `mapstructure:"idle_timeout"`
	Timeout            time.Duration `mapstructure:"timeout"`
	RequestsPerSecond  int           `mapstructure:"requests_per_second"`
	UserAgent          string        `mapstructure:"user_agent"`
	ExcludedExtensions []string      `mapstructure:"excluded_extensions"`
}

// StorageConfig holds result-store configuration.
type StorageConfig struct {
	Path string `mapstructure:"path"`
}

// LoggingConfig holds logging configuration.
type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"` // "json" or "text"
}

// Load reads configuration from an optional file plus the environment.
// A missing config file is not an error; defaults apply.
func Load(configPath string) (*Config, error) {
	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")

	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.AddConfigPath(".")
		v.AddConfigPath("$HOME/.sitewalker")
	}

	setDefaults(v)

	v.SetEnvPrefix("SITEWALKER")
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("unable to decode config: %w", err)
	}

	return &config, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("crawler.max_depth", 3)
	v.SetDefault("crawler.max_pages", 100)
	v.SetDefault("crawler.workers", 5)
	v.SetDefault("crawler.idle_timeout", "5s")
	v.SetDefault("crawler.timeout", "15s")
	v.SetDefault("crawler.requests_per_second", 10)
	v.SetDefault("crawler.user_agent", "SiteWalker/1.0")
	v.SetDefault("crawler.excluded_extensions", []string{"pdf", "jpg", "png", "gif"})

	v.SetDefault("storage.path", "./sitewalker.db")

	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "text")
}

// Validate checks the configuration for values the crawler cannot run with.
func (c *Config) Validate() error {
	if c.Crawler.MaxDepth < 0 {
		return fmt.Errorf("crawler.max_depth must not be negative")
	}
	if c.Crawler.MaxPages <= 0 {
		return fmt.Errorf("crawler.max_pages must be positive")
	}
	if c.Crawler.Workers <= 0 {
		return fmt.Errorf("crawler.workers must be positive")
	}
	if c.Crawler.IdleTimeout <= 0 {
		return fmt.Errorf("crawler.idle_timeout must be positive")
	}
	if c.Storage.Path == "" {
		return fmt.Errorf("storage.path must be set")
	}
	return nil
}

package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

// Config holds all configuration for the application
type Config struct {
	Log      LogConfig      `mapstructure:"log"`
	Crawler  CrawlerConfig  `mapstructure:"crawler"`
	Output   OutputConfig   `mapstructure:"output"`
	Database DatabaseConfig `mapstructure:"database"`
	Redis    RedisConfig    `mapstructure:"redis"`
}

// LogConfig holds logging configuration
type LogConfig struct {
	Level string `mapstructure:"level"`
}

// CrawlerConfig holds catalog site configuration
type CrawlerConfig struct {
	BaseURL              string   `mapstructure:"base_url"`
	LandingPath          string   `mapstructure:"landing_path"`
	Timeout              int      `mapstructure:"timeout"`
	MaxRetries           int      `mapstructure:"max_retries"`
	MaxConcurrency       int      `mapstructure:"max_concurrency"`
	MaxRequestsPerSecond int      `mapstructure:"max_requests_per_second"`
	ItemsPerPage         int      `mapstructure:"items_per_page"`
	CategoryRetries      int      `mapstructure:"category_retries"`
	UserAgent            string   `mapstructure:"user_agent"`
	Proxies              []string `mapstructure:"proxies"`
}

// LandingURL is the page the category taxonomy is discovered from
func (c CrawlerConfig) LandingURL() string {
	return strings.TrimRight(c.BaseURL, "/") + "/" + strings.TrimLeft(c.LandingPath, "/")
}

// OutputConfig selects and configures the record sink
type OutputConfig struct {
	Sink            string `mapstructure:"sink"` // csv, postgres, sqlite, redis
	Dir             string `mapstructure:"dir"`
	LocalizeHeaders bool   `mapstructure:"localize_headers"`
	SQLitePath      string `mapstructure:"sqlite_path"`
}

// DatabaseConfig holds database configuration
type DatabaseConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	Name     string `mapstructure:"name"`
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`
}

// DSN renders the libpq connection string for pgx
func (d DatabaseConfig) DSN() string {
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=disable",
		d.Host, d.Port, d.User, d.Password, d.Name)
}

// RedisConfig holds Redis connection details
type RedisConfig struct {
	Host      string `mapstructure:"host"`
	Port      int    `mapstructure:"port"`
	Password  string `mapstructure:"password"`
	Database  int    `mapstructure:"database"`
	Stream    string `mapstructure:"stream"`
	MaxLength int64  `mapstructure:"max_length"`
}

// MaxConcurrency is the ceiling on listing pages fetched at once
const MaxConcurrency = 5

const (
	SinkCSV      = "csv"
	SinkPostgres = "postgres"
	SinkSQLite   = "sqlite"
	SinkRedis    = "redis"
)

// Load loads configuration from a YAML file with environment variable overrides.
// An empty path looks for config.yaml in the current directory; a missing
// default file is not an error since every key has a default
func Load(path string) (*Config, error) {
	if path != "" {
		viper.SetConfigFile(path)
	} else {
		viper.SetConfigName("config")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(".")
	}

	setDefaults()

	viper.AutomaticEnv()
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	if err := viper.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	var config Config
	if err := viper.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("unable to decode config: %w", err)
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}

	return &config, nil
}

// Validate rejects values the crawler cannot run with
func (c *Config) Validate() error {
	if c.Crawler.BaseURL == "" {
		return fmt.Errorf("crawler.base_url must be set")
	}
	if c.Crawler.MaxConcurrency < 1 || c.Crawler.MaxConcurrency > MaxConcurrency {
		return fmt.Errorf("crawler.max_concurrency must be between 1 and %d, got %d", MaxConcurrency, c.Crawler.MaxConcurrency)
	}
	if c.Crawler.ItemsPerPage < 1 {
		return fmt.Errorf("crawler.items_per_page must be at least 1, got %d", c.Crawler.ItemsPerPage)
	}
	if c.Crawler.MaxRetries < 0 || c.Crawler.CategoryRetries < 0 {
		return fmt.Errorf("retry counts must not be negative")
	}

	switch c.Output.Sink {
	case SinkCSV, SinkPostgres, SinkSQLite, SinkRedis:
	default:
		return fmt.Errorf("unknown output.sink %q", c.Output.Sink)
	}

	return nil
}

func setDefaults() {
	viper.SetDefault("log.level", "info")

	viper.SetDefault("crawler.base_url", "https://www.cosme.net")
	viper.SetDefault("crawler.landing_path", "/category/")
	viper.SetDefault("crawler.timeout", 30)
	viper.SetDefault("crawler.max_retries", 0)
	viper.SetDefault("crawler.max_concurrency", MaxConcurrency)
	viper.SetDefault("crawler.max_requests_per_second", 0)
	viper.SetDefault("crawler.items_per_page", 10)
	viper.SetDefault("crawler.category_retries", 0)
	viper.SetDefault("crawler.user_agent", "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36")
	viper.SetDefault("crawler.proxies", []string{})

	viper.SetDefault("output.sink", SinkCSV)
	viper.SetDefault("output.dir", ".")
	viper.SetDefault("output.localize_headers", true)
	viper.SetDefault("output.sqlite_path", "./cosme.db")

	viper.SetDefault("database.host", "localhost")
	viper.SetDefault("database.port", 5432)
	viper.SetDefault("database.name", "cosme")
	viper.SetDefault("database.user", "cosme_user")
	viper.SetDefault("database.password", "cosme_pass")

	viper.SetDefault("redis.host", "localhost")
	viper.SetDefault("redis.port", 6379)
	viper.SetDefault("redis.password", "")
	viper.SetDefault("redis.database", 0)
	viper.SetDefault("redis.stream", "cosme:stream:records")
	viper.SetDefault("redis.max_length", 100000)
}

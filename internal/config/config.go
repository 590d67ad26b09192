// Package config loads artsel configuration from defaults, an optional YAML
// file and ARTSEL_* environment variables.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/Sternrassler/artwork-select/pkg/logging"
	"github.com/Sternrassler/artwork-select/pkg/pagination"
	"github.com/Sternrassler/artwork-select/pkg/session"
	"github.com/Sternrassler/artwork-select/pkg/source"
	"github.com/redis/go-redis/v9"
	"github.com/spf13/viper"
)

// EnvPrefix prefixes every environment override, e.g. ARTSEL_SOURCE_BASE_URL.
const EnvPrefix = "ARTSEL"

// DefaultUserAgent identifies artsel to the artworks API.
const DefaultUserAgent = "artwork-select/0.1 (+https://github.com/Sternrassler/artwork-select)"

// Config holds application configuration.
type Config struct {
	Source SourceConfig `mapstructure:"source"`
	Fetch  FetchConfig  `mapstructure:"fetch"`
	Redis  RedisConfig  `mapstructure:"redis"`
	Server ServerConfig `mapstructure:"server"`
	Log    LogConfig    `mapstructure:"log"`
}

// SourceConfig configures the artworks API client.
type SourceConfig struct {
	BaseURL        string        `mapstructure:"base_url"`
	UserAgent      string        `mapstructure:"user_agent"`
	PageSize       int           `mapstructure:"page_size"`
	Timeout        time.Duration `mapstructure:"timeout"`
	MaxRetries     int           `mapstructure:"max_retries"`
	InitialBackoff time.Duration `mapstructure:"initial_backoff"`
	MaxBackoff     time.Duration `mapstructure:"max_backoff"`
}

// FetchConfig configures the concurrent page fetches of a bulk selection.
type FetchConfig struct {
	MaxConcurrency int           `mapstructure:"max_concurrency"`
	PageTimeout    time.Duration `mapstructure:"page_timeout"`
}

// RedisConfig holds Redis settings. An empty Addr disables the response
// cache and the shared rate limit state.
type RedisConfig struct {
	Addr     string `mapstructure:"addr"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

// ServerConfig holds HTTP API settings.
type ServerConfig struct {
	Addr string `mapstructure:"addr"`
}

// LogConfig holds logging settings.
type LogConfig struct {
	Level  string `mapstructure:"level"`
	Pretty bool   `mapstructure:"pretty"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("source.base_url", source.DefaultBaseURL)
	v.SetDefault("source.user_agent", DefaultUserAgent)
	v.SetDefault("source.page_size", session.DefaultPageSize)
	v.SetDefault("source.timeout", 30*time.Second)
	v.SetDefault("source.max_retries", 3)
	v.SetDefault("source.initial_backoff", time.Second)
	v.SetDefault("source.max_backoff", 30*time.Second)

	fetch := pagination.DefaultConfig()
	v.SetDefault("fetch.max_concurrency", fetch.MaxConcurrency)
	v.SetDefault("fetch.page_timeout", fetch.Timeout)

	v.SetDefault("redis.addr", "")
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)

	v.SetDefault("server.addr", ":8080")

	v.SetDefault("log.level", string(logging.LevelInfo))
	v.SetDefault("log.pretty", false)
}

// Load reads configuration. path names a YAML file; when empty, ARTSEL_CONFIG
// is consulted, then ./artsel.yaml and $HOME/.config/artsel/config.yaml.
// A missing file is only an error when it was named explicitly.
func Load(path string) (Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetConfigType("yaml")

	if path == "" {
		path = os.Getenv(EnvPrefix + "_CONFIG")
	}
	explicit := path != ""
	if explicit {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("artsel")
		v.AddConfigPath(".")
		if home, err := os.UserHomeDir(); err == nil {
			v.AddConfigPath(filepath.Join(home, ".config", "artsel"))
		}
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if explicit || !errors.As(err, &notFound) {
			return Config{}, fmt.Errorf("read config: %w", err)
		}
	}

	var c Config
	if err := v.Unmarshal(&c); err != nil {
		return Config{}, fmt.Errorf("unmarshal config: %w", err)
	}

	if err := c.Validate(); err != nil {
		return Config{}, err
	}
	return c, nil
}

// Validate checks the configuration for values the components would reject.
func (c Config) Validate() error {
	var errs []error

	if c.Source.UserAgent == "" {
		errs = append(errs, errors.New("source.user_agent is required"))
	}
	if c.Source.PageSize < 1 || c.Source.PageSize > source.MaxPageSize {
		errs = append(errs, fmt.Errorf("source.page_size must be between 1 and %d (got %d)", source.MaxPageSize, c.Source.PageSize))
	}
	if c.Source.Timeout <= 0 {
		errs = append(errs, fmt.Errorf("source.timeout must be positive (got %s)", c.Source.Timeout))
	}
	if c.Source.MaxRetries < 0 {
		errs = append(errs, fmt.Errorf("source.max_retries must be >= 0 (got %d)", c.Source.MaxRetries))
	}
	if c.Source.InitialBackoff <= 0 || c.Source.MaxBackoff < c.Source.InitialBackoff {
		errs = append(errs, fmt.Errorf("source backoff must satisfy 0 < initial_backoff <= max_backoff (got %s, %s)",
			c.Source.InitialBackoff, c.Source.MaxBackoff))
	}
	if c.Fetch.MaxConcurrency < 1 {
		errs = append(errs, fmt.Errorf("fetch.max_concurrency must be >= 1 (got %d)", c.Fetch.MaxConcurrency))
	}
	if c.Fetch.PageTimeout <= 0 {
		errs = append(errs, fmt.Errorf("fetch.page_timeout must be positive (got %s)", c.Fetch.PageTimeout))
	}
	if !logging.ValidLevel(c.Log.Level) {
		errs = append(errs, fmt.Errorf("log.level %q is not one of debug, info, warn, error", c.Log.Level))
	}

	if len(errs) > 0 {
		return fmt.Errorf("invalid config: %w", errors.Join(errs...))
	}
	return nil
}

// RedisOptions returns the Redis client options, nil when Redis is disabled.
func (c Config) RedisOptions() *redis.Options {
	if c.Redis.Addr == "" {
		return nil
	}
	return &redis.Options{
		Addr:     c.Redis.Addr,
		Password: c.Redis.Password,
		DB:       c.Redis.DB,
	}
}

// SourceConfig returns the artworks client configuration. rdb may be nil.
func (c Config) SourceConfig(rdb *redis.Client) source.Config {
	cfg := source.DefaultConfig(c.Source.UserAgent)
	cfg.BaseURL = c.Source.BaseURL
	cfg.PageSize = c.Source.PageSize
	cfg.Timeout = c.Source.Timeout
	cfg.MaxRetries = c.Source.MaxRetries
	cfg.InitialBackoff = c.Source.InitialBackoff
	cfg.MaxBackoff = c.Source.MaxBackoff
	cfg.Redis = rdb
	return cfg
}

// SessionConfig returns the session configuration.
func (c Config) SessionConfig() session.Config {
	return session.Config{
		PageSize: c.Source.PageSize,
		Fetch: pagination.Config{
			MaxConcurrency: c.Fetch.MaxConcurrency,
			Timeout:        c.Fetch.PageTimeout,
		},
	}
}

// LoggingConfig returns the logger configuration.
func (c Config) LoggingConfig() logging.Config {
	cfg := logging.DefaultConfig()
	cfg.Level = logging.LogLevel(c.Log.Level)
	cfg.Pretty = c.Log.Pretty
	return cfg
}

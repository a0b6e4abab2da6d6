// Package config provides application configuration management with support for environment variables, command-line flags, and .env files.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// EnvPrefix prefixes every environment variable read by Load.
const EnvPrefix = "TAGMARKS"

// Config holds the application configuration.
type Config struct {
	App        AppConfig        `mapstructure:"app"`
	Logger     LoggerConfig     `mapstructure:"logger"`
	Server     ServerConfig     `mapstructure:"server"`
	Store      StoreConfig      `mapstructure:"store"`
	Search     SearchConfig     `mapstructure:"search"`
	Extractor  ExtractorConfig  `mapstructure:"extractor"`
	TagGen     TagGenConfig     `mapstructure:"taggen"`
	Enrichment EnrichmentConfig `mapstructure:"enrichment"`
	RateLimit  RateLimitConfig  `mapstructure:"ratelimit"`
}

// AppConfig holds application-level configuration.
type AppConfig struct {
	Environment string `mapstructure:"environment"`
	DataDir     string `mapstructure:"data_dir"`
}

// LoggerConfig holds logging configuration.
type LoggerConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"` // text, json, pretty; empty picks by environment
}

// ServerConfig holds server configuration.
type ServerConfig struct {
	Port            string        `mapstructure:"port"`
	ReadTimeout     time.Duration `mapstructure:"read_timeout"`
	WriteTimeout    time.Duration `mapstructure:"write_timeout"`
	IdleTimeout     time.Duration `mapstructure:"idle_timeout"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
	CORSOrigins     []string      `mapstructure:"cors_origins"`
}

// StoreConfig locates the badger document store.
type StoreConfig struct {
	Path string `mapstructure:"path"` // default: {data_dir}/store
}

// SearchConfig locates the bleve index.
type SearchConfig struct {
	Path string `mapstructure:"path"` // default: {data_dir}/search
}

// ExtractorConfig holds page fetching configuration.
type ExtractorConfig struct {
	Timeout    time.Duration `mapstructure:"timeout"`
	MaxExcerpt int           `mapstructure:"max_excerpt"`
	Denylist   []string      `mapstructure:"denylist"` // empty uses the built-in list
	CacheTTL   time.Duration `mapstructure:"cache_ttl"`
	CachePath  string        `mapstructure:"cache_path"` // default: {data_dir}/pagecache.db
}

// TagGenConfig holds the LLM tag generator configuration.
type TagGenConfig struct {
	Provider          string        `mapstructure:"provider"`
	BaseURL           string        `mapstructure:"base_url"`
	Model             string        `mapstructure:"model"`
	APIKey            string        `mapstructure:"api_key"`
	MaxTokens         int           `mapstructure:"max_tokens"`
	Count             int           `mapstructure:"count"`
	Timeout           time.Duration `mapstructure:"timeout"`
	RequestsPerMinute int           `mapstructure:"requests_per_minute"`
	Burst             int           `mapstructure:"burst"`
}

// EnrichmentConfig holds background enrichment configuration.
type EnrichmentConfig struct {
	Enabled    bool          `mapstructure:"enabled"`
	Workers    int           `mapstructure:"workers"`
	QueueSize  int           `mapstructure:"queue_size"`
	JobTimeout time.Duration `mapstructure:"job_timeout"`
}

// RateLimitConfig holds the per-client HTTP rate limit. Zero disables it.
type RateLimitConfig struct {
	RequestsPerMinute int `mapstructure:"requests_per_minute"`
	Burst             int `mapstructure:"burst"`
}

// SetDefaults registers every key with its default value.
func SetDefaults(v *viper.Viper) {
	v.SetDefault("env_file", ".env")

	v.SetDefault("app.environment", "development")
	v.SetDefault("app.data_dir", "~/.tagmarks")

	v.SetDefault("logger.level", "info")
	v.SetDefault("logger.format", "")

	v.SetDefault("server.port", "8080")
	v.SetDefault("server.read_timeout", 15*time.Second)
	v.SetDefault("server.write_timeout", 90*time.Second)
	v.SetDefault("server.idle_timeout", 60*time.Second)
	v.SetDefault("server.shutdown_timeout", 30*time.Second)
	v.SetDefault("server.cors_origins", []string{"*"})

	v.SetDefault("store.path", "")
	v.SetDefault("search.path", "")

	v.SetDefault("extractor.timeout", 10*time.Second)
	v.SetDefault("extractor.max_excerpt", 1000)
	v.SetDefault("extractor.denylist", []string{})
	v.SetDefault("extractor.cache_ttl", 24*time.Hour)
	v.SetDefault("extractor.cache_path", "")

	v.SetDefault("taggen.provider", "openai")
	v.SetDefault("taggen.base_url", "")
	v.SetDefault("taggen.model", "")
	v.SetDefault("taggen.api_key", "")
	v.SetDefault("taggen.max_tokens", 100)
	v.SetDefault("taggen.count", 10)
	v.SetDefault("taggen.timeout", 20*time.Second)
	v.SetDefault("taggen.requests_per_minute", 10)
	v.SetDefault("taggen.burst", 3)

	v.SetDefault("enrichment.enabled", true)
	v.SetDefault("enrichment.workers", 4)
	v.SetDefault("enrichment.queue_size", 256)
	v.SetDefault("enrichment.job_timeout", 45*time.Second)

	v.SetDefault("ratelimit.requests_per_minute", 600)
	v.SetDefault("ratelimit.burst", 50)
}

// flagKeys maps command-line flags to config keys.
var flagKeys = map[string]string{
	"env":        "app.environment",
	"data-dir":   "app.data_dir",
	"log-level":  "logger.level",
	"log-format": "logger.format",
	"port":       "server.port",
	"env-file":   "env_file",
}

// RegisterFlags defines the serve flags on fs.
func RegisterFlags(fs *pflag.FlagSet) {
	fs.String("env", "", "Environment (development, staging, production)")
	fs.String("data-dir", "", "Base directory for the store, index and page cache")
	fs.String("log-level", "", "Log level (debug, info, warn, error)")
	fs.String("log-format", "", "Log format (text, json, pretty)")
	fs.String("port", "", "Server port (default: 8080)")
	fs.String("env-file", ".env", "Path to .env file")
}

// BindFlags binds the flags defined by RegisterFlags into v.
func BindFlags(v *viper.Viper, fs *pflag.FlagSet) error {
	for name, key := range flagKeys {
		f := fs.Lookup(name)
		if f == nil {
			continue
		}
		if err := v.BindPFlag(key, f); err != nil {
			return fmt.Errorf("bind flag %s: %w", name, err)
		}
	}
	return nil
}

// Load builds the configuration from v with precedence:
// 1. Command-line flags bound via BindFlags (highest priority).
// 2. Environment variables (TAGMARKS_SECTION_KEY).
// 3. .env file.
// 4. Default values (lowest priority).
func Load(v *viper.Viper) (*Config, error) {
	SetDefaults(v)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	if err := v.BindEnv("taggen.api_key", EnvPrefix+"_TAGGEN_API_KEY", "OPENAI_API_KEY"); err != nil {
		return nil, fmt.Errorf("bind api key env: %w", err)
	}

	// Missing .env files are fine.
	if err := loadEnvFile(v.GetString("env_file")); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("load env file: %w", err)
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}

	cfg.Logger.Level = strings.ToLower(cfg.Logger.Level)
	cfg.Server.CORSOrigins = splitList(cfg.Server.CORSOrigins)
	cfg.Extractor.Denylist = splitList(cfg.Extractor.Denylist)

	if err := cfg.expandPaths(); err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return &cfg, nil
}

// Validate checks that all required config values are present and valid.
func (c *Config) Validate() error {
	if c.App.Environment == "" {
		return errors.New("environment is required")
	}

	validEnvs := map[string]bool{
		"development": true,
		"staging":     true,
		"production":  true,
	}
	if !validEnvs[c.App.Environment] {
		return fmt.Errorf("invalid environment: %s (must be development, staging, or production)", c.App.Environment)
	}

	validLevels := map[string]bool{
		"debug": true,
		"info":  true,
		"warn":  true,
		"error": true,
	}
	if !validLevels[strings.ToLower(c.Logger.Level)] {
		return fmt.Errorf("invalid log level: %s (must be debug, info, warn, or error)", c.Logger.Level)
	}

	switch c.Logger.Format {
	case "", "text", "json", "pretty":
	default:
		return fmt.Errorf("invalid log format: %s (must be text, json, or pretty)", c.Logger.Format)
	}

	if c.Server.Port == "" {
		return errors.New("server port is required")
	}

	if c.Store.Path == "" || c.Search.Path == "" {
		return errors.New("store and search paths cannot be empty after expansion")
	}

	if c.Extractor.Timeout <= 0 {
		return errors.New("extractor timeout must be positive")
	}
	if c.Extractor.MaxExcerpt < 1 {
		return errors.New("extractor max excerpt must be at least 1")
	}

	switch c.TagGen.Provider {
	case "openai", "anthropic":
	default:
		return fmt.Errorf("invalid tag generator provider: %s (must be openai or anthropic)", c.TagGen.Provider)
	}
	if c.TagGen.Count < 1 {
		return errors.New("tag generator count must be at least 1")
	}

	if c.Enrichment.Enabled {
		if c.Enrichment.Workers < 1 {
			return errors.New("enrichment workers must be at least 1")
		}
		if c.Enrichment.QueueSize < 1 {
			return errors.New("enrichment queue size must be at least 1")
		}
		if c.Enrichment.JobTimeout <= 0 {
			return errors.New("enrichment job timeout must be positive")
		}
	}

	if c.RateLimit.RequestsPerMinute < 0 || c.RateLimit.Burst < 0 {
		return errors.New("rate limit values cannot be negative")
	}

	return nil
}

// expandPath expands ~ and makes the path absolute.
// If path is empty and defaultPath is provided, uses the default.
func expandPath(path, defaultPath string) (string, error) {
	if path == "" {
		return defaultPath, nil
	}

	// Expand tilde.
	if path == "~" || strings.HasPrefix(path, "~/") {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("failed to get home directory: %w", err)
		}
		path = filepath.Join(homeDir, strings.TrimPrefix(path[1:], "/"))
	}

	if !filepath.IsAbs(path) {
		absPath, err := filepath.Abs(path)
		if err != nil {
			return "", fmt.Errorf("failed to get absolute path: %w", err)
		}
		path = absPath
	}

	return filepath.Clean(path), nil
}

// expandPaths resolves the data dir and derives the per-component paths
// from it when they are not set explicitly.
func (c *Config) expandPaths() error {
	dataDir, err := expandPath(c.App.DataDir, "")
	if err != nil {
		return fmt.Errorf("invalid data dir: %w", err)
	}
	if dataDir == "" {
		return errors.New("data dir is required")
	}
	c.App.DataDir = dataDir

	paths := []struct {
		target *string
		def    string
		name   string
	}{
		{&c.Store.Path, filepath.Join(dataDir, "store"), "store path"},
		{&c.Search.Path, filepath.Join(dataDir, "search"), "search path"},
		{&c.Extractor.CachePath, filepath.Join(dataDir, "pagecache.db"), "page cache path"},
	}
	for _, p := range paths {
		expanded, err := expandPath(*p.target, p.def)
		if err != nil {
			return fmt.Errorf("invalid %s: %w", p.name, err)
		}
		*p.target = expanded
	}
	return nil
}

// splitList flattens comma separated entries, as they arrive from env vars,
// and drops blanks.
func splitList(in []string) []string {
	out := make([]string, 0, len(in))
	for _, item := range in {
		for part := range strings.SplitSeq(item, ",") {
			if part = strings.TrimSpace(part); part != "" {
				out = append(out, part)
			}
		}
	}
	return out
}

// loadEnvFile loads environment variables from a .env file.
// Variables already present in the environment take precedence.
func loadEnvFile(path string) error {
	if path == "" {
		return nil
	}
	if _, err := os.Stat(path); err != nil {
		return err
	}

	dotenv := viper.New()
	dotenv.SetConfigFile(path)
	dotenv.SetConfigType("env")
	if err := dotenv.ReadInConfig(); err != nil {
		return fmt.Errorf("read %s: %w", path, err)
	}

	for _, key := range dotenv.AllKeys() {
		name := strings.ToUpper(key)
		if _, ok := os.LookupEnv(name); ok {
			continue
		}
		if err := os.Setenv(name, dotenv.GetString(key)); err != nil {
			return fmt.Errorf("failed to set env var %s: %w", name, err)
		}
	}
	return nil
}

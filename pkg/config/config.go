// Package config loads componentscope settings.
//
// Settings come from three layers, later layers overriding earlier ones:
//
//  1. built-in defaults ([Default])
//  2. the TOML file at <user config dir>/componentscope/config.toml
//  3. environment variables (FIGMA_API_TOKEN, FILE_ID,
//     COMPONENTSCOPE_REDIS_ADDR, COMPONENTSCOPE_MONGO_URI)
//
// Command-line flags are applied by the CLI on top of the result. A missing
// config file is not an error.
//
// Example config.toml:
//
//	[figma]
//	token = "figd_..."
//	file_id = "aBcD1234efGH5678"
//	cache_ttl = "24h"
//
//	[analysis]
//	minutes_per_component = 15
//
//	[cache]
//	backend = "redis"
//	redis_addr = "localhost:6379"
//
//	[storage]
//	backend = "mongo"
//	mongo_uri = "mongodb://localhost:27017"
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/BurntSushi/toml"

	apperrors "github.com/matzehuels/componentscope/pkg/errors"
)

// Environment variables read by [Config.ApplyEnv].
const (
	EnvToken     = "FIGMA_API_TOKEN"
	EnvFileID    = "FILE_ID"
	EnvRedisAddr = "COMPONENTSCOPE_REDIS_ADDR"
	EnvMongoURI  = "COMPONENTSCOPE_MONGO_URI"
)

// Cache backends.
const (
	CacheFile  = "file"
	CacheRedis = "redis"
	CacheNone  = "none"
)

// Storage backends.
const (
	StorageDir   = "dir"
	StorageMongo = "mongo"
)

// Defaults.
const (
	DefaultBaseURL             = "https://api.figma.com"
	DefaultCacheTTL            = 24 * time.Hour
	DefaultMinutesPerComponent = 10
	DefaultMongoDatabase       = "componentscope"
	DefaultServerAddr          = ":8080"
)

// Duration is a time.Duration written as a string ("24h", "90m") in TOML.
type Duration time.Duration

// UnmarshalText implements encoding.TextUnmarshaler.
func (d *Duration) UnmarshalText(b []byte) error {
	v, err := time.ParseDuration(string(b))
	if err != nil {
		return err
	}
	*d = Duration(v)
	return nil
}

// Std returns d as a time.Duration.
func (d Duration) Std() time.Duration { return time.Duration(d) }

// MarshalText implements encoding.TextMarshaler.
func (d Duration) MarshalText() ([]byte, error) {
	return []byte(time.Duration(d).String()), nil
}

// Config is the complete set of settings.
type Config struct {
	Figma    FigmaConfig    `toml:"figma"`
	Analysis AnalysisConfig `toml:"analysis"`
	Cache    CacheConfig    `toml:"cache"`
	Storage  StorageConfig  `toml:"storage"`
	Server   ServerConfig   `toml:"server"`
}

// FigmaConfig configures design file retrieval.
type FigmaConfig struct {
	Token    string   `toml:"token,omitempty"`
	FileID   string   `toml:"file_id,omitempty"`
	BaseURL  string   `toml:"base_url"`
	CacheTTL Duration `toml:"cache_ttl"`
}

// AnalysisConfig configures the analysis pipeline.
type AnalysisConfig struct {
	MinutesPerComponent int  `toml:"minutes_per_component"`
	LookThrough         bool `toml:"look_through"`
	KeepArtifacts       bool `toml:"keep_artifacts"`
}

// CacheConfig selects the analysis result cache.
type CacheConfig struct {
	Backend       string `toml:"backend"`
	Dir           string `toml:"dir,omitempty"`
	RedisAddr     string `toml:"redis_addr,omitempty"`
	RedisPassword string `toml:"redis_password,omitempty"`
	RedisDB       int    `toml:"redis_db,omitempty"`
}

// StorageConfig selects where analysis runs are persisted.
type StorageConfig struct {
	Backend       string `toml:"backend"`
	Dir           string `toml:"dir,omitempty"`
	MongoURI      string `toml:"mongo_uri,omitempty"`
	MongoDatabase string `toml:"mongo_database,omitempty"`
}

// ServerConfig configures the HTTP API.
type ServerConfig struct {
	Addr string `toml:"addr"`
}

// Default returns the built-in defaults.
func Default() *Config {
	return &Config{
		Figma: FigmaConfig{
			BaseURL:  DefaultBaseURL,
			CacheTTL: Duration(DefaultCacheTTL),
		},
		Analysis: AnalysisConfig{
			MinutesPerComponent: DefaultMinutesPerComponent,
			KeepArtifacts:       true,
		},
		Cache:   CacheConfig{Backend: CacheFile},
		Storage: StorageConfig{Backend: StorageDir, MongoDatabase: DefaultMongoDatabase},
		Server:  ServerConfig{Addr: DefaultServerAddr},
	}
}

// DefaultPath returns <user config dir>/componentscope/config.toml. On Linux
// the user config dir honors $XDG_CONFIG_HOME.
func DefaultPath() (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("get config dir: %w", err)
	}
	return filepath.Join(dir, "componentscope", "config.toml"), nil
}

// Load reads the config file at path (or [DefaultPath] when path is empty)
// over the defaults, then applies environment overrides. A missing file
// yields the defaults.
func Load(path string) (*Config, error) {
	cfg, err := LoadFile(path)
	if err != nil {
		return nil, err
	}
	cfg.ApplyEnv(os.Getenv)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadFile reads the config file without environment overrides.
func LoadFile(path string) (*Config, error) {
	if path == "" {
		p, err := DefaultPath()
		if err != nil {
			return nil, err
		}
		path = p
	}

	cfg := Default()
	if _, err := toml.DecodeFile(path, cfg); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return cfg, nil
		}
		return nil, apperrors.Wrap(apperrors.ErrCodeInvalidInput, err, "parse config %s", path)
	}
	return cfg, nil
}

// ApplyEnv overrides settings from environment variables looked up with
// getenv. Setting a Redis address or Mongo URI also selects that backend.
func (c *Config) ApplyEnv(getenv func(string) string) {
	if v := getenv(EnvToken); v != "" {
		c.Figma.Token = v
	}
	if v := getenv(EnvFileID); v != "" {
		c.Figma.FileID = v
	}
	if v := getenv(EnvRedisAddr); v != "" {
		c.Cache.RedisAddr = v
		c.Cache.Backend = CacheRedis
	}
	if v := getenv(EnvMongoURI); v != "" {
		c.Storage.MongoURI = v
		c.Storage.Backend = StorageMongo
	}
}

// Validate checks the settings for consistency.
func (c *Config) Validate() error {
	if err := apperrors.ValidateURL(c.Figma.BaseURL); err != nil {
		return err
	}
	if c.Figma.CacheTTL < 0 {
		return apperrors.New(apperrors.ErrCodeInvalidInput, "figma.cache_ttl cannot be negative")
	}
	if c.Analysis.MinutesPerComponent <= 0 {
		return apperrors.New(apperrors.ErrCodeInvalidInput, "analysis.minutes_per_component must be positive, got %d", c.Analysis.MinutesPerComponent)
	}
	switch c.Cache.Backend {
	case CacheFile, CacheNone:
	case CacheRedis:
		if c.Cache.RedisAddr == "" {
			return apperrors.New(apperrors.ErrCodeInvalidInput, "cache.redis_addr is required for the redis backend")
		}
	default:
		return apperrors.New(apperrors.ErrCodeInvalidInput, "unknown cache backend %q", c.Cache.Backend)
	}
	switch c.Storage.Backend {
	case StorageDir:
	case StorageMongo:
		if c.Storage.MongoURI == "" {
			return apperrors.New(apperrors.ErrCodeInvalidInput, "storage.mongo_uri is required for the mongo backend")
		}
	default:
		return apperrors.New(apperrors.ErrCodeInvalidInput, "unknown storage backend %q", c.Storage.Backend)
	}
	return nil
}

// Save writes c as TOML to path, creating parent directories.
func (c *Config) Save(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return fmt.Errorf("create config dir: %w", err)
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0600)
	if err != nil {
		return fmt.Errorf("create config file: %w", err)
	}
	defer f.Close()

	if err := toml.NewEncoder(f).Encode(c); err != nil {
		return fmt.Errorf("encode config: %w", err)
	}
	return nil
}

// Package config loads service configuration from environment variables.
package config

import (
	"fmt"

	"github.com/kelseyhightower/envconfig"

	"github.com/getsiphon/siphonfs/internal/fserr"
	"github.com/getsiphon/siphonfs/internal/shared/paths"
)

// Config holds all service configuration.
type Config struct {
	App       AppConfig
	Server    ServerConfig
	Logging   LogConfig
	RateLimit RateLimitConfig
	Download  DownloadConfig
}

// AppConfig identifies the application and its platform base directories.
// The identifier has no default: sandboxing cannot work without it.
type AppConfig struct {
	ID           string `envconfig:"SIPHON_APP_ID"`
	Platform     string `envconfig:"SIPHON_PLATFORM" default:"android"`
	CachesDir    string `envconfig:"SIPHON_CACHES_DIR" default:"/data/caches"`
	DocumentsDir string `envconfig:"SIPHON_DOCUMENTS_DIR" default:"/data/documents"`
	LibraryDir   string `envconfig:"SIPHON_LIBRARY_DIR" default:"/data/library"`
}

// ServerConfig holds HTTP server configuration.
type ServerConfig struct {
	Port string `envconfig:"PORT" default:"8600"`
	Host string `envconfig:"HOST" default:"0.0.0.0"`
}

// LogConfig holds logging configuration.
type LogConfig struct {
	Level       string `envconfig:"LOG_LEVEL" default:"info"`
	Development bool   `envconfig:"LOG_DEV" default:"false"`
}

// RateLimitConfig holds rate limiting configuration.
type RateLimitConfig struct {
	RequestsPerSecond int  `envconfig:"RATE_LIMIT_RPS" default:"100"`
	Burst             int  `envconfig:"RATE_LIMIT_BURST" default:"200"`
	Enabled           bool `envconfig:"RATE_LIMIT_ENABLED" default:"true"`
}

// DownloadConfig tunes the download client.
type DownloadConfig struct {
	TimeoutSeconds  int `envconfig:"DOWNLOAD_TIMEOUT_SECONDS" default:"0"`
	RetryCount      int `envconfig:"DOWNLOAD_RETRY_COUNT" default:"2"`
	ProgressDivider int `envconfig:"DOWNLOAD_PROGRESS_DIVIDER" default:"0"`
}

// Load loads configuration from environment variables.
func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	return &cfg, nil
}

// Platform returns the configured platform, defaulting unknown values to
// Android (which has the smaller root set).
func (c *Config) Platform() paths.Platform {
	if paths.Platform(c.App.Platform) == paths.PlatformIOS {
		return paths.PlatformIOS
	}
	return paths.PlatformAndroid
}

// BaseDirs returns the platform base directories.
func (c *Config) BaseDirs() paths.BaseDirs {
	return paths.BaseDirs{
		Caches:    c.App.CachesDir,
		Documents: c.App.DocumentsDir,
		Library:   c.App.LibraryDir,
	}
}

// Policy builds the root policy from the configuration, failing fast with
// ECONFIG when the application identifier is missing.
func (c *Config) Policy() (*paths.Policy, error) {
	if c.App.ID == "" {
		return nil, fserr.Config("SIPHON_APP_ID must be set before any sandboxed operation")
	}
	return paths.NewPolicy(c.App.ID, c.Platform(), c.BaseDirs())
}

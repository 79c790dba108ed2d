// Package config loads service configuration from the environment.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/merchkit/image-bundler/pkg/logging"
)

// ErrMissingConfig is returned when a required environment variable is absent.
var ErrMissingConfig = errors.New("missing required configuration")

// Config holds the full service configuration.
type Config struct {
	// Port is the HTTP listen port.
	Port string

	// ShopDomain is the myshopify domain of the store (e.g. "acme.myshopify.com").
	ShopDomain string

	// AccessToken is the static Admin API access token.
	AccessToken string

	// APIVersion selects the Admin API version path segment.
	APIVersion string

	// BucketURL is the gocloud.dev bucket URL for archive uploads
	// (e.g. "s3://bundles?region=eu-central-1", "file:///tmp/bundles").
	BucketURL string

	// RedisAddr enables the recent-bundle history store when set.
	RedisAddr string

	// LogLevel is the minimum log level (debug, info, warn, error).
	LogLevel logging.LogLevel

	// LogPretty enables human-readable console logs.
	LogPretty bool
}

// Load reads the configuration from environment variables.
// SHOP_DOMAIN, SHOP_ACCESS_TOKEN and BUCKET_URL are required.
func Load() (Config, error) {
	cfg := Config{
		Port:        getEnv("PORT", "8080"),
		ShopDomain:  os.Getenv("SHOP_DOMAIN"),
		AccessToken: os.Getenv("SHOP_ACCESS_TOKEN"),
		APIVersion:  getEnv("SHOP_API_VERSION", "2024-01"),
		BucketURL:   os.Getenv("BUCKET_URL"),
		RedisAddr:   os.Getenv("REDIS_ADDR"),
		LogLevel:    logging.LogLevel(getEnv("LOG_LEVEL", "info")),
		LogPretty:   strings.EqualFold(os.Getenv("LOG_PRETTY"), "true"),
	}

	if cfg.ShopDomain == "" {
		return Config{}, fmt.Errorf("%w: SHOP_DOMAIN", ErrMissingConfig)
	}
	if cfg.AccessToken == "" {
		return Config{}, fmt.Errorf("%w: SHOP_ACCESS_TOKEN", ErrMissingConfig)
	}
	if cfg.BucketURL == "" {
		return Config{}, fmt.Errorf("%w: BUCKET_URL", ErrMissingConfig)
	}

	return cfg, nil
}

// BaseURL returns the Admin API base URL for the configured shop.
func (c Config) BaseURL() string {
	return fmt.Sprintf("https://%s/admin/api/%s", c.ShopDomain, c.APIVersion)
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

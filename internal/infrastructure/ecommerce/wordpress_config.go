package ecommerce

import (
	"errors"
	"strings"

	"github.com/channelbridge/backend/internal/domain/integration"
)

// Integration config keys for WordPress/WooCommerce
const (
	ConfigKeySiteURL        = "site_url"
	ConfigKeyConsumerKey    = "consumer_key"
	ConfigKeyConsumerSecret = "consumer_secret"
)

// wcAPIBasePath is the WooCommerce REST API base path
const wcAPIBasePath = "/wp-json/wc/v3"

// Errors for WordPress configuration
var (
	ErrWordPressConfigMissingSiteURL = errors.New("wordpress: site url is required")
	ErrWordPressConfigMissingKey     = errors.New("wordpress: consumer key is required")
	ErrWordPressConfigMissingSecret  = errors.New("wordpress: consumer secret is required")
)

// WordPressConfig holds the per-integration credentials for one WooCommerce
// store.
type WordPressConfig struct {
	// SiteURL is the WordPress site root, without the API path
	SiteURL string
	// ConsumerKey is the WooCommerce REST API consumer key
	ConsumerKey string
	// ConsumerSecret is the WooCommerce REST API consumer secret
	ConsumerSecret string
}

// NewWordPressConfig extracts WooCommerce credentials from an integration's
// config map. Missing keys degrade to ErrPlatformNotConfigured so a
// misconfigured integration fails a job step instead of panicking.
func NewWordPressConfig(integ *integration.Integration) (*WordPressConfig, error) {
	cfg := &WordPressConfig{
		SiteURL:        strings.TrimRight(integ.ConfigValue(ConfigKeySiteURL), "/"),
		ConsumerKey:    integ.ConfigValue(ConfigKeyConsumerKey),
		ConsumerSecret: integ.ConfigValue(ConfigKeyConsumerSecret),
	}
	if err := cfg.Validate(); err != nil {
		return nil, errors.Join(integration.ErrPlatformNotConfigured, err)
	}
	return cfg, nil
}

// Validate validates the WordPress configuration
func (c *WordPressConfig) Validate() error {
	if c.SiteURL == "" {
		return ErrWordPressConfigMissingSiteURL
	}
	if c.ConsumerKey == "" {
		return ErrWordPressConfigMissingKey
	}
	if c.ConsumerSecret == "" {
		return ErrWordPressConfigMissingSecret
	}
	return nil
}

// Endpoint builds a full API URL for a resource path like "/products"
func (c *WordPressConfig) Endpoint(path string) string {
	return c.SiteURL + wcAPIBasePath + path
}

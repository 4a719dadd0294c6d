package integration

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
)

var (
	ErrIntegrationNotFound  = errors.New("integration: integration not found")
	ErrIntegrationNameEmpty = errors.New("integration: integration name is required")
	ErrInvalidPlatformCode  = errors.New("integration: invalid platform code")
)

// AggregateTypeIntegration is the aggregate type for integration events
const AggregateTypeIntegration = "Integration"

// PlatformCode identifies the external storefront platform type
type PlatformCode string

const (
	// PlatformCodeWordPress is a WordPress site running WooCommerce
	PlatformCodeWordPress PlatformCode = "wordpress"
	// PlatformCodeMarketplaceX is a marketplace integration (stub)
	PlatformCodeMarketplaceX PlatformCode = "marketplace-x"
)

// IsValid returns true if the platform code is known
func (c PlatformCode) IsValid() bool {
	switch c {
	case PlatformCodeWordPress, PlatformCodeMarketplaceX:
		return true
	default:
		return false
	}
}

// String returns the string representation of PlatformCode
func (c PlatformCode) String() string {
	return string(c)
}

// FeatureSyncProducts enables one-way product synchronization for an integration
const FeatureSyncProducts = "sync_products"

// Integration is a configured connection to one external storefront platform.
type Integration struct {
	ID       uuid.UUID
	Name     string
	Platform PlatformCode

	// Config is an opaque string-keyed credential/URL map. Which keys are
	// required is a platform-client concern; missing keys degrade to a
	// typed "not configured" failure at call time.
	Config map[string]string

	Enabled bool

	// EnabledFeatures is the ordered set of feature codes switched on for
	// this integration. An empty list means all features are enabled
	// (backward compatibility with integrations created before feature
	// flags existed).
	EnabledFeatures []string

	CreatedAt time.Time
	UpdatedAt time.Time
}

// NewIntegration creates a new enabled integration
func NewIntegration(name string, platform PlatformCode, config map[string]string) (*Integration, error) {
	if strings.TrimSpace(name) == "" {
		return nil, ErrIntegrationNameEmpty
	}
	if !platform.IsValid() {
		return nil, ErrInvalidPlatformCode
	}
	if config == nil {
		config = make(map[string]string)
	}
	now := time.Now()
	return &Integration{
		ID:        uuid.New(),
		Name:      strings.TrimSpace(name),
		Platform:  platform,
		Config:    config,
		Enabled:   true,
		CreatedAt: now,
		UpdatedAt: now,
	}, nil
}

// FeatureEnabled reports whether a feature code is enabled. An empty feature
// list enables everything.
func (i *Integration) FeatureEnabled(code string) bool {
	if len(i.EnabledFeatures) == 0 {
		return true
	}
	for _, f := range i.EnabledFeatures {
		if f == code {
			return true
		}
	}
	return false
}

// SyncActive reports whether the integration should receive product sync jobs.
func (i *Integration) SyncActive() bool {
	return i.Enabled && i.FeatureEnabled(FeatureSyncProducts)
}

// ConfigValue returns a trimmed config value, empty when absent.
func (i *Integration) ConfigValue(key string) string {
	return strings.TrimSpace(i.Config[key])
}

// IntegrationRepository defines integration persistence
type IntegrationRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*Integration, error)
	List(ctx context.Context) ([]Integration, error)
	Save(ctx context.Context, integration *Integration) error
	Delete(ctx context.Context, id uuid.UUID) error
}

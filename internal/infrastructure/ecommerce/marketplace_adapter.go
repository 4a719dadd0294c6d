package ecommerce

import (
	"context"

	"go.uber.org/zap"

	"github.com/channelbridge/backend/internal/domain/integration"
)

// MarketplaceAdapter is a placeholder StorefrontClient for the marketplace
// platform. The remote API is not integrated yet; every product operation
// reports the platform as unavailable so jobs surface a clear failure
// instead of silently dropping work.
type MarketplaceAdapter struct {
	logger *zap.Logger
}

// NewMarketplaceAdapter creates a new marketplace adapter stub
func NewMarketplaceAdapter(logger *zap.Logger) *MarketplaceAdapter {
	return &MarketplaceAdapter{logger: logger}
}

// Platform returns the platform code this adapter handles
func (a *MarketplaceAdapter) Platform() integration.PlatformCode {
	return integration.PlatformCodeMarketplaceX
}

// TestConnection reports the stub as reachable so integrations can be
// configured ahead of the real rollout.
func (a *MarketplaceAdapter) TestConnection(ctx context.Context, integ *integration.Integration) error {
	a.logger.Info("marketplace connection test (stub)",
		zap.String("integration_id", integ.ID.String()),
	)
	return nil
}

func (a *MarketplaceAdapter) CreateProduct(ctx context.Context, integ *integration.Integration, payload *integration.ProductPayload) (*integration.RemoteProduct, error) {
	return nil, integration.ErrPlatformUnavailable
}

func (a *MarketplaceAdapter) UpdateProduct(ctx context.Context, integ *integration.Integration, externalID string, payload *integration.ProductPayload) (*integration.RemoteProduct, error) {
	return nil, integration.ErrPlatformUnavailable
}

func (a *MarketplaceAdapter) DeleteProduct(ctx context.Context, integ *integration.Integration, externalID string) error {
	return integration.ErrPlatformUnavailable
}

func (a *MarketplaceAdapter) GetProduct(ctx context.Context, integ *integration.Integration, externalID string) (*integration.RemoteProduct, error) {
	return nil, integration.ErrPlatformUnavailable
}

func (a *MarketplaceAdapter) FindProductBySKU(ctx context.Context, integ *integration.Integration, sku string) (*integration.RemoteProduct, error) {
	return nil, integration.ErrPlatformUnavailable
}

func (a *MarketplaceAdapter) CreateVariation(ctx context.Context, integ *integration.Integration, externalProductID string, payload *integration.VariationPayload) (*integration.RemoteVariation, error) {
	return nil, integration.ErrPlatformUnavailable
}

func (a *MarketplaceAdapter) UpdateVariation(ctx context.Context, integ *integration.Integration, externalProductID, variationID string, payload *integration.VariationPayload) (*integration.RemoteVariation, error) {
	return nil, integration.ErrPlatformUnavailable
}

func (a *MarketplaceAdapter) ListVariations(ctx context.Context, integ *integration.Integration, externalProductID string) ([]integration.RemoteVariation, error) {
	return nil, integration.ErrPlatformUnavailable
}

// Ensure MarketplaceAdapter implements StorefrontClient
var _ integration.StorefrontClient = (*MarketplaceAdapter)(nil)

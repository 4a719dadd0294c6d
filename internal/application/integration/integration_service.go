package integration

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/channelbridge/backend/internal/domain/integration"
)

// CreateIntegrationInput carries the fields for creating an integration
type CreateIntegrationInput struct {
	Name            string
	Platform        integration.PlatformCode
	Config          map[string]string
	EnabledFeatures []string
}

// UpdateIntegrationInput carries a partial integration update. Nil pointers
// and nil maps leave the stored value untouched.
type UpdateIntegrationInput struct {
	Name            *string
	Config          map[string]string
	Enabled         *bool
	EnabledFeatures []string
}

// IntegrationService manages external storefront integrations
type IntegrationService struct {
	integrations integration.IntegrationRepository
	mappings     integration.ProductMappingStore
	clients      integration.ClientRegistry
	logger       *zap.Logger
}

// NewIntegrationService creates a new IntegrationService
func NewIntegrationService(
	integrations integration.IntegrationRepository,
	mappings integration.ProductMappingStore,
	clients integration.ClientRegistry,
	logger *zap.Logger,
) *IntegrationService {
	return &IntegrationService{
		integrations: integrations,
		mappings:     mappings,
		clients:      clients,
		logger:       logger,
	}
}

// Create creates a new integration
func (s *IntegrationService) Create(ctx context.Context, input CreateIntegrationInput) (*integration.Integration, error) {
	integ, err := integration.NewIntegration(input.Name, input.Platform, input.Config)
	if err != nil {
		return nil, err
	}
	integ.EnabledFeatures = input.EnabledFeatures

	if err := s.integrations.Save(ctx, integ); err != nil {
		return nil, err
	}
	return integ, nil
}

// GetByID retrieves an integration
func (s *IntegrationService) GetByID(ctx context.Context, id uuid.UUID) (*integration.Integration, error) {
	return s.integrations.FindByID(ctx, id)
}

// List retrieves all integrations
func (s *IntegrationService) List(ctx context.Context) ([]integration.Integration, error) {
	return s.integrations.List(ctx)
}

// Update applies a partial update to an integration
func (s *IntegrationService) Update(ctx context.Context, id uuid.UUID, input UpdateIntegrationInput) (*integration.Integration, error) {
	integ, err := s.integrations.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if input.Name != nil {
		if strings.TrimSpace(*input.Name) == "" {
			return nil, integration.ErrIntegrationNameEmpty
		}
		integ.Name = strings.TrimSpace(*input.Name)
	}
	if input.Config != nil {
		integ.Config = input.Config
	}
	if input.Enabled != nil {
		integ.Enabled = *input.Enabled
	}
	if input.EnabledFeatures != nil {
		integ.EnabledFeatures = input.EnabledFeatures
	}
	integ.UpdatedAt = time.Now()

	if err := s.integrations.Save(ctx, integ); err != nil {
		return nil, err
	}
	return integ, nil
}

// Delete removes an integration together with all its product mappings.
// Channels referencing the integration keep their orphan reference; the sync
// path tolerates and resolves it.
func (s *IntegrationService) Delete(ctx context.Context, id uuid.UUID) error {
	if _, err := s.integrations.FindByID(ctx, id); err != nil {
		return err
	}

	if err := s.mappings.DeleteByIntegration(ctx, id); err != nil {
		return err
	}
	if err := s.integrations.Delete(ctx, id); err != nil {
		return err
	}

	s.logger.Info("integration deleted", zap.String("integration_id", id.String()))
	return nil
}

// TestConnection verifies an integration's credentials against the remote
// platform.
func (s *IntegrationService) TestConnection(ctx context.Context, id uuid.UUID) error {
	integ, err := s.integrations.FindByID(ctx, id)
	if err != nil {
		return err
	}

	client, err := s.clients.GetClient(integ.Platform)
	if err != nil {
		return err
	}
	return client.TestConnection(ctx, integ)
}

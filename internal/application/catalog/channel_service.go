package catalog

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/channelbridge/backend/internal/domain/catalog"
	"github.com/channelbridge/backend/internal/domain/integration"
	"github.com/channelbridge/backend/internal/domain/shared"
)

// ChannelService handles channel settings. Settings updates publish a
// ChannelUpdatedEvent listing exactly the keys the caller sent, which is what
// the repricing engine keys on.
type ChannelService struct {
	channels     catalog.ChannelRepository
	integrations integration.IntegrationRepository
	bus          shared.EventPublisher
	logger       *zap.Logger
}

// NewChannelService creates a new ChannelService
func NewChannelService(
	channels catalog.ChannelRepository,
	integrations integration.IntegrationRepository,
	bus shared.EventPublisher,
	logger *zap.Logger,
) *ChannelService {
	return &ChannelService{
		channels:     channels,
		integrations: integrations,
		bus:          bus,
		logger:       logger,
	}
}

// Create creates a new channel
func (s *ChannelService) Create(ctx context.Context, input CreateChannelInput) (*catalog.Channel, error) {
	channel, err := catalog.NewChannel(input.Code, input.Token, input.DefaultCurrency, input.DefaultLanguage)
	if err != nil {
		return nil, err
	}
	channel.IsDefault = input.IsDefault

	if input.IntegrationID != nil {
		if _, err := s.integrations.FindByID(ctx, *input.IntegrationID); err != nil {
			return nil, err
		}
		channel.IntegrationID = input.IntegrationID
	}
	channel.Markup = input.Markup

	if err := s.channels.Save(ctx, channel); err != nil {
		return nil, err
	}
	return channel, nil
}

// GetByID retrieves a channel
func (s *ChannelService) GetByID(ctx context.Context, id uuid.UUID) (*catalog.Channel, error) {
	return s.channels.FindByID(ctx, id)
}

// List retrieves all channels
func (s *ChannelService) List(ctx context.Context) ([]catalog.Channel, error) {
	return s.channels.List(ctx)
}

// UpdateSettings applies a partial settings update. Only keys present in the
// patch are touched; the published event carries that same key list, so an
// update that does not mention the markup never triggers a reprice.
func (s *ChannelService) UpdateSettings(ctx context.Context, id uuid.UUID, patch ChannelSettingsPatch) (*catalog.Channel, error) {
	channel, err := s.channels.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if patch.FieldPresent(catalog.ChannelFieldIntegrationID) {
		if patch.IntegrationID != nil {
			if _, err := s.integrations.FindByID(ctx, *patch.IntegrationID); err != nil {
				return nil, err
			}
		}
		channel.IntegrationID = patch.IntegrationID
	}

	var requestedMarkup float64
	if patch.FieldPresent(catalog.ChannelFieldMarkup) {
		channel.Markup = patch.Markup
		if patch.Markup != nil {
			requestedMarkup = *patch.Markup
		}
	}
	channel.UpdatedAt = time.Now()

	if err := s.channels.Save(ctx, channel); err != nil {
		return nil, err
	}

	event := catalog.NewChannelUpdatedEvent(channel.ID, patch.PresentFields, requestedMarkup)
	if err := s.bus.Publish(ctx, event); err != nil {
		s.logger.Warn("failed to publish channel updated event",
			zap.String("channel_id", channel.ID.String()), zap.Error(err))
	}
	return channel, nil
}

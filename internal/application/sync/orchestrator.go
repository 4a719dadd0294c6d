package sync

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/channelbridge/backend/internal/domain/catalog"
	"github.com/channelbridge/backend/internal/domain/integration"
	"github.com/channelbridge/backend/internal/domain/shared"
	syncdomain "github.com/channelbridge/backend/internal/domain/sync"
)

// Sync event types carried in product sync payloads
const (
	SyncEventCreated = "created"
	SyncEventUpdated = "updated"
	SyncEventDeleted = "deleted"
)

// Orchestrator listens for catalog mutations and propagates them to external
// storefronts. Event handlers only enqueue; the actual HTTP work happens in
// the job executor, which always reloads current state instead of trusting
// the event payload.
type Orchestrator struct {
	products     catalog.ProductRepository
	channels     catalog.ChannelRepository
	integrations integration.IntegrationRepository
	mappings     integration.ProductMappingStore
	clients      integration.ClientRegistry
	mapper       *Mapper
	queue        syncdomain.JobQueue
	logger       *zap.Logger
}

// NewOrchestrator creates a new sync orchestrator
func NewOrchestrator(
	products catalog.ProductRepository,
	channels catalog.ChannelRepository,
	integrations integration.IntegrationRepository,
	mappings integration.ProductMappingStore,
	clients integration.ClientRegistry,
	mapper *Mapper,
	queue syncdomain.JobQueue,
	logger *zap.Logger,
) *Orchestrator {
	o := &Orchestrator{
		products:     products,
		channels:     channels,
		integrations: integrations,
		mappings:     mappings,
		clients:      clients,
		mapper:       mapper,
		queue:        queue,
		logger:       logger,
	}
	queue.Register(syncdomain.QueueProductSync, o.ExecuteSyncJob)
	return o
}

// EventTypes implements shared.EventHandler
func (o *Orchestrator) EventTypes() []string {
	return []string{
		catalog.EventTypeProductCreated,
		catalog.EventTypeProductUpdated,
		catalog.EventTypeProductDeleted,
		catalog.EventTypeVariantCreated,
		catalog.EventTypeVariantUpdated,
		catalog.EventTypeVariantDeleted,
		catalog.EventTypeProductChannelAssigned,
	}
}

// Handle implements shared.EventHandler. It fans a catalog mutation out into
// one sync job per affected (product, channel) pair.
func (o *Orchestrator) Handle(ctx context.Context, event shared.DomainEvent) error {
	switch e := event.(type) {
	case *catalog.ProductCreatedEvent:
		return o.enqueueForAllChannels(ctx, e.ProductID, SyncEventCreated)

	case *catalog.ProductUpdatedEvent:
		return o.enqueueForAllChannels(ctx, e.ProductID, SyncEventUpdated)

	case *catalog.ProductDeletedEvent:
		channelIDs := e.ChannelIDs
		if len(channelIDs) == 0 {
			ids, err := o.products.ChannelIDs(ctx, e.ProductID, true)
			if err != nil {
				return err
			}
			channelIDs = ids
		}
		for _, channelID := range channelIDs {
			if err := o.enqueue(ctx, e.ProductID, channelID, SyncEventDeleted); err != nil {
				return err
			}
		}
		return nil

	// Variant mutations are product updates downstream; a variant delete
	// must not delete the remote product.
	case *catalog.VariantCreatedEvent:
		return o.enqueueForOwningProduct(ctx, e.VariantID)
	case *catalog.VariantUpdatedEvent:
		return o.enqueueForOwningProduct(ctx, e.VariantID)
	case *catalog.VariantDeletedEvent:
		return o.enqueueForAllChannels(ctx, e.ProductID, SyncEventUpdated)

	case *catalog.ProductChannelAssignedEvent:
		return o.enqueue(ctx, e.ProductID, e.TargetChannelID, SyncEventCreated)

	default:
		return nil
	}
}

// enqueueForOwningProduct resolves a variant's product and enqueues an update
// for every channel it belongs to.
func (o *Orchestrator) enqueueForOwningProduct(ctx context.Context, variantID uuid.UUID) error {
	product, err := o.products.FindByVariantID(ctx, variantID)
	if err != nil {
		if errors.Is(err, catalog.ErrVariantNotFound) || errors.Is(err, catalog.ErrProductNotFound) {
			return nil
		}
		return err
	}
	return o.enqueueForAllChannels(ctx, product.ID, SyncEventUpdated)
}

// enqueueForAllChannels enqueues one job per channel the product belongs to
func (o *Orchestrator) enqueueForAllChannels(ctx context.Context, productID uuid.UUID, eventType string) error {
	channelIDs, err := o.products.ChannelIDs(ctx, productID, false)
	if err != nil {
		if errors.Is(err, catalog.ErrProductNotFound) {
			return nil
		}
		return err
	}
	for _, channelID := range channelIDs {
		if err := o.enqueue(ctx, productID, channelID, eventType); err != nil {
			return err
		}
	}
	return nil
}

// enqueue creates one product sync job, unless the channel has no active
// sync-enabled integration.
func (o *Orchestrator) enqueue(ctx context.Context, productID, channelID uuid.UUID, eventType string) error {
	channel, err := o.channels.FindByID(ctx, channelID)
	if err != nil {
		if errors.Is(err, catalog.ErrChannelNotFound) {
			return nil
		}
		return err
	}
	if channel.IntegrationID == nil {
		return nil
	}

	integ, err := o.integrations.FindByID(ctx, *channel.IntegrationID)
	if err != nil {
		// A channel may reference an integration that was deleted; the
		// orphan reference is tolerated and resolved here.
		if errors.Is(err, integration.ErrIntegrationNotFound) {
			return nil
		}
		return err
	}
	if !integ.SyncActive() {
		return nil
	}

	payload := syncdomain.ProductSyncPayload{
		EventType:     eventType,
		ProductID:     productID,
		ChannelID:     channelID,
		IntegrationID: integ.ID,
		LanguageCode:  channel.DefaultLanguage,
	}

	jobID, err := o.queue.Enqueue(ctx, syncdomain.QueueProductSync, payload,
		syncdomain.WithMaxRetries(syncdomain.ProductSyncMaxRetries))
	if err != nil {
		return fmt.Errorf("failed to enqueue product sync job: %w", err)
	}

	o.logger.Debug("product sync job enqueued",
		zap.String("job_id", jobID.String()),
		zap.String("event_type", eventType),
		zap.String("product_id", productID.String()),
		zap.String("channel_id", channelID.String()),
	)
	return nil
}

// ExecuteSyncJob runs one product sync job. Missing channels, products or
// integrations at execution time are benign skips, never errors; remote
// failures propagate so the queue can retry.
func (o *Orchestrator) ExecuteSyncJob(ctx context.Context, job *syncdomain.JobContext) error {
	var payload syncdomain.ProductSyncPayload
	if err := json.Unmarshal(job.Payload, &payload); err != nil {
		return fmt.Errorf("invalid product sync payload: %w", err)
	}

	log := o.logger.With(
		zap.String("job_id", job.JobID.String()),
		zap.String("event_type", payload.EventType),
		zap.String("product_id", payload.ProductID.String()),
		zap.String("channel_id", payload.ChannelID.String()),
	)

	channel, err := o.channels.FindByID(ctx, payload.ChannelID)
	if err != nil {
		if errors.Is(err, catalog.ErrChannelNotFound) {
			log.Info("channel gone, skipping sync job")
			return nil
		}
		return err
	}

	integ, err := o.integrations.FindByID(ctx, payload.IntegrationID)
	if err != nil {
		if errors.Is(err, integration.ErrIntegrationNotFound) {
			log.Info("integration gone, skipping sync job")
			return nil
		}
		return err
	}
	if !integ.SyncActive() {
		log.Info("integration sync no longer active, skipping sync job")
		return nil
	}

	client, err := o.clients.GetClient(integ.Platform)
	if err != nil {
		return err
	}

	if payload.EventType == SyncEventDeleted {
		return o.applyDelete(ctx, log, client, integ, payload.ProductID)
	}
	return o.applyUpsert(ctx, log, client, integ, channel, payload)
}

// applyDelete removes the remote product. Without a mapping there is nothing
// to delete; the mapping is only cleared after the remote delete succeeds so
// a failed attempt can be retried.
func (o *Orchestrator) applyDelete(ctx context.Context, log *zap.Logger, client integration.StorefrontClient, integ *integration.Integration, productID uuid.UUID) error {
	mapping, err := o.mappings.Get(ctx, productID, integ.ID)
	if err != nil {
		if errors.Is(err, integration.ErrMappingNotFound) {
			return nil
		}
		return err
	}

	if err := client.DeleteProduct(ctx, integ, mapping.ExternalID); err != nil {
		return fmt.Errorf("remote delete failed: %w", err)
	}
	if err := o.mappings.Delete(ctx, productID, integ.ID); err != nil {
		return err
	}

	log.Info("remote product deleted", zap.String("external_id", mapping.ExternalID))
	return nil
}

// applyUpsert creates or updates the remote product and reconciles its
// variations.
func (o *Orchestrator) applyUpsert(ctx context.Context, log *zap.Logger, client integration.StorefrontClient, integ *integration.Integration, channel *catalog.Channel, payload syncdomain.ProductSyncPayload) error {
	// Reload the product in the job's channel context. Prices may have
	// changed since enqueue (e.g. a concurrent reprice), so the event
	// payload is never trusted.
	product, err := o.products.FindByID(ctx, payload.ProductID)
	if err != nil {
		if errors.Is(err, catalog.ErrProductNotFound) {
			log.Info("product gone, skipping sync job")
			return nil
		}
		return err
	}
	if !product.InChannel(channel.ID) {
		log.Info("product no longer in channel, skipping sync job")
		return nil
	}

	mapped := o.mapper.MapProduct(product, channel, payload.LanguageCode)

	externalID, err := o.resolveExternalID(ctx, log, client, integ, product.ID, mapped)
	if err != nil {
		return err
	}

	// A stale or wrongly-typed remote record cannot be updated in place.
	externalID, err = o.verifyRemoteType(ctx, log, client, integ, product.ID, externalID, mapped.Product.Type)
	if err != nil {
		return err
	}

	var remote *integration.RemoteProduct
	if externalID != "" {
		remote, err = client.UpdateProduct(ctx, integ, externalID, mapped.Product)
		if err != nil {
			return fmt.Errorf("remote update failed: %w", err)
		}
	} else {
		remote, err = client.CreateProduct(ctx, integ, mapped.Product)
		if err != nil {
			return fmt.Errorf("remote create failed: %w", err)
		}
		if err := o.mappings.Save(ctx, integration.NewProductMapping(product.ID, integ.ID, remote.ID, remote.SKU)); err != nil {
			return err
		}
		log.Info("remote product created", zap.String("external_id", remote.ID))
	}

	if mapped.Product.Type == integration.ProductTypeVariable {
		return o.reconcileVariations(ctx, log, client, integ, remote.ID, mapped.Variations)
	}
	return nil
}

// resolveExternalID looks up the stored mapping, falling back to a SKU-based
// remote lookup so pre-existing remote records are adopted instead of
// duplicated.
func (o *Orchestrator) resolveExternalID(ctx context.Context, log *zap.Logger, client integration.StorefrontClient, integ *integration.Integration, productID uuid.UUID, mapped *MappedProduct) (string, error) {
	mapping, err := o.mappings.Get(ctx, productID, integ.ID)
	if err == nil {
		return mapping.ExternalID, nil
	}
	if !errors.Is(err, integration.ErrMappingNotFound) {
		return "", err
	}

	sku := mapped.Product.SKU
	if sku == "" {
		return "", nil
	}

	remote, err := client.FindProductBySKU(ctx, integ, sku)
	if err != nil {
		return "", fmt.Errorf("sku lookup failed: %w", err)
	}
	if remote == nil {
		return "", nil
	}

	if err := o.mappings.Save(ctx, integration.NewProductMapping(productID, integ.ID, remote.ID, remote.SKU)); err != nil {
		return "", err
	}
	log.Info("adopted existing remote product by sku",
		zap.String("external_id", remote.ID),
		zap.String("sku", sku),
	)
	return remote.ID, nil
}

// verifyRemoteType checks the remote record still exists and has the desired
// product type. A type mismatch forces a delete-and-recreate since the remote
// platform cannot change a product's type in place. Returns the (possibly
// cleared) external id.
func (o *Orchestrator) verifyRemoteType(ctx context.Context, log *zap.Logger, client integration.StorefrontClient, integ *integration.Integration, productID uuid.UUID, externalID string, desiredType integration.ProductType) (string, error) {
	if externalID == "" {
		return "", nil
	}

	remote, err := client.GetProduct(ctx, integ, externalID)
	if err != nil {
		if errors.Is(err, integration.ErrRemoteProductNotFound) {
			if err := o.mappings.Delete(ctx, productID, integ.ID); err != nil {
				return "", err
			}
			log.Info("remote product vanished, mapping cleared", zap.String("external_id", externalID))
			return "", nil
		}
		return "", err
	}

	if remote.Type == desiredType {
		return externalID, nil
	}

	if err := client.DeleteProduct(ctx, integ, externalID); err != nil {
		return "", fmt.Errorf("failed to delete mistyped remote product: %w", err)
	}
	if err := o.mappings.Delete(ctx, productID, integ.ID); err != nil {
		return "", err
	}
	log.Info("remote product type mismatch, recreating",
		zap.String("external_id", externalID),
		zap.String("remote_type", string(remote.Type)),
		zap.String("desired_type", string(desiredType)),
	)
	return "", nil
}

// reconcileVariations matches remote variations to local variants by the
// back-reference metadata and updates or creates each one. Per-variation
// failures are logged and do not abort sibling variations. A failed listing
// aborts the whole reconciliation: without the remote set every variant would
// look unmatched and be created again, so the error goes back to the queue
// for a retry instead.
func (o *Orchestrator) reconcileVariations(ctx context.Context, log *zap.Logger, client integration.StorefrontClient, integ *integration.Integration, externalProductID string, variations []integration.VariationPayload) error {
	remoteVariations, err := client.ListVariations(ctx, integ, externalProductID)
	if err != nil {
		return fmt.Errorf("failed to list remote variations: %w", err)
	}

	remoteByVariant := make(map[uuid.UUID]string, len(remoteVariations))
	for i := range remoteVariations {
		if variantID, ok := remoteVariations[i].LocalVariantID(); ok {
			remoteByVariant[variantID] = remoteVariations[i].ID
		}
	}

	for i := range variations {
		variation := &variations[i]
		variantID, ok := localVariantID(variation)
		if !ok {
			continue
		}

		if remoteID, matched := remoteByVariant[variantID]; matched {
			if _, err := client.UpdateVariation(ctx, integ, externalProductID, remoteID, variation); err != nil {
				log.Warn("variation update failed",
					zap.String("variant_id", variantID.String()),
					zap.String("remote_variation_id", remoteID),
					zap.Error(err),
				)
			}
			continue
		}

		if _, err := client.CreateVariation(ctx, integ, externalProductID, variation); err != nil {
			log.Warn("variation create failed",
				zap.String("variant_id", variantID.String()),
				zap.Error(err),
			)
		}
	}
	return nil
}

// Ensure Orchestrator implements shared.EventHandler
var _ shared.EventHandler = (*Orchestrator)(nil)

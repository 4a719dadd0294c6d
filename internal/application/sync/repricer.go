package sync

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/channelbridge/backend/internal/domain/catalog"
	"github.com/channelbridge/backend/internal/domain/shared"
	syncdomain "github.com/channelbridge/backend/internal/domain/sync"
)

// DefaultRepriceBatchSize is how many products one repricing batch covers
const DefaultRepriceBatchSize = 250

// Repricer recomputes every channel-scoped variant price when a channel's
// markup changes, in deterministic product-id order, and republishes product
// updated events so the sync orchestrator pushes the new prices out.
type Repricer struct {
	products  catalog.ProductRepository
	channels  catalog.ChannelRepository
	prices    catalog.VariantPriceRepository
	publisher shared.EventPublisher
	queue     syncdomain.JobQueue
	batchSize int
	logger    *zap.Logger
}

// NewRepricer creates a new channel repricing engine
func NewRepricer(
	products catalog.ProductRepository,
	channels catalog.ChannelRepository,
	prices catalog.VariantPriceRepository,
	publisher shared.EventPublisher,
	queue syncdomain.JobQueue,
	batchSize int,
	logger *zap.Logger,
) *Repricer {
	if batchSize <= 0 {
		batchSize = DefaultRepriceBatchSize
	}
	r := &Repricer{
		products:  products,
		channels:  channels,
		prices:    prices,
		publisher: publisher,
		queue:     queue,
		batchSize: batchSize,
		logger:    logger,
	}
	queue.Register(syncdomain.QueueChannelReprice, r.ExecuteRepriceJob)
	return r
}

// EventTypes implements shared.EventHandler
func (r *Repricer) EventTypes() []string {
	return []string{catalog.EventTypeChannelUpdated}
}

// Handle implements shared.EventHandler. Only updates that actually carry the
// markup field trigger a reprice; an absent key means "no markup change" even
// when the stored markup is non-zero.
func (r *Repricer) Handle(ctx context.Context, event shared.DomainEvent) error {
	updated, ok := event.(*catalog.ChannelUpdatedEvent)
	if !ok {
		return nil
	}
	if !updated.FieldUpdated(catalog.ChannelFieldMarkup) {
		return nil
	}

	payload := syncdomain.ChannelRepricePayload{
		ChannelID:       updated.TargetChannelID,
		RequestedMarkup: updated.RequestedMarkup,
	}

	jobID, err := r.queue.Enqueue(ctx, syncdomain.QueueChannelReprice, payload,
		syncdomain.WithMaxRetries(syncdomain.ChannelRepriceMaxRetries))
	if err != nil {
		return fmt.Errorf("failed to enqueue reprice job: %w", err)
	}

	r.logger.Info("channel reprice job enqueued",
		zap.String("job_id", jobID.String()),
		zap.String("channel_id", updated.TargetChannelID.String()),
		zap.Float64("requested_markup", updated.RequestedMarkup),
	)
	return nil
}

// ExecuteRepriceJob runs one channel repricing job. The channel's current
// persisted markup is reloaded rather than the requested value, so concurrent
// markup edits converge on the latest setting.
func (r *Repricer) ExecuteRepriceJob(ctx context.Context, job *syncdomain.JobContext) error {
	var payload syncdomain.ChannelRepricePayload
	if err := json.Unmarshal(job.Payload, &payload); err != nil {
		return fmt.Errorf("invalid reprice payload: %w", err)
	}

	log := r.logger.With(
		zap.String("job_id", job.JobID.String()),
		zap.String("channel_id", payload.ChannelID.String()),
	)

	channel, err := r.channels.FindByID(ctx, payload.ChannelID)
	if err != nil {
		if errors.Is(err, catalog.ErrChannelNotFound) {
			log.Info("channel gone, skipping reprice job")
			return nil
		}
		return err
	}

	productIDs, err := r.products.ListProductIDsInChannel(ctx, channel.ID)
	if err != nil {
		return err
	}
	if len(productIDs) == 0 {
		log.Info("channel has no products, reprice complete")
		return nil
	}

	totalBatches := (len(productIDs) + r.batchSize - 1) / r.batchSize
	log.Info("reprice started",
		zap.Float64("markup", channel.MarkupPercent()),
		zap.Int("products", len(productIDs)),
		zap.Int("batches", totalBatches),
	)

	var result repriceResult
	for batch := 0; batch < totalBatches; batch++ {
		start := batch * r.batchSize
		end := start + r.batchSize
		if end > len(productIDs) {
			end = len(productIDs)
		}

		if err := r.repriceBatch(ctx, log, channel, productIDs[start:end], &result); err != nil {
			return err
		}

		job.SetProgress(int(math.Round(float64(batch+1) / float64(totalBatches) * 100)))
	}

	log.Info("reprice complete",
		zap.Int("success", result.Success),
		zap.Int("failed", result.Failed),
	)
	if result.Failed > 0 {
		log.Warn("some products were not repriced", zap.Strings("errors", result.Errors))
	}
	return nil
}

// repriceResult accumulates per-product outcomes across batches. One product's
// failure never aborts its siblings.
type repriceResult struct {
	Success int
	Failed  int
	Errors  []string
}

// repriceBatch loads one batch of products with their channel price rows,
// recomputes every variant price from the default-channel base price, persists
// each product's rows and republishes product updated events. Persist failures
// are recorded per product and siblings continue.
func (r *Repricer) repriceBatch(ctx context.Context, log *zap.Logger, channel *catalog.Channel, productIDs []uuid.UUID, result *repriceResult) error {
	products, err := r.products.FindBatchWithPrices(ctx, channel.ID, productIDs)
	if err != nil {
		return err
	}

	now := time.Now()
	for i := range products {
		product := &products[i]

		var rows []catalog.VariantPrice
		for j := range product.Variants {
			variant := &product.Variants[j]

			newPrice := channel.ApplyMarkup(variant.BasePrice())

			row := catalog.VariantPrice{
				ID:           uuid.New(),
				VariantID:    variant.ID,
				ChannelID:    channel.ID,
				CurrencyCode: channel.DefaultCurrency,
				Price:        newPrice,
				UpdatedAt:    now,
			}
			if existing, ok := variant.PriceForChannel(channel.ID); ok {
				row.ID = existing.ID
			}
			rows = append(rows, row)
		}

		if err := r.prices.UpsertBatch(ctx, rows); err != nil {
			result.Failed++
			result.Errors = append(result.Errors, fmt.Sprintf("product %s: %v", product.ID, err))
			log.Warn("failed to persist repriced rows",
				zap.String("product_id", product.ID.String()),
				zap.Error(err),
			)
			continue
		}
		result.Success++

		event := catalog.NewProductUpdatedEvent(product.ID)
		if err := r.publisher.Publish(ctx, event); err != nil {
			log.Warn("failed to republish product update",
				zap.String("product_id", product.ID.String()),
				zap.Error(err),
			)
		}
	}
	return nil
}

// Ensure Repricer implements shared.EventHandler
var _ shared.EventHandler = (*Repricer)(nil)

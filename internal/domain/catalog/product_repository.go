package catalog

import (
	"context"

	"github.com/google/uuid"
)

// ProductReader defines the read side of product persistence
type ProductReader interface {
	// FindByID loads a product with all relations (variants, prices, assets,
	// facet values, translations, channel memberships). Soft-deleted
	// products are excluded.
	FindByID(ctx context.Context, id uuid.UUID) (*Product, error)

	// FindByIDIncludingDeleted loads a product even when soft-deleted, with
	// its historical channel memberships.
	FindByIDIncludingDeleted(ctx context.Context, id uuid.UUID) (*Product, error)

	// FindByVariantID resolves the owning product of a variant
	FindByVariantID(ctx context.Context, variantID uuid.UUID) (*Product, error)

	// ChannelIDs returns the channels a product is assigned to. When
	// includeDeleted is true, historical memberships of soft-deleted
	// products are included.
	ChannelIDs(ctx context.Context, productID uuid.UUID, includeDeleted bool) ([]uuid.UUID, error)
}

// ProductChannelReader provides channel-scoped product access
type ProductChannelReader interface {
	// ListProductIDsInChannel returns the ids of all products assigned to a
	// channel, ordered ascending by id for deterministic batching.
	ListProductIDsInChannel(ctx context.Context, channelID uuid.UUID) ([]uuid.UUID, error)

	// FindBatchWithPrices loads the given products with their variants and
	// channel-scoped price rows (for the given channel plus the default
	// channel base prices).
	FindBatchWithPrices(ctx context.Context, channelID uuid.UUID, productIDs []uuid.UUID) ([]Product, error)
}

// ProductWriter defines the write side of product persistence
type ProductWriter interface {
	// Save creates or updates a product with its variants
	Save(ctx context.Context, product *Product) error

	// Delete soft-deletes a product, preserving channel membership rows
	Delete(ctx context.Context, id uuid.UUID) error

	// AssignToChannel adds a product to a channel (no-op when already assigned)
	AssignToChannel(ctx context.Context, productID, channelID uuid.UUID) error

	// RemoveFromChannel removes a product from a channel
	RemoveFromChannel(ctx context.Context, productID, channelID uuid.UUID) error
}

// ProductRepository is the full product persistence interface
type ProductRepository interface {
	ProductReader
	ProductChannelReader
	ProductWriter
}

// ChannelRepository defines channel persistence
type ChannelRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*Channel, error)
	FindByToken(ctx context.Context, token string) (*Channel, error)
	FindDefault(ctx context.Context) (*Channel, error)
	List(ctx context.Context) ([]Channel, error)
	Save(ctx context.Context, channel *Channel) error
}

// VariantPriceRepository defines persistence for channel-scoped price rows
type VariantPriceRepository interface {
	// FindByVariantAndChannel returns the price row for one (variant, channel)
	// key, or nil when absent.
	FindByVariantAndChannel(ctx context.Context, variantID, channelID uuid.UUID) (*VariantPrice, error)

	// UpsertBatch inserts new rows and updates existing ones in a single
	// transaction, keyed by (variant_id, channel_id).
	UpsertBatch(ctx context.Context, prices []VariantPrice) error
}

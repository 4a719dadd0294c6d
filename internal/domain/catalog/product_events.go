package catalog

import (
	"github.com/channelbridge/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// Event type constants
const (
	EventTypeProductCreated         = "ProductCreated"
	EventTypeProductUpdated         = "ProductUpdated"
	EventTypeProductDeleted         = "ProductDeleted"
	EventTypeVariantCreated         = "ProductVariantCreated"
	EventTypeVariantUpdated         = "ProductVariantUpdated"
	EventTypeVariantDeleted         = "ProductVariantDeleted"
	EventTypeProductChannelAssigned = "ProductChannelAssigned"
)

// ProductCreatedEvent is published when a new product is created
type ProductCreatedEvent struct {
	shared.BaseDomainEvent
	ProductID uuid.UUID `json:"product_id"`
	Slug      string    `json:"slug"`
}

// NewProductCreatedEvent creates a new ProductCreatedEvent
func NewProductCreatedEvent(product *Product) *ProductCreatedEvent {
	return &ProductCreatedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeProductCreated, AggregateTypeProduct, product.ID),
		ProductID:       product.ID,
		Slug:            product.Slug,
	}
}

// ProductUpdatedEvent is published when a product is updated. Synthetic
// republishes (e.g. after a channel reprice) use the same event type so
// downstream consumers cannot tell the difference.
type ProductUpdatedEvent struct {
	shared.BaseDomainEvent
	ProductID uuid.UUID `json:"product_id"`
}

// NewProductUpdatedEvent creates a new ProductUpdatedEvent
func NewProductUpdatedEvent(productID uuid.UUID) *ProductUpdatedEvent {
	return &ProductUpdatedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeProductUpdated, AggregateTypeProduct, productID),
		ProductID:       productID,
	}
}

// ProductDeletedEvent is published when a product is deleted.
// ChannelIDs carries the channels the product belonged to at deletion time,
// since the membership rows may already be gone when the event is handled.
type ProductDeletedEvent struct {
	shared.BaseDomainEvent
	ProductID  uuid.UUID   `json:"product_id"`
	ChannelIDs []uuid.UUID `json:"channel_ids"`
}

// NewProductDeletedEvent creates a new ProductDeletedEvent
func NewProductDeletedEvent(product *Product) *ProductDeletedEvent {
	return &ProductDeletedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeProductDeleted, AggregateTypeProduct, product.ID),
		ProductID:       product.ID,
		ChannelIDs:      product.ChannelIDs,
	}
}

// VariantCreatedEvent is published when a variant is added to a product
type VariantCreatedEvent struct {
	shared.BaseDomainEvent
	VariantID uuid.UUID `json:"variant_id"`
	ProductID uuid.UUID `json:"product_id"`
	SKU       string    `json:"sku"`
}

// NewVariantCreatedEvent creates a new VariantCreatedEvent
func NewVariantCreatedEvent(variant *ProductVariant) *VariantCreatedEvent {
	return &VariantCreatedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeVariantCreated, AggregateTypeVariant, variant.ID),
		VariantID:       variant.ID,
		ProductID:       variant.ProductID,
		SKU:             variant.SKU,
	}
}

// VariantUpdatedEvent is published when a variant is updated
type VariantUpdatedEvent struct {
	shared.BaseDomainEvent
	VariantID uuid.UUID `json:"variant_id"`
	ProductID uuid.UUID `json:"product_id"`
}

// NewVariantUpdatedEvent creates a new VariantUpdatedEvent
func NewVariantUpdatedEvent(variant *ProductVariant) *VariantUpdatedEvent {
	return &VariantUpdatedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeVariantUpdated, AggregateTypeVariant, variant.ID),
		VariantID:       variant.ID,
		ProductID:       variant.ProductID,
	}
}

// VariantDeletedEvent is published when a variant is removed from a product.
// Downstream sync treats this as a product update, not a product delete.
type VariantDeletedEvent struct {
	shared.BaseDomainEvent
	VariantID uuid.UUID `json:"variant_id"`
	ProductID uuid.UUID `json:"product_id"`
}

// NewVariantDeletedEvent creates a new VariantDeletedEvent
func NewVariantDeletedEvent(variant *ProductVariant) *VariantDeletedEvent {
	return &VariantDeletedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeVariantDeleted, AggregateTypeVariant, variant.ID),
		VariantID:       variant.ID,
		ProductID:       variant.ProductID,
	}
}

// ProductChannelAssignedEvent is published when a product is assigned to a channel
type ProductChannelAssignedEvent struct {
	shared.BaseDomainEvent
	ProductID       uuid.UUID `json:"product_id"`
	TargetChannelID uuid.UUID `json:"target_channel_id"`
}

// NewProductChannelAssignedEvent creates a new ProductChannelAssignedEvent
func NewProductChannelAssignedEvent(productID, channelID uuid.UUID) *ProductChannelAssignedEvent {
	return &ProductChannelAssignedEvent{
		BaseDomainEvent: shared.NewChannelScopedEvent(EventTypeProductChannelAssigned, AggregateTypeProduct, productID, channelID),
		ProductID:       productID,
		TargetChannelID: channelID,
	}
}

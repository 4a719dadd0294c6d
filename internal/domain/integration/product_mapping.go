package integration

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
)

// ErrMappingNotFound is returned when no mapping exists for a
// (product, integration) pair
var ErrMappingNotFound = errors.New("integration: product mapping not found")

// ProductMapping links a local product to its counterpart on one external
// platform. One product can be mapped to multiple integrations, but at most
// once per integration.
type ProductMapping struct {
	ID            uuid.UUID
	ProductID     uuid.UUID
	IntegrationID uuid.UUID

	// ExternalID is the remote platform's product identifier
	ExternalID string

	// ExternalSKU is the SKU the remote record carries, recorded so that
	// adopted products (matched by SKU rather than created by us) can be
	// traced back.
	ExternalSKU string

	CreatedAt time.Time
	UpdatedAt time.Time
}

// NewProductMapping creates a mapping between a local product and a remote one
func NewProductMapping(productID, integrationID uuid.UUID, externalID, externalSKU string) *ProductMapping {
	now := time.Now()
	return &ProductMapping{
		ID:            uuid.New(),
		ProductID:     productID,
		IntegrationID: integrationID,
		ExternalID:    externalID,
		ExternalSKU:   externalSKU,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
}

// ProductMappingStore defines mapping persistence. Save is an upsert keyed by
// (product_id, integration_id).
type ProductMappingStore interface {
	// Get returns the mapping for a (product, integration) pair or
	// ErrMappingNotFound.
	Get(ctx context.Context, productID, integrationID uuid.UUID) (*ProductMapping, error)

	// Save inserts or replaces the mapping for its (product, integration) key
	Save(ctx context.Context, mapping *ProductMapping) error

	// Delete removes the mapping for a (product, integration) pair. Deleting
	// a missing mapping is not an error.
	Delete(ctx context.Context, productID, integrationID uuid.UUID) error

	// DeleteByIntegration removes every mapping of one integration, used when
	// the integration itself is deleted.
	DeleteByIntegration(ctx context.Context, integrationID uuid.UUID) error
}

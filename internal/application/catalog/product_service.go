package catalog

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/channelbridge/backend/internal/domain/catalog"
	"github.com/channelbridge/backend/internal/domain/shared"
)

// ProductService handles product write operations. Every mutation publishes
// the corresponding domain event after the write succeeds, which is what
// drives downstream storefront synchronization.
type ProductService struct {
	products catalog.ProductRepository
	channels catalog.ChannelRepository
	bus      shared.EventPublisher
	logger   *zap.Logger
}

// NewProductService creates a new ProductService
func NewProductService(
	products catalog.ProductRepository,
	channels catalog.ChannelRepository,
	bus shared.EventPublisher,
	logger *zap.Logger,
) *ProductService {
	return &ProductService{
		products: products,
		channels: channels,
		bus:      bus,
		logger:   logger,
	}
}

// Create creates a new product with its variants and channel assignments
func (s *ProductService) Create(ctx context.Context, input CreateProductInput) (*catalog.Product, error) {
	product, err := catalog.NewProduct(input.Name, input.Slug)
	if err != nil {
		return nil, err
	}
	product.Description = input.Description
	if input.Enabled != nil {
		product.Enabled = *input.Enabled
	}
	product.FacetValues = input.FacetValues
	product.Translations = input.Translations

	for _, v := range input.Variants {
		variant, err := buildVariant(product.ID, v)
		if err != nil {
			return nil, err
		}
		product.Variants = append(product.Variants, *variant)
	}

	for _, channelID := range input.ChannelIDs {
		if _, err := s.channels.FindByID(ctx, channelID); err != nil {
			return nil, err
		}
		product.ChannelIDs = append(product.ChannelIDs, channelID)
	}

	if err := s.products.Save(ctx, product); err != nil {
		return nil, err
	}
	for _, channelID := range product.ChannelIDs {
		if err := s.products.AssignToChannel(ctx, product.ID, channelID); err != nil {
			return nil, err
		}
	}

	if err := s.bus.Publish(ctx, catalog.NewProductCreatedEvent(product)); err != nil {
		s.logger.Warn("failed to publish product created event",
			zap.String("product_id", product.ID.String()), zap.Error(err))
	}
	return product, nil
}

// GetByID retrieves a product with all relations
func (s *ProductService) GetByID(ctx context.Context, id uuid.UUID) (*catalog.Product, error) {
	return s.products.FindByID(ctx, id)
}

// Update applies a partial update to a product
func (s *ProductService) Update(ctx context.Context, id uuid.UUID, input UpdateProductInput) (*catalog.Product, error) {
	product, err := s.products.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if input.Name != nil {
		if strings.TrimSpace(*input.Name) == "" {
			return nil, catalog.ErrProductNameEmpty
		}
		product.Name = strings.TrimSpace(*input.Name)
	}
	if input.Slug != nil {
		if strings.TrimSpace(*input.Slug) == "" {
			return nil, catalog.ErrProductSlugEmpty
		}
		product.Slug = strings.TrimSpace(*input.Slug)
	}
	if input.Description != nil {
		product.Description = *input.Description
	}
	if input.Enabled != nil {
		product.Enabled = *input.Enabled
	}
	if input.FacetValues != nil {
		product.FacetValues = input.FacetValues
	}
	if input.Translations != nil {
		product.Translations = input.Translations
	}
	product.UpdatedAt = time.Now()

	if err := s.products.Save(ctx, product); err != nil {
		return nil, err
	}

	if err := s.bus.Publish(ctx, catalog.NewProductUpdatedEvent(product.ID)); err != nil {
		s.logger.Warn("failed to publish product updated event",
			zap.String("product_id", product.ID.String()), zap.Error(err))
	}
	return product, nil
}

// Delete soft-deletes a product. The deletion event carries the channel
// memberships captured before the delete so sync jobs can still target them.
func (s *ProductService) Delete(ctx context.Context, id uuid.UUID) error {
	product, err := s.products.FindByID(ctx, id)
	if err != nil {
		return err
	}

	if err := s.products.Delete(ctx, id); err != nil {
		return err
	}

	if err := s.bus.Publish(ctx, catalog.NewProductDeletedEvent(product)); err != nil {
		s.logger.Warn("failed to publish product deleted event",
			zap.String("product_id", id.String()), zap.Error(err))
	}
	return nil
}

// AddVariant adds a variant to an existing product
func (s *ProductService) AddVariant(ctx context.Context, productID uuid.UUID, input VariantInput) (*catalog.ProductVariant, error) {
	product, err := s.products.FindByID(ctx, productID)
	if err != nil {
		return nil, err
	}

	variant, err := buildVariant(productID, input)
	if err != nil {
		return nil, err
	}
	product.Variants = append(product.Variants, *variant)

	if err := s.products.Save(ctx, product); err != nil {
		return nil, err
	}

	if err := s.bus.Publish(ctx, catalog.NewVariantCreatedEvent(variant)); err != nil {
		s.logger.Warn("failed to publish variant created event",
			zap.String("variant_id", variant.ID.String()), zap.Error(err))
	}
	return variant, nil
}

// UpdateVariant updates one variant of a product
func (s *ProductService) UpdateVariant(ctx context.Context, productID, variantID uuid.UUID, input VariantInput) (*catalog.ProductVariant, error) {
	product, err := s.products.FindByID(ctx, productID)
	if err != nil {
		return nil, err
	}
	variant, ok := product.VariantByID(variantID)
	if !ok {
		return nil, catalog.ErrVariantNotFound
	}

	if input.SKU != "" {
		variant.SKU = input.SKU
	}
	variant.Name = input.Name
	variant.ListPrice = input.ListPrice
	variant.Price = input.Price
	if input.CurrencyCode != "" {
		variant.CurrencyCode = input.CurrencyCode
	}
	variant.StockOnHand = input.StockOnHand
	variant.OutOfStockThreshold = input.OutOfStockThreshold
	if input.Options != nil {
		variant.Options = input.Options
	}
	if input.FacetValues != nil {
		variant.FacetValues = input.FacetValues
	}
	if input.Translations != nil {
		variant.Translations = input.Translations
	}
	variant.UpdatedAt = time.Now()

	if err := s.products.Save(ctx, product); err != nil {
		return nil, err
	}

	if err := s.bus.Publish(ctx, catalog.NewVariantUpdatedEvent(variant)); err != nil {
		s.logger.Warn("failed to publish variant updated event",
			zap.String("variant_id", variantID.String()), zap.Error(err))
	}
	return variant, nil
}

// RemoveVariant removes a variant from a product. Downstream this is a
// product update, never a remote product delete.
func (s *ProductService) RemoveVariant(ctx context.Context, productID, variantID uuid.UUID) error {
	product, err := s.products.FindByID(ctx, productID)
	if err != nil {
		return err
	}

	var removed *catalog.ProductVariant
	kept := product.Variants[:0]
	for i := range product.Variants {
		if product.Variants[i].ID == variantID {
			v := product.Variants[i]
			removed = &v
			continue
		}
		kept = append(kept, product.Variants[i])
	}
	if removed == nil {
		return catalog.ErrVariantNotFound
	}
	product.Variants = kept

	if err := s.products.Save(ctx, product); err != nil {
		return err
	}

	if err := s.bus.Publish(ctx, catalog.NewVariantDeletedEvent(removed)); err != nil {
		s.logger.Warn("failed to publish variant deleted event",
			zap.String("variant_id", variantID.String()), zap.Error(err))
	}
	return nil
}

// AssignToChannel adds a product to a channel and triggers its initial sync
// into that channel.
func (s *ProductService) AssignToChannel(ctx context.Context, productID, channelID uuid.UUID) error {
	if _, err := s.products.FindByID(ctx, productID); err != nil {
		return err
	}
	if _, err := s.channels.FindByID(ctx, channelID); err != nil {
		return err
	}

	if err := s.products.AssignToChannel(ctx, productID, channelID); err != nil {
		return err
	}

	if err := s.bus.Publish(ctx, catalog.NewProductChannelAssignedEvent(productID, channelID)); err != nil {
		s.logger.Warn("failed to publish channel assignment event",
			zap.String("product_id", productID.String()),
			zap.String("channel_id", channelID.String()),
			zap.Error(err))
	}
	return nil
}

// RemoveFromChannel removes a product from a channel
func (s *ProductService) RemoveFromChannel(ctx context.Context, productID, channelID uuid.UUID) error {
	return s.products.RemoveFromChannel(ctx, productID, channelID)
}

func buildVariant(productID uuid.UUID, input VariantInput) (*catalog.ProductVariant, error) {
	if strings.TrimSpace(input.SKU) == "" {
		return nil, catalog.ErrVariantSKUEmpty
	}
	id := uuid.New()
	if input.ID != nil {
		id = *input.ID
	}
	now := time.Now()
	return &catalog.ProductVariant{
		ID:                  id,
		ProductID:           productID,
		SKU:                 strings.TrimSpace(input.SKU),
		Name:                input.Name,
		Enabled:             true,
		ListPrice:           input.ListPrice,
		Price:               input.Price,
		CurrencyCode:        input.CurrencyCode,
		StockOnHand:         input.StockOnHand,
		OutOfStockThreshold: input.OutOfStockThreshold,
		Options:             input.Options,
		FacetValues:         input.FacetValues,
		Translations:        input.Translations,
		CreatedAt:           now,
		UpdatedAt:           now,
	}, nil
}

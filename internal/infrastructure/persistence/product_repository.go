package persistence

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/channelbridge/backend/internal/domain/catalog"
	"github.com/channelbridge/backend/internal/infrastructure/persistence/models"
)

// GormProductRepository implements catalog.ProductRepository using GORM
type GormProductRepository struct {
	db *gorm.DB
}

// NewGormProductRepository creates a new GormProductRepository
func NewGormProductRepository(db *gorm.DB) *GormProductRepository {
	return &GormProductRepository{db: db}
}

// FindByID finds a product by its ID, excluding soft-deleted products
func (r *GormProductRepository) FindByID(ctx context.Context, id uuid.UUID) (*catalog.Product, error) {
	return r.loadProduct(ctx, id, false)
}

// FindByIDIncludingDeleted finds a product even when it is soft-deleted
func (r *GormProductRepository) FindByIDIncludingDeleted(ctx context.Context, id uuid.UUID) (*catalog.Product, error) {
	return r.loadProduct(ctx, id, true)
}

// FindByVariantID resolves the owning product of a variant
func (r *GormProductRepository) FindByVariantID(ctx context.Context, variantID uuid.UUID) (*catalog.Product, error) {
	var variant models.ProductVariantModel
	if err := r.db.WithContext(ctx).
		Select("product_id").
		First(&variant, "id = ?", variantID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, catalog.ErrVariantNotFound
		}
		return nil, err
	}
	return r.loadProduct(ctx, variant.ProductID, false)
}

// ChannelIDs returns the channels a product is assigned to
func (r *GormProductRepository) ChannelIDs(ctx context.Context, productID uuid.UUID, includeDeleted bool) ([]uuid.UUID, error) {
	if !includeDeleted {
		var count int64
		if err := r.db.WithContext(ctx).
			Model(&models.ProductModel{}).
			Where("id = ?", productID).
			Count(&count).Error; err != nil {
			return nil, err
		}
		if count == 0 {
			return nil, catalog.ErrProductNotFound
		}
	}

	var ids []uuid.UUID
	if err := r.db.WithContext(ctx).
		Model(&models.ProductChannelModel{}).
		Where("product_id = ?", productID).
		Order("channel_id ASC").
		Pluck("channel_id", &ids).Error; err != nil {
		return nil, err
	}
	return ids, nil
}

// ListProductIDsInChannel returns the ids of all live products assigned to a
// channel, ordered ascending for deterministic batching.
func (r *GormProductRepository) ListProductIDsInChannel(ctx context.Context, channelID uuid.UUID) ([]uuid.UUID, error) {
	var ids []uuid.UUID
	if err := r.db.WithContext(ctx).
		Model(&models.ProductChannelModel{}).
		Joins("JOIN products ON products.id = product_channels.product_id AND products.deleted_at IS NULL").
		Where("product_channels.channel_id = ?", channelID).
		Order("product_channels.product_id ASC").
		Pluck("product_channels.product_id", &ids).Error; err != nil {
		return nil, err
	}
	return ids, nil
}

// FindBatchWithPrices loads a batch of products with their variants and the
// price rows of the given channel.
func (r *GormProductRepository) FindBatchWithPrices(ctx context.Context, channelID uuid.UUID, productIDs []uuid.UUID) ([]catalog.Product, error) {
	if len(productIDs) == 0 {
		return []catalog.Product{}, nil
	}

	var productModels []models.ProductModel
	if err := r.db.WithContext(ctx).
		Where("id IN ?", productIDs).
		Order("id ASC").
		Find(&productModels).Error; err != nil {
		return nil, err
	}

	var variantModels []models.ProductVariantModel
	if err := r.db.WithContext(ctx).
		Where("product_id IN ?", productIDs).
		Order("created_at ASC").
		Find(&variantModels).Error; err != nil {
		return nil, err
	}

	variantIDs := make([]uuid.UUID, 0, len(variantModels))
	for i := range variantModels {
		variantIDs = append(variantIDs, variantModels[i].ID)
	}

	pricesByVariant, err := r.loadPrices(ctx, variantIDs, &channelID)
	if err != nil {
		return nil, err
	}

	variantsByProduct := make(map[uuid.UUID][]catalog.ProductVariant, len(productModels))
	for i := range variantModels {
		v := variantModels[i].ToDomain()
		v.Prices = pricesByVariant[v.ID]
		variantsByProduct[v.ProductID] = append(variantsByProduct[v.ProductID], *v)
	}

	products := make([]catalog.Product, 0, len(productModels))
	for i := range productModels {
		p := productModels[i].ToDomain()
		p.Variants = variantsByProduct[p.ID]
		p.ChannelIDs = []uuid.UUID{channelID}
		products = append(products, *p)
	}
	return products, nil
}

// Save creates or updates a product and its variants
func (r *GormProductRepository) Save(ctx context.Context, product *catalog.Product) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		productModel := models.ProductModelFromDomain(product)
		if err := tx.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "id"}},
			UpdateAll: true,
		}).Create(productModel).Error; err != nil {
			return err
		}

		for i := range product.Variants {
			variantModel := models.ProductVariantModelFromDomain(&product.Variants[i])
			if err := tx.Clauses(clause.OnConflict{
				Columns:   []clause.Column{{Name: "id"}},
				UpdateAll: true,
			}).Create(variantModel).Error; err != nil {
				return err
			}
		}
		return nil
	})
}

// Delete soft-deletes a product and its variants. Channel membership rows are
// kept so deletion can still be propagated per channel.
func (r *GormProductRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		result := tx.Delete(&models.ProductModel{}, "id = ?", id)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return catalog.ErrProductNotFound
		}
		return tx.Delete(&models.ProductVariantModel{}, "product_id = ?", id).Error
	})
}

// AssignToChannel adds a product to a channel. Assigning an already-assigned
// product is a no-op.
func (r *GormProductRepository) AssignToChannel(ctx context.Context, productID, channelID uuid.UUID) error {
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{DoNothing: true}).
		Create(&models.ProductChannelModel{ProductID: productID, ChannelID: channelID}).Error
}

// RemoveFromChannel removes a product from a channel
func (r *GormProductRepository) RemoveFromChannel(ctx context.Context, productID, channelID uuid.UUID) error {
	return r.db.WithContext(ctx).
		Delete(&models.ProductChannelModel{}, "product_id = ? AND channel_id = ?", productID, channelID).Error
}

// loadProduct loads one product with variants, price rows and channel
// memberships.
func (r *GormProductRepository) loadProduct(ctx context.Context, id uuid.UUID, includeDeleted bool) (*catalog.Product, error) {
	query := r.db.WithContext(ctx)
	if includeDeleted {
		query = query.Unscoped()
	}

	var productModel models.ProductModel
	if err := query.First(&productModel, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, catalog.ErrProductNotFound
		}
		return nil, err
	}

	variantQuery := r.db.WithContext(ctx)
	if includeDeleted {
		variantQuery = variantQuery.Unscoped()
	}
	var variantModels []models.ProductVariantModel
	if err := variantQuery.
		Where("product_id = ?", id).
		Order("created_at ASC").
		Find(&variantModels).Error; err != nil {
		return nil, err
	}

	variantIDs := make([]uuid.UUID, 0, len(variantModels))
	for i := range variantModels {
		variantIDs = append(variantIDs, variantModels[i].ID)
	}
	pricesByVariant, err := r.loadPrices(ctx, variantIDs, nil)
	if err != nil {
		return nil, err
	}

	product := productModel.ToDomain()
	for i := range variantModels {
		v := variantModels[i].ToDomain()
		v.Prices = pricesByVariant[v.ID]
		product.Variants = append(product.Variants, *v)
	}

	channelIDs, err := r.ChannelIDs(ctx, id, true)
	if err != nil {
		return nil, err
	}
	product.ChannelIDs = channelIDs

	return product, nil
}

// loadPrices loads price rows for a set of variants, optionally restricted to
// one channel, grouped by variant id.
func (r *GormProductRepository) loadPrices(ctx context.Context, variantIDs []uuid.UUID, channelID *uuid.UUID) (map[uuid.UUID][]catalog.VariantPrice, error) {
	grouped := make(map[uuid.UUID][]catalog.VariantPrice)
	if len(variantIDs) == 0 {
		return grouped, nil
	}

	query := r.db.WithContext(ctx).Where("variant_id IN ?", variantIDs)
	if channelID != nil {
		query = query.Where("channel_id = ?", *channelID)
	}

	var priceModels []models.VariantPriceModel
	if err := query.Find(&priceModels).Error; err != nil {
		return nil, err
	}
	for i := range priceModels {
		price := priceModels[i].ToDomain()
		grouped[price.VariantID] = append(grouped[price.VariantID], price)
	}
	return grouped, nil
}

// Ensure GormProductRepository implements ProductRepository
var _ catalog.ProductRepository = (*GormProductRepository)(nil)

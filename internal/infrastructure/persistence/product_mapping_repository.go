package persistence

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/channelbridge/backend/internal/domain/integration"
	"github.com/channelbridge/backend/internal/infrastructure/persistence/models"
)

// GormProductMappingRepository implements integration.ProductMappingStore using GORM
type GormProductMappingRepository struct {
	db *gorm.DB
}

// NewGormProductMappingRepository creates a new GormProductMappingRepository
func NewGormProductMappingRepository(db *gorm.DB) *GormProductMappingRepository {
	return &GormProductMappingRepository{db: db}
}

// Get returns the mapping for a (product, integration) pair
func (r *GormProductMappingRepository) Get(ctx context.Context, productID, integrationID uuid.UUID) (*integration.ProductMapping, error) {
	var model models.ProductMappingModel
	if err := r.db.WithContext(ctx).
		Where("product_id = ? AND integration_id = ?", productID, integrationID).
		First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, integration.ErrMappingNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// Save inserts or replaces the mapping for its (product, integration) key
func (r *GormProductMappingRepository) Save(ctx context.Context, mapping *integration.ProductMapping) error {
	if mapping.UpdatedAt.IsZero() {
		mapping.UpdatedAt = time.Now()
	}
	model := models.ProductMappingModelFromDomain(mapping)
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "product_id"}, {Name: "integration_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"external_id", "external_sku", "updated_at"}),
	}).Create(model).Error
}

// Delete removes the mapping for a (product, integration) pair. Deleting a
// missing mapping is not an error.
func (r *GormProductMappingRepository) Delete(ctx context.Context, productID, integrationID uuid.UUID) error {
	return r.db.WithContext(ctx).
		Delete(&models.ProductMappingModel{}, "product_id = ? AND integration_id = ?", productID, integrationID).Error
}

// DeleteByIntegration removes every mapping of one integration
func (r *GormProductMappingRepository) DeleteByIntegration(ctx context.Context, integrationID uuid.UUID) error {
	return r.db.WithContext(ctx).
		Delete(&models.ProductMappingModel{}, "integration_id = ?", integrationID).Error
}

// Ensure GormProductMappingRepository implements ProductMappingStore
var _ integration.ProductMappingStore = (*GormProductMappingRepository)(nil)

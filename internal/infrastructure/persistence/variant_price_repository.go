package persistence

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/channelbridge/backend/internal/domain/catalog"
	"github.com/channelbridge/backend/internal/infrastructure/persistence/models"
)

// GormVariantPriceRepository implements catalog.VariantPriceRepository using GORM
type GormVariantPriceRepository struct {
	db *gorm.DB
}

// NewGormVariantPriceRepository creates a new GormVariantPriceRepository
func NewGormVariantPriceRepository(db *gorm.DB) *GormVariantPriceRepository {
	return &GormVariantPriceRepository{db: db}
}

// FindByVariantAndChannel returns the price row for one (variant, channel)
// key, or nil when absent.
func (r *GormVariantPriceRepository) FindByVariantAndChannel(ctx context.Context, variantID, channelID uuid.UUID) (*catalog.VariantPrice, error) {
	var model models.VariantPriceModel
	if err := r.db.WithContext(ctx).
		Where("variant_id = ? AND channel_id = ?", variantID, channelID).
		First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	price := model.ToDomain()
	return &price, nil
}

// UpsertBatch inserts new price rows and updates existing ones in a single
// transaction, keyed by (variant_id, channel_id).
func (r *GormVariantPriceRepository) UpsertBatch(ctx context.Context, prices []catalog.VariantPrice) error {
	if len(prices) == 0 {
		return nil
	}

	now := time.Now()
	priceModels := make([]models.VariantPriceModel, 0, len(prices))
	for _, p := range prices {
		if p.ID == uuid.Nil {
			p.ID = uuid.New()
		}
		if p.UpdatedAt.IsZero() {
			p.UpdatedAt = now
		}
		priceModels = append(priceModels, *models.VariantPriceModelFromDomain(p))
	}

	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "variant_id"}, {Name: "channel_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"price", "currency_code", "updated_at"}),
	}).Create(&priceModels).Error
}

// Ensure GormVariantPriceRepository implements VariantPriceRepository
var _ catalog.VariantPriceRepository = (*GormVariantPriceRepository)(nil)

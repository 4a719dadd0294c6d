package persistence

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/channelbridge/backend/internal/domain/integration"
	"github.com/channelbridge/backend/internal/infrastructure/persistence/models"
)

// GormIntegrationRepository implements integration.IntegrationRepository using GORM
type GormIntegrationRepository struct {
	db *gorm.DB
}

// NewGormIntegrationRepository creates a new GormIntegrationRepository
func NewGormIntegrationRepository(db *gorm.DB) *GormIntegrationRepository {
	return &GormIntegrationRepository{db: db}
}

// FindByID finds an integration by its ID
func (r *GormIntegrationRepository) FindByID(ctx context.Context, id uuid.UUID) (*integration.Integration, error) {
	var model models.IntegrationModel
	if err := r.db.WithContext(ctx).First(&model, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, integration.ErrIntegrationNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// List returns all integrations ordered by creation time
func (r *GormIntegrationRepository) List(ctx context.Context) ([]integration.Integration, error) {
	var integrationModels []models.IntegrationModel
	if err := r.db.WithContext(ctx).Order("created_at ASC").Find(&integrationModels).Error; err != nil {
		return nil, err
	}

	integrations := make([]integration.Integration, 0, len(integrationModels))
	for i := range integrationModels {
		integrations = append(integrations, *integrationModels[i].ToDomain())
	}
	return integrations, nil
}

// Save creates or updates an integration
func (r *GormIntegrationRepository) Save(ctx context.Context, integ *integration.Integration) error {
	model := models.IntegrationModelFromDomain(integ)
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "id"}},
		UpdateAll: true,
	}).Create(model).Error
}

// Delete removes an integration
func (r *GormIntegrationRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result := r.db.WithContext(ctx).Delete(&models.IntegrationModel{}, "id = ?", id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return integration.ErrIntegrationNotFound
	}
	return nil
}

// Ensure GormIntegrationRepository implements IntegrationRepository
var _ integration.IntegrationRepository = (*GormIntegrationRepository)(nil)

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

// GormChannelRepository implements catalog.ChannelRepository using GORM
type GormChannelRepository struct {
	db *gorm.DB
}

// NewGormChannelRepository creates a new GormChannelRepository
func NewGormChannelRepository(db *gorm.DB) *GormChannelRepository {
	return &GormChannelRepository{db: db}
}

// FindByID finds a channel by its ID
func (r *GormChannelRepository) FindByID(ctx context.Context, id uuid.UUID) (*catalog.Channel, error) {
	var model models.ChannelModel
	if err := r.db.WithContext(ctx).First(&model, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, catalog.ErrChannelNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindByToken finds a channel by its token
func (r *GormChannelRepository) FindByToken(ctx context.Context, token string) (*catalog.Channel, error) {
	var model models.ChannelModel
	if err := r.db.WithContext(ctx).First(&model, "token = ?", token).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, catalog.ErrChannelNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindDefault finds the default channel
func (r *GormChannelRepository) FindDefault(ctx context.Context) (*catalog.Channel, error) {
	var model models.ChannelModel
	if err := r.db.WithContext(ctx).First(&model, "is_default = ?", true).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, catalog.ErrChannelNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// List returns all channels ordered by code
func (r *GormChannelRepository) List(ctx context.Context) ([]catalog.Channel, error) {
	var channelModels []models.ChannelModel
	if err := r.db.WithContext(ctx).Order("code ASC").Find(&channelModels).Error; err != nil {
		return nil, err
	}

	channels := make([]catalog.Channel, 0, len(channelModels))
	for i := range channelModels {
		channels = append(channels, *channelModels[i].ToDomain())
	}
	return channels, nil
}

// Save creates or updates a channel
func (r *GormChannelRepository) Save(ctx context.Context, channel *catalog.Channel) error {
	model := models.ChannelModelFromDomain(channel)
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "id"}},
		UpdateAll: true,
	}).Create(model).Error
}

// Ensure GormChannelRepository implements ChannelRepository
var _ catalog.ChannelRepository = (*GormChannelRepository)(nil)

package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/channelbridge/backend/internal/domain/integration"
)

// IntegrationModel is the persistence model for the Integration aggregate.
// Config and EnabledFeatures are stored as jsonb columns.
type IntegrationModel struct {
	ID              uuid.UUID                `gorm:"type:uuid;primary_key"`
	Name            string                   `gorm:"type:varchar(255);not null"`
	Platform        integration.PlatformCode `gorm:"type:varchar(50);not null;index"`
	Config          string                   `gorm:"type:jsonb"`
	Enabled         bool                     `gorm:"not null;default:true"`
	EnabledFeatures string                   `gorm:"type:jsonb"`
	CreatedAt       time.Time                `gorm:"not null"`
	UpdatedAt       time.Time                `gorm:"not null"`
}

// TableName returns the table name for GORM
func (IntegrationModel) TableName() string {
	return "integrations"
}

// ToDomain converts the persistence model to a domain Integration
func (m *IntegrationModel) ToDomain() *integration.Integration {
	i := &integration.Integration{
		ID:        m.ID,
		Name:      m.Name,
		Platform:  m.Platform,
		Config:    make(map[string]string),
		Enabled:   m.Enabled,
		CreatedAt: m.CreatedAt,
		UpdatedAt: m.UpdatedAt,
	}
	fromJSON(m.Config, &i.Config)
	fromJSON(m.EnabledFeatures, &i.EnabledFeatures)
	return i
}

// FromDomain populates the persistence model from a domain Integration
func (m *IntegrationModel) FromDomain(i *integration.Integration) {
	m.ID = i.ID
	m.Name = i.Name
	m.Platform = i.Platform
	m.Config = toJSON(i.Config)
	m.Enabled = i.Enabled
	m.EnabledFeatures = toJSON(i.EnabledFeatures)
	m.CreatedAt = i.CreatedAt
	m.UpdatedAt = i.UpdatedAt
}

// IntegrationModelFromDomain creates a new persistence model from a domain Integration
func IntegrationModelFromDomain(i *integration.Integration) *IntegrationModel {
	m := &IntegrationModel{}
	m.FromDomain(i)
	return m
}

// ProductMappingModel is the persistence model for product mappings. Each
// (product, integration) pair has at most one row.
type ProductMappingModel struct {
	ID            uuid.UUID `gorm:"type:uuid;primary_key"`
	ProductID     uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_product_mappings_product_integration,priority:1"`
	IntegrationID uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_product_mappings_product_integration,priority:2;index"`
	ExternalID    string    `gorm:"type:varchar(100);not null"`
	ExternalSKU   string    `gorm:"type:varchar(100)"`
	CreatedAt     time.Time `gorm:"not null"`
	UpdatedAt     time.Time `gorm:"not null"`
}

// TableName returns the table name for GORM
func (ProductMappingModel) TableName() string {
	return "product_mappings"
}

// ToDomain converts the persistence model to a domain ProductMapping
func (m *ProductMappingModel) ToDomain() *integration.ProductMapping {
	return &integration.ProductMapping{
		ID:            m.ID,
		ProductID:     m.ProductID,
		IntegrationID: m.IntegrationID,
		ExternalID:    m.ExternalID,
		ExternalSKU:   m.ExternalSKU,
		CreatedAt:     m.CreatedAt,
		UpdatedAt:     m.UpdatedAt,
	}
}

// FromDomain populates the persistence model from a domain ProductMapping
func (m *ProductMappingModel) FromDomain(p *integration.ProductMapping) {
	m.ID = p.ID
	m.ProductID = p.ProductID
	m.IntegrationID = p.IntegrationID
	m.ExternalID = p.ExternalID
	m.ExternalSKU = p.ExternalSKU
	m.CreatedAt = p.CreatedAt
	m.UpdatedAt = p.UpdatedAt
}

// ProductMappingModelFromDomain creates a new persistence model from a domain ProductMapping
func ProductMappingModelFromDomain(p *integration.ProductMapping) *ProductMappingModel {
	m := &ProductMappingModel{}
	m.FromDomain(p)
	return m
}

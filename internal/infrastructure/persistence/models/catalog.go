package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/channelbridge/backend/internal/domain/catalog"
)

// ProductModel is the persistence model for the Product aggregate root.
// Nested value collections (assets, facet values, translations) are stored
// as jsonb columns; variants and channel memberships live in their own tables.
type ProductModel struct {
	ID          uuid.UUID `gorm:"type:uuid;primary_key"`
	Name        string    `gorm:"type:varchar(255);not null"`
	Slug        string    `gorm:"type:varchar(255);not null;index"`
	Description string    `gorm:"type:text"`
	Enabled     bool      `gorm:"not null;default:true"`

	FeaturedAsset string `gorm:"type:jsonb"`
	Assets        string `gorm:"type:jsonb"`
	FacetValues   string `gorm:"type:jsonb"`
	Translations  string `gorm:"type:jsonb"`

	CreatedAt time.Time      `gorm:"not null"`
	UpdatedAt time.Time      `gorm:"not null"`
	DeletedAt gorm.DeletedAt `gorm:"index"`
}

// TableName returns the table name for GORM
func (ProductModel) TableName() string {
	return "products"
}

// ToDomain converts the persistence model to a domain Product. Variants and
// channel memberships are attached by the repository.
func (m *ProductModel) ToDomain() *catalog.Product {
	p := &catalog.Product{
		ID:          m.ID,
		Name:        m.Name,
		Slug:        m.Slug,
		Description: m.Description,
		Enabled:     m.Enabled,
		CreatedAt:   m.CreatedAt,
		UpdatedAt:   m.UpdatedAt,
	}
	if m.FeaturedAsset != "" {
		var asset catalog.Asset
		fromJSON(m.FeaturedAsset, &asset)
		p.FeaturedAsset = &asset
	}
	fromJSON(m.Assets, &p.Assets)
	fromJSON(m.FacetValues, &p.FacetValues)
	fromJSON(m.Translations, &p.Translations)
	if m.DeletedAt.Valid {
		t := m.DeletedAt.Time
		p.DeletedAt = &t
	}
	return p
}

// FromDomain populates the persistence model from a domain Product
func (m *ProductModel) FromDomain(p *catalog.Product) {
	m.ID = p.ID
	m.Name = p.Name
	m.Slug = p.Slug
	m.Description = p.Description
	m.Enabled = p.Enabled
	m.FeaturedAsset = toJSON(p.FeaturedAsset)
	m.Assets = toJSON(p.Assets)
	m.FacetValues = toJSON(p.FacetValues)
	m.Translations = toJSON(p.Translations)
	m.CreatedAt = p.CreatedAt
	m.UpdatedAt = p.UpdatedAt
	if p.DeletedAt != nil {
		m.DeletedAt = gorm.DeletedAt{Time: *p.DeletedAt, Valid: true}
	}
}

// ProductModelFromDomain creates a new persistence model from a domain Product
func ProductModelFromDomain(p *catalog.Product) *ProductModel {
	m := &ProductModel{}
	m.FromDomain(p)
	return m
}

// ProductVariantModel is the persistence model for the ProductVariant entity.
type ProductVariantModel struct {
	ID        uuid.UUID `gorm:"type:uuid;primary_key"`
	ProductID uuid.UUID `gorm:"type:uuid;not null;index"`
	SKU       string    `gorm:"type:varchar(100);not null;index"`
	Name      string    `gorm:"type:varchar(255)"`
	Enabled   bool      `gorm:"not null;default:true"`

	ListPrice    int64  `gorm:"not null;default:0"`
	Price        int64  `gorm:"not null;default:0"`
	CurrencyCode string `gorm:"type:varchar(3)"`

	StockOnHand         int64 `gorm:"not null;default:0"`
	OutOfStockThreshold int64 `gorm:"not null;default:0"`

	Options       string `gorm:"type:jsonb"`
	FacetValues   string `gorm:"type:jsonb"`
	FeaturedAsset string `gorm:"type:jsonb"`
	Assets        string `gorm:"type:jsonb"`
	Translations  string `gorm:"type:jsonb"`
	StockLevels   string `gorm:"type:jsonb"`

	CreatedAt time.Time      `gorm:"not null"`
	UpdatedAt time.Time      `gorm:"not null"`
	DeletedAt gorm.DeletedAt `gorm:"index"`
}

// TableName returns the table name for GORM
func (ProductVariantModel) TableName() string {
	return "product_variants"
}

// ToDomain converts the persistence model to a domain ProductVariant.
// Channel-scoped price rows are attached by the repository.
func (m *ProductVariantModel) ToDomain() *catalog.ProductVariant {
	v := &catalog.ProductVariant{
		ID:                  m.ID,
		ProductID:           m.ProductID,
		SKU:                 m.SKU,
		Name:                m.Name,
		Enabled:             m.Enabled,
		ListPrice:           m.ListPrice,
		Price:               m.Price,
		CurrencyCode:        m.CurrencyCode,
		StockOnHand:         m.StockOnHand,
		OutOfStockThreshold: m.OutOfStockThreshold,
		CreatedAt:           m.CreatedAt,
		UpdatedAt:           m.UpdatedAt,
	}
	if m.FeaturedAsset != "" {
		var asset catalog.Asset
		fromJSON(m.FeaturedAsset, &asset)
		v.FeaturedAsset = &asset
	}
	fromJSON(m.Options, &v.Options)
	fromJSON(m.FacetValues, &v.FacetValues)
	fromJSON(m.Assets, &v.Assets)
	fromJSON(m.Translations, &v.Translations)
	fromJSON(m.StockLevels, &v.StockLevels)
	if m.DeletedAt.Valid {
		t := m.DeletedAt.Time
		v.DeletedAt = &t
	}
	return v
}

// FromDomain populates the persistence model from a domain ProductVariant
func (m *ProductVariantModel) FromDomain(v *catalog.ProductVariant) {
	m.ID = v.ID
	m.ProductID = v.ProductID
	m.SKU = v.SKU
	m.Name = v.Name
	m.Enabled = v.Enabled
	m.ListPrice = v.ListPrice
	m.Price = v.Price
	m.CurrencyCode = v.CurrencyCode
	m.StockOnHand = v.StockOnHand
	m.OutOfStockThreshold = v.OutOfStockThreshold
	m.Options = toJSON(v.Options)
	m.FacetValues = toJSON(v.FacetValues)
	m.FeaturedAsset = toJSON(v.FeaturedAsset)
	m.Assets = toJSON(v.Assets)
	m.Translations = toJSON(v.Translations)
	m.StockLevels = toJSON(v.StockLevels)
	m.CreatedAt = v.CreatedAt
	m.UpdatedAt = v.UpdatedAt
	if v.DeletedAt != nil {
		m.DeletedAt = gorm.DeletedAt{Time: *v.DeletedAt, Valid: true}
	}
}

// ProductVariantModelFromDomain creates a new persistence model from a domain ProductVariant
func ProductVariantModelFromDomain(v *catalog.ProductVariant) *ProductVariantModel {
	m := &ProductVariantModel{}
	m.FromDomain(v)
	return m
}

// VariantPriceModel is the persistence model for channel-scoped price rows.
// Each (variant, channel) pair has at most one row.
type VariantPriceModel struct {
	ID           uuid.UUID `gorm:"type:uuid;primary_key"`
	VariantID    uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_variant_prices_variant_channel,priority:1"`
	ChannelID    uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_variant_prices_variant_channel,priority:2"`
	CurrencyCode string    `gorm:"type:varchar(3);not null"`
	Price        int64     `gorm:"not null;default:0"`
	CreatedAt    time.Time `gorm:"not null;autoCreateTime"`
	UpdatedAt    time.Time `gorm:"not null"`
}

// TableName returns the table name for GORM
func (VariantPriceModel) TableName() string {
	return "variant_prices"
}

// ToDomain converts the persistence model to a domain VariantPrice
func (m *VariantPriceModel) ToDomain() catalog.VariantPrice {
	return catalog.VariantPrice{
		ID:           m.ID,
		VariantID:    m.VariantID,
		ChannelID:    m.ChannelID,
		CurrencyCode: m.CurrencyCode,
		Price:        m.Price,
		UpdatedAt:    m.UpdatedAt,
	}
}

// VariantPriceModelFromDomain creates a new persistence model from a domain VariantPrice
func VariantPriceModelFromDomain(p catalog.VariantPrice) *VariantPriceModel {
	return &VariantPriceModel{
		ID:           p.ID,
		VariantID:    p.VariantID,
		ChannelID:    p.ChannelID,
		CurrencyCode: p.CurrencyCode,
		Price:        p.Price,
		UpdatedAt:    p.UpdatedAt,
	}
}

// ChannelModel is the persistence model for the Channel entity.
type ChannelModel struct {
	ID              uuid.UUID  `gorm:"type:uuid;primary_key"`
	Code            string     `gorm:"type:varchar(100);not null;uniqueIndex"`
	Token           string     `gorm:"type:varchar(100);not null;uniqueIndex"`
	IsDefault       bool       `gorm:"not null;default:false"`
	DefaultCurrency string     `gorm:"type:varchar(3);not null"`
	DefaultLanguage string     `gorm:"type:varchar(10);not null"`
	IntegrationID   *uuid.UUID `gorm:"type:uuid;index"`
	Markup          *float64   `gorm:"type:numeric(10,4)"`
	CreatedAt       time.Time  `gorm:"not null"`
	UpdatedAt       time.Time  `gorm:"not null"`
}

// TableName returns the table name for GORM
func (ChannelModel) TableName() string {
	return "channels"
}

// ToDomain converts the persistence model to a domain Channel
func (m *ChannelModel) ToDomain() *catalog.Channel {
	return &catalog.Channel{
		ID:              m.ID,
		Code:            m.Code,
		Token:           m.Token,
		IsDefault:       m.IsDefault,
		DefaultCurrency: m.DefaultCurrency,
		DefaultLanguage: m.DefaultLanguage,
		IntegrationID:   m.IntegrationID,
		Markup:          m.Markup,
		CreatedAt:       m.CreatedAt,
		UpdatedAt:       m.UpdatedAt,
	}
}

// FromDomain populates the persistence model from a domain Channel
func (m *ChannelModel) FromDomain(c *catalog.Channel) {
	m.ID = c.ID
	m.Code = c.Code
	m.Token = c.Token
	m.IsDefault = c.IsDefault
	m.DefaultCurrency = c.DefaultCurrency
	m.DefaultLanguage = c.DefaultLanguage
	m.IntegrationID = c.IntegrationID
	m.Markup = c.Markup
	m.CreatedAt = c.CreatedAt
	m.UpdatedAt = c.UpdatedAt
}

// ChannelModelFromDomain creates a new persistence model from a domain Channel
func ChannelModelFromDomain(c *catalog.Channel) *ChannelModel {
	m := &ChannelModel{}
	m.FromDomain(c)
	return m
}

// ProductChannelModel is the join table between products and channels.
// Membership rows survive product soft-deletion so deletion events can still
// be fanned out to the channels the product used to be in.
type ProductChannelModel struct {
	ProductID uuid.UUID `gorm:"type:uuid;primaryKey"`
	ChannelID uuid.UUID `gorm:"type:uuid;primaryKey;index"`
	CreatedAt time.Time `gorm:"not null;autoCreateTime"`
}

// TableName returns the table name for GORM
func (ProductChannelModel) TableName() string {
	return "product_channels"
}

package catalog

import (
	"github.com/google/uuid"

	"github.com/channelbridge/backend/internal/domain/catalog"
)

// VariantInput carries the writable fields of one product variant
type VariantInput struct {
	ID                  *uuid.UUID
	SKU                 string
	Name                string
	ListPrice           int64
	Price               int64
	CurrencyCode        string
	StockOnHand         int64
	OutOfStockThreshold int64
	Options             []catalog.VariantOption
	FacetValues         []catalog.FacetValue
	Translations        []catalog.Translation
}

// CreateProductInput carries the fields for creating a product
type CreateProductInput struct {
	Name         string
	Slug         string
	Description  string
	Enabled      *bool
	FacetValues  []catalog.FacetValue
	Translations []catalog.Translation
	Variants     []VariantInput

	// ChannelIDs assigns the product to channels on creation
	ChannelIDs []uuid.UUID
}

// UpdateProductInput carries a partial product update. Nil pointers leave the
// stored value untouched.
type UpdateProductInput struct {
	Name         *string
	Slug         *string
	Description  *string
	Enabled      *bool
	FacetValues  []catalog.FacetValue
	Translations []catalog.Translation
}

// ChannelSettingsPatch is a partial channel-settings update. PresentFields
// lists exactly the keys the caller sent; a field whose key is absent is left
// untouched even when its pointer carries a zero value.
type ChannelSettingsPatch struct {
	IntegrationID *uuid.UUID
	Markup        *float64

	PresentFields []string
}

// FieldPresent reports whether a settings key was part of the patch
func (p *ChannelSettingsPatch) FieldPresent(field string) bool {
	for _, f := range p.PresentFields {
		if f == field {
			return true
		}
	}
	return false
}

// CreateChannelInput carries the fields for creating a channel
type CreateChannelInput struct {
	Code            string
	Token           string
	IsDefault       bool
	DefaultCurrency string
	DefaultLanguage string
	IntegrationID   *uuid.UUID
	Markup          *float64
}

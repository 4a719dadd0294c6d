package catalog

import (
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
)

var (
	ErrProductNotFound   = errors.New("catalog: product not found")
	ErrVariantNotFound   = errors.New("catalog: product variant not found")
	ErrProductNameEmpty  = errors.New("catalog: product name is required")
	ErrProductSlugEmpty  = errors.New("catalog: product slug is required")
	ErrVariantSKUEmpty   = errors.New("catalog: variant SKU is required")
	ErrProductNotInScope = errors.New("catalog: product not assigned to channel")
)

// Aggregate type constants
const (
	AggregateTypeProduct = "Product"
	AggregateTypeVariant = "ProductVariant"
)

// Asset is an image or other media file attached to a product or variant.
// PreviewURL is preferred over SourceURL when resolving a public URL.
type Asset struct {
	ID         uuid.UUID
	Name       string
	PreviewURL string
	SourceURL  string
}

// FacetValue is a single value of a facet (e.g. facet "brand", value "acme").
type FacetValue struct {
	FacetCode string
	FacetName string
	Code      string
	Name      string
}

// Translation carries the localized fields of a product for one language.
type Translation struct {
	LanguageCode string
	Name         string
	Slug         string
	Description  string
}

// VariantOption is one option-group/option pair a variant sets
// (e.g. group "Color", option "Red").
type VariantOption struct {
	GroupCode string
	GroupName string
	Name      string
}

// VariantPrice is a channel-scoped price row for one variant.
// Prices are stored in minor units (cents).
type VariantPrice struct {
	ID           uuid.UUID
	VariantID    uuid.UUID
	ChannelID    uuid.UUID
	CurrencyCode string
	Price        int64
	UpdatedAt    time.Time
}

// StockLevel is one stock-location row for a variant.
type StockLevel struct {
	ID          uuid.UUID
	VariantID   uuid.UUID
	StockOnHand int64
}

// ProductVariant is one purchasable SKU of a product.
type ProductVariant struct {
	ID        uuid.UUID
	ProductID uuid.UUID
	SKU       string
	Name      string
	Enabled   bool

	// ListPrice and Price are the default-channel base prices in minor units.
	// ListPrice takes precedence when both are set.
	ListPrice    int64
	Price        int64
	CurrencyCode string

	// Prices holds the channel-scoped price rows loaded for this variant.
	Prices []VariantPrice

	StockOnHand         int64
	StockLevels         []StockLevel
	OutOfStockThreshold int64

	Options       []VariantOption
	FacetValues   []FacetValue
	FeaturedAsset *Asset
	Assets        []Asset
	Translations  []Translation

	CreatedAt time.Time
	UpdatedAt time.Time
	DeletedAt *time.Time
}

// PriceForChannel returns the channel-scoped price row for the given channel.
func (v *ProductVariant) PriceForChannel(channelID uuid.UUID) (*VariantPrice, bool) {
	for i := range v.Prices {
		if v.Prices[i].ChannelID == channelID {
			return &v.Prices[i], true
		}
	}
	return nil, false
}

// BasePrice returns the default-channel base price in minor units.
// ListPrice wins over Price; zero when neither is set.
func (v *ProductVariant) BasePrice() int64 {
	if v.ListPrice != 0 {
		return v.ListPrice
	}
	return v.Price
}

// AvailableStock returns the total on-hand quantity across all stock levels,
// falling back to the variant-level StockOnHand when no rows are loaded.
func (v *ProductVariant) AvailableStock() int64 {
	if len(v.StockLevels) == 0 {
		return v.StockOnHand
	}
	var total int64
	for _, sl := range v.StockLevels {
		total += sl.StockOnHand
	}
	return total
}

// InStock reports whether available stock exceeds the out-of-stock threshold.
func (v *ProductVariant) InStock() bool {
	return v.AvailableStock() > v.OutOfStockThreshold
}

// DisplayName returns the variant name, falling back to the SKU.
func (v *ProductVariant) DisplayName() string {
	if v.Name != "" {
		return v.Name
	}
	return v.SKU
}

// Product is the catalog aggregate root.
type Product struct {
	ID          uuid.UUID
	Name        string
	Slug        string
	Description string
	Enabled     bool

	FeaturedAsset *Asset
	Assets        []Asset
	FacetValues   []FacetValue
	Variants      []ProductVariant
	Translations  []Translation

	// ChannelIDs are the channels the product is currently assigned to.
	ChannelIDs []uuid.UUID

	CreatedAt time.Time
	UpdatedAt time.Time
	DeletedAt *time.Time
}

// NewProduct creates a new enabled product
func NewProduct(name, slug string) (*Product, error) {
	if strings.TrimSpace(name) == "" {
		return nil, ErrProductNameEmpty
	}
	if strings.TrimSpace(slug) == "" {
		return nil, ErrProductSlugEmpty
	}
	now := time.Now()
	return &Product{
		ID:        uuid.New(),
		Name:      strings.TrimSpace(name),
		Slug:      strings.TrimSpace(slug),
		Enabled:   true,
		CreatedAt: now,
		UpdatedAt: now,
	}, nil
}

// InChannel reports whether the product is assigned to the given channel.
func (p *Product) InChannel(channelID uuid.UUID) bool {
	for _, id := range p.ChannelIDs {
		if id == channelID {
			return true
		}
	}
	return false
}

// VariantByID returns the variant with the given id.
func (p *Product) VariantByID(variantID uuid.UUID) (*ProductVariant, bool) {
	for i := range p.Variants {
		if p.Variants[i].ID == variantID {
			return &p.Variants[i], true
		}
	}
	return nil, false
}

// TranslationFor returns the translation for a language code, or nil.
func (p *Product) TranslationFor(languageCode string) *Translation {
	for i := range p.Translations {
		if strings.EqualFold(p.Translations[i].LanguageCode, languageCode) {
			return &p.Translations[i]
		}
	}
	return nil
}

// LocalizedName returns the product name for the language, falling back to
// the default name.
func (p *Product) LocalizedName(languageCode string) string {
	if t := p.TranslationFor(languageCode); t != nil && t.Name != "" {
		return t.Name
	}
	return p.Name
}

// LocalizedSlug returns the product slug for the language, falling back to
// the default slug.
func (p *Product) LocalizedSlug(languageCode string) string {
	if t := p.TranslationFor(languageCode); t != nil && t.Slug != "" {
		return t.Slug
	}
	return p.Slug
}

// LocalizedDescription returns the description for the language, falling back
// to the default description.
func (p *Product) LocalizedDescription(languageCode string) string {
	if t := p.TranslationFor(languageCode); t != nil && t.Description != "" {
		return t.Description
	}
	return p.Description
}

// IsDeleted reports whether the product is soft-deleted.
func (p *Product) IsDeleted() bool {
	return p.DeletedAt != nil
}

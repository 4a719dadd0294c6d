package sync

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/channelbridge/backend/internal/domain/catalog"
	"github.com/channelbridge/backend/internal/domain/integration"
)

// syntheticAttributeName is used for variable products whose variants carry no
// option groups; each variant's display name becomes one option.
const syntheticAttributeName = "Variant"

// categoryFacetMarkers mark a facet as category-like. Facets whose code or
// display name contains one of these substrings (case-insensitive) map to
// remote category terms; everything else maps to tags.
var categoryFacetMarkers = []string{"category", "categor", "kategorie"}

// MappedProduct is the platform-shaped output of one mapping pass. It is
// recomputed fresh on every sync attempt and never persisted.
type MappedProduct struct {
	Product    *integration.ProductPayload
	Variations []integration.VariationPayload
}

// Mapper transforms a channel-scoped catalog product into the external
// platform representation. It is a pure transformation except for asset URL
// resolution, which may drop assets when no public base URL is configured.
type Mapper struct {
	assetBaseURL string
	logger       *zap.Logger
}

// NewMapper creates a new Mapper
func NewMapper(assetBaseURL string, logger *zap.Logger) *Mapper {
	return &Mapper{
		assetBaseURL: strings.TrimRight(assetBaseURL, "/"),
		logger:       logger,
	}
}

// MapProduct maps a product for one channel and language.
//
// Shape rules: zero variants give a simple product with no price data and an
// out-of-stock status; exactly one variant gives a simple product carrying
// that variant's SKU, price and stock; two or more variants give a variable
// product with one attribute per distinct option group and one variation per
// variant.
func (m *Mapper) MapProduct(product *catalog.Product, channel *catalog.Channel, languageCode string) *MappedProduct {
	payload := &integration.ProductPayload{
		Name:        product.LocalizedName(languageCode),
		Slug:        product.LocalizedSlug(languageCode),
		Description: product.LocalizedDescription(languageCode),
		Status:      productStatus(product),
		Images:      m.productImages(product),
		MetaData:    m.productMetaData(product, languageCode),
	}

	categories, tags := m.mapFacetValues(product)
	payload.Categories = categories
	payload.Tags = tags

	switch len(product.Variants) {
	case 0:
		payload.Type = integration.ProductTypeSimple
		payload.StockStatus = integration.StockStatusOutOfStock
		return &MappedProduct{Product: payload}

	case 1:
		variant := &product.Variants[0]
		payload.Type = integration.ProductTypeSimple
		if variant.Name != "" {
			payload.Name = variant.Name
		}
		payload.SKU = variant.SKU
		payload.RegularPrice = m.priceString(variant, channel)
		payload.ManageStock = true
		payload.StockQuantity = variant.AvailableStock()
		payload.StockStatus = stockStatus(variant)
		return &MappedProduct{Product: payload}

	default:
		payload.Type = integration.ProductTypeVariable
		payload.Attributes = m.variantAttributes(product.Variants)
		return &MappedProduct{
			Product:    payload,
			Variations: m.mapVariations(product, channel),
		}
	}
}

// productStatus maps the enabled flag to the remote publication status
func productStatus(product *catalog.Product) string {
	if product.Enabled {
		return "publish"
	}
	return "draft"
}

// stockStatus derives the remote stock status from available stock and the
// variant's out-of-stock threshold.
func stockStatus(variant *catalog.ProductVariant) integration.StockStatus {
	if variant.InStock() {
		return integration.StockStatusInStock
	}
	return integration.StockStatusOutOfStock
}

// priceString resolves a variant's price for the channel and formats it as a
// two-decimal major-unit string. The channel-scoped row wins; otherwise the
// default-channel base price is used.
func (m *Mapper) priceString(variant *catalog.ProductVariant, channel *catalog.Channel) string {
	price := variant.BasePrice()
	if row, ok := variant.PriceForChannel(channel.ID); ok {
		price = row.Price
	}
	return minorToMajor(price)
}

// minorToMajor converts an integer minor-unit price to a two-decimal string
func minorToMajor(minor int64) string {
	return decimal.NewFromInt(minor).Div(decimal.NewFromInt(100)).StringFixed(2)
}

// variantAttributes builds the attribute union across all variants. Option
// groups are collected in first-seen order; when no variant has any option
// group, a synthetic attribute keyed by variant display names is emitted.
func (m *Mapper) variantAttributes(variants []catalog.ProductVariant) []integration.Attribute {
	var order []string
	options := make(map[string][]string)

	for i := range variants {
		for _, opt := range variants[i].Options {
			name := strings.TrimSpace(opt.GroupName)
			if name == "" {
				name = strings.TrimSpace(opt.GroupCode)
			}
			if name == "" {
				continue
			}
			if _, seen := options[name]; !seen {
				order = append(order, name)
			}
			if !containsString(options[name], opt.Name) {
				options[name] = append(options[name], opt.Name)
			}
		}
	}

	if len(order) == 0 {
		names := make([]string, 0, len(variants))
		for i := range variants {
			if name := variants[i].DisplayName(); !containsString(names, name) {
				names = append(names, name)
			}
		}
		return []integration.Attribute{{
			Name:      syntheticAttributeName,
			Options:   names,
			Visible:   true,
			Variation: true,
		}}
	}

	attributes := make([]integration.Attribute, 0, len(order))
	for i, name := range order {
		attributes = append(attributes, integration.Attribute{
			Name:      name,
			Options:   options[name],
			Position:  i,
			Visible:   true,
			Variation: true,
		})
	}
	return attributes
}

// mapVariations builds one variation payload per variant of a variable product
func (m *Mapper) mapVariations(product *catalog.Product, channel *catalog.Channel) []integration.VariationPayload {
	productImages := m.productImages(product)

	variations := make([]integration.VariationPayload, 0, len(product.Variants))
	for i := range product.Variants {
		variant := &product.Variants[i]

		variation := integration.VariationPayload{
			SKU:           variant.SKU,
			RegularPrice:  m.priceString(variant, channel),
			ManageStock:   true,
			StockQuantity: variant.AvailableStock(),
			StockStatus:   stockStatus(variant),
			Attributes:    m.variationAttributes(variant),
			MetaData: []integration.MetaData{
				{Key: integration.MetaKeyVariantID, Value: variant.ID.String()},
			},
		}

		images := m.variantImages(variant)
		if len(images) == 0 {
			images = productImages
		}
		if len(images) > 0 {
			img := images[0]
			variation.Image = &img
		}

		variations = append(variations, variation)
	}
	return variations
}

// variationAttributes pins each option the variant sets to its group. Variants
// without options fall back to the synthetic attribute keyed by display name.
func (m *Mapper) variationAttributes(variant *catalog.ProductVariant) []integration.VariationAttribute {
	if len(variant.Options) == 0 {
		return []integration.VariationAttribute{{
			Name:   syntheticAttributeName,
			Option: variant.DisplayName(),
		}}
	}

	attrs := make([]integration.VariationAttribute, 0, len(variant.Options))
	for _, opt := range variant.Options {
		name := strings.TrimSpace(opt.GroupName)
		if name == "" {
			name = strings.TrimSpace(opt.GroupCode)
		}
		if name == "" {
			continue
		}
		attrs = append(attrs, integration.VariationAttribute{Name: name, Option: opt.Name})
	}
	return attrs
}

// productImages resolves the product-level image set: featured asset first,
// then the remaining assets, deduplicated by resolved URL. Products without
// any asset fall back to scanning their variants.
func (m *Mapper) productImages(product *catalog.Product) []integration.Image {
	assets := collectAssets(product.FeaturedAsset, product.Assets)
	if len(assets) == 0 {
		for i := range product.Variants {
			v := &product.Variants[i]
			assets = append(assets, collectAssets(v.FeaturedAsset, v.Assets)...)
		}
	}
	return m.resolveImages(assets)
}

// variantImages resolves a single variant's image set
func (m *Mapper) variantImages(variant *catalog.ProductVariant) []integration.Image {
	return m.resolveImages(collectAssets(variant.FeaturedAsset, variant.Assets))
}

// collectAssets returns featured first, then the rest
func collectAssets(featured *catalog.Asset, rest []catalog.Asset) []catalog.Asset {
	assets := make([]catalog.Asset, 0, len(rest)+1)
	if featured != nil {
		assets = append(assets, *featured)
	}
	assets = append(assets, rest...)
	return assets
}

// resolveImages converts assets to images, deduplicating by resolved URL and
// preserving order. Assets that cannot be resolved to an absolute URL are
// dropped with a warning.
func (m *Mapper) resolveImages(assets []catalog.Asset) []integration.Image {
	seen := make(map[string]struct{}, len(assets))
	var images []integration.Image

	for _, asset := range assets {
		src, ok := m.resolveAssetURL(asset)
		if !ok {
			continue
		}
		if _, dup := seen[src]; dup {
			continue
		}
		seen[src] = struct{}{}
		images = append(images, integration.Image{Src: src, Name: asset.Name, Alt: asset.Name})
	}
	return images
}

// resolveAssetURL resolves an asset to an absolute URL. Preview wins over
// source; relative paths are prefixed with the configured public base URL.
func (m *Mapper) resolveAssetURL(asset catalog.Asset) (string, bool) {
	raw := strings.TrimSpace(asset.PreviewURL)
	if raw == "" {
		raw = strings.TrimSpace(asset.SourceURL)
	}
	if raw == "" {
		return "", false
	}

	if strings.HasPrefix(raw, "http://") || strings.HasPrefix(raw, "https://") {
		return raw, true
	}

	if m.assetBaseURL == "" {
		m.logger.Warn("dropping asset with relative url, no public asset base url configured",
			zap.String("asset_id", asset.ID.String()),
			zap.String("url", raw),
		)
		return "", false
	}

	return m.assetBaseURL + "/" + strings.TrimLeft(raw, "/"), true
}

// mapFacetValues splits the facet-value union into remote category and tag
// terms. Category-like facets are detected by substring match on the facet
// code and display name.
func (m *Mapper) mapFacetValues(product *catalog.Product) (categories, tags []integration.TermRef) {
	for _, fv := range facetValueUnion(product) {
		term := integration.TermRef{Name: fv.Name}
		if isCategoryFacet(fv) {
			categories = append(categories, term)
		} else {
			tags = append(tags, term)
		}
	}
	return categories, tags
}

// facetValueUnion collects product-level and variant-level facet values,
// deduplicated by (facet code, value code, value name).
func facetValueUnion(product *catalog.Product) []catalog.FacetValue {
	type facetKey struct {
		facetCode string
		code      string
		name      string
	}

	seen := make(map[facetKey]struct{})
	var union []catalog.FacetValue

	add := func(values []catalog.FacetValue) {
		for _, fv := range values {
			key := facetKey{facetCode: fv.FacetCode, code: fv.Code, name: fv.Name}
			if _, dup := seen[key]; dup {
				continue
			}
			seen[key] = struct{}{}
			union = append(union, fv)
		}
	}

	add(product.FacetValues)
	for i := range product.Variants {
		add(product.Variants[i].FacetValues)
	}
	return union
}

// isCategoryFacet reports whether a facet value belongs to a category-like facet
func isCategoryFacet(fv catalog.FacetValue) bool {
	code := strings.ToLower(fv.FacetCode)
	name := strings.ToLower(fv.FacetName)
	for _, marker := range categoryFacetMarkers {
		if strings.Contains(code, marker) || strings.Contains(name, marker) {
			return true
		}
	}
	return false
}

// productMetaData builds the back-reference entries carried on every remote
// product record.
func (m *Mapper) productMetaData(product *catalog.Product, languageCode string) []integration.MetaData {
	meta := []integration.MetaData{
		{Key: integration.MetaKeyProductID, Value: product.ID.String()},
		{Key: integration.MetaKeySlug, Value: product.LocalizedSlug(languageCode)},
	}
	if summary := facetSummary(product); summary != "" {
		meta = append(meta, integration.MetaData{Key: integration.MetaKeyFacets, Value: summary})
	}
	return meta
}

// facetSummary renders the facet-value union as "facetCode:valueCode" pairs
func facetSummary(product *catalog.Product) string {
	union := facetValueUnion(product)
	if len(union) == 0 {
		return ""
	}
	pairs := make([]string, 0, len(union))
	for _, fv := range union {
		pairs = append(pairs, fmt.Sprintf("%s:%s", fv.FacetCode, fv.Code))
	}
	return strings.Join(pairs, ",")
}

// containsString reports whether s is present in list
func containsString(list []string, s string) bool {
	for _, item := range list {
		if item == s {
			return true
		}
	}
	return false
}

// localVariantID extracts the local variant back-reference from a variation
// payload's metadata.
func localVariantID(payload *integration.VariationPayload) (uuid.UUID, bool) {
	for _, m := range payload.MetaData {
		if m.Key == integration.MetaKeyVariantID {
			id, err := uuid.Parse(m.Value)
			if err != nil {
				return uuid.Nil, false
			}
			return id, true
		}
	}
	return uuid.Nil, false
}

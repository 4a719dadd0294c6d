package integration

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
)

var (
	// Platform errors
	ErrPlatformNotConfigured   = errors.New("integration: platform not configured")
	ErrPlatformUnavailable     = errors.New("integration: platform temporarily unavailable")
	ErrPlatformRequestFailed   = errors.New("integration: platform request failed")
	ErrPlatformInvalidResponse = errors.New("integration: invalid platform response")
	ErrRemoteProductNotFound   = errors.New("integration: remote product not found")
	ErrPlatformNotRegistered   = errors.New("integration: no client registered for platform")
)

// maxErrorParamLen bounds how much of a validation-parameter dump is carried
// into error messages.
const maxErrorParamLen = 200

// PlatformError is a normalized remote API failure. It wraps
// ErrPlatformRequestFailed so callers can match with errors.Is.
type PlatformError struct {
	StatusCode int
	Code       string
	Message    string
	Params     string
}

// Error formats the failure as "code: message (status N) [params]"
func (e *PlatformError) Error() string {
	msg := fmt.Sprintf("%s: %s (status %d)", e.Code, e.Message, e.StatusCode)
	if e.Params != "" {
		params := e.Params
		if len(params) > maxErrorParamLen {
			params = params[:maxErrorParamLen] + "..."
		}
		msg += " " + params
	}
	return msg
}

// Unwrap allows errors.Is(err, ErrPlatformRequestFailed)
func (e *PlatformError) Unwrap() error {
	return ErrPlatformRequestFailed
}

// ProductType is the remote product shape
type ProductType string

const (
	// ProductTypeSimple is a product with a single implicit SKU
	ProductTypeSimple ProductType = "simple"
	// ProductTypeVariable is a product with explicit variations
	ProductTypeVariable ProductType = "variable"
)

// StockStatus is the remote stock status
type StockStatus string

const (
	StockStatusInStock    StockStatus = "instock"
	StockStatusOutOfStock StockStatus = "outofstock"
)

// Meta keys used to carry back-references to local entities on remote records.
const (
	MetaKeyProductID = "channelbridge_product_id"
	MetaKeyVariantID = "channelbridge_variant_id"
	MetaKeySlug      = "channelbridge_slug"
	MetaKeyFacets    = "channelbridge_facets"
)

// Image is one product image in an outbound payload
type Image struct {
	Src  string `json:"src"`
	Name string `json:"name,omitempty"`
	Alt  string `json:"alt,omitempty"`
}

// Attribute is one product-level attribute in an outbound payload
type Attribute struct {
	Name      string   `json:"name"`
	Options   []string `json:"options"`
	Position  int      `json:"position"`
	Visible   bool     `json:"visible"`
	Variation bool     `json:"variation"`
}

// VariationAttribute pins one attribute to a single option on a variation
type VariationAttribute struct {
	Name   string `json:"name"`
	Option string `json:"option"`
}

// MetaData is a key/value entry on a remote record
type MetaData struct {
	Key   string `json:"key"`
	Value string `json:"value"`
}

// TermRef references a category or tag term by name
type TermRef struct {
	Name string `json:"name"`
}

// ProductPayload is the outbound representation of a product. The Type tag
// decides which fields are meaningful: simple products carry SKU/price/stock
// inline, variable products carry Attributes and get their variations
// reconciled separately.
type ProductPayload struct {
	Type        ProductType
	Name        string
	Slug        string
	Description string
	Status      string

	// Simple-product fields
	SKU           string
	RegularPrice  string
	ManageStock   bool
	StockQuantity int64
	StockStatus   StockStatus

	// Variable-product fields
	Attributes []Attribute

	Images     []Image
	Categories []TermRef
	Tags       []TermRef
	MetaData   []MetaData
}

// VariationPayload is the outbound representation of one variation of a
// variable product.
type VariationPayload struct {
	SKU           string
	RegularPrice  string
	ManageStock   bool
	StockQuantity int64
	StockStatus   StockStatus
	Image         *Image
	Attributes    []VariationAttribute
	MetaData      []MetaData
}

// RemoteProduct is the subset of a remote product record the orchestrator
// needs for reconciliation.
type RemoteProduct struct {
	ID     string
	SKU    string
	Type   ProductType
	Status string
}

// RemoteVariation is the subset of a remote variation record used to match
// variations back to local variants.
type RemoteVariation struct {
	ID       string
	SKU      string
	MetaData []MetaData
}

// LocalVariantID extracts the back-reference to the local variant, if present.
func (v *RemoteVariation) LocalVariantID() (uuid.UUID, bool) {
	for _, m := range v.MetaData {
		if m.Key == MetaKeyVariantID {
			id, err := uuid.Parse(m.Value)
			if err != nil {
				return uuid.Nil, false
			}
			return id, true
		}
	}
	return uuid.Nil, false
}

// StorefrontClient is the port interface for an external storefront platform.
// Implementations live in the infrastructure layer (WooCommerce, marketplace
// stub). Every call performs exactly one HTTP round-trip; retries are the job
// queue's responsibility, never the client's.
type StorefrontClient interface {
	// Platform returns the platform code this client handles
	Platform() PlatformCode

	// TestConnection verifies the integration's credentials
	TestConnection(ctx context.Context, integ *Integration) error

	// CreateProduct creates a product and returns the remote record
	CreateProduct(ctx context.Context, integ *Integration, payload *ProductPayload) (*RemoteProduct, error)

	// UpdateProduct partially updates an existing product
	UpdateProduct(ctx context.Context, integ *Integration, externalID string, payload *ProductPayload) (*RemoteProduct, error)

	// DeleteProduct force-deletes a product
	DeleteProduct(ctx context.Context, integ *Integration, externalID string) error

	// GetProduct fetches a product by its external id
	GetProduct(ctx context.Context, integ *Integration, externalID string) (*RemoteProduct, error)

	// FindProductBySKU returns the first product matching the SKU, or nil
	// when no match exists
	FindProductBySKU(ctx context.Context, integ *Integration, sku string) (*RemoteProduct, error)

	// CreateVariation creates a variation under a variable product
	CreateVariation(ctx context.Context, integ *Integration, externalProductID string, payload *VariationPayload) (*RemoteVariation, error)

	// UpdateVariation partially updates an existing variation
	UpdateVariation(ctx context.Context, integ *Integration, externalProductID, variationID string, payload *VariationPayload) (*RemoteVariation, error)

	// ListVariations lists all variations of a variable product
	ListVariations(ctx context.Context, integ *Integration, externalProductID string) ([]RemoteVariation, error)
}

// ClientRegistry resolves the storefront client for a platform code
type ClientRegistry interface {
	// GetClient returns the client for the given platform code
	GetClient(code PlatformCode) (StorefrontClient, error)

	// ListClients returns all registered clients
	ListClients() []StorefrontClient
}

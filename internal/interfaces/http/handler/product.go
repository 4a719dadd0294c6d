package handler

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	catalogapp "github.com/channelbridge/backend/internal/application/catalog"
	"github.com/channelbridge/backend/internal/domain/catalog"
	"github.com/channelbridge/backend/internal/interfaces/http/dto"
)

// ProductHandler handles product API endpoints
type ProductHandler struct {
	BaseHandler
	products *catalogapp.ProductService
}

// NewProductHandler creates a new ProductHandler
func NewProductHandler(products *catalogapp.ProductService) *ProductHandler {
	return &ProductHandler{products: products}
}

// RegisterRoutes registers product routes
func (h *ProductHandler) RegisterRoutes(rg *gin.RouterGroup) {
	products := rg.Group("/catalog/products")
	{
		products.POST("", h.Create)
		products.GET("/:id", h.GetByID)
		products.PATCH("/:id", h.Update)
		products.DELETE("/:id", h.Delete)

		products.POST("/:id/variants", h.AddVariant)
		products.PUT("/:id/variants/:variantId", h.UpdateVariant)
		products.DELETE("/:id/variants/:variantId", h.RemoveVariant)

		products.POST("/:id/channels/:channelId", h.AssignToChannel)
		products.DELETE("/:id/channels/:channelId", h.RemoveFromChannel)
	}
}

// VariantRequest represents a variant in product requests
type VariantRequest struct {
	SKU                 string                  `json:"sku" binding:"required,min=1,max=100"`
	Name                string                  `json:"name" binding:"max=255"`
	ListPrice           int64                   `json:"list_price" binding:"min=0"`
	Price               int64                   `json:"price" binding:"min=0"`
	CurrencyCode        string                  `json:"currency_code" binding:"omitempty,len=3"`
	StockOnHand         int64                   `json:"stock_on_hand" binding:"min=0"`
	OutOfStockThreshold int64                   `json:"out_of_stock_threshold" binding:"min=0"`
	Options             []catalog.VariantOption `json:"options"`
	FacetValues         []catalog.FacetValue    `json:"facet_values"`
	Translations        []catalog.Translation   `json:"translations"`
}

// CreateProductRequest represents a request to create a product
type CreateProductRequest struct {
	Name         string                `json:"name" binding:"required,min=1,max=255"`
	Slug         string                `json:"slug" binding:"required,min=1,max=255"`
	Description  string                `json:"description"`
	Enabled      *bool                 `json:"enabled"`
	FacetValues  []catalog.FacetValue  `json:"facet_values"`
	Translations []catalog.Translation `json:"translations"`
	Variants     []VariantRequest      `json:"variants" binding:"dive"`
	ChannelIDs   []uuid.UUID           `json:"channel_ids"`
}

// UpdateProductRequest represents a partial product update
type UpdateProductRequest struct {
	Name         *string               `json:"name" binding:"omitempty,min=1,max=255"`
	Slug         *string               `json:"slug" binding:"omitempty,min=1,max=255"`
	Description  *string               `json:"description"`
	Enabled      *bool                 `json:"enabled"`
	FacetValues  []catalog.FacetValue  `json:"facet_values"`
	Translations []catalog.Translation `json:"translations"`
}

// ProductResponse represents a product in API responses
type ProductResponse struct {
	ID          uuid.UUID               `json:"id"`
	Name        string                  `json:"name"`
	Slug        string                  `json:"slug"`
	Description string                  `json:"description,omitempty"`
	Enabled     bool                    `json:"enabled"`
	Variants    []VariantResponse       `json:"variants"`
	ChannelIDs  []uuid.UUID             `json:"channel_ids"`
	FacetValues []catalog.FacetValue    `json:"facet_values,omitempty"`
	CreatedAt   time.Time               `json:"created_at"`
	UpdatedAt   time.Time               `json:"updated_at"`
}

// VariantResponse represents a variant in API responses
type VariantResponse struct {
	ID                  uuid.UUID               `json:"id"`
	SKU                 string                  `json:"sku"`
	Name                string                  `json:"name,omitempty"`
	ListPrice           int64                   `json:"list_price"`
	Price               int64                   `json:"price"`
	CurrencyCode        string                  `json:"currency_code,omitempty"`
	StockOnHand         int64                   `json:"stock_on_hand"`
	OutOfStockThreshold int64                   `json:"out_of_stock_threshold"`
	Options             []catalog.VariantOption `json:"options,omitempty"`
}

func toProductResponse(p *catalog.Product) ProductResponse {
	resp := ProductResponse{
		ID:          p.ID,
		Name:        p.Name,
		Slug:        p.Slug,
		Description: p.Description,
		Enabled:     p.Enabled,
		Variants:    make([]VariantResponse, 0, len(p.Variants)),
		ChannelIDs:  p.ChannelIDs,
		FacetValues: p.FacetValues,
		CreatedAt:   p.CreatedAt,
		UpdatedAt:   p.UpdatedAt,
	}
	for i := range p.Variants {
		resp.Variants = append(resp.Variants, toVariantResponse(&p.Variants[i]))
	}
	return resp
}

func toVariantResponse(v *catalog.ProductVariant) VariantResponse {
	return VariantResponse{
		ID:                  v.ID,
		SKU:                 v.SKU,
		Name:                v.Name,
		ListPrice:           v.ListPrice,
		Price:               v.Price,
		CurrencyCode:        v.CurrencyCode,
		StockOnHand:         v.StockOnHand,
		OutOfStockThreshold: v.OutOfStockThreshold,
		Options:             v.Options,
	}
}

func toVariantInput(req VariantRequest) catalogapp.VariantInput {
	return catalogapp.VariantInput{
		SKU:                 req.SKU,
		Name:                req.Name,
		ListPrice:           req.ListPrice,
		Price:               req.Price,
		CurrencyCode:        req.CurrencyCode,
		StockOnHand:         req.StockOnHand,
		OutOfStockThreshold: req.OutOfStockThreshold,
		Options:             req.Options,
		FacetValues:         req.FacetValues,
		Translations:        req.Translations,
	}
}

// Create creates a new product
func (h *ProductHandler) Create(c *gin.Context) {
	var req CreateProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	input := catalogapp.CreateProductInput{
		Name:         req.Name,
		Slug:         req.Slug,
		Description:  req.Description,
		Enabled:      req.Enabled,
		FacetValues:  req.FacetValues,
		Translations: req.Translations,
		ChannelIDs:   req.ChannelIDs,
	}
	for _, v := range req.Variants {
		input.Variants = append(input.Variants, toVariantInput(v))
	}

	product, err := h.products.Create(c.Request.Context(), input)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, toProductResponse(product))
}

// GetByID retrieves a product
func (h *ProductHandler) GetByID(c *gin.Context) {
	id, ok := parseUUIDParam(c, "id")
	if !ok {
		h.BadRequest(c, "invalid product id")
		return
	}

	product, err := h.products.GetByID(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, toProductResponse(product))
}

// Update applies a partial product update
func (h *ProductHandler) Update(c *gin.Context) {
	id, ok := parseUUIDParam(c, "id")
	if !ok {
		h.BadRequest(c, "invalid product id")
		return
	}

	var req UpdateProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	product, err := h.products.Update(c.Request.Context(), id, catalogapp.UpdateProductInput{
		Name:         req.Name,
		Slug:         req.Slug,
		Description:  req.Description,
		Enabled:      req.Enabled,
		FacetValues:  req.FacetValues,
		Translations: req.Translations,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, toProductResponse(product))
}

// Delete soft-deletes a product
func (h *ProductHandler) Delete(c *gin.Context) {
	id, ok := parseUUIDParam(c, "id")
	if !ok {
		h.BadRequest(c, "invalid product id")
		return
	}

	if err := h.products.Delete(c.Request.Context(), id); err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, dto.MessageResponse{Message: "product deleted"})
}

// AddVariant adds a variant to a product
func (h *ProductHandler) AddVariant(c *gin.Context) {
	id, ok := parseUUIDParam(c, "id")
	if !ok {
		h.BadRequest(c, "invalid product id")
		return
	}

	var req VariantRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	variant, err := h.products.AddVariant(c.Request.Context(), id, toVariantInput(req))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, toVariantResponse(variant))
}

// UpdateVariant updates one variant
func (h *ProductHandler) UpdateVariant(c *gin.Context) {
	id, ok := parseUUIDParam(c, "id")
	if !ok {
		h.BadRequest(c, "invalid product id")
		return
	}
	variantID, ok := parseUUIDParam(c, "variantId")
	if !ok {
		h.BadRequest(c, "invalid variant id")
		return
	}

	var req VariantRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	variant, err := h.products.UpdateVariant(c.Request.Context(), id, variantID, toVariantInput(req))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, toVariantResponse(variant))
}

// RemoveVariant removes a variant from a product
func (h *ProductHandler) RemoveVariant(c *gin.Context) {
	id, ok := parseUUIDParam(c, "id")
	if !ok {
		h.BadRequest(c, "invalid product id")
		return
	}
	variantID, ok := parseUUIDParam(c, "variantId")
	if !ok {
		h.BadRequest(c, "invalid variant id")
		return
	}

	if err := h.products.RemoveVariant(c.Request.Context(), id, variantID); err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, dto.MessageResponse{Message: "variant removed"})
}

// AssignToChannel assigns a product to a channel
func (h *ProductHandler) AssignToChannel(c *gin.Context) {
	id, ok := parseUUIDParam(c, "id")
	if !ok {
		h.BadRequest(c, "invalid product id")
		return
	}
	channelID, ok := parseUUIDParam(c, "channelId")
	if !ok {
		h.BadRequest(c, "invalid channel id")
		return
	}

	if err := h.products.AssignToChannel(c.Request.Context(), id, channelID); err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, dto.MessageResponse{Message: "product assigned to channel"})
}

// RemoveFromChannel removes a product from a channel
func (h *ProductHandler) RemoveFromChannel(c *gin.Context) {
	id, ok := parseUUIDParam(c, "id")
	if !ok {
		h.BadRequest(c, "invalid product id")
		return
	}
	channelID, ok := parseUUIDParam(c, "channelId")
	if !ok {
		h.BadRequest(c, "invalid channel id")
		return
	}

	if err := h.products.RemoveFromChannel(c.Request.Context(), id, channelID); err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, dto.MessageResponse{Message: "product removed from channel"})
}

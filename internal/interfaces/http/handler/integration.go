package handler

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	integrationapp "github.com/channelbridge/backend/internal/application/integration"
	"github.com/channelbridge/backend/internal/domain/integration"
	"github.com/channelbridge/backend/internal/interfaces/http/dto"
)

// IntegrationHandler handles integration API endpoints
type IntegrationHandler struct {
	BaseHandler
	integrations *integrationapp.IntegrationService
}

// NewIntegrationHandler creates a new IntegrationHandler
func NewIntegrationHandler(integrations *integrationapp.IntegrationService) *IntegrationHandler {
	return &IntegrationHandler{integrations: integrations}
}

// RegisterRoutes registers integration routes
func (h *IntegrationHandler) RegisterRoutes(rg *gin.RouterGroup) {
	integrations := rg.Group("/integrations")
	{
		integrations.GET("", h.List)
		integrations.POST("", h.Create)
		integrations.GET("/:id", h.GetByID)
		integrations.PATCH("/:id", h.Update)
		integrations.DELETE("/:id", h.Delete)
		integrations.POST("/:id/test-connection", h.TestConnection)
	}
}

// CreateIntegrationRequest represents a request to create an integration
type CreateIntegrationRequest struct {
	Name            string            `json:"name" binding:"required,min=1,max=255"`
	Platform        string            `json:"platform" binding:"required"`
	Config          map[string]string `json:"config"`
	EnabledFeatures []string          `json:"enabled_features"`
}

// UpdateIntegrationRequest represents a partial integration update
type UpdateIntegrationRequest struct {
	Name            *string           `json:"name" binding:"omitempty,min=1,max=255"`
	Config          map[string]string `json:"config"`
	Enabled         *bool             `json:"enabled"`
	EnabledFeatures []string          `json:"enabled_features"`
}

// IntegrationResponse represents an integration in API responses
type IntegrationResponse struct {
	ID              uuid.UUID         `json:"id"`
	Name            string            `json:"name"`
	Platform        string            `json:"platform"`
	Config          map[string]string `json:"config,omitempty"`
	Enabled         bool              `json:"enabled"`
	EnabledFeatures []string          `json:"enabled_features,omitempty"`
	CreatedAt       time.Time         `json:"created_at"`
	UpdatedAt       time.Time         `json:"updated_at"`
}

func toIntegrationResponse(i *integration.Integration) IntegrationResponse {
	return IntegrationResponse{
		ID:              i.ID,
		Name:            i.Name,
		Platform:        string(i.Platform),
		Config:          i.Config,
		Enabled:         i.Enabled,
		EnabledFeatures: i.EnabledFeatures,
		CreatedAt:       i.CreatedAt,
		UpdatedAt:       i.UpdatedAt,
	}
}

// List retrieves all integrations
func (h *IntegrationHandler) List(c *gin.Context) {
	integrations, err := h.integrations.List(c.Request.Context())
	if err != nil {
		h.HandleError(c, err)
		return
	}
	out := make([]IntegrationResponse, 0, len(integrations))
	for i := range integrations {
		out = append(out, toIntegrationResponse(&integrations[i]))
	}
	h.Success(c, out)
}

// Create creates a new integration
func (h *IntegrationHandler) Create(c *gin.Context) {
	var req CreateIntegrationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	integ, err := h.integrations.Create(c.Request.Context(), integrationapp.CreateIntegrationInput{
		Name:            req.Name,
		Platform:        integration.PlatformCode(req.Platform),
		Config:          req.Config,
		EnabledFeatures: req.EnabledFeatures,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, toIntegrationResponse(integ))
}

// GetByID retrieves an integration
func (h *IntegrationHandler) GetByID(c *gin.Context) {
	id, ok := parseUUIDParam(c, "id")
	if !ok {
		h.BadRequest(c, "invalid integration id")
		return
	}

	integ, err := h.integrations.GetByID(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, toIntegrationResponse(integ))
}

// Update applies a partial integration update
func (h *IntegrationHandler) Update(c *gin.Context) {
	id, ok := parseUUIDParam(c, "id")
	if !ok {
		h.BadRequest(c, "invalid integration id")
		return
	}

	var req UpdateIntegrationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	integ, err := h.integrations.Update(c.Request.Context(), id, integrationapp.UpdateIntegrationInput{
		Name:            req.Name,
		Config:          req.Config,
		Enabled:         req.Enabled,
		EnabledFeatures: req.EnabledFeatures,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, toIntegrationResponse(integ))
}

// Delete removes an integration and its product mappings
func (h *IntegrationHandler) Delete(c *gin.Context) {
	id, ok := parseUUIDParam(c, "id")
	if !ok {
		h.BadRequest(c, "invalid integration id")
		return
	}

	if err := h.integrations.Delete(c.Request.Context(), id); err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, dto.MessageResponse{Message: "integration deleted"})
}

// TestConnection verifies the integration's credentials against the remote
// platform
func (h *IntegrationHandler) TestConnection(c *gin.Context) {
	id, ok := parseUUIDParam(c, "id")
	if !ok {
		h.BadRequest(c, "invalid integration id")
		return
	}

	if err := h.integrations.TestConnection(c.Request.Context(), id); err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, dto.MessageResponse{Message: "connection ok"})
}

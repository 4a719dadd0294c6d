package handler

import (
	"encoding/json"
	"io"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	catalogapp "github.com/channelbridge/backend/internal/application/catalog"
	"github.com/channelbridge/backend/internal/domain/catalog"
)

// ChannelHandler handles channel API endpoints
type ChannelHandler struct {
	BaseHandler
	channels *catalogapp.ChannelService
}

// NewChannelHandler creates a new ChannelHandler
func NewChannelHandler(channels *catalogapp.ChannelService) *ChannelHandler {
	return &ChannelHandler{channels: channels}
}

// RegisterRoutes registers channel routes
func (h *ChannelHandler) RegisterRoutes(rg *gin.RouterGroup) {
	channels := rg.Group("/catalog/channels")
	{
		channels.GET("", h.List)
		channels.POST("", h.Create)
		channels.GET("/:id", h.GetByID)
		channels.PATCH("/:id/settings", h.UpdateSettings)
	}
}

// CreateChannelRequest represents a request to create a channel
type CreateChannelRequest struct {
	Code            string     `json:"code" binding:"required,min=1,max=100"`
	Token           string     `json:"token"`
	IsDefault       bool       `json:"is_default"`
	DefaultCurrency string     `json:"default_currency" binding:"omitempty,len=3"`
	DefaultLanguage string     `json:"default_language" binding:"omitempty,min=2,max=5"`
	IntegrationID   *uuid.UUID `json:"integrationId"`
	Markup          *float64   `json:"markup" binding:"omitempty,min=0"`
}

// ChannelResponse represents a channel in API responses
type ChannelResponse struct {
	ID              uuid.UUID  `json:"id"`
	Code            string     `json:"code"`
	IsDefault       bool       `json:"is_default"`
	DefaultCurrency string     `json:"default_currency,omitempty"`
	DefaultLanguage string     `json:"default_language,omitempty"`
	IntegrationID   *uuid.UUID `json:"integrationId,omitempty"`
	Markup          *float64   `json:"markup,omitempty"`
	CreatedAt       time.Time  `json:"created_at"`
	UpdatedAt       time.Time  `json:"updated_at"`
}

func toChannelResponse(ch *catalog.Channel) ChannelResponse {
	return ChannelResponse{
		ID:              ch.ID,
		Code:            ch.Code,
		IsDefault:       ch.IsDefault,
		DefaultCurrency: ch.DefaultCurrency,
		DefaultLanguage: ch.DefaultLanguage,
		IntegrationID:   ch.IntegrationID,
		Markup:          ch.Markup,
		CreatedAt:       ch.CreatedAt,
		UpdatedAt:       ch.UpdatedAt,
	}
}

// List retrieves all channels
func (h *ChannelHandler) List(c *gin.Context) {
	channels, err := h.channels.List(c.Request.Context())
	if err != nil {
		h.HandleError(c, err)
		return
	}
	out := make([]ChannelResponse, 0, len(channels))
	for i := range channels {
		out = append(out, toChannelResponse(&channels[i]))
	}
	h.Success(c, out)
}

// Create creates a new channel
func (h *ChannelHandler) Create(c *gin.Context) {
	var req CreateChannelRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	channel, err := h.channels.Create(c.Request.Context(), catalogapp.CreateChannelInput{
		Code:            req.Code,
		Token:           req.Token,
		IsDefault:       req.IsDefault,
		DefaultCurrency: req.DefaultCurrency,
		DefaultLanguage: req.DefaultLanguage,
		IntegrationID:   req.IntegrationID,
		Markup:          req.Markup,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, toChannelResponse(channel))
}

// GetByID retrieves a channel
func (h *ChannelHandler) GetByID(c *gin.Context) {
	id, ok := parseUUIDParam(c, "id")
	if !ok {
		h.BadRequest(c, "invalid channel id")
		return
	}

	channel, err := h.channels.GetByID(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, toChannelResponse(channel))
}

// UpdateSettings applies a partial settings update. The patch distinguishes a
// key sent as null (clear the value) from a key not sent at all (leave it
// alone), so the body is decoded into raw messages first.
func (h *ChannelHandler) UpdateSettings(c *gin.Context) {
	id, ok := parseUUIDParam(c, "id")
	if !ok {
		h.BadRequest(c, "invalid channel id")
		return
	}

	patch, err := decodeSettingsPatch(c.Request.Body)
	if err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	channel, err := h.channels.UpdateSettings(c.Request.Context(), id, patch)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, toChannelResponse(channel))
}

func decodeSettingsPatch(body io.Reader) (catalogapp.ChannelSettingsPatch, error) {
	var patch catalogapp.ChannelSettingsPatch

	raw := make(map[string]json.RawMessage)
	if err := json.NewDecoder(body).Decode(&raw); err != nil {
		return patch, err
	}

	if msg, ok := raw[catalog.ChannelFieldIntegrationID]; ok {
		patch.PresentFields = append(patch.PresentFields, catalog.ChannelFieldIntegrationID)
		if err := json.Unmarshal(msg, &patch.IntegrationID); err != nil {
			return patch, err
		}
	}
	if msg, ok := raw[catalog.ChannelFieldMarkup]; ok {
		patch.PresentFields = append(patch.PresentFields, catalog.ChannelFieldMarkup)
		if err := json.Unmarshal(msg, &patch.Markup); err != nil {
			return patch, err
		}
	}
	return patch, nil
}

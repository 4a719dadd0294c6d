package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/channelbridge/backend/internal/domain/catalog"
	"github.com/channelbridge/backend/internal/domain/integration"
	syncdomain "github.com/channelbridge/backend/internal/domain/sync"
	"github.com/channelbridge/backend/internal/interfaces/http/dto"
)

// Error codes returned in the response envelope
const (
	ErrCodeBadRequest = "BAD_REQUEST"
	ErrCodeNotFound   = "NOT_FOUND"
	ErrCodeValidation = "VALIDATION_FAILED"
	ErrCodeUpstream   = "UPSTREAM_FAILED"
	ErrCodeInternal   = "INTERNAL_ERROR"
)

// notFoundErrors are domain sentinels that map to 404
var notFoundErrors = []error{
	catalog.ErrProductNotFound,
	catalog.ErrVariantNotFound,
	catalog.ErrChannelNotFound,
	integration.ErrIntegrationNotFound,
	integration.ErrMappingNotFound,
	syncdomain.ErrJobNotFound,
}

// validationErrors are domain sentinels that map to 400
var validationErrors = []error{
	catalog.ErrProductNameEmpty,
	catalog.ErrProductSlugEmpty,
	catalog.ErrVariantSKUEmpty,
	catalog.ErrChannelCodeEmpty,
	integration.ErrIntegrationNameEmpty,
	integration.ErrInvalidPlatformCode,
	integration.ErrPlatformNotRegistered,
	integration.ErrPlatformNotConfigured,
}

// BaseHandler provides common handler utilities
type BaseHandler struct{}

// Success sends a success response
func (h *BaseHandler) Success(c *gin.Context, data any) {
	c.JSON(http.StatusOK, dto.NewSuccessResponse(data))
}

// SuccessWithMeta sends a success response with pagination meta
func (h *BaseHandler) SuccessWithMeta(c *gin.Context, data any, total int64, page, pageSize int) {
	c.JSON(http.StatusOK, dto.NewSuccessResponseWithMeta(data, total, page, pageSize))
}

// Created sends a 201 created response
func (h *BaseHandler) Created(c *gin.Context, data any) {
	c.JSON(http.StatusCreated, dto.NewSuccessResponse(data))
}

// NoContent sends a 204 no content response
func (h *BaseHandler) NoContent(c *gin.Context) {
	c.Status(http.StatusNoContent)
}

// BadRequest sends a 400 bad request response
func (h *BaseHandler) BadRequest(c *gin.Context, message string) {
	c.JSON(http.StatusBadRequest, dto.NewErrorResponse(ErrCodeBadRequest, message))
}

// NotFound sends a 404 not found response
func (h *BaseHandler) NotFound(c *gin.Context, message string) {
	c.JSON(http.StatusNotFound, dto.NewErrorResponse(ErrCodeNotFound, message))
}

// HandleError maps domain errors to HTTP responses
func (h *BaseHandler) HandleError(c *gin.Context, err error) {
	if err == nil {
		return
	}

	for _, sentinel := range notFoundErrors {
		if errors.Is(err, sentinel) {
			c.JSON(http.StatusNotFound, dto.NewErrorResponse(ErrCodeNotFound, err.Error()))
			return
		}
	}
	for _, sentinel := range validationErrors {
		if errors.Is(err, sentinel) {
			c.JSON(http.StatusBadRequest, dto.NewErrorResponse(ErrCodeValidation, err.Error()))
			return
		}
	}

	// Remote platform failures surface as bad gateway so the caller can tell
	// a connectivity problem from a local fault.
	if errors.Is(err, integration.ErrPlatformRequestFailed) ||
		errors.Is(err, integration.ErrPlatformUnavailable) ||
		errors.Is(err, integration.ErrRemoteProductNotFound) {
		c.JSON(http.StatusBadGateway, dto.NewErrorResponse(ErrCodeUpstream, err.Error()))
		return
	}

	c.JSON(http.StatusInternalServerError, dto.NewErrorResponse(ErrCodeInternal, "an unexpected error occurred"))
}

// parseUUIDParam parses a UUID path parameter
func parseUUIDParam(c *gin.Context, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param(name))
	if err != nil {
		return uuid.Nil, false
	}
	return id, true
}

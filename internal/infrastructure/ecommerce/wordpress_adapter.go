package ecommerce

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"go.uber.org/zap"

	"github.com/channelbridge/backend/internal/domain/integration"
)

// maxResponseSize caps a WooCommerce API response body (10MB)
const maxResponseSize = 10 * 1024 * 1024

// variationsPageSize is the page size used when listing variations
const variationsPageSize = 100

// WordPressAdapter implements StorefrontClient against the WooCommerce REST
// API of a WordPress site. The adapter is stateless; credentials come from
// the integration passed to each call.
type WordPressAdapter struct {
	httpClient *http.Client
	logger     *zap.Logger
}

// NewWordPressAdapter creates a new WooCommerce adapter
func NewWordPressAdapter(timeout time.Duration, logger *zap.Logger) *WordPressAdapter {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &WordPressAdapter{
		httpClient: &http.Client{Timeout: timeout},
		logger:     logger,
	}
}

// Platform returns the platform code this adapter handles
func (a *WordPressAdapter) Platform() integration.PlatformCode {
	return integration.PlatformCodeWordPress
}

// TestConnection verifies the integration's credentials with a cheap list call
func (a *WordPressAdapter) TestConnection(ctx context.Context, integ *integration.Integration) error {
	cfg, err := NewWordPressConfig(integ)
	if err != nil {
		return err
	}

	_, err = a.doRequest(ctx, cfg, http.MethodGet, "/products?per_page=1", nil)
	return err
}

// CreateProduct creates a product and returns the remote record
func (a *WordPressAdapter) CreateProduct(ctx context.Context, integ *integration.Integration, payload *integration.ProductPayload) (*integration.RemoteProduct, error) {
	cfg, err := NewWordPressConfig(integ)
	if err != nil {
		return nil, err
	}

	body, err := a.doRequest(ctx, cfg, http.MethodPost, "/products", toWCProductRequest(payload))
	if err != nil {
		return nil, err
	}

	var resp wcProductResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("%w: failed to parse product: %v", integration.ErrPlatformInvalidResponse, err)
	}
	return resp.toDomain(), nil
}

// UpdateProduct partially updates an existing product
func (a *WordPressAdapter) UpdateProduct(ctx context.Context, integ *integration.Integration, externalID string, payload *integration.ProductPayload) (*integration.RemoteProduct, error) {
	cfg, err := NewWordPressConfig(integ)
	if err != nil {
		return nil, err
	}
	if err := validateNumericID(externalID); err != nil {
		return nil, err
	}

	body, err := a.doRequest(ctx, cfg, http.MethodPut, "/products/"+externalID, toWCProductRequest(payload))
	if err != nil {
		return nil, err
	}

	var resp wcProductResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("%w: failed to parse product: %v", integration.ErrPlatformInvalidResponse, err)
	}
	return resp.toDomain(), nil
}

// DeleteProduct force-deletes a product. Deleting an already-deleted product
// is treated as success.
func (a *WordPressAdapter) DeleteProduct(ctx context.Context, integ *integration.Integration, externalID string) error {
	cfg, err := NewWordPressConfig(integ)
	if err != nil {
		return err
	}
	if err := validateNumericID(externalID); err != nil {
		return err
	}

	_, err = a.doRequest(ctx, cfg, http.MethodDelete, "/products/"+externalID+"?force=true", nil)
	if isNotFound(err) {
		return nil
	}
	return err
}

// GetProduct fetches a product by its external id
func (a *WordPressAdapter) GetProduct(ctx context.Context, integ *integration.Integration, externalID string) (*integration.RemoteProduct, error) {
	cfg, err := NewWordPressConfig(integ)
	if err != nil {
		return nil, err
	}
	if err := validateNumericID(externalID); err != nil {
		return nil, err
	}

	body, err := a.doRequest(ctx, cfg, http.MethodGet, "/products/"+externalID, nil)
	if err != nil {
		if isNotFound(err) {
			return nil, integration.ErrRemoteProductNotFound
		}
		return nil, err
	}

	var resp wcProductResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("%w: failed to parse product: %v", integration.ErrPlatformInvalidResponse, err)
	}
	return resp.toDomain(), nil
}

// FindProductBySKU returns the first product matching the SKU, or nil when no
// match exists.
func (a *WordPressAdapter) FindProductBySKU(ctx context.Context, integ *integration.Integration, sku string) (*integration.RemoteProduct, error) {
	cfg, err := NewWordPressConfig(integ)
	if err != nil {
		return nil, err
	}
	if sku == "" {
		return nil, nil
	}

	body, err := a.doRequest(ctx, cfg, http.MethodGet, "/products?sku="+url.QueryEscape(sku), nil)
	if err != nil {
		return nil, err
	}

	var resp []wcProductResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("%w: failed to parse product list: %v", integration.ErrPlatformInvalidResponse, err)
	}
	if len(resp) == 0 {
		return nil, nil
	}
	return resp[0].toDomain(), nil
}

// CreateVariation creates a variation under a variable product
func (a *WordPressAdapter) CreateVariation(ctx context.Context, integ *integration.Integration, externalProductID string, payload *integration.VariationPayload) (*integration.RemoteVariation, error) {
	cfg, err := NewWordPressConfig(integ)
	if err != nil {
		return nil, err
	}
	if err := validateNumericID(externalProductID); err != nil {
		return nil, err
	}

	body, err := a.doRequest(ctx, cfg, http.MethodPost, "/products/"+externalProductID+"/variations", toWCVariationRequest(payload))
	if err != nil {
		return nil, err
	}

	var resp wcVariationResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("%w: failed to parse variation: %v", integration.ErrPlatformInvalidResponse, err)
	}
	return resp.toDomain(), nil
}

// UpdateVariation partially updates an existing variation
func (a *WordPressAdapter) UpdateVariation(ctx context.Context, integ *integration.Integration, externalProductID, variationID string, payload *integration.VariationPayload) (*integration.RemoteVariation, error) {
	cfg, err := NewWordPressConfig(integ)
	if err != nil {
		return nil, err
	}
	if err := validateNumericID(externalProductID); err != nil {
		return nil, err
	}
	if err := validateNumericID(variationID); err != nil {
		return nil, err
	}

	body, err := a.doRequest(ctx, cfg, http.MethodPut, "/products/"+externalProductID+"/variations/"+variationID, toWCVariationRequest(payload))
	if err != nil {
		return nil, err
	}

	var resp wcVariationResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("%w: failed to parse variation: %v", integration.ErrPlatformInvalidResponse, err)
	}
	return resp.toDomain(), nil
}

// ListVariations lists all variations of a variable product
func (a *WordPressAdapter) ListVariations(ctx context.Context, integ *integration.Integration, externalProductID string) ([]integration.RemoteVariation, error) {
	cfg, err := NewWordPressConfig(integ)
	if err != nil {
		return nil, err
	}
	if err := validateNumericID(externalProductID); err != nil {
		return nil, err
	}

	variations := make([]integration.RemoteVariation, 0)
	for page := 1; ; page++ {
		path := fmt.Sprintf("/products/%s/variations?per_page=%d&page=%d", externalProductID, variationsPageSize, page)
		body, err := a.doRequest(ctx, cfg, http.MethodGet, path, nil)
		if err != nil {
			return nil, err
		}

		var resp []wcVariationResponse
		if err := json.Unmarshal(body, &resp); err != nil {
			return nil, fmt.Errorf("%w: failed to parse variation list: %v", integration.ErrPlatformInvalidResponse, err)
		}

		for _, v := range resp {
			variations = append(variations, *v.toDomain())
		}

		if len(resp) < variationsPageSize {
			return variations, nil
		}
	}
}

// doRequest performs one HTTP round-trip against the WooCommerce API and
// normalizes failures into PlatformError.
func (a *WordPressAdapter) doRequest(ctx context.Context, cfg *WordPressConfig, method, path string, payload any) ([]byte, error) {
	var reqBody io.Reader
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return nil, fmt.Errorf("wordpress: failed to marshal request: %w", err)
		}
		reqBody = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, cfg.Endpoint(path), reqBody)
	if err != nil {
		return nil, fmt.Errorf("wordpress: failed to create request: %w", err)
	}

	req.SetBasicAuth(cfg.ConsumerKey, cfg.ConsumerSecret)
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")

	resp, err := a.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", integration.ErrPlatformUnavailable, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize))
	if err != nil {
		return nil, fmt.Errorf("wordpress: failed to read response: %w", err)
	}

	if resp.StatusCode >= 400 {
		return nil, normalizeAPIError(resp.StatusCode, body)
	}

	return body, nil
}

// normalizeAPIError converts a WooCommerce error body into a PlatformError
func normalizeAPIError(statusCode int, body []byte) error {
	perr := &integration.PlatformError{
		StatusCode: statusCode,
		Code:       "http_error",
		Message:    http.StatusText(statusCode),
	}

	var wcErr wcErrorResponse
	if err := json.Unmarshal(body, &wcErr); err == nil && wcErr.Code != "" {
		perr.Code = wcErr.Code
		perr.Message = wcErr.Message
		perr.Params = string(wcErr.Data.Params)
	}

	return perr
}

// isNotFound reports whether an error is a remote 404
func isNotFound(err error) bool {
	var perr *integration.PlatformError
	if errors.As(err, &perr) {
		return perr.StatusCode == http.StatusNotFound
	}
	return false
}

// validateNumericID validates that a string is a WooCommerce numeric id
func validateNumericID(id string) error {
	if id == "" {
		return fmt.Errorf("%w: empty remote id", integration.ErrPlatformRequestFailed)
	}
	if _, err := strconv.ParseInt(id, 10, 64); err != nil {
		return fmt.Errorf("%w: invalid remote id %q", integration.ErrPlatformRequestFailed, id)
	}
	return nil
}

// Ensure WordPressAdapter implements StorefrontClient
var _ integration.StorefrontClient = (*WordPressAdapter)(nil)

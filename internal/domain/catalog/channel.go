package catalog

import (
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

var (
	ErrChannelNotFound  = errors.New("catalog: channel not found")
	ErrChannelCodeEmpty = errors.New("catalog: channel code is required")
)

// AggregateTypeChannel is the aggregate type for channel events
const AggregateTypeChannel = "Channel"

// Custom field keys carried on channel update payloads.
const (
	ChannelFieldIntegrationID = "integrationId"
	ChannelFieldMarkup        = "markup"
)

// Channel is a storefront/tenant scope within the catalog. Each channel has
// its own product membership and pricing; the default channel's variant
// prices are the base every other channel derives from.
type Channel struct {
	ID              uuid.UUID
	Code            string
	Token           string
	IsDefault       bool
	DefaultCurrency string
	DefaultLanguage string

	// IntegrationID links this channel to an external storefront integration.
	// Nil means the channel does not sync anywhere.
	IntegrationID *uuid.UUID

	// Markup is the percentage applied multiplicatively to the default
	// channel's base price. Nil means no markup (0%).
	Markup *float64

	CreatedAt time.Time
	UpdatedAt time.Time
}

// NewChannel creates a new channel
func NewChannel(code, token, currency, language string) (*Channel, error) {
	if code == "" {
		return nil, ErrChannelCodeEmpty
	}
	now := time.Now()
	return &Channel{
		ID:              uuid.New(),
		Code:            code,
		Token:           token,
		DefaultCurrency: currency,
		DefaultLanguage: language,
		CreatedAt:       now,
		UpdatedAt:       now,
	}, nil
}

// MarkupPercent returns the channel markup percentage, nil-safe.
func (c *Channel) MarkupPercent() float64 {
	if c.Markup == nil {
		return 0
	}
	return *c.Markup
}

// PriceFactor returns 1 + markup/100 as a decimal.
func (c *Channel) PriceFactor() decimal.Decimal {
	return decimal.NewFromInt(1).Add(
		decimal.NewFromFloat(c.MarkupPercent()).Div(decimal.NewFromInt(100)))
}

// ApplyMarkup computes the channel price for a base price in minor units,
// rounding half up.
func (c *Channel) ApplyMarkup(basePrice int64) int64 {
	return decimal.NewFromInt(basePrice).Mul(c.PriceFactor()).Round(0).IntPart()
}

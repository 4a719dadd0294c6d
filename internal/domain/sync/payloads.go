package sync

import "github.com/google/uuid"

// Queue names with their default retry budgets
const (
	// QueueProductSync pushes one product's state to one integration
	QueueProductSync = "product-sync"
	// QueueChannelReprice rewrites a channel's price rows after a markup change
	QueueChannelReprice = "channel-reprice"

	ProductSyncMaxRetries    = 3
	ChannelRepriceMaxRetries = 2
)

// ProductSyncPayload describes one product sync job. The payload is a
// pointer, not a snapshot: the handler reloads the product's current state
// when it runs, so stale intermediate events collapse into the latest state.
type ProductSyncPayload struct {
	// EventType is the catalog event that triggered the job
	EventType string `json:"event_type"`

	ProductID     uuid.UUID `json:"product_id"`
	ChannelID     uuid.UUID `json:"channel_id"`
	IntegrationID uuid.UUID `json:"integration_id"`

	// LanguageCode selects the translation used for name/slug/description
	LanguageCode string `json:"language_code,omitempty"`
}

// ChannelRepricePayload describes one channel reprice job
type ChannelRepricePayload struct {
	ChannelID uuid.UUID `json:"channel_id"`

	// RequestedMarkup is the markup percentage from the triggering update
	RequestedMarkup float64 `json:"requested_markup"`
}

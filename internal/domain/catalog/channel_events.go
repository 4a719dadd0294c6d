package catalog

import (
	"github.com/channelbridge/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// EventTypeChannelUpdated is published when channel settings change
const EventTypeChannelUpdated = "ChannelUpdated"

// ChannelUpdatedEvent is published when a channel's settings are updated.
// UpdatedFields lists exactly the custom-field keys present in the update
// payload; a consumer must treat an absent key as "unchanged" even when the
// stored value is non-zero.
type ChannelUpdatedEvent struct {
	shared.BaseDomainEvent
	TargetChannelID uuid.UUID `json:"target_channel_id"`
	UpdatedFields   []string  `json:"updated_fields"`

	// RequestedMarkup is the markup value from the update payload, only
	// meaningful when UpdatedFields contains ChannelFieldMarkup.
	RequestedMarkup float64 `json:"requested_markup,omitempty"`
}

// NewChannelUpdatedEvent creates a new ChannelUpdatedEvent
func NewChannelUpdatedEvent(channelID uuid.UUID, updatedFields []string, requestedMarkup float64) *ChannelUpdatedEvent {
	return &ChannelUpdatedEvent{
		BaseDomainEvent: shared.NewChannelScopedEvent(EventTypeChannelUpdated, AggregateTypeChannel, channelID, channelID),
		TargetChannelID: channelID,
		UpdatedFields:   updatedFields,
		RequestedMarkup: requestedMarkup,
	}
}

// FieldUpdated reports whether the given custom-field key was present in the
// update payload.
func (e *ChannelUpdatedEvent) FieldUpdated(field string) bool {
	for _, f := range e.UpdatedFields {
		if f == field {
			return true
		}
	}
	return false
}

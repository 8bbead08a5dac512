package models

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// ActivityEventType represents the type of activity event.
type ActivityEventType string

const (
	// Signature events
	ActivityEventSignatureCreated ActivityEventType = "signature_created"
	ActivityEventSignatureUpdated ActivityEventType = "signature_updated"
	ActivityEventSignatureDeleted ActivityEventType = "signature_deleted"

	// Engagement events
	ActivityEventSignatureViewed ActivityEventType = "signature_viewed"
	ActivityEventLinkClicked     ActivityEventType = "link_clicked"

	// Tracking link events
	ActivityEventLinksAssigned ActivityEventType = "links_assigned"
	ActivityEventLinksExpired  ActivityEventType = "links_expired"

	// System events
	ActivityEventSystemStartup  ActivityEventType = "system_startup"
	ActivityEventSystemShutdown ActivityEventType = "system_shutdown"
)

// ActivityEventCategory categorizes activity events for filtering.
type ActivityEventCategory string

const (
	ActivityCategorySignature  ActivityEventCategory = "signature"
	ActivityCategoryEngagement ActivityEventCategory = "engagement"
	ActivityCategoryTracking   ActivityEventCategory = "tracking"
	ActivityCategorySystem     ActivityEventCategory = "system"
)

// GetCategory returns the category for an event type.
func (t ActivityEventType) GetCategory() ActivityEventCategory {
	switch t {
	case ActivityEventSignatureCreated, ActivityEventSignatureUpdated, ActivityEventSignatureDeleted:
		return ActivityCategorySignature
	case ActivityEventSignatureViewed, ActivityEventLinkClicked:
		return ActivityCategoryEngagement
	case ActivityEventLinksAssigned, ActivityEventLinksExpired:
		return ActivityCategoryTracking
	default:
		return ActivityCategorySystem
	}
}

// ActivityEvent represents one entry in the live activity feed.
type ActivityEvent struct {
	ID          uuid.UUID             `json:"id"`
	Type        ActivityEventType     `json:"type"`
	Category    ActivityEventCategory `json:"category"`
	Title       string                `json:"title"`
	Description string                `json:"description"`
	UserID      *uuid.UUID            `json:"user_id,omitempty"`
	SignatureID *uuid.UUID            `json:"signature_id,omitempty"`
	Metadata    map[string]any        `json:"metadata,omitempty"`
	CreatedAt   time.Time             `json:"created_at"`
}

// NewActivityEvent creates a new ActivityEvent with the given details.
func NewActivityEvent(eventType ActivityEventType, title, description string) *ActivityEvent {
	return &ActivityEvent{
		ID:          uuid.New(),
		Type:        eventType,
		Category:    eventType.GetCategory(),
		Title:       title,
		Description: description,
		CreatedAt:   time.Now(),
	}
}

// SetUser sets the user associated with this event.
func (e *ActivityEvent) SetUser(userID uuid.UUID) {
	e.UserID = &userID
}

// SetSignature sets the signature associated with this event.
func (e *ActivityEvent) SetSignature(signatureID uuid.UUID) {
	e.SignatureID = &signatureID
}

// SetMetadata sets the metadata from a map.
func (e *ActivityEvent) SetMetadata(metadata map[string]any) {
	e.Metadata = metadata
}

// MetadataJSON returns the metadata as JSON bytes for database storage.
func (e *ActivityEvent) MetadataJSON() ([]byte, error) {
	if e.Metadata == nil {
		return nil, nil
	}
	return json.Marshal(e.Metadata)
}

// ParseMetadata sets the metadata from JSON bytes.
func (e *ActivityEvent) ParseMetadata(data []byte) error {
	if len(data) == 0 {
		return nil
	}
	var metadata map[string]any
	if err := json.Unmarshal(data, &metadata); err != nil {
		return err
	}
	e.Metadata = metadata
	return nil
}

// ActivityEventFilter holds filter options for listing activity events.
type ActivityEventFilter struct {
	Category    *ActivityEventCategory `json:"category,omitempty"`
	Type        *ActivityEventType     `json:"type,omitempty"`
	UserID      *uuid.UUID             `json:"user_id,omitempty"`
	SignatureID *uuid.UUID             `json:"signature_id,omitempty"`
	StartTime   *time.Time             `json:"start_time,omitempty"`
	EndTime     *time.Time             `json:"end_time,omitempty"`
	Limit       int                    `json:"limit,omitempty"`
	Offset      int                    `json:"offset,omitempty"`
}

package models

import (
	"time"

	"github.com/google/uuid"
)

// Device types detected from user agents.
const (
	DeviceDesktop = "desktop"
	DeviceMobile  = "mobile"
	DeviceTablet  = "tablet"
	DeviceUnknown = "unknown"
)

// SignatureView is one recorded open of a signature's tracking pixel.
// Viewer IPs are stored only as salted hashes.
type SignatureView struct {
	ID          uuid.UUID  `json:"id"`
	SignatureID uuid.UUID  `json:"signature_id"`
	UserID      *uuid.UUID `json:"user_id,omitempty"`
	IPHash      string     `json:"-"`
	UserAgent   string     `json:"user_agent,omitempty"`
	DeviceType  string     `json:"device_type"`
	EmailClient string     `json:"email_client,omitempty"`
	Referer     string     `json:"referer,omitempty"`
	ViewedAt    time.Time  `json:"viewed_at"`
}

// LinkClick is one recorded click-through on a tracking link.
type LinkClick struct {
	ID             uuid.UUID `json:"id"`
	TrackingLinkID uuid.UUID `json:"tracking_link_id"`
	SignatureID    uuid.UUID `json:"signature_id"`
	IPHash         string    `json:"-"`
	UserAgent      string    `json:"user_agent,omitempty"`
	DeviceType     string    `json:"device_type"`
	Referer        string    `json:"referer,omitempty"`
	ClickedAt      time.Time `json:"clicked_at"`
}

// DailyCount is one day's total for a metric.
type DailyCount struct {
	Day   time.Time `json:"day"`
	Count int64     `json:"count"`
}

// LinkTypeCount is a click total for one link type.
type LinkTypeCount struct {
	LinkType string `json:"link_type"`
	Count    int64  `json:"count"`
}

// DeviceCount is a view total for one device type.
type DeviceCount struct {
	DeviceType string `json:"device_type"`
	Count      int64  `json:"count"`
}

// EmailClientCount is a view total for one detected email client.
type EmailClientCount struct {
	EmailClient string `json:"email_client"`
	Count       int64  `json:"count"`
}

// SignatureAnalytics is the per-signature rollup returned by the analytics
// endpoints.
type SignatureAnalytics struct {
	SignatureID   uuid.UUID          `json:"signature_id"`
	TotalViews    int64              `json:"total_views"`
	TotalClicks   int64              `json:"total_clicks"`
	UniqueViewers int64              `json:"unique_viewers"`
	ViewsByDay    []DailyCount       `json:"views_by_day"`
	ClicksByDay   []DailyCount       `json:"clicks_by_day"`
	TopLinks      []LinkTypeCount    `json:"top_links"`
	Devices       []DeviceCount      `json:"devices"`
	EmailClients  []EmailClientCount `json:"email_clients"`
}

// UserAnalytics aggregates across all of a user's signatures.
type UserAnalytics struct {
	UserID        uuid.UUID       `json:"user_id"`
	TotalViews    int64           `json:"total_views"`
	TotalClicks   int64           `json:"total_clicks"`
	UniqueViewers int64           `json:"unique_viewers"`
	ViewsByDay    []DailyCount    `json:"views_by_day"`
	TopLinks      []LinkTypeCount `json:"top_links"`
	Signatures    []SignatureRank `json:"signatures"`
}

// SignatureRank is one signature's place in a user-level rollup.
type SignatureRank struct {
	SignatureID uuid.UUID `json:"signature_id"`
	Name        string    `json:"name"`
	Views       int64     `json:"views"`
	Clicks      int64     `json:"clicks"`
}

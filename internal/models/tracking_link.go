package models

import (
	"time"

	"github.com/google/uuid"
)

// Link types a tracking link can carry. These mirror the renderer's link
// categories so a link row maps directly onto a signature href.
const (
	LinkTypeEmail     = "email"
	LinkTypePhone     = "phone"
	LinkTypeWebsite   = "website"
	LinkTypeCalendly  = "calendly"
	LinkTypeLinkedIn  = "linkedin"
	LinkTypeX         = "x"
	LinkTypeGitHub    = "github"
	LinkTypeFacebook  = "facebook"
	LinkTypeInstagram = "instagram"
	LinkTypeYouTube   = "youtube"
	LinkTypeCustom    = "custom"
)

// ShortCodeLength is the length of a tracking link short code.
const ShortCodeLength = 8

// TrackingLink maps a short code to a destination URL for one link slot of
// one signature. Clicks on the redirect endpoint resolve through this row.
type TrackingLink struct {
	ID          uuid.UUID  `json:"id"`
	SignatureID uuid.UUID  `json:"signature_id"`
	UserID      uuid.UUID  `json:"user_id"`
	ShortCode   string     `json:"short_code"`
	LinkType    string     `json:"link_type"`
	Destination string     `json:"destination"`
	Active      bool       `json:"active"`
	ExpiresAt   *time.Time `json:"expires_at,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
}

// Expired reports whether the link has passed its expiry, if it has one.
func (l *TrackingLink) Expired(now time.Time) bool {
	return l.ExpiresAt != nil && now.After(*l.ExpiresAt)
}

// Resolvable reports whether a click on this link should redirect.
func (l *TrackingLink) Resolvable(now time.Time) bool {
	return l.Active && !l.Expired(now)
}

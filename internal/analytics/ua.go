// Package analytics records signature views and link clicks and serves the
// aggregated engagement rollups.
package analytics

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"

	"github.com/ironcrest/sigforge/internal/models"
)

// DetectDeviceType classifies a user agent into a coarse device bucket.
// Tablet markers are checked before mobile because tablet agents usually
// carry both.
func DetectDeviceType(userAgent string) string {
	if userAgent == "" {
		return models.DeviceUnknown
	}
	ua := strings.ToLower(userAgent)
	switch {
	case strings.Contains(ua, "ipad") || strings.Contains(ua, "tablet"):
		return models.DeviceTablet
	case strings.Contains(ua, "mobile") || strings.Contains(ua, "iphone") || strings.Contains(ua, "android"):
		return models.DeviceMobile
	default:
		return models.DeviceDesktop
	}
}

// DetectEmailClient picks out known email clients from a user agent.
// Returns "" when nothing matches; most webmail opens arrive through image
// proxies that identify themselves.
func DetectEmailClient(userAgent string) string {
	ua := strings.ToLower(userAgent)
	switch {
	case strings.Contains(ua, "googleimageproxy") || strings.Contains(ua, "gmail"):
		return "gmail"
	case strings.Contains(ua, "outlook") || strings.Contains(ua, "microsoft office"):
		return "outlook"
	case strings.Contains(ua, "applemail") || strings.Contains(ua, "mac os x mail"):
		return "apple-mail"
	case strings.Contains(ua, "thunderbird"):
		return "thunderbird"
	case strings.Contains(ua, "yahoomailproxy") || strings.Contains(ua, "yahoo"):
		return "yahoo"
	default:
		return ""
	}
}

// HashIP returns the hex SHA-256 of ip plus salt. Raw viewer addresses are
// never stored; the hash is enough for unique-viewer counting.
func HashIP(ip, salt string) string {
	if ip == "" {
		return ""
	}
	sum := sha256.Sum256([]byte(ip + salt))
	return hex.EncodeToString(sum[:])
}

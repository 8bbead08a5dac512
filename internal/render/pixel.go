package render

import (
	"fmt"
	"net/url"
)

// TrackingPixel builds the invisible 1x1 image tag appended to signatures
// with open tracking enabled. Both identifiers are query-escaped; a missing
// signature ID yields no pixel at all.
func TrackingPixel(baseURL, signatureID, userID string) string {
	if signatureID == "" {
		return ""
	}
	q := url.Values{}
	q.Set("s", signatureID)
	if userID != "" {
		q.Set("u", userID)
	}
	return fmt.Sprintf(`<img src="%s/api/pixel?%s" width="1" height="1" style="display: none; width: 1px; height: 1px;" alt="">`,
		baseURL, q.Encode())
}

// Package tracking assigns click-through redirect links to signature link
// slots. Each populated slot gets a short code resolving to its canonical
// destination; the renderer swaps hrefs for the redirect URLs.
package tracking

import (
	"crypto/rand"
	"fmt"
	"math/big"

	"github.com/ironcrest/sigforge/internal/models"
)

// shortCodeAlphabet is mixed-case alphanumeric, giving 62^8 codes at the
// standard length.
const shortCodeAlphabet = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

// NewShortCode generates a random short code of models.ShortCodeLength
// characters using a CSPRNG.
func NewShortCode() (string, error) {
	max := big.NewInt(int64(len(shortCodeAlphabet)))
	code := make([]byte, models.ShortCodeLength)
	for i := range code {
		n, err := rand.Int(rand.Reader, max)
		if err != nil {
			return "", fmt.Errorf("generate short code: %w", err)
		}
		code[i] = shortCodeAlphabet[n.Int64()]
	}
	return string(code), nil
}

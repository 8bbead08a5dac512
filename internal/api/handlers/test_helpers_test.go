package handlers

import (
	"io"
	"strings"
)

// jsonReader wraps a raw JSON string as a request body.
func jsonReader(body string) io.Reader {
	return strings.NewReader(body)
}

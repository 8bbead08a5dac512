package middleware

import (
	"net/url"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

// Query parameters whose values never reach the logs. Tracking short
// codes are fine to log; credentials and secrets are not.
var redactedParams = []string{"token", "key", "secret", "password", "state"}

// redactQuery rewrites the raw query string with sensitive values masked.
// A query that fails to parse is dropped rather than logged verbatim.
func redactQuery(raw string) string {
	if raw == "" {
		return ""
	}
	values, err := url.ParseQuery(raw)
	if err != nil {
		return ""
	}

	changed := false
	for name := range values {
		lower := strings.ToLower(name)
		for _, p := range redactedParams {
			if lower == p {
				values[name] = []string{"[REDACTED]"}
				changed = true
				break
			}
		}
	}
	if !changed {
		return raw
	}
	return values.Encode()
}

// RequestLogger emits one structured line per request after the handler
// chain runs, with severity following the response status.
func RequestLogger(logger zerolog.Logger) gin.HandlerFunc {
	log := logger.With().Str("component", "http").Logger()

	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path
		query := redactQuery(c.Request.URL.RawQuery)

		c.Next()

		status := c.Writer.Status()
		var event *zerolog.Event
		switch {
		case status >= 500:
			event = log.Error()
		case status >= 400:
			event = log.Warn()
		default:
			event = log.Info()
		}

		event.
			Str("method", c.Request.Method).
			Str("path", path).
			Str("query", query).
			Int("status", status).
			Str("client_ip", c.ClientIP()).
			Int("bytes_out", c.Writer.Size()).
			Dur("elapsed", time.Since(start)).
			Msg("http request")
	}
}

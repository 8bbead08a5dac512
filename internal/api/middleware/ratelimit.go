package middleware

import (
	"fmt"

	"github.com/gin-gonic/gin"
	"github.com/ulule/limiter/v3"
	mgin "github.com/ulule/limiter/v3/drivers/middleware/gin"
	"github.com/ulule/limiter/v3/drivers/store/memory"
)

// NewRateLimiter creates a Gin middleware for rate limiting. format is the
// limiter rate notation, e.g. "100-M" for 100 requests per minute.
func NewRateLimiter(format string) (gin.HandlerFunc, error) {
	rate, err := limiter.NewRateFromFormatted(format)
	if err != nil {
		return nil, fmt.Errorf("invalid rate limit %q: %w", format, err)
	}

	store := memory.NewStore()
	instance := limiter.New(store, rate)

	return mgin.NewMiddleware(instance), nil
}

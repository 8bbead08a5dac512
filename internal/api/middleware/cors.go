package middleware

import (
	"log"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/ironcrest/sigforge/internal/config"
)

const (
	corsAllowHeaders = "Content-Type, Authorization, X-User-ID"
	corsAllowMethods = "GET, POST, PUT, DELETE, OPTIONS"
	corsMaxAge       = "86400"
)

// CORS grants cross-origin access to the browsers embedding the signature
// editor. Production refuses to boot without an explicit origin list;
// other environments reflect any origin so local frontends work out of
// the box. Callers identify themselves with the X-User-ID header rather
// than cookies, so credentialed requests are never allowed.
func CORS(allowedOrigins []string, env config.Environment) gin.HandlerFunc {
	if len(allowedOrigins) == 0 {
		if env == config.EnvProduction {
			panic("CORS_ORIGINS is required in production")
		}
		log.Println("WARNING: CORS_ORIGINS is empty, reflecting all origins")
	}

	allowed := originMatcher(allowedOrigins)

	return func(c *gin.Context) {
		c.Header("Vary", "Origin")

		if origin := c.Request.Header.Get("Origin"); origin != "" && allowed(origin) {
			c.Header("Access-Control-Allow-Origin", origin)
			c.Header("Access-Control-Allow-Headers", corsAllowHeaders)
			c.Header("Access-Control-Allow-Methods", corsAllowMethods)
			c.Header("Access-Control-Max-Age", corsMaxAge)
		}

		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}
		c.Next()
	}
}

// originMatcher builds the allow predicate once so per-request work is a
// single map lookup. An empty list matches every origin.
func originMatcher(origins []string) func(string) bool {
	if len(origins) == 0 {
		return func(string) bool { return true }
	}
	set := make(map[string]struct{}, len(origins))
	for _, o := range origins {
		set[strings.ToLower(strings.TrimRight(o, "/"))] = struct{}{}
	}
	return func(origin string) bool {
		_, ok := set[strings.ToLower(strings.TrimRight(origin, "/"))]
		return ok
	}
}

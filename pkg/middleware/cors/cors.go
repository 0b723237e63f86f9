package cors

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/bestsecurity/meeting-scheduler/pkg/middleware/requestid"
)

const (
	allowMethods = "GET, POST, PATCH, DELETE, OPTIONS"
	allowHeaders = "Authorization, Content-Type, " + requestid.Header
	maxAge       = "600"
)

// New builds a CORS middleware for the configured origins. An empty
// list allows every origin, which is the development default.
func New(allowedOrigins []string) gin.HandlerFunc {
	allowed := make(map[string]struct{}, len(allowedOrigins))
	for _, origin := range allowedOrigins {
		allowed[strings.TrimRight(origin, "/")] = struct{}{}
	}

	return func(c *gin.Context) {
		h := c.Writer.Header()
		h.Set("Vary", "Origin")

		origin := c.GetHeader("Origin")
		switch {
		case origin == "":
			// Same-origin or non-browser caller, nothing to negotiate.
		case len(allowed) == 0:
			h.Set("Access-Control-Allow-Origin", origin)
		default:
			if _, ok := allowed[strings.TrimRight(origin, "/")]; ok {
				h.Set("Access-Control-Allow-Origin", origin)
			}
		}

		if h.Get("Access-Control-Allow-Origin") != "" {
			h.Set("Access-Control-Allow-Credentials", "true")
			h.Set("Access-Control-Allow-Methods", allowMethods)
			h.Set("Access-Control-Allow-Headers", allowHeaders)
			h.Set("Access-Control-Expose-Headers", requestid.Header)
			h.Set("Access-Control-Max-Age", maxAge)
		}

		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}
		c.Next()
	}
}

package middleware

import (
	"log/slog"
	"regexp"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/simp-lee/logger"

	"github.com/simp-lee/clientes/internal/pkg"
)

const (
	requestIDHeader     = "X-Request-ID"
	requestIDContextKey = "request_id"
)

var requestIDPattern = regexp.MustCompile(`^[A-Za-z0-9-]{1,64}$`)

// RequestIDConfig controls how request ids are chosen.
type RequestIDConfig struct {
	// TrustUpstream reuses a well-formed incoming X-Request-ID.
	TrustUpstream bool
	// Generate makes new ids. Nil means uuid.NewString.
	Generate func() string
}

// RequestIDWithConfig tags every request with an id. The id is echoed in the
// X-Request-ID response header, added to the slog context attributes and
// forwarded by the backend client on outbound calls.
func RequestIDWithConfig(cfg RequestIDConfig) gin.HandlerFunc {
	generate := cfg.Generate
	if generate == nil {
		generate = uuid.NewString
	}
	pick := func(c *gin.Context) string {
		if cfg.TrustUpstream {
			if upstream := c.GetHeader(requestIDHeader); requestIDPattern.MatchString(upstream) {
				return upstream
			}
		}
		return generate()
	}

	return func(c *gin.Context) {
		id := pick(c)
		c.Set(requestIDContextKey, id)
		c.Header(requestIDHeader, id)

		ctx := pkg.WithRequestID(c.Request.Context(), id)
		c.Request = c.Request.WithContext(logger.WithContextAttrs(ctx, slog.String("request_id", id)))
		c.Next()
	}
}

// GetRequestID returns the id assigned by RequestIDWithConfig, or "".
func GetRequestID(c *gin.Context) string {
	id, _ := c.Get(requestIDContextKey)
	s, _ := id.(string)
	return s
}

package middleware

import (
	"net/http"
	"slices"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/cors"
)

// CORSConfig holds the configuration for the CORS middleware.
type CORSConfig struct {
	// AllowOrigins lists origins allowed to make cross-origin requests.
	// ["*"] allows any origin; an empty list denies every origin.
	AllowOrigins []string

	// AllowMethods is a list of HTTP methods allowed for cross-origin requests.
	AllowMethods []string

	// AllowHeaders is a list of headers allowed in cross-origin requests.
	AllowHeaders []string

	// AllowCredentials indicates whether the request can include credentials like cookies.
	AllowCredentials bool

	// MaxAge is how long preflight results may be cached. Zero omits the header.
	MaxAge time.Duration
}

// DefaultCORSConfig allows any origin with the methods and htmx headers the
// pages use. Release mode narrows it through server.cors.
func DefaultCORSConfig() CORSConfig {
	return CORSConfig{
		AllowOrigins:     []string{"*"},
		AllowMethods:     []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "X-Requested-With", "X-CSRF-Token", "HX-Request", "HX-Current-URL", "HX-Target", "HX-Trigger"},
		AllowCredentials: false,
		MaxAge:           24 * time.Hour,
	}
}

// CORSWithConfig returns a gin middleware backed by rs/cors. Preflight
// requests are answered with 204 and never reach the route handlers.
func CORSWithConfig(cfg CORSConfig) gin.HandlerFunc {
	c := cors.New(cfg.options())

	return func(ctx *gin.Context) {
		c.HandlerFunc(ctx.Writer, ctx.Request)

		if ctx.Request.Method == http.MethodOptions && ctx.GetHeader("Access-Control-Request-Method") != "" {
			ctx.AbortWithStatus(http.StatusNoContent)
			return
		}
		ctx.Next()
	}
}

func (cfg CORSConfig) options() cors.Options {
	opts := cors.Options{
		AllowedOrigins:   cfg.AllowOrigins,
		AllowedMethods:   cfg.AllowMethods,
		AllowedHeaders:   cfg.AllowHeaders,
		AllowCredentials: cfg.AllowCredentials,
		MaxAge:           int(cfg.MaxAge / time.Second),
	}

	// rs/cors treats an empty origin list as "allow all".
	if len(cfg.AllowOrigins) == 0 {
		opts.AllowOriginFunc = func(string) bool { return false }
	} else if slices.Contains(cfg.AllowOrigins, "*") {
		opts.AllowedOrigins = []string{"*"}
	}
	return opts
}

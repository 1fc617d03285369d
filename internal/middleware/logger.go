package middleware

import (
	"log/slog"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/simp-lee/clientes/internal/pkg"
)

// LoggerConfig configures LoggerWithConfig.
type LoggerConfig struct {
	Logger *slog.Logger
	// SkipPaths are request paths that are never logged, such as health checks.
	SkipPaths []string
}

// Logger logs one line per request through log.
func Logger(log *slog.Logger) gin.HandlerFunc {
	return LoggerWithConfig(LoggerConfig{Logger: log})
}

// LoggerWithConfig logs one "request" line per request after the handlers
// ran. The level follows the status: 5xx error, 4xx warn, otherwise info.
// The request context is used so context attributes such as request_id are
// attached by the logger middleware.
func LoggerWithConfig(cfg LoggerConfig) gin.HandlerFunc {
	log := cfg.Logger
	if log == nil {
		log = slog.Default()
	}
	skip := make(map[string]struct{}, len(cfg.SkipPaths))
	for _, p := range cfg.SkipPaths {
		skip[p] = struct{}{}
	}

	return func(c *gin.Context) {
		if _, ok := skip[c.Request.URL.Path]; ok {
			c.Next()
			return
		}

		start := time.Now()
		c.Next()

		status := c.Writer.Status()
		attrs := []slog.Attr{
			slog.String("method", c.Request.Method),
			slog.String("path", c.Request.URL.Path),
			slog.String("route", routeLabel(c)),
			slog.Int("status", status),
			slog.Duration("latency", time.Since(start)),
			slog.String("client_ip", c.ClientIP()),
			slog.Bool("htmx", pkg.IsHTMX(c)),
		}
		if len(c.Errors) > 0 {
			attrs = append(attrs, slog.String("errors", c.Errors.String()))
		}
		log.LogAttrs(c.Request.Context(), levelForStatus(status), "request", attrs...)
	}
}

func levelForStatus(status int) slog.Level {
	switch {
	case status >= 500:
		return slog.LevelError
	case status >= 400:
		return slog.LevelWarn
	default:
		return slog.LevelInfo
	}
}

// routeLabel is the matched route pattern, "unmatched" when none matched.
func routeLabel(c *gin.Context) string {
	if route := c.FullPath(); route != "" {
		return route
	}
	return "unmatched"
}

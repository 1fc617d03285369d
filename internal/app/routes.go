package app

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/simp-lee/clientes/internal/middleware"
	"github.com/simp-lee/clientes/internal/pkg"
	"github.com/simp-lee/clientes/web"
)

const (
	healthTimeout      = 2 * time.Second
	staticCacheControl = "public, max-age=86400"
	defaultHomePath    = "/clientes"
)

// Pinger reports whether a dependency is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

// RouteDeps is what RegisterRoutes mounts.
type RouteDeps struct {
	Modules    []Module
	Backend    Pinger
	Mode       string // gin mode
	CSRFSecret string
	// HomePath is where "/" redirects. Empty means /clientes.
	HomePath string
	Logger   *slog.Logger
}

// RegisterRoutes mounts static assets, /health, /metrics, the home redirect
// and every module. Modules get an /api/v1 group and a CSRF-protected page
// group rooted at "/".
func RegisterRoutes(r *gin.Engine, deps *RouteDeps) error {
	switch {
	case r == nil:
		return errors.New("router is nil")
	case deps == nil:
		return errors.New("route dependencies are nil")
	case len(deps.Modules) == 0:
		return errors.New("at least one module is required")
	case strings.TrimSpace(deps.CSRFSecret) == "":
		return errors.New("csrf secret is required")
	}

	if err := mountStatic(r, deps.Mode); err != nil {
		return fmt.Errorf("register static routes: %w", err)
	}
	r.GET("/health", healthHandler(deps.Backend))
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	home := deps.HomePath
	if home == "" {
		home = defaultHomePath
	}
	r.GET("/", func(c *gin.Context) { c.Redirect(http.StatusFound, home) })

	api := r.Group("/api/v1")
	pages := r.Group("/", middleware.CSRFWithConfig(middleware.CSRFConfig{
		Secret: deps.CSRFSecret,
		Logger: deps.Logger,
	}))
	for i, m := range deps.Modules {
		if m == nil {
			return fmt.Errorf("module at index %d is nil", i)
		}
		m.RegisterRoutes(api, pages)
	}

	r.NoRoute(noRouteHandler())
	return nil
}

type healthReport struct {
	Status     string            `json:"status"`
	Components map[string]string `json:"components"`
}

// healthHandler answers 200 when the backend answers a ping, 503 otherwise.
func healthHandler(backend Pinger) gin.HandlerFunc {
	return func(c *gin.Context) {
		backendStatus := pingStatus(c.Request.Context(), backend)
		report := healthReport{Status: "ok", Components: map[string]string{"backend": backendStatus}}
		code := http.StatusOK
		if backendStatus != "ok" {
			report.Status = "degraded"
			code = http.StatusServiceUnavailable
		}
		c.JSON(code, report)
	}
}

func pingStatus(ctx context.Context, p Pinger) string {
	if p == nil {
		return "error"
	}
	ctx, cancel := context.WithTimeout(ctx, healthTimeout)
	defer cancel()
	if err := p.Ping(ctx); err != nil {
		slog.WarnContext(ctx, "health check: backend unreachable", slog.Any("error", err))
		return "error"
	}
	return "ok"
}

// noRouteHandler answers unknown /api/ paths with the JSON envelope and
// negotiates everything else.
func noRouteHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		if strings.HasPrefix(c.Request.URL.Path, "/api/") {
			c.JSON(http.StatusNotFound, pkg.Response{Code: http.StatusNotFound, Message: "not found"})
			return
		}
		renderError(c, http.StatusNotFound, "not found")
	}
}

// staticAssets returns the static file tree for mode and its Cache-Control
// value. Debug mode reads from disk and sends no cache header.
func staticAssets(mode string) (fs.FS, string, error) {
	var src fs.FS = web.EmbeddedFS
	cacheControl := staticCacheControl
	if mode == gin.DebugMode {
		dir, err := resolveDebugWebFS()
		if err != nil {
			return nil, "", err
		}
		src, cacheControl = dir, ""
	}
	assets, err := fs.Sub(src, "static")
	if err != nil {
		return nil, "", fmt.Errorf("static sub filesystem: %w", err)
	}
	return assets, cacheControl, nil
}

func mountStatic(r *gin.Engine, mode string) error {
	assets, cacheControl, err := staticAssets(mode)
	if err != nil {
		return err
	}
	r.GET("/static/*filepath", staticHandler(http.FS(assets), cacheControl))
	return nil
}

func staticHandler(fsys http.FileSystem, cacheControl string) gin.HandlerFunc {
	files := http.StripPrefix("/static", http.FileServer(fsys))
	return func(c *gin.Context) {
		if cacheControl != "" {
			c.Header("Cache-Control", cacheControl)
		}
		files.ServeHTTP(c.Writer, c.Request)
	}
}

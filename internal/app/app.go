package app

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/simp-lee/logger"

	"github.com/simp-lee/clientes/internal/config"
	"github.com/simp-lee/clientes/internal/domain"
	"github.com/simp-lee/clientes/internal/middleware"
	"github.com/simp-lee/clientes/internal/module/cliente"
	"github.com/simp-lee/clientes/internal/pkg"
	"github.com/simp-lee/clientes/web"
)

// App is the cliente admin web server.
type App struct {
	engine *gin.Engine
	logger *logger.Logger
	cfg    *config.Config
}

// New wires the admin from cfg: logger, backend gateway, cliente module,
// middleware chain, templates and routes. The logger is closed again when
// New fails.
func New(cfg *config.Config) (*App, error) {
	if cfg == nil {
		return nil, errors.New("config is nil")
	}
	if strings.TrimSpace(cfg.Backend.BaseURL) == "" {
		return nil, errors.New("backend base url is required")
	}
	if err := validateGinMode(cfg.Server.Mode); err != nil {
		return nil, err
	}

	log, err := config.SetupLogger(&cfg.Log)
	if err != nil {
		return nil, fmt.Errorf("setup logger: %w", err)
	}
	a := &App{logger: log, cfg: cfg}

	if err := a.build(); err != nil {
		if cerr := log.Close(); cerr != nil {
			slog.Error("logger close error", slog.Any("error", cerr))
		}
		return nil, err
	}
	return a, nil
}

func (a *App) build() error {
	cfg, log := a.cfg, a.logger.Logger

	if cfg.Server.Mode == gin.DebugMode && cfg.Server.Host == "0.0.0.0" {
		log.Warn("insecure server config: debug mode on 0.0.0.0 may expose debug behavior and permissive CORS")
	}

	gateway := newGateway(cfg.Backend, log)
	module := newClienteModule(gateway, cfg.UI, log)

	engine, err := newEngine(cfg.Server, log)
	if err != nil {
		return err
	}

	csrfSecret, err := resolveCSRFSecret(cfg.Server, log)
	if err != nil {
		return err
	}

	if err := RegisterRoutes(engine, &RouteDeps{
		Modules:    []Module{module},
		Backend:    gateway,
		Mode:       cfg.Server.Mode,
		CSRFSecret: csrfSecret,
		Logger:     log,
	}); err != nil {
		return fmt.Errorf("register routes: %w", err)
	}

	a.engine = engine
	return nil
}

// newGateway builds the remote client chain: instrumented http.Client,
// base URL client, cliente gateway.
func newGateway(cfg config.BackendConfig, log *slog.Logger) *cliente.Gateway {
	httpClient := pkg.NewHTTPClient(pkg.HTTPClientConfig{
		Timeout: cfg.TimeoutDuration(),
		Logger:  log,
	})
	log.Info("backend configured",
		slog.String("base_url", cfg.BaseURL),
		slog.Duration("timeout", cfg.TimeoutDuration()),
	)
	return cliente.NewGateway(pkg.NewBaseClient(httpClient, cfg.BaseURL))
}

func newClienteModule(gateway domain.ClienteGateway, ui config.UIConfig, log *slog.Logger) *cliente.ClienteModule {
	handler := cliente.NewClienteHandler(gateway, ui.PageSizeOptions)
	pageHandler := cliente.NewClientePageHandler(gateway, cliente.PageOptions{
		PageSizeOptions: ui.PageSizeOptions,
		FilterDebounce:  ui.FilterDebounceDuration(),
		CodeDebounce:    ui.CodeDebounceDuration(),
		Logger:          log,
	})
	return cliente.NewModule(handler, pageHandler)
}

// newEngine creates the gin engine with the middleware chain and the HTML
// renderer. Templates come from disk in debug mode, from the binary otherwise.
func newEngine(cfg config.ServerConfig, log *slog.Logger) (*gin.Engine, error) {
	corsConfig, err := resolveCORSConfig(cfg.Mode, cfg.CORS)
	if err != nil {
		return nil, err
	}

	gin.SetMode(cfg.Mode)
	engine := gin.New()
	engine.Use(
		middleware.Recovery(log),
		middleware.RequestIDWithConfig(middleware.RequestIDConfig{}),
		middleware.LoggerWithConfig(middleware.LoggerConfig{Logger: log, SkipPaths: []string{"/health", "/metrics"}}),
		middleware.Metrics(),
		middleware.CORSWithConfig(corsConfig),
	)
	if rl := cfg.RateLimit; rl.Enabled {
		engine.Use(middleware.RateLimit(middleware.RateLimitConfig{RPS: rl.RPS, Burst: rl.Burst}))
		log.Info("rate limiting enabled", slog.Float64("rps", rl.RPS), slog.Int("burst", rl.Burst))
	}

	debug := cfg.Mode == gin.DebugMode
	var fsys fs.FS = web.EmbeddedFS
	if debug {
		if fsys, err = resolveDebugWebFS(); err != nil {
			return nil, fmt.Errorf("resolve debug template fs: %w", err)
		}
	}
	renderer, err := NewTemplateRenderer(fsys, debug)
	if err != nil {
		return nil, fmt.Errorf("setup template renderer: %w", err)
	}
	engine.HTMLRender = renderer
	return engine, nil
}

// resolveCSRFSecret returns the configured secret. A placeholder is an error
// in release mode and is replaced by a random per-process secret otherwise.
func resolveCSRFSecret(cfg config.ServerConfig, log *slog.Logger) (string, error) {
	if !isPlaceholderCSRFSecret(cfg.CSRFSecret) {
		return cfg.CSRFSecret, nil
	}
	if cfg.Mode == gin.ReleaseMode {
		return "", errors.New("csrf_secret must be a non-placeholder value in release mode")
	}

	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("generate csrf secret: %w", err)
	}
	log.Warn("no csrf_secret configured, using random secret in non-release mode (will change on restart)")
	return hex.EncodeToString(b), nil
}

func isPlaceholderCSRFSecret(secret string) bool {
	trimmed := strings.TrimSpace(secret)
	if trimmed == "" {
		return true
	}

	switch strings.ToLower(trimmed) {
	case "change-me-to-a-random-secret", "change-me-in-env":
		return true
	default:
		return false
	}
}

func resolveCORSConfig(mode string, cfg config.CORSConfig) (middleware.CORSConfig, error) {
	corsConfig := middleware.DefaultCORSConfig()

	if len(cfg.AllowMethods) > 0 {
		corsConfig.AllowMethods = cfg.AllowMethods
	}
	if len(cfg.AllowHeaders) > 0 {
		corsConfig.AllowHeaders = cfg.AllowHeaders
	}
	corsConfig.AllowCredentials = cfg.AllowCredentials
	if cfg.MaxAge != "" {
		maxAge, err := time.ParseDuration(cfg.MaxAge)
		if err != nil {
			return middleware.CORSConfig{}, fmt.Errorf("invalid server.cors.max_age %q: %w", cfg.MaxAge, err)
		}
		corsConfig.MaxAge = maxAge
	}

	if len(cfg.AllowOrigins) > 0 {
		corsConfig.AllowOrigins = cfg.AllowOrigins
		return corsConfig, nil
	}

	if mode == gin.ReleaseMode {
		corsConfig.AllowOrigins = []string{}
	}

	return corsConfig, nil
}

func validateGinMode(mode string) error {
	switch mode {
	case gin.DebugMode, gin.ReleaseMode, gin.TestMode:
		return nil
	default:
		return fmt.Errorf("invalid server.mode %q: must be one of %q, %q, %q", mode, gin.DebugMode, gin.ReleaseMode, gin.TestMode)
	}
}

func resolveDebugWebFS() (fs.FS, error) {
	if _, file, _, ok := runtime.Caller(0); ok {
		webDir := filepath.Clean(filepath.Join(filepath.Dir(file), "..", "..", "web"))
		if stat, err := os.Stat(webDir); err == nil && stat.IsDir() {
			return os.DirFS(webDir), nil
		}
	}

	exePath, err := os.Executable()
	if err == nil {
		webDir := filepath.Join(filepath.Dir(exePath), "web")
		if stat, err := os.Stat(webDir); err == nil && stat.IsDir() {
			return os.DirFS(webDir), nil
		}
	}

	return nil, errors.New("debug web directory not found")
}

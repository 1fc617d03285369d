package config

import (
	"fmt"
	"net/url"
	"slices"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"

	"github.com/simp-lee/clientes/internal/pkg"
)

// DefaultBackendTimeout is applied by Validate when backend.timeout is empty.
// Empty ui values take the list and form defaults of package pkg.
const DefaultBackendTimeout = 10 * time.Second

// Config is the top-level application configuration.
type Config struct {
	Server  ServerConfig  `koanf:"server"`
	Backend BackendConfig `koanf:"backend"`
	UI      UIConfig      `koanf:"ui"`
	Log     LogConfig     `koanf:"log"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Host       string          `koanf:"host"`
	Port       int             `koanf:"port"`
	Mode       string          `koanf:"mode"`
	CSRFSecret string          `koanf:"csrf_secret"`
	CORS       CORSConfig      `koanf:"cors"`
	RateLimit  RateLimitConfig `koanf:"rate_limit"`
}

// CORSConfig holds CORS middleware settings.
type CORSConfig struct {
	AllowOrigins     []string `koanf:"allow_origins"`
	AllowMethods     []string `koanf:"allow_methods"`
	AllowHeaders     []string `koanf:"allow_headers"`
	AllowCredentials bool     `koanf:"allow_credentials"`
	MaxAge           string   `koanf:"max_age"`
}

// RateLimitConfig holds per-client rate limiting settings.
type RateLimitConfig struct {
	Enabled bool    `koanf:"enabled"`
	RPS     float64 `koanf:"rps"`
	Burst   int     `koanf:"burst"`
}

// BackendConfig points at the remote cliente REST API.
type BackendConfig struct {
	BaseURL string `koanf:"base_url"`
	Timeout string `koanf:"timeout"`
}

// UIConfig holds list and form behaviour shared by the web pages and the CLI.
// The smallest page size option is the initial page size.
type UIConfig struct {
	PageSizeOptions []int  `koanf:"page_size_options"`
	FilterDebounce  string `koanf:"filter_debounce"`
	CodeDebounce    string `koanf:"code_debounce"`
}

// LogConfig holds logging settings.
type LogConfig struct {
	Level           string `koanf:"level"`
	Format          string `koanf:"format"`
	Color           *bool  `koanf:"color"`
	FilePath        string `koanf:"file_path"`
	MaxSizeMB       int    `koanf:"max_size_mb"`
	RetentionDays   int    `koanf:"retention_days"`
	MaxBackups      int    `koanf:"max_backups"`
	CompressRotated *bool  `koanf:"compress_rotated"`
}

// envPrefix marks environment overrides. "__" separates levels and single
// underscores stay in the key: APP__BACKEND__BASE_URL sets backend.base_url.
const envPrefix = "APP__"

func envKey(name string) string {
	return strings.ReplaceAll(strings.ToLower(strings.TrimPrefix(name, envPrefix)), "__", ".")
}

// Load reads the YAML file at configPath, overlays APP__ environment
// variables and validates the result.
func Load(configPath string) (*Config, error) {
	k := koanf.New(".")
	if err := k.Load(file.Provider(configPath), yaml.Parser()); err != nil {
		return nil, fmt.Errorf("failed to load config file %s: %w", configPath, err)
	}
	if err := k.Load(env.Provider(envPrefix, ".", envKey), nil); err != nil {
		return nil, fmt.Errorf("failed to load env variables: %w", err)
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate normalizes every section in place, fills defaults for empty
// backend and ui values and reports the first invalid setting.
func (c *Config) Validate() error {
	for _, validate := range []func() error{
		c.Server.validate,
		c.Backend.validate,
		c.UI.validate,
		c.Log.validate,
	} {
		if err := validate(); err != nil {
			return err
		}
	}
	return nil
}

func (s *ServerConfig) validate() error {
	mode, err := oneOf("server.mode", s.Mode, gin.DebugMode, gin.ReleaseMode, gin.TestMode)
	if err != nil {
		return err
	}
	s.Mode = mode

	if s.Port < 1 || s.Port > 65535 {
		return fmt.Errorf("invalid server.port %d: must be between 1 and 65535", s.Port)
	}
	if s.Host = strings.TrimSpace(s.Host); s.Host == "" {
		return fmt.Errorf("server.host is required")
	}

	if s.CORS.MaxAge = strings.TrimSpace(s.CORS.MaxAge); s.CORS.MaxAge != "" {
		if _, err := positiveDuration("server.cors.max_age", s.CORS.MaxAge); err != nil {
			return err
		}
	}

	if rl := s.RateLimit; rl.Enabled {
		if rl.RPS <= 0 {
			return fmt.Errorf("invalid server.rate_limit.rps %v: must be positive when rate limiting is enabled", rl.RPS)
		}
		if rl.Burst <= 0 {
			return fmt.Errorf("invalid server.rate_limit.burst %d: must be positive when rate limiting is enabled", rl.Burst)
		}
	}
	return nil
}

func (l *LogConfig) validate() error {
	level, err := oneOf("log.level", strings.ToLower(l.Level), "debug", "info", "warn", "error")
	if err != nil {
		return err
	}
	format, err := oneOf("log.format", strings.ToLower(l.Format), "text", "json")
	if err != nil {
		return err
	}
	l.Level, l.Format = level, format
	return nil
}

// oneOf returns the trimmed value when it is one of allowed.
func oneOf(name, value string, allowed ...string) (string, error) {
	v := strings.TrimSpace(value)
	if slices.Contains(allowed, v) {
		return v, nil
	}
	quoted := make([]string, len(allowed))
	for i, a := range allowed {
		quoted[i] = fmt.Sprintf("%q", a)
	}
	return "", fmt.Errorf("invalid %s %q: must be one of %s", name, value, strings.Join(quoted, ", "))
}

func (b *BackendConfig) validate() error {
	raw := strings.TrimSpace(b.BaseURL)
	if raw == "" {
		return fmt.Errorf("backend.base_url is required")
	}
	u, err := url.Parse(raw)
	if err != nil {
		return fmt.Errorf("invalid backend.base_url %q: %w", b.BaseURL, err)
	}
	if (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("invalid backend.base_url %q: must be an absolute http(s) URL", b.BaseURL)
	}
	b.BaseURL = strings.TrimRight(raw, "/")

	b.Timeout = strings.TrimSpace(b.Timeout)
	if b.Timeout == "" {
		b.Timeout = DefaultBackendTimeout.String()
		return nil
	}
	_, err = positiveDuration("backend.timeout", b.Timeout)
	return err
}

// TimeoutDuration returns the parsed backend timeout, or the default when unset.
func (b BackendConfig) TimeoutDuration() time.Duration {
	return durationOr(b.Timeout, DefaultBackendTimeout)
}

func (u *UIConfig) validate() error {
	if len(u.PageSizeOptions) == 0 {
		u.PageSizeOptions = slices.Clone(pkg.DefaultPageSizeOptions)
	}
	for i, size := range u.PageSizeOptions {
		if size <= 0 {
			return fmt.Errorf("invalid ui.page_size_options[%d] %d: must be positive", i, size)
		}
	}
	slices.Sort(u.PageSizeOptions)
	u.PageSizeOptions = slices.Compact(u.PageSizeOptions)

	fields := []struct {
		name  string
		value *string
		def   time.Duration
	}{
		{"ui.filter_debounce", &u.FilterDebounce, pkg.DefaultFilterDebounce},
		{"ui.code_debounce", &u.CodeDebounce, pkg.DefaultCodeDebounce},
	}
	for _, f := range fields {
		v := strings.TrimSpace(*f.value)
		if v == "" {
			*f.value = f.def.String()
			continue
		}
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("invalid %s %q: %w", f.name, *f.value, err)
		}
		if d < 0 {
			return fmt.Errorf("invalid %s %q: must not be negative", f.name, *f.value)
		}
		*f.value = v
	}

	return nil
}

// FilterDebounceDuration returns the parsed filter quiet period.
func (u UIConfig) FilterDebounceDuration() time.Duration {
	return durationOr(u.FilterDebounce, pkg.DefaultFilterDebounce)
}

// CodeDebounceDuration returns the parsed code check quiet period.
func (u UIConfig) CodeDebounceDuration() time.Duration {
	return durationOr(u.CodeDebounce, pkg.DefaultCodeDebounce)
}

func positiveDuration(name, value string) (time.Duration, error) {
	d, err := time.ParseDuration(value)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q: %w", name, value, err)
	}
	if d <= 0 {
		return 0, fmt.Errorf("invalid %s %q: must be greater than 0", name, value)
	}
	return d, nil
}

func durationOr(value string, def time.Duration) time.Duration {
	d, err := time.ParseDuration(strings.TrimSpace(value))
	if err != nil {
		return def
	}
	return d
}

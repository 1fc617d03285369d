package middleware

import (
	"crypto/hmac"
	"crypto/rand"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/base64"
	"encoding/hex"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jonboulle/clockwork"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/simp-lee/clientes/internal/pkg"
)

const (
	csrfCookieName = "_csrf_token"
	csrfFormField  = "_csrf_token"
	csrfHeaderName = "X-CSRF-Token"
	csrfContextKey = "CSRFToken"

	csrfMissing      = "CSRF token missing"
	csrfInvalid      = "CSRF token invalid"
	csrfToastMessage = "La sesión expiró. Recarga la página e inténtalo de nuevo."

	// DefaultCSRFMaxAge is how long an issued token is accepted.
	DefaultCSRFMaxAge = 12 * time.Hour
)

var (
	errTokenMalformed = errors.New("malformed")
	errTokenSignature = errors.New("bad_signature")
	errTokenExpired   = errors.New("expired")
	errTokenMismatch  = errors.New("mismatch")
	errTokenMissing   = errors.New("missing")
)

var csrfRejections = promauto.NewCounterVec(prometheus.CounterOpts{
	Namespace: "clientes",
	Subsystem: "http",
	Name:      "csrf_rejections_total",
	Help:      "Unsafe page requests rejected by the CSRF check, by reason.",
}, []string{"reason"})

// CSRFConfig configures CSRFWithConfig. Zero values select the defaults.
type CSRFConfig struct {
	Secret string
	// MaxAge bounds token lifetime. Zero means DefaultCSRFMaxAge.
	MaxAge time.Duration
	// Secure marks the cookie HTTPS-only. It is forced on in release mode.
	Secure bool
	Clock  clockwork.Clock
	Logger *slog.Logger
}

// CSRF protects page routes with the given signing secret and default settings.
func CSRF(secret string) gin.HandlerFunc {
	return CSRFWithConfig(CSRFConfig{Secret: secret})
}

// CSRFWithConfig returns a double-submit cookie CSRF middleware.
//
// Tokens look like hex(nonce) "." unix(issuedAt) "." base64url(HMAC-SHA256).
// Safe methods get a token cookie (readable by scripts, SameSite=Strict)
// unless a valid one is present, and the token is stored in the context
// under "CSRFToken" for templates. Unsafe methods must echo the cookie in
// the "_csrf_token" form field or the X-CSRF-Token header, which htmx sends
// through hx-headers. Rejections answer 403: htmx requests get an error
// toast and no swap, other requests the JSON envelope.
//
// API routes are exempt by not registering this middleware on their group.
func CSRFWithConfig(cfg CSRFConfig) gin.HandlerFunc {
	secret := strings.TrimSpace(cfg.Secret)
	if secret == "" {
		return func(c *gin.Context) {
			rejectCSRF(c, http.StatusInternalServerError, "csrf secret is required")
		}
	}

	g := newCSRFGuard(cfg, secret)
	return func(c *gin.Context) {
		switch c.Request.Method {
		case http.MethodGet, http.MethodHead, http.MethodOptions:
			g.ensureToken(c)
		case http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete:
			g.checkToken(c)
		default:
			c.Next()
		}
	}
}

// GetCSRFToken returns the token stored by the CSRF middleware, or "".
func GetCSRFToken(c *gin.Context) string {
	if token, exists := c.Get(csrfContextKey); exists {
		if s, ok := token.(string); ok {
			return s
		}
	}
	return ""
}

type csrfGuard struct {
	secret []byte
	maxAge time.Duration
	secure bool
	clock  clockwork.Clock
	logger *slog.Logger
}

func newCSRFGuard(cfg CSRFConfig, secret string) *csrfGuard {
	g := &csrfGuard{
		secret: []byte(secret),
		maxAge: cfg.MaxAge,
		secure: cfg.Secure || gin.Mode() == gin.ReleaseMode,
		clock:  cfg.Clock,
		logger: cfg.Logger,
	}
	if g.maxAge <= 0 {
		g.maxAge = DefaultCSRFMaxAge
	}
	if g.clock == nil {
		g.clock = clockwork.NewRealClock()
	}
	if g.logger == nil {
		g.logger = slog.Default()
	}
	return g
}

func (g *csrfGuard) ensureToken(c *gin.Context) {
	token, err := c.Cookie(csrfCookieName)
	if err != nil || g.verify(token) != nil {
		token, err = g.issue()
		if err != nil {
			g.logger.ErrorContext(c.Request.Context(), "csrf token generation failed", slog.Any("error", err))
			rejectCSRF(c, http.StatusInternalServerError, "failed to generate CSRF token")
			return
		}
		http.SetCookie(c.Writer, &http.Cookie{
			Name:     csrfCookieName,
			Value:    token,
			Path:     "/",
			HttpOnly: false,
			Secure:   g.secure,
			SameSite: http.SameSiteStrictMode,
		})
	}
	c.Set(csrfContextKey, token)
	c.Next()
}

func (g *csrfGuard) checkToken(c *gin.Context) {
	cookie, _ := c.Cookie(csrfCookieName)
	submitted := c.PostForm(csrfFormField)
	if submitted == "" {
		submitted = c.GetHeader(csrfHeaderName)
	}

	if err := g.match(cookie, submitted); err != nil {
		csrfRejections.WithLabelValues(err.Error()).Inc()
		g.logger.WarnContext(c.Request.Context(), "csrf check failed",
			slog.String("reason", err.Error()),
			slog.String("method", c.Request.Method),
			slog.String("path", c.Request.URL.Path),
		)
		msg := csrfInvalid
		if errors.Is(err, errTokenMissing) {
			msg = csrfMissing
		}
		rejectCSRF(c, http.StatusForbidden, msg)
		return
	}

	c.Set(csrfContextKey, cookie)
	c.Next()
}

// match checks that both tokens are present, authentic, fresh and equal.
func (g *csrfGuard) match(cookie, submitted string) error {
	if cookie == "" || submitted == "" {
		return errTokenMissing
	}
	if err := g.verify(cookie); err != nil {
		return err
	}
	if err := g.verify(submitted); err != nil {
		return err
	}
	if subtle.ConstantTimeCompare([]byte(cookie), []byte(submitted)) != 1 {
		return errTokenMismatch
	}
	return nil
}

func (g *csrfGuard) issue() (string, error) {
	nonce := make([]byte, 32)
	if _, err := rand.Read(nonce); err != nil {
		return "", err
	}
	payload := hex.EncodeToString(nonce) + "." + strconv.FormatInt(g.clock.Now().Unix(), 10)
	return payload + "." + g.sign(payload), nil
}

func (g *csrfGuard) sign(payload string) string {
	mac := hmac.New(sha256.New, g.secret)
	mac.Write([]byte(payload))
	return base64.RawURLEncoding.EncodeToString(mac.Sum(nil))
}

// verify checks the token format, signature and age.
func (g *csrfGuard) verify(token string) error {
	nonce, rest, ok := strings.Cut(token, ".")
	if !ok || nonce == "" {
		return errTokenMalformed
	}
	issuedRaw, sig, ok := strings.Cut(rest, ".")
	if !ok || issuedRaw == "" || sig == "" {
		return errTokenMalformed
	}
	issued, err := strconv.ParseInt(issuedRaw, 10, 64)
	if err != nil {
		return errTokenMalformed
	}

	want := g.sign(nonce + "." + issuedRaw)
	if subtle.ConstantTimeCompare([]byte(sig), []byte(want)) != 1 {
		return errTokenSignature
	}

	age := g.clock.Since(time.Unix(issued, 0))
	if age > g.maxAge || age < -time.Minute {
		return errTokenExpired
	}
	return nil
}

// rejectCSRF aborts the request. htmx callers get a toast, everything else
// the JSON envelope used by the API.
func rejectCSRF(c *gin.Context, status int, message string) {
	if pkg.IsHTMX(c) {
		pkg.RejectHTMX(c, status, csrfToastMessage)
		return
	}
	c.AbortWithStatusJSON(status, pkg.Response{Code: status, Message: message})
}

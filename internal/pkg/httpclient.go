package pkg

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const (
	defaultHTTPTimeout = 10 * time.Second
	requestIDHeader    = "X-Request-ID"
)

var (
	backendRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "clientes",
		Subsystem: "backend",
		Name:      "requests_total",
		Help:      "Total number of outbound backend requests broken down by method and result.",
	}, []string{"method", "result"})

	backendLatency = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "clientes",
		Subsystem: "backend",
		Name:      "latency_seconds",
		Help:      "Latency distribution for outbound backend requests.",
		Buckets: []float64{
			0.005, 0.01, 0.02, 0.05,
			0.1, 0.2, 0.5,
			1, 2, 5, 10,
		},
	}, []string{"method", "result"})
)

type requestIDKey struct{}

// WithRequestID stores the inbound request id so outbound calls can forward it.
func WithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, requestIDKey{}, id)
}

// RequestIDFromContext returns the request id stored by WithRequestID, or "".
func RequestIDFromContext(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	id, _ := ctx.Value(requestIDKey{}).(string)
	return id
}

// HTTPClientConfig holds the outbound HTTP client settings.
type HTTPClientConfig struct {
	Timeout time.Duration
	Logger  *slog.Logger
}

// NewHTTPClient creates an http.Client whose transport logs every call,
// forwards X-Request-ID and records Prometheus metrics. A zero Timeout
// defaults to 10 seconds.
func NewHTTPClient(cfg HTTPClientConfig) *http.Client {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultHTTPTimeout
	}
	log := cfg.Logger
	if log == nil {
		log = slog.Default()
	}
	return &http.Client{
		Timeout:   timeout,
		Transport: &instrumentedTransport{inner: http.DefaultTransport, logger: log},
	}
}

type instrumentedTransport struct {
	inner  http.RoundTripper
	logger *slog.Logger
}

func (t *instrumentedTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	start := time.Now()
	ctx := req.Context()

	requestID := RequestIDFromContext(ctx)
	if requestID == "" {
		requestID = req.Header.Get(requestIDHeader)
	}
	if requestID == "" {
		requestID = uuid.NewString()
	}
	req = req.Clone(ctx)
	req.Header.Set(requestIDHeader, requestID)

	resp, err := t.inner.RoundTrip(req)
	elapsed := time.Since(start)

	attrs := []slog.Attr{
		slog.String("method", req.Method),
		slog.String("url", req.URL.String()),
		slog.Duration("latency", elapsed),
		slog.String("request_id", requestID),
	}

	if err != nil {
		observeBackend(req.Method, "error", elapsed)
		attrs = append(attrs, slog.Any("error", err))
		t.logger.LogAttrs(ctx, slog.LevelError, "backend request failed", attrs...)
		return nil, err
	}

	observeBackend(req.Method, statusClass(resp.StatusCode), elapsed)
	attrs = append(attrs, slog.Int("status", resp.StatusCode))
	t.logger.LogAttrs(ctx, slog.LevelDebug, "backend request", attrs...)
	return resp, nil
}

func observeBackend(method, result string, elapsed time.Duration) {
	backendRequests.WithLabelValues(method, result).Inc()
	backendLatency.WithLabelValues(method, result).Observe(elapsed.Seconds())
}

// statusClass collapses a status code into "2xx", "4xx", ...
func statusClass(code int) string {
	if code < 100 || code > 599 {
		return "unknown"
	}
	return strconv.Itoa(code/100) + "xx"
}

// BaseClient binds an http.Client to a base URL and builds requests relative to it.
type BaseClient struct {
	HTTPClient *http.Client
	BaseURL    string
}

// NewBaseClient creates a BaseClient. A nil httpClient uses NewHTTPClient defaults.
func NewBaseClient(httpClient *http.Client, baseURL string) *BaseClient {
	if httpClient == nil {
		httpClient = NewHTTPClient(HTTPClientConfig{})
	}
	return &BaseClient{
		HTTPClient: httpClient,
		BaseURL:    strings.TrimRight(baseURL, "/"),
	}
}

// NewRequest creates a request for relPath below BaseURL. relPath is an
// escaped path (callers escape dynamic segments with PathSegment) and is
// appended as is: dot segments are not resolved. Query parameters must be
// passed in query, never embedded in relPath.
func (c *BaseClient) NewRequest(ctx context.Context, method, relPath string, query url.Values, body io.Reader) (*http.Request, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	if strings.Contains(relPath, "?") {
		return nil, fmt.Errorf("httpclient: relPath must not contain a query string: %s", relPath)
	}
	base, err := url.Parse(c.BaseURL)
	if err != nil {
		return nil, fmt.Errorf("httpclient: parse base url: %w", err)
	}
	if relPath != "" {
		escaped := strings.TrimRight(base.EscapedPath(), "/") + "/" + strings.TrimLeft(relPath, "/")
		unescaped, err := url.PathUnescape(escaped)
		if err != nil {
			return nil, fmt.Errorf("httpclient: invalid path %q: %w", relPath, err)
		}
		base.Path = unescaped
		base.RawPath = escaped
	}
	if len(query) > 0 {
		base.RawQuery = query.Encode()
	}
	return http.NewRequestWithContext(ctx, method, base.String(), body)
}

// PathSegment escapes s as a single path segment. "." and ".." are
// percent-encoded so they reach the backend as data, not as navigation.
func PathSegment(s string) string {
	switch s {
	case ".":
		return "%2E"
	case "..":
		return "%2E%2E"
	}
	return url.PathEscape(s)
}

// Do executes req with the underlying client.
func (c *BaseClient) Do(req *http.Request) (*http.Response, error) {
	return c.HTTPClient.Do(req)
}

package middleware

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jonboulle/clockwork"

	"github.com/simp-lee/clientes/internal/pkg"
)

func setupRateLimitRouter(cfg RateLimitConfig) *gin.Engine {
	r := gin.New()
	r.Use(RateLimit(cfg))
	r.GET("/clientes", func(c *gin.Context) { c.String(http.StatusOK, "ok") })
	return r
}

func hitFrom(r *gin.Engine, ip string, htmx bool) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/clientes", nil)
	req.RemoteAddr = ip + ":40000"
	if htmx {
		req.Header.Set("HX-Request", "true")
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestRateLimit_BurstThenReject(t *testing.T) {
	clock := clockwork.NewFakeClock()
	r := setupRateLimitRouter(RateLimitConfig{RPS: 1, Burst: 2, Now: clock.Now})

	for i := 0; i < 2; i++ {
		if w := hitFrom(r, "10.0.0.1", false); w.Code != http.StatusOK {
			t.Fatalf("request %d: expected 200, got %d", i, w.Code)
		}
	}

	w := hitFrom(r, "10.0.0.1", false)
	if w.Code != http.StatusTooManyRequests {
		t.Fatalf("expected 429, got %d", w.Code)
	}
	if got := w.Header().Get("Retry-After"); got != "1" {
		t.Errorf("Retry-After = %q, want 1", got)
	}
	var resp pkg.Response
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.Code != http.StatusTooManyRequests {
		t.Errorf("code = %d, want 429", resp.Code)
	}

	clock.Advance(time.Second)
	if w := hitFrom(r, "10.0.0.1", false); w.Code != http.StatusOK {
		t.Errorf("after refill: expected 200, got %d", w.Code)
	}
}

func TestRateLimit_PerClient(t *testing.T) {
	clock := clockwork.NewFakeClock()
	r := setupRateLimitRouter(RateLimitConfig{RPS: 1, Burst: 1, Now: clock.Now})

	if w := hitFrom(r, "10.0.0.1", false); w.Code != http.StatusOK {
		t.Fatalf("first client: expected 200, got %d", w.Code)
	}
	if w := hitFrom(r, "10.0.0.1", false); w.Code != http.StatusTooManyRequests {
		t.Fatalf("first client again: expected 429, got %d", w.Code)
	}
	if w := hitFrom(r, "10.0.0.2", false); w.Code != http.StatusOK {
		t.Errorf("second client: expected 200, got %d", w.Code)
	}
}

func TestRateLimit_HTMXToast(t *testing.T) {
	clock := clockwork.NewFakeClock()
	r := setupRateLimitRouter(RateLimitConfig{RPS: 0.2, Burst: 1, Now: clock.Now})

	hitFrom(r, "10.0.0.3", true)
	w := hitFrom(r, "10.0.0.3", true)

	if w.Code != http.StatusTooManyRequests {
		t.Fatalf("expected 429, got %d", w.Code)
	}
	if got := w.Header().Get("Retry-After"); got != "5" {
		t.Errorf("Retry-After = %q, want 5", got)
	}
	if got := w.Header().Get("HX-Reswap"); got != "none" {
		t.Errorf("HX-Reswap = %q, want none", got)
	}
	if got := w.Header().Get("HX-Trigger"); !strings.Contains(got, "showToast") {
		t.Errorf("HX-Trigger = %q, want showToast", got)
	}
}

func TestLimiterStore_EvictsIdleClients(t *testing.T) {
	clock := clockwork.NewFakeClock()
	store := newLimiterStore(RateLimitConfig{RPS: 10, Burst: 10, IdleTTL: time.Minute, Now: clock.Now})

	store.allow("a")
	store.allow("b")
	if got := store.size(); got != 2 {
		t.Fatalf("size = %d, want 2", got)
	}

	clock.Advance(30 * time.Second)
	store.allow("b")

	clock.Advance(45 * time.Second)
	store.allow("c")

	// "a" was idle for 75s and is gone; "b" was seen 45s ago.
	if got := store.size(); got != 2 {
		t.Errorf("size = %d, want 2 after eviction", got)
	}
}

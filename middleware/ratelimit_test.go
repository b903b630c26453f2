package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"livebait-directory/testhelpers"

	"github.com/gin-gonic/gin"
)

func newTestLimiter(t *testing.T, max int, per time.Duration) *RateLimiter {
	t.Helper()
	log, _ := testhelpers.NewTestLogger()
	rl := NewRateLimiter(max, per, log)
	t.Cleanup(rl.Stop)
	return rl
}

func TestRateLimiterWithinLimit(t *testing.T) {
	rl := newTestLimiter(t, 5, time.Minute)
	for i := 0; i < 5; i++ {
		if !rl.allow("1.2.3.4") {
			t.Fatalf("request %d should be allowed", i+1)
		}
	}
}

func TestRateLimiterOverLimit(t *testing.T) {
	rl := newTestLimiter(t, 2, time.Minute)
	rl.allow("1.2.3.4")
	rl.allow("1.2.3.4")
	if rl.allow("1.2.3.4") {
		t.Fatal("should be rate limited")
	}
}

func TestRateLimiterTokenRefill(t *testing.T) {
	rl := newTestLimiter(t, 1, time.Minute)
	now := time.Now()
	rl.now = func() time.Time { return now }

	rl.allow("1.2.3.4")
	if rl.allow("1.2.3.4") {
		t.Fatal("should be rate limited immediately")
	}

	now = now.Add(61 * time.Second)
	if !rl.allow("1.2.3.4") {
		t.Fatal("token should have refilled")
	}
}

func TestRateLimiterDifferentIPs(t *testing.T) {
	rl := newTestLimiter(t, 1, time.Minute)
	rl.allow("1.1.1.1")
	if !rl.allow("2.2.2.2") {
		t.Fatal("different IP should have its own bucket")
	}
}

func TestRateLimiterEvictsIdleClients(t *testing.T) {
	rl := newTestLimiter(t, 1, time.Minute)
	now := time.Now()
	rl.now = func() time.Time { return now }

	rl.allow("1.1.1.1")
	now = now.Add(idleTimeout + time.Second)
	rl.allow("2.2.2.2")
	rl.evictIdle()

	if _, ok := rl.clients["1.1.1.1"]; ok {
		t.Error("idle client should be evicted")
	}
	if _, ok := rl.clients["2.2.2.2"]; !ok {
		t.Error("active client should be kept")
	}
}

func TestRateLimiterMiddleware429(t *testing.T) {
	log, hook := testhelpers.NewTestLogger()
	rl := NewRateLimiter(1, time.Minute, log)
	defer rl.Stop()

	r := gin.New()
	r.Use(rl.Middleware())
	r.GET("/test", func(c *gin.Context) {
		c.JSON(200, gin.H{"ok": true})
	})

	w1 := httptest.NewRecorder()
	r.ServeHTTP(w1, httptest.NewRequest("GET", "/test", nil))
	if w1.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w1.Code)
	}

	w2 := httptest.NewRecorder()
	r.ServeHTTP(w2, httptest.NewRequest("GET", "/test", nil))
	if w2.Code != http.StatusTooManyRequests {
		t.Fatalf("expected 429, got %d", w2.Code)
	}
	if w2.Header().Get("Retry-After") == "" {
		t.Error("expected Retry-After header")
	}
	if entry := hook.LastEntry(); entry == nil || entry.Message != "Rate limit exceeded" {
		t.Error("expected a rate limit warning")
	}
}

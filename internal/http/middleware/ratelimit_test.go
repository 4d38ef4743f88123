package middleware

import (
	"net"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"
)

func TestKeyByUserOrIP(t *testing.T) {
	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	c.Request = httptest.NewRequest(http.MethodGet, "/", nil)
	c.Request.RemoteAddr = net.JoinHostPort("203.0.113.9", "1234")

	if got := KeyByUserOrIP()(c); got != "ip:203.0.113.9" {
		t.Fatalf("anonymous key = %q", got)
	}
	c.Set(ctxKeyUserID, "42")
	if got := KeyByUserOrIP()(c); got != "user:42" {
		t.Fatalf("user key = %q", got)
	}
}

func TestRateLimiter_BucketReuseAndSweep(t *testing.T) {
	rl := NewRateLimiter(1, 0, nil)
	if rl.burst != 1 {
		t.Fatalf("burst not coerced: %d", rl.burst)
	}
	lim := rl.limiterFor("a")
	if rl.limiterFor("a") != lim {
		t.Fatalf("bucket not reused")
	}

	rl.ttl = time.Nanosecond
	rl.mu.Lock()
	rl.visitors["stale"] = &visitor{limiter: rate.NewLimiter(1, 1), lastSeen: time.Now().Add(-time.Hour)}
	rl.lookups = rl.sweepEvery - 1
	rl.mu.Unlock()

	rl.limiterFor("b")
	rl.mu.Lock()
	_, stale := rl.visitors["stale"]
	_, fresh := rl.visitors["b"]
	rl.mu.Unlock()
	if stale || !fresh {
		t.Fatalf("sweep: stale=%v fresh=%v", stale, fresh)
	}
}

func TestRateLimiter_Handler(t *testing.T) {
	rl := NewRateLimiter(0.5, 1, func(*gin.Context) string { return "k" })
	r := gin.New()
	r.Use(func(c *gin.Context) {
		if c.GetHeader("X-Replay") != "" {
			c.Set(ctxKeyRateBypass, true)
		}
	}, rl.Handler())
	r.GET("/", func(c *gin.Context) { c.Status(http.StatusOK) })

	do := func(replay bool) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		if replay {
			req.Header.Set("X-Replay", "1")
		}
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		return w
	}

	if w := do(false); w.Code != http.StatusOK {
		t.Fatalf("first request: %d", w.Code)
	}
	w := do(false)
	if w.Code != http.StatusTooManyRequests {
		t.Fatalf("second request: %d", w.Code)
	}
	if w.Header().Get("Retry-After") != "2" {
		t.Fatalf("Retry-After = %q", w.Header().Get("Retry-After"))
	}
	if decodeBody(t, w)["code"] != "too_many_requests" {
		t.Fatalf("body = %s", w.Body.String())
	}
	if w := do(true); w.Code != http.StatusOK {
		t.Fatalf("replay must bypass: %d", w.Code)
	}
}

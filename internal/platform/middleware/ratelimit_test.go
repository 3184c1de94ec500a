package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/careflow/careflow/internal/platform/auth"
)

func withOperator(id string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			ctx := context.WithValue(c.Request().Context(), auth.UserIDKey, id)
			c.SetRequest(c.Request().WithContext(ctx))
			return next(c)
		}
	}
}

func limitedServer(operator string, cfg RateLimitConfig) *echo.Echo {
	e := echo.New()
	if operator != "" {
		e.Use(withOperator(operator))
	}
	e.Use(RateLimit(cfg))
	e.GET("/", func(c echo.Context) error { return c.NoContent(http.StatusOK) })
	return e
}

func get(e *echo.Echo) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func TestRateLimit_ExhaustsBurst(t *testing.T) {
	e := limitedServer("nurse-1", RateLimitConfig{RequestsPerSecond: 0.001, BurstSize: 2})

	for i := 0; i < 2; i++ {
		if rec := get(e); rec.Code != http.StatusOK {
			t.Fatalf("request %d status = %d, want 200", i+1, rec.Code)
		}
	}

	rec := get(e)
	if rec.Code != http.StatusTooManyRequests {
		t.Fatalf("over-burst status = %d, want 429", rec.Code)
	}
	if rec.Header().Get("Retry-After") == "" {
		t.Error("missing Retry-After header")
	}
}

// Each operator gets an independent budget; exhausting one must not
// throttle another.
func TestRateLimit_KeyedPerOperator(t *testing.T) {
	cfg := RateLimitConfig{RequestsPerSecond: 0.001, BurstSize: 1}
	l := &limiter{cfg: cfg, buckets: make(map[string]*bucket), lastSweep: time.Now()}
	now := time.Now()

	if ok, _ := l.take("nurse-1", now); !ok {
		t.Fatal("first request for nurse-1 should pass")
	}
	if ok, _ := l.take("nurse-1", now); ok {
		t.Fatal("second request for nurse-1 should be throttled")
	}
	if ok, _ := l.take("dr-eze", now); !ok {
		t.Error("dr-eze throttled by nurse-1's bucket")
	}
}

func TestRateLimit_RefillsOverTime(t *testing.T) {
	cfg := RateLimitConfig{RequestsPerSecond: 10, BurstSize: 1}
	l := &limiter{cfg: cfg, buckets: make(map[string]*bucket), lastSweep: time.Now()}
	now := time.Now()

	if ok, _ := l.take("op", now); !ok {
		t.Fatal("first request should pass")
	}
	if ok, _ := l.take("op", now); ok {
		t.Fatal("immediate second request should be throttled")
	}
	if ok, _ := l.take("op", now.Add(200*time.Millisecond)); !ok {
		t.Error("bucket did not refill after 200ms at 10 rps")
	}
}

func TestRateLimit_SweepsIdleBuckets(t *testing.T) {
	cfg := RateLimitConfig{RequestsPerSecond: 1, BurstSize: 1}
	l := &limiter{cfg: cfg, buckets: make(map[string]*bucket), lastSweep: time.Now()}
	now := time.Now()

	l.take("gone-home", now)
	l.take("on-shift", now.Add(11*time.Minute))

	// The sweep in the second take should have evicted the idle key.
	l.take("fresh", now.Add(13*time.Minute))
	if _, ok := l.buckets["gone-home"]; ok {
		t.Error("idle bucket survived the sweep")
	}
	if _, ok := l.buckets["on-shift"]; !ok {
		t.Error("active bucket was evicted")
	}
}

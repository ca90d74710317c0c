package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func limitedHandler(rate int) http.Handler {
	cfg := RateLimitConfig{Enabled: true, Rate: rate, Window: time.Minute}
	return RateLimit(NewMemoryCounter(), cfg, nil)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
}

func TestRateLimit_AllowsUnderLimit(t *testing.T) {
	h := limitedHandler(3)

	for i := 0; i < 3; i++ {
		w := httptest.NewRecorder()
		r := httptest.NewRequest("GET", "/plugins/invoices/summary", nil)
		r.RemoteAddr = "10.0.0.1:5000"
		h.ServeHTTP(w, r)
		if w.Code != http.StatusOK {
			t.Fatalf("request %d: status = %d", i, w.Code)
		}
	}
}

func TestRateLimit_RejectsOverLimit(t *testing.T) {
	h := limitedHandler(2)

	var last *httptest.ResponseRecorder
	for i := 0; i < 3; i++ {
		last = httptest.NewRecorder()
		r := httptest.NewRequest("GET", "/plugins/invoices/summary", nil)
		r.RemoteAddr = "10.0.0.1:5000"
		h.ServeHTTP(last, r)
	}

	if last.Code != http.StatusTooManyRequests {
		t.Fatalf("status = %d, want 429", last.Code)
	}
	if got := last.Header().Get("X-RateLimit-Remaining"); got != "0" {
		t.Errorf("remaining = %q, want 0", got)
	}
}

func TestRateLimit_KeysByAPIKeyThenIP(t *testing.T) {
	h := limitedHandler(1)

	// Exhaust the window for one API key.
	r := httptest.NewRequest("GET", "/plugins/crm/contacts", nil)
	r.Header.Set("X-API-Key", "tenant-a")
	h.ServeHTTP(httptest.NewRecorder(), r)

	w := httptest.NewRecorder()
	h.ServeHTTP(w, r)
	if w.Code != http.StatusTooManyRequests {
		t.Fatalf("same key: status = %d, want 429", w.Code)
	}

	// A different key from the same address is unaffected.
	r2 := httptest.NewRequest("GET", "/plugins/crm/contacts", nil)
	r2.Header.Set("X-API-Key", "tenant-b")
	w2 := httptest.NewRecorder()
	h.ServeHTTP(w2, r2)
	if w2.Code != http.StatusOK {
		t.Errorf("other key: status = %d, want 200", w2.Code)
	}
}

func TestRateLimit_DisabledPassesThrough(t *testing.T) {
	cfg := RateLimitConfig{Enabled: false, Rate: 1, Window: time.Minute}
	h := RateLimit(NewMemoryCounter(), cfg, nil)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	for i := 0; i < 5; i++ {
		w := httptest.NewRecorder()
		h.ServeHTTP(w, httptest.NewRequest("GET", "/", nil))
		if w.Code != http.StatusOK {
			t.Fatalf("disabled limiter rejected request %d", i)
		}
	}
}

func TestMemoryCounter_WindowReset(t *testing.T) {
	c := NewMemoryCounter()

	ctx := context.Background()
	c.Incr(ctx, "k", 10*time.Millisecond)
	c.Incr(ctx, "k", 10*time.Millisecond)
	time.Sleep(20 * time.Millisecond)

	count, err := c.Incr(ctx, "k", 10*time.Millisecond)
	if err != nil {
		t.Fatal(err)
	}
	if count != 1 {
		t.Errorf("count after window reset = %d, want 1", count)
	}
}

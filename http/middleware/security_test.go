package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
)

func okHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
}

func TestCORS_PreflightAnswered(t *testing.T) {
	cfg := CORSConfig{Enabled: true, AllowedOrigins: []string{"https://panel.example.com"}, MaxAge: 600}
	h := CORS(cfg)(okHandler())

	r := httptest.NewRequest("OPTIONS", "/api/v1/registry/routes", nil)
	r.Header.Set("Origin", "https://panel.example.com")
	w := httptest.NewRecorder()
	h.ServeHTTP(w, r)

	if w.Code != http.StatusNoContent {
		t.Fatalf("status = %d, want 204", w.Code)
	}
	if got := w.Header().Get("Access-Control-Allow-Origin"); got != "https://panel.example.com" {
		t.Errorf("allow-origin = %q", got)
	}
	if w.Header().Get("Access-Control-Allow-Methods") == "" {
		t.Error("allow-methods missing on preflight")
	}
}

func TestCORS_DisallowedOrigin(t *testing.T) {
	cfg := CORSConfig{Enabled: true, AllowedOrigins: []string{"https://panel.example.com"}}
	h := CORS(cfg)(okHandler())

	r := httptest.NewRequest("GET", "/", nil)
	r.Header.Set("Origin", "https://evil.example.com")
	w := httptest.NewRecorder()
	h.ServeHTTP(w, r)

	if got := w.Header().Get("Access-Control-Allow-Origin"); got != "" {
		t.Errorf("allow-origin = %q, want unset", got)
	}
	if w.Code != http.StatusOK {
		t.Errorf("non-preflight request must still reach the handler, status = %d", w.Code)
	}
}

func TestCORS_DisabledPassesThrough(t *testing.T) {
	h := CORS(CORSConfig{})(okHandler())

	r := httptest.NewRequest("OPTIONS", "/", nil)
	r.Header.Set("Origin", "https://anywhere.example.com")
	w := httptest.NewRecorder()
	h.ServeHTTP(w, r)

	if w.Header().Get("Access-Control-Allow-Origin") != "" {
		t.Error("disabled CORS must not stamp headers")
	}
}

func TestSecureHeaders(t *testing.T) {
	h := SecureHeaders()(okHandler())

	w := httptest.NewRecorder()
	h.ServeHTTP(w, httptest.NewRequest("GET", "/", nil))

	if got := w.Header().Get("X-Content-Type-Options"); got != "nosniff" {
		t.Errorf("nosniff header = %q", got)
	}
	if got := w.Header().Get("X-Frame-Options"); got != "DENY" {
		t.Errorf("frame options = %q", got)
	}
}

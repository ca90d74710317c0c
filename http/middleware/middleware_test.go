package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestTraceID_GeneratesWhenAbsent(t *testing.T) {
	var seen string
	h := TraceID()(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = GetTraceID(r.Context())
	}))

	w := httptest.NewRecorder()
	h.ServeHTTP(w, httptest.NewRequest("GET", "/", nil))

	if seen == "" {
		t.Fatal("trace ID not generated")
	}
	if got := w.Header().Get(TraceIDHeader); got != seen {
		t.Errorf("response header %q != context value %q", got, seen)
	}
}

func TestTraceID_PropagatesCallerValue(t *testing.T) {
	var seen string
	h := TraceID()(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = GetTraceID(r.Context())
	}))

	r := httptest.NewRequest("GET", "/", nil)
	r.Header.Set(TraceIDHeader, "caller-trace")
	h.ServeHTTP(httptest.NewRecorder(), r)

	if seen != "caller-trace" {
		t.Errorf("trace ID = %q, want caller-trace", seen)
	}
}

func TestTiming_DurationAvailable(t *testing.T) {
	var dur int64 = -1
	h := Timing()(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		dur = GetRequestDuration(r.Context())
	}))

	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest("GET", "/", nil))

	if dur < 0 {
		t.Error("duration not recorded")
	}
}

func TestGetTraceID_EmptyWithoutMiddleware(t *testing.T) {
	r := httptest.NewRequest("GET", "/", nil)
	if got := GetTraceID(r.Context()); got != "" {
		t.Errorf("got %q, want empty", got)
	}
}

func TestRequestLogger_PreservesStatus(t *testing.T) {
	h := RequestLogger(nil)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	}))

	w := httptest.NewRecorder()
	h.ServeHTTP(w, httptest.NewRequest("GET", "/", nil))

	if w.Code != http.StatusTeapot {
		t.Errorf("status = %d, want 418", w.Code)
	}
}

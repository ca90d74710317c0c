package responder

import (
	"net/http/httptest"
	"testing"

	"github.com/billforge/panel/json"
)

func decode(t *testing.T, body []byte) Response {
	t.Helper()
	var res Response
	if err := json.Unmarshal(body, &res); err != nil {
		t.Fatalf("response is not valid JSON: %v\n%s", err, body)
	}
	return res
}

func TestOK_WrapsDataInEnvelope(t *testing.T) {
	w := httptest.NewRecorder()
	r := httptest.NewRequest("GET", "/api/v1/registry/routes", nil)

	OK(w, r, map[string]string{"status": "ready"}, WithTraceID("t-123"))

	if w.Code != 200 {
		t.Fatalf("status = %d, want 200", w.Code)
	}
	if ct := w.Header().Get("Content-Type"); ct != "application/json" {
		t.Errorf("content type = %q", ct)
	}

	res := decode(t, w.Body.Bytes())
	if res.Error != nil {
		t.Errorf("unexpected error in success envelope: %+v", res.Error)
	}
	if res.Meta.TraceId != "t-123" {
		t.Errorf("traceId = %q", res.Meta.TraceId)
	}
	data, ok := res.Data.(map[string]any)
	if !ok || data["status"] != "ready" {
		t.Errorf("data = %v", res.Data)
	}
}

func TestRouteNotFound_CodeAndStatus(t *testing.T) {
	w := httptest.NewRecorder()
	r := httptest.NewRequest("GET", "/plugins/ghost/x", nil)

	RouteNotFound(w, r, "no handler for GET /plugins/ghost/x")

	if w.Code != 404 {
		t.Fatalf("status = %d, want 404", w.Code)
	}
	res := decode(t, w.Body.Bytes())
	if res.Error == nil || res.Error.Code != ErrCodeRouteNotFound {
		t.Errorf("error = %+v, want code %d", res.Error, ErrCodeRouteNotFound)
	}
}

func TestPluginHandlerError_AttributesOwner(t *testing.T) {
	w := httptest.NewRecorder()
	r := httptest.NewRequest("POST", "/plugins/invoices/close", nil)

	PluginHandlerError(w, r, "invoices")

	if w.Code != 502 {
		t.Fatalf("status = %d, want 502", w.Code)
	}
	res := decode(t, w.Body.Bytes())
	if res.Error == nil || res.Error.Code != ErrCodePluginHandler {
		t.Fatalf("error = %+v", res.Error)
	}
	details, ok := res.Error.Details.(map[string]any)
	if !ok || details["plugin"] != "invoices" {
		t.Errorf("details = %v, want plugin attribution", res.Error.Details)
	}
}

func TestValidationError_CarriesDetails(t *testing.T) {
	w := httptest.NewRecorder()
	r := httptest.NewRequest("POST", "/x", nil)

	ValidationError(w, r, []FieldError{{Field: "reason", Message: "is required"}})

	if w.Code != 400 {
		t.Fatalf("status = %d, want 400", w.Code)
	}
	res := decode(t, w.Body.Bytes())
	if res.Error == nil || res.Error.Code != ErrCodeValidationFailed {
		t.Fatalf("error = %+v", res.Error)
	}
	if res.Error.Details == nil {
		t.Error("details missing")
	}
}

func TestNoContent_NoBody(t *testing.T) {
	w := httptest.NewRecorder()
	r := httptest.NewRequest("DELETE", "/api/v1/registry/plugins/crm/routes", nil)

	NoContent(w, r, WithTraceID("t-9"))

	if w.Code != 204 {
		t.Fatalf("status = %d, want 204", w.Code)
	}
	if w.Body.Len() != 0 {
		t.Errorf("204 must not carry a body, got %q", w.Body.String())
	}
	if w.Header().Get("X-Trace-ID") != "t-9" {
		t.Error("trace header missing")
	}
}

func TestGetErrorMessage_UnknownCode(t *testing.T) {
	if got := GetErrorMessage(9999); got != "Unknown Error" {
		t.Errorf("got %q", got)
	}
}

package binding

import (
	"errors"
	"net/http/httptest"
	"strings"
	"testing"
)

type rebuildRequest struct {
	Reason string `json:"reason" validate:"required,min=3"`
}

func TestJSON_DecodesAndValidates(t *testing.T) {
	r := httptest.NewRequest("POST", "/api/v1/registry/rebuild",
		strings.NewReader(`{"reason":"plugin toggled"}`))

	var req rebuildRequest
	if err := JSON(r, &req); err != nil {
		t.Fatalf("JSON failed: %v", err)
	}
	if req.Reason != "plugin toggled" {
		t.Errorf("reason = %q", req.Reason)
	}
}

func TestJSON_EmptyBody(t *testing.T) {
	r := httptest.NewRequest("POST", "/x", strings.NewReader(""))

	var req rebuildRequest
	err := JSON(r, &req)
	var be *BindError
	if !errors.As(err, &be) || be.Type != "bind_error" {
		t.Fatalf("want bind_error, got %v", err)
	}
}

func TestJSON_MalformedBody(t *testing.T) {
	r := httptest.NewRequest("POST", "/x", strings.NewReader(`{"reason":`))

	var req rebuildRequest
	err := JSON(r, &req)
	var be *BindError
	if !errors.As(err, &be) || be.Type != "json_error" {
		t.Fatalf("want json_error, got %v", err)
	}
}

func TestJSON_ValidationFailure(t *testing.T) {
	r := httptest.NewRequest("POST", "/x", strings.NewReader(`{"reason":"no"}`))

	var req rebuildRequest
	err := JSON(r, &req)
	var ve ValidationErrors
	if !errors.As(err, &ve) {
		t.Fatalf("want ValidationErrors, got %v", err)
	}
	if ve[0].Field != "Reason" {
		t.Errorf("field = %q, want Reason", ve[0].Field)
	}
}

type listRoutesQuery struct {
	Plugin string   `query:"plugin"`
	Kind   string   `query:"kind" default:"all" validate:"oneof=all api ui"`
	Limit  int      `query:"limit" default:"50"`
	Owners []string `query:"owners"`
}

func TestQuery_BindsWithDefaults(t *testing.T) {
	r := httptest.NewRequest("GET", "/api/v1/registry/routes?plugin=invoices", nil)

	var q listRoutesQuery
	if err := Query(r, &q); err != nil {
		t.Fatalf("Query failed: %v", err)
	}
	if q.Plugin != "invoices" {
		t.Errorf("plugin = %q", q.Plugin)
	}
	if q.Kind != "all" {
		t.Errorf("kind default = %q, want all", q.Kind)
	}
	if q.Limit != 50 {
		t.Errorf("limit default = %d, want 50", q.Limit)
	}
}

func TestQuery_SliceBothStyles(t *testing.T) {
	for _, raw := range []string{
		"/x?owners=crm&owners=invoices",
		"/x?owners=crm,invoices",
	} {
		r := httptest.NewRequest("GET", raw, nil)
		var q listRoutesQuery
		if err := Query(r, &q); err != nil {
			t.Fatalf("Query(%s) failed: %v", raw, err)
		}
		if len(q.Owners) != 2 || q.Owners[0] != "crm" || q.Owners[1] != "invoices" {
			t.Errorf("Query(%s) owners = %v", raw, q.Owners)
		}
	}
}

func TestQuery_InvalidInt(t *testing.T) {
	r := httptest.NewRequest("GET", "/x?limit=abc", nil)

	var q listRoutesQuery
	err := Query(r, &q)
	var be *BindError
	if !errors.As(err, &be) || be.Field != "Limit" {
		t.Fatalf("want bind error on Limit, got %v", err)
	}
}

func TestQuery_ValidationOnBoundValues(t *testing.T) {
	r := httptest.NewRequest("GET", "/x?kind=bogus", nil)

	var q listRoutesQuery
	err := Query(r, &q)
	var ve ValidationErrors
	if !errors.As(err, &ve) {
		t.Fatalf("want ValidationErrors, got %v", err)
	}
}

func TestQuery_RequiresStructPointer(t *testing.T) {
	r := httptest.NewRequest("GET", "/x", nil)

	var n int
	if err := Query(r, &n); err == nil {
		t.Fatal("non-struct target should fail")
	}
	if err := Query(r, nil); err == nil {
		t.Fatal("nil target should fail")
	}
}

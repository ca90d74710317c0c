package json

import (
	"bytes"
	"strings"
	"testing"
)

type payload struct {
	Name  string `json:"name"`
	Limit int    `json:"limit" default:"25"`
}

func TestUnmarshal_AppliesDefaults(t *testing.T) {
	var p payload
	if err := Unmarshal([]byte(`{"name":"invoices"}`), &p); err != nil {
		t.Fatalf("Unmarshal failed: %v", err)
	}
	if p.Name != "invoices" {
		t.Errorf("got Name=%q, want %q", p.Name, "invoices")
	}
	if p.Limit != 25 {
		t.Errorf("got Limit=%d, want default 25", p.Limit)
	}
}

func TestUnmarshal_ExplicitValueWins(t *testing.T) {
	var p payload
	if err := Unmarshal([]byte(`{"name":"crm","limit":100}`), &p); err != nil {
		t.Fatalf("Unmarshal failed: %v", err)
	}
	if p.Limit != 100 {
		t.Errorf("got Limit=%d, want 100", p.Limit)
	}
}

func TestMarshalRoundTrip(t *testing.T) {
	data, err := Marshal(payload{Name: "x", Limit: 3})
	if err != nil {
		t.Fatalf("Marshal failed: %v", err)
	}
	if !Valid(data) {
		t.Fatalf("Marshal produced invalid JSON: %s", data)
	}

	var back payload
	if err := Unmarshal(data, &back); err != nil {
		t.Fatalf("Unmarshal failed: %v", err)
	}
	if back.Limit != 3 {
		t.Errorf("got Limit=%d, want 3", back.Limit)
	}
}

func TestDecoder_AppliesDefaults(t *testing.T) {
	var p payload
	dec := NewDecoder(strings.NewReader(`{"name":"billing"}`))
	if err := dec.Decode(&p); err != nil {
		t.Fatalf("Decode failed: %v", err)
	}
	if p.Limit != 25 {
		t.Errorf("got Limit=%d, want default 25", p.Limit)
	}
}

func TestEncoder(t *testing.T) {
	var buf bytes.Buffer
	if err := NewEncoder(&buf).Encode(payload{Name: "y"}); err != nil {
		t.Fatalf("Encode failed: %v", err)
	}
	if !strings.Contains(buf.String(), `"name":"y"`) {
		t.Errorf("unexpected output: %s", buf.String())
	}
}

package storage

import (
	"context"
	"strings"
	"testing"
)

func TestLocalProvider_UploadAndURL(t *testing.T) {
	p, err := NewLocalProvider(t.TempDir(), "/artifacts")
	if err != nil {
		t.Fatalf("NewLocalProvider failed: %v", err)
	}

	url, err := p.Upload(context.Background(), strings.NewReader("invoice body"), "invoices/inv-001.html")
	if err != nil {
		t.Fatalf("Upload failed: %v", err)
	}
	if url != "/artifacts/invoices/inv-001.html" {
		t.Errorf("got URL %q", url)
	}

	files, err := p.List(context.Background(), "invoices", 0)
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(files) != 1 || files[0].Name != "inv-001.html" {
		t.Errorf("unexpected listing: %+v", files)
	}
}

func TestLocalProvider_DeleteMissingIsNoop(t *testing.T) {
	p, err := NewLocalProvider(t.TempDir(), "/artifacts")
	if err != nil {
		t.Fatalf("NewLocalProvider failed: %v", err)
	}
	if err := p.Delete(context.Background(), "nope/missing.pdf"); err != nil {
		t.Errorf("Delete of missing file should be a no-op, got %v", err)
	}
}

func TestNewProvider_UnknownType(t *testing.T) {
	if _, err := NewProvider(Config{Type: "ftp"}); err == nil {
		t.Error("unknown provider type should fail")
	}
}

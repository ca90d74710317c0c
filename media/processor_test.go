package media

import (
	"bytes"
	"context"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/billforge/panel/concurrency"
	"github.com/billforge/panel/storage"
)

func testImage(t *testing.T) *bytes.Buffer {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, 200, 120))
	for x := 0; x < 200; x++ {
		for y := 0; y < 120; y++ {
			img.Set(x, y, color.RGBA{R: uint8(x), G: uint8(y), B: 128, A: 255})
		}
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatal(err)
	}
	return &buf
}

func newTestProcessor(t *testing.T) (*Processor, *concurrency.Pool, string) {
	t.Helper()
	dir := t.TempDir()
	store, err := storage.NewLocalProvider(dir, "/artifacts")
	if err != nil {
		t.Fatal(err)
	}
	pool := concurrency.NewPool(2, 8)
	return NewProcessor(store, pool, nil, nil), pool, dir
}

func TestProcessor_StoreGeneratesVariants(t *testing.T) {
	p, pool, dir := newTestProcessor(t)

	url, err := p.Store(context.Background(), testImage(t), "tenants/acme/logo.png")
	if err != nil {
		t.Fatalf("Store: %v", err)
	}
	if url == "" {
		t.Error("empty URL for original")
	}

	// Close flushes queued variant jobs.
	pool.Close()
	if errs := pool.Errors(); len(errs) != 0 {
		t.Fatalf("variant jobs failed: %v", errs)
	}

	for _, name := range []string{"logo.png", "logo.thumb.png", "logo.nav.png"} {
		full := filepath.Join(dir, "tenants", "acme", name)
		if _, err := os.Stat(full); err != nil {
			t.Errorf("missing %s: %v", name, err)
		}
	}

	// Variants must actually be smaller than the original.
	f, err := os.Open(filepath.Join(dir, "tenants", "acme", "logo.nav.png"))
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	cfg, _, err := image.DecodeConfig(f)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Width != 32 {
		t.Errorf("nav variant width = %d, want 32", cfg.Width)
	}
}

func TestProcessor_RejectsNonImage(t *testing.T) {
	p, pool, _ := newTestProcessor(t)
	defer pool.Close()

	_, err := p.Store(context.Background(), bytes.NewReader([]byte("not an image")), "tenants/acme/logo.png")
	if err == nil {
		t.Error("non-image upload should fail")
	}
}

func TestProcessor_DeleteRemovesVariants(t *testing.T) {
	p, pool, dir := newTestProcessor(t)

	if _, err := p.Store(context.Background(), testImage(t), "tenants/acme/logo.png"); err != nil {
		t.Fatal(err)
	}
	pool.Close()

	if err := p.Delete(context.Background(), "tenants/acme/logo.png"); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	for _, name := range []string{"logo.png", "logo.thumb.png", "logo.nav.png"} {
		if _, err := os.Stat(filepath.Join(dir, "tenants", "acme", name)); !os.IsNotExist(err) {
			t.Errorf("%s still present after delete", name)
		}
	}
}

func TestVariantPath(t *testing.T) {
	cases := map[string]string{
		"logo.png":           "logo.thumb.png",
		"a/b/c.jpeg":         "a/b/c.thumb.jpeg",
		"noextension":        "noextension.thumb",
		"tenants/x/mark.jpg": "tenants/x/mark.thumb.jpg",
	}
	for in, want := range cases {
		if got := VariantPath(in, "thumb"); got != want {
			t.Errorf("VariantPath(%q) = %q, want %q", in, got, want)
		}
	}
}

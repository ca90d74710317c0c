package invoices

import (
	"bytes"
	"context"
	"errors"
	"image"
	"image/png"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/billforge/panel/ent/schema"
	apperrors "github.com/billforge/panel/errors"
	"github.com/billforge/panel/plugin"
	"github.com/billforge/panel/plugin/plugintest"
	"github.com/billforge/panel/registry"
	"github.com/billforge/panel/runtime"
	"github.com/billforge/panel/storage"
)

func TestInvoices_Summary(t *testing.T) {
	h := plugintest.NewHarness(t, New())

	result := h.MustInvoke("GET", "/plugins/invoices/summary")
	summary, ok := result.(map[string]int)
	if !ok {
		t.Fatalf("result = %T", result)
	}
	if summary["open"] != 2 || summary["paid"] != 1 {
		t.Errorf("summary = %v", summary)
	}
}

func TestInvoices_ListFiltersByTenant(t *testing.T) {
	h := plugintest.NewHarness(t, New())

	result := h.MustInvoke("GET", "/plugins/invoices/list?tenant=globex")
	list, ok := result.([]Invoice)
	if !ok {
		t.Fatalf("result = %T", result)
	}
	if len(list) != 1 || list[0].Number != "INV-1003" {
		t.Errorf("list = %v", list)
	}
}

func TestInvoices_Settle(t *testing.T) {
	h := plugintest.NewHarness(t, New())

	result := h.MustInvoke("POST", "/plugins/invoices/settle?number=INV-1001")
	inv, ok := result.(*Invoice)
	if !ok {
		t.Fatalf("result = %T", result)
	}
	if inv.Status != "paid" {
		t.Errorf("status = %q, want paid", inv.Status)
	}

	// Settling twice fails, attributed to this plugin.
	_, err := h.Invoke("POST", "/plugins/invoices/settle?number=INV-1001")
	hf, ok := registry.AsHandlerFailure(err)
	if !ok {
		t.Fatalf("err = %v, want handler failure", err)
	}
	if hf.Plugin != "invoices" {
		t.Errorf("owner = %q", hf.Plugin)
	}
	var appErr *apperrors.AppError
	if !errors.As(err, &appErr) || appErr.Type != apperrors.ErrorTypeConflict {
		t.Errorf("err = %v, want conflict", err)
	}
}

func TestInvoices_SettleRequiresNumber(t *testing.T) {
	h := plugintest.NewHarness(t, New())

	if _, err := h.Invoke("POST", "/plugins/invoices/settle"); err == nil {
		t.Error("settle without number should fail")
	}
}

func TestInvoices_LogoUploadGeneratesVariants(t *testing.T) {
	dir := t.TempDir()
	store, err := storage.NewLocalProvider(dir, "/artifacts")
	if err != nil {
		t.Fatal(err)
	}
	h := plugintest.NewHarnessWith(t, runtime.Config{Storage: store}, New())

	result, err := h.InvokeBody("POST", "/plugins/invoices/logo?tenant=acme", testLogo(t))
	if err != nil {
		t.Fatal(err)
	}
	out, ok := result.(map[string]string)
	if !ok {
		t.Fatalf("result = %T", result)
	}
	if out["url"] != "/artifacts/branding/acme/logo.png" {
		t.Errorf("url = %q", out["url"])
	}

	// Variants render off the request path; poll for the thumbnail.
	thumb := filepath.Join(dir, "branding", "acme", "logo.thumb.png")
	deadline := time.After(2 * time.Second)
	for {
		if _, err := os.Stat(thumb); err == nil {
			return
		}
		select {
		case <-deadline:
			t.Fatal("thumb variant never written")
		case <-time.After(10 * time.Millisecond):
		}
	}
}

func TestInvoices_LogoRejectsNonImage(t *testing.T) {
	store, err := storage.NewLocalProvider(t.TempDir(), "/artifacts")
	if err != nil {
		t.Fatal(err)
	}
	h := plugintest.NewHarnessWith(t, runtime.Config{Storage: store}, New())

	_, err = h.InvokeBody("POST", "/plugins/invoices/logo?tenant=acme", strings.NewReader("not an image"))
	var appErr *apperrors.AppError
	if !errors.As(err, &appErr) || appErr.Type != apperrors.ErrorTypeValidation {
		t.Errorf("err = %v, want validation", err)
	}
}

func TestInvoices_LogoRequiresStorage(t *testing.T) {
	h := plugintest.NewHarness(t, New())

	_, err := h.InvokeBody("POST", "/plugins/invoices/logo?tenant=acme", testLogo(t))
	var appErr *apperrors.AppError
	if !errors.As(err, &appErr) || appErr.Type != apperrors.ErrorTypeInternal {
		t.Errorf("err = %v, want internal", err)
	}
}

func testLogo(t *testing.T) *bytes.Reader {
	t.Helper()
	var buf bytes.Buffer
	if err := png.Encode(&buf, image.NewRGBA(image.Rect(0, 0, 64, 40))); err != nil {
		t.Fatal(err)
	}
	return bytes.NewReader(buf.Bytes())
}

func TestInvoices_RegistersBillingModels(t *testing.T) {
	h := plugintest.NewHarness(t, New())

	models := h.Manager.GetPluginModels()["invoices"]
	if len(models) != 3 {
		t.Fatalf("models = %d, want 3", len(models))
	}
	if _, ok := models[0].(schema.Tenant); !ok {
		t.Errorf("models[0] = %T, want schema.Tenant", models[0])
	}
}

func TestInvoices_OnlyPageSlotsBecomeRoutes(t *testing.T) {
	h := plugintest.NewHarness(t, New())

	if !h.Registry.HasUIRoute("/admin/invoices") {
		t.Error("admin page route missing")
	}
	// The dashboard widget slot is a rendering concern, never dispatchable.
	for _, info := range h.Registry.ListAllRoutes("invoices") {
		if info.Kind == registry.KindUI && info.Route != "GET /admin/invoices" {
			t.Errorf("unexpected ui route %q", info.Route)
		}
	}
}

func TestInvoices_TenantClosedVoidsOpenInvoices(t *testing.T) {
	h := plugintest.NewHarness(t, New())

	err := h.Manager.Publish(context.Background(), plugin.Event{
		Name:   "tenant.closed",
		Source: "host",
		Data:   map[string]string{"tenant": "acme"},
	})
	if err != nil {
		t.Fatal(err)
	}

	// Delivery is asynchronous; poll until the ledger reflects it.
	deadline := time.After(2 * time.Second)
	for {
		result := h.MustInvoke("GET", "/plugins/invoices/summary")
		if summary := result.(map[string]int); summary["void"] == 1 {
			return
		}
		select {
		case <-deadline:
			t.Fatal("open acme invoice never voided")
		case <-time.After(10 * time.Millisecond):
		}
	}
}

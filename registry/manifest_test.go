package registry

import (
	"testing"

	"github.com/billforge/panel/component"
	"github.com/billforge/panel/plugin"
)

func TestUIManifest(t *testing.T) {
	reg := New(nil)
	reg.Rebuild([]plugin.Descriptor{
		{
			ID:      "crm",
			Enabled: true,
			ExtensionPoints: map[string]component.Factory{
				"admin.page.route.customers":  pageFactory("Customers"),
				"admin.page.route.lead-board": pageFactory("LeadBoard"),
			},
		},
		{
			ID:      "billing",
			Enabled: true,
			ExtensionPoints: map[string]component.Factory{
				"admin.page.route.invoices": pageFactory("Invoices"),
			},
		},
	})

	manifest := reg.UIManifest()
	if len(manifest.Items) != 3 {
		t.Fatalf("got %d items, want 3", len(manifest.Items))
	}

	// Sorted by path.
	wantPaths := []string{"/admin/customers", "/admin/invoices", "/admin/lead-board"}
	for i, item := range manifest.Items {
		if item.Path != wantPaths[i] {
			t.Errorf("item %d path = %q, want %q", i, item.Path, wantPaths[i])
		}
	}

	if manifest.Items[2].Label != "Lead Board" {
		t.Errorf("got label %q, want %q", manifest.Items[2].Label, "Lead Board")
	}
	if manifest.Items[1].Owner != "billing" {
		t.Errorf("got owner %q, want billing", manifest.Items[1].Owner)
	}
}

func TestUIManifest_LabelFromLastSegment(t *testing.T) {
	reg := New(nil)
	reg.RegisterUIRoute("/admin/audit-log", pageFactory("AuditLog"), "audit")
	reg.RegisterUIRoute("/admin/billing/reports/", pageFactory("Reports"), "billing")

	manifest := reg.UIManifest()
	if len(manifest.Items) != 2 {
		t.Fatalf("got %d items, want 2", len(manifest.Items))
	}
	if got := manifest.Items[0].Label; got != "Audit Log" {
		t.Errorf("got label %q, want %q", got, "Audit Log")
	}
	// A trailing slash does not produce an empty label; the segment
	// before it wins.
	if got := manifest.Items[1].Label; got != "Reports" {
		t.Errorf("got label %q, want Reports", got)
	}
}

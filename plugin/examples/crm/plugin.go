// Package crm is a built-in plugin managing tenant contacts. It leans
// on the invoices plugin for per-contact billing context, so it
// declares that dependency and tolerates its own failure.
package crm

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/billforge/panel/component"
	"github.com/billforge/panel/plugin"
	"github.com/billforge/panel/plugin/examples/invoices"
)

// CRMPlugin serves contact lookups and the customers admin page.
//
// Implements: Plugin, RouteProvider, ExtensionProvider, Configurable
type CRMPlugin struct {
	mu       sync.RWMutex
	contacts map[string]Contact
	ledger   *invoices.Ledger
}

// Contact is one tenant contact.
type Contact struct {
	Tenant string `json:"tenant"`
	Name   string `json:"name"`
	Email  string `json:"email"`
}

func New() *CRMPlugin { return &CRMPlugin{} }

// --- Core Interface (mandatory) ---

func (p *CRMPlugin) Name() string           { return "crm" }
func (p *CRMPlugin) Version() string        { return "0.9.0" }
func (p *CRMPlugin) Dependencies() []string { return []string{"invoices"} }

func (p *CRMPlugin) Enable(ctx context.Context, host *plugin.HostContext) error {
	ledger, err := plugin.Resolve[*invoices.Ledger](host.Services, "invoices.ledger")
	if err != nil {
		return fmt.Errorf("crm requires the invoice ledger: %w", err)
	}

	p.ledger = ledger
	p.contacts = map[string]Contact{
		"acme/ada":     {Tenant: "acme", Name: "Ada Quinn", Email: "ada@acme.test"},
		"globex/homer": {Tenant: "globex", Name: "Homer Slate", Email: "homer@globex.test"},
	}
	return nil
}

// --- RouteProvider ---

func (p *CRMPlugin) Routes() map[string]plugin.RouteHandler {
	return map[string]plugin.RouteHandler{
		"GET /contacts":         p.handleContacts,
		"GET /contacts/billing": p.handleBilling,
	}
}

// --- ExtensionProvider ---

func (p *CRMPlugin) ExtensionPoints() map[string]component.Factory {
	return map[string]component.Factory{
		"admin.page.route.customers": component.NewPage("CustomersPage", nil),
	}
}

// --- Configurable ---

func (p *CRMPlugin) PluginOptions() plugin.PluginOptions {
	return plugin.PluginOptions{
		Optional:    true,
		Description: "Tenant contact directory",
	}
}

// --- Compile-time interface checks ---

var (
	_ plugin.Plugin            = (*CRMPlugin)(nil)
	_ plugin.RouteProvider     = (*CRMPlugin)(nil)
	_ plugin.ExtensionProvider = (*CRMPlugin)(nil)
	_ plugin.Configurable      = (*CRMPlugin)(nil)
)

// --- Handlers ---

func (p *CRMPlugin) handleContacts(ctx context.Context, host *plugin.HostContext, req *plugin.Request) (any, error) {
	tenant := req.Query.Get("tenant")

	p.mu.RLock()
	defer p.mu.RUnlock()

	out := make([]Contact, 0, len(p.contacts))
	for _, c := range p.contacts {
		if tenant != "" && c.Tenant != tenant {
			continue
		}
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

// handleBilling joins a contact's tenant against the invoice ledger.
func (p *CRMPlugin) handleBilling(ctx context.Context, host *plugin.HostContext, req *plugin.Request) (any, error) {
	tenant := req.Query.Get("tenant")
	if tenant == "" {
		return nil, fmt.Errorf("tenant query parameter is required")
	}
	return map[string]any{
		"tenant":   tenant,
		"invoices": p.ledger.List(tenant),
	}, nil
}

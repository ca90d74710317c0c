// Package invoices is a built-in plugin exposing the tenant invoice
// ledger through the panel's route registry.
package invoices

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"go.uber.org/zap"

	"github.com/billforge/panel/component"
	"github.com/billforge/panel/concurrency"
	"github.com/billforge/panel/ent/schema"
	apperrors "github.com/billforge/panel/errors"
	"github.com/billforge/panel/media"
	"github.com/billforge/panel/plugin"
)

// InvoicesPlugin serves invoice lookups and the invoices admin page.
//
// Implements: Plugin, Installable, Disableable, RouteProvider,
// ExtensionProvider, ModelProvider, EventSubscriber, HealthReporter,
// Configurable
type InvoicesPlugin struct {
	ledger *Ledger
	assets *media.Processor
	pool   *concurrency.Pool
	logger *zap.Logger
}

func New() *InvoicesPlugin { return &InvoicesPlugin{} }

// --- Core Interface (mandatory) ---

func (p *InvoicesPlugin) Name() string           { return "invoices" }
func (p *InvoicesPlugin) Version() string        { return "1.2.0" }
func (p *InvoicesPlugin) Dependencies() []string { return nil }

func (p *InvoicesPlugin) Enable(ctx context.Context, host *plugin.HostContext) error {
	p.logger = host.Logger
	p.ledger = NewLedger(host.Config.GetString("currency", "USD"))

	if host.Storage != nil {
		p.pool = concurrency.NewPool(2, 16)
		p.assets = media.NewProcessor(host.Storage, p.pool, nil, host.Logger)
	}

	return host.Services.Register("invoices.ledger", p.ledger)
}

// --- Installable ---

func (p *InvoicesPlugin) Install(ctx context.Context, host *plugin.HostContext) error {
	host.Logger.Info("invoices plugin: preparing ledger storage")
	return nil
}

// --- Disableable ---

func (p *InvoicesPlugin) Disable(ctx context.Context, host *plugin.HostContext) error {
	host.Services.Unregister("invoices.ledger")
	if p.pool != nil {
		p.pool.Close()
		p.pool = nil
		p.assets = nil
	}
	return nil
}

// --- RouteProvider ---

func (p *InvoicesPlugin) Routes() map[string]plugin.RouteHandler {
	return map[string]plugin.RouteHandler{
		"GET /summary": p.handleSummary,
		"GET /list":    p.handleList,
		"POST /settle": p.handleSettle,
		"POST /logo":   p.handleLogo,
	}
}

// --- ExtensionProvider ---

func (p *InvoicesPlugin) ExtensionPoints() map[string]component.Factory {
	return map[string]component.Factory{
		"admin.page.route.invoices": component.NewPage("InvoicesPage", map[string]any{
			"listEndpoint": "/plugins/invoices/list",
		}),
		// Widget slot, consumed by the dashboard renderer, never routed.
		"dashboard.widget.revenue": component.NewPage("RevenueWidget", nil),
	}
}

// --- ModelProvider ---

// RegisterModels declares the billing schemas this plugin persists so
// the host's migration step can create their tables.
func (p *InvoicesPlugin) RegisterModels() []any {
	return []any{
		schema.Tenant{},
		schema.Invoice{},
		schema.PluginInstall{},
	}
}

// --- EventSubscriber ---

func (p *InvoicesPlugin) SubscribeEvents(bus plugin.EventBus) {
	bus.Subscribe("tenant.closed", func(ctx context.Context, e plugin.Event) error {
		data, ok := e.Data.(map[string]string)
		if !ok {
			return nil
		}
		voided := p.ledger.VoidOpen(data["tenant"])
		p.logger.Info("voided open invoices for closed tenant",
			zap.String("tenant", data["tenant"]), zap.Int("count", voided))
		return nil
	})
}

// --- HealthReporter ---

func (p *InvoicesPlugin) HealthCheck(ctx context.Context) error {
	if p.ledger == nil {
		return fmt.Errorf("invoice ledger not initialized")
	}
	return nil
}

// --- Configurable ---

func (p *InvoicesPlugin) PluginOptions() plugin.PluginOptions {
	return plugin.PluginOptions{
		Description: "Tenant invoice ledger and admin pages",
	}
}

// --- Compile-time interface checks ---

var (
	_ plugin.Plugin            = (*InvoicesPlugin)(nil)
	_ plugin.Installable       = (*InvoicesPlugin)(nil)
	_ plugin.Disableable       = (*InvoicesPlugin)(nil)
	_ plugin.RouteProvider     = (*InvoicesPlugin)(nil)
	_ plugin.ExtensionProvider = (*InvoicesPlugin)(nil)
	_ plugin.ModelProvider     = (*InvoicesPlugin)(nil)
	_ plugin.EventSubscriber   = (*InvoicesPlugin)(nil)
	_ plugin.HealthReporter    = (*InvoicesPlugin)(nil)
	_ plugin.Configurable      = (*InvoicesPlugin)(nil)
)

// --- Handlers ---

func (p *InvoicesPlugin) handleSummary(ctx context.Context, host *plugin.HostContext, req *plugin.Request) (any, error) {
	return p.ledger.Summary(), nil
}

func (p *InvoicesPlugin) handleList(ctx context.Context, host *plugin.HostContext, req *plugin.Request) (any, error) {
	tenant := req.Query.Get("tenant")
	return p.ledger.List(tenant), nil
}

func (p *InvoicesPlugin) handleSettle(ctx context.Context, host *plugin.HostContext, req *plugin.Request) (any, error) {
	number := req.Query.Get("number")
	if number == "" {
		return nil, apperrors.NewRequired("number")
	}
	inv, err := p.ledger.Settle(number)
	if err != nil {
		return nil, err
	}
	return inv, nil
}

// handleLogo stores a tenant logo and schedules thumbnail variants.
// The request body is the raw image.
func (p *InvoicesPlugin) handleLogo(ctx context.Context, host *plugin.HostContext, req *plugin.Request) (any, error) {
	if p.assets == nil {
		return nil, apperrors.NewInternal("asset storage is not configured")
	}
	tenant := req.Query.Get("tenant")
	if tenant == "" {
		return nil, apperrors.NewRequired("tenant")
	}

	dest := fmt.Sprintf("branding/%s/logo.png", tenant)
	url, err := p.assets.Store(ctx, req.Body, dest)
	if err != nil {
		return nil, apperrors.WrapWithType(err, apperrors.ErrorTypeValidation, "logo must be a decodable image")
	}
	return map[string]string{
		"url":   url,
		"thumb": media.VariantPath(dest, "thumb"),
		"nav":   media.VariantPath(dest, "nav"),
	}, nil
}

// --- Ledger ---

// Invoice is one ledger entry. Amounts are minor units.
type Invoice struct {
	Number    string `json:"number"`
	Tenant    string `json:"tenant"`
	AmountDue int64  `json:"amountDue"`
	Currency  string `json:"currency"`
	Status    string `json:"status"`
}

// Ledger is an in-memory invoice store. The persistent store arrives
// with the ent-backed billing service; the plugin API will not change.
type Ledger struct {
	mu       sync.RWMutex
	invoices map[string]*Invoice
	currency string
}

func NewLedger(currency string) *Ledger {
	l := &Ledger{
		invoices: make(map[string]*Invoice),
		currency: currency,
	}
	l.seed()
	return l
}

func (l *Ledger) seed() {
	for _, inv := range []*Invoice{
		{Number: "INV-1001", Tenant: "acme", AmountDue: 129900, Status: "open"},
		{Number: "INV-1002", Tenant: "acme", AmountDue: 4900, Status: "paid"},
		{Number: "INV-1003", Tenant: "globex", AmountDue: 250000, Status: "open"},
	} {
		inv.Currency = l.currency
		l.invoices[inv.Number] = inv
	}
}

// Summary reports invoice counts by status.
func (l *Ledger) Summary() map[string]int {
	l.mu.RLock()
	defer l.mu.RUnlock()

	out := map[string]int{}
	for _, inv := range l.invoices {
		out[inv.Status]++
	}
	return out
}

// List returns invoices, optionally filtered by tenant, sorted by number.
func (l *Ledger) List(tenant string) []Invoice {
	l.mu.RLock()
	defer l.mu.RUnlock()

	out := make([]Invoice, 0, len(l.invoices))
	for _, inv := range l.invoices {
		if tenant != "" && inv.Tenant != tenant {
			continue
		}
		out = append(out, *inv)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Number < out[j].Number })
	return out
}

// Settle marks an open invoice paid.
func (l *Ledger) Settle(number string) (*Invoice, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	inv, ok := l.invoices[number]
	if !ok {
		return nil, apperrors.NewNotFound("invoice", number)
	}
	if inv.Status != "open" {
		return nil, apperrors.New(apperrors.ErrorTypeConflict,
			fmt.Sprintf("invoice %q is %s, only open invoices can settle", number, inv.Status)).
			WithDetail("number", number)
	}
	inv.Status = "paid"
	out := *inv
	return &out, nil
}

// VoidOpen voids every open invoice for a tenant and returns the count.
func (l *Ledger) VoidOpen(tenant string) int {
	l.mu.Lock()
	defer l.mu.Unlock()

	var voided int
	for _, inv := range l.invoices {
		if inv.Tenant == tenant && inv.Status == "open" {
			inv.Status = "void"
			voided++
		}
	}
	return voided
}

package plugin

import (
	"context"

	"github.com/billforge/panel/component"
)

// Plugin is the minimal interface every plugin must implement.
type Plugin interface {
	Name() string
	Version() string
	Dependencies() []string
	Enable(ctx context.Context, host *HostContext) error
}

// --- Optional Capability Interfaces ---
// The manager detects these via type assertion: if p, ok := plugin.(RouteProvider); ok { ... }

// Installable -- first-time setup (DB migrations, seed data).
type Installable interface {
	Install(ctx context.Context, host *HostContext) error
}

// Uninstallable -- permanent removal (drop tables, delete files).
type Uninstallable interface {
	Uninstall(ctx context.Context, host *HostContext) error
}

// Disableable -- cleanup on shutdown (release resources, flush buffers).
type Disableable interface {
	Disable(ctx context.Context, host *HostContext) error
}

// RouteProvider -- declare API routes as "<METHOD> <subpath>" patterns.
// The registry namespaces each route under /plugins/<id> so unrelated
// plugins can never collide.
type RouteProvider interface {
	Routes() map[string]RouteHandler
}

// ExtensionProvider -- fill named extension point slots with UI component
// factories. Slots prefixed "admin.page.route." become admin page routes.
type ExtensionProvider interface {
	ExtensionPoints() map[string]component.Factory
}

// ModelProvider -- declare ORM schemas for the host's migration step.
type ModelProvider interface {
	RegisterModels() []any
}

// EventSubscriber -- subscribe to system/plugin events.
type EventSubscriber interface {
	SubscribeEvents(bus EventBus)
}

// HealthReporter -- provide custom health checks.
type HealthReporter interface {
	HealthCheck(ctx context.Context) error
}

// Configurable -- declare plugin options (optional flag, description).
type Configurable interface {
	PluginOptions() PluginOptions
}

// PluginOptions holds declarative metadata about a plugin.
type PluginOptions struct {
	Optional    bool   // If true, failure does not abort bootstrap.
	Description string // Human-readable description.
}

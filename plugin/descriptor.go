package plugin

import (
	"context"
	"io"
	"net/http"
	"net/url"

	"github.com/billforge/panel/component"
)

// Request carries an inbound API request to a plugin handler. The route
// registry treats it as opaque: plugin subpaths are strings the plugin
// chose itself, including any parameter syntax its handler parses.
type Request struct {
	Method string
	Path   string
	Query  url.Values
	Header http.Header
	Body   io.Reader

	// Raw is the underlying HTTP request when the call arrived over the
	// host gateway; nil when dispatched in-process (tests, hot patches).
	Raw *http.Request
}

// RouteHandler is the function a plugin binds to an API route pattern.
// The host passes its capability context on every invocation.
type RouteHandler func(ctx context.Context, host *HostContext, req *Request) (any, error)

// Descriptor is the registry-facing view of one loaded plugin. It is
// owned and supplied by the plugin source; the registry only reads it.
type Descriptor struct {
	// ID is the stable unique plugin identifier across rebuilds.
	ID string

	// Enabled plugins contribute routes; disabled ones are excluded from
	// every rebuild.
	Enabled bool

	// Routes maps "<METHOD> <subpath>" patterns to handlers. May be nil.
	Routes map[string]RouteHandler

	// ExtensionPoints maps slot identifiers to UI component factories.
	// Slots named "admin.page.route.<path>" become page routes; all
	// other slots belong to the rendering subsystem and never dispatch.
	ExtensionPoints map[string]component.Factory
}

// Source supplies the full current plugin list, pulled once per rebuild
// trigger.
type Source interface {
	PluginDescriptors() []Descriptor
}

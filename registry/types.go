// Package registry is the process-wide index of plugin-contributed
// routes: an API route table keyed by method+path and a UI route table
// keyed by navigation path, both rebuilt wholesale from the plugin list
// and consulted on every dispatch.
package registry

import (
	"github.com/billforge/panel/component"
	"github.com/billforge/panel/plugin"
)

const (
	// APIPathPrefix namespaces every plugin API route: a plugin's
	// "<METHOD> <subpath>" pattern lands at /plugins/<id><subpath>, so
	// two plugins can never collide even on identical subpaths.
	APIPathPrefix = "/plugins/"

	// UIPathPrefix namespaces plugin page routes under the admin UI.
	UIPathPrefix = "/admin/"

	// PageRouteSlotPrefix marks extension point slots that contribute
	// admin pages. All other slots belong to the rendering subsystem
	// and never participate in dispatch.
	PageRouteSlotPrefix = "admin.page.route."
)

// APIRoute is one resolved API table entry.
type APIRoute struct {
	Method  string
	Path    string
	Handler plugin.RouteHandler
	Owner   string
}

// UIRoute is one resolved UI table entry.
type UIRoute struct {
	Path    string
	Factory component.Factory
	Owner   string
}

// RouteKind distinguishes the two route spaces in listings.
type RouteKind string

const (
	KindAPI RouteKind = "api"
	KindUI  RouteKind = "ui"
)

// RouteInfo is one row of a route listing. API routes carry the literal
// "METHOD path" string; UI routes are navigational and reported as
// "GET path" by convention.
type RouteInfo struct {
	Route string    `json:"route"`
	Owner string    `json:"owner"`
	Kind  RouteKind `json:"kind"`
}

// PluginRouteStats aggregates route counts for one owner.
type PluginRouteStats struct {
	APIRoutes int `json:"apiRoutes"`
	UIRoutes  int `json:"uiRoutes"`
}

// apiKey is the composite API table key.
type apiKey struct {
	method string
	path   string
}

// routeTables holds both derived tables. A rebuild constructs a fresh
// value and publishes it in one pointer swap, so readers observe either
// the fully-old or fully-new state, never a partial rebuild.
type routeTables struct {
	api map[apiKey]APIRoute
	ui  map[string]UIRoute
}

func newRouteTables() *routeTables {
	return &routeTables{
		api: make(map[apiKey]APIRoute),
		ui:  make(map[string]UIRoute),
	}
}

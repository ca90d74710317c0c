package registry

import (
	"sort"
	"strings"
	"sync"

	"go.uber.org/zap"

	"github.com/billforge/panel/component"
	"github.com/billforge/panel/plugin"
)

// Registry owns both route tables exclusively. All access goes through
// its methods; no caller ever holds a reference into the table internals.
//
// Readers (resolve/list/has) take the read lock for the duration of the
// lookup only. Rebuild constructs replacement tables outside any lock and
// publishes them in a single pointer swap under the write lock, so a
// concurrent reader sees either the old or the new tables, never a mix.
// Rebuilds are additionally serialized among themselves.
type Registry struct {
	mu     sync.RWMutex
	tables *routeTables

	// rebuildMu serializes rebuilds without blocking readers while the
	// replacement tables are being constructed.
	rebuildMu sync.Mutex

	logger *zap.Logger
}

// New creates an empty Registry. Construct one per host process and pass
// it by reference to the dispatch and admin layers.
func New(logger *zap.Logger) *Registry {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Registry{
		tables: newRouteTables(),
		logger: logger,
	}
}

// Rebuild derives both tables from scratch out of the given plugin list
// and atomically replaces the current tables. Disabled plugins are
// excluded. Manual registrations made since the last rebuild are
// overwritten, by design. Malformed route patterns are skipped and
// returned as warnings; they never abort the rebuild of other plugins'
// routes.
func (r *Registry) Rebuild(descriptors []plugin.Descriptor) []*MalformedPatternError {
	r.rebuildMu.Lock()
	defer r.rebuildMu.Unlock()

	tables, warnings := buildTables(descriptors)
	for _, w := range warnings {
		r.logger.Warn("skipping malformed route pattern",
			zap.String("plugin", w.Plugin),
			zap.String("pattern", w.Pattern),
			zap.String("reason", w.Reason))
	}

	r.mu.Lock()
	r.tables = tables
	r.mu.Unlock()

	r.logger.Info("route tables rebuilt",
		zap.Int("apiRoutes", len(tables.api)),
		zap.Int("uiRoutes", len(tables.ui)),
		zap.Int("skipped", len(warnings)))
	return warnings
}

// ResolveAPI looks up the owning entry for an inbound method+path.
// Matching is exact: plugin subpaths are opaque strings, including any
// parameter syntax the plugin's own handler parses.
func (r *Registry) ResolveAPI(method, path string) (APIRoute, error) {
	r.mu.RLock()
	route, ok := r.tables.api[apiKey{method: strings.ToUpper(method), path: path}]
	r.mu.RUnlock()

	if !ok {
		return APIRoute{}, &RouteNotFoundError{Method: strings.ToUpper(method), Path: path}
	}
	return route, nil
}

// ResolveUI looks up the owning entry for a navigation path. The factory
// is handed to the rendering layer; the registry never renders.
func (r *Registry) ResolveUI(path string) (UIRoute, error) {
	r.mu.RLock()
	route, ok := r.tables.ui[path]
	r.mu.RUnlock()

	if !ok {
		return UIRoute{}, &RouteNotFoundError{Path: path}
	}
	return route, nil
}

// HasAPIRoute reports whether an exact method+path entry exists.
func (r *Registry) HasAPIRoute(method, path string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.tables.api[apiKey{method: strings.ToUpper(method), path: path}]
	return ok
}

// HasUIRoute reports whether an exact path entry exists.
func (r *Registry) HasUIRoute(path string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.tables.ui[path]
	return ok
}

// ListAllRoutes returns every route in both tables, API entries first,
// each group sorted by route string. Pass owner != "" to filter.
func (r *Registry) ListAllRoutes(owner string) []RouteInfo {
	r.mu.RLock()
	defer r.mu.RUnlock()

	infos := make([]RouteInfo, 0, len(r.tables.api)+len(r.tables.ui))
	for _, route := range r.tables.api {
		if owner != "" && route.Owner != owner {
			continue
		}
		infos = append(infos, RouteInfo{
			Route: route.Method + " " + route.Path,
			Owner: route.Owner,
			Kind:  KindAPI,
		})
	}
	for _, route := range r.tables.ui {
		if owner != "" && route.Owner != owner {
			continue
		}
		// UI routes are navigational, GET-equivalent by convention.
		infos = append(infos, RouteInfo{
			Route: "GET " + route.Path,
			Owner: route.Owner,
			Kind:  KindUI,
		})
	}

	sort.Slice(infos, func(i, j int) bool {
		if infos[i].Kind != infos[j].Kind {
			return infos[i].Kind == KindAPI
		}
		return infos[i].Route < infos[j].Route
	})
	return infos
}

// ListPluginAPIRoutes returns the owner's API routes as "METHOD path"
// strings, sorted. Unknown owners yield an empty slice, not an error.
func (r *Registry) ListPluginAPIRoutes(owner string) []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var routes []string
	for _, route := range r.tables.api {
		if route.Owner == owner {
			routes = append(routes, route.Method+" "+route.Path)
		}
	}
	sort.Strings(routes)
	return routes
}

// ListPluginUIRoutes returns the owner's UI route paths, sorted. Unknown
// owners yield an empty slice, not an error.
func (r *Registry) ListPluginUIRoutes(owner string) []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var routes []string
	for _, route := range r.tables.ui {
		if route.Owner == owner {
			routes = append(routes, route.Path)
		}
	}
	sort.Strings(routes)
	return routes
}

// RouteStatsByPlugin aggregates per-owner route counts. Every plugin with
// at least one route appears exactly once.
func (r *Registry) RouteStatsByPlugin() map[string]PluginRouteStats {
	r.mu.RLock()
	defer r.mu.RUnlock()

	stats := make(map[string]PluginRouteStats)
	for _, route := range r.tables.api {
		s := stats[route.Owner]
		s.APIRoutes++
		stats[route.Owner] = s
	}
	for _, route := range r.tables.ui {
		s := stats[route.Owner]
		s.UIRoutes++
		stats[route.Owner] = s
	}
	return stats
}

// RegisterAPIRoute inserts an API entry directly, bypassing the
// descriptor pipeline. Intended for tests and hot patches; the entry
// survives until the next full rebuild overwrites it. Collisions
// overwrite, same as rebuild.
func (r *Registry) RegisterAPIRoute(method, path string, handler plugin.RouteHandler, owner string) {
	method = strings.ToUpper(method)
	r.mu.Lock()
	r.tables.api[apiKey{method: method, path: path}] = APIRoute{
		Method:  method,
		Path:    path,
		Handler: handler,
		Owner:   owner,
	}
	r.mu.Unlock()

	r.logger.Debug("api route registered directly",
		zap.String("route", method+" "+path), zap.String("plugin", owner))
}

// RegisterUIRoute inserts a UI entry directly. Same contract as
// RegisterAPIRoute.
func (r *Registry) RegisterUIRoute(path string, factory component.Factory, owner string) {
	r.mu.Lock()
	r.tables.ui[path] = UIRoute{Path: path, Factory: factory, Owner: owner}
	r.mu.Unlock()

	r.logger.Debug("ui route registered directly",
		zap.String("path", path), zap.String("plugin", owner))
}

// UnregisterPluginRoutes removes every entry owned by owner from both
// tables. Other owners are untouched. No-op if the owner has no entries.
func (r *Registry) UnregisterPluginRoutes(owner string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for key, route := range r.tables.api {
		if route.Owner == owner {
			delete(r.tables.api, key)
		}
	}
	for path, route := range r.tables.ui {
		if route.Owner == owner {
			delete(r.tables.ui, path)
		}
	}
}

// ClearAll empties both tables unconditionally.
func (r *Registry) ClearAll() {
	r.mu.Lock()
	r.tables = newRouteTables()
	r.mu.Unlock()
}

package gateway

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/billforge/panel/component"
	"github.com/billforge/panel/http/binding"
	"github.com/billforge/panel/http/responder"
	"github.com/billforge/panel/json"
)

// manifestCacheKey is shared by every replica; invalidation after a
// rebuild must hit all of them, hence the cache.Store indirection.
const manifestCacheKey = "ui:manifest"

type listRoutesQuery struct {
	Plugin string `query:"plugin"`
	Kind   string `query:"kind" default:"all" validate:"oneof=all api ui"`
}

// listRoutes reports the current route tables, optionally filtered by
// owning plugin and route kind.
func (g *Gateway) listRoutes(w http.ResponseWriter, r *http.Request) {
	var q listRoutesQuery
	if err := binding.Query(r, &q); err != nil {
		g.bindFailed(w, r, err)
		return
	}

	routes := g.registry.ListAllRoutes(q.Plugin)
	if q.Kind != "all" {
		filtered := routes[:0]
		for _, info := range routes {
			if string(info.Kind) == q.Kind {
				filtered = append(filtered, info)
			}
		}
		routes = filtered
	}

	responder.OK(w, r, map[string]any{
		"routes": routes,
		"total":  len(routes),
	}, g.meta(r)...)
}

// routeStats aggregates per-plugin route counts and dispatch counters.
func (g *Gateway) routeStats(w http.ResponseWriter, r *http.Request) {
	responder.OK(w, r, map[string]any{
		"routes":   g.registry.RouteStatsByPlugin(),
		"dispatch": g.collector.Snapshot(),
		"misses":   g.collector.Misses(),
	}, g.meta(r)...)
}

// uiManifest returns the admin navigation manifest derived from the UI
// route table, served from cache between rebuilds.
func (g *Gateway) uiManifest(w http.ResponseWriter, r *http.Request) {
	if g.cache != nil {
		if raw, err := g.cache.Get(r.Context(), manifestCacheKey); err == nil {
			var m component.Manifest
			if json.Unmarshal(raw, &m) == nil {
				responder.OK(w, r, m, g.meta(r)...)
				return
			}
		}
	}

	manifest := g.registry.UIManifest()
	if g.cache != nil {
		if raw, err := json.Marshal(manifest); err == nil {
			if err := g.cache.Set(r.Context(), manifestCacheKey, raw, g.manifestTTL); err != nil {
				g.logger.Warn("manifest cache write failed", zap.Error(err))
			}
		}
	}
	responder.OK(w, r, manifest, g.meta(r)...)
}

func (g *Gateway) invalidateManifest(ctx context.Context) {
	if g.cache == nil {
		return
	}
	if err := g.cache.Delete(ctx, manifestCacheKey); err != nil {
		g.logger.Warn("manifest cache invalidation failed", zap.Error(err))
	}
}

// InvalidateManifest drops the cached UI manifest. Callers mutating
// plugin state outside the admin API (config hot reload) use it to keep
// the manifest honest.
func (g *Gateway) InvalidateManifest(ctx context.Context) {
	g.invalidateManifest(ctx)
}

// rebuild forces a full route rebuild from the current plugin set.
func (g *Gateway) rebuild(w http.ResponseWriter, r *http.Request) {
	if err := g.manager.RebuildRoutes(r.Context()); err != nil {
		g.logger.Error("manual rebuild failed", zap.Error(err))
		responder.CustomError(w, r, http.StatusInternalServerError,
			responder.ErrCodeRebuildFailed, "", nil, g.meta(r)...)
		return
	}
	g.invalidateManifest(r.Context())
	responder.OK(w, r, map[string]any{
		"routes": g.registry.RouteStatsByPlugin(),
	}, g.meta(r)...)
}

// eventDeliveries reports per-topic event delivery counts.
func (g *Gateway) eventDeliveries(w http.ResponseWriter, r *http.Request) {
	responder.OK(w, r, g.manager.EventDeliveries(), g.meta(r)...)
}

// listPlugins reports every registered plugin and its lifecycle state.
func (g *Gateway) listPlugins(w http.ResponseWriter, r *http.Request) {
	states := g.manager.ListPlugins()
	out := make(map[string]string, len(states))
	for name, state := range states {
		out[name] = state.String()
	}
	responder.OK(w, r, out, g.meta(r)...)
}

func (g *Gateway) enablePlugin(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if _, ok := g.manager.GetPluginState(id); !ok {
		responder.PluginNotFound(w, r, "", g.meta(r)...)
		return
	}
	if err := g.manager.EnablePlugin(r.Context(), id); err != nil {
		responder.BadRequest(w, r, err.Error(), g.meta(r)...)
		return
	}
	g.invalidateManifest(r.Context())
	responder.OK(w, r, map[string]string{"plugin": id, "state": g.stateName(id)}, g.meta(r)...)
}

func (g *Gateway) disablePlugin(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if _, ok := g.manager.GetPluginState(id); !ok {
		responder.PluginNotFound(w, r, "", g.meta(r)...)
		return
	}
	if err := g.manager.DisablePlugin(r.Context(), id); err != nil {
		responder.BadRequest(w, r, err.Error(), g.meta(r)...)
		return
	}
	g.invalidateManifest(r.Context())
	responder.OK(w, r, map[string]string{"plugin": id, "state": g.stateName(id)}, g.meta(r)...)
}

// unregisterRoutes drops a plugin's routes from both tables without
// touching its lifecycle state. The next full rebuild restores them if
// the plugin is still enabled.
func (g *Gateway) unregisterRoutes(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if _, ok := g.manager.GetPluginState(id); !ok {
		responder.PluginNotFound(w, r, "", g.meta(r)...)
		return
	}
	g.registry.UnregisterPluginRoutes(id)
	g.invalidateManifest(r.Context())
	responder.NoContent(w, r, g.meta(r)...)
}

func (g *Gateway) uninstallPlugin(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if _, ok := g.manager.GetPluginState(id); !ok {
		responder.PluginNotFound(w, r, "", g.meta(r)...)
		return
	}
	if err := g.manager.UninstallPlugin(r.Context(), id); err != nil {
		responder.InternalServerError(w, r, err.Error(), g.meta(r)...)
		return
	}
	g.invalidateManifest(r.Context())
	responder.NoContent(w, r, g.meta(r)...)
}

// health runs plugin health checks and degrades to 503 when any fail.
func (g *Gateway) health(w http.ResponseWriter, r *http.Request) {
	failures := g.manager.HealthCheck(r.Context())
	if len(failures) > 0 {
		details := make(map[string]string, len(failures))
		for name, err := range failures {
			details[name] = err.Error()
		}
		responder.CustomError(w, r, http.StatusServiceUnavailable,
			responder.ErrCodeInternalServer, "Health Check Failed", details, g.meta(r)...)
		return
	}
	responder.OK(w, r, map[string]string{"status": "ok"}, g.meta(r)...)
}

func (g *Gateway) bindFailed(w http.ResponseWriter, r *http.Request, err error) {
	if ve, ok := err.(binding.ValidationErrors); ok {
		responder.ValidationError(w, r, ve, g.meta(r)...)
		return
	}
	responder.BindError(w, r, err.Error(), g.meta(r)...)
}

func (g *Gateway) stateName(id string) string {
	state, ok := g.manager.GetPluginState(id)
	if !ok {
		return "unknown"
	}
	return state.String()
}

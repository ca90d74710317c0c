// Package gateway exposes the panel over HTTP: the /plugins/* dispatch
// surface, the /admin UI manifest, and the registry admin API. It is
// the only package that translates between HTTP and the registry's
// typed errors.
package gateway

import (
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/billforge/panel/auth/rbac"
	"github.com/billforge/panel/cache"
	apperrors "github.com/billforge/panel/errors"
	"github.com/billforge/panel/http/middleware"
	"github.com/billforge/panel/http/responder"
	"github.com/billforge/panel/metrics"
	"github.com/billforge/panel/plugin"
	"github.com/billforge/panel/registry"
	"github.com/billforge/panel/runtime"
)

// Config wires the gateway's collaborators.
type Config struct {
	Manager   *runtime.Manager
	Collector *metrics.Collector
	Logger    *zap.Logger

	// Enforcer guards the admin API. nil disables the check, which is
	// how rbac.enabled=false is expressed.
	Enforcer *rbac.Enforcer

	// Cache holds the rendered UI manifest between rebuilds. nil
	// disables caching. ManifestTTL bounds staleness if an invalidation
	// is lost; it defaults to a minute.
	Cache       cache.Store
	ManifestTTL time.Duration

	// CORS and RateLimit harden the outer surface. RateCounter backs the
	// limiter; nil with RateLimit.Enabled leaves dispatch unthrottled.
	CORS        middleware.CORSConfig
	RateLimit   middleware.RateLimitConfig
	RateCounter middleware.Counter
}

// Gateway serves dispatch and admin traffic for one panel instance.
type Gateway struct {
	manager    *runtime.Manager
	registry   *registry.Registry
	dispatcher *registry.Dispatcher
	collector  *metrics.Collector
	enforcer   *rbac.Enforcer
	logger     *zap.Logger

	cache       cache.Store
	manifestTTL time.Duration

	corsCfg     middleware.CORSConfig
	rateCfg     middleware.RateLimitConfig
	rateCounter middleware.Counter
}

// New creates a Gateway around a bootstrapped manager.
func New(cfg Config) *Gateway {
	if cfg.Logger == nil {
		cfg.Logger = zap.NewNop()
	}
	if cfg.Collector == nil {
		cfg.Collector = metrics.NewCollector()
	}
	if cfg.ManifestTTL <= 0 {
		cfg.ManifestTTL = time.Minute
	}

	reg := cfg.Manager.Registry()
	return &Gateway{
		manager:     cfg.Manager,
		registry:    reg,
		dispatcher:  registry.NewDispatcher(reg, cfg.Manager.HostContext(), cfg.Collector, cfg.Logger),
		collector:   cfg.Collector,
		enforcer:    cfg.Enforcer,
		logger:      cfg.Logger,
		cache:       cfg.Cache,
		manifestTTL: cfg.ManifestTTL,
		corsCfg:     cfg.CORS,
		rateCfg:     cfg.RateLimit,
		rateCounter: cfg.RateCounter,
	}
}

// Router builds the full route tree. Plugin dispatch is a catch-all:
// the registry's exact-match tables decide what exists, not chi.
func (g *Gateway) Router() chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.SecureHeaders())
	r.Use(middleware.CORS(g.corsCfg))
	r.Use(middleware.TraceID())
	r.Use(middleware.Timing())
	r.Use(middleware.RequestLogger(g.logger))

	r.Group(func(dispatch chi.Router) {
		dispatch.Use(middleware.RateLimit(g.rateCounter, g.rateCfg, g.logger))
		dispatch.HandleFunc("/plugins/*", g.dispatch)
	})

	r.Route("/api/v1", func(api chi.Router) {
		api.Get("/health", g.health)

		api.Route("/registry", func(admin chi.Router) {
			admin.Use(rbac.Middleware(g.enforcer, g.logger))

			admin.Get("/routes", g.listRoutes)
			admin.Get("/routes/stats", g.routeStats)
			admin.Get("/manifest", g.uiManifest)
			admin.Post("/rebuild", g.rebuild)
			admin.Get("/events/deliveries", g.eventDeliveries)

			admin.Get("/plugins", g.listPlugins)
			admin.Post("/plugins/{id}/enable", g.enablePlugin)
			admin.Post("/plugins/{id}/disable", g.disablePlugin)
			admin.Delete("/plugins/{id}/routes", g.unregisterRoutes)
			admin.Delete("/plugins/{id}", g.uninstallPlugin)
		})
	})

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		responder.NotFound(w, r, "", g.meta(r)...)
	})

	return r
}

// dispatch forwards an inbound request to the owning plugin handler and
// maps the registry's typed errors onto wire responses.
func (g *Gateway) dispatch(w http.ResponseWriter, r *http.Request) {
	req := &plugin.Request{
		Method: r.Method,
		Path:   r.URL.Path,
		Query:  r.URL.Query(),
		Header: r.Header,
		Body:   r.Body,
		Raw:    r,
	}

	result, err := g.dispatcher.InvokeAPI(r.Context(), r.Method, r.URL.Path, req)
	if err != nil {
		if registry.IsNotFound(err) {
			responder.RouteNotFound(w, r, err.Error(), g.meta(r)...)
			return
		}
		if hf, ok := registry.AsHandlerFailure(err); ok {
			// Structured plugin errors carry their own status and
			// details; anything else is an opaque 502.
			var appErr *apperrors.AppError
			if errors.As(hf.Err, &appErr) {
				details := map[string]any{"plugin": hf.Plugin}
				for k, v := range appErr.Details {
					details[k] = v
				}
				responder.CustomError(w, r, appErr.Status(), responder.ErrCodePluginHandler,
					appErr.Error(), details, g.meta(r)...)
				return
			}
			responder.PluginHandlerError(w, r, hf.Plugin, g.meta(r)...)
			return
		}
		responder.InternalServerError(w, r, "", g.meta(r)...)
		return
	}

	responder.OK(w, r, result, g.meta(r)...)
}

func (g *Gateway) meta(r *http.Request) []responder.Option {
	return []responder.Option{
		responder.WithTraceID(middleware.GetTraceID(r.Context())),
		responder.WithTook(middleware.GetRequestDuration(r.Context())),
	}
}

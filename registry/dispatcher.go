package registry

import (
	"context"

	"go.uber.org/zap"

	"github.com/billforge/panel/metrics"
	"github.com/billforge/panel/plugin"
)

// Dispatcher routes inbound calls to the owning plugin handler. Only the
// table lookup is synchronized; the handler itself runs outside every
// registry lock, so a handler that blocks on I/O never stalls other
// dispatches or a concurrent rebuild. The dispatcher imposes no timeout;
// hosts that need one wrap the context around InvokeAPI.
type Dispatcher struct {
	registry  *Registry
	host      *plugin.HostContext
	collector *metrics.Collector
	logger    *zap.Logger
}

// NewDispatcher creates a Dispatcher bound to a registry and the host's
// capability context. collector may be nil to disable counting.
func NewDispatcher(reg *Registry, host *plugin.HostContext, collector *metrics.Collector, logger *zap.Logger) *Dispatcher {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Dispatcher{
		registry:  reg,
		host:      host,
		collector: collector,
		logger:    logger,
	}
}

// ResolveAPI looks up the owning entry without invoking it.
func (d *Dispatcher) ResolveAPI(method, path string) (APIRoute, error) {
	return d.registry.ResolveAPI(method, path)
}

// ResolveUI returns the component factory for a navigation path. The
// rendering layer instantiates it; the dispatcher never does.
func (d *Dispatcher) ResolveUI(path string) (UIRoute, error) {
	return d.registry.ResolveUI(path)
}

// InvokeAPI resolves method+path and calls the owning handler with the
// host capability context. Handler errors are not suppressed: they come
// back wrapped in a HandlerFailureError naming the owning plugin, with
// the original cause preserved for errors.Is/As. A resolution miss
// returns a RouteNotFoundError carrying the requested key.
func (d *Dispatcher) InvokeAPI(ctx context.Context, method, path string, req *plugin.Request) (any, error) {
	route, err := d.registry.ResolveAPI(method, path)
	if err != nil {
		if d.collector != nil {
			d.collector.RecordMiss()
		}
		return nil, err
	}

	if d.collector != nil {
		d.collector.RecordResolved(route.Owner)
	}

	result, err := route.Handler(ctx, d.host, req)
	if err != nil {
		if d.collector != nil {
			d.collector.RecordFailure(route.Owner)
		}
		d.logger.Error("plugin handler failed",
			zap.String("plugin", route.Owner),
			zap.String("route", route.Method+" "+route.Path),
			zap.Error(err))
		return nil, &HandlerFailureError{Plugin: route.Owner, Err: err}
	}
	return result, nil
}

// Package plugintest boots a real manager and registry around a set of
// plugins so plugin packages can test their routes end to end without
// an HTTP server.
package plugintest

import (
	"context"
	"io"
	"net/url"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/billforge/panel/plugin"
	"github.com/billforge/panel/registry"
	"github.com/billforge/panel/runtime"
)

// Harness wraps a bootstrapped manager for one test.
type Harness struct {
	t          *testing.T
	Manager    *runtime.Manager
	Registry   *registry.Registry
	Dispatcher *registry.Dispatcher
}

// NewHarness registers the plugins, bootstraps them, and tears the
// manager down with the test.
func NewHarness(t *testing.T, plugins ...plugin.Plugin) *Harness {
	t.Helper()
	return NewHarnessWith(t, runtime.Config{}, plugins...)
}

// NewHarnessWith is NewHarness with caller-supplied manager config, for
// plugins that need storage or redis wired in. Router, Logger and
// Registry are filled with test defaults when unset.
func NewHarnessWith(t *testing.T, cfg runtime.Config, plugins ...plugin.Plugin) *Harness {
	t.Helper()

	if cfg.Router == nil {
		cfg.Router = chi.NewRouter()
	}
	if cfg.Logger == nil {
		cfg.Logger = zap.NewNop()
	}
	if cfg.Registry == nil {
		cfg.Registry = registry.New(nil)
	}
	m := runtime.NewManager(cfg)
	for _, p := range plugins {
		if err := m.Register(p); err != nil {
			t.Fatalf("plugintest: register %s: %v", p.Name(), err)
		}
	}
	if err := m.Bootstrap(context.Background()); err != nil {
		t.Fatalf("plugintest: bootstrap: %v", err)
	}
	t.Cleanup(func() { m.Shutdown(context.Background()) })

	reg := m.Registry()
	return &Harness{
		t:          t,
		Manager:    m,
		Registry:   reg,
		Dispatcher: registry.NewDispatcher(reg, m.HostContext(), nil, nil),
	}
}

// Invoke dispatches method+path in-process. path may carry a query
// string.
func (h *Harness) Invoke(method, path string) (any, error) {
	h.t.Helper()
	return h.InvokeBody(method, path, nil)
}

// InvokeBody is Invoke with a request body; body may be nil.
func (h *Harness) InvokeBody(method, path string, body io.Reader) (any, error) {
	h.t.Helper()

	rawPath, rawQuery, _ := strings.Cut(path, "?")
	query, err := url.ParseQuery(rawQuery)
	if err != nil {
		h.t.Fatalf("plugintest: bad query in %q: %v", path, err)
	}

	req := &plugin.Request{
		Method: method,
		Path:   rawPath,
		Query:  query,
		Body:   body,
	}
	return h.Dispatcher.InvokeAPI(context.Background(), method, rawPath, req)
}

// MustInvoke is Invoke that fails the test on error.
func (h *Harness) MustInvoke(method, path string) any {
	h.t.Helper()
	result, err := h.Invoke(method, path)
	if err != nil {
		h.t.Fatalf("plugintest: %s %s: %v", method, path, err)
	}
	return result
}

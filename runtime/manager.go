package runtime

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"

	"github.com/billforge/panel/plugin"
	"github.com/billforge/panel/registry"
	"github.com/billforge/panel/storage"
)

// Config holds configuration for creating a new Manager.
type Config struct {
	Router      chi.Router
	DB          plugin.Database
	Redis       *redis.Client
	Logger      *zap.Logger
	Storage     storage.Provider
	Registry    *registry.Registry
	EventBuffer int // default 1024

	// PluginConfig maps a plugin name to its scoped configuration
	// provider. nil hands every plugin an empty provider.
	PluginConfig func(name string) plugin.ConfigProvider
}

// Manager owns the plugin lifecycle: registration, dependency-ordered
// bootstrap, runtime enable/disable/uninstall, and publishing the
// resulting route set to the registry. It is the registry's plugin
// source: every dispatch-visible change goes through a full rebuild.
type Manager struct {
	db       plugin.Database
	redis    *redis.Client
	logger   *zap.Logger
	registry *registry.Registry

	plugins      map[string]plugin.Plugin
	pluginState  map[string]plugin.PluginState
	pluginErrors map[string]error
	pluginModels map[string][]any
	mu           sync.RWMutex

	bootOrder    []string
	hostContext  *plugin.HostContext
	pluginConfig func(name string) plugin.ConfigProvider
	eventBus     *eventBus

	shutdownCtx context.Context
	shutdownFn  context.CancelFunc

	healthChecks map[string]func(context.Context) error
}

// NewManager creates a new lifecycle manager. The registry is required;
// everything else in cfg is optional capability wiring for plugins.
func NewManager(cfg Config) *Manager {
	if cfg.EventBuffer <= 0 {
		cfg.EventBuffer = 1024
	}
	if cfg.Logger == nil {
		cfg.Logger = zap.NewNop()
	}
	if cfg.Registry == nil {
		cfg.Registry = registry.New(cfg.Logger)
	}

	shutdownCtx, shutdownFn := context.WithCancel(context.Background())
	bus := NewEventBus(cfg.EventBuffer, cfg.Logger)

	m := &Manager{
		db:           cfg.DB,
		redis:        cfg.Redis,
		logger:       cfg.Logger,
		registry:     cfg.Registry,
		plugins:      make(map[string]plugin.Plugin),
		pluginState:  make(map[string]plugin.PluginState),
		pluginErrors: make(map[string]error),
		pluginModels: make(map[string][]any),
		pluginConfig: cfg.PluginConfig,
		eventBus:     bus,
		shutdownCtx:  shutdownCtx,
		shutdownFn:   shutdownFn,
		healthChecks: make(map[string]func(context.Context) error),
	}

	m.hostContext = &plugin.HostContext{
		Router:   cfg.Router,
		DB:       cfg.DB,
		Redis:    cfg.Redis,
		Logger:   cfg.Logger,
		Services: plugin.NewServiceRegistry(),
		Config:   plugin.EmptyConfig(),
		Events:   bus,
		Storage:  cfg.Storage,
	}

	return m
}

// Services returns the plugin service registry for pre-registering core
// services. Must be called before Bootstrap.
func (m *Manager) Services() *plugin.ServiceRegistry {
	return m.hostContext.Services
}

// Registry exposes the route registry for the gateway and admin layers.
func (m *Manager) Registry() *registry.Registry {
	return m.registry
}

// HostContext returns the capability context handed to plugin handlers.
func (m *Manager) HostContext() *plugin.HostContext {
	return m.hostContext
}

// hostContextFor returns the capability context with the plugin's own
// configuration scoped in. Lifecycle hooks always receive this view.
func (m *Manager) hostContextFor(name string) *plugin.HostContext {
	if m.pluginConfig == nil {
		return m.hostContext
	}
	hc := *m.hostContext
	hc.Config = m.pluginConfig(name)
	return &hc
}

// configEnabled reports whether configuration allows the plugin to boot.
// Without a config source every registered plugin boots.
func (m *Manager) configEnabled(name string) bool {
	if m.pluginConfig == nil {
		return true
	}
	cfg := m.pluginConfig(name)
	if cfg == nil {
		return true
	}
	return cfg.IsEnabled()
}

// Register adds a plugin. Must be called before Bootstrap.
func (m *Manager) Register(p plugin.Plugin) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	name := p.Name()
	if _, exists := m.plugins[name]; exists {
		return fmt.Errorf("plugin %q already registered", name)
	}

	m.plugins[name] = p
	m.pluginState[name] = plugin.StateRegistered
	m.logger.Info("plugin registered", zap.String("name", name), zap.String("version", p.Version()))
	return nil
}

// Bootstrap initializes all plugins in dependency order and publishes
// the resulting route set.
func (m *Manager) Bootstrap(ctx context.Context) error {
	startTime := time.Now()
	if ctx == nil {
		ctx = context.Background()
	}

	// Phase 1: Resolve dependencies
	order, err := m.resolveDependencies()
	if err != nil {
		return fmt.Errorf("dependency resolution failed: %w", err)
	}
	m.bootOrder = order
	m.logger.Info("dependency resolution completed", zap.Strings("order", order))

	// Phase 2: Install (only Installable plugins)
	for _, name := range order {
		if err := ctx.Err(); err != nil {
			return fmt.Errorf("bootstrap canceled: %w", err)
		}
		if m.pluginState[name] == plugin.StateFailed {
			continue
		}
		if !m.configEnabled(name) {
			// Stays Registered; a config reload or the admin API can
			// enable it later.
			m.logger.Info("plugin disabled by configuration", zap.String("plugin", name))
			continue
		}
		if p, ok := m.plugins[name].(plugin.Installable); ok {
			if err := p.Install(ctx, m.hostContextFor(name)); err != nil {
				if abortErr := m.handlePluginError(name, fmt.Errorf("install failed: %w", err)); abortErr != nil {
					return abortErr
				}
				continue
			}
		}
		m.pluginState[name] = plugin.StateInstalled
	}

	// Phase 3: Collect models (only ModelProvider plugins)
	for _, name := range order {
		if m.pluginState[name] != plugin.StateInstalled {
			continue
		}
		if p, ok := m.plugins[name].(plugin.ModelProvider); ok {
			m.pluginModels[name] = p.RegisterModels()
		}
	}

	// Phase 4: Enable (in dependency order)
	for _, name := range order {
		if err := ctx.Err(); err != nil {
			return fmt.Errorf("bootstrap canceled: %w", err)
		}
		if m.pluginState[name] != plugin.StateInstalled {
			continue
		}

		// Check if any dependency is Failed
		if depErr := m.checkDependenciesHealthy(name); depErr != nil {
			if abortErr := m.handlePluginError(name, depErr); abortErr != nil {
				return abortErr
			}
			continue
		}

		if err := m.plugins[name].Enable(ctx, m.hostContextFor(name)); err != nil {
			if abortErr := m.handlePluginError(name, fmt.Errorf("enable failed: %w", err)); abortErr != nil {
				return abortErr
			}
			continue
		}
		m.pluginState[name] = plugin.StateEnabled
	}

	// Phase 5: Publish routes through the registry, one rebuild for the
	// whole set. Enabled plugins that contributed become Active.
	if err := m.RebuildRoutes(ctx); err != nil {
		return fmt.Errorf("route publication failed: %w", err)
	}

	// Phase 6: Subscribe events
	for _, name := range order {
		if !m.pluginState[name].IsRunning() {
			continue
		}
		if p, ok := m.plugins[name].(plugin.EventSubscriber); ok {
			p.SubscribeEvents(m.eventBus)
		}
	}

	// Phase 7: Register health checks
	for _, name := range order {
		if !m.pluginState[name].IsRunning() {
			continue
		}
		if p, ok := m.plugins[name].(plugin.HealthReporter); ok {
			m.healthChecks[name] = p.HealthCheck
		}
	}

	m.logger.Info("bootstrap completed",
		zap.Duration("duration", time.Since(startTime)),
		zap.Int("plugins", len(m.plugins)),
	)
	return nil
}

// PluginDescriptors builds the registry-facing view of every registered
// plugin. Plugins that are not running are reported disabled so their
// routes drop out on the next rebuild.
func (m *Manager) PluginDescriptors() []plugin.Descriptor {
	m.mu.RLock()
	defer m.mu.RUnlock()

	names := make([]string, 0, len(m.plugins))
	for name := range m.plugins {
		names = append(names, name)
	}
	sort.Strings(names)

	descriptors := make([]plugin.Descriptor, 0, len(names))
	for _, name := range names {
		p := m.plugins[name]
		d := plugin.Descriptor{
			ID:      name,
			Enabled: m.pluginState[name].IsRunning(),
		}
		if rp, ok := p.(plugin.RouteProvider); ok {
			d.Routes = rp.Routes()
		}
		if ep, ok := p.(plugin.ExtensionProvider); ok {
			d.ExtensionPoints = ep.ExtensionPoints()
		}
		descriptors = append(descriptors, d)
	}
	return descriptors
}

// RebuildRoutes snapshots the current plugin set, rebuilds both route
// tables atomically, promotes enabled plugins to Active, and announces
// the rebuild on the event bus.
func (m *Manager) RebuildRoutes(ctx context.Context) error {
	descriptors := m.PluginDescriptors()
	warnings := m.registry.Rebuild(descriptors)

	m.mu.Lock()
	for _, d := range descriptors {
		if d.Enabled && m.pluginState[d.ID] == plugin.StateEnabled {
			m.pluginState[d.ID] = plugin.StateActive
		}
	}
	m.mu.Unlock()

	if ctx == nil {
		ctx = context.Background()
	}
	err := m.eventBus.Publish(ctx, plugin.Event{
		Name:   plugin.EventRoutesRebuilt,
		Source: "host",
		Data: map[string]int{
			"plugins": len(descriptors),
			"skipped": len(warnings),
		},
	})
	if err != nil && !errors.Is(err, plugin.ErrBusClosed) {
		m.logger.Warn("rebuild announcement not delivered", zap.Error(err))
	}
	return nil
}

// EnablePlugin enables a previously disabled (or installed) plugin at
// runtime and republishes routes so the change becomes dispatch-visible.
func (m *Manager) EnablePlugin(ctx context.Context, name string) error {
	m.mu.Lock()
	p, exists := m.plugins[name]
	if !exists {
		m.mu.Unlock()
		return fmt.Errorf("plugin %q is not registered", name)
	}
	state := m.pluginState[name]
	if state.IsRunning() {
		m.mu.Unlock()
		return nil
	}
	if state == plugin.StateFailed {
		m.mu.Unlock()
		return fmt.Errorf("plugin %q is in failed state", name)
	}
	m.mu.Unlock()

	if depErr := m.checkDependenciesRunning(name); depErr != nil {
		return depErr
	}

	if err := p.Enable(ctx, m.hostContextFor(name)); err != nil {
		m.mu.Lock()
		m.pluginState[name] = plugin.StateFailed
		m.pluginErrors[name] = err
		m.mu.Unlock()
		return fmt.Errorf("enable failed: %w", err)
	}

	m.mu.Lock()
	m.pluginState[name] = plugin.StateEnabled
	m.mu.Unlock()

	if err := m.RebuildRoutes(ctx); err != nil {
		return err
	}

	m.publishLifecycle(ctx, plugin.EventPluginEnabled, name)
	m.logger.Info("plugin enabled", zap.String("plugin", name))
	return nil
}

// DisablePlugin stops a running plugin. Its routes are removed by a full
// rebuild before Disable returns, so no request can reach the plugin
// after the call completes.
func (m *Manager) DisablePlugin(ctx context.Context, name string) error {
	m.mu.Lock()
	p, exists := m.plugins[name]
	if !exists {
		m.mu.Unlock()
		return fmt.Errorf("plugin %q is not registered", name)
	}
	if !m.pluginState[name].IsRunning() {
		m.mu.Unlock()
		return nil
	}
	m.pluginState[name] = plugin.StateDisabled
	m.mu.Unlock()

	// Drop the routes first: state is already Disabled, so the descriptor
	// snapshot excludes this plugin.
	if err := m.RebuildRoutes(ctx); err != nil {
		return err
	}

	if d, ok := p.(plugin.Disableable); ok {
		if err := d.Disable(ctx, m.hostContextFor(name)); err != nil {
			m.logger.Error("plugin disable hook failed",
				zap.String("plugin", name), zap.Error(err))
		}
	}

	m.mu.Lock()
	delete(m.healthChecks, name)
	m.mu.Unlock()

	m.publishLifecycle(ctx, plugin.EventPluginDisabled, name)
	m.logger.Info("plugin disabled", zap.String("plugin", name))
	return nil
}

// UninstallPlugin disables a plugin if needed, runs its Uninstall hook,
// and removes it from the manager entirely.
func (m *Manager) UninstallPlugin(ctx context.Context, name string) error {
	m.mu.RLock()
	p, exists := m.plugins[name]
	running := exists && m.pluginState[name].IsRunning()
	m.mu.RUnlock()

	if !exists {
		return fmt.Errorf("plugin %q is not registered", name)
	}
	if running {
		if err := m.DisablePlugin(ctx, name); err != nil {
			return err
		}
	}

	if u, ok := p.(plugin.Uninstallable); ok {
		if err := u.Uninstall(ctx, m.hostContextFor(name)); err != nil {
			return fmt.Errorf("uninstall failed: %w", err)
		}
	}

	m.mu.Lock()
	delete(m.plugins, name)
	delete(m.pluginState, name)
	delete(m.pluginErrors, name)
	delete(m.pluginModels, name)
	m.mu.Unlock()

	// The plugin no longer exists, so its disabled descriptor must not
	// linger in the next snapshot either.
	if err := m.RebuildRoutes(ctx); err != nil {
		return err
	}

	m.logger.Info("plugin uninstalled", zap.String("plugin", name))
	return nil
}

// Shutdown disables plugins in reverse topological order.
func (m *Manager) Shutdown(ctx context.Context) error {
	m.shutdownFn()

	shutdownCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	// Close event bus (drain + wait for in-flight)
	m.eventBus.Close()

	// Disable plugins in REVERSE topological order
	reversed := reverseSlice(m.bootOrder)
	for _, name := range reversed {
		if !m.pluginState[name].IsRunning() {
			continue
		}
		if p, ok := m.plugins[name].(plugin.Disableable); ok {
			if err := p.Disable(shutdownCtx, m.hostContextFor(name)); err != nil {
				m.logger.Error("plugin disable failed",
					zap.String("plugin", name), zap.Error(err))
			}
		}
		m.pluginState[name] = plugin.StateDisabled
	}

	m.registry.ClearAll()

	// Close infrastructure
	if m.db != nil {
		m.db.Close()
	}
	if m.redis != nil {
		m.redis.Close()
	}

	m.logger.Info("shutdown completed")
	return nil
}

// Publish sends an event through the event bus.
func (m *Manager) Publish(ctx context.Context, event plugin.Event) error {
	return m.eventBus.Publish(ctx, event)
}

// EventDeliveries reports per-topic handler delivery counts for the
// admin surface.
func (m *Manager) EventDeliveries() map[string]uint64 {
	return m.eventBus.Delivered()
}

// HealthCheck runs every registered plugin health check and returns the
// failures keyed by plugin name.
func (m *Manager) HealthCheck(ctx context.Context) map[string]error {
	m.mu.RLock()
	checks := make(map[string]func(context.Context) error, len(m.healthChecks))
	for name, check := range m.healthChecks {
		checks[name] = check
	}
	m.mu.RUnlock()

	failures := make(map[string]error)
	for name, check := range checks {
		if err := check(ctx); err != nil {
			failures[name] = err
		}
	}
	return failures
}

// GetPluginState returns the state of a plugin by name.
func (m *Manager) GetPluginState(name string) (plugin.PluginState, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	state, ok := m.pluginState[name]
	return state, ok
}

// ListPlugins returns a snapshot of all plugin states.
func (m *Manager) ListPlugins() map[string]plugin.PluginState {
	m.mu.RLock()
	defer m.mu.RUnlock()
	result := make(map[string]plugin.PluginState, len(m.pluginState))
	for k, v := range m.pluginState {
		result[k] = v
	}
	return result
}

// BootOrder returns the topological order used during bootstrap.
func (m *Manager) BootOrder() []string {
	return append([]string{}, m.bootOrder...)
}

// GetPluginModels returns models registered by plugins.
func (m *Manager) GetPluginModels() map[string][]any {
	m.mu.RLock()
	defer m.mu.RUnlock()
	result := make(map[string][]any, len(m.pluginModels))
	for k, v := range m.pluginModels {
		result[k] = append([]any{}, v...)
	}
	return result
}

// --- Internal ---

func (m *Manager) resolveDependencies() ([]string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	inDegree := make(map[string]int, len(m.plugins))
	dependents := make(map[string][]string) // dep -> list of plugins that depend on it

	for name := range m.plugins {
		inDegree[name] = 0
	}

	for name, p := range m.plugins {
		for _, dep := range p.Dependencies() {
			if _, exists := m.plugins[dep]; !exists {
				return nil, fmt.Errorf("plugin %q depends on %q which is not registered", name, dep)
			}
			inDegree[name]++
			dependents[dep] = append(dependents[dep], name)
		}
	}

	// Kahn's algorithm
	var queue []string
	for name, degree := range inDegree {
		if degree == 0 {
			queue = append(queue, name)
		}
	}
	sort.Strings(queue) // deterministic

	var order []string
	for len(queue) > 0 {
		current := queue[0]
		queue = queue[1:]
		order = append(order, current)

		for _, dep := range dependents[current] {
			inDegree[dep]--
			if inDegree[dep] == 0 {
				queue = append(queue, dep)
				sort.Strings(queue)
			}
		}
	}

	if len(order) != len(m.plugins) {
		return nil, errors.New("circular dependency detected")
	}

	return order, nil
}

func (m *Manager) handlePluginError(name string, err error) error {
	m.pluginState[name] = plugin.StateFailed
	m.pluginErrors[name] = err

	opts := m.getPluginOptions(name)
	if opts.Optional {
		m.logger.Warn("optional plugin failed, continuing",
			zap.String("plugin", name), zap.Error(err))
		return nil
	}

	return fmt.Errorf("required plugin %q failed: %w", name, err)
}

func (m *Manager) getPluginOptions(name string) plugin.PluginOptions {
	if p, ok := m.plugins[name].(plugin.Configurable); ok {
		return p.PluginOptions()
	}
	return plugin.PluginOptions{Optional: false}
}

func (m *Manager) checkDependenciesHealthy(name string) error {
	for _, dep := range m.plugins[name].Dependencies() {
		if m.pluginState[dep] == plugin.StateFailed {
			return fmt.Errorf("dependency %q is in Failed state", dep)
		}
	}
	return nil
}

func (m *Manager) checkDependenciesRunning(name string) error {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, dep := range m.plugins[name].Dependencies() {
		if !m.pluginState[dep].IsRunning() {
			return fmt.Errorf("dependency %q is not running", dep)
		}
	}
	return nil
}

func (m *Manager) publishLifecycle(ctx context.Context, topic, name string) {
	err := m.eventBus.Publish(ctx, plugin.Event{
		Name:   topic,
		Source: "host",
		Data:   map[string]string{"plugin": name},
	})
	if err != nil && !errors.Is(err, plugin.ErrBusClosed) {
		m.logger.Warn("lifecycle event not delivered",
			zap.String("topic", topic), zap.Error(err))
	}
}

func reverseSlice(s []string) []string {
	n := len(s)
	reversed := make([]string, n)
	for i, v := range s {
		reversed[n-1-i] = v
	}
	return reversed
}

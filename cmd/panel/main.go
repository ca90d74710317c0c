// Command panel runs the BillForge admin panel host: it loads
// configuration, boots the built-in plugins, and serves the dispatch
// and registry admin surfaces.
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"

	"github.com/billforge/panel/auth/rbac"
	"github.com/billforge/panel/cache"
	"github.com/billforge/panel/config"
	"github.com/billforge/panel/http/gateway"
	"github.com/billforge/panel/http/middleware"
	"github.com/billforge/panel/logging"
	"github.com/billforge/panel/metrics"
	"github.com/billforge/panel/plugin"
	"github.com/billforge/panel/plugin/examples/crm"
	"github.com/billforge/panel/plugin/examples/invoices"
	"github.com/billforge/panel/redis_client"
	"github.com/billforge/panel/registry"
	"github.com/billforge/panel/runtime"
	"github.com/billforge/panel/runtime/migration"
	"github.com/billforge/panel/storage"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run() error {
	// The reload hook is installed once the manager and gateway exist;
	// watch events arriving before that are dropped.
	var (
		reloadMu sync.Mutex
		reload   func()
	)
	opts := config.DefaultConfigOptions()
	opts.WatchAble = true
	opts.OnChange = func(fsnotify.Event) {
		reloadMu.Lock()
		fn := reload
		reloadMu.Unlock()
		if fn != nil {
			fn()
		}
	}

	cfg, err := config.NewConfig(opts)
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}
	panelCfg, err := cfg.Panel()
	if err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	logging.Init(panelCfg.Logging)
	logger := logging.Global().Zap()
	defer logger.Sync()

	// Infrastructure. Redis is optional; the panel degrades to
	// in-process cache and rate limit backends without it.
	manifestCache := cache.Store(nil)
	rateCounter := middleware.Counter(nil)
	managerCfg := runtime.Config{
		Logger:   logger,
		Registry: registry.New(logger),
	}
	if panelCfg.Redis.Enabled {
		rdb, err := redis_client.NewRedis(panelCfg.Redis)
		if err != nil {
			return fmt.Errorf("redis unavailable: %w", err)
		}
		managerCfg.Redis = rdb
		manifestCache = cache.NewRedisStore(rdb, "panel:")
		rateCounter = middleware.NewRedisCounter(rdb, "panel:rl:")
	} else {
		memStore := cache.NewMemoryStore()
		defer memStore.Close()
		manifestCache = memStore
		rateCounter = middleware.NewMemoryCounter()
	}

	store, err := storage.NewProvider(panelCfg.Storage)
	if err != nil {
		return fmt.Errorf("storage unavailable: %w", err)
	}
	managerCfg.Storage = store

	var enforcer *rbac.Enforcer
	if panelCfg.RBAC.Enabled {
		enforcer, err = rbac.NewEnforcer(panelCfg.RBAC.Policies, panelCfg.RBAC.Groupings, logger)
		if err != nil {
			return fmt.Errorf("rbac setup failed: %w", err)
		}
	}

	// Plugins.
	managerCfg.PluginConfig = panelCfg.PluginProvider
	manager := runtime.NewManager(managerCfg)

	// Config-disabled plugins still register; the manager leaves them
	// dormant until a reload or the admin API enables them.
	for _, p := range []plugin.Plugin{invoices.New(), crm.New()} {
		if err := manager.Register(p); err != nil {
			return err
		}
	}

	bootCtx, cancelBoot := context.WithTimeout(context.Background(), time.Minute)
	defer cancelBoot()

	// TODO: pass the generated ent client's Schema.Create once the
	// billing entities are generated from ent/schema.
	migrator := migration.NewRunner(logger, migration.NewEntStrategy(nil))
	if err := migrator.Run(bootCtx); err != nil {
		return err
	}

	if err := manager.Bootstrap(bootCtx); err != nil {
		return fmt.Errorf("bootstrap failed: %w", err)
	}

	// Gateway.
	gw := gateway.New(gateway.Config{
		Manager:     manager,
		Collector:   metrics.NewCollector(),
		Logger:      logger,
		Enforcer:    enforcer,
		Cache:       manifestCache,
		CORS:        panelCfg.CORS,
		RateLimit:   panelCfg.RateLimit,
		RateCounter: rateCounter,
	})

	// Config hot reload: flipping plugins.<id>.enabled takes effect
	// without a restart, republishing routes and the UI manifest.
	reloadMu.Lock()
	reload = func() {
		fresh, err := cfg.Panel()
		if err != nil {
			logger.Warn("config reload rejected", zap.Error(err))
			return
		}
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		for name, state := range manager.ListPlugins() {
			want := fresh.PluginEnabled(name)
			switch {
			case want && !state.IsRunning():
				if err := manager.EnablePlugin(ctx, name); err != nil {
					logger.Warn("enable on reload failed", zap.String("plugin", name), zap.Error(err))
				}
			case !want && state.IsRunning():
				if err := manager.DisablePlugin(ctx, name); err != nil {
					logger.Warn("disable on reload failed", zap.String("plugin", name), zap.Error(err))
				}
			}
		}
		gw.InvalidateManifest(ctx)
		logger.Info("configuration reloaded")
	}
	reloadMu.Unlock()

	server := &http.Server{
		Addr:         panelCfg.Server.Addr(),
		Handler:      gw.Router(),
		ReadTimeout:  time.Duration(panelCfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(panelCfg.Server.WriteTimeout) * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("panel listening", zap.String("addr", server.Addr))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		return err
	case sig := <-stop:
		logger.Info("shutting down", zap.String("signal", sig.String()))
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("server shutdown failed", zap.Error(err))
	}
	return manager.Shutdown(shutdownCtx)
}

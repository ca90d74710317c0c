package plugin

import (
	"github.com/go-chi/chi/v5"
	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"

	"github.com/billforge/panel/storage"
)

// Database is the minimal interface for DB lifecycle management.
// Keeps the host decoupled from specific generated ORM clients.
type Database interface {
	Close() error
}

// HostContext is the capability context the dispatcher hands to every
// plugin handler and lifecycle method. It is opaque to the route
// registry itself.
type HostContext struct {
	Router   chi.Router
	DB       Database
	Redis    *redis.Client
	Logger   *zap.Logger
	Services *ServiceRegistry
	Config   ConfigProvider
	Events   EventBus
	Storage  storage.Provider
}

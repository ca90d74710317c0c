package config

import (
	"fmt"

	"github.com/billforge/panel/http/middleware"
	"github.com/billforge/panel/logging"
	"github.com/billforge/panel/plugin"
	"github.com/billforge/panel/redis_client"
	"github.com/billforge/panel/storage"
)

// PanelConfig is the full typed configuration of the panel host.
type PanelConfig struct {
	Server    ServerConfig               `mapstructure:"server" json:"server" yaml:"server"`
	Logging   logging.Config             `mapstructure:"logging" json:"logging" yaml:"logging"`
	Redis     redis_client.Config        `mapstructure:"redis" json:"redis" yaml:"redis"`
	Storage   storage.Config             `mapstructure:"storage" json:"storage" yaml:"storage"`
	RBAC      RBACConfig                 `mapstructure:"rbac" json:"rbac" yaml:"rbac"`
	CORS      middleware.CORSConfig      `mapstructure:"cors" json:"cors" yaml:"cors"`
	RateLimit middleware.RateLimitConfig `mapstructure:"rate-limit" json:"rateLimit" yaml:"rate-limit"`
	Plugins   map[string]PluginSettings  `mapstructure:"plugins" json:"plugins" yaml:"plugins"`
}

// ServerConfig configures the HTTP gateway.
type ServerConfig struct {
	Host string `mapstructure:"host" json:"host" yaml:"host" default:"0.0.0.0"`
	Port int    `mapstructure:"port" json:"port" yaml:"port" default:"8686"`

	// ReadTimeout and WriteTimeout are in seconds.
	ReadTimeout  int `mapstructure:"read-timeout" json:"readTimeout" yaml:"read-timeout" default:"15"`
	WriteTimeout int `mapstructure:"write-timeout" json:"writeTimeout" yaml:"write-timeout" default:"30"`
}

func (s ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

// RBACConfig seeds the in-memory access control enforcer protecting the
// registry admin endpoints.
type RBACConfig struct {
	Enabled bool `mapstructure:"enabled" json:"enabled" yaml:"enabled"`

	// Policies are (subject, object, action) triples, e.g.
	// ["admin", "/api/v1/registry/*", "*"].
	Policies [][]string `mapstructure:"policies" json:"policies" yaml:"policies"`

	// Groupings are (user, role) pairs.
	Groupings [][]string `mapstructure:"groupings" json:"groupings" yaml:"groupings"`
}

// PluginSettings is one plugin's configuration entry, merged from the
// base file and its plugins.d fragment. A configured entry must state
// enabled explicitly; only wholly absent plugins default to enabled.
type PluginSettings struct {
	Enabled  bool           `mapstructure:"enabled" json:"enabled" yaml:"enabled"`
	Settings map[string]any `mapstructure:"settings" json:"settings" yaml:"settings"`
}

// Validate checks cross-field constraints defaults cannot express.
func (pc *PanelConfig) Validate() error {
	if pc.Server.Port <= 0 || pc.Server.Port > 65535 {
		return fmt.Errorf("server.port %d out of range", pc.Server.Port)
	}
	for i, p := range pc.RBAC.Policies {
		if len(p) != 3 {
			return fmt.Errorf("rbac.policies[%d]: want [subject, object, action], got %d fields", i, len(p))
		}
	}
	for i, g := range pc.RBAC.Groupings {
		if len(g) != 2 {
			return fmt.Errorf("rbac.groupings[%d]: want [user, role], got %d fields", i, len(g))
		}
	}
	return nil
}

// PluginProvider returns the scoped ConfigProvider for one plugin. An
// unconfigured plugin gets an enabled provider with no settings, so
// registration alone is enough to run with defaults.
func (pc *PanelConfig) PluginProvider(id string) plugin.ConfigProvider {
	entry, ok := pc.Plugins[id]
	if !ok {
		return plugin.NewPluginConfigEntry(id, true, nil)
	}
	return plugin.NewPluginConfigEntry(id, entry.Enabled, entry.Settings)
}

// PluginEnabled reports whether the configuration enables a plugin.
// Unconfigured plugins default to enabled.
func (pc *PanelConfig) PluginEnabled(id string) bool {
	entry, ok := pc.Plugins[id]
	if !ok {
		return true
	}
	return entry.Enabled
}

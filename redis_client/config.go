package redis_client

import "fmt"

type Config struct {
	// Enabled wires a Redis client into the plugin host context. Plugins
	// that cache tenant data degrade gracefully when it is off.
	Enabled  bool   `mapstructure:"enabled" json:"enabled" yaml:"enabled"`
	Host     string `mapstructure:"host" json:"host" yaml:"host" default:"127.0.0.1"`
	Port     string `mapstructure:"port" json:"port" yaml:"port" default:"6379"`
	Password string `mapstructure:"password" json:"password" yaml:"password"`
	DB       int    `mapstructure:"db" json:"db" yaml:"db"`
}

func (c *Config) Addr() string {
	return fmt.Sprintf("%s:%s", c.Host, c.Port)
}

// Package storage abstracts where the panel keeps generated artifacts:
// rendered invoices, plugin assets, tenant logos. Providers are selected
// by configuration; the host and plugins consume the interface only.
package storage

import (
	"context"
	"fmt"
	"io"
)

// Provider stores and serves binary artifacts.
type Provider interface {
	// Upload stores content under path and returns its public URL.
	Upload(ctx context.Context, file io.Reader, path string) (string, error)

	// Delete removes the object at path. Missing objects are not an error.
	Delete(ctx context.Context, path string) error

	// URL returns the public URL for the object at path.
	URL(ctx context.Context, path string) (string, error)

	// List enumerates objects under the given prefix.
	List(ctx context.Context, prefix string, limit int) ([]FileInfo, error)
}

// FileInfo describes one stored object.
type FileInfo struct {
	Name      string
	Size      int64
	UpdatedAt int64
}

// Config selects and configures a provider.
type Config struct {
	// Type is "local" or "oss".
	Type string `mapstructure:"type" json:"type" yaml:"type" default:"local"`

	// Local provider settings.
	BasePath string `mapstructure:"base-path" json:"basePath" yaml:"base-path" default:"data/artifacts"`
	BaseURL  string `mapstructure:"base-url" json:"baseURL" yaml:"base-url" default:"/artifacts"`

	// OSS provider settings.
	Endpoint        string `mapstructure:"endpoint" json:"endpoint" yaml:"endpoint"`
	AccessKeyID     string `mapstructure:"access-key-id" json:"accessKeyId" yaml:"access-key-id"`
	AccessKeySecret string `mapstructure:"access-key-secret" json:"accessKeySecret" yaml:"access-key-secret"`
	Bucket          string `mapstructure:"bucket" json:"bucket" yaml:"bucket"`
	Domain          string `mapstructure:"domain" json:"domain" yaml:"domain"`
}

// NewProvider builds a Provider from config.
func NewProvider(cfg Config) (Provider, error) {
	switch cfg.Type {
	case "", "local":
		return NewLocalProvider(cfg.BasePath, cfg.BaseURL)
	case "oss":
		return NewOSSProvider(cfg.Endpoint, cfg.AccessKeyID, cfg.AccessKeySecret, cfg.Bucket, cfg.Domain)
	default:
		return nil, fmt.Errorf("unsupported storage provider type: %s", cfg.Type)
	}
}

package storage

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// LocalProvider implements Provider on the local filesystem.
type LocalProvider struct {
	basePath string
	baseURL  string
}

// NewLocalProvider creates a local storage provider rooted at basePath.
func NewLocalProvider(basePath, baseURL string) (*LocalProvider, error) {
	if basePath == "" {
		basePath = "data/artifacts"
	}
	if baseURL == "" {
		baseURL = "/artifacts"
	}
	if err := os.MkdirAll(basePath, 0755); err != nil {
		return nil, fmt.Errorf("failed to create base directory: %w", err)
	}
	return &LocalProvider{basePath: basePath, baseURL: baseURL}, nil
}

func (p *LocalProvider) Upload(ctx context.Context, file io.Reader, path string) (string, error) {
	fullPath := filepath.Join(p.basePath, path)
	if err := os.MkdirAll(filepath.Dir(fullPath), 0755); err != nil {
		return "", fmt.Errorf("failed to create directory: %w", err)
	}

	dst, err := os.Create(fullPath)
	if err != nil {
		return "", fmt.Errorf("failed to create file: %w", err)
	}
	defer dst.Close()

	if _, err := io.Copy(dst, file); err != nil {
		return "", fmt.Errorf("failed to write file content: %w", err)
	}

	// URLs use forward slashes even on Windows.
	return p.baseURL + "/" + strings.TrimPrefix(filepath.ToSlash(path), "/"), nil
}

func (p *LocalProvider) Delete(ctx context.Context, path string) error {
	err := os.Remove(filepath.Join(p.basePath, path))
	if err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to delete file: %w", err)
	}
	return nil
}

func (p *LocalProvider) URL(ctx context.Context, path string) (string, error) {
	return p.baseURL + "/" + strings.TrimPrefix(filepath.ToSlash(path), "/"), nil
}

func (p *LocalProvider) List(ctx context.Context, prefix string, limit int) ([]FileInfo, error) {
	dir := filepath.Join(p.basePath, prefix)
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read directory: %w", err)
	}

	if limit <= 0 {
		limit = len(entries)
	}

	var files []FileInfo
	for _, entry := range entries {
		if len(files) >= limit {
			break
		}
		if entry.IsDir() {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			continue
		}
		files = append(files, FileInfo{
			Name:      entry.Name(),
			Size:      info.Size(),
			UpdatedAt: info.ModTime().Unix(),
		})
	}
	return files, nil
}

var _ Provider = (*LocalProvider)(nil)

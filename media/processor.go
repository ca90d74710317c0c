// Package media generates image derivatives for tenant branding
// assets. Uploads land in storage immediately; thumbnail variants are
// produced off the request path by a worker pool.
package media

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/jpeg"
	"image/png"
	"io"
	"path"
	"strings"

	"github.com/nfnt/resize"
	"go.uber.org/zap"

	"github.com/billforge/panel/concurrency"
	"github.com/billforge/panel/storage"
)

// Variant names one derivative size.
type Variant struct {
	Name  string
	Width uint
}

// DefaultVariants covers the two places the admin UI shows a logo.
var DefaultVariants = []Variant{
	{Name: "thumb", Width: 96},
	{Name: "nav", Width: 32},
}

// Processor uploads originals and fans out variant generation.
type Processor struct {
	store    storage.Provider
	pool     *concurrency.Pool
	variants []Variant
	logger   *zap.Logger
}

// NewProcessor creates a Processor. variants may be nil for defaults.
func NewProcessor(store storage.Provider, pool *concurrency.Pool, variants []Variant, logger *zap.Logger) *Processor {
	if logger == nil {
		logger = zap.NewNop()
	}
	if len(variants) == 0 {
		variants = DefaultVariants
	}
	return &Processor{
		store:    store,
		pool:     pool,
		variants: variants,
		logger:   logger,
	}
}

// Store uploads the original and schedules variant generation. The
// returned URL points at the original; variant URLs are derivable via
// VariantPath once the background jobs complete.
func (p *Processor) Store(ctx context.Context, file io.Reader, dest string) (string, error) {
	raw, err := io.ReadAll(file)
	if err != nil {
		return "", fmt.Errorf("failed to read upload: %w", err)
	}

	img, format, err := image.Decode(bytes.NewReader(raw))
	if err != nil {
		return "", fmt.Errorf("unsupported image: %w", err)
	}

	url, err := p.store.Upload(ctx, bytes.NewReader(raw), dest)
	if err != nil {
		return "", err
	}

	for _, v := range p.variants {
		variant := v
		err := p.pool.Submit(func(jobCtx context.Context) error {
			return p.generate(jobCtx, img, format, dest, variant)
		})
		if err != nil {
			// Variants are best-effort; the original is already stored.
			p.logger.Warn("variant generation not scheduled",
				zap.String("asset", dest),
				zap.String("variant", variant.Name),
				zap.Error(err))
		}
	}

	return url, nil
}

// generate renders one variant and uploads it next to the original.
func (p *Processor) generate(ctx context.Context, img image.Image, format, dest string, v Variant) error {
	scaled := resize.Resize(v.Width, 0, img, resize.Lanczos3)

	var buf bytes.Buffer
	switch format {
	case "png":
		if err := png.Encode(&buf, scaled); err != nil {
			return fmt.Errorf("failed to encode %s variant of %s: %w", v.Name, dest, err)
		}
	default:
		if err := jpeg.Encode(&buf, scaled, &jpeg.Options{Quality: 85}); err != nil {
			return fmt.Errorf("failed to encode %s variant of %s: %w", v.Name, dest, err)
		}
	}

	if _, err := p.store.Upload(ctx, &buf, VariantPath(dest, v.Name)); err != nil {
		return fmt.Errorf("failed to store %s variant of %s: %w", v.Name, dest, err)
	}
	return nil
}

// Delete removes the original and every variant.
func (p *Processor) Delete(ctx context.Context, dest string) error {
	if err := p.store.Delete(ctx, dest); err != nil {
		return err
	}
	for _, v := range p.variants {
		if err := p.store.Delete(ctx, VariantPath(dest, v.Name)); err != nil {
			p.logger.Warn("variant not deleted",
				zap.String("asset", dest),
				zap.String("variant", v.Name),
				zap.Error(err))
		}
	}
	return nil
}

// VariantPath derives a variant object path: logo.png -> logo.thumb.png.
func VariantPath(dest, variant string) string {
	ext := path.Ext(dest)
	return strings.TrimSuffix(dest, ext) + "." + variant + ext
}

// Package og generates profile meta images.
package og

import (
	"context"
	"errors"
	"fmt"
	"image"
	"log/slog"
	"strings"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	lens "github.com/anatolykoptev/go-lenster"
	"github.com/anatolykoptev/go-lenster/card"
	"github.com/anatolykoptev/go-lenster/store"
)

// ErrInvalidHandle is returned for handles that cannot name a profile.
var ErrInvalidHandle = errors.New("invalid handle")

// Format is an output encoding of the card.
type Format string

const (
	FormatPNG Format = "png"
	FormatSVG Format = "svg"
)

// ParseFormat maps a query value to a Format. Unknown values are PNG.
func ParseFormat(s string) Format {
	if strings.EqualFold(strings.TrimSpace(s), string(FormatSVG)) {
		return FormatSVG
	}
	return FormatPNG
}

// ContentType returns the MIME type of the format.
func (f Format) ContentType() string {
	if f == FormatSVG {
		return "image/svg+xml"
	}
	return "image/png"
}

// Source is the subset of *lens.Client the generator needs.
type Source interface {
	Profile(ctx context.Context, handle string) (*lens.Profile, error)
	FetchMedia(ctx context.Context, url string) ([]byte, string, error)
	Gateways() lens.Gateways
}

// Config configures a Generator.
type Config struct {
	// Fonts is used as is. When FontDir is set the faces are read from
	// there on first use instead, and a read failure fails the render.
	Fonts        *card.FontSet
	FontDir      string
	Store        store.Store
	CacheTTL     time.Duration
	HandleSuffix string
	Timeout      time.Duration
}

func (c *Config) defaults() {
	if c.Fonts == nil && c.FontDir == "" {
		c.Fonts = card.DefaultFonts()
	}
	if c.CacheTTL == 0 {
		c.CacheTTL = 24 * time.Hour
	}
	if c.HandleSuffix == "" {
		c.HandleSuffix = ".lens"
	}
	if c.Timeout == 0 {
		c.Timeout = 15 * time.Second
	}
}

// Image is one rendered card in both encodings.
type Image struct {
	Handle      string
	PNG         []byte
	SVG         []byte
	GeneratedAt time.Time
}

// Bytes returns the encoding for f.
func (img *Image) Bytes(f Format) []byte {
	if f == FormatSVG {
		return img.SVG
	}
	return img.PNG
}

// Generator runs fetch, layout, SVG and raster for a handle.
type Generator struct {
	src   Source
	cfg   Config
	group singleflight.Group

	fontMu sync.Mutex
	loaded *card.FontSet
}

// NewGenerator creates a generator reading profiles from src.
func NewGenerator(src Source, cfg Config) *Generator {
	cfg.defaults()
	return &Generator{src: src, cfg: cfg}
}

func cacheKey(f Format, handle string) string {
	return "og:" + string(f) + ":" + handle
}

// Render returns the card bytes for one format, serving from the store when possible.
func (g *Generator) Render(ctx context.Context, handle string, f Format) ([]byte, error) {
	h, err := NormalizeHandle(handle, g.cfg.HandleSuffix)
	if err != nil {
		return nil, err
	}
	if g.cfg.Store != nil {
		data, ok, err := g.cfg.Store.Get(ctx, cacheKey(f, h))
		if err != nil {
			slog.Warn("og cache read failed", slog.String("handle", h), slog.Any("error", err))
		} else if ok {
			return data, nil
		}
	}
	img, err := g.generate(ctx, h)
	if err != nil {
		return nil, err
	}
	return img.Bytes(f), nil
}

// Generate renders the card for handle. Concurrent calls for one handle
// share a single render.
func (g *Generator) Generate(ctx context.Context, handle string) (*Image, error) {
	h, err := NormalizeHandle(handle, g.cfg.HandleSuffix)
	if err != nil {
		return nil, err
	}
	return g.generate(ctx, h)
}

func (g *Generator) generate(ctx context.Context, h string) (*Image, error) {
	ch := g.group.DoChan(h, func() (any, error) {
		rctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), g.cfg.Timeout)
		defer cancel()
		return g.build(rctx, h)
	})
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		return res.Val.(*Image), nil
	}
}

func (g *Generator) build(ctx context.Context, h string) (*Image, error) {
	start := time.Now()
	p, err := g.src.Profile(ctx, h)
	if err != nil {
		return nil, fmt.Errorf("og %s: %w", h, err)
	}
	fonts, err := g.fonts()
	if err != nil {
		return nil, fmt.Errorf("og %s: %w", h, err)
	}

	scene, err := card.Layout(p, g.avatar(ctx, p), fonts)
	if err != nil {
		return nil, fmt.Errorf("og %s: %w", h, err)
	}
	svg, err := card.RenderSVG(scene, fonts)
	if err != nil {
		return nil, fmt.Errorf("og %s: svg: %w", h, err)
	}
	png, err := card.Rasterize(scene, fonts)
	if err != nil {
		return nil, fmt.Errorf("og %s: rasterize: %w", h, err)
	}

	img := &Image{Handle: h, PNG: png, SVG: svg, GeneratedAt: time.Now()}
	if g.cfg.Store != nil {
		for _, f := range []Format{FormatPNG, FormatSVG} {
			if err := g.cfg.Store.Set(ctx, cacheKey(f, h), img.Bytes(f), g.cfg.CacheTTL); err != nil {
				slog.Warn("og cache write failed", slog.String("key", cacheKey(f, h)), slog.Any("error", err))
			}
		}
	}
	slog.Debug("og rendered", slog.String("handle", h), slog.Int("png_bytes", len(png)), slog.Duration("took", time.Since(start)))
	return img, nil
}

func (g *Generator) fonts() (*card.FontSet, error) {
	if g.cfg.FontDir == "" {
		return g.cfg.Fonts, nil
	}
	g.fontMu.Lock()
	defer g.fontMu.Unlock()
	if g.loaded != nil {
		return g.loaded, nil
	}
	fs, err := card.LoadFonts(g.cfg.FontDir)
	if err != nil {
		return nil, err
	}
	g.loaded = fs
	return fs, nil
}

// avatar fetches and decodes the profile picture. Failures yield nil.
func (g *Generator) avatar(ctx context.Context, p *lens.Profile) image.Image {
	url := p.Picture.URL(g.src.Gateways())
	if url == "" {
		return nil
	}
	data, mime, err := g.src.FetchMedia(ctx, url)
	if err != nil {
		slog.Warn("avatar fetch failed", slog.String("handle", p.Handle), slog.String("url", url), slog.Any("error", err))
		return nil
	}
	img, err := card.DecodeAvatar(data, mime, card.AvatarSize)
	if err != nil {
		slog.Warn("avatar decode failed", slog.String("handle", p.Handle), slog.Any("error", err))
		return nil
	}
	return img
}

// NormalizeHandle trims, lower-cases and strips a leading @. Handles without
// a namespace get suffix appended.
func NormalizeHandle(raw, suffix string) (string, error) {
	h := strings.ToLower(strings.TrimSpace(raw))
	h = strings.TrimPrefix(h, "@")
	if h == "" {
		return "", ErrInvalidHandle
	}
	for _, r := range h {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9', r == '.', r == '_', r == '-':
		default:
			return "", fmt.Errorf("%w: %q", ErrInvalidHandle, raw)
		}
	}
	if !strings.Contains(h, ".") && suffix != "" {
		h += suffix
	}
	return h, nil
}

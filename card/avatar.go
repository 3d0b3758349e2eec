package card

import (
	"bytes"
	"crypto/sha256"
	"errors"
	"fmt"
	"image"
	"image/gif"
	"image/jpeg"
	"image/png"
	"io"
	"strings"

	"github.com/gabriel-vasile/mimetype"
	xdraw "golang.org/x/image/draw"
	"golang.org/x/image/webp"
)

// ErrUnsupportedImage is returned for avatar bytes that are not png, jpeg, gif or webp.
var ErrUnsupportedImage = errors.New("unsupported avatar image type")

// ErrAvatarTooLarge is returned when an avatar header declares more than
// MaxAvatarSide pixels on either axis.
var ErrAvatarTooLarge = errors.New("avatar dimensions too large")

// MaxAvatarSide bounds the declared width and height of a decodable avatar.
const MaxAvatarSide = 4096

type codec struct {
	decode       func(io.Reader) (image.Image, error)
	decodeConfig func(io.Reader) (image.Config, error)
}

var codecs = map[string]codec{
	"image/png":  {png.Decode, png.DecodeConfig},
	"image/jpeg": {jpeg.Decode, jpeg.DecodeConfig},
	"image/jpg":  {jpeg.Decode, jpeg.DecodeConfig},
	"image/gif":  {gif.Decode, gif.DecodeConfig},
	"image/webp": {webp.Decode, webp.DecodeConfig},
}

// DecodeAvatar decodes avatar bytes, centre-crops them to a square and scales
// the result to size×size. An empty mime triggers content sniffing. The header
// is checked against MaxAvatarSide before any pixels are decoded.
func DecodeAvatar(data []byte, mime string, size int) (image.Image, error) {
	if len(data) == 0 {
		return nil, fmt.Errorf("decode avatar: empty body")
	}
	mime, _, _ = strings.Cut(mime, ";")
	mime = strings.TrimSpace(strings.ToLower(mime))
	if mime == "" || mime == "application/octet-stream" {
		mime = mimetype.Detect(data).String()
	}

	c, ok := codecs[mime]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedImage, mime)
	}
	cfg, err := c.decodeConfig(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("decode avatar %s header: %w", mime, err)
	}
	if cfg.Width > MaxAvatarSide || cfg.Height > MaxAvatarSide {
		return nil, fmt.Errorf("%w: %dx%d", ErrAvatarTooLarge, cfg.Width, cfg.Height)
	}
	src, err := c.decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("decode avatar %s: %w", mime, err)
	}
	return squareScale(src, size), nil
}

func squareScale(src image.Image, size int) image.Image {
	b := src.Bounds()
	side := min(b.Dx(), b.Dy())
	x0 := b.Min.X + (b.Dx()-side)/2
	y0 := b.Min.Y + (b.Dy()-side)/2
	crop := image.Rect(x0, y0, x0+side, y0+side)

	dst := image.NewRGBA(image.Rect(0, 0, size, size))
	xdraw.CatmullRom.Scale(dst, dst.Bounds(), src, crop, xdraw.Src, nil)
	return dst
}

// initials returns up to two upper-case letters for a display label.
func initials(label string) string {
	label = strings.TrimSpace(strings.TrimPrefix(label, "@"))
	label = strings.TrimSuffix(label, ".lens")
	parts := strings.FieldsFunc(label, func(r rune) bool {
		return r == ' ' || r == '.' || r == '_' || r == '-'
	})
	if len(parts) == 0 {
		return "?"
	}
	if len(parts) >= 2 {
		return strings.ToUpper(string([]rune(parts[0])[:1]) + string([]rune(parts[1])[:1]))
	}
	r := []rune(parts[0])
	if len(r) >= 2 {
		return strings.ToUpper(string(r[:2]))
	}
	return strings.ToUpper(string(r[:1]))
}

var palette = []Color{
	RGB(0xe7, 0x4c, 0x3c), RGB(0xe6, 0x7e, 0x22), RGB(0xf1, 0xc4, 0x0f), RGB(0x2e, 0xcc, 0x71),
	RGB(0x1a, 0xbc, 0x9c), RGB(0x34, 0x98, 0xdb), RGB(0x9b, 0x59, 0xb6), RGB(0xe9, 0x1e, 0x63),
	RGB(0x00, 0xbc, 0xd4), RGB(0xff, 0x57, 0x22), RGB(0x60, 0x7d, 0x8b), RGB(0x67, 0x3a, 0xb7),
}

// discColor picks a stable palette entry for a seed.
func discColor(seed string) Color {
	h := sha256.Sum256([]byte(seed))
	return palette[int(h[0])%len(palette)]
}

package card

import (
	"bytes"
	"encoding/base64"
	"encoding/xml"
	"fmt"
	"image/png"
	"log/slog"

	"github.com/tdewolff/minify/v2"
	"github.com/tdewolff/minify/v2/svg"
)

const svgMIME = "image/svg+xml"

var minifier = func() *minify.M {
	m := minify.New()
	m.AddFunc(svgMIME, svg.Minify)
	return m
}()

var anchorAttr = map[Anchor]string{
	AnchorStart:  "start",
	AnchorMiddle: "middle",
	AnchorEnd:    "end",
}

var weightAttr = map[Weight]int{Normal: 400, Medium: 500, Bold: 700}

// RenderSVG serializes a scene to a minified SVG 1.1 document. Bitmaps are
// embedded as PNG data URIs.
func RenderSVG(s *Scene, fonts *FontSet) ([]byte, error) {
	raw, err := serializeSVG(s, fonts)
	if err != nil {
		return nil, err
	}
	out, err := minifier.Bytes(svgMIME, raw)
	if err != nil {
		slog.Warn("svg minify failed, serving unminified", slog.Any("error", err))
		return raw, nil
	}
	return out, nil
}

func serializeSVG(s *Scene, fonts *FontSet) ([]byte, error) {
	if fonts == nil {
		fonts = DefaultFonts()
	}
	var b bytes.Buffer
	fmt.Fprintf(&b, `<svg xmlns="http://www.w3.org/2000/svg" xmlns:xlink="http://www.w3.org/1999/xlink" version="1.1" width="%d" height="%d" viewBox="0 0 %d %d">`,
		s.Width, s.Height, s.Width, s.Height)
	fmt.Fprintf(&b, `<rect width="%d" height="%d" fill="%s"/>`, s.Width, s.Height, s.Background.CSS())

	clip := 0
	for _, el := range s.Elements {
		switch e := el.(type) {
		case Rect:
			fmt.Fprintf(&b, `<rect x="%g" y="%g" width="%g" height="%g" rx="%g" fill="%s"/>`,
				e.X, e.Y, e.W, e.H, e.Radius, e.Fill.CSS())
		case Circle:
			fmt.Fprintf(&b, `<circle cx="%g" cy="%g" r="%g" fill="%s"/>`, e.CX, e.CY, e.R, e.Fill.CSS())
		case Picture:
			var img bytes.Buffer
			if err := png.Encode(&img, e.Src); err != nil {
				return nil, fmt.Errorf("encode embedded image: %w", err)
			}
			uri := "data:image/png;base64," + base64.StdEncoding.EncodeToString(img.Bytes())
			if e.Circular {
				clip++
				r := e.Size / 2
				fmt.Fprintf(&b, `<clipPath id="c%d"><circle cx="%g" cy="%g" r="%g"/></clipPath>`, clip, e.X+r, e.Y+r, r)
				fmt.Fprintf(&b, `<image x="%g" y="%g" width="%g" height="%g" clip-path="url(#c%d)" xlink:href="%s"/>`,
					e.X, e.Y, e.Size, e.Size, clip, uri)
			} else {
				fmt.Fprintf(&b, `<image x="%g" y="%g" width="%g" height="%g" xlink:href="%s"/>`, e.X, e.Y, e.Size, e.Size, uri)
			}
		case Text:
			fmt.Fprintf(&b, `<text x="%g" y="%g" font-family="%s" font-weight="%d" font-size="%g" fill="%s" text-anchor="%s">`,
				e.X, e.Y, fonts.Family(e.Weight), weightAttr[e.Weight], e.Size, e.Fill.CSS(), anchorAttr[e.Anchor])
			if err := xml.EscapeText(&b, []byte(e.Value)); err != nil {
				return nil, err
			}
			b.WriteString(`</text>`)
		}
	}
	b.WriteString(`</svg>`)
	return b.Bytes(), nil
}

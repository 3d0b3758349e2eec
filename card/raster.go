package card

import (
	"bytes"
	"fmt"

	"github.com/fogleman/gg"
)

// Rasterize paints a scene onto a Width×Height canvas and encodes it as PNG.
// The canvas is first filled with the scene background.
func Rasterize(s *Scene, fonts *FontSet) ([]byte, error) {
	if fonts == nil {
		fonts = DefaultFonts()
	}
	fc := newFaces(fonts)
	defer fc.Close()

	dc := gg.NewContext(s.Width, s.Height)
	dc.SetColor(s.Background.NRGBA())
	dc.Clear()

	for _, el := range s.Elements {
		switch e := el.(type) {
		case Rect:
			if e.Radius > 0 {
				dc.DrawRoundedRectangle(e.X, e.Y, e.W, e.H, e.Radius)
			} else {
				dc.DrawRectangle(e.X, e.Y, e.W, e.H)
			}
			dc.SetColor(e.Fill.NRGBA())
			dc.Fill()
		case Circle:
			dc.DrawCircle(e.CX, e.CY, e.R)
			dc.SetColor(e.Fill.NRGBA())
			dc.Fill()
		case Picture:
			src := e.Src
			if b := src.Bounds(); b.Dx() != int(e.Size) || b.Dy() != int(e.Size) {
				src = squareScale(src, int(e.Size))
			}
			if e.Circular {
				r := e.Size / 2
				dc.Push()
				dc.DrawCircle(e.X+r, e.Y+r, r)
				dc.Clip()
				dc.DrawImage(src, int(e.X), int(e.Y))
				dc.ResetClip()
				dc.Pop()
			} else {
				dc.DrawImage(src, int(e.X), int(e.Y))
			}
		case Text:
			face, err := fc.get(e.Weight, e.Size)
			if err != nil {
				return nil, err
			}
			dc.SetFontFace(face)
			dc.SetColor(e.Fill.NRGBA())
			var ax float64
			switch e.Anchor {
			case AnchorMiddle:
				ax = 0.5
			case AnchorEnd:
				ax = 1
			}
			dc.DrawStringAnchored(e.Value, e.X, e.Y, ax, 0)
		}
	}

	var buf bytes.Buffer
	if err := dc.EncodePNG(&buf); err != nil {
		return nil, fmt.Errorf("encode png: %w", err)
	}
	return buf.Bytes(), nil
}

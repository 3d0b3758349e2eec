package card

import (
	"fmt"
	"image"
	"image/color"
)

// Color is an sRGB colour with a float alpha, as CSS rgba() writes it.
type Color struct {
	R, G, B uint8
	A       float64
}

// RGB returns an opaque colour.
func RGB(r, g, b uint8) Color { return Color{R: r, G: g, B: b, A: 1} }

// NRGBA converts to a non-premultiplied colour.
func (c Color) NRGBA() color.NRGBA {
	return color.NRGBA{R: c.R, G: c.G, B: c.B, A: uint8(c.A*255 + 0.5)}
}

// CSS returns the colour as an SVG paint value.
func (c Color) CSS() string {
	if c.A >= 1 {
		return fmt.Sprintf("#%02x%02x%02x", c.R, c.G, c.B)
	}
	return fmt.Sprintf("rgba(%d,%d,%d,%g)", c.R, c.G, c.B, c.A)
}

// Anchor is the horizontal alignment of a text run relative to its X.
type Anchor int

const (
	AnchorStart Anchor = iota
	AnchorMiddle
	AnchorEnd
)

// Element is one drawable node of a scene.
type Element interface {
	isElement()
}

// Rect is a filled rectangle with optional rounded corners.
type Rect struct {
	X, Y, W, H float64
	Radius     float64
	Fill       Color
}

// Circle is a filled disc.
type Circle struct {
	CX, CY, R float64
	Fill      Color
}

// Picture is a square bitmap, optionally clipped to a circle.
type Picture struct {
	X, Y, Size float64
	Circular   bool
	Src        image.Image
}

// Text is a single-line run. Y is the baseline.
type Text struct {
	X, Y   float64
	Value  string
	Weight Weight
	Size   float64
	Fill   Color
	Anchor Anchor
}

func (Rect) isElement()    {}
func (Circle) isElement()  {}
func (Picture) isElement() {}
func (Text) isElement()    {}

// Scene is a laid-out card: every element carries absolute coordinates.
type Scene struct {
	Width, Height int
	Background    Color
	Elements      []Element
}

// Texts returns the text runs of the scene in paint order.
func (s *Scene) Texts() []Text {
	var out []Text
	for _, el := range s.Elements {
		if t, ok := el.(Text); ok {
			out = append(out, t)
		}
	}
	return out
}

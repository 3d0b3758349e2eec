// Package card lays out and renders the 1200×600 profile share card.
package card

import (
	"errors"
	"image"
	"strings"
	"unicode/utf8"

	"github.com/dustin/go-humanize"
	"golang.org/x/image/font"

	lens "github.com/anatolykoptev/go-lenster"
)

// Card geometry.
const (
	Width      = 1200
	Height     = 600
	AvatarSize = 220

	margin     = 40
	padding    = 60
	avatarX    = margin + padding
	avatarY    = 110
	columnX    = avatarX + AvatarSize + padding
	columnW    = Width - margin - padding - columnX
	bioLines   = 3
	bioLeading = 44
)

// Text sizes in pixels.
const (
	NameSize    = 64
	HandleSize  = 36
	BioSize     = 32
	StatSize    = 32
	BrandSize   = 36
	InitialSize = 88
)

var (
	// Background is the card backdrop behind the panel.
	Background = Color{R: 238, G: 235, B: 230, A: 0.9}

	panelFill  = RGB(0xff, 0xff, 0xff)
	inkColor   = RGB(0x11, 0x18, 0x27)
	mutedColor = RGB(0x6b, 0x72, 0x80)
	bioColor   = RGB(0x37, 0x41, 0x51)
	brandColor = RGB(0x8b, 0x5c, 0xf6)
	white      = RGB(0xff, 0xff, 0xff)
)

const ellipsis = "…"

// Layout positions a profile's card elements. avatar may be nil, in which
// case an initials disc is drawn in its place.
func Layout(p *lens.Profile, avatar image.Image, fonts *FontSet) (*Scene, error) {
	if p == nil {
		return nil, errors.New("layout: nil profile")
	}
	if fonts == nil {
		fonts = DefaultFonts()
	}
	fc := newFaces(fonts)
	defer fc.Close()

	s := &Scene{Width: Width, Height: Height, Background: Background}
	s.Elements = append(s.Elements, Rect{X: margin, Y: margin, W: Width - 2*margin, H: Height - 2*margin, Radius: 32, Fill: panelFill})

	if avatar != nil {
		s.Elements = append(s.Elements, Picture{X: avatarX, Y: avatarY, Size: AvatarSize, Circular: true, Src: avatar})
	} else {
		r := float64(AvatarSize) / 2
		cx, cy := float64(avatarX)+r, float64(avatarY)+r
		s.Elements = append(s.Elements,
			Circle{CX: cx, CY: cy, R: r, Fill: discColor(p.Handle)},
			Text{X: cx, Y: cy + InitialSize*0.35, Value: initials(p.DisplayName()), Weight: Bold, Size: InitialSize, Fill: white, Anchor: AnchorMiddle},
		)
	}

	nameFace, err := fc.get(Bold, NameSize)
	if err != nil {
		return nil, err
	}
	handleFace, err := fc.get(Medium, HandleSize)
	if err != nil {
		return nil, err
	}
	bioFace, err := fc.get(Normal, BioSize)
	if err != nil {
		return nil, err
	}
	statBold, err := fc.get(Bold, StatSize)
	if err != nil {
		return nil, err
	}
	statNormal, err := fc.get(Normal, StatSize)
	if err != nil {
		return nil, err
	}

	y := 170.0
	s.Elements = append(s.Elements, Text{X: columnX, Y: y, Value: fit(nameFace, p.DisplayName(), columnW), Weight: Bold, Size: NameSize, Fill: inkColor})
	y += 52
	s.Elements = append(s.Elements, Text{X: columnX, Y: y, Value: fit(handleFace, "@"+p.Handle, columnW), Weight: Medium, Size: HandleSize, Fill: mutedColor})

	y = 300
	for _, line := range wrap(bioFace, p.Bio, columnW, bioLines) {
		s.Elements = append(s.Elements, Text{X: columnX, Y: y, Value: line, Weight: Normal, Size: BioSize, Fill: bioColor})
		y += bioLeading
	}

	x := float64(columnX)
	statY := 480.0
	for _, st := range []struct {
		n     int
		label string
	}{{p.Followers, "Followers"}, {p.Following, "Following"}} {
		count := humanize.Comma(int64(st.n))
		s.Elements = append(s.Elements, Text{X: x, Y: statY, Value: count, Weight: Bold, Size: StatSize, Fill: inkColor})
		x += width(statBold, count) + 10
		s.Elements = append(s.Elements, Text{X: x, Y: statY, Value: st.label, Weight: Normal, Size: StatSize, Fill: mutedColor})
		x += width(statNormal, st.label) + 40
	}

	s.Elements = append(s.Elements, Text{X: Width - margin - padding, Y: Height - margin - 40, Value: "Lenster", Weight: Bold, Size: BrandSize, Fill: brandColor, Anchor: AnchorEnd})
	return s, nil
}

// fit truncates s with an ellipsis so it is no wider than maxW.
func fit(face font.Face, s string, maxW float64) string {
	if width(face, s) <= maxW {
		return s
	}
	r := []rune(s)
	for len(r) > 0 {
		r = r[:len(r)-1]
		cand := strings.TrimRight(string(r), " ") + ellipsis
		if width(face, cand) <= maxW {
			return cand
		}
	}
	return ellipsis
}

// wrap splits text into at most maxLines lines no wider than maxW. Words
// longer than a line are broken by rune. Overflow ends with an ellipsis.
func wrap(face font.Face, text string, maxW float64, maxLines int) []string {
	words := strings.Fields(text)
	if len(words) == 0 || maxLines <= 0 {
		return nil
	}

	var lines []string
	cur := ""
	overflow := false
	push := func(l string) bool {
		if len(lines) == maxLines {
			overflow = true
			return false
		}
		lines = append(lines, l)
		return true
	}

	for _, w := range words {
		cand := w
		if cur != "" {
			cand = cur + " " + w
		}
		if width(face, cand) <= maxW {
			cur = cand
			continue
		}
		if cur != "" {
			if !push(cur) {
				break
			}
			cur = ""
		}
		for width(face, w) > maxW {
			head := breakRunes(face, w, maxW)
			if !push(head) {
				break
			}
			w = w[len(head):]
		}
		if overflow {
			break
		}
		cur = w
	}
	if !overflow && cur != "" {
		push(cur)
	}
	if overflow && len(lines) > 0 {
		last := len(lines) - 1
		lines[last] = fit(face, lines[last]+ellipsis, maxW)
	}
	return lines
}

// breakRunes returns the longest prefix of w, at least one rune, that fits maxW.
func breakRunes(face font.Face, w string, maxW float64) string {
	end := 0
	for i, r := range w {
		next := i + utf8.RuneLen(r)
		if end > 0 && width(face, w[:next]) > maxW {
			break
		}
		end = next
	}
	return w[:end]
}

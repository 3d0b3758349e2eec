package card

import (
	"fmt"
	"os"
	"path/filepath"

	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/gobold"
	"golang.org/x/image/font/gofont/gomedium"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/font/opentype"
)

// Weight selects one of the three card faces.
type Weight int

const (
	Normal Weight = iota
	Medium
	Bold
)

// Font file names looked up by LoadFonts.
const (
	NormalFile = "CircularXXSub-Book.ttf"
	MediumFile = "CircularXXSub-Medium.ttf"
	BoldFile   = "CircularXXSub-Bold.ttf"
)

// FontSet holds the parsed faces used for layout and rasterization.
// Only these faces are used; system fonts are never consulted.
type FontSet struct {
	fonts    [3]*opentype.Font
	families [3]string
}

// LoadFonts parses the three CircularXX faces from dir.
func LoadFonts(dir string) (*FontSet, error) {
	files := [3]string{NormalFile, MediumFile, BoldFile}
	families := [3]string{"CircularXX Normal", "CircularXX Medium", "CircularXX Bold"}

	fs := &FontSet{families: families}
	for i, name := range files {
		path := filepath.Join(dir, name)
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("load font %s: %w", path, err)
		}
		f, err := opentype.Parse(data)
		if err != nil {
			return nil, fmt.Errorf("parse font %s: %w", path, err)
		}
		fs.fonts[i] = f
	}
	return fs, nil
}

// DefaultFonts returns the Go font family. Used when no font dir is configured.
func DefaultFonts() *FontSet {
	mustParse := func(data []byte) *opentype.Font {
		f, err := opentype.Parse(data)
		if err != nil {
			panic(fmt.Sprintf("card: parse embedded go font: %v", err))
		}
		return f
	}
	return &FontSet{
		fonts:    [3]*opentype.Font{mustParse(goregular.TTF), mustParse(gomedium.TTF), mustParse(gobold.TTF)},
		families: [3]string{"Go", "Go Medium", "Go Bold"},
	}
}

// Family returns the font-family name of a weight, as written into SVG.
func (fs *FontSet) Family(w Weight) string {
	return fs.families[w]
}

type faceKey struct {
	weight Weight
	size   float64
}

// faces caches font.Face values for one render. font.Face is not safe for
// concurrent use, so a faces value must not be shared between goroutines.
type faces struct {
	set   *FontSet
	cache map[faceKey]font.Face
}

func newFaces(set *FontSet) *faces {
	return &faces{set: set, cache: make(map[faceKey]font.Face)}
}

func (f *faces) get(w Weight, size float64) (font.Face, error) {
	key := faceKey{w, size}
	if face, ok := f.cache[key]; ok {
		return face, nil
	}
	face, err := opentype.NewFace(f.set.fonts[w], &opentype.FaceOptions{
		Size:    size,
		DPI:     72,
		Hinting: font.HintingFull,
	})
	if err != nil {
		return nil, fmt.Errorf("face weight=%d size=%.0f: %w", w, size, err)
	}
	f.cache[key] = face
	return face, nil
}

func (f *faces) Close() {
	for _, face := range f.cache {
		_ = face.Close()
	}
}

// width returns the advance width of s in pixels.
func width(face font.Face, s string) float64 {
	return float64(font.MeasureString(face, s)) / 64
}

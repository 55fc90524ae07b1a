package render

import (
	"math"
	"sync"

	"github.com/golang/freetype/truetype"
	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/gobold"
	"golang.org/x/image/font/gofont/goregular"
)

// faces caches font faces by style and pixel size.
type faces struct {
	mu      sync.Mutex
	regular *truetype.Font
	bold    *truetype.Font
	cache   map[faceKey]font.Face
}

type faceKey struct {
	bold bool
	size int // quarter points
}

var fontCache = newFaces()

func newFaces() *faces {
	// The embedded Go fonts always parse.
	regular, err := truetype.Parse(goregular.TTF)
	if err != nil {
		panic(err)
	}
	bold, err := truetype.Parse(gobold.TTF)
	if err != nil {
		panic(err)
	}
	return &faces{
		regular: regular,
		bold:    bold,
		cache:   make(map[faceKey]font.Face),
	}
}

// face returns a face of roughly the given pixel size.
func (f *faces) face(size float64, bold bool) font.Face {
	if size < 1 {
		size = 1
	}
	key := faceKey{bold: bold, size: int(math.Round(size * 4))}

	f.mu.Lock()
	defer f.mu.Unlock()

	if fc, ok := f.cache[key]; ok {
		return fc
	}
	ttf := f.regular
	if bold {
		ttf = f.bold
	}
	fc := truetype.NewFace(ttf, &truetype.Options{
		Size:    float64(key.size) / 4,
		DPI:     72,
		Hinting: font.HintingNone, // output is usually supersampled
	})
	f.cache[key] = fc
	return fc
}

// measure returns the advance width of s in pixels.
func (f *faces) measure(s string, size float64, bold bool) float64 {
	fc := f.face(size, bold)
	f.mu.Lock()
	defer f.mu.Unlock()
	return float64(font.MeasureString(fc, s)) / 64
}

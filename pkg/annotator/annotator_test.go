package annotator

import (
	"image"
	"image/color"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/image/font/basicfont"

	"github.com/menta2k/grid-locator/pkg/grid"
)

// createTestImage creates a uniform grey test image
func createTestImage(width, height int) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, width, height))
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			img.SetNRGBA(x, y, color.NRGBA{128, 128, 128, 255})
		}
	}
	return img
}

func TestPad(t *testing.T) {
	src := createTestImage(200, 100)
	out := Pad(src, 100, 100)

	assert.Equal(t, image.Rect(0, 0, 300, 200), out.Bounds())
	assert.Equal(t, color.NRGBA{255, 255, 255, 255}, out.NRGBAAt(10, 10), "top-left margin is white")
	assert.Equal(t, color.NRGBA{255, 255, 255, 255}, out.NRGBAAt(150, 50), "top margin is white")
	assert.Equal(t, color.NRGBA{255, 255, 255, 255}, out.NRGBAAt(50, 150), "left margin is white")
	assert.Equal(t, color.NRGBA{128, 128, 128, 255}, out.NRGBAAt(100, 100), "image starts at the offsets")
	assert.Equal(t, color.NRGBA{128, 128, 128, 255}, out.NRGBAAt(299, 199))

	assert.Equal(t, color.NRGBA{128, 128, 128, 255}, src.NRGBAAt(0, 0), "source untouched")
}

func TestDrawGridLines(t *testing.T) {
	src := createTestImage(300, 200)
	g, err := grid.ForImage(src, 75)
	require.NoError(t, err)
	require.Equal(t, 4, g.Columns)
	require.Equal(t, 2, g.Rows)

	style := DefaultGridStyle(nil)
	out := DrawGrid(src, g, style)

	for i := 0; i <= g.Columns; i++ {
		x := i * 75
		if x >= 300 {
			continue
		}
		assert.Equal(t, style.LineColor, out.NRGBAAt(x, 120), "vertical line at x=%d", x)
	}
	for j := 0; j <= g.Rows; j++ {
		assert.Equal(t, style.LineColor, out.NRGBAAt(40, j*75), "horizontal line at y=%d", j*75)
	}
	assert.Equal(t, color.NRGBA{128, 128, 128, 255}, out.NRGBAAt(40, 40), "cell interior untouched")
	assert.Equal(t, color.NRGBA{128, 128, 128, 255}, out.NRGBAAt(40, 170), "area past the last row untouched")
	assert.Equal(t, color.NRGBA{128, 128, 128, 255}, src.NRGBAAt(0, 0), "source untouched")
}

func TestDrawGridLabels(t *testing.T) {
	src := createTestImage(150, 150)
	g, err := grid.ForImage(src, 75)
	require.NoError(t, err)

	style := DefaultGridStyle(basicfont.Face7x13)
	out := DrawGrid(src, g, style)

	countLabel := func(r image.Rectangle) int {
		n := 0
		for y := r.Min.Y; y < r.Max.Y; y++ {
			for x := r.Min.X; x < r.Max.X; x++ {
				if out.NRGBAAt(x, y) == style.LabelColor {
					n++
				}
			}
		}
		return n
	}
	assert.Positive(t, countLabel(image.Rect(20, 1, 55, 25)), "column label A")
	assert.Positive(t, countLabel(image.Rect(95, 1, 130, 25)), "column label B")
	assert.Positive(t, countLabel(image.Rect(1, 100, 25, 125)), "row label 2")
}

func TestLoadFaceFallsBackToEmbedded(t *testing.T) {
	bogus := filepath.Join(t.TempDir(), "bogus.ttf")
	require.NoError(t, os.WriteFile(bogus, []byte("not a font"), 0o644))

	face, source := LoadFace([]string{"/does/not/exist.ttf", bogus}, 14)
	require.NotNil(t, face)
	assert.Equal(t, SourceEmbedded, source)
	assert.Positive(t, face.Metrics().Ascent.Ceil())
}

func BenchmarkDrawGrid(b *testing.B) {
	src := createTestImage(1024, 768)
	g, _ := grid.ForImage(src, 75)
	face, _ := LoadFace(nil, DefaultFontSize)
	style := DefaultGridStyle(face)

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		DrawGrid(src, g, style)
	}
}

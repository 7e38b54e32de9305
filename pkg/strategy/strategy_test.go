package strategy

import (
	"image"
	"image/color"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/image/font/basicfont"

	"github.com/menta2k/grid-locator/pkg/annotator"
	"github.com/menta2k/grid-locator/pkg/types"
)

func createTestImage(width, height int) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, width, height))
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			img.SetNRGBA(x, y, color.NRGBA{200, 200, 200, 255})
		}
	}
	return img
}

func TestPaddedAnnotate(t *testing.T) {
	src := createTestImage(1024, 768)
	p := NewPadded()
	assert.Equal(t, types.ModePadded, p.Mode())

	ann, err := p.Annotate(src)
	require.NoError(t, err)

	assert.Equal(t, 50, ann.Grid.CellSize)
	assert.Equal(t, 20, ann.Grid.Columns)
	assert.Equal(t, 15, ann.Grid.Rows)

	assert.Equal(t, image.Rect(0, 0, 1124, 868), ann.Model.Bounds())
	assert.Equal(t, image.Rect(0, 0, 1024, 768), ann.Base.Bounds())

	r, g, b, _ := ann.Model.At(50, 50).RGBA()
	assert.Equal(t, [3]uint32{0xffff, 0xffff, 0xffff}, [3]uint32{r, g, b}, "margin is white")
	r, _, _, _ = ann.Model.At(100, 100).RGBA()
	assert.Equal(t, uint32(200*0x101), r, "image pasted at the margin offset")

	// base is a copy, not the input
	ann.Base.SetNRGBA(0, 0, color.NRGBA{1, 2, 3, 255})
	assert.Equal(t, color.NRGBA{200, 200, 200, 255}, src.NRGBAAt(0, 0))

	prompt := p.Prompt(ann.Grid)
	assert.Contains(t, prompt, "A-T")
	assert.Contains(t, prompt, "1-15")
}

func TestDrawnAnnotate(t *testing.T) {
	src := createTestImage(1024, 768)
	style := annotator.DefaultGridStyle(basicfont.Face7x13)
	d := NewDrawn("search box", style)
	assert.Equal(t, types.ModeDrawn, d.Mode())

	ann, err := d.Annotate(src)
	require.NoError(t, err)

	assert.Equal(t, 75, ann.Grid.CellSize)
	assert.Equal(t, 13, ann.Grid.Columns)
	assert.Equal(t, 10, ann.Grid.Rows)
	assert.Equal(t, src.Bounds(), ann.Model.Bounds())

	model := ann.Model.(*image.NRGBA)
	assert.Equal(t, style.LineColor, model.NRGBAAt(150, 400), "vertical grid line")
	assert.Equal(t, style.LineColor, model.NRGBAAt(400, 225), "horizontal grid line")

	assert.Equal(t, color.NRGBA{200, 200, 200, 255}, ann.Base.NRGBAAt(150, 400), "base has no grid")
	assert.Equal(t, color.NRGBA{200, 200, 200, 255}, src.NRGBAAt(150, 400), "input untouched")

	prompt := d.Prompt(ann.Grid)
	assert.Contains(t, prompt, "A-M")
	assert.Contains(t, prompt, "1-10")
	assert.Contains(t, prompt, "search box")
}

func TestNewDrawnDefaultTarget(t *testing.T) {
	d := NewDrawn(" ", annotator.DefaultGridStyle(nil))
	assert.Equal(t, DefaultTarget, d.Target)
}

func TestAnnotateTooSmall(t *testing.T) {
	_, err := NewPadded().Annotate(createTestImage(40, 40))
	assert.Error(t, err)
	_, err = NewDrawn("x", annotator.DefaultGridStyle(nil)).Annotate(createTestImage(40, 40))
	assert.Error(t, err)
}

func TestNew(t *testing.T) {
	s, err := New(types.ModePadded, Options{})
	require.NoError(t, err)
	require.IsType(t, &Padded{}, s)
	assert.Equal(t, DefaultPaddedCell, s.(*Padded).CellSize)
	assert.Equal(t, DefaultPadding, s.(*Padded).Padding)

	s, err = New(types.ModeDrawn, Options{DrawnCell: 100, Target: "x"})
	require.NoError(t, err)
	require.IsType(t, &Drawn{}, s)
	assert.Equal(t, 100, s.(*Drawn).CellSize)
	assert.Equal(t, "x", s.(*Drawn).Target)

	_, err = New(types.Mode("sparse"), Options{})
	assert.Error(t, err)
}

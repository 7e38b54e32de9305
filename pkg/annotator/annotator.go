// Package annotator draws the coordinate grid that the vision model reads.
package annotator

import (
	"image"
	"image/color"

	"github.com/disintegration/imaging"
	"golang.org/x/image/font"
	"golang.org/x/image/math/fixed"

	"github.com/menta2k/grid-locator/pkg/grid"
)

// GridStyle controls how grid lines and labels are drawn
type GridStyle struct {
	LineColor  color.NRGBA
	LabelColor color.NRGBA
	LineWidth  int
	Face       font.Face
}

// DefaultGridStyle draws 1px black lines with red labels
func DefaultGridStyle(face font.Face) GridStyle {
	return GridStyle{
		LineColor:  color.NRGBA{0, 0, 0, 255},
		LabelColor: color.NRGBA{255, 0, 0, 255},
		LineWidth:  1,
		Face:       face,
	}
}

// Pad returns a copy of img on a white canvas with top and left margins
func Pad(img image.Image, top, left int) *image.NRGBA {
	b := img.Bounds()
	dst := imaging.New(b.Dx()+left, b.Dy()+top, color.White)
	return imaging.Paste(dst, img, image.Pt(left, top))
}

// DrawGrid returns a copy of img with grid lines at every cell boundary,
// column letters along the top and row numbers down the left edge.
func DrawGrid(img image.Image, g grid.Spec, style GridStyle) *image.NRGBA {
	dst := imaging.Clone(img)
	w, h := dst.Bounds().Dx(), dst.Bounds().Dy()
	right, bottom := g.Columns*g.CellSize, g.Rows*g.CellSize
	lw := style.LineWidth
	if lw < 1 {
		lw = 1
	}

	for i := 0; i <= g.Columns; i++ {
		x := i * g.CellSize
		for s := 0; s < lw; s++ {
			drawVLine(dst, x+s, 0, minInt(bottom+lw, h), style.LineColor)
		}
	}
	for j := 0; j <= g.Rows; j++ {
		y := j * g.CellSize
		for s := 0; s < lw; s++ {
			drawHLine(dst, y+s, 0, minInt(right+lw, w), style.LineColor)
		}
	}

	if style.Face == nil {
		return dst
	}
	d := &font.Drawer{
		Dst:  dst,
		Src:  image.NewUniform(style.LabelColor),
		Face: style.Face,
	}
	ascent := style.Face.Metrics().Ascent.Ceil()
	const inset = 3
	for i := 0; i < g.Columns; i++ {
		d.Dot = fixed.P(i*g.CellSize+g.CellSize/2, inset+ascent)
		label := g.ColumnLabel(i)
		d.Dot.X -= d.MeasureString(label) / 2
		d.DrawString(label)
	}
	for j := 0; j < g.Rows; j++ {
		d.Dot = fixed.P(inset+lw, j*g.CellSize+g.CellSize/2+ascent/2)
		d.DrawString(g.RowLabel(j))
	}
	return dst
}

func minInt(a, b int) int {
	if a < b {
		return a
	}
	return b
}

func drawHLine(img *image.NRGBA, y, x0, x1 int, c color.NRGBA) {
	if y < 0 || y >= img.Bounds().Dy() {
		return
	}
	if x0 > x1 {
		x0, x1 = x1, x0
	}
	if x1 <= 0 || x0 >= img.Bounds().Dx() {
		return
	}
	if x0 < 0 {
		x0 = 0
	}
	if x1 > img.Bounds().Dx() {
		x1 = img.Bounds().Dx()
	}
	i := y*img.Stride + x0*4
	for x := x0; x < x1; x++ {
		img.Pix[i+0] = c.R
		img.Pix[i+1] = c.G
		img.Pix[i+2] = c.B
		img.Pix[i+3] = c.A
		i += 4
	}
}

func drawVLine(img *image.NRGBA, x, y0, y1 int, c color.NRGBA) {
	if x < 0 || x >= img.Bounds().Dx() {
		return
	}
	if y0 > y1 {
		y0, y1 = y1, y0
	}
	if y1 <= 0 || y0 >= img.Bounds().Dy() {
		return
	}
	if y0 < 0 {
		y0 = 0
	}
	if y1 > img.Bounds().Dy() {
		y1 = img.Bounds().Dy()
	}
	i := y0*img.Stride + x*4
	for y := y0; y < y1; y++ {
		img.Pix[i+0] = c.R
		img.Pix[i+1] = c.G
		img.Pix[i+2] = c.B
		img.Pix[i+3] = c.A
		i += img.Stride
	}
}

// Package marker draws outlined ellipses over the cells a model pointed at.
package marker

import (
	"fmt"
	"image"
	"image/color"
	"image/draw"

	"github.com/fogleman/gg"
	"github.com/lucasb-eyer/go-colorful"

	"github.com/menta2k/grid-locator/pkg/grid"
	"github.com/menta2k/grid-locator/pkg/types"
)

// Style controls marker appearance
type Style struct {
	Color       color.NRGBA
	StrokeWidth int
	// Padding is added to both radii of a multi-element ellipse
	Padding int
	// Radius of the single-target circle
	Radius int
}

// DefaultStyle returns red 3px outlines, 50px padding and a 40px target circle
func DefaultStyle() Style {
	return Style{
		Color:       color.NRGBA{255, 0, 0, 255},
		StrokeWidth: 3,
		Padding:     50,
		Radius:      40,
	}
}

// ParseColor parses a hex colour such as "#ff0000"
func ParseColor(hex string) (color.NRGBA, error) {
	c, err := colorful.Hex(hex)
	if err != nil {
		return color.NRGBA{}, fmt.Errorf("invalid colour %q: %w", hex, err)
	}
	r, g, b := c.RGB255()
	return color.NRGBA{r, g, b, 255}, nil
}

// Marker records one drawn ellipse
type Marker struct {
	Description string          `json:"description"`
	Cells       image.Rectangle `json:"cells"`
	CenterX     float64         `json:"center_x"`
	CenterY     float64         `json:"center_y"`
	RadiusX     float64         `json:"radius_x"`
	RadiusY     float64         `json:"radius_y"`
}

// Renderer turns a parsed response into markers on an image
type Renderer struct {
	style Style
}

// New creates a Renderer with DefaultStyle
func New() *Renderer {
	return &Renderer{style: DefaultStyle()}
}

// NewWithStyle creates a Renderer with a custom style
func NewWithStyle(style Style) *Renderer {
	return &Renderer{style: style}
}

// Markers computes the markers for resp without drawing anything.
// Every coordinate must lie inside g.
func (r *Renderer) Markers(resp types.Response, g grid.Spec) ([]Marker, error) {
	switch v := resp.(type) {
	case *types.MultiElement:
		markers := make([]Marker, 0, len(v.Elements))
		for _, el := range v.Elements {
			if err := checkInside(el.GridLocations, g); err != nil {
				return nil, err
			}
			box, err := grid.BoundingBox(el.GridLocations, g.CellSize)
			if err != nil {
				return nil, err
			}
			pad := float64(r.style.Padding)
			markers = append(markers, Marker{
				Description: el.Description,
				Cells:       box,
				CenterX:     float64(box.Min.X+box.Max.X) / 2,
				CenterY:     float64(box.Min.Y+box.Max.Y) / 2,
				RadiusX:     float64(box.Dx())/2 + pad,
				RadiusY:     float64(box.Dy())/2 + pad,
			})
		}
		return markers, nil

	case *types.SingleTarget:
		if err := checkInside([]string{v.GridLocation}, g); err != nil {
			return nil, err
		}
		center, err := grid.ToPixel(v.GridLocation, g.CellSize, true)
		if err != nil {
			return nil, err
		}
		c, _ := grid.ParseCoordinate(v.GridLocation)
		rad := float64(r.style.Radius)
		return []Marker{{
			Description: v.Description,
			Cells:       grid.CellRect(c, g.CellSize),
			CenterX:     float64(center.X),
			CenterY:     float64(center.Y),
			RadiusX:     rad,
			RadiusY:     rad,
		}}, nil
	}
	return nil, fmt.Errorf("unsupported response type %T", resp)
}

// Render draws every marker for resp onto dst and returns them. Markers are
// computed before any pixel is touched, so an invalid coordinate leaves dst
// unchanged.
func (r *Renderer) Render(dst *image.NRGBA, resp types.Response, g grid.Spec) ([]Marker, error) {
	markers, err := r.Markers(resp, g)
	if err != nil {
		return nil, err
	}
	if len(markers) == 0 {
		return markers, nil
	}

	dc := gg.NewContextForImage(dst)
	for _, m := range markers {
		outline(dc, m.CenterX, m.CenterY, m.RadiusX, m.RadiusY, r.style.StrokeWidth, r.style.Color)
	}
	copyBack(dst, dc)
	return markers, nil
}

func checkInside(labels []string, g grid.Spec) error {
	for _, l := range labels {
		c, err := grid.ParseCoordinate(l)
		if err != nil {
			return err
		}
		if !g.Contains(c) {
			return &types.InvalidCoordinateError{
				Coordinate: l,
				Reason:     fmt.Sprintf("outside the %dx%d grid (A-%s, 1-%d)", g.Columns, g.Rows, g.LastColumn(), g.Rows),
			}
		}
	}
	return nil
}

// DrawEllipse outlines the axis-aligned ellipse centred on (cx, cy). The
// stroke grows inward from the outer radii, like an outlined shape drawn
// inside its bounding box. Pixels outside dst are clipped.
func DrawEllipse(dst *image.NRGBA, cx, cy, rx, ry float64, width int, c color.NRGBA) {
	dc := gg.NewContextForImage(dst)
	outline(dc, cx, cy, rx, ry, width, c)
	copyBack(dst, dc)
}

func outline(dc *gg.Context, cx, cy, rx, ry float64, width int, c color.NRGBA) {
	if rx <= 0 || ry <= 0 {
		return
	}
	if width < 1 {
		width = 1
	}
	w := float64(width)
	dc.SetColor(c)

	// too small for a ring
	if rx <= w || ry <= w {
		dc.DrawEllipse(cx, cy, rx, ry)
		dc.Fill()
		return
	}

	dc.SetLineWidth(w)
	dc.DrawEllipse(cx, cy, rx-w/2, ry-w/2)
	dc.Stroke()
}

func copyBack(dst *image.NRGBA, dc *gg.Context) {
	b := dst.Bounds()
	draw.Draw(dst, b, dc.Image(), b.Min, draw.Src)
}

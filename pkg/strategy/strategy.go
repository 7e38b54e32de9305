// Package strategy holds the two ways of presenting a grid to the vision
// model: an implied grid on a padded image, or a grid drawn onto the image.
package strategy

import (
	"fmt"
	"image"
	"strings"

	"github.com/disintegration/imaging"
	"github.com/rs/zerolog/log"

	"github.com/menta2k/grid-locator/pkg/annotator"
	"github.com/menta2k/grid-locator/pkg/detection"
	"github.com/menta2k/grid-locator/pkg/grid"
	"github.com/menta2k/grid-locator/pkg/types"
)

// Default geometry per mode
const (
	DefaultPaddedCell = 50
	DefaultPadding    = 100
	DefaultDrawnCell  = 75
	DefaultTarget     = "the most prominent button"
)

// Annotation is the result of preparing an image for the model.
// Model is what gets sent; Base is an unannotated copy of the input that
// markers are drawn on. Grid is the grid both refer to.
type Annotation struct {
	Model image.Image
	Base  *image.NRGBA
	Grid  grid.Spec
}

// Strategy prepares an image and the matching prompt for one mode
type Strategy interface {
	Mode() types.Mode
	Annotate(img image.Image) (*Annotation, error)
	Prompt(g grid.Spec) string
}

// Padded leaves the grid implied and adds white margins on the top and
// left, asking for up to five notable elements
type Padded struct {
	CellSize int
	Padding  int
}

// NewPadded returns the padded strategy with 50px cells and 100px margins
func NewPadded() *Padded {
	return &Padded{CellSize: DefaultPaddedCell, Padding: DefaultPadding}
}

func (p *Padded) Mode() types.Mode { return types.ModePadded }

// Annotate derives the grid from the unpadded size, then pads
func (p *Padded) Annotate(img image.Image) (*Annotation, error) {
	g, err := grid.ForImage(img, p.CellSize)
	if err != nil {
		return nil, err
	}
	padded := annotator.Pad(img, p.Padding, p.Padding)
	log.Debug().
		Int("columns", g.Columns).
		Int("rows", g.Rows).
		Int("padding", p.Padding).
		Msg("padded image for implied grid")

	return &Annotation{
		Model: padded,
		Base:  imaging.Clone(img),
		Grid:  g,
	}, nil
}

func (p *Padded) Prompt(g grid.Spec) string {
	return detection.MultiElementPrompt(g)
}

// Drawn draws and labels the grid on a copy of the image and asks for the
// single cell holding Target
type Drawn struct {
	CellSize int
	Target   string
	Style    annotator.GridStyle
}

// NewDrawn returns the drawn strategy with 75px cells. Labels use style.Face;
// a nil face draws lines only.
func NewDrawn(target string, style annotator.GridStyle) *Drawn {
	if strings.TrimSpace(target) == "" {
		target = DefaultTarget
	}
	return &Drawn{CellSize: DefaultDrawnCell, Target: target, Style: style}
}

func (d *Drawn) Mode() types.Mode { return types.ModeDrawn }

func (d *Drawn) Annotate(img image.Image) (*Annotation, error) {
	g, err := grid.ForImage(img, d.CellSize)
	if err != nil {
		return nil, err
	}
	gridded := annotator.DrawGrid(img, g, d.Style)
	log.Debug().
		Int("columns", g.Columns).
		Int("rows", g.Rows).
		Bool("labels", d.Style.Face != nil).
		Msg("drew grid")

	return &Annotation{
		Model: gridded,
		Base:  imaging.Clone(img),
		Grid:  g,
	}, nil
}

func (d *Drawn) Prompt(g grid.Spec) string {
	return detection.SingleTargetPrompt(g, d.Target)
}

// Options configures New. Zero sizes fall back to the mode defaults.
type Options struct {
	PaddedCell int
	Padding    int
	DrawnCell  int
	Target     string
	Style      annotator.GridStyle
}

// New returns the strategy for mode
func New(mode types.Mode, opts Options) (Strategy, error) {
	switch mode {
	case types.ModePadded:
		p := NewPadded()
		if opts.PaddedCell > 0 {
			p.CellSize = opts.PaddedCell
		}
		if opts.Padding > 0 {
			p.Padding = opts.Padding
		}
		return p, nil
	case types.ModeDrawn:
		d := NewDrawn(opts.Target, opts.Style)
		if opts.DrawnCell > 0 {
			d.CellSize = opts.DrawnCell
		}
		return d, nil
	}
	return nil, fmt.Errorf("unknown mode %q", mode)
}

// Package gridlocator finds things on screenshots with a vision model.
//
// The image is resized to 1024x768 and overlaid with a chess-like coordinate
// grid (columns A, B, C... and rows 1, 2, 3...). The model is asked to answer
// in grid cells rather than pixels, and its answer is mapped back to pixels
// and drawn as ellipses on the image.
//
// Two modes are available:
//
//   - padded: 50px cells, the grid is only described in the prompt and the
//     image gets 100px white margins on the top and left. The model reports
//     up to five notable elements, each spanning one or more cells.
//   - drawn: 75px cells with grid lines and labels drawn on the image. The
//     model reports the single cell that holds a named target.
//
// Basic usage:
//
//	package main
//
//	import (
//		"context"
//		"fmt"
//		"log"
//
//		gridlocator "github.com/menta2k/grid-locator"
//	)
//
//	func main() {
//		cfg, err := gridlocator.LoadConfig(gridlocator.LoadOptions{EnvFile: ".env"})
//		if err != nil {
//			log.Fatal(err)
//		}
//
//		locator, err := gridlocator.New(context.Background(), cfg)
//		if err != nil {
//			log.Fatal(err)
//		}
//
//		result, err := locator.Locate(context.Background(), "screenshot.png")
//		if err != nil {
//			log.Fatal(err)
//		}
//
//		for _, m := range result.Markers {
//			fmt.Printf("%s at (%.0f, %.0f)\n", m.Description, m.CenterX, m.CenterY)
//		}
//	}
//
// Failures carry a type from pkg/types (ImageLoadError, MissingCredentialError,
// RemoteServiceError, MalformedResponseError, InvalidCoordinateError) and
// ExitCode maps them to process exit statuses.
package gridlocator

import (
	"context"
	"errors"
	"fmt"
	"image"
	"io"

	"github.com/rs/zerolog/log"

	"github.com/menta2k/grid-locator/internal/config"
	"github.com/menta2k/grid-locator/pkg/annotator"
	"github.com/menta2k/grid-locator/pkg/client"
	"github.com/menta2k/grid-locator/pkg/detection"
	"github.com/menta2k/grid-locator/pkg/grid"
	"github.com/menta2k/grid-locator/pkg/marker"
	"github.com/menta2k/grid-locator/pkg/processing"
	"github.com/menta2k/grid-locator/pkg/strategy"
	"github.com/menta2k/grid-locator/pkg/types"
)

// Version of the grid locator library
const Version = "1.0.0"

// Config and LoadOptions are re-exported so callers outside this module can
// build a configuration.
type (
	Config      = config.Config
	LoadOptions = config.LoadOptions
)

// DefaultConfig returns a configuration with default values
func DefaultConfig() *Config {
	return config.Default()
}

// LoadConfig layers defaults, an optional JSON file, an optional .env file
// and the process environment
func LoadConfig(opts LoadOptions) (*Config, error) {
	return config.Load(opts)
}

// Result is everything one Locate call produced
type Result struct {
	Mode     types.Mode      `json:"mode"`
	Grid     grid.Spec       `json:"grid"`
	Response types.Response  `json:"response"`
	Markers  []marker.Marker `json:"markers"`
	// Image is the resized input with markers drawn on it
	Image *image.NRGBA `json:"-"`
	// Raw is the model's reply text before parsing
	Raw string `json:"-"`
}

// Locator runs the load, annotate, query, parse and mark pipeline
type Locator struct {
	cfg       *Config
	processor *processing.Processor
	strategy  strategy.Strategy
	detector  *detection.Detector
	renderer  *marker.Renderer
}

// New creates a Locator whose vision client is chosen by cfg.Vision.Backend
func New(ctx context.Context, cfg *Config) (*Locator, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	vc, err := client.New(ctx, cfg)
	if err != nil {
		return nil, err
	}
	return NewWithClient(cfg, vc)
}

// NewWithClient creates a Locator that queries vc
func NewWithClient(cfg *Config, vc client.VisionClient) (*Locator, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	strat, err := newStrategy(cfg)
	if err != nil {
		return nil, err
	}

	style, err := cfg.MarkerStyle()
	if err != nil {
		return nil, err
	}

	return &Locator{
		cfg:       cfg,
		processor: processing.NewProcessor(),
		strategy:  strat,
		detector:  detection.NewDetector(vc),
		renderer:  marker.NewWithStyle(style),
	}, nil
}

func newStrategy(cfg *Config) (strategy.Strategy, error) {
	mode, err := types.ParseMode(cfg.Grid.Mode)
	if err != nil {
		return nil, err
	}

	opts := strategy.Options{
		PaddedCell: cfg.Grid.PaddedCell,
		Padding:    cfg.Grid.Padding,
		DrawnCell:  cfg.Grid.DrawnCell,
		Target:     cfg.Grid.Target,
	}
	if mode == types.ModeDrawn {
		paths := cfg.Grid.FontPaths
		if len(paths) == 0 {
			paths = annotator.DefaultFontPaths
		}
		face, source := annotator.LoadFace(paths, cfg.Grid.FontSize)
		log.Debug().Str("font", source).Msg("label font loaded")

		opts.Style = annotator.DefaultGridStyle(face)
		if opts.Style.LineColor, err = marker.ParseColor(cfg.Grid.LineColor); err != nil {
			return nil, err
		}
		if opts.Style.LabelColor, err = marker.ParseColor(cfg.Grid.LabelColor); err != nil {
			return nil, err
		}
	}
	return strategy.New(mode, opts)
}

// Mode reports which processing mode the Locator runs
func (l *Locator) Mode() types.Mode {
	return l.strategy.Mode()
}

// Locate runs the full pipeline on source, which may be a file path, an
// http(s) URL or "screen[:n]". Each step runs only if the previous one
// succeeded.
func (l *Locator) Locate(ctx context.Context, source string) (*Result, error) {
	img, err := l.processor.LoadAndResize(source, l.cfg.Grid.Width, l.cfg.Grid.Height)
	if err != nil {
		return nil, err
	}

	ann, err := l.strategy.Annotate(img)
	if err != nil {
		return nil, fmt.Errorf("failed to annotate image: %w", err)
	}

	encoded, err := l.processor.EncodePNG(ann.Model)
	if err != nil {
		return nil, err
	}

	log.Info().
		Str("mode", string(l.strategy.Mode())).
		Str("backend", l.cfg.Vision.Backend).
		Str("grid", fmt.Sprintf("%dx%d@%dpx", ann.Grid.Columns, ann.Grid.Rows, ann.Grid.CellSize)).
		Msg("querying vision model")

	resp, raw, err := l.detector.Detect(ctx, l.strategy.Prompt(ann.Grid), encoded)
	if err != nil {
		if raw != "" {
			log.Debug().Str("raw", raw).Msg("unparseable model reply")
		}
		return nil, err
	}

	markers, err := l.renderer.Render(ann.Base, resp, ann.Grid)
	if err != nil {
		return nil, err
	}
	log.Debug().Int("markers", len(markers)).Msg("markers drawn")

	return &Result{
		Mode:     l.strategy.Mode(),
		Grid:     ann.Grid,
		Response: resp,
		Markers:  markers,
		Image:    ann.Base,
		Raw:      raw,
	}, nil
}

// Exit statuses returned by ExitCode
const (
	ExitOK                = 0
	ExitFailure           = 1
	ExitImageLoad         = 2
	ExitMissingCredential = 3
	ExitRemoteService     = 4
	ExitMalformedResponse = 5
	ExitInvalidCoordinate = 6
)

// ExitCode maps a Locate error to a process exit status
func ExitCode(err error) int {
	if err == nil {
		return ExitOK
	}

	var (
		loadErr   *types.ImageLoadError
		credErr   *types.MissingCredentialError
		remoteErr *types.RemoteServiceError
		parseErr  *types.MalformedResponseError
		coordErr  *types.InvalidCoordinateError
	)
	switch {
	case errors.As(err, &loadErr):
		return ExitImageLoad
	case errors.As(err, &credErr):
		return ExitMissingCredential
	case errors.As(err, &remoteErr):
		return ExitRemoteService
	case errors.As(err, &parseErr):
		return ExitMalformedResponse
	case errors.As(err, &coordErr):
		return ExitInvalidCoordinate
	}
	return ExitFailure
}

// IsEmpty reports whether a multi-element reply listed no elements
func IsEmpty(resp types.Response) bool {
	multi, ok := resp.(*types.MultiElement)
	return ok && len(multi.Elements) == 0
}

// NoElementsMessage follows the JSON when a multi-element reply is empty
const NoElementsMessage = "No elements found in the API response."

// WriteReport prints the parsed reply as indented JSON, followed by
// NoElementsMessage when the reply listed no elements
func WriteReport(w io.Writer, resp types.Response) error {
	js, err := types.MarshalIndent(resp)
	if err != nil {
		return err
	}
	if _, err := fmt.Fprintln(w, string(js)); err != nil {
		return err
	}
	if IsEmpty(resp) {
		_, err = fmt.Fprintln(w, NoElementsMessage)
	}
	return err
}

// GetVersion returns the library version
func GetVersion() string {
	return Version
}

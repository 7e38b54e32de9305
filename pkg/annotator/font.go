package annotator

import (
	"fmt"
	"os"

	"github.com/rs/zerolog/log"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/font/opentype"
)

// DefaultFontPaths are tried in order before the embedded fallbacks
var DefaultFontPaths = []string{
	"/usr/share/fonts/truetype/dejavu/DejaVuSans-Bold.ttf",
	"/usr/share/fonts/TTF/DejaVuSans-Bold.ttf",
	"/Library/Fonts/Arial Bold.ttf",
	"/System/Library/Fonts/Supplemental/Arial Bold.ttf",
	`C:\Windows\Fonts\arialbd.ttf`,
}

// DefaultFontSize in points at 72 DPI, i.e. pixels
const DefaultFontSize = 16

// Font sources reported by LoadFace
const (
	SourceEmbedded = "embedded:goregular"
	SourceBitmap   = "embedded:basicfont"
)

// LoadFace returns the first usable face: a TrueType/OpenType file from
// paths, then the embedded Go Regular font, then the 7x13 bitmap font.
// The second return value names where the face came from.
func LoadFace(paths []string, size float64) (font.Face, string) {
	if size <= 0 {
		size = DefaultFontSize
	}
	for _, p := range paths {
		data, err := os.ReadFile(p)
		if err != nil {
			continue
		}
		face, err := parseFace(data, size)
		if err != nil {
			log.Debug().Err(err).Str("path", p).Msg("skipping font")
			continue
		}
		return face, p
	}

	if face, err := parseFace(goregular.TTF, size); err == nil {
		return face, SourceEmbedded
	}
	return basicfont.Face7x13, SourceBitmap
}

func parseFace(data []byte, size float64) (font.Face, error) {
	f, err := opentype.Parse(data)
	if err != nil {
		return nil, fmt.Errorf("parse font: %w", err)
	}
	return opentype.NewFace(f, &opentype.FaceOptions{
		Size:    size,
		DPI:     72,
		Hinting: font.HintingFull,
	})
}

package processing

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"image"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/chai2010/webp"
	"github.com/disintegration/imaging"
	"github.com/dustin/go-humanize"
	"github.com/go-resty/resty/v2"
	"github.com/rs/zerolog/log"
	_ "golang.org/x/image/webp"

	"github.com/menta2k/grid-locator/internal/utils"
	"github.com/menta2k/grid-locator/pkg/capture"
	"github.com/menta2k/grid-locator/pkg/types"
)

// Target resolution every source image is resized to (XGA)
const (
	TargetWidth  = 1024
	TargetHeight = 768
)

const screenSource = "screen"

// Processor handles image loading, encoding and saving
type Processor struct {
	http *resty.Client
}

// NewProcessor creates a new image processor
func NewProcessor() *Processor {
	return &Processor{
		http: resty.New().
			SetTimeout(30*time.Second).
			SetHeader("User-Agent", "grid-locator/1.0"),
	}
}

// LoadImageFromURL downloads and decodes an image
func (p *Processor) LoadImageFromURL(imageURL string) (image.Image, error) {
	if !utils.IsURL(imageURL) {
		return nil, fmt.Errorf("unsupported URL %q (only http and https are supported)", imageURL)
	}

	resp, err := p.http.R().Get(imageURL)
	if err != nil {
		return nil, fmt.Errorf("failed to download image: %w", err)
	}
	if resp.IsError() {
		return nil, fmt.Errorf("failed to download image: HTTP %s", resp.Status())
	}

	contentType := resp.Header().Get("Content-Type")
	if !strings.HasPrefix(contentType, "image/") {
		return nil, fmt.Errorf("URL does not point to an image (Content-Type: %s)", contentType)
	}

	return p.decodeImageFromBytes(resp.Body())
}

// LoadImage loads an image from a file path with WebP support
func (p *Processor) LoadImage(path string) (image.Image, error) {
	// imaging.Open reads the whole file and closes it before returning
	img, err := imaging.Open(path)
	if err == nil {
		return img, nil
	}
	if !utils.FileExists(path) {
		return nil, err
	}

	data, readErr := os.ReadFile(path)
	if readErr != nil {
		return nil, readErr
	}
	if utils.GetFileExtension(path) == "webp" {
		if img, err := webp.Decode(bytes.NewReader(data)); err == nil {
			return img, nil
		}
	}
	return nil, err
}

// LoadImageSmart loads an image from a URL, the screen ("screen" or
// "screen:<display>"), or a file path
func (p *Processor) LoadImageSmart(source string) (image.Image, error) {
	switch {
	case utils.IsURL(source):
		return p.LoadImageFromURL(source)
	case source == screenSource || strings.HasPrefix(source, screenSource+":"):
		display := 0
		if rest, ok := strings.CutPrefix(source, screenSource+":"); ok {
			n, err := strconv.Atoi(rest)
			if err != nil {
				return nil, fmt.Errorf("invalid display index %q", rest)
			}
			display = n
		}
		return capture.Display(display)
	}
	return p.LoadImage(source)
}

// decodeImageFromBytes decodes an image from byte data with WebP support
func (p *Processor) decodeImageFromBytes(data []byte) (image.Image, error) {
	if img, err := imaging.Decode(bytes.NewReader(data)); err == nil {
		return img, nil
	}
	if img, err := webp.Decode(bytes.NewReader(data)); err == nil {
		return img, nil
	}
	return nil, fmt.Errorf("image: unknown or unsupported format")
}

// Resize scales img to exactly width x height, ignoring the source aspect ratio
func (p *Processor) Resize(img image.Image, width, height int) *image.NRGBA {
	return imaging.Resize(img, width, height, imaging.Lanczos)
}

// LoadAndResize loads source and resizes it to width x height.
// Every failure is reported as *types.ImageLoadError.
func (p *Processor) LoadAndResize(source string, width, height int) (*image.NRGBA, error) {
	img, err := p.LoadImageSmart(source)
	if err != nil {
		return nil, &types.ImageLoadError{Source: source, Err: err}
	}
	b := img.Bounds()
	if b.Empty() {
		return nil, &types.ImageLoadError{Source: source, Err: fmt.Errorf("image has no pixels")}
	}
	log.Debug().
		Str("source", source).
		Int("width", b.Dx()).
		Int("height", b.Dy()).
		Msg("image loaded")
	return p.Resize(img, width, height), nil
}

// EncodePNG serializes img as PNG and base64-encodes it for a JSON payload
func (p *Processor) EncodePNG(img image.Image) (types.EncodedImage, error) {
	var buf bytes.Buffer
	if err := imaging.Encode(&buf, img, imaging.PNG); err != nil {
		return types.EncodedImage{}, fmt.Errorf("failed to encode png: %w", err)
	}
	log.Debug().Str("size", humanize.Bytes(uint64(buf.Len()))).Msg("image encoded")
	return types.EncodedImage{
		MediaType: "image/png",
		Data:      base64.StdEncoding.EncodeToString(buf.Bytes()),
	}, nil
}

// SaveImage saves an image to a file with the specified format and quality
func (p *Processor) SaveImage(img image.Image, path, format string, quality int, lossless bool) error {
	switch strings.ToLower(format) {
	case "webp":
		f, err := os.Create(path)
		if err != nil {
			return err
		}
		defer f.Close()
		opts := &webp.Options{Lossless: lossless, Quality: float32(quality)}
		return webp.Encode(f, img, opts)
	case "png":
		return imaging.Save(img, path)
	default: // jpg/jpeg
		return imaging.Save(img, path, imaging.JPEGQuality(quality))
	}
}

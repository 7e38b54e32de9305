// Package capture grabs screenshots of the active displays.
package capture

import (
	"fmt"
	"image"

	"github.com/kbinani/screenshot"
)

// Display captures the whole of the given display (0 is the primary)
func Display(index int) (*image.RGBA, error) {
	n := screenshot.NumActiveDisplays()
	if n == 0 {
		return nil, fmt.Errorf("no active displays found")
	}
	if index < 0 || index >= n {
		return nil, fmt.Errorf("display %d out of range (%d active)", index, n)
	}
	img, err := screenshot.CaptureDisplay(index)
	if err != nil {
		return nil, fmt.Errorf("failed to capture display %d: %w", index, err)
	}
	return img, nil
}

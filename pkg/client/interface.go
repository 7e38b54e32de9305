package client

import (
	"context"

	"github.com/menta2k/grid-locator/pkg/types"
)

// VisionClient sends one image and one instruction to a vision model and
// returns the model's text reply. Transport and API failures are reported
// as *types.RemoteServiceError.
type VisionClient interface {
	Query(ctx context.Context, prompt string, img types.EncodedImage) (string, error)
}

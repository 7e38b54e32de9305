package detection

import (
	"context"

	"github.com/rs/zerolog/log"

	"github.com/menta2k/grid-locator/pkg/client"
	"github.com/menta2k/grid-locator/pkg/types"
)

// Detector asks a vision model where things are on a gridded image
type Detector struct {
	client client.VisionClient
}

// NewDetector creates a new detector with a vision client
func NewDetector(client client.VisionClient) *Detector {
	return &Detector{client: client}
}

// Detect sends the image and prompt to the model and parses its reply.
// The raw reply text is returned alongside the parsed response, and also
// when parsing fails.
func (d *Detector) Detect(ctx context.Context, prompt string, img types.EncodedImage) (types.Response, string, error) {
	raw, err := d.client.Query(ctx, prompt, img)
	if err != nil {
		return nil, "", err
	}
	log.Debug().Int("chars", len(raw)).Msg("model replied")

	resp, err := ParseResponse(raw)
	if err != nil {
		return nil, raw, err
	}
	return resp, raw, nil
}

package detection

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/menta2k/grid-locator/pkg/grid"
	"github.com/menta2k/grid-locator/pkg/types"
)

type fakeClient struct {
	reply  string
	err    error
	prompt string
	img    types.EncodedImage
}

func (f *fakeClient) Query(_ context.Context, prompt string, img types.EncodedImage) (string, error) {
	f.prompt = prompt
	f.img = img
	return f.reply, f.err
}

func TestDetect(t *testing.T) {
	fc := &fakeClient{reply: `{"grid_location": "B2", "description": "button"}`}
	d := NewDetector(fc)
	img := types.EncodedImage{MediaType: "image/png", Data: "aGk="}

	resp, raw, err := d.Detect(context.Background(), "find the button", img)
	require.NoError(t, err)
	assert.Equal(t, &types.SingleTarget{GridLocation: "B2", Description: "button"}, resp)
	assert.Equal(t, fc.reply, raw)
	assert.Equal(t, "find the button", fc.prompt)
	assert.Equal(t, img, fc.img)
}

func TestDetectClientError(t *testing.T) {
	remote := &types.RemoteServiceError{Backend: "fake", StatusCode: 500, Err: errors.New("boom")}
	d := NewDetector(&fakeClient{err: remote})

	_, _, err := d.Detect(context.Background(), "p", types.EncodedImage{})
	assert.Same(t, remote, err)
}

func TestDetectMalformedKeepsRaw(t *testing.T) {
	d := NewDetector(&fakeClient{reply: "sorry, no idea"})

	resp, raw, err := d.Detect(context.Background(), "p", types.EncodedImage{})
	assert.Nil(t, resp)
	assert.Equal(t, "sorry, no idea", raw)
	var malformed *types.MalformedResponseError
	assert.ErrorAs(t, err, &malformed)
}

func TestMultiElementPrompt(t *testing.T) {
	g, err := grid.NewSpec(1024, 768, 50)
	require.NoError(t, err)

	prompt := MultiElementPrompt(g)
	assert.Contains(t, prompt, "20 columns (A-T)")
	assert.Contains(t, prompt, "15 rows (1-15)")
	assert.Contains(t, prompt, "50x50 pixels")
	assert.Contains(t, prompt, `"elements"`)
	assert.Contains(t, prompt, `"grid_locations"`)
	assert.Contains(t, prompt, "5 most interesting")
	assert.NotContains(t, prompt, "\t")
}

func TestSingleTargetPrompt(t *testing.T) {
	g, err := grid.NewSpec(1024, 768, 75)
	require.NoError(t, err)

	prompt := SingleTargetPrompt(g, "search box")
	assert.Contains(t, prompt, "13 columns labelled A-M")
	assert.Contains(t, prompt, "10 rows labelled 1-10")
	assert.Contains(t, prompt, "75x75 pixels")
	assert.Contains(t, prompt, "Find the search box")
	assert.Contains(t, prompt, `"grid_location"`)
}

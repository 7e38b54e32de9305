// Package gemini queries Google Gemini vision models.
package gemini

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"strings"
	"time"

	"google.golang.org/genai"

	"github.com/menta2k/grid-locator/pkg/types"
)

const backendName = "gemini"

// Defaults for the Gemini API
const (
	DefaultModel = "gemini-2.5-flash"
	APIKeyEnv    = "GEMINI_API_KEY"
)

// Options configures a Client
type Options struct {
	APIKey    string
	Model     string
	MaxTokens int
	// BaseURL overrides the API endpoint, mainly for proxies
	BaseURL string
	Timeout time.Duration
	KeyEnv  string
}

// Client sends generate-content requests to Gemini
type Client struct {
	client *genai.Client
	opts   Options
}

// NewClient creates a Gemini API client. A missing API key is a
// *types.MissingCredentialError.
func NewClient(ctx context.Context, opts Options) (*Client, error) {
	if opts.KeyEnv == "" {
		opts.KeyEnv = APIKeyEnv
	}
	if strings.TrimSpace(opts.APIKey) == "" {
		return nil, &types.MissingCredentialError{Backend: backendName, EnvVar: opts.KeyEnv}
	}
	if opts.Model == "" {
		opts.Model = DefaultModel
	}

	cfg := &genai.ClientConfig{
		APIKey:  opts.APIKey,
		Backend: genai.BackendGeminiAPI,
	}
	if opts.BaseURL != "" {
		cfg.HTTPOptions.BaseURL = opts.BaseURL
	}

	client, err := genai.NewClient(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("create gemini client: %w", err)
	}
	return &Client{client: client, opts: opts}, nil
}

// Query sends the prompt and image and returns the JSON text reply
func (c *Client) Query(ctx context.Context, prompt string, img types.EncodedImage) (string, error) {
	if c.opts.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.opts.Timeout)
		defer cancel()
	}

	data, err := base64.StdEncoding.DecodeString(img.Data)
	if err != nil {
		return "", fmt.Errorf("failed to decode base64 image: %w", err)
	}

	config := &genai.GenerateContentConfig{
		Temperature:      genai.Ptr(float32(0.1)),
		ResponseMIMEType: "application/json",
	}
	if c.opts.MaxTokens > 0 {
		config.MaxOutputTokens = int32(c.opts.MaxTokens)
	}

	resp, err := c.client.Models.GenerateContent(ctx, c.opts.Model,
		[]*genai.Content{{
			Role: "user",
			Parts: []*genai.Part{
				{InlineData: &genai.Blob{MIMEType: img.MediaType, Data: data}},
				{Text: prompt},
			},
		}},
		config,
	)
	if err != nil {
		remote := &types.RemoteServiceError{Backend: backendName, Err: err}
		var apiErr genai.APIError
		if errors.As(err, &apiErr) {
			remote.StatusCode = apiErr.Code
		}
		return "", remote
	}

	text := resp.Text()
	if text == "" {
		return "", &types.RemoteServiceError{Backend: backendName, Err: errors.New("empty gemini response")}
	}
	return text, nil
}

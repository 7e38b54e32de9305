// Package anthropic is a minimal client for the Anthropic Messages API.
package anthropic

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/rs/zerolog/log"

	"github.com/menta2k/grid-locator/pkg/types"
)

const backendName = "anthropic"

// Defaults matching the computer-use beta this tool was built against
const (
	DefaultBaseURL   = "https://api.anthropic.com"
	DefaultVersion   = "2023-06-01"
	DefaultModel     = "claude-3-5-sonnet-20241022"
	DefaultMaxTokens = 1000
	DefaultBeta      = "computer-use-2024-10-22"
	APIKeyEnv        = "CLAUDE_API_KEY"
)

// Options configures a Client
type Options struct {
	APIKey    string
	BaseURL   string
	Version   string
	Model     string
	MaxTokens int
	Betas     []string
	// Timeout of zero leaves requests bounded only by the context
	Timeout time.Duration
	// KeyEnv names the variable the key should come from, for error messages
	KeyEnv string
}

type imageSource struct {
	Type      string `json:"type"`
	MediaType string `json:"media_type"`
	Data      string `json:"data"`
}

type contentBlock struct {
	Type   string       `json:"type"`
	Text   string       `json:"text,omitempty"`
	Source *imageSource `json:"source,omitempty"`
}

type message struct {
	Role    string         `json:"role"`
	Content []contentBlock `json:"content"`
}

type messagesRequest struct {
	Model     string    `json:"model"`
	MaxTokens int       `json:"max_tokens"`
	Messages  []message `json:"messages"`
}

type messagesResponse struct {
	ID         string         `json:"id"`
	Model      string         `json:"model"`
	StopReason string         `json:"stop_reason"`
	Content    []contentBlock `json:"content"`
	Usage      struct {
		InputTokens  int `json:"input_tokens"`
		OutputTokens int `json:"output_tokens"`
	} `json:"usage"`
}

type errorResponse struct {
	Type  string `json:"type"`
	Error struct {
		Type    string `json:"type"`
		Message string `json:"message"`
	} `json:"error"`
}

// Client talks to the Messages endpoint
type Client struct {
	http *resty.Client
	opts Options
}

// NewClient creates a client. A missing API key is a
// *types.MissingCredentialError.
func NewClient(opts Options) (*Client, error) {
	if opts.KeyEnv == "" {
		opts.KeyEnv = APIKeyEnv
	}
	if strings.TrimSpace(opts.APIKey) == "" {
		return nil, &types.MissingCredentialError{Backend: backendName, EnvVar: opts.KeyEnv}
	}
	if opts.BaseURL == "" {
		opts.BaseURL = DefaultBaseURL
	}
	if opts.Version == "" {
		opts.Version = DefaultVersion
	}
	if opts.Model == "" {
		opts.Model = DefaultModel
	}
	if opts.MaxTokens <= 0 {
		opts.MaxTokens = DefaultMaxTokens
	}

	rc := resty.New().
		SetBaseURL(strings.TrimSuffix(opts.BaseURL, "/")).
		SetHeader("x-api-key", opts.APIKey).
		SetHeader("anthropic-version", opts.Version).
		SetHeader("Content-Type", "application/json").
		SetRetryCount(0)
	if len(opts.Betas) > 0 {
		rc.SetHeader("anthropic-beta", strings.Join(opts.Betas, ","))
	}
	if opts.Timeout > 0 {
		rc.SetTimeout(opts.Timeout)
	}

	return &Client{http: rc, opts: opts}, nil
}

// Query sends the image followed by the prompt as one user message and
// returns the first text block of the reply
func (c *Client) Query(ctx context.Context, prompt string, img types.EncodedImage) (string, error) {
	req := messagesRequest{
		Model:     c.opts.Model,
		MaxTokens: c.opts.MaxTokens,
		Messages: []message{{
			Role: "user",
			Content: []contentBlock{
				{
					Type: "image",
					Source: &imageSource{
						Type:      "base64",
						MediaType: img.MediaType,
						Data:      img.Data,
					},
				},
				{Type: "text", Text: prompt},
			},
		}},
	}

	var out messagesResponse
	var apiErr errorResponse
	resp, err := c.http.R().
		SetContext(ctx).
		SetBody(req).
		SetResult(&out).
		SetError(&apiErr).
		Post("/v1/messages")
	if err != nil {
		return "", &types.RemoteServiceError{Backend: backendName, Err: err}
	}
	if resp.IsError() {
		msg := apiErr.Error.Message
		if msg == "" {
			msg = strings.TrimSpace(resp.String())
		}
		return "", &types.RemoteServiceError{
			Backend:    backendName,
			StatusCode: resp.StatusCode(),
			Err:        fmt.Errorf("%s: %s", apiErr.Error.Type, msg),
		}
	}

	log.Debug().
		Str("model", out.Model).
		Str("stop_reason", out.StopReason).
		Int("input_tokens", out.Usage.InputTokens).
		Int("output_tokens", out.Usage.OutputTokens).
		Msg("anthropic response")

	for _, block := range out.Content {
		if block.Type == "text" {
			return block.Text, nil
		}
	}
	return "", &types.RemoteServiceError{
		Backend:    backendName,
		StatusCode: resp.StatusCode(),
		Err:        errors.New("no text content in response"),
	}
}

// Package llamacpp talks to a llama.cpp server (or any other
// OpenAI-compatible chat completions endpoint).
package llamacpp

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

const backendName = "llamacpp"

// DefaultURL is where llama-server listens by default
const DefaultURL = "http://localhost:8080"

type Client struct {
	http      *resty.Client
	model     string
	maxTokens int
}

// chat completions wire format

type chatMessage struct {
	Role string `json:"role"`
	// a string, or a list of contentPart on requests
	Content any `json:"content"`
}

type contentPart struct {
	Type     string    `json:"type"`
	Text     string    `json:"text,omitempty"`
	ImageURL *imageURL `json:"image_url,omitempty"`
}

type imageURL struct {
	URL string `json:"url"`
}

type chatRequest struct {
	Model          string          `json:"model"`
	Messages       []chatMessage   `json:"messages"`
	Temperature    float64         `json:"temperature,omitempty"`
	MaxTokens      int             `json:"max_tokens,omitempty"`
	ResponseFormat *responseFormat `json:"response_format,omitempty"`
	Stream         bool            `json:"stream"`
}

type responseFormat struct {
	Type string `json:"type"`
}

type chatResponse struct {
	Model   string `json:"model"`
	Choices []struct {
		Message      chatMessage `json:"message"`
		FinishReason string      `json:"finish_reason"`
	} `json:"choices"`
	Usage struct {
		PromptTokens     int `json:"prompt_tokens"`
		CompletionTokens int `json:"completion_tokens"`
	} `json:"usage"`
}

type errorResponse struct {
	Error struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

// Options configures a Client
type Options struct {
	URL       string
	Model     string
	APIKey    string // optional bearer token
	MaxTokens int
	Timeout   time.Duration
}

func NewClient(opts Options) (*Client, error) {
	if opts.URL == "" {
		opts.URL = DefaultURL
	}
	if opts.MaxTokens <= 0 {
		opts.MaxTokens = 1000
	}

	rc := resty.New().
		SetBaseURL(strings.TrimSuffix(opts.URL, "/")).
		SetHeader("Content-Type", "application/json")
	if opts.APIKey != "" {
		rc.SetAuthToken(opts.APIKey)
	}
	if opts.Timeout > 0 {
		rc.SetTimeout(opts.Timeout)
	}

	return &Client{http: rc, model: opts.Model, maxTokens: opts.MaxTokens}, nil
}

// Query sends the prompt and the image as a data URL and returns the
// assistant text
func (c *Client) Query(ctx context.Context, prompt string, img types.EncodedImage) (string, error) {
	mediaType := img.MediaType
	if mediaType == "" {
		mediaType = "image/png"
	}

	req := chatRequest{
		Model: c.model,
		Messages: []chatMessage{
			{
				Role: "user",
				Content: []contentPart{
					{
						Type:     "image_url",
						ImageURL: &imageURL{URL: "data:" + mediaType + ";base64," + img.Data},
					},
					{Type: "text", Text: prompt},
				},
			},
		},
		Temperature:    0.1,
		MaxTokens:      c.maxTokens,
		ResponseFormat: &responseFormat{Type: "json_object"},
		Stream:         false,
	}

	var out chatResponse
	var apiErr errorResponse
	resp, err := c.http.R().
		SetContext(ctx).
		SetBody(req).
		SetResult(&out).
		SetError(&apiErr).
		Post("/v1/chat/completions")
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
			Err:        fmt.Errorf("server returned status %d: %s", resp.StatusCode(), msg),
		}
	}

	if len(out.Choices) == 0 {
		return "", &types.RemoteServiceError{Backend: backendName, Err: errors.New("no choices in response")}
	}

	log.Debug().
		Str("model", out.Model).
		Str("finish", out.Choices[0].FinishReason).
		Int("prompt_tokens", out.Usage.PromptTokens).
		Int("completion_tokens", out.Usage.CompletionTokens).
		Msg("llamacpp reply")

	// Content may be a plain string or an array of parts
	switch content := out.Choices[0].Message.Content.(type) {
	case string:
		if content != "" {
			return content, nil
		}
	case []any:
		for _, item := range content {
			if partMap, ok := item.(map[string]any); ok {
				if text, ok := partMap["text"].(string); ok && text != "" {
					return text, nil
				}
			}
		}
	}

	return "", &types.RemoteServiceError{Backend: backendName, Err: errors.New("no text content in response")}
}

package client

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/menta2k/grid-locator/internal/config"
	"github.com/menta2k/grid-locator/pkg/anthropic"
	"github.com/menta2k/grid-locator/pkg/gemini"
	"github.com/menta2k/grid-locator/pkg/llamacpp"
	"github.com/menta2k/grid-locator/pkg/ollama"
	"github.com/menta2k/grid-locator/pkg/types"
)

func TestNewSelectsBackend(t *testing.T) {
	tests := []struct {
		backend string
		setup   func(*config.Config)
		check   func(t *testing.T, c VisionClient)
	}{
		{config.BackendAnthropic, func(c *config.Config) { c.Vision.AnthropicKey = "k" }, func(t *testing.T, c VisionClient) {
			assert.IsType(t, &anthropic.Client{}, c)
		}},
		{config.BackendOllama, nil, func(t *testing.T, c VisionClient) {
			assert.IsType(t, &ollama.Client{}, c)
		}},
		{config.BackendGemini, func(c *config.Config) { c.Vision.GeminiKey = "k" }, func(t *testing.T, c VisionClient) {
			assert.IsType(t, &gemini.Client{}, c)
		}},
		{config.BackendLlamaCpp, nil, func(t *testing.T, c VisionClient) {
			assert.IsType(t, &llamacpp.Client{}, c)
		}},
	}

	for _, tt := range tests {
		t.Run(tt.backend, func(t *testing.T) {
			cfg := config.Default()
			cfg.Vision.Backend = tt.backend
			if tt.setup != nil {
				tt.setup(cfg)
			}
			c, err := New(context.Background(), cfg)
			require.NoError(t, err)
			tt.check(t, c)
		})
	}
}

func TestNewGeminiUsesConfiguredURL(t *testing.T) {
	var hits int
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits++
		assert.True(t, strings.HasSuffix(r.URL.Path, "/models/gemini-test:generateContent"), r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"candidates": [{"content": {"role": "model", "parts": [{"text": "{}"}]}}]}`))
	}))
	defer srv.Close()

	cfg := config.Default()
	cfg.Vision.Backend = config.BackendGemini
	cfg.Vision.Model = "gemini-test"
	cfg.Vision.GeminiKey = "k"
	cfg.Vision.GeminiURL = srv.URL

	c, err := New(context.Background(), cfg)
	require.NoError(t, err)

	text, err := c.Query(context.Background(), "p", types.EncodedImage{MediaType: "image/png", Data: "aGVsbG8="})
	require.NoError(t, err)
	assert.Equal(t, "{}", text)
	assert.Equal(t, 1, hits)
}

func TestNewMissingCredential(t *testing.T) {
	for _, backend := range []string{config.BackendAnthropic, config.BackendGemini} {
		cfg := config.Default()
		cfg.Vision.Backend = backend
		_, err := New(context.Background(), cfg)
		var credErr *types.MissingCredentialError
		assert.ErrorAs(t, err, &credErr, backend)
	}
}

func TestNewUnknownBackend(t *testing.T) {
	cfg := config.Default()
	cfg.Vision.Backend = "openai"
	_, err := New(context.Background(), cfg)
	assert.ErrorContains(t, err, "unknown vision backend")
}

package client

import (
	"context"
	"fmt"

	"github.com/rs/zerolog/log"

	"github.com/menta2k/grid-locator/internal/config"
	"github.com/menta2k/grid-locator/pkg/anthropic"
	"github.com/menta2k/grid-locator/pkg/gemini"
	"github.com/menta2k/grid-locator/pkg/llamacpp"
	"github.com/menta2k/grid-locator/pkg/ollama"
)

// New builds the VisionClient selected by cfg.Vision.Backend. Backends that
// need an API key fail here with *types.MissingCredentialError.
func New(ctx context.Context, cfg *config.Config) (VisionClient, error) {
	v := cfg.Vision
	log.Debug().Str("backend", v.Backend).Str("model", v.Model).Msg("creating vision client")

	var (
		c   VisionClient
		err error
	)
	switch v.Backend {
	case config.BackendAnthropic, "":
		c, err = wrap(anthropic.NewClient(anthropic.Options{
			APIKey:    v.AnthropicKey,
			KeyEnv:    v.AnthropicKeyEnv,
			BaseURL:   v.AnthropicURL,
			Version:   v.AnthropicVersion,
			Model:     v.Model,
			MaxTokens: v.MaxTokens,
			Betas:     v.AnthropicBetas,
			Timeout:   cfg.Timeout(),
		}))
	case config.BackendOllama:
		c, err = wrap(ollama.NewClient(v.OllamaURL, v.Model, cfg.Timeout()))
	case config.BackendGemini:
		c, err = wrap(gemini.NewClient(ctx, gemini.Options{
			APIKey:    v.GeminiKey,
			KeyEnv:    v.GeminiKeyEnv,
			BaseURL:   v.GeminiURL,
			Model:     v.Model,
			MaxTokens: v.MaxTokens,
			Timeout:   cfg.Timeout(),
		}))
	case config.BackendLlamaCpp:
		c, err = wrap(llamacpp.NewClient(llamacpp.Options{
			URL:       v.LlamaCppURL,
			Model:     v.Model,
			APIKey:    v.LlamaCppKey,
			MaxTokens: v.MaxTokens,
			Timeout:   cfg.Timeout(),
		}))
	default:
		return nil, fmt.Errorf("unknown vision backend %q", v.Backend)
	}
	if err != nil {
		return nil, err
	}
	return c, nil
}

// wrap keeps a failed constructor from yielding a non-nil interface
// holding a nil pointer
func wrap[T VisionClient](c T, err error) (VisionClient, error) {
	if err != nil {
		return nil, err
	}
	return c, nil
}

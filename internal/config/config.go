package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"github.com/menta2k/grid-locator/pkg/marker"
	"github.com/menta2k/grid-locator/pkg/types"
)

// Supported vision backends
const (
	BackendAnthropic = "anthropic"
	BackendOllama    = "ollama"
	BackendGemini    = "gemini"
	BackendLlamaCpp  = "llamacpp"
)

// Config holds the application configuration
type Config struct {
	Vision VisionConfig `json:"vision"`
	Grid   GridConfig   `json:"grid"`
	Marker MarkerConfig `json:"marker"`
	Output OutputConfig `json:"output"`
}

// VisionConfig selects and configures the vision backend
type VisionConfig struct {
	Backend        string `json:"backend"`
	Model          string `json:"model"`
	MaxTokens      int    `json:"max_tokens"`
	TimeoutSeconds int    `json:"timeout_seconds"`

	AnthropicURL     string   `json:"anthropic_url"`
	AnthropicVersion string   `json:"anthropic_version"`
	AnthropicBetas   []string `json:"anthropic_betas"`
	OllamaURL        string   `json:"ollama_url"`
	LlamaCppURL      string   `json:"llamacpp_url"`
	// GeminiURL overrides the Gemini API endpoint, empty means Google's
	GeminiURL string `json:"gemini_url"`

	// Credentials only ever come from the environment
	AnthropicKey    string `json:"-"`
	AnthropicKeyEnv string `json:"-"`
	GeminiKey       string `json:"-"`
	GeminiKeyEnv    string `json:"-"`
	LlamaCppKey     string `json:"-"`
}

// GridConfig holds the processing mode and grid geometry
type GridConfig struct {
	Mode       string   `json:"mode"`
	Target     string   `json:"target"`
	Width      int      `json:"width"`
	Height     int      `json:"height"`
	PaddedCell int      `json:"padded_cell_size"`
	Padding    int      `json:"padding"`
	DrawnCell  int      `json:"drawn_cell_size"`
	FontPaths  []string `json:"font_paths"`
	FontSize   float64  `json:"font_size"`
	LineColor  string   `json:"line_color"`
	LabelColor string   `json:"label_color"`
}

// MarkerConfig holds the marker drawing style
type MarkerConfig struct {
	Color       string `json:"color"`
	StrokeWidth int    `json:"stroke_width"`
	Padding     int    `json:"padding"`
	Radius      int    `json:"radius"`
}

// OutputConfig holds configuration for output generation
type OutputConfig struct {
	DefaultFormat string `json:"default_format"`
	OutputDir     string `json:"output_dir"`
	Prefix        string `json:"prefix"`
	Suffix        string `json:"suffix"`
	Quality       int    `json:"quality"`
}

// Default returns a configuration with default values
func Default() *Config {
	return &Config{
		Vision: VisionConfig{
			Backend:          BackendAnthropic,
			MaxTokens:        1000,
			AnthropicURL:     "https://api.anthropic.com",
			AnthropicVersion: "2023-06-01",
			AnthropicBetas:   []string{"computer-use-2024-10-22"},
			OllamaURL:        "http://localhost:11434",
			LlamaCppURL:      "http://localhost:8080",
			AnthropicKeyEnv:  "CLAUDE_API_KEY",
			GeminiKeyEnv:     "GEMINI_API_KEY",
		},
		Grid: GridConfig{
			Mode:       string(types.ModePadded),
			Target:     "the most prominent button",
			Width:      1024,
			Height:     768,
			PaddedCell: 50,
			Padding:    100,
			DrawnCell:  75,
			FontSize:   16,
			LineColor:  "#000000",
			LabelColor: "#FF0000",
		},
		Marker: MarkerConfig{
			Color:       "#FF0000",
			StrokeWidth: 3,
			Padding:     50,
			Radius:      40,
		},
		Output: OutputConfig{
			DefaultFormat: "png",
			OutputDir:     "./output",
			Prefix:        "",
			Suffix:        "_located",
			Quality:       90,
		},
	}
}

// LoadFromFile loads configuration from a JSON file. Fields missing from the
// file keep their default values.
func LoadFromFile(filename string) (*Config, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	config := Default()
	if err := json.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	return config, nil
}

// SaveToFile saves configuration to a JSON file
func (c *Config) SaveToFile(filename string) error {
	// Create directory if it doesn't exist
	dir := filepath.Dir(filename)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(filename, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// LoadOptions controls where Load looks for settings
type LoadOptions struct {
	// ConfigFile is an optional JSON file; empty skips it
	ConfigFile string
	// EnvFile is an optional dotenv file; a missing file is ignored
	EnvFile string
}

// Load builds the configuration from defaults, then the JSON file, then the
// dotenv file and finally the process environment.
func Load(opts LoadOptions) (*Config, error) {
	cfg := Default()
	if opts.ConfigFile != "" {
		loaded, err := LoadFromFile(opts.ConfigFile)
		if err != nil {
			return nil, err
		}
		cfg = loaded
	}

	if opts.EnvFile != "" {
		// godotenv never overrides variables that are already set
		if err := godotenv.Load(opts.EnvFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("failed to load env file: %w", err)
		}
	}

	cfg.applyEnv()
	return cfg, nil
}

func (c *Config) applyEnv() {
	if v := os.Getenv("GRID_LOCATOR_BACKEND"); v != "" {
		c.Vision.Backend = strings.ToLower(v)
	}
	if v := os.Getenv("GRID_LOCATOR_MODEL"); v != "" {
		c.Vision.Model = v
	}
	if v := os.Getenv("GRID_LOCATOR_MODE"); v != "" {
		c.Grid.Mode = strings.ToLower(v)
	}
	if v := os.Getenv("GRID_LOCATOR_TARGET"); v != "" {
		c.Grid.Target = v
	}
	if v := os.Getenv("OLLAMA_HOST"); v != "" {
		if !strings.Contains(v, "://") {
			v = "http://" + v
		}
		c.Vision.OllamaURL = v
	}
	if v := os.Getenv("GEMINI_BASE_URL"); v != "" {
		c.Vision.GeminiURL = v
	}
	if v := os.Getenv("LLAMACPP_URL"); v != "" {
		c.Vision.LlamaCppURL = v
	}
	c.Vision.LlamaCppKey = os.Getenv("LLAMACPP_API_KEY")

	c.Vision.AnthropicKey, c.Vision.AnthropicKeyEnv = firstEnv("CLAUDE_API_KEY", "ANTHROPIC_API_KEY")
	c.Vision.GeminiKey, c.Vision.GeminiKeyEnv = firstEnv("GEMINI_API_KEY", "GOOGLE_API_KEY")
}

// firstEnv returns the first non-empty variable among names. When none is
// set it reports the first name so error messages point at it.
func firstEnv(names ...string) (string, string) {
	for _, name := range names {
		if v := strings.TrimSpace(os.Getenv(name)); v != "" {
			return v, name
		}
	}
	return "", names[0]
}

// Timeout returns the configured request timeout, zero meaning none
func (c *Config) Timeout() time.Duration {
	return time.Duration(c.Vision.TimeoutSeconds) * time.Second
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	switch c.Vision.Backend {
	case BackendAnthropic, BackendOllama, BackendGemini, BackendLlamaCpp:
	default:
		return fmt.Errorf("vision.backend %q is not supported", c.Vision.Backend)
	}

	if c.Vision.MaxTokens < 1 {
		return fmt.Errorf("vision.max_tokens must be positive")
	}

	if c.Vision.TimeoutSeconds < 0 {
		return fmt.Errorf("vision.timeout_seconds cannot be negative")
	}

	if _, err := types.ParseMode(c.Grid.Mode); err != nil {
		return fmt.Errorf("grid.mode: %w", err)
	}

	if c.Grid.Width < 1 || c.Grid.Height < 1 {
		return fmt.Errorf("grid.width and grid.height must be positive")
	}

	if c.Grid.PaddedCell < 1 || c.Grid.DrawnCell < 1 {
		return fmt.Errorf("grid cell sizes must be positive")
	}

	if c.Grid.Padding < 0 {
		return fmt.Errorf("grid.padding cannot be negative")
	}

	if strings.TrimSpace(c.Grid.Target) == "" {
		return fmt.Errorf("grid.target cannot be empty")
	}

	for name, hex := range map[string]string{
		"grid.line_color":  c.Grid.LineColor,
		"grid.label_color": c.Grid.LabelColor,
		"marker.color":     c.Marker.Color,
	} {
		if _, err := marker.ParseColor(hex); err != nil {
			return fmt.Errorf("%s: %w", name, err)
		}
	}

	if c.Marker.StrokeWidth < 1 {
		return fmt.Errorf("marker.stroke_width must be positive")
	}

	if c.Marker.Padding < 0 || c.Marker.Radius < 1 {
		return fmt.Errorf("marker.padding cannot be negative and marker.radius must be positive")
	}

	switch strings.ToLower(c.Output.DefaultFormat) {
	case "png", "jpg", "jpeg", "webp":
	default:
		return fmt.Errorf("output.default_format %q is not supported", c.Output.DefaultFormat)
	}

	if c.Output.Quality < 1 || c.Output.Quality > 100 {
		return fmt.Errorf("output.quality must be between 1 and 100")
	}

	return nil
}

// MarkerStyle converts the marker section into a renderer style
func (c *Config) MarkerStyle() (marker.Style, error) {
	col, err := marker.ParseColor(c.Marker.Color)
	if err != nil {
		return marker.Style{}, err
	}
	return marker.Style{
		Color:       col,
		StrokeWidth: c.Marker.StrokeWidth,
		Padding:     c.Marker.Padding,
		Radius:      c.Marker.Radius,
	}, nil
}

// GetConfigPath returns the default configuration file path
func GetConfigPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "./config.json"
	}
	return filepath.Join(home, ".config", "grid-locator", "config.json")
}

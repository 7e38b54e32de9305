package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	gridlocator "github.com/menta2k/grid-locator"
	"github.com/menta2k/grid-locator/internal/config"
	"github.com/menta2k/grid-locator/internal/utils"
	"github.com/menta2k/grid-locator/pkg/processing"
	"github.com/menta2k/grid-locator/pkg/viewer"
)

// options holds the parsed command line
type options struct {
	in, configPath, envFile string
	backend, model, mode    string
	target, outDir, format  string
	timeout                 int
	noShow, noSave          bool
	debug, writeConfig      bool
	set                     map[string]bool
}

func parseFlags(args []string) (*options, error) {
	o := &options{set: map[string]bool{}}
	fs := flag.NewFlagSet("grid-locator", flag.ContinueOnError)

	fs.StringVar(&o.in, "in", "test_image.jpg", "input image path, URL, or screen[:n]")
	fs.StringVar(&o.configPath, "config", "", "JSON config file (default "+config.GetConfigPath()+" if present)")
	fs.StringVar(&o.envFile, "env", ".env", "dotenv file with API keys (ignored if missing)")

	fs.StringVar(&o.backend, "backend", "", "vision backend: anthropic|ollama|gemini|llamacpp")
	fs.StringVar(&o.model, "model", "", "model name (backend default if empty)")
	fs.StringVar(&o.mode, "mode", "", "processing mode: padded|drawn")
	fs.StringVar(&o.target, "target", "", "what to find in drawn mode")
	fs.IntVar(&o.timeout, "timeout", 0, "request timeout in seconds, 0=none")

	fs.StringVar(&o.outDir, "out", "", "output directory for the marked image")
	fs.StringVar(&o.format, "format", "", "output format: png|jpg|webp")
	fs.BoolVar(&o.noSave, "nosave", false, "do not write the marked image")
	fs.BoolVar(&o.noShow, "noshow", false, "do not open a window with the marked image (headless hosts)")

	fs.BoolVar(&o.debug, "debug", false, "verbose logging")
	fs.BoolVar(&o.writeConfig, "write-config", false, "write the effective config to -config (or the default path) and exit")

	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	fs.Visit(func(f *flag.Flag) { o.set[f.Name] = true })
	return o, nil
}

// apply copies explicitly set flags over cfg, so they win over file and
// environment
func (o *options) apply(cfg *config.Config) {
	if o.set["backend"] {
		cfg.Vision.Backend = strings.ToLower(o.backend)
	}
	if o.set["model"] {
		cfg.Vision.Model = o.model
	}
	if o.set["mode"] {
		cfg.Grid.Mode = strings.ToLower(o.mode)
	}
	if o.set["target"] {
		cfg.Grid.Target = o.target
	}
	if o.set["timeout"] {
		cfg.Vision.TimeoutSeconds = o.timeout
	}
	if o.set["out"] {
		cfg.Output.OutputDir = o.outDir
	}
	if o.set["format"] {
		cfg.Output.DefaultFormat = strings.ToLower(o.format)
	}
}

func main() {
	o, err := parseFlags(os.Args[1:])
	if err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return
		}
		os.Exit(gridlocator.ExitFailure)
	}

	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})
	zerolog.SetGlobalLevel(zerolog.InfoLevel)
	if o.debug {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	}

	configPath := o.configPath
	if configPath == "" && utils.FileExists(config.GetConfigPath()) {
		configPath = config.GetConfigPath()
	}

	cfg, err := config.Load(config.LoadOptions{ConfigFile: configPath, EnvFile: o.envFile})
	if err != nil {
		fail(err)
	}

	o.apply(cfg)

	if o.writeConfig {
		path := configPath
		if path == "" {
			path = config.GetConfigPath()
		}
		if err := cfg.SaveToFile(path); err != nil {
			fail(err)
		}
		log.Info().Str("path", path).Msg("config written")
		return
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	locator, err := gridlocator.New(ctx, cfg)
	if err != nil {
		fail(err)
	}

	result, err := locator.Locate(ctx, o.in)
	if err != nil {
		fail(err)
	}

	if err := gridlocator.WriteReport(os.Stdout, result.Response); err != nil {
		fail(err)
	}

	for _, m := range result.Markers {
		log.Debug().
			Str("description", m.Description).
			Float64("cx", m.CenterX).
			Float64("cy", m.CenterY).
			Float64("rx", m.RadiusX).
			Float64("ry", m.RadiusY).
			Msg("marker")
	}

	if !o.noSave {
		if err := utils.EnsureDir(cfg.Output.OutputDir); err != nil {
			fail(err)
		}
		ext := strings.ToLower(cfg.Output.DefaultFormat)
		outPath := utils.GenerateOutputFilename(o.in, cfg.Output.OutputDir, cfg.Output.Prefix, cfg.Output.Suffix, ext)
		if err := processing.NewProcessor().SaveImage(result.Image, outPath, ext, cfg.Output.Quality, false); err != nil {
			log.Error().Err(err).Str("path", outPath).Msg("save failed")
		} else {
			log.Info().Str("path", outPath).Int("markers", len(result.Markers)).Msg("wrote marked image")
		}
	}

	if !o.noShow {
		viewer.Show(fmt.Sprintf("grid-locator: %s", filepath.Base(o.in)), result.Image)
	}
}

// fail prints err the way users expect and exits with its mapped status
func fail(err error) {
	fmt.Fprintf(os.Stderr, "An error occurred: %v\n", err)
	os.Exit(gridlocator.ExitCode(err))
}

// Package commands implements the audioqc CLI commands.
package commands

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/rohxnreddy/UX-Tradeoffs-App/cmd/audioqc/internal/config"
	"github.com/rohxnreddy/UX-Tradeoffs-App/pkg/codec/pipeline"
	"github.com/rohxnreddy/UX-Tradeoffs-App/pkg/scratch"
	"github.com/rohxnreddy/UX-Tradeoffs-App/pkg/score/pesq"
)

var (
	// Global flags
	configPath string
	verbose    bool

	// Loaded at init time
	globalConfig *config.Config
)

var rootCmd = &cobra.Command{
	Use:   "audioqc",
	Short: "Objective audio quality scoring for telephony paths",
	Long: `audioqc - objective audio quality scoring.

Compares a reference recording against degraded audio and reports
PEAQ-like ODG estimates and PESQ scores, including real Opus and
G.711 codec round trips driven through ffmpeg.

ODG scores are log-spectral-distance approximations, indicative
rather than ITU-standard; results say so in their field names and
descriptions.

Configuration (optional) lives in a YAML file:
  macOS:   ~/Library/Application Support/audioqc/config.yaml
  Linux:   ~/.config/audioqc/config.yaml

Examples:
  audioqc odg -r ref.wav -d degraded.wav
  audioqc odg -r ref.wav -d degraded.wav -n roomnoise.wav
  audioqc call -r ref.wav
  audioqc call -r ref.wav --recording phone.wav
  audioqc simulate -r ref.wav`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "config file path")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
}

// configLoadErr stores the error from config.Load() for deferred
// reporting, so commands like 'audioqc version' still run without a
// readable config.
var configLoadErr error

func initConfig() {
	level := slog.LevelWarn
	if verbose {
		level = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))

	cfg, err := config.Load(configPath)
	if err != nil {
		configLoadErr = err
		return
	}
	globalConfig = cfg
}

// getConfig returns the loaded configuration.
func getConfig() (*config.Config, error) {
	if globalConfig == nil {
		if configLoadErr != nil {
			return nil, fmt.Errorf("config not available: %w", configLoadErr)
		}
		cfg, err := config.Load(configPath)
		if err != nil {
			return nil, fmt.Errorf("config not available: %w", err)
		}
		globalConfig = cfg
	}
	return globalConfig, nil
}

// buildPipeline constructs the codec pipeline from the configuration.
func buildPipeline(cfg *config.Config) *pipeline.Pipeline {
	return pipeline.New(
		pipeline.WithFFmpeg(cfg.FFmpeg),
		pipeline.WithTimeout(cfg.StageTimeout()),
		pipeline.WithArena(scratch.New(cfg.ScratchDir)),
	)
}

// buildScorer resolves the external perceptual scorer capability.
// Returns nil when no scorer is configured or the binary is missing.
func buildScorer(cfg *config.Config) pesq.Scorer {
	if cfg.PESQCommand == "" {
		return nil
	}
	s := pesq.NewCommandScorer(cfg.PESQCommand, scratch.New(cfg.ScratchDir))
	if !s.Available() {
		slog.Warn("perceptual scorer binary not found", "command", cfg.PESQCommand)
		return nil
	}
	return s
}

// printJSON writes v to stdout as indented JSON.
func printJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	return enc.Encode(v)
}

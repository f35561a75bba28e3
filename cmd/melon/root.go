package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/hashicorp/go-hclog"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/ewilliams-labs/melon/internal/config"
)

var (
	cfgFile string
	verbose bool
)

var rootCmd = &cobra.Command{
	Use:   "melon",
	Short: "Artist and track metadata resolver",
	Long: `melon reconciles Genius, Spotify and Tunebat into one durable store
of artists, tracks, audio features and lyrics. Use "serve" for the HTTP API
or one of the lookup commands for one-shot JSON output.`,
	SilenceUsage: true,
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (YAML); MELON_* environment variables override it")
	rootCmd.PersistentFlags().BoolVar(&verbose, "verbose", false, "debug logging")
}

// loadConfig reads and validates the configuration and builds the root logger.
func loadConfig() (config.Config, hclog.Logger, error) {
	cfg, err := config.Load(viper.New(), cfgFile)
	if err != nil {
		return config.Config{}, nil, err
	}
	if verbose {
		cfg.Log.Level = "debug"
	}

	logger := newLogger(cfg.Log, os.Stderr)
	if err := cfg.Validate(); err != nil {
		return config.Config{}, nil, err
	}
	return cfg, logger, nil
}

func newLogger(cfg config.LogConfig, out io.Writer) hclog.Logger {
	level := hclog.LevelFromString(cfg.Level)
	if level == hclog.NoLevel {
		level = hclog.Info
	}
	return hclog.New(&hclog.LoggerOptions{
		Name:       "melon",
		Level:      level,
		Output:     out,
		JSONFormat: cfg.JSON,
	})
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("encode output: %w", err)
	}
	return nil
}

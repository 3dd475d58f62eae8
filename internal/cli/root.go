// Package cli wires the trailscript commands.
package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/baxromumarov/trailscript/internal/config"
	"github.com/baxromumarov/trailscript/internal/observability"
	"github.com/baxromumarov/trailscript/internal/scraper"
)

var (
	cfgPath   string
	verbose   bool
	logFormat string
)

var rootCmd = &cobra.Command{
	Use:           "trailscript",
	Short:         "trailscript exports game script dialogue from trailsinthedatabase.com.",
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
		if err := setupLogging(cmd.ErrOrStderr()); err != nil {
			return err
		}
		observability.Reset()
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgPath, "config", "", "TOML config file (default ./"+config.DefaultFile+" when present)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Log every entry found or missed")
	rootCmd.PersistentFlags().StringVar(&logFormat, "log-format", "text", "Log format: text or json")
}

func setupLogging(w io.Writer) error {
	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}
	opts := &slog.HandlerOptions{Level: level}

	var handler slog.Handler
	switch strings.ToLower(logFormat) {
	case "text", "":
		handler = slog.NewTextHandler(w, opts)
	case "json":
		handler = slog.NewJSONHandler(w, opts)
	default:
		return fmt.Errorf("%w: unknown log format %q", config.ErrInvalidConfig, logFormat)
	}
	slog.SetDefault(slog.New(handler))
	return nil
}

// ExecuteContext runs the command line and exits non-zero on failure.
func ExecuteContext(ctx context.Context) {
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, describe(err))
		os.Exit(1)
	}
}

// describe turns terminal failures into the message shown to the operator.
func describe(err error) string {
	switch {
	case errors.Is(err, scraper.ErrNoEntries):
		return "No entries found. Exiting."
	case errors.Is(err, context.Canceled):
		return "Interrupted."
	default:
		return "Error: " + err.Error()
	}
}

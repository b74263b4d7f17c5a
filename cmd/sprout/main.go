package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/vango-dev/sprout"
	"github.com/vango-dev/sprout/internal/config"
	"github.com/vango-dev/sprout/internal/errors"
)

// Version information set at build time.
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

const banner = `
  ┌─┐┌─┐┬─┐┌─┐┬ ┬┌┬┐
  └─┐├─┘├┬┘│ ││ │ │
  └─┘┴  ┴└─└─┘└─┘ ┴
`

// globalFlags are shared by every command.
type globalFlags struct {
	configPath string
	logLevel   string
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		errors.Fprint(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	flags := &globalFlags{}
	rootCmd := &cobra.Command{
		Use:   "sprout",
		Short: "Reactive state to incremental tree updates",
		Long: `Sprout turns reactive state changes into minimal tree updates.

Replay keyed-list scenarios against an in-memory host, measure the
keyed diff, or serve a live devtools view of a replay.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	rootCmd.PersistentFlags().StringVarP(&flags.configPath, "config", "c", "", "Path to sprout.json or sprout.toml")
	rootCmd.PersistentFlags().StringVar(&flags.logLevel, "log-level", "", "Override log.level (debug, info, warn, error)")

	rootCmd.AddCommand(
		versionCmd(),
		replayCmd(flags),
		benchCmd(flags),
		serveCmd(flags),
	)
	return rootCmd
}

// loadConfig reads the config named by --config, or sprout.json /
// sprout.toml from the working directory, or falls back to defaults.
func loadConfig(flags *globalFlags) (*config.Config, error) {
	var (
		cfg *config.Config
		err error
	)
	if flags.configPath != "" {
		cfg, err = config.LoadFile(flags.configPath)
	} else {
		cfg, err = config.Load(".")
		if errors.Code(err) == "E123" {
			cfg, err = config.New(), nil
		}
	}
	if err != nil {
		return nil, err
	}
	if flags.logLevel != "" {
		cfg.Log.Level = flags.logLevel
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// setupLogger installs the configured logger as the default.
func setupLogger(cfg *config.Config, w io.Writer) *slog.Logger {
	logger := sprout.NewLogger(cfg.Log, w)
	slog.SetDefault(logger)
	return logger
}

// printBanner prints the ASCII art banner.
func printBanner(w io.Writer) {
	fmt.Fprint(w, banner)
}

// success prints a success message.
func success(w io.Writer, format string, args ...any) {
	fmt.Fprintf(w, "\033[32m✓\033[0m %s\n", fmt.Sprintf(format, args...))
}

// info prints an info message.
func info(w io.Writer, format string, args ...any) {
	fmt.Fprintf(w, "  %s\n", fmt.Sprintf(format, args...))
}

// warn prints a warning message.
func warn(w io.Writer, format string, args ...any) {
	fmt.Fprintf(w, "\033[33m⚠\033[0m %s\n", fmt.Sprintf(format, args...))
}

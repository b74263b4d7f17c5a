package main

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/vango-dev/sprout/internal/archive"
	"github.com/vango-dev/sprout/internal/errors"
	"github.com/vango-dev/sprout/internal/scenario"
)

func replayCmd(flags *globalFlags) *cobra.Command {
	var (
		asJSON bool
		store  bool
	)

	cmd := &cobra.Command{
		Use:   "replay <scenario.yaml>",
		Short: "Replay a scenario and print its host-op trace",
		Long: `Replay a keyed-list scenario against the in-memory host.

Each step is applied to reactive state and flushed; the host operations
the flush produced are printed per step. Steps with an expect block are
checked and the command fails when any expectation is missed.

Examples:
  sprout replay rotate.yaml
  sprout replay rotate.yaml --json
  sprout replay rotate.yaml --archive`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) != 1 {
				return errors.New("E160").
					WithDetail("replay needs exactly one scenario file").
					WithSuggestion("sprout replay path/to/scenario.yaml")
			}
			cfg, err := loadConfig(flags)
			if err != nil {
				return err
			}
			logger := setupLogger(cfg, cmd.ErrOrStderr())

			sc, err := scenario.Load(args[0])
			if err != nil {
				return err
			}
			trace := scenario.Play(sc, scenario.WithLogger(logger))

			w := cmd.OutOrStdout()
			if asJSON {
				data, err := trace.JSON()
				if err != nil {
					return err
				}
				fmt.Fprintln(w, string(data))
			} else {
				fmt.Fprint(w, trace.Text())
			}

			if store {
				data, err := trace.JSON()
				if err != nil {
					return err
				}
				st, err := archive.Open(cfg.Archive, baseDir(cfg.Path()))
				if err != nil {
					return err
				}
				id, err := st.Put(cmd.Context(), data)
				if err != nil {
					return err
				}
				success(cmd.ErrOrStderr(), "trace archived as %s", id)
			}

			if trace.Failed() {
				return errors.Newf(errors.CategoryScenario, "scenario %s missed its expectations", sc.Name)
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "Print the trace as JSON")
	cmd.Flags().BoolVar(&store, "archive", false, "Store the trace in the configured archive")

	return cmd
}

// baseDir resolves relative archive paths against the config file's
// directory, or the working directory without one.
func baseDir(configPath string) string {
	if configPath == "" {
		return "."
	}
	return filepath.Dir(configPath)
}

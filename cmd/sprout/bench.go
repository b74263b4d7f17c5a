package main

import (
	"fmt"
	"io"
	"math/rand"
	"sort"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"

	"github.com/vango-dev/sprout/internal/errors"
	"github.com/vango-dev/sprout/internal/scenario"
	"github.com/vango-dev/sprout/pkg/telemetry"
)

func benchCmd(flags *globalFlags) *cobra.Command {
	var (
		rows       int
		iterations int
		seed       int64
	)

	cmd := &cobra.Command{
		Use:   "bench",
		Short: "Measure the keyed diff on random permutations",
		Long: `Shuffle a keyed list repeatedly and report throughput and moves.

Every shuffle is a pure permutation, so the fewest possible moves is the
row count minus the longest run of rows that kept their relative order.
The benchmark checks the renderer never moves more than that.

Examples:
  sprout bench
  sprout bench --rows=1000 --iterations=50 --seed=7`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if rows <= 0 || iterations <= 0 {
				return errors.New("E160").WithDetail("--rows and --iterations must be positive")
			}
			cfg, err := loadConfig(flags)
			if err != nil {
				return err
			}
			logger := setupLogger(cfg, cmd.ErrOrStderr())

			reg := prometheus.NewRegistry()
			metrics := telemetry.NewMetrics(
				telemetry.WithNamespace(cfg.Metrics.Namespace),
				telemetry.WithRegistry(reg),
			)

			sc := shuffleScenario(rows, iterations, rand.New(rand.NewSource(seed)))
			p := scenario.NewPlayer(sc,
				scenario.WithLogger(logger),
				scenario.WithSchedulerHooks(metrics.SchedulerHooks()),
				scenario.WithRendererHooks(metrics.RendererHooks()),
			)
			p.Mount()

			res := benchResult{rows: rows, iterations: iterations}
			prev := sc.Initial
			start := time.Now()
			for _, step := range sc.Steps {
				st, _ := p.Step()
				res.ops += len(st.Ops)
				res.moves += st.Moves
				res.minimal += len(prev) - stableRun(prev, step.Set)
				prev = step.Set
			}
			res.elapsed = time.Since(start)
			res.flushes, res.flushTime = flushStats(reg, cfg.Metrics.Namespace)

			res.print(cmd.OutOrStdout())
			if res.moves > res.minimal {
				return errors.Newf(errors.CategoryScenario,
					"keyed diff issued %d moves, %d would do", res.moves, res.minimal)
			}
			success(cmd.OutOrStdout(), "moves are minimal")
			return nil
		},
	}

	cmd.Flags().IntVarP(&rows, "rows", "n", 100, "Rows in the list")
	cmd.Flags().IntVarP(&iterations, "iterations", "i", 200, "Shuffles to apply")
	cmd.Flags().Int64Var(&seed, "seed", 1, "Random seed")

	return cmd
}

type benchResult struct {
	rows, iterations int
	ops, moves       int
	minimal          int
	flushes          uint64
	flushTime        time.Duration
	elapsed          time.Duration
}

func (r benchResult) print(w io.Writer) {
	perStep := r.elapsed / time.Duration(r.iterations)
	fmt.Fprintf(w, "  Rows:        %d\n", r.rows)
	fmt.Fprintf(w, "  Shuffles:    %d\n", r.iterations)
	fmt.Fprintf(w, "  Host ops:    %d\n", r.ops)
	fmt.Fprintf(w, "  Moves:       %d (minimal %d)\n", r.moves, r.minimal)
	fmt.Fprintf(w, "  Flushes:     %d in %s\n", r.flushes, r.flushTime)
	fmt.Fprintf(w, "  Wall time:   %s (%s per shuffle)\n", r.elapsed, perStep)
}

// shuffleScenario builds a list of rows keys shuffled iterations times.
func shuffleScenario(rows, iterations int, rng *rand.Rand) *scenario.Scenario {
	keys := make([]string, rows)
	for i := range keys {
		keys[i] = fmt.Sprintf("k%d", i)
	}
	sc := &scenario.Scenario{
		Name:      "bench",
		Container: scenario.DefaultContainer,
		Item:      scenario.DefaultItem,
		Initial:   keys,
	}
	order := keys
	for i := 0; i < iterations; i++ {
		next := make([]string, rows)
		for j, k := range rng.Perm(rows) {
			next[j] = order[k]
		}
		sc.Steps = append(sc.Steps, scenario.Step{Name: fmt.Sprintf("shuffle %d", i+1), Set: next})
		order = next
	}
	return sc
}

// stableRun returns the length of the longest subsequence of next whose
// rows appear in the same relative order in prev.
func stableRun(prev, next []string) int {
	pos := make(map[string]int, len(prev))
	for i, k := range prev {
		pos[k] = i
	}
	var tails []int
	for _, k := range next {
		p, ok := pos[k]
		if !ok {
			continue
		}
		i := sort.SearchInts(tails, p)
		if i == len(tails) {
			tails = append(tails, p)
		} else {
			tails[i] = p
		}
	}
	return len(tails)
}

// flushStats reads the flush duration histogram back from reg.
func flushStats(reg *prometheus.Registry, namespace string) (uint64, time.Duration) {
	families, err := reg.Gather()
	if err != nil {
		return 0, 0
	}
	name := namespace + "_flush_duration_seconds"
	for _, mf := range families {
		if mf.GetName() != name || len(mf.GetMetric()) == 0 {
			continue
		}
		h := mf.GetMetric()[0].GetHistogram()
		return h.GetSampleCount(), time.Duration(h.GetSampleSum() * float64(time.Second))
	}
	return 0, 0
}

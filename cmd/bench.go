package cmd

import (
	"fmt"
	"io"
	"math/rand"
	"time"

	"github.com/fatih/color"
	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"

	"github.com/olivierh59500/neuralsearch/internal/field"
)

var (
	flagBenchFrames  int
	flagBenchCount   int
	flagBenchNoLimit bool
)

var benchCmd = &cobra.Command{
	Use:   "bench",
	Short: "Step the particle field headless and report frame cost per index",
	Args:  cobra.NoArgs,
	RunE:  runBench,
}

func init() {
	benchCmd.Flags().IntVar(&flagBenchFrames, "frames", 600, "Frames to step per index")
	benchCmd.Flags().IntVar(&flagBenchCount, "count", 0, "Override the particle count (capacity grows to match)")
	benchCmd.Flags().BoolVar(&flagBenchNoLimit, "no-limit", false, "Disable the per-particle connection cap")
	rootCmd.AddCommand(benchCmd)
}

// benchResult is one row of the report
type benchResult struct {
	Index       field.IndexKind
	Frames      int
	Total       time.Duration
	Connections int // Last frame
	Peak        int
	Mean        float64
}

// PerFrame is the mean wall time of one step
func (r benchResult) PerFrame() time.Duration {
	if r.Frames == 0 {
		return 0
	}
	return r.Total / time.Duration(r.Frames)
}

// benchField steps a fresh field per index kind from the same seed
func benchField(cfg field.Config, seed int64, frames int, kinds []field.IndexKind) ([]benchResult, error) {
	if frames <= 0 {
		return nil, fmt.Errorf("frames must be positive, got %d", frames)
	}
	results := make([]benchResult, 0, len(kinds))
	for _, kind := range kinds {
		cfg.Index = kind
		f, err := field.New(cfg, rand.New(rand.NewSource(seed)))
		if err != nil {
			return nil, err
		}
		var sum int
		start := time.Now()
		for i := 0; i < frames; i++ {
			sum += f.Step(field.ReferenceFrame).Connections
		}
		total := time.Since(start)
		st := f.Stats()
		f.Dispose()

		results = append(results, benchResult{
			Index:       kind,
			Frames:      frames,
			Total:       total,
			Connections: st.Connections,
			Peak:        st.PeakConnections,
			Mean:        float64(sum) / float64(frames),
		})
	}
	return results, nil
}

// renderBench writes the report table
func renderBench(w io.Writer, cfg field.Config, results []benchResult) error {
	title := color.New(color.FgHiMagenta, color.Bold, color.Underline)
	fmt.Fprintln(w, title.Sprintf("Particle field: %d particles, min distance %.0f, limit %v (%d)",
		cfg.Count, cfg.MinDistance, cfg.LimitConnections, cfg.MaxConnections))

	table := tablewriter.NewWriter(w)
	if err := table.Append([]string{"Index", "Frames", "Per frame", "FPS budget", "Mean conn", "Peak conn"}); err != nil {
		return fmt.Errorf("append header row: %w", err)
	}
	budget := field.ReferenceFrame
	for _, r := range results {
		per := r.PerFrame()
		verdict := color.New(color.FgHiGreen, color.Bold).Sprint("ok")
		if per > budget {
			verdict = color.New(color.FgHiRed, color.Bold).Sprint("over")
		}
		row := []string{
			color.New(color.FgHiBlue, color.Bold).Sprint(string(r.Index)),
			fmt.Sprint(r.Frames),
			per.String(),
			verdict,
			fmt.Sprintf("%.1f", r.Mean),
			fmt.Sprint(r.Peak),
		}
		if err := table.Append(row); err != nil {
			return fmt.Errorf("append row: %w", err)
		}
	}
	if err := table.Render(); err != nil {
		return fmt.Errorf("render table: %w", err)
	}
	return nil
}

func runBench(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	fc := cfg.Field
	if flagBenchCount > 0 {
		fc.Count = flagBenchCount
		fc.Capacity = max(fc.Capacity, flagBenchCount)
	}
	if flagBenchNoLimit {
		fc.LimitConnections = false
	}
	if err := fc.Validate(); err != nil {
		return err
	}

	seed := cfg.Seed
	if seed == 0 {
		seed = 1
	}
	results, err := benchField(fc, seed, flagBenchFrames, []field.IndexKind{field.IndexBrute, field.IndexGrid})
	if err != nil {
		return err
	}
	return renderBench(cmd.OutOrStdout(), fc, results)
}

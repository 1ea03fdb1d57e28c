package cli

import (
	"fmt"
	"io"
	"os"
	"sort"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"

	"github.com/javanhut/ivaldi-history/history"
	"github.com/javanhut/ivaldi-history/internal/colors"
	"github.com/javanhut/ivaldi-history/internal/config"
	"github.com/javanhut/ivaldi-history/metrics"
)

var rootCmd = &cobra.Command{
	Use:   "ivh",
	Short: "ivh is a branchable undo/redo history",
	Long: `ivh drives an in-memory, branchable version history from the terminal.

Recording after an undo never discards the undone states: they move to a new
branch rooted at the current entry. Nothing is written to disk.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.LoadConfig()
		if err != nil {
			return err
		}
		colors.SetColorEnabled(colors.IsColorEnabled() && cfg.ColorEnabled() && !noColor)
		return nil
	},
}

var (
	flagMaxEntries int
	flagDebounce   time.Duration
	flagCompress   bool
	flagNoCleanup  bool
	flagMetrics    bool
	noColor        bool
)

func Execute() {
	err := rootCmd.Execute()
	if err != nil {
		os.Exit(1)
	}
}

func init() {
	pf := rootCmd.PersistentFlags()
	pf.IntVar(&flagMaxEntries, "max-entries", 0, "Entries kept per branch (overrides history.max_entries)")
	pf.DurationVar(&flagDebounce, "debounce", 0, "Debounce quiet period (overrides history.debounce_delay)")
	pf.BoolVar(&flagCompress, "compress", false, "Store states zstd-compressed")
	pf.BoolVar(&flagNoCleanup, "no-cleanup", false, "Never evict old entries")
	pf.BoolVar(&flagMetrics, "metrics", false, "Print collected metrics on exit")
	pf.BoolVar(&noColor, "no-color", false, "Disable colored output")

	rootCmd.AddCommand(demoCmd)
	rootCmd.AddCommand(replCmd)
	rootCmd.AddCommand(watchCmd)
	rootCmd.AddCommand(configCmd)
}

// engineOptions merges config files and command line flags, flags last.
func engineOptions(cmd *cobra.Command) ([]history.Option, error) {
	cfg, err := config.LoadConfig()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	opts, err := cfg.EngineOptions()
	if err != nil {
		return nil, err
	}

	flags := cmd.Flags()
	if flags.Changed("max-entries") {
		opts = append(opts, history.WithMaxEntries(flagMaxEntries))
	}
	if flags.Changed("debounce") {
		opts = append(opts, history.WithDebounceDelay(flagDebounce))
	}
	if flags.Changed("compress") {
		opts = append(opts, history.WithCompression(flagCompress))
	}
	if flags.Changed("no-cleanup") {
		opts = append(opts, history.WithAutoCleanup(!flagNoCleanup))
	}
	return opts, nil
}

// openEngine builds the command's engine. The returned close function
// flushes pending records and prints metrics when --metrics is set.
func openEngine(cmd *cobra.Command) (*history.Engine[string], func(), error) {
	opts, err := engineOptions(cmd)
	if err != nil {
		return nil, nil, err
	}
	h := history.New[string](opts...)

	if !flagMetrics {
		return h, func() { h.Flush() }, nil
	}

	reg := prometheus.NewRegistry()
	collector := metrics.New(reg)
	detach := metrics.Attach(collector, h)
	return h, func() {
		h.Flush()
		detach()
		collector.Observe(h.Stats())
		if err := printMetrics(cmd.ErrOrStderr(), reg); err != nil {
			fmt.Fprintf(cmd.ErrOrStderr(), "Warning: failed to gather metrics: %v\n", err)
		}
	}, nil
}

func printMetrics(w io.Writer, reg *prometheus.Registry) error {
	families, err := reg.Gather()
	if err != nil {
		return err
	}

	fmt.Fprintln(w, colors.SectionHeader("Metrics:"))
	for _, mf := range families {
		for _, m := range mf.GetMetric() {
			var labels []string
			for _, lp := range m.GetLabel() {
				labels = append(labels, lp.GetName()+"="+lp.GetValue())
			}
			sort.Strings(labels)

			value := m.GetGauge().GetValue()
			if c := m.GetCounter(); c != nil {
				value = c.GetValue()
			}
			name := mf.GetName()
			if len(labels) > 0 {
				name += "{" + strings.Join(labels, ",") + "}"
			}
			fmt.Fprintf(w, "  %s %g\n", name, value)
		}
	}
	return nil
}

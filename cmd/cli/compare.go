package main

import (
	"fmt"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/spf13/cobra"

	"mining-dispatch/internal/analysis"
	"mining-dispatch/internal/logger"
	"mining-dispatch/internal/report"
)

var compareOpts struct {
	config   string
	data     string
	parallel int
	outDir   string
	market   bool
}

var compareCmd = &cobra.Command{
	Use:   "compare",
	Short: "Backtest every configured strategy on the same data and rank them by profit",
	RunE:  runCompare,
}

func init() {
	f := compareCmd.Flags()
	f.StringVar(&compareOpts.config, "config", "", "path to YAML config")
	f.StringVar(&compareOpts.data, "data", "", "market snapshot JSON (overrides the data section)")
	f.IntVar(&compareOpts.parallel, "parallel", runtime.NumCPU(), "max concurrent backtests (1 runs sequentially)")
	f.StringVar(&compareOpts.outDir, "out-dir", "", "write one ledger CSV per strategy into this directory")
	f.BoolVar(&compareOpts.market, "market-stats", false, "also print market statistics for the period")
}

func runCompare(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()
	r, err := prepare(ctx, compareOpts.config, compareOpts.data)
	if err != nil {
		return err
	}
	defer r.log.Sync()

	named, err := r.cfg.BuildStrategies(r.registry)
	if err != nil {
		return err
	}
	entries := make([]analysis.Entry, len(named))
	for i, n := range named {
		entries[i] = analysis.Entry{Name: n.Label, Strategy: n.Strategy}
	}

	var ranked []analysis.Ranked
	if compareOpts.parallel <= 1 {
		ranked, err = analysis.Compare(r.records, entries)
	} else {
		ranked, err = analysis.CompareParallel(ctx, r.records, entries, compareOpts.parallel)
	}
	if err != nil {
		return err
	}
	r.log.Info("comparison complete",
		logger.IntField("strategies", len(ranked)),
		logger.StringField("best", ranked[0].Name))

	out := cmd.OutOrStdout()
	if compareOpts.market {
		if err := report.WriteMarketStats(out, analysis.ComputeMarketStats(r.records, r.econ)); err != nil {
			return err
		}
		fmt.Fprintln(out)
	}
	if err := report.WriteComparison(out, ranked); err != nil {
		return err
	}

	if compareOpts.outDir == "" {
		return nil
	}
	for _, rk := range ranked {
		rk.Result.Strategy = rk.Name
		path := filepath.Join(compareOpts.outDir, fileSlug(rk.Name)+".csv")
		if err := r.writeArtifacts(ctx, rk.Result, path, ""); err != nil {
			return err
		}
	}
	return nil
}

func fileSlug(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	return strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			return r
		default:
			return '_'
		}
	}, s)
}

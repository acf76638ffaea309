package main

import (
	"github.com/spf13/cobra"

	"mining-dispatch/internal/backtest"
	"mining-dispatch/internal/logger"
	"mining-dispatch/internal/report"
)

var rollingOpts struct {
	config     string
	data       string
	strategy   string
	windowDays int
	stepDays   int
}

var rollingCmd = &cobra.Command{
	Use:   "rolling",
	Short: "Backtest one strategy over sliding windows to check its stability",
	RunE:  runRolling,
}

func init() {
	f := rollingCmd.Flags()
	f.StringVar(&rollingOpts.config, "config", "", "path to YAML config")
	f.StringVar(&rollingOpts.data, "data", "", "market snapshot JSON (overrides the data section)")
	f.StringVar(&rollingOpts.strategy, "strategy", "", "strategy label or registry key (default: first configured)")
	f.IntVar(&rollingOpts.windowDays, "window-days", 30, "window length in days")
	f.IntVar(&rollingOpts.stepDays, "step-days", 7, "days between window starts")
}

func runRolling(cmd *cobra.Command, _ []string) error {
	r, err := prepare(cmd.Context(), rollingOpts.config, rollingOpts.data)
	if err != nil {
		return err
	}
	defer r.log.Sync()

	named, err := r.pick(rollingOpts.strategy)
	if err != nil {
		return err
	}
	windows, err := backtest.New().Rolling(r.records, named.Strategy, rollingOpts.windowDays, rollingOpts.stepDays)
	if err != nil {
		return err
	}
	if len(windows) == 0 {
		r.log.Warn("no complete window fits the period",
			logger.IntField("window_days", rollingOpts.windowDays),
			logger.IntField("hours", len(r.records)))
	}
	return report.WriteRolling(cmd.OutOrStdout(), windows)
}

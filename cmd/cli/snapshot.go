package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"mining-dispatch/internal/data"
	"mining-dispatch/internal/logger"
)

var snapshotOpts struct {
	config string
	out    string
}

var snapshotCmd = &cobra.Command{
	Use:   "snapshot",
	Short: "Fetch and merge market data for the configured period and save it as JSON",
	Long: `Resolves the data section of the config (CSV files and/or the Hashrate Index
API), applies the gap policy, and writes the hourly series to a JSON snapshot
that later runs can load with --data.`,
	RunE: runSnapshot,
}

func init() {
	f := snapshotCmd.Flags()
	f.StringVar(&snapshotOpts.config, "config", "", "path to YAML config")
	f.StringVar(&snapshotOpts.out, "out", "market.json", "snapshot output path")
}

func runSnapshot(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig(snapshotOpts.config, "")
	if err != nil {
		return err
	}
	log, err := logger.New(cfg.Logger)
	if err != nil {
		return err
	}
	defer log.Sync()

	provider, err := cfg.NewProvider(log)
	if err != nil {
		return err
	}
	start, end, err := cfg.Period.Range()
	if err != nil {
		return err
	}
	records, err := provider.Fetch(cmd.Context(), start, end)
	if err != nil {
		return err
	}

	if dir := filepath.Dir(snapshotOpts.out); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return err
		}
	}
	if err := data.SaveMarketJSON(snapshotOpts.out, records); err != nil {
		return err
	}

	missing := 0
	for _, rec := range records {
		if !rec.HasMarketData() {
			missing++
		}
	}
	log.Info("snapshot saved",
		logger.StringField("path", snapshotOpts.out),
		logger.IntField("hours", len(records)),
		logger.IntField("missing_hours", missing))
	fmt.Fprintf(cmd.OutOrStdout(), "wrote %d hours to %s\n", len(records), snapshotOpts.out)
	return nil
}

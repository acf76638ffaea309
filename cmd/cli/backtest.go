package main

import (
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"mining-dispatch/internal/backtest"
	"mining-dispatch/internal/logger"
	"mining-dispatch/internal/report"
)

var backtestOpts struct {
	config   string
	data     string
	strategy string
	out      string
	parquet  string
	head     int
	risk     bool
}

var backtestCmd = &cobra.Command{
	Use:   "backtest",
	Short: "Run one dispatch strategy and write the hourly ledger",
	RunE:  runBacktest,
}

func init() {
	f := backtestCmd.Flags()
	f.StringVar(&backtestOpts.config, "config", "", "path to YAML config")
	f.StringVar(&backtestOpts.data, "data", "", "market snapshot JSON (overrides the data section)")
	f.StringVar(&backtestOpts.strategy, "strategy", "", "strategy label or registry key (default: first configured)")
	f.StringVar(&backtestOpts.out, "out", "", "ledger CSV path (default: output.csv from config)")
	f.StringVar(&backtestOpts.parquet, "parquet", "", "ledger parquet path (default: output.parquet from config)")
	f.IntVar(&backtestOpts.head, "n", 0, "print the first N ledger rows")
	f.BoolVar(&backtestOpts.risk, "risk", true, "include daily risk metrics")
}

func runBacktest(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()
	r, err := prepare(ctx, backtestOpts.config, backtestOpts.data)
	if err != nil {
		return err
	}
	defer r.log.Sync()

	named, err := r.pick(backtestOpts.strategy)
	if err != nil {
		return err
	}

	res, err := backtest.New().Backtest(r.records, named.Strategy)
	if err != nil {
		return err
	}
	res.Strategy = named.Label
	r.log.Info("backtest complete",
		logger.StringField("strategy", named.Label),
		logger.FloatField("total_profit", res.Summary.TotalProfit),
		logger.IntField("operating_hours", res.Summary.OperatingHours))

	var risk *backtest.RiskMetrics
	if backtestOpts.risk {
		m := backtest.Risk(res.Ledger)
		risk = &m
	}
	var roi *backtest.ROIMetrics
	if m, ok := backtest.ROI(res.Summary, r.cfg.Investment); ok {
		roi = &m
	}

	out := cmd.OutOrStdout()
	if err := report.WriteSummary(out, res, risk, roi); err != nil {
		return err
	}
	if backtestOpts.head > 0 {
		fmt.Fprintln(out)
		if err := writeHead(out, res.Ledger, backtestOpts.head); err != nil {
			return err
		}
	}

	csvPath := firstNonEmpty(backtestOpts.out, r.cfg.Output.CSV)
	parquetPath := firstNonEmpty(backtestOpts.parquet, r.cfg.Output.Parquet)
	return r.writeArtifacts(ctx, res, csvPath, parquetPath)
}

func writeHead(w io.Writer, ledger []backtest.LedgerRow, n int) error {
	if n > len(ledger) {
		n = len(ledger)
	}
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "timestamp\telec $/MWh\thashprice\tprofit\toperate\tcum profit")
	for _, row := range ledger[:n] {
		fmt.Fprintf(tw, "%s\t%.2f\t%.4f\t%s\t%t\t%s\n",
			row.Timestamp.UTC().Format("2006-01-02 15:04"),
			row.ElectricityPrice, row.Hashprice,
			report.Money(row.Profit), row.Operate, report.Money(row.CumProfit))
	}
	return tw.Flush()
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if v != "" {
			return v
		}
	}
	return ""
}

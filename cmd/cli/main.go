package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "cli",
	Short: "Backtest bitcoin mining dispatch strategies against historical prices",
	Long: `Evaluates hour by hour whether a mining facility should run, given hourly
electricity prices ($/MWh) and hashprice ($/TH/day), and ranks dispatch
strategies by realized profit.`,
	SilenceUsage: true,
}

func main() {
	// .env is optional; real environment variables win.
	_ = godotenv.Load()

	rootCmd.AddCommand(backtestCmd, compareCmd, rollingCmd, snapshotCmd)
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

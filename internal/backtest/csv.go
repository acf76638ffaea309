package backtest

import (
	"encoding/csv"
	"io"
	"os"
	"strconv"
	"time"
)

// LedgerColumns is the artifact's column set. The first seven columns are
// stable regardless of which strategy produced operate.
var LedgerColumns = []string{
	"timestamp",
	"electricity_price",
	"hashprice",
	"revenue",
	"cost",
	"profit",
	"operate",
	"cum_profit",
	"filled",
}

func WriteLedgerCSV(path string, ledger []LedgerRow) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	if err := WriteLedgerCSVTo(f, ledger); err != nil {
		return err
	}
	return f.Close()
}

func WriteLedgerCSVTo(out io.Writer, ledger []LedgerRow) error {
	w := csv.NewWriter(out)

	if err := w.Write(LedgerColumns); err != nil {
		return err
	}

	for _, r := range ledger {
		row := []string{
			fmtTime(r.Timestamp),
			fmtFloat(r.ElectricityPrice),
			fmtFloat(r.Hashprice),
			fmtFloat(r.Revenue),
			fmtFloat(r.Cost),
			fmtFloat(r.Profit),
			strconv.FormatBool(r.Operate),
			fmtFloat(r.CumProfit),
			strconv.FormatBool(r.Filled),
		}
		if err := w.Write(row); err != nil {
			return err
		}
	}

	w.Flush()
	return w.Error()
}

func fmtTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(time.RFC3339)
}

func fmtFloat(x float64) string {
	return strconv.FormatFloat(x, 'f', 6, 64)
}

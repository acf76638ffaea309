// Package report renders backtest results as plain-text tables for the CLI.
package report

import (
	"fmt"
	"io"
	"math"
	"strings"
	"text/tabwriter"

	"github.com/shopspring/decimal"

	"mining-dispatch/internal/analysis"
	"mining-dispatch/internal/backtest"
)

// Money formats v as US dollars rounded half away from zero to cents, with
// thousands separators: -1234.565 -> "-$1,234.57".
func Money(v float64) string {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return fmt.Sprint(v)
	}
	d := decimal.NewFromFloat(v).Round(2)
	sign := ""
	if d.IsNegative() {
		sign = "-"
		d = d.Abs()
	}
	fixed := d.StringFixed(2)
	whole, frac, _ := strings.Cut(fixed, ".")
	return sign + "$" + groupThousands(whole) + "." + frac
}

// Percent formats a 0..1 ratio as a percentage with one decimal.
func Percent(ratio float64) string {
	return decimal.NewFromFloat(ratio).Mul(decimal.NewFromInt(100)).StringFixed(1) + "%"
}

func groupThousands(digits string) string {
	if len(digits) <= 3 {
		return digits
	}
	var b strings.Builder
	lead := len(digits) % 3
	if lead > 0 {
		b.WriteString(digits[:lead])
	}
	for i := lead; i < len(digits); i += 3 {
		if b.Len() > 0 {
			b.WriteByte(',')
		}
		b.WriteString(digits[i : i+3])
	}
	return b.String()
}

func WriteSummary(w io.Writer, res *backtest.Result, risk *backtest.RiskMetrics, roi *backtest.ROIMetrics) error {
	s := res.Summary
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	rows := [][2]string{
		{"Strategy", res.Strategy},
		{"Period", fmt.Sprintf("%s .. %s", s.Start.UTC().Format("2006-01-02 15:04"), s.End.UTC().Format("2006-01-02 15:04"))},
		{"Total revenue", Money(s.TotalRevenue)},
		{"Total cost", Money(s.TotalCost)},
		{"Total profit", Money(s.TotalProfit)},
		{"Operating hours", fmt.Sprintf("%d / %d", s.OperatingHours, s.TotalHours)},
		{"Capacity factor", Percent(s.CapacityFactor)},
		{"Avg profit / operating hour", Money(s.AvgProfitPerOperatingHour)},
		{"Profit margin", Percent(s.ProfitMargin)},
		{"Profitable hours", fmt.Sprintf("%d (unprofitable %d)", s.ProfitableHours, s.UnprofitableHours)},
		{"Avg electricity price", Money(s.AvgElectricityPrice) + "/MWh"},
		{"Avg hashprice", fmt.Sprintf("$%.4f/TH/day", s.AvgHashprice)},
		{"Best month", s.BestMonthStart.Format("2006-01")},
		{"Worst month", s.WorstMonthStart.Format("2006-01")},
	}
	if s.FilledHours > 0 {
		rows = append(rows, [2]string{"Filled hours", fmt.Sprintf("%d", s.FilledHours)})
	}
	if risk != nil && risk.TotalDays > 0 {
		rows = append(rows,
			[2]string{"Daily profit volatility", Money(risk.ProfitVolatility)},
			[2]string{"Max daily loss / gain", Money(risk.MaxDailyLoss) + " / " + Money(risk.MaxDailyGain)},
			[2]string{"VaR 95% (daily)", Money(risk.VaR95)},
			[2]string{"Risk-adjusted return", fmt.Sprintf("%.3f", risk.RiskAdjustedReturn)},
			[2]string{"Negative days", fmt.Sprintf("%d / %d (%s)", risk.NegativeDays, risk.TotalDays, Percent(risk.DownsideProbability))},
		)
	}
	if roi != nil {
		payback := "never"
		if !math.IsInf(roi.PaybackPeriodYears, 1) {
			payback = fmt.Sprintf("%.2f years", roi.PaybackPeriodYears)
		}
		rows = append(rows,
			[2]string{"Investment", Money(roi.InitialInvestment)},
			[2]string{"ROI", fmt.Sprintf("%.2f%% (annualized %.2f%%)", roi.ROIPercentage, roi.AnnualizedROI)},
			[2]string{"Payback", payback},
		)
	}
	for _, r := range rows {
		fmt.Fprintf(tw, "%s\t%s\n", r[0], r[1])
	}
	return tw.Flush()
}

func WriteComparison(w io.Writer, ranked []analysis.Ranked) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', tabwriter.AlignRight)
	fmt.Fprintln(tw, "rank\tname\ttotal profit\toperating hours\tcapacity factor\tavg profit/hr\t")
	for _, r := range ranked {
		s := r.Result.Summary
		fmt.Fprintf(tw, "%d\t%s\t%s\t%d\t%s\t%s\t\n",
			r.Rank, r.Name, Money(s.TotalProfit), s.OperatingHours, Percent(s.CapacityFactor), Money(s.AvgProfitPerOperatingHour))
	}
	return tw.Flush()
}

func WriteRolling(w io.Writer, windows []backtest.WindowResult) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', tabwriter.AlignRight)
	fmt.Fprintln(tw, "window start\twindow end\ttotal profit\tcapacity factor\tavg profit/hr\t")
	for _, win := range windows {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t\n",
			win.WindowStart.UTC().Format("2006-01-02"),
			win.WindowEnd.UTC().Format("2006-01-02"),
			Money(win.Summary.TotalProfit),
			Percent(win.Summary.CapacityFactor),
			Money(win.Summary.AvgProfitPerOperatingHour))
	}
	return tw.Flush()
}

func WriteMarketStats(w io.Writer, m analysis.MarketStats) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', tabwriter.AlignRight)
	fmt.Fprintf(tw, "hours\t%d\t\n", m.Count)
	fmt.Fprintln(tw, "series\tmin\tp05\tmean\tp95\tmax\t")
	for _, row := range []struct {
		name string
		d    analysis.Distribution
	}{
		{"electricity $/MWh", m.ElectricityPrice},
		{"hashprice $/TH/day", m.Hashprice},
		{"profit $/h", m.Profit},
	} {
		fmt.Fprintf(tw, "%s\t%.4f\t%.4f\t%.4f\t%.4f\t%.4f\t\n", row.name, row.d.Min, row.d.P05, row.d.Mean, row.d.P95, row.d.Max)
	}
	fmt.Fprintf(tw, "mean breakeven $/MWh\t%.2f\t\n", m.MeanBreakevenPrice)
	fmt.Fprintf(tw, "hours below breakeven\t%d\t\n", m.HoursBelowBreakeven)
	return tw.Flush()
}

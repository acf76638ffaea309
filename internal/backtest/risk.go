package backtest

import (
	"time"

	"mining-dispatch/internal/stats"
)

// RiskMetrics describes the distribution of realized daily profit.
type RiskMetrics struct {
	ProfitVolatility    float64 // sample std-dev of daily profit
	MaxDailyLoss        float64 // lowest daily profit
	MaxDailyGain        float64 // highest daily profit
	VaR95               float64 // 5th percentile of daily profit
	AvgDailyProfit      float64
	RiskAdjustedReturn  float64 // AvgDailyProfit / ProfitVolatility, 0 without volatility
	DownsideProbability float64 // share of days with negative profit
	NegativeDays        int
	TotalDays           int
}

// DailyProfit sums realized profit per UTC calendar day, in ledger order.
// Days on which the facility never operated contribute 0.
func DailyProfit(ledger []LedgerRow) ([]time.Time, []float64) {
	var days []time.Time
	var profit []float64
	for _, r := range ledger {
		ts := r.Timestamp.UTC()
		day := time.Date(ts.Year(), ts.Month(), ts.Day(), 0, 0, 0, 0, time.UTC)
		if len(days) == 0 || !days[len(days)-1].Equal(day) {
			days = append(days, day)
			profit = append(profit, 0)
		}
		if r.Operate {
			profit[len(profit)-1] += r.Profit
		}
	}
	return days, profit
}

func Risk(ledger []LedgerRow) RiskMetrics {
	_, daily := DailyProfit(ledger)
	if len(daily) == 0 {
		return RiskMetrics{}
	}
	m := RiskMetrics{TotalDays: len(daily)}
	m.ProfitVolatility = stats.StdDev(daily)
	m.MaxDailyLoss, m.MaxDailyGain = stats.MinMax(daily)
	m.VaR95 = stats.Percentile(daily, 5)
	m.AvgDailyProfit = stats.Mean(daily)
	if m.ProfitVolatility > 0 {
		m.RiskAdjustedReturn = m.AvgDailyProfit / m.ProfitVolatility
	}
	for _, p := range daily {
		if p < 0 {
			m.NegativeDays++
		}
	}
	m.DownsideProbability = float64(m.NegativeDays) / float64(m.TotalDays)
	return m
}

package backtest

import (
	"time"
)

// LedgerRow is one row of per-hour output.
// This is the primary artifact for "what happened" in a backtest. Revenue,
// Cost and Profit are counterfactual; CumProfit accumulates realized profit.
type LedgerRow struct {
	Index     int
	Timestamp time.Time

	ElectricityPrice float64
	Hashprice        float64

	Revenue float64
	Cost    float64
	Profit  float64

	Operate bool
	Filled  bool

	CumProfit float64
}

// Summary is the aggregate result of one strategy over one series.
// Totals only include hours with Operate set.
type Summary struct {
	Start time.Time
	End   time.Time

	TotalRevenue float64
	TotalCost    float64
	TotalProfit  float64

	OperatingHours int
	TotalHours     int
	FilledHours    int

	CapacityFactor float64

	// AvgProfitPerOperatingHour is 0 when OperatingHours is 0.
	AvgProfitPerOperatingHour float64

	// ProfitMargin is TotalProfit/TotalRevenue, 0 when TotalRevenue <= 0.
	ProfitMargin float64

	// Counterfactual profitability, independent of the decisions.
	ProfitableHours   int
	UnprofitableHours int

	AvgElectricityPrice float64
	AvgHashprice        float64

	// Months with the highest and lowest realized profit (UTC calendar).
	// BestMonthStart/WorstMonthStart carry the year as well.
	BestMonthStart  time.Time
	WorstMonthStart time.Time
}

type Result struct {
	Strategy string
	Summary  Summary
	Ledger   []LedgerRow
}

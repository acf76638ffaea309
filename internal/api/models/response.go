package models

import "time"

// BacktestResponse represents the response from a backtest run
type BacktestResponse struct {
	ID       string          `json:"id,omitempty"`
	Status   string          `json:"status"`
	Strategy string          `json:"strategy"`
	Summary  BacktestSummary `json:"summary"`
	Risk     *RiskMetrics    `json:"risk,omitempty"`
	ROI      *ROIMetrics     `json:"roi,omitempty"`
	Ledger   []LedgerRow     `json:"ledger,omitempty"`
}

// BacktestSummary contains aggregated backtest results
type BacktestSummary struct {
	BacktestWindow TimeWindow `json:"backtest_window"`

	TotalRevenue float64 `json:"total_revenue"`
	TotalCost    float64 `json:"total_cost"`
	TotalProfit  float64 `json:"total_profit"`

	OperatingHours int `json:"operating_hours"`
	TotalHours     int `json:"total_hours"`
	FilledHours    int `json:"filled_hours"`

	CapacityFactor            float64 `json:"capacity_factor"`
	AvgProfitPerOperatingHour float64 `json:"avg_profit_per_operating_hour"`
	ProfitMargin              float64 `json:"profit_margin"`

	ProfitableHours   int `json:"profitable_hours"`
	UnprofitableHours int `json:"unprofitable_hours"`

	AvgElectricityPrice float64 `json:"avg_electricity_price"`
	AvgHashprice        float64 `json:"avg_hashprice"`

	BestMonth  string `json:"best_month"`  // YYYY-MM
	WorstMonth string `json:"worst_month"` // YYYY-MM

	OperatingWindows []OperatingWindow `json:"operating_windows,omitempty"` // Per-day operating windows
}

// TimeWindow represents a time range
type TimeWindow struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

// OperatingWindow spans the first to last operating hour of one UTC day
type OperatingWindow struct {
	TimeWindow
	Hours               int     `json:"hours"`
	AvgElectricityPrice float64 `json:"avg_electricity_price"` // Mean price over operating hours
	Profit              float64 `json:"profit"`
}

type RiskMetrics struct {
	ProfitVolatility    float64 `json:"profit_volatility"`
	MaxDailyLoss        float64 `json:"max_daily_loss"`
	MaxDailyGain        float64 `json:"max_daily_gain"`
	VaR95               float64 `json:"var_95"`
	AvgDailyProfit      float64 `json:"avg_daily_profit"`
	RiskAdjustedReturn  float64 `json:"risk_adjusted_return"`
	DownsideProbability float64 `json:"downside_probability"`
	NegativeDays        int     `json:"negative_days"`
	TotalDays           int     `json:"total_days"`
}

type ROIMetrics struct {
	InitialInvestment float64 `json:"initial_investment"`
	ROIPercentage     float64 `json:"roi_percentage"`
	AnnualizedROI     float64 `json:"annualized_roi"`
	// PaybackPeriodYears is null when the period made no profit.
	PaybackPeriodYears *float64 `json:"payback_period_years"`
	PeriodYears        float64  `json:"period_years"`
}

// LedgerRow represents one hour in the backtest ledger
type LedgerRow struct {
	Index            int       `json:"index"`
	Timestamp        time.Time `json:"timestamp"`
	ElectricityPrice float64   `json:"electricity_price"`
	Hashprice        float64   `json:"hashprice"`
	Revenue          float64   `json:"revenue"`
	Cost             float64   `json:"cost"`
	Profit           float64   `json:"profit"`
	Operate          bool      `json:"operate"`
	CumProfit        float64   `json:"cum_profit"`
	Filled           bool      `json:"filled,omitempty"`
}

// LedgerResponse is returned by GET /backtest/:id/ledger
type LedgerResponse struct {
	ID       string      `json:"id"`
	Strategy string      `json:"strategy"`
	Ledger   []LedgerRow `json:"ledger"`
}

// CompareBacktestResponse represents the response from a comparison
type CompareBacktestResponse struct {
	Comparison []ComparisonResult `json:"comparison"`
}

// ComparisonResult contains results for one strategy
type ComparisonResult struct {
	Rank     int             `json:"rank"`
	ID       string          `json:"id"`
	Name     string          `json:"name"`
	Strategy string          `json:"strategy"`
	Summary  BacktestSummary `json:"summary"`
}

// MarketStatsResponse describes the market over a window
type MarketStatsResponse struct {
	Window              TimeWindow   `json:"window"`
	Count               int          `json:"count"`
	ElectricityPrice    Distribution `json:"electricity_price"`
	Hashprice           Distribution `json:"hashprice"`
	Profit              Distribution `json:"profit"`
	MeanBreakevenPrice  float64      `json:"mean_breakeven_price"`
	HoursBelowBreakeven int          `json:"hours_below_breakeven"`
}

type Distribution struct {
	Min  float64 `json:"min"`
	Max  float64 `json:"max"`
	Mean float64 `json:"mean"`
	P05  float64 `json:"p05"`
	P95  float64 `json:"p95"`
}

// FacilityInfo represents information about a facility preset
type FacilityInfo struct {
	ID    string        `json:"id"`
	Name  string        `json:"name"`
	File  string        `json:"file"`
	Specs FacilitySpecs `json:"specs"`
}

// FacilitySpecs describes the hardware of a facility preset
type FacilitySpecs struct {
	SizeMW           float64 `json:"size_mw"`
	EfficiencyWPerTH float64 `json:"efficiency_w_per_th"`
	HashrateTH       float64 `json:"hashrate_th"`
}

// StrategyInfo represents information about a strategy
type StrategyInfo struct {
	Name        string          `json:"name"`
	Description string          `json:"description"`
	Parameters  []ParameterInfo `json:"parameters"`
}

// ParameterInfo describes a strategy parameter
type ParameterInfo struct {
	Name        string      `json:"name"`
	Type        string      `json:"type"` // "float", "int", "[]int"
	Description string      `json:"description"`
	Default     interface{} `json:"default,omitempty"`
}

// ContractBlockInfo describes one contract block
type ContractBlockInfo struct {
	ID          string `json:"id"`
	Description string `json:"description"`
}

// ErrorResponse represents an error response
type ErrorResponse struct {
	Error ErrorDetail `json:"error"`
}

// ErrorDetail contains error information
type ErrorDetail struct {
	Code    string                 `json:"code"`
	Message string                 `json:"message"`
	Details map[string]interface{} `json:"details,omitempty"`
}

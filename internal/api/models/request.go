package models

import "time"

// BacktestRequest represents the request body for running a backtest.
// Market data comes either inline (MarketData) or from the server's
// configured provider over StartDate..EndDate.
type BacktestRequest struct {
	FacilityFile string          `json:"facility_file,omitempty"` // preset id, see GET /facilities
	Facility     FacilityConfig  `json:"facility"`
	Contract     *ContractConfig `json:"contract,omitempty"`
	Strategy     StrategyConfig  `json:"strategy" binding:"required"`
	MarketData   []MarketPoint   `json:"market_data,omitempty"`
	StartDate    string          `json:"start_date,omitempty"` // YYYY-MM-DD
	EndDate      string          `json:"end_date,omitempty"`   // YYYY-MM-DD
	Options      BacktestOptions `json:"options,omitempty"`
}

// FacilityConfig defines facility parameters
type FacilityConfig struct {
	Name             string  `json:"name,omitempty"`
	SizeMW           float64 `json:"size_mw"`
	EfficiencyWPerTH float64 `json:"efficiency_w_per_th"`
}

// ContractConfig defines an optional fixed-price power contract
type ContractConfig struct {
	SizeMW   float64 `json:"size_mw"`
	PriceMWh float64 `json:"price_mwh"`
	Block    string  `json:"block,omitempty"`    // 7x24 (default), 5x16, 2x16, 7x8
	Timezone string  `json:"timezone,omitempty"` // IANA name, default UTC
	Start    string  `json:"start,omitempty"`    // YYYY-MM-DD
	End      string  `json:"end,omitempty"`      // YYYY-MM-DD, inclusive
}

// StrategyConfig names a registered strategy and its parameters
type StrategyConfig struct {
	Label  string                 `json:"label,omitempty"`
	Name   string                 `json:"name" binding:"required"`
	Params map[string]interface{} `json:"params,omitempty"`
}

// MarketPoint is one hour of inline market data. A null value is missing.
type MarketPoint struct {
	Timestamp        time.Time `json:"timestamp" binding:"required"`
	ElectricityPrice *float64  `json:"electricity_price"`
	Hashprice        *float64  `json:"hashprice"`
}

// BacktestOptions contains optional backtest parameters
type BacktestOptions struct {
	IncludeLedger     bool    `json:"include_ledger,omitempty"` // default: false
	IncludeRisk       bool    `json:"include_risk,omitempty"`
	Investment        float64 `json:"investment,omitempty"` // > 0 adds ROI metrics
	GapPolicy         string  `json:"gap_policy,omitempty"` // flag (default), ffill, interpolate, fallback
	FallbackHashprice float64 `json:"fallback_hashprice,omitempty"`
}

// CompareBacktestRequest runs several strategies against the same market
// data. An empty Strategies list compares the default set.
type CompareBacktestRequest struct {
	FacilityFile string           `json:"facility_file,omitempty"`
	Facility     FacilityConfig   `json:"facility"`
	Contract     *ContractConfig  `json:"contract,omitempty"`
	Strategies   []StrategyConfig `json:"strategies" binding:"dive"`
	MarketData   []MarketPoint    `json:"market_data,omitempty"`
	StartDate    string           `json:"start_date,omitempty"`
	EndDate      string           `json:"end_date,omitempty"`
	Options      BacktestOptions  `json:"options,omitempty"`
}

// MarketStatsRequest is bound from the query string
type MarketStatsRequest struct {
	StartDate        string  `form:"start_date" binding:"required"`
	EndDate          string  `form:"end_date" binding:"required"`
	FacilityFile     string  `form:"facility_file"`
	SizeMW           float64 `form:"size_mw"`
	EfficiencyWPerTH float64 `form:"efficiency_w_per_th"`
}

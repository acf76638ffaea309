package strategy

import (
	"fmt"
	"math"

	"mining-dispatch/internal/model"
	"mining-dispatch/internal/stats"
)

// Percentile operates during hours whose profit is at or above the P-th
// percentile of profit over the whole series.
//
// The cutoff is computed once over the full historical window, so the
// strategy sees the future and is only meaningful in a backtest.
type Percentile struct {
	P float64 // 0..100
}

func NewPercentile(p float64) (Percentile, error) {
	if math.IsNaN(p) || p < 0 || p > 100 {
		return Percentile{}, fmt.Errorf("%w: percentile must be in [0, 100], got %v", model.ErrInvalidStrategyParams, p)
	}
	return Percentile{P: p}, nil
}

func (s Percentile) Name() string { return "percentile" }

// Cutoff is the profit value the strategy compares against.
func (s Percentile) Cutoff(records []model.HourlyRecord) float64 {
	return stats.Percentile(profits(records), s.P)
}

func (s Percentile) Decide(records []model.HourlyRecord) []bool {
	out := make([]bool, len(records))
	if len(records) == 0 {
		return out
	}
	cutoff := s.Cutoff(records)
	for i, r := range records {
		out[i] = r.Profit >= cutoff
	}
	return out
}

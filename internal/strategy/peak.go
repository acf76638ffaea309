package strategy

import (
	"fmt"

	"mining-dispatch/internal/model"
)

// PeakAvoidance operates when profit beats MinProfit and the hour is not a
// peak: the electricity price is at or below PeakPriceCeiling (nil = no
// ceiling) and the UTC hour-of-day is not listed in PeakHours.
type PeakAvoidance struct {
	MinProfit        float64
	PeakPriceCeiling *float64
	PeakHours        []int
}

func NewPeakAvoidance(minProfit float64, ceiling *float64, peakHours []int) (PeakAvoidance, error) {
	for _, h := range peakHours {
		if h < 0 || h > 23 {
			return PeakAvoidance{}, fmt.Errorf("%w: peak hour %d outside 0..23", model.ErrInvalidStrategyParams, h)
		}
	}
	return PeakAvoidance{MinProfit: minProfit, PeakPriceCeiling: ceiling, PeakHours: peakHours}, nil
}

func (s PeakAvoidance) Name() string { return "peak_avoidance" }

func (s PeakAvoidance) Decide(records []model.HourlyRecord) []bool {
	var peak [24]bool
	for _, h := range s.PeakHours {
		if h >= 0 && h < 24 {
			peak[h] = true
		}
	}
	out := make([]bool, len(records))
	for i, r := range records {
		if r.Profit <= s.MinProfit {
			continue
		}
		if s.PeakPriceCeiling != nil && r.ElectricityPrice > *s.PeakPriceCeiling {
			continue
		}
		if peak[r.Timestamp.UTC().Hour()] {
			continue
		}
		out[i] = true
	}
	return out
}

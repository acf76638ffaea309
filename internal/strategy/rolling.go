package strategy

import (
	"fmt"
	"math"

	"mining-dispatch/internal/model"
)

// RollingAverage operates when the hour's profit beats Multiplier times the
// mean profit of the trailing Window hours, excluding the hour itself.
//
// State window: hours [i-Window, i). Before Window hours of history exist the
// mean is taken over every prior hour. Hour 0 has no history and never
// operates. Multiplier 0 reduces the rule to profit > 0. The registry defaults
// Multiplier to 1 only when the parameter is absent.
type RollingAverage struct {
	Window     int
	Multiplier float64
}

func NewRollingAverage(window int, multiplier float64) (RollingAverage, error) {
	if window < 1 {
		return RollingAverage{}, fmt.Errorf("%w: rolling window must be >= 1 hour, got %d", model.ErrInvalidStrategyParams, window)
	}
	if math.IsNaN(multiplier) || math.IsInf(multiplier, 0) || multiplier < 0 {
		return RollingAverage{}, fmt.Errorf("%w: threshold multiplier must be a finite value >= 0, got %v", model.ErrInvalidStrategyParams, multiplier)
	}
	return RollingAverage{Window: window, Multiplier: multiplier}, nil
}

func (s RollingAverage) Name() string { return "rolling_average" }

func (s RollingAverage) Decide(records []model.HourlyRecord) []bool {
	out := make([]bool, len(records))
	w := s.Window
	if w < 1 {
		w = 1
	}

	for i := 1; i < len(records); i++ {
		lo := i - w
		if lo < 0 {
			lo = 0
		}
		// Summed fresh per hour rather than slid, so the mean is exactly that
		// of profit[lo:i] with no accumulated rounding.
		sum := 0.0
		for _, r := range records[lo:i] {
			sum += r.Profit
		}
		mean := sum / float64(i-lo)
		out[i] = records[i].Profit > s.Multiplier*mean
	}
	return out
}

package strategy

import "mining-dispatch/internal/model"

// Threshold operates when the hour's profit is strictly above MinProfit.
// profit == MinProfit does not operate.
type Threshold struct {
	MinProfit float64
}

func (s Threshold) Name() string { return "threshold" }

func (s Threshold) Decide(records []model.HourlyRecord) []bool {
	out := make([]bool, len(records))
	for i, r := range records {
		out[i] = r.Profit > s.MinProfit
	}
	return out
}

// AlwaysOn operates every hour. It is the capacity-factor-one baseline the
// other strategies are measured against.
type AlwaysOn struct{}

func (AlwaysOn) Name() string { return "always_on" }

func (AlwaysOn) Decide(records []model.HourlyRecord) []bool {
	out := make([]bool, len(records))
	for i := range out {
		out[i] = true
	}
	return out
}

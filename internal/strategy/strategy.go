package strategy

import "mining-dispatch/internal/model"

// Strategy maps an annotated series to one operate decision per hour.
//
// Decide must be deterministic and side-effect free: the returned slice has
// len(records) entries and depends only on records and the strategy's own
// parameters. Implementations must not modify records.
type Strategy interface {
	Name() string
	Decide(records []model.HourlyRecord) []bool
}

// Func adapts a plain function into a Strategy.
type Func struct {
	Label string
	Fn    func(records []model.HourlyRecord) []bool
}

func (f Func) Name() string { return f.Label }

func (f Func) Decide(records []model.HourlyRecord) []bool { return f.Fn(records) }

func profits(records []model.HourlyRecord) []float64 {
	out := make([]float64, len(records))
	for i, r := range records {
		out[i] = r.Profit
	}
	return out
}

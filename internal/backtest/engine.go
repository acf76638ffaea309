package backtest

import (
	"fmt"
	"time"

	"mining-dispatch/internal/model"
	"mining-dispatch/internal/strategy"
	"mining-dispatch/internal/stats"
)

type Engine struct{}

func New() *Engine { return &Engine{} }

// Apply returns a copy of records with Operate set from the strategy's
// decisions. records itself is left untouched.
func (e *Engine) Apply(records []model.HourlyRecord, strat strategy.Strategy) []model.HourlyRecord {
	out := model.Clone(records)
	decisions := strat.Decide(out)
	for i := range out {
		out[i].Operate = i < len(decisions) && decisions[i]
	}
	return out
}

// Backtest applies strat to an annotated series and aggregates the result.
func (e *Engine) Backtest(records []model.HourlyRecord, strat strategy.Strategy) (*Result, error) {
	if strat == nil {
		return nil, fmt.Errorf("strategy is nil")
	}
	res, err := e.Run(e.Apply(records, strat))
	if err != nil {
		return nil, err
	}
	res.Strategy = strat.Name()
	return res, nil
}

// Run aggregates an annotated series whose Operate column is already decided.
// Hours without market data or economics are ErrMissingMarketData. It does not
// modify records and performs no I/O.
func (e *Engine) Run(records []model.HourlyRecord) (*Result, error) {
	if len(records) == 0 {
		return nil, fmt.Errorf("backtest: %w", model.ErrEmptySeries)
	}
	for _, r := range records {
		if !r.HasMarketData() || model.IsMissing(r.Revenue) || model.IsMissing(r.Cost) || model.IsMissing(r.Profit) {
			return nil, fmt.Errorf("backtest: hour %s: %w", r.Timestamp.UTC().Format(time.RFC3339), model.ErrMissingMarketData)
		}
	}

	ledger := make([]LedgerRow, 0, len(records))
	s := Summary{
		Start:      records[0].Timestamp,
		End:        records[len(records)-1].Timestamp,
		TotalHours: len(records),
	}

	type month struct {
		start  time.Time
		profit float64
	}
	var months []month

	cum := 0.0
	priceSum := 0.0
	hashSum := 0.0

	for idx, r := range records {
		priceSum += r.ElectricityPrice
		hashSum += r.Hashprice
		if r.Profit > 0 {
			s.ProfitableHours++
		} else {
			s.UnprofitableHours++
		}
		if r.Filled {
			s.FilledHours++
		}

		ts := r.Timestamp.UTC()
		ms := time.Date(ts.Year(), ts.Month(), 1, 0, 0, 0, 0, time.UTC)
		if len(months) == 0 || !months[len(months)-1].start.Equal(ms) {
			months = append(months, month{start: ms})
		}

		if r.Operate {
			s.OperatingHours++
			s.TotalRevenue += r.Revenue
			s.TotalCost += r.Cost
			s.TotalProfit += r.Profit
			cum += r.Profit
			months[len(months)-1].profit += r.Profit
		}

		ledger = append(ledger, LedgerRow{
			Index:     idx,
			Timestamp: r.Timestamp,

			ElectricityPrice: r.ElectricityPrice,
			Hashprice:        r.Hashprice,

			Revenue: r.Revenue,
			Cost:    r.Cost,
			Profit:  r.Profit,

			Operate: r.Operate,
			Filled:  r.Filled,

			CumProfit: cum,
		})
	}

	n := float64(len(records))
	s.CapacityFactor = float64(s.OperatingHours) / n
	s.AvgProfitPerOperatingHour = stats.SafeDivide(s.TotalProfit, float64(s.OperatingHours), 0)
	if s.TotalRevenue > 0 {
		s.ProfitMargin = s.TotalProfit / s.TotalRevenue
	}
	s.AvgElectricityPrice = priceSum / n
	s.AvgHashprice = hashSum / n

	best, worst := 0, 0
	for i, m := range months {
		if m.profit > months[best].profit {
			best = i
		}
		if m.profit < months[worst].profit {
			worst = i
		}
	}
	s.BestMonthStart = months[best].start
	s.WorstMonthStart = months[worst].start

	return &Result{Summary: s, Ledger: ledger}, nil
}

package analysis

import (
	"math"
	"sort"
	"time"

	"mining-dispatch/internal/economics"
	"mining-dispatch/internal/model"
	"mining-dispatch/internal/stats"
)

// Distribution is a compact summary of one column.
type Distribution struct {
	Min  float64
	Max  float64
	Mean float64
	P05  float64
	P95  float64
}

// MarketStats describes the market a facility faced over a window, before any
// dispatch decision. It is strategy independent.
type MarketStats struct {
	Start time.Time
	End   time.Time
	Count int

	ElectricityPrice Distribution
	Hashprice        Distribution
	Profit           Distribution

	// MeanBreakevenPrice is the average market price at which running
	// would have broken even, given that hour's hashprice.
	MeanBreakevenPrice float64

	// HoursBelowBreakeven counts hours whose price was under breakeven.
	HoursBelowBreakeven int
}

// ComputeMarketStats summarizes an annotated series under m.
func ComputeMarketStats(records []model.HourlyRecord, m *economics.Model) MarketStats {
	s := MarketStats{}
	if len(records) == 0 {
		return s
	}
	s.Count = len(records)
	s.Start = records[0].Timestamp
	s.End = records[len(records)-1].Timestamp

	prices := make([]float64, 0, len(records))
	hashprices := make([]float64, 0, len(records))
	profits := make([]float64, 0, len(records))
	breakevenSum := 0.0
	for _, r := range records {
		prices = append(prices, r.ElectricityPrice)
		hashprices = append(hashprices, r.Hashprice)
		profits = append(profits, r.Profit)
		be := m.BreakevenPrice(r.Hashprice)
		breakevenSum += be
		if r.ElectricityPrice < be {
			s.HoursBelowBreakeven++
		}
	}
	s.ElectricityPrice = distribution(prices)
	s.Hashprice = distribution(hashprices)
	s.Profit = distribution(profits)
	s.MeanBreakevenPrice = breakevenSum / float64(len(records))
	return s
}

func distribution(vals []float64) Distribution {
	d := Distribution{Min: math.Inf(1), Max: math.Inf(-1)}
	sum := 0.0
	for _, v := range vals {
		sum += v
		if v < d.Min {
			d.Min = v
		}
		if v > d.Max {
			d.Max = v
		}
	}
	sort.Float64s(vals)
	d.Mean = sum / float64(len(vals))
	d.P05 = stats.PercentileSorted(vals, 0.05)
	d.P95 = stats.PercentileSorted(vals, 0.95)
	return d
}

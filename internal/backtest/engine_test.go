package backtest

import (
	"bytes"
	"encoding/csv"
	"math"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mining-dispatch/internal/model"
	"mining-dispatch/internal/strategy"
)

var t0 = time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

// annotated builds an hourly series with revenue fixed at 100 and cost chosen
// so that each hour has the given profit.
func annotated(profits ...float64) []model.HourlyRecord {
	out := make([]model.HourlyRecord, len(profits))
	for i, p := range profits {
		out[i] = model.HourlyRecord{
			Timestamp:        t0.Add(time.Duration(i) * time.Hour),
			ElectricityPrice: 40,
			Hashprice:        0.05,
			Revenue:          100,
			Cost:             100 - p,
			Profit:           p,
		}
	}
	return out
}

func TestBacktestEmptySeries(t *testing.T) {
	_, err := New().Backtest(nil, strategy.Threshold{})
	assert.ErrorIs(t, err, model.ErrEmptySeries)

	_, err = New().Backtest(annotated(1), nil)
	assert.Error(t, err)
}

func TestRunRejectsUnannotatedHours(t *testing.T) {
	raw := annotated(5, 5, 5)
	raw[1].ElectricityPrice = model.Missing()
	_, err := New().Run(raw)
	assert.ErrorIs(t, err, model.ErrMissingMarketData)
	assert.Contains(t, err.Error(), "2024-01-01T01:00:00Z")

	noEconomics := annotated(5, 5)
	noEconomics[0].Profit = math.NaN()
	_, err = New().Backtest(noEconomics, strategy.AlwaysOn{})
	assert.ErrorIs(t, err, model.ErrMissingMarketData)
}

func TestBacktestThreshold(t *testing.T) {
	recs := annotated(10, -5, 0, 20)
	res, err := New().Backtest(recs, strategy.Threshold{})
	require.NoError(t, err)

	s := res.Summary
	assert.Equal(t, "threshold", res.Strategy)
	assert.Equal(t, 4, s.TotalHours)
	assert.Equal(t, 2, s.OperatingHours)
	assert.InDelta(t, 30, s.TotalProfit, 1e-9)
	assert.InDelta(t, 200, s.TotalRevenue, 1e-9)
	assert.InDelta(t, 170, s.TotalCost, 1e-9)
	assert.InDelta(t, 0.5, s.CapacityFactor, 1e-12)
	assert.InDelta(t, 15, s.AvgProfitPerOperatingHour, 1e-9)
	assert.InDelta(t, 0.15, s.ProfitMargin, 1e-12)
	assert.Equal(t, 2, s.ProfitableHours)
	assert.Equal(t, 2, s.UnprofitableHours, "zero profit counts as unprofitable")
	assert.Equal(t, t0, s.Start)
	assert.Equal(t, t0.Add(3*time.Hour), s.End)

	require.Len(t, res.Ledger, 4)
	assert.Equal(t, []float64{10, 10, 10, 30}, cumProfits(res.Ledger))
	assert.InDelta(t, -5, res.Ledger[1].Profit, 1e-9, "ledger keeps counterfactual profit")
}

func TestBacktestIdentities(t *testing.T) {
	recs := annotated(3, -2, 7, 0.5, -9, 4, 1)
	for _, s := range []strategy.Strategy{
		strategy.Threshold{}, strategy.AlwaysOn{}, strategy.Percentile{P: 60},
		strategy.RollingAverage{Window: 3, Multiplier: 1}, strategy.PeakAvoidance{PeakHours: []int{2}},
	} {
		res, err := New().Backtest(recs, s)
		require.NoError(t, err, s.Name())
		sum := res.Summary
		assert.InDelta(t, sum.TotalRevenue-sum.TotalCost, sum.TotalProfit, 1e-9, s.Name())
		assert.Equal(t, sum.TotalHours, sum.ProfitableHours+sum.UnprofitableHours, s.Name())
		assert.GreaterOrEqual(t, sum.CapacityFactor, 0.0)
		assert.LessOrEqual(t, sum.CapacityFactor, 1.0)
		assert.InDelta(t, sum.TotalProfit, res.Ledger[len(res.Ledger)-1].CumProfit, 1e-9, s.Name())
	}
}

func TestBacktestNeverOperates(t *testing.T) {
	res, err := New().Backtest(annotated(-1, -2, -3), strategy.Threshold{})
	require.NoError(t, err)
	s := res.Summary
	assert.Zero(t, s.OperatingHours)
	assert.Zero(t, s.TotalProfit)
	assert.Zero(t, s.CapacityFactor)
	assert.Zero(t, s.AvgProfitPerOperatingHour)
	assert.Zero(t, s.ProfitMargin)
	assert.False(t, math.IsNaN(s.AvgProfitPerOperatingHour))
}

func TestThresholdIsUpperBound(t *testing.T) {
	recs := annotated(3, -2, 7, 0.5, -9, 4, 1, 12, -1)
	best, err := New().Backtest(recs, strategy.Threshold{})
	require.NoError(t, err)
	for _, s := range []strategy.Strategy{
		strategy.AlwaysOn{}, strategy.Percentile{P: 70}, strategy.RollingAverage{Window: 2},
	} {
		res, err := New().Backtest(recs, s)
		require.NoError(t, err)
		assert.LessOrEqual(t, res.Summary.TotalProfit, best.Summary.TotalProfit+1e-9, s.Name())
	}
}

func TestBacktestIsIdempotent(t *testing.T) {
	recs := annotated(3, -2, 7)
	before := model.Clone(recs)
	a, err := New().Backtest(recs, strategy.Percentile{P: 50})
	require.NoError(t, err)
	b, err := New().Backtest(recs, strategy.Percentile{P: 50})
	require.NoError(t, err)
	assert.Equal(t, a, b)
	assert.Equal(t, before, recs)
}

func TestApplyShortDecisions(t *testing.T) {
	short := strategy.Func{Label: "short", Fn: func([]model.HourlyRecord) []bool { return []bool{true} }}
	out := New().Apply(annotated(1, 2, 3), short)
	assert.True(t, out[0].Operate)
	assert.False(t, out[1].Operate)
	assert.False(t, out[2].Operate)
}

func TestRunBestWorstMonth(t *testing.T) {
	recs := []model.HourlyRecord{
		{Timestamp: time.Date(2024, 1, 31, 23, 0, 0, 0, time.UTC), Profit: 5, Revenue: 5, Operate: true},
		{Timestamp: time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC), Profit: 50, Revenue: 50, Operate: true},
		{Timestamp: time.Date(2024, 2, 1, 1, 0, 0, 0, time.UTC), Profit: -100, Operate: false},
	}
	res, err := New().Run(recs)
	require.NoError(t, err)
	assert.Equal(t, time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC), res.Summary.BestMonthStart)
	assert.Equal(t, time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC), res.Summary.WorstMonthStart)
}

func TestWriteLedgerCSV(t *testing.T) {
	res, err := New().Backtest(annotated(10, -5), strategy.Threshold{})
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, WriteLedgerCSVTo(&buf, res.Ledger))

	rows, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, LedgerColumns, rows[0])
	assert.Equal(t, "2024-01-01T00:00:00Z", rows[1][0])
	assert.Equal(t, "true", rows[1][6])
	assert.Equal(t, "false", rows[2][6])
	assert.Equal(t, "10.000000", rows[2][7])

	path := filepath.Join(t.TempDir(), "ledger.csv")
	require.NoError(t, WriteLedgerCSV(path, res.Ledger))
	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(raw), "timestamp,electricity_price,hashprice")
}

func TestLedgerParquet(t *testing.T) {
	res, err := New().Backtest(annotated(10, -5, 3), strategy.Threshold{})
	require.NoError(t, err)

	b, err := LedgerParquet(res.Ledger)
	require.NoError(t, err)
	require.Greater(t, len(b), 8)
	assert.Equal(t, "PAR1", string(b[:4]))
	assert.Equal(t, "PAR1", string(b[len(b)-4:]))

	path := filepath.Join(t.TempDir(), "ledger.parquet")
	require.NoError(t, WriteLedgerParquet(path, res.Ledger))
	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Positive(t, info.Size())
}

func cumProfits(ledger []LedgerRow) []float64 {
	out := make([]float64, len(ledger))
	for i, r := range ledger {
		out[i] = r.CumProfit
	}
	return out
}

package handlers

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mining-dispatch/internal/api/models"
	"mining-dispatch/internal/backtest"
)

var t0 = time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)

func TestOperatingWindows(t *testing.T) {
	row := func(h int, operate bool, price, profit float64) backtest.LedgerRow {
		return backtest.LedgerRow{Timestamp: t0.Add(time.Duration(h) * time.Hour), Operate: operate, ElectricityPrice: price, Profit: profit}
	}
	ledger := []backtest.LedgerRow{
		row(2, true, 10, 5),
		row(3, false, 90, -5),
		row(5, true, 30, 3),
		row(26, true, 20, 4),
	}
	wins := operatingWindows(ledger)
	require.Len(t, wins, 2)

	assert.Equal(t, t0.Add(2*time.Hour), wins[0].Start)
	assert.Equal(t, t0.Add(6*time.Hour), wins[0].End)
	assert.Equal(t, 2, wins[0].Hours)
	assert.InDelta(t, 20, wins[0].AvgElectricityPrice, 1e-12)
	assert.InDelta(t, 8, wins[0].Profit, 1e-12)

	assert.Equal(t, t0.Add(26*time.Hour), wins[1].Start)
	assert.Equal(t, 1, wins[1].Hours)

	assert.Empty(t, operatingWindows([]backtest.LedgerRow{row(0, false, 1, 1)}))
}

func TestConvertROI(t *testing.T) {
	out := convertROI(backtest.ROIMetrics{InitialInvestment: 10, PaybackPeriodYears: math.Inf(1)})
	assert.Nil(t, out.PaybackPeriodYears)

	out = convertROI(backtest.ROIMetrics{InitialInvestment: 10, PaybackPeriodYears: 2.5})
	require.NotNil(t, out.PaybackPeriodYears)
	assert.Equal(t, 2.5, *out.PaybackPeriodYears)
}

func TestPointsToRecords(t *testing.T) {
	price := 25.0
	recs := pointsToRecords([]models.MarketPoint{{Timestamp: t0, ElectricityPrice: &price}})
	require.Len(t, recs, 1)
	assert.Equal(t, 25.0, recs[0].ElectricityPrice)
	assert.True(t, math.IsNaN(recs[0].Hashprice))
}

func TestMonthLabel(t *testing.T) {
	assert.Equal(t, "2024-03", monthLabel(t0))
	assert.Equal(t, "", monthLabel(time.Time{}))
}

func TestResultStore(t *testing.T) {
	s := NewResultStore(time.Minute)
	id := s.Put(&backtest.Result{Strategy: "threshold"})
	got, ok := s.Get(id)
	require.True(t, ok)
	assert.Equal(t, "threshold", got.Strategy)

	_, ok = s.Get("missing")
	assert.False(t, ok)
}

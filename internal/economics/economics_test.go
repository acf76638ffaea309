package economics

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mining-dispatch/internal/model"
)

var t0 = time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC) // Monday

func series(prices, hashprices []float64) []model.HourlyRecord {
	out := make([]model.HourlyRecord, len(prices))
	for i := range prices {
		out[i] = model.HourlyRecord{
			Timestamp:        t0.Add(time.Duration(i) * time.Hour),
			ElectricityPrice: prices[i],
			Hashprice:        hashprices[i],
		}
	}
	return out
}

func facility() model.FacilityParams {
	return model.FacilityParams{Name: "test", SizeMW: 50, EfficiencyWPerTH: 30}
}

func TestNewValidates(t *testing.T) {
	_, err := New(model.FacilityParams{SizeMW: 0, EfficiencyWPerTH: 30}, nil)
	assert.ErrorIs(t, err, model.ErrInvalidFacilityParams)

	_, err = New(facility(), &model.Contract{SizeMW: 80, PriceMWh: 30, Block: model.Block7x24})
	assert.ErrorIs(t, err, model.ErrInvalidContractParams)

	m, err := New(facility(), nil)
	require.NoError(t, err)
	assert.InDelta(t, 1_666_666.67, m.HashrateTH(), 0.01)
	assert.Equal(t, "test", m.Facility().Name)
}

func TestAnnotateSingleHour(t *testing.T) {
	m, err := New(facility(), nil)
	require.NoError(t, err)

	in := series([]float64{40}, []float64{0.05})
	out, err := m.Annotate(in)
	require.NoError(t, err)
	require.Len(t, out, 1)

	// 1,666,666.67 TH * $0.05/TH/day / 24 = $3,472.22; 50 MW * $40 = $2,000.
	assert.InDelta(t, 3472.2222, out[0].Revenue, 1e-3)
	assert.InDelta(t, 2000, out[0].Cost, 1e-9)
	assert.InDelta(t, 1472.2222, out[0].Profit, 1e-3)
	assert.Zero(t, in[0].Revenue, "input must not be annotated in place")
}

func TestAnnotateNegativePrice(t *testing.T) {
	out, err := Annotate(series([]float64{-10}, []float64{0.05}), 50, 30)
	require.NoError(t, err)
	assert.InDelta(t, -500, out[0].Cost, 1e-9)
	assert.Greater(t, out[0].Profit, out[0].Revenue)
}

func TestAnnotateMissingData(t *testing.T) {
	m, err := New(facility(), nil)
	require.NoError(t, err)

	_, err = m.Annotate(series([]float64{40, model.Missing()}, []float64{0.05, 0.05}))
	assert.ErrorIs(t, err, model.ErrMissingMarketData)

	_, err = m.Annotate(series([]float64{40}, []float64{model.Missing()}))
	assert.ErrorIs(t, err, model.ErrMissingMarketData)

	gap := series([]float64{40, 40}, []float64{0.05, 0.05})
	gap[1].Timestamp = gap[1].Timestamp.Add(time.Hour)
	_, err = m.Annotate(gap)
	assert.ErrorIs(t, err, model.ErrMissingMarketData)

	dup := series([]float64{40, 40}, []float64{0.05, 0.05})
	dup[1].Timestamp = dup[0].Timestamp
	_, err = m.Annotate(dup)
	assert.ErrorIs(t, err, model.ErrInvalidSeries)
}

func TestAnnotateEmpty(t *testing.T) {
	out, err := Annotate(nil, 50, 30)
	require.NoError(t, err)
	assert.Empty(t, out)
}

func TestContractBlend(t *testing.T) {
	contract := &model.Contract{SizeMW: 20, PriceMWh: 30, Block: model.Block5x16}
	m, err := New(facility(), contract)
	require.NoError(t, err)

	// 08:00 Monday is inside 5x16: 20 MW * $30 + 30 MW * $40.
	assert.InDelta(t, 1800, m.HourlyCost(t0.Add(8*time.Hour), 40), 1e-9)
	// 02:00 Monday is outside: 50 MW * $40.
	assert.InDelta(t, 2000, m.HourlyCost(t0.Add(2*time.Hour), 40), 1e-9)

	// The model keeps its own copy of the contract.
	contract.SizeMW = 0
	assert.InDelta(t, 1800, m.HourlyCost(t0.Add(8*time.Hour), 40), 1e-9)
}

func TestBreakevenPrice(t *testing.T) {
	m, err := New(facility(), nil)
	require.NoError(t, err)

	be := m.BreakevenPrice(0.05)
	assert.InDelta(t, 69.4444, be, 1e-3)
	assert.InDelta(t, m.HourlyRevenue(0.05), m.HourlyCost(t0, be), 1e-6)
}

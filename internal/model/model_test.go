package model

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFacilityParams(t *testing.T) {
	f := FacilityParams{SizeMW: 50, EfficiencyWPerTH: 30}
	require.NoError(t, f.Validate())
	assert.InDelta(t, 1_666_666.67, f.HashrateTH(), 0.01)

	tests := []struct {
		name string
		f    FacilityParams
	}{
		{"zero size", FacilityParams{SizeMW: 0, EfficiencyWPerTH: 30}},
		{"negative size", FacilityParams{SizeMW: -1, EfficiencyWPerTH: 30}},
		{"zero efficiency", FacilityParams{SizeMW: 50, EfficiencyWPerTH: 0}},
		{"nan efficiency", FacilityParams{SizeMW: 50, EfficiencyWPerTH: math.NaN()}},
		{"inf size", FacilityParams{SizeMW: math.Inf(1), EfficiencyWPerTH: 30}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.ErrorIs(t, tt.f.Validate(), ErrInvalidFacilityParams)
		})
	}
}

func TestContractValidate(t *testing.T) {
	facility := FacilityParams{SizeMW: 50, EfficiencyWPerTH: 30}

	var none *Contract
	assert.NoError(t, none.Validate(facility))

	ok := &Contract{SizeMW: 20, PriceMWh: 45, Block: Block5x16, Timezone: "America/Chicago"}
	assert.NoError(t, ok.Validate(facility))

	tests := []struct {
		name string
		c    Contract
	}{
		{"oversized", Contract{SizeMW: 60, PriceMWh: 45, Block: Block7x24}},
		{"zero size", Contract{SizeMW: 0, PriceMWh: 45, Block: Block7x24}},
		{"zero price", Contract{SizeMW: 10, PriceMWh: 0, Block: Block7x24}},
		{"bad block", Contract{SizeMW: 10, PriceMWh: 45, Block: "6x12"}},
		{"bad timezone", Contract{SizeMW: 10, PriceMWh: 45, Block: Block7x24, Timezone: "Mars/Olympus"}},
		{"end before start", Contract{
			SizeMW: 10, PriceMWh: 45, Block: Block7x24,
			Start: time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC),
			End:   time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := tt.c
			assert.ErrorIs(t, c.Validate(facility), ErrInvalidContractParams)
		})
	}
}

func TestContractCovers(t *testing.T) {
	// 2024-01-01 is a Monday, 2024-01-06 a Saturday.
	mon := func(h int) time.Time { return time.Date(2024, 1, 1, h, 0, 0, 0, time.UTC) }
	sat := func(h int) time.Time { return time.Date(2024, 1, 6, h, 0, 0, 0, time.UTC) }

	tests := []struct {
		block ContractBlock
		at    time.Time
		want  bool
	}{
		{Block7x24, mon(3), true},
		{Block7x24, sat(23), true},
		{Block5x16, mon(6), true},
		{Block5x16, mon(21), true},
		{Block5x16, mon(22), false},
		{Block5x16, mon(5), false},
		{Block5x16, sat(12), false},
		{Block2x16, sat(12), true},
		{Block2x16, sat(22), false},
		{Block2x16, mon(12), false},
		{Block7x8, mon(22), true},
		{Block7x8, sat(5), true},
		{Block7x8, mon(6), false},
	}
	for _, tt := range tests {
		c := &Contract{SizeMW: 1, PriceMWh: 1, Block: tt.block}
		assert.Equal(t, tt.want, c.Covers(tt.at), "%s at %s", tt.block, tt.at.Format(time.RFC3339))
	}

	var none *Contract
	assert.False(t, none.Covers(mon(12)))
}

func TestContractCoversTermAndTimezone(t *testing.T) {
	c := &Contract{
		SizeMW: 10, PriceMWh: 40, Block: Block7x24,
		Start: time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC),
		End:   time.Date(2024, 1, 3, 0, 0, 0, 0, time.UTC),
	}
	require.NoError(t, c.Validate(FacilityParams{SizeMW: 10, EfficiencyWPerTH: 30}))
	assert.False(t, c.Covers(time.Date(2024, 1, 1, 23, 0, 0, 0, time.UTC)))
	assert.True(t, c.Covers(time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC)))
	assert.False(t, c.Covers(time.Date(2024, 1, 3, 0, 0, 0, 0, time.UTC)), "end is exclusive")

	// 12:00 UTC Monday is 06:00 in Chicago (CST, UTC-6).
	tz := &Contract{SizeMW: 10, PriceMWh: 40, Block: Block5x16, Timezone: "America/Chicago"}
	require.NoError(t, tz.Validate(FacilityParams{SizeMW: 10, EfficiencyWPerTH: 30}))
	assert.True(t, tz.Covers(time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)))
	assert.False(t, tz.Covers(time.Date(2024, 1, 1, 11, 0, 0, 0, time.UTC)))
}

func TestParseContractBlock(t *testing.T) {
	b, err := ParseContractBlock(" 5X16 ")
	require.NoError(t, err)
	assert.Equal(t, Block5x16, b)

	_, err = ParseContractBlock("weekdays")
	assert.ErrorIs(t, err, ErrInvalidContractParams)
}

func TestValidateSeries(t *testing.T) {
	t0 := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	at := func(h int) HourlyRecord { return HourlyRecord{Timestamp: t0.Add(time.Duration(h) * time.Hour)} }

	assert.NoError(t, ValidateSeries(nil))
	assert.NoError(t, ValidateSeries([]HourlyRecord{at(0), at(1), at(2)}))
	assert.ErrorIs(t, ValidateSeries([]HourlyRecord{at(0), at(0)}), ErrInvalidSeries)
	assert.ErrorIs(t, ValidateSeries([]HourlyRecord{at(1), at(0)}), ErrInvalidSeries)
	assert.ErrorIs(t, ValidateSeries([]HourlyRecord{at(0), at(2)}), ErrMissingMarketData)
}

func TestHourlyGrid(t *testing.T) {
	start := time.Date(2024, 1, 1, 0, 30, 0, 0, time.UTC)
	grid := HourlyGrid(start, start.Add(3*time.Hour))
	require.Len(t, grid, 4)
	assert.Equal(t, time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC), grid[0])
	assert.Equal(t, time.Date(2024, 1, 1, 3, 0, 0, 0, time.UTC), grid[3])

	assert.Empty(t, HourlyGrid(start, start.Add(-2*time.Hour)))
}

func TestMissing(t *testing.T) {
	r := HourlyRecord{ElectricityPrice: 30, Hashprice: Missing()}
	assert.True(t, IsMissing(r.Hashprice))
	assert.False(t, r.HasMarketData())
	r.Hashprice = 0.05
	assert.True(t, r.HasMarketData())
}

func TestCloneIsIndependent(t *testing.T) {
	base := []HourlyRecord{{ElectricityPrice: 10}}
	c := Clone(base)
	c[0].Operate = true
	assert.False(t, base[0].Operate)
}

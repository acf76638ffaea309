package data

import (
	"context"
	"math"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mining-dispatch/internal/model"
)

var day1 = time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

func hour(h int) time.Time { return day1.Add(time.Duration(h) * time.Hour) }

func TestDayRange(t *testing.T) {
	first, last := DayRange(time.Date(2024, 1, 1, 15, 0, 0, 0, time.UTC), time.Date(2024, 1, 2, 3, 0, 0, 0, time.UTC))
	assert.Equal(t, day1, first)
	assert.Equal(t, time.Date(2024, 1, 2, 23, 0, 0, 0, time.UTC), last)
}

func TestExpandDaily(t *testing.T) {
	points := []PricePoint{
		{Timestamp: day1.Add(24 * time.Hour), Value: 0.06},
		{Timestamp: day1.Add(6 * time.Hour), Value: 0.05},
	}
	out := ExpandDaily(points, day1, day1.Add(47*time.Hour))
	require.Len(t, out, 48)
	assert.True(t, math.IsNaN(out[0].Value), "hours before the first point stay missing")
	assert.True(t, math.IsNaN(out[5].Value))
	assert.Equal(t, 0.05, out[6].Value)
	assert.Equal(t, 0.05, out[23].Value)
	assert.Equal(t, 0.06, out[24].Value)
	assert.Equal(t, 0.06, out[47].Value)
	assert.Equal(t, day1.Add(24*time.Hour), points[0].Timestamp, "input order untouched")
}

func TestMerge(t *testing.T) {
	prices := []PricePoint{
		{Timestamp: hour(0), Value: 20},
		{Timestamp: hour(2), Value: 40},
	}
	hashes := []PricePoint{
		{Timestamp: hour(0), Value: 0.05},
		{Timestamp: hour(1), Value: 0.05},
	}
	recs := Merge(prices, hashes, hour(0), hour(2))
	require.Len(t, recs, 3)
	require.NoError(t, model.ValidateSeries(recs))

	assert.True(t, recs[0].HasMarketData())
	assert.True(t, model.IsMissing(recs[1].ElectricityPrice))
	assert.Equal(t, 0.05, recs[1].Hashprice)
	assert.Equal(t, 40.0, recs[2].ElectricityPrice)
	assert.True(t, model.IsMissing(recs[2].Hashprice))
}

func TestParseGapPolicy(t *testing.T) {
	p, err := ParseGapPolicy("")
	require.NoError(t, err)
	assert.Equal(t, GapFlag, p)

	p, err = ParseGapPolicy(" FFILL ")
	require.NoError(t, err)
	assert.Equal(t, GapForwardFill, p)

	_, err = ParseGapPolicy("drop")
	assert.Error(t, err)
}

func gappy() []model.HourlyRecord {
	nan := model.Missing()
	prices := []float64{nan, 10, nan, nan, 40, nan}
	hashes := []float64{0.05, nan, 0.05, 0.05, 0.05, 0.05}
	out := make([]model.HourlyRecord, len(prices))
	for i := range prices {
		out[i] = model.HourlyRecord{Timestamp: hour(i), ElectricityPrice: prices[i], Hashprice: hashes[i]}
	}
	return out
}

func TestFillGaps(t *testing.T) {
	in := gappy()

	t.Run("flag", func(t *testing.T) {
		out, n := FillGaps(in, GapFlag, 0)
		assert.Zero(t, n)
		assert.True(t, model.IsMissing(out[0].ElectricityPrice))
	})

	t.Run("ffill", func(t *testing.T) {
		out, n := FillGaps(in, GapForwardFill, 0)
		assert.True(t, model.IsMissing(out[0].ElectricityPrice), "leading gap stays")
		assert.False(t, out[0].Filled)
		assert.Equal(t, 10.0, out[2].ElectricityPrice)
		assert.Equal(t, 10.0, out[3].ElectricityPrice)
		assert.Equal(t, 40.0, out[5].ElectricityPrice)
		assert.Equal(t, 0.05, out[1].Hashprice)
		assert.True(t, out[1].Filled)
		assert.Equal(t, 4, n)
	})

	t.Run("interpolate", func(t *testing.T) {
		out, n := FillGaps(in, GapInterpolate, 0)
		assert.Equal(t, 10.0, out[0].ElectricityPrice, "leading edge extends first value")
		assert.InDelta(t, 20, out[2].ElectricityPrice, 1e-9)
		assert.InDelta(t, 30, out[3].ElectricityPrice, 1e-9)
		assert.Equal(t, 40.0, out[5].ElectricityPrice, "trailing edge extends last value")
		assert.Equal(t, 5, n)
		for _, r := range out {
			assert.True(t, r.HasMarketData())
		}
	})

	t.Run("fallback", func(t *testing.T) {
		out, n := FillGaps(in, GapFallback, 0.07)
		assert.Equal(t, 0.07, out[1].Hashprice)
		assert.True(t, out[1].Filled)
		assert.True(t, model.IsMissing(out[2].ElectricityPrice), "prices are not filled")
		assert.Equal(t, 1, n)
	})

	assert.True(t, model.IsMissing(in[2].ElectricityPrice), "input must not be modified")
}

func TestReadElectricityCSV(t *testing.T) {
	points, err := LoadElectricityCSV("testdata/electricity.csv")
	require.NoError(t, err)
	require.Len(t, points, 5, "unparseable row is skipped")
	assert.Equal(t, day1, points[0].Timestamp)
	assert.Equal(t, 25.5, points[0].Value)
	assert.Equal(t, -5.0, points[2].Value)
	assert.Equal(t, 40.0, points[4].Value)
}

func TestReadElectricityCSVSemicolonSubHourly(t *testing.T) {
	in := "\xef\xbb\xbfDatetime;Price ($/MWh)\n" +
		"2024-01-01T00:00:00Z;10\n" +
		"2024-01-01T00:15:00Z;20\n" +
		"2024-01-01T00:30:00Z;30\n" +
		"2024-01-01T00:45:00Z;40\n" +
		"2024-01-01T01:00:00Z;50\n"
	points, err := ReadElectricityCSV(strings.NewReader(in))
	require.NoError(t, err)
	require.Len(t, points, 2)
	assert.InDelta(t, 25, points[0].Value, 1e-9)
	assert.Equal(t, 50.0, points[1].Value)
}

func TestReadElectricityCSVUnknownHeader(t *testing.T) {
	_, err := ReadElectricityCSV(strings.NewReader("a,b\n1,2\n"))
	assert.Error(t, err)

	_, err = ReadElectricityCSV(strings.NewReader(""))
	assert.Error(t, err)
}

func TestFileProvider(t *testing.T) {
	p := FileProvider{ElectricityCSV: "testdata/electricity.csv", HashpriceCSV: "testdata/hashprice.csv"}
	recs, err := p.Fetch(context.Background(), day1, day1)
	require.NoError(t, err)
	require.Len(t, recs, 24)
	assert.Equal(t, 25.5, recs[0].ElectricityPrice)
	assert.Equal(t, 0.05, recs[0].Hashprice)
	assert.True(t, model.IsMissing(recs[4].ElectricityPrice))
	assert.Equal(t, 0.05, recs[23].Hashprice)
}

func TestResolvingProvider(t *testing.T) {
	inner := FileProvider{ElectricityCSV: "testdata/electricity.csv", HashpriceCSV: "testdata/hashprice.csv"}

	p := ResolvingProvider{Provider: inner, Policy: GapForwardFill}
	recs, err := p.Fetch(context.Background(), day1, day1.Add(24*time.Hour))
	require.NoError(t, err)
	require.Len(t, recs, 48)
	for _, r := range recs {
		assert.True(t, r.HasMarketData(), r.Timestamp)
	}
	assert.Equal(t, 80.25, recs[10].ElectricityPrice)
	assert.Equal(t, 0.055, recs[30].Hashprice)

	_, err = p.Fetch(context.Background(), day1.AddDate(1, 0, 0), day1.AddDate(1, 0, 0))
	require.NoError(t, err, "file provider always returns the full grid")

	empty := ResolvingProvider{Provider: SnapshotProvider{Path: writeSnapshot(t, nil)}}
	_, err = empty.Fetch(context.Background(), day1, day1)
	assert.ErrorIs(t, err, model.ErrEmptySeries)
}

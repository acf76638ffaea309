package data

import (
	"sort"
	"time"

	"mining-dispatch/internal/model"
)

// PricePoint is one observation of a single market series.
type PricePoint struct {
	Timestamp time.Time
	Value     float64
}

func sortPoints(points []PricePoint) {
	sort.SliceStable(points, func(i, j int) bool {
		return points[i].Timestamp.Before(points[j].Timestamp)
	})
}

// DayRange returns the first and last hour of the inclusive date range
// [startDate 00:00, endDate 23:00] in UTC.
func DayRange(startDate, endDate time.Time) (time.Time, time.Time) {
	s := startDate.UTC()
	e := endDate.UTC()
	first := time.Date(s.Year(), s.Month(), s.Day(), 0, 0, 0, 0, time.UTC)
	last := time.Date(e.Year(), e.Month(), e.Day(), 23, 0, 0, 0, time.UTC)
	return first, last
}

// ExpandDaily forward-fills points onto the hourly grid [start, end]. Hours
// before the first point are missing.
func ExpandDaily(points []PricePoint, start, end time.Time) []PricePoint {
	sorted := append([]PricePoint(nil), points...)
	sortPoints(sorted)

	grid := model.HourlyGrid(start, end)
	out := make([]PricePoint, len(grid))
	j := 0
	last := model.Missing()
	for i, ts := range grid {
		for j < len(sorted) && !sorted[j].Timestamp.After(ts) {
			if !model.IsMissing(sorted[j].Value) {
				last = sorted[j].Value
			}
			j++
		}
		out[i] = PricePoint{Timestamp: ts, Value: last}
	}
	return out
}

// Merge aligns hourly prices and hashprices onto the grid [start, end]. An
// hour absent from either side is kept with that value missing, so gaps stay
// visible to the gap policy and the economics model.
func Merge(prices, hashprices []PricePoint, start, end time.Time) []model.HourlyRecord {
	priceAt := index(prices)
	hashAt := index(hashprices)

	grid := model.HourlyGrid(start, end)
	out := make([]model.HourlyRecord, len(grid))
	for i, ts := range grid {
		r := model.HourlyRecord{
			Timestamp:        ts,
			ElectricityPrice: model.Missing(),
			Hashprice:        model.Missing(),
		}
		if v, ok := priceAt[ts.Unix()]; ok {
			r.ElectricityPrice = v
		}
		if v, ok := hashAt[ts.Unix()]; ok {
			r.Hashprice = v
		}
		out[i] = r
	}
	return out
}

func index(points []PricePoint) map[int64]float64 {
	m := make(map[int64]float64, len(points))
	for _, p := range points {
		m[p.Timestamp.UTC().Truncate(time.Hour).Unix()] = p.Value
	}
	return m
}

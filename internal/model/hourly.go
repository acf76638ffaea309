package model

import (
	"fmt"
	"math"
	"time"
)

// HourlyRecord is one hour of the analysis window.
//
// ElectricityPrice is $/MWh and Hashprice is $/TH/day. A missing value is
// NaN (see Missing) and must be resolved upstream before the economics model
// runs; it is never treated as zero.
//
// Revenue, Cost and Profit are the counterfactual "if operating this hour"
// figures and are populated for every hour. Operate is the dispatch decision
// of exactly one strategy.
type HourlyRecord struct {
	Timestamp time.Time `json:"timestamp"`

	ElectricityPrice float64 `json:"electricity_price"`
	Hashprice        float64 `json:"hashprice"`

	// Filled marks hours where a gap policy synthesized a price or hashprice.
	Filled bool `json:"filled,omitempty"`

	Revenue float64 `json:"revenue"`
	Cost    float64 `json:"cost"`
	Profit  float64 `json:"profit"`

	Operate bool `json:"operate"`
}

// Missing is the marker for an absent price or hashprice.
func Missing() float64 { return math.NaN() }

func IsMissing(v float64) bool { return math.IsNaN(v) }

// HasMarketData reports whether both inputs of the hour are present.
func (r HourlyRecord) HasMarketData() bool {
	return !IsMissing(r.ElectricityPrice) && !IsMissing(r.Hashprice)
}

// ValidateSeries checks that timestamps are strictly increasing and exactly one
// hour apart. Duplicate or out-of-order hours are ErrInvalidSeries; a skipped
// hour is ErrMissingMarketData.
func ValidateSeries(records []HourlyRecord) error {
	for i := 1; i < len(records); i++ {
		prev := records[i-1].Timestamp
		cur := records[i].Timestamp
		step := cur.Sub(prev)
		switch {
		case step <= 0:
			return fmt.Errorf("%w: timestamp %s at index %d does not follow %s",
				ErrInvalidSeries, cur.Format(time.RFC3339), i, prev.Format(time.RFC3339))
		case step != time.Hour:
			return fmt.Errorf("%w: %d hour(s) absent between %s and %s",
				ErrMissingMarketData, int(step/time.Hour)-1, prev.Format(time.RFC3339), cur.Format(time.RFC3339))
		}
	}
	return nil
}

// HourlyGrid returns every hour start in [start, end] inclusive, truncated to
// the hour in UTC.
func HourlyGrid(start, end time.Time) []time.Time {
	s := start.UTC().Truncate(time.Hour)
	e := end.UTC().Truncate(time.Hour)
	if e.Before(s) {
		return nil
	}
	out := make([]time.Time, 0, int(e.Sub(s)/time.Hour)+1)
	for t := s; !t.After(e); t = t.Add(time.Hour) {
		out = append(out, t)
	}
	return out
}

// Clone returns a copy so callers can annotate or decide without touching the
// shared base series.
func Clone(records []HourlyRecord) []HourlyRecord {
	out := make([]HourlyRecord, len(records))
	copy(out, records)
	return out
}

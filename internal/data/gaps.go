package data

import (
	"fmt"
	"strings"

	"mining-dispatch/internal/model"
)

// GapPolicy decides what happens to hours with a missing price or hashprice
// before the economics model sees them.
type GapPolicy string

const (
	// GapFlag leaves gaps in place; annotating the series then fails with
	// ErrMissingMarketData.
	GapFlag GapPolicy = "flag"
	// GapForwardFill carries the last known value forward. Leading gaps stay.
	GapForwardFill GapPolicy = "ffill"
	// GapInterpolate fills linearly between known neighbours and extends the
	// first/last known value over the edges.
	GapInterpolate GapPolicy = "interpolate"
	// GapFallback replaces missing hashprice with a configured constant.
	// Missing electricity prices are left flagged.
	GapFallback GapPolicy = "fallback"
)

func ParseGapPolicy(s string) (GapPolicy, error) {
	switch p := GapPolicy(strings.ToLower(strings.TrimSpace(s))); p {
	case "":
		return GapFlag, nil
	case GapFlag, GapForwardFill, GapInterpolate, GapFallback:
		return p, nil
	default:
		return "", fmt.Errorf("unknown gap policy %q (want flag, ffill, interpolate or fallback)", s)
	}
}

// FillGaps returns a copy of records with gaps resolved per policy and the
// number of hours that were synthesized. Every touched hour has Filled set.
func FillGaps(records []model.HourlyRecord, policy GapPolicy, fallbackHashprice float64) ([]model.HourlyRecord, int) {
	out := model.Clone(records)
	if policy == GapFlag || policy == "" {
		return out, 0
	}

	prices := make([]float64, len(out))
	hashes := make([]float64, len(out))
	for i, r := range out {
		prices[i] = r.ElectricityPrice
		hashes[i] = r.Hashprice
	}

	var pFilled, hFilled []bool
	switch policy {
	case GapForwardFill:
		pFilled = forwardFill(prices)
		hFilled = forwardFill(hashes)
	case GapInterpolate:
		pFilled = interpolate(prices)
		hFilled = interpolate(hashes)
	case GapFallback:
		pFilled = make([]bool, len(prices))
		hFilled = constantFill(hashes, fallbackHashprice)
	}

	n := 0
	for i := range out {
		out[i].ElectricityPrice = prices[i]
		out[i].Hashprice = hashes[i]
		if pFilled[i] || hFilled[i] {
			out[i].Filled = true
			n++
		}
	}
	return out, n
}

func forwardFill(vals []float64) []bool {
	filled := make([]bool, len(vals))
	last := model.Missing()
	for i, v := range vals {
		if !model.IsMissing(v) {
			last = v
			continue
		}
		if !model.IsMissing(last) {
			vals[i] = last
			filled[i] = true
		}
	}
	return filled
}

func interpolate(vals []float64) []bool {
	filled := make([]bool, len(vals))
	prev := -1
	for i := 0; i <= len(vals); i++ {
		if i < len(vals) && model.IsMissing(vals[i]) {
			continue
		}
		// vals[prev+1:i] is a gap bounded by prev and i (either may be out of range).
		if i-prev > 1 {
			for k := prev + 1; k < i; k++ {
				switch {
				case prev >= 0 && i < len(vals):
					frac := float64(k-prev) / float64(i-prev)
					vals[k] = vals[prev] + (vals[i]-vals[prev])*frac
				case prev >= 0:
					vals[k] = vals[prev]
				case i < len(vals):
					vals[k] = vals[i]
				default:
					continue
				}
				filled[k] = true
			}
		}
		prev = i
	}
	return filled
}

func constantFill(vals []float64, c float64) []bool {
	filled := make([]bool, len(vals))
	if model.IsMissing(c) {
		return filled
	}
	for i, v := range vals {
		if model.IsMissing(v) {
			vals[i] = c
			filled[i] = true
		}
	}
	return filled
}

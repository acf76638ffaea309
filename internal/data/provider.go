// Package data loads electricity prices and hashprice and aligns them into an
// hourly series for the economics model.
package data

import (
	"context"
	"fmt"
	"time"

	"mining-dispatch/internal/logger"
	"mining-dispatch/internal/model"
)

// Provider returns the merged hourly series for the dates [start, end]
// (00:00 of start through 23:00 of end, UTC). Hours with no data are present
// with missing values.
type Provider interface {
	Fetch(ctx context.Context, start, end time.Time) ([]model.HourlyRecord, error)
}

// HashpriceSource is anything that can produce hashprice observations.
type HashpriceSource interface {
	Hashprice(ctx context.Context, start, end time.Time) ([]PricePoint, error)
}

// FileProvider reads both series from CSV exports.
type FileProvider struct {
	ElectricityCSV string
	HashpriceCSV   string
}

func (p FileProvider) Fetch(_ context.Context, start, end time.Time) ([]model.HourlyRecord, error) {
	prices, err := LoadElectricityCSV(p.ElectricityCSV)
	if err != nil {
		return nil, fmt.Errorf("load electricity prices: %w", err)
	}
	hashes, err := LoadHashpriceCSV(p.HashpriceCSV)
	if err != nil {
		return nil, fmt.Errorf("load hashprice: %w", err)
	}
	first, last := DayRange(start, end)
	return Merge(prices, ExpandDaily(hashes, first, last), first, last), nil
}

// RemoteProvider reads prices from CSV and hashprice from an API.
type RemoteProvider struct {
	ElectricityCSV string
	Hashprice      HashpriceSource
}

func (p RemoteProvider) Fetch(ctx context.Context, start, end time.Time) ([]model.HourlyRecord, error) {
	prices, err := LoadElectricityCSV(p.ElectricityCSV)
	if err != nil {
		return nil, fmt.Errorf("load electricity prices: %w", err)
	}
	hashes, err := p.Hashprice.Hashprice(ctx, start, end)
	if err != nil {
		return nil, fmt.Errorf("fetch hashprice: %w", err)
	}
	first, last := DayRange(start, end)
	return Merge(prices, ExpandDaily(hashes, first, last), first, last), nil
}

// SnapshotProvider serves a previously saved market snapshot on the hourly
// grid of the requested dates. Hours the snapshot lacks come back missing; an
// empty snapshot yields no records.
type SnapshotProvider struct {
	Path string
}

func (p SnapshotProvider) Fetch(_ context.Context, start, end time.Time) ([]model.HourlyRecord, error) {
	records, err := LoadMarketJSON(p.Path)
	if err != nil {
		return nil, err
	}
	if len(records) == 0 {
		return nil, nil
	}
	byHour := make(map[int64]model.HourlyRecord, len(records))
	for _, r := range records {
		byHour[r.Timestamp.UTC().Truncate(time.Hour).Unix()] = r
	}

	first, last := DayRange(start, end)
	grid := model.HourlyGrid(first, last)
	out := make([]model.HourlyRecord, len(grid))
	for i, ts := range grid {
		r, ok := byHour[ts.Unix()]
		if !ok {
			r = model.HourlyRecord{ElectricityPrice: model.Missing(), Hashprice: model.Missing()}
		}
		r.Timestamp = ts
		out[i] = r
	}
	return out, nil
}

// ResolvingProvider applies a gap policy to whatever the wrapped provider
// returns.
type ResolvingProvider struct {
	Provider          Provider
	Policy            GapPolicy
	FallbackHashprice float64
	Log               *logger.Logger
}

func (p ResolvingProvider) Fetch(ctx context.Context, start, end time.Time) ([]model.HourlyRecord, error) {
	records, err := p.Provider.Fetch(ctx, start, end)
	if err != nil {
		return nil, err
	}
	if len(records) == 0 {
		return nil, fmt.Errorf("no market data between %s and %s: %w",
			start.Format("2006-01-02"), end.Format("2006-01-02"), model.ErrEmptySeries)
	}

	missing := 0
	for _, r := range records {
		if !r.HasMarketData() {
			missing++
		}
	}
	filled, n := FillGaps(records, p.Policy, p.FallbackHashprice)

	log := p.Log
	if log == nil {
		log = logger.Nop()
	}
	if missing > 0 {
		log.WarnContext(ctx, "market data has gaps",
			logger.IntField("hours", len(records)),
			logger.IntField("missing_hours", missing),
			logger.IntField("filled_hours", n),
			logger.StringField("gap_policy", string(p.Policy)))
	}
	return filled, nil
}

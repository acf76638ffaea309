package backtest

import (
	"fmt"
	"time"

	"mining-dispatch/internal/model"
	"mining-dispatch/internal/strategy"
)

// WindowResult is one window of a rolling backtest.
type WindowResult struct {
	WindowStart time.Time
	WindowEnd   time.Time
	Summary     Summary
}

// Rolling re-runs strat over [start, start+windowDays) windows stepping by
// stepDays, to show how stable a strategy is over time. The strategy is
// re-applied inside each window, so window-global strategies (percentile) see
// only that window. Windows that would extend past the series are not run.
func (e *Engine) Rolling(records []model.HourlyRecord, strat strategy.Strategy, windowDays, stepDays int) ([]WindowResult, error) {
	if len(records) == 0 {
		return nil, fmt.Errorf("rolling backtest: %w", model.ErrEmptySeries)
	}
	if windowDays < 1 || stepDays < 1 {
		return nil, fmt.Errorf("rolling backtest: window and step must be >= 1 day, got %d/%d", windowDays, stepDays)
	}

	first := records[0].Timestamp
	last := records[len(records)-1].Timestamp
	window := time.Duration(windowDays) * 24 * time.Hour
	step := time.Duration(stepDays) * 24 * time.Hour

	var out []WindowResult
	lo := 0
	for start := first; !start.Add(window).After(last); start = start.Add(step) {
		end := start.Add(window)
		for lo < len(records) && records[lo].Timestamp.Before(start) {
			lo++
		}
		hi := lo
		for hi < len(records) && records[hi].Timestamp.Before(end) {
			hi++
		}
		if hi == lo {
			continue
		}
		res, err := e.Backtest(records[lo:hi], strat)
		if err != nil {
			continue
		}
		out = append(out, WindowResult{WindowStart: start, WindowEnd: end, Summary: res.Summary})
	}
	return out, nil
}

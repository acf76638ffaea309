package analysis

import (
	"context"
	"fmt"
	"sort"

	"golang.org/x/sync/errgroup"

	"mining-dispatch/internal/backtest"
	"mining-dispatch/internal/model"
	"mining-dispatch/internal/strategy"
)

// Entry is one labelled strategy to compare.
type Entry struct {
	Name     string
	Strategy strategy.Strategy
}

type Ranked struct {
	Rank     int
	Name     string
	Strategy string
	Result   *backtest.Result
}

// Compare backtests every entry against the same annotated series and ranks
// the results by TotalProfit, highest first. Ties keep input order.
func Compare(records []model.HourlyRecord, entries []Entry) ([]Ranked, error) {
	if len(records) == 0 {
		return nil, fmt.Errorf("compare: %w", model.ErrEmptySeries)
	}
	eng := backtest.New()
	results := make([]*backtest.Result, len(entries))
	for i, e := range entries {
		res, err := eng.Backtest(records, e.Strategy)
		if err != nil {
			return nil, fmt.Errorf("compare %q: %w", e.Name, err)
		}
		results[i] = res
	}
	return rank(entries, results), nil
}

// CompareParallel is Compare with up to limit backtests running at once.
// limit <= 0 means no limit. Output is identical to Compare.
func CompareParallel(ctx context.Context, records []model.HourlyRecord, entries []Entry, limit int) ([]Ranked, error) {
	if len(records) == 0 {
		return nil, fmt.Errorf("compare: %w", model.ErrEmptySeries)
	}
	g, ctx := errgroup.WithContext(ctx)
	if limit > 0 {
		g.SetLimit(limit)
	}

	eng := backtest.New()
	results := make([]*backtest.Result, len(entries))
	for i, e := range entries {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			res, err := eng.Backtest(records, e.Strategy)
			if err != nil {
				return fmt.Errorf("compare %q: %w", e.Name, err)
			}
			results[i] = res
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return rank(entries, results), nil
}

func rank(entries []Entry, results []*backtest.Result) []Ranked {
	out := make([]Ranked, len(entries))
	for i, e := range entries {
		out[i] = Ranked{Name: e.Name, Strategy: e.Strategy.Name(), Result: results[i]}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Result.Summary.TotalProfit > out[j].Result.Summary.TotalProfit
	})
	for i := range out {
		out[i].Rank = i + 1
	}
	return out
}

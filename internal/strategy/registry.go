package strategy

import (
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"

	"mining-dispatch/internal/model"
)

// Factory builds a strategy from loosely typed params (decoded YAML or JSON).
type Factory func(params map[string]any) (Strategy, error)

// ParamInfo describes one strategy parameter for listings.
type ParamInfo struct {
	Name        string
	Type        string // "float", "int", "[]int"
	Description string
	Default     any
}

type Info struct {
	Name        string
	Description string
	Params      []ParamInfo
}

type entry struct {
	info    Info
	factory Factory
}

// Registry maps strategy names to factories so callers can iterate and build
// strategies uniformly.
type Registry struct {
	entries map[string]entry
}

func NewRegistry() *Registry {
	return &Registry{entries: map[string]entry{}}
}

func (r *Registry) Register(info Info, f Factory) {
	r.entries[info.Name] = entry{info: info, factory: f}
}

// Build returns ErrUnknownStrategy for unregistered names.
func (r *Registry) Build(name string, params map[string]any) (Strategy, error) {
	e, ok := r.entries[strings.TrimSpace(name)]
	if !ok {
		return nil, fmt.Errorf("%w: %q (available: %s)", model.ErrUnknownStrategy, name, strings.Join(r.Names(), ", "))
	}
	return e.factory(params)
}

func (r *Registry) Names() []string {
	out := make([]string, 0, len(r.entries))
	for k := range r.entries {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

func (r *Registry) Describe() []Info {
	out := make([]Info, 0, len(r.entries))
	for _, name := range r.Names() {
		out = append(out, r.entries[name].info)
	}
	return out
}

// Default returns a registry holding every built-in strategy.
func Default() *Registry {
	r := NewRegistry()

	r.Register(Info{
		Name:        "threshold",
		Description: "Operate when hourly profit is strictly above a minimum.",
		Params: []ParamInfo{
			{Name: "min_profit_threshold", Type: "float", Description: "Minimum hourly profit in $", Default: 0.0},
		},
	}, func(p map[string]any) (Strategy, error) {
		minProfit, err := floatParam(p, "min_profit_threshold", 0)
		if err != nil {
			return nil, err
		}
		return Threshold{MinProfit: minProfit}, nil
	})

	r.Register(Info{
		Name:        "percentile",
		Description: "Operate during hours at or above the p-th profit percentile of the whole window (non-causal).",
		Params: []ParamInfo{
			{Name: "percentile", Type: "float", Description: "Percentile p in [0, 100]", Default: 50.0},
		},
	}, func(p map[string]any) (Strategy, error) {
		pct, err := floatParam(p, "percentile", 50)
		if err != nil {
			return nil, err
		}
		return NewPercentile(pct)
	})

	r.Register(Info{
		Name:        "rolling_average",
		Description: "Operate when profit beats the trailing mean profit of the previous w hours.",
		Params: []ParamInfo{
			{Name: "window_hours", Type: "int", Description: "Trailing window w in hours", Default: 24},
			{Name: "threshold_multiplier", Type: "float", Description: "Multiplier applied to the trailing mean", Default: 1.0},
		},
	}, func(p map[string]any) (Strategy, error) {
		w, err := intParam(p, "window_hours", 24)
		if err != nil {
			return nil, err
		}
		mult, err := floatParam(p, "threshold_multiplier", 1)
		if err != nil {
			return nil, err
		}
		return NewRollingAverage(w, mult)
	})

	r.Register(Info{
		Name:        "peak_avoidance",
		Description: "Operate when profitable and the hour is not a peak (price ceiling and/or peak hours).",
		Params: []ParamInfo{
			{Name: "min_profit_threshold", Type: "float", Description: "Minimum hourly profit in $", Default: 0.0},
			{Name: "peak_price_ceiling", Type: "float", Description: "Highest electricity price in $/MWh to operate at; omit for no ceiling"},
			{Name: "peak_hours", Type: "[]int", Description: "UTC hours of day (0-23) never operated"},
		},
	}, func(p map[string]any) (Strategy, error) {
		minProfit, err := floatParam(p, "min_profit_threshold", 0)
		if err != nil {
			return nil, err
		}
		ceiling, err := optionalFloatParam(p, "peak_price_ceiling")
		if err != nil {
			return nil, err
		}
		hours, err := intListParam(p, "peak_hours")
		if err != nil {
			return nil, err
		}
		return NewPeakAvoidance(minProfit, ceiling, hours)
	})

	r.Register(Info{
		Name:        "always_on",
		Description: "Operate every hour; baseline for comparisons.",
	}, func(map[string]any) (Strategy, error) {
		return AlwaysOn{}, nil
	})

	return r
}

func floatParam(m map[string]any, key string, def float64) (float64, error) {
	v, ok := m[key]
	if !ok || v == nil {
		return def, nil
	}
	f, ok := toFloat(v)
	if !ok {
		return 0, fmt.Errorf("%w: %s must be a number, got %T", model.ErrInvalidStrategyParams, key, v)
	}
	return f, nil
}

func optionalFloatParam(m map[string]any, key string) (*float64, error) {
	v, ok := m[key]
	if !ok || v == nil {
		return nil, nil
	}
	f, ok := toFloat(v)
	if !ok {
		return nil, fmt.Errorf("%w: %s must be a number, got %T", model.ErrInvalidStrategyParams, key, v)
	}
	return &f, nil
}

func intParam(m map[string]any, key string, def int) (int, error) {
	v, ok := m[key]
	if !ok || v == nil {
		return def, nil
	}
	n, ok := toInt(v)
	if !ok {
		return 0, fmt.Errorf("%w: %s must be an integer, got %v", model.ErrInvalidStrategyParams, key, v)
	}
	return n, nil
}

func intListParam(m map[string]any, key string) ([]int, error) {
	v, ok := m[key]
	if !ok || v == nil {
		return nil, nil
	}
	switch xs := v.(type) {
	case []int:
		return xs, nil
	case []any:
		out := make([]int, 0, len(xs))
		for _, x := range xs {
			n, ok := toInt(x)
			if !ok {
				return nil, fmt.Errorf("%w: %s must hold integers, got %v", model.ErrInvalidStrategyParams, key, x)
			}
			out = append(out, n)
		}
		return out, nil
	}
	return nil, fmt.Errorf("%w: %s must be a list of integers, got %T", model.ErrInvalidStrategyParams, key, v)
}

// toFloat accepts finite numbers and numeric strings.
func toFloat(v any) (float64, bool) {
	f, ok := rawFloat(v)
	if !ok || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return f, true
}

// toInt accepts whole numbers that fit comfortably in an int.
func toInt(v any) (int, bool) {
	f, ok := toFloat(v)
	if !ok || f != math.Trunc(f) || math.Abs(f) > math.MaxInt32 {
		return 0, false
	}
	return int(f), true
}

func rawFloat(v any) (float64, bool) {
	switch x := v.(type) {
	case float64:
		return x, true
	case float32:
		return float64(x), true
	case int:
		return float64(x), true
	case int64:
		return float64(x), true
	case int32:
		return float64(x), true
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(x), 64)
		return f, err == nil
	}
	return 0, false
}

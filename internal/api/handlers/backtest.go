package handlers

import (
	"context"
	"fmt"
	"net/http"
	"runtime"
	"time"

	"github.com/gin-gonic/gin"

	"mining-dispatch/internal/analysis"
	"mining-dispatch/internal/api/models"
	"mining-dispatch/internal/backtest"
	"mining-dispatch/internal/config"
	"mining-dispatch/internal/data"
	"mining-dispatch/internal/economics"
	"mining-dispatch/internal/logger"
	"mining-dispatch/internal/model"
	"mining-dispatch/internal/strategy"
)

// Deps are the shared collaborators of the backtest handlers. Provider and
// Facilities may be nil; requests then have to carry their own market data
// and facility parameters.
type Deps struct {
	Registry          *strategy.Registry
	Provider          data.Provider
	Facilities        *FacilityHandler
	DefaultFacility   config.FacilityConfig
	DefaultStrategies []config.StrategyConfig
	Store             *ResultStore
	Log               *logger.Logger
}

// BacktestHandler handles backtest-related requests
type BacktestHandler struct {
	deps Deps
}

func NewBacktestHandler(deps Deps) *BacktestHandler {
	if deps.Registry == nil {
		deps.Registry = strategy.Default()
	}
	if deps.Store == nil {
		deps.Store = NewResultStore(time.Hour)
	}
	if deps.Log == nil {
		deps.Log = logger.Nop()
	}
	if deps.DefaultStrategies == nil {
		deps.DefaultStrategies = config.DefaultStrategies()
	}
	return &BacktestHandler{deps: deps}
}

// RunBacktest handles POST /api/v1/backtest
func (h *BacktestHandler) RunBacktest(c *gin.Context) {
	var req models.BacktestRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, "INVALID_REQUEST", err.Error())
		return
	}
	ctx := c.Request.Context()

	econ, err := h.buildModel(req.FacilityFile, req.Facility, req.Contract)
	if err != nil {
		respondErr(c, err)
		return
	}
	strat, err := h.deps.Registry.Build(req.Strategy.Name, req.Strategy.Params)
	if err != nil {
		respondErr(c, err)
		return
	}

	records, err := h.loadMarket(ctx, req.MarketData, req.StartDate, req.EndDate, req.Options)
	if err != nil {
		respondErr(c, err)
		return
	}
	annotated, err := econ.Annotate(records)
	if err != nil {
		respondErr(c, err)
		return
	}

	result, err := backtest.New().Backtest(annotated, strat)
	if err != nil {
		respondErr(c, err)
		return
	}
	if req.Strategy.Label != "" {
		result.Strategy = req.Strategy.Label
	}
	id := h.deps.Store.Put(result)

	h.deps.Log.InfoContext(ctx, "backtest completed",
		logger.StringField("id", id),
		logger.StringField("strategy", result.Strategy),
		logger.IntField("hours", result.Summary.TotalHours),
		logger.FloatField("total_profit", result.Summary.TotalProfit))

	c.JSON(http.StatusOK, buildResponse(id, result, req.Options))
}

// GetLedger handles GET /api/v1/backtest/:id/ledger
func (h *BacktestHandler) GetLedger(c *gin.Context) {
	id := c.Param("id")
	result, ok := h.deps.Store.Get(id)
	if !ok {
		respondError(c, http.StatusNotFound, "NOT_FOUND", fmt.Sprintf("no backtest result with id %q (results expire)", id))
		return
	}
	c.JSON(http.StatusOK, models.LedgerResponse{
		ID:       id,
		Strategy: result.Strategy,
		Ledger:   convertLedger(result.Ledger),
	})
}

// CompareBacktests handles POST /api/v1/backtest/compare
func (h *BacktestHandler) CompareBacktests(c *gin.Context) {
	var req models.CompareBacktestRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, "INVALID_REQUEST", err.Error())
		return
	}
	ctx := c.Request.Context()

	econ, err := h.buildModel(req.FacilityFile, req.Facility, req.Contract)
	if err != nil {
		respondErr(c, err)
		return
	}
	entries, err := h.buildEntries(req.Strategies)
	if err != nil {
		respondErr(c, err)
		return
	}

	records, err := h.loadMarket(ctx, req.MarketData, req.StartDate, req.EndDate, req.Options)
	if err != nil {
		respondErr(c, err)
		return
	}
	annotated, err := econ.Annotate(records)
	if err != nil {
		respondErr(c, err)
		return
	}

	ranked, err := analysis.CompareParallel(ctx, annotated, entries, runtime.NumCPU())
	if err != nil {
		respondErr(c, err)
		return
	}

	comparison := make([]models.ComparisonResult, 0, len(ranked))
	for _, r := range ranked {
		r.Result.Strategy = r.Name
		comparison = append(comparison, models.ComparisonResult{
			Rank:     r.Rank,
			ID:       h.deps.Store.Put(r.Result),
			Name:     r.Name,
			Strategy: r.Strategy,
			Summary:  buildSummary(r.Result),
		})
	}

	h.deps.Log.InfoContext(ctx, "comparison completed",
		logger.IntField("strategies", len(comparison)),
		logger.IntField("hours", len(annotated)))

	c.JSON(http.StatusOK, models.CompareBacktestResponse{
		Comparison: comparison,
	})
}

// Helper methods

func (h *BacktestHandler) buildEntries(reqs []models.StrategyConfig) ([]analysis.Entry, error) {
	cfgs := make([]config.StrategyConfig, 0, len(reqs))
	for _, s := range reqs {
		cfgs = append(cfgs, config.StrategyConfig{Label: s.Label, Strategy: s.Name, Params: s.Params})
	}
	if len(cfgs) == 0 {
		cfgs = h.deps.DefaultStrategies
	}

	cfg := config.Config{Strategies: cfgs}
	built, err := cfg.BuildStrategies(h.deps.Registry)
	if err != nil {
		return nil, err
	}
	entries := make([]analysis.Entry, len(built))
	for i, b := range built {
		entries[i] = analysis.Entry{Name: b.Label, Strategy: b.Strategy}
	}
	return entries, nil
}

// buildModel resolves facility parameters: preset file first, then request
// overrides. A request with neither uses the server's default facility.
func (h *BacktestHandler) buildModel(facilityFile string, f models.FacilityConfig, c *models.ContractConfig) (*economics.Model, error) {
	fc, err := h.resolveFacility(facilityFile, f)
	if err != nil {
		return nil, err
	}

	var contract *model.Contract
	if c != nil {
		cc := config.ContractConfig{
			SizeMW:   c.SizeMW,
			PriceMWh: c.PriceMWh,
			Block:    c.Block,
			Timezone: c.Timezone,
			Start:    c.Start,
			End:      c.End,
		}
		if cc.Block == "" {
			cc.Block = string(model.Block7x24)
		}
		if contract, err = cc.ToModel(); err != nil {
			return nil, err
		}
	}
	return economics.New(fc.ToModel(), contract)
}

func (h *BacktestHandler) resolveFacility(facilityFile string, f models.FacilityConfig) (config.FacilityConfig, error) {
	override := config.FacilityConfig{
		Name:             f.Name,
		SizeMW:           f.SizeMW,
		EfficiencyWPerTH: f.EfficiencyWPerTH,
	}
	if facilityFile != "" {
		if h.deps.Facilities == nil {
			return config.FacilityConfig{}, fmt.Errorf("%w: facility presets are not available", errInvalidRequest)
		}
		base, err := h.deps.Facilities.Load(facilityFile)
		if err != nil {
			return config.FacilityConfig{}, err
		}
		return config.MergeFacility(base, override), nil
	}
	if override.SizeMW == 0 && override.EfficiencyWPerTH == 0 {
		return config.MergeFacility(h.deps.DefaultFacility, override), nil
	}
	return override, nil
}

// loadMarket returns the request's inline market data, or the server
// provider's series for the requested dates, with the request's gap policy
// applied.
func (h *BacktestHandler) loadMarket(ctx context.Context, points []models.MarketPoint, startDate, endDate string, opts models.BacktestOptions) ([]model.HourlyRecord, error) {
	policy, err := data.ParseGapPolicy(opts.GapPolicy)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", errInvalidRequest, err)
	}

	var records []model.HourlyRecord
	if len(points) > 0 {
		records = pointsToRecords(points)
	} else {
		if h.deps.Provider == nil {
			return nil, errNoDataSource
		}
		start, end, err := parseDateRange(startDate, endDate)
		if err != nil {
			return nil, err
		}
		records, err = h.deps.Provider.Fetch(ctx, start, end)
		if err != nil {
			return nil, err
		}
	}

	filled, n := data.FillGaps(records, policy, opts.FallbackHashprice)
	if n > 0 {
		h.deps.Log.InfoContext(ctx, "filled market data gaps",
			logger.IntField("filled_hours", n),
			logger.StringField("gap_policy", string(policy)))
	}
	return filled, nil
}

func parseDateRange(startDate, endDate string) (time.Time, time.Time, error) {
	if startDate == "" || endDate == "" {
		return time.Time{}, time.Time{}, fmt.Errorf("%w: start_date and end_date are required without market_data", errInvalidRequest)
	}
	start, err := time.Parse("2006-01-02", startDate)
	if err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("%w: invalid start_date format (expected YYYY-MM-DD): %v", errInvalidRequest, err)
	}
	end, err := time.Parse("2006-01-02", endDate)
	if err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("%w: invalid end_date format (expected YYYY-MM-DD): %v", errInvalidRequest, err)
	}
	if end.Before(start) {
		return time.Time{}, time.Time{}, fmt.Errorf("%w: end_date is before start_date", errInvalidRequest)
	}
	return start, end, nil
}

func buildResponse(id string, result *backtest.Result, opts models.BacktestOptions) models.BacktestResponse {
	response := models.BacktestResponse{
		ID:       id,
		Status:   "completed",
		Strategy: result.Strategy,
		Summary:  buildSummary(result),
	}
	if opts.IncludeRisk {
		response.Risk = convertRisk(backtest.Risk(result.Ledger))
	}
	if roi, ok := backtest.ROI(result.Summary, opts.Investment); ok {
		response.ROI = convertROI(roi)
	}
	if opts.IncludeLedger {
		response.Ledger = convertLedger(result.Ledger)
	}
	return response
}

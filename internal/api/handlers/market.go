package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"mining-dispatch/internal/analysis"
	"mining-dispatch/internal/api/models"
	"mining-dispatch/internal/logger"
)

// MarketStats handles GET /api/v1/market/stats
func (h *BacktestHandler) MarketStats(c *gin.Context) {
	var req models.MarketStatsRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		respondError(c, http.StatusBadRequest, "INVALID_REQUEST", err.Error())
		return
	}
	ctx := c.Request.Context()

	econ, err := h.buildModel(req.FacilityFile, models.FacilityConfig{
		SizeMW:           req.SizeMW,
		EfficiencyWPerTH: req.EfficiencyWPerTH,
	}, nil)
	if err != nil {
		respondErr(c, err)
		return
	}

	records, err := h.loadMarket(ctx, nil, req.StartDate, req.EndDate, models.BacktestOptions{})
	if err != nil {
		respondErr(c, err)
		return
	}
	annotated, err := econ.Annotate(records)
	if err != nil {
		respondErr(c, err)
		return
	}

	stats := analysis.ComputeMarketStats(annotated, econ)
	h.deps.Log.InfoContext(ctx, "market stats computed",
		logger.StringField("start", req.StartDate),
		logger.StringField("end", req.EndDate),
		logger.IntField("hours", stats.Count))

	c.JSON(http.StatusOK, convertMarketStats(stats))
}

package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"mining-dispatch/internal/api/models"
	"mining-dispatch/internal/data"
	"mining-dispatch/internal/model"
)

var (
	errInvalidRequest = errors.New("invalid request")
	errNoDataSource   = errors.New("no market data source configured")
)

var domainErrors = []struct {
	err  error
	code string
}{
	{model.ErrInvalidFacilityParams, "INVALID_FACILITY"},
	{model.ErrInvalidContractParams, "INVALID_CONTRACT"},
	{model.ErrMissingMarketData, "MISSING_MARKET_DATA"},
	{model.ErrEmptySeries, "EMPTY_SERIES"},
	{model.ErrUnknownStrategy, "UNKNOWN_STRATEGY"},
	{model.ErrInvalidStrategyParams, "INVALID_STRATEGY_PARAMS"},
	{model.ErrInvalidSeries, "INVALID_SERIES"},
	{errInvalidRequest, "INVALID_REQUEST"},
}

func respondError(c *gin.Context, status int, code, message string) {
	c.JSON(status, models.ErrorResponse{
		Error: models.ErrorDetail{
			Code:    code,
			Message: message,
		},
	})
}

// respondErr maps an error from the data or backtest layers onto an HTTP
// status and error code.
func respondErr(c *gin.Context, err error) {
	var apiErr *data.APIError
	if errors.As(err, &apiErr) {
		statusCode := http.StatusBadRequest
		if apiErr.StatusCode == http.StatusForbidden || apiErr.StatusCode == http.StatusUnauthorized {
			statusCode = http.StatusUnauthorized
		} else if apiErr.StatusCode == http.StatusTooManyRequests {
			statusCode = http.StatusTooManyRequests
		}
		c.JSON(statusCode, models.ErrorResponse{
			Error: models.ErrorDetail{
				Code:    apiErr.Code,
				Message: apiErr.Message,
				Details: map[string]interface{}{
					"status_code": apiErr.StatusCode,
					"retry_after": apiErr.RetryAfter,
				},
			},
		})
		return
	}
	if errors.Is(err, errNoDataSource) {
		respondError(c, http.StatusServiceUnavailable, "NO_DATA_SOURCE", err.Error())
		return
	}
	for _, d := range domainErrors {
		if errors.Is(err, d.err) {
			respondError(c, http.StatusBadRequest, d.code, err.Error())
			return
		}
	}
	respondError(c, http.StatusInternalServerError, "BACKTEST_ERROR", err.Error())
}

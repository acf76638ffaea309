package model

import "errors"

// Error taxonomy for the dispatch core. Callers wrap these with context and
// match them with errors.Is.
var (
	ErrInvalidFacilityParams = errors.New("invalid facility params")
	ErrInvalidContractParams = errors.New("invalid contract params")
	ErrMissingMarketData     = errors.New("missing market data")
	ErrEmptySeries           = errors.New("empty series")
	ErrUnknownStrategy       = errors.New("unknown strategy")
	ErrInvalidStrategyParams = errors.New("invalid strategy params")
	ErrInvalidSeries         = errors.New("invalid series")
)

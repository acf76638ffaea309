// Package economics turns facility specs and hourly market data into per-hour
// revenue, cost and profit.
package economics

import (
	"fmt"
	"time"

	"mining-dispatch/internal/model"
)

// Model is constructed once per run from validated facility and contract
// parameters and is safe to reuse across series.
type Model struct {
	facility model.FacilityParams
	contract *model.Contract
	hashrate float64
}

// New validates the facility, then the optional contract, before any
// computation can happen.
func New(facility model.FacilityParams, contract *model.Contract) (*Model, error) {
	if err := facility.Validate(); err != nil {
		return nil, err
	}
	var c *model.Contract
	if contract != nil {
		cp := *contract
		if err := cp.Validate(facility); err != nil {
			return nil, err
		}
		c = &cp
	}
	return &Model{
		facility: facility,
		contract: c,
		hashrate: facility.HashrateTH(),
	}, nil
}

// Annotate is the parameter-list form of Model.Annotate without a contract.
func Annotate(records []model.HourlyRecord, facilitySizeMW, efficiencyWPerTH float64) ([]model.HourlyRecord, error) {
	m, err := New(model.FacilityParams{SizeMW: facilitySizeMW, EfficiencyWPerTH: efficiencyWPerTH}, nil)
	if err != nil {
		return nil, err
	}
	return m.Annotate(records)
}

func (m *Model) Facility() model.FacilityParams { return m.facility }

func (m *Model) HashrateTH() float64 { return m.hashrate }

// Annotate returns a copy of records with Revenue, Cost and Profit set for
// every hour. The input slice is not modified.
func (m *Model) Annotate(records []model.HourlyRecord) ([]model.HourlyRecord, error) {
	if err := model.ValidateSeries(records); err != nil {
		return nil, err
	}
	out := model.Clone(records)
	for i := range out {
		r := &out[i]
		if model.IsMissing(r.ElectricityPrice) {
			return nil, fmt.Errorf("%w: electricity price absent at %s", model.ErrMissingMarketData, r.Timestamp.Format(time.RFC3339))
		}
		if model.IsMissing(r.Hashprice) {
			return nil, fmt.Errorf("%w: hashprice absent at %s", model.ErrMissingMarketData, r.Timestamp.Format(time.RFC3339))
		}
		r.Revenue = m.HourlyRevenue(r.Hashprice)
		r.Cost = m.HourlyCost(r.Timestamp, r.ElectricityPrice)
		r.Profit = r.Revenue - r.Cost
	}
	return out, nil
}

// HourlyRevenue converts a $/TH/day hashprice into the facility's revenue for
// one hour.
func (m *Model) HourlyRevenue(hashprice float64) float64 {
	return m.hashrate * hashprice / 24
}

// HourlyCost is the cost of drawing full rated power for the hour starting at
// t. Contract hours settle the contracted capacity at the fixed price and the
// remainder at market.
func (m *Model) HourlyCost(t time.Time, price float64) float64 {
	if m.contract.Covers(t) {
		contracted := m.contract.SizeMW * m.contract.PriceMWh
		spot := (m.facility.SizeMW - m.contract.SizeMW) * price
		return contracted + spot
	}
	return m.facility.SizeMW * price
}

// BreakevenPrice is the market electricity price ($/MWh) at which a
// non-contract hour with the given hashprice has zero profit.
func (m *Model) BreakevenPrice(hashprice float64) float64 {
	return m.HourlyRevenue(hashprice) / m.facility.SizeMW
}

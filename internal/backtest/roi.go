package backtest

import "math"

type ROIMetrics struct {
	InitialInvestment  float64
	ROIPercentage      float64
	AnnualizedROI      float64
	PaybackPeriodYears float64 // +Inf when the period made no profit
	PeriodYears        float64
}

// ROI relates realized profit to an up-front investment. ok is false when
// investment is not positive.
func ROI(s Summary, investment float64) (ROIMetrics, bool) {
	if investment <= 0 {
		return ROIMetrics{}, false
	}
	years := s.End.Sub(s.Start).Hours() / 24 / 365.25
	m := ROIMetrics{
		InitialInvestment: investment,
		ROIPercentage:     s.TotalProfit / investment * 100,
		PeriodYears:       years,
	}
	if years > 0 {
		m.AnnualizedROI = m.ROIPercentage / years
	}
	m.PaybackPeriodYears = math.Inf(1)
	if s.TotalProfit > 0 && years > 0 {
		m.PaybackPeriodYears = investment / (s.TotalProfit / years)
	}
	return m, true
}

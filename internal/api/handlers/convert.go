package handlers

import (
	"math"
	"sort"
	"time"

	"mining-dispatch/internal/analysis"
	"mining-dispatch/internal/api/models"
	"mining-dispatch/internal/backtest"
	"mining-dispatch/internal/model"
)

func buildSummary(result *backtest.Result) models.BacktestSummary {
	s := result.Summary
	return models.BacktestSummary{
		BacktestWindow: models.TimeWindow{
			Start: s.Start,
			End:   s.End.Add(time.Hour),
		},
		TotalRevenue:              s.TotalRevenue,
		TotalCost:                 s.TotalCost,
		TotalProfit:               s.TotalProfit,
		OperatingHours:            s.OperatingHours,
		TotalHours:                s.TotalHours,
		FilledHours:               s.FilledHours,
		CapacityFactor:            s.CapacityFactor,
		AvgProfitPerOperatingHour: s.AvgProfitPerOperatingHour,
		ProfitMargin:              s.ProfitMargin,
		ProfitableHours:           s.ProfitableHours,
		UnprofitableHours:         s.UnprofitableHours,
		AvgElectricityPrice:       s.AvgElectricityPrice,
		AvgHashprice:              s.AvgHashprice,
		BestMonth:                 monthLabel(s.BestMonthStart),
		WorstMonth:                monthLabel(s.WorstMonthStart),
		OperatingWindows:          operatingWindows(result.Ledger),
	}
}

func monthLabel(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format("2006-01")
}

// operatingWindows groups operating hours by UTC day. A window runs from the
// first operating hour of the day to the end of the last one.
func operatingWindows(ledger []backtest.LedgerRow) []models.OperatingWindow {
	type dayKey struct {
		Year  int
		Month time.Month
		Day   int
	}
	type windowData struct {
		window   models.TimeWindow
		hours    int
		priceSum float64
		profit   float64
	}

	byDay := make(map[dayKey]*windowData)
	for _, row := range ledger {
		if !row.Operate {
			continue
		}
		ts := row.Timestamp.UTC()
		day := dayKey{Year: ts.Year(), Month: ts.Month(), Day: ts.Day()}
		if win, exists := byDay[day]; exists {
			win.window.End = ts.Add(time.Hour)
			win.hours++
			win.priceSum += row.ElectricityPrice
			win.profit += row.Profit
		} else {
			byDay[day] = &windowData{
				window:   models.TimeWindow{Start: ts, End: ts.Add(time.Hour)},
				hours:    1,
				priceSum: row.ElectricityPrice,
				profit:   row.Profit,
			}
		}
	}

	out := make([]models.OperatingWindow, 0, len(byDay))
	for _, w := range byDay {
		out = append(out, models.OperatingWindow{
			TimeWindow:          w.window,
			Hours:               w.hours,
			AvgElectricityPrice: w.priceSum / float64(w.hours),
			Profit:              w.profit,
		})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Start.Before(out[j].Start) })
	return out
}

func convertLedger(ledger []backtest.LedgerRow) []models.LedgerRow {
	out := make([]models.LedgerRow, len(ledger))
	for i, r := range ledger {
		out[i] = models.LedgerRow{
			Index:            r.Index,
			Timestamp:        r.Timestamp,
			ElectricityPrice: r.ElectricityPrice,
			Hashprice:        r.Hashprice,
			Revenue:          r.Revenue,
			Cost:             r.Cost,
			Profit:           r.Profit,
			Operate:          r.Operate,
			CumProfit:        r.CumProfit,
			Filled:           r.Filled,
		}
	}
	return out
}

func convertRisk(r backtest.RiskMetrics) *models.RiskMetrics {
	return &models.RiskMetrics{
		ProfitVolatility:    r.ProfitVolatility,
		MaxDailyLoss:        r.MaxDailyLoss,
		MaxDailyGain:        r.MaxDailyGain,
		VaR95:               r.VaR95,
		AvgDailyProfit:      r.AvgDailyProfit,
		RiskAdjustedReturn:  r.RiskAdjustedReturn,
		DownsideProbability: r.DownsideProbability,
		NegativeDays:        r.NegativeDays,
		TotalDays:           r.TotalDays,
	}
}

func convertROI(r backtest.ROIMetrics) *models.ROIMetrics {
	out := &models.ROIMetrics{
		InitialInvestment: r.InitialInvestment,
		ROIPercentage:     r.ROIPercentage,
		AnnualizedROI:     r.AnnualizedROI,
		PeriodYears:       r.PeriodYears,
	}
	if !math.IsInf(r.PaybackPeriodYears, 0) {
		v := r.PaybackPeriodYears
		out.PaybackPeriodYears = &v
	}
	return out
}

func convertMarketStats(m analysis.MarketStats) models.MarketStatsResponse {
	dist := func(d analysis.Distribution) models.Distribution {
		return models.Distribution{Min: d.Min, Max: d.Max, Mean: d.Mean, P05: d.P05, P95: d.P95}
	}
	return models.MarketStatsResponse{
		Window:              models.TimeWindow{Start: m.Start, End: m.End.Add(time.Hour)},
		Count:               m.Count,
		ElectricityPrice:    dist(m.ElectricityPrice),
		Hashprice:           dist(m.Hashprice),
		Profit:              dist(m.Profit),
		MeanBreakevenPrice:  m.MeanBreakevenPrice,
		HoursBelowBreakeven: m.HoursBelowBreakeven,
	}
}

func pointsToRecords(points []models.MarketPoint) []model.HourlyRecord {
	out := make([]model.HourlyRecord, len(points))
	for i, p := range points {
		out[i] = model.HourlyRecord{
			Timestamp:        p.Timestamp.UTC(),
			ElectricityPrice: model.Missing(),
			Hashprice:        model.Missing(),
		}
		if p.ElectricityPrice != nil {
			out[i].ElectricityPrice = *p.ElectricityPrice
		}
		if p.Hashprice != nil {
			out[i].Hashprice = *p.Hashprice
		}
	}
	return out
}

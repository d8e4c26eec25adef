// backend/src/processors/portfolio_processor.go
package processors

import (
	"sort"

	"github.com/username/notafolio/backend/src/models"
	"github.com/username/notafolio/backend/src/utils"
)

// PortfolioProcessor is the day-trade reconciliation engine. It nets opposing
// same-day quantities per instrument into day-trade vs residual swing-trade
// positions and derives the running portfolio quantity and average cost.
//
// Brazilian tax law taxes day-trade gains on the net intraday spread and
// swing-trade gains against a rolling average cost; netting the intraday
// portion out first keeps the average cost uncontaminated by same-day
// round trips.
type PortfolioProcessor struct{}

func NewPortfolioProcessor() *PortfolioProcessor { return &PortfolioProcessor{} }

// Reconcile computes the derived portfolio and the day/swing trade results
// from a validated operation history. Total over any input set: every date
// produces a definite residual.
func (p *PortfolioProcessor) Reconcile(operations []models.Operation) models.ReconciliationResult {
	valid := FilterValid(operations)

	result := models.ReconciliationResult{
		Portfolio:    p.computePositions(valid),
		ResultByType: emptyResultByType(),
	}

	day, swing := p.accumulateResults(valid, result.ResultByType)
	result.DayTradeResult = utils.RoundFloat(day, 2)
	result.SwingTradeResult = utils.RoundFloat(swing, 2)
	roundResultByType(result.ResultByType)
	return result
}

type dailyTotals struct {
	boughtQty   int
	boughtValue float64
	soldQty     int
	soldValue   float64
}

// computePositions applies the §-netting per instrument and date:
// on a day with both sides, min(bought, sold) is fully day-traded and only
// the residual carries into the running position, priced at the average of
// the larger side; single-sided days apply in full.
func (p *PortfolioProcessor) computePositions(operations []models.Operation) []models.PortfolioPosition {
	byCode := make(map[string][]models.Operation)
	for _, op := range operations {
		byCode[op.AssetCode] = append(byCode[op.AssetCode], op)
	}

	codes := make([]string, 0, len(byCode))
	for code := range byCode {
		codes = append(codes, code)
	}
	sort.Strings(codes)

	var positions []models.PortfolioPosition
	for _, code := range codes {
		ops := byCode[code]

		byDate := make(map[string]*dailyTotals)
		for _, op := range ops {
			totals, ok := byDate[op.TradeDate]
			if !ok {
				totals = &dailyTotals{}
				byDate[op.TradeDate] = totals
			}
			if op.Side == models.SideBuy {
				totals.boughtQty += op.Quantity
				totals.boughtValue += op.TotalValue
			} else {
				totals.soldQty += op.Quantity
				totals.soldValue += op.TotalValue
			}
		}

		dates := make([]string, 0, len(byDate))
		for date := range byDate {
			dates = append(dates, date)
		}
		sort.Strings(dates) // ISO dates sort chronologically

		quantity := 0
		totalValue := 0.0
		for _, date := range dates {
			t := byDate[date]
			switch {
			case t.boughtQty > 0 && t.soldQty > 0:
				matched := utils.MinInt(t.boughtQty, t.soldQty)
				if residual := t.boughtQty - matched; residual > 0 {
					quantity += residual
					totalValue += t.boughtValue / float64(t.boughtQty) * float64(residual)
				}
				if residual := t.soldQty - matched; residual > 0 {
					quantity -= residual
					totalValue -= t.soldValue / float64(t.soldQty) * float64(residual)
				}
				// Equal quantities: the day was fully day-traded, no portfolio impact.
			case t.boughtQty > 0:
				quantity += t.boughtQty
				totalValue += t.boughtValue
			case t.soldQty > 0:
				quantity -= t.soldQty
				totalValue -= t.soldValue
			}
		}

		if quantity <= 0 {
			continue
		}
		averageCost := totalValue / float64(quantity)

		positions = append(positions, models.PortfolioPosition{
			AssetCode:      code,
			InstrumentType: ops[0].InstrumentType,
			Quantity:       quantity,
			AverageCost:    utils.RoundFloat(averageCost, 2),
			TotalValue:     utils.RoundFloat(float64(quantity)*averageCost, 2),
		})
	}
	return positions
}

// accumulateResults computes day-trade results per instrument and
// swing-trade results per instrument type, filling the per-type buckets.
func (p *PortfolioProcessor) accumulateResults(operations []models.Operation, byType map[models.InstrumentType]models.TradeResult) (day, swing float64) {
	dayByCode := make(map[string][]models.Operation)
	for _, op := range operations {
		if op.IsDayTrade {
			dayByCode[op.AssetCode] = append(dayByCode[op.AssetCode], op)
		}
	}
	for _, ops := range dayByCode {
		instrumentType := ops[0].InstrumentType
		var buys, sells float64
		for _, op := range ops {
			if op.Side == models.SideBuy {
				buys += op.TotalValue
			} else {
				sells += op.TotalValue
			}
		}
		result := sells - buys
		day += result
		bucket := byType[instrumentType]
		bucket.DayTrade += result
		byType[instrumentType] = bucket
	}

	swingByType := make(map[models.InstrumentType][]models.Operation)
	for _, op := range operations {
		if !op.IsDayTrade {
			swingByType[op.InstrumentType] = append(swingByType[op.InstrumentType], op)
		}
	}
	for instrumentType, ops := range swingByType {
		var buys, sells float64
		for _, op := range ops {
			if op.Side == models.SideBuy {
				buys += op.TotalValue
			} else {
				sells += op.TotalValue
			}
		}
		result := sells - buys
		swing += result
		bucket := byType[instrumentType]
		bucket.SwingTrade += result
		byType[instrumentType] = bucket
	}
	return day, swing
}

func emptyResultByType() map[models.InstrumentType]models.TradeResult {
	byType := make(map[models.InstrumentType]models.TradeResult, 6)
	for _, t := range models.AllInstrumentTypes() {
		byType[t] = models.TradeResult{}
	}
	return byType
}

func roundResultByType(byType map[models.InstrumentType]models.TradeResult) {
	for t, bucket := range byType {
		bucket.DayTrade = utils.RoundFloat(bucket.DayTrade, 2)
		bucket.SwingTrade = utils.RoundFloat(bucket.SwingTrade, 2)
		byType[t] = bucket
	}
}

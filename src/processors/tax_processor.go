// backend/src/processors/tax_processor.go
package processors

import (
	"math"

	"github.com/username/notafolio/backend/src/models"
	"github.com/username/notafolio/backend/src/utils"
)

// Capital-gains rates under Brazilian rules. Day trades are taxed at a flat
// 20% on the net intraday result; swing trades at 15%, except FII funds,
// which do not receive the standard treatment and pay 20% as well.
const (
	DayTradeRate      = 0.20
	SwingTradeRate    = 0.15
	REITSwingRate     = 0.20
	carriedLossFactor = 0.3

	// Monthly swing-trade disposals under this value are historically
	// tax-exempt. The exemption is a presentation-layer decision and is
	// deliberately NOT applied inside Calculate.
	SwingExemptionThreshold = 20000.00
)

// TaxProcessor is the tax calculation engine.
type TaxProcessor struct{}

func NewTaxProcessor() *TaxProcessor { return &TaxProcessor{} }

// Calculate applies the rate rules per instrument type and trade
// classification over a validated operation history. Negative per-bucket
// results clamp to zero tax: losses are not taxed, they feed the advisory
// carried-loss figure. Deterministic: same input, bit-identical output.
func (p *TaxProcessor) Calculate(operations []models.Operation) models.TaxLiability {
	valid := FilterValid(operations)

	// Day-trade results, grouped by instrument within each date.
	type dayKey struct {
		date string
		code string
	}
	dayGroups := make(map[dayKey][]models.Operation)
	for _, op := range valid {
		if op.IsDayTrade {
			key := dayKey{op.TradeDate, op.AssetCode}
			dayGroups[key] = append(dayGroups[key], op)
		}
	}

	resultByType := emptyResultByType()
	var totalDayResult float64
	for _, ops := range dayGroups {
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
		totalDayResult += result
		bucket := resultByType[instrumentType]
		bucket.DayTrade += result
		resultByType[instrumentType] = bucket
	}

	// Swing-trade results, grouped by instrument type across the whole history.
	var totalSwingResult float64
	for _, op := range valid {
		if op.IsDayTrade {
			continue
		}
		value := op.TotalValue
		if op.Side == models.SideBuy {
			value = -value
		}
		totalSwingResult += value
		bucket := resultByType[op.InstrumentType]
		bucket.SwingTrade += value
		resultByType[op.InstrumentType] = bucket
	}

	// Apply rates per type and classification, clamping losses to zero tax.
	taxByType := emptyResultByType()
	var dayTax, swingTax float64
	for _, instrumentType := range models.AllInstrumentTypes() {
		result := resultByType[instrumentType]
		bucket := models.TradeResult{
			DayTrade:   math.Max(0, result.DayTrade*DayTradeRate),
			SwingTrade: math.Max(0, result.SwingTrade*swingRateFor(instrumentType)),
		}
		dayTax += bucket.DayTrade
		swingTax += bucket.SwingTrade
		bucket.DayTrade = utils.RoundFloat(bucket.DayTrade, 2)
		bucket.SwingTrade = utils.RoundFloat(bucket.SwingTrade, 2)
		taxByType[instrumentType] = bucket
	}

	// Simplified proxy for loss-carry reserves, advisory only.
	carriedLoss := math.Max(0, -(totalDayResult+totalSwingResult)*carriedLossFactor)

	return models.TaxLiability{
		DayTrade:    utils.RoundFloat(dayTax, 2),
		SwingTrade:  utils.RoundFloat(swingTax, 2),
		CarriedLoss: utils.RoundFloat(carriedLoss, 2),
		ByType:      taxByType,
	}
}

// SwingDisposals returns the total disposal (sell) value of swing-trade
// operations, the figure the presentation layer compares against the
// monthly exemption threshold.
func (p *TaxProcessor) SwingDisposals(operations []models.Operation) float64 {
	var total float64
	for _, op := range FilterValid(operations) {
		if !op.IsDayTrade && op.Side == models.SideSell {
			total += op.TotalValue
		}
	}
	return utils.RoundFloat(total, 2)
}

func swingRateFor(instrumentType models.InstrumentType) float64 {
	if instrumentType == models.InstrumentREITFund {
		return REITSwingRate
	}
	return SwingTradeRate
}

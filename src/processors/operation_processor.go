// backend/src/processors/operation_processor.go
package processors

import (
	"math"

	"github.com/username/notafolio/backend/src/b3"
	"github.com/username/notafolio/backend/src/logger"
	"github.com/username/notafolio/backend/src/models"
	"github.com/username/notafolio/backend/src/utils"
)

// Brokerage fee applied when the note does not state one: 0.25% of the
// operation total with a R$5.00 floor.
const (
	defaultBrokerageFeeRate  = 0.0025
	defaultBrokerageFeeFloor = 5.00
)

// OperationProcessor converts extracted operations into validated
// models.Operation records: registry check, instrument classification, date
// normalization, fee derivation and day-trade marking.
type OperationProcessor struct{}

func NewOperationProcessor() *OperationProcessor { return &OperationProcessor{} }

// Process validates and enriches extracted operations. Codes that fail the
// registry check are dropped and logged, never fatal. fallbackDate (ISO) is
// used when an operation carries no parseable trade date.
func (p *OperationProcessor) Process(extracted []models.ExtractedOperation, fallbackDate string) []models.Operation {
	var operations []models.Operation
	for _, raw := range extracted {
		code := b3.Normalize(raw.AssetCode)
		if !b3.Exists(code) {
			logger.L.Warn("Asset not found in exchange catalog, operation ignored", "code", code)
			continue
		}

		tradeDate, err := utils.NormalizeBrazilianDate(raw.TradeDate)
		if err != nil {
			tradeDate = fallbackDate
		}

		total := raw.TotalValue
		if total == 0 {
			total = float64(raw.Quantity) * raw.UnitPrice
		}

		operations = append(operations, models.Operation{
			Side:           raw.Side,
			AssetCode:      code,
			InstrumentType: b3.Classify(code),
			Quantity:       raw.Quantity,
			UnitPrice:      raw.UnitPrice,
			TradeDate:      tradeDate,
			TotalValue:     total,
			BrokerageFee:   utils.RoundFloat(math.Max(defaultBrokerageFeeFloor, total*defaultBrokerageFeeRate), 2),
			IsDayTrade:     raw.IsDayTrade,
			IsInBlock:      true, // Directly-extracted operations always came from a recognized layout
			OptionStrike:   raw.Strike,
			BaseInstrument: raw.BaseInstrument,
		})
	}

	// Date normalization can merge groups the extractor saw as distinct.
	MarkDayTrades(operations)
	return operations
}

// MarkDayTrades flags every operation belonging to a (date, code) group that
// contains at least one buy and at least one sell. Safe to re-run over the
// full history whenever notes are appended.
func MarkDayTrades(operations []models.Operation) {
	type groupKey struct {
		date string
		code string
	}
	groups := make(map[groupKey][]int)
	for idx, op := range operations {
		groups[groupKey{op.TradeDate, op.AssetCode}] = append(groups[groupKey{op.TradeDate, op.AssetCode}], idx)
	}
	for _, idxs := range groups {
		var hasBuy, hasSell bool
		for _, idx := range idxs {
			switch operations[idx].Side {
			case models.SideBuy:
				hasBuy = true
			case models.SideSell:
				hasSell = true
			}
		}
		if hasBuy && hasSell {
			for _, idx := range idxs {
				operations[idx].IsDayTrade = true
			}
		}
	}
}

// FilterValid returns only the operations allowed to influence downstream
// calculations: those found inside a recognized block.
func FilterValid(operations []models.Operation) []models.Operation {
	var valid []models.Operation
	for _, op := range operations {
		if op.IsInBlock {
			valid = append(valid, op)
		}
	}
	return valid
}

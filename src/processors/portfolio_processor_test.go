package processors

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/username/notafolio/backend/src/models"
)

func op(side models.OperationSide, code string, instrumentType models.InstrumentType, qty int, price float64, date string, dayTrade bool) models.Operation {
	return models.Operation{
		Side:           side,
		AssetCode:      code,
		InstrumentType: instrumentType,
		Quantity:       qty,
		UnitPrice:      price,
		TradeDate:      date,
		TotalValue:     float64(qty) * price,
		IsDayTrade:     dayTrade,
		IsInBlock:      true,
	}
}

func TestReconcileFullDayTrade(t *testing.T) {
	processor := NewPortfolioProcessor()

	operations := []models.Operation{
		op(models.SideBuy, "PETR4", models.InstrumentStock, 100, 10.00, "2024-01-15", true),
		op(models.SideSell, "PETR4", models.InstrumentStock, 100, 10.50, "2024-01-15", true),
	}

	result := processor.Reconcile(operations)

	assert.Empty(t, result.Portfolio, "fully day-traded quantity leaves no position")
	assert.Equal(t, 50.00, result.DayTradeResult)
	assert.Equal(t, 0.00, result.SwingTradeResult)
	assert.Equal(t, 50.00, result.ResultByType[models.InstrumentStock].DayTrade)
}

func TestReconcilePartialDayTradeResidual(t *testing.T) {
	processor := NewPortfolioProcessor()

	// Buy 200 @ 20.00, sell 100 @ 21.00 on the same day: 100 shares remain,
	// priced at the buy-side average.
	operations := []models.Operation{
		op(models.SideBuy, "PETR4", models.InstrumentStock, 200, 20.00, "2024-01-15", true),
		op(models.SideSell, "PETR4", models.InstrumentStock, 100, 21.00, "2024-01-15", true),
	}

	result := processor.Reconcile(operations)

	require.Len(t, result.Portfolio, 1)
	position := result.Portfolio[0]
	assert.Equal(t, "PETR4", position.AssetCode)
	assert.Equal(t, 100, position.Quantity)
	assert.Equal(t, 20.00, position.AverageCost)
	assert.Equal(t, 2000.00, position.TotalValue)

	// The day-trade result covers the whole marked group, sells minus buys:
	// 2100.00 sold − 4000.00 bought. The netted-portion spread is not broken
	// out separately.
	assert.Equal(t, -1900.00, result.DayTradeResult)
	assert.Equal(t, -1900.00, result.ResultByType[models.InstrumentStock].DayTrade)
}

func TestReconcileSellResidual(t *testing.T) {
	processor := NewPortfolioProcessor()

	// Sells exceed buys on the day; the excess sale drives the running
	// quantity negative and the position is dropped.
	operations := []models.Operation{
		op(models.SideBuy, "PETR4", models.InstrumentStock, 100, 10.00, "2024-01-15", true),
		op(models.SideSell, "PETR4", models.InstrumentStock, 150, 11.00, "2024-01-15", true),
	}

	result := processor.Reconcile(operations)
	assert.Empty(t, result.Portfolio)
}

func TestReconcileSwingAcrossDates(t *testing.T) {
	processor := NewPortfolioProcessor()

	operations := []models.Operation{
		op(models.SideBuy, "VALE3", models.InstrumentStock, 100, 50.00, "2024-01-15", false),
		op(models.SideSell, "VALE3", models.InstrumentStock, 40, 52.00, "2024-02-10", false),
	}

	result := processor.Reconcile(operations)

	require.Len(t, result.Portfolio, 1)
	position := result.Portfolio[0]
	assert.Equal(t, 60, position.Quantity)
	// Running total: 5000 − 2080 = 2920 over 60 shares.
	assert.Equal(t, 48.67, position.AverageCost)

	// Swing result is sells − buys over non-day-trade operations.
	assert.Equal(t, 2080.00-5000.00, result.SwingTradeResult)
	assert.Equal(t, 0.00, result.DayTradeResult)
}

func TestReconcileZeroQuantityDropped(t *testing.T) {
	processor := NewPortfolioProcessor()

	operations := []models.Operation{
		op(models.SideBuy, "VALE3", models.InstrumentStock, 100, 50.00, "2024-01-15", false),
		op(models.SideSell, "VALE3", models.InstrumentStock, 100, 52.00, "2024-02-10", false),
	}

	result := processor.Reconcile(operations)

	assert.Empty(t, result.Portfolio)
	assert.Equal(t, 200.00, result.SwingTradeResult)
	assert.Equal(t, 200.00, result.ResultByType[models.InstrumentStock].SwingTrade)
}

func TestReconcileIgnoresOperationsOutsideBlocks(t *testing.T) {
	processor := NewPortfolioProcessor()

	outside := op(models.SideBuy, "PETR4", models.InstrumentStock, 100, 10.00, "2024-01-15", false)
	outside.IsInBlock = false

	result := processor.Reconcile([]models.Operation{outside})

	assert.Empty(t, result.Portfolio)
	assert.Equal(t, 0.00, result.SwingTradeResult)
}

func TestReconcileResultByTypeBuckets(t *testing.T) {
	processor := NewPortfolioProcessor()

	operations := []models.Operation{
		op(models.SideBuy, "PETR4", models.InstrumentStock, 100, 10.00, "2024-01-15", true),
		op(models.SideSell, "PETR4", models.InstrumentStock, 100, 10.50, "2024-01-15", true),
		op(models.SideBuy, "HGLG11", models.InstrumentREITFund, 10, 100.00, "2024-01-15", false),
		op(models.SideSell, "HGLG11", models.InstrumentREITFund, 10, 110.00, "2024-02-15", false),
	}

	result := processor.Reconcile(operations)

	assert.Equal(t, 50.00, result.ResultByType[models.InstrumentStock].DayTrade)
	assert.Equal(t, 100.00, result.ResultByType[models.InstrumentREITFund].SwingTrade)
	// Every instrument type is present, even with zero results.
	for _, instrumentType := range models.AllInstrumentTypes() {
		_, ok := result.ResultByType[instrumentType]
		assert.True(t, ok, "missing bucket for %s", instrumentType)
	}
}

func TestReconcileIsIdempotent(t *testing.T) {
	processor := NewPortfolioProcessor()

	operations := []models.Operation{
		op(models.SideBuy, "PETR4", models.InstrumentStock, 200, 20.00, "2024-01-15", true),
		op(models.SideSell, "PETR4", models.InstrumentStock, 100, 21.00, "2024-01-15", true),
		op(models.SideBuy, "VALE3", models.InstrumentStock, 100, 50.00, "2024-02-01", false),
	}

	first := processor.Reconcile(operations)
	second := processor.Reconcile(operations)

	assert.Equal(t, first, second)
}

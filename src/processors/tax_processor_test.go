package processors

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/username/notafolio/backend/src/models"
)

func TestCalculateDayTradeRate(t *testing.T) {
	processor := NewTaxProcessor()

	operations := []models.Operation{
		op(models.SideBuy, "PETR4", models.InstrumentStock, 100, 10.00, "2024-01-15", true),
		op(models.SideSell, "PETR4", models.InstrumentStock, 100, 10.50, "2024-01-15", true),
	}

	liability := processor.Calculate(operations)

	// Net day-trade gain of 50.00 taxed at 20%.
	assert.Equal(t, 10.00, liability.DayTrade)
	assert.Equal(t, 0.00, liability.SwingTrade)
	assert.Equal(t, 0.00, liability.CarriedLoss)
	assert.Equal(t, 10.00, liability.ByType[models.InstrumentStock].DayTrade)
}

func TestCalculateSwingTradeRates(t *testing.T) {
	processor := NewTaxProcessor()

	operations := []models.Operation{
		// Stock swing gain of 200.00 -> 15%.
		op(models.SideBuy, "VALE3", models.InstrumentStock, 100, 50.00, "2024-01-15", false),
		op(models.SideSell, "VALE3", models.InstrumentStock, 100, 52.00, "2024-02-10", false),
		// FII swing gain of 100.00 -> 20%.
		op(models.SideBuy, "HGLG11", models.InstrumentREITFund, 10, 100.00, "2024-01-15", false),
		op(models.SideSell, "HGLG11", models.InstrumentREITFund, 10, 110.00, "2024-02-10", false),
	}

	liability := processor.Calculate(operations)

	assert.Equal(t, 50.00, liability.SwingTrade) // 200×0.15 + 100×0.20
	assert.Equal(t, 30.00, liability.ByType[models.InstrumentStock].SwingTrade)
	assert.Equal(t, 20.00, liability.ByType[models.InstrumentREITFund].SwingTrade)
}

func TestCalculateLossesClampToZeroTax(t *testing.T) {
	processor := NewTaxProcessor()

	operations := []models.Operation{
		op(models.SideBuy, "VALE3", models.InstrumentStock, 100, 52.00, "2024-01-15", false),
		op(models.SideSell, "VALE3", models.InstrumentStock, 100, 50.00, "2024-02-10", false),
	}

	liability := processor.Calculate(operations)

	assert.Equal(t, 0.00, liability.SwingTrade)
	assert.Equal(t, 0.00, liability.ByType[models.InstrumentStock].SwingTrade)
	// Net loss of 200.00 feeds the advisory carried-loss figure at 30%.
	assert.Equal(t, 60.00, liability.CarriedLoss)
}

func TestCalculateLossInOneBucketDoesNotOffsetAnother(t *testing.T) {
	processor := NewTaxProcessor()

	operations := []models.Operation{
		// Day-trade gain of 50.00.
		op(models.SideBuy, "PETR4", models.InstrumentStock, 100, 10.00, "2024-01-15", true),
		op(models.SideSell, "PETR4", models.InstrumentStock, 100, 10.50, "2024-01-15", true),
		// Swing loss of 100.00.
		op(models.SideBuy, "VALE3", models.InstrumentStock, 100, 51.00, "2024-01-15", false),
		op(models.SideSell, "VALE3", models.InstrumentStock, 100, 50.00, "2024-02-10", false),
	}

	liability := processor.Calculate(operations)

	assert.Equal(t, 10.00, liability.DayTrade)
	assert.Equal(t, 0.00, liability.SwingTrade)
	// Combined result is still positive, so nothing is carried.
	assert.Equal(t, 0.00, liability.CarriedLoss)
}

func TestCalculateIsDeterministic(t *testing.T) {
	processor := NewTaxProcessor()

	operations := []models.Operation{
		op(models.SideBuy, "PETR4", models.InstrumentStock, 100, 10.00, "2024-01-15", true),
		op(models.SideSell, "PETR4", models.InstrumentStock, 100, 10.50, "2024-01-15", true),
		op(models.SideBuy, "HGLG11", models.InstrumentREITFund, 10, 100.00, "2024-01-15", false),
	}

	assert.Equal(t, processor.Calculate(operations), processor.Calculate(operations))
}

func TestSwingDisposals(t *testing.T) {
	processor := NewTaxProcessor()

	operations := []models.Operation{
		op(models.SideSell, "VALE3", models.InstrumentStock, 100, 50.00, "2024-02-10", false),
		op(models.SideSell, "PETR4", models.InstrumentStock, 100, 10.50, "2024-01-15", true), // Day trade: excluded
		op(models.SideBuy, "VALE3", models.InstrumentStock, 100, 48.00, "2024-01-15", false), // Buy: excluded
	}

	assert.Equal(t, 5000.00, processor.SwingDisposals(operations))
}

package b3

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/username/notafolio/backend/src/models"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		name string
		code string
		want models.InstrumentType
	}{
		{"stock ordinary", "VALE3", models.InstrumentStock},
		{"stock preferred", "PETR4", models.InstrumentStock},
		{"reit fund", "HGLG11", models.InstrumentREITFund},
		{"etf on allow list beats reit shape", "BOVA11", models.InstrumentETF},
		{"etf smal11", "SMAL11", models.InstrumentETF},
		{"option series", "PETRB36", models.InstrumentOption},
		{"option with long strike digits", "VALEA110", models.InstrumentOption},
		{"mini index future beats option shape", "WINF20", models.InstrumentFuture},
		{"mini dollar future", "WDOG23", models.InstrumentFuture},
		{"index future", "INDJ21", models.InstrumentFuture},
		{"five-series stock is not classified", "USIM5", models.InstrumentUnknown},
		{"empty", "", models.InstrumentUnknown},
		{"garbage", "123ABC", models.InstrumentUnknown},
		{"lowercase is normalized first", "petr4", models.InstrumentStock},
		{"surrounding whitespace", "  VALE3  ", models.InstrumentStock},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Classify(tt.code))
		})
	}
}

func TestNormalize(t *testing.T) {
	assert.Equal(t, "PETR4", Normalize(" petr4\t"))
	assert.Equal(t, "", Normalize("   "))
}

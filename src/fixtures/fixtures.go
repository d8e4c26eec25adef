// Package fixtures generates deterministic, plausible operation histories
// for tests. Production code never imports this package; real data enters
// the system only through the note ingestion pipeline.
package fixtures

import (
	"fmt"
	"math/rand"
	"regexp"

	"github.com/username/notafolio/backend/src/b3"
	"github.com/username/notafolio/backend/src/models"
	"github.com/username/notafolio/backend/src/utils"
)

// spotCodePattern keeps only the catalog codes the note-text renderer can
// round-trip through the spot-trade line format.
var spotCodePattern = regexp.MustCompile(`^[A-Z]{4}(3|4|11)$`)

// Generator produces reproducible operation histories from a fixed seed.
type Generator struct {
	rng *rand.Rand
}

func NewGenerator(seed int64) *Generator {
	return &Generator{rng: rand.New(rand.NewSource(seed))}
}

// Operations generates count operations spread over the given ISO dates,
// using codes from the known-instrument catalog so the registry gate in the
// processing pipeline accepts them.
func (g *Generator) Operations(count int, dates []string) []models.Operation {
	var catalog []string
	for _, code := range b3.CatalogCodes() {
		if spotCodePattern.MatchString(code) {
			catalog = append(catalog, code)
		}
	}
	operations := make([]models.Operation, 0, count)
	for i := 0; i < count; i++ {
		code := catalog[g.rng.Intn(len(catalog))]
		side := models.SideBuy
		if g.rng.Intn(2) == 1 {
			side = models.SideSell
		}
		quantity := (g.rng.Intn(20) + 1) * 100
		unitPrice := utils.RoundFloat(5+g.rng.Float64()*95, 2)

		operations = append(operations, models.Operation{
			Side:           side,
			AssetCode:      code,
			InstrumentType: b3.Classify(code),
			Quantity:       quantity,
			UnitPrice:      unitPrice,
			TradeDate:      dates[g.rng.Intn(len(dates))],
			TotalValue:     utils.RoundFloat(float64(quantity)*unitPrice, 2),
			IsInBlock:      true,
		})
	}
	return operations
}

// NoteText renders a plausible settlement-note text with one recognized
// block marker and a spot-trade line per operation, in the layout the
// operation extractor understands.
func (g *Generator) NoteText(operations []models.Operation) string {
	text := "NOTA DE CORRETAGEM\nRESUMO DAS OPERAÇÕES\n"
	currentDate := ""
	for _, op := range operations {
		if op.TradeDate != currentDate {
			currentDate = op.TradeDate
			text += fmt.Sprintf("DATA PREGÃO %s\n", brazilianDate(currentDate))
		}
		flag := "C"
		if op.Side == models.SideSell {
			flag = "V"
		}
		text += fmt.Sprintf("%s %s %d %s %s\n",
			flag, op.AssetCode, op.Quantity,
			brazilianDecimal(op.UnitPrice), brazilianDecimal(op.TotalValue))
	}
	return text
}

func brazilianDate(isoDate string) string {
	if len(isoDate) != 10 {
		return isoDate
	}
	return isoDate[8:10] + "/" + isoDate[5:7] + "/" + isoDate[0:4]
}

func brazilianDecimal(value float64) string {
	s := fmt.Sprintf("%.2f", value)
	intPart := s[:len(s)-3]
	fracPart := s[len(s)-2:]

	var grouped string
	for i, digit := range intPart {
		if i > 0 && (len(intPart)-i)%3 == 0 {
			grouped += "."
		}
		grouped += string(digit)
	}
	return grouped + "," + fracPart
}

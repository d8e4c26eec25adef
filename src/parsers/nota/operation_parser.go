// backend/src/parsers/nota/operation_parser.go
package nota

import (
	"regexp"
	"strings"

	"github.com/username/notafolio/backend/src/logger"
	"github.com/username/notafolio/backend/src/models"
)

// Line-level patterns. Notes from different brokers lay the same data out
// differently, so extraction works over classified lines with bounded
// look-ahead instead of one grand regex.
var (
	datePattern = regexp.MustCompile(`\b(\d{2}/\d{2}/\d{4})\b`)

	// Option series code anywhere in a line (e.g. PETRB36, VALEA110).
	optionCodePattern = regexp.MustCompile(`\b([A-Z]{4,5}[A-Z0-9][0-9]{1,3})\b`)

	// Strike price on the line following an option trigger (e.g. "36,50").
	strikePattern = regexp.MustCompile(`\b(\d{1,3}(?:\.\d{3})*,\d{2})\b`)

	// Spot-market ticker patterns, tried in order: stock, FII, futures root.
	spotTickerPatterns = []*regexp.Regexp{
		regexp.MustCompile(`\b([A-Z]{4}[34])\b`),
		regexp.MustCompile(`\b([A-Z]{4}11)\b`),
		regexp.MustCompile(`\b((?:WIN|WDO|IND)[FGHJKMNQUVXZ][0-9]{1,2})\b`),
	}

	// Compact numeric triple terminated by a buy/sell flag character:
	// "1.000 10,50 10.500,00 C".
	compactTriplePattern = regexp.MustCompile(`^(\d{1,3}(?:\.\d{3})*|\d+)\s+(\d{1,3}(?:\.\d{3})*,\d{2})\s+(\d{1,3}(?:\.\d{3})*,\d{2})\s*([CV])$`)

	// Generic whitespace-separated quantity/price/total triple.
	genericTriplePattern = regexp.MustCompile(`(\d{1,3}(?:\.\d{3})*|\d+)\s+(\d{1,3}(?:\.\d{3})*,\d{2})\s+(\d{1,3}(?:\.\d{3})*,\d{2})`)
)

const (
	optionLookahead = 3
	spotLookahead   = 2
)

// lineKind tags each recognized line category. Classified lines are
// dispatched explicitly instead of being inspected ad hoc.
type lineKind int

const (
	lineOther lineKind = iota
	lineOptionTrigger
	lineSpotTrade
)

// classifiedLine is the tagged-variant form of one raw note line.
type classifiedLine struct {
	kind lineKind
	side models.OperationSide
	text string
}

// numericTriple is one parsed quantity/price/total group.
type numericTriple struct {
	quantity int
	price    float64
	total    float64
}

// ParseOperations walks the note text line by line and extracts fully
// structured operations. Any line matching DD/MM/YYYY updates the running
// note date; operations encountered afterward use it until superseded.
// Lines with no recognizable numeric triple within the look-ahead window are
// skipped, not fatal: note layouts are heterogeneous and the caller detects
// low yield through the extraction summary.
func (p *Parser) ParseOperations(rawText string) []models.ExtractedOperation {
	var lines []string
	for _, raw := range strings.Split(rawText, "\n") {
		if trimmed := strings.TrimSpace(raw); trimmed != "" {
			lines = append(lines, trimmed)
		}
	}

	var operations []models.ExtractedOperation
	currentDate := ""

	for i, line := range lines {
		if m := datePattern.FindString(line); m != "" {
			currentDate = m
		}

		cl := classifyLine(line)
		switch cl.kind {
		case lineOptionTrigger:
			if op, ok := p.extractOptionOperation(lines, i, cl, currentDate); ok {
				operations = append(operations, op)
			}
		case lineSpotTrade:
			if op, ok := p.extractSpotOperation(lines, i, cl, currentDate); ok {
				operations = append(operations, op)
			}
		}
	}

	markDayTrades(operations)

	logger.L.Info("Detailed operation extraction finished", "lines", len(lines), "operations", len(operations))
	return operations
}

// classifyLine tags a raw line as an option trigger, a spot-trade candidate,
// or noise. Option phrases are checked first because they contain the plain
// COMPRA/VENDA words that also mark cash-market lines.
func classifyLine(line string) classifiedLine {
	upper := strings.ToUpper(line)

	switch {
	case strings.Contains(upper, "OPÇÃO DE COMPRA"), strings.Contains(upper, "OPCAO DE COMPRA"):
		return classifiedLine{kind: lineOptionTrigger, side: models.SideBuy, text: upper}
	case strings.Contains(upper, "OPÇÃO DE VENDA"), strings.Contains(upper, "OPCAO DE VENDA"):
		return classifiedLine{kind: lineOptionTrigger, side: models.SideSell, text: upper}
	}

	if side, ok := spotSide(upper); ok {
		return classifiedLine{kind: lineSpotTrade, side: side, text: upper}
	}
	return classifiedLine{kind: lineOther, text: upper}
}

// spotSide recognizes cash-market buy/sell markers: the section headers
// COMPRAS/VENDAS, the words COMPRA/VENDA, or a lone C/V flag token.
func spotSide(upper string) (models.OperationSide, bool) {
	switch {
	case strings.Contains(upper, "COMPRA"):
		return models.SideBuy, true
	case strings.Contains(upper, "VENDA"):
		return models.SideSell, true
	}
	for _, token := range strings.Fields(upper) {
		if token == "C" {
			return models.SideBuy, true
		}
		if token == "V" {
			return models.SideSell, true
		}
	}
	return "", false
}

// extractOptionOperation reads an option trade from a trigger line: the
// traded code and its 4-character base come from the trigger line itself, the
// strike from the immediately following line, and the numeric triple from a
// look-ahead of up to three lines.
func (p *Parser) extractOptionOperation(lines []string, i int, cl classifiedLine, currentDate string) (models.ExtractedOperation, bool) {
	codeMatch := optionCodePattern.FindStringSubmatch(cl.text)
	if codeMatch == nil {
		return models.ExtractedOperation{}, false
	}
	code := codeMatch[1]

	strike := ""
	if i+1 < len(lines) {
		if m := strikePattern.FindStringSubmatch(lines[i+1]); m != nil {
			strike = m[1]
		}
	}

	triple, ok := findTriple(lines, i+1, optionLookahead)
	if !ok {
		logger.L.Debug("Option trigger line without numeric triple in window, skipping", "line", cl.text)
		return models.ExtractedOperation{}, false
	}

	return models.ExtractedOperation{
		Side:           cl.side,
		AssetCode:      code,
		Quantity:       triple.quantity,
		UnitPrice:      triple.price,
		TotalValue:     triple.total,
		TradeDate:      currentDate,
		Strike:         strike,
		BaseInstrument: code[:4],
		RawLine:        cl.text,
	}, true
}

// extractSpotOperation reads a cash-market trade: ticker patterns are tried
// in order (stock, FII, futures root) on the marker line; the numeric triple
// comes from the same line when present, else from up to two following lines.
func (p *Parser) extractSpotOperation(lines []string, i int, cl classifiedLine, currentDate string) (models.ExtractedOperation, bool) {
	var code string
	for _, pattern := range spotTickerPatterns {
		if m := pattern.FindStringSubmatch(cl.text); m != nil {
			code = m[1]
			break
		}
	}
	if code == "" {
		return models.ExtractedOperation{}, false
	}

	triple, ok := parseTripleFromLine(cl.text)
	if !ok {
		triple, ok = findTriple(lines, i+1, spotLookahead)
	}
	if !ok {
		logger.L.Debug("Spot trade line without numeric triple in window, skipping", "line", cl.text)
		return models.ExtractedOperation{}, false
	}

	return models.ExtractedOperation{
		Side:       cl.side,
		AssetCode:  code,
		Quantity:   triple.quantity,
		UnitPrice:  triple.price,
		TotalValue: triple.total,
		TradeDate:  currentDate,
		RawLine:    cl.text,
	}, true
}

// findTriple scans up to window lines starting at from, trying the compact
// flag-terminated format before the generic whitespace triple.
func findTriple(lines []string, from, window int) (numericTriple, bool) {
	for j := from; j < from+window && j < len(lines); j++ {
		if triple, ok := parseTripleFromLine(lines[j]); ok {
			return triple, true
		}
	}
	return numericTriple{}, false
}

// parseTripleFromLine tries both numeric line formats against one line.
func parseTripleFromLine(line string) (numericTriple, bool) {
	if m := compactTriplePattern.FindStringSubmatch(strings.TrimSpace(line)); m != nil {
		if triple, ok := buildTriple(m[1], m[2], m[3]); ok {
			return triple, true
		}
	}
	if m := genericTriplePattern.FindStringSubmatch(line); m != nil {
		if triple, ok := buildTriple(m[1], m[2], m[3]); ok {
			return triple, true
		}
	}
	return numericTriple{}, false
}

func buildTriple(qtyStr, priceStr, totalStr string) (numericTriple, bool) {
	qty, err := parseBrazilianInt(qtyStr)
	if err != nil || qty <= 0 {
		return numericTriple{}, false
	}
	price, err := parseBrazilianDecimal(priceStr)
	if err != nil || price <= 0 {
		return numericTriple{}, false
	}
	total, err := parseBrazilianDecimal(totalStr)
	if err != nil {
		return numericTriple{}, false
	}
	return numericTriple{quantity: qty, price: price, total: total}, true
}

// markDayTrades flags every operation in any (date, code) group that contains
// at least one buy and at least one sell.
func markDayTrades(operations []models.ExtractedOperation) {
	type groupKey struct {
		date string
		code string
	}
	groups := make(map[groupKey][]int)
	for idx, op := range operations {
		key := groupKey{op.TradeDate, op.AssetCode}
		groups[key] = append(groups[key], idx)
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

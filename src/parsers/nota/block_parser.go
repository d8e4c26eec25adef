// backend/src/parsers/nota/block_parser.go
package nota

import (
	"regexp"
	"sort"
	"strings"

	"github.com/username/notafolio/backend/src/b3"
	"github.com/username/notafolio/backend/src/logger"
	"github.com/username/notafolio/backend/src/models"
)

// validBlocks are the section-marker phrases that introduce trade tables in a
// B3 settlement note. Asset codes are only matched inside the span between
// two recognized markers; everything outside is boilerplate that routinely
// contains 4-letter uppercase tokens (page footers, legal text).
var validBlocks = []string{
	"NEGOCIAÇÃO",
	"MERCADO",
	"ESPECIFICAÇÃO DO TÍTULO",
	"RESUMO DAS OPERAÇÕES",
	"TÍTULOS NEGOCIADOS",
	"COMPRAS",
	"VENDAS",
	"NOTA DE CORRETAGEM",
	"BOLSA DE VALORES",
	"OPÇÃO DE COMPRA",
	"OPÇÃO DE VENDA",
	"NEGÓCIOS REALIZADOS",
}

// The five independent in-span matchers, in tag-assignment order. The ETF
// allow-list runs before the FII shape because both end in "11".
var spanMatchers = []struct {
	tag     models.InstrumentType
	pattern *regexp.Regexp
}{
	{models.InstrumentStock, regexp.MustCompile(`^[A-Z]{4}[34]$`)},
	{models.InstrumentETF, regexp.MustCompile(`^(?:BOVA11|IVVB11|SMAL11|HASH11|ECOO11|BBSD11|XINA11)$`)},
	{models.InstrumentREITFund, regexp.MustCompile(`^[A-Z]{4}11$`)},
	{models.InstrumentFuture, regexp.MustCompile(`^(?:WIN|WDO|IND)[FGHJKMNQUVXZ][0-9]{1,2}$`)},
	{models.InstrumentOption, regexp.MustCompile(`^[A-Z]{4,5}[A-Z0-9][0-9]{1,3}$`)},
}

var tokenPattern = regexp.MustCompile(`[A-Z0-9]+`)

// Parser implements the NoteParser contract for B3 settlement notes.
type Parser struct{}

// NewParser creates a new settlement-note parser.
func NewParser() *Parser {
	return &Parser{}
}

// HasRecognizedBlock reports whether any section marker occurs in the text.
// Used to decide whether a document likely needs OCR.
func HasRecognizedBlock(rawText string) bool {
	upper := strings.ToUpper(rawText)
	for _, block := range validBlocks {
		if strings.Contains(upper, block) {
			return true
		}
	}
	return false
}

// ExtractAssets scans the text for recognized section markers and extracts
// asset codes only within the spans between consecutive markers. Zero markers
// means the document could not be read, not that it holds zero trades: the
// caller must treat InRecognizedBlock=false as an extraction failure.
func (p *Parser) ExtractAssets(rawText string) models.BlockExtraction {
	text := strings.ToUpper(rawText)

	var offsets []int
	for _, block := range validBlocks {
		idx := strings.Index(text, block)
		for idx != -1 {
			offsets = append(offsets, idx)
			next := strings.Index(text[idx+1:], block)
			if next == -1 {
				break
			}
			idx = idx + 1 + next
		}
	}

	if len(offsets) == 0 {
		return models.BlockExtraction{InRecognizedBlock: false}
	}
	sort.Ints(offsets)

	result := models.BlockExtraction{BlockOffsets: offsets}
	seen := make(map[string]bool)

	for i, start := range offsets {
		end := len(text)
		if i < len(offsets)-1 {
			end = offsets[i+1]
		}
		span := text[start:end]

		for _, match := range scanSpan(span) {
			result.InRecognizedBlock = true
			if seen[match.Code] {
				continue
			}
			if !b3.Exists(match.Code) {
				logger.L.Debug("Dropping code not present in exchange catalog", "code", match.Code)
				continue
			}
			seen[match.Code] = true
			result.Assets = append(result.Assets, match)
		}
	}

	logger.L.Info("Block-scoped extraction finished",
		"markers", len(offsets), "assets", len(result.Assets), "blockFound", result.InRecognizedBlock)
	return result
}

// scanSpan runs the five matchers over the alphanumeric tokens of one span.
// The first matcher to accept a token assigns its type tag.
func scanSpan(span string) []models.ExtractedAsset {
	var matches []models.ExtractedAsset
	for _, token := range tokenPattern.FindAllString(span, -1) {
		for _, m := range spanMatchers {
			if m.pattern.MatchString(token) {
				matches = append(matches, models.ExtractedAsset{Code: token, Type: m.tag})
				break
			}
		}
	}
	return matches
}

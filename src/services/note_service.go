// backend/src/services/note_service.go
package services

import (
	"database/sql"
	"errors"
	"fmt"
	"math"
	"path/filepath"
	"regexp"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/patrickmn/go-cache"
	"github.com/username/notafolio/backend/src/logger"
	"github.com/username/notafolio/backend/src/model"
	"github.com/username/notafolio/backend/src/models"
	"github.com/username/notafolio/backend/src/parsers"
	"github.com/username/notafolio/backend/src/processors"
	"github.com/username/notafolio/backend/src/security/validation"
	"github.com/username/notafolio/backend/src/utils"
)

const (
	// B3 settlement (liquidação) and registration (registro) fee rates,
	// applied over the note's gross traded value.
	settlementFeeRate   = 0.00025
	registrationFeeRate = 0.00005

	// Below this length the text is assumed to come from OCR rather than
	// from the document's embedded text layer.
	minDirectTextLength = 100
)

var noteIDPattern = regexp.MustCompile(`[^A-Za-z0-9_-]+`)

type noteServiceImpl struct {
	db                 *sql.DB
	parser             parsers.NoteParser
	operationProcessor *processors.OperationProcessor
	portfolioProcessor *processors.PortfolioProcessor
	taxProcessor       *processors.TaxProcessor
	quoteService       QuoteService
	reportCache        *cache.Cache

	// Serializes the exists-check/insert pair so concurrent uploads of the
	// same note cannot both pass the duplicate check.
	mu sync.Mutex
}

func NewNoteService(
	db *sql.DB,
	parser parsers.NoteParser,
	operationProcessor *processors.OperationProcessor,
	portfolioProcessor *processors.PortfolioProcessor,
	taxProcessor *processors.TaxProcessor,
	quoteService QuoteService,
	reportCache *cache.Cache,
) NoteService {
	return &noteServiceImpl{
		db:                 db,
		parser:             parser,
		operationProcessor: operationProcessor,
		portfolioProcessor: portfolioProcessor,
		taxProcessor:       taxProcessor,
		quoteService:       quoteService,
		reportCache:        reportCache,
	}
}

// IngestNote runs the full pipeline for one uploaded note text: sanitize,
// extract, validate against the known-instrument catalog, persist, and
// invalidate the derived aggregates.
func (s *noteServiceImpl) IngestNote(rawText string, filename string, declaredMethod string, broker string) (*IngestResult, error) {
	sanitized := validation.StripUnprintable(validation.SanitizeText(rawText))
	if strings.TrimSpace(sanitized) == "" {
		return nil, fmt.Errorf("note text is empty after sanitization: %w", ErrExtractionEmpty)
	}

	block := s.parser.ExtractAssets(sanitized)
	method := inferMethod(declaredMethod, sanitized, block.InRecognizedBlock)

	extracted := s.parser.ParseOperations(sanitized)
	usedDirectExtraction := len(extracted) > 0

	operations := s.operationProcessor.Process(extracted, time.Now().Format(utils.ISODateLayout))
	if len(operations) == 0 {
		summary := buildSummary(false, method, block, operations, usedDirectExtraction)
		logger.L.Warn("Note ingestion produced no operations",
			"filename", filename, "method", method, "blockFound", block.InRecognizedBlock)
		return &IngestResult{Summary: summary}, ErrExtractionEmpty
	}

	noteID := noteIDFromFilename(filename)

	s.mu.Lock()
	defer s.mu.Unlock()

	exists, err := model.NoteExists(s.db, noteID)
	if err != nil {
		return nil, fmt.Errorf("checking note %s: %w", noteID, err)
	}
	if exists {
		return nil, fmt.Errorf("note %s: %w", noteID, ErrDuplicateNote)
	}

	note := s.assembleNote(noteID, broker, operations)
	for i := range operations {
		operations[i].NoteID = noteID
	}

	if err := model.InsertNote(s.db, note); err != nil {
		return nil, fmt.Errorf("persisting note %s: %w", noteID, err)
	}
	s.InvalidateCache()

	summary := buildSummary(true, method, block, operations, usedDirectExtraction)
	logger.L.Info("Note ingested",
		"noteID", noteID, "operations", len(operations),
		"tradeDate", note.TradeDate, "totalValue", note.TotalValue)

	return &IngestResult{Note: note, Summary: summary}, nil
}

// assembleNote derives the note header fields, fees, and per-note results
// from the processed operations.
func (s *noteServiceImpl) assembleNote(noteID, broker string, operations []models.Operation) *models.SettlementNote {
	tradeDate := operations[0].TradeDate
	var totalValue, brokerageTotal float64
	for _, op := range operations {
		if op.TradeDate < tradeDate {
			tradeDate = op.TradeDate
		}
		totalValue += op.TotalValue
		brokerageTotal += op.BrokerageFee
	}
	totalValue = utils.RoundFloat(totalValue, 2)

	fees := models.NoteFees{
		Brokerage:    utils.RoundFloat(brokerageTotal, 2),
		Settlement:   utils.RoundFloat(totalValue*settlementFeeRate, 2),
		Registration: utils.RoundFloat(totalValue*registrationFeeRate, 2),
	}
	fees.Total = utils.RoundFloat(fees.Brokerage+fees.Settlement+fees.Registration, 2)

	reconciliation := s.portfolioProcessor.Reconcile(operations)

	return &models.SettlementNote{
		NoteID:           noteID,
		TradeDate:        tradeDate,
		ReferenceMonth:   utils.ReferenceMonth(tradeDate),
		Broker:           broker,
		TotalValue:       totalValue,
		Operations:       operations,
		DayTradeResult:   reconciliation.DayTradeResult,
		SwingTradeResult: reconciliation.SwingTradeResult,
		ResultByType:     reconciliation.ResultByType,
		Fees:             fees,
	}
}

func (s *noteServiceImpl) ListNotes() ([]models.SettlementNote, error) {
	return model.ListNotes(s.db)
}

func (s *noteServiceImpl) GetNote(noteID string) (*models.SettlementNote, error) {
	note, err := model.GetNoteByID(s.db, noteID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("note %s: %w", noteID, ErrNoteNotFound)
	}
	return note, err
}

func (s *noteServiceImpl) DeleteAllNotes() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := model.DeleteAllNotes(s.db); err != nil {
		return err
	}
	s.InvalidateCache()
	logger.L.Info("Note history deleted")
	return nil
}

// loadHistory loads the full persisted operation history and re-marks day
// trades across note boundaries, so operations from different notes on the
// same date and instrument net against each other.
func (s *noteServiceImpl) loadHistory() ([]models.Operation, error) {
	operations, err := model.ListAllOperations(s.db)
	if err != nil {
		return nil, fmt.Errorf("loading operation history: %w", err)
	}
	processors.MarkDayTrades(operations)
	return operations, nil
}

func (s *noteServiceImpl) GetPortfolio() ([]models.PortfolioPosition, error) {
	if cached, found := s.reportCache.Get(ckPortfolio); found {
		return cached.([]models.PortfolioPosition), nil
	}
	history, err := s.loadHistory()
	if err != nil {
		return nil, err
	}
	positions := s.portfolioProcessor.Reconcile(history).Portfolio
	s.reportCache.Set(ckPortfolio, positions, DefaultCacheExpiration)
	return positions, nil
}

func (s *noteServiceImpl) GetPortfolioWithQuotes() ([]models.PositionWithQuote, error) {
	positions, err := s.GetPortfolio()
	if err != nil {
		return nil, err
	}

	codes := make([]string, 0, len(positions))
	for _, position := range positions {
		codes = append(codes, position.AssetCode)
	}
	quotes, err := s.quoteService.GetQuotes(codes)
	if err != nil {
		logger.L.Warn("Quote fetch failed, falling back to average cost", "error", err)
		quotes = nil
	}

	enriched := make([]models.PositionWithQuote, 0, len(positions))
	for _, position := range positions {
		withQuote := models.PositionWithQuote{
			PortfolioPosition: position,
			CurrentPrice:      position.AverageCost,
			MarketValue:       position.TotalValue,
			QuoteStatus:       "UNAVAILABLE",
		}
		if quote, ok := quotes[position.AssetCode]; ok {
			withQuote.CurrentPrice = quote.Price
			withQuote.ChangePercent = quote.ChangePercent
			withQuote.MarketValue = utils.RoundFloat(quote.Price*float64(position.Quantity), 2)
			withQuote.QuoteStatus = "OK"
		}
		enriched = append(enriched, withQuote)
	}
	return enriched, nil
}

func (s *noteServiceImpl) GetTaxSummary() (*TaxSummary, error) {
	if cached, found := s.reportCache.Get(ckTaxSummary); found {
		return cached.(*TaxSummary), nil
	}
	history, err := s.loadHistory()
	if err != nil {
		return nil, err
	}

	liability := s.taxProcessor.Calculate(history)
	disposals := s.taxProcessor.SwingDisposals(history)
	summary := &TaxSummary{
		TaxLiability:            liability,
		SwingDisposals:          disposals,
		SwingExemptionThreshold: processors.SwingExemptionThreshold,
		SwingExemptionEligible:  disposals <= processors.SwingExemptionThreshold,
	}
	s.reportCache.Set(ckTaxSummary, summary, DefaultCacheExpiration)
	return summary, nil
}

func (s *noteServiceImpl) GetReport() (*Report, error) {
	if cached, found := s.reportCache.Get(ckReport); found {
		return cached.(*Report), nil
	}
	notes, err := s.ListNotes()
	if err != nil {
		return nil, err
	}
	portfolio, err := s.GetPortfolio()
	if err != nil {
		return nil, err
	}
	tax, err := s.GetTaxSummary()
	if err != nil {
		return nil, err
	}

	report := &Report{
		Notes:       notes,
		Portfolio:   portfolio,
		Tax:         *tax,
		GeneratedAt: time.Now().UTC().Format(time.RFC3339),
	}
	s.reportCache.Set(ckReport, report, DefaultCacheExpiration)
	return report, nil
}

func (s *noteServiceImpl) InvalidateCache() {
	s.reportCache.Delete(ckPortfolio)
	s.reportCache.Delete(ckTaxSummary)
	s.reportCache.Delete(ckReport)
}

// inferMethod keeps a valid client-declared method, otherwise guesses from
// the text: a short text or one without any recognized block markers is
// assumed to come from OCR.
func inferMethod(declared, text string, blockFound bool) string {
	switch declared {
	case models.MethodText, models.MethodOCR:
		return declared
	}
	if len(text) < minDirectTextLength || !blockFound {
		return models.MethodOCR
	}
	return models.MethodText
}

// noteIDFromFilename derives a stable note ID from the uploaded filename so
// re-uploading the same document is detected as a duplicate. Falls back to a
// random UUID when the filename yields nothing usable.
func noteIDFromFilename(filename string) string {
	base := filepath.Base(filename)
	if ext := filepath.Ext(base); ext != "" {
		base = strings.TrimSuffix(base, ext)
	}
	base = noteIDPattern.ReplaceAllString(base, "-")
	base = strings.Trim(base, "-")
	if base == "" || base == "." {
		return uuid.NewString()
	}
	return base
}

func buildSummary(success bool, method string, block models.BlockExtraction, operations []models.Operation, usedDirectExtraction bool) models.ExtractionSummary {
	assets := make([]string, 0, len(block.Assets))
	countsByType := make(map[models.InstrumentType]int)
	for _, asset := range block.Assets {
		assets = append(assets, asset.Code)
		countsByType[asset.Type]++
	}

	typeCounts := make([]models.AssetTypeCount, 0, len(countsByType))
	for _, instrumentType := range models.AllInstrumentTypes() {
		if count := countsByType[instrumentType]; count > 0 {
			typeCounts = append(typeCounts, models.AssetTypeCount{Type: instrumentType, Count: count})
		}
	}

	summary := models.ExtractionSummary{
		Success:              success,
		Method:               method,
		Assets:               assets,
		AssetTypeCounts:      typeCounts,
		TotalOperations:      len(operations),
		BlockFound:           block.InRecognizedBlock || usedDirectExtraction,
		UsedDirectExtraction: usedDirectExtraction,
	}
	if success {
		summary.Discrepancies = detectDiscrepancies(block, operations)
	}
	return summary
}

// detectDiscrepancies cross-checks the block-scoped asset list against the
// detailed operations. Mismatches do not fail the ingestion; they are
// surfaced for manual review.
func detectDiscrepancies(block models.BlockExtraction, operations []models.Operation) *models.Discrepancies {
	blockCodes := make(map[string]bool, len(block.Assets))
	for _, asset := range block.Assets {
		blockCodes[asset.Code] = true
	}
	operationCodes := make(map[string]bool)
	totalValueMismatch := false
	for _, op := range operations {
		operationCodes[op.AssetCode] = true
		implied := float64(op.Quantity) * op.UnitPrice
		if math.Abs(op.TotalValue-implied) > 0.01*math.Max(1, implied) {
			totalValueMismatch = true
		}
	}

	shareCountMismatch := len(blockCodes) != len(operationCodes)
	if !shareCountMismatch {
		for code := range operationCodes {
			if !blockCodes[code] {
				shareCountMismatch = true
				break
			}
		}
	}

	if !totalValueMismatch && !shareCountMismatch {
		return nil
	}
	return &models.Discrepancies{
		TotalValueMismatch: totalValueMismatch,
		ShareCountMismatch: shareCountMismatch,
	}
}

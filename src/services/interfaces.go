// backend/src/services/interfaces.go
package services

import (
	"errors"
	"time"

	"github.com/username/notafolio/backend/src/models"
)

// IngestResult is the result of a single IngestNote call. It contains the
// persisted note plus the extraction summary derived from the uploaded text.
type IngestResult struct {
	Note    *models.SettlementNote   `json:"note"`
	Summary models.ExtractionSummary `json:"summary"`
}

// TaxSummary is the tax liability snapshot enriched with the monthly
// swing-trade disposal total, so callers can surface the small-disposal
// exemption without the tax engine itself applying it.
type TaxSummary struct {
	models.TaxLiability
	SwingDisposals          float64 `json:"swing_disposals"`
	SwingExemptionThreshold float64 `json:"swing_exemption_threshold"`
	SwingExemptionEligible  bool    `json:"swing_exemption_eligible"`
}

// Report is the full derived snapshot served with an ETag: the note history
// plus every aggregate recomputed from it.
type Report struct {
	Notes       []models.SettlementNote    `json:"notes"`
	Portfolio   []models.PortfolioPosition `json:"portfolio"`
	Tax         TaxSummary                 `json:"tax"`
	GeneratedAt string                     `json:"generated_at"`
}

// Define common service errors
var (
	ErrExtractionEmpty = errors.New("no operations could be extracted from the note text")
	ErrDuplicateNote   = errors.New("a note with this ID was already ingested")
	ErrNoteNotFound    = errors.New("note not found")
)

// NoteService defines the interface for the note ingestion pipeline and the
// aggregates derived from the persisted operation history.
type NoteService interface {
	IngestNote(rawText string, filename string, declaredMethod string, broker string) (*IngestResult, error)
	ListNotes() ([]models.SettlementNote, error)
	GetNote(noteID string) (*models.SettlementNote, error)
	DeleteAllNotes() error

	GetPortfolio() ([]models.PortfolioPosition, error)
	GetPortfolioWithQuotes() ([]models.PositionWithQuote, error)
	GetTaxSummary() (*TaxSummary, error)
	GetReport() (*Report, error)

	InvalidateCache()
}

// QuoteService defines the interface for fetching current market quotes for
// B3 instrument codes. Codes outside the known-instrument catalog are
// silently excluded from the result.
type QuoteService interface {
	GetQuotes(codes []string) (map[string]models.Quote, error)
}

const (
	ckPortfolio            = "agg_portfolio_positions"
	ckTaxSummary           = "agg_tax_summary"
	ckReport               = "agg_full_report"
	ckQuotePrefix          = "quote_%s"
	DefaultCacheExpiration = 15 * time.Minute
	CacheCleanupInterval   = 30 * time.Minute
)

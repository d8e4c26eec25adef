package parsers

import (
	"github.com/username/notafolio/backend/src/models"
)

// NoteParser defines the interface for turning the raw text of one settlement
// note into structured data. The document-to-text step (PDF parsing, OCR) is
// an external collaborator; parsers only ever see raw text.
type NoteParser interface {
	// ParseOperations walks the text line by line and produces fully
	// structured operation records. Lines without a parseable numeric
	// triple are skipped.
	ParseOperations(rawText string) []models.ExtractedOperation

	// ExtractAssets is the block-scoped fallback pass: it only matches asset
	// codes inside spans introduced by a recognized section marker.
	ExtractAssets(rawText string) models.BlockExtraction
}

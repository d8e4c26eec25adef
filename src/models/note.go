package models

// Extraction methods reported by the document-to-text collaborator.
const (
	MethodText = "text"
	MethodOCR  = "ocr"
)

// DocumentText is the entire contract with the OCR/text-extraction
// collaborator: the raw text of one document plus how it was obtained.
type DocumentText struct {
	Text             string `json:"text"`
	ExtractionMethod string `json:"extraction_method"` // "text" or "ocr"
}

// NoteFees aggregates the fees charged on one settlement note.
type NoteFees struct {
	Brokerage    float64 `json:"brokerage"`
	Settlement   float64 `json:"settlement"`
	Registration float64 `json:"registration"`
	Total        float64 `json:"total"`
}

// TradeResult is a day-trade/swing-trade result pair.
type TradeResult struct {
	DayTrade   float64 `json:"day_trade"`
	SwingTrade float64 `json:"swing_trade"`
}

// SettlementNote is one parsed brokerage document. Immutable after creation;
// the application state holds an append-only sequence of these.
type SettlementNote struct {
	NoteID           string                         `json:"note_id"`
	TradeDate        string                         `json:"trade_date"` // ISO
	ReferenceMonth   string                         `json:"reference_month"`
	Broker           string                         `json:"broker"`
	TotalValue       float64                        `json:"total_value"`
	Operations       []Operation                    `json:"operations"` // Insertion order = extraction order
	DayTradeResult   float64                        `json:"day_trade_result"`
	SwingTradeResult float64                        `json:"swing_trade_result"`
	ResultByType     map[InstrumentType]TradeResult `json:"result_by_instrument_type"`
	Fees             NoteFees                       `json:"fees"`
	CreatedAt        string                         `json:"created_at,omitempty"`
}

// AssetTypeCount is one entry of the per-type asset tally in an extraction summary.
type AssetTypeCount struct {
	Type  InstrumentType `json:"type"`
	Count int            `json:"count"`
}

// Discrepancies flags note-level reconciliation mismatches the caller should
// surface for manual review.
type Discrepancies struct {
	TotalValueMismatch bool `json:"total_value_mismatch,omitempty"`
	ShareCountMismatch bool `json:"share_count_mismatch,omitempty"`
}

// ExtractionSummary reports how an upload was read. Success is true only when
// a recognized block was found and at least one operation was extracted;
// direct line extraction counts as a found block even without a marker.
type ExtractionSummary struct {
	Success              bool             `json:"success"`
	Method               string           `json:"method"` // "text" or "ocr"
	Assets               []string         `json:"assets"`
	AssetTypeCounts      []AssetTypeCount `json:"asset_type_counts"`
	TotalOperations      int              `json:"total_operations"`
	BlockFound           bool             `json:"block_found"`
	UsedDirectExtraction bool             `json:"used_direct_extraction"`
	Discrepancies        *Discrepancies   `json:"discrepancies,omitempty"`
}

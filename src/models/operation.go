package models

// InstrumentType tags a traded instrument, derived purely from its exchange code.
type InstrumentType string

const (
	InstrumentStock    InstrumentType = "stock"
	InstrumentREITFund InstrumentType = "reit_fund" // FII, real-estate/receivables fund, code ends in 11
	InstrumentETF      InstrumentType = "etf"
	InstrumentOption   InstrumentType = "option"
	InstrumentFuture   InstrumentType = "future"
	InstrumentUnknown  InstrumentType = "unknown"
)

// AllInstrumentTypes lists every tag in a stable order, for initializing
// per-type result buckets.
func AllInstrumentTypes() []InstrumentType {
	return []InstrumentType{
		InstrumentStock,
		InstrumentREITFund,
		InstrumentETF,
		InstrumentOption,
		InstrumentFuture,
		InstrumentUnknown,
	}
}

// OperationSide is the direction of a trade.
type OperationSide string

const (
	SideBuy  OperationSide = "buy"
	SideSell OperationSide = "sell"
)

// Operation is one matched trade line from a settlement note.
type Operation struct {
	ID             int64          `json:"id,omitempty"` // Database primary key
	NoteID         string         `json:"note_id,omitempty"`
	Side           OperationSide  `json:"side"`
	AssetCode      string         `json:"asset_code"` // Exchange ticker, uppercase, trimmed
	InstrumentType InstrumentType `json:"instrument_type"`
	Quantity       int            `json:"quantity"`
	UnitPrice      float64        `json:"unit_price"`
	TradeDate      string         `json:"trade_date"`  // ISO (YYYY-MM-DD) once normalized
	TotalValue     float64        `json:"total_value"` // As stated by the note, not recomputed
	BrokerageFee   float64        `json:"brokerage_fee"`
	IsDayTrade     bool           `json:"is_day_trade"`
	IsInBlock      bool           `json:"is_in_block"` // Only in-block operations reach aggregation
	OptionStrike   string         `json:"option_strike,omitempty"`
	BaseInstrument string         `json:"base_instrument,omitempty"`
}

// ExtractedOperation is the intermediate form produced by the detailed
// line-oriented extractor, before registry validation and enrichment.
// Dates are still in the DD/MM/YYYY form the note states them in.
type ExtractedOperation struct {
	Side           OperationSide `json:"side"`
	AssetCode      string        `json:"asset_code"`
	Quantity       int           `json:"quantity"`
	UnitPrice      float64       `json:"unit_price"`
	TotalValue     float64       `json:"total_value"`
	TradeDate      string        `json:"trade_date"`
	IsDayTrade     bool          `json:"is_day_trade"` // Set only when same-day buy+sell pairing is already evident
	Strike         string        `json:"strike,omitempty"`
	BaseInstrument string        `json:"base_instrument,omitempty"`
	RawLine        string        `json:"raw_line,omitempty"`
}

// ExtractedAsset is a code/type pair found by the block-scoped extractor.
type ExtractedAsset struct {
	Code string         `json:"code"`
	Type InstrumentType `json:"type"`
}

// BlockExtraction is the result of the block-scoped text extraction pass.
type BlockExtraction struct {
	Assets            []ExtractedAsset `json:"assets"`
	InRecognizedBlock bool             `json:"in_recognized_block"`
	BlockOffsets      []int            `json:"block_offsets"`
}

package models

// PortfolioPosition is one currently-held instrument, fully recomputed from
// the validated operation history each time the history changes.
type PortfolioPosition struct {
	AssetCode      string         `json:"asset_code"`
	InstrumentType InstrumentType `json:"instrument_type"`
	Quantity       int            `json:"quantity"`     // Signed running total
	AverageCost    float64        `json:"average_cost"` // 0 when accumulated quantity is 0
	TotalValue     float64        `json:"total_value"`  // Quantity × AverageCost
}

// PositionWithQuote enriches a position with the latest market quote.
// When no quote is available the rentability display falls back to the
// average cost and Status reports it.
type PositionWithQuote struct {
	PortfolioPosition
	CurrentPrice  float64 `json:"current_price"`
	ChangePercent float64 `json:"change_percent"`
	MarketValue   float64 `json:"market_value"`
	QuoteStatus   string  `json:"quote_status"` // "OK" or "UNAVAILABLE"
}

// ReconciliationResult is the output of the day-trade reconciliation engine.
type ReconciliationResult struct {
	Portfolio        []PortfolioPosition            `json:"portfolio"`
	DayTradeResult   float64                        `json:"day_trade_result"`
	SwingTradeResult float64                        `json:"swing_trade_result"`
	ResultByType     map[InstrumentType]TradeResult `json:"result_by_instrument_type"`
}

// TaxLiability is a derived snapshot, recomputed from the full operation
// history, never persisted independently of that recomputation.
type TaxLiability struct {
	DayTrade    float64                        `json:"day_trade"`
	SwingTrade  float64                        `json:"swing_trade"`
	CarriedLoss float64                        `json:"carried_loss"` // Advisory heuristic, not precise tax law
	ByType      map[InstrumentType]TradeResult `json:"by_instrument_type"`
}

// Quote is one market-quote record from the external quote collaborator.
type Quote struct {
	AssetCode     string  `json:"asset_code"`
	Price         float64 `json:"price"`
	ChangePercent float64 `json:"change_percent"`
	AsOf          string  `json:"as_of"`
}

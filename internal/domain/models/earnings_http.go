package models

// EarningsRequest is the query contract for GET /api/earnings.
type EarningsRequest struct {
	Date   string `query:"date" validate:"required,datetime=2006-01-02"`
	Timing string `query:"timing" validate:"omitempty,oneof=before-open after-close"`
}

// StrategyRequest is the query contract for GET /api/strategy/:ticker.
type StrategyRequest struct {
	// Tickers may carry class suffixes (BRK.B, RDS-A), so no alphanum rule.
	Ticker string `param:"ticker" validate:"required,max=10"`
	Date   string `query:"date" validate:"omitempty,datetime=2006-01-02"`
}

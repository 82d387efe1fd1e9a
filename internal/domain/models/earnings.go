package models

// Timing is the earnings announcement slot relative to the trading session.
type Timing string

const (
	TimingBeforeOpen Timing = "before-open"
	TimingAfterClose Timing = "after-close"
)

// Direction of one historical earnings move.
type Direction string

const (
	DirectionUp   Direction = "up"
	DirectionDown Direction = "down"
)

// HistorySource tags what kind of historical moves a stock carries.
// Actual price moves are preferred; EPS-surprise percentages are a proxy
// and not numerically equivalent.
type HistorySource string

const (
	HistorySourcePrice       HistorySource = "price"
	HistorySourceEPSSurprise HistorySource = "eps-surprise"
)

// IVSource tags where the implied move came from.
type IVSource string

const (
	IVSourceNone      IVSource = "none"
	IVSourceEstimated IVSource = "estimated"
	IVSourceTradier   IVSource = "tradier"
	IVSourceYahoo     IVSource = "yahoo"
)

// EarningsEntry is one raw calendar row from a provider. Entries are
// immutable and discarded after enrichment.
type EarningsEntry struct {
	Ticker          string  `json:"ticker"`
	Date            string  `json:"date"` // YYYY-MM-DD
	Timing          Timing  `json:"timing"`
	EPSEstimate     float64 `json:"epsEstimate"`
	EPSPrior        float64 `json:"epsPrior"`
	RevenueEstimate float64 `json:"revenueEstimate"`
	Provider        string  `json:"provider"`
}

// HistoricalMove is one past earnings event. MovePct is an absolute
// percentage; Direction carries the sign.
type HistoricalMove struct {
	Quarter   string    `json:"quarter"`
	Date      string    `json:"date"`
	MovePct   float64   `json:"movePct"`
	Direction Direction `json:"direction"`
}

// NewsItem is one recent headline with a coarse sentiment tag.
type NewsItem struct {
	Headline  string `json:"headline"`
	Sentiment string `json:"sentiment"` // positive, negative, neutral
	URL       string `json:"url,omitempty"`
	Date      string `json:"date,omitempty"`
}

// ImpliedMoveQuote is the ATM-straddle expected move for the nearest expiry.
type ImpliedMoveQuote struct {
	ImpliedMovePct float64 `json:"impliedMovePct"`
	ImpliedVol     float64 `json:"impliedVol"`
	NearestExpiry  string  `json:"nearestExpiry"`
}

// EnrichedStock is the central aggregate: one upcoming earnings event with
// everything the strategy engine needs. Built once per request cycle and
// never mutated afterwards; identity is (Ticker, Date) only.
type EnrichedStock struct {
	Ticker           string           `json:"ticker"`
	CompanyName      string           `json:"companyName"`
	Price            float64          `json:"price"`
	MarketCap        float64          `json:"marketCap"`
	Sector           string           `json:"sector,omitempty"`
	Date             string           `json:"date"`
	Timing           Timing           `json:"timing"`
	ImpliedMove      float64          `json:"impliedMove"` // percent, 0 if unknown
	IVSource         IVSource         `json:"ivSource"`
	HistoricalMoves  []HistoricalMove `json:"historicalMoves"` // newest first, max 20
	HistorySource    HistorySource    `json:"historySource"`
	EPSEstimate      float64          `json:"epsEstimate"`
	EPSPrior         float64          `json:"epsPrior"`
	RevenueEstimate  float64          `json:"revenueEstimate"`
	News             []NewsItem       `json:"news,omitempty"`
	HasWeeklyOptions bool             `json:"hasWeeklyOptions"`
}

// EarningsResult is the orchestrator output for one (date, timing) request.
// Source "error" is the not-configured / total-failure sentinel; callers
// check it rather than catching anything.
type EarningsResult struct {
	Date     string          `json:"date"`
	Timing   Timing          `json:"timing,omitempty"`
	Source   string          `json:"source"`
	Count    int             `json:"count"`
	Earnings []EnrichedStock `json:"earnings"`
	Message  string          `json:"message,omitempty"`
}

// SourceError marks a result produced with no usable calendar provider.
const SourceError = "error"

// TodaysPlays pairs today's after-close names with the next trading day's
// before-open names.
type TodaysPlays struct {
	Today          string            `json:"today"`
	NextTradingDay string            `json:"nextTradingDay"`
	AMCEarnings    []EnrichedStock   `json:"amcEarnings"`
	BMOEarnings    []EnrichedStock   `json:"bmoEarnings"`
	Sources        map[string]string `json:"sources"`
}

// Quote is a spot snapshot from the quote provider.
type Quote struct {
	Ticker      string  `json:"ticker"`
	CompanyName string  `json:"companyName"`
	Price       float64 `json:"price"`
	MarketCap   float64 `json:"marketCap"`
}

// CompanyProfile is static descriptive data for a ticker.
type CompanyProfile struct {
	Ticker string `json:"ticker"`
	Name   string `json:"name"`
	Sector string `json:"sector"`
}

package models

// Strategy identifies a payoff shape the engine can recommend.
type Strategy string

const (
	StrategySkip            Strategy = "skip"
	StrategyNakedCall       Strategy = "naked_call"
	StrategyNakedPut        Strategy = "naked_put"
	StrategyBearCallSpread  Strategy = "bear_call_spread"
	StrategyBullPutSpread   Strategy = "bull_put_spread"
	StrategySkewedStrangle  Strategy = "skewed_strangle"
	StrategyShortStrangle   Strategy = "short_strangle"
	StrategyIronCondor      Strategy = "iron_condor"
	StrategyWideIronCondor  Strategy = "wide_iron_condor"
)

// RiskLevel labels the downside profile of a recommendation.
type RiskLevel string

const (
	RiskLow     RiskLevel = "low"
	RiskMedium  RiskLevel = "medium"
	RiskHigh    RiskLevel = "high"
	RiskExtreme RiskLevel = "extreme"
)

// LegAction and LegInstrument describe one option leg.
type LegAction string

const (
	ActionSell LegAction = "sell"
	ActionBuy  LegAction = "buy"
)

type LegInstrument string

const (
	InstrumentCall LegInstrument = "call"
	InstrumentPut  LegInstrument = "put"
)

// Leg is one option contract in a recommended structure.
type Leg struct {
	Action     LegAction     `json:"action"`
	Instrument LegInstrument `json:"instrument"`
	Strike     float64       `json:"strike"`
}

// StrategyRecommendation is the engine output. Computed fresh on every call
// from an EnrichedStock; never persisted.
type StrategyRecommendation struct {
	Ticker     string    `json:"ticker"`
	Strategy   Strategy  `json:"strategy"`
	Label      string    `json:"label"`
	Legs       []Leg     `json:"legs,omitempty"`
	Confidence float64   `json:"confidence"` // 0-100
	RiskLevel  RiskLevel `json:"riskLevel"`
	Rationale  string    `json:"rationale"`
}

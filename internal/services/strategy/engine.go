// Package strategy converts an enriched stock's implied and historical move
// statistics into a concrete options structure. The engine is a pure,
// deterministic cascade: rules are evaluated in order and the first match
// wins. It never returns an error; every input maps to a recommendation,
// including the skip variants.
package strategy

import (
	"fmt"
	"math"

	"EarnPull/internal/domain/models"
	"EarnPull/internal/services/movestats"
)

// Engine evaluates the recommendation cascade under one policy.
type Engine struct {
	policy Policy
	rules  []rule
}

// inputs carries everything the rules need, computed once per call.
type inputs struct {
	stock    *models.EnrichedStock
	crush    float64
	winRate  float64
	bias     movestats.Bias
	biasPct  float64 // share of the dominant direction, percent
	bearish  bool
	zones    movestats.Zones
	avgMove  float64
	stdDev   float64
}

// rule is one (predicate, builder) pair in the ordered cascade.
type rule struct {
	name  string
	match func(in *inputs) bool
	build func(in *inputs) models.StrategyRecommendation
}

// NewEngine creates an engine with the given policy.
func NewEngine(policy Policy) *Engine {
	e := &Engine{policy: policy}
	e.rules = []rule{
		{"insufficient_data", e.matchInsufficientData, e.buildInsufficientData},
		{"too_risky", e.matchTooRisky, e.buildTooRisky},
		{"strong_bias", e.matchStrongBias, e.buildStrongBias},
		{"moderate_bias", e.matchModerateBias, e.buildModerateBias},
		{"neutral", func(*inputs) bool { return true }, e.buildNeutral},
	}
	return e
}

// Recommend runs the cascade over one stock.
func (e *Engine) Recommend(stock *models.EnrichedStock) models.StrategyRecommendation {
	in := e.prepare(stock)
	for _, r := range e.rules {
		if r.match(in) {
			rec := r.build(in)
			rec.Ticker = stock.Ticker
			return rec
		}
	}
	// unreachable: the neutral rule always matches
	return models.StrategyRecommendation{Ticker: stock.Ticker, Strategy: models.StrategySkip}
}

func (e *Engine) prepare(stock *models.EnrichedStock) *inputs {
	moves := stock.HistoricalMoves
	in := &inputs{
		stock:   stock,
		crush:   movestats.IVCrushRatio(stock.ImpliedMove, moves),
		winRate: movestats.HistoricalWinRate(stock.ImpliedMove, moves),
		bias:    movestats.DirectionalBias(moves, e.policy.BiasLookback),
		zones:   movestats.SafeZone(stock.Price, stock.ImpliedMove, moves, e.policy.ZoneConfidence),
		avgMove: movestats.AverageAbsMove(moves),
		stdDev:  movestats.StdDevAbsMove(moves),
	}
	total := in.bias.UpCount + in.bias.DownCount
	if total > 0 {
		upPct := float64(in.bias.UpCount) / float64(total) * 100
		downPct := float64(in.bias.DownCount) / float64(total) * 100
		if downPct >= upPct {
			in.biasPct = downPct
			in.bearish = true
		} else {
			in.biasPct = upPct
		}
	}
	return in
}

// --- rule 1: insufficient data ---

func (e *Engine) matchInsufficientData(in *inputs) bool {
	return len(in.stock.HistoricalMoves) < e.policy.MinQuarters || in.stock.ImpliedMove <= 0
}

func (e *Engine) buildInsufficientData(in *inputs) models.StrategyRecommendation {
	return models.StrategyRecommendation{
		Strategy:   models.StrategySkip,
		Label:      "Skip",
		Confidence: 0,
		RiskLevel:  models.RiskMedium,
		Rationale: fmt.Sprintf("insufficient data: %d historical quarters (need %d) and implied move %.1f%%",
			len(in.stock.HistoricalMoves), e.policy.MinQuarters, in.stock.ImpliedMove),
	}
}

// --- rule 2: too risky ---

func (e *Engine) matchTooRisky(in *inputs) bool {
	return in.crush < e.policy.SkipCrushBelow && in.winRate < e.policy.SkipWinRateBelow
}

func (e *Engine) buildTooRisky(in *inputs) models.StrategyRecommendation {
	return models.StrategyRecommendation{
		Strategy:   models.StrategySkip,
		Label:      "Skip",
		Confidence: 0,
		RiskLevel:  models.RiskExtreme,
		Rationale: fmt.Sprintf("too risky: options price only %.2fx the %.1f%% historical average move and just %.0f%% of past moves stayed inside the implied range",
			in.crush, in.avgMove, in.winRate),
	}
}

// --- rule 3: strong directional bias ---

func (e *Engine) matchStrongBias(in *inputs) bool {
	return in.biasPct >= e.policy.StrongBiasPct
}

func (e *Engine) buildStrongBias(in *inputs) models.StrategyRecommendation {
	naked := in.crush >= e.policy.NakedCrush && in.winRate >= e.policy.NakedWinRate
	biasLine := fmt.Sprintf("%d of the last %d post-earnings moves were %s (%.0f%%)",
		e.dominantCount(in), in.bias.UpCount+in.bias.DownCount, e.dominantWord(in), in.biasPct)
	statLine := fmt.Sprintf("implied %.1f%% vs %.1f%% historical average (crush %.2f), win rate %.0f%%",
		in.stock.ImpliedMove, in.avgMove, in.crush, in.winRate)

	if in.bearish {
		short := roundStrike(in.zones.Safe.High)
		if naked {
			return models.StrategyRecommendation{
				Strategy:   models.StrategyNakedCall,
				Label:      "Naked Call",
				Legs:       []models.Leg{{Action: models.ActionSell, Instrument: models.InstrumentCall, Strike: short}},
				Confidence: capConf(95, in.winRate*0.9+in.crush*10),
				RiskLevel:  models.RiskHigh,
				Rationale:  fmt.Sprintf("%s; %s. Selling the %.2f call above the safe band.", biasLine, statLine, short),
			}
		}
		wing := roundStrike(short * (1 + e.policy.WingPct/100))
		return models.StrategyRecommendation{
			Strategy: models.StrategyBearCallSpread,
			Label:    "Bear Call Spread",
			Legs: []models.Leg{
				{Action: models.ActionSell, Instrument: models.InstrumentCall, Strike: short},
				{Action: models.ActionBuy, Instrument: models.InstrumentCall, Strike: wing},
			},
			Confidence: capConf(85, in.winRate*0.85+in.crush*8),
			RiskLevel:  models.RiskMedium,
			Rationale:  fmt.Sprintf("%s; %s. Defined risk: short %.2f call protected %.0f%% higher at %.2f.", biasLine, statLine, short, e.policy.WingPct, wing),
		}
	}

	short := roundStrike(in.zones.Safe.Low)
	if naked {
		return models.StrategyRecommendation{
			Strategy:   models.StrategyNakedPut,
			Label:      "Naked Put",
			Legs:       []models.Leg{{Action: models.ActionSell, Instrument: models.InstrumentPut, Strike: short}},
			Confidence: capConf(95, in.winRate*0.9+in.crush*10),
			RiskLevel:  models.RiskHigh,
			Rationale:  fmt.Sprintf("%s; %s. Selling the %.2f put below the safe band.", biasLine, statLine, short),
		}
	}
	wing := roundStrike(short * (1 - e.policy.WingPct/100))
	return models.StrategyRecommendation{
		Strategy: models.StrategyBullPutSpread,
		Label:    "Bull Put Spread",
		Legs: []models.Leg{
			{Action: models.ActionSell, Instrument: models.InstrumentPut, Strike: short},
			{Action: models.ActionBuy, Instrument: models.InstrumentPut, Strike: wing},
		},
		Confidence: capConf(85, in.winRate*0.85+in.crush*8),
		RiskLevel:  models.RiskMedium,
		Rationale:  fmt.Sprintf("%s; %s. Defined risk: short %.2f put protected %.0f%% lower at %.2f.", biasLine, statLine, short, e.policy.WingPct, wing),
	}
}

// --- rule 4: moderate directional bias ---

func (e *Engine) matchModerateBias(in *inputs) bool {
	return in.biasPct >= e.policy.ModerateBiasPct
}

func (e *Engine) buildModerateBias(in *inputs) models.StrategyRecommendation {
	biasLine := fmt.Sprintf("moderate %s bias: %d of the last %d moves (%.0f%%)",
		e.dominantWord(in), e.dominantCount(in), in.bias.UpCount+in.bias.DownCount, in.biasPct)
	statLine := fmt.Sprintf("crush %.2f, win rate %.0f%%", in.crush, in.winRate)

	if in.crush >= e.policy.SkewedCrush {
		// Tighter strike on the dominant side (aggressive band), wider on
		// the other (conservative band).
		var callStrike, putStrike float64
		if in.bearish {
			putStrike = roundStrike(in.zones.Aggressive.Low)
			callStrike = roundStrike(in.zones.Conservative.High)
		} else {
			callStrike = roundStrike(in.zones.Aggressive.High)
			putStrike = roundStrike(in.zones.Conservative.Low)
		}
		return models.StrategyRecommendation{
			Strategy: models.StrategySkewedStrangle,
			Label:    "Skewed Strangle",
			Legs: []models.Leg{
				{Action: models.ActionSell, Instrument: models.InstrumentCall, Strike: callStrike},
				{Action: models.ActionSell, Instrument: models.InstrumentPut, Strike: putStrike},
			},
			Confidence: capConf(85, in.winRate*0.85+in.crush*8),
			RiskLevel:  models.RiskHigh,
			Rationale:  fmt.Sprintf("%s; %s. Strikes skewed: %.2f call / %.2f put.", biasLine, statLine, callStrike, putStrike),
		}
	}

	if in.bearish {
		short := roundStrike(in.zones.Safe.High)
		wing := roundStrike(short * (1 + e.policy.WingPct/100))
		return models.StrategyRecommendation{
			Strategy: models.StrategyBearCallSpread,
			Label:    "Bear Call Spread",
			Legs: []models.Leg{
				{Action: models.ActionSell, Instrument: models.InstrumentCall, Strike: short},
				{Action: models.ActionBuy, Instrument: models.InstrumentCall, Strike: wing},
			},
			Confidence: capConf(80, in.winRate*0.8+in.crush*8),
			RiskLevel:  models.RiskMedium,
			Rationale:  fmt.Sprintf("%s; %s. Credit spread on the weak side: short %.2f call, wing at %.2f.", biasLine, statLine, short, wing),
		}
	}
	short := roundStrike(in.zones.Safe.Low)
	wing := roundStrike(short * (1 - e.policy.WingPct/100))
	return models.StrategyRecommendation{
		Strategy: models.StrategyBullPutSpread,
		Label:    "Bull Put Spread",
		Legs: []models.Leg{
			{Action: models.ActionSell, Instrument: models.InstrumentPut, Strike: short},
			{Action: models.ActionBuy, Instrument: models.InstrumentPut, Strike: wing},
		},
		Confidence: capConf(80, in.winRate*0.8+in.crush*8),
		RiskLevel:  models.RiskMedium,
		Rationale:  fmt.Sprintf("%s; %s. Credit spread on the strong side: short %.2f put, wing at %.2f.", biasLine, statLine, short, wing),
	}
}

// --- rule 5: neutral ---

func (e *Engine) buildNeutral(in *inputs) models.StrategyRecommendation {
	consistency := 0.0
	if in.avgMove > 0 {
		consistency = 1 - in.stdDev/in.avgMove
	}
	statLine := fmt.Sprintf("implied %.1f%% vs %.1f%% average (crush %.2f), win rate %.0f%%",
		in.stock.ImpliedMove, in.avgMove, in.crush, in.winRate)

	if in.crush >= e.policy.StrangleCrush && in.winRate >= e.policy.StrangleWinRate && consistency > e.policy.MinConsistency {
		call := roundStrike(in.zones.Safe.High)
		put := roundStrike(in.zones.Safe.Low)
		return models.StrategyRecommendation{
			Strategy: models.StrategyShortStrangle,
			Label:    "Short Strangle",
			Legs: []models.Leg{
				{Action: models.ActionSell, Instrument: models.InstrumentCall, Strike: call},
				{Action: models.ActionSell, Instrument: models.InstrumentPut, Strike: put},
			},
			Confidence: capConf(95, in.winRate*0.9+in.crush*10),
			RiskLevel:  models.RiskHigh,
			Rationale:  fmt.Sprintf("no directional lean; %s, move consistency %.2f. Selling the %.2f/%.2f strangle at the safe band.", statLine, consistency, call, put),
		}
	}

	if in.crush >= e.policy.CondorCrush && in.winRate >= e.policy.CondorWinRate {
		return e.buildCondor(in, models.StrategyIronCondor, "Iron Condor", in.zones.Safe,
			capConf(85, in.winRate*0.85+in.crush*8), models.RiskMedium, statLine)
	}
	if in.crush >= e.policy.WideCondorCrush && in.winRate >= e.policy.WideCondorWinRate {
		return e.buildCondor(in, models.StrategyWideIronCondor, "Wide Iron Condor", in.zones.Conservative,
			capConf(75, in.winRate*0.75+in.crush*5), models.RiskLow, statLine)
	}

	return models.StrategyRecommendation{
		Strategy:   models.StrategySkip,
		Label:      "Skip",
		Confidence: 0,
		RiskLevel:  models.RiskMedium,
		Rationale:  fmt.Sprintf("unfavorable setup: %s", statLine),
	}
}

func (e *Engine) buildCondor(in *inputs, id models.Strategy, label string, band movestats.Zone, conf float64, risk models.RiskLevel, statLine string) models.StrategyRecommendation {
	shortCall := roundStrike(band.High)
	shortPut := roundStrike(band.Low)
	longCall := roundStrike(shortCall * (1 + e.policy.WingPct/100))
	longPut := roundStrike(shortPut * (1 - e.policy.WingPct/100))
	return models.StrategyRecommendation{
		Strategy: id,
		Label:    label,
		Legs: []models.Leg{
			{Action: models.ActionSell, Instrument: models.InstrumentCall, Strike: shortCall},
			{Action: models.ActionBuy, Instrument: models.InstrumentCall, Strike: longCall},
			{Action: models.ActionSell, Instrument: models.InstrumentPut, Strike: shortPut},
			{Action: models.ActionBuy, Instrument: models.InstrumentPut, Strike: longPut},
		},
		Confidence: conf,
		RiskLevel:  risk,
		Rationale:  fmt.Sprintf("no directional lean; %s. Short strikes %.2f/%.2f with wings %.0f%% out.", statLine, shortCall, shortPut, e.policy.WingPct),
	}
}

// --- helpers ---

func (e *Engine) dominantCount(in *inputs) int {
	if in.bearish {
		return in.bias.DownCount
	}
	return in.bias.UpCount
}

func (e *Engine) dominantWord(in *inputs) string {
	if in.bearish {
		return "down"
	}
	return "up"
}

func capConf(limit, v float64) float64 {
	return math.Min(limit, v)
}

// roundStrike snaps to the nearest half-dollar, the coarsest increment
// listed across optionable names.
func roundStrike(v float64) float64 {
	return math.Round(v*2) / 2
}

package strategy

import (
	"strings"
	"testing"

	"EarnPull/internal/domain/models"
)

func stock(implied float64, pcts []float64, dirs []models.Direction) *models.EnrichedStock {
	moves := make([]models.HistoricalMove, len(pcts))
	for i := range pcts {
		moves[i] = models.HistoricalMove{MovePct: pcts[i], Direction: dirs[i]}
	}
	return &models.EnrichedStock{
		Ticker:          "TEST",
		Price:           100,
		ImpliedMove:     implied,
		IVSource:        models.IVSourceTradier,
		HistoricalMoves: moves,
	}
}

func dirs(pattern string) []models.Direction {
	out := make([]models.Direction, len(pattern))
	for i, c := range pattern {
		if c == 'u' {
			out[i] = models.DirectionUp
		} else {
			out[i] = models.DirectionDown
		}
	}
	return out
}

func TestRecommendInsufficientData(t *testing.T) {
	e := NewEngine(DefaultPolicy())

	rec := e.Recommend(stock(6, []float64{3, 5, 2}, dirs("udu")))
	if rec.Strategy != models.StrategySkip {
		t.Fatalf("expected skip, got %v", rec.Strategy)
	}
	if rec.Confidence != 0 {
		t.Fatalf("expected confidence 0, got %v", rec.Confidence)
	}
	if !strings.Contains(rec.Rationale, "insufficient data") {
		t.Fatalf("unexpected rationale %q", rec.Rationale)
	}

	// No implied move skips too, regardless of history depth.
	rec = e.Recommend(stock(0, []float64{3, 5, 2, 4, 3, 5, 2, 4}, dirs("udududud")))
	if rec.Strategy != models.StrategySkip || !strings.Contains(rec.Rationale, "insufficient data") {
		t.Fatalf("expected insufficient-data skip, got %v (%q)", rec.Strategy, rec.Rationale)
	}
}

func TestRecommendTooRisky(t *testing.T) {
	e := NewEngine(DefaultPolicy())

	// avg=5, implied=4 -> crush 0.8 < 0.85; win rate 0 < 55.
	rec := e.Recommend(stock(4, []float64{4, 6, 5, 5}, dirs("udud")))
	if rec.Strategy != models.StrategySkip {
		t.Fatalf("expected skip, got %v", rec.Strategy)
	}
	if rec.RiskLevel != models.RiskExtreme {
		t.Fatalf("expected extreme risk, got %v", rec.RiskLevel)
	}
	if !strings.Contains(rec.Rationale, "too risky") {
		t.Fatalf("unexpected rationale %q", rec.Rationale)
	}
}

func TestRecommendStrongBearishNakedCall(t *testing.T) {
	e := NewEngine(DefaultPolicy())

	// 6 down / 2 up of the last 8; avg=3.75, implied=5.25 -> crush 1.4,
	// win rate 75. Both naked thresholds hold, so no defined-risk fallback.
	pcts := []float64{2, 3, 2, 4, 3, 2, 6, 8}
	rec := e.Recommend(stock(5.25, pcts, dirs("dduddddu")))
	if rec.Strategy != models.StrategyNakedCall {
		t.Fatalf("expected naked_call, got %v", rec.Strategy)
	}
	if len(rec.Legs) != 1 || rec.Legs[0].Action != models.ActionSell || rec.Legs[0].Instrument != models.InstrumentCall {
		t.Fatalf("unexpected legs %+v", rec.Legs)
	}
	if rec.RiskLevel != models.RiskHigh {
		t.Fatalf("expected high risk, got %v", rec.RiskLevel)
	}
	if !strings.Contains(rec.Rationale, "75%") {
		t.Fatalf("rationale must quote the bias percentage, got %q", rec.Rationale)
	}
}

func TestRecommendStrongBullishSpreadFallback(t *testing.T) {
	e := NewEngine(DefaultPolicy())

	// 6 up / 2 down; crush 1.2 misses the naked threshold -> bull put spread.
	pcts := []float64{2, 3, 2, 4, 3, 2, 6, 8}
	rec := e.Recommend(stock(4.5, pcts, dirs("uuduuuud")))
	if rec.Strategy != models.StrategyBullPutSpread {
		t.Fatalf("expected bull_put_spread, got %v", rec.Strategy)
	}
	if len(rec.Legs) != 2 {
		t.Fatalf("expected 2 legs, got %d", len(rec.Legs))
	}
	if rec.Legs[0].Action != models.ActionSell || rec.Legs[1].Action != models.ActionBuy {
		t.Fatalf("unexpected legs %+v", rec.Legs)
	}
	if rec.Legs[1].Strike >= rec.Legs[0].Strike {
		t.Fatalf("protective put must sit below the short strike: %+v", rec.Legs)
	}
}

func TestRecommendModerateBiasSkewedStrangle(t *testing.T) {
	e := NewEngine(DefaultPolicy())

	// 5 down / 3 up = 62.5%; crush 1.5 >= 1.3.
	pcts := []float64{3, 3, 3, 3, 3, 3, 3, 3}
	rec := e.Recommend(stock(4.5, pcts, dirs("ddduduud")))
	if rec.Strategy != models.StrategySkewedStrangle {
		t.Fatalf("expected skewed_strangle, got %v", rec.Strategy)
	}
	if len(rec.Legs) != 2 {
		t.Fatalf("expected 2 legs, got %d", len(rec.Legs))
	}
}

func TestRecommendModerateBiasSpread(t *testing.T) {
	e := NewEngine(DefaultPolicy())

	// 5 down / 3 up, crush 1.1 < 1.3 -> bear call spread.
	pcts := []float64{3, 3, 3, 3, 3, 3, 3, 3}
	rec := e.Recommend(stock(3.3, pcts, dirs("ddduduud")))
	if rec.Strategy != models.StrategyBearCallSpread {
		t.Fatalf("expected bear_call_spread, got %v", rec.Strategy)
	}
}

func TestRecommendNeutralShortStrangle(t *testing.T) {
	e := NewEngine(DefaultPolicy())

	// 4/4 split, crush 1.6, win rate 100, perfect consistency.
	pcts := []float64{2, 2, 2, 2, 2, 2, 2, 2}
	rec := e.Recommend(stock(3.2, pcts, dirs("udududud")))
	if rec.Strategy != models.StrategyShortStrangle {
		t.Fatalf("expected short_strangle, got %v", rec.Strategy)
	}
	if rec.Confidence > 95 {
		t.Fatalf("confidence must be capped at 95, got %v", rec.Confidence)
	}
}

func TestRecommendNeutralIronCondor(t *testing.T) {
	e := NewEngine(DefaultPolicy())

	// crush 1.4 misses the strangle bar but clears the condor bar; win rate 100.
	pcts := []float64{2, 4, 2, 4, 2, 4, 2, 4}
	rec := e.Recommend(stock(4.2, pcts, dirs("udududud")))
	if rec.Strategy != models.StrategyIronCondor {
		t.Fatalf("expected iron_condor, got %v", rec.Strategy)
	}
	if len(rec.Legs) != 4 {
		t.Fatalf("expected 4 legs, got %d", len(rec.Legs))
	}
}

func TestRecommendNeutralWideIronCondor(t *testing.T) {
	e := NewEngine(DefaultPolicy())

	// avg=2.8, implied=3.1 -> crush ~1.107; win rate 60 exactly.
	pcts := []float64{2, 2, 2, 2, 2, 2, 4, 4, 4, 4}
	rec := e.Recommend(stock(3.1, pcts, dirs("udududududud"[:10])))
	if rec.Strategy != models.StrategyWideIronCondor {
		t.Fatalf("expected wide_iron_condor, got %v", rec.Strategy)
	}
	if rec.RiskLevel != models.RiskLow {
		t.Fatalf("expected low risk, got %v", rec.RiskLevel)
	}
}

func TestRecommendNeutralSkip(t *testing.T) {
	e := NewEngine(DefaultPolicy())

	// crush 0.9 (not < 0.85, so the gate rule passes) with win rate 50:
	// fails every neutral branch.
	pcts := []float64{2, 4, 2, 4, 2, 4, 2, 4}
	rec := e.Recommend(stock(2.7, pcts, dirs("udududud")))
	if rec.Strategy != models.StrategySkip {
		t.Fatalf("expected skip, got %v", rec.Strategy)
	}
	if !strings.Contains(rec.Rationale, "unfavorable setup") {
		t.Fatalf("unexpected rationale %q", rec.Rationale)
	}
}

func TestRecommendNeverErrors(t *testing.T) {
	e := NewEngine(DefaultPolicy())

	rec := e.Recommend(&models.EnrichedStock{Ticker: "EMPTY"})
	if rec.Strategy != models.StrategySkip {
		t.Fatalf("empty stock must map to skip, got %v", rec.Strategy)
	}
	if rec.Ticker != "EMPTY" {
		t.Fatalf("ticker must be carried through, got %q", rec.Ticker)
	}
}

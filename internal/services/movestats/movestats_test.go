package movestats

import (
	"math"
	"testing"

	"EarnPull/internal/domain/models"
)

func mv(pct float64, dir models.Direction) models.HistoricalMove {
	return models.HistoricalMove{MovePct: pct, Direction: dir}
}

var sampleMoves = []models.HistoricalMove{
	mv(3, models.DirectionUp),
	mv(5, models.DirectionDown),
	mv(2, models.DirectionUp),
	mv(4, models.DirectionDown),
}

func TestAverageAbsMove(t *testing.T) {
	if got := AverageAbsMove(sampleMoves); got != 3.5 {
		t.Fatalf("expected 3.5, got %v", got)
	}
	if got := AverageAbsMove(nil); got != 0 {
		t.Fatalf("expected 0 for empty set, got %v", got)
	}
}

func TestMedianAbsMove(t *testing.T) {
	if got := MedianAbsMove(sampleMoves); got != 3.5 {
		t.Fatalf("expected 3.5, got %v", got)
	}
	odd := append([]models.HistoricalMove{mv(10, models.DirectionUp)}, sampleMoves...)
	if got := MedianAbsMove(odd); got != 4 {
		t.Fatalf("expected 4, got %v", got)
	}
}

func TestStdDevAbsMove(t *testing.T) {
	// values 3,5,2,4: sample variance = ((0.25+2.25+2.25+0.25)/3)
	want := math.Sqrt(5.0 / 3.0)
	if got := StdDevAbsMove(sampleMoves); math.Abs(got-want) > 1e-9 {
		t.Fatalf("expected %v, got %v", want, got)
	}
	if got := StdDevAbsMove(sampleMoves[:1]); got != 0 {
		t.Fatalf("expected 0 for single point, got %v", got)
	}
	if got := StdDevAbsMove(nil); got != 0 {
		t.Fatalf("expected 0 for empty set, got %v", got)
	}
}

func TestIVCrushRatio(t *testing.T) {
	got := IVCrushRatio(6, sampleMoves)
	if math.Abs(got-6/3.5) > 1e-9 {
		t.Fatalf("expected %.4f, got %.4f", 6/3.5, got)
	}
	if got := IVCrushRatio(6, nil); got != 0 {
		t.Fatalf("expected 0 when average is 0, got %v", got)
	}
}

func TestHistoricalWinRate(t *testing.T) {
	if got := HistoricalWinRate(6, sampleMoves); got != 100 {
		t.Fatalf("expected 100, got %v", got)
	}
	if got := HistoricalWinRate(4, sampleMoves); got != 50 {
		t.Fatalf("expected 50 (strictly less), got %v", got)
	}
	if got := HistoricalWinRate(2, sampleMoves); got != 0 {
		t.Fatalf("expected 0, got %v", got)
	}
}

func TestTradeSignalScenario(t *testing.T) {
	// avg=3.5, implied=6 -> crush ~1.714, winRate=100.
	if got := TradeSignal(6, sampleMoves); got != SignalExcellent {
		t.Fatalf("expected excellent, got %v", got)
	}
}

func TestTradeSignalThresholdOrder(t *testing.T) {
	moves := []models.HistoricalMove{
		mv(2, models.DirectionUp), mv(2, models.DirectionDown),
		mv(2, models.DirectionUp), mv(2, models.DirectionDown),
	}
	// avg=2; implied 2.5 -> crush 1.25, winRate 100 -> good (not excellent)
	if got := TradeSignal(2.5, moves); got != SignalGood {
		t.Fatalf("expected good, got %v", got)
	}
	// implied 2.1 -> crush 1.05, winRate 100 -> neutral
	if got := TradeSignal(2.1, moves); got != SignalNeutral {
		t.Fatalf("expected neutral, got %v", got)
	}
	// implied 1.5 -> crush 0.75 -> risky
	if got := TradeSignal(1.5, moves); got != SignalRisky {
		t.Fatalf("expected risky, got %v", got)
	}
}

func TestDirectionalBias(t *testing.T) {
	moves := []models.HistoricalMove{
		mv(3, models.DirectionDown), mv(4, models.DirectionDown),
		mv(2, models.DirectionUp), mv(5, models.DirectionDown),
		mv(1, models.DirectionDown), mv(2, models.DirectionDown),
		mv(6, models.DirectionUp), mv(3, models.DirectionDown),
		// beyond lookback, must be ignored:
		mv(9, models.DirectionUp), mv(9, models.DirectionUp),
	}
	b := DirectionalBias(moves, 8)
	if b.DownCount != 6 || b.UpCount != 2 {
		t.Fatalf("expected 6 down / 2 up, got %d/%d", b.DownCount, b.UpCount)
	}
	if b.Label != BiasBearish {
		t.Fatalf("expected bearish, got %v", b.Label)
	}
	if b.AvgUpMove != 4 {
		t.Fatalf("expected avg up move 4, got %v", b.AvgUpMove)
	}
	if math.Abs(b.AvgDownMove-3) > 1e-9 {
		t.Fatalf("expected avg down move 3, got %v", b.AvgDownMove)
	}
}

func TestSafeZone(t *testing.T) {
	z := SafeZone(100, 6, sampleMoves, 0.85)
	sd := StdDevAbsMove(sampleMoves)

	wantSafe := 3.5 + 1.5*sd
	if math.Abs(z.Safe.DistancePct-wantSafe) > 1e-9 {
		t.Fatalf("expected safe distance %.4f, got %.4f", wantSafe, z.Safe.DistancePct)
	}
	if math.Abs(z.Conservative.DistancePct-5.5) > 1e-9 {
		t.Fatalf("expected conservative distance 5.5, got %.4f", z.Conservative.DistancePct)
	}
	if z.Conservative.WinRate != 95 {
		t.Fatalf("conservative win rate is pinned at 95, got %v", z.Conservative.WinRate)
	}
	if math.Abs(z.Aggressive.DistancePct-4.2) > 1e-9 {
		t.Fatalf("expected aggressive distance 4.2, got %.4f", z.Aggressive.DistancePct)
	}
	if math.Abs(z.Safe.High-(100+wantSafe)) > 1e-9 || math.Abs(z.Safe.Low-(100-wantSafe)) > 1e-9 {
		t.Fatalf("unexpected safe strikes %.4f/%.4f", z.Safe.High, z.Safe.Low)
	}
}

func TestSafeZoneConfidenceMultiplier(t *testing.T) {
	sd := StdDevAbsMove(sampleMoves)
	low := SafeZone(100, 6, sampleMoves, 0.80)
	high := SafeZone(100, 6, sampleMoves, 0.90)
	if math.Abs(low.Safe.DistancePct-(3.5+1.0*sd)) > 1e-9 {
		t.Fatalf("expected 1.0 multiplier below 0.85")
	}
	if math.Abs(high.Safe.DistancePct-(3.5+2.0*sd)) > 1e-9 {
		t.Fatalf("expected 2.0 multiplier at 0.90")
	}
}

// Package movestats provides pure descriptive statistics over historical
// earnings moves. Everything here is deterministic and allocation-light;
// both the orchestrator's enrichment and the strategy engine consume it.
package movestats

import (
	"math"
	"sort"

	"EarnPull/internal/domain/models"
)

// DefaultBiasLookback is how many recent quarters directional bias considers.
const DefaultBiasLookback = 8

// AverageAbsMove returns the mean absolute move, or 0 for an empty set.
func AverageAbsMove(moves []models.HistoricalMove) float64 {
	if len(moves) == 0 {
		return 0
	}
	var sum float64
	for _, m := range moves {
		sum += m.MovePct
	}
	return sum / float64(len(moves))
}

// MedianAbsMove returns the median absolute move, or 0 for an empty set.
func MedianAbsMove(moves []models.HistoricalMove) float64 {
	if len(moves) == 0 {
		return 0
	}
	vals := make([]float64, len(moves))
	for i, m := range moves {
		vals[i] = m.MovePct
	}
	sort.Float64s(vals)
	mid := len(vals) / 2
	if len(vals)%2 == 0 {
		return (vals[mid-1] + vals[mid]) / 2
	}
	return vals[mid]
}

// MaxAbsMove returns the largest absolute move, or 0 for an empty set.
func MaxAbsMove(moves []models.HistoricalMove) float64 {
	var max float64
	for _, m := range moves {
		if m.MovePct > max {
			max = m.MovePct
		}
	}
	return max
}

// StdDevAbsMove returns the sample standard deviation (N-1 denominator) of
// the absolute moves. Fewer than 2 points yields 0.
func StdDevAbsMove(moves []models.HistoricalMove) float64 {
	if len(moves) < 2 {
		return 0
	}
	avg := AverageAbsMove(moves)
	var sum float64
	for _, m := range moves {
		d := m.MovePct - avg
		sum += d * d
	}
	return math.Sqrt(sum / float64(len(moves)-1))
}

// IVCrushRatio is the implied move divided by the historical average move.
// A ratio above 1 means the market is pricing a bigger move than history
// delivered, which favors premium sellers. 0 when the average is 0.
func IVCrushRatio(impliedMove float64, moves []models.HistoricalMove) float64 {
	avg := AverageAbsMove(moves)
	if avg == 0 {
		return 0
	}
	return impliedMove / avg
}

// HistoricalWinRate is the percentage of historical moves whose absolute
// value stayed strictly below the implied move.
func HistoricalWinRate(impliedMove float64, moves []models.HistoricalMove) float64 {
	if len(moves) == 0 {
		return 0
	}
	var wins int
	for _, m := range moves {
		if m.MovePct < impliedMove {
			wins++
		}
	}
	return float64(wins) / float64(len(moves)) * 100
}

// BiasLabel classifies the recent direction pattern.
type BiasLabel string

const (
	BiasBullish BiasLabel = "bullish"
	BiasBearish BiasLabel = "bearish"
	BiasNeutral BiasLabel = "neutral"
)

// Bias summarizes the direction of the most recent moves.
type Bias struct {
	UpCount     int
	DownCount   int
	AvgUpMove   float64
	AvgDownMove float64
	Label       BiasLabel
}

// DirectionalBias counts up/down moves in the most recent lookback entries
// (moves are ordered newest-first) and averages the magnitude per direction.
func DirectionalBias(moves []models.HistoricalMove, lookback int) Bias {
	if lookback <= 0 {
		lookback = DefaultBiasLookback
	}
	if lookback > len(moves) {
		lookback = len(moves)
	}

	var b Bias
	var upSum, downSum float64
	for _, m := range moves[:lookback] {
		if m.Direction == models.DirectionUp {
			b.UpCount++
			upSum += m.MovePct
		} else {
			b.DownCount++
			downSum += m.MovePct
		}
	}
	if b.UpCount > 0 {
		b.AvgUpMove = upSum / float64(b.UpCount)
	}
	if b.DownCount > 0 {
		b.AvgDownMove = downSum / float64(b.DownCount)
	}
	switch {
	case b.UpCount > b.DownCount:
		b.Label = BiasBullish
	case b.UpCount < b.DownCount:
		b.Label = BiasBearish
	default:
		b.Label = BiasNeutral
	}
	return b
}

// Zone is one symmetric strike band around the price.
type Zone struct {
	DistancePct float64
	High        float64
	Low         float64
	WinRate     float64
}

// Zones are the three safe-strike bands derived from history.
type Zones struct {
	Safe         Zone
	Conservative Zone
	Aggressive   Zone
}

// conservativeWinRate is pinned rather than derived: the band sits beyond
// the worst observed move, so the empirical formula would always say 100.
const conservativeWinRate = 95

// SafeZone computes the three strike bands around price. The safe band's
// stddev multiplier steps with the requested confidence: 1.0 below 0.85,
// 1.5 from 0.85, 2.0 from 0.90.
func SafeZone(price, impliedMove float64, moves []models.HistoricalMove, confidence float64) Zones {
	avg := AverageAbsMove(moves)
	sd := StdDevAbsMove(moves)
	med := MedianAbsMove(moves)
	max := MaxAbsMove(moves)

	mult := 1.0
	switch {
	case confidence >= 0.90:
		mult = 2.0
	case confidence >= 0.85:
		mult = 1.5
	}

	mkZone := func(dist float64, winRate float64) Zone {
		return Zone{
			DistancePct: dist,
			High:        price * (1 + dist/100),
			Low:         price * (1 - dist/100),
			WinRate:     winRate,
		}
	}

	safeDist := avg + mult*sd
	consDist := 1.1 * max
	aggrDist := 1.2 * med

	return Zones{
		Safe:         mkZone(safeDist, HistoricalWinRate(safeDist, moves)),
		Conservative: mkZone(consDist, conservativeWinRate),
		Aggressive:   mkZone(aggrDist, HistoricalWinRate(aggrDist, moves)),
	}
}

// Signal grades the overall setup quality.
type Signal string

const (
	SignalExcellent Signal = "excellent"
	SignalGood      Signal = "good"
	SignalNeutral   Signal = "neutral"
	SignalRisky     Signal = "risky"
)

// TradeSignal grades a setup from crush ratio and win rate. Thresholds are
// ordered, first match wins.
func TradeSignal(impliedMove float64, moves []models.HistoricalMove) Signal {
	crush := IVCrushRatio(impliedMove, moves)
	winRate := HistoricalWinRate(impliedMove, moves)

	switch {
	case crush >= 1.5 && winRate >= 85:
		return SignalExcellent
	case crush >= 1.2 && winRate >= 75:
		return SignalGood
	case crush >= 1.0 && winRate >= 60:
		return SignalNeutral
	default:
		return SignalRisky
	}
}

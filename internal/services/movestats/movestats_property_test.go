package movestats

import (
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"

	"EarnPull/internal/domain/models"
)

func genMoves(minLen int) gopter.Gen {
	return gen.SliceOf(gen.Float64Range(0, 40)).
		SuchThat(func(v []float64) bool { return len(v) >= minLen }).
		Map(func(v []float64) []models.HistoricalMove {
			moves := make([]models.HistoricalMove, len(v))
			for i, pct := range v {
				dir := models.DirectionUp
				if i%2 == 1 {
					dir = models.DirectionDown
				}
				moves[i] = models.HistoricalMove{MovePct: pct, Direction: dir}
			}
			return moves
		})
}

// Property: sample stddev is non-negative for >=2 points, exactly 0 below.
func TestProperty_StdDevNonNegative(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 200
	properties := gopter.NewProperties(parameters)

	properties.Property("stddev >= 0 for 2+ points", prop.ForAll(
		func(moves []models.HistoricalMove) bool {
			return StdDevAbsMove(moves) >= 0
		},
		genMoves(2),
	))

	properties.Property("stddev == 0 for <= 1 point", prop.ForAll(
		func(pct float64) bool {
			one := []models.HistoricalMove{{MovePct: pct, Direction: models.DirectionUp}}
			return StdDevAbsMove(one) == 0 && StdDevAbsMove(nil) == 0
		},
		gen.Float64Range(0, 40),
	))

	properties.TestingRun(t)
}

// Property: crush ratio is exactly implied/average, and 0 when average is 0.
func TestProperty_IVCrushRatioExact(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 200
	properties := gopter.NewProperties(parameters)

	properties.Property("crush == implied/avg", prop.ForAll(
		func(moves []models.HistoricalMove, implied float64) bool {
			avg := AverageAbsMove(moves)
			got := IVCrushRatio(implied, moves)
			if avg == 0 {
				return got == 0
			}
			return got == implied/avg
		},
		genMoves(1),
		gen.Float64Range(0, 30),
	))

	properties.TestingRun(t)
}

// Property: win rate is monotonically non-decreasing in the implied move.
func TestProperty_WinRateMonotonic(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 200
	properties := gopter.NewProperties(parameters)

	properties.Property("winRate(a) <= winRate(b) when a <= b", prop.ForAll(
		func(moves []models.HistoricalMove, a, b float64) bool {
			lo, hi := a, b
			if lo > hi {
				lo, hi = hi, lo
			}
			return HistoricalWinRate(lo, moves) <= HistoricalWinRate(hi, moves)
		},
		genMoves(1),
		gen.Float64Range(0, 50),
		gen.Float64Range(0, 50),
	))

	properties.TestingRun(t)
}

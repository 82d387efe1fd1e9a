package strategy

import "github.com/creasty/defaults"

// Policy collects every numeric threshold the decision cascade uses, so the
// numbers can be tuned and tested independently of the branching logic.
type Policy struct {
	// Gate rules.
	MinQuarters      int     `default:"4"`
	SkipCrushBelow   float64 `default:"0.85"`
	SkipWinRateBelow float64 `default:"55"`

	// Directional bias bands, percent of recent moves in one direction.
	BiasLookback    int     `default:"8"`
	StrongBiasPct   float64 `default:"75"`
	ModerateBiasPct float64 `default:"60"`

	// Per-branch entry thresholds.
	NakedCrush        float64 `default:"1.3"`
	NakedWinRate      float64 `default:"70"`
	SkewedCrush       float64 `default:"1.3"`
	StrangleCrush     float64 `default:"1.5"`
	StrangleWinRate   float64 `default:"85"`
	MinConsistency    float64 `default:"0.3"`
	CondorCrush       float64 `default:"1.2"`
	CondorWinRate     float64 `default:"70"`
	WideCondorCrush   float64 `default:"1.0"`
	WideCondorWinRate float64 `default:"60"`

	// Structure shaping.
	ZoneConfidence float64 `default:"0.85"`
	WingPct        float64 `default:"3"` // protective leg distance from the short strike
}

// DefaultPolicy returns the policy with all production thresholds.
func DefaultPolicy() Policy {
	var p Policy
	if err := defaults.Set(&p); err != nil {
		panic(err) // struct tags are static; only a programming error gets here
	}
	return p
}

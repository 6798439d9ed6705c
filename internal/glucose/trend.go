package glucose

import "math"

// TrendDirection is the direction of short-term glucose movement.
type TrendDirection string

const (
	TrendUp     TrendDirection = "UP"
	TrendDown   TrendDirection = "DOWN"
	TrendStable TrendDirection = "STABLE"
)

// Trend strength values. Strong movement renders the vertical arrows,
// soft movement the diagonals.
const (
	StrengthSoft   = 1
	StrengthStrong = 2
)

// Trend is a direction/strength summary of glucose movement.
// Known is false until two readings exist.
type Trend struct {
	Direction TrendDirection
	Strength  int
	Known     bool
}

// Arrow renders the trend as one of five glyphs.
func (t Trend) Arrow() string {
	if !t.Known {
		return "-"
	}
	switch t.Direction {
	case TrendUp:
		if t.Strength == StrengthStrong {
			return "↑"
		}
		return "↗"
	case TrendDown:
		if t.Strength == StrengthStrong {
			return "↓"
		}
		return "↘"
	default:
		return "→"
	}
}

// TrendConfig is a named set of classification thresholds in mmol/L per
// 5 minutes. Immutable for the lifetime of a session.
type TrendConfig struct {
	StrongUpThreshold       float64
	SlightUpThreshold       float64
	SlightDownThreshold     float64
	StrongDownThreshold     float64
	MaxDeltaSpikeThreshold  float64
	StableNetDeltaThreshold float64
}

// DefaultTrendConfig returns the process-wide default thresholds.
func DefaultTrendConfig() TrendConfig {
	return TrendConfig{
		StrongUpThreshold:       0.9,
		SlightUpThreshold:       0.3,
		SlightDownThreshold:     -0.3,
		StrongDownThreshold:     -0.9,
		MaxDeltaSpikeThreshold:  0.5,
		StableNetDeltaThreshold: 0.1,
	}
}

// Delta5 computes the 5-minute-normalized glucose delta between two
// consecutive readings. Downstream thresholds are calibrated in "change per
// 5 minutes" units, which decouples classification from irregular sampling
// intervals. Returns NaN when prev is nil.
func Delta5(prev *Reading, cur Reading) float64 {
	if prev == nil {
		return math.NaN()
	}
	dtMin := math.Max(0.001, float64(cur.Timestamp-prev.Timestamp)/60000.0)
	slope := (cur.Mmol - prev.Mmol) / dtMin
	return slope * 5.0
}

// ClassifyDelta maps a 5-minute delta to a trend using the fixed two-tier
// threshold mapping. Threshold comparisons are inclusive.
func ClassifyDelta(cfg TrendConfig, delta5 float64) Trend {
	if math.IsNaN(delta5) {
		return Trend{Direction: TrendStable}
	}
	switch {
	case delta5 >= cfg.StrongUpThreshold:
		return Trend{Direction: TrendUp, Strength: StrengthStrong, Known: true}
	case delta5 >= cfg.SlightUpThreshold:
		return Trend{Direction: TrendUp, Strength: StrengthSoft, Known: true}
	case delta5 <= cfg.StrongDownThreshold:
		return Trend{Direction: TrendDown, Strength: StrengthStrong, Known: true}
	case delta5 <= cfg.SlightDownThreshold:
		return Trend{Direction: TrendDown, Strength: StrengthSoft, Known: true}
	default:
		return Trend{Direction: TrendStable, Known: true}
	}
}

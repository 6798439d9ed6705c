package glucose

// RangeStatus represents the glucose range classification.
type RangeStatus string

const (
	RangeUrgentLow RangeStatus = "urgentLow"
	RangeLow       RangeStatus = "low"
	RangeNormal    RangeStatus = "normal"
	RangeHigh      RangeStatus = "high"
	RangeVeryHigh  RangeStatus = "veryHigh"
)

// Glucose range thresholds in mmol/L.
const (
	ThresholdUrgentLow = 3.0
	ThresholdLow       = 3.9
	ThresholdHigh      = 10.0
	ThresholdVeryHigh  = 13.9
)

// StaleAfterMs is how old a reading can be before it's considered stale.
const StaleAfterMs = 10 * 60 * 1000

// ClassifyRange determines the range status for a glucose value.
func ClassifyRange(mmol float64) RangeStatus {
	if mmol < ThresholdUrgentLow {
		return RangeUrgentLow
	}
	if mmol < ThresholdLow {
		return RangeLow
	}
	if mmol <= ThresholdHigh {
		return RangeNormal
	}
	if mmol <= ThresholdVeryHigh {
		return RangeHigh
	}
	return RangeVeryHigh
}

// MmolToMgdl converts mmol/L to mg/dL, rounded to a whole number.
func MmolToMgdl(mmol float64) int {
	return int(mmol*18.0182 + 0.5)
}

// MgdlToMmol converts mg/dL to mmol/L, rounded to one decimal.
func MgdlToMmol(mgdl int) float64 {
	return float64(int(float64(mgdl)/18.0182*10+0.5)) / 10.0
}

// IsStale checks if a reading is older than the stale threshold relative
// to the given logical now.
func (r Reading) IsStale(nowMs int64) bool {
	return nowMs-r.Timestamp >= StaleAfterMs
}

package glucose

import "testing"

func TestClassifyRange(t *testing.T) {
	tests := []struct {
		name     string
		mmol     float64
		expected RangeStatus
	}{
		{"urgent low", 2.5, RangeUrgentLow},
		{"just below urgent low threshold", 2.9, RangeUrgentLow},
		{"low", 3.5, RangeLow},
		{"bottom of normal", 3.9, RangeNormal},
		{"normal", 6.5, RangeNormal},
		{"top of normal", 10.0, RangeNormal},
		{"high", 11.5, RangeHigh},
		{"top of high", 13.9, RangeHigh},
		{"very high", 15.0, RangeVeryHigh},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := ClassifyRange(tt.mmol)
			if result != tt.expected {
				t.Errorf("ClassifyRange(%v) = %v, want %v", tt.mmol, result, tt.expected)
			}
		})
	}
}

func TestUnitConversion(t *testing.T) {
	tests := []struct {
		mgdl int
		mmol float64
	}{
		{100, 5.6},
		{70, 3.9},
		{180, 10.0},
		{55, 3.1},
	}

	for _, tt := range tests {
		result := MgdlToMmol(tt.mgdl)
		if result != tt.mmol {
			t.Errorf("MgdlToMmol(%d) = %v, want %v", tt.mgdl, result, tt.mmol)
		}
	}

	// Round-tripping stays within rounding error.
	for _, mmol := range []float64{4.0, 6.5, 10.0} {
		back := MgdlToMmol(MmolToMgdl(mmol))
		if diff := back - mmol; diff > 0.1 || diff < -0.1 {
			t.Errorf("round trip of %v gave %v", mmol, back)
		}
	}
}

func TestIsStale(t *testing.T) {
	now := int64(1_700_000_000_000)
	fresh := Reading{Mmol: 6.0, Timestamp: now - 5*60*1000}
	stale := Reading{Mmol: 6.0, Timestamp: now - 15*60*1000}

	if fresh.IsStale(now) {
		t.Error("5 minute old reading should not be stale")
	}
	if !stale.IsStale(now) {
		t.Error("15 minute old reading should be stale")
	}
	if !(Reading{Timestamp: now - StaleAfterMs}).IsStale(now) {
		t.Error("reading exactly at threshold should be stale")
	}
}

package sensor

import (
	"math"
	"testing"
)

func TestHistoryDeterministic(t *testing.T) {
	end := int64(1_700_000_000_000)
	p := HistoryParams{Minutes: 60, StepSec: 300, BaseMmol: 6.5, Seed: 42}

	a := History(end, p)
	b := History(end, p)

	if len(a) != len(b) {
		t.Fatalf("lengths differ: %d vs %d", len(a), len(b))
	}
	for i := range a {
		if a[i] != b[i] {
			t.Errorf("reading %d differs: %+v vs %+v", i, a[i], b[i])
		}
	}
}

func TestHistoryShape(t *testing.T) {
	end := int64(1_700_000_000_000)
	p := HistoryParams{Minutes: 180, StepSec: 300, BaseMmol: 6.5, Seed: 42}

	readings := History(end, p)

	if want := 36; len(readings) != want {
		t.Fatalf("got %d readings, want %d", len(readings), want)
	}
	for i, r := range readings {
		if r.Mmol < MinMmol || r.Mmol > MaxMmol {
			t.Errorf("reading %d out of range: %v", i, r.Mmol)
		}
		if r.Timestamp >= end {
			t.Errorf("reading %d timestamp %d not before end %d", i, r.Timestamp, end)
		}
		if i > 0 && r.Timestamp-readings[i-1].Timestamp != 300_000 {
			t.Errorf("reading %d not 5 minutes after previous", i)
		}
		if math.Round(r.Mmol*10)/10 != r.Mmol {
			t.Errorf("reading %d not rounded to one decimal: %v", i, r.Mmol)
		}
	}
}

func TestHistoryDifferentSeeds(t *testing.T) {
	end := int64(1_700_000_000_000)
	a := History(end, HistoryParams{Minutes: 60, StepSec: 300, BaseMmol: 6.5, Seed: 1})
	b := History(end, HistoryParams{Minutes: 60, StepSec: 300, BaseMmol: 6.5, Seed: 2})

	same := true
	for i := range a {
		if a[i].Mmol != b[i].Mmol {
			same = false
			break
		}
	}
	if same {
		t.Error("different seeds produced identical series")
	}
}

func TestGeneratorClamped(t *testing.T) {
	g := NewGenerator(6.5, 42)
	for i := 0; i < 200; i++ {
		r := g.Next(int64(i) * 30_000)
		if r.Mmol < MinMmol || r.Mmol > MaxMmol {
			t.Fatalf("value %d out of range: %v", i, r.Mmol)
		}
	}
}

func TestGeneratorDeterministic(t *testing.T) {
	a := NewGenerator(6.5, 7)
	b := NewGenerator(6.5, 7)
	for i := 0; i < 20; i++ {
		now := int64(i) * 30_000
		if a.Next(now) != b.Next(now) {
			t.Fatalf("generators diverged at step %d", i)
		}
	}
}

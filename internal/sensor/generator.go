// Package sensor provides the synthetic CGM feed: a deterministic glucose
// waveform generator and an HTTP client for the agent's history endpoint.
package sensor

import (
	"math"
	"math/rand"

	"github.com/jwulff/glucose-go/internal/glucose"
)

// Physiological clamp for generated values, in mmol/L.
const (
	MinMmol = 3.0
	MaxMmol = 15.0
)

const dayMs = 24 * 60 * 60 * 1000

// HistoryParams shapes a generated history series.
type HistoryParams struct {
	Minutes    int     // span of the series
	StepSec    int     // simulated seconds between samples
	BaseMmol   float64 // baseline glucose
	Seed       int64
	NoiseSigma float64
	DriftAmp   float64
}

// circadianDrift is a sinusoid over simulated time-of-day (~24h period).
func circadianDrift(simMs int64, amp float64) float64 {
	phase := float64(simMs%dayMs) / float64(dayMs)
	return amp * math.Sin(2*math.Pi*phase)
}

func clamp(mmol float64) float64 {
	return math.Max(MinMmol, math.Min(MaxMmol, mmol))
}

func round1(mmol float64) float64 {
	return math.Round(mmol*10) / 10
}

// History generates a smooth sinusoidal glucose series ending at endMs
// (simulated time). Deterministic for a given seed.
func History(endMs int64, p HistoryParams) []glucose.Reading {
	if p.StepSec <= 0 {
		p.StepSec = 300
	}
	if p.NoiseSigma == 0 {
		p.NoiseSigma = 0.2
	}
	if p.DriftAmp == 0 {
		p.DriftAmp = 0.6
	}

	rng := rand.New(rand.NewSource(p.Seed))
	steps := (p.Minutes * 60) / p.StepSec
	if steps < 1 {
		steps = 1
	}
	startMs := endMs - int64(p.Minutes)*60_000

	readings := make([]glucose.Reading, 0, steps)
	for i := 0; i < steps; i++ {
		t := startMs + int64(i)*int64(p.StepSec)*1000
		mmol := p.BaseMmol + circadianDrift(t, p.DriftAmp) + rng.NormFloat64()*p.NoiseSigma
		readings = append(readings, glucose.Reading{
			Mmol:      round1(clamp(mmol)),
			Timestamp: t,
		})
	}
	return readings
}

// Generator produces an endless stream of live values around a baseline.
type Generator struct {
	rng  *rand.Rand
	base float64
}

// NewGenerator creates a live-value generator. The seed offset keeps the
// live stream decorrelated from a history generated with the same seed.
func NewGenerator(base float64, seed int64) *Generator {
	return &Generator{
		rng:  rand.New(rand.NewSource(seed + 1337)),
		base: base,
	}
}

// Next produces the reading for the given simulated time.
func (g *Generator) Next(simNow int64) glucose.Reading {
	mmol := g.base + circadianDrift(simNow, 0.5) + g.rng.NormFloat64()*0.25
	return glucose.Reading{
		Mmol:      round1(clamp(mmol)),
		Timestamp: simNow,
	}
}

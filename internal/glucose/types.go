// Package glucose holds the domain types of the CGM assistant: readings,
// trends, timeline events, foods and the derived evaluation context.
package glucose

import (
	"strings"

	"github.com/google/uuid"
)

// Reading is a single CGM sample. Immutable once created.
type Reading struct {
	Mmol      float64 // mmol/L
	Timestamp int64   // Unix milliseconds
}

// ActivityIntensity classifies physical activity.
type ActivityIntensity string

const (
	IntensityLow  ActivityIntensity = "LOW"
	IntensityMed  ActivityIntensity = "MED"
	IntensityHigh ActivityIntensity = "HIGH"
	// IntensityAny is a rule-table wildcard matching any (or no) activity.
	IntensityAny ActivityIntensity = "ANY"
)

// ParseIntensity maps a textual intensity to its enum value.
func ParseIntensity(s string) (ActivityIntensity, bool) {
	switch ActivityIntensity(strings.ToUpper(strings.TrimSpace(s))) {
	case IntensityLow:
		return IntensityLow, true
	case IntensityMed:
		return IntensityMed, true
	case IntensityHigh:
		return IntensityHigh, true
	case IntensityAny:
		return IntensityAny, true
	}
	return "", false
}

// GIClass buckets a food's glycemic index.
type GIClass string

const (
	GILow    GIClass = "LOW"
	GIMedium GIClass = "MEDIUM"
	GIHigh   GIClass = "HIGH"
)

// Glycemic index class boundaries.
const (
	GIMediumThreshold = 55 // below this is LOW
	GIHighThreshold   = 70 // at or above this is HIGH
)

// ClassifyGI determines the GI class for a glycemic index value.
func ClassifyGI(gi int) GIClass {
	if gi < GIMediumThreshold {
		return GILow
	}
	if gi < GIHighThreshold {
		return GIMedium
	}
	return GIHigh
}

// ParseGIClass maps a textual GI class to its enum value.
func ParseGIClass(s string) (GIClass, bool) {
	switch GIClass(strings.ToUpper(strings.TrimSpace(s))) {
	case GILow:
		return GILow, true
	case GIMedium:
		return GIMedium, true
	case GIHigh:
		return GIHigh, true
	}
	return "", false
}

// Food is a catalog entry. Never mutated after creation.
type Food struct {
	ID            uuid.UUID
	Name          string
	Carbs         float64 // grams per portion
	Fats          float64 // grams per portion
	GlycemicIndex int     // [0, 100]
}

// Context is the physiological snapshot rule evaluation runs against.
// It is recomputed on every evaluation, never stored.
type Context struct {
	CurrentMmol         float64
	Delta5Min           float64 // NaN when there is no prior reading
	MinutesSinceMeal    *int64  // nil when no food event exists
	MinutesSinceInsulin *int64  // nil when no insulin event exists
}

package rules

import (
	"math"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jwulff/glucose-go/internal/glucose"
)

func testCatalog() []glucose.Food {
	return []glucose.Food{
		{ID: uuid.New(), Name: "banana", Carbs: 23, Fats: 0.3, GlycemicIndex: 51},
		{ID: uuid.New(), Name: "apple", Carbs: 14, Fats: 0.2, GlycemicIndex: 36},
		{ID: uuid.New(), Name: "white bread", Carbs: 49, Fats: 3.2, GlycemicIndex: 75},
		{ID: uuid.New(), Name: "almonds", Carbs: 4, Fats: 14, GlycemicIndex: 15},
	}
}

func TestClassifyTrendFirstMatch(t *testing.T) {
	rows := DefaultTrendRows(glucose.DefaultTrendConfig())

	trend, ok := ClassifyTrend(rows, 1.0)
	require.True(t, ok)
	assert.Equal(t, glucose.TrendUp, trend.Direction)
	assert.Equal(t, glucose.StrengthStrong, trend.Strength)

	// 0.9 is matched by both rise rows; the strong row is first in table
	// order and must win.
	trend, ok = ClassifyTrend(rows, 0.9)
	require.True(t, ok)
	assert.Equal(t, glucose.StrengthStrong, trend.Strength)

	trend, ok = ClassifyTrend(rows, 0.5)
	require.True(t, ok)
	assert.Equal(t, glucose.TrendUp, trend.Direction)
	assert.Equal(t, glucose.StrengthSoft, trend.Strength)

	trend, ok = ClassifyTrend(rows, -1.2)
	require.True(t, ok)
	assert.Equal(t, glucose.TrendDown, trend.Direction)
	assert.Equal(t, glucose.StrengthStrong, trend.Strength)
}

func TestClassifyTrendNoMatch(t *testing.T) {
	rows := DefaultTrendRows(glucose.DefaultTrendConfig())

	_, ok := ClassifyTrend(rows, 0.1)
	assert.False(t, ok, "deltas inside the stable band match no row")

	_, ok = ClassifyTrend(rows, math.NaN())
	assert.False(t, ok, "NaN matches no row")
}

func TestMatchFirstRowWins(t *testing.T) {
	// Two rows both matching the context; the earlier row's food must be
	// chosen regardless of what the later row would produce.
	tables := &Tables{
		Food: []FoodRow{
			{Number: 1, GlucoseMin: 3.5, GlucoseMax: 5.0, Intensity: glucose.IntensityAny,
				MinCarbs: 10, MaxCarbs: 20, MaxFats: 5, GIClass: glucose.GILow},
			{Number: 2, GlucoseMin: 3.5, GlucoseMax: 5.0, Intensity: glucose.IntensityAny,
				MinCarbs: 20, MaxCarbs: 60, MaxFats: 5, GIClass: glucose.GIHigh},
		},
	}
	ctx := glucose.Context{CurrentMmol: 4.0}
	act := ActivityState{Stale: true}

	text, ok := Match(ctx, act, testCatalog(), tables)
	require.True(t, ok)
	assert.Equal(t, "Eat apple now", text, "row 1's first satisfying food is the apple")
}

func TestMatchIntensity(t *testing.T) {
	tables := &Tables{
		Food: []FoodRow{
			{Number: 1, GlucoseMin: 3.5, GlucoseMax: 5.0, Intensity: glucose.IntensityHigh,
				MinCarbs: 10, MaxCarbs: 20, MaxFats: 5, GIClass: glucose.GILow},
		},
	}
	ctx := glucose.Context{CurrentMmol: 4.0}

	// Fresh HIGH activity matches the row.
	text, ok := Match(ctx, ActivityState{Intensity: glucose.IntensityHigh}, testCatalog(), tables)
	require.True(t, ok)
	assert.Equal(t, "Eat apple now", text)

	// Stale activity cannot satisfy an intensity-specific row.
	_, ok = Match(ctx, ActivityState{Intensity: glucose.IntensityHigh, Stale: true}, testCatalog(), tables)
	assert.False(t, ok)

	// Different intensity does not match.
	_, ok = Match(ctx, ActivityState{Intensity: glucose.IntensityLow}, testCatalog(), tables)
	assert.False(t, ok)
}

func TestMatchRowTemplate(t *testing.T) {
	tables := &Tables{
		Food: []FoodRow{
			{Number: 1, GlucoseMin: 3.0, GlucoseMax: 4.5, Intensity: glucose.IntensityAny,
				MinCarbs: 40, MaxCarbs: 60, MaxFats: 5, GIClass: glucose.GIHigh,
				Template: "Low glucose: eat %s immediately"},
		},
	}
	ctx := glucose.Context{CurrentMmol: 3.8}

	text, ok := Match(ctx, ActivityState{Stale: true}, testCatalog(), tables)
	require.True(t, ok)
	assert.Equal(t, "Low glucose: eat white bread immediately", text)
}

func TestMatchFallback(t *testing.T) {
	tables := &Tables{
		Food: []FoodRow{
			// No catalog food has 100..200g carbs, so this row never yields.
			{Number: 1, GlucoseMin: 3.0, GlucoseMax: 5.0, Intensity: glucose.IntensityAny,
				MinCarbs: 100, MaxCarbs: 200, MaxFats: 1, GIClass: glucose.GILow},
		},
		Fallback: []FallbackRow{
			{Name: "low", GIClass: glucose.GIHigh, Cond: Band{Min: math.Inf(-1), Max: 4.0},
				Message: "fallback: no matching food, take 15g fast-acting carbs"},
			{Name: "rest", GIClass: glucose.GIMedium, Cond: Band{Min: 4.0, Max: 10.0},
				Message: "fallback: no matching food"},
		},
	}

	text, ok := Match(glucose.Context{CurrentMmol: 3.6}, ActivityState{Stale: true}, testCatalog(), tables)
	require.True(t, ok)
	assert.Equal(t, "fallback: no matching food, take 15g fast-acting carbs", text)

	text, ok = Match(glucose.Context{CurrentMmol: 6.0}, ActivityState{Stale: true}, testCatalog(), tables)
	require.True(t, ok)
	assert.Equal(t, "fallback: no matching food", text)
}

func TestMatchNothing(t *testing.T) {
	tables := &Tables{
		Food: []FoodRow{
			{Number: 1, GlucoseMin: 3.0, GlucoseMax: 5.0, Intensity: glucose.IntensityAny,
				MinCarbs: 100, MaxCarbs: 200, MaxFats: 1, GIClass: glucose.GILow},
		},
		Fallback: []FallbackRow{
			{Name: "low", GIClass: glucose.GIHigh, Cond: Band{Min: math.Inf(-1), Max: 4.0}, Message: "x"},
		},
	}

	// Outside every band: silence, not an error.
	_, ok := Match(glucose.Context{CurrentMmol: 8.0}, ActivityState{Stale: true}, testCatalog(), tables)
	assert.False(t, ok)
}

func TestBandContains(t *testing.T) {
	b := Band{Min: 3.5, Max: 5.0}
	assert.True(t, b.Contains(3.5), "inclusive low end")
	assert.True(t, b.Contains(5.0), "inclusive high end")
	assert.True(t, b.Contains(4.2))
	assert.False(t, b.Contains(3.4))
	assert.False(t, b.Contains(5.1))
}

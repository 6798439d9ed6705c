package rules

import (
	"fmt"

	"github.com/jwulff/glucose-go/internal/glucose"
)

// DefaultFoodTemplate builds the suggestion text when a FoodRow carries no
// template of its own.
const DefaultFoodTemplate = "Eat %s now"

// ActivityState is the matcher's view of the most recent activity.
// Stale is true when the activity is absent or older than the session's
// staleness window; stale activity only matches wildcard rows.
type ActivityState struct {
	Intensity glucose.ActivityIntensity
	Stale     bool
}

// ClassifyTrend evaluates the ordered trend rows against a 5-minute delta
// and returns the first match. ok is false when no row matches, in which
// case the caller falls back to the fixed threshold mapping.
func ClassifyTrend(rows []TrendRow, delta5 float64) (glucose.Trend, bool) {
	for _, row := range rows {
		if row.Cond.Matches(delta5) {
			return glucose.Trend{Direction: row.Direction, Strength: row.Strength, Known: true}, true
		}
	}
	return glucose.Trend{}, false
}

// rowMatches reports whether a food row's band and intensity constraints
// hold for the current context.
func rowMatches(row FoodRow, ctx glucose.Context, act ActivityState) bool {
	if !row.Band().Contains(ctx.CurrentMmol) {
		return false
	}
	if row.Intensity == glucose.IntensityAny {
		return true
	}
	return !act.Stale && row.Intensity == act.Intensity
}

// foodSatisfies reports whether a catalog food meets a row's composition
// constraints.
func foodSatisfies(row FoodRow, f glucose.Food) bool {
	if f.Carbs < row.MinCarbs || f.Carbs > row.MaxCarbs {
		return false
	}
	if f.Fats > row.MaxFats {
		return false
	}
	return glucose.ClassifyGI(f.GlycemicIndex) == row.GIClass
}

// Match scans the food rows in table order and, per candidate row, the
// catalog in catalog order, returning the first suggestion text produced.
// When no row yields a food, the fallback rows are consulted with the same
// band predicate. ok is false when neither path produces a result; evaluation
// then stays silent.
func Match(ctx glucose.Context, act ActivityState, foods []glucose.Food, t *Tables) (string, bool) {
	for _, row := range t.Food {
		if !rowMatches(row, ctx, act) {
			continue
		}
		for _, f := range foods {
			if foodSatisfies(row, f) {
				tmpl := row.Template
				if tmpl == "" {
					tmpl = DefaultFoodTemplate
				}
				return fmt.Sprintf(tmpl, f.Name), true
			}
		}
	}

	for _, row := range t.Fallback {
		if row.Cond.Contains(ctx.CurrentMmol) {
			return row.Message, true
		}
	}

	return "", false
}

// Package rules holds the parameterized rule tables the assistant evaluates:
// trend classification rows, food suggestion bands and no-food fallbacks.
// Rows are typed, validated once at load time, and scanned in table order:
// the first satisfying match wins, there is no scoring.
package rules

import (
	"fmt"
	"math"

	"github.com/go-playground/validator/v10"

	"github.com/jwulff/glucose-go/internal/glucose"
)

// CondOp is a comparison operator in a delta condition.
type CondOp string

const (
	OpGTE CondOp = ">="
	OpLTE CondOp = "<="
)

// DeltaCond is a threshold condition over the 5-minute glucose delta.
type DeltaCond struct {
	Op        CondOp
	Threshold float64
}

// Matches reports whether the delta satisfies the condition. NaN never
// matches.
func (c DeltaCond) Matches(delta5 float64) bool {
	if math.IsNaN(delta5) {
		return false
	}
	switch c.Op {
	case OpGTE:
		return delta5 >= c.Threshold
	case OpLTE:
		return delta5 <= c.Threshold
	}
	return false
}

// Band is a glucose interval in mmol/L. Open ends are ±Inf.
type Band struct {
	Min float64
	Max float64
}

// Contains reports whether the band contains the value, inclusive on both
// ends.
func (b Band) Contains(mmol float64) bool {
	return mmol >= b.Min && mmol <= b.Max
}

// TrendRow classifies a delta into a trend. Rows are evaluated in table
// order; the first matching condition wins.
type TrendRow struct {
	Name      string                 `validate:"required"`
	Cond      DeltaCond              `validate:"-"`
	Direction glucose.TrendDirection `validate:"oneof=UP DOWN STABLE"`
	Strength  int                    `validate:"oneof=1 2"`
}

// FoodRow constrains the Food a suggestion may name, given a glucose band
// and activity intensity. Template is optional; %s receives the food name.
type FoodRow struct {
	Number     int                       `validate:"gt=0"`
	GlucoseMin float64                   `validate:"ltefield=GlucoseMax"`
	GlucoseMax float64
	Intensity  glucose.ActivityIntensity `validate:"oneof=LOW MED HIGH ANY"`
	MinCarbs   float64                   `validate:"gte=0,ltefield=MaxCarbs"`
	MaxCarbs   float64                   `validate:"gte=0"`
	MaxFats    float64                   `validate:"gte=0"`
	GIClass    glucose.GIClass           `validate:"oneof=LOW MEDIUM HIGH"`
	Template   string
}

// Band returns the row's glucose band.
func (r FoodRow) Band() Band { return Band{Min: r.GlucoseMin, Max: r.GlucoseMax} }

// FallbackRow fires when no FoodRow yields a satisfying Food. GIClass
// records which GI family the fallback covers; matching is on the glucose
// band alone.
type FallbackRow struct {
	Name    string          `validate:"required"`
	GIClass glucose.GIClass `validate:"oneof=LOW MEDIUM HIGH"`
	Cond    Band
	Message string          `validate:"required"`
}

// Tables is the full ordered rule set one session evaluates against.
type Tables struct {
	Trend    []TrendRow
	Food     []FoodRow
	Fallback []FallbackRow
}

var validate = validator.New()

// Validate checks every row structurally. Tables must be valid before any
// session uses them so runtime matching never sees a broken row.
func (t *Tables) Validate() error {
	for i, row := range t.Trend {
		if err := validate.Struct(row); err != nil {
			return fmt.Errorf("trend row %d (%s): %w", i, row.Name, err)
		}
		if row.Cond.Op != OpGTE && row.Cond.Op != OpLTE {
			return fmt.Errorf("trend row %d (%s): unknown operator %q", i, row.Name, row.Cond.Op)
		}
	}
	for i, row := range t.Food {
		if err := validate.Struct(row); err != nil {
			return fmt.Errorf("food row %d (#%d): %w", i, row.Number, err)
		}
	}
	for i, row := range t.Fallback {
		if err := validate.Struct(row); err != nil {
			return fmt.Errorf("fallback row %d (%s): %w", i, row.Name, err)
		}
		if row.Cond.Min > row.Cond.Max {
			return fmt.Errorf("fallback row %d (%s): band min %.1f > max %.1f",
				i, row.Name, row.Cond.Min, row.Cond.Max)
		}
	}
	return nil
}

// DefaultTrendRows builds the fixed two-tier mapping as a rule table, so the
// data-driven path is the only classification path a session needs.
func DefaultTrendRows(cfg glucose.TrendConfig) []TrendRow {
	return []TrendRow{
		{Name: "strong-rise", Cond: DeltaCond{Op: OpGTE, Threshold: cfg.StrongUpThreshold}, Direction: glucose.TrendUp, Strength: glucose.StrengthStrong},
		{Name: "soft-rise", Cond: DeltaCond{Op: OpGTE, Threshold: cfg.SlightUpThreshold}, Direction: glucose.TrendUp, Strength: glucose.StrengthSoft},
		{Name: "strong-fall", Cond: DeltaCond{Op: OpLTE, Threshold: cfg.StrongDownThreshold}, Direction: glucose.TrendDown, Strength: glucose.StrengthStrong},
		{Name: "soft-fall", Cond: DeltaCond{Op: OpLTE, Threshold: cfg.SlightDownThreshold}, Direction: glucose.TrendDown, Strength: glucose.StrengthSoft},
	}
}

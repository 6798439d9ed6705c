package rules

import (
	"bufio"
	"encoding/csv"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"

	"github.com/jwulff/glucose-go/internal/glucose"
)

// Table authoring formats, matching the original rule resources: food band
// rows are comma CSV, trend and fallback rows are pipe-delimited. The first
// line of every table is a header and is skipped.

// LoadFoodRows reads food band rows from comma CSV:
//
//	number,glucoseMin,glucoseMax,intensity,minCarbs,maxCarbs,maxFats,giClass[,template]
func LoadFoodRows(r io.Reader) ([]FoodRow, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1

	records, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("read food rows: %w", err)
	}

	var rows []FoodRow
	for i, rec := range records {
		if i == 0 {
			continue // header
		}
		if len(rec) < 8 {
			return nil, fmt.Errorf("food row %d: want at least 8 fields, got %d", i, len(rec))
		}

		number, err := strconv.Atoi(strings.TrimSpace(rec[0]))
		if err != nil {
			return nil, fmt.Errorf("food row %d: number: %w", i, err)
		}
		gMin, err := parseFloat(rec[1])
		if err != nil {
			return nil, fmt.Errorf("food row %d: glucoseMin: %w", i, err)
		}
		gMax, err := parseFloat(rec[2])
		if err != nil {
			return nil, fmt.Errorf("food row %d: glucoseMax: %w", i, err)
		}
		intensity, ok := glucose.ParseIntensity(rec[3])
		if !ok {
			return nil, fmt.Errorf("food row %d: unknown intensity %q", i, rec[3])
		}
		minCarbs, err := parseFloat(rec[4])
		if err != nil {
			return nil, fmt.Errorf("food row %d: minCarbs: %w", i, err)
		}
		maxCarbs, err := parseFloat(rec[5])
		if err != nil {
			return nil, fmt.Errorf("food row %d: maxCarbs: %w", i, err)
		}
		maxFats, err := parseFloat(rec[6])
		if err != nil {
			return nil, fmt.Errorf("food row %d: maxFats: %w", i, err)
		}
		giClass, ok := glucose.ParseGIClass(rec[7])
		if !ok {
			return nil, fmt.Errorf("food row %d: unknown GI class %q", i, rec[7])
		}

		row := FoodRow{
			Number:     number,
			GlucoseMin: gMin,
			GlucoseMax: gMax,
			Intensity:  intensity,
			MinCarbs:   minCarbs,
			MaxCarbs:   maxCarbs,
			MaxFats:    maxFats,
			GIClass:    giClass,
		}
		if len(rec) > 8 {
			row.Template = strings.TrimSpace(rec[8])
		}
		rows = append(rows, row)
	}
	return rows, nil
}

// LoadTrendRows reads trend classification rows, pipe-delimited:
//
//	name|condition|direction|strength
//
// where condition is ">= 0.9" or "<= -0.9".
func LoadTrendRows(r io.Reader) ([]TrendRow, error) {
	var rows []TrendRow
	err := scanPipeRows(r, 4, func(line int, parts []string) error {
		cond, err := ParseDeltaCond(parts[1])
		if err != nil {
			return fmt.Errorf("trend row %d: %w", line, err)
		}
		direction := glucose.TrendDirection(strings.ToUpper(strings.TrimSpace(parts[2])))
		switch direction {
		case glucose.TrendUp, glucose.TrendDown, glucose.TrendStable:
		default:
			return fmt.Errorf("trend row %d: unknown direction %q", line, parts[2])
		}
		strength, err := strconv.Atoi(strings.TrimSpace(parts[3]))
		if err != nil {
			return fmt.Errorf("trend row %d: strength: %w", line, err)
		}
		rows = append(rows, TrendRow{
			Name:      strings.TrimSpace(parts[0]),
			Cond:      cond,
			Direction: direction,
			Strength:  strength,
		})
		return nil
	})
	return rows, err
}

// LoadFallbackRows reads no-food fallback rows, pipe-delimited:
//
//	name|giClass|condition|message
//
// where condition is a glucose band: "3.5..5.0", "<4.0" or ">10.0".
func LoadFallbackRows(r io.Reader) ([]FallbackRow, error) {
	var rows []FallbackRow
	err := scanPipeRows(r, 4, func(line int, parts []string) error {
		giClass, ok := glucose.ParseGIClass(parts[1])
		if !ok {
			return fmt.Errorf("fallback row %d: unknown GI class %q", line, parts[1])
		}
		band, err := ParseBand(parts[2])
		if err != nil {
			return fmt.Errorf("fallback row %d: %w", line, err)
		}
		rows = append(rows, FallbackRow{
			Name:    strings.TrimSpace(parts[0]),
			GIClass: giClass,
			Cond:    band,
			Message: strings.TrimSpace(parts[3]),
		})
		return nil
	})
	return rows, err
}

// ParseDeltaCond parses a delta condition like ">= 0.9".
func ParseDeltaCond(s string) (DeltaCond, error) {
	s = strings.TrimSpace(s)
	var op CondOp
	switch {
	case strings.HasPrefix(s, string(OpGTE)):
		op = OpGTE
	case strings.HasPrefix(s, string(OpLTE)):
		op = OpLTE
	default:
		return DeltaCond{}, fmt.Errorf("unknown condition operator in %q", s)
	}
	threshold, err := parseFloat(s[len(op):])
	if err != nil {
		return DeltaCond{}, fmt.Errorf("condition threshold in %q: %w", s, err)
	}
	return DeltaCond{Op: op, Threshold: threshold}, nil
}

// ParseBand parses a glucose band: "lo..hi", "<x" (open low end) or
// ">x" (open high end).
func ParseBand(s string) (Band, error) {
	s = strings.TrimSpace(s)
	switch {
	case strings.HasPrefix(s, "<"):
		max, err := parseFloat(s[1:])
		if err != nil {
			return Band{}, fmt.Errorf("band %q: %w", s, err)
		}
		return Band{Min: math.Inf(-1), Max: max}, nil
	case strings.HasPrefix(s, ">"):
		min, err := parseFloat(s[1:])
		if err != nil {
			return Band{}, fmt.Errorf("band %q: %w", s, err)
		}
		return Band{Min: min, Max: math.Inf(1)}, nil
	case strings.Contains(s, ".."):
		parts := strings.SplitN(s, "..", 2)
		min, err := parseFloat(parts[0])
		if err != nil {
			return Band{}, fmt.Errorf("band %q: %w", s, err)
		}
		max, err := parseFloat(parts[1])
		if err != nil {
			return Band{}, fmt.Errorf("band %q: %w", s, err)
		}
		return Band{Min: min, Max: max}, nil
	}
	return Band{}, fmt.Errorf("unrecognized band %q", s)
}

func parseFloat(s string) (float64, error) {
	return strconv.ParseFloat(strings.TrimSpace(s), 64)
}

// scanPipeRows walks a pipe-delimited table line by line, skipping the
// header and blank lines.
func scanPipeRows(r io.Reader, fields int, fn func(line int, parts []string) error) error {
	scanner := bufio.NewScanner(r)
	line := 0
	for scanner.Scan() {
		line++
		text := strings.TrimSpace(scanner.Text())
		if line == 1 || text == "" {
			continue
		}
		parts := strings.Split(text, "|")
		if len(parts) != fields {
			return fmt.Errorf("row %d: want %d fields, got %d", line, fields, len(parts))
		}
		if err := fn(line, parts); err != nil {
			return err
		}
	}
	return scanner.Err()
}

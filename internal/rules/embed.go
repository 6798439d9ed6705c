package rules

import (
	"bytes"
	"embed"
	"fmt"
	"os"
	"path/filepath"
)

//go:embed tables/*.csv
var defaultTables embed.FS

// Table file names inside a rules directory.
const (
	FoodTableFile     = "food-bands.csv"
	TrendTableFile    = "trend-classify.csv"
	FallbackTableFile = "no-food-fallback.csv"
)

// Default loads and validates the embedded rule tables.
func Default() (*Tables, error) {
	read := func(name string) ([]byte, error) {
		return defaultTables.ReadFile("tables/" + name)
	}
	return load(read)
}

// LoadDir loads and validates rule tables from a directory holding the
// three table files.
func LoadDir(dir string) (*Tables, error) {
	read := func(name string) ([]byte, error) {
		return os.ReadFile(filepath.Join(dir, name))
	}
	return load(read)
}

func load(read func(name string) ([]byte, error)) (*Tables, error) {
	foodData, err := read(FoodTableFile)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", FoodTableFile, err)
	}
	trendData, err := read(TrendTableFile)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", TrendTableFile, err)
	}
	fallbackData, err := read(FallbackTableFile)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", FallbackTableFile, err)
	}

	food, err := LoadFoodRows(bytes.NewReader(foodData))
	if err != nil {
		return nil, err
	}
	trend, err := LoadTrendRows(bytes.NewReader(trendData))
	if err != nil {
		return nil, err
	}
	fallback, err := LoadFallbackRows(bytes.NewReader(fallbackData))
	if err != nil {
		return nil, err
	}

	tables := &Tables{Trend: trend, Food: food, Fallback: fallback}
	if err := tables.Validate(); err != nil {
		return nil, fmt.Errorf("validate rule tables: %w", err)
	}
	return tables, nil
}

// Package main is the entry point for the glucose assistant core.
package main

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/jwulff/glucose-go/internal/catalog"
	"github.com/jwulff/glucose-go/internal/engine"
	"github.com/jwulff/glucose-go/internal/rules"
	"github.com/jwulff/glucose-go/internal/sensor"
	"github.com/jwulff/glucose-go/internal/server"
	"github.com/jwulff/glucose-go/internal/storage/sqlite"
)

func main() {
	slog.SetDefault(slog.New(slog.NewJSONHandler(os.Stdout, nil)))

	if len(os.Args) < 2 {
		showUsage()
		return
	}

	switch os.Args[1] {
	case "serve":
		serve()
	case "replay":
		if len(os.Args) < 3 {
			fmt.Println("Error: replay file required")
			fmt.Println("Usage: glucosed replay <file.jsonl>")
			os.Exit(1)
		}
		replay(os.Args[2])
	default:
		showUsage()
	}
}

func showUsage() {
	fmt.Println("Usage:")
	fmt.Println("  glucosed serve            - Run the assistant core HTTP server")
	fmt.Println("  glucosed replay <file>    - Replay a JSONL glucose series through the rules")
	fmt.Println()
	fmt.Println("Environment variables:")
	fmt.Println("  PORT             - HTTP listen port (default 8080)")
	fmt.Println("  GLUCOSE_DB       - SQLite database path (default glucose.db, :memory: for none)")
	fmt.Println("  RULES_DIR        - Directory with rule table files (default: embedded tables)")
	fmt.Println("  SIM_SPEED        - Simulation clock speed multiplier (unset: real time)")
	fmt.Println("  SENSOR_URL       - Sensor agent base URL for history replay (optional)")
	fmt.Println("  HISTORY_MINUTES  - History replay span in minutes (default 180)")
}

func serve() {
	port := envOr("PORT", "8080")
	dbPath := envOr("GLUCOSE_DB", "glucose.db")

	store, err := openStore(dbPath)
	if err != nil {
		slog.Error("failed to open store", "path", dbPath, "error", err)
		os.Exit(1)
	}
	defer store.Close()

	tables, err := loadTables()
	if err != nil {
		slog.Error("failed to load rule tables", "error", err)
		os.Exit(1)
	}

	cat := catalog.NewMemory()
	if err := cat.Load(context.Background(), store); err != nil {
		slog.Error("failed to load food catalog", "error", err)
		os.Exit(1)
	}
	slog.Info("catalog loaded", "foods", cat.Len())

	clock := buildClock()
	pub := engine.NewFanout()
	session := engine.NewSession(clock, cat, tables, pub, engine.DefaultConfig())

	srv := server.NewServer(session, store, cat, pub, clock)
	if sensorURL := os.Getenv("SENSOR_URL"); sensorURL != "" {
		minutes, _ := strconv.Atoi(os.Getenv("HISTORY_MINUTES"))
		srv = srv.WithHistory(sensor.NewClient(sensorURL), minutes)
		slog.Info("sensor agent configured", "url", sensorURL)
	}

	httpServer := &http.Server{
		Addr:    ":" + port,
		Handler: srv.Router(),
	}

	go func() {
		slog.Info("listening", "port", port)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("server failed", "error", err)
			os.Exit(1)
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	<-sigChan

	slog.Info("shutting down")
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(ctx); err != nil {
		slog.Error("shutdown failed", "error", err)
	}
	session.Dispose()
}

// replayClock tracks the timestamps of a replayed series so evaluation
// sees the series' own notion of "now".
type replayClock struct {
	ms int64
}

func (c *replayClock) Now() int64 { return c.ms }

// replay feeds a JSONL file of {"t":..,"mmol":..} samples through a fresh
// session and prints every derived trend and suggestion.
func replay(path string) {
	f, err := os.Open(path)
	if err != nil {
		fmt.Printf("Error: cannot open %s: %v\n", path, err)
		os.Exit(1)
	}
	defer f.Close()

	tables, err := loadTables()
	if err != nil {
		fmt.Printf("Error: cannot load rule tables: %v\n", err)
		os.Exit(1)
	}

	clock := &replayClock{}
	pub := engine.NewFanout()
	pub.Subscribe(printSubscriber{})
	session := engine.NewSession(clock, catalog.NewMemory(), tables, pub, engine.DefaultConfig())

	scanner := bufio.NewScanner(f)
	line := 0
	for scanner.Scan() {
		line++
		raw := scanner.Bytes()
		if len(raw) == 0 {
			continue
		}
		var s sensor.Sample
		if err := json.Unmarshal(raw, &s); err != nil {
			fmt.Printf("Error: line %d: %v\n", line, err)
			os.Exit(1)
		}
		clock.ms = s.T
		if err := session.SubmitGlucose(s.Reading(), true); err != nil {
			fmt.Printf("Error: line %d: %v\n", line, err)
			os.Exit(1)
		}
	}
	if err := scanner.Err(); err != nil {
		fmt.Printf("Error: reading %s: %v\n", path, err)
		os.Exit(1)
	}
	fmt.Printf("Replayed %d samples\n", line)
}

// printSubscriber writes published values to stdout for replay runs.
type printSubscriber struct{}

func (printSubscriber) Send(kind engine.MessageKind, payload any) error {
	switch m := payload.(type) {
	case engine.TrendMessage:
		fmt.Printf("trend      %s\n", m.Arrow)
	case engine.SuggestionMessage:
		fmt.Printf("suggestion [%d] %s\n", m.At, m.Text)
	}
	return nil
}

func openStore(path string) (*sqlite.Store, error) {
	if path == ":memory:" {
		return sqlite.NewMemoryStore()
	}
	return sqlite.NewFileStore(path)
}

func loadTables() (*rules.Tables, error) {
	if dir := os.Getenv("RULES_DIR"); dir != "" {
		return rules.LoadDir(dir)
	}
	return rules.Default()
}

func buildClock() engine.Clock {
	raw := os.Getenv("SIM_SPEED")
	if raw == "" {
		return engine.SystemClock{}
	}
	speed, err := strconv.ParseFloat(raw, 64)
	if err != nil || speed <= 0 {
		slog.Warn("invalid SIM_SPEED, using real time", "value", raw)
		return engine.SystemClock{}
	}
	clock := engine.NewSimClock(speed)
	slog.Info("simulation clock enabled", "speed", speed, "t0", clock.T0())
	return clock
}

func envOr(name, def string) string {
	if v := os.Getenv(name); v != "" {
		return v
	}
	return def
}

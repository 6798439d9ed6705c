// Package main is the entry point for the synthetic sensor agent. It
// pushes generated glucose values to the assistant core on a simulated
// cadence and serves the history endpoint the core replays from.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/jwulff/glucose-go/internal/engine"
	"github.com/jwulff/glucose-go/internal/sensor"
)

const liveIntervalSimSec = 30

func main() {
	slog.SetDefault(slog.New(slog.NewJSONHandler(os.Stdout, nil)))

	coreURL := envOr("CORE_URL", "http://localhost:8080")
	port := envOr("PORT", "8081")
	speed := envFloat("SIM_SPEED", 10.0)
	base := envFloat("BASE_MMOL", 6.5)
	seed := int64(envFloat("SEED", 42))

	core := sensor.NewCoreClient(coreURL)
	t0 := syncClock(core)
	clock := engine.NewSimClockAt(t0, speed)
	slog.Info("clock synced", "t0", t0, "speed", speed)

	gen := sensor.NewGenerator(base, seed)

	go serveHistory(port, clock, base, seed)

	// 30 simulated seconds between pushes, compressed by the sim speed.
	interval := time.Duration(float64(liveIntervalSimSec) / speed * float64(time.Second))
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	push(core, sensor.ToSample(gen.Next(clock.Now())))
	for {
		select {
		case <-ticker.C:
			push(core, sensor.ToSample(gen.Next(clock.Now())))
		case <-sigChan:
			slog.Info("stopping")
			return
		}
	}
}

// syncClock fetches the core's simulation epoch, retrying until the core
// is reachable.
func syncClock(core *sensor.CoreClient) int64 {
	for {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		t0, err := core.StartClock(ctx)
		cancel()
		if err == nil {
			return t0
		}
		slog.Warn("core not reachable, retrying", "error", err)
		time.Sleep(2 * time.Second)
	}
}

func push(core *sensor.CoreClient, s sensor.Sample) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := core.PushGlucose(ctx, s); err != nil {
		slog.Warn("push failed", "error", err)
		return
	}
	slog.Info("pushed", "t", s.T, "mmol", s.Mmol)
}

func serveHistory(port string, clock engine.Clock, base float64, seed int64) {
	r := gin.Default()

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	r.GET("/history", func(c *gin.Context) {
		minutes := queryInt(c, "minutes", 180)
		step := queryInt(c, "step", 300)
		histBase := queryFloat(c, "base", base)
		histSeed := int64(queryInt(c, "seed", int(seed)))

		readings := sensor.History(clock.Now(), sensor.HistoryParams{
			Minutes:  minutes,
			StepSec:  step,
			BaseMmol: histBase,
			Seed:     histSeed,
		})
		samples := make([]sensor.Sample, len(readings))
		for i, r := range readings {
			samples[i] = sensor.ToSample(r)
		}
		c.JSON(http.StatusOK, samples)
	})

	if err := r.Run(":" + port); err != nil {
		slog.Error("history server failed", "error", err)
		os.Exit(1)
	}
}

func queryInt(c *gin.Context, name string, def int) int {
	raw := c.Query(name)
	if raw == "" {
		return def
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return def
	}
	return v
}

func queryFloat(c *gin.Context, name string, def float64) float64 {
	raw := c.Query(name)
	if raw == "" {
		return def
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return def
	}
	return v
}

func envOr(name, def string) string {
	if v := os.Getenv(name); v != "" {
		return v
	}
	return def
}

func envFloat(name string, def float64) float64 {
	raw := os.Getenv(name)
	if raw == "" {
		return def
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		fmt.Printf("Warning: invalid %s=%q, using %v\n", name, raw, def)
		return def
	}
	return v
}

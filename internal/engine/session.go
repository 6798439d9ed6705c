package engine

import (
	"errors"
	"log/slog"
	"math"
	"sync"

	"github.com/google/uuid"

	"github.com/jwulff/glucose-go/internal/glucose"
	"github.com/jwulff/glucose-go/internal/rules"
)

// ErrSessionDisposed rejects submissions after disposal.
var ErrSessionDisposed = errors.New("session disposed")

// DefaultActivityStalenessMin is how old an activity event may be before
// only wildcard-intensity rule rows apply.
const DefaultActivityStalenessMin = 120

// Catalog is the session's read view of the food catalog. Foods returns
// entries in catalog order, which the matcher depends on.
type Catalog interface {
	Foods() []glucose.Food
	Get(id uuid.UUID) (glucose.Food, bool)
}

// Config carries the session-scoped knobs, all fixed at construction.
type Config struct {
	Trend                glucose.TrendConfig
	ActivityStalenessMin int64
	HistoryRetentionMin  int64
}

// DefaultConfig returns the default session configuration.
func DefaultConfig() Config {
	return Config{
		Trend:                glucose.DefaultTrendConfig(),
		ActivityStalenessMin: DefaultActivityStalenessMin,
		HistoryRetentionMin:  DefaultHistoryRetentionMin,
	}
}

type sessionState int

const (
	stateCreated sessionState = iota
	stateActive
	stateDisposed
)

// Session owns one fact store and pseudo-clock pairing for a logical
// client. Submissions are serialized by a per-session mutex; distinct
// sessions are fully independent.
type Session struct {
	mu      sync.Mutex
	state   sessionState
	live    bool // at least one submission has been evaluated
	clock   Clock
	pseudo  PseudoClock
	facts   *FactStore
	tables  *rules.Tables
	catalog Catalog
	cfg     Config
	pub     Publisher
	log     *slog.Logger

	lastDelta      float64
	lastArrow      string
	lastSuggestion string
}

// NewSession creates a session in the Created state. A nil tables argument
// gets the fixed threshold mapping as its trend table and no suggestion
// rows.
func NewSession(clock Clock, catalog Catalog, tables *rules.Tables, pub Publisher, cfg Config) *Session {
	if tables == nil {
		tables = &rules.Tables{Trend: rules.DefaultTrendRows(cfg.Trend)}
	}
	return &Session{
		clock:     clock,
		facts:     NewFactStore(cfg.HistoryRetentionMin),
		tables:    tables,
		catalog:   catalog,
		cfg:       cfg,
		pub:       pub,
		log:       slog.Default(),
		lastDelta: math.NaN(),
	}
}

// Facts exposes the session's working memory for read-side queries.
func (s *Session) Facts() *FactStore { return s.facts }

// Clock returns the session's logical time in Unix milliseconds.
func (s *Session) Clock() int64 { return s.pseudo.Now() }

// Reset returns the session to the Created state with empty working
// memory, ready for a fresh history replay.
func (s *Session) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state = stateCreated
	s.live = false
	s.pseudo = PseudoClock{}
	s.facts = NewFactStore(s.cfg.HistoryRetentionMin)
	s.lastDelta = math.NaN()
	s.lastArrow = ""
	s.lastSuggestion = ""
}

// Dispose releases the fact store. Further submissions fail with
// ErrSessionDisposed.
func (s *Session) Dispose() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state = stateDisposed
	s.facts = nil
}

// SubmitGlucose inserts a reading, resyncs the clock and, when fire is
// true, reevaluates trend and suggestion and publishes changes. fire=false
// is the backfill path: the fact lands in working memory without
// evaluation.
func (s *Session) SubmitGlucose(r glucose.Reading, fire bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.admit(r.Timestamp); err != nil {
		return err
	}

	prev := s.facts.InsertGlucose(r)
	s.lastDelta = glucose.Delta5(prev, r)

	if !fire {
		return nil
	}
	s.live = true
	s.evaluate()
	return nil
}

// SubmitEvent validates and inserts a timeline event, then reevaluates.
func (s *Session) SubmitEvent(e glucose.Event) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.validateEvent(e); err != nil {
		return err
	}
	if err := s.admit(e.At()); err != nil {
		return err
	}

	s.facts.InsertEvent(e)
	s.live = true
	s.evaluate()
	return nil
}

// admit transitions Created → Active, resyncs the pseudo-clock to the
// external clock and enforces timestamp monotonicity once live evaluation
// has begun. On rejection the fact store is untouched.
func (s *Session) admit(at int64) error {
	switch s.state {
	case stateDisposed:
		return ErrSessionDisposed
	case stateCreated:
		s.state = stateActive
	}
	if s.live && at < s.pseudo.Now() {
		return ErrClockRegression
	}
	if err := s.pseudo.AdvanceTo(s.clock.Now()); err != nil {
		return err
	}
	return nil
}

func (s *Session) validateEvent(e glucose.Event) error {
	switch ev := e.(type) {
	case glucose.InsulinEvent:
		if ev.Units <= 0 {
			return glucose.ValidationError{Field: "units", Reason: "must be positive"}
		}
	case glucose.FoodEvent:
		if len(ev.Amounts) == 0 {
			return glucose.ValidationError{Field: "amounts", Reason: "must not be empty"}
		}
		for _, a := range ev.Amounts {
			if a.Quantity <= 0 {
				return glucose.ValidationError{Field: "quantity", Reason: "must be positive"}
			}
			if _, ok := s.catalog.Get(a.FoodID); !ok {
				return glucose.ValidationError{Field: "foodId", Reason: "food " + a.FoodID.String() + " not found"}
			}
		}
	case glucose.ActivityEvent:
		if ev.DurationMin <= 0 {
			return glucose.ValidationError{Field: "duration", Reason: "must be positive"}
		}
		switch ev.Intensity {
		case glucose.IntensityLow, glucose.IntensityMed, glucose.IntensityHigh:
		default:
			return glucose.ValidationError{Field: "intensity", Reason: "unknown value " + string(ev.Intensity)}
		}
	}
	return nil
}

// evaluate recomputes trend and suggestion from working memory and
// publishes whichever changed. Caller holds the session mutex.
func (s *Session) evaluate() {
	latest, ok := s.facts.Latest()
	if !ok {
		return
	}
	now := s.pseudo.Now()

	trend, matched := rules.ClassifyTrend(s.tables.Trend, s.lastDelta)
	if !matched {
		trend = glucose.ClassifyDelta(s.cfg.Trend, s.lastDelta)
	}
	if trend.Known {
		if arrow := trend.Arrow(); arrow != s.lastArrow {
			s.lastArrow = arrow
			s.pub.Publish(KindTrend, TrendMessage{Arrow: arrow})
			s.log.Debug("trend changed", "arrow", arrow, "delta5", s.lastDelta)
		}
	}

	ctx := glucose.Context{
		CurrentMmol: latest.Mmol,
		Delta5Min:   s.lastDelta,
	}
	if mins, ok := s.facts.MinutesSince(glucose.EventFood, now); ok {
		ctx.MinutesSinceMeal = &mins
	}
	if mins, ok := s.facts.MinutesSince(glucose.EventInsulin, now); ok {
		ctx.MinutesSinceInsulin = &mins
	}

	act := rules.ActivityState{Stale: true}
	if last, ok := s.facts.LastEvent(glucose.EventActivity); ok {
		ae := last.(glucose.ActivityEvent)
		act.Intensity = ae.Intensity
		act.Stale = now-ae.At() > s.cfg.ActivityStalenessMin*60_000
	}

	text, ok := rules.Match(ctx, act, s.catalog.Foods(), s.tables)
	if ok && text != s.lastSuggestion {
		s.lastSuggestion = text
		s.pub.Publish(KindSuggestion, SuggestionMessage{At: now, Text: text})
		s.log.Debug("suggestion produced", "text", text)
	}
}

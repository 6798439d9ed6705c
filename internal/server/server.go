// Package server exposes the assistant core over HTTP and WebSocket:
// glucose and event ingest, the food catalog, the event log and the
// derived trend/suggestion streams.
package server

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/jwulff/glucose-go/internal/catalog"
	"github.com/jwulff/glucose-go/internal/engine"
	"github.com/jwulff/glucose-go/internal/glucose"
	"github.com/jwulff/glucose-go/internal/sensor"
	"github.com/jwulff/glucose-go/internal/storage"
)

// DefaultHistoryMinutes is the replay span fetched from the sensor agent
// when a glucose stream client connects.
const DefaultHistoryMinutes = 180

// Server wires the evaluation session, persistence and the live streams
// into an HTTP API.
type Server struct {
	session *engine.Session
	store   storage.Store
	catalog *catalog.Memory
	pub     *engine.Fanout
	clock   engine.Clock
	hub     *Hub

	history        *sensor.Client // nil when no agent is configured
	historyMinutes int

	log *slog.Logger
}

// NewServer creates a server around the given session. The hub is
// subscribed to the publisher so every published value reaches connected
// stream clients.
func NewServer(session *engine.Session, store storage.Store, cat *catalog.Memory,
	pub *engine.Fanout, clock engine.Clock) *Server {

	s := &Server{
		session:        session,
		store:          store,
		catalog:        cat,
		pub:            pub,
		clock:          clock,
		hub:            NewHub(),
		historyMinutes: DefaultHistoryMinutes,
		log:            slog.Default(),
	}
	pub.Subscribe(s.hub)
	return s
}

// WithHistory sets the sensor agent client used to replay history into
// fresh glucose stream connections.
func (s *Server) WithHistory(c *sensor.Client, minutes int) *Server {
	s.history = c
	if minutes > 0 {
		s.historyMinutes = minutes
	}
	return s
}

// Router builds the gin engine with all routes registered.
func (s *Server) Router() *gin.Engine {
	r := gin.Default()

	r.GET("/health", s.health)

	api := r.Group("/api")
	{
		api.POST("/glucose", s.postGlucose)
		api.GET("/glucose/latest", s.getLatestGlucose)
		api.GET("/food", s.getFoods)
		api.POST("/food", s.postFood)
		api.GET("/events", s.getEvents)
		api.POST("/events/food", s.postFoodEvent)
		api.POST("/events/insulin", s.postInsulinEvent)
		api.POST("/events/activity", s.postActivityEvent)
		api.GET("/clock/start", s.getClockStart)
	}

	r.GET("/ws/glucose", s.wsGlucose)
	r.GET("/ws/trend", s.wsTrend)
	r.GET("/ws/suggestions", s.wsSuggestions)

	return r
}

func (s *Server) health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// writeEngineError maps session errors to HTTP statuses: rejected input is
// 400, a clock regression is 409, a disposed session is 503.
func (s *Server) writeEngineError(c *gin.Context, err error) {
	switch {
	case glucose.IsValidation(err):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, engine.ErrClockRegression):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	case errors.Is(err, engine.ErrSessionDisposed):
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": err.Error()})
	default:
		s.log.Error("submission failed", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
	}
}

func (s *Server) postGlucose(c *gin.Context) {
	var req glucoseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	at := req.T
	if at == 0 {
		at = s.clock.Now()
	}
	r := glucose.Reading{Mmol: req.Mmol, Timestamp: at}

	if err := s.session.SubmitGlucose(r, true); err != nil {
		s.writeEngineError(c, err)
		return
	}

	sample := sensor.ToSample(r)
	s.pub.Publish(engine.KindGlucose, sample)
	c.JSON(http.StatusAccepted, sample)
}

// getLatestGlucose reports the most recent reading with its range
// classification and staleness relative to the session clock.
func (s *Server) getLatestGlucose(c *gin.Context) {
	latest, ok := s.session.Facts().Latest()
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "no readings yet"})
		return
	}
	now := s.session.Clock()
	c.JSON(http.StatusOK, latestGlucoseResponse{
		T:     latest.Timestamp,
		Mmol:  latest.Mmol,
		Mgdl:  glucose.MmolToMgdl(latest.Mmol),
		Range: string(glucose.ClassifyRange(latest.Mmol)),
		Stale: latest.IsStale(now),
	})
}

func (s *Server) getFoods(c *gin.Context) {
	foods := s.catalog.Foods()
	out := make([]foodResponse, 0, len(foods))
	for _, f := range foods {
		out = append(out, toFoodResponse(f))
	}
	c.JSON(http.StatusOK, out)
}

func (s *Server) postFood(c *gin.Context) {
	var req foodRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	f := glucose.Food{
		ID:            uuid.New(),
		Name:          req.Name,
		Carbs:         req.Carbs,
		Fats:          req.Fats,
		GlycemicIndex: req.GlycemicIndex,
	}
	if err := s.store.SaveFood(c.Request.Context(), &f); err != nil {
		s.log.Error("failed to save food", "name", f.Name, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	s.catalog.Add(f)

	c.JSON(http.StatusCreated, toFoodResponse(f))
}

func (s *Server) getEvents(c *gin.Context) {
	from, err := queryInt64(c, "from", 0)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid from parameter"})
		return
	}
	to, err := queryInt64(c, "to", s.clock.Now())
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid to parameter"})
		return
	}

	log, err := s.store.QueryEvents(c.Request.Context(), from, to)
	if err != nil {
		s.log.Error("failed to query events", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, toEventLogResponse(log))
}

func (s *Server) postFoodEvent(c *gin.Context) {
	var req foodEventRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	s.submitEvent(c, req.toEvent(s.eventTime(req.At)))
}

func (s *Server) postInsulinEvent(c *gin.Context) {
	var req insulinEventRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	s.submitEvent(c, glucose.InsulinEvent{
		ID:    uuid.New(),
		Time:  s.eventTime(req.At),
		Units: req.Units,
	})
}

func (s *Server) postActivityEvent(c *gin.Context) {
	var req activityEventRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	intensity, _ := glucose.ParseIntensity(req.Intensity)
	s.submitEvent(c, glucose.ActivityEvent{
		ID:          uuid.New(),
		Time:        s.eventTime(req.At),
		DurationMin: req.DurationMin,
		Intensity:   intensity,
	})
}

// submitEvent runs an event through the session first so invalid input
// never reaches persistent storage.
func (s *Server) submitEvent(c *gin.Context, e glucose.Event) {
	if err := s.session.SubmitEvent(e); err != nil {
		s.writeEngineError(c, err)
		return
	}
	if err := s.store.SaveEvent(c.Request.Context(), e); err != nil {
		s.log.Error("failed to persist event", "kind", e.Kind(), "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusCreated, eventCreatedResponse{ID: e.EventID().String(), At: e.At()})
}

func (s *Server) eventTime(at int64) int64 {
	if at != 0 {
		return at
	}
	return s.clock.Now()
}

func (s *Server) getClockStart(c *gin.Context) {
	t0 := s.clock.Now()
	if sim, ok := s.clock.(*engine.SimClock); ok {
		t0 = sim.T0()
	}
	c.JSON(http.StatusOK, gin.H{"t0Real": t0})
}

func queryInt64(c *gin.Context, name string, def int64) (int64, error) {
	raw := c.Query(name)
	if raw == "" {
		return def, nil
	}
	return strconv.ParseInt(raw, 10, 64)
}

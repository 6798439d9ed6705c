package server

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"

	"github.com/jwulff/glucose-go/internal/engine"
	"github.com/jwulff/glucose-go/internal/sensor"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// Hub routes published values to WebSocket clients subscribed per stream.
// It implements engine.Subscriber.
type Hub struct {
	mu    sync.Mutex
	conns map[engine.MessageKind]map[*websocket.Conn]struct{}
}

// NewHub creates an empty hub.
func NewHub() *Hub {
	return &Hub{conns: make(map[engine.MessageKind]map[*websocket.Conn]struct{})}
}

func (h *Hub) add(kind engine.MessageKind, ws *websocket.Conn) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.conns[kind] == nil {
		h.conns[kind] = make(map[*websocket.Conn]struct{})
	}
	h.conns[kind][ws] = struct{}{}
}

func (h *Hub) remove(kind engine.MessageKind, ws *websocket.Conn) {
	h.mu.Lock()
	defer h.mu.Unlock()
	delete(h.conns[kind], ws)
}

// Send broadcasts a payload to every client of the given stream. A client
// whose write fails is dropped; delivery to the rest continues.
func (h *Hub) Send(kind engine.MessageKind, payload any) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	for ws := range h.conns[kind] {
		if err := ws.WriteJSON(payload); err != nil {
			delete(h.conns[kind], ws)
			ws.Close()
		}
	}
	return nil
}

func (s *Server) wsGlucose(c *gin.Context) {
	ws, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		s.log.Error("failed to upgrade glucose stream", "error", err)
		return
	}

	if s.history != nil {
		if err := s.replayHistory(c.Request.Context(), ws); err != nil {
			s.log.Error("history replay failed", "error", err)
			ws.Close()
			return
		}
	}

	s.serveStream(engine.KindGlucose, ws)
}

func (s *Server) wsTrend(c *gin.Context) {
	ws, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		s.log.Error("failed to upgrade trend stream", "error", err)
		return
	}
	s.serveStream(engine.KindTrend, ws)
}

func (s *Server) wsSuggestions(c *gin.Context) {
	ws, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		s.log.Error("failed to upgrade suggestion stream", "error", err)
		return
	}
	s.serveStream(engine.KindSuggestion, ws)
}

// replayHistory seeds a fresh glucose stream: the session is reset,
// backfilled from the sensor agent without firing evaluation, and the
// series is sent to the client so it can draw the recent curve.
func (s *Server) replayHistory(ctx context.Context, ws *websocket.Conn) error {
	fetchCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	readings, err := s.history.FetchHistory(fetchCtx, s.historyMinutes)
	if err != nil {
		return err
	}

	s.session.Reset()
	for _, r := range readings {
		if err := s.session.SubmitGlucose(r, false); err != nil {
			return err
		}
	}
	s.log.Info("history replayed", "readings", len(readings))

	for _, r := range readings {
		if err := ws.WriteJSON(sensor.ToSample(r)); err != nil {
			return err
		}
	}
	return nil
}

// serveStream registers the connection and blocks until the client goes
// away. Reads are discarded; the streams are one-way.
func (s *Server) serveStream(kind engine.MessageKind, ws *websocket.Conn) {
	s.hub.add(kind, ws)
	defer func() {
		s.hub.remove(kind, ws)
		ws.Close()
	}()

	for {
		if _, _, err := ws.ReadMessage(); err != nil {
			return
		}
	}
}

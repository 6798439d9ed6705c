package engine

import (
	"sync"

	"github.com/jwulff/glucose-go/internal/glucose"
)

// DefaultHistoryRetentionMin is how far back glucose history is kept.
const DefaultHistoryRetentionMin = 180

// FactStore is the working memory of one session: the latest glucose
// reading, a bounded reading history, and per-kind ordered event logs.
// Entries are never mutated; eviction beyond the retention window is the
// only removal.
type FactStore struct {
	mu           sync.Mutex
	retentionMin int64

	latest  *glucose.Reading
	history []glucose.Reading
	events  map[glucose.EventKind][]glucose.Event
}

// NewFactStore creates a store with the given history retention in minutes.
// Zero or negative retention falls back to the default.
func NewFactStore(retentionMin int64) *FactStore {
	if retentionMin <= 0 {
		retentionMin = DefaultHistoryRetentionMin
	}
	return &FactStore{
		retentionMin: retentionMin,
		events:       make(map[glucose.EventKind][]glucose.Event),
	}
}

// InsertGlucose replaces the latest reading and appends to the history.
// It returns the reading that was latest before this call, for delta
// computation.
func (s *FactStore) InsertGlucose(r glucose.Reading) *glucose.Reading {
	s.mu.Lock()
	defer s.mu.Unlock()

	prev := s.latest
	cp := r
	s.latest = &cp
	s.history = append(s.history, r)
	s.evictLocked(r.Timestamp)
	return prev
}

// evictLocked drops history older than the retention window, measured from
// the newest reading.
func (s *FactStore) evictLocked(newest int64) {
	cutoff := newest - s.retentionMin*60_000
	i := 0
	for i < len(s.history) && s.history[i].Timestamp < cutoff {
		i++
	}
	if i > 0 {
		s.history = append([]glucose.Reading(nil), s.history[i:]...)
	}
}

// Latest returns the most recent glucose reading.
func (s *FactStore) Latest() (glucose.Reading, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.latest == nil {
		return glucose.Reading{}, false
	}
	return *s.latest, true
}

// ReadingsSince returns readings with Timestamp >= fromMs, oldest first.
func (s *FactStore) ReadingsSince(fromMs int64) []glucose.Reading {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []glucose.Reading
	for _, r := range s.history {
		if r.Timestamp >= fromMs {
			out = append(out, r)
		}
	}
	return out
}

// InsertEvent appends a timeline event to its kind's log.
func (s *FactStore) InsertEvent(e glucose.Event) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events[e.Kind()] = append(s.events[e.Kind()], e)
}

// LastEvent returns the most recent event of the given kind.
func (s *FactStore) LastEvent(kind glucose.EventKind) (glucose.Event, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	log := s.events[kind]
	if len(log) == 0 {
		return nil, false
	}
	// Logs are append-ordered; the session's monotonic clock guarantees the
	// last entry is also the most recent.
	return log[len(log)-1], true
}

// MinutesSince returns whole minutes between atMs and the most recent event
// of the given kind, or false if no such event exists.
func (s *FactStore) MinutesSince(kind glucose.EventKind, atMs int64) (int64, bool) {
	last, ok := s.LastEvent(kind)
	if !ok {
		return 0, false
	}
	return (atMs - last.At()) / 60_000, true
}

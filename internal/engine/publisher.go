package engine

import "sync"

// MessageKind names a published value stream.
type MessageKind string

const (
	KindGlucose    MessageKind = "glucose"
	KindTrend      MessageKind = "trend"
	KindSuggestion MessageKind = "suggestion"
)

// TrendMessage is the published form of a trend change.
type TrendMessage struct {
	Arrow string `json:"arrow"`
}

// SuggestionMessage is the published form of a suggestion.
type SuggestionMessage struct {
	At   int64  `json:"at"`
	Text string `json:"text"`
}

// Publisher delivers derived values to interested listeners without
// coupling the evaluation core to any transport.
type Publisher interface {
	Publish(kind MessageKind, payload any)
}

// Subscriber receives published values. A failing subscriber never affects
// delivery to the others.
type Subscriber interface {
	Send(kind MessageKind, payload any) error
}

// Fanout is a best-effort Publisher over a mutation-safe subscriber set.
type Fanout struct {
	mu   sync.RWMutex
	subs map[Subscriber]struct{}
}

// NewFanout creates an empty fan-out publisher.
func NewFanout() *Fanout {
	return &Fanout{subs: make(map[Subscriber]struct{})}
}

// Subscribe registers a subscriber.
func (f *Fanout) Subscribe(s Subscriber) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.subs[s] = struct{}{}
}

// Unsubscribe removes a subscriber.
func (f *Fanout) Unsubscribe(s Subscriber) {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.subs, s)
}

// Publish fans the payload out to every subscriber. Send errors are
// swallowed per subscriber.
func (f *Fanout) Publish(kind MessageKind, payload any) {
	f.mu.RLock()
	subs := make([]Subscriber, 0, len(f.subs))
	for s := range f.subs {
		subs = append(subs, s)
	}
	f.mu.RUnlock()

	for _, s := range subs {
		_ = s.Send(kind, payload)
	}
}

package engine

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

type recordingSub struct {
	kinds    []MessageKind
	payloads []any
	err      error
}

func (r *recordingSub) Send(kind MessageKind, payload any) error {
	r.kinds = append(r.kinds, kind)
	r.payloads = append(r.payloads, payload)
	return r.err
}

func TestFanoutDelivery(t *testing.T) {
	f := NewFanout()
	a := &recordingSub{}
	b := &recordingSub{}
	f.Subscribe(a)
	f.Subscribe(b)

	f.Publish(KindTrend, TrendMessage{Arrow: "↑"})

	assert.Equal(t, []MessageKind{KindTrend}, a.kinds)
	assert.Equal(t, []MessageKind{KindTrend}, b.kinds)
}

func TestFanoutErroringSubscriberDoesNotBlockOthers(t *testing.T) {
	f := NewFanout()
	bad := &recordingSub{err: errors.New("disconnected")}
	good := &recordingSub{}
	f.Subscribe(bad)
	f.Subscribe(good)

	f.Publish(KindSuggestion, SuggestionMessage{At: 1, Text: "hi"})

	assert.Len(t, good.payloads, 1)
}

func TestFanoutUnsubscribe(t *testing.T) {
	f := NewFanout()
	a := &recordingSub{}
	f.Subscribe(a)
	f.Unsubscribe(a)

	f.Publish(KindTrend, TrendMessage{Arrow: "→"})

	assert.Empty(t, a.kinds)
}

package sensor

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestFetchHistory(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/history" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		if got := r.URL.Query().Get("minutes"); got != "90" {
			t.Errorf("minutes = %s, want 90", got)
		}
		json.NewEncoder(w).Encode([]Sample{
			{T: 1000, Mmol: 5.5},
			{T: 301000, Mmol: 5.8},
		})
	}))
	defer srv.Close()

	c := NewClient(srv.URL)
	readings, err := c.FetchHistory(context.Background(), 90)
	if err != nil {
		t.Fatalf("FetchHistory: %v", err)
	}
	if len(readings) != 2 {
		t.Fatalf("got %d readings, want 2", len(readings))
	}
	if readings[0].Mmol != 5.5 || readings[0].Timestamp != 1000 {
		t.Errorf("first reading = %+v", readings[0])
	}
}

func TestFetchHistoryErrorStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	}))
	defer srv.Close()

	c := NewClient(srv.URL)
	if _, err := c.FetchHistory(context.Background(), 10); err == nil {
		t.Fatal("expected error on 500 response")
	}
}

func TestStartClock(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/clock/start" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		json.NewEncoder(w).Encode(map[string]int64{"t0Real": 1_700_000_000_000})
	}))
	defer srv.Close()

	c := NewCoreClient(srv.URL)
	t0, err := c.StartClock(context.Background())
	if err != nil {
		t.Fatalf("StartClock: %v", err)
	}
	if t0 != 1_700_000_000_000 {
		t.Errorf("t0 = %d", t0)
	}
}

func TestPushGlucose(t *testing.T) {
	var got Sample
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/glucose" || r.Method != "POST" {
			t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
		}
		if err := json.NewDecoder(r.Body).Decode(&got); err != nil {
			t.Errorf("decode body: %v", err)
		}
		w.WriteHeader(http.StatusAccepted)
	}))
	defer srv.Close()

	c := NewCoreClient(srv.URL)
	if err := c.PushGlucose(context.Background(), Sample{T: 42, Mmol: 6.1}); err != nil {
		t.Fatalf("PushGlucose: %v", err)
	}
	if got.T != 42 || got.Mmol != 6.1 {
		t.Errorf("server received %+v", got)
	}
}

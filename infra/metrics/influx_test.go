package metrics

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	coremetrics "github.com/kilianp07/rotables/core/metrics"
	"github.com/kilianp07/rotables/core/model"
)

type capture struct {
	mu     sync.Mutex
	bodies []string
}

func (c *capture) server(t *testing.T) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		data, _ := io.ReadAll(r.Body)
		c.mu.Lock()
		c.bodies = append(c.bodies, strings.TrimSpace(string(data)))
		c.mu.Unlock()
		w.WriteHeader(http.StatusNoContent)
	}))
	t.Cleanup(srv.Close)
	return srv
}

func (c *capture) all() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]string(nil), c.bodies...)
}

func fixedClock() time.Time { return time.Unix(1_700_000_000, 0) }

func TestInfluxSink_RecordRound(t *testing.T) {
	c := &capture{}
	srv := c.server(t)
	sink := NewInfluxSink(srv.URL, "token", "org", "bucket")
	sink.now = fixedClock
	defer sink.Close()

	err := sink.RecordRound(coremetrics.RoundRecord{
		At:        model.Hour{Day: 2, Hour: 5},
		Flights:   3,
		Loaded:    model.Kits{First: 40},
		Purchased: model.Kits{Economy: 1800},
		TotalCost: 99.5,
	})
	if err != nil {
		t.Fatalf("record error: %v", err)
	}
	bodies := c.all()
	if len(bodies) != 1 {
		t.Fatalf("expected 1 write got %d", len(bodies))
	}
	b := bodies[0]
	for _, want := range []string{"round,component=orchestrator", "day=2i", "hour=5i", "loaded_fc=40i", "purchased_ec=1800i", "total_cost=99.5", "1700000000000000000"} {
		if !strings.Contains(b, want) {
			t.Errorf("body %q missing %q", b, want)
		}
	}
}

func TestInfluxSink_RecordPenaltyAndStock(t *testing.T) {
	c := &capture{}
	srv := c.server(t)
	sink := NewInfluxSink(srv.URL+"/api/v2/write", "token", "org", "bucket")
	sink.now = fixedClock
	defer sink.Close()

	if err := sink.RecordPenalty(coremetrics.PenaltyRecord{Code: "FLIGHT_OVERLOAD", FlightNumber: "RT12", Amount: 7}); err != nil {
		t.Fatalf("penalty: %v", err)
	}
	if err := sink.RecordStock(model.Hour{Day: 1}, map[string]model.Kits{"HUB1": {Economy: 5}, "DST": {First: 1}}); err != nil {
		t.Fatalf("stock: %v", err)
	}
	if err := sink.RecordStock(model.Hour{}, nil); err != nil {
		t.Fatalf("empty stock: %v", err)
	}
	bodies := c.all()
	if len(bodies) != 2 {
		t.Fatalf("expected 2 writes got %d: %#v", len(bodies), bodies)
	}
	if !strings.Contains(bodies[0], "penalty,code=FLIGHT_OVERLOAD,flight_number=RT12") {
		t.Errorf("unexpected penalty body %q", bodies[0])
	}
	if lines := strings.Split(bodies[1], "\n"); len(lines) != 2 {
		t.Errorf("expected one line per airport, got %q", bodies[1])
	}
	if !strings.Contains(bodies[1], "airport_stock,airport=HUB1") || !strings.Contains(bodies[1], "ec=5i") {
		t.Errorf("unexpected stock body %q", bodies[1])
	}
}

func TestNewInfluxSinkWithFallback(t *testing.T) {
	called := false
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/health" {
			called = true
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
	}))
	defer srv.Close()

	sink := NewInfluxSinkWithFallback(srv.URL+"/api/v2/write", "tok", "org", "bucket")
	if _, ok := sink.(coremetrics.NopSink); !ok {
		t.Fatalf("expected NopSink on failing health check, got %T", sink)
	}
	if !called {
		t.Fatalf("health endpoint not called")
	}
}

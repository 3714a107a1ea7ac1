// Package tracker classifies flight events into scheduled, checked-in and
// landed sets and hands out each checked-in flight for loading exactly once.
package tracker

import (
	"github.com/google/uuid"

	"github.com/kilianp07/rotables/core/model"
)

type readiness int

const (
	// pending flights are checked in and waiting to be loaded.
	pending readiness = iota
	// consumed flights were already returned by ReadyToLoad.
	consumed
)

// Tracker owns flight classification. It is not safe for concurrent use.
type Tracker struct {
	future   map[uuid.UUID]model.FlightEvent
	active   map[uuid.UUID]model.FlightEvent
	state    map[uuid.UUID]readiness
	order    []uuid.UUID
	landed   []model.FlightEvent
	ingested int
}

// New returns an empty tracker.
func New() *Tracker {
	return &Tracker{
		future: make(map[uuid.UUID]model.FlightEvent),
		active: make(map[uuid.UUID]model.FlightEvent),
		state:  make(map[uuid.UUID]readiness),
	}
}

// Ingest classifies a batch of events. The landed-now set is replaced by the
// landings contained in this batch.
func (t *Tracker) Ingest(events []model.FlightEvent) {
	t.landed = t.landed[:0]
	for _, ev := range events {
		t.ingested++
		switch ev.Type {
		case model.StageScheduled:
			if _, ok := t.active[ev.FlightID]; ok {
				// a stale schedule update must not demote a checked-in flight
				continue
			}
			t.future[ev.FlightID] = ev
		case model.StageCheckedIn:
			delete(t.future, ev.FlightID)
			t.active[ev.FlightID] = ev
			if st, ok := t.state[ev.FlightID]; !ok || st == consumed {
				t.order = append(t.order, ev.FlightID)
			}
			t.state[ev.FlightID] = pending
		case model.StageLanded:
			delete(t.future, ev.FlightID)
			delete(t.active, ev.FlightID)
			delete(t.state, ev.FlightID)
			t.landed = append(t.landed, ev)
		}
	}
}

// ReadyToLoad returns the checked-in flights that have not been handed out
// yet, in arrival order, and marks them consumed.
func (t *Tracker) ReadyToLoad() []model.FlightEvent {
	var out []model.FlightEvent
	for _, id := range t.order {
		if st, ok := t.state[id]; !ok || st != pending {
			continue
		}
		ev, ok := t.active[id]
		if !ok {
			continue
		}
		t.state[id] = consumed
		out = append(out, ev)
	}
	t.order = t.order[:0]
	return out
}

// LandedNow returns the flights that landed in the last ingested batch.
func (t *Tracker) LandedNow() []model.FlightEvent {
	out := make([]model.FlightEvent, len(t.landed))
	copy(out, t.landed)
	return out
}

// Forecast sums passenger demand over known flights departing origin that
// still need kits: scheduled flights and checked-in flights not yet loaded.
// Flights listed in exclude are skipped.
func (t *Tracker) Forecast(origin string, exclude ...uuid.UUID) model.Kits {
	skip := make(map[uuid.UUID]struct{}, len(exclude))
	for _, id := range exclude {
		skip[id] = struct{}{}
	}
	var sum model.Kits
	for id, ev := range t.future {
		if _, ok := skip[id]; ok || ev.Origin != origin {
			continue
		}
		sum = sum.Add(ev.Passengers)
	}
	for id, ev := range t.active {
		if _, ok := skip[id]; ok || ev.Origin != origin {
			continue
		}
		if t.state[id] == consumed {
			continue
		}
		sum = sum.Add(ev.Passengers)
	}
	return sum
}

// Known reports whether the flight is currently scheduled or checked in.
func (t *Tracker) Known(id uuid.UUID) bool {
	if _, ok := t.future[id]; ok {
		return true
	}
	_, ok := t.active[id]
	return ok
}

// Stats summarises the tracker content.
type Stats struct {
	Scheduled int
	CheckedIn int
	Ingested  int
}

// Stats returns the current set sizes.
func (t *Tracker) Stats() Stats {
	return Stats{Scheduled: len(t.future), CheckedIn: len(t.active), Ingested: t.ingested}
}

// Package journal persists one record per played hour so a game can be
// inspected or replayed after the fact.
package journal

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/kilianp07/rotables/core/model"
)

// Record captures the request sent and the response received for one hour.
type Record struct {
	ID        uuid.UUID          `json:"id"`
	Timestamp time.Time          `json:"timestamp"`
	Session   string             `json:"session,omitempty"`
	Strategy  string             `json:"strategy,omitempty"`
	Request   model.HourRequest  `json:"request"`
	Response  model.HourResponse `json:"response"`
	HubStock  model.Kits         `json:"hubStock"`
}

// At returns the hour the record refers to.
func (r Record) At() model.Hour { return r.Request.At() }

// Query defines filters for retrieving records. Zero values disable the
// matching filter; To is inclusive.
type Query struct {
	From        model.Hour
	To          model.Hour
	FlightID    uuid.UUID
	PenaltyCode string
	Limit       int
}

// Match reports whether r satisfies every filter except Limit.
func (q Query) Match(r Record) bool {
	at := r.At()
	if at.Before(q.From) {
		return false
	}
	if q.To != (model.Hour{}) && at.After(q.To) {
		return false
	}
	if q.FlightID != uuid.Nil && !r.touches(q.FlightID) {
		return false
	}
	if q.PenaltyCode != "" {
		found := false
		for _, p := range r.Response.Penalties {
			if p.Code == q.PenaltyCode {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	return true
}

func (r Record) touches(id uuid.UUID) bool {
	for _, l := range r.Request.FlightLoads {
		if l.FlightID == id {
			return true
		}
	}
	for _, e := range r.Response.FlightUpdates {
		if e.FlightID == id {
			return true
		}
	}
	for _, p := range r.Response.Penalties {
		if p.FlightID != nil && *p.FlightID == id {
			return true
		}
	}
	return false
}

// Store persists Records and supports querying. Flush makes every appended
// record durable; it is called on every exit path of the round loop.
type Store interface {
	Append(ctx context.Context, rec Record) error
	Query(ctx context.Context, q Query) ([]Record, error)
	Flush() error
	Close() error
}

// NewRecord stamps a record with a fresh id and the current time.
func NewRecord(session string, req model.HourRequest, resp model.HourResponse) Record {
	return Record{
		ID:        uuid.New(),
		Timestamp: time.Now().UTC(),
		Session:   session,
		Request:   req,
		Response:  resp,
	}
}

func limit(recs []Record, n int) []Record {
	if n > 0 && len(recs) > n {
		return recs[:n]
	}
	return recs
}

package inventory

import "github.com/kilianp07/rotables/core/model"

// Movement is a kit transfer that matures at an airport at a given hour.
// A negative delta withdraws kits.
type Movement struct {
	At      model.Hour
	Airport string
	Class   model.Class
	Delta   int
}

// MovementScheduler holds future movements and applies them to a Manager
// once they are due.
type MovementScheduler struct {
	inv     *Manager
	pending []Movement
}

// NewMovementScheduler returns a scheduler feeding inv.
func NewMovementScheduler(inv *Manager) *MovementScheduler {
	return &MovementScheduler{inv: inv}
}

// Schedule queues a movement. Zero deltas are dropped.
func (s *MovementScheduler) Schedule(mv Movement) {
	if mv.Delta == 0 {
		return
	}
	s.pending = append(s.pending, mv)
}

// ScheduleKits queues one movement per non-zero class of k.
func (s *MovementScheduler) ScheduleKits(at model.Hour, airport string, k model.Kits) {
	for _, c := range model.Classes {
		s.Schedule(Movement{At: at, Airport: airport, Class: c, Delta: k.Get(c)})
	}
}

// Apply delivers every movement due at or before now.
func (s *MovementScheduler) Apply(now model.Hour) int {
	kept := s.pending[:0]
	applied := 0
	for _, mv := range s.pending {
		if mv.At.After(now) {
			kept = append(kept, mv)
			continue
		}
		var k model.Kits
		if mv.Delta > 0 {
			k.Set(mv.Class, mv.Delta)
			s.inv.Add(mv.Airport, k)
		} else {
			k.Set(mv.Class, -mv.Delta)
			s.inv.Remove(mv.Airport, k)
		}
		applied++
	}
	s.pending = kept
	return applied
}

// Pending returns the net quantity still queued for airport, per class.
func (s *MovementScheduler) Pending(airport string) model.Kits {
	var out model.Kits
	for _, mv := range s.pending {
		if mv.Airport == airport {
			out.Set(mv.Class, out.Get(mv.Class)+mv.Delta)
		}
	}
	return out
}

// Len returns the number of queued movements.
func (s *MovementScheduler) Len() int { return len(s.pending) }

package events

import (
	"github.com/google/uuid"

	"github.com/kilianp07/rotables/core/model"
)

// RoundEvent is published once per hour after the response was applied.
type RoundEvent struct {
	At        model.Hour
	Flights   int
	Loaded    model.Kits
	Purchased model.Kits
	Landed    int
	Penalties int
	TotalCost float64
}

// LoadEvent is published for every flight that received a load decision.
// Requested is the policy decision and Loaded what the ledger released.
type LoadEvent struct {
	At           model.Hour
	FlightID     uuid.UUID
	FlightNumber string
	Origin       string
	Destination  string
	Requested    model.Kits
	Loaded       model.Kits
}

// PenaltyEvent wraps one penalty from the hour response.
type PenaltyEvent struct {
	At      model.Hour
	Penalty model.Penalty
}

package model

import (
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
)

// Stage is the lifecycle stage carried by a flight event.
type Stage int

const (
	StageScheduled Stage = iota
	StageCheckedIn
	StageLanded
)

// String returns the wire representation of the stage.
func (s Stage) String() string {
	switch s {
	case StageScheduled:
		return "SCHEDULED"
	case StageCheckedIn:
		return "CHECKED_IN"
	case StageLanded:
		return "LANDED"
	default:
		return "unknown"
	}
}

// ParseStage converts the wire value into a Stage.
func ParseStage(s string) (Stage, error) {
	switch s {
	case "SCHEDULED":
		return StageScheduled, nil
	case "CHECKED_IN":
		return StageCheckedIn, nil
	case "LANDED":
		return StageLanded, nil
	}
	return 0, fmt.Errorf("unknown event type %q", s)
}

// MarshalJSON encodes the stage as its wire string.
func (s Stage) MarshalJSON() ([]byte, error) { return json.Marshal(s.String()) }

// UnmarshalJSON decodes the wire string.
func (s *Stage) UnmarshalJSON(b []byte) error {
	var raw string
	if err := json.Unmarshal(b, &raw); err != nil {
		return err
	}
	st, err := ParseStage(raw)
	if err != nil {
		return err
	}
	*s = st
	return nil
}

// FlightEvent is one flight update reported by the scoring service. A later
// event with the same FlightID supersedes earlier ones.
type FlightEvent struct {
	Type         Stage     `json:"eventType"`
	FlightNumber string    `json:"flightNumber"`
	FlightID     uuid.UUID `json:"flightId"`
	Origin       string    `json:"originAirport"`
	Destination  string    `json:"destinationAirport"`
	Departure    Hour      `json:"departure"`
	Arrival      Hour      `json:"arrival"`
	Passengers   Kits      `json:"passengers"`
	AircraftType string    `json:"aircraftType"`
}

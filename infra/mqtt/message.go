package mqtt

import (
	"github.com/kilianp07/rotables/core/events"
	"github.com/kilianp07/rotables/core/model"
)

// RoundMessage is the JSON payload published after every hour.
type RoundMessage struct {
	Day       int        `json:"day"`
	Hour      int        `json:"hour"`
	Flights   int        `json:"flights"`
	Landed    int        `json:"landed"`
	Loaded    model.Kits `json:"loaded"`
	Purchased model.Kits `json:"purchased"`
	Penalties int        `json:"penalties"`
	TotalCost float64    `json:"total_cost"`
}

// PenaltyMessage is the JSON payload published for every penalty.
type PenaltyMessage struct {
	Day          int     `json:"day"`
	Hour         int     `json:"hour"`
	Code         string  `json:"code"`
	FlightNumber string  `json:"flight_number,omitempty"`
	Amount       float64 `json:"amount"`
	Reason       string  `json:"reason,omitempty"`
}

func newRoundMessage(ev events.RoundEvent) RoundMessage {
	return RoundMessage{
		Day:       ev.At.Day,
		Hour:      ev.At.Hour,
		Flights:   ev.Flights,
		Landed:    ev.Landed,
		Loaded:    ev.Loaded,
		Purchased: ev.Purchased,
		Penalties: ev.Penalties,
		TotalCost: ev.TotalCost,
	}
}

func newPenaltyMessage(ev events.PenaltyEvent) PenaltyMessage {
	return PenaltyMessage{
		Day:          ev.At.Day,
		Hour:         ev.At.Hour,
		Code:         ev.Penalty.Code,
		FlightNumber: ev.Penalty.FlightNumber,
		Amount:       ev.Penalty.Amount,
		Reason:       ev.Penalty.Reason,
	}
}

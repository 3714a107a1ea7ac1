package model

import "github.com/google/uuid"

// FlightLoad is the number of kits loaded on one departing flight.
type FlightLoad struct {
	FlightID   uuid.UUID `json:"flightId"`
	LoadedKits Kits      `json:"loadedKits"`
}

// HourRequest is sent to the scoring service once per simulated hour.
type HourRequest struct {
	Day                 int          `json:"day"`
	Hour                int          `json:"hour"`
	FlightLoads         []FlightLoad `json:"flightLoads"`
	KitPurchasingOrders Kits         `json:"kitPurchasingOrders"`
}

// At returns the hour the request refers to.
func (r HourRequest) At() Hour { return Hour{Day: r.Day, Hour: r.Hour} }

// Penalty is a cost issued by the scoring service.
type Penalty struct {
	Code         string     `json:"code"`
	FlightID     *uuid.UUID `json:"flightId,omitempty"`
	FlightNumber string     `json:"flightNumber,omitempty"`
	IssuedDay    int        `json:"issuedDay"`
	IssuedHour   int        `json:"issuedHour"`
	Amount       float64    `json:"penalty"`
	Reason       string     `json:"reason"`
}

// HourResponse is the scoring service answer to an HourRequest.
type HourResponse struct {
	Day           int           `json:"day"`
	Hour          int           `json:"hour"`
	FlightUpdates []FlightEvent `json:"flightUpdates"`
	Penalties     []Penalty     `json:"penalties"`
	TotalCost     float64       `json:"totalCost"`
}

// At returns the authoritative hour reported by the service.
func (r HourResponse) At() Hour { return Hour{Day: r.Day, Hour: r.Hour} }

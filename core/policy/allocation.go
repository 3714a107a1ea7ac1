// Package policy turns stock levels, flight demand and forecasts into kit
// load and purchase quantities.
package policy

import (
	"math"

	"github.com/kilianp07/rotables/core/model"
)

// LoadInput gathers everything needed to decide the load of one flight.
// The Known flags are false when reference data for the aircraft type or
// destination airport is missing; the matching limits are then treated as
// zero.
type LoadInput struct {
	Flight              model.FlightEvent
	OriginIsHub         bool
	OriginStock         model.Kits
	DestinationStock    model.Kits
	DestinationCapacity model.Kits
	DestinationKnown    bool
	AircraftCapacity    model.Kits
	AircraftKnown       bool
	Forecast            model.Kits
}

// Allocator decides per-class load quantities for a flight.
type Allocator struct {
	params AllocationParams
}

// NewAllocator returns an allocator using p.
func NewAllocator(p AllocationParams) *Allocator {
	return &Allocator{params: p}
}

// ceilInt rounds up while tolerating float noise such as 0.3*10.
func ceilInt(x float64) int {
	return int(math.Ceil(x - 1e-9))
}

// Reserve returns the stock kept back for class c at the origin.
func (a *Allocator) Reserve(in LoadInput, c model.Class) int {
	stock := in.OriginStock.Get(c)
	forecast := float64(in.Forecast.Get(c))
	var r int
	if in.OriginIsHub {
		r = ceilInt(forecast * a.params.HubReserveFactor)
	} else {
		r = max(
			a.params.FixedFloor.Get(c),
			ceilInt(float64(stock)*a.params.BufferRatio.Get(c)),
			ceilInt(forecast*a.params.OutstationReserveFactor),
		)
	}
	return max(0, min(r, stock))
}

// Available returns the origin stock net of the reserve.
func (a *Allocator) Available(in LoadInput) model.Kits {
	var out model.Kits
	for _, c := range model.Classes {
		out.Set(c, max(0, in.OriginStock.Get(c)-a.Reserve(in, c)))
	}
	return out
}

// Headroom returns how many kits the destination can still absorb.
func (a *Allocator) Headroom(in LoadInput) model.Kits {
	var out model.Kits
	if !in.DestinationKnown {
		return out
	}
	for _, c := range model.Classes {
		capacity := in.DestinationCapacity.Get(c)
		margin := max(a.params.SafetyMargin.Get(c), int(float64(capacity)*a.params.HeadroomRatio))
		out.Set(c, max(0, capacity-in.DestinationStock.Get(c)-margin))
	}
	return out
}

// Upper returns the per-flight limit ignoring origin stock: passengers,
// aircraft capacity and destination headroom.
func (a *Allocator) Upper(in LoadInput) model.Kits {
	var aircraft model.Kits
	if in.AircraftKnown {
		aircraft = in.AircraftCapacity
	}
	out := in.Flight.Passengers.Min(aircraft).Min(a.Headroom(in))
	for _, c := range model.Classes {
		out.Set(c, max(0, out.Get(c)))
	}
	return out
}

// DecideLoad returns the kits to load on the flight. Every class is bounded
// by passengers, available stock after reservation, aircraft capacity and
// destination headroom, and is never negative.
func (a *Allocator) DecideLoad(in LoadInput) model.Kits {
	return a.Upper(in).Min(a.Available(in))
}

package model

// Airport is immutable reference data for one station.
type Airport struct {
	ID   string
	Code string
	Name string
	// ProcessingTime is the number of hours needed to recondition a used kit.
	ProcessingTime Kits
	ProcessingCost Ratios
	LoadingCost    Ratios
	Capacity       Kits
	InitialStock   Kits
}

// AircraftType is immutable reference data for one aircraft model.
type AircraftType struct {
	ID             string
	TypeCode       string
	Seats          Kits
	KitCapacity    Kits
	CostPerKgPerKm float64
}

// Catalog indexes the reference data loaded before the round loop.
type Catalog struct {
	Hub      string
	airports map[string]Airport
	aircraft map[string]AircraftType
}

// NewCatalog builds a catalog keyed by airport code and aircraft type code.
func NewCatalog(hub string, airports []Airport, aircraft []AircraftType) *Catalog {
	c := &Catalog{
		Hub:      hub,
		airports: make(map[string]Airport, len(airports)),
		aircraft: make(map[string]AircraftType, len(aircraft)),
	}
	for _, a := range airports {
		c.airports[a.Code] = a
	}
	for _, t := range aircraft {
		c.aircraft[t.TypeCode] = t
	}
	return c
}

// Airport returns the airport with the given code.
func (c *Catalog) Airport(code string) (Airport, bool) {
	a, ok := c.airports[code]
	return a, ok
}

// Aircraft returns the aircraft type with the given code.
func (c *Catalog) Aircraft(code string) (AircraftType, bool) {
	t, ok := c.aircraft[code]
	return t, ok
}

// Airports returns every airport. Order is unspecified.
func (c *Catalog) Airports() []Airport {
	out := make([]Airport, 0, len(c.airports))
	for _, a := range c.airports {
		out = append(out, a)
	}
	return out
}

// IsHub reports whether code is the purchasing hub.
func (c *Catalog) IsHub(code string) bool { return code == c.Hub }

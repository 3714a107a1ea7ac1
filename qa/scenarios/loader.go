// Package scenarios replays scripted games described in YAML against the
// round orchestrator and checks loads, purchases and final stock.
package scenarios

import (
	"fmt"
	"os"

	"github.com/google/uuid"
	"gopkg.in/yaml.v3"

	"github.com/kilianp07/rotables/core/model"
)

// Kits mirrors model.Kits with short YAML keys.
type Kits struct {
	First          int `yaml:"fc"`
	Business       int `yaml:"bc"`
	PremiumEconomy int `yaml:"pe"`
	Economy        int `yaml:"ec"`
}

func (k Kits) ToModel() model.Kits {
	return model.Kits{First: k.First, Business: k.Business, PremiumEconomy: k.PremiumEconomy, Economy: k.Economy}
}

type AirportDef struct {
	Code           string `yaml:"code"`
	Stock          Kits   `yaml:"stock"`
	Capacity       Kits   `yaml:"capacity"`
	ProcessingTime Kits   `yaml:"processing_time"`
}

func (a AirportDef) ToModel() model.Airport {
	return model.Airport{
		ID:             a.Code,
		Code:           a.Code,
		Name:           a.Code,
		InitialStock:   a.Stock.ToModel(),
		Capacity:       a.Capacity.ToModel(),
		ProcessingTime: a.ProcessingTime.ToModel(),
	}
}

type AircraftDef struct {
	Type        string `yaml:"type"`
	KitCapacity Kits   `yaml:"kit_capacity"`
}

type FlightDef struct {
	Number      string `yaml:"number"`
	Origin      string `yaml:"origin"`
	Destination string `yaml:"destination"`
	Departure   string `yaml:"departure"`
	Arrival     string `yaml:"arrival"`
	Passengers  Kits   `yaml:"passengers"`
	Aircraft    string `yaml:"aircraft"`
}

// ID derives a stable flight id from the flight number.
func (f FlightDef) ID() uuid.UUID {
	return uuid.NewSHA1(uuid.NameSpaceOID, []byte(f.Number))
}

// EventDef reports a flight update in the response to hour At.
type EventDef struct {
	At     string `yaml:"at"`
	Type   string `yaml:"type"`
	Flight string `yaml:"flight"`
}

type Expected struct {
	Loads       map[string]Kits `yaml:"loads,omitempty"`
	LoadedTotal *Kits           `yaml:"loaded_total,omitempty"`
	Purchased   *Kits           `yaml:"purchased,omitempty"`
	Stock       map[string]Kits `yaml:"stock,omitempty"`
}

type Scenario struct {
	Name         string        `yaml:"name"`
	Description  string        `yaml:"description,omitempty"`
	Preset       string        `yaml:"preset"`
	BatchLP      bool          `yaml:"batch_lp,omitempty"`
	SafetyMargin *Kits         `yaml:"safety_margin,omitempty"`
	LeadHours    int           `yaml:"purchase_lead_hours,omitempty"`
	Hub          string        `yaml:"hub"`
	End          string        `yaml:"end"`
	Airports     []AirportDef  `yaml:"airports"`
	Aircraft     []AircraftDef `yaml:"aircraft"`
	Flights      []FlightDef   `yaml:"flights"`
	Events       []EventDef    `yaml:"events"`
	Expected     Expected      `yaml:"expected"`
}

func Load(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var sc Scenario
	if err := yaml.Unmarshal(data, &sc); err != nil {
		return nil, err
	}
	if sc.Name == "" {
		return nil, fmt.Errorf("%s: scenario name is required", path)
	}
	return &sc, nil
}

// Catalog builds the reference data of the scenario.
func (sc *Scenario) Catalog() *model.Catalog {
	airports := make([]model.Airport, len(sc.Airports))
	for i, a := range sc.Airports {
		airports[i] = a.ToModel()
	}
	aircraft := make([]model.AircraftType, len(sc.Aircraft))
	for i, a := range sc.Aircraft {
		aircraft[i] = model.AircraftType{ID: a.Type, TypeCode: a.Type, KitCapacity: a.KitCapacity.ToModel()}
	}
	return model.NewCatalog(sc.Hub, airports, aircraft)
}

// Script groups the flight events by the hour whose response reports them.
func (sc *Scenario) Script() (map[int][]model.FlightEvent, error) {
	flights := make(map[string]FlightDef, len(sc.Flights))
	for _, f := range sc.Flights {
		flights[f.Number] = f
	}
	out := make(map[int][]model.FlightEvent)
	for _, e := range sc.Events {
		f, ok := flights[e.Flight]
		if !ok {
			return nil, fmt.Errorf("event for unknown flight %s", e.Flight)
		}
		at, err := model.ParseHour(e.At)
		if err != nil {
			return nil, err
		}
		stage, err := model.ParseStage(e.Type)
		if err != nil {
			return nil, err
		}
		dep, err := model.ParseHour(f.Departure)
		if err != nil {
			return nil, err
		}
		arr, err := model.ParseHour(f.Arrival)
		if err != nil {
			return nil, err
		}
		out[at.Index()] = append(out[at.Index()], model.FlightEvent{
			Type:         stage,
			FlightNumber: f.Number,
			FlightID:     f.ID(),
			Origin:       f.Origin,
			Destination:  f.Destination,
			Departure:    dep,
			Arrival:      arr,
			Passengers:   f.Passengers.ToModel(),
			AircraftType: f.Aircraft,
		})
	}
	return out, nil
}

package refdata

import (
	"fmt"
	"io"
	"os"

	"github.com/kilianp07/rotables/core/model"
)

var (
	processingTimeCols = [4]string{"first_processing_time", "business_processing_time", "premium_economy_processing_time", "economy_processing_time"}
	processingCostCols = [4]string{"first_processing_cost", "business_processing_cost", "premium_economy_processing_cost", "economy_processing_cost"}
	loadingCostCols    = [4]string{"first_loading_cost", "business_loading_cost", "premium_economy_loading_cost", "economy_loading_cost"}
	initialStockCols   = [4]string{"initial_fc_stock", "initial_bc_stock", "initial_pe_stock", "initial_ec_stock"}
	capacityCols       = [4]string{"capacity_fc", "capacity_bc", "capacity_pe", "capacity_ec"}

	kitCapacityCols = [4]string{"first_class_kits_capacity", "business_kits_capacity", "premium_economy_kits_capacity", "economy_kits_capacity"}
	seatCols        = [4]string{"first_class_seats", "business_seats", "premium_economy_seats", "economy_seats"}
)

func kits(v [4]int) model.Kits {
	return model.Kits{First: v[0], Business: v[1], PremiumEconomy: v[2], Economy: v[3]}
}

func ratios(v [4]float64) model.Ratios {
	return model.Ratios{First: v[0], Business: v[1], PremiumEconomy: v[2], Economy: v[3]}
}

func airportColumns() []string {
	cols := []string{"code"}
	for _, group := range [][4]string{processingTimeCols, initialStockCols, capacityCols} {
		cols = append(cols, group[:]...)
	}
	return cols
}

// ReadAirports parses the airport table.
func ReadAirports(r io.Reader) ([]model.Airport, error) {
	var out []model.Airport
	seen := make(map[string]bool)
	err := readTable(r, airportColumns(), func(rw row) error {
		a := model.Airport{ID: rw.str("id"), Code: rw.str("code"), Name: rw.str("name")}
		if a.Code == "" {
			return fmt.Errorf("line %d: empty airport code", rw.line)
		}
		if seen[a.Code] {
			return fmt.Errorf("line %d: duplicate airport %s", rw.line, a.Code)
		}
		seen[a.Code] = true

		pt, err := rw.ints(processingTimeCols)
		if err != nil {
			return err
		}
		stock, err := rw.ints(initialStockCols)
		if err != nil {
			return err
		}
		capacity, err := rw.ints(capacityCols)
		if err != nil {
			return err
		}
		pc, err := rw.floats(processingCostCols)
		if err != nil {
			return err
		}
		lc, err := rw.floats(loadingCostCols)
		if err != nil {
			return err
		}
		a.ProcessingTime = kits(pt)
		a.InitialStock = kits(stock)
		a.Capacity = kits(capacity)
		a.ProcessingCost = ratios(pc)
		a.LoadingCost = ratios(lc)
		out = append(out, a)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("airports: %w", err)
	}
	return out, nil
}

// ReadAircraft parses the aircraft type table. Seat counts and the fuel cost
// factor are optional columns.
func ReadAircraft(r io.Reader) ([]model.AircraftType, error) {
	var out []model.AircraftType
	required := append([]string{"type_code"}, kitCapacityCols[:]...)
	err := readTable(r, required, func(rw row) error {
		t := model.AircraftType{ID: rw.str("id"), TypeCode: rw.str("type_code")}
		if t.TypeCode == "" {
			return fmt.Errorf("line %d: empty type code", rw.line)
		}
		capacity, err := rw.ints(kitCapacityCols)
		if err != nil {
			return err
		}
		t.KitCapacity = kits(capacity)
		if rw.has(seatCols[0]) {
			seats, err := rw.ints(seatCols)
			if err != nil {
				return err
			}
			t.Seats = kits(seats)
		}
		if t.CostPerKgPerKm, err = rw.float("cost_per_kg_per_km"); err != nil {
			return err
		}
		out = append(out, t)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("aircraft: %w", err)
	}
	return out, nil
}

// Paths locates the reference tables on disk.
type Paths struct {
	Airports string `json:"airports"`
	Aircraft string `json:"aircraft"`
}

// LoadCatalog reads both tables and indexes them with hub as the purchasing
// station. The hub must be one of the airports.
func LoadCatalog(p Paths, hub string) (*model.Catalog, error) {
	airports, err := readFile(p.Airports, ReadAirports)
	if err != nil {
		return nil, err
	}
	aircraft, err := readFile(p.Aircraft, ReadAircraft)
	if err != nil {
		return nil, err
	}
	cat := model.NewCatalog(hub, airports, aircraft)
	if _, ok := cat.Airport(hub); !ok {
		return nil, fmt.Errorf("hub %s not found in %s", hub, p.Airports)
	}
	return cat, nil
}

func readFile[T any](path string, read func(io.Reader) ([]T, error)) ([]T, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()
	return read(f)
}

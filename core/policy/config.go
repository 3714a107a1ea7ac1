package policy

import (
	"fmt"
	"strings"

	"github.com/kilianp07/rotables/core/model"
)

// AllocationParams tunes how much of the origin stock a flight may take.
type AllocationParams struct {
	// HubReserveFactor scales forecast demand into a reserve at the hub.
	HubReserveFactor float64 `json:"hub_reserve_factor"`
	// OutstationReserveFactor scales forecast demand into a reserve elsewhere.
	OutstationReserveFactor float64 `json:"outstation_reserve_factor"`
	// FixedFloor is the minimum reserve kept at an outstation.
	FixedFloor model.Kits `json:"fixed_floor"`
	// BufferRatio keeps a share of the current outstation stock.
	BufferRatio model.Ratios `json:"buffer_ratio"`
	// SafetyMargin is subtracted from the destination capacity.
	SafetyMargin model.Kits `json:"safety_margin"`
	// HeadroomRatio raises the safety margin to floor(capacity*ratio) when larger.
	HeadroomRatio float64 `json:"headroom_ratio"`
}

// PurchaseParams configures the hub hysteresis bands.
type PurchaseParams struct {
	MinThreshold       model.Kits `json:"min_threshold"`
	MidThreshold       model.Kits `json:"mid_threshold"`
	OverstockThreshold model.Kits `json:"overstock_threshold"`
	HighAmount         model.Kits `json:"high_amount"`
	LowAmount          model.Kits `json:"low_amount"`
	// HeadroomRatio keeps this share of the hub capacity free.
	HeadroomRatio float64 `json:"headroom_ratio"`
	// HourlyCap limits a single order per class. Zero disables the ceiling.
	HourlyCap model.Kits `json:"hourly_cap"`
}

// Config selects a preset and carries the resolved parameters.
type Config struct {
	Preset     string           `json:"preset"`
	BatchLP    bool             `json:"batch_lp"`
	Allocation AllocationParams `json:"allocation"`
	Purchase   PurchaseParams   `json:"purchase"`
}

// DefaultPreset is used when no preset is configured.
const DefaultPreset = "forecast"

func defaultPurchase() PurchaseParams {
	minT := model.Kits{First: 300, Business: 600, PremiumEconomy: 800, Economy: 12_000}
	return PurchaseParams{
		MinThreshold: minT,
		MidThreshold: model.Kits{First: 600, Business: 1_200, PremiumEconomy: 1_600, Economy: 20_000},
		OverstockThreshold: model.Kits{
			First: 3 * minT.First, Business: 3 * minT.Business,
			PremiumEconomy: 3 * minT.PremiumEconomy, Economy: 3 * minT.Economy,
		},
		HighAmount:    model.Kits{First: 150, Business: 250, PremiumEconomy: 250, Economy: 1_800},
		LowAmount:     model.Kits{First: 80, Business: 120, PremiumEconomy: 120, Economy: 900},
		HeadroomRatio: 0.10,
		HourlyCap:     model.Kits{Economy: 4_000},
	}
}

func hybridAllocation() AllocationParams {
	return AllocationParams{
		FixedFloor:    model.Kits{First: 5, Business: 5, PremiumEconomy: 5, Economy: 40},
		BufferRatio:   model.Ratios{First: 0.30, Business: 0.30, PremiumEconomy: 0.30, Economy: 0.50},
		HeadroomRatio: 0.20,
	}
}

// PresetNames lists the known presets.
func PresetNames() []string { return []string{"simple", "hub_only", "hybrid", "forecast"} }

// Preset returns the named parameter set.
//
//	simple    one kit per passenger, no reserve, no purchases
//	hub_only  one kit per passenger, hysteresis purchasing at the hub
//	hybrid    outstation floors and buffers plus destination headroom
//	forecast  hybrid plus a reserve against known future departures
func Preset(name string) (Config, error) {
	if name == "" {
		name = DefaultPreset
	}
	cfg := Config{Preset: strings.ToLower(name), Purchase: defaultPurchase()}
	switch cfg.Preset {
	case "simple":
		cfg.Purchase.HighAmount = model.Kits{}
		cfg.Purchase.LowAmount = model.Kits{}
	case "hub_only":
	case "hybrid":
		cfg.Allocation = hybridAllocation()
	case "forecast":
		cfg.Allocation = hybridAllocation()
		cfg.Allocation.HubReserveFactor = 0.5
		cfg.Allocation.OutstationReserveFactor = 1.0
	default:
		return Config{}, fmt.Errorf("unknown policy preset %q", name)
	}
	return cfg, nil
}

// Validate checks that parameters are consistent.
func (c Config) Validate() error {
	a := c.Allocation
	if a.HubReserveFactor < 0 || a.OutstationReserveFactor < 0 {
		return fmt.Errorf("reserve factors must be non-negative")
	}
	if a.HeadroomRatio < 0 || a.HeadroomRatio >= 1 {
		return fmt.Errorf("allocation headroom_ratio must be in [0,1)")
	}
	p := c.Purchase
	if p.HeadroomRatio < 0 || p.HeadroomRatio >= 1 {
		return fmt.Errorf("purchase headroom_ratio must be in [0,1)")
	}
	for _, cl := range model.Classes {
		if a.BufferRatio.Get(cl) < 0 || a.BufferRatio.Get(cl) > 1 {
			return fmt.Errorf("buffer_ratio %s must be in [0,1]", cl.Key())
		}
		if p.MidThreshold.Get(cl) <= p.MinThreshold.Get(cl) {
			return fmt.Errorf("mid_threshold %s must exceed min_threshold", cl.Key())
		}
		if p.OverstockThreshold.Get(cl) <= p.MidThreshold.Get(cl) {
			return fmt.Errorf("overstock_threshold %s must exceed mid_threshold", cl.Key())
		}
		if p.HighAmount.Get(cl) < 0 || p.LowAmount.Get(cl) < 0 || p.HourlyCap.Get(cl) < 0 {
			return fmt.Errorf("purchase amounts %s must be non-negative", cl.Key())
		}
	}
	return nil
}

package policy

import "github.com/kilianp07/rotables/core/model"

// Purchaser computes hub replenishment orders using hysteresis bands.
type Purchaser struct {
	params PurchaseParams
}

// NewPurchaser returns a purchaser using p.
func NewPurchaser(p PurchaseParams) *Purchaser {
	return &Purchaser{params: p}
}

// DecidePurchase returns the quantities to order at the hub. When the hub
// capacity is unknown the capacity clamp is skipped.
func (p *Purchaser) DecidePurchase(stock, capacity model.Kits, capacityKnown bool) model.Kits {
	var out model.Kits
	for _, c := range model.Classes {
		out.Set(c, p.decideClass(c, stock.Get(c), capacity.Get(c), capacityKnown))
	}
	return out
}

func (p *Purchaser) decideClass(c model.Class, stock, capacity int, capacityKnown bool) int {
	if stock > p.params.OverstockThreshold.Get(c) {
		return 0
	}
	var buy int
	switch {
	case stock < p.params.MinThreshold.Get(c):
		buy = p.params.HighAmount.Get(c)
	case stock < p.params.MidThreshold.Get(c):
		buy = p.params.LowAmount.Get(c)
	default:
		return 0
	}
	if capacityKnown {
		free := max(0, int(float64(capacity)*(1-p.params.HeadroomRatio))-stock)
		buy = min(buy, free)
	}
	if ceiling := p.params.HourlyCap.Get(c); ceiling > 0 {
		buy = min(buy, ceiling)
	}
	return max(0, buy)
}

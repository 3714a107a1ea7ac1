package model

import "fmt"

// Class identifies one of the four kit categories.
type Class int

const (
	First Class = iota
	Business
	PremiumEconomy
	Economy
)

// Classes lists every kit class in wire order.
var Classes = [...]Class{First, Business, PremiumEconomy, Economy}

// String returns the upper-case name used by the scoring service.
func (c Class) String() string {
	switch c {
	case First:
		return "FIRST"
	case Business:
		return "BUSINESS"
	case PremiumEconomy:
		return "PREMIUM_ECONOMY"
	case Economy:
		return "ECONOMY"
	default:
		return "unknown"
	}
}

// Key returns the two letter short name (fc, bc, pe, ec).
func (c Class) Key() string {
	switch c {
	case First:
		return "fc"
	case Business:
		return "bc"
	case PremiumEconomy:
		return "pe"
	case Economy:
		return "ec"
	default:
		return "??"
	}
}

// ParseClass accepts either the long or the short class name.
func ParseClass(s string) (Class, error) {
	for _, c := range Classes {
		if s == c.String() || s == c.Key() {
			return c, nil
		}
	}
	return 0, fmt.Errorf("unknown kit class %q", s)
}

// Kits holds one integer quantity per class.
type Kits struct {
	First          int `json:"first"`
	Business       int `json:"business"`
	PremiumEconomy int `json:"premiumEconomy"`
	Economy        int `json:"economy"`
}

// Get returns the quantity for c.
func (k Kits) Get(c Class) int {
	switch c {
	case First:
		return k.First
	case Business:
		return k.Business
	case PremiumEconomy:
		return k.PremiumEconomy
	case Economy:
		return k.Economy
	}
	return 0
}

// Set updates the quantity for c.
func (k *Kits) Set(c Class, n int) {
	switch c {
	case First:
		k.First = n
	case Business:
		k.Business = n
	case PremiumEconomy:
		k.PremiumEconomy = n
	case Economy:
		k.Economy = n
	}
}

// Add returns the element-wise sum.
func (k Kits) Add(o Kits) Kits {
	return Kits{
		First:          k.First + o.First,
		Business:       k.Business + o.Business,
		PremiumEconomy: k.PremiumEconomy + o.PremiumEconomy,
		Economy:        k.Economy + o.Economy,
	}
}

// Sub returns the element-wise difference. The result may be negative.
func (k Kits) Sub(o Kits) Kits {
	return Kits{
		First:          k.First - o.First,
		Business:       k.Business - o.Business,
		PremiumEconomy: k.PremiumEconomy - o.PremiumEconomy,
		Economy:        k.Economy - o.Economy,
	}
}

// Min returns the element-wise minimum.
func (k Kits) Min(o Kits) Kits {
	var out Kits
	for _, c := range Classes {
		out.Set(c, min(k.Get(c), o.Get(c)))
	}
	return out
}

// Total sums all classes.
func (k Kits) Total() int {
	return k.First + k.Business + k.PremiumEconomy + k.Economy
}

// IsZero reports whether every class is zero.
func (k Kits) IsZero() bool { return k == Kits{} }

func (k Kits) String() string {
	return fmt.Sprintf("FC=%d BC=%d PE=%d EC=%d", k.First, k.Business, k.PremiumEconomy, k.Economy)
}

// Ratios holds one float per class, used for policy parameters and costs.
type Ratios struct {
	First          float64 `json:"first"`
	Business       float64 `json:"business"`
	PremiumEconomy float64 `json:"premiumEconomy"`
	Economy        float64 `json:"economy"`
}

// Get returns the ratio for c.
func (r Ratios) Get(c Class) float64 {
	switch c {
	case First:
		return r.First
	case Business:
		return r.Business
	case PremiumEconomy:
		return r.PremiumEconomy
	case Economy:
		return r.Economy
	}
	return 0
}

// Set updates the ratio for c.
func (r *Ratios) Set(c Class, v float64) {
	switch c {
	case First:
		r.First = v
	case Business:
		r.Business = v
	case PremiumEconomy:
		r.PremiumEconomy = v
	case Economy:
		r.Economy = v
	}
}

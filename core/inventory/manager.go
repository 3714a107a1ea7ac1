// Package inventory tracks usable kit stock per airport together with the
// kits that are being reconditioned and will return to stock later.
package inventory

import (
	"sort"

	"github.com/kilianp07/rotables/core/model"
)

// ProcessingItem is a batch of used kits being reconditioned at an airport.
type ProcessingItem struct {
	Airport  string
	Class    model.Class
	Quantity int
	Ready    model.Hour
}

// Manager owns the stock ledger and the processing queue. It is not safe for
// concurrent use; the round orchestrator is its only caller.
type Manager struct {
	catalog    *model.Catalog
	stock      map[string]model.Kits
	processing map[string][]ProcessingItem
}

// NewManager seeds the ledger with every airport's initial stock.
func NewManager(catalog *model.Catalog) *Manager {
	m := &Manager{
		catalog:    catalog,
		stock:      make(map[string]model.Kits),
		processing: make(map[string][]ProcessingItem),
	}
	if catalog != nil {
		for _, ap := range catalog.Airports() {
			m.stock[ap.Code] = ap.InitialStock
		}
	}
	return m
}

// Stock returns the usable stock at the airport. Unknown airports hold nothing.
func (m *Manager) Stock(airport string) model.Kits {
	return m.stock[airport]
}

// Remove subtracts kits from the airport. Each class is clamped to the
// current stock so the ledger never goes negative. It returns the quantities
// actually removed.
func (m *Manager) Remove(airport string, k model.Kits) model.Kits {
	st, ok := m.stock[airport]
	if !ok {
		return model.Kits{}
	}
	var removed model.Kits
	for _, c := range model.Classes {
		n := max(0, min(k.Get(c), st.Get(c)))
		removed.Set(c, n)
		st.Set(c, st.Get(c)-n)
	}
	m.stock[airport] = st
	return removed
}

// Add increases the airport stock. No capacity ceiling is applied here;
// capacity is a planning constraint handled by the policies.
func (m *Manager) Add(airport string, k model.Kits) {
	st := m.stock[airport]
	for _, c := range model.Classes {
		if n := k.Get(c); n > 0 {
			st.Set(c, st.Get(c)+n)
		}
	}
	m.stock[airport] = st
}

// EnqueueProcessing schedules used kits for reconditioning at the airport.
// The kits become usable once the airport's processing time for the class
// has elapsed after landedAt. A zero quantity enqueues nothing.
func (m *Manager) EnqueueProcessing(airport string, class model.Class, qty int, landedAt model.Hour) {
	if qty <= 0 {
		return
	}
	delay := 0
	if m.catalog != nil {
		if ap, ok := m.catalog.Airport(airport); ok {
			delay = ap.ProcessingTime.Get(class)
		}
	}
	m.processing[airport] = append(m.processing[airport], ProcessingItem{
		Airport:  airport,
		Class:    class,
		Quantity: qty,
		Ready:    landedAt.Add(delay),
	})
}

// ReleaseMatured moves every item whose ready hour is at or before now back
// into stock and returns the total released per class.
func (m *Manager) ReleaseMatured(now model.Hour) model.Kits {
	var released model.Kits
	for ap, queue := range m.processing {
		kept := queue[:0]
		var add model.Kits
		for _, it := range queue {
			if it.Ready.After(now) {
				kept = append(kept, it)
				continue
			}
			add.Set(it.Class, add.Get(it.Class)+it.Quantity)
		}
		if !add.IsZero() {
			m.Add(ap, add)
			released = released.Add(add)
		}
		if len(kept) == 0 {
			delete(m.processing, ap)
		} else {
			m.processing[ap] = kept
		}
	}
	return released
}

// Pending returns a copy of the processing queue sorted by ready hour.
func (m *Manager) Pending() []ProcessingItem {
	var out []ProcessingItem
	for _, q := range m.processing {
		out = append(out, q...)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Ready != out[j].Ready {
			return out[i].Ready.Before(out[j].Ready)
		}
		if out[i].Airport != out[j].Airport {
			return out[i].Airport < out[j].Airport
		}
		return out[i].Class < out[j].Class
	})
	return out
}

// Snapshot returns a copy of the stock ledger.
func (m *Manager) Snapshot() map[string]model.Kits {
	out := make(map[string]model.Kits, len(m.stock))
	for k, v := range m.stock {
		out[k] = v
	}
	return out
}

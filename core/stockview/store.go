// Package stockview keeps the latest known stock of every airport so that
// it can be served while a game is running.
package stockview

import (
	"sort"
	"sync"

	"github.com/kilianp07/rotables/core/metrics"
	"github.com/kilianp07/rotables/core/model"
)

// Status captures the last observed state of one airport.
type Status struct {
	Airport  string     `json:"airport"`
	Hub      bool       `json:"hub"`
	Stock    model.Kits `json:"stock"`
	Capacity model.Kits `json:"capacity"`
	// Overflow counts kits above capacity, per class.
	Overflow model.Kits `json:"overflow"`
	At       model.Hour `json:"at"`
}

type Filter struct {
	Airport string
	HubOnly bool
	// Overflowing keeps only airports holding more kits than they can store.
	Overflowing bool
}

type Store interface {
	Set(Status)
	List(Filter) []Status
	RecordStock(at model.Hour, stock map[string]model.Kits) error
}

// MemoryStore is a Store and a metrics sink; plug it next to the other
// sinks to keep it current.
type MemoryStore struct {
	mu      sync.RWMutex
	catalog *model.Catalog
	data    map[string]Status
}

// NewMemoryStore seeds the store with the initial stock of every airport in
// catalog. A nil catalog yields an empty store.
func NewMemoryStore(catalog *model.Catalog) *MemoryStore {
	s := &MemoryStore{catalog: catalog, data: map[string]Status{}}
	if catalog == nil {
		return s
	}
	for _, a := range catalog.Airports() {
		s.data[a.Code] = s.status(a.Code, a.InitialStock, model.Hour{})
	}
	return s
}

func (s *MemoryStore) status(code string, stock model.Kits, at model.Hour) Status {
	st := Status{Airport: code, Stock: stock, At: at}
	if s.catalog == nil {
		return st
	}
	st.Hub = s.catalog.IsHub(code)
	if a, ok := s.catalog.Airport(code); ok {
		st.Capacity = a.Capacity
		for _, c := range model.Classes {
			st.Overflow.Set(c, max(0, stock.Get(c)-a.Capacity.Get(c)))
		}
	}
	return st
}

func (s *MemoryStore) Set(st Status) {
	s.mu.Lock()
	s.data[st.Airport] = st
	s.mu.Unlock()
}

// RecordStock replaces the stock of every airport in stock.
func (s *MemoryStore) RecordStock(at model.Hour, stock map[string]model.Kits) error {
	s.mu.Lock()
	for code, k := range stock {
		s.data[code] = s.status(code, k, at)
	}
	s.mu.Unlock()
	return nil
}

// RecordRound is a no-op; only stock snapshots are kept.
func (s *MemoryStore) RecordRound(metrics.RoundRecord) error { return nil }

func (s *MemoryStore) List(f Filter) []Status {
	s.mu.RLock()
	defer s.mu.RUnlock()
	res := make([]Status, 0, len(s.data))
	for _, st := range s.data {
		if f.Airport != "" && st.Airport != f.Airport {
			continue
		}
		if f.HubOnly && !st.Hub {
			continue
		}
		if f.Overflowing && st.Overflow.IsZero() {
			continue
		}
		res = append(res, st)
	}
	sort.Slice(res, func(i, j int) bool { return res[i].Airport < res[j].Airport })
	return res
}

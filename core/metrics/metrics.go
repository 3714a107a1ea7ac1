package metrics

import "github.com/kilianp07/rotables/core/model"

// RoundRecord summarises one played hour.
type RoundRecord struct {
	At            model.Hour
	Flights       int
	Loaded        model.Kits
	Purchased     model.Kits
	Landed        int
	Penalties     int
	PenaltyAmount float64
	TotalCost     float64
}

// MetricsSink records round summaries for observability purposes.
type MetricsSink interface {
	RecordRound(rec RoundRecord) error
}

// PenaltyRecord is one penalty issued by the scoring service.
type PenaltyRecord struct {
	At           model.Hour
	Code         string
	FlightNumber string
	Amount       float64
}

// PenaltyRecorder records individual penalties.
type PenaltyRecorder interface {
	RecordPenalty(rec PenaltyRecord) error
}

// StockRecorder records per-airport stock snapshots.
type StockRecorder interface {
	RecordStock(at model.Hour, stock map[string]model.Kits) error
}

// StrategyRecord captures a batch allocator decision.
type StrategyRecord struct {
	At     model.Hour
	Origin string
	Action string
}

// StrategyRecorder records allocator strategy transitions.
type StrategyRecorder interface {
	RecordStrategy(rec StrategyRecord) error
}

// NopSink implements every recorder with no-op methods.
type NopSink struct{}

func (NopSink) RecordRound(RoundRecord) error                       { return nil }
func (NopSink) RecordPenalty(PenaltyRecord) error                   { return nil }
func (NopSink) RecordStock(model.Hour, map[string]model.Kits) error { return nil }
func (NopSink) RecordStrategy(StrategyRecord) error                 { return nil }

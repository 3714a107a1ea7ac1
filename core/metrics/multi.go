package metrics

import (
	"errors"

	"github.com/kilianp07/rotables/core/model"
)

// MultiSink fans records out to multiple sinks. Optional recorders are
// forwarded only to the sinks implementing them.
type MultiSink struct {
	Sinks []MetricsSink
}

// NewMultiSink creates a MultiSink with the provided sinks.
func NewMultiSink(sinks ...MetricsSink) *MultiSink {
	return &MultiSink{Sinks: sinks}
}

// RecordRound forwards the record to all sinks and joins their errors.
func (m *MultiSink) RecordRound(rec RoundRecord) error {
	var errs []error
	for _, s := range m.Sinks {
		errs = append(errs, s.RecordRound(rec))
	}
	return errors.Join(errs...)
}

// RecordPenalty forwards penalties.
func (m *MultiSink) RecordPenalty(rec PenaltyRecord) error {
	var errs []error
	for _, s := range m.Sinks {
		if r, ok := s.(PenaltyRecorder); ok {
			errs = append(errs, r.RecordPenalty(rec))
		}
	}
	return errors.Join(errs...)
}

// RecordStock forwards stock snapshots.
func (m *MultiSink) RecordStock(at model.Hour, stock map[string]model.Kits) error {
	var errs []error
	for _, s := range m.Sinks {
		if r, ok := s.(StockRecorder); ok {
			errs = append(errs, r.RecordStock(at, stock))
		}
	}
	return errors.Join(errs...)
}

// RecordStrategy forwards allocator strategy records.
func (m *MultiSink) RecordStrategy(rec StrategyRecord) error {
	var errs []error
	for _, s := range m.Sinks {
		if r, ok := s.(StrategyRecorder); ok {
			errs = append(errs, r.RecordStrategy(rec))
		}
	}
	return errors.Join(errs...)
}

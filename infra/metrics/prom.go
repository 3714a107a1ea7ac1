package metrics

import (
	"errors"

	"github.com/prometheus/client_golang/prometheus"

	coremetrics "github.com/kilianp07/rotables/core/metrics"
	"github.com/kilianp07/rotables/core/model"
)

// PromSink records round summaries in Prometheus metrics.
type PromSink struct {
	rounds    prometheus.Counter
	hour      prometheus.Gauge
	cost      prometheus.Gauge
	flights   prometheus.Counter
	loaded    *prometheus.CounterVec
	purchased *prometheus.CounterVec
	penalties *prometheus.CounterVec
	amount    *prometheus.CounterVec
	stock     *prometheus.GaugeVec
	strategy  *prometheus.CounterVec
}

// NewPromSink registers the metrics on the default Prometheus registerer.
// The HTTP endpoint is started separately with StartPromServer.
func NewPromSink() (*PromSink, error) {
	return NewPromSinkWithRegistry(prometheus.DefaultRegisterer)
}

// register adds c to reg, reusing the collector already registered under
// the same descriptor.
func register[T prometheus.Collector](reg prometheus.Registerer, c T) (T, error) {
	if err := reg.Register(c); err != nil {
		var are prometheus.AlreadyRegisteredError
		if errors.As(err, &are) {
			if existing, ok := are.ExistingCollector.(T); ok {
				return existing, nil
			}
		}
		return c, err
	}
	return c, nil
}

// NewPromSinkWithRegistry registers metrics on the provided registerer.
// A nil registerer defaults to the global Prometheus registerer.
func NewPromSinkWithRegistry(reg prometheus.Registerer) (*PromSink, error) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	s := &PromSink{}
	var err error
	if s.rounds, err = register(reg, prometheus.NewCounter(prometheus.CounterOpts{
		Name: "rotables_rounds_total",
		Help: "Number of hours played",
	})); err != nil {
		return nil, err
	}
	if s.hour, err = register(reg, prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "rotables_game_hour",
		Help: "Absolute index of the last played hour",
	})); err != nil {
		return nil, err
	}
	if s.cost, err = register(reg, prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "rotables_total_cost",
		Help: "Cumulative cost reported by the scoring service",
	})); err != nil {
		return nil, err
	}
	if s.flights, err = register(reg, prometheus.NewCounter(prometheus.CounterOpts{
		Name: "rotables_flights_loaded_total",
		Help: "Number of flights that received a load decision",
	})); err != nil {
		return nil, err
	}
	if s.loaded, err = register(reg, prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "rotables_kits_loaded_total",
		Help: "Kits loaded on departing flights",
	}, []string{"class"})); err != nil {
		return nil, err
	}
	if s.purchased, err = register(reg, prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "rotables_kits_purchased_total",
		Help: "Kits ordered at the hub",
	}, []string{"class"})); err != nil {
		return nil, err
	}
	if s.penalties, err = register(reg, prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "rotables_penalties_total",
		Help: "Penalties issued by the scoring service",
	}, []string{"code"})); err != nil {
		return nil, err
	}
	if s.amount, err = register(reg, prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "rotables_penalty_amount_total",
		Help: "Sum of penalty amounts",
	}, []string{"code"})); err != nil {
		return nil, err
	}
	if s.stock, err = register(reg, prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Name: "rotables_airport_stock",
		Help: "Usable kits per airport and class",
	}, []string{"airport", "class"})); err != nil {
		return nil, err
	}
	if s.strategy, err = register(reg, prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "rotables_allocation_strategy_total",
		Help: "Batch allocator attempts and fallbacks",
	}, []string{"action"})); err != nil {
		return nil, err
	}
	return s, nil
}

// RecordRound updates counters and gauges for one hour.
func (s *PromSink) RecordRound(rec coremetrics.RoundRecord) error {
	s.rounds.Inc()
	s.hour.Set(float64(rec.At.Index()))
	s.cost.Set(rec.TotalCost)
	s.flights.Add(float64(rec.Flights))
	for _, c := range model.Classes {
		s.loaded.WithLabelValues(c.Key()).Add(float64(rec.Loaded.Get(c)))
		s.purchased.WithLabelValues(c.Key()).Add(float64(rec.Purchased.Get(c)))
	}
	return nil
}

// RecordPenalty counts a penalty by code.
func (s *PromSink) RecordPenalty(rec coremetrics.PenaltyRecord) error {
	s.penalties.WithLabelValues(rec.Code).Inc()
	if rec.Amount > 0 {
		s.amount.WithLabelValues(rec.Code).Add(rec.Amount)
	}
	return nil
}

// RecordStock sets the stock gauges.
func (s *PromSink) RecordStock(_ model.Hour, stock map[string]model.Kits) error {
	for ap, k := range stock {
		for _, c := range model.Classes {
			s.stock.WithLabelValues(ap, c.Key()).Set(float64(k.Get(c)))
		}
	}
	return nil
}

// RecordStrategy counts allocator strategy transitions.
func (s *PromSink) RecordStrategy(rec coremetrics.StrategyRecord) error {
	s.strategy.WithLabelValues(rec.Action).Inc()
	return nil
}

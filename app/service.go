package app

import (
	"context"
	"errors"
	"fmt"

	apijournal "github.com/kilianp07/rotables/api/journal"
	"github.com/kilianp07/rotables/api/stock"
	"github.com/kilianp07/rotables/config"
	coremetrics "github.com/kilianp07/rotables/core/metrics"
	"github.com/kilianp07/rotables/core/journal"
	"github.com/kilianp07/rotables/core/model"
	"github.com/kilianp07/rotables/core/round"
	"github.com/kilianp07/rotables/core/stockview"
	"github.com/kilianp07/rotables/infra/logger"
	"github.com/kilianp07/rotables/infra/metrics"
	"github.com/kilianp07/rotables/infra/mqtt"
	"github.com/kilianp07/rotables/infra/refdata"
	"github.com/kilianp07/rotables/infra/scoring"
	"github.com/kilianp07/rotables/internal/eventbus"
)

// Service wires the round orchestrator to the scoring service, the journal,
// metrics sinks and the optional MQTT publisher.
type Service struct {
	cfg       *config.Config
	catalog   *model.Catalog
	transport round.Transport
	journal   journal.Store
	sink      coremetrics.MetricsSink
	stock     *stockview.MemoryStore
	publisher mqtt.Publisher
	bus       *eventbus.Bus
	log       logger.Logger
}

// New loads the reference tables and connects every collaborator described
// by cfg.
func New(cfg *config.Config) (*Service, error) {
	catalog, err := refdata.LoadCatalog(cfg.RefData, cfg.Hub)
	if err != nil {
		return nil, fmt.Errorf("reference data: %w", err)
	}
	var pub mqtt.Publisher
	if cfg.MQTTEnabled() {
		client, err := mqtt.NewPahoClient(cfg.MQTT)
		if err != nil {
			return nil, fmt.Errorf("mqtt client: %w", err)
		}
		pub = client
	}
	svc, err := NewWithTransport(cfg, catalog, scoring.NewClient(cfg.Scoring), pub)
	if err != nil {
		if c, ok := pub.(*mqtt.PahoClient); ok {
			c.Disconnect()
		}
		return nil, err
	}
	return svc, nil
}

// NewWithTransport builds a service around an existing catalog and
// transport. pub may be nil.
func NewWithTransport(cfg *config.Config, catalog *model.Catalog, t round.Transport, pub mqtt.Publisher) (*Service, error) {
	if err := logger.SetLevel(cfg.Logging.Level); err != nil {
		return nil, fmt.Errorf("log level: %w", err)
	}
	store, err := journal.NewStore(cfg.Journal)
	if err != nil {
		return nil, fmt.Errorf("journal: %w", err)
	}
	sink, err := coremetrics.NewMetricsSink(cfg.Metrics.Sinks)
	if err != nil {
		_ = store.Close()
		return nil, fmt.Errorf("metrics sink: %w", err)
	}
	view := stockview.NewMemoryStore(catalog)
	return &Service{
		cfg:       cfg,
		catalog:   catalog,
		transport: t,
		journal:   store,
		sink:      coremetrics.NewMultiSink(sink, view),
		stock:     view,
		publisher: pub,
		bus:       eventbus.New(),
		log:       logger.New("service"),
	}, nil
}

// Journal exposes the round journal.
func (s *Service) Journal() journal.Store { return s.journal }

// Stock exposes the latest stock of every airport.
func (s *Service) Stock() stockview.Store { return s.stock }

// Routes lists the API handlers served next to /metrics.
func (s *Service) Routes() []metrics.Route {
	return []metrics.Route{
		{Pattern: "/api/journal", Handler: apijournal.NewHandler(s.journal, s.cfg.Metrics.APIToken)},
		{Pattern: "/api/stock", Handler: stock.NewStatusHandler(s.stock)},
	}
}

// Run opens a session when the transport needs one, plays the game and
// ends the session once the final hour was reached. An interrupted run
// leaves the session open so that it can be resumed.
func (s *Service) Run(ctx context.Context) (round.Result, error) {
	var sessionID string
	sess, hasSession := s.transport.(round.Session)
	if hasSession {
		id, err := sess.Start(ctx)
		if err != nil {
			return round.Result{}, fmt.Errorf("start session: %w", err)
		}
		sessionID = id
	}

	orch, err := round.New(s.catalog, s.transport, s.cfg.Policy, round.Config{
		Start:             s.cfg.Round.Start,
		End:               s.cfg.Round.End,
		PurchaseLeadHours: s.cfg.Round.PurchaseLeadHours,
		Session:           sessionID,
	}, logger.New("round"))
	if err != nil {
		return round.Result{}, err
	}
	orch.SetJournal(s.journal)
	orch.SetMetrics(s.sink)
	orch.SetBus(s.bus)

	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()
	waits := []<-chan struct{}{metrics.StartEventCollector(runCtx, s.bus, s.sink)}
	if s.publisher != nil {
		waits = append(waits, mqtt.StartRoundPublisher(runCtx, s.bus, s.publisher, logger.New("mqtt_publisher")))
	}
	if s.cfg.Metrics.Addr != "" {
		go func() {
			if err := metrics.StartPromServer(runCtx, s.cfg.Metrics.Addr, s.Routes()...); err != nil {
				s.log.Errorf("prom server: %v", err)
			}
		}()
	}

	res, runErr := orch.Run(runCtx)
	// Closing the bus lets subscribers drain what was already published.
	s.bus.Close()
	for _, w := range waits {
		<-w
	}
	if n := s.bus.Dropped(); n > 0 {
		s.log.Warnf("event bus dropped %d events", n)
	}
	if runErr != nil {
		return res, runErr
	}
	if hasSession {
		if err := sess.End(ctx); err != nil {
			return res, fmt.Errorf("end session: %w", err)
		}
	}
	return res, nil
}

// Close releases the journal, sinks and broker connection.
func (s *Service) Close() error {
	var errs []error
	errs = append(errs, s.journal.Close())
	coremetrics.Close(s.sink)
	if c, ok := s.publisher.(*mqtt.PahoClient); ok {
		c.Disconnect()
	}
	return errors.Join(errs...)
}

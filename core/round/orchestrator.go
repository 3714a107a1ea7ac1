package round

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/kilianp07/rotables/core/events"
	"github.com/kilianp07/rotables/core/inventory"
	"github.com/kilianp07/rotables/core/journal"
	"github.com/kilianp07/rotables/core/logger"
	"github.com/kilianp07/rotables/core/metrics"
	"github.com/kilianp07/rotables/core/model"
	"github.com/kilianp07/rotables/core/policy"
	"github.com/kilianp07/rotables/core/tracker"
	"github.com/kilianp07/rotables/internal/eventbus"
)

// DefaultEnd is the last hour of a standard game.
var DefaultEnd = model.Hour{Day: 29, Hour: 23}

// Config controls the hour cursor and purchase delivery.
type Config struct {
	// Start is the first hour requested.
	Start model.Hour
	// End terminates the loop once the service reports it. Zero means DefaultEnd.
	End model.Hour
	// PurchaseLeadHours delays purchased kits. Zero adds them to the hub
	// within the same hour.
	PurchaseLeadHours int
	// Session labels journal records.
	Session string
}

// Result summarises a finished or aborted run.
type Result struct {
	Hours         int
	Last          model.Hour
	TotalCost     float64
	Penalties     int
	PenaltyAmount float64
}

// Orchestrator owns the hour cursor and is the only caller of the
// inventory manager and the flight tracker. It is not safe for concurrent use.
type Orchestrator struct {
	catalog   *model.Catalog
	transport Transport
	inv       *inventory.Manager
	moves     *inventory.MovementScheduler
	flights   *tracker.Tracker
	alloc     *policy.Allocator
	batch     *policy.LPAllocator
	purchaser *policy.Purchaser
	strategy  string

	journal journal.Store
	sink    metrics.MetricsSink
	bus     eventbus.EventBus
	log     logger.Logger

	cfg      Config
	now      model.Hour
	state    State
	lastLoad map[uuid.UUID]model.Kits
	result   Result
}

// New builds an orchestrator for the given reference data. The policy
// configuration is validated; a nil catalog or transport is rejected.
func New(catalog *model.Catalog, transport Transport, pol policy.Config, cfg Config, log logger.Logger) (*Orchestrator, error) {
	if catalog == nil || transport == nil {
		return nil, ErrNilDependency
	}
	if err := pol.Validate(); err != nil {
		return nil, fmt.Errorf("policy %s: %w", pol.Preset, err)
	}
	if cfg.End == (model.Hour{}) {
		cfg.End = DefaultEnd
	}
	if cfg.PurchaseLeadHours < 0 {
		return nil, fmt.Errorf("purchase lead hours must be non-negative, got %d", cfg.PurchaseLeadHours)
	}
	inv := inventory.NewManager(catalog)
	o := &Orchestrator{
		catalog:   catalog,
		transport: transport,
		inv:       inv,
		moves:     inventory.NewMovementScheduler(inv),
		flights:   tracker.New(),
		alloc:     policy.NewAllocator(pol.Allocation),
		purchaser: policy.NewPurchaser(pol.Purchase),
		strategy:  pol.Preset,
		sink:      metrics.NopSink{},
		log:       logger.OrNop(log),
		cfg:       cfg,
		now:       cfg.Start,
		lastLoad:  make(map[uuid.UUID]model.Kits),
	}
	if pol.BatchLP {
		o.batch = policy.NewLPAllocator(o.alloc)
	}
	return o, nil
}

// SetJournal configures the store receiving one record per hour.
func (o *Orchestrator) SetJournal(s journal.Store) { o.journal = s }

// SetMetrics configures the metrics sink. Nil restores the no-op sink.
func (o *Orchestrator) SetMetrics(s metrics.MetricsSink) {
	if s == nil {
		s = metrics.NopSink{}
	}
	o.sink = s
}

// SetBus configures the event bus used for round notifications.
func (o *Orchestrator) SetBus(b eventbus.EventBus) { o.bus = b }

// Now returns the hour currently being played.
func (o *Orchestrator) Now() model.Hour { return o.now }

// State returns the current phase.
func (o *Orchestrator) State() State { return o.state }

// Inventory exposes the stock ledger for inspection.
func (o *Orchestrator) Inventory() *inventory.Manager { return o.inv }

// Tracker exposes the flight classification for inspection.
func (o *Orchestrator) Tracker() *tracker.Tracker { return o.flights }

// Run plays hours until the service reports the configured end hour or an
// error occurs. The journal is flushed on every return path.
func (o *Orchestrator) Run(ctx context.Context) (res Result, err error) {
	defer func() {
		if ferr := o.flush(); ferr != nil && err == nil {
			err = ferr
		}
		res = o.result
	}()
	o.log.Infof("starting at %s, ending at %s, policy %s", o.now, o.cfg.End, o.strategy)
	for {
		if err := ctx.Err(); err != nil {
			return o.result, err
		}
		done, err := o.Step(ctx)
		if err != nil {
			o.log.Errorf("round %s failed in %s: %v", o.now, o.state, err)
			return o.result, err
		}
		if done {
			o.log.Infof("finished at %s after %d hours, total cost %.2f", o.result.Last, o.result.Hours, o.result.TotalCost)
			return o.result, nil
		}
	}
}

func (o *Orchestrator) flush() error {
	if o.journal == nil {
		return nil
	}
	if err := o.journal.Flush(); err != nil {
		return fmt.Errorf("flush journal: %w", err)
	}
	return nil
}

// Step plays a single hour. It reports true once the end hour was reached.
func (o *Orchestrator) Step(ctx context.Context) (bool, error) {
	if o.state == Done {
		return true, nil
	}

	o.state = AwaitEvents
	released := o.inv.ReleaseMatured(o.now)
	delivered := o.moves.Apply(o.now)
	if !released.IsZero() || delivered > 0 {
		o.log.Debugw("stock returned", map[string]any{
			"hour": o.now.String(), "released": released.String(), "deliveries": delivered,
		})
	}

	o.state = ComputeDecisions
	loads := o.decideLoads()
	purchase := o.decidePurchase()
	req := model.HourRequest{
		Day:                 o.now.Day,
		Hour:                o.now.Hour,
		FlightLoads:         loads,
		KitPurchasingOrders: purchase,
	}

	o.state = RoundTrip
	resp, err := o.transport.PlayRound(ctx, req)
	if err != nil {
		return false, fmt.Errorf("play round %s: %w", o.now, err)
	}
	if resp.At() != o.now {
		return false, fmt.Errorf("%w: requested %s, got %s", ErrTimeMismatch, o.now, resp.At())
	}

	o.state = ApplyLandings
	landed := o.applyLandings(resp)

	o.state = ApplyPurchase
	o.applyPurchase(purchase)

	o.report(ctx, req, resp, landed)

	o.state = AdvanceHour
	if !resp.At().Before(o.cfg.End) {
		o.state = Done
		return true, nil
	}
	o.now = o.now.Next()
	return false, nil
}

// decideLoads allocates kits to every flight that became ready and removes
// them from the origin stock. Flights are decided in arrival order; the
// forecast of each one still counts the ready flights decided after it.
// Sequential decisions also add the kits already sent to a destination this
// hour to its stock before checking headroom. A batch solved by the LP
// allocator sees every destination as it was at the start of the hour.
func (o *Orchestrator) decideLoads() []model.FlightLoad {
	ready := o.flights.ReadyToLoad()
	loads := make([]model.FlightLoad, 0, len(ready))
	if o.batch == nil {
		inbound := make(map[string]model.Kits)
		for i, ev := range ready {
			in := o.loadInput(ev, ready[i+1:])
			in.DestinationStock = in.DestinationStock.Add(inbound[ev.Destination])
			l := o.load(ev, o.alloc.DecideLoad(in))
			inbound[ev.Destination] = inbound[ev.Destination].Add(l.LoadedKits)
			loads = append(loads, l)
		}
		return loads
	}

	var origins []string
	byOrigin := make(map[string][]model.FlightEvent)
	for _, ev := range ready {
		if _, ok := byOrigin[ev.Origin]; !ok {
			origins = append(origins, ev.Origin)
		}
		byOrigin[ev.Origin] = append(byOrigin[ev.Origin], ev)
	}
	for _, origin := range origins {
		group := byOrigin[origin]
		inputs := make([]policy.LoadInput, len(group))
		for i, ev := range group {
			inputs[i] = o.loadInput(ev, group[i+1:])
		}
		for i, dec := range o.decideBatch(origin, inputs) {
			loads = append(loads, o.load(group[i], dec))
		}
	}
	return loads
}

func (o *Orchestrator) decideBatch(origin string, inputs []policy.LoadInput) []model.Kits {
	if len(inputs) < 2 {
		return o.batch.DecideSequential(inputs)
	}
	o.publish(events.StrategyEvent{At: o.now, Origin: origin, Action: "lp_attempt"})
	out, err := o.batch.DecideBatchStrict(inputs)
	if err == nil {
		return out
	}
	o.log.Warnf("lp allocation at %s failed: %v", origin, err)
	o.publish(events.StrategyEvent{At: o.now, Origin: origin, Action: "lp_failure", Err: err})
	o.publish(events.StrategyEvent{At: o.now, Origin: origin, Action: "sequential_fallback"})
	return o.batch.DecideSequential(inputs)
}

// loadInput gathers the reference data for a flight. Missing aircraft or
// destination data leaves the matching limit at zero. undecided lists ready
// flights still waiting for their load; the tracker already counts them as
// consumed, so their demand is added to the forecast here.
func (o *Orchestrator) loadInput(ev model.FlightEvent, undecided []model.FlightEvent) policy.LoadInput {
	forecast := o.flights.Forecast(ev.Origin)
	for _, other := range undecided {
		if other.Origin == ev.Origin && other.FlightID != ev.FlightID {
			forecast = forecast.Add(other.Passengers)
		}
	}
	in := policy.LoadInput{
		Flight:      ev,
		OriginIsHub: o.catalog.IsHub(ev.Origin),
		OriginStock: o.inv.Stock(ev.Origin),
		Forecast:    forecast,
	}
	if ac, ok := o.catalog.Aircraft(ev.AircraftType); ok {
		in.AircraftCapacity = ac.KitCapacity
		in.AircraftKnown = true
	} else {
		o.log.Warnf("flight %s: unknown aircraft type %q, loading nothing", ev.FlightNumber, ev.AircraftType)
	}
	if dst, ok := o.catalog.Airport(ev.Destination); ok {
		in.DestinationCapacity = dst.Capacity
		in.DestinationStock = o.inv.Stock(dst.Code)
		in.DestinationKnown = true
	} else {
		o.log.Warnf("flight %s: unknown destination %q, loading nothing", ev.FlightNumber, ev.Destination)
	}
	return in
}

func (o *Orchestrator) load(ev model.FlightEvent, dec model.Kits) model.FlightLoad {
	removed := o.inv.Remove(ev.Origin, dec)
	if removed != dec {
		o.log.Debugw("load clamped", map[string]any{
			"flight": ev.FlightNumber, "origin": ev.Origin,
			"requested": dec.String(), "removed": removed.String(),
		})
	}
	o.lastLoad[ev.FlightID] = removed
	o.publish(events.LoadEvent{
		At:           o.now,
		FlightID:     ev.FlightID,
		FlightNumber: ev.FlightNumber,
		Origin:       ev.Origin,
		Destination:  ev.Destination,
		Requested:    dec,
		Loaded:       removed,
	})
	return model.FlightLoad{FlightID: ev.FlightID, LoadedKits: removed}
}

func (o *Orchestrator) decidePurchase() model.Kits {
	hub := o.catalog.Hub
	if hub == "" {
		return model.Kits{}
	}
	ap, ok := o.catalog.Airport(hub)
	// Orders still in transit count as stock so they are not repeated and
	// deliveries stay within capacity.
	stock := o.inv.Stock(hub).Add(o.moves.Pending(hub))
	return o.purchaser.DecidePurchase(stock, ap.Capacity, ok)
}

// applyLandings ingests the response events and queues the kits of every
// landed flight for reconditioning at its destination.
func (o *Orchestrator) applyLandings(resp model.HourResponse) int {
	o.flights.Ingest(resp.FlightUpdates)
	at := resp.At()
	landed := o.flights.LandedNow()
	for _, ev := range landed {
		k, ok := o.lastLoad[ev.FlightID]
		if !ok {
			continue
		}
		for _, c := range model.Classes {
			o.inv.EnqueueProcessing(ev.Destination, c, k.Get(c), at)
		}
		delete(o.lastLoad, ev.FlightID)
	}
	return len(landed)
}

func (o *Orchestrator) applyPurchase(p model.Kits) {
	if p.IsZero() {
		return
	}
	if o.cfg.PurchaseLeadHours > 0 {
		o.moves.ScheduleKits(o.now.Add(o.cfg.PurchaseLeadHours), o.catalog.Hub, p)
		return
	}
	o.inv.Add(o.catalog.Hub, p)
}

// report updates the run result and feeds the journal, metrics and bus.
// Failures of these collaborators are logged and never end the run.
func (o *Orchestrator) report(ctx context.Context, req model.HourRequest, resp model.HourResponse, landed int) {
	var loaded model.Kits
	for _, l := range req.FlightLoads {
		loaded = loaded.Add(l.LoadedKits)
	}
	var amount float64
	for _, p := range resp.Penalties {
		amount += p.Amount
	}
	o.result.Hours++
	o.result.Last = resp.At()
	o.result.TotalCost = resp.TotalCost
	o.result.Penalties += len(resp.Penalties)
	o.result.PenaltyAmount += amount

	if o.journal != nil {
		rec := journal.NewRecord(o.cfg.Session, req, resp)
		rec.Strategy = o.strategy
		rec.HubStock = o.inv.Stock(o.catalog.Hub)
		if err := o.journal.Append(ctx, rec); err != nil {
			o.log.Errorf("journal append %s: %v", o.now, err)
		}
	}

	if err := o.sink.RecordRound(metrics.RoundRecord{
		At:            resp.At(),
		Flights:       len(req.FlightLoads),
		Loaded:        loaded,
		Purchased:     req.KitPurchasingOrders,
		Landed:        landed,
		Penalties:     len(resp.Penalties),
		PenaltyAmount: amount,
		TotalCost:     resp.TotalCost,
	}); err != nil {
		o.log.Errorf("metrics error: %v", err)
	}
	if sr, ok := o.sink.(metrics.StockRecorder); ok {
		if err := sr.RecordStock(resp.At(), o.inv.Snapshot()); err != nil {
			o.log.Errorf("stock metrics error: %v", err)
		}
	}

	for _, p := range resp.Penalties {
		o.publish(events.PenaltyEvent{At: resp.At(), Penalty: p})
	}
	o.publish(events.RoundEvent{
		At:        resp.At(),
		Flights:   len(req.FlightLoads),
		Loaded:    loaded,
		Purchased: req.KitPurchasingOrders,
		Landed:    landed,
		Penalties: len(resp.Penalties),
		TotalCost: resp.TotalCost,
	})
	if len(resp.Penalties) > 0 {
		o.log.Warnf("hour %s: %d penalties totalling %.2f", resp.At(), len(resp.Penalties), amount)
	}
}

func (o *Orchestrator) publish(ev eventbus.Event) {
	if o.bus != nil {
		o.bus.Publish(ev)
	}
}

package round

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"

	"github.com/kilianp07/rotables/core/events"
	"github.com/kilianp07/rotables/core/journal"
	"github.com/kilianp07/rotables/core/logger"
	"github.com/kilianp07/rotables/core/metrics"
	"github.com/kilianp07/rotables/core/model"
	"github.com/kilianp07/rotables/core/policy"
	"github.com/kilianp07/rotables/internal/eventbus"
)

// fakeTransport answers every request for the same hour unless shift is
// set, returning the scripted events for that hour index.
type fakeTransport struct {
	events    map[int][]model.FlightEvent
	penalties map[int][]model.Penalty
	shift     int
	failAt    int
	err       error
	reqs      []model.HourRequest
}

func (f *fakeTransport) PlayRound(_ context.Context, req model.HourRequest) (model.HourResponse, error) {
	f.reqs = append(f.reqs, req)
	idx := req.At().Index()
	if f.err != nil && idx == f.failAt {
		return model.HourResponse{}, f.err
	}
	at := req.At().Add(f.shift)
	return model.HourResponse{
		Day:           at.Day,
		Hour:          at.Hour,
		FlightUpdates: f.events[idx],
		Penalties:     f.penalties[idx],
		TotalCost:     float64(10 * (idx + 1)),
	}, nil
}

func testCatalog() *model.Catalog {
	big := model.Kits{First: 100_000, Business: 100_000, PremiumEconomy: 100_000, Economy: 100_000}
	return model.NewCatalog("HUB1",
		[]model.Airport{
			{Code: "HUB1", Capacity: big, InitialStock: model.Kits{First: 500, Economy: 100}},
			{Code: "DST", Capacity: big, InitialStock: model.Kits{First: 7}, ProcessingTime: model.Kits{First: 2}},
		},
		[]model.AircraftType{{TypeCode: "A320", KitCapacity: model.Kits{First: 40, Business: 40, PremiumEconomy: 40, Economy: 200}}},
	)
}

func flight(stage model.Stage, id uuid.UUID, first int) model.FlightEvent {
	return model.FlightEvent{
		Type:         stage,
		FlightNumber: "RT" + id.String()[:4],
		FlightID:     id,
		Origin:       "HUB1",
		Destination:  "DST",
		Passengers:   model.Kits{First: first},
		AircraftType: "A320",
	}
}

func newOrchestrator(t *testing.T, tr Transport, preset string, cfg Config) *Orchestrator {
	t.Helper()
	pol, err := policy.Preset(preset)
	if err != nil {
		t.Fatalf("preset: %v", err)
	}
	o, err := New(testCatalog(), tr, pol, cfg, logger.Nop{})
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	return o
}

func TestRunLoadsLandsAndReleases(t *testing.T) {
	id := uuid.New()
	tr := &fakeTransport{events: map[int][]model.FlightEvent{
		0: {flight(model.StageCheckedIn, id, 50)},
		1: {flight(model.StageLanded, id, 50)},
	}}
	o := newOrchestrator(t, tr, "simple", Config{End: model.Hour{Hour: 3}})
	store := journal.NewMemoryStore()
	o.SetJournal(store)

	res, err := o.Run(context.Background())
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if len(tr.reqs) != 4 || res.Hours != 4 {
		t.Fatalf("expected 4 rounds got %d/%d", len(tr.reqs), res.Hours)
	}
	if len(tr.reqs[0].FlightLoads) != 0 {
		t.Fatalf("first hour should carry no loads")
	}
	if tr.reqs[0].FlightLoads == nil {
		t.Fatalf("flight loads must encode as an empty list")
	}
	loads := tr.reqs[1].FlightLoads
	if len(loads) != 1 || loads[0].FlightID != id || loads[0].LoadedKits.First != 40 {
		t.Fatalf("unexpected loads %+v", loads)
	}
	if got := o.Inventory().Stock("HUB1").First; got != 460 {
		t.Fatalf("expected hub fc 460 got %d", got)
	}
	// landed at 0:01 with processing 2 -> back in stock at 0:03
	if got := o.Inventory().Stock("DST").First; got != 47 {
		t.Fatalf("expected destination fc 47 got %d", got)
	}
	if store.Len() != 4 || store.Flushes() != 1 {
		t.Fatalf("journal len %d flushes %d", store.Len(), store.Flushes())
	}
	if o.State() != Done || res.Last != (model.Hour{Hour: 3}) || res.TotalCost != 40 {
		t.Fatalf("unexpected end state %s %+v", o.State(), res)
	}
}

func TestProcessingNotReleasedEarly(t *testing.T) {
	id := uuid.New()
	tr := &fakeTransport{events: map[int][]model.FlightEvent{
		0: {flight(model.StageCheckedIn, id, 10)},
		1: {flight(model.StageLanded, id, 10)},
	}}
	o := newOrchestrator(t, tr, "simple", Config{End: model.Hour{Hour: 2}})
	if _, err := o.Run(context.Background()); err != nil {
		t.Fatalf("run: %v", err)
	}
	if got := o.Inventory().Stock("DST").First; got != 7 {
		t.Fatalf("kits must still be processing, got %d", got)
	}
	if n := len(o.Inventory().Pending()); n != 1 {
		t.Fatalf("expected 1 pending item got %d", n)
	}
}

func TestTimeMismatchStopsRun(t *testing.T) {
	tr := &fakeTransport{shift: 1}
	o := newOrchestrator(t, tr, "simple", Config{})
	store := journal.NewMemoryStore()
	o.SetJournal(store)

	_, err := o.Run(context.Background())
	if !errors.Is(err, ErrTimeMismatch) {
		t.Fatalf("expected ErrTimeMismatch got %v", err)
	}
	if len(tr.reqs) != 1 {
		t.Fatalf("expected a single round trip got %d", len(tr.reqs))
	}
	if store.Flushes() != 1 {
		t.Fatalf("journal must be flushed on error")
	}
}

func TestTransportErrorIsFatal(t *testing.T) {
	boom := errors.New("503")
	tr := &fakeTransport{err: boom, failAt: 2}
	o := newOrchestrator(t, tr, "simple", Config{})
	res, err := o.Run(context.Background())
	if !errors.Is(err, boom) {
		t.Fatalf("expected transport error got %v", err)
	}
	if res.Hours != 2 {
		t.Fatalf("expected 2 completed hours got %d", res.Hours)
	}
	if o.State() != RoundTrip {
		t.Fatalf("expected failure in round trip got %s", o.State())
	}
}

func TestCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	tr := &fakeTransport{}
	o := newOrchestrator(t, tr, "simple", Config{})
	if _, err := o.Run(ctx); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled got %v", err)
	}
	if len(tr.reqs) != 0 {
		t.Fatalf("no request expected")
	}
}

func TestPurchaseAppliedImmediately(t *testing.T) {
	tr := &fakeTransport{}
	o := newOrchestrator(t, tr, "hub_only", Config{End: model.Hour{Hour: 0}})
	if _, err := o.Step(context.Background()); err != nil {
		t.Fatalf("step: %v", err)
	}
	if got := tr.reqs[0].KitPurchasingOrders.Economy; got != 1_800 {
		t.Fatalf("expected purchase 1800 got %d", got)
	}
	if got := o.Inventory().Stock("HUB1").Economy; got != 1_900 {
		t.Fatalf("expected hub ec 1900 got %d", got)
	}
}

func TestPurchaseWithLeadTime(t *testing.T) {
	tr := &fakeTransport{}
	o := newOrchestrator(t, tr, "hub_only", Config{End: model.Hour{Hour: 2}, PurchaseLeadHours: 2})
	if _, err := o.Run(context.Background()); err != nil {
		t.Fatalf("run: %v", err)
	}
	if got := o.Inventory().Stock("HUB1").Economy; got != 1_900 {
		t.Fatalf("expected only the first delivery, got %d", got)
	}
}

func TestPurchaseCountsDeliveriesInTransit(t *testing.T) {
	pol, err := policy.Preset("hub_only")
	if err != nil {
		t.Fatal(err)
	}
	catalog := model.NewCatalog("HUB1",
		[]model.Airport{{Code: "HUB1", Capacity: model.Kits{Economy: 30_000}, InitialStock: model.Kits{Economy: 11_000}}},
		nil,
	)
	tr := &fakeTransport{}
	o, err := New(catalog, tr, pol, Config{End: model.Hour{Hour: 23}, PurchaseLeadHours: 12}, nil)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := o.Run(context.Background()); err != nil {
		t.Fatalf("run: %v", err)
	}
	ordered := 0
	for _, r := range tr.reqs {
		ordered += r.KitPurchasingOrders.Economy
	}
	// 1800 then 900 per hour until stock plus orders reach 20000
	if ordered != 9_000 {
		t.Fatalf("expected 9000 ordered got %d", ordered)
	}
	if got := o.Inventory().Stock("HUB1").Economy; got != 20_000 {
		t.Fatalf("expected hub ec 20000 got %d", got)
	}
}

func TestLandingWithoutLoadRecord(t *testing.T) {
	tr := &fakeTransport{events: map[int][]model.FlightEvent{
		0: {flight(model.StageLanded, uuid.New(), 30)},
	}}
	o := newOrchestrator(t, tr, "simple", Config{End: model.Hour{Hour: 1}})
	if _, err := o.Run(context.Background()); err != nil {
		t.Fatalf("run: %v", err)
	}
	if n := len(o.Inventory().Pending()); n != 0 {
		t.Fatalf("expected nothing enqueued got %d", n)
	}
}

func TestUnknownAircraftLoadsNothing(t *testing.T) {
	id := uuid.New()
	ev := flight(model.StageCheckedIn, id, 20)
	ev.AircraftType = "B999"
	tr := &fakeTransport{events: map[int][]model.FlightEvent{0: {ev}}}
	o := newOrchestrator(t, tr, "simple", Config{End: model.Hour{Hour: 1}})
	if _, err := o.Run(context.Background()); err != nil {
		t.Fatalf("run: %v", err)
	}
	loads := tr.reqs[1].FlightLoads
	if len(loads) != 1 || !loads[0].LoadedKits.IsZero() {
		t.Fatalf("expected a zero load for the flight, got %+v", loads)
	}
	if got := o.Inventory().Stock("HUB1").First; got != 500 {
		t.Fatalf("hub stock should be untouched, got %d", got)
	}
}

func TestFlightLoadedOnlyOnce(t *testing.T) {
	id := uuid.New()
	tr := &fakeTransport{events: map[int][]model.FlightEvent{
		0: {flight(model.StageCheckedIn, id, 10)},
	}}
	o := newOrchestrator(t, tr, "simple", Config{End: model.Hour{Hour: 3}})
	if _, err := o.Run(context.Background()); err != nil {
		t.Fatalf("run: %v", err)
	}
	total := 0
	for _, r := range tr.reqs {
		total += len(r.FlightLoads)
	}
	if total != 1 {
		t.Fatalf("expected exactly one load, got %d", total)
	}
}

func TestBatchAllocationSharesPool(t *testing.T) {
	pol, err := policy.Preset("simple")
	if err != nil {
		t.Fatal(err)
	}
	pol.BatchLP = true
	catalog := model.NewCatalog("HUB1",
		[]model.Airport{
			{Code: "HUB1", Capacity: model.Kits{First: 1_000}, InitialStock: model.Kits{First: 50}},
			{Code: "DST", Capacity: model.Kits{First: 1_000}},
		},
		[]model.AircraftType{{TypeCode: "A320", KitCapacity: model.Kits{First: 100}}},
	)
	tr := &fakeTransport{events: map[int][]model.FlightEvent{
		0: {flight(model.StageCheckedIn, uuid.New(), 40), flight(model.StageCheckedIn, uuid.New(), 30)},
	}}
	o, err := New(catalog, tr, pol, Config{End: model.Hour{Hour: 1}}, nil)
	if err != nil {
		t.Fatal(err)
	}
	bus := eventbus.New()
	sub := bus.Subscribe()
	o.SetBus(bus)

	if _, err := o.Run(context.Background()); err != nil {
		t.Fatalf("run: %v", err)
	}
	loads := tr.reqs[1].FlightLoads
	if len(loads) != 2 {
		t.Fatalf("expected 2 loads got %d", len(loads))
	}
	if sum := loads[0].LoadedKits.First + loads[1].LoadedKits.First; sum != 50 {
		t.Fatalf("expected the pool of 50 to be shared, got %d", sum)
	}
	if got := o.Inventory().Stock("HUB1").First; got != 0 {
		t.Fatalf("expected empty hub got %d", got)
	}
	bus.Close()
	var attempts, rounds int
	for ev := range sub {
		switch ev.(type) {
		case events.StrategyEvent:
			attempts++
		case events.RoundEvent:
			rounds++
		}
	}
	if attempts != 1 || rounds != 2 {
		t.Fatalf("expected 1 lp attempt and 2 rounds, got %d/%d", attempts, rounds)
	}
}

func TestForecastCountsUndecidedSiblings(t *testing.T) {
	pol, err := policy.Preset("forecast")
	if err != nil {
		t.Fatal(err)
	}
	catalog := model.NewCatalog("HUB1",
		[]model.Airport{
			{Code: "HUB1", Capacity: model.Kits{First: 1_000}, InitialStock: model.Kits{First: 50}},
			{Code: "DST", Capacity: model.Kits{First: 10_000}},
		},
		[]model.AircraftType{{TypeCode: "A320", KitCapacity: model.Kits{First: 100}}},
	)
	a, b := uuid.New(), uuid.New()
	tr := &fakeTransport{events: map[int][]model.FlightEvent{
		0: {flight(model.StageCheckedIn, a, 40), flight(model.StageCheckedIn, b, 40)},
	}}
	o, err := New(catalog, tr, pol, Config{End: model.Hour{Hour: 1}}, nil)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := o.Run(context.Background()); err != nil {
		t.Fatalf("run: %v", err)
	}
	loads := tr.reqs[1].FlightLoads
	if len(loads) != 2 {
		t.Fatalf("expected 2 loads got %d", len(loads))
	}
	// the first flight keeps half of the second one's demand in reserve
	if loads[0].FlightID != a || loads[0].LoadedKits.First != 30 {
		t.Fatalf("expected first flight to load 30, got %+v", loads[0])
	}
	if loads[1].FlightID != b || loads[1].LoadedKits.First != 20 {
		t.Fatalf("expected second flight to load 20, got %+v", loads[1])
	}
}

func TestSequentialLoadsShareDestinationHeadroom(t *testing.T) {
	pol, err := policy.Preset("simple")
	if err != nil {
		t.Fatal(err)
	}
	catalog := model.NewCatalog("HUB1",
		[]model.Airport{
			{Code: "HUB1", Capacity: model.Kits{First: 1_000}, InitialStock: model.Kits{First: 500}},
			{Code: "DST", Capacity: model.Kits{First: 60}},
		},
		[]model.AircraftType{{TypeCode: "A320", KitCapacity: model.Kits{First: 100}}},
	)
	tr := &fakeTransport{events: map[int][]model.FlightEvent{
		0: {flight(model.StageCheckedIn, uuid.New(), 40), flight(model.StageCheckedIn, uuid.New(), 40)},
	}}
	o, err := New(catalog, tr, pol, Config{End: model.Hour{Hour: 1}}, nil)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := o.Run(context.Background()); err != nil {
		t.Fatalf("run: %v", err)
	}
	loads := tr.reqs[1].FlightLoads
	if len(loads) != 2 || loads[0].LoadedKits.First != 40 || loads[1].LoadedKits.First != 20 {
		t.Fatalf("expected 40/20 within destination capacity, got %+v", loads)
	}
}

type countingSink struct {
	rounds int
	stocks int
	last   metrics.RoundRecord
}

func (c *countingSink) RecordRound(r metrics.RoundRecord) error {
	c.rounds++
	c.last = r
	return nil
}

func (c *countingSink) RecordStock(model.Hour, map[string]model.Kits) error {
	c.stocks++
	return nil
}

func TestMetricsAndPenalties(t *testing.T) {
	tr := &fakeTransport{penalties: map[int][]model.Penalty{
		1: {{Code: "INVENTORY_EXCEEDS_CAPACITY", Amount: 12.5}, {Code: "UNFULFILLED_PASSENGERS", Amount: 2.5}},
	}}
	o := newOrchestrator(t, tr, "simple", Config{End: model.Hour{Hour: 1}})
	sink := &countingSink{}
	o.SetMetrics(sink)
	res, err := o.Run(context.Background())
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if sink.rounds != 2 || sink.stocks != 2 {
		t.Fatalf("expected 2 round and stock records got %d/%d", sink.rounds, sink.stocks)
	}
	if sink.last.Penalties != 2 || sink.last.PenaltyAmount != 15 {
		t.Fatalf("unexpected last record %+v", sink.last)
	}
	if res.Penalties != 2 || res.PenaltyAmount != 15 {
		t.Fatalf("unexpected result %+v", res)
	}
}

func TestNewRejectsNilDependencies(t *testing.T) {
	pol, _ := policy.Preset("")
	if _, err := New(nil, &fakeTransport{}, pol, Config{}, nil); !errors.Is(err, ErrNilDependency) {
		t.Fatalf("expected ErrNilDependency got %v", err)
	}
	if _, err := New(testCatalog(), nil, pol, Config{}, nil); !errors.Is(err, ErrNilDependency) {
		t.Fatalf("expected ErrNilDependency got %v", err)
	}
	pol.Allocation.HeadroomRatio = 2
	if _, err := New(testCatalog(), &fakeTransport{}, pol, Config{}, nil); err == nil {
		t.Fatal("expected policy validation error")
	}
}

func TestDefaultEnd(t *testing.T) {
	o := newOrchestrator(t, &fakeTransport{}, "simple", Config{})
	if o.cfg.End != DefaultEnd {
		t.Fatalf("expected default end %s got %s", DefaultEnd, o.cfg.End)
	}
}

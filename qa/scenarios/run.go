package scenarios

import (
	"context"
	"testing"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/kilianp07/rotables/core/model"
	"github.com/kilianp07/rotables/core/policy"
	"github.com/kilianp07/rotables/core/round"
	"github.com/kilianp07/rotables/infra/logger"
	"github.com/kilianp07/rotables/infra/metrics"
	"github.com/kilianp07/rotables/infra/mqtt"
	"github.com/kilianp07/rotables/internal/eventbus"
)

// scriptedTransport answers every hour with the events scripted for it and
// records the requests it received.
type scriptedTransport struct {
	script   map[int][]model.FlightEvent
	requests []model.HourRequest
}

func (s *scriptedTransport) PlayRound(_ context.Context, req model.HourRequest) (model.HourResponse, error) {
	s.requests = append(s.requests, req)
	return model.HourResponse{Day: req.Day, Hour: req.Hour, FlightUpdates: s.script[req.At().Index()]}, nil
}

func RunScenario(t *testing.T, sc *Scenario) {
	t.Helper()
	pol, err := policy.Preset(sc.Preset)
	if err != nil {
		t.Fatalf("preset: %v", err)
	}
	pol.BatchLP = sc.BatchLP
	if sc.SafetyMargin != nil {
		pol.Allocation.SafetyMargin = sc.SafetyMargin.ToModel()
	}
	end, err := model.ParseHour(sc.End)
	if err != nil {
		t.Fatalf("end: %v", err)
	}
	script, err := sc.Script()
	if err != nil {
		t.Fatalf("script: %v", err)
	}

	reg := prometheus.NewRegistry()
	sink, err := metrics.NewPromSinkWithRegistry(reg)
	if err != nil {
		t.Fatalf("prom sink: %v", err)
	}
	pub := mqtt.NewMockPublisher()
	bus := eventbus.New()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	collected := metrics.StartEventCollector(ctx, bus, sink)
	published := mqtt.StartRoundPublisher(ctx, bus, pub, logger.NopLogger{})

	tr := &scriptedTransport{script: script}
	orch, err := round.New(sc.Catalog(), tr, pol, round.Config{End: end, PurchaseLeadHours: sc.LeadHours, Session: sc.Name}, logger.NopLogger{})
	if err != nil {
		t.Fatalf("orchestrator: %v", err)
	}
	orch.SetMetrics(sink)
	orch.SetBus(bus)
	res, err := orch.Run(ctx)
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	bus.Close()
	<-collected
	<-published

	hours := end.Index() + 1
	if res.Hours != hours {
		t.Errorf("scenario %s expected %d hours, got %d", sc.Name, hours, res.Hours)
	}
	if rounds, _ := pub.Counts(); rounds != hours {
		t.Errorf("scenario %s expected %d published rounds, got %d", sc.Name, hours, rounds)
	}
	if got := counterValue(t, reg, "rotables_rounds_total"); got != float64(hours) {
		t.Errorf("scenario %s expected rounds_total %d, got %v", sc.Name, hours, got)
	}
	checkExpected(t, sc, tr.requests, orch)
}

func checkExpected(t *testing.T, sc *Scenario, reqs []model.HourRequest, orch *round.Orchestrator) {
	t.Helper()
	ids := make(map[string]string, len(sc.Flights))
	for _, f := range sc.Flights {
		ids[f.ID().String()] = f.Number
	}
	loads := make(map[string]model.Kits)
	var total, purchased model.Kits
	for _, r := range reqs {
		for _, l := range r.FlightLoads {
			n := ids[l.FlightID.String()]
			loads[n] = loads[n].Add(l.LoadedKits)
			total = total.Add(l.LoadedKits)
		}
		purchased = purchased.Add(r.KitPurchasingOrders)
	}
	for number, want := range sc.Expected.Loads {
		if got := loads[number]; got != want.ToModel() {
			t.Errorf("scenario %s flight %s expected load %v, got %v", sc.Name, number, want.ToModel(), got)
		}
	}
	if w := sc.Expected.LoadedTotal; w != nil && total != w.ToModel() {
		t.Errorf("scenario %s expected loaded total %v, got %v", sc.Name, w.ToModel(), total)
	}
	if w := sc.Expected.Purchased; w != nil && purchased != w.ToModel() {
		t.Errorf("scenario %s expected purchases %v, got %v", sc.Name, w.ToModel(), purchased)
	}
	for code, want := range sc.Expected.Stock {
		if got := orch.Inventory().Stock(code); got != want.ToModel() {
			t.Errorf("scenario %s airport %s expected stock %v, got %v", sc.Name, code, want.ToModel(), got)
		}
	}
}

func counterValue(t *testing.T, g prometheus.Gatherer, name string) float64 {
	t.Helper()
	mfs, err := g.Gather()
	if err != nil {
		t.Fatalf("gather: %v", err)
	}
	for _, mf := range mfs {
		if mf.GetName() != name {
			continue
		}
		var sum float64
		for _, m := range mf.GetMetric() {
			sum += m.GetCounter().GetValue()
		}
		return sum
	}
	return 0
}

package model

import (
	"encoding/json"
	"testing"

	"github.com/google/uuid"
)

func TestHourRollover(t *testing.T) {
	h := Hour{Day: 2, Hour: 23}
	n := h.Next()
	if n.Day != 3 || n.Hour != 0 {
		t.Fatalf("expected 3:00 got %v", n)
	}
	if got := (Hour{Day: 2, Hour: 20}).Add(6); got != (Hour{Day: 3, Hour: 2}) {
		t.Fatalf("expected 3:02 got %v", got)
	}
	if !(Hour{Day: 3, Hour: 1}).Before(Hour{Day: 3, Hour: 2}) {
		t.Fatalf("3:01 should be before 3:02")
	}
	if (Hour{Day: 3, Hour: 2}).Before(Hour{Day: 2, Hour: 23}) {
		t.Fatalf("day must dominate hour")
	}
}

func TestKitsAccessors(t *testing.T) {
	var k Kits
	for i, c := range Classes {
		k.Set(c, i+1)
	}
	if k.Total() != 10 {
		t.Fatalf("expected total 10 got %d", k.Total())
	}
	if k.Get(Economy) != 4 || k.Get(First) != 1 {
		t.Fatalf("bad accessors %v", k)
	}
	d := k.Sub(Kits{First: 1, Economy: 10})
	if d.First != 0 || d.Economy != -6 {
		t.Fatalf("bad sub %v", d)
	}
	m := k.Min(Kits{First: 5, Business: 0, PremiumEconomy: 3, Economy: 2})
	if m != (Kits{First: 1, Business: 0, PremiumEconomy: 3, Economy: 2}) {
		t.Fatalf("bad min %v", m)
	}
}

func TestParseClass(t *testing.T) {
	c, err := ParseClass("pe")
	if err != nil || c != PremiumEconomy {
		t.Fatalf("parse pe: %v %v", c, err)
	}
	if _, err := ParseClass("cargo"); err == nil {
		t.Fatalf("expected error")
	}
}

func TestHourResponseDecode(t *testing.T) {
	id := uuid.New()
	body := `{"day":1,"hour":4,"flightUpdates":[{"eventType":"CHECKED_IN","flightNumber":"AB1","flightId":"` + id.String() +
		`","originAirport":"HUB1","destinationAirport":"OUT1","departure":{"day":1,"hour":5},"arrival":{"day":1,"hour":9},` +
		`"passengers":{"first":1,"business":2,"premiumEconomy":3,"economy":4},"aircraftType":"A320"}],` +
		`"penalties":[{"code":"UNFULFILLED","issuedDay":1,"issuedHour":4,"penalty":12.5,"reason":"x"}],"totalCost":99.5}`
	var resp HourResponse
	if err := json.Unmarshal([]byte(body), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(resp.FlightUpdates) != 1 {
		t.Fatalf("expected one update")
	}
	ev := resp.FlightUpdates[0]
	if ev.Type != StageCheckedIn || ev.FlightID != id || ev.Passengers.Economy != 4 {
		t.Fatalf("bad event %#v", ev)
	}
	if resp.Penalties[0].FlightID != nil || resp.Penalties[0].Amount != 12.5 {
		t.Fatalf("bad penalty %#v", resp.Penalties[0])
	}
	if resp.At() != (Hour{Day: 1, Hour: 4}) {
		t.Fatalf("bad hour %v", resp.At())
	}
}

func TestHourRequestEncode(t *testing.T) {
	req := HourRequest{Day: 0, Hour: 3, KitPurchasingOrders: Kits{Economy: 900}}
	b, err := json.Marshal(req)
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	var raw map[string]any
	if err := json.Unmarshal(b, &raw); err != nil {
		t.Fatalf("decode: %v", err)
	}
	orders := raw["kitPurchasingOrders"].(map[string]any)
	if orders["economy"].(float64) != 900 || orders["premiumEconomy"].(float64) != 0 {
		t.Fatalf("bad orders %v", orders)
	}
}

func TestStageUnknown(t *testing.T) {
	var s Stage
	if err := json.Unmarshal([]byte(`"BOARDED"`), &s); err == nil {
		t.Fatalf("expected error")
	}
}

func TestCatalogLookups(t *testing.T) {
	c := NewCatalog("HUB1", []Airport{{Code: "HUB1"}, {Code: "OUT1"}}, []AircraftType{{TypeCode: "A320"}})
	if _, ok := c.Airport("OUT1"); !ok {
		t.Fatalf("missing airport")
	}
	if _, ok := c.Aircraft("B777"); ok {
		t.Fatalf("unexpected aircraft")
	}
	if !c.IsHub("HUB1") || c.IsHub("OUT1") {
		t.Fatalf("hub detection broken")
	}
	if len(c.Airports()) != 2 {
		t.Fatalf("expected two airports")
	}
}

func TestParseHour(t *testing.T) {
	h, err := ParseHour("3:07")
	if err != nil || h != (Hour{Day: 3, Hour: 7}) {
		t.Fatalf("unexpected %v %v", h, err)
	}
	if got, _ := ParseHour(h.String()); got != h {
		t.Fatalf("String does not parse back: %v", got)
	}
	for _, bad := range []string{"", "3", "x:1", "1:y", "1:24", "-1:0"} {
		if _, err := ParseHour(bad); err == nil {
			t.Errorf("expected error for %q", bad)
		}
	}
}

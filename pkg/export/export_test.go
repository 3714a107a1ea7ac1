package export

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"strings"
	"testing"

	"github.com/google/uuid"

	"github.com/kilianp07/rotables/core/journal"
	"github.com/kilianp07/rotables/core/model"
)

func sampleRecords() []journal.Record {
	return []journal.Record{{
		Session:  "s1",
		Strategy: "forecast",
		Request: model.HourRequest{
			Day:  1,
			Hour: 4,
			FlightLoads: []model.FlightLoad{
				{FlightID: uuid.New(), LoadedKits: model.Kits{First: 2, Economy: 10}},
				{FlightID: uuid.New(), LoadedKits: model.Kits{Economy: 5}},
			},
			KitPurchasingOrders: model.Kits{Economy: 900},
		},
		Response: model.HourResponse{
			Day:           1,
			Hour:          4,
			FlightUpdates: []model.FlightEvent{{Type: model.StageLanded}, {Type: model.StageScheduled}},
			Penalties:     []model.Penalty{{Code: "A", Amount: 1.5}, {Code: "B", Amount: 2}},
			TotalCost:     120.25,
		},
	}}
}

func TestWriteCSV(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteCSV(&buf, sampleRecords()); err != nil {
		t.Fatalf("write: %v", err)
	}
	rows, err := csv.NewReader(&buf).ReadAll()
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if len(rows) != 2 {
		t.Fatalf("expected header and one row, got %d", len(rows))
	}
	want := []string{"1", "4", "s1", "forecast", "2", "17", "900", "1", "2", "3.5", "120.25"}
	if strings.Join(rows[1], ",") != strings.Join(want, ",") {
		t.Fatalf("unexpected row %v", rows[1])
	}
}

func TestWriteJSON(t *testing.T) {
	var buf bytes.Buffer
	recs := append(sampleRecords(), sampleRecords()...)
	if err := WriteJSON(&buf, recs); err != nil {
		t.Fatalf("write: %v", err)
	}
	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 2 {
		t.Fatalf("expected 2 lines got %d", len(lines))
	}
	var got journal.Record
	if err := json.Unmarshal([]byte(lines[0]), &got); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if got.At() != (model.Hour{Day: 1, Hour: 4}) || got.Session != "s1" {
		t.Fatalf("unexpected record %+v", got)
	}
}

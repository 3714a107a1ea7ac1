package cmd

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/kilianp07/rotables/core/journal"
	"github.com/kilianp07/rotables/core/model"
	"github.com/kilianp07/rotables/core/policy"
)

func TestPresetsCommand(t *testing.T) {
	var out bytes.Buffer
	presetsCmd.SetOut(&out)
	if err := runPresets(presetsCmd, []string{"hybrid"}); err != nil {
		t.Fatalf("presets: %v", err)
	}
	var got map[string]policy.Config
	if err := json.Unmarshal(out.Bytes(), &got); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(got) != 1 || got["hybrid"].Allocation.BufferRatio.Economy != 0.5 {
		t.Fatalf("unexpected output %s", out.String())
	}
	if err := runPresets(presetsCmd, []string{"greedy"}); err == nil {
		t.Fatalf("expected error for unknown preset")
	}
}

func TestBuildQuery(t *testing.T) {
	journalFlags.from, journalFlags.to = "1:00", "2:05"
	journalFlags.penalty, journalFlags.limit = "LATE", 3
	journalFlags.flight = "7f0b0a6e-2b63-4c70-9a53-42c0a3d6a8b1"
	defer func() { journalFlags.from, journalFlags.to, journalFlags.flight = "", "", "" }()
	q, err := buildQuery()
	if err != nil {
		t.Fatalf("query: %v", err)
	}
	if q.From != (model.Hour{Day: 1}) || q.To != (model.Hour{Day: 2, Hour: 5}) || q.PenaltyCode != "LATE" || q.Limit != 3 {
		t.Fatalf("unexpected query %+v", q)
	}
	journalFlags.flight = "not-a-uuid"
	if _, err := buildQuery(); err == nil {
		t.Fatalf("expected error for bad flight id")
	}
}

func TestWriteRecordsFormats(t *testing.T) {
	recs := []journal.Record{{Request: model.HourRequest{Day: 1}}}
	var buf bytes.Buffer
	if err := writeRecords(&buf, "csv", recs); err != nil || !strings.HasPrefix(buf.String(), "day,hour") {
		t.Fatalf("csv output %q err %v", buf.String(), err)
	}
	if err := writeRecords(&buf, "xml", recs); err == nil {
		t.Fatalf("expected error for unknown format")
	}
}

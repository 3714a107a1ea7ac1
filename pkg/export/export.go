// Package export writes journal records in formats suited to spreadsheets
// and scripts.
package export

import (
	"encoding/csv"
	"encoding/json"
	"io"
	"strconv"

	"github.com/kilianp07/rotables/core/journal"
	"github.com/kilianp07/rotables/core/model"
)

// CSVHeader lists the columns written by WriteCSV.
var CSVHeader = []string{
	"day", "hour", "session", "strategy", "flights", "loaded_kits",
	"purchased_kits", "landed", "penalties", "penalty_amount", "total_cost",
}

// WriteJSON writes records to w as one JSON document per line.
func WriteJSON(w io.Writer, recs []journal.Record) error {
	enc := json.NewEncoder(w)
	for _, r := range recs {
		if err := enc.Encode(r); err != nil {
			return err
		}
	}
	return nil
}

// WriteCSV writes one summary row per record.
func WriteCSV(w io.Writer, recs []journal.Record) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(CSVHeader); err != nil {
		return err
	}
	for _, r := range recs {
		if err := cw.Write(summaryRow(r)); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

func summaryRow(r journal.Record) []string {
	loaded := 0
	for _, l := range r.Request.FlightLoads {
		loaded += l.LoadedKits.Total()
	}
	landed := 0
	for _, e := range r.Response.FlightUpdates {
		if e.Type == model.StageLanded {
			landed++
		}
	}
	amount := 0.0
	for _, p := range r.Response.Penalties {
		amount += p.Amount
	}
	return []string{
		strconv.Itoa(r.Request.Day),
		strconv.Itoa(r.Request.Hour),
		r.Session,
		r.Strategy,
		strconv.Itoa(len(r.Request.FlightLoads)),
		strconv.Itoa(loaded),
		strconv.Itoa(r.Request.KitPurchasingOrders.Total()),
		strconv.Itoa(landed),
		strconv.Itoa(len(r.Response.Penalties)),
		strconv.FormatFloat(amount, 'f', -1, 64),
		strconv.FormatFloat(r.Response.TotalCost, 'f', -1, 64),
	}
}

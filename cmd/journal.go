package cmd

import (
	"fmt"
	"io"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/kilianp07/rotables/config"
	"github.com/kilianp07/rotables/core/journal"
	"github.com/kilianp07/rotables/core/model"
	"github.com/kilianp07/rotables/pkg/export"
)

var journalFlags struct {
	from, to string
	flight   string
	penalty  string
	limit    int
	format   string
}

var journalCmd = &cobra.Command{
	Use:   "journal",
	Short: "Query the round journal",
	RunE:  runJournal,
}

func init() {
	f := journalCmd.Flags()
	f.StringVar(&journalFlags.from, "from", "", "first hour, day:hour")
	f.StringVar(&journalFlags.to, "to", "", "last hour, day:hour")
	f.StringVar(&journalFlags.flight, "flight", "", "only hours touching this flight id")
	f.StringVar(&journalFlags.penalty, "penalty", "", "only hours with this penalty code")
	f.IntVar(&journalFlags.limit, "limit", 0, "maximum number of records")
	f.StringVarP(&journalFlags.format, "format", "o", "csv", "output format: csv or json")
	rootCmd.AddCommand(journalCmd)
}

func runJournal(cmd *cobra.Command, args []string) error {
	q, err := buildQuery()
	if err != nil {
		return err
	}
	cfg, err := config.Load(cfgPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	store, err := journal.NewStore(cfg.Journal)
	if err != nil {
		return fmt.Errorf("journal: %w", err)
	}
	defer store.Close()
	recs, err := store.Query(cmd.Context(), q)
	if err != nil {
		return fmt.Errorf("query journal: %w", err)
	}
	return writeRecords(cmd.OutOrStdout(), journalFlags.format, recs)
}

func buildQuery() (journal.Query, error) {
	q := journal.Query{PenaltyCode: journalFlags.penalty, Limit: journalFlags.limit}
	var err error
	if journalFlags.from != "" {
		if q.From, err = model.ParseHour(journalFlags.from); err != nil {
			return q, err
		}
	}
	if journalFlags.to != "" {
		if q.To, err = model.ParseHour(journalFlags.to); err != nil {
			return q, err
		}
	}
	if journalFlags.flight != "" {
		if q.FlightID, err = uuid.Parse(journalFlags.flight); err != nil {
			return q, fmt.Errorf("flight id: %w", err)
		}
	}
	return q, nil
}

func writeRecords(w io.Writer, format string, recs []journal.Record) error {
	switch format {
	case "csv":
		return export.WriteCSV(w, recs)
	case "json":
		return export.WriteJSON(w, recs)
	default:
		return fmt.Errorf("unknown format %q", format)
	}
}

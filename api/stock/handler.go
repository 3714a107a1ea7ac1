package stock

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/kilianp07/rotables/core/stockview"
)

// NewStatusHandler returns an HTTP handler exposing airport stock via GET /api/stock.
func NewStatusHandler(store stockview.Store) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
			return
		}
		q := r.URL.Query()
		f := stockview.Filter{
			Airport:     strings.ToUpper(q.Get("airport")),
			HubOnly:     q.Get("hub") == "true",
			Overflowing: q.Get("overflow") == "true",
		}
		entries := store.List(f)
		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode(entries); err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
	})
}

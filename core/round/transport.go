// Package round drives the hour-by-hour game loop: it releases reconditioned
// kits, decides flight loads and hub purchases, exchanges them with the
// scoring service and applies the landings it reports back.
package round

import (
	"context"
	"errors"

	"github.com/kilianp07/rotables/core/model"
)

// Transport exchanges one hour of decisions with the scoring service.
type Transport interface {
	PlayRound(ctx context.Context, req model.HourRequest) (model.HourResponse, error)
}

// Session is implemented by transports that need an explicit game session.
type Session interface {
	Start(ctx context.Context) (string, error)
	End(ctx context.Context) error
}

var (
	// ErrTimeMismatch is returned when the service answers for a different
	// hour than the one requested.
	ErrTimeMismatch = errors.New("response hour does not match request")
	// ErrNilDependency is returned by New when a required collaborator is nil.
	ErrNilDependency = errors.New("round: nil dependency")
)

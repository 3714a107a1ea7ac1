package events

import "github.com/kilianp07/rotables/core/model"

// StrategyEvent is emitted when the orchestrator allocates a batch of
// flights sharing an origin. Action can be "lp_attempt", "lp_failure" or
// "sequential_fallback".
type StrategyEvent struct {
	At     model.Hour
	Origin string
	Action string
	Err    error
}

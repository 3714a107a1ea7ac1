package round

// State is the phase the orchestrator is in within the current hour.
type State int

const (
	AwaitEvents State = iota
	ComputeDecisions
	RoundTrip
	ApplyLandings
	ApplyPurchase
	AdvanceHour
	Done
)

func (s State) String() string {
	switch s {
	case AwaitEvents:
		return "await_events"
	case ComputeDecisions:
		return "compute_decisions"
	case RoundTrip:
		return "round_trip"
	case ApplyLandings:
		return "apply_landings"
	case ApplyPurchase:
		return "apply_purchase"
	case AdvanceHour:
		return "advance_hour"
	case Done:
		return "done"
	default:
		return "unknown"
	}
}

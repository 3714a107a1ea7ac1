package metrics

import (
	"context"

	"github.com/kilianp07/rotables/core/events"
	coremetrics "github.com/kilianp07/rotables/core/metrics"
	"github.com/kilianp07/rotables/internal/eventbus"
)

// StartEventCollector subscribes to the event bus and forwards penalty and
// strategy events to the sink recorders. It stops when the context is
// canceled or the bus is closed; the returned channel is closed then.
func StartEventCollector(ctx context.Context, bus eventbus.EventBus, sink coremetrics.MetricsSink) <-chan struct{} {
	done := make(chan struct{})
	if bus == nil || sink == nil {
		close(done)
		return done
	}
	sub := bus.Subscribe()
	pr, hasPenalty := sink.(coremetrics.PenaltyRecorder)
	sr, hasStrategy := sink.(coremetrics.StrategyRecorder)
	go func() {
		defer close(done)
		defer bus.Unsubscribe(sub)
		for {
			select {
			case <-ctx.Done():
				return
			case ev, ok := <-sub:
				if !ok {
					return
				}
				switch e := ev.(type) {
				case events.PenaltyEvent:
					if hasPenalty {
						_ = pr.RecordPenalty(coremetrics.PenaltyRecord{
							At:           e.At,
							Code:         e.Penalty.Code,
							FlightNumber: e.Penalty.FlightNumber,
							Amount:       e.Penalty.Amount,
						})
					}
				case events.StrategyEvent:
					if hasStrategy {
						_ = sr.RecordStrategy(coremetrics.StrategyRecord{At: e.At, Origin: e.Origin, Action: e.Action})
					}
				}
			}
		}
	}()
	return done
}

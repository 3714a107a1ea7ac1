package mqtt

import (
	"context"
	"fmt"
	"sync"

	"github.com/kilianp07/rotables/core/events"
	"github.com/kilianp07/rotables/infra/logger"
	"github.com/kilianp07/rotables/internal/eventbus"
)

// Publisher sends round notifications to an external broker.
type Publisher interface {
	PublishRound(events.RoundEvent) error
	PublishPenalty(events.PenaltyEvent) error
}

// StartRoundPublisher forwards round and penalty events from the bus to pub.
// Publish failures are logged and never stop the loop. The returned channel
// is closed once the context is canceled or the bus is closed.
func StartRoundPublisher(ctx context.Context, bus eventbus.EventBus, pub Publisher, log logger.Logger) <-chan struct{} {
	done := make(chan struct{})
	if bus == nil || pub == nil {
		close(done)
		return done
	}
	if log == nil {
		log = logger.NopLogger{}
	}
	sub := bus.Subscribe()
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
				var err error
				switch e := ev.(type) {
				case events.RoundEvent:
					err = pub.PublishRound(e)
				case events.PenaltyEvent:
					err = pub.PublishPenalty(e)
				}
				if err != nil {
					log.Warnf("mqtt publish: %v", err)
				}
			}
		}
	}()
	return done
}

// MockPublisher records published events and is used in tests.
type MockPublisher struct {
	Rounds    []events.RoundEvent
	Penalties []events.PenaltyEvent
	Fail      bool
	mu        sync.Mutex
}

// NewMockPublisher creates a new MockPublisher.
func NewMockPublisher() *MockPublisher { return &MockPublisher{} }

// PublishRound records the event or fails when configured to.
func (m *MockPublisher) PublishRound(ev events.RoundEvent) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Fail {
		return fmt.Errorf("publish failed")
	}
	m.Rounds = append(m.Rounds, ev)
	return nil
}

// PublishPenalty records the event or fails when configured to.
func (m *MockPublisher) PublishPenalty(ev events.PenaltyEvent) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Fail {
		return fmt.Errorf("publish failed")
	}
	m.Penalties = append(m.Penalties, ev)
	return nil
}

// Counts returns the number of recorded rounds and penalties.
func (m *MockPublisher) Counts() (rounds, penalties int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.Rounds), len(m.Penalties)
}

package mqtt

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/mock"

	"github.com/kilianp07/rotables/core/events"
	"github.com/kilianp07/rotables/core/model"
	"github.com/kilianp07/rotables/internal/eventbus"
)

func TestRoundPublisherForwardsEvents(t *testing.T) {
	bus := eventbus.New()
	pub := NewMockPublisher()
	ctx, cancel := context.WithCancel(context.Background())
	done := StartRoundPublisher(ctx, bus, pub, nil)

	bus.Publish(events.PenaltyEvent{At: model.Hour{Day: 1}, Penalty: model.Penalty{Code: "X"}})
	bus.Publish(events.LoadEvent{})
	bus.Publish(events.RoundEvent{At: model.Hour{Day: 1}})

	deadline := time.Now().Add(time.Second)
	for {
		r, p := pub.Counts()
		if r == 1 && p == 1 {
			break
		}
		if time.Now().After(deadline) {
			t.Fatalf("events not forwarded: rounds=%d penalties=%d", r, p)
		}
		time.Sleep(5 * time.Millisecond)
	}
	cancel()
	<-done
}

func TestRoundPublisherSurvivesFailures(t *testing.T) {
	bus := eventbus.New()
	pub := NewMockPublisher()
	pub.Fail = true
	done := StartRoundPublisher(context.Background(), bus, pub, nil)
	bus.Publish(events.RoundEvent{})
	bus.Close()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatalf("publisher did not stop after bus close")
	}
	if r, _ := pub.Counts(); r != 0 {
		t.Fatalf("failed publish must not be recorded")
	}
}

func TestRoundPublisherNilDependencies(t *testing.T) {
	select {
	case <-StartRoundPublisher(context.Background(), nil, NewMockPublisher(), nil):
	default:
		t.Fatalf("expected closed channel for nil bus")
	}
}

type mockPublisher struct {
	mock.Mock
}

func (m *mockPublisher) PublishRound(ev events.RoundEvent) error {
	return m.Called(ev).Error(0)
}

func (m *mockPublisher) PublishPenalty(ev events.PenaltyEvent) error {
	return m.Called(ev).Error(0)
}

func TestRoundPublisherCallsInOrder(t *testing.T) {
	bus := eventbus.New()
	pub := &mockPublisher{}
	first := events.RoundEvent{At: model.Hour{Hour: 1}}
	second := events.RoundEvent{At: model.Hour{Hour: 2}}
	pen := events.PenaltyEvent{At: model.Hour{Hour: 1}, Penalty: model.Penalty{Code: "LATE"}}
	pub.On("PublishPenalty", pen).Return(errors.New("broker down")).Once()
	pub.On("PublishRound", first).Return(nil).Once()
	pub.On("PublishRound", second).Return(nil).Once()

	done := StartRoundPublisher(context.Background(), bus, pub, nil)
	bus.Publish(pen)
	bus.Publish(first)
	bus.Publish(second)
	bus.Close()
	<-done

	pub.AssertExpectations(t)
	pub.AssertNumberOfCalls(t, "PublishRound", 2)
}

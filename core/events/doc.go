// Package events defines the round related events emitted on the event bus.
//
// Available event types:
//   - RoundEvent: summary of one completed hour
//   - LoadEvent: kits loaded on a departing flight
//   - PenaltyEvent: penalty reported by the scoring service
//   - StrategyEvent: batch allocator selection and fallback information
package events

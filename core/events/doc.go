// Package events defines the vessel related events emitted on the event bus.
//
// Available event types:
//   - ChargeEvent: outcome of one charging pass
//   - ProducerFaultEvent: a producer failed during a charging pass
//   - StatsEvent: derived vessel stats changed after an upgrade scan
//   - Notification: player-facing message (power rating, speed rating, ...)
//   - StatusEvent: periodic vessel status with producer indicators
package events

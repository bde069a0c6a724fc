// Package upgrade aggregates the effects of upgrade modules installed in a
// vessel's equipment slots.
//
// An Engine owns a closed set of handler kinds: plain count handlers
// (Handler), handlers that also collect module batteries (BatteryHandler)
// and tier groups where only the best installed tier counts (TieredGroup).
// Engine.Scan walks the slots in their fixed order and drives each handler
// through its Lifecycle. PowerStats derives the power rating and speed
// multipliers from the post-scan state.
package upgrade

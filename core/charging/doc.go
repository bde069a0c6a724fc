// Package charging aggregates pluggable power producers into one energy
// deposit per simulation tick.
//
// Producers are registered once, before Scheduler.Initialize, into a
// Registry that keeps renewable and non-renewable producers in separate
// ordered groups. Every Scheduler.Run queries renewables first, then
// non-renewables only when the renewables left a meaningful deficit, applies
// the recharge penalty and deposits the result into the energy store. A
// producer that panics or returns garbage is skipped for that tick.
package charging

// Package simulator drives a vessel offline. Host is an in-memory vessel
// with a day/night light curve, scripted slot changes and bio fuel; Run
// ticks it and records one TickRecord per tick for CSV export.
package simulator

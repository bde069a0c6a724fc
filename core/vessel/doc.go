// Package vessel wires the charging scheduler and the upgrade engine of a
// single vessel together.
//
// A process-wide Registry collects producer and upgrade handler factories
// from extensions. New builds the vessel, Initialize runs every factory
// once, and from then on the host calls Tick every frame and SlotsChanged
// whenever equipment is inserted or removed.
package vessel

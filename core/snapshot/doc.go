// Package snapshot defines the plain data saved between sessions and the
// Store contract implemented by infra/snapshot.
package snapshot

package producers

import (
	"fmt"
	"math"

	"github.com/kilianp07/vesselpower/core/snapshot"
)

// MinimalPower is the default epsilon below which energy is ignored.
const MinimalPower = 0.001

// Reserve is a battery pool a producer drains.
type Reserve interface {
	TotalBatteryCharge() float64
	DrawPower(rate, requested float64) float64
}

// Persistable producers carry state across sessions.
type Persistable interface {
	SnapshotState() snapshot.ProducerState
	RestoreState(s snapshot.ProducerState)
}

// batteryStore is implemented by reserves whose cells can be saved.
type batteryStore interface {
	Charges() []float64
	RestoreCharges([]float64)
}

func batteryCharges(r any) []float64 {
	if b, ok := r.(batteryStore); ok {
		return b.Charges()
	}
	return nil
}

func restoreBatteries(r any, charges []float64) {
	if b, ok := r.(batteryStore); ok && len(charges) > 0 {
		b.RestoreCharges(charges)
	}
}

// formatValue renders energy the way the HUD shows it.
func formatValue(v float64) string {
	switch {
	case v >= 10000:
		return fmt.Sprintf("%.0fK", math.Floor(v/1000))
	case v >= 1000:
		return fmt.Sprintf("%.1fK", math.Floor(v/100)/10)
	default:
		return fmt.Sprintf("%.0f", math.Floor(v))
	}
}

func clamp01(v float64) float64 { return math.Max(0, math.Min(1, v)) }

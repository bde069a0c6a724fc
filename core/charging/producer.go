package charging

// Producer is one pluggable power source.
type Producer interface {
	// Name uniquely identifies the producer on a vessel.
	Name() string
	// Renewable is fixed at construction.
	Renewable() bool
	// ProducePower returns the energy made available this tick. It may be
	// zero, and it may exceed requested.
	ProducePower(requested float64) float64
	// TotalReserve returns the energy still held by the producer.
	TotalReserve() float64
}

// Indicator is display metadata for a producer.
type Indicator struct {
	Text string
	// Level is a 0..1 health ratio used to pick a display colour.
	Level float64
}

// IndicatorProvider is implemented by producers with display metadata. The
// boolean reports whether the indicator should be shown right now.
type IndicatorProvider interface {
	IndicatorInfo() (Indicator, bool)
}

// LegacyClaimer is implemented by producers replacing the host's built-in
// charging path.
type LegacyClaimer interface {
	ClaimsLegacyRole() bool
}

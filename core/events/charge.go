package events

import "time"

// ProducerOutput is the contribution of one producer during a pass.
type ProducerOutput struct {
	Name      string  `json:"name"`
	Renewable bool    `json:"renewable"`
	Power     float64 `json:"power"`
	Faulted   bool    `json:"faulted,omitempty"`
}

// ChargeEvent is published after every charging pass on a running host.
type ChargeEvent struct {
	VesselID     string
	Deficit      float64
	Produced     float64
	Stored       float64
	Penalty      float64
	NonRenewable bool
	Outputs      []ProducerOutput
	Time         time.Time
}

// ProducerFaultEvent is published when a producer panics or returns an
// unusable value.
type ProducerFaultEvent struct {
	VesselID string
	Producer string
	Err      error
	Time     time.Time
}

package events

import "time"

// StatsEvent carries the derived stats published after an upgrade scan.
type StatsEvent struct {
	VesselID         string
	PowerRating      float64
	SpeedMultipliers [3]float64
	SpeedModules     int
	Time             time.Time
}

// NotificationKind classifies player-facing messages.
type NotificationKind string

const (
	NoticePowerRating NotificationKind = "power_rating"
	NoticeSpeedRating NotificationKind = "speed_rating"
	NoticeMaxReached  NotificationKind = "max_reached"
	NoticeFuel        NotificationKind = "fuel"
)

// Notification is a message meant for the player.
type Notification struct {
	VesselID string           `json:"vessel_id"`
	Kind     NotificationKind `json:"kind"`
	Message  string           `json:"message"`
	Time     time.Time        `json:"time"`
}

// IndicatorStatus mirrors a visible producer indicator.
type IndicatorStatus struct {
	Producer string  `json:"producer"`
	Text     string  `json:"text"`
	Level    float64 `json:"level"`
}

// StatusEvent is a snapshot of the vessel published after each tick.
type StatusEvent struct {
	VesselID     string            `json:"vessel_id"`
	Energy       float64           `json:"energy"`
	Capacity     float64           `json:"capacity"`
	Reserve      int               `json:"reserve"`
	PowerRating  float64           `json:"power_rating"`
	Indicators   []IndicatorStatus `json:"indicators,omitempty"`
	LegacyActive bool              `json:"legacy_active"`
	Time         time.Time         `json:"time"`
}

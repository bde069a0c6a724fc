package mqtt

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/kilianp07/vesselpower/core/events"
	"github.com/kilianp07/vesselpower/core/logger"
	"github.com/kilianp07/vesselpower/internal/eventbus"
)

// Publisher sends raw payloads to a broker.
type Publisher interface {
	Publish(topic, kind string, retained bool, payload []byte) error
}

// Notice is the payload published on the notice topic.
type Notice struct {
	ID       string                  `json:"id"`
	VesselID string                  `json:"vessel_id"`
	Kind     events.NotificationKind `json:"kind"`
	Message  string                  `json:"message"`
	Time     int64                   `json:"timestamp"`
}

// StatusPublisher forwards vessel status and notifications from the event bus
// to <prefix>/<vessel>/status and <prefix>/<vessel>/notice.
type StatusPublisher struct {
	pub    Publisher
	prefix string
	retain bool
	log    logger.Logger
}

// NewStatusPublisher wraps pub.
func NewStatusPublisher(pub Publisher, cfg Config, log logger.Logger) *StatusPublisher {
	cfg.SetDefaults()
	return &StatusPublisher{pub: pub, prefix: cfg.TopicPrefix, retain: cfg.RetainState, log: logger.OrNop(log)}
}

// StatusTopic returns the status topic of a vessel.
func (s *StatusPublisher) StatusTopic(vesselID string) string {
	return fmt.Sprintf("%s/%s/status", s.prefix, vesselID)
}

// NoticeTopic returns the notice topic of a vessel.
func (s *StatusPublisher) NoticeTopic(vesselID string) string {
	return fmt.Sprintf("%s/%s/notice", s.prefix, vesselID)
}

// PublishStatus sends a status reading.
func (s *StatusPublisher) PublishStatus(ev events.StatusEvent) error {
	payload, err := json.Marshal(ev)
	if err != nil {
		return err
	}
	return s.pub.Publish(s.StatusTopic(ev.VesselID), "status", s.retain, payload)
}

// PublishNotice sends a notification tagged with a fresh message id.
func (s *StatusPublisher) PublishNotice(n events.Notification) error {
	at := n.Time
	if at.IsZero() {
		at = time.Now()
	}
	payload, err := json.Marshal(Notice{
		ID:       uuid.NewString(),
		VesselID: n.VesselID,
		Kind:     n.Kind,
		Message:  n.Message,
		Time:     at.UnixMilli(),
	})
	if err != nil {
		return err
	}
	return s.pub.Publish(s.NoticeTopic(n.VesselID), "notice", false, payload)
}

// Start subscribes to bus and publishes until ctx is canceled or the bus closes.
func (s *StatusPublisher) Start(ctx context.Context, bus eventbus.EventBus) {
	sub := bus.Subscribe()
	go func() {
		defer bus.Unsubscribe(sub)
		for {
			select {
			case <-ctx.Done():
				return
			case ev, ok := <-sub:
				if !ok {
					return
				}
				var err error
				switch e := ev.(type) {
				case events.StatusEvent:
					err = s.PublishStatus(e)
				case events.Notification:
					err = s.PublishNotice(e)
				}
				if err != nil {
					s.log.Errorf("mqtt publish: %v", err)
				}
			}
		}
	}()
}

// Message is a payload captured by MockPublisher.
type Message struct {
	Topic    string
	Kind     string
	Retained bool
	Payload  []byte
}

// MockPublisher is a simple publisher used in tests.
type MockPublisher struct {
	mu       sync.Mutex
	Messages []Message
	Fail     bool
}

// NewMockPublisher creates a new MockPublisher.
func NewMockPublisher() *MockPublisher { return &MockPublisher{} }

// Publish records the message or returns an error if configured to fail.
func (m *MockPublisher) Publish(topic, kind string, retained bool, payload []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Fail {
		return fmt.Errorf("publish failed")
	}
	m.Messages = append(m.Messages, Message{Topic: topic, Kind: kind, Retained: retained, Payload: payload})
	return nil
}

// Sent returns a copy of the recorded messages.
func (m *MockPublisher) Sent() []Message {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]Message(nil), m.Messages...)
}

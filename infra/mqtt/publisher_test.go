package mqtt

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kilianp07/vesselpower/core/events"
	"github.com/kilianp07/vesselpower/internal/eventbus"
)

func TestStatusPublisherTopics(t *testing.T) {
	p := NewStatusPublisher(NewMockPublisher(), Config{TopicPrefix: "fleet/"}, nil)
	assert.Equal(t, "fleet/v1/status", p.StatusTopic("v1"))
	assert.Equal(t, "fleet/v1/notice", p.NoticeTopic("v1"))
}

func TestPublishStatus(t *testing.T) {
	mock := NewMockPublisher()
	p := NewStatusPublisher(mock, Config{RetainState: true}, nil)
	require.NoError(t, p.PublishStatus(events.StatusEvent{VesselID: "v1", Energy: 42, Capacity: 100, Reserve: 7}))

	sent := mock.Sent()
	require.Len(t, sent, 1)
	assert.Equal(t, "vessels/v1/status", sent[0].Topic)
	assert.Equal(t, "status", sent[0].Kind)
	assert.True(t, sent[0].Retained)
	var got events.StatusEvent
	require.NoError(t, json.Unmarshal(sent[0].Payload, &got))
	assert.Equal(t, 42.0, got.Energy)
	assert.Equal(t, 7, got.Reserve)
}

func TestPublishNotice(t *testing.T) {
	mock := NewMockPublisher()
	p := NewStatusPublisher(mock, Config{}, nil)
	at := time.UnixMilli(1700000000000)
	require.NoError(t, p.PublishNotice(events.Notification{VesselID: "v1", Kind: events.NoticePowerRating, Message: "Power rating is now 3.50", Time: at}))

	sent := mock.Sent()
	require.Len(t, sent, 1)
	assert.Equal(t, "vessels/v1/notice", sent[0].Topic)
	assert.False(t, sent[0].Retained)
	var n Notice
	require.NoError(t, json.Unmarshal(sent[0].Payload, &n))
	_, err := uuid.Parse(n.ID)
	assert.NoError(t, err)
	assert.Equal(t, events.NoticePowerRating, n.Kind)
	assert.Equal(t, at.UnixMilli(), n.Time)
}

func TestStatusPublisherForwardsBusEvents(t *testing.T) {
	mock := NewMockPublisher()
	p := NewStatusPublisher(mock, Config{}, nil)
	bus := eventbus.New()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	p.Start(ctx, bus)

	bus.Publish(events.ChargeEvent{VesselID: "v1"})
	bus.Publish(events.StatusEvent{VesselID: "v1"})
	bus.Publish(events.Notification{VesselID: "v1", Kind: events.NoticeMaxReached})

	require.Eventually(t, func() bool { return len(mock.Sent()) == 2 }, time.Second, 10*time.Millisecond)
	sent := mock.Sent()
	assert.Equal(t, "status", sent[0].Kind)
	assert.Equal(t, "notice", sent[1].Kind)
}

func TestStatusPublisherStopsOnBusClose(t *testing.T) {
	mock := NewMockPublisher()
	mock.Fail = true
	p := NewStatusPublisher(mock, Config{}, nil)
	bus := eventbus.New()
	p.Start(context.Background(), bus)
	bus.Publish(events.StatusEvent{VesselID: "v1"})
	bus.Close()
	assert.Empty(t, mock.Sent())
}

package service

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
)

func TestChannelBase(t *testing.T) {
	require.Equal(t, "edusched:production", ChannelBase(" Production "))
	require.Equal(t, "edusched:development", ChannelBase(""))
}

func TestEventServiceBroadcastsToSubscribers(t *testing.T) {
	svc := NewEventService(nil, "", nil, testLogger()).(*eventService)

	client := &eventClient{send: make(chan ScheduleEvent, 1)}
	svc.hub.register(client)

	svc.PublishChange(context.Background(), ScheduleEvent{Kind: EventBatchApplied, BatchID: "batch-1", Actor: "admin-1", Count: 2})

	select {
	case got := <-client.send:
		require.Equal(t, EventBatchApplied, got.Kind)
		require.Equal(t, "batch-1", got.BatchID)
		require.False(t, got.At.IsZero(), "publish must stamp the event time")
	default:
		t.Fatal("no event delivered to subscriber")
	}
}

func TestEventServiceDropsEventsForSlowSubscribers(t *testing.T) {
	svc := NewEventService(nil, "", nil, testLogger()).(*eventService)

	client := &eventClient{send: make(chan ScheduleEvent, 1)}
	svc.hub.register(client)

	svc.PublishChange(context.Background(), ScheduleEvent{Kind: EventEntryChanged, BatchID: "e1"})
	svc.PublishChange(context.Background(), ScheduleEvent{Kind: EventEntryChanged, BatchID: "e2"})

	got := <-client.send
	require.Equal(t, "e1", got.BatchID)
	require.Empty(t, client.send)
}

func TestEventServiceCachesLastEvent(t *testing.T) {
	server, err := miniredis.Run()
	require.NoError(t, err)
	defer server.Close()

	client := redis.NewClient(&redis.Options{Addr: server.Addr()})
	svc := NewEventService(client, ChannelBase("test"), nil, testLogger()).(*eventService)

	svc.PublishChange(context.Background(), ScheduleEvent{Kind: EventModificationUndone, BatchID: "mod-1", Actor: "admin-2", Count: 1})

	payload, err := server.Get("edusched:test:events:last")
	require.NoError(t, err)

	var cached ScheduleEvent
	require.NoError(t, json.Unmarshal([]byte(payload), &cached))
	require.Equal(t, EventModificationUndone, cached.Kind)
	require.Equal(t, "mod-1", cached.BatchID)

	require.Equal(t, 30*time.Minute, server.TTL("edusched:test:events:last"))

	replayed := svc.fetchLastEvent(context.Background())
	require.NotNil(t, replayed)
	require.Equal(t, "mod-1", replayed.BatchID)
}

func TestEventServiceFetchLastEventWithoutRedis(t *testing.T) {
	svc := NewEventService(nil, "", nil, testLogger()).(*eventService)
	require.Nil(t, svc.fetchLastEvent(context.Background()))
}

func TestEventServiceHandleRemote(t *testing.T) {
	svc := NewEventService(nil, "", nil, testLogger()).(*eventService)

	client := &eventClient{send: make(chan ScheduleEvent, 1)}
	svc.hub.register(client)

	echo, err := json.Marshal(eventEnvelope{Source: svc.nodeID, Event: ScheduleEvent{Kind: EventBatchApplied, BatchID: "own"}})
	require.NoError(t, err)
	svc.handleRemote(echo)
	require.Empty(t, client.send, "events from this node must not loop back")

	foreign, err := json.Marshal(eventEnvelope{Source: "node-elsewhere", Event: ScheduleEvent{Kind: EventBatchApplied, BatchID: "remote-1"}})
	require.NoError(t, err)
	svc.handleRemote(foreign)

	got := <-client.send
	require.Equal(t, "remote-1", got.BatchID)

	svc.handleRemote([]byte("not json"))
	require.Empty(t, client.send)
}

package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/gofiber/websocket/v2"
	"github.com/google/uuid"
	"github.com/nats-io/nats.go"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/rajpratham1/EduScheduler-sub001/internal/observability"
)

const (
	eventSendBufferSize = 16
	eventRedisTTL       = 30 * time.Minute
)

// Schedule event kinds pushed to the feed.
const (
	EventBatchApplied       = "batch_applied"
	EventModificationUndone = "modification_undone"
	EventEntryChanged       = "entry_changed"
)

// ScheduleEvent notifies feed subscribers that the timetable changed and a
// refetch is due.
type ScheduleEvent struct {
	Kind    string    `json:"kind"`
	BatchID string    `json:"batch_id"`
	Actor   string    `json:"actor"`
	Count   int       `json:"count"`
	At      time.Time `json:"at"`
}

// EventPublisher is the write side handed to services that mutate the
// schedule.
type EventPublisher interface {
	PublishChange(ctx context.Context, event ScheduleEvent)
}

// EventConnectionOptions wraps metadata extracted during the HTTP upgrade.
type EventConnectionOptions struct {
	Actor   string
	Context context.Context
}

// EventService fans schedule change events out to websocket subscribers on
// this node and, through Redis and NATS, to every other node.
type EventService interface {
	EventPublisher
	ServeConnection(conn *websocket.Conn, opts EventConnectionOptions)
	Start(ctx context.Context)
}

type eventEnvelope struct {
	Source string        `json:"source"`
	Event  ScheduleEvent `json:"event"`
	SentAt time.Time     `json:"sent_at"`
}

type eventService struct {
	redis        *redis.Client
	redisChannel string
	redisCache   string
	nats         *nats.Conn
	natsSubject  string
	logger       zerolog.Logger
	hub          *eventHub
	nodeID       string
}

type eventHub struct {
	mu      sync.RWMutex
	clients map[*eventClient]struct{}
	log     zerolog.Logger
}

type eventClient struct {
	conn   *websocket.Conn
	send   chan ScheduleEvent
	closed chan struct{}
	once   sync.Once
	hub    *eventHub
}

// NewEventService creates the schedule events feed. redisClient and natsConn
// may be nil; the feed then stays node-local.
func NewEventService(redisClient *redis.Client, channelBase string, natsConn *nats.Conn, logger zerolog.Logger) EventService {
	hub := &eventHub{
		clients: make(map[*eventClient]struct{}),
		log:     logger.With().Str("component", "event_hub").Logger(),
	}

	redisChannel := ""
	redisCache := ""
	natsSubject := ""
	if channelBase != "" {
		redisChannel = channelBase + ":events"
		redisCache = channelBase + ":events:last"
		natsSubject = strings.ReplaceAll(channelBase, ":", ".") + ".events"
	}

	return &eventService{
		redis:        redisClient,
		redisChannel: redisChannel,
		redisCache:   redisCache,
		nats:         natsConn,
		natsSubject:  natsSubject,
		logger:       logger.With().Str("component", "event_service").Logger(),
		hub:          hub,
		nodeID:       uuid.NewString(),
	}
}

func (s *eventService) Start(ctx context.Context) {
	if s.redis != nil && s.redisChannel != "" {
		go s.consumeRedis(ctx)
	}
	if s.nats != nil && s.natsSubject != "" {
		go s.consumeNATS(ctx)
	}
}

// PublishChange delivers the event to local subscribers, caches it for late
// joiners and pushes it to the other nodes. Delivery is best effort; a dead
// broker never fails the schedule write that triggered the event.
func (s *eventService) PublishChange(ctx context.Context, event ScheduleEvent) {
	if event.At.IsZero() {
		event.At = time.Now().UTC()
	}

	observability.ScheduleEvents().WithLabelValues(event.Kind).Inc()
	s.hub.broadcast(event)
	s.cacheLastEvent(ctx, event)

	if err := s.publishRemote(ctx, event); err != nil {
		s.logger.Warn().Err(err).Msg("failed to publish schedule event")
	}
}

func (s *eventService) ServeConnection(conn *websocket.Conn, opts EventConnectionOptions) {
	client := &eventClient{
		conn:   conn,
		send:   make(chan ScheduleEvent, eventSendBufferSize),
		closed: make(chan struct{}),
		hub:    s.hub,
	}

	s.hub.register(client)
	observability.EventConnections().Inc()

	baseCtx := opts.Context
	if baseCtx == nil {
		baseCtx = context.Background()
	}

	if last := s.fetchLastEvent(baseCtx); last != nil {
		select {
		case client.send <- *last:
		default:
		}
	}

	s.logger.Debug().Str("actor", opts.Actor).Msg("events subscriber connected")
	go client.writer(s.logger)
	client.reader()
	s.logger.Debug().Str("actor", opts.Actor).Msg("events subscriber disconnected")
}

func (s *eventService) cacheLastEvent(ctx context.Context, event ScheduleEvent) {
	if s.redis == nil || s.redisCache == "" {
		return
	}

	payload, err := json.Marshal(event)
	if err != nil {
		s.logger.Warn().Err(err).Msg("failed to marshal schedule event for cache")
		return
	}

	if err := s.redis.Set(ctx, s.redisCache, payload, eventRedisTTL).Err(); err != nil {
		s.logger.Warn().Err(err).Msg("failed to cache schedule event")
	}
}

func (s *eventService) fetchLastEvent(ctx context.Context) *ScheduleEvent {
	if s.redis == nil || s.redisCache == "" {
		return nil
	}

	result, err := s.redis.Get(ctx, s.redisCache).Result()
	if err != nil {
		return nil
	}

	var event ScheduleEvent
	if err := json.Unmarshal([]byte(result), &event); err != nil {
		s.logger.Warn().Err(err).Msg("failed to unmarshal cached schedule event")
		return nil
	}

	return &event
}

func (s *eventService) publishRemote(ctx context.Context, event ScheduleEvent) error {
	envelope := eventEnvelope{
		Source: s.nodeID,
		Event:  event,
		SentAt: time.Now().UTC(),
	}

	payload, err := json.Marshal(envelope)
	if err != nil {
		return err
	}

	if s.redis != nil && s.redisChannel != "" {
		if err := s.redis.Publish(ctx, s.redisChannel, payload).Err(); err != nil {
			return err
		}
	}

	if s.nats != nil && s.natsSubject != "" {
		if err := s.nats.Publish(s.natsSubject, payload); err != nil {
			return err
		}
	}

	return nil
}

func (s *eventService) consumeRedis(ctx context.Context) {
	pubsub := s.redis.Subscribe(ctx, s.redisChannel)
	defer func() {
		_ = pubsub.Close()
	}()
	for {
		msg, err := pubsub.ReceiveMessage(ctx)
		if err != nil {
			if errors.Is(err, context.Canceled) {
				return
			}
			s.logger.Error().Err(err).Msg("events redis subscription closed")
			return
		}
		s.handleRemote([]byte(msg.Payload))
	}
}

func (s *eventService) consumeNATS(ctx context.Context) {
	sub, err := s.nats.QueueSubscribe(s.natsSubject, "edusched-events", func(msg *nats.Msg) {
		s.handleRemote(msg.Data)
	})
	if err != nil {
		s.logger.Error().Err(err).Msg("failed to subscribe to nats events subject")
		return
	}
	go func() {
		<-ctx.Done()
		if err := sub.Drain(); err != nil {
			s.logger.Warn().Err(err).Msg("failed to drain events nats subscription")
		}
	}()
}

func (s *eventService) handleRemote(data []byte) {
	var envelope eventEnvelope
	if err := json.Unmarshal(data, &envelope); err != nil {
		s.logger.Warn().Err(err).Msg("invalid schedule event envelope")
		return
	}

	if envelope.Source == s.nodeID {
		return
	}

	s.hub.broadcast(envelope.Event)
}

func (h *eventHub) register(client *eventClient) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.clients[client] = struct{}{}
}

func (h *eventHub) unregister(client *eventClient) {
	h.mu.Lock()
	defer h.mu.Unlock()
	delete(h.clients, client)
}

func (h *eventHub) broadcast(event ScheduleEvent) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	for client := range h.clients {
		select {
		case client.send <- event:
		default:
			h.log.Warn().Msg("dropping schedule event for slow subscriber")
		}
	}
}

// reader drains inbound frames so close handshakes are noticed; the feed is
// write-only.
func (c *eventClient) reader() {
	defer c.close()

	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			return
		}
	}
}

func (c *eventClient) writer(logger zerolog.Logger) {
	defer c.close()

	for {
		select {
		case event, ok := <-c.send:
			if !ok {
				return
			}
			if err := c.conn.WriteJSON(event); err != nil {
				logger.Debug().Err(err).Msg("events write loop terminated")
				return
			}
		case <-time.After(30 * time.Second):
			if err := c.conn.WriteMessage(websocket.PingMessage, []byte("keepalive")); err != nil {
				logger.Debug().Err(err).Msg("events ping failed")
				return
			}
		case <-c.closed:
			return
		}
	}
}

func (c *eventClient) close() {
	c.once.Do(func() {
		close(c.closed)
		c.hub.unregister(c)
		_ = c.conn.Close()
	})
}

// ChannelBase builds the broker channel prefix for an environment, keeping
// one instance's feed isolated from another's.
func ChannelBase(appEnv string) string {
	env := strings.ToLower(strings.TrimSpace(appEnv))
	if env == "" {
		env = "development"
	}
	return fmt.Sprintf("edusched:%s", env)
}

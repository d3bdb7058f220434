package handler

import (
	"context"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/websocket/v2"
	"github.com/rs/zerolog"

	"github.com/rajpratham1/EduScheduler-sub001/internal/middleware"
	"github.com/rajpratham1/EduScheduler-sub001/internal/service"
)

// EventsHandler upgrades clients onto the schedule change feed.
type EventsHandler struct {
	service service.EventService
	logger  zerolog.Logger
}

// NewEventsHandler creates an events handler instance.
func NewEventsHandler(service service.EventService, logger zerolog.Logger) *EventsHandler {
	return &EventsHandler{
		service: service,
		logger:  logger.With().Str("component", "events_handler").Logger(),
	}
}

// Register binds the feed routes under the provided router group.
func (h *EventsHandler) Register(router fiber.Router) {
	router.Use("/ws", func(c *fiber.Ctx) error {
		if websocket.IsWebSocketUpgrade(c) {
			ctx := c.UserContext()
			if ctx == nil {
				ctx = context.Background()
			}
			ctx = middleware.ContextWithCorrelation(ctx, middleware.GetCorrelationID(c))
			c.Locals("request_ctx", ctx)
			c.Locals("actor", actorFromContext(c))
			c.Locals("actor_role", userRoleFromContext(c))
			return c.Next()
		}
		return fiber.ErrUpgradeRequired
	})

	router.Get("/ws", websocket.New(h.handleConnection))
}

func (h *EventsHandler) handleConnection(conn *websocket.Conn) {
	actor, _ := conn.Locals("actor").(string)
	role, _ := conn.Locals("actor_role").(string)
	baseCtx, _ := conn.Locals("request_ctx").(context.Context)

	h.logger.Info().Str("actor", actor).Str("role", role).Msg("schedule feed connected")
	h.service.ServeConnection(conn, service.EventConnectionOptions{
		Actor:   actor,
		Context: baseCtx,
	})
	h.logger.Info().Str("actor", actor).Msg("schedule feed disconnected")
}

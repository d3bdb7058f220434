package handler

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/rajpratham1/EduScheduler-sub001/internal/middleware"
)

// requestContext returns the context the correlation middleware prepared, so
// trail records and spans keep the request's correlation identifier.
func requestContext(c *fiber.Ctx) context.Context {
	if ctx := c.UserContext(); ctx != nil {
		return ctx
	}
	return c.Context()
}

// actorFromContext resolves the authenticated principal used to stamp
// schedule writes and audit records.
func actorFromContext(c *fiber.Ctx) string {
	if v := c.Locals("user_id"); v != nil {
		switch id := v.(type) {
		case string:
			if trimmed := strings.TrimSpace(id); trimmed != "" {
				return trimmed
			}
		case uint:
			return strconv.FormatUint(uint64(id), 10)
		case int:
			if id >= 0 {
				return strconv.Itoa(id)
			}
		case fmt.Stringer:
			if trimmed := strings.TrimSpace(id.String()); trimmed != "" {
				return trimmed
			}
		}
	}
	return "system"
}

func userRoleFromContext(c *fiber.Ctx) string {
	if v := c.Locals("user_role"); v != nil {
		if role, ok := v.(string); ok {
			return role
		}
	}
	return ""
}

func parseQueryInt(c *fiber.Ctx, key string) (int, error) {
	value := strings.TrimSpace(c.Query(key))
	if value == "" {
		return 0, nil
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		return 0, err
	}
	return parsed, nil
}

func requestLogger(base zerolog.Logger, c *fiber.Ctx) *zerolog.Logger {
	logger := base
	if c != nil {
		if correlation := middleware.GetCorrelationID(c); correlation != "" {
			logger = base.With().Str("correlation_id", correlation).Logger()
		}
	}
	return &logger
}

func isValidationError(err error) bool {
	var validationErrors validator.ValidationErrors
	return errors.As(err, &validationErrors)
}

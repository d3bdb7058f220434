package handler

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"github.com/rajpratham1/EduScheduler-sub001/internal/config"
	"github.com/rajpratham1/EduScheduler-sub001/internal/utils"
)

// HealthResponse represents the payload returned by the health endpoint.
type HealthResponse struct {
	Status      string    `json:"status"`
	Timestamp   time.Time `json:"timestamp"`
	Service     string    `json:"service"`
	Environment string    `json:"environment"`
	Database    string    `json:"database"`
}

// HealthCheck returns a handler that reports application and storage health.
func HealthCheck(cfg config.Config, db *gorm.DB) fiber.Handler {
	return func(c *fiber.Ctx) error {
		payload := HealthResponse{
			Status:      "ok",
			Timestamp:   time.Now().UTC(),
			Service:     cfg.AppName,
			Environment: cfg.AppEnv,
			Database:    "ok",
		}

		if db == nil {
			payload.Database = "not_configured"
		} else if sqlDB, err := db.DB(); err != nil || sqlDB.PingContext(c.Context()) != nil {
			payload.Status = "degraded"
			payload.Database = "unreachable"
		}

		message := "service healthy"
		if payload.Status != "ok" {
			message = "service degraded"
		}
		return utils.SendSuccess(c, message, payload)
	}
}

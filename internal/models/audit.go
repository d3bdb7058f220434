package models

import (
	"time"

	"gorm.io/datatypes"
)

// AuditRecord captures one entry of the append-only trail behind every
// assistant exchange and every applied or undone change.
type AuditRecord struct {
	ID            uint              `gorm:"primaryKey" json:"id"`
	Actor         string            `gorm:"size:128;not null" json:"actor"`
	Action        string            `gorm:"size:64;not null" json:"action"`
	Summary       string            `gorm:"type:text" json:"summary"`
	CorrelationID string            `gorm:"size:64" json:"correlation_id"`
	Metadata      datatypes.JSONMap `gorm:"type:json" json:"metadata"`
	CreatedAt     time.Time         `json:"created_at"`
}

// Audit actions recorded by the service.
const (
	AuditActionAssist  = "assist_request"
	AuditActionApply   = "modifications_applied"
	AuditActionUndo    = "modification_undone"
	AuditActionRefused = "assist_refused"
)
